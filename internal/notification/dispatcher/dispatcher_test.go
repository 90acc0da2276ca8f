package dispatcher

import (
	"context"
	"testing"
	"time"

	"leadtrack_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	rows []Notification
}

func (f *fakeStore) Insert(_ context.Context, n Notification) (Notification, error) {
	f.rows = append(f.rows, n)
	return n, nil
}

func (f *fakeStore) RetireByCause(_ context.Context, subjectID *uuid.UUID, types []string, causeKey string) (int64, error) {
	var kept []Notification
	var retired int64
	for _, row := range f.rows {
		if f.matches(row, subjectID, types, causeKey) {
			retired++
			continue
		}
		kept = append(kept, row)
	}
	f.rows = kept
	return retired, nil
}

func (f *fakeStore) ExistsByCause(_ context.Context, subjectID *uuid.UUID, typ, causeKey string) (bool, error) {
	for _, row := range f.rows {
		if f.matches(row, subjectID, []string{typ}, causeKey) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) matches(row Notification, subjectID *uuid.UUID, types []string, causeKey string) bool {
	if row.CauseKey != causeKey {
		return false
	}
	if (row.SubjectID == nil) != (subjectID == nil) {
		return false
	}
	if subjectID != nil && *row.SubjectID != *subjectID {
		return false
	}
	for _, t := range types {
		if row.Type == t {
			return true
		}
	}
	return false
}

func (f *fakeStore) countByType(typ string) int {
	count := 0
	for _, row := range f.rows {
		if row.Type == typ {
			count++
		}
	}
	return count
}

func newTestDispatcher(store *fakeStore) *Service {
	svc := New(store, 30*24*time.Hour, logger.New("development"))
	svc.now = func() time.Time { return time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestNotifyEventKindsAreNotDeduplicated(t *testing.T) {
	store := &fakeStore{}
	svc := newTestDispatcher(store)
	leadID := uuid.New()

	for i := 0; i < 2; i++ {
		if _, retired, err := svc.Notify(context.Background(), Event{
			Kind:        KindNewRemark,
			SubjectID:   &leadID,
			SubjectName: "Asha Rao",
			Actor:       "ravi",
			Detail:      "called back",
		}); err != nil || retired != 0 {
			t.Fatalf("notify: retired=%d err=%v", retired, err)
		}
	}

	if got := store.countByType(KindNewRemark); got != 2 {
		t.Fatalf("event-originated kinds must not dedup: got %d rows, want 2", got)
	}
}

func TestNotifyRetiresLiveNotificationForSameCause(t *testing.T) {
	store := &fakeStore{}
	svc := newTestDispatcher(store)
	leadID := uuid.New()
	cause := "followup:" + uuid.NewString()

	if _, _, err := svc.Notify(context.Background(), Event{
		Kind:      KindFollowupReminder,
		SubjectID: &leadID,
		CauseKey:  cause,
		Message:   "Follow-up with Asha Rao is due today",
	}); err != nil {
		t.Fatalf("first notify: %v", err)
	}

	_, retired, err := svc.Notify(context.Background(), Event{
		Kind:      KindMissedFollowup,
		SubjectID: &leadID,
		CauseKey:  cause,
		Message:   "Follow-up with Asha Rao was missed",
	})
	if err != nil {
		t.Fatalf("second notify: %v", err)
	}
	if retired != 1 {
		t.Fatalf("expected the reminder to be retired, retired=%d", retired)
	}
	if store.countByType(KindFollowupReminder) != 0 || store.countByType(KindMissedFollowup) != 1 {
		t.Fatalf("reminder and missed must never coexist for one cause: %+v", store.rows)
	}
}

func TestNotifyDedupIsScopedToCause(t *testing.T) {
	store := &fakeStore{}
	svc := newTestDispatcher(store)
	leadID := uuid.New()

	for _, cause := range []string{"followup:a", "followup:b"} {
		if _, _, err := svc.Notify(context.Background(), Event{
			Kind:      KindFollowupReminder,
			SubjectID: &leadID,
			CauseKey:  cause,
			Message:   "due",
		}); err != nil {
			t.Fatalf("notify %s: %v", cause, err)
		}
	}

	if got := store.countByType(KindFollowupReminder); got != 2 {
		t.Fatalf("different causes must keep independent live notifications, got %d", got)
	}
}

func TestHasLiveReflectsStoreState(t *testing.T) {
	store := &fakeStore{}
	svc := newTestDispatcher(store)
	leadID := uuid.New()

	live, err := svc.HasLive(context.Background(), &leadID, KindInactivity, "inactivity:unassigned")
	if err != nil || live {
		t.Fatalf("expected no live notification, live=%v err=%v", live, err)
	}

	if _, _, err := svc.Notify(context.Background(), Event{
		Kind:      KindInactivity,
		SubjectID: &leadID,
		CauseKey:  "inactivity:unassigned",
		Message:   "Lead Asha Rao is unassigned and inactive",
	}); err != nil {
		t.Fatalf("notify: %v", err)
	}

	live, err = svc.HasLive(context.Background(), &leadID, KindInactivity, "inactivity:unassigned")
	if err != nil || !live {
		t.Fatalf("expected live notification after insert, live=%v err=%v", live, err)
	}
}

func TestNotifyStampsExpiryFromTTL(t *testing.T) {
	store := &fakeStore{}
	svc := newTestDispatcher(store)

	n, _, err := svc.Notify(context.Background(), Event{Kind: KindBulkUpload, Detail: "10 created, 0 failed"})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if want := n.CreatedAt.Add(30 * 24 * time.Hour); !n.Expiry.Equal(want) {
		t.Fatalf("expiry = %v, want %v", n.Expiry, want)
	}
}
