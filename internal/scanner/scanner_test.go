package scanner

import (
	"context"
	"errors"
	"testing"
	"time"

	fudomain "leadtrack_backend/internal/followups/domain"
	leaddomain "leadtrack_backend/internal/leads/domain"
	"leadtrack_backend/internal/leads/repository"
	"leadtrack_backend/internal/notification/dispatcher"
	"leadtrack_backend/platform/apperr"
	"leadtrack_backend/platform/logger"

	"github.com/google/uuid"
)

// fakeNoteStore backs the real dispatcher so the scans exercise the genuine
// retire-then-insert dedup behavior.
type fakeNoteStore struct {
	notes         []dispatcher.Notification
	failSubject   string
	failSubjectOn error
}

func sameSubject(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (f *fakeNoteStore) Insert(_ context.Context, n dispatcher.Notification) (dispatcher.Notification, error) {
	if f.failSubject != "" && n.SubjectName == f.failSubject {
		return dispatcher.Notification{}, f.failSubjectOn
	}
	f.notes = append(f.notes, n)
	return n, nil
}

func (f *fakeNoteStore) RetireByCause(_ context.Context, subjectID *uuid.UUID, types []string, causeKey string) (int64, error) {
	var kept []dispatcher.Notification
	var retired int64
	for _, n := range f.notes {
		matchType := false
		for _, t := range types {
			if n.Type == t {
				matchType = true
			}
		}
		if matchType && sameSubject(n.SubjectID, subjectID) && n.CauseKey == causeKey {
			retired++
			continue
		}
		kept = append(kept, n)
	}
	f.notes = kept
	return retired, nil
}

func (f *fakeNoteStore) ExistsByCause(_ context.Context, subjectID *uuid.UUID, typ, causeKey string) (bool, error) {
	for _, n := range f.notes {
		if n.Type == typ && sameSubject(n.SubjectID, subjectID) && n.CauseKey == causeKey {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeNoteStore) byType(typ string) []dispatcher.Notification {
	var out []dispatcher.Notification
	for _, n := range f.notes {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

type fakeLock struct {
	refuse bool
	held   map[string]bool
}

func (l *fakeLock) Acquire(_ context.Context, key string) (bool, error) {
	if l.refuse {
		return false, nil
	}
	if l.held == nil {
		l.held = map[string]bool{}
	}
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *fakeLock) Release(_ context.Context, key string) {
	delete(l.held, key)
}

type fakeStaleSource struct {
	unassigned []leaddomain.Lead
	assigned   []leaddomain.Lead
	err        error
}

func (f *fakeStaleSource) ListStale(_ context.Context, rule repository.StaleRule, _ time.Time) ([]leaddomain.Lead, error) {
	if f.err != nil {
		return nil, f.err
	}
	if rule == repository.StaleUnassigned {
		return f.unassigned, nil
	}
	return f.assigned, nil
}

type fakeScannerConfig struct{}

func (fakeScannerConfig) GetTimezone() *time.Location                 { return time.UTC }
func (fakeScannerConfig) GetFollowupWindowStart() int                 { return 9 }
func (fakeScannerConfig) GetFollowupWindowEnd() int                   { return 18 }
func (fakeScannerConfig) GetInactivityUnassignedAfter() time.Duration { return 4 * 24 * time.Hour }
func (fakeScannerConfig) GetInactivityAssignedAfter() time.Duration   { return 2 * 24 * time.Hour }

func stubLead(name, primary string) leaddomain.Lead {
	return leaddomain.Lead{
		ID:              uuid.New(),
		LeadID:          "LD-20260801-0001",
		Name:            name,
		Status:          leaddomain.StatusNew,
		PrimaryCategory: primary,
	}
}

func newInactivity(store *fakeNoteStore, leads *fakeStaleSource, lock Locker) *InactivityScanner {
	log := logger.New("development")
	disp := dispatcher.New(store, 30*24*time.Hour, log)
	s := NewInactivityScanner(leads, disp, fakeScannerConfig{}, lock, log)
	s.now = func() time.Time { return time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC) }
	return s
}

func TestInactivityScanUnionsBothRules(t *testing.T) {
	store := &fakeNoteStore{}
	leads := &fakeStaleSource{
		unassigned: []leaddomain.Lead{stubLead("Asha", "")},
		assigned:   []leaddomain.Lead{stubLead("Vikram", "sales")},
	}
	scan := newInactivity(store, leads, &fakeLock{})

	sum, err := scan.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.Processed != 2 || sum.Created != 2 || sum.Failed != 0 {
		t.Fatalf("summary = %+v", sum)
	}

	notes := store.byType(dispatcher.KindInactivity)
	if len(notes) != 2 {
		t.Fatalf("notifications = %d", len(notes))
	}
	// The wording distinguishes the two rules.
	seen := map[string]string{}
	for _, n := range notes {
		seen[n.SubjectName] = n.Message
	}
	if seen["Asha"] == seen["Vikram"] {
		t.Fatalf("rule wording must differ: %q vs %q", seen["Asha"], seen["Vikram"])
	}
}

func TestInactivityScanIsIdempotent(t *testing.T) {
	store := &fakeNoteStore{}
	leads := &fakeStaleSource{unassigned: []leaddomain.Lead{stubLead("Asha", "")}}
	scan := newInactivity(store, leads, &fakeLock{})
	ctx := context.Background()

	if _, err := scan.Run(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}
	sum, err := scan.Run(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if sum.Created != 0 || sum.Skipped != 1 {
		t.Fatalf("second run summary = %+v", sum)
	}
	if got := len(store.byType(dispatcher.KindInactivity)); got != 1 {
		t.Fatalf("live inactivity notifications = %d, want 1", got)
	}
}

func TestInactivityScanSkipsWhenLockRefused(t *testing.T) {
	store := &fakeNoteStore{}
	leads := &fakeStaleSource{unassigned: []leaddomain.Lead{stubLead("Asha", "")}}
	scan := newInactivity(store, leads, &fakeLock{refuse: true})

	sum, err := scan.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum != (Summary{}) {
		t.Fatalf("summary = %+v, want zero", sum)
	}
	if len(store.notes) != 0 {
		t.Fatal("refused lock must produce no notifications")
	}
}

func TestInactivityScanIsolatesPerLeadFailures(t *testing.T) {
	store := &fakeNoteStore{failSubject: "Broken", failSubjectOn: errors.New("store down")}
	leads := &fakeStaleSource{
		unassigned: []leaddomain.Lead{stubLead("Broken", ""), stubLead("Asha", "")},
	}
	scan := newInactivity(store, leads, &fakeLock{})

	sum, err := scan.Run(context.Background())
	if err != nil {
		t.Fatalf("a record failure must not abort the scan: %v", err)
	}
	if sum.Failed != 1 || sum.Created != 1 {
		t.Fatalf("summary = %+v", sum)
	}
}

type fakeDueSource struct {
	due []fudomain.FollowUp
}

func (f *fakeDueSource) ListDuePending(_ context.Context, dueBefore time.Time) ([]fudomain.FollowUp, error) {
	var out []fudomain.FollowUp
	for _, fu := range f.due {
		if fu.Status == fudomain.StatusPending && !fu.DueDate.After(dueBefore) {
			out = append(out, fu)
		}
	}
	return out, nil
}

type fakeLeadGetter struct {
	leads map[uuid.UUID]*leaddomain.Lead
}

func (f *fakeLeadGetter) GetByID(_ context.Context, id uuid.UUID) (*leaddomain.Lead, error) {
	l, ok := f.leads[id]
	if !ok {
		return nil, apperr.NotFound("lead not found")
	}
	return l, nil
}

func newFollowupScan(store *fakeNoteStore, due *fakeDueSource, getter *fakeLeadGetter, at time.Time) *FollowupScanner {
	log := logger.New("development")
	disp := dispatcher.New(store, 30*24*time.Hour, log)
	s := NewFollowupScanner(due, getter, disp, fakeScannerConfig{}, &fakeLock{}, log)
	s.now = func() time.Time { return at }
	return s
}

func TestFollowupScanOutsideWindowIsANoOp(t *testing.T) {
	lead := stubLead("Asha", "sales")
	due := &fakeDueSource{due: []fudomain.FollowUp{{
		ID: uuid.New(), LeadID: lead.ID, Title: "call", Status: fudomain.StatusPending,
		DueDate: time.Date(2026, 8, 27, 11, 0, 0, 0, time.UTC),
	}}}
	getter := &fakeLeadGetter{leads: map[uuid.UUID]*leaddomain.Lead{lead.ID: &lead}}
	store := &fakeNoteStore{}

	// 07:00 is before the 09:00 window start.
	scan := newFollowupScan(store, due, getter, time.Date(2026, 8, 27, 7, 0, 0, 0, time.UTC))
	sum, err := scan.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum != (Summary{}) || len(store.notes) != 0 {
		t.Fatalf("outside the window nothing happens: %+v", sum)
	}
}

func TestFollowupScanReclassifiesReminderToMissed(t *testing.T) {
	lead := stubLead("Asha", "sales")
	followup := fudomain.FollowUp{
		ID: uuid.New(), LeadID: lead.ID, Title: "demo call", Status: fudomain.StatusPending,
		DueDate: time.Date(2026, 8, 28, 11, 0, 0, 0, time.UTC),
	}
	due := &fakeDueSource{due: []fudomain.FollowUp{followup}}
	getter := &fakeLeadGetter{leads: map[uuid.UUID]*leaddomain.Lead{lead.ID: &lead}}
	store := &fakeNoteStore{}
	ctx := context.Background()

	// Day one: due tomorrow, so a reminder.
	scan := newFollowupScan(store, due, getter, time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC))
	if _, err := scan.Run(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if got := len(store.byType(dispatcher.KindFollowupReminder)); got != 1 {
		t.Fatalf("reminders = %d", got)
	}

	// Two days later the due date has passed: the reminder flips to missed.
	scan = newFollowupScan(store, due, getter, time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC))
	sum, err := scan.Run(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if sum.Retired != 1 || sum.Created != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	if got := len(store.byType(dispatcher.KindFollowupReminder)); got != 0 {
		t.Fatalf("stale reminders = %d, reminder and missed must never coexist", got)
	}
	if got := len(store.byType(dispatcher.KindMissedFollowup)); got != 1 {
		t.Fatalf("missed = %d", got)
	}
}

func TestFollowupScanBackToBackKeepsOneLiveNotification(t *testing.T) {
	lead := stubLead("Asha", "sales")
	due := &fakeDueSource{due: []fudomain.FollowUp{{
		ID: uuid.New(), LeadID: lead.ID, Title: "call", Status: fudomain.StatusPending,
		DueDate: time.Date(2026, 8, 27, 15, 0, 0, 0, time.UTC),
	}}}
	getter := &fakeLeadGetter{leads: map[uuid.UUID]*leaddomain.Lead{lead.ID: &lead}}
	store := &fakeNoteStore{}
	at := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)
	ctx := context.Background()

	scan := newFollowupScan(store, due, getter, at)
	if _, err := scan.Run(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}
	sum, err := scan.Run(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if sum.Retired != 1 || sum.Created != 1 {
		t.Fatalf("rerun replaces, never accumulates: %+v", sum)
	}
	if len(store.notes) != 1 {
		t.Fatalf("live notifications = %d, want 1", len(store.notes))
	}
}

func TestFollowupScanSkipsOrphans(t *testing.T) {
	due := &fakeDueSource{due: []fudomain.FollowUp{{
		ID: uuid.New(), LeadID: uuid.New(), Title: "call", Status: fudomain.StatusPending,
		DueDate: time.Date(2026, 8, 27, 15, 0, 0, 0, time.UTC),
	}}}
	getter := &fakeLeadGetter{leads: map[uuid.UUID]*leaddomain.Lead{}}
	store := &fakeNoteStore{}

	scan := newFollowupScan(store, due, getter, time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC))
	sum, err := scan.Run(context.Background())
	if err != nil {
		t.Fatalf("an orphan must not error the scan: %v", err)
	}
	if sum.Skipped != 1 || sum.Failed != 0 || len(store.notes) != 0 {
		t.Fatalf("summary = %+v", sum)
	}
}
