package service

import (
	"context"
	"testing"
	"time"

	"leadtrack_backend/internal/followups/domain"
	"leadtrack_backend/platform/apperr"

	"github.com/google/uuid"
)

type fakeStore struct {
	items map[uuid.UUID]*domain.FollowUp
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: map[uuid.UUID]*domain.FollowUp{}}
}

func (f *fakeStore) Insert(_ context.Context, fu *domain.FollowUp) error {
	copied := *fu
	f.items[fu.ID] = &copied
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*domain.FollowUp, error) {
	fu, ok := f.items[id]
	if !ok {
		return nil, apperr.NotFound("followup not found")
	}
	copied := *fu
	return &copied, nil
}

func (f *fakeStore) ListByLead(_ context.Context, leadID uuid.UUID) ([]domain.FollowUp, error) {
	var out []domain.FollowUp
	for _, fu := range f.items {
		if fu.LeadID == leadID {
			out = append(out, *fu)
		}
	}
	return out, nil
}

func (f *fakeStore) ListDuePending(_ context.Context, dueBefore time.Time) ([]domain.FollowUp, error) {
	var out []domain.FollowUp
	for _, fu := range f.items {
		if fu.Status == domain.StatusPending && !fu.DueDate.After(dueBefore) {
			out = append(out, *fu)
		}
	}
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, fu *domain.FollowUp) error {
	if _, ok := f.items[fu.ID]; !ok {
		return apperr.NotFound("followup not found")
	}
	copied := *fu
	f.items[fu.ID] = &copied
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.items[id]; !ok {
		return apperr.NotFound("followup not found")
	}
	delete(f.items, id)
	return nil
}

func newTestService(store *fakeStore) *Service {
	svc := New(store)
	now := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc
}

func TestCreateDefaultsToPending(t *testing.T) {
	svc := newTestService(newFakeStore())

	f, err := svc.Create(context.Background(), CreateInput{
		LeadID:  uuid.New(),
		Title:   "intro call",
		DueDate: time.Date(2026, 8, 28, 11, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if f.Status != domain.StatusPending {
		t.Fatalf("status = %q", f.Status)
	}
}

func TestCreateRequiresTitleAndDueDate(t *testing.T) {
	svc := newTestService(newFakeStore())

	if _, err := svc.Create(context.Background(), CreateInput{LeadID: uuid.New(), DueDate: time.Now()}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("missing title: %v", err)
	}
	if _, err := svc.Create(context.Background(), CreateInput{LeadID: uuid.New(), Title: "call"}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("missing due date: %v", err)
	}
}

func TestCompleteRemovesFromScannerPool(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	f, err := svc.Create(ctx, CreateInput{LeadID: uuid.New(), Title: "call", DueDate: time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Complete(ctx, f.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	// Completing again is harmless.
	if _, err := svc.Complete(ctx, f.ID); err != nil {
		t.Fatalf("re-complete: %v", err)
	}

	due, err := store.ListDuePending(ctx, time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	if len(due) != 0 {
		t.Fatalf("completed followup still due: %d", len(due))
	}
}

func TestRescheduleThenReopen(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	f, err := svc.Create(ctx, CreateInput{LeadID: uuid.New(), Title: "call", DueDate: time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newDue := time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC)
	moved, err := svc.Reschedule(ctx, f.ID, newDue, "pushed by customer")
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if moved.Status != domain.StatusRescheduled || !moved.DueDate.Equal(newDue) {
		t.Fatalf("rescheduled = %+v", moved)
	}

	due, _ := store.ListDuePending(ctx, time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC))
	if len(due) != 0 {
		t.Fatal("rescheduled followup must sit out of the pending pool")
	}

	reopened, err := svc.Reopen(ctx, f.ID)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Status != domain.StatusPending {
		t.Fatalf("status = %q", reopened.Status)
	}
	due, _ = store.ListDuePending(ctx, time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC))
	if len(due) != 1 {
		t.Fatalf("reopened followup missing from pending pool: %d", len(due))
	}
}
