// Package service implements follow-up scheduling: create, complete,
// reschedule, and the queries the followup scanner relies on.
package service

import (
	"context"
	"strings"
	"time"

	"leadtrack_backend/internal/followups/domain"
	"leadtrack_backend/platform/apperr"

	"github.com/google/uuid"
)

const (
	opCreate     = "followups.service.create"
	opComplete   = "followups.service.complete"
	opReschedule = "followups.service.reschedule"
)

// Store is the persistence surface the follow-up service depends on.
type Store interface {
	Insert(ctx context.Context, f *domain.FollowUp) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.FollowUp, error)
	ListByLead(ctx context.Context, leadID uuid.UUID) ([]domain.FollowUp, error)
	ListDuePending(ctx context.Context, dueBefore time.Time) ([]domain.FollowUp, error)
	Update(ctx context.Context, f *domain.FollowUp) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	store Store
	now   func() time.Time
}

func New(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// CreateInput describes a new follow-up.
type CreateInput struct {
	LeadID  uuid.UUID
	Title   string
	DueDate time.Time
	Notes   string
}

// Create schedules a follow-up on a lead, pending by default.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.FollowUp, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperr.Validation("followup title is required").WithOp(opCreate)
	}
	if in.DueDate.IsZero() {
		return nil, apperr.Validation("followup due date is required").WithOp(opCreate)
	}

	now := s.now()
	f := &domain.FollowUp{
		ID:        uuid.New(),
		LeadID:    in.LeadID,
		Title:     strings.TrimSpace(in.Title),
		DueDate:   in.DueDate,
		Status:    domain.StatusPending,
		Notes:     strings.TrimSpace(in.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Insert(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Complete marks a follow-up done. Completing twice is a no-op.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*domain.FollowUp, error) {
	f, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.Status == domain.StatusCompleted {
		return f, nil
	}

	f.Status = domain.StatusCompleted
	f.UpdatedAt = s.now()
	if err := s.store.Update(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Reschedule moves a follow-up to a new due date and reopens it for the
// scanner under the Rescheduled status.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, dueDate time.Time, notes string) (*domain.FollowUp, error) {
	if dueDate.IsZero() {
		return nil, apperr.Validation("a new due date is required").WithOp(opReschedule)
	}

	f, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	f.DueDate = dueDate
	f.Status = domain.StatusRescheduled
	if trimmed := strings.TrimSpace(notes); trimmed != "" {
		f.Notes = trimmed
	}
	f.UpdatedAt = s.now()
	if err := s.store.Update(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Reopen flips a rescheduled follow-up back to pending so the scanner picks
// it up again.
func (s *Service) Reopen(ctx context.Context, id uuid.UUID) (*domain.FollowUp, error) {
	f, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.Status == domain.StatusPending {
		return f, nil
	}

	f.Status = domain.StatusPending
	f.UpdatedAt = s.now()
	if err := s.store.Update(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// ListByLead returns a lead's follow-ups, soonest due first.
func (s *Service) ListByLead(ctx context.Context, leadID uuid.UUID) ([]domain.FollowUp, error) {
	return s.store.ListByLead(ctx, leadID)
}

// Delete removes a follow-up.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}
