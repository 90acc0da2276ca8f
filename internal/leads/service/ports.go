package service

import (
	"context"
	"time"

	"leadtrack_backend/internal/leads/domain"
	"leadtrack_backend/internal/leads/repository"

	"github.com/google/uuid"
)

// Store is the persistence surface the lead service depends on. The Postgres
// repository satisfies it; tests substitute an in-memory fake.
type Store interface {
	Insert(ctx context.Context, lead *domain.Lead) error
	GetByLeadID(ctx context.Context, leadID string) (*domain.Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Lead, error)
	Replace(ctx context.Context, lead *domain.Lead) error
	Delete(ctx context.Context, id uuid.UUID) error
	HasReEnquiryMatch(ctx context.Context, contact, email, whatsapp string) (bool, error)
	List(ctx context.Context, f repository.Filter) ([]domain.Lead, error)
	ListStale(ctx context.Context, rule repository.StaleRule, cutoff time.Time) ([]domain.Lead, error)
}

var _ Store = (*repository.Repository)(nil)
