// Package repository persists follow-ups in Postgres. Rows reference their
// lead with a cascading foreign key so deleting a lead removes its follow-ups.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadtrack_backend/internal/followups/domain"
	"leadtrack_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opInsert     = "followups.repository.insert"
	opGetByID    = "followups.repository.get_by_id"
	opListByLead = "followups.repository.list_by_lead"
	opListDue    = "followups.repository.list_due"
	opUpdate     = "followups.repository.update"
	opDelete     = "followups.repository.delete"

	errRepoNotConfigured = "followups repository not configured"

	pgForeignKeyViolation = "23503"
)

const followupColumns = `id, lead_id, title, due_date, status, notes, created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert stores a follow-up. A missing lead surfaces as apperr.NotFound.
func (r *Repository) Insert(ctx context.Context, f *domain.FollowUp) error {
	if r == nil || r.pool == nil {
		return apperr.Internal(errRepoNotConfigured).WithOp(opInsert)
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO followups (`+followupColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, f.ID, f.LeadID, f.Title, f.DueDate, f.Status, f.Notes, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return apperr.NotFound("lead not found").WithOp(opInsert)
		}
		return apperr.Internal(fmt.Sprintf("insert followup failed: %v", err)).WithOp(opInsert)
	}
	return nil
}

// GetByID loads one follow-up.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.FollowUp, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal(errRepoNotConfigured).WithOp(opGetByID)
	}

	row := r.pool.QueryRow(ctx, `SELECT `+followupColumns+` FROM followups WHERE id = $1`, id)
	f, err := scanFollowup(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("followup not found").WithOp(opGetByID)
		}
		return nil, apperr.Internal(fmt.Sprintf("get followup failed: %v", err)).WithOp(opGetByID)
	}
	return f, nil
}

// ListByLead returns a lead's follow-ups, soonest due first.
func (r *Repository) ListByLead(ctx context.Context, leadID uuid.UUID) ([]domain.FollowUp, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal(errRepoNotConfigured).WithOp(opListByLead)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+followupColumns+` FROM followups
		WHERE lead_id = $1
		ORDER BY due_date ASC
	`, leadID)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list followups failed: %v", err)).WithOp(opListByLead)
	}
	defer rows.Close()

	return collect(rows, opListByLead)
}

// ListDuePending returns every pending follow-up due at or before the cutoff.
// The followup scanner is the only caller.
func (r *Repository) ListDuePending(ctx context.Context, dueBefore time.Time) ([]domain.FollowUp, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal(errRepoNotConfigured).WithOp(opListDue)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+followupColumns+` FROM followups
		WHERE status = $1 AND due_date <= $2
		ORDER BY due_date ASC
	`, domain.StatusPending, dueBefore)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list due followups failed: %v", err)).WithOp(opListDue)
	}
	defer rows.Close()

	return collect(rows, opListDue)
}

// Update rewrites a follow-up's mutable fields.
func (r *Repository) Update(ctx context.Context, f *domain.FollowUp) error {
	if r == nil || r.pool == nil {
		return apperr.Internal(errRepoNotConfigured).WithOp(opUpdate)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE followups SET title = $1, due_date = $2, status = $3, notes = $4, updated_at = $5
		WHERE id = $6
	`, f.Title, f.DueDate, f.Status, f.Notes, f.UpdatedAt, f.ID)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("update followup failed: %v", err)).WithOp(opUpdate)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("followup not found").WithOp(opUpdate)
	}
	return nil
}

// Delete removes one follow-up.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	if r == nil || r.pool == nil {
		return apperr.Internal(errRepoNotConfigured).WithOp(opDelete)
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM followups WHERE id = $1`, id)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("delete followup failed: %v", err)).WithOp(opDelete)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("followup not found").WithOp(opDelete)
	}
	return nil
}

func collect(rows pgx.Rows, op string) ([]domain.FollowUp, error) {
	var out []domain.FollowUp
	for rows.Next() {
		f, err := scanFollowup(rows)
		if err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan followup failed: %v", err)).WithOp(op)
		}
		out = append(out, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate followups failed: %v", err)).WithOp(op)
	}
	return out, nil
}

type followupRowScanner interface {
	Scan(dest ...any) error
}

func scanFollowup(s followupRowScanner) (*domain.FollowUp, error) {
	var f domain.FollowUp
	if err := s.Scan(&f.ID, &f.LeadID, &f.Title, &f.DueDate, &f.Status, &f.Notes, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}
