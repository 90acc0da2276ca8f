// Package repository persists notification records in Postgres.
package repository

import (
	"context"
	"fmt"

	"leadtrack_backend/internal/notification/dispatcher"
	"leadtrack_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opInsert = "notification.repository.insert"
	opRetire = "notification.repository.retire_by_cause"
	opExists = "notification.repository.exists_by_cause"
	opList   = "notification.repository.list_visible"

	errRepoNotConfigured = "notification repository not configured"
)

// listVisibleScopedQuery restricts non-admin callers to notifications of
// their own department plus uncategorized ones.
const listVisibleScopedQuery = `
	SELECT id, subject_id, subject_name, message, type, primary_category, secondary_category, cause_key, created_at, expiry
	FROM notifications
	WHERE LOWER(primary_category) = LOWER($1) OR primary_category = ''
	ORDER BY created_at DESC
	LIMIT $2 OFFSET $3
`

const listVisibleAllQuery = `
	SELECT id, subject_id, subject_name, message, type, primary_category, secondary_category, cause_key, created_at, expiry
	FROM notifications
	ORDER BY created_at DESC
	LIMIT $1 OFFSET $2
`

// VisibilityParams scope a notification list to the calling actor.
type VisibilityParams struct {
	All      bool   // admin tier: no category restriction
	Category string // department for scoped callers
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Insert(ctx context.Context, n dispatcher.Notification) (dispatcher.Notification, error) {
	if r == nil || r.pool == nil {
		return dispatcher.Notification{}, apperr.Internal(errRepoNotConfigured).WithOp(opInsert)
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications
		(id, subject_id, subject_name, message, type, primary_category, secondary_category, cause_key, created_at, expiry)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, n.ID, n.SubjectID, n.SubjectName, n.Message, n.Type, n.PrimaryCategory, n.SecondaryCategory, n.CauseKey, n.CreatedAt, n.Expiry)
	if err != nil {
		return dispatcher.Notification{}, apperr.Internal(fmt.Sprintf("insert notification failed: %v", err)).WithOp(opInsert)
	}

	return n, nil
}

func (r *Repository) RetireByCause(ctx context.Context, subjectID *uuid.UUID, types []string, causeKey string) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, apperr.Internal(errRepoNotConfigured).WithOp(opRetire)
	}
	if len(types) == 0 {
		return 0, nil
	}

	tag, err := r.pool.Exec(ctx, `
		DELETE FROM notifications
		WHERE subject_id IS NOT DISTINCT FROM $1 AND type = ANY($2) AND cause_key = $3
	`, subjectID, types, causeKey)
	if err != nil {
		return 0, apperr.Internal(fmt.Sprintf("retire notifications failed: %v", err)).WithOp(opRetire)
	}

	return tag.RowsAffected(), nil
}

func (r *Repository) ExistsByCause(ctx context.Context, subjectID *uuid.UUID, typ, causeKey string) (bool, error) {
	if r == nil || r.pool == nil {
		return false, apperr.Internal(errRepoNotConfigured).WithOp(opExists)
	}

	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE subject_id IS NOT DISTINCT FROM $1 AND type = $2 AND cause_key = $3
		)
	`, subjectID, typ, causeKey).Scan(&exists)
	if err != nil {
		return false, apperr.Internal(fmt.Sprintf("exists notification failed: %v", err)).WithOp(opExists)
	}

	return exists, nil
}

// ListVisible returns notifications newest first, scoped to the caller.
func (r *Repository) ListVisible(ctx context.Context, scope VisibilityParams, limit, offset int) ([]dispatcher.Notification, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal(errRepoNotConfigured).WithOp(opList)
	}

	query := listVisibleScopedQuery
	args := []any{scope.Category, limit, offset}
	if scope.All {
		query = listVisibleAllQuery
		args = []any{limit, offset}
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list notifications failed: %v", err)).WithOp(opList)
	}
	defer rows.Close()

	items := make([]dispatcher.Notification, 0, limit)
	for rows.Next() {
		var n dispatcher.Notification
		if scanErr := rows.Scan(
			&n.ID, &n.SubjectID, &n.SubjectName, &n.Message, &n.Type,
			&n.PrimaryCategory, &n.SecondaryCategory, &n.CauseKey, &n.CreatedAt, &n.Expiry,
		); scanErr != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan notification failed: %v", scanErr)).WithOp(opList)
		}
		items = append(items, n)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate notifications failed: %v", rowsErr)).WithOp(opList)
	}

	return items, nil
}

var _ dispatcher.Store = (*Repository)(nil)
