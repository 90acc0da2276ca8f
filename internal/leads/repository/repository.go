// Package repository persists leads in Postgres. Audit and transfer trails
// live inside the lead row as JSONB so the field mutation and its audit
// append commit as one atomic conditional replace.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"leadtrack_backend/internal/leads/domain"
	"leadtrack_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opInsert      = "leads.repository.insert"
	opGetByID     = "leads.repository.get_by_id"
	opGetByLeadID = "leads.repository.get_by_lead_id"
	opReplace     = "leads.repository.replace"
	opDelete      = "leads.repository.delete"
	opReEnquiry   = "leads.repository.re_enquiry_match"
	opListStale   = "leads.repository.list_stale"

	errRepoNotConfigured = "leads repository not configured"

	pgUniqueViolation = "23505"
)

const leadColumns = `id, lead_id, name, email, contact, whatsapp, source, status,
	primarycategory, secondarycategory, leadowner, remarks,
	re_enquired, re_enquired_at, updatelogs, transferredtologs,
	version, created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert stores a new lead. A duplicate business identifier surfaces as
// apperr.Conflict so the service can retry with a fresh one.
func (r *Repository) Insert(ctx context.Context, lead *domain.Lead) error {
	if r == nil || r.pool == nil {
		return apperr.Internal(errRepoNotConfigured).WithOp(opInsert)
	}

	updateLogs, transferLogs, err := marshalLogs(lead)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("marshal logs failed: %v", err)).WithOp(opInsert)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO leads (`+leadColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`,
		lead.ID, lead.LeadID, lead.Name, lead.Email, lead.Contact, lead.Whatsapp, lead.Source, lead.Status,
		lead.PrimaryCategory, lead.SecondaryCategory, lead.LeadOwner, lead.Remarks,
		lead.ReEnquired, lead.ReEnquiredAt, updateLogs, transferLogs,
		lead.Version, lead.CreatedAt, lead.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperr.Conflict("lead identifier already exists").WithOp(opInsert)
		}
		return apperr.Internal(fmt.Sprintf("insert lead failed: %v", err)).WithOp(opInsert)
	}

	return nil
}

// GetByLeadID loads a lead by its business identifier.
func (r *Repository) GetByLeadID(ctx context.Context, leadID string) (*domain.Lead, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal(errRepoNotConfigured).WithOp(opGetByLeadID)
	}

	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE lead_id = $1`, leadID)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("lead not found").WithOp(opGetByLeadID)
		}
		return nil, apperr.Internal(fmt.Sprintf("get lead failed: %v", err)).WithOp(opGetByLeadID)
	}

	return lead, nil
}

// GetByID loads a lead by its internal identity.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal(errRepoNotConfigured).WithOp(opGetByID)
	}

	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("lead not found").WithOp(opGetByID)
		}
		return nil, apperr.Internal(fmt.Sprintf("get lead failed: %v", err)).WithOp(opGetByID)
	}

	return lead, nil
}

// Replace performs the conditional full-document replace: it only succeeds
// when the stored version still matches lead.Version, then bumps it. A stale
// version surfaces as apperr.Conflict so one of two racing writers fails
// instead of silently losing an audit entry.
func (r *Repository) Replace(ctx context.Context, lead *domain.Lead) error {
	if r == nil || r.pool == nil {
		return apperr.Internal(errRepoNotConfigured).WithOp(opReplace)
	}

	updateLogs, transferLogs, err := marshalLogs(lead)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("marshal logs failed: %v", err)).WithOp(opReplace)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET
			name = $1, email = $2, contact = $3, whatsapp = $4, source = $5, status = $6,
			primarycategory = $7, secondarycategory = $8, leadowner = $9, remarks = $10,
			re_enquired = $11, re_enquired_at = $12, updatelogs = $13, transferredtologs = $14,
			version = version + 1, updated_at = $15
		WHERE id = $16 AND version = $17
	`,
		lead.Name, lead.Email, lead.Contact, lead.Whatsapp, lead.Source, lead.Status,
		lead.PrimaryCategory, lead.SecondaryCategory, lead.LeadOwner, lead.Remarks,
		lead.ReEnquired, lead.ReEnquiredAt, updateLogs, transferLogs,
		lead.UpdatedAt, lead.ID, lead.Version,
	)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("replace lead failed: %v", err)).WithOp(opReplace)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("lead was modified concurrently").WithOp(opReplace)
	}

	lead.Version++
	return nil
}

// Delete removes a lead. Dependent follow-ups cascade at the schema level.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	if r == nil || r.pool == nil {
		return apperr.Internal(errRepoNotConfigured).WithOp(opDelete)
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("delete lead failed: %v", err)).WithOp(opDelete)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("lead not found").WithOp(opDelete)
	}

	return nil
}

// HasReEnquiryMatch reports whether an existing lead already carries one of
// the given contact points. Blank values never match.
func (r *Repository) HasReEnquiryMatch(ctx context.Context, contact, email, whatsapp string) (bool, error) {
	if r == nil || r.pool == nil {
		return false, apperr.Internal(errRepoNotConfigured).WithOp(opReEnquiry)
	}

	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM leads
			WHERE ($1 <> '' AND contact = $1)
			   OR ($2 <> '' AND email = $2)
			   OR ($3 <> '' AND whatsapp = $3)
		)
	`, contact, email, whatsapp).Scan(&exists)
	if err != nil {
		return false, apperr.Internal(fmt.Sprintf("re-enquiry match failed: %v", err)).WithOp(opReEnquiry)
	}

	return exists, nil
}

func marshalLogs(lead *domain.Lead) ([]byte, []byte, error) {
	updateLogs := lead.UpdateLogs
	if updateLogs == nil {
		updateLogs = []domain.AuditEntry{}
	}
	transferLogs := lead.TransferLogs
	if transferLogs == nil {
		transferLogs = []domain.TransferLogEntry{}
	}

	updateJSON, err := json.Marshal(updateLogs)
	if err != nil {
		return nil, nil, err
	}
	transferJSON, err := json.Marshal(transferLogs)
	if err != nil {
		return nil, nil, err
	}
	return updateJSON, transferJSON, nil
}

// leadRowScanner is satisfied by pgx.Rows and pgx.Row so scanLead can be
// shared between single-row and multi-row queries.
type leadRowScanner interface {
	Scan(dest ...any) error
}

func scanLead(s leadRowScanner) (*domain.Lead, error) {
	var lead domain.Lead
	var updateLogs, transferLogs []byte

	if err := s.Scan(
		&lead.ID, &lead.LeadID, &lead.Name, &lead.Email, &lead.Contact, &lead.Whatsapp, &lead.Source, &lead.Status,
		&lead.PrimaryCategory, &lead.SecondaryCategory, &lead.LeadOwner, &lead.Remarks,
		&lead.ReEnquired, &lead.ReEnquiredAt, &updateLogs, &transferLogs,
		&lead.Version, &lead.CreatedAt, &lead.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if len(updateLogs) > 0 {
		_ = json.Unmarshal(updateLogs, &lead.UpdateLogs)
	}
	if len(transferLogs) > 0 {
		_ = json.Unmarshal(transferLogs, &lead.TransferLogs)
	}

	return &lead, nil
}
