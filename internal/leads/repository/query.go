package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"leadtrack_backend/internal/leads/domain"
	"leadtrack_backend/platform/apperr"
)

const opList = "leads.repository.list"

// Filter is the fully-composed predicate for a lead query: the role-derived
// visibility restriction plus the client-supplied dynamic filters. Zero
// values contribute no predicate.
type Filter struct {
	// Visibility (derived from the actor, never from client input).
	AllCategories     bool   // admin tier: categorized and uncategorized alike
	PrimaryCategory   string // department scope, case-insensitive equality
	SecondaryCategory string // scope-override restriction
	LeadOwner         string // scope-override restriction

	// Status. ReEnquiredOnly replaces the status predicate for the
	// "Re-enquired" sentinel, which is never stored literally.
	Status         string
	ReEnquiredOnly bool

	// Dynamic filters.
	FilterSecondaryCategory string
	FilterLeadOwner         string
	Source                  string
	Untouched               bool
	UntouchedThreshold      time.Duration
	CreatedFrom             *time.Time
	CreatedTo               *time.Time
	UpdatedFrom             *time.Time
	UpdatedTo               *time.Time
	ReEnquiredFrom          *time.Time
	ReEnquiredTo            *time.Time
	AgeMinDays              *int
	AgeMaxDays              *int

	// Now anchors the lead-age range; injected for testability.
	Now time.Time
}

// buildLeadQuery renders the filter into SQL. The sort is fixed newest-first
// and there is deliberately no LIMIT: the recent-window slice and pagination
// are applied by the service after the fetch.
func buildLeadQuery(f Filter) (string, []any) {
	var clauses []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !f.AllCategories {
		clauses = append(clauses, "LOWER(primarycategory) = LOWER("+arg(f.PrimaryCategory)+")")
	}
	if f.SecondaryCategory != "" {
		clauses = append(clauses, "LOWER(secondarycategory) = LOWER("+arg(f.SecondaryCategory)+")")
	}
	if f.LeadOwner != "" {
		clauses = append(clauses, "LOWER(leadowner) = LOWER("+arg(f.LeadOwner)+")")
	}

	if f.ReEnquiredOnly {
		clauses = append(clauses, "re_enquired = TRUE")
	} else if f.Status != "" {
		clauses = append(clauses, "status = "+arg(f.Status))
	}

	if f.FilterSecondaryCategory != "" {
		clauses = append(clauses, "secondarycategory = "+arg(f.FilterSecondaryCategory))
	}
	if f.FilterLeadOwner != "" {
		clauses = append(clauses, "leadowner = "+arg(f.FilterLeadOwner))
	}
	if f.Source != "" {
		clauses = append(clauses, "source = "+arg(f.Source))
	}

	if f.Untouched {
		seconds := f.UntouchedThreshold.Seconds()
		clauses = append(clauses, "ABS(EXTRACT(EPOCH FROM (updated_at - created_at))) <= "+arg(seconds))
	}

	if f.CreatedFrom != nil {
		clauses = append(clauses, "created_at >= "+arg(*f.CreatedFrom))
	}
	if f.CreatedTo != nil {
		clauses = append(clauses, "created_at <= "+arg(*f.CreatedTo))
	}
	if f.UpdatedFrom != nil {
		clauses = append(clauses, "updated_at >= "+arg(*f.UpdatedFrom))
	}
	if f.UpdatedTo != nil {
		clauses = append(clauses, "updated_at <= "+arg(*f.UpdatedTo))
	}

	if f.ReEnquiredFrom != nil || f.ReEnquiredTo != nil {
		// A re-enquired date range only makes sense for re-enquired leads.
		clauses = append(clauses, "re_enquired = TRUE")
		if f.ReEnquiredFrom != nil {
			clauses = append(clauses, "re_enquired_at >= "+arg(*f.ReEnquiredFrom))
		}
		if f.ReEnquiredTo != nil {
			clauses = append(clauses, "re_enquired_at <= "+arg(*f.ReEnquiredTo))
		}
	}

	if f.AgeMinDays != nil {
		cutoff := f.Now.AddDate(0, 0, -*f.AgeMinDays)
		clauses = append(clauses, "created_at <= "+arg(cutoff))
	}
	if f.AgeMaxDays != nil {
		cutoff := f.Now.AddDate(0, 0, -*f.AgeMaxDays)
		clauses = append(clauses, "created_at >= "+arg(cutoff))
	}

	query := "SELECT " + leadColumns + " FROM leads"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC"

	return query, args
}

// List executes the composed filter with the fixed newest-first sort.
func (r *Repository) List(ctx context.Context, f Filter) ([]domain.Lead, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal(errRepoNotConfigured).WithOp(opList)
	}

	query, args := buildLeadQuery(f)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list leads failed: %v", err)).WithOp(opList)
	}
	defer rows.Close()

	var leads []domain.Lead
	for rows.Next() {
		lead, scanErr := scanLead(rows)
		if scanErr != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan lead failed: %v", scanErr)).WithOp(opList)
		}
		leads = append(leads, *lead)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate leads failed: %v", rowsErr)).WithOp(opList)
	}

	return leads, nil
}

// StaleRule selects one of the inactivity staleness predicates.
type StaleRule int

const (
	// StaleUnassigned matches new leads with no category at all.
	StaleUnassigned StaleRule = iota
	// StaleAssigned matches new leads that have a department but stalled.
	StaleAssigned
)

const staleUnassignedQuery = `
	SELECT ` + leadColumns + `
	FROM leads
	WHERE status = 'New' AND primarycategory = '' AND secondarycategory = '' AND updated_at <= $1
	ORDER BY updated_at ASC
`

const staleAssignedQuery = `
	SELECT ` + leadColumns + `
	FROM leads
	WHERE status = 'New' AND primarycategory <> '' AND updated_at <= $1
	ORDER BY updated_at ASC
`

// ListStale returns leads matching the given inactivity rule at the cutoff.
func (r *Repository) ListStale(ctx context.Context, rule StaleRule, cutoff time.Time) ([]domain.Lead, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal(errRepoNotConfigured).WithOp(opListStale)
	}

	query := staleUnassignedQuery
	if rule == StaleAssigned {
		query = staleAssignedQuery
	}

	rows, err := r.pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list stale leads failed: %v", err)).WithOp(opListStale)
	}
	defer rows.Close()

	var leads []domain.Lead
	for rows.Next() {
		lead, scanErr := scanLead(rows)
		if scanErr != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan stale lead failed: %v", scanErr)).WithOp(opListStale)
		}
		leads = append(leads, *lead)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate stale leads failed: %v", rowsErr)).WithOp(opListStale)
	}

	return leads, nil
}
