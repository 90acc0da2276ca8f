package service

import (
	"context"
	"time"

	"leadtrack_backend/internal/leads/domain"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// DynamicFilters is the open client-supplied filter object. Zero values
// contribute no predicate.
type DynamicFilters struct {
	SecondaryCategory string
	LeadOwner         string
	Source            string
	Untouched         bool
	CreatedFrom       *time.Time
	CreatedTo         *time.Time
	UpdatedFrom       *time.Time
	UpdatedTo         *time.Time
	ReEnquiredFrom    *time.Time
	ReEnquiredTo      *time.Time
	AgeMinDays        *int
	AgeMaxDays        *int
}

// QueryParams is the full read request.
type QueryParams struct {
	Status  string
	Filters DynamicFilters
	// RecentCountFrom/To select a half-open index range [from, to) over the
	// sorted fetch, before pagination. Nil means the respective default
	// (0 and length).
	RecentCountFrom *int
	RecentCountTo   *int
	Page            int
	Limit           int
}

// QueryResult is the paginated answer. StatusCounts and TotalCount describe
// the recent-window slice, not the full fetch and not the current page.
type QueryResult struct {
	Leads        []domain.Lead  `json:"leads"`
	StatusCounts map[string]int `json:"statusCounts"`
	TotalCount   int            `json:"totalCount"`
	TotalPages   int            `json:"totalPages"`
}

// Query answers a role-scoped, filtered, paginated lead query.
//
// The pipeline is: predicate fetch sorted newest-first, then the recent-window
// slice, then the histogram over the windowed set, then pagination over the
// same windowed set. The window is an index range over the sorted result, not
// a query predicate, so it must be applied after the fetch.
func (s *Service) Query(ctx context.Context, actor domain.Actor, p QueryParams) (QueryResult, error) {
	f := visibilityFilter(actor, s.scopes)

	if p.Status == domain.StatusReEnquired {
		f.ReEnquiredOnly = true
	} else {
		f.Status = p.Status
	}

	f.FilterSecondaryCategory = p.Filters.SecondaryCategory
	f.FilterLeadOwner = p.Filters.LeadOwner
	f.Source = p.Filters.Source
	f.Untouched = p.Filters.Untouched
	f.UntouchedThreshold = s.cfg.GetUntouchedThreshold()
	f.CreatedFrom = p.Filters.CreatedFrom
	f.CreatedTo = p.Filters.CreatedTo
	f.UpdatedFrom = p.Filters.UpdatedFrom
	f.UpdatedTo = p.Filters.UpdatedTo
	f.ReEnquiredFrom = p.Filters.ReEnquiredFrom
	f.ReEnquiredTo = p.Filters.ReEnquiredTo
	f.AgeMinDays = p.Filters.AgeMinDays
	f.AgeMaxDays = p.Filters.AgeMaxDays
	f.Now = s.now()

	leads, err := s.store.List(ctx, f)
	if err != nil {
		return QueryResult{}, err
	}

	windowed := applyRecentWindow(leads, p.RecentCountFrom, p.RecentCountTo)

	limit := p.Limit
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	page := p.Page
	if page < 1 {
		page = 1
	}

	total := len(windowed)
	totalPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	pageSlice := windowed[start:end]
	if pageSlice == nil {
		pageSlice = []domain.Lead{}
	}

	return QueryResult{
		Leads:        pageSlice,
		StatusCounts: statusHistogram(windowed),
		TotalCount:   total,
		TotalPages:   totalPages,
	}, nil
}

// applyRecentWindow slices the half-open index range [from, to) over the
// already-sorted result. With neither bound supplied the result passes
// through unchanged.
func applyRecentWindow(leads []domain.Lead, from, to *int) []domain.Lead {
	if from == nil && to == nil {
		return leads
	}

	start := 0
	if from != nil {
		start = clampIndex(*from, len(leads))
	}
	end := len(leads)
	if to != nil {
		end = clampIndex(*to, len(leads))
	}
	if start > end {
		return []domain.Lead{}
	}
	return leads[start:end]
}

func clampIndex(i, length int) int {
	if i < 0 {
		return 0
	}
	if i > length {
		return length
	}
	return i
}

// statusHistogram tallies status labels over the windowed set. A re-enquired
// lead counts under the sentinel label regardless of its stored status.
func statusHistogram(leads []domain.Lead) map[string]int {
	counts := make(map[string]int)
	for _, l := range leads {
		label := l.Status
		if l.ReEnquired {
			label = domain.StatusReEnquired
		}
		counts[label]++
	}
	return counts
}
