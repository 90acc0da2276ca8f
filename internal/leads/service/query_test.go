package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"leadtrack_backend/internal/leads/domain"

	"github.com/google/uuid"
)

func seedLeads(store *fakeStore, n int, mutate func(i int, l *domain.Lead)) []domain.Lead {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	var seeded []domain.Lead
	for i := 0; i < n; i++ {
		l := domain.Lead{
			ID:        uuid.New(),
			LeadID:    fmt.Sprintf("LD-20260801-%04d", i),
			Name:      fmt.Sprintf("lead-%d", i),
			Status:    domain.StatusNew,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
			UpdatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if mutate != nil {
			mutate(i, &l)
		}
		store.leads[l.ID] = &l
		seeded = append(seeded, l)
	}
	return seeded
}

func TestQueryRecentWindowSlicesBeforePagination(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeBus{})
	seedLeads(store, 10, nil)

	from, to := 2, 5
	admin := domain.Actor{Name: "boss", Role: "admin"}

	for _, pg := range []struct{ page, limit int }{{1, 10}, {1, 2}, {2, 2}, {5, 1}} {
		res, err := svc.Query(context.Background(), admin, QueryParams{
			RecentCountFrom: &from,
			RecentCountTo:   &to,
			Page:            pg.page,
			Limit:           pg.limit,
		})
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if res.TotalCount != 3 {
			t.Fatalf("page=%d limit=%d: totalCount = %d, want 3", pg.page, pg.limit, res.TotalCount)
		}
		sum := 0
		for _, c := range res.StatusCounts {
			sum += c
		}
		if sum != 3 {
			t.Fatalf("page=%d limit=%d: statusCounts sum = %d, want 3", pg.page, pg.limit, sum)
		}
	}

	// Sorted newest-first, positions 2,3,4 are the leads created at hours 7,6,5.
	res, err := svc.Query(context.Background(), admin, QueryParams{
		RecentCountFrom: &from,
		RecentCountTo:   &to,
		Page:            1,
		Limit:           10,
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	want := []string{"lead-7", "lead-6", "lead-5"}
	if len(res.Leads) != len(want) {
		t.Fatalf("leads = %d, want %d", len(res.Leads), len(want))
	}
	for i, name := range want {
		if res.Leads[i].Name != name {
			t.Fatalf("position %d = %q, want %q", i, res.Leads[i].Name, name)
		}
	}
}

func TestQueryWithoutWindowPassesFullResultThrough(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeBus{})
	seedLeads(store, 7, nil)

	res, err := svc.Query(context.Background(), domain.Actor{Role: "admin"}, QueryParams{Page: 1, Limit: 3})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if res.TotalCount != 7 {
		t.Fatalf("totalCount = %d, want 7", res.TotalCount)
	}
	if res.TotalPages != 3 {
		t.Fatalf("totalPages = %d, want 3", res.TotalPages)
	}
	if len(res.Leads) != 3 {
		t.Fatalf("page size = %d, want 3", len(res.Leads))
	}
}

func TestQueryClampsPageAndLimit(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeBus{})
	seedLeads(store, 5, nil)
	admin := domain.Actor{Role: "admin"}

	res, err := svc.Query(context.Background(), admin, QueryParams{Page: 0, Limit: 0})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(res.Leads) != 5 {
		t.Fatalf("defaulted page should hold all 5 leads, got %d", len(res.Leads))
	}

	res, err = svc.Query(context.Background(), admin, QueryParams{Page: 99, Limit: 1000})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(res.Leads) != 0 {
		t.Fatalf("out-of-range page must be empty, got %d leads", len(res.Leads))
	}
	if res.TotalCount != 5 {
		t.Fatalf("totals are independent of the requested page, got %d", res.TotalCount)
	}
}

func TestQueryHistogramGivesReEnquiredPrecedence(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeBus{})
	seedLeads(store, 4, func(i int, l *domain.Lead) {
		if i%2 == 0 {
			l.Status = domain.StatusContacted
		}
		if i == 0 {
			l.ReEnquired = true
		}
	})

	res, err := svc.Query(context.Background(), domain.Actor{Role: "admin"}, QueryParams{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if res.StatusCounts[domain.StatusReEnquired] != 1 {
		t.Fatalf("re-enquired count = %d", res.StatusCounts[domain.StatusReEnquired])
	}
	if res.StatusCounts[domain.StatusContacted] != 1 {
		t.Fatalf("contacted count = %d, the re-enquired lead must not double-count", res.StatusCounts[domain.StatusContacted])
	}
	if res.StatusCounts[domain.StatusNew] != 2 {
		t.Fatalf("new count = %d", res.StatusCounts[domain.StatusNew])
	}
}

func TestQueryReEnquiredSentinelFiltersOnFlag(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeBus{})
	seedLeads(store, 6, func(i int, l *domain.Lead) {
		if i < 2 {
			l.ReEnquired = true
			l.Status = domain.StatusContacted
		}
	})

	res, err := svc.Query(context.Background(), domain.Actor{Role: "admin"}, QueryParams{Status: domain.StatusReEnquired})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if res.TotalCount != 2 {
		t.Fatalf("totalCount = %d, want the 2 re-enquired leads", res.TotalCount)
	}
}

func TestQuerySupportNeverSeesSalesLeads(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeBus{})
	seedLeads(store, 9, func(i int, l *domain.Lead) {
		switch i % 3 {
		case 0:
			l.PrimaryCategory = "sales"
		case 1:
			l.PrimaryCategory = "Support"
		}
	})

	support := domain.Actor{Name: "meera", Role: "support"}
	params := []QueryParams{
		{},
		{Status: domain.StatusNew},
		{Filters: DynamicFilters{Source: ""}},
		{Page: 1, Limit: 100},
	}
	for _, p := range params {
		res, err := svc.Query(context.Background(), support, p)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		for _, l := range res.Leads {
			if l.PrimaryCategory == "sales" {
				t.Fatalf("support actor received a sales lead: %s", l.LeadID)
			}
		}
		if res.TotalCount != 3 {
			t.Fatalf("support should see exactly its 3 leads, got %d", res.TotalCount)
		}
	}
}

func TestQueryScopeOverrideNarrowsAnActor(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeBus{})
	svc.scopes = &ScopeTable{overrides: map[string]ScopeOverride{
		"meera": {Actor: "meera", LeadOwner: "meera"},
	}}
	seedLeads(store, 4, func(i int, l *domain.Lead) {
		l.PrimaryCategory = "support"
		if i == 0 {
			l.LeadOwner = "meera"
		} else {
			l.LeadOwner = "arjun"
		}
	})

	res, err := svc.Query(context.Background(), domain.Actor{Name: "Meera", Role: "support"}, QueryParams{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if res.TotalCount != 1 {
		t.Fatalf("override should restrict to own leads, got %d", res.TotalCount)
	}

	// A colleague without an override still sees the whole department.
	res, err = svc.Query(context.Background(), domain.Actor{Name: "arjun", Role: "support"}, QueryParams{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if res.TotalCount != 4 {
		t.Fatalf("unrestricted colleague sees %d, want 4", res.TotalCount)
	}
}

func TestApplyRecentWindowBounds(t *testing.T) {
	leads := seedLeads(newFakeStore(), 4, nil)

	neg, big := -3, 99
	if got := applyRecentWindow(leads, &neg, nil); len(got) != 4 {
		t.Fatalf("negative from clamps to 0, got %d", len(got))
	}
	if got := applyRecentWindow(leads, nil, &big); len(got) != 4 {
		t.Fatalf("oversized to clamps to length, got %d", len(got))
	}
	three, one := 3, 1
	if got := applyRecentWindow(leads, &three, &one); len(got) != 0 {
		t.Fatalf("inverted range is empty, got %d", len(got))
	}
}
