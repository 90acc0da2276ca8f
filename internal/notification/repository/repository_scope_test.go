package repository

import (
	"strings"
	"testing"
)

func TestListVisibleScopedQueryRestrictsByCategory(t *testing.T) {
	query := strings.ToLower(listVisibleScopedQuery)

	requiredFragments := []string{
		"from notifications",
		"lower(primary_category) = lower($1)",
		"or primary_category = ''",
		"order by created_at desc",
	}

	for _, fragment := range requiredFragments {
		if !strings.Contains(query, fragment) {
			t.Fatalf("expected scoped query fragment %q to be present", fragment)
		}
	}
}

func TestListVisibleAllQueryHasNoCategoryRestriction(t *testing.T) {
	query := strings.ToLower(listVisibleAllQuery)

	if strings.Contains(query, "primary_category =") || strings.Contains(query, "lower(primary_category)") {
		t.Fatal("admin list query should not restrict by category")
	}
}
