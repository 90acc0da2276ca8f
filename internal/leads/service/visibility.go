package service

import (
	"fmt"
	"os"
	"strings"

	"leadtrack_backend/internal/leads/domain"
	"leadtrack_backend/internal/leads/repository"

	"gopkg.in/yaml.v3"
)

// ScopeOverride narrows a specific actor's visibility beyond their department
// scope. Blank fields impose no extra restriction.
type ScopeOverride struct {
	Actor             string `yaml:"actor"`
	SecondaryCategory string `yaml:"secondarycategory"`
	LeadOwner         string `yaml:"leadowner"`
}

type scopeFile struct {
	Overrides []ScopeOverride `yaml:"overrides"`
}

// ScopeTable maps actor names (case-insensitive) to their override. New
// special cases are added to the overrides file, not to code.
type ScopeTable struct {
	overrides map[string]ScopeOverride
}

// LoadScopeTable reads the YAML overrides file. An empty path yields an empty
// table, which is the common deployment.
func LoadScopeTable(path string) (*ScopeTable, error) {
	table := &ScopeTable{overrides: map[string]ScopeOverride{}}
	if path == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scope overrides: %w", err)
	}

	var file scopeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse scope overrides: %w", err)
	}

	for _, o := range file.Overrides {
		table.overrides[strings.ToLower(strings.TrimSpace(o.Actor))] = o
	}
	return table, nil
}

// Lookup returns the override for an actor name, if any.
func (t *ScopeTable) Lookup(actorName string) (ScopeOverride, bool) {
	if t == nil {
		return ScopeOverride{}, false
	}
	o, ok := t.overrides[strings.ToLower(strings.TrimSpace(actorName))]
	return o, ok
}

// visibilityFilter derives the row-level restriction from the actor alone.
// Admin tiers see everything; department roles see their own primary category
// (plus uncategorized leads stays admin-only); scope overrides narrow further.
func visibilityFilter(actor domain.Actor, scopes *ScopeTable) repository.Filter {
	var f repository.Filter
	if domain.IsAdminTier(actor.Role) {
		f.AllCategories = true
	} else {
		f.PrimaryCategory = actor.Role
	}

	if o, ok := scopes.Lookup(actor.Name); ok {
		f.SecondaryCategory = o.SecondaryCategory
		f.LeadOwner = o.LeadOwner
	}

	return f
}
