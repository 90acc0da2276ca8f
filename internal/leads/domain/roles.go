package domain

import "strings"

// Admin-tier roles see every lead, categorized or not. Department roles are
// scoped to the primary category matching their role name.
var adminRoles = map[string]struct{}{
	"admin":      {},
	"superadmin": {},
}

// IsAdminTier reports whether the role has unrestricted visibility.
func IsAdminTier(role string) bool {
	_, ok := adminRoles[strings.ToLower(strings.TrimSpace(role))]
	return ok
}
