package config

import "strings"

// DefaultAdminRoles is used when ADMIN_ROLES is empty
var DefaultAdminRoles = AdminRoles{"admin", "superadmin"}

// AdminRoles are the token roles allowed to manage redirect rules, markers and roles.
// Matching is case-insensitive.
type AdminRoles []string

// ParseAdminRoles reads a comma-separated ADMIN_ROLES value.
func ParseAdminRoles(value string) AdminRoles {
	roles := SplitList(value)
	if len(roles) == 0 {
		return append(AdminRoles(nil), DefaultAdminRoles...)
	}
	return AdminRoles(roles)
}

func (a AdminRoles) Contains(role string) bool {
	for _, admin := range a {
		if strings.EqualFold(admin, role) {
			return true
		}
	}
	return false
}

// AnyOf reports whether any of userRoles is an admin role.
func (a AdminRoles) AnyOf(userRoles []string) bool {
	for _, role := range userRoles {
		if a.Contains(role) {
			return true
		}
	}
	return false
}

// Primary is the role tokengen puts in freshly minted admin tokens.
func (a AdminRoles) Primary() string {
	if len(a) == 0 {
		return DefaultAdminRoles[0]
	}
	return a[0]
}
