package enums

import (
	"fmt"
	"strings"
)

// Role represents the account role snapshot carried by users and sessions.
type Role string

const (
	RoleUser             Role = "USER"
	RoleVendor           Role = "VENDOR"
	RoleStateContributor Role = "STATE_CONTRIBUTOR"
	RoleAdmin            Role = "ADMIN"
	RoleSuperAdmin       Role = "SUPER_ADMIN"
)

var validRoles = []Role{
	RoleUser,
	RoleVendor,
	RoleStateContributor,
	RoleAdmin,
	RoleSuperAdmin,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// Equals compares roles case-insensitively. Session rows written by older
// deployments carried mixed-case role values.
func (r Role) Equals(other Role) bool {
	return strings.EqualFold(string(r), string(other))
}

// ParseRole converts raw input into a Role, accepting any casing.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if strings.EqualFold(string(candidate), value) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
