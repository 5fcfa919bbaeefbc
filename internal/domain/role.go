package domain

import "fmt"

// Role is the closed set of dashboard roles. Wire strings cross into the enum
// through ParseRole and leave through String; nothing else compares raw role
// strings. Adding a constant here is the extension point for new roles.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

// ParseRole translates a wire string into a Role. Unknown strings fail at the
// boundary instead of propagating.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleClient:
		return RoleClient, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string { return string(r) }

// DashboardPath is the root of the area a role lands on after sign-in.
func (r Role) DashboardPath() string {
	switch r {
	case RoleAdmin:
		return "/admin"
	default:
		return "/dashboard"
	}
}
