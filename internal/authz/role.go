// Package authz holds the role hierarchy, the compact claim codec, the
// credential model, and the access decision engine. Everything here is pure:
// no I/O, no shared state, safe for concurrent use.
package authz

import (
	"errors"
	"fmt"
)

// Role is a position in the per-organization role hierarchy. Roles form a
// strict total order: Member < Moderator < Admin < President. Global access
// is not a role; it is a flag on the Credential.
type Role int

const (
	RoleMember Role = iota + 1
	RoleModerator
	RoleAdmin
	RolePresident
)

// ErrUnknownRole is returned when a role name or code is outside the fixed set.
var ErrUnknownRole = errors.New("unknown role")

// Level returns the numeric level of r. Higher level means more authority.
// Returns 0 for a Role outside the fixed set.
func Level(r Role) int {
	if r < RoleMember || r > RolePresident {
		return 0
	}
	return int(r)
}

// AtLeast reports whether r satisfies required, i.e. Level(r) >= Level(required).
func AtLeast(r, required Role) bool {
	return Level(r) >= Level(required)
}

// String returns the persistence name of the role ("member", "moderator",
// "admin", "president"), or "unknown" for values outside the set.
func (r Role) String() string {
	switch r {
	case RoleMember:
		return "member"
	case RoleModerator:
		return "moderator"
	case RoleAdmin:
		return "admin"
	case RolePresident:
		return "president"
	default:
		return "unknown"
	}
}

// ParseRole maps a persistence name back to a Role. Returns ErrUnknownRole
// for anything outside the fixed set.
func ParseRole(s string) (Role, error) {
	switch s {
	case "member":
		return RoleMember, nil
	case "moderator":
		return RoleModerator, nil
	case "admin":
		return RoleAdmin, nil
	case "president":
		return RolePresident, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}
