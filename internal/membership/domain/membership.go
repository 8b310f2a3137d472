package domain

import (
	"time"

	"orghub/backend/internal/authz"
)

// Membership links a user to an organization with a role. A user holds at
// most one membership per organization. Unverified memberships are visible to
// their owner but never satisfy an authorization check and are never encoded
// into a credential.
type Membership struct {
	ID        string
	UserID    string
	OrgID     int64
	Role      authz.Role
	Verified  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ChangeKind names a membership mutation for the change event stream.
type ChangeKind string

const (
	ChangeEnrolled    ChangeKind = "enrolled"
	ChangeVerified    ChangeKind = "verified"
	ChangeRoleChanged ChangeKind = "role_changed"
	ChangeRemoved     ChangeKind = "removed"
)
