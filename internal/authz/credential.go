package authz

import "time"

// Credential is the decoded claim set carried by a bearer token. It is
// immutable once issued; a refresh supersedes it with a new Credential rather
// than mutating it. GlobalAccess grants every organization regardless of the
// claim list, so a global administrator's claims may be empty.
type Credential struct {
	SubjectID    string
	Claims       []string
	GlobalAccess bool
	IssuedAt     time.Time
	ExpiresAt    time.Time
}

// ExpiredAt reports whether the credential is past its expiry at now, with
// grace tolerated for clock skew. grace must be >= 0.
func (c *Credential) ExpiredAt(now time.Time, grace time.Duration) bool {
	if c.ExpiresAt.IsZero() {
		return true
	}
	return now.After(c.ExpiresAt.Add(grace))
}

// Age returns how long ago the credential was issued, or 0 if IssuedAt is unset.
func (c *Credential) Age(now time.Time) time.Duration {
	if c.IssuedAt.IsZero() || now.Before(c.IssuedAt) {
		return 0
	}
	return now.Sub(c.IssuedAt)
}
