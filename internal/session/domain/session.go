package domain

import "time"

// Session tracks one refresh-token lineage for a user. RefreshJti is the jti
// of the currently valid refresh token; presenting an older jti is reuse and
// revokes every session of the user.
type Session struct {
	ID               string
	UserID           string
	RefreshJti       string
	RefreshTokenHash string
	ExpiresAt        time.Time
	RevokedAt        *time.Time
	LastSeenAt       *time.Time
	CreatedAt        time.Time
}
