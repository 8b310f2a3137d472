package domain

import (
	"errors"
	"time"
)

// User is a principal. GlobalAccess marks platform administrators whose
// credentials skip per-organization checks entirely.
type User struct {
	ID           string
	Email        string
	Name         string
	Status       UserStatus
	GlobalAccess bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

// Validate validates the user for persistence.
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.Status == "" {
		u.Status = UserStatusActive
	}
	return nil
}
