package domain

import (
	"errors"
	"time"
)

// Cause is an initiative run by an organization.
type Cause struct {
	ID        string
	OrgID     int64
	Title     string
	Summary   string
	CreatedBy string
	CreatedAt time.Time
}

// Validate validates the cause for persistence.
func (c *Cause) Validate() error {
	if c.OrgID <= 0 {
		return errors.New("org id is required")
	}
	if c.Title == "" {
		return errors.New("title is required")
	}
	return nil
}
