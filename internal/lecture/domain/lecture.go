package domain

import (
	"errors"
	"time"
)

// Lecture is a talk or session hosted by an organization.
type Lecture struct {
	ID        string
	OrgID     int64
	Title     string
	Speaker   string
	StartsAt  *time.Time
	CreatedBy string
	CreatedAt time.Time
}

// Validate validates the lecture for persistence.
func (l *Lecture) Validate() error {
	if l.OrgID <= 0 {
		return errors.New("org id is required")
	}
	if l.Title == "" {
		return errors.New("title is required")
	}
	return nil
}
