package domain

import (
	"errors"
	"time"
)

// Document is a file reference owned by an organization. Storage itself is
// external; only the metadata lives here.
type Document struct {
	ID         string
	OrgID      int64
	Title      string
	URL        string
	UploadedBy string
	CreatedAt  time.Time
}

// Validate validates the document for persistence.
func (d *Document) Validate() error {
	if d.OrgID <= 0 {
		return errors.New("org id is required")
	}
	if d.Title == "" {
		return errors.New("title is required")
	}
	return nil
}
