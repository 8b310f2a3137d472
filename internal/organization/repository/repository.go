package repository

import (
	"context"

	"orghub/backend/internal/organization/domain"
)

// Repository defines persistence for organizations.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.Org, error)
	// Create inserts the org and returns its generated id.
	Create(ctx context.Context, o *domain.Org) (int64, error)
	// Update overwrites name and status for the org's id.
	Update(ctx context.Context, o *domain.Org) error
	ListByIDs(ctx context.Context, ids []int64) ([]*domain.Org, error)
}
