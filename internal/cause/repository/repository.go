package repository

import (
	"context"

	"orghub/backend/internal/cause/domain"
)

// Repository defines persistence for causes.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Cause, error)
	ListByOrg(ctx context.Context, orgID int64) ([]domain.Cause, error)
	Create(ctx context.Context, c *domain.Cause) error
	Delete(ctx context.Context, id string) error
}
