package repository

import (
	"context"

	"orghub/backend/internal/document/domain"
)

// Repository defines persistence for document metadata.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	ListByOrg(ctx context.Context, orgID int64) ([]domain.Document, error)
	Create(ctx context.Context, d *domain.Document) error
	Delete(ctx context.Context, id string) error
}
