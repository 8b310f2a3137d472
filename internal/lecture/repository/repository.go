package repository

import (
	"context"

	"orghub/backend/internal/lecture/domain"
)

// Repository defines persistence for lectures.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Lecture, error)
	ListByOrg(ctx context.Context, orgID int64) ([]domain.Lecture, error)
	Create(ctx context.Context, l *domain.Lecture) error
	Delete(ctx context.Context, id string) error
}
