package repository

import (
	"context"

	"orghub/backend/internal/authz"
	"orghub/backend/internal/membership/domain"
)

// Repository defines persistence for memberships.
type Repository interface {
	GetByUserAndOrg(ctx context.Context, userID string, orgID int64) (*domain.Membership, error)
	// ListVerifiedByUser returns the memberships that may be encoded into a
	// credential: verified ones only.
	ListVerifiedByUser(ctx context.Context, userID string) ([]*domain.Membership, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Membership, error)
	ListByOrg(ctx context.Context, orgID int64) ([]*domain.Membership, error)
	Create(ctx context.Context, m *domain.Membership) error
	UpdateRole(ctx context.Context, userID string, orgID int64, role authz.Role) (*domain.Membership, error)
	SetVerified(ctx context.Context, userID string, orgID int64, verified bool) (*domain.Membership, error)
	DeleteByUserAndOrg(ctx context.Context, userID string, orgID int64) error
	CountPresidentsByOrg(ctx context.Context, orgID int64) (int64, error)
}
