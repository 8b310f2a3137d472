package repository

import (
	"context"

	"orghub/backend/internal/policy/domain"
)

// Repository stores per-organization escalation policy overrides.
type Repository interface {
	GetByOrg(ctx context.Context, orgID int64) (*domain.OrgPolicyConfig, error)
	Upsert(ctx context.Context, cfg *domain.OrgPolicyConfig) error
}
