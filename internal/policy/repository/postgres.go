package repository

import (
	"context"
	"database/sql"
	"errors"

	"orghub/backend/internal/policy/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByOrg returns the organization's policy override, or nil if none exists.
func (r *PostgresRepository) GetByOrg(ctx context.Context, orgID int64) (*domain.OrgPolicyConfig, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT org_id, escalation_rego, updated_at FROM org_policy_configs WHERE org_id = $1`, orgID)
	var cfg domain.OrgPolicyConfig
	if err := row.Scan(&cfg.OrgID, &cfg.EscalationRego, &cfg.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, cfg *domain.OrgPolicyConfig) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO org_policy_configs (org_id, escalation_rego, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (org_id) DO UPDATE SET escalation_rego = $2, updated_at = $3`,
		cfg.OrgID, cfg.EscalationRego, cfg.UpdatedAt)
	return err
}
