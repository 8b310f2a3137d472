package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"orghub/backend/internal/authz"
	"orghub/backend/internal/membership/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a membership repository backed by the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const membershipColumns = `id, user_id, org_id, role, verified, created_at, updated_at`

func scanMembership(scan func(dest ...interface{}) error) (*domain.Membership, error) {
	var (
		m    domain.Membership
		role string
	)
	if err := scan(&m.ID, &m.UserID, &m.OrgID, &role, &m.Verified, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	r, err := authz.ParseRole(role)
	if err != nil {
		return nil, err
	}
	m.Role = r
	return &m, nil
}

// GetByUserAndOrg returns the membership for the given user and org, or nil
// if not found. It returns an error only for database failures.
func (r *PostgresRepository) GetByUserAndOrg(ctx context.Context, userID string, orgID int64) (*domain.Membership, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships WHERE user_id = $1 AND org_id = $2`,
		userID, orgID)
	m, err := scanMembership(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

func (r *PostgresRepository) listWhere(ctx context.Context, where string, args ...interface{}) ([]*domain.Membership, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+membershipColumns+` FROM memberships WHERE `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Membership
	for rows.Next() {
		m, err := scanMembership(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListVerifiedByUser returns the user's verified memberships, the only ones a
// credential may carry.
func (r *PostgresRepository) ListVerifiedByUser(ctx context.Context, userID string) ([]*domain.Membership, error) {
	return r.listWhere(ctx, `user_id = $1 AND verified ORDER BY org_id`, userID)
}

// ListByUser returns all memberships for the user, verified or not.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Membership, error) {
	return r.listWhere(ctx, `user_id = $1 ORDER BY org_id`, userID)
}

// ListByOrg returns all memberships in the organization.
func (r *PostgresRepository) ListByOrg(ctx context.Context, orgID int64) ([]*domain.Membership, error) {
	return r.listWhere(ctx, `org_id = $1 ORDER BY created_at`, orgID)
}

// Create persists the membership. The membership must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, m *domain.Membership) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO memberships (id, user_id, org_id, role, verified, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.UserID, m.OrgID, m.Role.String(), m.Verified, m.CreatedAt, m.UpdatedAt)
	return err
}

// UpdateRole sets the role for the given user and org and returns the updated
// membership, or nil if no such membership exists.
func (r *PostgresRepository) UpdateRole(ctx context.Context, userID string, orgID int64, role authz.Role) (*domain.Membership, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE memberships SET role = $3, updated_at = $4
		 WHERE user_id = $1 AND org_id = $2
		 RETURNING `+membershipColumns,
		userID, orgID, role.String(), time.Now().UTC())
	m, err := scanMembership(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// SetVerified sets the verified flag for the given user and org and returns
// the updated membership, or nil if no such membership exists.
func (r *PostgresRepository) SetVerified(ctx context.Context, userID string, orgID int64, verified bool) (*domain.Membership, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE memberships SET verified = $3, updated_at = $4
		 WHERE user_id = $1 AND org_id = $2
		 RETURNING `+membershipColumns,
		userID, orgID, verified, time.Now().UTC())
	m, err := scanMembership(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// DeleteByUserAndOrg removes the membership. Deleting a missing membership is not an error.
func (r *PostgresRepository) DeleteByUserAndOrg(ctx context.Context, userID string, orgID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM memberships WHERE user_id = $1 AND org_id = $2`, userID, orgID)
	return err
}

// CountPresidentsByOrg returns how many verified presidents the org has.
// Used to keep an org from losing its last president.
func (r *PostgresRepository) CountPresidentsByOrg(ctx context.Context, orgID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memberships WHERE org_id = $1 AND role = 'president' AND verified`, orgID).Scan(&n)
	return n, err
}
