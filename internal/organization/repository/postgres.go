package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"orghub/backend/internal/organization/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an organization repository backed by the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the organization for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.Org, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, status, created_at FROM organizations WHERE id = $1`, id)
	var o domain.Org
	err := row.Scan(&o.ID, &o.Name, &o.Status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

// Create inserts the organization and returns the generated id.
func (r *PostgresRepository) Create(ctx context.Context, o *domain.Org) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO organizations (name, status, created_at) VALUES ($1, $2, $3) RETURNING id`,
		o.Name, o.Status, o.CreatedAt).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Update overwrites name and status for the org's id.
func (r *PostgresRepository) Update(ctx context.Context, o *domain.Org) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE organizations SET name = $1, status = $2 WHERE id = $3`,
		o.Name, o.Status, o.ID)
	return err
}

// ListByIDs returns the organizations with the given ids, in no particular order.
func (r *PostgresRepository) ListByIDs(ctx context.Context, ids []int64) ([]*domain.Org, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, status, created_at FROM organizations WHERE id IN (`+strings.Join(placeholders, ", ")+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Org
	for rows.Next() {
		var o domain.Org
		if err := rows.Scan(&o.ID, &o.Name, &o.Status, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &o)
	}
	return out, rows.Err()
}
