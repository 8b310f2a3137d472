package repository

import (
	"context"
	"database/sql"
	"errors"

	"orghub/backend/internal/cause/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the cause for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Cause, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, org_id, title, summary, created_by, created_at FROM causes WHERE id = $1`, id)
	var c domain.Cause
	if err := row.Scan(&c.ID, &c.OrgID, &c.Title, &c.Summary, &c.CreatedBy, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *PostgresRepository) ListByOrg(ctx context.Context, orgID int64) ([]domain.Cause, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, org_id, title, summary, created_by, created_at
		 FROM causes WHERE org_id = $1 ORDER BY created_at DESC`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var causes []domain.Cause
	for rows.Next() {
		var c domain.Cause
		if err := rows.Scan(&c.ID, &c.OrgID, &c.Title, &c.Summary, &c.CreatedBy, &c.CreatedAt); err != nil {
			return nil, err
		}
		causes = append(causes, c)
	}
	return causes, rows.Err()
}

func (r *PostgresRepository) Create(ctx context.Context, c *domain.Cause) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO causes (id, org_id, title, summary, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.OrgID, c.Title, c.Summary, c.CreatedBy, c.CreatedAt)
	return err
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM causes WHERE id = $1`, id)
	return err
}
