package repository

import (
	"context"
	"database/sql"
	"errors"

	"orghub/backend/internal/document/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the document for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, org_id, title, url, uploaded_by, created_at FROM documents WHERE id = $1`, id)
	var d domain.Document
	if err := row.Scan(&d.ID, &d.OrgID, &d.Title, &d.URL, &d.UploadedBy, &d.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *PostgresRepository) ListByOrg(ctx context.Context, orgID int64) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, org_id, title, url, uploaded_by, created_at
		 FROM documents WHERE org_id = $1 ORDER BY created_at DESC`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var d domain.Document
		if err := rows.Scan(&d.ID, &d.OrgID, &d.Title, &d.URL, &d.UploadedBy, &d.CreatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (r *PostgresRepository) Create(ctx context.Context, d *domain.Document) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (id, org_id, title, url, uploaded_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		d.ID, d.OrgID, d.Title, d.URL, d.UploadedBy, d.CreatedAt)
	return err
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	return err
}
