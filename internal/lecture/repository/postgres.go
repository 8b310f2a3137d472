package repository

import (
	"context"
	"database/sql"
	"errors"

	"orghub/backend/internal/lecture/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the lecture for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Lecture, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, org_id, title, speaker, starts_at, created_by, created_at FROM lectures WHERE id = $1`, id)
	l, err := scanLecture(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return l, nil
}

func (r *PostgresRepository) ListByOrg(ctx context.Context, orgID int64) ([]domain.Lecture, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, org_id, title, speaker, starts_at, created_by, created_at
		 FROM lectures WHERE org_id = $1 ORDER BY starts_at NULLS LAST, created_at DESC`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lectures []domain.Lecture
	for rows.Next() {
		l, err := scanLecture(rows)
		if err != nil {
			return nil, err
		}
		lectures = append(lectures, *l)
	}
	return lectures, rows.Err()
}

func (r *PostgresRepository) Create(ctx context.Context, l *domain.Lecture) error {
	var startsAt interface{}
	if l.StartsAt != nil {
		startsAt = *l.StartsAt
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO lectures (id, org_id, title, speaker, starts_at, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		l.ID, l.OrgID, l.Title, l.Speaker, startsAt, l.CreatedBy, l.CreatedAt)
	return err
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM lectures WHERE id = $1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLecture(row rowScanner) (*domain.Lecture, error) {
	var (
		l        domain.Lecture
		startsAt sql.NullTime
	)
	if err := row.Scan(&l.ID, &l.OrgID, &l.Title, &l.Speaker, &startsAt, &l.CreatedBy, &l.CreatedAt); err != nil {
		return nil, err
	}
	if startsAt.Valid {
		l.StartsAt = &startsAt.Time
	}
	return &l, nil
}
