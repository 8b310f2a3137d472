package repository

import (
	"context"

	"orghub/backend/internal/audit/domain"
)

// Repository persists audit log entries. Audit writes are best effort; callers
// log failures instead of failing the request.
type Repository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
	ListByOrg(ctx context.Context, orgID int64, limit int) ([]domain.AuditLog, error)
}
