package server

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"orghub/backend/internal/audit/domain"
	auditrepo "orghub/backend/internal/audit/repository"
	"orghub/backend/internal/authz"
	"orghub/backend/internal/server/guard"
	"orghub/backend/internal/telemetry"
	telemetryotel "orghub/backend/internal/telemetry/otel"
)

// AuditMiddleware records an audit entry for each request that reached an
// organization-scoped decision, and ships denials to the telemetry emitter.
// It installs a decision record before the guard chain runs and reads it
// back afterwards; both writes are best-effort and never fail the request.
func AuditMiddleware(repo auditrepo.Repository, emitter telemetry.EventEmitter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &guard.DecisionRecord{}
			r = r.WithContext(guard.WithDecisionRecord(r.Context(), rec))
			next.ServeHTTP(w, r)

			if rec.Reason == "" {
				return
			}
			now := time.Now().UTC()
			ip := guard.ClientIP(r)
			if repo != nil {
				entry := &domain.AuditLog{
					ID:        uuid.New().String(),
					OrgID:     rec.OrgID,
					UserID:    rec.UserID,
					Action:    r.Method,
					Resource:  r.URL.Path,
					IP:        ip,
					Reason:    string(rec.Reason),
					CreatedAt: now,
				}
				if err := repo.Create(r.Context(), entry); err != nil {
					log.Printf("audit: failed to create audit log: %v", err)
				}
			}
			if rec.Reason != authz.ReasonOK {
				telemetryotel.EmitAsync(emitter, &telemetry.SecurityEvent{
					UserID:    rec.UserID,
					OrgID:     rec.OrgID,
					Action:    r.Method,
					Resource:  r.URL.Path,
					Reason:    string(rec.Reason),
					IP:        ip,
					CreatedAt: now,
				})
			}
		})
	}
}
