package server

import (
	"context"
	"net/http"
	"time"

	"orghub/backend/internal/server/httputil"
)

// Pinger reports backing-store liveness (e.g. *sql.DB).
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PolicyChecker reports policy-engine liveness (e.g. the OPA evaluator).
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler serves readiness checks. Nil dependencies are skipped.
func HealthHandler(db Pinger, policy PolicyChecker) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := map[string]string{}
		healthy := true
		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				checks["db"] = err.Error()
				healthy = false
			} else {
				checks["db"] = "ok"
			}
		}
		if policy != nil {
			if err := policy.HealthCheck(ctx); err != nil {
				checks["policy"] = err.Error()
				healthy = false
			} else {
				checks["policy"] = "ok"
			}
		}
		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		httputil.RespondJSON(w, status, checks)
	})
}
