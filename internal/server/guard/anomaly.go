package guard

import (
	"context"
	"log"
	"net/http"
	"time"

	"orghub/backend/internal/authz"
	"orghub/backend/internal/policy/engine"
)

// Escalator evaluates the escalation policy for a request.
type Escalator interface {
	Evaluate(ctx context.Context, in engine.EscalationInput) (engine.EscalationResult, error)
}

// Anomaly applies the escalation heuristics. On normal routes anomalies are
// observed and logged only; on high-risk routes the organization's escalation
// policy decides, and an escalated request is denied as EXPIRED: the
// credential is not trusted for this operation any more and the caller must
// refresh to get a fresh one. The request's standing in the organization is
// not judged here, so no 403 reason is ever produced by this stage.
func Anomaly(evaluator Escalator, highRisk bool, maxCredentialAge time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if evaluator == nil {
				next.ServeHTTP(w, r)
				return
			}
			if !highRisk {
				if cred, ok := GetCredential(r.Context()); ok && cred != nil {
					if age := cred.Age(time.Now().UTC()); age > maxCredentialAge {
						log.Printf("guard: stale credential for %s on %s %s (age %s)",
							cred.SubjectID, r.Method, r.URL.Path, age)
					}
					if r.UserAgent() == "" {
						log.Printf("guard: missing user agent for %s on %s %s",
							cred.SubjectID, r.Method, r.URL.Path)
					}
				}
				next.ServeHTTP(w, r)
				return
			}
			cred, ok := GetCredential(r.Context())
			if !ok || cred == nil {
				Deny(w, r, authz.ReasonNotAuthenticated)
				return
			}
			in := engine.EscalationInput{
				Method:           r.Method,
				Path:             r.URL.Path,
				HighRisk:         true,
				UserAgent:        r.UserAgent(),
				IP:               ClientIP(r),
				CredentialAge:    cred.Age(time.Now().UTC()),
				GlobalAccess:     cred.GlobalAccess,
				MaxCredentialAge: maxCredentialAge,
				OrgID:            orgIDFromRequest(r),
			}
			res, err := evaluator.Evaluate(r.Context(), in)
			if err != nil {
				log.Printf("guard: escalation evaluation failed: %v", err)
				next.ServeHTTP(w, r)
				return
			}
			if res.Escalate {
				Deny(w, r, authz.ReasonExpired)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
