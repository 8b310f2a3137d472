package guard

import (
	"net/http"
	"time"

	"orghub/backend/internal/authz"
	"orghub/backend/internal/security"
)

// Pipeline builds per-route middleware chains. Stage order is fixed:
// authenticate, rate limit, anomaly escalation, authorize. Rate limiting runs
// after authentication so authenticated callers are counted per subject, not
// per IP.
type Pipeline struct {
	tokens           *security.TokenProvider
	limiter          Limiter
	failClosed       bool
	evaluator        Escalator
	maxCredentialAge time.Duration
}

// NewPipeline returns a Pipeline with the given stages. evaluator may be nil
// to disable anomaly escalation.
func NewPipeline(tokens *security.TokenProvider, limiter Limiter, failClosed bool, evaluator Escalator, maxCredentialAge time.Duration) *Pipeline {
	return &Pipeline{
		tokens:           tokens,
		limiter:          limiter,
		failClosed:       failClosed,
		evaluator:        evaluator,
		maxCredentialAge: maxCredentialAge,
	}
}

// Protect returns the full chain for an organization-scoped route requiring
// the given role. highRisk routes additionally pass through the escalation
// policy.
func (p *Pipeline) Protect(required authz.Role, highRisk bool) func(http.Handler) http.Handler {
	return chain(
		Authenticate(p.tokens),
		RateLimit(p.limiter, p.failClosed),
		Anomaly(p.evaluator, highRisk, p.maxCredentialAge),
		Authorize(required, p.tokens.ExpiryGrace()),
	)
}

// Authenticated returns the chain for routes that need a valid credential
// but are not scoped to one organization (e.g. listing own memberships).
func (p *Pipeline) Authenticated() func(http.Handler) http.Handler {
	return chain(
		Authenticate(p.tokens),
		RateLimit(p.limiter, p.failClosed),
	)
}

// Public returns the chain for unauthenticated routes: rate limiting only,
// keyed by client IP.
func (p *Pipeline) Public() func(http.Handler) http.Handler {
	return chain(
		RateLimit(p.limiter, p.failClosed),
	)
}

func chain(stages ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		h := next
		for i := len(stages) - 1; i >= 0; i-- {
			h = stages[i](h)
		}
		return h
	}
}
