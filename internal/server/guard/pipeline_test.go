package guard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"orghub/backend/internal/authz"
	"orghub/backend/internal/policy/engine"
	"orghub/backend/internal/security"
)

func testPipeline(t *testing.T, limiter Limiter, evaluator Escalator) (*Pipeline, *security.TokenProvider) {
	t.Helper()
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	if limiter == nil {
		limiter = NewWindowLimiter(1000, time.Minute)
	}
	return NewPipeline(tokens, limiter, true, evaluator, 12*time.Hour), tokens
}

func issueToken(t *testing.T, tokens *security.TokenProvider, memberships []string, global bool) string {
	t.Helper()
	token, _, _, _, err := tokens.IssueAccess("user-1", "sess-1", memberships, global)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	return token
}

// serveOrgRoute runs the chained handler through a mux router so {orgID} is
// populated the way it is in production.
func serveOrgRoute(mw func(http.Handler) http.Handler, req *http.Request) *httptest.ResponseRecorder {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router := mux.NewRouter()
	router.Handle("/orgs/{orgID}/causes", mw(okHandler)).Methods(http.MethodGet, http.MethodDelete)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestProtect_MemberAllowed(t *testing.T) {
	p, tokens := testPipeline(t, nil, nil)
	token := issueToken(t, tokens, []string{"A4"}, false)

	req := httptest.NewRequest(http.MethodGet, "/orgs/4/causes", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := serveOrgRoute(p.Protect(authz.RoleAdmin, false), req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestProtect_MissingToken(t *testing.T) {
	p, _ := testPipeline(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/orgs/4/causes", nil)
	rec := serveOrgRoute(p.Protect(authz.RoleMember, false), req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestProtect_MalformedToken(t *testing.T) {
	p, _ := testPipeline(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/orgs/4/causes", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := serveOrgRoute(p.Protect(authz.RoleMember, false), req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestProtect_NonMemberForbidden(t *testing.T) {
	p, tokens := testPipeline(t, nil, nil)
	token := issueToken(t, tokens, []string{"A4"}, false)

	req := httptest.NewRequest(http.MethodGet, "/orgs/5/causes", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := serveOrgRoute(p.Protect(authz.RoleMember, false), req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestProtect_InsufficientRoleForbidden(t *testing.T) {
	p, tokens := testPipeline(t, nil, nil)
	token := issueToken(t, tokens, []string{"M4"}, false)

	req := httptest.NewRequest(http.MethodGet, "/orgs/4/causes", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := serveOrgRoute(p.Protect(authz.RolePresident, false), req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestProtect_GlobalAccessSkipsMembership(t *testing.T) {
	p, tokens := testPipeline(t, nil, nil)
	token := issueToken(t, tokens, nil, true)

	req := httptest.NewRequest(http.MethodGet, "/orgs/999/causes", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := serveOrgRoute(p.Protect(authz.RolePresident, false), req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRateLimit_WindowExhaustionAndReset(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	limiter := NewWindowLimiter(5, 15*time.Minute)
	limiter.now = func() time.Time { return now }

	p, tokens := testPipeline(t, limiter, nil)
	token := issueToken(t, tokens, []string{"M4"}, false)

	send := func() int {
		req := httptest.NewRequest(http.MethodGet, "/orgs/4/causes", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		return serveOrgRoute(p.Protect(authz.RoleMember, false), req).Code
	}

	for i := 0; i < 5; i++ {
		if code := send(); code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i+1, code, http.StatusOK)
		}
	}
	if code := send(); code != http.StatusTooManyRequests {
		t.Fatalf("6th request: status = %d, want %d", code, http.StatusTooManyRequests)
	}

	now = now.Add(15 * time.Minute)
	if code := send(); code != http.StatusOK {
		t.Fatalf("new window: status = %d, want %d", code, http.StatusOK)
	}
}

func TestRateLimit_SeparateKeysSeparateBudgets(t *testing.T) {
	limiter := NewWindowLimiter(1, time.Minute)
	allowed, err := limiter.Allow(context.Background(), "user:a")
	if err != nil || !allowed {
		t.Fatalf("first request for a: allowed=%v err=%v", allowed, err)
	}
	allowed, _ = limiter.Allow(context.Background(), "user:a")
	if allowed {
		t.Error("second request for a should be denied")
	}
	allowed, _ = limiter.Allow(context.Background(), "user:b")
	if !allowed {
		t.Error("b's budget must be independent of a's")
	}
}

type stubEscalator struct {
	escalate bool
	err      error
	lastIn   engine.EscalationInput
}

func (s *stubEscalator) Evaluate(ctx context.Context, in engine.EscalationInput) (engine.EscalationResult, error) {
	s.lastIn = in
	if s.err != nil {
		return engine.EscalationResult{}, s.err
	}
	return engine.EscalationResult{Escalate: s.escalate}, nil
}

func TestAnomaly_EscalatedHighRiskDenied(t *testing.T) {
	esc := &stubEscalator{escalate: true}
	p, tokens := testPipeline(t, nil, esc)
	token := issueToken(t, tokens, []string{"A4"}, false)

	req := httptest.NewRequest(http.MethodDelete, "/orgs/4/causes", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := serveOrgRoute(p.Protect(authz.RoleAdmin, true), req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d (escalated requests read as expired)", rec.Code, http.StatusUnauthorized)
	}
	if !esc.lastIn.HighRisk {
		t.Error("escalator should see the high-risk flag")
	}
}

func TestAnomaly_NotAppliedToNormalRoutes(t *testing.T) {
	esc := &stubEscalator{escalate: true}
	p, tokens := testPipeline(t, nil, esc)
	token := issueToken(t, tokens, []string{"A4"}, false)

	req := httptest.NewRequest(http.MethodGet, "/orgs/4/causes", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := serveOrgRoute(p.Protect(authz.RoleAdmin, false), req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestDecisionRecord_CapturesReason(t *testing.T) {
	p, tokens := testPipeline(t, nil, nil)
	token := issueToken(t, tokens, []string{"M4"}, false)

	var rec DecisionRecord
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router := mux.NewRouter()
	router.Handle("/orgs/{orgID}/causes", p.Protect(authz.RolePresident, false)(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/orgs/4/causes", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req = req.WithContext(WithDecisionRecord(req.Context(), &rec))
	router.ServeHTTP(httptest.NewRecorder(), req)

	if rec.Reason != authz.ReasonInsufficientRole {
		t.Errorf("recorded reason = %q, want %q", rec.Reason, authz.ReasonInsufficientRole)
	}
	if rec.OrgID != 4 {
		t.Errorf("recorded org = %d, want 4", rec.OrgID)
	}
}
