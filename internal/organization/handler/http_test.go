package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"orghub/backend/internal/authz"
	"orghub/backend/internal/events"
	membershipdomain "orghub/backend/internal/membership/domain"
	"orghub/backend/internal/organization/domain"
	"orghub/backend/internal/server/guard"
)

// mockOrgRepo implements repository.Repository for tests.
type mockOrgRepo struct {
	orgs   map[int64]*domain.Org
	nextID int64
}

func newMockOrgRepo() *mockOrgRepo {
	return &mockOrgRepo{orgs: make(map[int64]*domain.Org), nextID: 1}
}

func (m *mockOrgRepo) GetByID(ctx context.Context, id int64) (*domain.Org, error) {
	o, ok := m.orgs[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrgRepo) Create(ctx context.Context, o *domain.Org) (int64, error) {
	id := m.nextID
	m.nextID++
	cp := *o
	cp.ID = id
	m.orgs[id] = &cp
	return id, nil
}

func (m *mockOrgRepo) Update(ctx context.Context, o *domain.Org) error {
	cp := *o
	m.orgs[o.ID] = &cp
	return nil
}

func (m *mockOrgRepo) ListByIDs(ctx context.Context, ids []int64) ([]*domain.Org, error) {
	var out []*domain.Org
	for _, id := range ids {
		if o, ok := m.orgs[id]; ok {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

type mockMembershipCreator struct {
	created []*membershipdomain.Membership
}

func (m *mockMembershipCreator) Create(ctx context.Context, mem *membershipdomain.Membership) error {
	m.created = append(m.created, mem)
	return nil
}

type captureProducer struct {
	events []*events.MembershipChanged
}

func (p *captureProducer) Emit(ctx context.Context, event *events.MembershipChanged) error {
	p.events = append(p.events, event)
	return nil
}

func (p *captureProducer) Close() error { return nil }

// withCredential substitutes the guard chain in tests: it injects a
// credential for the given subject with the given claims.
func withCredential(subject string, claims []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cred := &authz.Credential{
				SubjectID: subject,
				Claims:    claims,
				IssuedAt:  time.Now().UTC(),
				ExpiresAt: time.Now().UTC().Add(15 * time.Minute),
			}
			next.ServeHTTP(w, r.WithContext(guard.WithCredential(r.Context(), cred, "session-1")))
		})
	}
}

func newTestRouter(orgRepo *mockOrgRepo, mc *mockMembershipCreator, producer *captureProducer, subject string, claims []string) *mux.Router {
	router := mux.NewRouter()
	chain := withCredential(subject, claims)
	NewHandler(orgRepo, mc, producer).RegisterRoutes(router, chain, chain, chain)
	return router
}

func TestCreateOrg_SeatsCreatorAsPresident(t *testing.T) {
	orgRepo := newMockOrgRepo()
	mc := &mockMembershipCreator{}
	producer := &captureProducer{}
	router := newTestRouter(orgRepo, mc, producer, "user-1", nil)

	body := bytes.NewBufferString(`{"name": "Chess Club"}`)
	req := httptest.NewRequest(http.MethodPost, "/orgs", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var resp orgResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Name != "Chess Club" || resp.ID == 0 {
		t.Errorf("unexpected response %+v", resp)
	}
	if len(mc.created) != 1 {
		t.Fatalf("created %d memberships, want 1", len(mc.created))
	}
	m := mc.created[0]
	if m.UserID != "user-1" || m.OrgID != resp.ID || m.Role != authz.RolePresident || !m.Verified {
		t.Errorf("unexpected membership %+v", m)
	}
	if len(producer.events) != 1 {
		t.Fatalf("emitted %d events, want 1", len(producer.events))
	}
	if producer.events[0].Role != authz.RolePresident.String() {
		t.Errorf("event role = %q", producer.events[0].Role)
	}
}

func TestCreateOrg_EmptyName(t *testing.T) {
	router := newTestRouter(newMockOrgRepo(), &mockMembershipCreator{}, &captureProducer{}, "user-1", nil)

	req := httptest.NewRequest(http.MethodPost, "/orgs", bytes.NewBufferString(`{"name": ""}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestUpdateOrg_ChangesNameAndStatus(t *testing.T) {
	orgRepo := newMockOrgRepo()
	orgRepo.orgs[4] = &domain.Org{ID: 4, Name: "Chess Club", Status: domain.OrgStatusActive}
	router := newTestRouter(orgRepo, &mockMembershipCreator{}, &captureProducer{}, "user-1", []string{"P4"})

	body := bytes.NewBufferString(`{"name": "Chess Society", "status": "suspended"}`)
	req := httptest.NewRequest(http.MethodPut, "/orgs/4", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	got := orgRepo.orgs[4]
	if got.Name != "Chess Society" || got.Status != domain.OrgStatusSuspended {
		t.Errorf("stored org = %+v", got)
	}
}

func TestUpdateOrg_InvalidStatus(t *testing.T) {
	orgRepo := newMockOrgRepo()
	orgRepo.orgs[4] = &domain.Org{ID: 4, Name: "Chess Club", Status: domain.OrgStatusActive}
	router := newTestRouter(orgRepo, &mockMembershipCreator{}, &captureProducer{}, "user-1", []string{"P4"})

	req := httptest.NewRequest(http.MethodPut, "/orgs/4", bytes.NewBufferString(`{"status": "defunct"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if got := orgRepo.orgs[4]; got.Status != domain.OrgStatusActive {
		t.Errorf("status changed to %q on rejected update", got.Status)
	}
}

func TestUpdateOrg_NotFound(t *testing.T) {
	router := newTestRouter(newMockOrgRepo(), &mockMembershipCreator{}, &captureProducer{}, "user-1", []string{"P99"})

	req := httptest.NewRequest(http.MethodPut, "/orgs/99", bytes.NewBufferString(`{"name": "Ghost"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestGetOrg_NotFound(t *testing.T) {
	router := newTestRouter(newMockOrgRepo(), &mockMembershipCreator{}, &captureProducer{}, "user-1", []string{"M7"})

	req := httptest.NewRequest(http.MethodGet, "/orgs/7", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestListMyOrgs_FromClaims(t *testing.T) {
	orgRepo := newMockOrgRepo()
	orgRepo.orgs[4] = &domain.Org{ID: 4, Name: "Chess Club", Status: domain.OrgStatusActive}
	orgRepo.orgs[17] = &domain.Org{ID: 17, Name: "Debate Society", Status: domain.OrgStatusActive}
	orgRepo.orgs[23] = &domain.Org{ID: 23, Name: "Other", Status: domain.OrgStatusActive}
	router := newTestRouter(orgRepo, &mockMembershipCreator{}, &captureProducer{}, "user-1", []string{"A4", "M17"})

	req := httptest.NewRequest(http.MethodGet, "/me/orgs", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	var resp []orgResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("got %d orgs, want 2", len(resp))
	}
	if resp[0].ID != 4 || resp[1].ID != 17 {
		t.Errorf("unexpected org ids %d, %d", resp[0].ID, resp[1].ID)
	}
}
