package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"orghub/backend/internal/authz"
	"orghub/backend/internal/events"
	"orghub/backend/internal/membership/domain"
	orgdomain "orghub/backend/internal/organization/domain"
)

type fakeOrgRepo struct {
	orgs map[int64]*orgdomain.Org
}

func (f *fakeOrgRepo) GetByID(ctx context.Context, id int64) (*orgdomain.Org, error) {
	return f.orgs[id], nil
}

type fakeMembershipRepo struct {
	memberships map[string]*domain.Membership // keyed by userID
	presidents  int64
}

func (f *fakeMembershipRepo) GetByUserAndOrg(ctx context.Context, userID string, orgID int64) (*domain.Membership, error) {
	m := f.memberships[userID]
	if m == nil || m.OrgID != orgID {
		return nil, nil
	}
	return m, nil
}

func (f *fakeMembershipRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Membership, error) {
	if m := f.memberships[userID]; m != nil {
		return []*domain.Membership{m}, nil
	}
	return nil, nil
}

func (f *fakeMembershipRepo) ListByOrg(ctx context.Context, orgID int64) ([]*domain.Membership, error) {
	var out []*domain.Membership
	for _, m := range f.memberships {
		if m.OrgID == orgID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMembershipRepo) Create(ctx context.Context, m *domain.Membership) error {
	if f.memberships == nil {
		f.memberships = make(map[string]*domain.Membership)
	}
	f.memberships[m.UserID] = m
	return nil
}

func (f *fakeMembershipRepo) UpdateRole(ctx context.Context, userID string, orgID int64, role authz.Role) (*domain.Membership, error) {
	m := f.memberships[userID]
	if m == nil {
		return nil, nil
	}
	m.Role = role
	m.UpdatedAt = time.Now().UTC()
	return m, nil
}

func (f *fakeMembershipRepo) SetVerified(ctx context.Context, userID string, orgID int64, verified bool) (*domain.Membership, error) {
	m := f.memberships[userID]
	if m == nil {
		return nil, nil
	}
	m.Verified = verified
	return m, nil
}

func (f *fakeMembershipRepo) DeleteByUserAndOrg(ctx context.Context, userID string, orgID int64) error {
	delete(f.memberships, userID)
	return nil
}

func (f *fakeMembershipRepo) CountPresidentsByOrg(ctx context.Context, orgID int64) (int64, error) {
	return f.presidents, nil
}

type captureProducer struct {
	emitted []*events.MembershipChanged
}

func (c *captureProducer) Emit(ctx context.Context, e *events.MembershipChanged) error {
	c.emitted = append(c.emitted, e)
	return nil
}

func (c *captureProducer) Close() error { return nil }

func newTestService(presidents int64) (*MembershipService, *fakeMembershipRepo, *captureProducer) {
	orgs := &fakeOrgRepo{orgs: map[int64]*orgdomain.Org{
		4: {ID: 4, Name: "Chess Club", Status: orgdomain.OrgStatusActive},
	}}
	repo := &fakeMembershipRepo{memberships: make(map[string]*domain.Membership), presidents: presidents}
	producer := &captureProducer{}
	return NewMembershipService(orgs, repo, producer), repo, producer
}

func TestEnroll_CreatesUnverifiedMember(t *testing.T) {
	svc, _, producer := newTestService(1)
	ctx := context.Background()

	m, err := svc.Enroll(ctx, "user-1", 4)
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if m.Role != authz.RoleMember {
		t.Errorf("role = %v, want %v", m.Role, authz.RoleMember)
	}
	if m.Verified {
		t.Error("enrollment must start unverified")
	}
	if len(producer.emitted) != 1 || producer.emitted[0].Kind != string(domain.ChangeEnrolled) {
		t.Errorf("emitted = %+v, want one enrolled event", producer.emitted)
	}
}

func TestEnroll_UnknownOrg(t *testing.T) {
	svc, _, _ := newTestService(1)
	if _, err := svc.Enroll(context.Background(), "user-1", 99); !errors.Is(err, ErrOrgNotFound) {
		t.Errorf("err = %v, want ErrOrgNotFound", err)
	}
}

func TestEnroll_Duplicate(t *testing.T) {
	svc, _, _ := newTestService(1)
	ctx := context.Background()
	if _, err := svc.Enroll(ctx, "user-1", 4); err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if _, err := svc.Enroll(ctx, "user-1", 4); !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("err = %v, want ErrAlreadyMember", err)
	}
}

func TestVerify_EmitsEvent(t *testing.T) {
	svc, repo, producer := newTestService(1)
	ctx := context.Background()
	repo.memberships["user-1"] = &domain.Membership{ID: "m1", UserID: "user-1", OrgID: 4, Role: authz.RoleMember}

	m, err := svc.Verify(ctx, "mod-1", "user-1", 4)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !m.Verified {
		t.Error("membership should be verified")
	}
	if len(producer.emitted) != 1 || producer.emitted[0].Kind != string(domain.ChangeVerified) {
		t.Errorf("emitted = %+v, want one verified event", producer.emitted)
	}
	if producer.emitted[0].ActorID != "mod-1" {
		t.Errorf("actor = %q, want mod-1", producer.emitted[0].ActorID)
	}
}

func TestChangeRole_LastPresidentProtected(t *testing.T) {
	svc, repo, _ := newTestService(1)
	repo.memberships["pres-1"] = &domain.Membership{ID: "m1", UserID: "pres-1", OrgID: 4, Role: authz.RolePresident, Verified: true}

	_, err := svc.ChangeRole(context.Background(), "admin-1", "pres-1", 4, authz.RoleAdmin)
	if !errors.Is(err, ErrLastPresident) {
		t.Errorf("err = %v, want ErrLastPresident", err)
	}
}

func TestChangeRole_DemotionWithAnotherPresident(t *testing.T) {
	svc, repo, producer := newTestService(2)
	repo.memberships["pres-1"] = &domain.Membership{ID: "m1", UserID: "pres-1", OrgID: 4, Role: authz.RolePresident, Verified: true}

	m, err := svc.ChangeRole(context.Background(), "admin-1", "pres-1", 4, authz.RoleAdmin)
	if err != nil {
		t.Fatalf("ChangeRole: %v", err)
	}
	if m.Role != authz.RoleAdmin {
		t.Errorf("role = %v, want %v", m.Role, authz.RoleAdmin)
	}
	if len(producer.emitted) != 1 || producer.emitted[0].Kind != string(domain.ChangeRoleChanged) {
		t.Errorf("emitted = %+v, want one role_changed event", producer.emitted)
	}
}

func TestChangeRole_SameRoleNoEvent(t *testing.T) {
	svc, repo, producer := newTestService(1)
	repo.memberships["user-1"] = &domain.Membership{ID: "m1", UserID: "user-1", OrgID: 4, Role: authz.RoleModerator, Verified: true}

	if _, err := svc.ChangeRole(context.Background(), "admin-1", "user-1", 4, authz.RoleModerator); err != nil {
		t.Fatalf("ChangeRole: %v", err)
	}
	if len(producer.emitted) != 0 {
		t.Errorf("no event expected for no-op role change, got %+v", producer.emitted)
	}
}

func TestRemove_LastPresidentProtected(t *testing.T) {
	svc, repo, _ := newTestService(1)
	repo.memberships["pres-1"] = &domain.Membership{ID: "m1", UserID: "pres-1", OrgID: 4, Role: authz.RolePresident, Verified: true}

	if err := svc.Remove(context.Background(), "admin-1", "pres-1", 4); !errors.Is(err, ErrLastPresident) {
		t.Errorf("err = %v, want ErrLastPresident", err)
	}
}

func TestRemove_EmitsEvent(t *testing.T) {
	svc, repo, producer := newTestService(1)
	repo.memberships["user-1"] = &domain.Membership{ID: "m1", UserID: "user-1", OrgID: 4, Role: authz.RoleMember, Verified: true}

	if err := svc.Remove(context.Background(), "mod-1", "user-1", 4); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if repo.memberships["user-1"] != nil {
		t.Error("membership should be deleted")
	}
	if len(producer.emitted) != 1 || producer.emitted[0].Kind != string(domain.ChangeRemoved) {
		t.Errorf("emitted = %+v, want one removed event", producer.emitted)
	}
}
