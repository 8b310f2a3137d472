package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"orghub/backend/internal/authz"
	"orghub/backend/internal/events"
	"orghub/backend/internal/membership/domain"
	orgdomain "orghub/backend/internal/organization/domain"
)

// Sentinel errors for membership service; handler maps them to HTTP status
// codes.
var (
	ErrOrgNotFound        = errors.New("organization not found")
	ErrAlreadyMember      = errors.New("user already has a membership in this organization")
	ErrMembershipNotFound = errors.New("membership not found")
	// ErrLastPresident guards against an organization losing its last
	// president through a demotion or removal.
	ErrLastPresident = errors.New("organization must keep at least one president")
)

// OrgRepo is the minimal organization repository needed by the membership
// service.
type OrgRepo interface {
	GetByID(ctx context.Context, id int64) (*orgdomain.Org, error)
}

// MembershipRepo is the membership repository surface used by the service.
type MembershipRepo interface {
	GetByUserAndOrg(ctx context.Context, userID string, orgID int64) (*domain.Membership, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Membership, error)
	ListByOrg(ctx context.Context, orgID int64) ([]*domain.Membership, error)
	Create(ctx context.Context, m *domain.Membership) error
	UpdateRole(ctx context.Context, userID string, orgID int64, role authz.Role) (*domain.Membership, error)
	SetVerified(ctx context.Context, userID string, orgID int64, verified bool) (*domain.Membership, error)
	DeleteByUserAndOrg(ctx context.Context, userID string, orgID int64) error
	CountPresidentsByOrg(ctx context.Context, orgID int64) (int64, error)
}

// MembershipService implements membership mutations. Every mutation emits a
// change event; the caller's next credential refresh picks up the new state,
// so issued credentials are only ever as stale as the access-token TTL.
type MembershipService struct {
	orgRepo        OrgRepo
	membershipRepo MembershipRepo
	producer       events.Producer
}

func NewMembershipService(orgRepo OrgRepo, membershipRepo MembershipRepo, producer events.Producer) *MembershipService {
	if producer == nil {
		producer = events.NoopProducer{}
	}
	return &MembershipService{
		orgRepo:        orgRepo,
		membershipRepo: membershipRepo,
		producer:       producer,
	}
}

// Enroll creates an unverified MEMBER membership for userID in orgID. The
// membership grants nothing until a moderator verifies it, and it is never
// encoded into a credential while unverified.
func (s *MembershipService) Enroll(ctx context.Context, userID string, orgID int64) (*domain.Membership, error) {
	org, err := s.orgRepo.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, ErrOrgNotFound
	}
	existing, err := s.membershipRepo.GetByUserAndOrg(ctx, userID, orgID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyMember
	}
	now := time.Now().UTC()
	m := &domain.Membership{
		ID:        uuid.New().String(),
		UserID:    userID,
		OrgID:     orgID,
		Role:      authz.RoleMember,
		Verified:  false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.membershipRepo.Create(ctx, m); err != nil {
		return nil, err
	}
	s.emit(ctx, domain.ChangeEnrolled, m, userID)
	return m, nil
}

// Verify marks the membership verified, making it eligible for credential
// claims on the member's next login or refresh.
func (s *MembershipService) Verify(ctx context.Context, actorID, userID string, orgID int64) (*domain.Membership, error) {
	m, err := s.membershipRepo.SetVerified(ctx, userID, orgID, true)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMembershipNotFound
	}
	s.emit(ctx, domain.ChangeVerified, m, actorID)
	return m, nil
}

// ChangeRole sets the member's role. Demoting the organization's last
// president is refused.
func (s *MembershipService) ChangeRole(ctx context.Context, actorID, userID string, orgID int64, role authz.Role) (*domain.Membership, error) {
	current, err := s.membershipRepo.GetByUserAndOrg(ctx, userID, orgID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrMembershipNotFound
	}
	if current.Role == role {
		return current, nil
	}
	if current.Role == authz.RolePresident && role != authz.RolePresident {
		if err := s.requireAnotherPresident(ctx, orgID); err != nil {
			return nil, err
		}
	}
	m, err := s.membershipRepo.UpdateRole(ctx, userID, orgID, role)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMembershipNotFound
	}
	s.emit(ctx, domain.ChangeRoleChanged, m, actorID)
	return m, nil
}

// Remove deletes the membership. Removing the organization's last president
// is refused.
func (s *MembershipService) Remove(ctx context.Context, actorID, userID string, orgID int64) error {
	current, err := s.membershipRepo.GetByUserAndOrg(ctx, userID, orgID)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrMembershipNotFound
	}
	if current.Role == authz.RolePresident {
		if err := s.requireAnotherPresident(ctx, orgID); err != nil {
			return err
		}
	}
	if err := s.membershipRepo.DeleteByUserAndOrg(ctx, userID, orgID); err != nil {
		return err
	}
	s.emit(ctx, domain.ChangeRemoved, current, actorID)
	return nil
}

// ListForUser returns all memberships of the user, verified or not.
func (s *MembershipService) ListForUser(ctx context.Context, userID string) ([]*domain.Membership, error) {
	return s.membershipRepo.ListByUser(ctx, userID)
}

// ListForOrg returns all memberships of the organization.
func (s *MembershipService) ListForOrg(ctx context.Context, orgID int64) ([]*domain.Membership, error) {
	return s.membershipRepo.ListByOrg(ctx, orgID)
}

func (s *MembershipService) requireAnotherPresident(ctx context.Context, orgID int64) error {
	count, err := s.membershipRepo.CountPresidentsByOrg(ctx, orgID)
	if err != nil {
		return err
	}
	if count <= 1 {
		return ErrLastPresident
	}
	return nil
}

// emit publishes the change event best-effort; failures are logged and do
// not fail the mutation.
func (s *MembershipService) emit(ctx context.Context, kind domain.ChangeKind, m *domain.Membership, actorID string) {
	event := &events.MembershipChanged{
		EventID:    uuid.New().String(),
		Kind:       string(kind),
		UserID:     m.UserID,
		OrgID:      m.OrgID,
		Role:       m.Role.String(),
		Verified:   m.Verified,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.producer.Emit(ctx, event); err != nil {
		log.Printf("membership: event emit failed: %v", err)
	}
}
