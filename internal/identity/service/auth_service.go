package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"orghub/backend/internal/authz"
	identitydomain "orghub/backend/internal/identity/domain"
	membershipdomain "orghub/backend/internal/membership/domain"
	"orghub/backend/internal/security"
	"orghub/backend/internal/server/guard"
	sessiondomain "orghub/backend/internal/session/domain"
	userdomain "orghub/backend/internal/user/domain"
)

// Sentinel errors for auth service; handler maps them to HTTP status codes.
var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidRefreshToken    = errors.New("invalid or expired refresh token")
	ErrRefreshTokenReuse      = errors.New("refresh token reuse detected; all sessions revoked")
	// ErrClaimCapExceeded means the user's verified memberships do not fit in
	// one credential. No credential is issued at all; a partial claim set
	// would silently deny access to the organizations that were cut.
	ErrClaimCapExceeded = errors.New("membership count exceeds credential claim capacity")
)

// AuthResult holds the outcome of Register (user_id only), Login, or Refresh
// (tokens + user).
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	UserID       string
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
}

// IdentityRepo is the minimal identity repository needed by the auth service.
type IdentityRepo interface {
	GetByUserAndProvider(ctx context.Context, userID string, provider identitydomain.IdentityProvider) (*identitydomain.Identity, error)
	Create(ctx context.Context, i *identitydomain.Identity) error
}

// SessionRepo is the minimal session repository needed by the auth service.
type SessionRepo interface {
	GetByID(ctx context.Context, id string) (*sessiondomain.Session, error)
	Create(ctx context.Context, s *sessiondomain.Session) error
	Revoke(ctx context.Context, id string) error
	RevokeAllByUser(ctx context.Context, userID string) error
	UpdateRefreshToken(ctx context.Context, sessionID, jti, refreshTokenHash string) error
	UpdateLastSeen(ctx context.Context, id string, at time.Time) error
}

// MembershipRepo is the minimal membership repository needed by the auth
// service.
type MembershipRepo interface {
	ListVerifiedByUser(ctx context.Context, userID string) ([]*membershipdomain.Membership, error)
}

// AuthService implements register, login, refresh, and logout. Every access
// token it issues is a snapshot of the user's verified memberships at issue
// time; membership changes take effect on the next refresh, which re-reads
// them from persistence.
type AuthService struct {
	userRepo       UserRepo
	identityRepo   IdentityRepo
	sessionRepo    SessionRepo
	membershipRepo MembershipRepo
	hasher         *security.Hasher
	tokens         *security.TokenProvider
	refreshTTL     time.Duration
	claimCap       int
}

// NewAuthService returns an AuthService with the given dependencies. claimCap
// bounds the number of membership claims in one credential; a user past the
// cap is refused issuance entirely.
func NewAuthService(
	userRepo UserRepo,
	identityRepo IdentityRepo,
	sessionRepo SessionRepo,
	membershipRepo MembershipRepo,
	hasher *security.Hasher,
	tokens *security.TokenProvider,
	refreshTTL time.Duration,
	claimCap int,
) *AuthService {
	return &AuthService{
		userRepo:       userRepo,
		identityRepo:   identityRepo,
		sessionRepo:    sessionRepo,
		membershipRepo: membershipRepo,
		hasher:         hasher,
		tokens:         tokens,
		refreshTTL:     refreshTTL,
		claimCap:       claimCap,
	}
}

// Register creates a user and local identity with the given email and
// password. Returns AuthResult with UserID only; caller must Login to get
// tokens.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyRegistered
	}
	userID := uuid.New().String()
	now := time.Now().UTC()
	user := &userdomain.User{
		ID:        userID,
		Email:     email,
		Name:      strings.TrimSpace(name),
		Status:    userdomain.UserStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	hashed, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, err
	}
	identity := &identitydomain.Identity{
		ID:           uuid.New().String(),
		UserID:       userID,
		Provider:     identitydomain.IdentityProviderLocal,
		ProviderID:   email,
		PasswordHash: hashed,
		CreatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	if err := s.identityRepo.Create(ctx, identity); err != nil {
		return nil, err
	}
	return &AuthResult{UserID: userID}, nil
}

// Login authenticates with email/password, creates a session, and returns
// tokens carrying the user's verified memberships.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status != userdomain.UserStatusActive {
		return nil, ErrInvalidCredentials
	}
	ident, err := s.identityRepo.GetByUserAndProvider(ctx, user.ID, identitydomain.IdentityProviderLocal)
	if err != nil {
		return nil, err
	}
	if ident == nil || ident.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(ident.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	claims, err := s.encodeClaims(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	sessionID := uuid.New().String()
	refreshToken, jti, refreshExp, err := s.tokens.IssueRefresh(user.ID, sessionID)
	if err != nil {
		return nil, err
	}
	accessToken, _, _, accessExp, err := s.tokens.IssueAccess(user.ID, sessionID, claims, user.GlobalAccess)
	if err != nil {
		return nil, err
	}
	sess := &sessiondomain.Session{
		ID:               sessionID,
		UserID:           user.ID,
		RefreshJti:       jti,
		RefreshTokenHash: security.HashRefreshToken(refreshToken),
		ExpiresAt:        refreshExp,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessExp,
		UserID:       user.ID,
	}, nil
}

// Refresh validates the refresh token, rotates it, and returns new tokens.
// Membership claims are re-read from persistence, so a role change or removal
// lands in the credential here. Presenting a rotated-out refresh token is
// treated as theft and revokes every session of the user.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}
	sessionID, jti, userID, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	sess, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.RevokedAt != nil || time.Now().UTC().After(sess.ExpiresAt) {
		return nil, ErrInvalidRefreshToken
	}
	if sess.RefreshJti != jti {
		_ = s.sessionRepo.RevokeAllByUser(ctx, userID)
		return nil, ErrRefreshTokenReuse
	}
	if sess.RefreshTokenHash != "" && !security.RefreshTokenHashEqual(refreshToken, sess.RefreshTokenHash) {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status != userdomain.UserStatusActive {
		return nil, ErrInvalidRefreshToken
	}
	claims, err := s.encodeClaims(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	_ = s.sessionRepo.UpdateLastSeen(ctx, sessionID, now)
	newRefresh, newJti, _, err := s.tokens.IssueRefresh(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.sessionRepo.UpdateRefreshToken(ctx, sessionID, newJti, security.HashRefreshToken(newRefresh)); err != nil {
		return nil, err
	}
	accessToken, _, _, accessExp, err := s.tokens.IssueAccess(userID, sessionID, claims, user.GlobalAccess)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		ExpiresAt:    accessExp,
		UserID:       userID,
	}, nil
}

// Logout revokes the session identified by the refresh token or, when none
// is given, by the access token the guard put in context. Otherwise no-op.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken != "" {
		sessionID, _, _, err := s.tokens.ValidateRefresh(refreshToken)
		if err != nil {
			return nil
		}
		return s.sessionRepo.Revoke(ctx, sessionID)
	}
	sessionID, ok := guard.GetSessionID(ctx)
	if !ok {
		return nil
	}
	return s.sessionRepo.Revoke(ctx, sessionID)
}

// encodeClaims reads the user's verified memberships and encodes them into
// compact claims, enforcing the claim cap.
func (s *AuthService) encodeClaims(ctx context.Context, userID string) ([]string, error) {
	memberships, err := s.membershipRepo.ListVerifiedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.claimCap > 0 && len(memberships) > s.claimCap {
		return nil, ErrClaimCapExceeded
	}
	pairs := make([]authz.OrgRole, 0, len(memberships))
	for _, m := range memberships {
		pairs = append(pairs, authz.OrgRole{OrgID: m.OrgID, Role: m.Role})
	}
	return authz.EncodeMemberships(pairs)
}

func validateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	const simpleEmail = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	ok, _ := regexp.MatchString(simpleEmail, email)
	if !ok {
		return errors.New("invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 12 {
		return errors.New("password must be at least 12 characters")
	}
	var hasUpper, hasLower, hasNumber, hasSymbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasNumber = true
		case r < '0' || (r > '9' && r < 'A') || (r > 'Z' && r < 'a') || r > 'z':
			hasSymbol = true
		}
	}
	if !hasUpper {
		return errors.New("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return errors.New("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return errors.New("password must contain at least one number")
	}
	if !hasSymbol {
		return errors.New("password must contain at least one symbol")
	}
	return nil
}
