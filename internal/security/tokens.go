package security

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"orghub/backend/internal/authz"
)

var (
	// ErrInvalidToken is returned when a token is malformed, has a bad
	// signature, or carries claims outside this issuer's contract.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when a token is structurally valid but past
	// its expiry plus the configured grace window. Callers map this to the
	// EXPIRED reason rather than MALFORMED_CREDENTIAL.
	ErrExpiredToken = errors.New("expired token")
)

// AccessClaims is the payload of the access token. Field names are kept short
// because the claim array rides on every request: "ut" is the compact
// membership claim array, "ga" the global-access flag, "sid" the session id.
type AccessClaims struct {
	jwt.RegisteredClaims
	Memberships  []string `json:"ut,omitempty"`
	GlobalAccess bool     `json:"ga,omitempty"`
	SessionID    string   `json:"sid,omitempty"`
}

// RefreshClaims is the payload of the refresh token. It carries no membership
// claims; those are re-read from persistence on every refresh.
type RefreshClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// TokenProvider signs and validates access and refresh JWTs with RS256 or
// ES256. Access token validation tolerates expiry up to expiryGrace to absorb
// clock skew between issuer and validators.
type TokenProvider struct {
	privateKey  crypto.Signer
	publicKey   crypto.PublicKey
	issuer      string
	audience    string
	accessTTL   time.Duration
	refreshTTL  time.Duration
	expiryGrace time.Duration
}

// NewTokenProvider returns a TokenProvider signing with privateKey. issuer and
// audience are stamped on every token and enforced on validation.
func NewTokenProvider(privateKey crypto.Signer, publicKey crypto.PublicKey, issuer, audience string, accessTTL, refreshTTL, expiryGrace time.Duration) *TokenProvider {
	if expiryGrace < 0 {
		expiryGrace = 0
	}
	return &TokenProvider{
		privateKey:  privateKey,
		publicKey:   publicKey,
		issuer:      issuer,
		audience:    audience,
		accessTTL:   accessTTL,
		refreshTTL:  refreshTTL,
		expiryGrace: expiryGrace,
	}
}

// ExpiryGrace returns the clock-skew tolerance applied to access tokens.
func (p *TokenProvider) ExpiryGrace() time.Duration { return p.expiryGrace }

// IssueAccess signs an access token for subjectID carrying the compact
// membership claims and the global-access flag. Returns the token, its jti,
// and the issue/expiry instants that go into the credential.
func (p *TokenProvider) IssueAccess(subjectID, sessionID string, memberships []string, globalAccess bool) (token, jti string, issuedAt, expiresAt time.Time, err error) {
	jti, err = newJTI()
	if err != nil {
		return "", "", time.Time{}, time.Time{}, err
	}
	issuedAt = time.Now().UTC()
	expiresAt = issuedAt.Add(p.accessTTL)
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   subjectID,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Memberships:  memberships,
		GlobalAccess: globalAccess,
		SessionID:    sessionID,
	}
	token, err = p.sign(claims)
	return token, jti, issuedAt, expiresAt, err
}

// IssueRefresh signs a refresh token bound to the given session. The jti must
// be stored on the session row for rotation/reuse detection.
func (p *TokenProvider) IssueRefresh(subjectID, sessionID string) (token, jti string, expiresAt time.Time, err error) {
	jti, err = newJTI()
	if err != nil {
		return "", "", time.Time{}, err
	}
	now := time.Now().UTC()
	expiresAt = now.Add(p.refreshTTL)
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   subjectID,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		SessionID: sessionID,
	}
	token, err = p.sign(claims)
	return token, jti, expiresAt, err
}

func (p *TokenProvider) sign(claims jwt.Claims) (string, error) {
	var method jwt.SigningMethod
	switch p.privateKey.Public().(type) {
	case *rsa.PublicKey:
		method = jwt.SigningMethodRS256
	case *ecdsa.PublicKey:
		method = jwt.SigningMethodES256
	default:
		return "", ErrInvalidToken
	}
	t := jwt.NewWithClaims(method, claims)
	return t.SignedString(p.privateKey)
}

func (p *TokenProvider) keyFunc(token *jwt.Token) (interface{}, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodRSA, *jwt.SigningMethodECDSA:
		return p.publicKey, nil
	default:
		return nil, ErrInvalidToken
	}
}

// ValidateAccess parses and validates an access token (signature, iss, aud,
// exp with grace leeway) and returns the credential it carries plus the
// session id. Returns ErrExpiredToken when the only problem is expiry beyond
// the grace window; ErrInvalidToken for everything else.
func (p *TokenProvider) ValidateAccess(tokenString string) (*authz.Credential, string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, p.keyFunc,
		jwt.WithLeeway(p.expiryGrace),
		jwt.WithIssuer(p.issuer),
		jwt.WithAudience(p.audience),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, "", ErrExpiredToken
		}
		return nil, "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, "", ErrInvalidToken
	}
	cred := &authz.Credential{
		SubjectID:    claims.Subject,
		Claims:       claims.Memberships,
		GlobalAccess: claims.GlobalAccess,
	}
	if claims.IssuedAt != nil {
		cred.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		cred.ExpiresAt = claims.ExpiresAt.Time
	}
	return cred, claims.SessionID, nil
}

// ValidateRefresh parses and validates a refresh token and returns its
// sessionID, jti, and subject. No grace leeway: refresh tokens are long-lived
// and an expired one must not rotate.
func (p *TokenProvider) ValidateRefresh(tokenString string) (sessionID, jti, subjectID string, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &RefreshClaims{}, p.keyFunc,
		jwt.WithIssuer(p.issuer),
		jwt.WithAudience(p.audience),
	)
	if err != nil {
		return "", "", "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*RefreshClaims)
	if !ok || !token.Valid {
		return "", "", "", ErrInvalidToken
	}
	return claims.SessionID, claims.ID, claims.Subject, nil
}

func newJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
