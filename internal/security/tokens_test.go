package security

import (
	"testing"
	"time"
)

func TestTokenProvider_IssueAndValidateAccess(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	memberships := []string{"A4", "M17"}

	token, jti, issuedAt, expiresAt, err := p.IssueAccess("user-1", "session-1", memberships, false)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if token == "" || jti == "" {
		t.Fatal("access token or jti empty")
	}
	if !expiresAt.After(issuedAt) {
		t.Fatal("expiry not after issue time")
	}

	cred, sessionID, err := p.ValidateAccess(token)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if cred.SubjectID != "user-1" {
		t.Errorf("SubjectID = %q, want %q", cred.SubjectID, "user-1")
	}
	if sessionID != "session-1" {
		t.Errorf("sessionID = %q, want %q", sessionID, "session-1")
	}
	if len(cred.Claims) != 2 || cred.Claims[0] != "A4" || cred.Claims[1] != "M17" {
		t.Errorf("Claims = %v, want [A4 M17]", cred.Claims)
	}
	if cred.GlobalAccess {
		t.Error("GlobalAccess = true, want false")
	}
	if cred.IssuedAt.IsZero() || cred.ExpiresAt.IsZero() {
		t.Error("credential timestamps not populated")
	}
}

func TestTokenProvider_GlobalAccessFlag(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	token, _, _, _, err := p.IssueAccess("root-1", "session-1", nil, true)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	cred, _, err := p.ValidateAccess(token)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if !cred.GlobalAccess {
		t.Error("GlobalAccess = false, want true")
	}
	if len(cred.Claims) != 0 {
		t.Errorf("Claims = %v, want empty", cred.Claims)
	}
}

func TestTokenProvider_ValidateAccessInvalid(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	if _, _, err := p.ValidateAccess("not-a-token"); err != ErrInvalidToken {
		t.Errorf("ValidateAccess invalid token: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_ValidateAccessExpired(t *testing.T) {
	signer, err := ParsePrivateKey(testPrivateKeyPEM)
	if err != nil {
		t.Fatalf("ParsePrivateKey: %v", err)
	}
	pub, err := ParsePublicKey(testPublicKeyPEM)
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}
	// Negative TTL issues an already-expired token; zero grace rejects it.
	p := NewTokenProvider(signer, pub, "test-issuer", "test-audience", -time.Minute, 24*time.Hour, 0)
	token, _, _, _, err := p.IssueAccess("user-1", "session-1", []string{"A4"}, false)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, _, err := p.ValidateAccess(token); err != ErrExpiredToken {
		t.Errorf("want ErrExpiredToken, got %v", err)
	}

	// With a generous grace window the same token still validates.
	graced := NewTokenProvider(signer, pub, "test-issuer", "test-audience", -time.Minute, 24*time.Hour, 2*time.Minute)
	if _, _, err := graced.ValidateAccess(token); err != nil {
		t.Errorf("inside grace: ValidateAccess: %v", err)
	}
}

func TestTokenProvider_IssueAndValidateRefresh(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	refresh, jti, expiresAt, err := p.IssueRefresh("user-1", "session-1")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	if refresh == "" || jti == "" {
		t.Fatal("refresh token or jti empty")
	}
	if expiresAt.Before(time.Now()) {
		t.Fatal("refresh expiry in the past")
	}
	sid, jti2, uid, err := p.ValidateRefresh(refresh)
	if err != nil {
		t.Fatalf("ValidateRefresh: %v", err)
	}
	if sid != "session-1" || jti2 != jti || uid != "user-1" {
		t.Errorf("ValidateRefresh: got sessionID=%q jti=%q subjectID=%q", sid, jti2, uid)
	}
}

func TestTokenProvider_ValidateRefreshInvalid(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	if _, _, _, err := p.ValidateRefresh("not-a-token"); err != ErrInvalidToken {
		t.Errorf("ValidateRefresh invalid token: want ErrInvalidToken, got %v", err)
	}
}

func TestHashRefreshToken(t *testing.T) {
	h1 := HashRefreshToken("token-a")
	h2 := HashRefreshToken("token-a")
	if h1 != h2 {
		t.Error("same token produced different hashes")
	}
	if h1 == HashRefreshToken("token-b") {
		t.Error("different tokens produced the same hash")
	}
	if !RefreshTokenHashEqual("token-a", h1) {
		t.Error("RefreshTokenHashEqual = false for matching token")
	}
	if RefreshTokenHashEqual("token-b", h1) {
		t.Error("RefreshTokenHashEqual = true for wrong token")
	}
}

func TestHasher(t *testing.T) {
	h := NewHasher(4)
	hash, err := h.Hash([]byte("correct horse battery staple"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if err := h.Compare(hash, []byte("correct horse battery staple")); err != nil {
		t.Errorf("Compare matching password: %v", err)
	}
	if err := h.Compare(hash, []byte("wrong")); err == nil {
		t.Error("Compare wrong password: want error, got nil")
	}
}
