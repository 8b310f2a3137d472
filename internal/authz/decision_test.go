package authz

import (
	"testing"
	"time"
)

func validCredential(claims []string, global bool) *Credential {
	now := time.Now().UTC()
	return &Credential{
		SubjectID:    "user-1",
		Claims:       claims,
		GlobalAccess: global,
		IssuedAt:     now.Add(-time.Minute),
		ExpiresAt:    now.Add(15 * time.Minute),
	}
}

func TestDecideAdminMatch(t *testing.T) {
	cred := validCredential([]string{"A4"}, false)
	d := Decide(cred, 4, RoleAdmin, time.Now().UTC(), 0)
	if !d.Allowed || d.Reason != ReasonOK {
		t.Fatalf("Decide = %+v, want allowed OK", d)
	}
	if d.MatchedRole != RoleAdmin {
		t.Errorf("MatchedRole = %v, want %v", d.MatchedRole, RoleAdmin)
	}
}

func TestDecideNotAMember(t *testing.T) {
	cred := validCredential([]string{"A4"}, false)
	d := Decide(cred, 5, RoleMember, time.Now().UTC(), 0)
	if d.Allowed || d.Reason != ReasonNotAMember {
		t.Errorf("Decide = %+v, want denied NOT_A_MEMBER", d)
	}
}

func TestDecideInsufficientRole(t *testing.T) {
	cred := validCredential([]string{"M4"}, false)
	d := Decide(cred, 4, RolePresident, time.Now().UTC(), 0)
	if d.Allowed || d.Reason != ReasonInsufficientRole {
		t.Errorf("Decide = %+v, want denied INSUFFICIENT_ROLE", d)
	}
}

func TestDecideGlobalAccessOverride(t *testing.T) {
	// Global access allows any org, even one absent from the claim list.
	cred := validCredential(nil, true)
	d := Decide(cred, 999, RolePresident, time.Now().UTC(), 0)
	if !d.Allowed || d.Reason != ReasonOK {
		t.Fatalf("Decide = %+v, want allowed OK", d)
	}
	if d.MatchedRole != RolePresident {
		t.Errorf("MatchedRole = %v, want %v", d.MatchedRole, RolePresident)
	}
}

func TestDecideNilCredential(t *testing.T) {
	d := Decide(nil, 4, RoleMember, time.Now().UTC(), 0)
	if d.Allowed || d.Reason != ReasonNotAuthenticated {
		t.Errorf("Decide = %+v, want denied NOT_AUTHENTICATED", d)
	}
}

func TestDecideExpired(t *testing.T) {
	now := time.Now().UTC()
	cred := &Credential{
		SubjectID: "user-1",
		Claims:    []string{"A4"},
		IssuedAt:  now.Add(-time.Hour),
		ExpiresAt: now.Add(-time.Minute),
	}
	d := Decide(cred, 4, RoleMember, now, 0)
	if d.Allowed || d.Reason != ReasonExpired {
		t.Errorf("Decide = %+v, want denied EXPIRED", d)
	}
}

func TestDecideExpiryGrace(t *testing.T) {
	now := time.Now().UTC()
	cred := &Credential{
		SubjectID: "user-1",
		Claims:    []string{"A4"},
		IssuedAt:  now.Add(-time.Hour),
		ExpiresAt: now.Add(-10 * time.Second),
	}
	// Inside the grace window the credential still evaluates.
	d := Decide(cred, 4, RoleAdmin, now, 30*time.Second)
	if !d.Allowed {
		t.Errorf("inside grace: Decide = %+v, want allowed", d)
	}
	d = Decide(cred, 4, RoleAdmin, now, 5*time.Second)
	if d.Allowed || d.Reason != ReasonExpired {
		t.Errorf("past grace: Decide = %+v, want denied EXPIRED", d)
	}
}

func TestDecideExpiryBeforeGlobalAccess(t *testing.T) {
	now := time.Now().UTC()
	cred := &Credential{
		SubjectID:    "user-1",
		GlobalAccess: true,
		IssuedAt:     now.Add(-time.Hour),
		ExpiresAt:    now.Add(-time.Minute),
	}
	d := Decide(cred, 4, RoleMember, now, 0)
	if d.Allowed || d.Reason != ReasonExpired {
		t.Errorf("Decide = %+v, want denied EXPIRED even with global access", d)
	}
}

func TestDecideMalformedClaims(t *testing.T) {
	cred := validCredential([]string{"A4", "Z9"}, false)
	d := Decide(cred, 4, RoleMember, time.Now().UTC(), 0)
	if d.Allowed || d.Reason != ReasonMalformedCredential {
		t.Errorf("Decide = %+v, want denied MALFORMED_CREDENTIAL", d)
	}
}

func TestDecideAnyMemberAccess(t *testing.T) {
	// When the required role is the lowest, every membership satisfies it.
	for _, claim := range []string{"M4", "O4", "A4", "P4"} {
		cred := validCredential([]string{claim}, false)
		d := Decide(cred, 4, RoleMember, time.Now().UTC(), 0)
		if !d.Allowed {
			t.Errorf("claim %q: Decide = %+v, want allowed", claim, d)
		}
	}
}

func TestDecideEmptyClaimsNotAMember(t *testing.T) {
	cred := validCredential([]string{}, false)
	d := Decide(cred, 1, RoleMember, time.Now().UTC(), 0)
	if d.Allowed || d.Reason != ReasonNotAMember {
		t.Errorf("Decide = %+v, want denied NOT_A_MEMBER", d)
	}
}
