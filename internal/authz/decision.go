package authz

import "time"

// Reason explains a Decision. Reasons are deterministic functions of the
// credential and the request; they are never conflated so the caller can tell
// "no membership" from "wrong role".
type Reason string

const (
	ReasonOK                  Reason = "ok"
	ReasonNotAuthenticated    Reason = "not_authenticated"
	ReasonNotAMember          Reason = "not_a_member"
	ReasonUnverifiedMember    Reason = "unverified_member"
	ReasonInsufficientRole    Reason = "insufficient_role"
	ReasonRateLimited         Reason = "rate_limited"
	ReasonMalformedCredential Reason = "malformed_credential"
	ReasonExpired             Reason = "expired"
)

// Decision is the outcome of evaluating a credential against a required role
// for one organization. Produced fresh per request, never persisted.
// MatchedRole is the role that satisfied the check; zero when denied.
type Decision struct {
	Allowed     bool
	Reason      Reason
	MatchedRole Role
}

func deny(reason Reason) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Decide evaluates cred against the required role for the requested
// organization. Pure function, first match wins:
//
//  1. nil credential → NOT_AUTHENTICATED
//  2. expired past the grace window → EXPIRED
//  3. global access → OK with the highest role, skipping per-org checks
//  4. undecodable claims → MALFORMED_CREDENTIAL
//  5. organization absent from claims → NOT_A_MEMBER
//  6. role at least required → OK, else INSUFFICIENT_ROLE
//
// Verification is not re-checked here: only verified memberships are ever
// encoded, so a claim present in the credential is authoritative until the
// credential expires.
func Decide(cred *Credential, requestedOrgID int64, required Role, now time.Time, grace time.Duration) Decision {
	if cred == nil {
		return deny(ReasonNotAuthenticated)
	}
	if cred.ExpiredAt(now, grace) {
		return deny(ReasonExpired)
	}
	if cred.GlobalAccess {
		return Decision{Allowed: true, Reason: ReasonOK, MatchedRole: RolePresident}
	}
	byOrg, err := DecodeClaims(cred.Claims)
	if err != nil {
		return deny(ReasonMalformedCredential)
	}
	role, ok := byOrg[requestedOrgID]
	if !ok {
		return deny(ReasonNotAMember)
	}
	if !AtLeast(role, required) {
		return deny(ReasonInsufficientRole)
	}
	return Decision{Allowed: true, Reason: ReasonOK, MatchedRole: role}
}
