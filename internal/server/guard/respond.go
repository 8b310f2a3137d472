package guard

import (
	"encoding/json"
	"net/http"

	"orghub/backend/internal/authz"
)

// StatusForReason maps a denial reason to its HTTP status: credential
// problems are 401 (the caller should re-authenticate or refresh), standing
// problems are 403, throttling is 429.
func StatusForReason(reason authz.Reason) int {
	switch reason {
	case authz.ReasonNotAuthenticated, authz.ReasonExpired, authz.ReasonMalformedCredential:
		return http.StatusUnauthorized
	case authz.ReasonRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusForbidden
	}
}

// Deny writes the denial response and records the reason for the audit
// trail.
func Deny(w http.ResponseWriter, r *http.Request, reason authz.Reason) {
	if rec := GetDecisionRecord(r.Context()); rec != nil {
		rec.Reason = reason
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusForReason(reason))
	_ = json.NewEncoder(w).Encode(map[string]string{"error": string(reason)})
}
