package guard

import (
	"errors"
	"net/http"
	"strings"

	"orghub/backend/internal/authz"
	"orghub/backend/internal/security"
)

const bearerPrefix = "bearer "

// Authenticate validates the Bearer access token and puts the credential in
// context. A missing token denies with NOT_AUTHENTICATED, an expired one with
// EXPIRED so the caller knows a refresh will help, and an undecodable one
// with MALFORMED_CREDENTIAL.
func Authenticate(tokens *security.TokenProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearer(r)
			if token == "" {
				Deny(w, r, authz.ReasonNotAuthenticated)
				return
			}
			cred, sessionID, err := tokens.ValidateAccess(token)
			if err != nil {
				if errors.Is(err, security.ErrExpiredToken) {
					Deny(w, r, authz.ReasonExpired)
					return
				}
				Deny(w, r, authz.ReasonMalformedCredential)
				return
			}
			if rec := GetDecisionRecord(r.Context()); rec != nil {
				rec.UserID = cred.SubjectID
			}
			next.ServeHTTP(w, r.WithContext(WithCredential(r.Context(), cred, sessionID)))
		})
	}
}

// extractBearer returns the Bearer token from the Authorization header, or ""
// if missing or malformed.
func extractBearer(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
