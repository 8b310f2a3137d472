package guard

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"orghub/backend/internal/authz"
)

// Authorize evaluates the credential against the required role for the
// organization named in the route. The route must declare an {orgID} path
// variable; a missing or non-numeric one denies with NOT_A_MEMBER since no
// organization can match.
func Authorize(required authz.Role, grace time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cred, _ := GetCredential(r.Context())
			orgID := orgIDFromRequest(r)
			decision := authz.Decide(cred, orgID, required, time.Now().UTC(), grace)
			if rec := GetDecisionRecord(r.Context()); rec != nil {
				rec.OrgID = orgID
				rec.Reason = decision.Reason
			}
			if !decision.Allowed {
				Deny(w, r, decision.Reason)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func orgIDFromRequest(r *http.Request) int64 {
	raw, ok := mux.Vars(r)["orgID"]
	if !ok {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}
