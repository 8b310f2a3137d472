// Package guard implements the request guard pipeline: authentication, rate
// limiting, anomaly escalation, and authorization run in that order, each
// stage able to short-circuit with a deterministic denial reason.
package guard

import (
	"context"

	"orghub/backend/internal/authz"
)

type contextKey struct{ name string }

var (
	credentialKey = contextKey{"credential"}
	sessionIDKey  = contextKey{"session_id"}
	recordKey     = contextKey{"decision_record"}
)

// WithCredential returns a context carrying the authenticated credential and
// its session id. Handlers and later pipeline stages read these via
// GetCredential and GetSessionID.
func WithCredential(ctx context.Context, cred *authz.Credential, sessionID string) context.Context {
	ctx = context.WithValue(ctx, credentialKey, cred)
	ctx = context.WithValue(ctx, sessionIDKey, sessionID)
	return ctx
}

// GetCredential returns the credential from context and true if set.
func GetCredential(ctx context.Context) (*authz.Credential, bool) {
	v, ok := ctx.Value(credentialKey).(*authz.Credential)
	return v, ok
}

// GetSessionID returns the session_id from context and true if set.
func GetSessionID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(sessionIDKey).(string)
	return v, ok
}

// GetUserID returns the credential subject from context and true if set.
func GetUserID(ctx context.Context) (string, bool) {
	cred, ok := GetCredential(ctx)
	if !ok || cred == nil {
		return "", false
	}
	return cred.SubjectID, true
}

// DecisionRecord collects the pipeline outcome for the audit trail. The audit
// middleware installs one before the chain runs; deny and the authorize stage
// fill it in.
type DecisionRecord struct {
	Reason authz.Reason
	OrgID  int64
	UserID string
}

// WithDecisionRecord returns a context carrying rec.
func WithDecisionRecord(ctx context.Context, rec *DecisionRecord) context.Context {
	return context.WithValue(ctx, recordKey, rec)
}

// GetDecisionRecord returns the decision record from context, or nil.
func GetDecisionRecord(ctx context.Context) *DecisionRecord {
	v, _ := ctx.Value(recordKey).(*DecisionRecord)
	return v
}
