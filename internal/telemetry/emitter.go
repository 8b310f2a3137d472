// Package telemetry defines the security event stream fed by the guard
// pipeline.
package telemetry

import (
	"context"
	"time"
)

// SecurityEvent is one guard decision worth shipping to the collector:
// denials and high-risk allows.
type SecurityEvent struct {
	UserID    string
	OrgID     int64
	SessionID string
	Action    string
	Resource  string
	Reason    string
	IP        string
	CreatedAt time.Time
}

// EventEmitter ships security events. Best-effort: callers log and ignore
// errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *SecurityEvent) error
}
