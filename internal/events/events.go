// Package events defines membership change events and the interface for
// emitting them (e.g. to Kafka).
package events

import (
	"context"
	"time"
)

// MembershipChanged is published whenever a user's standing in an
// organization changes. Consumers use it to rebuild derived state and to
// record audit trails; the credential lifecycle reacts by reissuing the
// affected user's credentials on next refresh.
type MembershipChanged struct {
	EventID    string    `json:"event_id"`
	Kind       string    `json:"kind"`
	UserID     string    `json:"user_id"`
	OrgID      int64     `json:"org_id"`
	Role       string    `json:"role"`
	Verified   bool      `json:"verified"`
	ActorID    string    `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Producer emits membership change events. Callers use it best-effort: log
// and ignore errors.
type Producer interface {
	// Emit sends a single event. Implementations may block briefly; call
	// from a goroutine if needed.
	Emit(ctx context.Context, event *MembershipChanged) error
	// Close releases resources. Safe to call if already closed.
	Close() error
}

// NoopProducer drops all events. Used when Kafka is not configured.
type NoopProducer struct{}

func (NoopProducer) Emit(ctx context.Context, event *MembershipChanged) error { return nil }

func (NoopProducer) Close() error { return nil }
