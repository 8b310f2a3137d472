package domain

import "time"

// AuditLog records the outcome of one security-relevant request. OrgID is 0
// when the request was not organization-scoped. Reason carries the decision
// reason code for denials ("ok" for allowed requests).
type AuditLog struct {
	ID        string
	OrgID     int64
	UserID    string
	Action    string
	Resource  string
	IP        string
	Reason    string
	CreatedAt time.Time
}
