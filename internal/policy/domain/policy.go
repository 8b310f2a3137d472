package domain

import "time"

// OrgPolicyConfig holds an organization's escalation policy override. An
// empty EscalationRego means the organization uses the built-in default.
type OrgPolicyConfig struct {
	OrgID          int64
	EscalationRego string
	UpdatedAt      time.Time
}
