package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"

	"orghub/backend/internal/policy/repository"
)

const defaultPolicyPackage = "orghub.escalation"

// Default Rego policy matching the built-in anomaly heuristics: a high-risk
// request escalates when the credential is older than the configured limit or
// when the client sends no User-Agent.
const defaultRegoPolicy = `package orghub.escalation

default escalate = false

escalate if {
	input.request.high_risk
	input.credential.age_seconds > input.limits.max_credential_age_seconds
}

escalate if {
	input.request.high_risk
	input.request.user_agent == ""
}
`

// EscalationInput is the request context handed to the Rego policy.
type EscalationInput struct {
	Method           string
	Path             string
	HighRisk         bool
	UserAgent        string
	IP               string
	CredentialAge    time.Duration
	GlobalAccess     bool
	Role             string
	MaxCredentialAge time.Duration
	OrgID            int64
}

// EscalationResult is the policy verdict. An escalated request is denied and
// the caller is told to obtain a fresh credential.
type EscalationResult struct {
	Escalate bool
}

// OPAEvaluator evaluates escalation policies using the in-process OPA Rego
// engine. Organizations may override the default policy; evaluation failures
// fall back to no escalation so a broken policy cannot lock everyone out.
type OPAEvaluator struct {
	policyRepo repository.Repository
}

// NewOPAEvaluator returns an OPA-based escalation evaluator.
func NewOPAEvaluator(policyRepo repository.Repository) *OPAEvaluator {
	return &OPAEvaluator{policyRepo: policyRepo}
}

// HealthCheck verifies that the Rego engine can compile and evaluate the
// default policy. Does not touch the policy repo or database.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	compiler, err := ast.CompileModules(map[string]string{"policy_0.rego": defaultRegoPolicy})
	if err != nil {
		return fmt.Errorf("compile default policy: %w", err)
	}
	q := rego.New(
		rego.Query("data."+defaultPolicyPackage+".escalate"),
		rego.Compiler(compiler),
		rego.Input(buildInput(EscalationInput{})),
	)
	rs, err := q.Eval(ctx)
	if err != nil {
		return fmt.Errorf("eval default policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return fmt.Errorf("policy query returned no result")
	}
	return nil
}

// Evaluate runs the organization's escalation policy (or the default) against
// the request context.
func (e *OPAEvaluator) Evaluate(ctx context.Context, in EscalationInput) (EscalationResult, error) {
	policy := defaultRegoPolicy
	if e.policyRepo != nil && in.OrgID > 0 {
		cfg, err := e.policyRepo.GetByOrg(ctx, in.OrgID)
		if err != nil {
			log.Printf("policy: failed to load policy for org %d: %v", in.OrgID, err)
		} else if cfg != nil && cfg.EscalationRego != "" {
			policy = cfg.EscalationRego
		}
	}

	result, err := e.evaluatePolicy(ctx, policy, buildInput(in))
	if err != nil {
		log.Printf("policy: evaluation failed: %v, not escalating", err)
		return EscalationResult{Escalate: false}, nil
	}
	return result, nil
}

func buildInput(in EscalationInput) map[string]interface{} {
	return map[string]interface{}{
		"request": map[string]interface{}{
			"method":     in.Method,
			"path":       in.Path,
			"high_risk":  in.HighRisk,
			"user_agent": in.UserAgent,
			"ip":         in.IP,
		},
		"credential": map[string]interface{}{
			"age_seconds":   int64(in.CredentialAge / time.Second),
			"global_access": in.GlobalAccess,
			"role":          in.Role,
		},
		"limits": map[string]interface{}{
			"max_credential_age_seconds": int64(in.MaxCredentialAge / time.Second),
		},
		"org": map[string]interface{}{
			"id": in.OrgID,
		},
	}
}

func (e *OPAEvaluator) evaluatePolicy(ctx context.Context, policy string, input map[string]interface{}) (EscalationResult, error) {
	compiler, err := ast.CompileModules(map[string]string{"policy_0.rego": policy})
	if err != nil {
		return EscalationResult{}, fmt.Errorf("compile policy: %w", err)
	}

	out := EscalationResult{Escalate: false}

	q := rego.New(
		rego.Query("data."+defaultPolicyPackage+".escalate"),
		rego.Compiler(compiler),
		rego.Input(input),
	)
	rs, err := q.Eval(ctx)
	if err != nil {
		return EscalationResult{}, fmt.Errorf("eval policy: %w", err)
	}
	if len(rs) > 0 && len(rs[0].Expressions) > 0 {
		if v, ok := rs[0].Expressions[0].Value.(bool); ok {
			out.Escalate = v
		}
	}
	return out, nil
}
