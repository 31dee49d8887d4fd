package policy

import (
	"context"
	"fmt"
	"os"

	"github.com/open-policy-agent/opa/rego"
)

// Engine is the OPA policy engine deciding whether a local index hit is
// confident enough to be used as evidence.
type Engine struct {
	query rego.PreparedEvalQuery
}

// Input is what the acceptance policy sees for one hit.
type Input struct {
	AgentID   string  `json:"agent_id"`
	Query     string  `json:"query"`
	Text      string  `json:"text"`
	Score     float64 `json:"score"`
	Threshold float64 `json:"threshold"`
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.answer_policy.accept"),
		rego.Module("answer_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// NewEngineFromFile loads the policy from path, or DefaultPolicy when path is empty.
func NewEngineFromFile(ctx context.Context, path string) (*Engine, error) {
	if path == "" {
		return NewEngine(ctx, DefaultPolicy)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	return NewEngine(ctx, string(content))
}

// Accept evaluates the policy for one hit.
func (e *Engine) Accept(ctx context.Context, in Input) (bool, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(in))
	if err != nil {
		return false, fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return false, nil
	}

	accepted, ok := results[0].Expressions[0].Value.(bool)
	if !ok {
		return false, fmt.Errorf("policy returned %T, want bool", results[0].Expressions[0].Value)
	}
	return accepted, nil
}

// DefaultPolicy accepts hits whose similarity reaches the certainty threshold.
const DefaultPolicy = `
package answer_policy

default accept = false

accept {
	input.score >= input.threshold
	count(trim_space(input.text)) > 0
}
`
