package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/xiaot623/gogo/mesh/internal/domain"
	"github.com/xiaot623/gogo/mesh/internal/inspector"
)

// DefaultMaxHops bounds how many times a query may be delegated onward.
const DefaultMaxHops = 3

// Runtime applies the query-resolution policy of one agent: answer locally
// when confident, otherwise delegate to peers, otherwise fall back to a
// placeholder. Handle never fails.
type Runtime struct {
	card      domain.AgentCard
	tool      string
	engine    Answerer
	delegator Delegator
	maxHops   int
	inspector *inspector.Inspector
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithMaxHops overrides DefaultMaxHops. Zero disables onward delegation.
func WithMaxHops(n int) RuntimeOption {
	return func(r *Runtime) {
		if n >= 0 {
			r.maxHops = n
		}
	}
}

// WithRuntimeInspector records fallbacks.
func WithRuntimeInspector(i *inspector.Inspector) RuntimeOption {
	return func(r *Runtime) { r.inspector = i }
}

// NewRuntime creates the runtime of the agent described by card.
func NewRuntime(card domain.AgentCard, tool string, engine Answerer, delegator Delegator, opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		card:      card,
		tool:      tool,
		engine:    engine,
		delegator: delegator,
		maxHops:   DefaultMaxHops,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Card returns the advertised card.
func (r *Runtime) Card() domain.AgentCard {
	return r.card
}

// Handle resolves the query carried by env.
func (r *Runtime) Handle(ctx context.Context, env domain.DelegationEnvelope) domain.AgentResponse {
	query := strings.TrimSpace(env.Payload.Query)
	if query == "" {
		return r.placeholder(ctx, query)
	}

	if r.engine != nil {
		if local, ok := r.engine.Answer(ctx, query); ok {
			return r.response(local.Answer, local.SourceHits)
		}
	}

	if out, ok := r.forward(env, query); ok && r.delegator != nil {
		replies := r.delegator.Delegate(ctx, out)

		var answers []string
		hits := []string{}
		for _, reply := range replies {
			hits = append(hits, reply.SourceHits...)
			if reply.HasAnswer() {
				answers = append(answers, *reply.Answer)
			}
		}
		if len(answers) > 0 {
			return r.response(strings.Join(answers, domain.AnswerSeparator), hits)
		}
	}

	return r.placeholder(ctx, query)
}

// forward builds the onward envelope, or reports that the hop budget is spent.
func (r *Runtime) forward(in domain.DelegationEnvelope, query string) (*domain.DelegationEnvelope, bool) {
	ttl := r.maxHops
	if in.TTL != nil {
		ttl = *in.TTL
	}
	if ttl <= 0 {
		return nil, false
	}
	next := ttl - 1

	visited := append([]string(nil), in.Visited...)
	if in.From != "" {
		visited = appendUnique(visited, in.From)
	}
	visited = appendUnique(visited, r.card.ID)

	return &domain.DelegationEnvelope{
		MessageID: "msg_" + uuid.New().String()[:8],
		From:      r.card.ID,
		Payload:   domain.Query{Query: query},
		Visited:   visited,
		TTL:       &next,
	}, true
}

func (r *Runtime) response(answer string, hits []string) domain.AgentResponse {
	if hits == nil {
		hits = []string{}
	}
	return domain.AgentResponse{
		From:       r.card.ID,
		Tool:       r.tool,
		Answer:     answer,
		SourceHits: hits,
	}
}

func (r *Runtime) placeholder(ctx context.Context, query string) domain.AgentResponse {
	answer := NoDataFrom(r.card.ID)
	r.inspector.Fallback(ctx, r.card.ID, query, answer)
	return r.response(answer, nil)
}

// NoDataFrom is the placeholder answer of agent id.
func NoDataFrom(id string) string {
	return fmt.Sprintf("No data available from %s.", id)
}

func appendUnique(list []string, id string) []string {
	for _, v := range list {
		if v == id {
			return list
		}
	}
	return append(list, id)
}
