// Package agent implements the agent runtime: the local answer engine, the
// delegation client, the query-resolution policy and the registry heartbeat.
package agent

import (
	"context"
	"log"
	"strings"

	"github.com/xiaot623/gogo/mesh/internal/adapter/index"
	"github.com/xiaot623/gogo/mesh/internal/domain"
	"github.com/xiaot623/gogo/mesh/internal/inspector"
	"github.com/xiaot623/gogo/mesh/internal/metrics"
	"github.com/xiaot623/gogo/mesh/internal/policy"
)

// DefaultTopK is how many nearest matches the engine asks the index for.
const DefaultTopK = 3

// LocalAnswer is a confident answer built from local evidence.
type LocalAnswer struct {
	Answer     string
	SourceHits []string
}

// Answerer turns a query into a confident local answer, or reports none.
type Answerer interface {
	Answer(ctx context.Context, query string) (LocalAnswer, bool)
}

// AnswerEngine answers from a semantic index filtered by an acceptance policy.
type AnswerEngine struct {
	agentID   string
	tool      string
	index     index.Index
	policy    *policy.Engine
	threshold float64
	topK      int
	inspector *inspector.Inspector
	metrics   *metrics.Metrics
}

// EngineOption configures an AnswerEngine.
type EngineOption func(*AnswerEngine)

// WithPolicy evaluates hits with an OPA policy instead of the plain threshold.
func WithPolicy(p *policy.Engine) EngineOption {
	return func(e *AnswerEngine) { e.policy = p }
}

// WithTopK overrides DefaultTopK.
func WithTopK(k int) EngineOption {
	return func(e *AnswerEngine) {
		if k > 0 {
			e.topK = k
		}
	}
}

// WithEngineInspector records index fetches and tool use.
func WithEngineInspector(i *inspector.Inspector) EngineOption {
	return func(e *AnswerEngine) { e.inspector = i }
}

// WithEngineMetrics counts engine outcomes.
func WithEngineMetrics(m *metrics.Metrics) EngineOption {
	return func(e *AnswerEngine) { e.metrics = m }
}

// NewAnswerEngine creates an engine over idx accepting hits at or above threshold.
func NewAnswerEngine(agentID, tool string, idx index.Index, threshold float64, opts ...EngineOption) *AnswerEngine {
	e := &AnswerEngine{
		agentID:   agentID,
		tool:      tool,
		index:     idx,
		threshold: threshold,
		topK:      DefaultTopK,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Answer queries the index and keeps the accepted hits. Index failures are a
// normal negative result.
func (e *AnswerEngine) Answer(ctx context.Context, query string) (LocalAnswer, bool) {
	if e.index == nil {
		return LocalAnswer{}, false
	}

	hits, err := e.index.Search(ctx, query, e.topK)
	e.inspector.IndexFetch(ctx, e.agentID, e.index.Collection(), err == nil, query)
	if err != nil {
		log.Printf("WARN: %s: index search failed: %v", e.agentID, err)
		e.metrics.LocalAnswer(metrics.OutcomeError)
		return LocalAnswer{}, false
	}

	var accepted []string
	for _, h := range hits {
		if e.accept(ctx, query, h) {
			accepted = append(accepted, h.Text)
		}
	}
	if len(accepted) == 0 {
		e.metrics.LocalAnswer(metrics.OutcomeMiss)
		return LocalAnswer{}, false
	}

	answer := strings.Join(accepted, domain.AnswerSeparator)
	e.inspector.Tool(ctx, e.agentID, e.tool, query, answer)
	e.metrics.LocalAnswer(metrics.OutcomeConfident)
	return LocalAnswer{Answer: answer, SourceHits: accepted}, true
}

func (e *AnswerEngine) accept(ctx context.Context, query string, h index.Hit) bool {
	if e.policy == nil {
		return h.Score >= e.threshold
	}
	ok, err := e.policy.Accept(ctx, policy.Input{
		AgentID:   e.agentID,
		Query:     query,
		Text:      h.Text,
		Score:     h.Score,
		Threshold: e.threshold,
	})
	if err != nil {
		log.Printf("WARN: %s: acceptance policy failed, using threshold: %v", e.agentID, err)
		return h.Score >= e.threshold
	}
	return ok
}
