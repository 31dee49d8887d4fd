// Package coordinator fans a client query out to every live agent of the mesh
// and aggregates whatever comes back.
package coordinator

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/xiaot623/gogo/mesh/internal/adapter/agentclient"
	"github.com/xiaot623/gogo/mesh/internal/domain"
	"github.com/xiaot623/gogo/mesh/internal/inspector"
	"github.com/xiaot623/gogo/mesh/internal/metrics"
	"github.com/xiaot623/gogo/mesh/internal/retry"
)

// Directory lists the live agents of the mesh.
type Directory interface {
	ListLive(ctx context.Context) ([]domain.AgentCard, error)
}

// Sender delivers an envelope to one agent.
type Sender interface {
	Send(ctx context.Context, peer domain.AgentCard, env *domain.DelegationEnvelope) (*agentclient.Response, error)
}

// Coordinator resolves client queries against the mesh.
type Coordinator struct {
	directory  Directory
	sender     Sender
	retries    int
	retryDelay time.Duration
	fanOut     int
	inspector  *inspector.Inspector
	metrics    *metrics.Metrics
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithRetry sets how often the registry lookup is attempted and the fixed
// delay between attempts.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Coordinator) {
		c.retries = attempts
		c.retryDelay = delay
	}
}

// WithFanOutLimit bounds how many agents are asked at once. Zero or less
// asks every agent at once.
func WithFanOutLimit(n int) Option {
	return func(c *Coordinator) { c.fanOut = n }
}

// WithInspector records fan-outs and peer failures.
func WithInspector(i *inspector.Inspector) Option {
	return func(c *Coordinator) { c.inspector = i }
}

// WithMetrics counts resolves and peer calls.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// New creates a coordinator. The sender is expected to bound each call with
// its own timeout.
func New(directory Directory, sender Sender, opts ...Option) *Coordinator {
	c := &Coordinator{
		directory:  directory,
		sender:     sender,
		retries:    3,
		retryDelay: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve asks every live agent the query concurrently. Agents that fail are
// dropped; when no agent is listed or none of them answers, the result is an
// empty list plus an error message. Peer calls are not cancelled when ctx is.
func (c *Coordinator) Resolve(ctx context.Context, query string) domain.AggregateResult {
	query = strings.TrimSpace(query)
	peers := c.livePeers(ctx)
	if len(peers) == 0 {
		return c.unavailable()
	}

	env := &domain.DelegationEnvelope{
		MessageID: "msg_" + uuid.New().String()[:8],
		From:      domain.CoordinatorID,
		Payload:   domain.Query{Query: query},
	}

	dispatchCtx := context.WithoutCancel(ctx)
	var (
		mu        sync.Mutex
		responses = []domain.AgentResponse{}
		g         errgroup.Group
	)
	if c.fanOut > 0 {
		g.SetLimit(c.fanOut)
	}
	for _, peer := range peers {
		g.Go(func() error {
			resp, err := c.sender.Send(dispatchCtx, peer, env)
			c.metrics.PeerCall("coordinator", err)
			if err != nil {
				log.Printf("WARN: coordinator: dropping agent %s: %v", peer.ID, err)
				c.inspector.PeerFailure(dispatchCtx, domain.CoordinatorID, peer.ID, err)
				return err
			}
			mu.Lock()
			responses = append(responses, resp.Normalize())
			mu.Unlock()
			return nil
		})
	}
	// Wait reports the first failure; it only matters when nobody answered.
	firstErr := g.Wait()

	c.inspector.FanOut(dispatchCtx, query, len(peers), len(responses))
	if len(responses) == 0 {
		log.Printf("WARN: coordinator: none of %d agents answered: %v", len(peers), firstErr)
		return c.unavailable()
	}
	c.metrics.Resolve(metrics.OutcomeOK)
	return domain.AggregateResult{AgentResponses: responses}
}

func (c *Coordinator) unavailable() domain.AggregateResult {
	c.metrics.Resolve(metrics.OutcomeError)
	return domain.AggregateResult{
		AgentResponses: []domain.AgentResponse{},
		Error:          domain.ErrCoordinatorUnavailable,
	}
}

// LiveCount returns the number of live agents, looked up with the same
// retries as Resolve, or 0 if the registry cannot be reached.
func (c *Coordinator) LiveCount(ctx context.Context) int {
	return len(c.livePeers(ctx))
}

func (c *Coordinator) livePeers(ctx context.Context) []domain.AgentCard {
	var peers []domain.AgentCard
	err := retry.Fixed(ctx, c.retries, c.retryDelay, func(ctx context.Context) error {
		var err error
		peers, err = c.directory.ListLive(ctx)
		c.metrics.PeerCall("registry", err)
		return err
	})
	if err != nil {
		log.Printf("WARN: coordinator: registry unavailable after %d attempts: %v", c.retries, err)
		return nil
	}
	return peers
}
