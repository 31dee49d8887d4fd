package agent

import (
	"context"
	"log"
	"time"

	"github.com/xiaot623/gogo/mesh/internal/adapter/agentclient"
	"github.com/xiaot623/gogo/mesh/internal/domain"
	"github.com/xiaot623/gogo/mesh/internal/inspector"
	"github.com/xiaot623/gogo/mesh/internal/metrics"
	"github.com/xiaot623/gogo/mesh/internal/retry"
)

// PeerDirectory lists the live agents of the mesh.
type PeerDirectory interface {
	ListLive(ctx context.Context) ([]domain.AgentCard, error)
}

// PeerSender delivers an envelope to one peer.
type PeerSender interface {
	Send(ctx context.Context, peer domain.AgentCard, env *domain.DelegationEnvelope) (*agentclient.Response, error)
}

// PeerFilter decides whether a peer is asked at all. It is the hook for
// capability-based routing; the default asks every peer.
type PeerFilter func(peer domain.AgentCard, query string) bool

// Delegator forwards an envelope to peers and collects their replies.
type Delegator interface {
	Delegate(ctx context.Context, env *domain.DelegationEnvelope) []agentclient.Response
}

// DelegationPolicy holds the retry bounds of the delegation client.
type DelegationPolicy struct {
	// Attempts and Backoff apply per peer.
	Attempts int
	Backoff  time.Duration

	// DirectoryAttempts and DirectoryDelay apply to the registry lookup.
	DirectoryAttempts int
	DirectoryDelay    time.Duration
}

// DefaultDelegationPolicy is 2 attempts with 1s backoff per peer and 3
// registry attempts 1s apart.
var DefaultDelegationPolicy = DelegationPolicy{
	Attempts:          2,
	Backoff:           time.Second,
	DirectoryAttempts: 3,
	DirectoryDelay:    time.Second,
}

// DelegationClient sends a query to every live peer except the caller.
type DelegationClient struct {
	self      string
	directory PeerDirectory
	sender    PeerSender
	policy    DelegationPolicy
	filter    PeerFilter
	inspector *inspector.Inspector
	metrics   *metrics.Metrics
}

// DelegationOption configures a DelegationClient.
type DelegationOption func(*DelegationClient)

// WithPeerFilter restricts which peers are asked.
func WithPeerFilter(f PeerFilter) DelegationOption {
	return func(c *DelegationClient) { c.filter = f }
}

// WithDelegationInspector records every delegation.
func WithDelegationInspector(i *inspector.Inspector) DelegationOption {
	return func(c *DelegationClient) { c.inspector = i }
}

// WithDelegationMetrics counts peer calls.
func WithDelegationMetrics(m *metrics.Metrics) DelegationOption {
	return func(c *DelegationClient) { c.metrics = m }
}

// NewDelegationClient creates a client acting on behalf of agent self.
func NewDelegationClient(self string, directory PeerDirectory, sender PeerSender, policy DelegationPolicy, opts ...DelegationOption) *DelegationClient {
	c := &DelegationClient{
		self:      self,
		directory: directory,
		sender:    sender,
		policy:    policy,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Delegate sends env to every live peer that is neither the caller nor already
// visited, each with its own retries. Failed peers are skipped; replies come
// back in completion order.
func (c *DelegationClient) Delegate(ctx context.Context, env *domain.DelegationEnvelope) []agentclient.Response {
	peers := c.peers(ctx, env)
	if len(peers) == 0 {
		return nil
	}

	results := make(chan *agentclient.Response, len(peers))
	for _, peer := range peers {
		c.inspector.Delegate(ctx, c.self, peer.ID, env.Payload.Query)
		go func() {
			results <- c.sendWithRetry(ctx, peer, env)
		}()
	}

	var responses []agentclient.Response
	for range peers {
		if resp := <-results; resp != nil {
			responses = append(responses, *resp)
		}
	}
	return responses
}

func (c *DelegationClient) peers(ctx context.Context, env *domain.DelegationEnvelope) []domain.AgentCard {
	var live []domain.AgentCard
	err := retry.Fixed(ctx, c.policy.DirectoryAttempts, c.policy.DirectoryDelay, func(ctx context.Context) error {
		var err error
		live, err = c.directory.ListLive(ctx)
		return err
	})
	if err != nil {
		log.Printf("WARN: %s: registry unavailable, not delegating: %v", c.self, err)
		return nil
	}

	var peers []domain.AgentCard
	for _, p := range live {
		if p.ID == c.self || env.HasVisited(p.ID) {
			continue
		}
		if c.filter != nil && !c.filter(p, env.Payload.Query) {
			continue
		}
		peers = append(peers, p)
	}
	return peers
}

func (c *DelegationClient) sendWithRetry(ctx context.Context, peer domain.AgentCard, env *domain.DelegationEnvelope) *agentclient.Response {
	var resp *agentclient.Response
	err := retry.Fixed(ctx, c.policy.Attempts, c.policy.Backoff, func(ctx context.Context) error {
		var err error
		resp, err = c.sender.Send(ctx, peer, env)
		c.metrics.PeerCall("delegation", err)
		return err
	})
	if err != nil {
		log.Printf("WARN: %s: skipping peer %s: %v", c.self, peer.ID, err)
		c.inspector.PeerFailure(ctx, c.self, peer.ID, err)
		return nil
	}
	return resp
}
