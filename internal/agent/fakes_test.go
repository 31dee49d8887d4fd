package agent

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/xiaot623/gogo/mesh/internal/adapter/agentclient"
	"github.com/xiaot623/gogo/mesh/internal/adapter/index"
	"github.com/xiaot623/gogo/mesh/internal/domain"
)

type fakeIndex struct {
	mu       sync.Mutex
	hits     []index.Hit
	err      error
	queries  []string
	readyErr error
	ensured  int
}

func (f *fakeIndex) Search(ctx context.Context, query string, limit int) ([]index.Hit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.hits) > limit {
		return f.hits[:limit], nil
	}
	return f.hits, nil
}

func (f *fakeIndex) EnsureCollection(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensured++
	return nil
}

func (f *fakeIndex) Ready(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readyErr
}

func (f *fakeIndex) Collection() string { return "HealthNote" }

type fakeDirectory struct {
	mu    sync.Mutex
	peers []domain.AgentCard
	fails int
	calls int
}

func (f *fakeDirectory) ListLive(ctx context.Context) ([]domain.AgentCard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.fails {
		return nil, &domain.PeerError{Kind: domain.PeerUnreachable, Target: "registry"}
	}
	return f.peers, nil
}

type fakeSender struct {
	mu        sync.Mutex
	calls     map[string]int
	envelopes []domain.DelegationEnvelope
	replies   map[string]*agentclient.Response
	delays    map[string]time.Duration
	failFirst map[string]int
}

func newFakeSender() *fakeSender {
	return &fakeSender{
		calls:     map[string]int{},
		replies:   map[string]*agentclient.Response{},
		delays:    map[string]time.Duration{},
		failFirst: map[string]int{},
	}
}

func (f *fakeSender) Send(ctx context.Context, peer domain.AgentCard, env *domain.DelegationEnvelope) (*agentclient.Response, error) {
	f.mu.Lock()
	f.calls[peer.ID]++
	n := f.calls[peer.ID]
	f.envelopes = append(f.envelopes, *env)
	reply := f.replies[peer.ID]
	delay := f.delays[peer.ID]
	failFirst := f.failFirst[peer.ID]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if n <= failFirst || reply == nil {
		return nil, &domain.PeerError{Kind: domain.PeerUnreachable, Target: peer.ID, Err: errors.New("connection refused")}
	}
	return reply, nil
}

func (f *fakeSender) callCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

func (f *fakeSender) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

type countingDelegator struct {
	mu      sync.Mutex
	calls   int
	last    *domain.DelegationEnvelope
	replies []agentclient.Response
}

func (d *countingDelegator) Delegate(ctx context.Context, env *domain.DelegationEnvelope) []agentclient.Response {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	d.last = env
	return d.replies
}

func reply(from, answer string, hits ...string) *agentclient.Response {
	return &agentclient.Response{From: from, Tool: "t", Answer: &answer, SourceHits: hits}
}

func strPtr(s string) *string { return &s }

var fastPolicy = DelegationPolicy{Attempts: 2, Backoff: 5 * time.Millisecond, DirectoryAttempts: 3, DirectoryDelay: 5 * time.Millisecond}
