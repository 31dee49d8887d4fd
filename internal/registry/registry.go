// Package registry holds the process-wide store of agent advertisements.
//
// Liveness is a read-time filter: entries are never removed by reads, only by
// an explicit Sweep.
package registry

import (
	"errors"
	"sync"
	"time"

	"github.com/xiaot623/gogo/mesh/internal/domain"
)

// DefaultLivenessWindow is how long an entry stays live without a heartbeat.
const DefaultLivenessWindow = 3600 * time.Second

// ErrNotFound is returned by Get for unknown ids.
var ErrNotFound = errors.New("agent not found")

// Registry stores registry entries keyed by agent id.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]domain.RegistryEntry
	order   []string
	window  time.Duration
	now     func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithLivenessWindow overrides DefaultLivenessWindow.
func WithLivenessWindow(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.window = d
		}
	}
}

// WithClock replaces time.Now, used by tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[string]domain.RegistryEntry),
		window:  DefaultLivenessWindow,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Window returns the liveness window in use.
func (r *Registry) Window() time.Duration {
	return r.window
}

// Register upserts the card and stamps last_seen.
func (r *Registry) Register(card domain.AgentCard) domain.RegistryEntry {
	card.Capabilities = card.Capabilities.Normalize()
	entry := domain.RegistryEntry{AgentCard: card, LastSeen: r.now()}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[card.ID]; !exists {
		r.order = append(r.order, card.ID)
	}
	r.entries[card.ID] = entry
	return entry
}

// ListLive returns the entries inside the liveness window in insertion order.
func (r *Registry) ListLive() []domain.RegistryEntry {
	now := r.now()

	r.mu.RLock()
	defer r.mu.RUnlock()
	live := make([]domain.RegistryEntry, 0, len(r.order))
	for _, id := range r.order {
		e := r.entries[id]
		if e.Live(now, r.window) {
			live = append(live, e)
		}
	}
	return live
}

// Get returns the entry for id regardless of liveness.
func (r *Registry) Get(id string) (domain.RegistryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return domain.RegistryEntry{}, ErrNotFound
	}
	return e, nil
}

// Count returns the number of stored entries, live or stale.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Sweep removes entries whose last_seen is older than maxAge and returns how
// many were evicted.
func (r *Registry) Sweep(maxAge time.Duration) int {
	if maxAge <= 0 {
		return 0
	}
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.order[:0]
	evicted := 0
	for _, id := range r.order {
		if now.Sub(r.entries[id].LastSeen) >= maxAge {
			delete(r.entries, id)
			evicted++
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
	return evicted
}
