package agent

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/xiaot623/gogo/mesh/internal/domain"
	"github.com/xiaot623/gogo/mesh/internal/metrics"
)

// DefaultHeartbeatInterval is how often an agent re-registers.
const DefaultHeartbeatInterval = 30 * time.Second

// Registrar upserts an agent card in the registry.
type Registrar interface {
	Register(ctx context.Context, card domain.AgentCard) error
}

// Heartbeat keeps an agent's registry entry fresh. Registration failures are
// logged and the loop carries on; Stop aborts any in-flight registration.
type Heartbeat struct {
	registrar Registrar
	card      domain.AgentCard
	interval  time.Duration
	timeout   time.Duration
	metrics   *metrics.Metrics

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewHeartbeat creates a heartbeat for card. A non-positive interval uses
// DefaultHeartbeatInterval.
func NewHeartbeat(registrar Registrar, card domain.AgentCard, interval time.Duration, m *metrics.Metrics) *Heartbeat {
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}
	return &Heartbeat{
		registrar: registrar,
		card:      card,
		interval:  interval,
		timeout:   5 * time.Second,
		metrics:   m,
	}
}

// Start registers immediately and then every interval until ctx is done or
// Stop is called. Calling Start twice is a no-op.
func (h *Heartbeat) Start(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.done != nil {
		return
	}
	ctx, h.cancel = context.WithCancel(ctx)
	h.done = make(chan struct{})
	go h.run(ctx, h.done)
}

// Stop cancels the loop and waits for it to exit.
func (h *Heartbeat) Stop() {
	h.mu.Lock()
	cancel, done := h.cancel, h.done
	h.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (h *Heartbeat) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		h.beat(ctx)
		timer.Reset(h.interval)
	}
}

func (h *Heartbeat) beat(ctx context.Context) {
	callCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	err := h.registrar.Register(callCtx, h.card)
	h.metrics.Heartbeat(err)
	if err != nil && ctx.Err() == nil {
		log.Printf("WARN: %s: heartbeat failed: %v", h.card.ID, err)
	}
}
