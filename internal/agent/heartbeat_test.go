package agent

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/mesh/internal/domain"
	"github.com/xiaot623/gogo/mesh/internal/metrics"
)

type fakeRegistrar struct {
	mu      sync.Mutex
	calls   int
	err     error
	block   bool
	started chan struct{}
}

func (f *fakeRegistrar) Register(ctx context.Context, card domain.AgentCard) error {
	f.mu.Lock()
	f.calls++
	block, err, started := f.block, f.err, f.started
	f.mu.Unlock()

	if block {
		if started != nil {
			close(started)
		}
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}

func (f *fakeRegistrar) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestHeartbeatRegistersImmediatelyAndRepeats(t *testing.T) {
	reg := &fakeRegistrar{}
	hb := NewHeartbeat(reg, h1Card, 20*time.Millisecond, metrics.New())
	hb.Start(context.Background())
	defer hb.Stop()

	require.Eventually(t, func() bool { return reg.count() >= 1 }, 50*time.Millisecond, 2*time.Millisecond)
	require.Eventually(t, func() bool { return reg.count() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestHeartbeatContinuesAfterFailures(t *testing.T) {
	reg := &fakeRegistrar{err: errors.New("registry down")}
	hb := NewHeartbeat(reg, h1Card, 10*time.Millisecond, nil)
	hb.Start(context.Background())
	defer hb.Stop()

	require.Eventually(t, func() bool { return reg.count() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestHeartbeatStopAbortsInFlightRegistration(t *testing.T) {
	reg := &fakeRegistrar{block: true, started: make(chan struct{})}
	hb := NewHeartbeat(reg, h1Card, time.Hour, nil)
	hb.Start(context.Background())

	select {
	case <-reg.started:
	case <-time.After(time.Second):
		t.Fatal("registration never started")
	}

	start := time.Now()
	hb.Stop()
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, reg.count())
}

func TestHeartbeatStopBeforeStart(t *testing.T) {
	hb := NewHeartbeat(&fakeRegistrar{}, h1Card, 0, nil)
	hb.Stop()
}
