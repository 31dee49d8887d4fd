package agent

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/xiaot623/gogo/mesh/internal/adapter/index"
)

// Bootstrap waits up to timeout for idx to become ready, polling every poll,
// then creates its collection if absent.
func Bootstrap(ctx context.Context, idx index.Index, timeout, poll time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		err := idx.Ready(waitCtx)
		if err == nil {
			break
		}
		log.Printf("INFO: waiting for index %s: %v", idx.Collection(), err)

		select {
		case <-waitCtx.Done():
			return fmt.Errorf("index not ready after %s: %w", timeout, err)
		case <-time.After(poll):
		}
	}

	if err := idx.EnsureCollection(ctx); err != nil {
		return fmt.Errorf("failed to ensure collection %s: %w", idx.Collection(), err)
	}
	return nil
}
