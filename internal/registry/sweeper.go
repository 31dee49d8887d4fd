package registry

import (
	"context"
	"log"
	"time"
)

// RunSweeper evicts entries older than maxAge every interval until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, interval, maxAge time.Duration) {
	if interval <= 0 || maxAge <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(maxAge); n > 0 {
				log.Printf("registry: evicted %d stale agents", n)
			}
		}
	}
}
