package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xiaot623/gogo/mesh/internal/adapter/agentclient"
	"github.com/xiaot623/gogo/mesh/internal/adapter/registryclient"
	"github.com/xiaot623/gogo/mesh/internal/config"
	"github.com/xiaot623/gogo/mesh/internal/coordinator"
	"github.com/xiaot623/gogo/mesh/internal/inspector"
	"github.com/xiaot623/gogo/mesh/internal/metrics"
	"github.com/xiaot623/gogo/mesh/internal/repository"
	server "github.com/xiaot623/gogo/mesh/internal/transport/http"
)

func main() {
	cfg := config.LoadCoordinator()

	log.Printf("Starting coordinator...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Discovery URL: %s", cfg.DiscoveryURL)

	var insp *inspector.Inspector
	if cfg.InspectorDB != "" {
		db, err := store.NewSQLiteStore(cfg.InspectorDB)
		if err != nil {
			log.Fatalf("Failed to initialize inspector store: %v", err)
		}
		defer db.Close()
		insp = inspector.New(db)
		log.Printf("Inspector database: %s", cfg.InspectorDB)
	}

	m := metrics.New()
	registryClient := registryclient.NewClient(cfg.DiscoveryURL, cfg.PeerTimeout)
	agentClient := agentclient.NewClient(cfg.PeerTimeout)

	coord := coordinator.New(registryClient, agentClient,
		coordinator.WithRetry(cfg.MaxRetries, cfg.RetryDelay),
		coordinator.WithFanOutLimit(cfg.FanOutLimit),
		coordinator.WithInspector(insp),
		coordinator.WithMetrics(m),
	)

	e := server.NewCoordinatorServer(coord, insp, m)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Coordinator started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down coordinator...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Coordinator stopped")
}
