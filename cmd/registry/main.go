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

	"github.com/xiaot623/gogo/mesh/internal/config"
	"github.com/xiaot623/gogo/mesh/internal/registry"
	server "github.com/xiaot623/gogo/mesh/internal/transport/http"
)

func main() {
	cfg := config.LoadRegistry()

	log.Printf("Starting registry...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Liveness window: %s", cfg.LivenessWindow)

	reg := registry.New(registry.WithLivenessWindow(cfg.LivenessWindow))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.SweepInterval > 0 {
		log.Printf("Evicting entries older than %s every %s", cfg.EvictAfter, cfg.SweepInterval)
		go reg.RunSweeper(ctx, cfg.SweepInterval, cfg.EvictAfter)
	}

	e := server.NewRegistryServer(reg)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Registry started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down registry...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Registry stopped")
}
