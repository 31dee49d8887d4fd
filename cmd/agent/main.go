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
	"github.com/xiaot623/gogo/mesh/internal/adapter/index"
	"github.com/xiaot623/gogo/mesh/internal/adapter/registryclient"
	"github.com/xiaot623/gogo/mesh/internal/agent"
	"github.com/xiaot623/gogo/mesh/internal/config"
	"github.com/xiaot623/gogo/mesh/internal/domain"
	"github.com/xiaot623/gogo/mesh/internal/inspector"
	"github.com/xiaot623/gogo/mesh/internal/metrics"
	"github.com/xiaot623/gogo/mesh/internal/policy"
	"github.com/xiaot623/gogo/mesh/internal/repository"
	server "github.com/xiaot623/gogo/mesh/internal/transport/http"
)

const indexPollInterval = 5 * time.Second

func main() {
	cfg, err := config.LoadAgent()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting agent %s...", cfg.AgentID)
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Base URL: %s", cfg.BaseURL)
	log.Printf("Discovery URL: %s", cfg.DiscoveryURL)
	log.Printf("Index backend: %s (%s)", cfg.IndexBackend, cfg.IndexClass)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	card := domain.AgentCard{
		ID:           cfg.AgentID,
		Name:         cfg.Name,
		Description:  cfg.Description,
		BaseURL:      cfg.BaseURL,
		Capabilities: domain.Capabilities(cfg.Capabilities).Normalize(),
	}

	var insp *inspector.Inspector
	if cfg.InspectorDB != "" {
		db, err := store.NewSQLiteStore(cfg.InspectorDB)
		if err != nil {
			log.Fatalf("Failed to initialize inspector store: %v", err)
		}
		defer db.Close()
		insp = inspector.New(db)
	}

	// Initialize index
	var (
		idx  index.Index
		seed func(context.Context) error
	)
	switch cfg.IndexBackend {
	case "sqlite":
		db, err := store.NewSQLiteStore(cfg.IndexDB)
		if err != nil {
			log.Fatalf("Failed to initialize index store: %v", err)
		}
		defer db.Close()
		sqliteIdx := index.NewSQLiteIndex(db, cfg.IndexClass, cfg.Description)
		idx = sqliteIdx
		seed = func(ctx context.Context) error {
			n, err := sqliteIdx.Seed(ctx, cfg.SeedNotes...)
			if n > 0 {
				log.Printf("Seeded %d notes into %s", n, cfg.IndexClass)
			}
			return err
		}
	case "weaviate":
		weaviateIdx, err := index.NewWeaviateIndex(cfg.WeaviateURL, cfg.WeaviateAPIKey, cfg.IndexClass, cfg.Description)
		if err != nil {
			log.Fatalf("Failed to initialize weaviate index: %v", err)
		}
		idx = weaviateIdx
	default:
		log.Fatalf("Unknown index backend: %s", cfg.IndexBackend)
	}

	// Initialize policy engine
	policyEngine, err := policy.NewEngineFromFile(ctx, cfg.PolicyFile)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	m := metrics.New()
	registryClient := registryclient.NewClient(cfg.DiscoveryURL, cfg.DelegationTimeout)
	agentClient := agentclient.NewClient(cfg.DelegationTimeout)

	engine := agent.NewAnswerEngine(card.ID, cfg.Tool, idx, cfg.Certainty,
		agent.WithPolicy(policyEngine),
		agent.WithTopK(cfg.TopK),
		agent.WithEngineInspector(insp),
		agent.WithEngineMetrics(m),
	)
	policyCfg := agent.DefaultDelegationPolicy
	policyCfg.Attempts = cfg.DelegationAttempts
	policyCfg.Backoff = cfg.DelegationBackoff
	delegator := agent.NewDelegationClient(card.ID, registryClient, agentClient, policyCfg,
		agent.WithDelegationInspector(insp),
		agent.WithDelegationMetrics(m),
	)
	rt := agent.NewRuntime(card, cfg.Tool, engine, delegator,
		agent.WithMaxHops(cfg.MaxHops),
		agent.WithRuntimeInspector(insp),
	)

	e := server.NewAgentServer(rt, insp, m)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Agent %s started on port %d", card.ID, cfg.HTTPPort)

	// Bootstrap the index, then start heartbeating. A failed bootstrap only
	// leaves the local engine without answers.
	hb := agent.NewHeartbeat(registryClient, card, cfg.HeartbeatInterval, m)
	started := make(chan struct{})
	go func() {
		defer close(started)
		if err := agent.Bootstrap(ctx, idx, cfg.IndexStartupTimeout, indexPollInterval); err != nil {
			log.Printf("WARN: index bootstrap failed: %v", err)
		} else if seed != nil {
			if err := seed(ctx); err != nil {
				log.Printf("WARN: failed to seed notes: %v", err)
			}
		}
		if ctx.Err() == nil {
			hb.Start(ctx)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("Shutting down agent %s...", card.ID)
	cancel()
	<-started
	hb.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Printf("Agent %s stopped", card.ID)
}
