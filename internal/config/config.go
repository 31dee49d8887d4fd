// Package config provides configuration for the mesh processes.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// RegistryConfig holds the registry process configuration.
type RegistryConfig struct {
	HTTPPort int

	LivenessWindow time.Duration

	// Eviction is off when SweepInterval is zero.
	SweepInterval time.Duration
	EvictAfter    time.Duration
}

// CoordinatorConfig holds the coordinator process configuration.
type CoordinatorConfig struct {
	HTTPPort     int
	DiscoveryURL string

	// Registry fetch retry policy
	MaxRetries int
	RetryDelay time.Duration

	// Per-peer call timeout for the fan-out
	PeerTimeout time.Duration

	// FanOutLimit bounds concurrent agent calls; 0 asks every agent at once.
	FanOutLimit int

	InspectorDB string
}

// AgentConfig holds the agent runtime configuration.
type AgentConfig struct {
	HTTPPort int

	// Card
	AgentID      string
	Name         string
	Description  string
	BaseURL      string
	Capabilities []string
	Tool         string

	DiscoveryURL      string
	HeartbeatInterval time.Duration

	// Local answer engine
	IndexBackend        string
	WeaviateURL         string
	WeaviateAPIKey      string
	IndexClass          string
	IndexDB             string
	IndexStartupTimeout time.Duration
	Certainty           float64
	TopK                int
	PolicyFile          string

	// Delegation
	DelegationTimeout  time.Duration
	DelegationAttempts int
	DelegationBackoff  time.Duration
	MaxHops            int

	InspectorDB string

	// ProfilePath points at an optional YAML profile.
	ProfilePath string
	SeedNotes   []string
}

// LoadRegistry loads registry configuration from environment variables.
func LoadRegistry() *RegistryConfig {
	return &RegistryConfig{
		HTTPPort:       getEnvInt("REGISTRY_PORT", 9000),
		LivenessWindow: time.Duration(getEnvInt("LIVENESS_WINDOW_SECONDS", 3600)) * time.Second,
		SweepInterval:  time.Duration(getEnvInt("REGISTRY_SWEEP_INTERVAL_SECONDS", 0)) * time.Second,
		EvictAfter:     time.Duration(getEnvInt("REGISTRY_EVICT_AFTER_SECONDS", 86400)) * time.Second,
	}
}

// LoadCoordinator loads coordinator configuration from environment variables.
func LoadCoordinator() *CoordinatorConfig {
	return &CoordinatorConfig{
		HTTPPort:     getEnvInt("COORDINATOR_PORT", 8000),
		DiscoveryURL: getEnv("DISCOVERY_URL", "http://localhost:9000"),
		MaxRetries:   getEnvInt("MAX_RETRIES", 3),
		RetryDelay:   time.Duration(getEnvInt("RETRY_DELAY_MS", 1000)) * time.Millisecond,
		PeerTimeout:  time.Duration(getEnvInt("PEER_TIMEOUT_MS", 10000)) * time.Millisecond,
		FanOutLimit:  getEnvInt("COORDINATOR_FANOUT_LIMIT", 0),
		InspectorDB:  getEnv("INSPECTOR_DB", ""),
	}
}

// LoadAgent loads agent configuration. Values come from the YAML profile named
// by AGENT_CONFIG when set, then from environment variables, which win.
func LoadAgent() (*AgentConfig, error) {
	cfg := &AgentConfig{
		HTTPPort:            8001,
		AgentID:             "health-agent-1",
		Name:                "Health Agent",
		Description:         "Answers health-related queries using semantic search.",
		Capabilities:        []string{"health.triage", "health.advice"},
		Tool:                "health.search",
		DiscoveryURL:        "http://localhost:9000",
		HeartbeatInterval:   30 * time.Second,
		IndexBackend:        "weaviate",
		WeaviateURL:         "http://localhost:8080",
		IndexClass:          "HealthNote",
		IndexDB:             "file:index.db?cache=shared&mode=rwc",
		IndexStartupTimeout: 120 * time.Second,
		Certainty:           0.3,
		TopK:                3,
		DelegationTimeout:   5 * time.Second,
		DelegationAttempts:  2,
		DelegationBackoff:   time.Second,
		MaxHops:             3,
		ProfilePath:         getEnv("AGENT_CONFIG", ""),
	}

	if cfg.ProfilePath != "" {
		p, err := LoadProfile(cfg.ProfilePath)
		if err != nil {
			return nil, err
		}
		p.Apply(cfg)
	}

	cfg.HTTPPort = getEnvInt("AGENT_PORT", cfg.HTTPPort)
	cfg.AgentID = getEnv("AGENT_ID", cfg.AgentID)
	cfg.Name = getEnv("AGENT_NAME", cfg.Name)
	cfg.Description = getEnv("AGENT_DESCRIPTION", cfg.Description)
	cfg.Capabilities = getEnvList("AGENT_CAPABILITIES", cfg.Capabilities)
	cfg.Tool = getEnv("AGENT_TOOL", cfg.Tool)
	cfg.DiscoveryURL = getEnv("DISCOVERY_URL", cfg.DiscoveryURL)
	cfg.HeartbeatInterval = getEnvSeconds("AGENT_HEARTBEAT_SECONDS", cfg.HeartbeatInterval)
	cfg.IndexBackend = getEnv("INDEX_BACKEND", cfg.IndexBackend)
	cfg.WeaviateURL = getEnv("WEAVIATE_URL", cfg.WeaviateURL)
	cfg.WeaviateAPIKey = getEnv("WEAVIATE_API_KEY", cfg.WeaviateAPIKey)
	cfg.IndexClass = getEnv("INDEX_CLASS", cfg.IndexClass)
	cfg.IndexDB = getEnv("INDEX_DB", cfg.IndexDB)
	cfg.IndexStartupTimeout = getEnvSeconds("INDEX_STARTUP_TIMEOUT", cfg.IndexStartupTimeout)
	cfg.Certainty = getEnvFloat("WEAVIATE_CERTAINTY", cfg.Certainty)
	cfg.TopK = getEnvInt("INDEX_TOP_K", cfg.TopK)
	cfg.PolicyFile = getEnv("POLICY_FILE", cfg.PolicyFile)
	cfg.DelegationTimeout = getEnvMillis("DELEGATION_TIMEOUT_MS", cfg.DelegationTimeout)
	cfg.DelegationAttempts = getEnvInt("DELEGATION_ATTEMPTS", cfg.DelegationAttempts)
	cfg.DelegationBackoff = getEnvMillis("DELEGATION_BACKOFF_MS", cfg.DelegationBackoff)
	cfg.MaxHops = getEnvInt("MAX_DELEGATION_HOPS", cfg.MaxHops)
	cfg.InspectorDB = getEnv("INSPECTOR_DB", cfg.InspectorDB)

	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:" + strconv.Itoa(cfg.HTTPPort)
	}
	cfg.BaseURL = getEnv("AGENT_BASE_URL", cfg.BaseURL)

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvSeconds(key string, defaultVal time.Duration) time.Duration {
	return time.Duration(getEnvInt(key, int(defaultVal/time.Second))) * time.Second
}

func getEnvMillis(key string, defaultVal time.Duration) time.Duration {
	return time.Duration(getEnvInt(key, int(defaultVal/time.Millisecond))) * time.Millisecond
}

func getEnvList(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
