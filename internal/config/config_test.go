package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRegistryDefaults(t *testing.T) {
	cfg := LoadRegistry()
	assert.Equal(t, 9000, cfg.HTTPPort)
	assert.Equal(t, time.Hour, cfg.LivenessWindow)
	assert.Zero(t, cfg.SweepInterval)
}

func TestLoadCoordinatorFromEnv(t *testing.T) {
	t.Setenv("DISCOVERY_URL", "http://registry:9000")
	t.Setenv("MAX_RETRIES", "5")
	t.Setenv("RETRY_DELAY_MS", "250")
	t.Setenv("PEER_TIMEOUT_MS", "not-a-number")
	t.Setenv("COORDINATOR_FANOUT_LIMIT", "4")

	cfg := LoadCoordinator()
	assert.Equal(t, "http://registry:9000", cfg.DiscoveryURL)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryDelay)
	assert.Equal(t, 10*time.Second, cfg.PeerTimeout)
	assert.Equal(t, 4, cfg.FanOutLimit)
}

func TestLoadAgentDefaults(t *testing.T) {
	cfg, err := LoadAgent()
	require.NoError(t, err)

	assert.Equal(t, "health-agent-1", cfg.AgentID)
	assert.Equal(t, 30*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, 0.3, cfg.Certainty)
	assert.Equal(t, 3, cfg.TopK)
	assert.Equal(t, 5*time.Second, cfg.DelegationTimeout)
	assert.Equal(t, 2, cfg.DelegationAttempts)
	assert.Equal(t, time.Second, cfg.DelegationBackoff)
	assert.Equal(t, "http://localhost:8001", cfg.BaseURL)
}

func TestLoadAgentProfileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sports.yaml")
	profile := `
id: sports-agent-1
name: Sports Agent
port: 8002
capabilities: [sports.rules, sports.training]
index:
  backend: sqlite
  class: SportsNote
  certainty: 0.5
  db: ${SPORTS_DB}
notes:
  - Always stretch before running to avoid muscle injuries.
  - Badminton improves reflexes and requires quick footwork.
`
	require.NoError(t, os.WriteFile(path, []byte(profile), 0o600))

	t.Setenv("AGENT_CONFIG", path)
	t.Setenv("SPORTS_DB", ":memory:")
	t.Setenv("AGENT_CAPABILITIES", "sports.rules, ,sports.injury")
	t.Setenv("AGENT_HEARTBEAT_SECONDS", "5")

	cfg, err := LoadAgent()
	require.NoError(t, err)

	assert.Equal(t, "sports-agent-1", cfg.AgentID)
	assert.Equal(t, "Sports Agent", cfg.Name)
	assert.Equal(t, 8002, cfg.HTTPPort)
	assert.Equal(t, "http://localhost:8002", cfg.BaseURL)
	assert.Equal(t, "sqlite", cfg.IndexBackend)
	assert.Equal(t, "SportsNote", cfg.IndexClass)
	assert.Equal(t, ":memory:", cfg.IndexDB)
	assert.Equal(t, 0.5, cfg.Certainty)
	assert.Equal(t, []string{"sports.rules", "sports.injury"}, cfg.Capabilities)
	assert.Equal(t, 5*time.Second, cfg.HeartbeatInterval)
	assert.Len(t, cfg.SeedNotes, 2)
}

func TestLoadAgentMissingProfile(t *testing.T) {
	t.Setenv("AGENT_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := LoadAgent()
	assert.Error(t, err)
}
