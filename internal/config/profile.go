package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Profile is the optional YAML description of an agent.
//
//	id: sports-agent-1
//	name: Sports Agent
//	capabilities: [sports.rules, sports.training]
//	index:
//	  backend: sqlite
//	  class: SportsNote
//	notes:
//	  - Always stretch before running to avoid muscle injuries.
type Profile struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	BaseURL      string   `yaml:"base_url"`
	Port         int      `yaml:"port"`
	Capabilities []string `yaml:"capabilities"`
	Tool         string   `yaml:"tool"`
	Index        struct {
		Backend   string   `yaml:"backend"`
		Class     string   `yaml:"class"`
		Certainty *float64 `yaml:"certainty"`
		DB        string   `yaml:"db"`
	} `yaml:"index"`
	Notes []string `yaml:"notes"`
}

var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// LoadProfile reads a YAML profile, expanding ${VAR} references.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading agent profile: %w", err)
	}
	expanded := envPattern.ReplaceAllStringFunc(string(data), func(m string) string {
		return os.Getenv(envPattern.FindStringSubmatch(m)[1])
	})

	var p Profile
	if err := yaml.Unmarshal([]byte(expanded), &p); err != nil {
		return nil, fmt.Errorf("parsing agent profile: %w", err)
	}
	return &p, nil
}

// Apply copies the non-empty profile fields onto cfg.
func (p *Profile) Apply(cfg *AgentConfig) {
	if p.ID != "" {
		cfg.AgentID = p.ID
	}
	if p.Name != "" {
		cfg.Name = p.Name
	}
	if p.Description != "" {
		cfg.Description = p.Description
	}
	if p.BaseURL != "" {
		cfg.BaseURL = p.BaseURL
	}
	if p.Port != 0 {
		cfg.HTTPPort = p.Port
	}
	if len(p.Capabilities) > 0 {
		cfg.Capabilities = p.Capabilities
	}
	if p.Tool != "" {
		cfg.Tool = p.Tool
	}
	if p.Index.Backend != "" {
		cfg.IndexBackend = p.Index.Backend
	}
	if p.Index.Class != "" {
		cfg.IndexClass = p.Index.Class
	}
	if p.Index.Certainty != nil {
		cfg.Certainty = *p.Index.Certainty
	}
	if p.Index.DB != "" {
		cfg.IndexDB = p.Index.DB
	}
	cfg.SeedNotes = append(cfg.SeedNotes, p.Notes...)
}
