// Package domain defines the core domain models for the agent mesh.
package domain

import (
	"sort"
	"strings"
	"time"
)

// Capabilities is the set of capability tags an agent advertises.
// It marshals as a JSON array and keeps the order it was given in.
type Capabilities []string

// Has reports whether the tag is present.
func (c Capabilities) Has(tag string) bool {
	for _, t := range c {
		if t == tag {
			return true
		}
	}
	return false
}

// Normalize trims, drops empty tags and removes duplicates.
func (c Capabilities) Normalize() Capabilities {
	if len(c) == 0 {
		return Capabilities{}
	}
	seen := make(map[string]struct{}, len(c))
	out := make(Capabilities, 0, len(c))
	for _, t := range c {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Sorted returns a sorted copy.
func (c Capabilities) Sorted() Capabilities {
	out := append(Capabilities(nil), c...)
	sort.Strings(out)
	return out
}

// AgentCard is the identity an agent advertises to the registry.
type AgentCard struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	BaseURL      string       `json:"base_url"`
	Capabilities Capabilities `json:"capabilities"`
}

// MessageURL returns the delegation endpoint of the agent.
func (c AgentCard) MessageURL() string {
	return strings.TrimSuffix(c.BaseURL, "/") + "/a2a/message"
}

// RegistryEntry is an AgentCard plus the time it was last registered.
type RegistryEntry struct {
	AgentCard
	LastSeen time.Time `json:"last_seen"`
}

// Live reports whether the entry is inside the liveness window at now.
func (e RegistryEntry) Live(now time.Time, window time.Duration) bool {
	return now.Sub(e.LastSeen) < window
}
