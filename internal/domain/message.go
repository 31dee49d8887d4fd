package domain

// Query is the payload carried through every hop unchanged.
type Query struct {
	Query string `json:"query"`
}

// DelegationEnvelope is the message sent to an agent's /a2a/message endpoint.
// Visited and TTL bound multi-hop delegation; envelopes from older senders
// omit both.
type DelegationEnvelope struct {
	MessageID string   `json:"message_id,omitempty"`
	From      string   `json:"from"`
	Payload   Query    `json:"payload"`
	Visited   []string `json:"visited,omitempty"`
	TTL       *int     `json:"ttl,omitempty"`
}

// HasVisited reports whether the agent already handled this envelope.
func (e DelegationEnvelope) HasVisited(agentID string) bool {
	if e.From == agentID {
		return true
	}
	for _, v := range e.Visited {
		if v == agentID {
			return true
		}
	}
	return false
}

// AgentResponse is what an agent returns for a delegation envelope.
type AgentResponse struct {
	From       string   `json:"from"`
	Tool       string   `json:"tool"`
	Answer     string   `json:"answer"`
	SourceHits []string `json:"source_hits"`
}

// AggregateResult is the coordinator's answer to a client query.
type AggregateResult struct {
	AgentResponses []AgentResponse `json:"agent_responses"`
	Error          string          `json:"error,omitempty"`
}

// RegisterResponse is returned by the registry for POST /register.
type RegisterResponse struct {
	Status     string `json:"status"`
	Registered string `json:"registered"`
}

// HealthResponse is returned by the registry and coordinator health probes.
type HealthResponse struct {
	Status      string `json:"status"`
	AgentsCount int    `json:"agents_count"`
}

// StatusResponse is returned by an agent's /status endpoint.
type StatusResponse struct {
	Status  string `json:"status"`
	AgentID string `json:"agent_id"`
}

// ErrorResponse is the JSON error body used across the mesh.
type ErrorResponse struct {
	Error string `json:"error"`
}
