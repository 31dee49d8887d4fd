// Package agentclient provides the HTTP client used to deliver delegation
// envelopes to agents.
package agentclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/xiaot623/gogo/mesh/internal/domain"
)

// Response is an agent's reply as it came over the wire. Answer and Text are
// pointers so callers can tell a missing field from an empty one.
type Response struct {
	From       string   `json:"from"`
	Tool       string   `json:"tool"`
	Answer     *string  `json:"answer,omitempty"`
	Text       *string  `json:"text,omitempty"`
	SourceHits []string `json:"source_hits"`
}

// HasAnswer reports whether the peer sent an answer field.
func (r *Response) HasAnswer() bool {
	return r.Answer != nil
}

// Normalize returns the reply as an AgentResponse whose answer falls back to
// text and then to domain.NoDataAnswer.
func (r *Response) Normalize() domain.AgentResponse {
	answer := domain.NoDataAnswer
	switch {
	case r.Answer != nil:
		answer = *r.Answer
	case r.Text != nil:
		answer = *r.Text
	}
	hits := r.SourceHits
	if hits == nil {
		hits = []string{}
	}
	return domain.AgentResponse{
		From:       r.From,
		Tool:       r.Tool,
		Answer:     answer,
		SourceHits: hits,
	}
}

// Client is an HTTP client for the /a2a/message endpoint.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
}

// NewClient creates a client whose calls each time out after timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{},
		timeout:    timeout,
	}
}

// Send posts env to the peer's delegation endpoint.
func (c *Client) Send(ctx context.Context, peer domain.AgentCard, env *domain.DelegationEnvelope) (*Response, error) {
	target := peer.MessageURL()

	body, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, &domain.PeerError{Kind: domain.PeerUnreachable, Target: target, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if env.MessageID != "" {
		httpReq.Header.Set("X-Message-ID", env.MessageID)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, domain.ClassifyTransportError(target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &domain.PeerError{Kind: domain.PeerStatus, Target: target, StatusCode: resp.StatusCode}
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if ctx.Err() != nil {
			return nil, domain.ClassifyTransportError(target, err)
		}
		return nil, &domain.PeerError{Kind: domain.PeerMalformed, Target: target, Err: err}
	}
	if out.From == "" {
		out.From = peer.ID
	}
	return &out, nil
}
