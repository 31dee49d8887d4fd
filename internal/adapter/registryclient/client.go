// Package registryclient is the HTTP client agents and the coordinator use to
// talk to the registry.
package registryclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xiaot623/gogo/mesh/internal/domain"
)

// Client talks to a registry at baseURL.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a registry client whose calls each time out after timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Register upserts card.
func (c *Client) Register(ctx context.Context, card domain.AgentCard) error {
	var out domain.RegisterResponse
	return c.do(ctx, http.MethodPost, "/register", card, &out)
}

// ListLive returns the live agents.
func (c *Client) ListLive(ctx context.Context) ([]domain.AgentCard, error) {
	var entries []domain.RegistryEntry
	if err := c.do(ctx, http.MethodGet, "/agents", nil, &entries); err != nil {
		return nil, err
	}
	cards := make([]domain.AgentCard, 0, len(entries))
	for _, e := range entries {
		cards = append(cards, e.AgentCard)
	}
	return cards, nil
}

// Health returns the registry's health probe.
func (c *Client) Health(ctx context.Context) (*domain.HealthResponse, error) {
	var out domain.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	target := c.baseURL + path

	var reader io.Reader
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return &domain.PeerError{Kind: domain.PeerUnreachable, Target: target, Err: err}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.ClassifyTransportError(target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &domain.PeerError{Kind: domain.PeerStatus, Target: target, StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.PeerError{Kind: domain.PeerMalformed, Target: target, Err: err}
	}
	return nil
}
