package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/xiaot623/gogo/mesh/internal/domain"
	"github.com/xiaot623/gogo/mesh/internal/retry"
)

// Client posts questions to the coordinator.
type Client struct {
	baseURL    string
	httpClient *http.Client
	attempts   int
	delay      time.Duration
}

// NewClient creates a client retrying each question attempts times, delay apart.
func NewClient(baseURL string, timeout time.Duration, attempts int, delay time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		attempts:   attempts,
		delay:      delay,
	}
}

// Ask returns the coordinator's aggregate for query. When the coordinator
// cannot be reached the result carries the unavailability error instead.
func (c *Client) Ask(ctx context.Context, query string) domain.AggregateResult {
	var result domain.AggregateResult
	err := retry.Fixed(ctx, c.attempts, c.delay, func(ctx context.Context) error {
		var err error
		result, err = c.post(ctx, query)
		if err != nil {
			log.Printf("coordinator not ready: %v", err)
		}
		return err
	})
	if err != nil {
		return domain.AggregateResult{
			AgentResponses: []domain.AgentResponse{},
			Error:          domain.ErrCoordinatorUnavailable,
		}
	}
	if result.AgentResponses == nil {
		result.AgentResponses = []domain.AgentResponse{}
	}
	return result
}

func (c *Client) post(ctx context.Context, query string) (domain.AggregateResult, error) {
	var out domain.AggregateResult

	body, err := json.Marshal(domain.Query{Query: query})
	if err != nil {
		return out, fmt.Errorf("marshal query: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ask", bytes.NewReader(body))
	if err != nil {
		return out, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return out, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}
