package index

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

// WeaviateIndex searches one Weaviate class with nearText queries.
type WeaviateIndex struct {
	client      *weaviate.Client
	class       string
	description string
}

// NewWeaviateIndex creates a client for class at baseURL, e.g.
// http://localhost:8080. A non-empty apiKey is sent as a bearer token.
func NewWeaviateIndex(baseURL, apiKey, class, description string) (*WeaviateIndex, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid weaviate url %q", baseURL)
	}

	cfg := weaviate.Config{
		Host:             u.Host,
		Scheme:           u.Scheme,
		ConnectionClient: &http.Client{Timeout: 60 * time.Second},
	}
	if apiKey != "" {
		cfg.Headers = map[string]string{"Authorization": "Bearer " + apiKey}
	}
	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}

	return &WeaviateIndex{
		client:      client,
		class:       class,
		description: description,
	}, nil
}

// Collection returns the Weaviate class name.
func (w *WeaviateIndex) Collection() string {
	return w.class
}

// Ready checks the readiness probe.
func (w *WeaviateIndex) Ready(ctx context.Context) error {
	ready, err := w.client.Misc().ReadyChecker().Do(ctx)
	if err != nil {
		return fmt.Errorf("weaviate readiness check failed: %w", err)
	}
	if !ready {
		return errors.New("weaviate not ready")
	}
	return nil
}

// EnsureCollection creates the class with a single text property when missing.
func (w *WeaviateIndex) EnsureCollection(ctx context.Context) error {
	exists, err := w.client.Schema().ClassExistenceChecker().WithClassName(w.class).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema: %w", err)
	}
	if exists {
		return nil
	}

	class := &models.Class{
		Class:       w.class,
		Description: w.description,
		Properties: []*models.Property{
			{Name: "text", DataType: []string{"text"}},
		},
	}
	if err := w.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		return fmt.Errorf("failed to create class %s: %w", w.class, err)
	}
	return nil
}

// Search runs a nearText query and returns hits with their certainty.
// Hits without a text property are dropped; a missing certainty counts as 1.
func (w *WeaviateIndex) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	nearText := w.client.GraphQL().NearTextArgBuilder().WithConcepts([]string{query})

	resp, err := w.client.GraphQL().Get().
		WithClassName(w.class).
		WithFields(
			graphql.Field{Name: "text"},
			graphql.Field{Name: "_additional", Fields: []graphql.Field{{Name: "certainty"}}},
		).
		WithNearText(nearText).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", w.class, err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("weaviate query error: %s", resp.Errors[0].Message)
	}

	return w.hits(resp), nil
}

func (w *WeaviateIndex) hits(resp *models.GraphQLResponse) []Hit {
	get, _ := resp.Data["Get"].(map[string]interface{})
	items, _ := get[w.class].([]interface{})

	var hits []Hit
	for _, item := range items {
		obj, _ := item.(map[string]interface{})
		text, ok := obj["text"].(string)
		if !ok {
			continue
		}
		score := 1.0
		if additional, ok := obj["_additional"].(map[string]interface{}); ok {
			if certainty, ok := additional["certainty"].(float64); ok {
				score = certainty
			}
		}
		hits = append(hits, Hit{Text: text, Score: score})
	}
	return hits
}
