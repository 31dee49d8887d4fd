package registryclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/mesh/internal/domain"
)

func TestRegisterAndList(t *testing.T) {
	var registered domain.AgentCard
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/register":
			_ = json.NewDecoder(r.Body).Decode(&registered)
			fmt.Fprintf(w, `{"status":"ok","registered":%q}`, registered.ID)
		case "/agents":
			fmt.Fprint(w, `[{"id":"h1","name":"Health","base_url":"http://h1","capabilities":["health.triage"],"last_seen":"2026-01-01T00:00:00Z"}]`)
		case "/health":
			fmt.Fprint(w, `{"status":"ok","agents_count":4}`)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", time.Second)
	ctx := context.Background()

	card := domain.AgentCard{ID: "s1", Name: "Sports", BaseURL: "http://s1", Capabilities: domain.Capabilities{"sports.rules"}}
	require.NoError(t, client.Register(ctx, card))
	assert.Equal(t, card, registered)

	cards, err := client.ListLive(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "http://h1", cards[0].BaseURL)
	assert.True(t, cards[0].Capabilities.Has("health.triage"))

	health, err := client.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, health.AgentsCount)
}

func TestListLiveErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	client := NewClient(server.URL, time.Second)

	_, err := client.ListLive(context.Background())
	assert.Equal(t, domain.PeerStatus, domain.PeerErrorKindOf(err))

	server.Close()
	_, err = client.ListLive(context.Background())
	assert.Equal(t, domain.PeerUnreachable, domain.PeerErrorKindOf(err))
}
