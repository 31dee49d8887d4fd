// Package inspector records the mesh's audit trail: tool use, delegations,
// index fetches and fallbacks. It is write-only from the protocol's point of
// view and a nil *Inspector is a valid no-op sink.
package inspector

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/xiaot623/gogo/mesh/internal/domain"
	"github.com/xiaot623/gogo/mesh/internal/repository"
)

const writeTimeout = 2 * time.Second

// SystemAgent is recorded when an event has no owning agent.
const SystemAgent = "System"

// Inspector writes events to a store.
type Inspector struct {
	store store.Store
	now   func() time.Time
}

// New creates an inspector backed by s.
func New(s store.Store) *Inspector {
	return &Inspector{store: s, now: time.Now}
}

// Log records a generic event. Failures are logged and dropped.
func (i *Inspector) Log(ctx context.Context, eventType domain.EventType, agent string, data interface{}) {
	if i == nil || i.store == nil {
		return
	}
	if agent == "" {
		agent = SystemAgent
	}

	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("WARN: inspector: failed to marshal %s payload: %v", eventType, err)
		return
	}

	event := &domain.Event{
		EventID: "evt_" + uuid.New().String()[:8],
		Ts:      i.now().UnixMilli(),
		Type:    eventType,
		Agent:   agent,
		Payload: payload,
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()
	if err := i.store.CreateEvent(writeCtx, event); err != nil {
		log.Printf("WARN: inspector: failed to record %s event: %v", eventType, err)
	}
}

// Tool records a successful local tool answer.
func (i *Inspector) Tool(ctx context.Context, agent, tool, query, output string) {
	i.Log(ctx, domain.EventTypeToolUsed, agent, map[string]string{
		"tool":   tool,
		"query":  query,
		"output": output,
	})
}

// Delegate records a delegation from one agent to another.
func (i *Inspector) Delegate(ctx context.Context, from, to, query string) {
	i.Log(ctx, domain.EventTypeDelegate, from, map[string]string{
		"from":  from,
		"to":    to,
		"query": query,
	})
}

// IndexFetch records a semantic index lookup.
func (i *Inspector) IndexFetch(ctx context.Context, agent, collection string, success bool, query string) {
	i.Log(ctx, domain.EventTypeIndexFetch, agent, map[string]interface{}{
		"collection": collection,
		"success":    success,
		"query":      query,
	})
}

// Fallback records that an agent answered with the placeholder.
func (i *Inspector) Fallback(ctx context.Context, agent, query, answer string) {
	i.Log(ctx, domain.EventTypeFallback, agent, map[string]string{
		"query":  query,
		"answer": answer,
	})
}

// FanOut records a coordinator dispatch and how many peers answered.
func (i *Inspector) FanOut(ctx context.Context, query string, peers, answered int) {
	i.Log(ctx, domain.EventTypeFanOut, domain.CoordinatorID, map[string]interface{}{
		"query":    query,
		"peers":    peers,
		"answered": answered,
	})
}

// PeerFailure records a skipped peer with its failure kind.
func (i *Inspector) PeerFailure(ctx context.Context, agent, peer string, err error) {
	i.Log(ctx, domain.EventTypePeerFailure, agent, map[string]string{
		"peer":  peer,
		"kind":  string(domain.PeerErrorKindOf(err)),
		"error": err.Error(),
	})
}

// Recent returns up to limit events, newest first.
func (i *Inspector) Recent(ctx context.Context, agent string, limit int) ([]domain.Event, error) {
	if i == nil || i.store == nil {
		return []domain.Event{}, nil
	}
	events, err := i.store.ListEvents(ctx, store.EventFilter{Agent: agent, Limit: limit})
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []domain.Event{}
	}
	return events, nil
}
