// Package store defines the storage interface and its SQLite implementation.
package store

import (
	"context"

	"github.com/xiaot623/gogo/mesh/internal/domain"
)

// Store defines the interface for data persistence.
type Store interface {
	// Event operations
	CreateEvent(ctx context.Context, event *domain.Event) error
	ListEvents(ctx context.Context, filter EventFilter) ([]domain.Event, error)

	// Collection operations
	CollectionExists(ctx context.Context, name string) (bool, error)
	CreateCollection(ctx context.Context, name, description string) error
	AddNote(ctx context.Context, note *domain.Note) error
	ListNotes(ctx context.Context, collection string) ([]domain.Note, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error
}

// EventFilter provides filtering options for events.
type EventFilter struct {
	Agent string
	Types []string
	Limit int
}
