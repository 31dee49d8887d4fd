// Package index provides the semantic search backends an agent answers from.
package index

import "context"

// Hit is one nearest-neighbour match with its similarity in [0,1].
type Hit struct {
	Text  string
	Score float64
}

// Index is a nearest-neighbour text index bound to one collection.
type Index interface {
	// Search returns at most limit hits, best first.
	Search(ctx context.Context, query string, limit int) ([]Hit, error)
	// EnsureCollection creates the collection if it is absent.
	EnsureCollection(ctx context.Context) error
	// Ready reports whether the backend can serve queries.
	Ready(ctx context.Context) error
	// Collection returns the collection name.
	Collection() string
}
