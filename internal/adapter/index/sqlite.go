package index

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/xiaot623/gogo/mesh/internal/domain"
	"github.com/xiaot623/gogo/mesh/internal/repository"
)

// SQLiteIndex is a lexical stand-in for a vector index, backed by the notes
// table. A note's score is the share of distinct query terms it contains.
type SQLiteIndex struct {
	store       store.Store
	collection  string
	description string
}

// NewSQLiteIndex creates an index over one collection of s.
func NewSQLiteIndex(s store.Store, collection, description string) *SQLiteIndex {
	return &SQLiteIndex{store: s, collection: collection, description: description}
}

// Collection returns the collection name.
func (i *SQLiteIndex) Collection() string {
	return i.collection
}

// Ready pings the database.
func (i *SQLiteIndex) Ready(ctx context.Context) error {
	return i.store.Ping(ctx)
}

// EnsureCollection creates the collection if it is absent.
func (i *SQLiteIndex) EnsureCollection(ctx context.Context) error {
	exists, err := i.store.CollectionExists(ctx, i.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		return nil
	}
	return i.store.CreateCollection(ctx, i.collection, i.description)
}

// AddNotes stores texts in the collection.
func (i *SQLiteIndex) AddNotes(ctx context.Context, texts ...string) error {
	for _, text := range texts {
		note := &domain.Note{
			NoteID:     "note_" + uuid.New().String(),
			Collection: i.collection,
			Text:       text,
		}
		if err := i.store.AddNote(ctx, note); err != nil {
			return fmt.Errorf("failed to add note: %w", err)
		}
	}
	return nil
}

// Seed adds texts only when the collection holds no notes yet, so restarts
// do not duplicate them. It returns the number of notes added.
func (i *SQLiteIndex) Seed(ctx context.Context, texts ...string) (int, error) {
	notes, err := i.store.ListNotes(ctx, i.collection)
	if err != nil {
		return 0, fmt.Errorf("failed to list notes: %w", err)
	}
	if len(notes) > 0 {
		return 0, nil
	}
	if err := i.AddNotes(ctx, texts...); err != nil {
		return 0, err
	}
	return len(texts), nil
}

// Search scores every note and returns the best limit with a non-zero score.
func (i *SQLiteIndex) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	terms := tokenize(query)
	if len(terms) == 0 {
		return nil, nil
	}

	notes, err := i.store.ListNotes(ctx, i.collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	var hits []Hit
	for _, n := range notes {
		words := tokenize(n.Text)
		matched := 0
		for t := range terms {
			if _, ok := words[t]; ok {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		hits = append(hits, Hit{Text: n.Text, Score: float64(matched) / float64(len(terms))})
	}

	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Score > hits[b].Score })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func tokenize(s string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if len(f) < 2 || stopwords[f] {
			continue
		}
		out[f] = struct{}{}
	}
	return out
}

var stopwords = map[string]bool{
	"a": true, "about": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "do": true, "for": true, "how": true, "if": true,
	"in": true, "is": true, "it": true, "of": true, "on": true, "or": true,
	"should": true, "the": true, "to": true, "what": true, "when": true,
	"with": true, "you": true, "your": true, "have": true, "can": true, "i": true,
}
