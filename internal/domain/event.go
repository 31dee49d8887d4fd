package domain

import (
	"encoding/json"
	"time"
)

// Event is one inspector audit record.
type Event struct {
	EventID string          `json:"event_id"`
	Ts      int64           `json:"ts"`
	Type    EventType       `json:"event"`
	Agent   string          `json:"agent"`
	Payload json.RawMessage `json:"data,omitempty"`
}

// Note is one document of a local knowledge collection.
type Note struct {
	NoteID     string    `json:"note_id"`
	Collection string    `json:"collection"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}
