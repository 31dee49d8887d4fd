package domain

// Wire-level constants shared by the coordinator, agents and clients.
const (
	StatusOK = "ok"

	// ErrCoordinatorUnavailable is returned in AggregateResult.Error when no peer
	// could be reached.
	ErrCoordinatorUnavailable = "Coordinator not available after multiple attempts."

	// NoDataAnswer is the fallback answer when a peer response has neither
	// answer nor text.
	NoDataAnswer = "No data"

	// CoordinatorID is the sender id the coordinator puts on envelopes.
	CoordinatorID = "coordinator"

	// AnswerSeparator joins multiple hit texts or peer answers.
	AnswerSeparator = " | "
)

// EventType is the kind of an inspector event.
type EventType string

const (
	EventTypeToolUsed    EventType = "tool_used"
	EventTypeDelegate    EventType = "a2a_delegate"
	EventTypeIndexFetch  EventType = "index_fetch"
	EventTypeFallback    EventType = "fallback"
	EventTypeFanOut      EventType = "coordinator_fanout"
	EventTypePeerFailure EventType = "peer_failure"
)
