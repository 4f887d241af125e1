package event

import (
	"time"

	"github.com/stxkxs/bluebot/internal/telemetry"
)

// EventType identifies what happened during a chat turn.
type EventType string

const (
	// Turn lifecycle
	TurnStarted   EventType = "turn.started"
	TurnCompleted EventType = "turn.completed"
	TurnFailed    EventType = "turn.failed"

	// Steps inside a turn
	ModelResponded  EventType = "model.responded"
	SearchPerformed EventType = "search.performed"
	DebugSection    EventType = "debug.section"

	// Memory
	MemorySaved EventType = "memory.saved"

	// Server sessions
	SessionCreated EventType = "session.created"
	SessionClosed  EventType = "session.closed"
)

// AllTypes lists every event type, for validating hook filters.
var AllTypes = []EventType{
	TurnStarted, TurnCompleted, TurnFailed,
	ModelResponded, SearchPerformed, DebugSection,
	MemorySaved,
	SessionCreated, SessionClosed,
}

// Event carries data about something that happened in the bot.
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	SessionID string                 `json:"session_id,omitempty"`
	TurnID    string                 `json:"turn_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// NewEvent creates an event with the current timestamp.
func NewEvent(t EventType, data map[string]interface{}) Event {
	return Event{
		Type:      t,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// WithTurn stamps the event with the session and turn it belongs to.
func (e Event) WithTurn(tc *telemetry.TurnContext) Event {
	if tc != nil {
		e.SessionID = tc.SessionID
		e.TurnID = tc.TurnID
	}
	return e
}
