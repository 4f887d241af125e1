package telemetry

import (
	"context"

	"github.com/google/uuid"
)

type turnKey struct{}

// TurnContext carries correlation IDs for one chat turn.
type TurnContext struct {
	SessionID string `json:"session_id,omitempty"`
	TurnID    string `json:"turn_id"`
	Persona   string `json:"persona,omitempty"`
}

// NewTurnContext creates a turn context with a fresh TurnID.
func NewTurnContext(sessionID string) *TurnContext {
	return &TurnContext{
		SessionID: sessionID,
		TurnID:    uuid.New().String(),
	}
}

// WithPersona returns a copy with the Persona set.
func (tc *TurnContext) WithPersona(name string) *TurnContext {
	child := *tc
	child.Persona = name
	return &child
}

// Fields returns key-value pairs suitable for structured logging.
func (tc *TurnContext) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"turn_id": tc.TurnID,
	}
	if tc.SessionID != "" {
		fields["session_id"] = tc.SessionID
	}
	if tc.Persona != "" {
		fields["persona"] = tc.Persona
	}
	return fields
}

// ContextWithTurn stores a TurnContext in the context.
func ContextWithTurn(ctx context.Context, tc *TurnContext) context.Context {
	return context.WithValue(ctx, turnKey{}, tc)
}

// TurnFromContext extracts a TurnContext from the context, or nil.
func TurnFromContext(ctx context.Context) *TurnContext {
	tc, _ := ctx.Value(turnKey{}).(*TurnContext)
	return tc
}

// WithTurn returns a logger enriched with turn fields from the context.
func (l *Logger) WithTurn(ctx context.Context) *Logger {
	tc := TurnFromContext(ctx)
	if tc == nil {
		return l
	}
	return l.WithFields(tc.Fields())
}
