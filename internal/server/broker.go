package server

import (
	"context"
	"sync"
	"time"

	"github.com/stxkxs/bluebot/internal/event"
	"github.com/stxkxs/bluebot/internal/telemetry"
)

// SSEEvent is sent to connected clients.
type SSEEvent struct {
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	SessionID string                 `json:"session_id,omitempty"`
	TurnID    string                 `json:"turn_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Client is a connected SSE client.
type Client struct {
	ID        string
	SessionID string // empty = subscribe to all
	Events    chan SSEEvent
}

// Broker fans bot events out to SSE clients. It implements event.Hook.
type Broker struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *telemetry.Logger
}

// NewBroker creates a new SSE broker.
func NewBroker(logger *telemetry.Logger) *Broker {
	return &Broker{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

// Subscribe adds a client whose Events channel is closed once ctx is done.
func (b *Broker) Subscribe(ctx context.Context, clientID, sessionID string) *Client {
	client := &Client{
		ID:        clientID,
		SessionID: sessionID,
		Events:    make(chan SSEEvent, 64),
	}

	b.mu.Lock()
	b.clients[clientID] = client
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.clients, clientID)
		close(client.Events)
		b.mu.Unlock()
	}()

	return client
}

// Clients returns the number of connected clients.
func (b *Broker) Clients() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Broadcast sends an event to all matching clients.
func (b *Broker) Broadcast(ev SSEEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, client := range b.clients {
		if client.SessionID != "" && client.SessionID != ev.SessionID {
			continue
		}
		select {
		case client.Events <- ev:
		default:
			b.logger.Warn("Dropping SSE event for slow client", "client", client.ID)
		}
	}
}

func (b *Broker) Name() string { return "sse-broker" }

func (b *Broker) Matches(_ event.EventType) bool { return true }

func (b *Broker) IsBlocking() bool { return false }

func (b *Broker) Handle(ev event.Event) error {
	b.Broadcast(SSEEvent{
		Type:      string(ev.Type),
		Timestamp: ev.Timestamp,
		SessionID: ev.SessionID,
		TurnID:    ev.TurnID,
		Data:      ev.Data,
	})
	return nil
}
