package testutil

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stxkxs/bluebot/internal/config"
	"github.com/stxkxs/bluebot/internal/event"
	"github.com/stxkxs/bluebot/internal/memory"
	"github.com/stxkxs/bluebot/internal/telemetry"
)

// TestHarness provides the collaborators a bot needs in tests:
// config, persona, memory, events, a mock provider and a mock searcher.
type TestHarness struct {
	T        *testing.T
	Config   *config.Config
	Persona  *config.PersonaConfig
	Memory   *memory.Store
	EventBus *event.Bus
	Logger   *telemetry.Logger
	Provider *MockProvider
	Searcher *MockSearcher

	mu     sync.Mutex
	events []event.Event
}

// NewTestHarness creates a test harness backed by a JSON memory file in a temp dir.
func NewTestHarness(t *testing.T) *TestHarness {
	t.Helper()

	logger := TestLogger()
	bus := event.NewBus(logger)
	persona := TestPersona()

	store := memory.NewStore(memory.NewJSONFile(filepath.Join(t.TempDir(), "memory.json")), logger).
		WithContextHeader(persona.MemoryHeader).
		WithDisplayTitle(persona.MemoryTitle)

	h := &TestHarness{
		T:        t,
		Config:   TestConfig(),
		Persona:  persona,
		Memory:   store,
		EventBus: bus,
		Logger:   logger,
		Provider: &MockProvider{},
		Searcher: &MockSearcher{},
	}

	// Capture events via a hook
	bus.Register(&eventCapture{harness: h})

	return h
}

// Events returns the captured events (thread-safe).
func (h *TestHarness) Events() []event.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	cp := make([]event.Event, len(h.events))
	copy(cp, h.events)
	return cp
}

// AssertEventEmitted checks that an event with the given type was emitted.
func (h *TestHarness) AssertEventEmitted(eventType event.EventType) {
	h.T.Helper()
	for _, e := range h.Events() {
		if e.Type == eventType {
			return
		}
	}
	h.T.Errorf("expected event %q to be emitted", eventType)
}

// AssertNoEvent checks that an event type was NOT emitted.
func (h *TestHarness) AssertNoEvent(eventType event.EventType) {
	h.T.Helper()
	for _, e := range h.Events() {
		if e.Type == eventType {
			h.T.Errorf("expected event %q NOT to be emitted, but it was", eventType)
			return
		}
	}
}

// EventCount returns the number of events with the given type.
func (h *TestHarness) EventCount(eventType event.EventType) int {
	count := 0
	for _, e := range h.Events() {
		if e.Type == eventType {
			count++
		}
	}
	return count
}

// eventCapture is a blocking hook that records events.
type eventCapture struct {
	harness *TestHarness
}

func (c *eventCapture) Name() string                 { return "test-capture" }
func (c *eventCapture) Matches(event.EventType) bool { return true } // match all
func (c *eventCapture) IsBlocking() bool             { return true } // sync for tests

func (c *eventCapture) Handle(ev event.Event) error {
	c.harness.mu.Lock()
	defer c.harness.mu.Unlock()
	c.harness.events = append(c.harness.events, ev)
	return nil
}
