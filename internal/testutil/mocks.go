package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stxkxs/bluebot/internal/config"
	"github.com/stxkxs/bluebot/internal/provider"
	"github.com/stxkxs/bluebot/internal/search"
	"github.com/stxkxs/bluebot/internal/telemetry"
)

// MockProvider implements provider.Provider for testing.
type MockProvider struct {
	mu         sync.Mutex
	Responses  []*provider.Response // queued responses, consumed in order
	Calls      []*provider.CompletionRequest
	ShouldFail bool
	FailCalls  int // fail only the first FailCalls calls
	FailErr    error
	Delay      time.Duration
	idx        int
}

// Replies queues plain text responses.
func (m *MockProvider) Replies(texts ...string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range texts {
		m.Responses = append(m.Responses, &provider.Response{Content: t, StopReason: "end_turn"})
	}
	return m
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Complete(ctx context.Context, req *provider.CompletionRequest) (*provider.Response, error) {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Keep a copy so later appends by the caller do not alter the record.
	recorded := *req
	recorded.Messages = append([]provider.Message(nil), req.Messages...)
	m.Calls = append(m.Calls, &recorded)

	if m.ShouldFail || len(m.Calls) <= m.FailCalls {
		if m.FailErr != nil {
			return nil, m.FailErr
		}
		return nil, fmt.Errorf("mock provider error")
	}

	if m.idx >= len(m.Responses) {
		return &provider.Response{
			Content:    "default mock response",
			StopReason: "end_turn",
		}, nil
	}

	resp := m.Responses[m.idx]
	m.idx++
	return resp, nil
}

// CallCount returns the number of Complete calls made (thread-safe).
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Call returns the i-th recorded request (thread-safe).
func (m *MockProvider) Call(i int) *provider.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[i]
}

// MockSearcher implements search.Searcher for testing.
type MockSearcher struct {
	mu      sync.Mutex
	Results []string
	Err     error
	Queries []string
	Opts    []search.Options
}

func (s *MockSearcher) Search(ctx context.Context, query string, opts search.Options) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Queries = append(s.Queries, query)
	s.Opts = append(s.Opts, opts)
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Results, nil
}

// SearchCount returns the number of Search calls made (thread-safe).
func (s *MockSearcher) SearchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Queries)
}

// TestLogger returns a logger suitable for tests (verbose, no file output).
func TestLogger() *telemetry.Logger {
	return telemetry.NewLogger(true)
}

// TestConfig returns a minimal config for testing.
func TestConfig() *config.Config {
	cfg := config.Default()
	cfg.Name = "test-bot"
	cfg.Provider.Name = "groq"
	cfg.Provider.Model = "mock-model"
	cfg.Provider.MaxRetries = 1
	cfg.Logging.Level = "debug"
	return cfg
}

// TestPersona returns the resolved default persona.
func TestPersona() *config.PersonaConfig {
	p, err := config.ResolvePersona(".", config.PersonaConfig{Preset: config.DefaultPreset})
	if err != nil {
		panic(err)
	}
	return p
}
