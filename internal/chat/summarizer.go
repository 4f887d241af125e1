package chat

import (
	"context"
	"time"

	"github.com/stxkxs/bluebot/internal/provider"
	"github.com/stxkxs/bluebot/internal/telemetry"
)

const (
	// DefaultSummarizePrompt is used when the persona does not set its own.
	DefaultSummarizePrompt = "You are a helpful assistant. Summarize the following conversation into a concise paragraph " +
		"capturing the key information and facts discussed. Focus only on factual information that would be useful " +
		"to remember for future conversations."
	summarizeUserPrefix = "Here's the conversation to summarize:\n\n"
)

// Summarizer condenses a conversation into a short paragraph worth remembering.
type Summarizer struct {
	provider provider.Provider
	model    string
	prompt   string
	logger   *telemetry.Logger
	now      func() time.Time
}

// NewSummarizer creates a summarizer. logger may be nil.
func NewSummarizer(p provider.Provider, model string, logger *telemetry.Logger) *Summarizer {
	if logger == nil {
		logger = telemetry.NewLogger(false)
	}
	return &Summarizer{provider: p, model: model, prompt: DefaultSummarizePrompt, logger: logger, now: time.Now}
}

// WithPrompt replaces the summarize system prompt. Empty keeps the default.
func (s *Summarizer) WithPrompt(prompt string) *Summarizer {
	if prompt != "" {
		s.prompt = prompt
	}
	return s
}

// WithClock replaces the time source used for failure placeholders.
func (s *Summarizer) WithClock(now func() time.Time) *Summarizer {
	s.now = now
	return s
}

// Summarize returns ("", false) for an empty history. A failed model call
// still yields a dated placeholder so the conversation is not forgotten
// entirely.
func (s *Summarizer) Summarize(ctx context.Context, history []HistoryEntry) (string, bool) {
	if len(history) == 0 {
		return "", false
	}

	resp, err := s.provider.Complete(ctx, &provider.CompletionRequest{
		Model: s.model,
		Messages: []provider.Message{
			provider.System(s.prompt),
			provider.User(summarizeUserPrefix + Transcript(history)),
		},
	})
	if err != nil {
		s.logger.Warn("Failed to summarize conversation", "error", err)
		return "Conversation on " + s.now().Format("2006-01-02 15:04") + " (failed to summarize)", true
	}
	return resp.Content, true
}
