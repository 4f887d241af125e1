// Package chat answers user messages in character: it builds the prompt,
// asks the model, runs a web search when the model asks for one and turns
// finished conversations into memories.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/stxkxs/bluebot/internal/config"
	"github.com/stxkxs/bluebot/internal/event"
	"github.com/stxkxs/bluebot/internal/memory"
	"github.com/stxkxs/bluebot/internal/provider"
	"github.com/stxkxs/bluebot/internal/search"
	"github.com/stxkxs/bluebot/internal/telemetry"
)

// Options tunes model calls and search for a Bot.
type Options struct {
	Model         string
	MaxTokens     int
	Temperature   float64
	SearchEnabled bool
	Search        search.Options
	Debug         bool
}

// Deps are the collaborators a Bot talks to. Memory, Bus and Logger may be nil.
type Deps struct {
	Persona  *config.PersonaConfig
	Provider provider.Provider
	Searcher search.Searcher
	Memory   *memory.Store
	Bus      *event.Bus
	Logger   *telemetry.Logger
}

// Reply is the outcome of one turn.
type Reply struct {
	Text     string `json:"reply"`
	Searched bool   `json:"searched"`
	Trace    *Trace `json:"trace,omitempty"`
}

// Bot runs chat turns. It keeps no per-conversation state and is safe for
// concurrent use.
type Bot struct {
	persona    *config.PersonaConfig
	provider   provider.Provider
	searcher   search.Searcher
	memory     *memory.Store
	bus        *event.Bus
	logger     *telemetry.Logger
	summarizer *Summarizer
	opts       Options
}

// NewBot creates a bot. A searcher that can fail is wrapped so search
// problems reach the model as text instead of aborting the turn.
func NewBot(deps Deps, opts Options) *Bot {
	logger := deps.Logger
	if logger == nil {
		logger = telemetry.NewLogger(false)
	}

	searcher := deps.Searcher
	if searcher != nil {
		if _, ok := searcher.(*search.FailClosed); !ok {
			searcher = search.NewFailClosed(searcher, logger)
		}
	}
	if opts.Search.MaxResults <= 0 {
		opts.Search.MaxResults = search.DefaultMaxResults
	}

	summarizer := NewSummarizer(deps.Provider, opts.Model, logger)
	if deps.Persona != nil {
		summarizer.WithPrompt(deps.Persona.SummarizePrompt)
	}

	return &Bot{
		persona:    deps.Persona,
		provider:   deps.Provider,
		searcher:   searcher,
		memory:     deps.Memory,
		bus:        deps.Bus,
		logger:     logger,
		summarizer: summarizer,
		opts:       opts,
	}
}

// Persona returns the persona the bot speaks as.
func (b *Bot) Persona() *config.PersonaConfig { return b.persona }

// Memory returns the memory store, which may be nil.
func (b *Bot) Memory() *memory.Store { return b.memory }

// Respond answers text given the prior history. The model is called once;
// if its reply contains the persona's trigger phrase a search runs and the
// model is called a second time with the results, and only that second
// reply is returned.
func (b *Bot) Respond(ctx context.Context, history []provider.Message, text string) (*Reply, error) {
	tc := telemetry.TurnFromContext(ctx)
	if tc == nil {
		tc = telemetry.NewTurnContext("")
	}
	ctx = telemetry.ContextWithTurn(ctx, tc.WithPersona(b.persona.Name))
	log := b.logger.WithTurn(ctx)

	start := time.Now()
	b.emit(ctx, event.TurnStarted, map[string]interface{}{"history": len(history)})

	var trace *Trace
	if b.opts.Debug {
		trace = &Trace{}
	}

	memoryContext := b.memoryContext(ctx)
	if memoryContext != "" {
		b.traceAdd(ctx, trace, "Memory Context", memoryContext)
	}

	msgs := BuildMessages(b.persona, memoryContext, history, text)
	b.traceAdd(ctx, trace, "Initial Messages", FormatMessages(msgs))

	first, err := b.complete(ctx, "initial", msgs)
	if err != nil {
		return nil, b.fail(ctx, log, err)
	}
	b.traceAdd(ctx, trace, "Initial Response", first)

	decision := Classify(first, b.persona.TriggerPhrase)
	if decision == DecisionAnswer || b.searcher == nil || !b.opts.SearchEnabled {
		if decision == DecisionSearch {
			log.Debug("Search requested but disabled")
		}
		return b.finish(ctx, log, start, first, false, trace), nil
	}

	b.traceAdd(ctx, trace, "Performing Search", formatSearchRequest(text, b.opts.Search.MaxResults))
	results, _ := b.searcher.Search(ctx, text+b.persona.QueryModifier, b.opts.Search)
	b.traceAdd(ctx, trace, "Search Results", formatSearchResults(results))
	b.emit(ctx, event.SearchPerformed, map[string]interface{}{
		"query":   text + b.persona.QueryModifier,
		"results": len(results),
	})

	searchMsgs := make([]provider.Message, 0, len(msgs)+2)
	searchMsgs = append(searchMsgs, msgs...)
	searchMsgs = append(searchMsgs,
		provider.Assistant(b.persona.TriggerPhrase),
		provider.System(b.searchContext(text, results)),
	)
	b.traceAdd(ctx, trace, "Messages With Search Results", FormatMessages(searchMsgs))

	final, err := b.complete(ctx, "with_search", searchMsgs)
	if err != nil {
		return nil, b.fail(ctx, log, err)
	}
	b.traceAdd(ctx, trace, "Final Response", final)

	return b.finish(ctx, log, start, final, true, trace), nil
}

// ClearAndRemember summarizes a finished conversation into memory and
// returns the updated memory display.
func (b *Bot) ClearAndRemember(ctx context.Context, history []HistoryEntry) string {
	if b.memory == nil {
		return memory.NoMemoriesText
	}

	if summary, ok := b.summarizer.Summarize(ctx, history); ok {
		if err := b.memory.Add(ctx, summary); err == nil {
			b.emit(ctx, event.MemorySaved, map[string]interface{}{"chars": len(summary)})
		}
	}
	return b.memory.Display(ctx)
}

// Summarizer returns the summarizer the bot uses for ClearAndRemember.
func (b *Bot) Summarizer() *Summarizer { return b.summarizer }

func (b *Bot) searchContext(text string, results []string) string {
	sources := make([]string, 0, len(results))
	for i, r := range results {
		sources = append(sources, fmt.Sprintf("Source %d: %s", i+1, r))
	}
	return strings.NewReplacer(
		"{query}", text,
		"{results}", strings.Join(sources, "\n\n"),
	).Replace(b.persona.SearchContextTemplate)
}

func (b *Bot) memoryContext(ctx context.Context) string {
	if b.memory == nil {
		return ""
	}
	return b.memory.Context(ctx)
}

func (b *Bot) complete(ctx context.Context, stage string, msgs []provider.Message) (string, error) {
	resp, err := b.provider.Complete(ctx, &provider.CompletionRequest{
		Model:       b.opts.Model,
		Messages:    msgs,
		MaxTokens:   b.opts.MaxTokens,
		Temperature: b.opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("model call (%s) failed: %w", stage, err)
	}
	b.emit(ctx, event.ModelResponded, map[string]interface{}{
		"stage":         stage,
		"input_tokens":  resp.Usage.InputTokens,
		"output_tokens": resp.Usage.OutputTokens,
	})
	return resp.Content, nil
}

func (b *Bot) finish(ctx context.Context, log *telemetry.Logger, start time.Time, text string, searched bool, trace *Trace) *Reply {
	telemetry.ObserveTurn(searched)
	b.emit(ctx, event.TurnCompleted, map[string]interface{}{"searched": searched})
	log.Info("Turn completed", "searched", searched, "duration", time.Since(start).Round(time.Millisecond))
	return &Reply{Text: text, Searched: searched, Trace: trace}
}

func (b *Bot) fail(ctx context.Context, log *telemetry.Logger, err error) error {
	b.emit(ctx, event.TurnFailed, map[string]interface{}{"error": err.Error()})
	log.Error("Turn failed", "error", err)
	return err
}

func (b *Bot) traceAdd(ctx context.Context, trace *Trace, title, body string) {
	if trace == nil {
		return
	}
	s := trace.add(title, body)
	b.emit(ctx, event.DebugSection, map[string]interface{}{"title": s.Title, "body": s.Body})
}

func (b *Bot) emit(ctx context.Context, t event.EventType, data map[string]interface{}) {
	if err := b.bus.EmitContext(ctx, event.NewEvent(t, data)); err != nil {
		b.logger.Warn("Event hook failed", "event", string(t), "error", err)
	}
}

// ErrorText renders a failed turn the way the user sees it.
func ErrorText(err error) string {
	return fmt.Sprintf("[Error: %v]", err)
}
