// Package bluebot provides a public API for embedding the chatbot.
//
// Example usage:
//
//	import "github.com/stxkxs/bluebot/pkg/bluebot"
//
//	bot, err := bluebot.Open(ctx, ".")
//	if err != nil {
//		return err
//	}
//	defer bot.Close()
//
//	reply, err := bot.Ask(ctx, nil, "Why is the sky blue?")
//
//	// Summarize a finished chat into long-term memory
//	bot.Remember(ctx, history)
package bluebot

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/stxkxs/bluebot/internal/app"
	"github.com/stxkxs/bluebot/internal/chat"
	"github.com/stxkxs/bluebot/internal/config"
	"github.com/stxkxs/bluebot/internal/memory"
	"github.com/stxkxs/bluebot/internal/provider"
	"github.com/stxkxs/bluebot/internal/telemetry"
)

// Message is one prior chat message. Role is "user" or "assistant".
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Memory is one remembered conversation summary.
type Memory = memory.Record

// Reply is the bot's answer to one message.
type Reply struct {
	Text     string
	Searched bool
	// Debug is the markdown turn trace, set when debug is enabled in config.
	Debug string
}

// Bot is a configured chatbot.
type Bot struct {
	app *app.App
}

// Open loads bluebot.yaml from dir (defaults when absent) and wires a bot.
func Open(ctx context.Context, dir string) (*Bot, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return OpenConfig(ctx, cfg, dir)
}

// OpenConfig wires a bot from an already loaded config. Relative memory
// paths are resolved against dir. The caller's config is not modified.
func OpenConfig(ctx context.Context, in *config.Config, dir string) (*Bot, error) {
	c := *in
	cfg := &c
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if cfg.Memory.Path != "" && !filepath.IsAbs(cfg.Memory.Path) {
		cfg.Memory.Path = filepath.Join(dir, cfg.Memory.Path)
	}

	logger := app.NewLogger(cfg, false)
	a, err := app.Build(ctx, cfg, dir, logger)
	if err != nil {
		logger.Close()
		return nil, err
	}
	return &Bot{app: a}, nil
}

// Ask answers text given the prior conversation. A model failure is
// returned as an error; search failures never are.
func (b *Bot) Ask(ctx context.Context, history []Message, text string) (*Reply, error) {
	msgs := make([]provider.Message, 0, len(history))
	for _, m := range history {
		switch provider.Role(m.Role) {
		case provider.RoleUser, provider.RoleAssistant:
			msgs = append(msgs, provider.Message{Role: provider.Role(m.Role), Content: m.Content})
		}
	}

	if telemetry.TurnFromContext(ctx) == nil {
		ctx = telemetry.ContextWithTurn(ctx, telemetry.NewTurnContext(""))
	}
	reply, err := b.app.Bot.Respond(ctx, msgs, text)
	if err != nil {
		return nil, err
	}
	return &Reply{Text: reply.Text, Searched: reply.Searched, Debug: reply.Trace.Markdown()}, nil
}

// Remember summarizes a finished conversation into long-term memory and
// returns the updated memory listing as markdown.
func (b *Bot) Remember(ctx context.Context, history []Message) string {
	entries := make([]chat.HistoryEntry, 0, len(history))
	for _, m := range history {
		entries = append(entries, chat.Record(provider.Role(m.Role), m.Content))
	}
	return b.app.Bot.ClearAndRemember(ctx, entries)
}

// Memories returns everything the bot remembers, oldest first.
func (b *Bot) Memories(ctx context.Context) []Memory {
	return b.app.Memory.Load(ctx).Memories
}

// News analyzes recent news on topic in the given style.
func (b *Bot) News(ctx context.Context, style, topic string) (string, error) {
	return b.app.News().Analyze(ctx, style, topic)
}

// Persona returns the display name and title of the active persona.
func (b *Bot) Persona() (name, title string) {
	return b.app.Persona.Name, b.app.Persona.Title
}

// Close releases storage and log files.
func (b *Bot) Close() error {
	return b.app.Close()
}
