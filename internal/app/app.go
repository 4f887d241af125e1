// Package app wires configuration into a ready-to-use bot: model provider,
// web search, memory storage, event hooks and logging.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/stxkxs/bluebot/internal/chat"
	"github.com/stxkxs/bluebot/internal/config"
	boterrors "github.com/stxkxs/bluebot/internal/errors"
	"github.com/stxkxs/bluebot/internal/event"
	"github.com/stxkxs/bluebot/internal/memory"
	"github.com/stxkxs/bluebot/internal/provider"
	"github.com/stxkxs/bluebot/internal/provider/anthropic"
	"github.com/stxkxs/bluebot/internal/provider/openaicompat"
	"github.com/stxkxs/bluebot/internal/search"
	"github.com/stxkxs/bluebot/internal/telemetry"
)

// App bundles everything needed to talk to the bot.
type App struct {
	Config   *config.Config
	Persona  *config.PersonaConfig
	Logger   *telemetry.Logger
	Bus      *event.Bus
	Provider provider.Provider
	Searcher search.Searcher
	Memory   *memory.Store
	Bot      *chat.Bot
}

// Close releases the memory backend and the log file.
func (a *App) Close() error {
	var err error
	if a.Memory != nil {
		err = a.Memory.Close()
	}
	a.Logger.Close()
	return err
}

// News returns a news analyzer sharing the app's provider and searcher.
func (a *App) News() *chat.NewsAnalyzer {
	return chat.NewNewsAnalyzer(a.Provider, a.Searcher, a.Config.Provider.Model, a.Logger)
}

// NewLogger honours logging.level and logging.file. verbose forces debug.
func NewLogger(cfg *config.Config, verbose bool) *telemetry.Logger {
	level := telemetry.ParseLevel(cfg.Logging.Level)
	if verbose {
		level = telemetry.ParseLevel("debug")
	}
	logger := telemetry.NewLoggerTo(os.Stderr, level)
	if cfg.Logging.File != "" {
		if err := logger.WithFile(cfg.Logging.File); err != nil {
			logger.Warn("Failed to open log file", "path", cfg.Logging.File, "error", err)
		}
	}
	return logger
}

// Build wires a bot from a validated config. dir is where personas/ lives.
// The logger is owned by the returned App.
func Build(ctx context.Context, cfg *config.Config, dir string, logger *telemetry.Logger) (*App, error) {
	persona, err := config.ResolvePersona(dir, cfg.Persona)
	if err != nil {
		return nil, err
	}

	p, err := BuildProvider(cfg)
	if err != nil {
		return nil, err
	}

	searcher, err := BuildSearcher(cfg)
	if err != nil {
		return nil, err
	}

	store, err := OpenMemory(ctx, cfg, persona, logger)
	if err != nil {
		return nil, err
	}

	bus := BuildBus(cfg, logger)

	timeout, _ := cfg.Search.ParsedTimeout()
	logger.Debug("Bot ready",
		"provider", p.Name(),
		"model", cfg.Provider.Model,
		"persona", persona.Name,
		"memory", store.Backend().Describe(),
		"search", cfg.Search.IsEnabled(),
		"search_timeout", timeout,
	)

	bot := chat.NewBot(chat.Deps{
		Persona:  persona,
		Provider: p,
		Searcher: searcher,
		Memory:   store,
		Bus:      bus,
		Logger:   logger,
	}, chat.Options{
		Model:         cfg.Provider.Model,
		MaxTokens:     cfg.Provider.MaxTokens,
		Temperature:   cfg.Provider.Temperature,
		SearchEnabled: cfg.Search.IsEnabled(),
		Search: search.Options{
			MaxResults: cfg.Search.MaxResults,
			Region:     cfg.Search.Region,
			SafeSearch: cfg.Search.SafeSearch,
		},
		Debug: cfg.Debug,
	})

	return &App{
		Config:   cfg,
		Persona:  persona,
		Logger:   logger,
		Bus:      bus,
		Provider: p,
		Searcher: searcher,
		Memory:   store,
		Bot:      bot,
	}, nil
}

// BuildProvider creates the configured model client wrapped with metrics and retries.
func BuildProvider(cfg *config.Config) (provider.Provider, error) {
	pc := cfg.Provider

	var inner provider.Provider
	switch pc.Name {
	case "groq":
		inner = openaicompat.NewGroq(pc.APIKey, pc.Model, pc.BaseURL)
	case "openai":
		inner = openaicompat.NewOpenAI(pc.APIKey, pc.Model, pc.BaseURL)
	case "anthropic":
		c := anthropic.NewClient(pc.APIKey, pc.Model)
		if pc.BaseURL != "" {
			c = c.WithBaseURL(pc.BaseURL)
		}
		inner = c
	default:
		return nil, boterrors.New(boterrors.CodeConfigInvalid, fmt.Sprintf("unknown provider %q", pc.Name)).
			WithSuggestion("Set provider.name to groq, openai or anthropic")
	}

	retry := provider.DefaultRetryConfig()
	retry.MaxRetries = pc.MaxRetries
	return provider.NewRetryProvider(provider.NewInstrumented(inner), retry), nil
}

// BuildSearcher creates the web search client. Failures are not masked here;
// the bot wraps it so search problems reach the model as text.
func BuildSearcher(cfg *config.Config) (search.Searcher, error) {
	timeout, err := cfg.Search.ParsedTimeout()
	if err != nil {
		return nil, boterrors.Wrap(boterrors.CodeConfigInvalid, "invalid search.timeout", err)
	}
	ddg := search.NewDuckDuckGo(timeout)
	if cfg.Search.Endpoint != "" {
		ddg = ddg.WithEndpoint(cfg.Search.Endpoint)
	}
	if cfg.Search.NewsSite != "" {
		ddg = ddg.WithSite(cfg.Search.NewsSite)
	}
	return ddg, nil
}

// OpenMemory opens the configured backend and makes sure it is ready for use.
func OpenMemory(ctx context.Context, cfg *config.Config, persona *config.PersonaConfig, logger *telemetry.Logger) (*memory.Store, error) {
	backend, err := memory.Open(ctx, memory.Options{
		Driver:   cfg.Memory.Driver,
		Path:     cfg.Memory.Path,
		RedisURL: cfg.Memory.RedisURL,
		Key:      cfg.Memory.Key,
	})
	if err != nil {
		return nil, err
	}

	store := memory.NewStore(backend, logger).
		WithContextHeader(persona.MemoryHeader).
		WithDisplayTitle(persona.MemoryTitle)
	if err := store.Init(ctx); err != nil {
		logger.Warn("Failed to initialize memory storage", "backend", backend.Describe(), "error", err)
	}
	return store, nil
}

// BuildBus creates the event bus with the hooks declared in config.
func BuildBus(cfg *config.Config, logger *telemetry.Logger) *event.Bus {
	bus := event.NewBus(logger)
	for _, hc := range cfg.Hooks {
		events := make([]event.EventType, 0, len(hc.Events))
		for _, e := range hc.Events {
			events = append(events, event.EventType(e))
		}

		switch hc.Type {
		case "log":
			bus.Register(event.NewLogHook(hc.Name, events, logger, hc.Level))
		case "shell":
			bus.Register(event.NewShellHook(hc.Name, hc.Command, events, hc.Blocking))
		case "webhook":
			bus.Register(event.NewWebhookHook(hc.Name, hc.URL, events, hc.Blocking))
		default:
			logger.Warn("Skipping hook with unknown type", "hook", hc.Name, "type", hc.Type)
		}
	}
	return bus
}
