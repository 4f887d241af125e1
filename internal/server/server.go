// Package server exposes the bot over HTTP: a JSON chat API, server-held
// sessions, memory views, an SSE debug feed, Prometheus metrics and the
// embedded chat widget.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stxkxs/bluebot/internal/chat"
	"github.com/stxkxs/bluebot/internal/config"
	"github.com/stxkxs/bluebot/internal/event"
	"github.com/stxkxs/bluebot/internal/telemetry"
)

// Server is the bluebot HTTP server.
type Server struct {
	cfg      *config.Config
	bot      *chat.Bot
	news     *chat.NewsAnalyzer
	eventBus *event.Bus
	broker   *Broker
	sessions *SessionManager
	validate *validator.Validate
	logger   *telemetry.Logger
	version  string
}

// New creates a server. The SSE broker is registered on eventBus so turn
// events reach connected debug clients.
func New(cfg *config.Config, bot *chat.Bot, eventBus *event.Bus, logger *telemetry.Logger) *Server {
	broker := NewBroker(logger)
	eventBus.Register(broker)

	ttl, _ := cfg.Server.ParsedSessionTTL()
	s := &Server{
		cfg:      cfg,
		bot:      bot,
		eventBus: eventBus,
		broker:   broker,
		sessions: NewSessionManager(ttl, logger),
		validate: validator.New(),
		logger:   logger,
		version:  "dev",
	}
	s.sessions.onExpire = s.rememberExpired
	return s
}

// WithNews enables POST /api/news.
func (s *Server) WithNews(n *chat.NewsAnalyzer) *Server {
	s.news = n
	return s
}

// WithVersion sets the version reported by the health endpoint.
func (s *Server) WithVersion(v string) *Server {
	s.version = v
	return s
}

// Start serves on addr and blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting bluebot web UI", "addr", addr, "persona", s.bot.Persona().Name)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		s.Close()
		return nil
	case err := <-errCh:
		s.Close()
		return err
	}
}

// Close stops session expiry and detaches the SSE broker.
func (s *Server) Close() {
	s.sessions.Close()
	s.eventBus.Unregister(s.broker.Name())
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))
	r.Use(metricsMiddleware)
	r.Use(cors.Handler(corsOptions(s.cfg.Server.CORSOrigins)))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/persona", s.handlePersona)
		r.Post("/chat", s.handleChat)
		r.Post("/remember", s.handleRemember)
		r.Post("/news", s.handleNews)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Post("/{id}/messages", s.handleSessionMessage)
			r.Delete("/{id}", s.handleCloseSession)
		})

		r.Get("/memories", s.handleListMemories)
		r.Get("/memories/markdown", s.handleMemoriesMarkdown)

		r.Get("/events", s.handleSSEEvents)
		r.Get("/events/{sessionID}", s.handleSSEEventsFiltered)
	})

	r.Handle("/*", staticHandler())

	return r
}

func (s *Server) rememberExpired(id string, history []chat.HistoryEntry) {
	if len(history) == 0 {
		return
	}
	ctx := telemetry.ContextWithTurn(context.Background(), telemetry.NewTurnContext(id))
	s.bot.ClearAndRemember(ctx, history)
	s.eventBus.EmitContext(ctx, event.NewEvent(event.SessionClosed, map[string]interface{}{"reason": "expired"}))
}
