package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/stxkxs/bluebot/internal/chat"
	boterrors "github.com/stxkxs/bluebot/internal/errors"
	"github.com/stxkxs/bluebot/internal/event"
	"github.com/stxkxs/bluebot/internal/memory"
	"github.com/stxkxs/bluebot/internal/provider"
	"github.com/stxkxs/bluebot/internal/telemetry"
)

type chatRequest struct {
	Message string              `json:"message" validate:"required"`
	History []chat.HistoryEntry `json:"history"`
}

type messageRequest struct {
	Message string `json:"message" validate:"required"`
}

type rememberRequest struct {
	History []chat.HistoryEntry `json:"history" validate:"required"`
}

type newsRequest struct {
	Topic string `json:"topic" validate:"max=500"`
	Style string `json:"style" validate:"max=500"`
}

type chatResponse struct {
	Reply    string      `json:"reply"`
	Searched bool        `json:"searched"`
	Trace    *chat.Trace `json:"trace,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// --- Helpers ---

func jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	jsonResponse(w, status, map[string]string{"error": msg})
}

// decodeAndValidate reads a JSON body into v and runs its validate tags.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// respond runs one turn. A failed model call is still a 200: the user sees
// the error inline as the bot's reply.
func (s *Server) respond(r *http.Request, sessionID string, history []chat.HistoryEntry, message string) chatResponse {
	ctx := telemetry.ContextWithTurn(r.Context(), telemetry.NewTurnContext(sessionID))
	reply, err := s.bot.Respond(ctx, chat.ToMessages(history), message)
	if err != nil {
		return chatResponse{Reply: chat.ErrorText(err), Error: err.Error()}
	}
	return chatResponse{Reply: reply.Text, Searched: reply.Searched, Trace: reply.Trace}
}

// --- Health / persona ---

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	backend := "disabled"
	if m := s.bot.Memory(); m != nil {
		backend = m.Backend().Describe()
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"version":  s.version,
		"name":     s.cfg.Name,
		"provider": s.cfg.Provider.Name,
		"persona":  s.bot.Persona().Name,
		"memory":   backend,
		"sessions": s.sessions.Len(),
	})
}

func (s *Server) handlePersona(w http.ResponseWriter, _ *http.Request) {
	p := s.bot.Persona()
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"name":        p.Name,
		"title":       p.Title,
		"description": p.Description,
		"examples":    p.Examples,
		"debug":       s.cfg.Debug,
	})
}

// --- Stateless chat ---

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	jsonResponse(w, http.StatusOK, s.respond(r, "", req.History, req.Message))
}

func (s *Server) handleRemember(w http.ResponseWriter, r *http.Request) {
	var req rememberRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{
		"memories": s.bot.ClearAndRemember(r.Context(), req.History),
	})
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	if s.news == nil {
		jsonError(w, http.StatusNotFound, "news analysis is not enabled")
		return
	}
	var req newsRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	analysis, err := s.news.Analyze(r.Context(), req.Style, req.Topic)
	if err != nil {
		jsonError(w, http.StatusBadGateway, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"analysis": analysis})
}

// --- Sessions ---

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id := s.sessions.Create()
	ctx := telemetry.ContextWithTurn(r.Context(), telemetry.NewTurnContext(id))
	s.eventBus.EmitContext(ctx, event.NewEvent(event.SessionCreated, nil))
	jsonResponse(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleSessionMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, ok := s.sessions.get(id)
	if !ok {
		jsonError(w, http.StatusNotFound, boterrors.New(boterrors.CodeSessionNotFound, "session not found: "+id).Error())
		return
	}

	var req messageRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		jsonError(w, http.StatusNotFound, boterrors.New(boterrors.CodeSessionNotFound, "session closed: "+id).Error())
		return
	}

	resp := s.respond(r, id, sess.history, req.Message)
	// Failed turns are shown to the user but kept out of history and memory.
	if resp.Error == "" {
		sess.history = append(sess.history,
			chat.Record(provider.RoleUser, req.Message),
			chat.Record(provider.RoleAssistant, resp.Reply),
		)
	}
	jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	history, ok := s.sessions.Remove(id)
	if !ok {
		jsonError(w, http.StatusNotFound, boterrors.New(boterrors.CodeSessionNotFound, "session not found: "+id).Error())
		return
	}

	ctx := telemetry.ContextWithTurn(r.Context(), telemetry.NewTurnContext(id))
	display := s.bot.ClearAndRemember(ctx, history)
	s.eventBus.EmitContext(ctx, event.NewEvent(event.SessionClosed, map[string]interface{}{
		"reason": "closed",
		"turns":  len(history) / 2,
	}))
	jsonResponse(w, http.StatusOK, map[string]string{"memories": display})
}

// --- Memories ---

func (s *Server) handleListMemories(w http.ResponseWriter, r *http.Request) {
	m := s.bot.Memory()
	if m == nil {
		jsonResponse(w, http.StatusOK, memory.Empty())
		return
	}
	jsonResponse(w, http.StatusOK, m.Load(r.Context()))
}

func (s *Server) handleMemoriesMarkdown(w http.ResponseWriter, r *http.Request) {
	text := memory.NoMemoriesText
	if m := s.bot.Memory(); m != nil {
		text = m.Display(r.Context())
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, text)
}

// --- SSE events ---

func (s *Server) handleSSEEvents(w http.ResponseWriter, r *http.Request) {
	s.serveSSE(w, r, "")
}

func (s *Server) handleSSEEventsFiltered(w http.ResponseWriter, r *http.Request) {
	s.serveSSE(w, r, chi.URLParam(r, "sessionID"))
}

func (s *Server) serveSSE(w http.ResponseWriter, r *http.Request, sessionID string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		jsonError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	clientID := uuid.New().String()
	client := s.broker.Subscribe(r.Context(), clientID, sessionID)

	data, _ := json.Marshal(map[string]string{"type": "connected", "client_id": clientID})
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()

	for ev := range client.Events {
		data, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}
}
