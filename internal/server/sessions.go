package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stxkxs/bluebot/internal/chat"
	"github.com/stxkxs/bluebot/internal/telemetry"
)

const defaultSessionTTL = 30 * time.Minute

// session is one server-held conversation. mu serializes turns so a
// session's history is never updated by two requests at once.
type session struct {
	id       string
	mu       sync.Mutex
	history  []chat.HistoryEntry
	lastUsed time.Time

	// closed is set under mu once the session has been removed or reaped.
	closed bool
}

// SessionManager keeps conversation histories alive across requests and
// expires idle ones.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
	logger   *telemetry.Logger
	now      func() time.Time
	done     chan struct{}
	once     sync.Once

	// onExpire receives the history of sessions dropped by the reaper.
	onExpire func(id string, history []chat.HistoryEntry)
}

// NewSessionManager creates a session manager that expires sessions idle longer than ttl.
func NewSessionManager(ttl time.Duration, logger *telemetry.Logger) *SessionManager {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	sm := &SessionManager{
		sessions: make(map[string]*session),
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	go sm.reapLoop()
	return sm
}

// Create starts an empty session and returns its ID.
func (sm *SessionManager) Create() string {
	id := uuid.New().String()

	sm.mu.Lock()
	sm.sessions[id] = &session{id: id, lastUsed: sm.now()}
	sm.mu.Unlock()
	return id
}

func (sm *SessionManager) get(id string) (*session, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sess, ok := sm.sessions[id]
	if ok {
		sess.lastUsed = sm.now()
	}
	return sess, ok
}

// Remove drops a session and returns its history.
func (sm *SessionManager) Remove(id string) ([]chat.HistoryEntry, bool) {
	sm.mu.Lock()
	sess, ok := sm.sessions[id]
	delete(sm.sessions, id)
	sm.mu.Unlock()

	if !ok {
		return nil, false
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.closed = true
	return sess.history, true
}

// Len returns the number of live sessions.
func (sm *SessionManager) Len() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return len(sm.sessions)
}

// Close stops the reaper. Remaining sessions are discarded.
func (sm *SessionManager) Close() {
	sm.once.Do(func() { close(sm.done) })
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.sessions = make(map[string]*session)
}

func (sm *SessionManager) reapLoop() {
	interval := sm.ttl / 6
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-sm.done:
			return
		case <-ticker.C:
			sm.reap()
		}
	}
}

func (sm *SessionManager) reap() {
	sm.mu.Lock()
	now := sm.now()
	var expired []*session
	for id, sess := range sm.sessions {
		if now.Sub(sess.lastUsed) > sm.ttl {
			expired = append(expired, sess)
			delete(sm.sessions, id)
		}
	}
	sm.mu.Unlock()

	for _, sess := range expired {
		sm.logger.Debug("Reaping idle chat session", "session_id", sess.id)
		sess.mu.Lock()
		sess.closed = true
		history := sess.history
		sess.mu.Unlock()
		if sm.onExpire != nil {
			sm.onExpire(sess.id, history)
		}
	}
}
