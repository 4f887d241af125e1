package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	boterrors "github.com/stxkxs/bluebot/internal/errors"
	"github.com/stxkxs/bluebot/internal/telemetry"
)

// DefaultContextHeader introduces the memory block in the system prompt.
const DefaultContextHeader = "Here are some things I remember from our previous chats:\n\n"

// Store is the memory API used by the bot. Read failures degrade to empty
// memory; write failures are logged and returned.
type Store struct {
	backend Backend
	logger  *telemetry.Logger
	header  string
	title   string
	now     func() time.Time

	mu sync.RWMutex
}

// NewStore wraps backend. logger may be nil.
func NewStore(backend Backend, logger *telemetry.Logger) *Store {
	if logger == nil {
		logger = telemetry.NewLogger(false)
	}
	return &Store{
		backend: backend,
		logger:  logger,
		header:  DefaultContextHeader,
		title:   DefaultDisplayTitle,
		now:     time.Now,
	}
}

// WithClock replaces the time source.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// WithContextHeader replaces the header Context puts before the records.
func (s *Store) WithContextHeader(header string) *Store {
	if header != "" {
		s.header = header
	}
	return s
}

// WithDisplayTitle replaces the heading Display puts above the records.
func (s *Store) WithDisplayTitle(title string) *Store {
	if title != "" {
		s.title = title
	}
	return s
}

// Backend returns the underlying backend.
func (s *Store) Backend() Backend { return s.backend }

// Init prepares storage so a fresh install has an empty memory.
func (s *Store) Init(ctx context.Context) error {
	prep, ok := s.backend.(initializer)
	if !ok {
		return nil
	}
	if err := prep.Init(ctx); err != nil {
		s.logger.Error("failed to initialize memory", "backend", s.backend.Describe(), "error", err)
		return boterrors.Wrap(boterrors.CodeMemoryError, "failed to initialize memory", err)
	}
	return nil
}

// Load never fails: missing or unreadable data yields an empty structure.
func (s *Store) Load(ctx context.Context) *Data {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load(ctx)
}

func (s *Store) load(ctx context.Context) *Data {
	data, err := s.backend.Load(ctx)
	if err != nil {
		s.logger.Warn("failed to load memories, starting empty", "backend", s.backend.Describe(), "error", err)
		return Empty()
	}
	return data.normalize()
}

// Save replaces the stored memories.
func (s *Store) Save(ctx context.Context, data *Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, data)
}

func (s *Store) save(ctx context.Context, data *Data) error {
	if err := s.backend.Save(ctx, data); err != nil {
		s.logger.Error("failed to save memories", "backend", s.backend.Describe(), "error", err)
		return boterrors.Wrap(boterrors.CodeMemoryError, "failed to save memories", err)
	}
	return nil
}

// Add remembers summary. A summary equal to an existing record, ignoring
// case, only refreshes that record's timestamp. Blank summaries are ignored.
func (s *Store) Add(ctx context.Context, summary string) error {
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.load(ctx)
	refreshed := data.Upsert(summary, s.now().Format(TimestampFormat))
	if err := s.save(ctx, data); err != nil {
		return err
	}

	kind := "new"
	if refreshed {
		kind = "refreshed"
	}
	telemetry.MemoriesSavedTotal.WithLabelValues(kind).Inc()
	s.logger.Info("memory saved", "kind", kind, "count", len(data.Memories))
	return nil
}

// Context renders all records for the system prompt, or "" when there are none.
func (s *Store) Context(ctx context.Context) string {
	return FormatContext(s.header, s.Load(ctx).Memories)
}

// Display renders all records as markdown for people to read.
func (s *Store) Display(ctx context.Context) string {
	return FormatDisplay(s.title, s.Load(ctx).Memories)
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
