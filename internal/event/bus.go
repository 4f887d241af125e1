package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/stxkxs/bluebot/internal/telemetry"
)

// Bus dispatches events to registered hooks.
//
// Dispatch rules:
//  1. Blocking hooks run in registration order before Emit returns.
//  2. Non-blocking hooks run in their own goroutines.
//  3. The first blocking hook error is returned to the caller.
//  4. Non-blocking hook failures and panics are logged as warnings.
//  5. A nil Bus is safe to use; all methods are no-ops.
type Bus struct {
	mu      sync.RWMutex
	hooks   []Hook
	enabled bool
	logger  Logger
}

// Logger is the slice of telemetry.Logger the bus needs.
type Logger interface {
	Warn(msg string, keyvals ...interface{})
}

// NewBus creates an enabled event bus. Pass nil logger for silent operation.
func NewBus(logger Logger) *Bus {
	return &Bus{
		hooks:   make([]Hook, 0),
		enabled: true,
		logger:  logger,
	}
}

// Register adds a hook to the bus.
func (b *Bus) Register(h Hook) {
	if b == nil || h == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hooks = append(b.hooks, h)
}

// Unregister removes every hook with the given name.
func (b *Bus) Unregister(name string) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	kept := b.hooks[:0]
	for _, h := range b.hooks {
		if h.Name() != name {
			kept = append(kept, h)
		}
	}
	b.hooks = kept
}

// HookNames lists registered hooks in registration order.
func (b *Bus) HookNames() []string {
	if b == nil {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, 0, len(b.hooks))
	for _, h := range b.hooks {
		names = append(names, h.Name())
	}
	return names
}

// SetEnabled controls whether the bus dispatches events.
func (b *Bus) SetEnabled(enabled bool) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enabled = enabled
}

// EmitContext stamps ev with the turn carried by ctx, then emits it.
func (b *Bus) EmitContext(ctx context.Context, ev Event) error {
	if b == nil {
		return nil
	}
	return b.Emit(ev.WithTurn(telemetry.TurnFromContext(ctx)))
}

// Emit dispatches an event to all matching hooks.
func (b *Bus) Emit(ev Event) error {
	if b == nil {
		return nil
	}
	b.mu.RLock()
	if !b.enabled {
		b.mu.RUnlock()
		return nil
	}
	hooks := make([]Hook, len(b.hooks))
	copy(hooks, b.hooks)
	b.mu.RUnlock()

	for _, h := range hooks {
		if !h.Matches(ev.Type) {
			continue
		}

		if h.IsBlocking() {
			if err := h.Handle(ev); err != nil {
				return fmt.Errorf("blocking hook %s failed: %w", h.Name(), err)
			}
			continue
		}

		go func(hook Hook) {
			defer func() {
				if r := recover(); r != nil && b.logger != nil {
					b.logger.Warn("Non-blocking hook panicked",
						"hook", hook.Name(),
						"event", string(ev.Type),
						"panic", r,
					)
				}
			}()
			if err := hook.Handle(ev); err != nil && b.logger != nil {
				b.logger.Warn("Non-blocking hook failed",
					"hook", hook.Name(),
					"event", string(ev.Type),
					"error", err,
				)
			}
		}(h)
	}

	return nil
}
