package memory

import (
	"context"
	"fmt"

	boterrors "github.com/stxkxs/bluebot/internal/errors"
)

// Backend persists the whole memory structure. Save always rewrites everything.
type Backend interface {
	// Load returns the stored data. A backend with nothing stored yet
	// returns Empty() and a nil error.
	Load(ctx context.Context) (*Data, error)

	// Save replaces the stored data.
	Save(ctx context.Context, data *Data) error

	// Describe names where the data lives, for display.
	Describe() string

	// Close releases any resources held by the backend.
	Close() error
}

// initializer is implemented by backends that prepare storage at startup.
type initializer interface {
	Init(ctx context.Context) error
}

// Supported driver names.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Driver   string
	Path     string // json and sqlite
	RedisURL string
	Key      string // redis list key
}

// Open creates the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Driver {
	case "", DriverJSON:
		return NewJSONFile(opts.Path), nil
	case DriverSQLite:
		b, err := NewSQLite(opts.Path)
		if err != nil {
			return nil, boterrors.Wrap(boterrors.CodeMemoryError, "failed to open sqlite memory", err)
		}
		return b, nil
	case DriverRedis:
		b, err := NewRedisFromURL(ctx, opts.RedisURL, opts.Key)
		if err != nil {
			return nil, boterrors.Wrap(boterrors.CodeMemoryError, "failed to connect to redis memory", err).
				WithSuggestion("Check memory.redis_url in bluebot.yaml and that Redis is reachable")
		}
		return b, nil
	default:
		return nil, boterrors.New(boterrors.CodeConfigInvalid, fmt.Sprintf("unknown memory driver %q", opts.Driver)).
			WithSuggestion("Use one of: json, sqlite, redis")
	}
}
