// Package search fetches short web result snippets for a query.
package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/stxkxs/bluebot/internal/telemetry"
)

const (
	DefaultMaxResults = 3

	NoResultsText   = "No search results found."
	RateLimitedText = "[Search error: Rate limit exceeded. Please try again later.]"
)

// ErrRateLimited is returned when the search engine throttles the caller.
var ErrRateLimited = errors.New("search rate limited")

// Options tunes a single search call.
type Options struct {
	MaxResults int
	Region     string // e.g. "wt-wt", "us-en"
	SafeSearch string // "on", "moderate" or "off"
	TimeLimit  string // "d", "w", "m", "y" or "" for any time

	// IncludeTitles prefixes each snippet with its result title on its own line.
	IncludeTitles bool
}

func (o Options) maxResults() int {
	if o.MaxResults <= 0 {
		return DefaultMaxResults
	}
	return o.MaxResults
}

// Searcher returns ordered result snippets for a query.
type Searcher interface {
	Search(ctx context.Context, query string, opts Options) ([]string, error)
}

// FailClosed turns every failure of the wrapped Searcher into a readable snippet.
// Its Search always returns at least one element and a nil error.
type FailClosed struct {
	inner  Searcher
	logger *telemetry.Logger
}

// NewFailClosed wraps inner. logger may be nil.
func NewFailClosed(inner Searcher, logger *telemetry.Logger) *FailClosed {
	return &FailClosed{inner: inner, logger: logger}
}

func (f *FailClosed) Search(ctx context.Context, query string, opts Options) ([]string, error) {
	results, err := f.inner.Search(ctx, query, opts)
	switch {
	case errors.Is(err, ErrRateLimited):
		f.observe("rate_limited", query, err)
		return []string{RateLimitedText}, nil
	case err != nil:
		f.observe("error", query, err)
		return []string{fmt.Sprintf("[Search error: %v]", err)}, nil
	case len(results) == 0:
		f.observe("empty", query, nil)
		return []string{NoResultsText}, nil
	}

	if limit := opts.maxResults(); len(results) > limit {
		results = results[:limit]
	}
	f.observe("ok", query, nil)
	return results, nil
}

func (f *FailClosed) observe(outcome, query string, err error) {
	telemetry.SearchesTotal.WithLabelValues(outcome).Inc()
	if f.logger == nil {
		return
	}
	if err != nil {
		f.logger.Warn("search failed", "query", query, "outcome", outcome, "error", err)
		return
	}
	f.logger.Debug("search finished", "query", query, "outcome", outcome)
}
