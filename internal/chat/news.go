package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stxkxs/bluebot/internal/provider"
	"github.com/stxkxs/bluebot/internal/search"
	"github.com/stxkxs/bluebot/internal/telemetry"
)

const (
	// NoNewsText is returned when the search finds nothing to analyze.
	NoNewsText = "No news articles found. Please try a different query or try again later."

	DefaultNewsTopic = "Today's news"
	DefaultNewsStyle = "CNN News Anchor"
)

// NewsAnalyzer searches recent news for a topic and has the model retell it in a given style.
type NewsAnalyzer struct {
	provider provider.Provider
	searcher search.Searcher
	model    string
	opts     search.Options
	logger   *telemetry.Logger
}

// NewNewsAnalyzer creates an analyzer. searcher should not be fail-closed:
// the analyzer reports search failures itself.
func NewNewsAnalyzer(p provider.Provider, s search.Searcher, model string, logger *telemetry.Logger) *NewsAnalyzer {
	if logger == nil {
		logger = telemetry.NewLogger(false)
	}
	return &NewsAnalyzer{
		provider: p,
		searcher: s,
		model:    model,
		opts:     search.Options{MaxResults: 10, Region: "us-en", SafeSearch: "moderate", TimeLimit: "w", IncludeTitles: true},
		logger:   logger,
	}
}

// WithSearchOptions replaces the options used for the news search.
func (n *NewsAnalyzer) WithSearchOptions(opts search.Options) *NewsAnalyzer {
	opts.IncludeTitles = true
	n.opts = opts
	return n
}

// search prefers a news vertical when the searcher has one.
func (n *NewsAnalyzer) search(ctx context.Context, topic string) ([]string, error) {
	if ns, ok := n.searcher.(search.NewsSearcher); ok {
		return ns.News(ctx, topic, n.opts)
	}
	return n.searcher.Search(ctx, topic, n.opts)
}

// Analyze returns the styled analysis. Search problems come back as
// readable text; only a failed model call returns an error.
func (n *NewsAnalyzer) Analyze(ctx context.Context, style, topic string) (string, error) {
	if topic == "" {
		topic = DefaultNewsTopic
	}
	if style == "" {
		style = "Write in the style of " + DefaultNewsStyle
	}

	items, err := n.search(ctx, topic)
	switch {
	case errors.Is(err, search.ErrRateLimited):
		n.logger.Warn("News search rate limited", "topic", topic)
		return fmt.Sprintf("Rate limit exceeded: %v. DuckDuckGo has rate-limited your request. "+
			"Try again later or use a different search provider.", err), nil
	case err != nil:
		n.logger.Warn("News search failed", "topic", topic, "error", err)
		return fmt.Sprintf("An error occurred: %v", err), nil
	}

	var text strings.Builder
	for _, item := range items {
		text.WriteString(item + "\n\n")
	}
	if text.Len() == 0 {
		return NoNewsText, nil
	}

	prompt := "Give a detailed news analysis in this style: " + style +
		". You will be given news items to analyze and apply that style. Here is the user question: " + topic +
		"\n\nThe news items are: " + text.String()

	resp, err := n.provider.Complete(ctx, &provider.CompletionRequest{
		Model:    n.model,
		Messages: []provider.Message{provider.User(prompt)},
	})
	if err != nil {
		return "", fmt.Errorf("news analysis failed: %w", err)
	}
	return resp.Content, nil
}
