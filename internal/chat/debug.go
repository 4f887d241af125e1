package chat

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/stxkxs/bluebot/internal/provider"
)

const previewRunes = 100

// Section is one titled block of a turn trace.
type Section struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Trace records what happened inside one turn, for the debug panel.
type Trace struct {
	Sections []Section `json:"sections"`
}

func (t *Trace) add(title, body string) Section {
	s := Section{Title: title, Body: body}
	t.Sections = append(t.Sections, s)
	return s
}

// Markdown renders the trace the way the debug panel shows it.
func (t *Trace) Markdown() string {
	if t == nil {
		return ""
	}
	parts := make([]string, 0, len(t.Sections))
	for _, s := range t.Sections {
		parts = append(parts, fmt.Sprintf("**%s**\n%s", s.Title, s.Body))
	}
	return strings.Join(parts, "\n\n")
}

// FormatMessages lists messages as "i. [Role]: content", with long content cut at 100 characters.
func FormatMessages(msgs []provider.Message) string {
	lines := make([]string, 0, len(msgs))
	for i, m := range msgs {
		lines = append(lines, fmt.Sprintf("%d. [%s]: %s", i, capitalize(string(m.Role)), preview(m.Content)))
	}
	return strings.Join(lines, "\n")
}

func preview(s string) string {
	if utf8.RuneCountInString(s) <= previewRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:previewRunes]) + "..."
}

func formatSearchRequest(text string, maxResults int) string {
	return fmt.Sprintf("- Query: %q\n- Max Results: %d\n- Search Provider: DuckDuckGo", text, maxResults)
}

func formatSearchResults(results []string) string {
	if len(results) == 0 {
		return "No results returned"
	}
	if len(results) == 1 && strings.HasPrefix(results[0], "[") {
		return results[0]
	}
	blocks := make([]string, 0, len(results))
	for i, r := range results {
		blocks = append(blocks, fmt.Sprintf("**Source %d:**\n```\n%s\n```", i+1, r))
	}
	return fmt.Sprintf("(Found %d results)\n\n%s", len(results), strings.Join(blocks, "\n\n"))
}
