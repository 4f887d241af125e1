package memory

import (
	"fmt"
	"strings"
)

const (
	// NoMemoriesText is shown when nothing has been remembered yet.
	NoMemoriesText = "No memories stored yet."

	DefaultDisplayTitle = "Bluey's Memories 🐾"
)

// FormatContext renders records as a prompt block.
func FormatContext(header string, records []Record) string {
	if len(records) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(header)
	for i, r := range records {
		fmt.Fprintf(&b, "Memory %d (%s): %s\n\n", i+1, r.Timestamp, r.Content)
	}
	return b.String()
}

// FormatDisplay renders records as markdown.
func FormatDisplay(title string, records []Record) string {
	if len(records) == 0 {
		return NoMemoriesText
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	for i, r := range records {
		fmt.Fprintf(&b, "### Memory %d\n*Saved on: %s*\n\n%s\n\n---\n\n", i+1, r.Timestamp, r.Content)
	}
	return b.String()
}
