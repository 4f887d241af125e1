// Package memory keeps the bot's long-term memory: short summaries of past
// conversations, persisted through a pluggable backend.
package memory

import (
	"encoding/json"
	"strings"
)

// TimestampFormat is the layout of Record.Timestamp.
const TimestampFormat = "2006-01-02 15:04:05"

// Record is one remembered conversation summary.
type Record struct {
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// Data is the whole persisted memory structure.
type Data struct {
	Memories []Record `json:"memories"`
}

// Empty returns a Data with no records and a non-nil slice.
func Empty() *Data {
	return &Data{Memories: []Record{}}
}

// Upsert refreshes the timestamp of a record whose content matches
// case-insensitively, or appends a new record. It reports whether an
// existing record was refreshed.
func (d *Data) Upsert(content, timestamp string) bool {
	for i := range d.Memories {
		if strings.EqualFold(d.Memories[i].Content, content) {
			d.Memories[i].Timestamp = timestamp
			return true
		}
	}
	d.Memories = append(d.Memories, Record{Content: content, Timestamp: timestamp})
	return false
}

func (d *Data) normalize() *Data {
	if d == nil {
		return Empty()
	}
	if d.Memories == nil {
		d.Memories = []Record{}
	}
	return d
}

// Marshal encodes data as the memory file document, indented two spaces.
func Marshal(d *Data) ([]byte, error) {
	return json.MarshalIndent(d.normalize(), "", "  ")
}
