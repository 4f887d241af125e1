package chat

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/stxkxs/bluebot/internal/provider"
)

// HistoryEntry is one element of a chat history as clients send it: either
// a {"role", "content"} record or a legacy ["user text", "assistant text"]
// pair. Entries that match neither shape decode without error and are
// skipped later.
type HistoryEntry struct {
	Role    string
	Content string

	// Set for the legacy pair form. Content holds the user half.
	Pair  bool
	Reply string

	valid bool
}

// Record builds a record-form entry.
func Record(role provider.Role, content string) HistoryEntry {
	return HistoryEntry{Role: string(role), Content: content, valid: true}
}

// Pair builds a legacy pair entry.
func Pair(user, assistant string) HistoryEntry {
	return HistoryEntry{Role: string(provider.RoleUser), Content: user, Pair: true, Reply: assistant, valid: true}
}

// Valid reports whether the entry decoded into a known shape.
func (h HistoryEntry) Valid() bool { return h.valid }

func (h *HistoryEntry) UnmarshalJSON(data []byte) error {
	*h = HistoryEntry{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '{':
		var rec struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		}
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil
		}
		content, ok := stringOrEmpty(rec.Content)
		if !ok {
			return nil
		}
		h.Role, h.Content, h.valid = rec.Role, content, true
	case '[':
		var parts []json.RawMessage
		if err := json.Unmarshal(data, &parts); err != nil || len(parts) != 2 {
			return nil
		}
		user, ok1 := stringOrEmpty(parts[0])
		reply, ok2 := stringOrEmpty(parts[1])
		if !ok1 || !ok2 {
			return nil
		}
		*h = Pair(user, reply)
	}
	return nil
}

func (h HistoryEntry) MarshalJSON() ([]byte, error) {
	if h.Pair {
		return json.Marshal([2]string{h.Content, h.Reply})
	}
	return json.Marshal(struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}{h.Role, h.Content})
}

// stringOrEmpty decodes a JSON string, treating null as "".
func stringOrEmpty(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// ToMessages converts history into model messages. Records keep only user
// and assistant roles; pairs become a user then an assistant message.
func ToMessages(history []HistoryEntry) []provider.Message {
	msgs := make([]provider.Message, 0, len(history)*2)
	for _, h := range history {
		if !h.valid {
			continue
		}
		if h.Pair {
			msgs = append(msgs, provider.User(h.Content))
			if h.Reply != "" {
				msgs = append(msgs, provider.Assistant(h.Reply))
			}
			continue
		}
		switch provider.Role(h.Role) {
		case provider.RoleUser:
			msgs = append(msgs, provider.User(h.Content))
		case provider.RoleAssistant:
			msgs = append(msgs, provider.Assistant(h.Content))
		}
	}
	return msgs
}

// FromMessages converts model messages back into record-form history.
func FromMessages(msgs []provider.Message) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, Record(m.Role, m.Content))
	}
	return out
}

// Transcript flattens history into "Role: content" lines for summarizing.
func Transcript(history []HistoryEntry) string {
	var b strings.Builder
	for _, h := range history {
		if !h.valid {
			continue
		}
		if h.Pair {
			b.WriteString("User: " + h.Content + "\n")
			b.WriteString("Assistant: " + h.Reply + "\n")
			continue
		}
		b.WriteString(capitalize(h.Role) + ": " + h.Content + "\n")
	}
	return b.String()
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
