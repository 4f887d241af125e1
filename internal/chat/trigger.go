package chat

import "strings"

// Decision says what to do with the model's first reply.
type Decision int

const (
	// DecisionAnswer means the reply goes straight to the user.
	DecisionAnswer Decision = iota
	// DecisionSearch means the model asked for a web search.
	DecisionSearch
)

func (d Decision) String() string {
	if d == DecisionSearch {
		return "search"
	}
	return "answer"
}

// Classify looks for phrase in reply. The match is exact and case-sensitive.
func Classify(reply, phrase string) Decision {
	if phrase != "" && strings.Contains(reply, phrase) {
		return DecisionSearch
	}
	return DecisionAnswer
}
