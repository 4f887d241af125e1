package chat

import (
	"github.com/stxkxs/bluebot/internal/config"
	"github.com/stxkxs/bluebot/internal/provider"
)

// BuildMessages assembles the prompt for one turn: the persona's system
// prompt (with the memory block appended when there is one), the prior
// history in order and finally the new user message.
func BuildMessages(persona *config.PersonaConfig, memoryContext string, history []provider.Message, text string) []provider.Message {
	system := persona.SystemPrompt
	if memoryContext != "" {
		system += "\n\n" + memoryContext + persona.MemoryInstruction
	}

	msgs := make([]provider.Message, 0, len(history)+2)
	msgs = append(msgs, provider.System(system))
	msgs = append(msgs, history...)
	msgs = append(msgs, provider.User(text))
	return msgs
}
