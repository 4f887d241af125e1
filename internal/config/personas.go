package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	boterrors "github.com/stxkxs/bluebot/internal/errors"
)

// DefaultPreset is the persona used when none is configured.
const DefaultPreset = "bluey"

// DefaultTriggerPhrase is what a persona prompt tells the model to say when it needs a search.
const DefaultTriggerPhrase = "I need to search for this information"

const (
	defaultMemoryHeader      = "Here are some relevant memories from previous conversations:\n\n"
	defaultMemoryInstruction = "\n\nUse this memory information when relevant to the conversation."
	defaultSearchTemplate    = "Search results for '{query}':\n{results}\n\nPlease answer the user's question using these search results when relevant."
	defaultMemoryTitle       = "Memories"
	defaultSummarizePrompt   = "You are a helpful assistant. Summarize the following conversation into a concise paragraph " +
		"capturing the key information and facts discussed. Focus only on factual information that would be useful " +
		"to remember for future conversations."
)

var presets = map[string]PersonaConfig{
	"bluey": {
		Name:        "bluey",
		Title:       "Bluey Chatbot",
		Description: "This chatbot talks like Bluey from the popular children's show, using a playful, imaginative style with emojis!",
		Examples: []string{
			"What games do you like to play?",
			"Can you tell me about Australia?",
			"How do I make friends at school?",
			"What's your favorite animal?",
			"Tell me about the solar system",
		},
		SystemPrompt: "You are Bluey, the lovable blue heeler puppy from the cartoon 'Bluey'. " +
			"You're playful, imaginative, kind, and love to play pretend games. " +
			"You speak in a cheerful, enthusiastic way that's appropriate for children. " +
			"Use simple language, short sentences, and include playful expressions like 'Wackadoo!' and 'For real life?' occasionally. " +
			"Use emojis like 🐾, 🎮, 🌈, 🎨, 🐶, 💙, ✨, 🤗 to express emotions. " +
			"You love to suggest games and activities, and you're always positive and encouraging. " +
			"If you don't know the answer to a question, say '" + DefaultTriggerPhrase + "' and I'll search for you. " +
			"When search results are provided, use them to inform your response in a child-friendly way, " +
			"but don't mention that you're using search results. Instead, say something like 'I learned that...' or 'Did you know...?'",
		TriggerPhrase:     DefaultTriggerPhrase,
		QueryModifier:     " for kids",
		MemoryHeader:      "Here are some things I remember from our previous chats:\n\n",
		MemoryInstruction: "\n\nUse these memories when they're relevant to the conversation, but keep your Bluey personality.",
		MemoryTitle:       "Bluey's Memories 🐾",
		SummarizePrompt:   defaultSummarizePrompt + " Make it child-friendly and simple.",
		SearchContextTemplate: "Search results for '{query}':\n{results}\n\n" +
			"Please answer the user's question using these search results when relevant, maintaining your Bluey character and child-friendly tone.",
	},
	"goswami": {
		Name:        "goswami",
		Title:       "Republic TV - Goswami Bot",
		Description: "This chatbot maintains conversation context and searches for information when it does not know and Talks like our Anchor Arnab Goswami",
		Examples: []string{
			"What is the biggest news today?",
			"Who won the last cricket world cup?",
			"Explain inflation to the nation",
		},
		SystemPrompt: "You are an assistant who talks like Arnab Goswami and use his style in your response. Your name is Goswami Bot. If you don't know the answer to a question, " +
			"say '" + DefaultTriggerPhrase + "' and I'll search for you. " +
			"When search results are provided, use them to inform your response, but " +
			"don't explicitly mention that you're using search results but just say part of your response As the nation says..",
		TriggerPhrase:         DefaultTriggerPhrase,
		MemoryHeader:          defaultMemoryHeader,
		MemoryInstruction:     defaultMemoryInstruction,
		MemoryTitle:           "Goswami Bot Memories",
		SummarizePrompt:       defaultSummarizePrompt,
		SearchContextTemplate: defaultSearchTemplate,
	},
}

// Preset returns a copy of a built-in persona.
func Preset(name string) (PersonaConfig, bool) {
	p, ok := presets[name]
	if ok {
		p.Examples = append([]string(nil), p.Examples...)
	}
	return p, ok
}

// PresetNames returns the built-in persona names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolvePersona turns the persona section of the config into a complete
// persona. The base comes from a built-in preset or personas/<preset>.yaml
// under dir, inline fields override it and remaining gaps get defaults.
func ResolvePersona(dir string, cfg PersonaConfig) (*PersonaConfig, error) {
	var base PersonaConfig
	if cfg.Preset != "" {
		if p, ok := Preset(cfg.Preset); ok {
			base = p
		} else if _, err := os.Stat(filepath.Join(dir, "personas", cfg.Preset+".yaml")); err == nil {
			loaded, err := LoadPersona(dir, cfg.Preset)
			if err != nil {
				return nil, boterrors.Wrap(boterrors.CodePersonaNotFound, fmt.Sprintf("failed to load persona %q", cfg.Preset), err)
			}
			base = *loaded
			if base.Name == "" {
				base.Name = cfg.Preset
			}
		} else {
			return nil, boterrors.New(boterrors.CodePersonaNotFound, fmt.Sprintf("unknown persona %q", cfg.Preset)).
				WithSuggestion(fmt.Sprintf("Use one of: %s, or create personas/%s.yaml", strings.Join(PresetNames(), ", "), cfg.Preset))
		}
	}

	merged := mergePersona(base, cfg)
	applyPersonaDefaults(&merged)

	if err := ValidatePersona(&merged); err != nil {
		return nil, err
	}
	return &merged, nil
}

func mergePersona(base, override PersonaConfig) PersonaConfig {
	out := base
	out.Preset = override.Preset
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&out.Name, override.Name)
	set(&out.Title, override.Title)
	set(&out.Description, override.Description)
	set(&out.SystemPrompt, override.SystemPrompt)
	set(&out.TriggerPhrase, override.TriggerPhrase)
	set(&out.QueryModifier, override.QueryModifier)
	set(&out.MemoryHeader, override.MemoryHeader)
	set(&out.MemoryInstruction, override.MemoryInstruction)
	set(&out.MemoryTitle, override.MemoryTitle)
	set(&out.SummarizePrompt, override.SummarizePrompt)
	set(&out.SearchContextTemplate, override.SearchContextTemplate)
	if len(override.Examples) > 0 {
		out.Examples = override.Examples
	}
	return out
}

func applyPersonaDefaults(p *PersonaConfig) {
	if p.Name == "" {
		p.Name = "custom"
	}
	if p.Title == "" {
		p.Title = p.Name
	}
	if p.TriggerPhrase == "" {
		p.TriggerPhrase = DefaultTriggerPhrase
	}
	if p.MemoryHeader == "" {
		p.MemoryHeader = defaultMemoryHeader
	}
	if p.MemoryInstruction == "" {
		p.MemoryInstruction = defaultMemoryInstruction
	}
	if p.MemoryTitle == "" {
		p.MemoryTitle = defaultMemoryTitle
	}
	if p.SearchContextTemplate == "" {
		p.SearchContextTemplate = defaultSearchTemplate
	}
	if p.SummarizePrompt == "" {
		p.SummarizePrompt = defaultSummarizePrompt
	}
}
