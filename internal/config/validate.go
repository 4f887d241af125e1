package config

import (
	"fmt"
	"strings"
	"time"

	boterrors "github.com/stxkxs/bluebot/internal/errors"
)

var (
	validProviders   = map[string]bool{"groq": true, "openai": true, "anthropic": true}
	validDrivers     = map[string]bool{"json": true, "sqlite": true, "redis": true}
	validSafeSearch  = map[string]bool{"on": true, "moderate": true, "off": true}
	validSearchProvs = map[string]bool{"duckduckgo": true}
	validLevels      = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
)

// Validate checks the main configuration and reports every problem at once.
func Validate(cfg *Config) error {
	var errors []string

	if !validProviders[cfg.Provider.Name] {
		errors = append(errors, fmt.Sprintf("invalid provider: %s", cfg.Provider.Name))
	}
	if cfg.Provider.MaxTokens < 0 {
		errors = append(errors, "provider.max_tokens must not be negative")
	}
	if cfg.Provider.Temperature < 0 || cfg.Provider.Temperature > 2 {
		errors = append(errors, fmt.Sprintf("provider.temperature out of range: %v", cfg.Provider.Temperature))
	}

	if !validSearchProvs[cfg.Search.Provider] {
		errors = append(errors, fmt.Sprintf("invalid search provider: %s", cfg.Search.Provider))
	}
	if cfg.Search.MaxResults < 1 {
		errors = append(errors, "search.max_results must be at least 1")
	}
	if !validSafeSearch[cfg.Search.SafeSearch] {
		errors = append(errors, fmt.Sprintf("invalid safesearch level: %s", cfg.Search.SafeSearch))
	}
	if cfg.Search.Timeout != "" {
		if _, err := time.ParseDuration(cfg.Search.Timeout); err != nil {
			errors = append(errors, fmt.Sprintf("invalid search timeout %q: %s", cfg.Search.Timeout, err))
		}
	}

	if !validDrivers[cfg.Memory.Driver] {
		errors = append(errors, fmt.Sprintf("invalid memory driver: %s", cfg.Memory.Driver))
	}
	if cfg.Memory.Driver == "redis" && cfg.Memory.RedisURL == "" {
		errors = append(errors, "memory.redis_url is required for the redis driver")
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid server port: %d", cfg.Server.Port))
	}
	if cfg.Server.SessionTTL != "" {
		if _, err := time.ParseDuration(cfg.Server.SessionTTL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid session_ttl %q: %s", cfg.Server.SessionTTL, err))
		}
	}

	if !validLevels[cfg.Logging.Level] {
		errors = append(errors, fmt.Sprintf("invalid logging level: %s", cfg.Logging.Level))
	}

	for i, h := range cfg.Hooks {
		label := h.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}
		switch h.Type {
		case "log":
		case "webhook":
			if h.URL == "" {
				errors = append(errors, fmt.Sprintf("hook %s: url is required for webhook hooks", label))
			}
		case "shell":
			if h.Command == "" {
				errors = append(errors, fmt.Sprintf("hook %s: command is required for shell hooks", label))
			}
		default:
			errors = append(errors, fmt.Sprintf("hook %s: invalid type %q", label, h.Type))
		}
	}

	if len(errors) > 0 {
		return boterrors.New(boterrors.CodeConfigInvalid, "config validation failed: "+strings.Join(errors, "; ")).
			WithSuggestion("Fix the listed fields in " + FileName)
	}
	return nil
}

// ValidatePersona checks a resolved persona.
func ValidatePersona(p *PersonaConfig) error {
	var errors []string

	if strings.TrimSpace(p.SystemPrompt) == "" {
		errors = append(errors, "system_prompt is required")
	}
	if strings.TrimSpace(p.TriggerPhrase) == "" {
		errors = append(errors, "trigger_phrase must not be blank")
	} else if !strings.Contains(p.SystemPrompt, p.TriggerPhrase) {
		errors = append(errors, "system_prompt never mentions the trigger phrase, so search would never run")
	}
	if !strings.Contains(p.SearchContextTemplate, "{results}") {
		errors = append(errors, "search_context_template must contain {results}")
	}

	if len(errors) > 0 {
		return boterrors.New(boterrors.CodeConfigInvalid, fmt.Sprintf("persona %q validation failed: %s", p.Name, strings.Join(errors, "; ")))
	}
	return nil
}
