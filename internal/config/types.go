package config

import "time"

// Config represents the main bot configuration (bluebot.yaml)
type Config struct {
	Name     string         `yaml:"name" json:"name"`
	Provider ProviderConfig `yaml:"provider" json:"provider"`
	Persona  PersonaConfig  `yaml:"persona" json:"persona"`
	Search   SearchConfig   `yaml:"search" json:"search"`
	Memory   MemoryConfig   `yaml:"memory" json:"memory"`
	Server   ServerConfig   `yaml:"server" json:"server"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
	Hooks    []HookConfig   `yaml:"hooks,omitempty" json:"hooks,omitempty"`
	Debug    bool           `yaml:"debug" json:"debug"`
}

// HookConfig defines a single event hook.
type HookConfig struct {
	Name     string   `yaml:"name" json:"name"`
	Type     string   `yaml:"type" json:"type"`     // log, webhook, shell
	Events   []string `yaml:"events" json:"events"` // event types to match, empty for all
	Blocking bool     `yaml:"blocking" json:"blocking"`
	Command  string   `yaml:"command,omitempty" json:"command,omitempty"` // for shell hooks
	URL      string   `yaml:"url,omitempty" json:"url,omitempty"`         // for webhook hooks
	Level    string   `yaml:"level,omitempty" json:"level,omitempty"`     // for log hooks (debug, info, warn)
}

// ProviderConfig configures the LLM provider
type ProviderConfig struct {
	Name        string  `yaml:"name" json:"name"`   // groq, openai, anthropic
	Model       string  `yaml:"model" json:"model"` // llama-3.3-70b-versatile, etc.
	APIKey      string  `yaml:"api_key,omitempty" json:"api_key,omitempty"`
	BaseURL     string  `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	MaxTokens   int     `yaml:"max_tokens,omitempty" json:"max_tokens,omitempty"`
	Temperature float64 `yaml:"temperature,omitempty" json:"temperature,omitempty"`
	MaxRetries  int     `yaml:"max_retries" json:"max_retries"`
}

// PersonaConfig describes who the bot is. Preset names a built-in or a file
// under personas/; any other field set here overrides the preset.
type PersonaConfig struct {
	Preset      string   `yaml:"preset,omitempty" json:"preset,omitempty"`
	Name        string   `yaml:"name,omitempty" json:"name,omitempty"`
	Title       string   `yaml:"title,omitempty" json:"title,omitempty"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Examples    []string `yaml:"examples,omitempty" json:"examples,omitempty"`

	SystemPrompt  string `yaml:"system_prompt,omitempty" json:"system_prompt,omitempty"`
	TriggerPhrase string `yaml:"trigger_phrase,omitempty" json:"trigger_phrase,omitempty"`
	QueryModifier string `yaml:"query_modifier,omitempty" json:"query_modifier,omitempty"` // appended to search queries, e.g. " for kids"

	MemoryHeader      string `yaml:"memory_header,omitempty" json:"memory_header,omitempty"`
	MemoryInstruction string `yaml:"memory_instruction,omitempty" json:"memory_instruction,omitempty"`
	MemoryTitle       string `yaml:"memory_title,omitempty" json:"memory_title,omitempty"`

	// SummarizePrompt is the system prompt used to turn a finished conversation into a memory.
	SummarizePrompt string `yaml:"summarize_prompt,omitempty" json:"summarize_prompt,omitempty"`

	// SearchContextTemplate receives the user question as {query} and the numbered sources as {results}.
	SearchContextTemplate string `yaml:"search_context_template,omitempty" json:"search_context_template,omitempty"`
}

// SearchConfig configures web search
type SearchConfig struct {
	Enabled    *bool  `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Provider   string `yaml:"provider" json:"provider"` // duckduckgo
	Endpoint   string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	NewsSite   string `yaml:"news_site,omitempty" json:"news_site,omitempty"` // base URL for news searches
	MaxResults int    `yaml:"max_results" json:"max_results"`
	Region     string `yaml:"region" json:"region"`
	SafeSearch string `yaml:"safesearch" json:"safesearch"` // on, moderate, off
	Timeout    string `yaml:"timeout" json:"timeout"`
}

// IsEnabled reports whether search is on; it defaults to true.
func (s *SearchConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// ParsedTimeout converts a timeout string to time.Duration
func (s *SearchConfig) ParsedTimeout() (time.Duration, error) {
	if s.Timeout == "" {
		return 10 * time.Second, nil // default
	}
	return time.ParseDuration(s.Timeout)
}

// MemoryConfig configures long-term memory storage
type MemoryConfig struct {
	Driver   string `yaml:"driver" json:"driver"` // json, sqlite, redis
	Path     string `yaml:"path" json:"path"`     // file path for json and sqlite
	RedisURL string `yaml:"redis_url,omitempty" json:"redis_url,omitempty"`
	Key      string `yaml:"key,omitempty" json:"key,omitempty"`
}

// ServerConfig configures the HTTP chat server
type ServerConfig struct {
	Host        string   `yaml:"host" json:"host"`
	Port        int      `yaml:"port" json:"port"`
	CORSOrigins []string `yaml:"cors_origins,omitempty" json:"cors_origins,omitempty"`
	SessionTTL  string   `yaml:"session_ttl,omitempty" json:"session_ttl,omitempty"`
}

// ParsedSessionTTL converts the idle session timeout to time.Duration
func (s *ServerConfig) ParsedSessionTTL() (time.Duration, error) {
	if s.SessionTTL == "" {
		return 30 * time.Minute, nil // default
	}
	return time.ParseDuration(s.SessionTTL)
}

// LoggingConfig configures logging
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"` // debug, info, warn, error
	File  string `yaml:"file,omitempty" json:"file,omitempty"`
}
