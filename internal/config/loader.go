package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the project directory.
const FileName = "bluebot.yaml"

// Load loads bluebot.yaml from dir
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile loads the configuration at path. A missing file yields defaults.
func LoadFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return default config if no file exists
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Interpolate environment variables
	content = []byte(interpolateEnv(string(content)))

	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Apply defaults
	applyDefaults(&cfg)

	return &cfg, nil
}

// LoadPersona loads a persona definition from personas/<name>.yaml under dir
func LoadPersona(dir, name string) (*PersonaConfig, error) {
	personaFile := filepath.Join(dir, "personas", name+".yaml")

	content, err := os.ReadFile(personaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read persona file: %w", err)
	}

	content = []byte(interpolateEnv(string(content)))

	var p PersonaConfig
	if err := yaml.Unmarshal(content, &p); err != nil {
		return nil, fmt.Errorf("failed to parse persona config: %w", err)
	}

	return &p, nil
}

var (
	envPattern = regexp.MustCompile(`\$\{env\.([^}]+)\}`)
	varPattern = regexp.MustCompile(`\$\{([^}]+)\}`)
)

// interpolateEnv replaces ${env.VAR} and ${VAR} with environment values
func interpolateEnv(content string) string {
	content = envPattern.ReplaceAllStringFunc(content, func(match string) string {
		varName := envPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // keep original if not found
	})

	content = varPattern.ReplaceAllStringFunc(content, func(match string) string {
		varName := varPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	return content
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return defaultConfig()
}

func defaultConfig() *Config {
	cfg := &Config{
		Name:    "bluebot",
		Persona: PersonaConfig{Preset: DefaultPreset},
	}
	applyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills unset fields, including the API key from the
// provider's environment variable.
func ApplyDefaults(cfg *Config) {
	applyDefaults(cfg)
}

func applyDefaults(cfg *Config) {
	if cfg.Name == "" {
		cfg.Name = "bluebot"
	}
	if cfg.Provider.Name == "" {
		cfg.Provider.Name = "groq"
	}
	if cfg.Provider.Model == "" {
		cfg.Provider.Model = defaultModels[cfg.Provider.Name]
	}
	if cfg.Provider.MaxRetries == 0 {
		cfg.Provider.MaxRetries = 3
	}
	if cfg.Persona.Preset == "" && cfg.Persona.SystemPrompt == "" {
		cfg.Persona.Preset = DefaultPreset
	}
	if cfg.Search.Provider == "" {
		cfg.Search.Provider = "duckduckgo"
	}
	if cfg.Search.MaxResults == 0 {
		cfg.Search.MaxResults = 3
	}
	if cfg.Search.Region == "" {
		cfg.Search.Region = "wt-wt"
	}
	if cfg.Search.SafeSearch == "" {
		cfg.Search.SafeSearch = "on"
	}
	if cfg.Memory.Driver == "" {
		cfg.Memory.Driver = "json"
	}
	if cfg.Memory.Path == "" {
		switch cfg.Memory.Driver {
		case "sqlite":
			cfg.Memory.Path = ".bluebot/memory.db"
		default:
			cfg.Memory.Path = "bluey_memory.json"
		}
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 7860
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	// Load API key from environment if not set
	if cfg.Provider.APIKey == "" {
		if env, ok := apiKeyEnv[cfg.Provider.Name]; ok {
			cfg.Provider.APIKey = os.Getenv(env)
		}
	}
}

var defaultModels = map[string]string{
	"groq":      "llama-3.3-70b-versatile",
	"openai":    "gpt-4o-mini",
	"anthropic": "claude-sonnet-4-20250514",
}

var apiKeyEnv = map[string]string{
	"groq":      "GROQ_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
}

// APIKeyEnv returns the environment variable holding the key for a provider.
func APIKeyEnv(provider string) string {
	return apiKeyEnv[provider]
}
