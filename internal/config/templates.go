package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ScaffoldOptions controls the files written by Scaffold.
type ScaffoldOptions struct {
	Provider string
	Preset   string
	Driver   string
	Force    bool // overwrite existing files
}

const starterConfig = `# bluebot.yaml - bot configuration
name: %[1]s

# Model provider: groq | openai | anthropic
provider:
  name: %[2]s
  # model: llama-3.3-70b-versatile
  # api_key: ${%[3]s}
  max_retries: 3

# Persona: a built-in preset (bluey, goswami) or personas/<name>.yaml
persona:
  preset: %[4]s

# Web search used when the model says it does not know
search:
  provider: duckduckgo
  max_results: 3
  region: wt-wt
  safesearch: "on"
  timeout: 10s

# Long-term memory: json | sqlite | redis
memory:
  driver: %[5]s
  path: %[6]s
  %[7]sredis_url: ${REDIS_URL}

server:
  host: localhost
  port: 7860
  session_ttl: 30m

logging:
  level: info

debug: false
`

// Scaffold writes a starter bluebot.yaml, an example persona and a
// .gitignore into dir. It returns the files it wrote.
func Scaffold(dir string, opts ScaffoldOptions) ([]string, error) {
	if opts.Provider == "" {
		opts.Provider = "groq"
	}
	if opts.Preset == "" {
		opts.Preset = DefaultPreset
	}
	if opts.Driver == "" {
		opts.Driver = "json"
	}

	draft := &Config{Provider: ProviderConfig{Name: opts.Provider}, Memory: MemoryConfig{Driver: opts.Driver, RedisURL: "${REDIS_URL}"}}
	applyDefaults(draft)
	redisPrefix := "# "
	if opts.Driver == "redis" {
		redisPrefix = ""
	}
	draft.Persona.Preset = opts.Preset
	if err := Validate(draft); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Join(dir, "personas"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create personas directory: %w", err)
	}

	example, err := yaml.Marshal(examplePersona())
	if err != nil {
		return nil, fmt.Errorf("failed to encode example persona: %w", err)
	}

	files := []struct {
		path    string
		content string
	}{
		{FileName, fmt.Sprintf(starterConfig, filepath.Base(absOrSelf(dir)), opts.Provider,
			APIKeyEnv(opts.Provider), opts.Preset, opts.Driver, draft.Memory.Path, redisPrefix)},
		{filepath.Join("personas", "pirate.yaml"), string(example)},
		{".gitignore", "bluey_memory.json\n.bluebot/\n*.log\n"},
	}

	var written []string
	for _, f := range files {
		path := filepath.Join(dir, f.path)
		if _, err := os.Stat(path); err == nil && !opts.Force {
			continue
		}
		if err := os.WriteFile(path, []byte(f.content), 0644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", f.path, err)
		}
		written = append(written, f.path)
	}
	return written, nil
}

func examplePersona() PersonaConfig {
	return PersonaConfig{
		Name:        "pirate",
		Title:       "Captain Bot",
		Description: "A friendly pirate who answers every question like a sea shanty.",
		Examples:    []string{"Where is the treasure?", "What is a parrot's favorite food?"},
		SystemPrompt: "You are Captain Bot, a cheerful pirate. Talk like a pirate and keep answers short. " +
			"If you don't know the answer to a question, say '" + DefaultTriggerPhrase + "' and I'll search for you.",
		TriggerPhrase: DefaultTriggerPhrase,
	}
}

func absOrSelf(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}
