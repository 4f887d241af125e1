package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	content := `
name: test-bot
provider:
  name: openai
  model: gpt-4o
  max_tokens: 512
  temperature: 0.7
persona:
  preset: goswami
search:
  max_results: 5
  safesearch: moderate
  timeout: 3s
memory:
  driver: sqlite
server:
  port: 9000
  cors_origins: ["http://localhost:3000"]
logging:
  level: debug
debug: true
`
	if err := os.WriteFile(filepath.Join(dir, "bluebot.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Name != "test-bot" {
		t.Errorf("expected name test-bot, got %s", cfg.Name)
	}
	if cfg.Provider.Name != "openai" || cfg.Provider.Model != "gpt-4o" {
		t.Errorf("unexpected provider %+v", cfg.Provider)
	}
	if cfg.Provider.MaxTokens != 512 || cfg.Provider.Temperature != 0.7 {
		t.Errorf("unexpected sampling settings %+v", cfg.Provider)
	}
	if cfg.Persona.Preset != "goswami" {
		t.Errorf("expected preset goswami, got %s", cfg.Persona.Preset)
	}
	if cfg.Search.MaxResults != 5 || cfg.Search.SafeSearch != "moderate" {
		t.Errorf("unexpected search config %+v", cfg.Search)
	}
	if !cfg.Search.IsEnabled() {
		t.Error("search should default to enabled")
	}
	if cfg.Memory.Driver != "sqlite" || cfg.Memory.Path != ".bluebot/memory.db" {
		t.Errorf("unexpected memory config %+v", cfg.Memory)
	}
	if cfg.Server.Port != 9000 || len(cfg.Server.CORSOrigins) != 1 {
		t.Errorf("unexpected server config %+v", cfg.Server)
	}
	if !cfg.Debug {
		t.Error("expected debug true")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Provider.Name != "groq" {
		t.Errorf("expected default provider groq, got %s", cfg.Provider.Name)
	}
	if cfg.Provider.Model != "llama-3.3-70b-versatile" {
		t.Errorf("unexpected default model %s", cfg.Provider.Model)
	}
	if cfg.Persona.Preset != DefaultPreset {
		t.Errorf("expected default preset, got %s", cfg.Persona.Preset)
	}
	if cfg.Memory.Path != "bluey_memory.json" {
		t.Errorf("unexpected default memory path %s", cfg.Memory.Path)
	}
	if cfg.Search.MaxResults != 3 || cfg.Search.SafeSearch != "on" {
		t.Errorf("unexpected default search %+v", cfg.Search)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "bluebot.yaml"), []byte("provider: [unclosed"), 0644)

	if _, err := Load(dir); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoad_SearchDisabled(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "bluebot.yaml"), []byte("search:\n  enabled: false\n"), 0644)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Search.IsEnabled() {
		t.Error("expected search disabled")
	}
}

func TestLoad_APIKeyFromEnv(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "bluebot.yaml"), []byte("provider:\n  name: anthropic\n"), 0644)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Provider.APIKey != "sk-ant-test" {
		t.Errorf("expected key from env, got %q", cfg.Provider.APIKey)
	}
	if cfg.Provider.Model != "claude-sonnet-4-20250514" {
		t.Errorf("unexpected anthropic default model %s", cfg.Provider.Model)
	}
}

func TestInterpolateEnv(t *testing.T) {
	t.Setenv("BLUEBOT_TEST_KEY", "secret")

	tests := []struct {
		in   string
		want string
	}{
		{"api_key: ${BLUEBOT_TEST_KEY}", "api_key: secret"},
		{"api_key: ${env.BLUEBOT_TEST_KEY}", "api_key: secret"},
		{"api_key: ${BLUEBOT_UNSET_KEY}", "api_key: ${BLUEBOT_UNSET_KEY}"},
		{"plain: value", "plain: value"},
	}
	for _, tt := range tests {
		if got := interpolateEnv(tt.in); got != tt.want {
			t.Errorf("interpolateEnv(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScaffold(t *testing.T) {
	dir := t.TempDir()

	written, err := Scaffold(dir, ScaffoldOptions{Provider: "openai", Preset: "goswami"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(written) != 3 {
		t.Errorf("expected 3 files, got %v", written)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("scaffolded config must load: %v", err)
	}
	if cfg.Provider.Name != "openai" || cfg.Persona.Preset != "goswami" {
		t.Errorf("unexpected scaffolded config %+v", cfg)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("scaffolded config must validate: %v", err)
	}

	p, err := ResolvePersona(dir, PersonaConfig{Preset: "pirate"})
	if err != nil {
		t.Fatalf("example persona must resolve: %v", err)
	}
	if p.Title != "Captain Bot" {
		t.Errorf("unexpected example persona %+v", p)
	}

	again, err := Scaffold(dir, ScaffoldOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != 0 {
		t.Errorf("existing files must be kept without force, wrote %v", again)
	}
}
