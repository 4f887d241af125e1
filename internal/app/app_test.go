package app

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stxkxs/bluebot/internal/config"
	boterrors "github.com/stxkxs/bluebot/internal/errors"
	"github.com/stxkxs/bluebot/internal/testutil"
)

func TestBuildProvider(t *testing.T) {
	for _, name := range []string{"groq", "openai", "anthropic"} {
		cfg := config.Default()
		cfg.Provider.Name = name
		p, err := BuildProvider(cfg)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if p.Name() != name {
			t.Errorf("expected provider name %q, got %q", name, p.Name())
		}
	}

	cfg := config.Default()
	cfg.Provider.Name = "bard"
	if _, err := BuildProvider(cfg); boterrors.AsCode(err) != boterrors.CodeConfigInvalid {
		t.Errorf("expected CONFIG_INVALID, got %v", err)
	}
}

func TestBuildSearcher_BadTimeout(t *testing.T) {
	cfg := config.Default()
	cfg.Search.Timeout = "soon"
	if _, err := BuildSearcher(cfg); boterrors.AsCode(err) != boterrors.CodeConfigInvalid {
		t.Errorf("expected CONFIG_INVALID, got %v", err)
	}
}

func TestBuildBus_RegistersHooks(t *testing.T) {
	cfg := config.Default()
	cfg.Hooks = []config.HookConfig{
		{Name: "audit", Type: "log", Events: []string{"turn.completed"}},
		{Name: "notify", Type: "webhook", URL: "http://localhost:9/hook"},
		{Name: "script", Type: "shell", Command: "true"},
		{Name: "mystery", Type: "carrier-pigeon"},
	}

	bus := BuildBus(cfg, testutil.TestLogger())
	want := []string{"audit", "notify", "script"}
	if got := bus.HookNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected hooks %v, got %v", want, got)
	}
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Provider.APIKey = "test-key"
	cfg.Memory.Path = filepath.Join(dir, "memory.json")
	cfg.Persona = config.PersonaConfig{Preset: "goswami"}

	a, err := Build(context.Background(), cfg, dir, testutil.TestLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Close()

	if a.Bot.Persona().Name != "goswami" || a.Persona != a.Bot.Persona() {
		t.Errorf("unexpected persona %+v", a.Bot.Persona())
	}
	if a.Memory.Backend().Describe() != "json file "+cfg.Memory.Path {
		t.Errorf("unexpected memory backend %s", a.Memory.Backend().Describe())
	}
	if a.News() == nil {
		t.Error("expected news analyzer")
	}
}

func TestBuild_UnknownPersona(t *testing.T) {
	cfg := config.Default()
	cfg.Persona = config.PersonaConfig{Preset: "nobody"}
	if _, err := Build(context.Background(), cfg, t.TempDir(), testutil.TestLogger()); boterrors.AsCode(err) != boterrors.CodePersonaNotFound {
		t.Errorf("expected PERSONA_NOT_FOUND, got %v", err)
	}
}

func TestBuild_BadMemoryDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Memory.Driver = "floppy"
	if _, err := Build(context.Background(), cfg, t.TempDir(), testutil.TestLogger()); boterrors.AsCode(err) != boterrors.CodeConfigInvalid {
		t.Errorf("expected CONFIG_INVALID, got %v", err)
	}
}
