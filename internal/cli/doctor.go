package cli

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/stxkxs/bluebot/internal/app"
	"github.com/stxkxs/bluebot/internal/config"
	boterrors "github.com/stxkxs/bluebot/internal/errors"
	"github.com/stxkxs/bluebot/internal/search"
)

var doctorOnline bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check environment and configuration",
	Long:  "Validate that configuration, API keys, persona and memory storage are properly set up.",
	RunE:  runDoctor,
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorOnline, "online", false, "also run a live web search")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "bluebot doctor: checking your environment")
	fmt.Fprintln(w)
	allOK := true
	fail := func(label, msg, hint string) {
		fmt.Fprintf(w, "  %-11s %s ✗\n", label+":", msg)
		if hint != "" {
			fmt.Fprintf(w, "    → %s\n", hint)
		}
		allOK = false
	}
	ok := func(label, msg string) {
		fmt.Fprintf(w, "  %-11s %s ✓\n", label+":", msg)
	}

	ok("Go version", runtime.Version())
	ok("Platform", runtime.GOOS+"/"+runtime.GOARCH)

	cfg, err := loadConfig()
	if err != nil {
		fail("Config", "INVALID", hintFor(err, "Run 'bluebot init' to create bluebot.yaml"))
		report(w, allOK)
		return nil
	}
	ok("Config", fmt.Sprintf("%s (%s)", cfg.Name, configPath()))

	if cfg.Provider.APIKey != "" {
		ok("API key", fmt.Sprintf("%s set (%s)", cfg.Provider.Name, maskSecret(cfg.Provider.APIKey)))
	} else {
		fail("API key", "NOT SET", "Set "+config.APIKeyEnv(cfg.Provider.Name)+" or provider.api_key")
	}
	ok("Model", cfg.Provider.Model)

	persona, err := config.ResolvePersona(projectDir(), cfg.Persona)
	if err != nil {
		fail("Persona", "INVALID", hintFor(err, err.Error()))
	} else {
		ok("Persona", persona.Name)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if persona != nil {
		logger := newLogger(cfg)
		store, err := app.OpenMemory(ctx, cfg, persona, logger)
		if err != nil {
			fail("Memory", "FAILED", hintFor(err, err.Error()))
		} else {
			ok("Memory", fmt.Sprintf("%s, %d memories", store.Backend().Describe(), len(store.Load(ctx).Memories)))
			store.Close()
		}
		logger.Close()
	}

	if !cfg.Search.IsEnabled() {
		ok("Search", "disabled")
	} else if doctorOnline {
		searcher, err := app.BuildSearcher(cfg)
		if err == nil {
			_, err = searcher.Search(ctx, "bluey", search.Options{MaxResults: 1, SafeSearch: cfg.Search.SafeSearch})
		}
		if err != nil {
			fail("Search", "FAILED", err.Error())
		} else {
			ok("Search", cfg.Search.Provider+" reachable")
		}
	} else {
		ok("Search", cfg.Search.Provider+" (use --online to test)")
	}

	report(w, allOK)
	return nil
}

func hintFor(err error, fallback string) string {
	if s := boterrors.Suggestion(err); s != "" {
		return s
	}
	return fallback
}

func report(w io.Writer, allOK bool) {
	fmt.Fprintln(w)
	if allOK {
		fmt.Fprintln(w, "All checks passed!")
	} else {
		fmt.Fprintln(w, "Some checks failed. See above for details.")
	}
}
