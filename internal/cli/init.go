package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stxkxs/bluebot/internal/config"
)

var (
	initProvider string
	initPersona  string
	initDriver   string
	initForce    bool
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Create a starter bluebot.yaml",
	Long: `Create a starter bluebot.yaml, an example persona and a .gitignore.

Examples:
  bluebot init
  bluebot init my-bot --provider anthropic --memory sqlite
  bluebot init --persona goswami`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initProvider, "provider", "groq", "model provider (groq, openai, anthropic)")
	initCmd.Flags().StringVar(&initPersona, "persona", config.DefaultPreset, "persona preset")
	initCmd.Flags().StringVar(&initDriver, "memory", "json", "memory driver (json, sqlite, redis)")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing files")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create project directory: %w", err)
		}
	}

	written, err := config.Scaffold(dir, config.ScaffoldOptions{
		Provider: initProvider,
		Preset:   initPersona,
		Driver:   initDriver,
		Force:    initForce,
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if len(written) == 0 {
		fmt.Fprintln(w, "Nothing to do: files already exist (use --force to overwrite).")
		return nil
	}
	for _, f := range written {
		fmt.Fprintf(w, "  created %s\n", f)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Next steps:\n")
	if env := config.APIKeyEnv(initProvider); env != "" {
		fmt.Fprintf(w, "  export %s=...\n", env)
	}
	fmt.Fprintln(w, "  bluebot chat     # talk in the terminal")
	fmt.Fprintln(w, "  bluebot serve    # open the web UI")
	return nil
}
