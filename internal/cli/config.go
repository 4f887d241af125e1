package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/stxkxs/bluebot/internal/config"
)

var configShowSecrets bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Commands for viewing and validating configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate bluebot.yaml and every persona file",
	RunE:  runConfigValidate,
}

func init() {
	configShowCmd.Flags().BoolVar(&configShowSecrets, "show-secrets", false, "print the API key instead of masking it")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFile(configPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyOverrides(cfg)

	if !configShowSecrets {
		cfg.Provider.APIKey = maskSecret(cfg.Provider.APIKey)
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "Current Configuration:")
	fmt.Fprintln(w, "----------------------")
	fmt.Fprintln(w, string(out))
	if _, err := os.Stat(configPath()); err == nil {
		fmt.Fprintf(w, "Config file: %s\n", configPath())
	} else {
		fmt.Fprintln(w, "Config file: none (defaults)")
	}
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	var problems []string

	cfg, err := config.LoadFile(configPath())
	if err == nil {
		err = config.Validate(cfg)
	}
	if err != nil {
		problems = append(problems, fmt.Sprintf("%s: %v", filepath.Base(configPath()), err))
	} else {
		fmt.Fprintf(w, "%s: OK\n", filepath.Base(configPath()))
		if _, err := config.ResolvePersona(projectDir(), cfg.Persona); err != nil {
			problems = append(problems, fmt.Sprintf("persona: %v", err))
		} else {
			fmt.Fprintln(w, "persona: OK")
		}
	}

	dir := projectDir()
	if entries, err := os.ReadDir(filepath.Join(dir, "personas")); err == nil {
		for _, entry := range entries {
			if entry.IsDir() || !isYAML(entry.Name()) {
				continue
			}
			p, err := config.LoadPersona(dir, stripYAML(entry.Name()))
			if err == nil {
				_, err = config.ResolvePersona(dir, *p)
			}
			if err != nil {
				problems = append(problems, fmt.Sprintf("personas/%s: %v", entry.Name(), err))
			} else {
				fmt.Fprintf(w, "personas/%s: OK\n", entry.Name())
			}
		}
	}

	if len(problems) > 0 {
		fmt.Fprintln(w, "\nValidation Errors:")
		for _, e := range problems {
			fmt.Fprintf(w, "  - %s\n", e)
		}
		return fmt.Errorf("validation failed with %d errors", len(problems))
	}

	fmt.Fprintln(w, "\nAll configurations valid.")
	return nil
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "***" + s[len(s)-4:]
}

func isYAML(name string) bool {
	return filepath.Ext(name) == ".yaml"
}

func stripYAML(name string) string {
	return strings.TrimSuffix(name, ".yaml")
}
