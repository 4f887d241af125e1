package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stxkxs/bluebot/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "bluebot",
	Short: "A character chatbot with web search and long-term memory",
	Long: `bluebot - chat with a character that looks things up and remembers you.

The bot answers in character, searches the web when it decides it needs
to, and summarizes finished conversations into long-term memories that
shape later chats.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./bluebot.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("persona", "", "persona preset or personas/<name>.yaml to use")
	rootCmd.PersistentFlags().String("provider", "", "model provider (groq, openai, anthropic)")
	rootCmd.PersistentFlags().String("model", "", "model name override")
	rootCmd.PersistentFlags().Bool("debug", false, "record a debug trace for every turn")

	for _, name := range []string{"persona", "provider", "model", "debug"} {
		viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(memoryCmd)
	rootCmd.AddCommand(personasCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("bluebot")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("BLUEBOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

// configPath returns the config file in use, falling back to ./bluebot.yaml.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return config.FileName
}

// projectDir is where personas/ is looked up: the config file's directory.
func projectDir() string {
	return filepath.Dir(configPath())
}

// loadConfig reads the config file, applies flag and BLUEBOT_* overrides
// and validates the result.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFile(configPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyOverrides(cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyOverrides(cfg *config.Config) {
	if p := viper.GetString("provider"); p != "" && p != cfg.Provider.Name {
		cfg.Provider.Name = p
		cfg.Provider.Model = ""
		cfg.Provider.APIKey = ""
		config.ApplyDefaults(cfg)
	}
	if k := viper.GetString("api_key"); k != "" {
		cfg.Provider.APIKey = k
	}
	if m := viper.GetString("model"); m != "" {
		cfg.Provider.Model = m
	}
	if p := viper.GetString("persona"); p != "" {
		cfg.Persona = config.PersonaConfig{Preset: p}
	}
	if viper.GetBool("debug") {
		cfg.Debug = true
	}
}
