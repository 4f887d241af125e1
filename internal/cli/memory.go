package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stxkxs/bluebot/internal/app"
	"github.com/stxkxs/bluebot/internal/config"
	"github.com/stxkxs/bluebot/internal/memory"
)

var memoryJSON bool

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Inspect and edit long-term memory",
}

var memoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show remembered conversations",
	RunE:  runMemoryList,
}

var memoryAddCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Remember a piece of text directly",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMemoryAdd,
}

var memoryPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show where memories are stored",
	RunE:  runMemoryPath,
}

func init() {
	memoryListCmd.Flags().BoolVar(&memoryJSON, "json", false, "print the raw memory document")

	memoryCmd.AddCommand(memoryListCmd)
	memoryCmd.AddCommand(memoryAddCmd)
	memoryCmd.AddCommand(memoryPathCmd)
}

// withMemory opens the configured memory store for a single command.
func withMemory(fn func(ctx context.Context, store *memory.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	defer logger.Close()

	persona, err := config.ResolvePersona(projectDir(), cfg.Persona)
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, err := app.OpenMemory(ctx, cfg, persona, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(ctx, store)
}

func runMemoryList(cmd *cobra.Command, args []string) error {
	return withMemory(func(ctx context.Context, store *memory.Store) error {
		if memoryJSON {
			out, err := memory.Marshal(store.Load(ctx))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), store.Display(ctx))
		return nil
	})
}

func runMemoryAdd(cmd *cobra.Command, args []string) error {
	return withMemory(func(ctx context.Context, store *memory.Store) error {
		if err := store.Add(ctx, strings.Join(args, " ")); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Remembered. %d memories stored.\n", len(store.Load(ctx).Memories))
		return nil
	})
}

func runMemoryPath(cmd *cobra.Command, args []string) error {
	return withMemory(func(ctx context.Context, store *memory.Store) error {
		fmt.Fprintln(cmd.OutOrStdout(), store.Backend().Describe())
		return nil
	})
}
