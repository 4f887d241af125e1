package cli

import (
	"context"

	"github.com/stxkxs/bluebot/internal/app"
	"github.com/stxkxs/bluebot/internal/config"
	"github.com/stxkxs/bluebot/internal/telemetry"
)

func newLogger(cfg *config.Config) *telemetry.Logger {
	return app.NewLogger(cfg, verbose)
}

// buildApp loads config with CLI overrides and wires the bot.
func buildApp(ctx context.Context) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg)

	a, err := app.Build(ctx, cfg, projectDir(), logger)
	if err != nil {
		logger.Close()
		return nil, err
	}
	return a, nil
}
