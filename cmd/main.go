package main

import (
	"context"
	"os"

	"github.com/desertthunder/wxfm/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	shared.LoadEnv()
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to parse config.toml, using defaults", "error", err)
		}
	}
	config.ApplyEnv()

	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "wxfm",
		Usage:    "Build a weather-conditioned Spotify playlist for tomorrow",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
