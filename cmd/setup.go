package main

import (
	"context"

	"github.com/desertthunder/wxfm/internal/shared"
	"github.com/urfave/cli/v3"
)

// ConfigInit writes the example configuration file for editing.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", configPath)

	r.writePlain("✓ Config written to %s\n", configPath)
	r.writePlain("Fill in your Spotify and OpenWeather credentials, then run 'wxfm auth login'\n")

	return nil
}
