// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// configCommand handles configuration management
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write the example configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.ConfigInit,
			},
		},
	}
}

// authCommand handles Spotify authorization flows
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Spotify authorization",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authorize with Spotify via a local callback server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "url",
				Usage: "Print the authorization URL for manual flows",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.AuthURL,
			},
			{
				Name:  "exchange",
				Usage: "Exchange an authorization code for tokens",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "code",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.AuthExchange,
			},
			{
				Name:  "status",
				Usage: "Show credential and token state",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.AuthStatus,
			},
		},
	}
}

// forecastCommand previews tomorrow's weather and mood
func forecastCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "forecast",
		Usage: "Print tomorrow's forecast and the mood it resolves to",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "city",
				Usage: "City to look up, e.g. \"Dublin,IE\" (defaults to the configured city)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Forecast,
	}
}

// runCommand executes the pipeline once
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Build tomorrow's playlist from the forecast",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Gather tracks and write the summary without touching the playlist",
			},
			&cli.IntFlag{
				Name:  "tracks",
				Usage: "Number of tracks for the playlist (overrides config)",
			},
		},
		Action: r.Run,
	}
}

// playlistCommand holds target playlist utilities
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlist",
		Usage: "Playlist utilities",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a playlist owned by the authenticated user",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Playlist name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "description",
						Usage: "Playlist description",
					},
					&cli.BoolFlag{
						Name:  "public",
						Usage: "Make the playlist public",
					},
				},
				Action: r.PlaylistCreate,
			},
			{
				Name:  "add",
				Usage: "Append tracks to a playlist by URI",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Playlist ID to append to",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:  "uris",
						Usage: "Track URIs, repeatable",
					},
				},
				Action: r.PlaylistAdd,
			},
		},
	}
}

// scheduleCommand runs the pipeline on a daily schedule
func scheduleCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "schedule",
		Usage: "Run the pipeline every day at a fixed local time",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "at",
				Usage: "Daily run time as HH:MM (overrides config)",
			},
			&cli.StringFlag{
				Name:  "tz",
				Usage: "IANA timezone for the run time (overrides config)",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Listen address for Prometheus metrics, e.g. \":9090\"",
			},
			&cli.BoolFlag{
				Name:  "now",
				Usage: "Run once immediately, then keep the schedule",
			},
		},
		Action: r.Schedule,
	}
}
