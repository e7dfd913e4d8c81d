package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wxfm/internal/auth"
	"github.com/desertthunder/wxfm/internal/services"
	"github.com/desertthunder/wxfm/internal/shared"
	"github.com/desertthunder/wxfm/internal/tasks"
	"github.com/desertthunder/wxfm/internal/weather"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	music   services.MusicService
	weather tasks.WeatherSource
	logger  *log.Logger
	output  io.Writer
	rng     *rand.Rand
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Music and Weather are normally left nil and built lazily from the
// resolved config; tests inject doubles here.
type RunnerOpts struct {
	Config  *shared.Config
	Music   services.MusicService
	Weather tasks.WeatherSource
	Logger  *log.Logger
	Output  io.Writer
	Rand    *rand.Rand
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Runner{
		config:  opts.Config,
		music:   opts.Music,
		weather: opts.Weather,
		logger:  opts.Logger,
		output:  opts.Output,
		rng:     opts.Rand,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		configCommand, authCommand, forecastCommand, runCommand, playlistCommand, scheduleCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// configFor resolves the effective configuration for a command. An
// explicit --config flag reloads from that path; otherwise the
// runner's resolved config stands. Environment overrides apply to a
// reloaded file the same way they do at startup.
func (r *Runner) configFor(cmd *cli.Command) (*shared.Config, error) {
	if r.config != nil && !cmd.IsSet("config") {
		return r.config, nil
	}

	configPath := cmd.String("config")
	if configPath == "" {
		configPath = "config.toml"
	}

	if _, err := os.Stat(configPath); err != nil {
		if cmd.IsSet("config") {
			return nil, fmt.Errorf("%w: %s", shared.ErrMissingConfig, configPath)
		}
		config := shared.DefaultConfig()
		config.ApplyEnv()
		return config, nil
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	config.ApplyEnv()

	return config, nil
}

// tokenStore builds the auth store from config, persisted when a token
// file is configured, and loads whatever tokens are already held.
func (r *Runner) tokenStore(config *shared.Config) (*auth.Store, error) {
	var store *auth.Store
	var err error

	if path := config.Auth.TokenFile; path != "" {
		store, err = auth.PersistedAt(config.Credentials.Spotify, path)
	} else {
		store, err = auth.InMemoryOnly(config.Credentials.Spotify)
	}
	if err != nil {
		return nil, err
	}

	if _, err := store.Load(); err != nil {
		return nil, err
	}

	return store, nil
}

// musicService returns the injected music service or builds the
// Spotify client on top of a token store.
func (r *Runner) musicService(config *shared.Config) (services.MusicService, error) {
	if r.music != nil {
		return r.music, nil
	}

	store, err := r.tokenStore(config)
	if err != nil {
		return nil, err
	}

	return services.NewSpotifyService(store), nil
}

// weatherSource returns the injected weather source or builds the
// OpenWeather client.
func (r *Runner) weatherSource(config *shared.Config) (tasks.WeatherSource, error) {
	if r.weather != nil {
		return r.weather, nil
	}

	if config.Credentials.OpenWeather.APIKey == "" {
		return nil, fmt.Errorf("%w: set OPENWEATHER_API_KEY or credentials.openweather.api_key", shared.ErrMissingCredentials)
	}

	return weather.NewClient(config.Credentials.OpenWeather.APIKey), nil
}

// buildEngine assembles a pipeline engine from the resolved config and
// the per-command options. The runner's logger and rng fill any gaps.
func (r *Runner) buildEngine(config *shared.Config, opts tasks.EngineOpts) (*tasks.PipelineEngine, error) {
	weatherSrc, err := r.weatherSource(config)
	if err != nil {
		return nil, err
	}

	music, err := r.musicService(config)
	if err != nil {
		return nil, err
	}

	if opts.Logger == nil {
		opts.Logger = r.logger
	}
	if opts.Rand == nil {
		opts.Rand = r.rng
	}

	return tasks.NewPipelineEngine(weatherSrc, music, opts), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
