package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
//
// Environment variables overlay the file via [Config.ApplyEnv]; components
// receive the resolved struct and never read the environment themselves.
type Config struct {
	Playlist    PlaylistConfig    `toml:"playlist"`
	Credentials CredentialsConfig `toml:"credentials"`
	Auth        AuthConfig        `toml:"auth"`
	Summary     SummaryConfig     `toml:"summary"`
	Schedule    ScheduleConfig    `toml:"schedule"`
}

// PlaylistConfig controls what gets built and where it lands.
type PlaylistConfig struct {
	City       string `toml:"city"`
	ID         string `toml:"id"`
	TrackCount int    `toml:"track_count"`
	Market     string `toml:"market"`
	DryRun     bool   `toml:"dry_run"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify     SpotifyConfig     `toml:"spotify"`
	OpenWeather OpenWeatherConfig `toml:"openweather"`
}

// SpotifyConfig contains Spotify API credentials and the OAuth scope.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
	Scope        string `toml:"scope"`
}

// OpenWeatherConfig contains the OpenWeather API key.
type OpenWeatherConfig struct {
	APIKey string `toml:"api_key"`
}

// AuthConfig contains token persistence settings.
//
// An empty TokenFile keeps tokens in memory for the process lifetime.
type AuthConfig struct {
	TokenFile string `toml:"token_file"`
}

// SummaryConfig contains run summary output settings.
type SummaryConfig struct {
	Dir string `toml:"dir"`
}

// ScheduleConfig contains daily scheduler settings.
type ScheduleConfig struct {
	At          string `toml:"at"`
	Timezone    string `toml:"timezone"`
	MetricsAddr string `toml:"metrics_addr"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnv loads variables from a .env file in the working directory.
//
// A missing file is not an error; explicit environment variables win.
func LoadEnv() {
	_ = godotenv.Load()
}

// ApplyEnv overlays recognized environment variables onto the config.
//
// Variables: CITY_NAME, TARGET_PLAYLIST_ID, TRACK_COUNT, MARKET, DRY_RUN,
// OPENWEATHER_API_KEY, SPOTIFY_CLIENT_ID, SPOTIFY_CLIENT_SECRET,
// SPOTIFY_REDIRECT_URI, SPOTIFY_SCOPE.
func (c *Config) ApplyEnv() {
	envString("CITY_NAME", &c.Playlist.City)
	envString("TARGET_PLAYLIST_ID", &c.Playlist.ID)
	envInt("TRACK_COUNT", &c.Playlist.TrackCount)
	envString("MARKET", &c.Playlist.Market)
	envBool("DRY_RUN", &c.Playlist.DryRun)
	envString("OPENWEATHER_API_KEY", &c.Credentials.OpenWeather.APIKey)
	envString("SPOTIFY_CLIENT_ID", &c.Credentials.Spotify.ClientID)
	envString("SPOTIFY_CLIENT_SECRET", &c.Credentials.Spotify.ClientSecret)
	envString("SPOTIFY_REDIRECT_URI", &c.Credentials.Spotify.RedirectURI)
	envString("SPOTIFY_SCOPE", &c.Credentials.Spotify.Scope)
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes":
			*dst = true
		default:
			*dst = false
		}
	}
}
