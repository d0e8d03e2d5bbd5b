package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      App      `mapstructure:"app"`
	AI       AI       `mapstructure:"ai"`
	Sources  Sources  `mapstructure:"sources"`
	Pipeline Pipeline `mapstructure:"pipeline"`
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
	PostHog  PostHog  `mapstructure:"posthog"`
	Logging  Logging  `mapstructure:"logging"`
}

// App holds general application configuration
type App struct {
	Debug      bool   `mapstructure:"debug"`
	ConfigFile string `mapstructure:"config_file"`
}

// AI holds completion service configuration
type AI struct {
	Provider    string       `mapstructure:"provider"`
	Timeout     string       `mapstructure:"timeout"`
	Temperature float32      `mapstructure:"temperature"`
	MaxTokens   int32        `mapstructure:"max_tokens"`
	Gemini      GeminiConfig `mapstructure:"gemini"`
	OpenAI      OpenAIConfig `mapstructure:"openai"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// OpenAIConfig holds configuration for any OpenAI-compatible chat completions endpoint
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// Sources holds content acquisition configuration
type Sources struct {
	UserAgent    string        `mapstructure:"user_agent"`
	Timeout      string        `mapstructure:"timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
	YouTube      YouTubeConfig `mapstructure:"youtube"`
	Spotify      SpotifyConfig `mapstructure:"spotify"`
	ITunes       ITunesConfig  `mapstructure:"itunes"`
}

// YouTubeConfig holds YouTube access configuration
type YouTubeConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Language   string `mapstructure:"language"`
	OEmbedURL  string `mapstructure:"oembed_url"`
	WatchURL   string `mapstructure:"watch_url"`
	DataAPIURL string `mapstructure:"data_api_url"`
}

// SpotifyConfig holds Spotify Web API credentials
type SpotifyConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	Market       string `mapstructure:"market"`
	TokenURL     string `mapstructure:"token_url"`
	APIBaseURL   string `mapstructure:"api_base_url"`
}

// ITunesConfig holds the podcast directory lookup endpoint
type ITunesConfig struct {
	LookupURL string `mapstructure:"lookup_url"`
}

// Pipeline holds normalization limits
type Pipeline struct {
	MaxContentLength int `mapstructure:"max_content_length"`
	MinContentLength int `mapstructure:"min_content_length"`
	MinExtractLength int `mapstructure:"min_extract_length"`
}

// Server holds HTTP server configuration
type Server struct {
	Host         string   `mapstructure:"host"`
	Port         int      `mapstructure:"port"`
	ReadTimeout  string   `mapstructure:"read_timeout"`
	WriteTimeout string   `mapstructure:"write_timeout"`
	CORSOrigins  []string `mapstructure:"cors_origins"`
}

// Database holds result persistence configuration
type Database struct {
	Driver       string `mapstructure:"driver"`
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// PostHog holds usage analytics configuration
type PostHog struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
	Host    string `mapstructure:"host"`
}

// Logging holds logging configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var globalConfig *Config

// Load loads the configuration from various sources
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".brevity")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.App.ConfigFile = viper.ConfigFileUsed()

	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

func setDefaults() {
	viper.SetDefault("app.debug", false)

	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.timeout", "60s")
	viper.SetDefault("ai.temperature", 0.3)
	viper.SetDefault("ai.max_tokens", 1000)
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.openai.model", "gpt-4o-mini")
	viper.SetDefault("ai.openai.base_url", "https://api.openai.com/v1")

	viper.SetDefault("sources.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	viper.SetDefault("sources.timeout", "15s")
	viper.SetDefault("sources.max_body_bytes", 5*1024*1024)
	viper.SetDefault("sources.youtube.language", "en")
	viper.SetDefault("sources.youtube.oembed_url", "https://www.youtube.com/oembed")
	viper.SetDefault("sources.youtube.watch_url", "https://www.youtube.com/watch")
	viper.SetDefault("sources.youtube.data_api_url", "")
	viper.SetDefault("sources.spotify.market", "US")
	viper.SetDefault("sources.spotify.token_url", "https://accounts.spotify.com/api/token")
	viper.SetDefault("sources.spotify.api_base_url", "https://api.spotify.com/v1")
	viper.SetDefault("sources.itunes.lookup_url", "https://itunes.apple.com/lookup")

	viper.SetDefault("pipeline.max_content_length", 16000)
	viper.SetDefault("pipeline.min_content_length", 50)
	viper.SetDefault("pipeline.min_extract_length", 100)

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "120s")
	viper.SetDefault("server.cors_origins", []string{"*"})

	viper.SetDefault("database.driver", "sqlite3")
	viper.SetDefault("database.dsn", "brevity.db")
	viper.SetDefault("database.max_open_conns", 10)
	viper.SetDefault("database.max_idle_conns", 5)

	viper.SetDefault("posthog.host", "https://app.posthog.com")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})
	bindEnvKeys("ai.openai.api_key", []string{"OPENAI_API_KEY"})
	bindEnvKeys("ai.openai.base_url", []string{"OPENAI_BASE_URL"})
	bindEnvKeys("ai.provider", []string{"BREVITY_AI_PROVIDER"})

	bindEnvKeys("sources.youtube.api_key", []string{"YOUTUBE_API_KEY"})
	bindEnvKeys("sources.spotify.client_id", []string{"SPOTIFY_CLIENT_ID"})
	bindEnvKeys("sources.spotify.client_secret", []string{"SPOTIFY_CLIENT_SECRET"})

	bindEnvKeys("database.dsn", []string{"DATABASE_URL", "BREVITY_DATABASE_DSN"})
	bindEnvKeys("database.driver", []string{"BREVITY_DATABASE_DRIVER"})

	bindEnvKeys("posthog.api_key", []string{"POSTHOG_API_KEY"})
	bindEnvKeys("posthog.host", []string{"POSTHOG_HOST"})

	bindEnvKeys("server.port", []string{"PORT"})
	bindEnvKeys("logging.level", []string{"LOG_LEVEL"})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

func postProcessConfig(config *Config) error {
	config.AI.Provider = strings.ToLower(strings.TrimSpace(config.AI.Provider))
	config.Database.Driver = strings.ToLower(strings.TrimSpace(config.Database.Driver))
	if config.Database.Driver == "postgresql" {
		config.Database.Driver = "postgres"
	}
	if config.Database.Driver == "sqlite" {
		config.Database.Driver = "sqlite3"
	}
	if config.PostHog.APIKey != "" && !viper.IsSet("posthog.enabled") {
		config.PostHog.Enabled = true
	}

	durations := map[string]string{
		"ai.timeout":           config.AI.Timeout,
		"sources.timeout":      config.Sources.Timeout,
		"server.read_timeout":  config.Server.ReadTimeout,
		"server.write_timeout": config.Server.WriteTimeout,
	}

	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	return nil
}

// validateConfig checks structural settings. Credentials are checked by
// ValidateForAnalysis, since commands like migrate never call the model.
func validateConfig(config *Config) error {
	var problems []string

	switch config.AI.Provider {
	case "gemini", "openai":
	default:
		problems = append(problems, fmt.Sprintf("Unknown AI provider: %s. Supported: gemini, openai", config.AI.Provider))
	}

	switch config.Database.Driver {
	case "postgres", "sqlite3":
	default:
		problems = append(problems, fmt.Sprintf("Unknown database driver: %s. Supported: postgres, sqlite3", config.Database.Driver))
	}

	p := config.Pipeline
	if p.MinContentLength < 0 || p.MinExtractLength < 0 {
		problems = append(problems, "pipeline minimum lengths must not be negative")
	}
	if p.MaxContentLength <= p.MinContentLength {
		problems = append(problems, fmt.Sprintf("pipeline.max_content_length (%d) must exceed pipeline.min_content_length (%d)", p.MaxContentLength, p.MinContentLength))
	}
	if config.Sources.MaxBodyBytes <= 0 {
		problems = append(problems, "sources.max_body_bytes must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// ValidateForAnalysis ensures the selected completion provider has credentials.
func (c *Config) ValidateForAnalysis() error {
	switch c.AI.Provider {
	case "openai":
		if !isValidAPIKey(c.AI.OpenAI.APIKey) {
			return errors.New("OpenAI API key is required. Set OPENAI_API_KEY environment variable or ai.openai.api_key in config file")
		}
	default:
		if !isValidAPIKey(c.AI.Gemini.APIKey) {
			return errors.New("Gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file")
		}
	}
	return nil
}

// HasSpotifyCredentials reports whether the catalog adapter can authenticate.
func (c *Config) HasSpotifyCredentials() bool {
	return c.Sources.Spotify.ClientID != "" && c.Sources.Spotify.ClientSecret != ""
}

// AITimeout returns the completion timeout.
func (c *Config) AITimeout() time.Duration { return parseDurationOr(c.AI.Timeout, 60*time.Second) }

// SourcesTimeout returns the per-request acquisition timeout.
func (c *Config) SourcesTimeout() time.Duration {
	return parseDurationOr(c.Sources.Timeout, 15*time.Second)
}

// Addr returns host:port for the HTTP server.
func (s Server) Addr() string { return fmt.Sprintf("%s:%d", s.Host, s.Port) }

// ReadTimeoutDuration returns the server read timeout.
func (s Server) ReadTimeoutDuration() time.Duration {
	return parseDurationOr(s.ReadTimeout, 15*time.Second)
}

// WriteTimeoutDuration returns the server write timeout.
func (s Server) WriteTimeoutDuration() time.Duration {
	return parseDurationOr(s.WriteTimeout, 120*time.Second)
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// Convenience getters for commonly used configuration values
func GetAI() AI             { return Get().AI }
func GetSources() Sources   { return Get().Sources }
func GetPipeline() Pipeline { return Get().Pipeline }
func GetServer() Server     { return Get().Server }
func GetDatabase() Database { return Get().Database }
func GetLogging() Logging   { return Get().Logging }
func IsDebugMode() bool     { return Get().App.Debug }

// isValidAPIKey checks if an API key is valid (not empty and not a placeholder)
func isValidAPIKey(apiKey string) bool {
	if apiKey == "" {
		return false
	}

	placeholders := []string{
		"your-api-key", "your-gemini-key", "your-openai-key",
		"YOUR_API_KEY", "PLACEHOLDER", "TODO", "CHANGE_ME",
	}

	for _, placeholder := range placeholders {
		if apiKey == placeholder {
			return false
		}
	}

	return true
}

// Reset clears the global configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viper.Reset()
}
