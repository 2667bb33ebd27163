package config

import (
	"dailydigest/internal/core"
	"dailydigest/internal/sources"
	"fmt"
	"net/mail"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      App           `mapstructure:"app"`
	AI       AI            `mapstructure:"ai"`
	Fetch    Fetch         `mapstructure:"fetch"`
	Pipeline Pipeline      `mapstructure:"pipeline"`
	Store    Store         `mapstructure:"store"`
	Site     Site          `mapstructure:"site"`
	Email    Email         `mapstructure:"email"`
	Server   Server        `mapstructure:"server"`
	Logging  Logging       `mapstructure:"logging"`
	Sources  []core.Source `mapstructure:"sources"`
}

// App holds general application configuration
type App struct {
	Debug    bool   `mapstructure:"debug"`
	Timezone string `mapstructure:"timezone"` // IANA name; empty means the process local zone
}

// AI holds completion provider configuration
type AI struct {
	Provider   string           `mapstructure:"provider"` // "openrouter" or "gemini"
	TrackCosts bool             `mapstructure:"track_costs"`
	OpenRouter OpenRouterConfig `mapstructure:"openrouter"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
}

// OpenRouterConfig holds OpenRouter configuration
type OpenRouterConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	ExtractModel   string `mapstructure:"extract_model"`
	SummarizeModel string `mapstructure:"summarize_model"`
	Referer        string `mapstructure:"referer"`
	Timeout        string `mapstructure:"timeout"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey         string `mapstructure:"api_key"`
	ExtractModel   string `mapstructure:"extract_model"`
	SummarizeModel string `mapstructure:"summarize_model"`
}

// Fetch holds page retrieval configuration
type Fetch struct {
	Mode              string   `mapstructure:"mode"` // "http" or "browser"
	Sanitize          bool     `mapstructure:"sanitize"`
	UserAgent         string   `mapstructure:"user_agent"`
	Timeout           string   `mapstructure:"timeout"`
	NavigationTimeout string   `mapstructure:"navigation_timeout"`
	SelectorTimeout   string   `mapstructure:"selector_timeout"`
	ContentSelectors  []string `mapstructure:"content_selectors"`
}

// Pipeline holds source orchestration configuration
type Pipeline struct {
	BatchSize              int    `mapstructure:"batch_size"`
	BatchPause             string `mapstructure:"batch_pause"`
	MaxArticlesPerSource   int    `mapstructure:"max_articles_per_source"`
	MaxArticlesPerCategory int    `mapstructure:"max_articles_per_category"`
}

// Store holds digest history configuration
type Store struct {
	Path      string `mapstructure:"path"`
	Retention int    `mapstructure:"retention"`
}

// Site holds static archive configuration
type Site struct {
	OutputDir   string `mapstructure:"output_dir"`
	BaseURL     string `mapstructure:"base_url"`
	Title       string `mapstructure:"title"`
	Description string `mapstructure:"description"`
	SourceURL   string `mapstructure:"source_url"`
}

// Email holds email configuration
type Email struct {
	Enabled bool       `mapstructure:"enabled"`
	SMTP    SMTPConfig `mapstructure:"smtp"`
	From    string     `mapstructure:"from"`
	To      string     `mapstructure:"to"`
}

// SMTPConfig holds SMTP configuration
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	SSL      bool   `mapstructure:"ssl"`
}

// Server holds archive preview server configuration
type Server struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Logging holds logging configuration
type Logging struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	FilePath   string `mapstructure:"file_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// Requirements selects which credentials validation insists on.
type Requirements struct {
	AI    bool // completion provider key
	Email bool // SMTP relay and addresses, when email is enabled
}

var (
	// RunRequirements covers a full digest run.
	RunRequirements = Requirements{AI: true, Email: true}
	// SiteRequirements covers commands that only touch the store and site.
	SiteRequirements = Requirements{}
)

// Load builds the configuration from .env, an optional YAML file and the environment,
// validated for a full run. The returned value is meant to be created once per process
// and passed explicitly.
func Load(configFile string) (*Config, error) {
	return LoadFor(configFile, RunRequirements)
}

// LoadFor is Load with the credential checks limited to req.
func LoadFor(configFile string, req Requirements) (*Config, error) {
	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
		}
	}

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
		v.SetConfigName(".dailydigest")
		v.SetConfigType("yaml")
	}

	setDefaults(v)
	bindEnvironmentVariables(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return buildFor(v, req)
}

// build unmarshals, post-processes and validates a populated viper instance for a full run
func build(v *viper.Viper) (*Config, error) {
	return buildFor(v, RunRequirements)
}

func buildFor(v *viper.Viper, req Requirements) (*Config, error) {
	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if len(config.Sources) == 0 {
		config.Sources = sources.Default()
	}

	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	if err := validateConfig(config, req); err != nil {
		return nil, err
	}

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.debug", false)
	v.SetDefault("app.timezone", "")

	v.SetDefault("ai.provider", "openrouter")
	v.SetDefault("ai.track_costs", true)
	v.SetDefault("ai.openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("ai.openrouter.extract_model", "google/gemini-2.0-flash-001")
	v.SetDefault("ai.openrouter.summarize_model", "google/gemini-2.0-flash-001")
	v.SetDefault("ai.openrouter.referer", "https://github.com/dailydigest/dailydigest")
	v.SetDefault("ai.openrouter.timeout", "120s")
	v.SetDefault("ai.gemini.extract_model", "gemini-2.0-flash")
	v.SetDefault("ai.gemini.summarize_model", "gemini-2.0-flash")

	v.SetDefault("fetch.mode", "http")
	v.SetDefault("fetch.sanitize", true)
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (compatible; DailyDigest/1.0)")
	v.SetDefault("fetch.timeout", "30s")
	v.SetDefault("fetch.navigation_timeout", "30s")
	v.SetDefault("fetch.selector_timeout", "10s")
	v.SetDefault("fetch.content_selectors", []string{
		"article", "main", "[role='main']", ".story", ".headline", "h2 a", "h3 a",
	})

	v.SetDefault("pipeline.batch_size", 3)
	v.SetDefault("pipeline.batch_pause", "1s")
	v.SetDefault("pipeline.max_articles_per_source", 5)
	v.SetDefault("pipeline.max_articles_per_category", 3)

	v.SetDefault("store.path", "digests-data.json")
	v.SetDefault("store.retention", 30)

	v.SetDefault("site.output_dir", "public")
	v.SetDefault("site.base_url", "")
	v.SetDefault("site.title", "Daily News Digest")
	v.SetDefault("site.description", "AI-powered daily news digest with personalized summaries and insights")
	v.SetDefault("site.source_url", "https://github.com/dailydigest/dailydigest")

	v.SetDefault("email.enabled", true)
	v.SetDefault("email.smtp.port", 465)
	v.SetDefault("email.smtp.ssl", true)

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 28)
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables(v *viper.Viper) {
	bindEnvKeys(v, "ai.openrouter.api_key", []string{"OPENROUTER_API_KEY"})
	bindEnvKeys(v, "ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})
	bindEnvKeys(v, "ai.provider", []string{"AI_PROVIDER"})

	bindEnvKeys(v, "email.smtp.host", []string{"SMTP_HOST", "EMAIL_SMTP_HOST"})
	bindEnvKeys(v, "email.smtp.port", []string{"SMTP_PORT", "EMAIL_SMTP_PORT"})
	bindEnvKeys(v, "email.smtp.username", []string{"SMTP_USER", "SMTP_USERNAME"})
	bindEnvKeys(v, "email.smtp.password", []string{"SMTP_PASS", "SMTP_PASSWORD"})
	bindEnvKeys(v, "email.from", []string{"EMAIL_FROM"})
	bindEnvKeys(v, "email.to", []string{"EMAIL_TO"})

	bindEnvKeys(v, "site.base_url", []string{"SITE_URL"})
	bindEnvKeys(v, "fetch.mode", []string{"FETCH_MODE"})

	bindEnvKeys(v, "app.debug", []string{"DEBUG", "DAILYDIGEST_DEBUG"})
	bindEnvKeys(v, "logging.level", []string{"LOG_LEVEL"})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(v *viper.Viper, viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			v.Set(viperKey, value)
			return
		}
	}
}

// postProcessConfig applies post-processing to configuration values
func postProcessConfig(config *Config) error {
	if config.Store.Path != "" {
		config.Store.Path = expandPath(config.Store.Path)
	}
	if config.Site.OutputDir != "" {
		config.Site.OutputDir = expandPath(config.Site.OutputDir)
	}
	if config.Logging.FilePath != "" {
		config.Logging.FilePath = expandPath(config.Logging.FilePath)
	}
	config.Site.BaseURL = strings.TrimRight(config.Site.BaseURL, "/")

	if config.App.Debug {
		config.Logging.Level = "debug"
	}

	durations := map[string]string{
		"ai.openrouter.timeout":    config.AI.OpenRouter.Timeout,
		"fetch.timeout":            config.Fetch.Timeout,
		"fetch.navigation_timeout": config.Fetch.NavigationTimeout,
		"fetch.selector_timeout":   config.Fetch.SelectorTimeout,
		"pipeline.batch_pause":     config.Pipeline.BatchPause,
	}

	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	if config.App.Timezone != "" {
		if _, err := time.LoadLocation(config.App.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", config.App.Timezone, err)
		}
	}

	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// validateConfig ensures required configuration is present
func validateConfig(config *Config, req Requirements) error {
	var errors []string

	switch config.AI.Provider {
	case "openrouter":
		if req.AI && config.AI.OpenRouter.APIKey == "" {
			errors = append(errors, "OpenRouter API key is required. Set OPENROUTER_API_KEY environment variable or ai.openrouter.api_key in config file")
		}
	case "gemini":
		if req.AI && config.AI.Gemini.APIKey == "" {
			errors = append(errors, "Gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file")
		}
	default:
		errors = append(errors, fmt.Sprintf("Unknown AI provider: %s. Supported: openrouter, gemini", config.AI.Provider))
	}

	switch config.Fetch.Mode {
	case "http", "browser":
	default:
		errors = append(errors, fmt.Sprintf("Unknown fetch mode: %s. Supported: http, browser", config.Fetch.Mode))
	}

	if config.Pipeline.BatchSize < 1 {
		errors = append(errors, "pipeline.batch_size must be at least 1")
	}
	if config.Pipeline.MaxArticlesPerSource < 1 {
		errors = append(errors, "pipeline.max_articles_per_source must be at least 1")
	}
	if config.Store.Retention < 1 {
		errors = append(errors, "store.retention must be at least 1")
	}

	if config.Site.BaseURL != "" && !isAbsoluteHTTPURL(config.Site.BaseURL) {
		errors = append(errors, fmt.Sprintf("SITE_URL must be an absolute http(s) URL, got %q", config.Site.BaseURL))
	}

	if req.Email && config.Email.Enabled {
		if config.Email.SMTP.Host == "" {
			errors = append(errors, "SMTP host is required when email is enabled. Set SMTP_HOST")
		}
		if config.Email.SMTP.Port <= 0 || config.Email.SMTP.Port > 65535 {
			errors = append(errors, fmt.Sprintf("SMTP port must be between 1 and 65535, got %d", config.Email.SMTP.Port))
		}
		if config.Email.SMTP.Username == "" {
			errors = append(errors, "SMTP username is required when email is enabled. Set SMTP_USER")
		}
		if config.Email.SMTP.Password == "" {
			errors = append(errors, "SMTP password is required when email is enabled. Set SMTP_PASS")
		}
		if _, err := mail.ParseAddress(config.Email.From); err != nil {
			errors = append(errors, fmt.Sprintf("EMAIL_FROM must be a valid email address, got %q", config.Email.From))
		}
		if _, err := mail.ParseAddress(config.Email.To); err != nil {
			errors = append(errors, fmt.Sprintf("EMAIL_TO must be a valid email address, got %q", config.Email.To))
		}
	}

	if err := sources.Validate(config.Sources); err != nil {
		errors = append(errors, err.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Location returns the zone used for calendar-date keys.
func (c *Config) Location() *time.Location {
	if c.App.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Duration parses a validated duration string, falling back when empty.
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func isAbsoluteHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
