package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        App        `mapstructure:"app"`
	Server     Server     `mapstructure:"server"`
	Database   Database   `mapstructure:"database"`
	AI         AI         `mapstructure:"ai"`
	Scrape     Scrape     `mapstructure:"scrape"`
	Newsjack   Newsjack   `mapstructure:"newsjack"`
	Email      Email      `mapstructure:"email"`
	Messaging  Messaging  `mapstructure:"messaging"`
	Revalidate Revalidate `mapstructure:"revalidate"`
	Logging    Logging    `mapstructure:"logging"`
}

// App holds general application configuration
type App struct {
	Debug      bool   `mapstructure:"debug"`
	ConfigFile string `mapstructure:"config_file"`
}

// Server holds HTTP server configuration
type Server struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORS            CORS          `mapstructure:"cors"`
	RateLimit       RateLimit     `mapstructure:"rate_limit"`
}

// CORS holds cross-origin configuration
type CORS struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimit holds the token bucket settings for the action endpoint
type RateLimit struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// Database holds the status store connection settings
type Database struct {
	ConnectionString string        `mapstructure:"connection_string"`
	MaxOpenConns     int           `mapstructure:"max_open_conns"`
	MaxIdleConns     int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime  time.Duration `mapstructure:"conn_max_lifetime"`
}

// AI holds AI/LLM configuration
type AI struct {
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	Perplexity PerplexityConfig `mapstructure:"perplexity"`
}

// OpenAIConfig holds the draft generation model configuration
type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Temperature float32       `mapstructure:"temperature"`
}

// GeminiConfig holds the quality check model configuration
type GeminiConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// PerplexityConfig holds the context search model configuration
type PerplexityConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Scrape holds readability proxy configuration
type Scrape struct {
	ProxyURL  string        `mapstructure:"proxy_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	MaxChars  int           `mapstructure:"max_chars"`
	UserAgent string        `mapstructure:"user_agent"`
}

// Newsjack holds pipeline and action link configuration
type Newsjack struct {
	ActionSecret string   `mapstructure:"action_secret"`
	BaseURL      string   `mapstructure:"base_url"`
	Categories   []string `mapstructure:"categories"`
}

// Email holds email configuration
type Email struct {
	SMTP        SMTPConfig `mapstructure:"smtp"`
	FromAddress string     `mapstructure:"from_address"`
	FromName    string     `mapstructure:"from_name"`
	ReviewTo    []string   `mapstructure:"review_to"`
}

// SMTPConfig holds SMTP configuration
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// Messaging holds messaging platform configuration
type Messaging struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Slack   SlackConfig   `mapstructure:"slack"`
}

// SlackConfig holds Slack configuration
type SlackConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
	Username   string `mapstructure:"username"`
	IconEmoji  string `mapstructure:"icon_emoji"`
}

// Revalidate holds the public site cache revalidation hook
type Revalidate struct {
	SiteURL string        `mapstructure:"site_url"`
	Secret  string        `mapstructure:"secret"`
	Timeout time.Duration `mapstructure:"timeout"`
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

	// Load .env file if it exists
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
		viper.SetConfigName(".newsjack")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.App.ConfigFile = viper.ConfigFileUsed()

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

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("app.debug", false)

	// Server defaults; write timeout covers a full approve run
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "130s")
	viper.SetDefault("server.request_timeout", "120s")
	viper.SetDefault("server.shutdown_timeout", "30s")
	viper.SetDefault("server.cors.enabled", false)
	viper.SetDefault("server.rate_limit.enabled", true)
	viper.SetDefault("server.rate_limit.requests_per_second", 2.0)
	viper.SetDefault("server.rate_limit.burst", 10)

	viper.SetDefault("database.max_open_conns", 10)
	viper.SetDefault("database.max_idle_conns", 2)
	viper.SetDefault("database.conn_max_lifetime", "5m")

	// AI defaults
	viper.SetDefault("ai.openai.model", "gpt-4o")
	viper.SetDefault("ai.openai.base_url", "https://api.openai.com/v1")
	viper.SetDefault("ai.openai.timeout", "90s")
	viper.SetDefault("ai.openai.temperature", 0.7)
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.timeout", "60s")
	viper.SetDefault("ai.perplexity.model", "sonar")
	viper.SetDefault("ai.perplexity.base_url", "https://api.perplexity.ai")
	viper.SetDefault("ai.perplexity.timeout", "30s")

	viper.SetDefault("scrape.proxy_url", "https://r.jina.ai")
	viper.SetDefault("scrape.timeout", "15s")
	viper.SetDefault("scrape.max_chars", 8000)
	viper.SetDefault("scrape.user_agent", "newsjack/1.0")

	viper.SetDefault("newsjack.base_url", "http://localhost:8080")
	viper.SetDefault("newsjack.categories", []string{
		"Funding News",
		"Policy & Regulation",
		"Nonprofit Strategy",
		"Grant Writing Tips",
		"Foundation Spotlight",
	})

	viper.SetDefault("email.smtp.port", 587)
	viper.SetDefault("email.from_name", "Newsjack")

	viper.SetDefault("messaging.timeout", "10s")
	viper.SetDefault("messaging.slack.username", "Newsjack")
	viper.SetDefault("messaging.slack.icon_emoji", ":newspaper:")

	viper.SetDefault("revalidate.timeout", "10s")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	bindEnvKeys("ai.openai.api_key", []string{
		"OPENAI_API_KEY",
	})

	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	bindEnvKeys("ai.perplexity.api_key", []string{
		"PERPLEXITY_API_KEY",
		"PPLX_API_KEY",
	})

	bindEnvKeys("database.connection_string", []string{
		"DATABASE_URL",
		"NEWSJACK_DATABASE_URL",
	})

	bindEnvKeys("newsjack.action_secret", []string{
		"NEWSJACK_ACTION_SECRET",
		"NEWSJACK_SECRET",
	})

	bindEnvKeys("newsjack.base_url", []string{
		"NEWSJACK_BASE_URL",
		"SITE_URL",
	})

	bindEnvKeys("email.smtp.host", []string{
		"SMTP_HOST",
		"EMAIL_SMTP_HOST",
	})

	bindEnvKeys("email.smtp.username", []string{
		"SMTP_USERNAME",
		"EMAIL_USERNAME",
	})

	bindEnvKeys("email.smtp.password", []string{
		"SMTP_PASSWORD",
		"EMAIL_PASSWORD",
	})

	bindEnvKeys("email.from_address", []string{
		"NEWSJACK_FROM_EMAIL",
		"EMAIL_FROM",
	})

	if to := firstEnv("NEWSJACK_REVIEW_EMAIL", "REVIEW_EMAIL"); to != "" {
		viper.Set("email.review_to", splitList(to))
	}

	bindEnvKeys("messaging.slack.webhook_url", []string{
		"SLACK_WEBHOOK_URL",
		"SLACK_WEBHOOK",
	})

	bindEnvKeys("revalidate.site_url", []string{
		"REVALIDATE_SITE_URL",
		"SITE_URL",
	})

	bindEnvKeys("revalidate.secret", []string{
		"REVALIDATE_SECRET",
	})

	bindEnvKeys("app.debug", []string{
		"DEBUG",
		"NEWSJACK_DEBUG",
	})

	bindEnvKeys("logging.level", []string{
		"LOG_LEVEL",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	if value := firstEnv(envKeys...); value != "" {
		viper.Set(viperKey, value)
	}
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// validateConfig ensures required configuration is present and consistent.
// API keys are not required here: `migrate` and `story` commands run without them.
func validateConfig(config *Config) error {
	var errors []string

	durations := map[string]time.Duration{
		"server.read_timeout":     config.Server.ReadTimeout,
		"server.write_timeout":    config.Server.WriteTimeout,
		"server.request_timeout":  config.Server.RequestTimeout,
		"server.shutdown_timeout": config.Server.ShutdownTimeout,
		"scrape.timeout":          config.Scrape.Timeout,
		"ai.openai.timeout":       config.AI.OpenAI.Timeout,
		"ai.gemini.timeout":       config.AI.Gemini.Timeout,
		"ai.perplexity.timeout":   config.AI.Perplexity.Timeout,
	}
	for key, d := range durations {
		if d < 0 {
			errors = append(errors, fmt.Sprintf("%s must not be negative", key))
		}
	}

	if config.Server.Port < 0 || config.Server.Port > 65535 {
		errors = append(errors, fmt.Sprintf("server.port out of range: %d", config.Server.Port))
	}

	if config.Scrape.MaxChars <= 0 {
		errors = append(errors, "scrape.max_chars must be positive")
	}

	if len(config.Newsjack.Categories) == 0 {
		errors = append(errors, "newsjack.categories must list at least one category")
	}

	if config.Email.SMTP.Host != "" && config.Email.FromAddress == "" {
		errors = append(errors, "email.from_address is required when SMTP is configured. Set NEWSJACK_FROM_EMAIL")
	}

	switch config.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("unknown logging.level %q. Supported: debug, info, warn, error", config.Logging.Level))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// RequireServing checks the settings the HTTP server and pipeline cannot run without.
func (c *Config) RequireServing() error {
	var missing []string
	if c.Database.ConnectionString == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.Newsjack.ActionSecret == "" {
		missing = append(missing, "NEWSJACK_ACTION_SECRET")
	}
	if c.AI.OpenAI.APIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Reset clears the global configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viper.Reset()
}
