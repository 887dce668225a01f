package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// ErrMissingToken is returned when no bot token is configured.
var ErrMissingToken = errors.New("TELEGRAM_BOT_TOKEN is not set")

// Thread expander strategies.
const (
	ExpanderSingle  = "single"
	ExpanderBrowser = "browser"
)

// Config holds all configuration for the application.
// Values are read by viper from a config file or environment variables.
type Config struct {
	TelegramBotToken   string   `mapstructure:"TELEGRAM_BOT_TOKEN"`
	RequiredChannelID  string   `mapstructure:"REQUIRED_CHANNEL_ID"`
	TempDir            string   `mapstructure:"TEMP_DIR"`
	PreferencesPath    string   `mapstructure:"PREFERENCES_PATH"`
	AllowedDomains     []string `mapstructure:"ALLOWED_DOMAINS"`
	ThreadExpander     string   `mapstructure:"THREAD_EXPANDER"`
	YtdlpPath          string   `mapstructure:"YTDLP_PATH"`
	YtdlpInstall       bool     `mapstructure:"YTDLP_INSTALL"`
	MetricsAddr        string   `mapstructure:"METRICS_ADDR"`
	RateLimitPerMinute int      `mapstructure:"RATE_LIMIT_PER_MINUTE"`
	LogLevel           string   `mapstructure:"LOG_LEVEL"`
}

// defaults also registers every key with viper, which Unmarshal needs to see env-only values.
var defaults = map[string]interface{}{
	"TELEGRAM_BOT_TOKEN":    "",
	"REQUIRED_CHANNEL_ID":   "",
	"TEMP_DIR":              "temp",
	"PREFERENCES_PATH":      "",
	"ALLOWED_DOMAINS":       []string{"twitter.com", "x.com"},
	"THREAD_EXPANDER":       ExpanderSingle,
	"YTDLP_PATH":            "",
	"YTDLP_INSTALL":         false,
	"METRICS_ADDR":          "",
	"RATE_LIMIT_PER_MINUTE": 0,
	"LOG_LEVEL":             "info",
}

// LoadConfig reads configuration from path/config.yaml (optional) and the environment.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine, everything can come from the environment.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks required values and normalises the rest.
func (c *Config) Validate() error {
	c.TelegramBotToken = strings.TrimSpace(c.TelegramBotToken)
	if c.TelegramBotToken == "" {
		return ErrMissingToken
	}
	if c.TempDir == "" {
		c.TempDir = "temp"
	}

	c.ThreadExpander = strings.ToLower(strings.TrimSpace(c.ThreadExpander))
	switch c.ThreadExpander {
	case "":
		c.ThreadExpander = ExpanderSingle
	case ExpanderSingle, ExpanderBrowser:
	default:
		return fmt.Errorf("THREAD_EXPANDER must be %q or %q, got %q", ExpanderSingle, ExpanderBrowser, c.ThreadExpander)
	}

	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative, got %d", c.RateLimitPerMinute)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel, defaulting to info.
func (c Config) Level() (logrus.Level, error) {
	if c.LogLevel == "" {
		return logrus.InfoLevel, nil
	}
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	return lvl, nil
}

// GateEnabled reports whether a required channel is configured.
func (c Config) GateEnabled() bool {
	return c.RequiredChannelID != ""
}
