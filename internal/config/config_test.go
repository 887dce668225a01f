package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	_, err := LoadConfig(t.TempDir())
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.TelegramBotToken)
	assert.Equal(t, "temp", cfg.TempDir)
	assert.Equal(t, []string{"twitter.com", "x.com"}, cfg.AllowedDomains)
	assert.Equal(t, ExpanderSingle, cfg.ThreadExpander)
	assert.False(t, cfg.GateEnabled())
	assert.Zero(t, cfg.RateLimitPerMinute)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, lvl)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("REQUIRED_CHANNEL_ID", "@mychannel")
	t.Setenv("ALLOWED_DOMAINS", "x.com,fxtwitter.com")
	t.Setenv("THREAD_EXPANDER", "Browser")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "5")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.True(t, cfg.GateEnabled())
	assert.Equal(t, "@mychannel", cfg.RequiredChannelID)
	assert.Equal(t, []string{"x.com", "fxtwitter.com"}, cfg.AllowedDomains)
	assert.Equal(t, ExpanderBrowser, cfg.ThreadExpander)
	assert.Equal(t, 5, cfg.RateLimitPerMinute)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, lvl)
}

func TestLoadConfig_File(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	dir := t.TempDir()
	content := "TELEGRAM_BOT_TOKEN: from-file\nTEMP_DIR: /tmp/videos\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.TelegramBotToken)
	assert.Equal(t, "/tmp/videos", cfg.TempDir)
}

func TestValidate_Rejects(t *testing.T) {
	cfg := Config{TelegramBotToken: "t", ThreadExpander: "magic"}
	assert.Error(t, cfg.Validate())

	cfg = Config{TelegramBotToken: "t", RateLimitPerMinute: -1}
	assert.Error(t, cfg.Validate())

	cfg = Config{TelegramBotToken: "t", LogLevel: "loud"}
	assert.Error(t, cfg.Validate())
}
