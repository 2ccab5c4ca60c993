package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var configEnv = []string{
	"CONFIG_FILE", "TELEGRAM_BOT_TOKEN", "TELEGRAM_TOKEN", "BOT_RUN_MODE", "WEBHOOK_BASE_URL",
	"HTTP_ADDR", "APP_ENV", "LOG_LEVEL", "BG_REMOVAL_PROVIDER", "REMOVEBG_API_KEY",
	"PHOTOROOM_API_KEY", "REMBG_URL", "BACKGROUND_PROMPT", "REMOTE_TIMEOUT", "GENERATE_TIMEOUT",
	"UPLOADS_DIR", "PROCESSED_DIR", "FILE_MAX_AGE", "CLEANUP_INTERVAL", "WORKERS", "SEND_RATE",
}

// clearEnv изолирует тест от окружения и .env файла
func clearEnv(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, key := range configEnv {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "123:abc", cfg.TelegramToken)
	require.Equal(t, RunModeLongpoll, cfg.RunMode)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, "production", cfg.AppEnv)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "removebg", cfg.BGRemovalProvider)
	require.Equal(t, "professional gradient", cfg.BackgroundPrompt)
	require.Equal(t, 30*time.Second, cfg.RemoteTimeout)
	require.Equal(t, 45*time.Second, cfg.GenerateTimeout)
	require.Equal(t, "uploads", cfg.UploadsDir)
	require.Equal(t, "processed", cfg.ProcessedDir)
	require.Equal(t, 24*time.Hour, cfg.FileMaxAge)
	require.Equal(t, time.Hour, cfg.CleanupInterval)
	require.Equal(t, 4, cfg.Workers)
	require.Equal(t, 30, cfg.SendRate)
}

func TestLoad_LegacyTokenVariable(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_TOKEN", "legacy")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "legacy", cfg.TelegramToken)
}

func TestLoad_MissingToken(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	require.EqualError(t, err, "TELEGRAM_BOT_TOKEN is required")
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("BOT_RUN_MODE", "webhook")
	t.Setenv("WEBHOOK_BASE_URL", "https://bot.example.com/")
	t.Setenv("BG_REMOVAL_PROVIDER", "PhotoRoom")
	t.Setenv("REMOTE_TIMEOUT", "5s")
	t.Setenv("WORKERS", "8")
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, RunModeWebhook, cfg.RunMode)
	require.Equal(t, "https://bot.example.com", cfg.WebhookBaseURL)
	require.Equal(t, "photoroom", cfg.BGRemovalProvider)
	require.Equal(t, 5*time.Second, cfg.RemoteTimeout)
	require.Equal(t, 8, cfg.Workers)
	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
telegram_token: from-yaml
run_mode: polling
rembg_url: http://rembg:7000
file_max_age: 2h
workers: 2
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("WORKERS", "6")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "from-yaml", cfg.TelegramToken)
	require.Equal(t, RunModeLongpoll, cfg.RunMode)
	require.Equal(t, "http://rembg:7000", cfg.RembgURL)
	require.Equal(t, 2*time.Hour, cfg.FileMaxAge)
	require.Equal(t, 6, cfg.Workers)
}

func TestNormalize_Errors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"webhook without url", Config{TelegramToken: "t", RunMode: "webhook"}, "WEBHOOK_BASE_URL is required when BOT_RUN_MODE is 'webhook'"},
		{"unknown run mode", Config{TelegramToken: "t", RunMode: "push"}, `invalid BOT_RUN_MODE "push"; allowed: longpoll, webhook`},
		{"unknown provider", Config{TelegramToken: "t", BGRemovalProvider: "magic"}, `invalid BG_REMOVAL_PROVIDER "magic"; allowed: removebg, photoroom, rembg, local`},
		{"negative workers", Config{TelegramToken: "t", Workers: -1}, "WORKERS must be >= 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			require.EqualError(t, Normalize(&cfg), tt.wantErr)
		})
	}
	require.EqualError(t, Normalize(nil), "nil config")
}
