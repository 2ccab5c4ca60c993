package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	RunModeLongpoll = "longpoll"
	RunModeWebhook  = "webhook"
)

// Config настройки бота. Значения из YAML перекрываются переменными окружения.
type Config struct {
	TelegramToken  string `yaml:"telegram_token" envconfig:"TELEGRAM_BOT_TOKEN"`
	RunMode        string `yaml:"run_mode" envconfig:"BOT_RUN_MODE"`
	WebhookBaseURL string `yaml:"webhook_base_url" envconfig:"WEBHOOK_BASE_URL"`
	HTTPAddr       string `yaml:"http_addr" envconfig:"HTTP_ADDR"`

	AppEnv   string `yaml:"app_env" envconfig:"APP_ENV"`
	LogLevel string `yaml:"log_level" envconfig:"LOG_LEVEL"`

	BGRemovalProvider string        `yaml:"bg_removal_provider" envconfig:"BG_REMOVAL_PROVIDER"`
	RemoveBGAPIKey    string        `yaml:"removebg_api_key" envconfig:"REMOVEBG_API_KEY"`
	PhotoRoomAPIKey   string        `yaml:"photoroom_api_key" envconfig:"PHOTOROOM_API_KEY"`
	RembgURL          string        `yaml:"rembg_url" envconfig:"REMBG_URL"`
	BackgroundPrompt  string        `yaml:"background_prompt" envconfig:"BACKGROUND_PROMPT"`
	RemoteTimeout     time.Duration `yaml:"remote_timeout" envconfig:"REMOTE_TIMEOUT"`
	GenerateTimeout   time.Duration `yaml:"generate_timeout" envconfig:"GENERATE_TIMEOUT"`

	UploadsDir      string        `yaml:"uploads_dir" envconfig:"UPLOADS_DIR"`
	ProcessedDir    string        `yaml:"processed_dir" envconfig:"PROCESSED_DIR"`
	FileMaxAge      time.Duration `yaml:"file_max_age" envconfig:"FILE_MAX_AGE"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" envconfig:"CLEANUP_INTERVAL"`

	Workers  int `yaml:"workers" envconfig:"WORKERS"`
	SendRate int `yaml:"send_rate" envconfig:"SEND_RATE"`
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	var cfg Config
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}
	if cfg.TelegramToken == "" {
		cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize проверяет обязательные поля и подставляет значения по умолчанию
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if strings.TrimSpace(cfg.TelegramToken) == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.RunMode))
	switch rm {
	case "", "polling":
		rm = RunModeLongpoll
	case RunModeLongpoll:
	case RunModeWebhook:
		if strings.TrimSpace(cfg.WebhookBaseURL) == "" {
			return fmt.Errorf("WEBHOOK_BASE_URL is required when BOT_RUN_MODE is 'webhook'")
		}
		cfg.WebhookBaseURL = strings.TrimRight(cfg.WebhookBaseURL, "/")
	default:
		return fmt.Errorf("invalid BOT_RUN_MODE %q; allowed: longpoll, webhook", cfg.RunMode)
	}
	cfg.RunMode = rm

	provider := strings.ToLower(strings.TrimSpace(cfg.BGRemovalProvider))
	switch provider {
	case "":
		provider = "removebg"
	case "removebg", "photoroom", "rembg", "local":
	default:
		return fmt.Errorf("invalid BG_REMOVAL_PROVIDER %q; allowed: removebg, photoroom, rembg, local", cfg.BGRemovalProvider)
	}
	cfg.BGRemovalProvider = provider

	if cfg.Workers < 0 {
		return fmt.Errorf("WORKERS must be >= 0")
	}
	if cfg.SendRate < 0 {
		return fmt.Errorf("SEND_RATE must be >= 0")
	}

	setDefault(&cfg.HTTPAddr, ":8080")
	setDefault(&cfg.AppEnv, "production")
	if cfg.AppEnv == "development" {
		setDefault(&cfg.LogLevel, "debug")
	}
	setDefault(&cfg.LogLevel, "info")
	setDefault(&cfg.BackgroundPrompt, "professional gradient")
	setDefault(&cfg.UploadsDir, "uploads")
	setDefault(&cfg.ProcessedDir, "processed")

	setDuration(&cfg.RemoteTimeout, 30*time.Second)
	setDuration(&cfg.GenerateTimeout, 45*time.Second)
	setDuration(&cfg.FileMaxAge, 24*time.Hour)
	setDuration(&cfg.CleanupInterval, time.Hour)

	if cfg.Workers == 0 {
		cfg.Workers = 4
	}
	if cfg.SendRate == 0 {
		cfg.SendRate = 30
	}
	return nil
}

func setDefault(v *string, def string) {
	if strings.TrimSpace(*v) == "" {
		*v = def
	}
}

func setDuration(v *time.Duration, def time.Duration) {
	if *v <= 0 {
		*v = def
	}
}
