package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// BotConfig holds the Telegram-facing settings.
type BotConfig struct {
	Token            string
	HRChannelID      int64
	SupportChannelID int64
	WorkerPoolSize   int
	PollTimeout      int
}

// StorageConfig holds the S3-compatible object storage settings.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// Config holds all configuration for the application.
type Config struct {
	AppEnv        string
	LogLevel      string
	Bot           BotConfig
	DatabaseURL   string
	Storage       StorageConfig
	OpenAIKey     string // optional; empty key degrades the analyzer to mock results
	EncryptionKey string
	SessionTTL    time.Duration
}

// bindings maps viper keys to the environment variables that feed them.
var bindings = map[string]string{
	"app.env":             "APP_ENV",
	"log.level":           "LOG_LEVEL",
	"bot.token":           "TELEGRAM_BOT_TOKEN",
	"bot.hr_channel":      "TELEGRAM_HR_GROUP_ID",
	"bot.support_channel": "TELEGRAM_SUPPORT_GROUP_ID",
	"bot.workers":         "BOT_WORKER_POOL_SIZE",
	"bot.poll_timeout":    "BOT_POLL_TIMEOUT",
	"database.url":        "DATABASE_URL",
	"storage.endpoint":    "DO_SPACES_ENDPOINT",
	"storage.key":         "DO_SPACES_KEY",
	"storage.secret":      "DO_SPACES_SECRET",
	"storage.bucket":      "DO_SPACES_BUCKET",
	"storage.region":      "DO_SPACES_REGION",
	"storage.use_ssl":     "DO_SPACES_USE_SSL",
	"openai.key":          "OPENAI_API_KEY",
	"encryption.key":      "ENCRYPTION_KEY",
	"session.ttl":         "SESSION_TTL",
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {

	// Load .env into the process environment. A missing file is fine in
	// prod, where everything comes from OS-set env vars.
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("could not bind %s: %w", key, err)
		}
	}

	viper.SetDefault("app.env", "dev")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("bot.workers", 4)
	viper.SetDefault("bot.poll_timeout", 60)
	viper.SetDefault("storage.use_ssl", true)
	viper.SetDefault("session.ttl", "24h")

	cfg := Config{
		AppEnv:   viper.GetString("app.env"),
		LogLevel: viper.GetString("log.level"),
		Bot: BotConfig{
			Token:            viper.GetString("bot.token"),
			HRChannelID:      viper.GetInt64("bot.hr_channel"),
			SupportChannelID: viper.GetInt64("bot.support_channel"),
			WorkerPoolSize:   viper.GetInt("bot.workers"),
			PollTimeout:      viper.GetInt("bot.poll_timeout"),
		},
		DatabaseURL: viper.GetString("database.url"),
		Storage: StorageConfig{
			Endpoint:  viper.GetString("storage.endpoint"),
			AccessKey: viper.GetString("storage.key"),
			SecretKey: viper.GetString("storage.secret"),
			Bucket:    viper.GetString("storage.bucket"),
			Region:    viper.GetString("storage.region"),
			UseSSL:    viper.GetBool("storage.use_ssl"),
		},
		OpenAIKey:     viper.GetString("openai.key"),
		EncryptionKey: viper.GetString("encryption.key"),
		SessionTTL:    viper.GetDuration("session.ttl"),
	}

	if cfg.Bot.Token == "" {
		return nil, errors.New("TELEGRAM_BOT_TOKEN is not set in environment or .env file")
	}
	if cfg.Bot.HRChannelID == 0 {
		return nil, errors.New("TELEGRAM_HR_GROUP_ID is not set in environment or .env file")
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is not set in environment or .env file")
	}
	if cfg.Storage.Endpoint == "" || cfg.Storage.Bucket == "" {
		return nil, errors.New("object storage is not configured (DO_SPACES_ENDPOINT / DO_SPACES_BUCKET)")
	}
	if cfg.EncryptionKey != "" && len(cfg.EncryptionKey) != 64 {
		return nil, fmt.Errorf("ENCRYPTION_KEY must be a 64-character hex string (32 bytes), but got %d chars", len(cfg.EncryptionKey))
	}
	if cfg.SessionTTL <= 0 {
		return nil, errors.New("SESSION_TTL must be a positive duration")
	}
	if cfg.Bot.SupportChannelID == 0 {
		// Support traffic falls back to the HR channel.
		cfg.Bot.SupportChannelID = cfg.Bot.HRChannelID
	}

	return &cfg, nil
}
