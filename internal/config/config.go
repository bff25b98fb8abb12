package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration for the application.
type Config struct {
	DatabasePath      string `validate:"required"`
	DefaultUserID     string `validate:"required"`
	Timezone          string
	ScoringTablesPath string
	APISecret         string `validate:"omitempty,min=16"`
	Debug             bool
	Port              string `validate:"required,numeric"`

	GeminiAPIKey string
	GeminiModel  string
	GroqAPIKey   string
	GroqModel    string

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string `validate:"omitempty,url"`
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64
}

var validate = validator.New()

// NewFromEnv creates a new Config object from environment variables.
// A .env file in the working directory is loaded first when present; real
// environment variables take precedence over it.
func NewFromEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("FEMWORK_DB_PATH", "data/femwork.db")
	v.SetDefault("FEMWORK_USER", "local")
	v.SetDefault("FEMWORK_TIMEZONE", "Local")
	v.SetDefault("PORT", "8080")
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	v.SetDefault("GROQ_MODEL", "llama-3.3-70b-versatile")

	allowed, err := parseIDs(v.GetString("TELEGRAM_ALLOWED_USER_IDS"))
	if err != nil {
		return nil, fmt.Errorf("TELEGRAM_ALLOWED_USER_IDS: %w", err)
	}

	var adminID int64
	if s := strings.TrimSpace(v.GetString("TELEGRAM_ADMIN_ID")); s != "" {
		if adminID, err = strconv.ParseInt(s, 10, 64); err != nil {
			return nil, fmt.Errorf("TELEGRAM_ADMIN_ID: invalid user id %q", s)
		}
	}

	cfg := &Config{
		DatabasePath:           v.GetString("FEMWORK_DB_PATH"),
		DefaultUserID:          v.GetString("FEMWORK_USER"),
		Timezone:               v.GetString("FEMWORK_TIMEZONE"),
		ScoringTablesPath:      v.GetString("FEMWORK_SCORING_TABLES"),
		APISecret:              v.GetString("FEMWORK_API_SECRET"),
		Debug:                  v.GetBool("FEMWORK_DEBUG"),
		Port:                   v.GetString("PORT"),
		GeminiAPIKey:           v.GetString("GEMINI_API_KEY"),
		GeminiModel:            v.GetString("GEMINI_MODEL"),
		GroqAPIKey:             v.GetString("GROQ_API_KEY"),
		GroqModel:              v.GetString("GROQ_MODEL"),
		TelegramBotToken:       v.GetString("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:     v.GetString("TELEGRAM_WEBHOOK_URL"),
		TelegramAllowedUserIDs: allowed,
		AdminTelegramID:        adminID,
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Location resolves the configured IANA timezone used to decide "today".
func (c *Config) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("FEMWORK_TIMEZONE: %w", err)
	}
	return loc, nil
}

// RequireTelegram checks the settings the bot cannot start without.
func (c *Config) RequireTelegram() error {
	if c.TelegramBotToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	if c.TelegramWebhookURL == "" {
		return errors.New("TELEGRAM_WEBHOOK_URL environment variable not set")
	}
	if len(c.TelegramAllowedUserIDs) == 0 {
		return errors.New("TELEGRAM_ALLOWED_USER_IDS environment variable not set")
	}
	return nil
}

// RequireAPISecret checks that API tokens can be signed and verified.
func (c *Config) RequireAPISecret() error {
	if c.APISecret == "" {
		return errors.New("FEMWORK_API_SECRET environment variable not set")
	}
	return nil
}

// IsAllowed reports whether a Telegram user may talk to the bot.
func (c *Config) IsAllowed(telegramID int64) bool {
	for _, id := range c.TelegramAllowedUserIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

func parseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
