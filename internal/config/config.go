package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"task-manager/internal/auth"
	"task-manager/internal/repository"
	"task-manager/internal/service"
)

const devSessionSecret = "task-manager-dev-secret"

// Config keeps runtime settings for the task manager.
type Config struct {
	TelegramToken  string
	DatabaseURL    string
	SessionSecret  string
	SessionTTL     time.Duration
	ReminderTime   string
	PasswordHasher string
}

// Load reads .env (if present) and the environment, applying defaults.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[info] no .env file found, using environment variables")
	}

	ttl, err := getEnvAsInt("SESSION_TTL_HOURS", 24)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		TelegramToken:  strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		DatabaseURL:    getEnv("DATABASE_URL", repository.DefaultDSN),
		SessionSecret:  getEnv("SESSION_SECRET", ""),
		SessionTTL:     time.Duration(ttl) * time.Hour,
		ReminderTime:   getEnv("REMINDER_TIME", "09:00"),
		PasswordHasher: strings.ToLower(getEnv("PASSWORD_HASHER", auth.HasherSHA256)),
	}

	if cfg.SessionSecret == "" {
		log.Println("[info] SESSION_SECRET not set, using the development secret")
		cfg.SessionSecret = devSessionSecret
	}

	return cfg, cfg.validate()
}

// RequireTelegram fails when no bot token is configured.
func (c Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	return nil
}

func (c Config) validate() error {
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL_HOURS must be greater than 0")
	}
	if _, _, err := service.ParseClock(c.ReminderTime); err != nil {
		return fmt.Errorf("REMINDER_TIME: %w", err)
	}
	if _, err := auth.NewHasher(c.PasswordHasher); err != nil {
		return fmt.Errorf("PASSWORD_HASHER: %w", err)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s", key)
	}
	return i, nil
}
