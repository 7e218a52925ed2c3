package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultTaigaURL       = "https://track.miem.hse.ru"
	DefaultLaborAttribute = "Трудозатраты"
	DefaultChatURL        = "https://chat.miem.hse.ru"
)

// Config holds environment-driven configuration.
type Config struct {
	Taiga struct {
		BaseURL        string // default: https://track.miem.hse.ru
		Login          string // fallback when the prompt is left blank
		Password       string
		LaborAttribute string
		Concurrency    int
		HTTPTimeout    time.Duration
	}
	Chat struct {
		BaseURL   string
		BasicAuth string // base64 user:password
	}
	MySQL struct {
		DSN string // optional; e.g. user:pass@tcp(host:3306)/dbname?parseTime=true&multiStatements=true
	}
}

// Load reads configuration from a .env file (if present) and the environment.
// Variables already set in the environment take precedence over .env.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}
	return FromEnv()
}

// FromEnv reads configuration from environment variables only.
func FromEnv() (Config, error) {
	var cfg Config

	cfg.Taiga.BaseURL = getenv("TAIGA_URL", DefaultTaigaURL)
	cfg.Taiga.Login = os.Getenv("TAIGA_LOGIN")
	cfg.Taiga.Password = os.Getenv("TAIGA_PASSWORD")
	cfg.Taiga.LaborAttribute = getenv("TAIGA_LABOR_ATTRIBUTE", DefaultLaborAttribute)

	cfg.Taiga.Concurrency = 4
	if v := os.Getenv("TAIGA_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return cfg, errors.New("TAIGA_CONCURRENCY must be a positive integer")
		}
		cfg.Taiga.Concurrency = n
	}

	cfg.Taiga.HTTPTimeout = 30 * time.Second
	if v := os.Getenv("TAIGA_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return cfg, errors.New("TAIGA_HTTP_TIMEOUT must be a positive duration")
		}
		cfg.Taiga.HTTPTimeout = d
	}

	cfg.Chat.BaseURL = getenv("CHAT_URL", DefaultChatURL)
	cfg.Chat.BasicAuth = os.Getenv("CHAT_BASIC_AUTH")

	cfg.MySQL.DSN = os.Getenv("MYSQL_DSN")

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
