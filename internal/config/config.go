// Package config reads process configuration from the environment, with an
// optional .env file loaded first.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	DBPath    string
	LogLevel  string
	LogFormat string
	Location  *time.Location

	JWTSecret string
	TokenTTL  time.Duration

	PostmarkToken string
	PostmarkFrom  string

	WhatsAppAPIKey  string
	WhatsAppBaseURL string

	AllowedOrigins   []string
	SchedulerEnabled bool
}

// Load reads the .env file at path (ignored when missing) and then the
// environment. Variables already set in the environment win over the file.
func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	cfg := &Config{
		Port:             getenv("DAYBOARD_PORT", "8080"),
		DBPath:           getenv("DAYBOARD_DB_PATH", "dayboard.db"),
		LogLevel:         getenv("DAYBOARD_LOG_LEVEL", "info"),
		LogFormat:        getenv("DAYBOARD_LOG_FORMAT", "text"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		PostmarkToken:    os.Getenv("POSTMARK_SERVER_TOKEN"),
		PostmarkFrom:     getenv("POSTMARK_FROM_EMAIL", "noreply@dayboard.local"),
		WhatsAppAPIKey:   os.Getenv("WHATSAPP_API_KEY"),
		WhatsAppBaseURL:  os.Getenv("WHATSAPP_BASE_URL"),
		AllowedOrigins:   splitList(getenv("DAYBOARD_ALLOWED_ORIGINS", "*")),
		SchedulerEnabled: true,
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	tz := getenv("DAYBOARD_TIMEZONE", "Local")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("DAYBOARD_TIMEZONE %q: %w", tz, err)
	}
	cfg.Location = loc

	ttl, err := time.ParseDuration(getenv("DAYBOARD_TOKEN_TTL", "720h"))
	if err != nil {
		return nil, fmt.Errorf("DAYBOARD_TOKEN_TTL: %w", err)
	}
	cfg.TokenTTL = ttl

	if v := os.Getenv("DAYBOARD_SCHEDULER"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("DAYBOARD_SCHEDULER: %w", err)
		}
		cfg.SchedulerEnabled = enabled
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
