// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Defaults used when the corresponding variable is unset or empty.
const (
	DefaultPort            = 8000
	DefaultDBPath          = "./data/projects.db"
	DefaultStaticPath      = "./static"
	DefaultShutdownTimeout = 10 * time.Second
)

// Log output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds everything the server needs at startup.
type Config struct {
	Port            int
	DBPath          string
	StaticPath      string
	LogLevel        slog.Level
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Addr returns the listen address for Port.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Load reads PORT, DB_PATH, STATIC_PATH, LOG_LEVEL, LOG_FORMAT and
// SHUTDOWN_TIMEOUT. Malformed values are reported as errors.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	env := func(key, fallback string) string {
		if value := strings.TrimSpace(getenv(key)); value != "" {
			return value
		}
		return fallback
	}

	cfg := Config{
		DBPath:     env("DB_PATH", DefaultDBPath),
		StaticPath: env("STATIC_PATH", DefaultStaticPath),
	}

	port, err := strconv.Atoi(env("PORT", strconv.Itoa(DefaultPort)))
	if err != nil || port < 1 || port > 65535 {
		return Config{}, fmt.Errorf("invalid PORT %q: must be 1-65535", getenv("PORT"))
	}
	cfg.Port = port

	level, err := ParseLevel(env("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel = level

	switch format := strings.ToLower(env("LOG_FORMAT", FormatText)); format {
	case FormatText, FormatJSON:
		cfg.LogFormat = format
	default:
		return Config{}, fmt.Errorf("invalid LOG_FORMAT %q: want %s or %s", format, FormatText, FormatJSON)
	}

	timeout, err := time.ParseDuration(env("SHUTDOWN_TIMEOUT", DefaultShutdownTimeout.String()))
	if err != nil || timeout <= 0 {
		return Config{}, fmt.Errorf("invalid SHUTDOWN_TIMEOUT %q: must be a positive duration", getenv("SHUTDOWN_TIMEOUT"))
	}
	cfg.ShutdownTimeout = timeout

	return cfg, nil
}

// ParseLevel maps debug, info, warn and error (any case) onto slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q: want debug, info, warn or error", s)
}
