package config

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

type ServerConfig struct {
	Addr           string `env:"PKINPUT_HTTP_ADDR, default=:8080"`
	MaxUploadBytes int64  `env:"PKINPUT_MAX_UPLOAD_BYTES, default=33554432"`
	LogLevel       string `env:"PKINPUT_LOG_LEVEL, default=info"`
}

func NewServerConfigFromEnv() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, err
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("PKINPUT_MAX_UPLOAD_BYTES must be positive, got %d", cfg.MaxUploadBytes)
	}
	if _, err := ParseLogLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultsConfig holds the values used when a request leaves the period
// count or the nominal times blank.
type DefaultsConfig struct {
	Periods int    `env:"PKINPUT_DEFAULT_PERIODS, default=2"`
	Times   string `env:"PKINPUT_DEFAULT_TIMES, default=0.5,1.0,2.0"`
}

func NewDefaultsConfigFromEnv() (*DefaultsConfig, error) {
	var cfg DefaultsConfig
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, err
	}
	if cfg.Periods < 1 {
		return nil, fmt.Errorf("PKINPUT_DEFAULT_PERIODS must be at least 1, got %d", cfg.Periods)
	}
	if _, err := ParseNominalTimes(cfg.Times); err != nil {
		return nil, fmt.Errorf("invalid PKINPUT_DEFAULT_TIMES: %w", err)
	}
	return &cfg, nil
}

// ParseLogLevel accepts debug, info, warn and error in any case.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
