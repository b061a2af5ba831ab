package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if VOUCH_CONFIG is set
//  3. env (prefix VOUCH_)
func Load(ctx context.Context) (*Config, error) {
	_ = ctx

	base := New()
	k := koanf.New(".")

	if path := os.Getenv("VOUCH_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: VOUCH_ADDR, VOUCH_QUEUE_SIZE, ...
	// Keys map to the koanf tags on the struct (underscores preserved).
	envProvider := env.Provider("VOUCH_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "vouch_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if cfg.TrustWindowMonths <= 0 {
		return nil, fmt.Errorf("%w: trust_window_months must be positive", ErrInvalidConfig)
	}
	if cfg.BackgroundLockMonths <= 0 {
		return nil, fmt.Errorf("%w: background_lock_months must be positive", ErrInvalidConfig)
	}
	return &cfg, nil
}
