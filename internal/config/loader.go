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

// Load builds a Config by layering defaults, optional file, and env.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if TRIAGE_CONFIG is set
//  3. env (prefix TRIAGE_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("TRIAGE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: TRIAGE_ADDR, TRIAGE_TOP_K, ...
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("TRIAGE_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "triage_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.TopK < 1:
		return fmt.Errorf("%w: top_k must be positive", ErrInvalidConfig)
	case c.ResolvedWeight < 0 || c.CommitWeight < 0:
		return fmt.Errorf("%w: score weights must be non-negative", ErrInvalidConfig)
	case c.ResolvedWeight+c.CommitWeight == 0:
		return fmt.Errorf("%w: score weights must not both be zero", ErrInvalidConfig)
	case c.Saturation <= 0:
		return fmt.Errorf("%w: saturation must be positive", ErrInvalidConfig)
	}
	return nil
}
