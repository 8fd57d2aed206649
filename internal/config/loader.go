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
//  2. file (YAML) if GLYCO_CONFIG is set
//  3. env (prefix GLYCO_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("GLYCO_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrLoadConfig, err)
		}
	}

	// Environment variables: GLYCO_ADDR, GLYCO_MODEL_PATH, GLYCO_THRESHOLD...
	// Map env keys like GLYCO_MODEL_PATH -> model_path (flat keys).
	envProvider := env.Provider("GLYCO_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "glyco_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrLoadConfig, err)
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
	case c.ModelPath == "":
		return fmt.Errorf("%w: model_path must not be empty", ErrInvalidConfig)
	case c.StorePath == "":
		return fmt.Errorf("%w: store_path must not be empty", ErrInvalidConfig)
	case c.Threshold <= 0 || c.Threshold >= 1:
		return fmt.Errorf("%w: threshold must be between 0 and 1 exclusive, got %v", ErrInvalidConfig, c.Threshold)
	}
	return nil
}
