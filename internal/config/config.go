// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...Option) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import "github.com/okian/glyco/internal/domain/scoring"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ModelPath locates the classifier artifact.
	ModelPath string `koanf:"model_path"`

	// StorePath locates the durable record store.
	StorePath string `koanf:"store_path"`

	// Threshold is the decision cutoff; probabilities strictly above it
	// classify as high risk.
	Threshold float64 `koanf:"threshold"`

	// SecretKey signs session state for the HTML form flow. The scoring
	// core never reads it.
	SecretKey string `koanf:"secret_key"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:  "info",
		Addr:      ":9080",
		ModelPath: "diabetes_model.json",
		StorePath: "data/predictions",
		Threshold: scoring.DefaultThreshold,
	}
}
