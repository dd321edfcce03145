// Package config provides CLI configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Output selects how the CLI prints results.
type Output string

const (
	OutputJSON   Output = "json"
	OutputPretty Output = "pretty"
)

// Config holds all CLI configuration.
type Config struct {
	Endpoint     string
	Token        string
	RegistryPath string
	LogLevel     string
	Output       Output
	Timeout      time.Duration
	OTelEnabled  bool

	// Field validation tuning.
	ValidateRPS      float64
	ValidateBurst    int
	ValidateDebounce time.Duration
}

// LoadFromEnv reads configuration from environment variables with sensible defaults.
func LoadFromEnv() (Config, error) {
	cfg := Config{
		Endpoint:     strings.TrimSpace(os.Getenv("DESTFORM_ENDPOINT")),
		Token:        os.Getenv("DESTFORM_TOKEN"),
		RegistryPath: strings.TrimSpace(os.Getenv("DESTFORM_REGISTRY")),
		LogLevel:     envOr("DESTFORM_LOG_LEVEL", "info"),
		Output:       Output(strings.ToLower(envOr("DESTFORM_OUTPUT", string(OutputPretty)))),
		OTelEnabled:  os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "",
	}

	var err error
	if cfg.Timeout, err = durationEnv("DESTFORM_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.ValidateDebounce, err = durationEnv("DESTFORM_VALIDATE_DEBOUNCE", 0); err != nil {
		return Config{}, err
	}
	if cfg.ValidateRPS, err = floatEnv("DESTFORM_VALIDATE_RPS", 5); err != nil {
		return Config{}, err
	}
	if cfg.ValidateBurst, err = intEnv("DESTFORM_VALIDATE_BURST", 1); err != nil {
		return Config{}, err
	}

	if cfg.Output != OutputJSON && cfg.Output != OutputPretty {
		return Config{}, fmt.Errorf("config: invalid DESTFORM_OUTPUT %q (must be json or pretty)", cfg.Output)
	}
	if cfg.Endpoint == "" && cfg.RegistryPath == "" {
		return Config{}, fmt.Errorf("config: DESTFORM_ENDPOINT or DESTFORM_REGISTRY required")
	}
	if cfg.ValidateRPS < 0 {
		return Config{}, fmt.Errorf("config: DESTFORM_VALIDATE_RPS must not be negative")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("config: invalid %s %q", key, raw)
	}
	return d, nil
}

func floatEnv(key string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q", key, raw)
	}
	return v, nil
}

func intEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("config: invalid %s %q", key, raw)
	}
	return v, nil
}
