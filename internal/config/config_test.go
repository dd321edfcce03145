package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DESTFORM_REGISTRY", "testdata/registry.yaml")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "testdata/registry.yaml", cfg.RegistryPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, OutputPretty, cfg.Output)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 5.0, cfg.ValidateRPS)
	assert.Equal(t, 1, cfg.ValidateBurst)
	assert.Zero(t, cfg.ValidateDebounce)
	assert.False(t, cfg.OTelEnabled)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DESTFORM_ENDPOINT", "https://alerts.example.com/api/graphql")
	t.Setenv("DESTFORM_TOKEN", "secret")
	t.Setenv("DESTFORM_OUTPUT", "JSON")
	t.Setenv("DESTFORM_TIMEOUT", "3s")
	t.Setenv("DESTFORM_VALIDATE_DEBOUNCE", "250ms")
	t.Setenv("DESTFORM_VALIDATE_RPS", "2.5")
	t.Setenv("DESTFORM_VALIDATE_BURST", "4")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "https://alerts.example.com/api/graphql", cfg.Endpoint)
	assert.Equal(t, "secret", cfg.Token)
	assert.Equal(t, OutputJSON, cfg.Output)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, 250*time.Millisecond, cfg.ValidateDebounce)
	assert.Equal(t, 2.5, cfg.ValidateRPS)
	assert.Equal(t, 4, cfg.ValidateBurst)
	assert.True(t, cfg.OTelEnabled)
}

func TestLoadFromEnv_MissingSource(t *testing.T) {
	clearEnv(t)

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DESTFORM_ENDPOINT or DESTFORM_REGISTRY")
}

func TestLoadFromEnv_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"DESTFORM_OUTPUT":            "xml",
		"DESTFORM_TIMEOUT":           "soon",
		"DESTFORM_VALIDATE_DEBOUNCE": "-1s",
		"DESTFORM_VALIDATE_RPS":      "fast",
		"DESTFORM_VALIDATE_BURST":    "-2",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DESTFORM_REGISTRY", "registry.yaml")
			t.Setenv(key, value)

			_, err := LoadFromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DESTFORM_ENDPOINT", "DESTFORM_TOKEN", "DESTFORM_REGISTRY", "DESTFORM_LOG_LEVEL",
		"DESTFORM_OUTPUT", "DESTFORM_TIMEOUT", "DESTFORM_VALIDATE_RPS",
		"DESTFORM_VALIDATE_BURST", "DESTFORM_VALIDATE_DEBOUNCE", "OTEL_EXPORTER_OTLP_ENDPOINT",
	} {
		orig, wasSet := os.LookupEnv(key)
		if wasSet {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}
