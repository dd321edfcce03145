package testsupport

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-destform/pkg/destination"
)

//go:embed testdata/registry.yaml
var registryFixture []byte

// Destination type ids declared by the registry fixture.
const (
	TypeSMS           = "builtin-twilio-sms"
	TypeVoice         = "builtin-twilio-voice"
	TypeEmail         = "builtin-smtp-email"
	TypeWebhook       = "builtin-webhook"
	TypeSlackChannel  = "builtin-slack-channel"
	TypeSlackUserGrp  = "builtin-slack-usergroup"
	TypeUser          = "builtin-user"
	TypeDisabled      = "builtin-discord"
	FieldPhoneNumber  = "phone-number"
	FieldEmail        = "email-address"
	FieldWebhookURL   = "webhook-url"
	FieldSlackChannel = "slack-channel-id"
	FieldUserGroup    = "slack-usergroup-id"
)

// RegistryYAML returns a copy of the raw registry fixture.
func RegistryYAML() []byte {
	return append([]byte(nil), registryFixture...)
}

// RegistryTypes parses the embedded fixture into destination types.
func RegistryTypes(t *testing.T) []destination.TypeInfo {
	t.Helper()

	types, err := destination.Parse(registryFixture, "testdata/registry.yaml")
	if err != nil {
		t.Fatalf("parse registry fixture: %v", err)
	}
	return types
}

// Registry builds a validated registry from the embedded fixture.
func Registry(t *testing.T) *destination.Registry {
	t.Helper()

	reg, err := RegistryFromTypes(RegistryTypes(t))
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	return reg
}

// RegistryFromTypes builds a registry without requiring testing.T, allowing
// callers to wire fixtures in setup functions.
func RegistryFromTypes(types []destination.TypeInfo) (*destination.Registry, error) {
	if len(types) == 0 {
		return nil, errors.New("testsupport: at least one destination type is required")
	}
	reg, err := destination.NewRegistry(types)
	if err != nil {
		return nil, fmt.Errorf("testsupport: new registry: %w", err)
	}
	return reg, nil
}

// WriteGolden writes arbitrary data to a golden file when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// MustReadGolden reads a golden file and unmarshals it into out.
func MustReadGolden(t *testing.T, path string, out any) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("unmarshal golden %s: %v", path, err)
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
