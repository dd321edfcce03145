package destination_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-destform/pkg/destination"
	"github.com/goliatone/go-destform/pkg/testsupport"
)

func TestValidateInputJSON(t *testing.T) {
	reg := testsupport.Registry(t)
	info, err := reg.Lookup(testsupport.TypeSlackUserGrp)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}

	valid := `{"type":"builtin-slack-usergroup","values":[` +
		`{"fieldID":"slack-channel-id","value":"C1"},` +
		`{"fieldID":"slack-usergroup-id","value":"S1"}]}`
	got, err := destination.ValidateInputJSON(info, []byte(valid))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got.Value(testsupport.FieldUserGroup) != "S1" {
		t.Fatalf("unexpected decoded input %+v", got)
	}

	invalid := map[string]string{
		"not json":     `{`,
		"wrong type":   `{"type":"builtin-webhook","values":[{"fieldID":"slack-channel-id","value":"C1"},{"fieldID":"slack-usergroup-id","value":"S1"}]}`,
		"missing pair": `{"type":"builtin-slack-usergroup","values":[{"fieldID":"slack-channel-id","value":"C1"}]}`,
		"unknown id":   `{"type":"builtin-slack-usergroup","values":[{"fieldID":"slack-channel-id","value":"C1"},{"fieldID":"phone-number","value":"1"}]}`,
		"duplicate id": `{"type":"builtin-slack-usergroup","values":[{"fieldID":"slack-channel-id","value":"C1"},{"fieldID":"slack-channel-id","value":"C2"}]}`,
		"extra prop":   `{"type":"builtin-slack-usergroup","extra":1,"values":[{"fieldID":"slack-channel-id","value":"C1"},{"fieldID":"slack-usergroup-id","value":"S1"}]}`,
	}
	for name, raw := range invalid {
		t.Run(name, func(t *testing.T) {
			if _, err := destination.ValidateInputJSON(info, []byte(raw)); !errors.Is(err, destination.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestRegistrySchemas(t *testing.T) {
	reg := testsupport.Registry(t)
	schemas := reg.Schemas()

	if len(schemas) != len(reg.Types()) {
		t.Fatalf("expected one schema per type, got %d", len(schemas))
	}

	ref, ok := schemas["DestinationInput_builtin-smtp-email"]
	if !ok || ref.Value == nil {
		t.Fatalf("missing email schema")
	}
	if diff := cmp.Diff([]string{"type", "values"}, ref.Value.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
	if ref.Value.Title != "Email" {
		t.Fatalf("unexpected title %q", ref.Value.Title)
	}
}
