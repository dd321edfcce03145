package destination_test

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-destform/pkg/destination"
	"github.com/goliatone/go-destform/pkg/testsupport"
)

func TestRegistry_LookupAndFilters(t *testing.T) {
	reg := testsupport.Registry(t)

	info, err := reg.Lookup(testsupport.TypeSMS)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if info.Name != "Text Message (SMS)" || len(info.RequiredFields) != 1 {
		t.Fatalf("unexpected type info: %+v", info)
	}
	if !info.RequiredFields[0].SupportsValidation {
		t.Fatalf("expected phone-number to support validation")
	}

	if _, err := reg.Lookup("builtin-carrier-pigeon"); !errors.Is(err, destination.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
	if _, err := reg.Field(testsupport.TypeSMS, testsupport.FieldEmail); !errors.Is(err, destination.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}

	typeIDs := func(types []destination.TypeInfo) []string {
		var out []string
		for _, info := range types {
			out = append(out, info.Type)
		}
		return out
	}

	if diff := cmp.Diff([]string{
		testsupport.TypeWebhook, testsupport.TypeSlackChannel, testsupport.TypeUser, testsupport.TypeDisabled,
	}, typeIDs(reg.EPTargets())); diff != "" {
		t.Fatalf("EP targets mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{
		testsupport.TypeSMS, testsupport.TypeVoice, testsupport.TypeEmail, testsupport.TypeWebhook,
	}, typeIDs(reg.ContactMethods())); diff != "" {
		t.Fatalf("contact methods mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{
		testsupport.TypeWebhook, testsupport.TypeSlackChannel, testsupport.TypeSlackUserGrp,
	}, typeIDs(reg.SchedOnCallNotify())); diff != "" {
		t.Fatalf("schedule notify mismatch (-want +got):\n%s", diff)
	}
	for _, info := range reg.Enabled() {
		if info.Type == testsupport.TypeDisabled {
			t.Fatalf("disabled type returned by Enabled")
		}
	}
}

func TestRegistry_LookupReturnsCopies(t *testing.T) {
	reg := testsupport.Registry(t)

	info, err := reg.Lookup(testsupport.TypeSlackUserGrp)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	info.RequiredFields[0].FieldID = "mutated"

	again, err := reg.Lookup(testsupport.TypeSlackUserGrp)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if again.RequiredFields[0].FieldID != testsupport.FieldUserGroup {
		t.Fatalf("registry state leaked through Lookup")
	}
}

func TestNewRegistry_RejectsInvalidCatalogs(t *testing.T) {
	cases := map[string][]destination.TypeInfo{
		"missing type id": {{Name: "No id"}},
		"missing name":    {{Type: "a"}},
		"missing field id": {{
			Type: "a", Name: "A",
			RequiredFields: []destination.FieldConfig{{LabelSingular: "x"}},
		}},
		"duplicate type": {{Type: "a", Name: "A"}, {Type: "a", Name: "B"}},
		"duplicate field": {{
			Type: "a", Name: "A",
			RequiredFields: []destination.FieldConfig{{FieldID: "f"}, {FieldID: "f"}},
		}},
	}

	for name, types := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := destination.NewRegistry(types); !errors.Is(err, destination.ErrInvalidRegistry) {
				t.Fatalf("expected ErrInvalidRegistry, got %v", err)
			}
		})
	}
}

func TestParse_AcceptedShapes(t *testing.T) {
	shapes := map[string]string{
		"json list":     `[{"type":"a","name":"A","requiredFields":[{"fieldID":"f"}]}]`,
		"json document": `{"destinationTypes":[{"type":"a","name":"A","requiredFields":[{"fieldID":"f"}]}]}`,
		"graphql data":  `{"data":{"destinationTypes":[{"type":"a","name":"A","requiredFields":[{"fieldID":"f"}]}]}}`,
		"yaml list":     "- type: a\n  name: A\n  requiredFields:\n    - fieldID: f\n",
	}
	want := []destination.TypeInfo{{
		Type: "a", Name: "A",
		RequiredFields: []destination.FieldConfig{{FieldID: "f"}},
	}}

	for name, raw := range shapes {
		t.Run(name, func(t *testing.T) {
			got, err := destination.Parse([]byte(raw), name)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("types mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := destination.Parse([]byte("   "), "empty"); err == nil {
		t.Fatalf("expected error for empty document")
	}
	if _, err := destination.Parse([]byte(`{"other":true}`), "none"); err == nil {
		t.Fatalf("expected error for document without types")
	}
}

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"registry.yaml": &fstest.MapFile{Data: testsupport.RegistryYAML()},
	}
	reg, err := destination.LoadFS(fsys, "registry.yaml")
	if err != nil {
		t.Fatalf("load fs: %v", err)
	}
	if !reg.Has(testsupport.TypeWebhook) {
		t.Fatalf("expected webhook type to be loaded")
	}
	if _, err := destination.LoadFS(fsys, "missing.yaml"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestSanitizedAndPlainText(t *testing.T) {
	reg := testsupport.Registry(t)
	info, err := reg.Lookup(testsupport.TypeDisabled)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}

	clean := info.Sanitized()
	if clean.DisabledMessage != "Discord must be configured by an administrator" {
		t.Fatalf("unexpected sanitized message %q", clean.DisabledMessage)
	}
	if info.DisabledMessage == clean.DisabledMessage {
		t.Fatalf("Sanitized must not modify the receiver")
	}

	if got := destination.PlainText(` AT&T <script>alert(1)</script>`); got != "AT&T" {
		t.Fatalf("unexpected plain text %q", got)
	}
}
