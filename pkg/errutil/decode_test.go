package errutil_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-destform/pkg/errutil"
)

func TestDecode(t *testing.T) {
	raw := []byte(`{
		"data": null,
		"errors": [
			{
				"message": "Invalid number",
				"path": ["destinationDisplayInfo", "input"],
				"extensions": {"code": "INVALID_DEST_FIELD_VALUE", "fieldID": "phone-number"}
			},
			{"message": "generic error"},
			{"message": "bad index", "path": ["createThing", "input", "items", 3]},
			{"path": ["weird"]},
			"plain string error"
		]
	}`)

	got, err := errutil.Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	want := errutil.Errors{
		{
			Message:    "Invalid number",
			Path:       errutil.Path{"destinationDisplayInfo", "input"},
			Extensions: &errutil.Extensions{Code: errutil.CodeInvalidDestFieldValue, FieldID: "phone-number"},
		},
		{Message: "generic error"},
		{Message: "bad index", Path: errutil.Path{"createThing", "input", "items", 3}},
		{Message: `{"path": ["weird"]}`, Path: errutil.Path{"weird"}},
		{Message: "plain string error"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decoded errors mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_NoErrorsAndInvalid(t *testing.T) {
	got, err := errutil.Decode([]byte(`{"data":{"ok":true}}`))
	if err != nil || got != nil {
		t.Fatalf("expected no errors, got %v (%v)", got, err)
	}
	if _, err := errutil.Decode([]byte(`{not json`)); !errors.Is(err, errutil.ErrInvalidJSON) {
		t.Fatalf("expected ErrInvalidJSON, got %v", err)
	}
}
