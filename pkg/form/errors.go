package form

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNoType is returned by operations that need a selected destination
	// type.
	ErrNoType = errors.New("form: no destination type selected")
	// ErrBusy is returned while a submit is in flight.
	ErrBusy = errors.New("form: submit in progress")
	// ErrSubmitted is returned once the form was submitted successfully.
	ErrSubmitted = errors.New("form: already submitted")
	// ErrDuplicateRegistration is returned when a field name is registered
	// twice.
	ErrDuplicateRegistration = errors.New("form: field already registered")
	// ErrTypeDisabled is returned when selecting a type the server marks as
	// unavailable. The error text carries its disabled message.
	ErrTypeDisabled = errors.New("form: destination type is disabled")
	// ErrInvalid is wrapped by ValidationError.
	ErrInvalid = errors.New("form: invalid")
)

// Messages shown for locally detected problems.
const (
	MessageRequired     = "Required field."
	MessageInvalidValue = "Invalid value."
	MessageSelectType   = "Select a destination type."
)

// ValidationError lists the reasons a form cannot be submitted. Fields is
// keyed by destination field id and Form by registration name.
type ValidationError struct {
	Type   string
	Fields map[string]string
	Form   map[string]string
}

func (e *ValidationError) Error() string {
	var parts []string
	if e.Type != "" {
		parts = append(parts, "type: "+e.Type)
	}
	parts = append(parts, describe("field", e.Fields)...)
	parts = append(parts, describe("form", e.Form)...)
	return fmt.Sprintf("form: invalid (%s)", strings.Join(parts, "; "))
}

// Unwrap lets callers test for ErrInvalid.
func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

func (e *ValidationError) empty() bool {
	return e.Type == "" && len(e.Fields) == 0 && len(e.Form) == 0
}

func describe(kind string, msgs map[string]string) []string {
	keys := make([]string, 0, len(msgs))
	for key := range msgs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		out = append(out, fmt.Sprintf("%s %s: %s", kind, key, msgs[key]))
	}
	return out
}
