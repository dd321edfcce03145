package errutil

import (
	"errors"
	"fmt"
	"strings"
)

// Code identifies the class of a structured error. The set is closed; values
// outside of it are carried verbatim but never classified.
type Code string

const (
	// CodeInvalidInputValue marks an error attributable to the operation input
	// but not to a destination field (for example a name conflict).
	CodeInvalidInputValue Code = "INVALID_INPUT_VALUE"
	// CodeInvalidDestFieldValue marks an error caused by one destination field.
	CodeInvalidDestFieldValue Code = "INVALID_DEST_FIELD_VALUE"
)

// ErrUnknownCode is returned by ParseCode for values outside the enumeration.
var ErrUnknownCode = errors.New("errutil: unknown error code")

// Valid reports whether the code is a member of the enumeration.
func (c Code) Valid() bool {
	switch c {
	case CodeInvalidInputValue, CodeInvalidDestFieldValue:
		return true
	default:
		return false
	}
}

// ParseCode validates raw against the enumeration.
func ParseCode(raw string) (Code, error) {
	code := Code(strings.TrimSpace(raw))
	if !code.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCode, raw)
	}
	return code, nil
}

// Extensions carries the machine readable part of a structured error.
type Extensions struct {
	Code    Code   `json:"code,omitempty" yaml:"code,omitempty"`
	FieldID string `json:"fieldID,omitempty" yaml:"fieldID,omitempty"`
}

// StructuredError is a single error returned by a remote operation.
type StructuredError struct {
	Message    string      `json:"message" yaml:"message"`
	Path       Path        `json:"path,omitempty" yaml:"path,omitempty"`
	Extensions *Extensions `json:"extensions,omitempty" yaml:"extensions,omitempty"`
}

func (e StructuredError) Error() string {
	return e.Message
}

// Code returns the raw extensions code, or "" when absent.
func (e StructuredError) Code() Code {
	if e.Extensions == nil {
		return ""
	}
	return e.Extensions.Code
}

// FieldID returns the extensions field id, or "" when absent.
func (e StructuredError) FieldID() string {
	if e.Extensions == nil {
		return ""
	}
	return strings.TrimSpace(e.Extensions.FieldID)
}

// Errors is the error list produced by a failed operation.
type Errors []StructuredError

func (e Errors) Error() string {
	switch len(e) {
	case 0:
		return "errutil: no errors"
	case 1:
		return e[0].Message
	}
	msgs := make([]string, 0, len(e))
	for _, item := range e {
		msgs = append(msgs, item.Message)
	}
	return strings.Join(msgs, "; ")
}

// List normalises err into a list of structured errors. A nil error yields an
// empty list, a single StructuredError a one element list and Errors a copy
// of itself. Any other error becomes one path-less error carrying its
// message, so transport failures are never lost.
func List(err error) []StructuredError {
	if err == nil {
		return nil
	}

	var list Errors
	if errors.As(err, &list) {
		if len(list) == 0 {
			return nil
		}
		return append([]StructuredError(nil), list...)
	}

	var ptr *StructuredError
	if errors.As(err, &ptr) {
		if ptr == nil {
			return nil
		}
		return []StructuredError{*ptr}
	}

	var value StructuredError
	if errors.As(err, &value) {
		return []StructuredError{value}
	}

	return []StructuredError{{Message: err.Error()}}
}

// FieldError is an error attributed to exactly one destination field.
type FieldError struct {
	FieldID string `json:"fieldID"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.FieldID + ": " + e.Message
}
