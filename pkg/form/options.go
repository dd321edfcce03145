package form

import (
	"log/slog"

	"github.com/goliatone/go-destform/pkg/errutil"
	"github.com/goliatone/go-destform/pkg/validation"
)

// Option customises a Form.
type Option func(*Form)

// WithValidator enables remote validation of fields that support it.
func WithValidator(v *validation.Validator) Option {
	return func(f *Form) {
		f.validator = v
	}
}

// WithLogger overrides the structured logger. nil keeps slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Form) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithDestRoot declares the error path of the destination input, starting at
// the mutation's response field, e.g. "createUserContactMethod.input.dest".
// Errors outside every root are never attributed to a field. Without a root
// every error is considered.
func WithDestRoot(paths ...errutil.Path) Option {
	return func(f *Form) {
		f.destRoots = append(f.destRoots, paths...)
	}
}

// WithPreviewRoot overrides the root used to attribute display-info errors.
func WithPreviewRoot(path errutil.Path) Option {
	return func(f *Form) {
		f.previewRoot = path
	}
}

// WithType preselects a destination type. Unknown types are logged and
// leave the form without a type.
func WithType(destType string) Option {
	return func(f *Form) {
		f.initialType = destType
	}
}

// WithValidityHook registers fn to observe asynchronous validation results
// once they are applied to the form.
func WithValidityHook(fn func(fieldID string, res validation.Result)) Option {
	return func(f *Form) {
		f.onValidity = fn
	}
}

// WithManualValidation stops SetFieldValue from starting remote validation.
// Callers validate explicitly through ValidateField.
func WithManualValidation() Option {
	return func(f *Form) {
		f.manualValidation = true
	}
}
