package tui

import (
	"context"
	"io"
	"log/slog"

	"github.com/goliatone/go-destform/pkg/destination"
	"github.com/goliatone/go-destform/pkg/form"
)

// OutputFormat controls how the collected payload is serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits application/json payloads.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatPrettyText emits a human-friendly text summary.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// Theme captures optional formatting hints the driver can apply when printing
// messages. Keep minimal to avoid coupling renderer logic to ANSI specifics.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
	WarnPrefix  string
}

// Searcher lists the options of a search-selectable field.
type Searcher interface {
	SearchField(ctx context.Context, in destination.SearchInput) ([]destination.FieldOption, error)
}

// FormField is a form-level input prompted before the destination fields,
// such as the name of a contact method.
type FormField struct {
	Name     string
	Label    string
	Help     string
	Default  string
	Required bool
	Validate func(string) error
}

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithMessageWriter sets where the default driver prints messages.
func WithMessageWriter(w io.Writer) Option {
	return func(r *Renderer) {
		if w != nil {
			r.messages = w
		}
	}
}

// WithSearcher enables option lookup for search-selectable fields. When
// omitted those fields fall back to free text input.
func WithSearcher(s Searcher, limit int) Option {
	return func(r *Renderer) {
		r.searcher = s
		if limit > 0 {
			r.searchLimit = limit
		}
	}
}

// WithPreview renders the display info of the payload before submitting.
func WithPreview(q form.DisplayInfoQuerier) Option {
	return func(r *Renderer) {
		r.previewer = q
	}
}

// WithTypeFilter restricts the offered destination types, e.g. to contact
// methods.
func WithTypeFilter(keep func(destination.TypeInfo) bool) Option {
	return func(r *Renderer) {
		r.typeFilter = keep
	}
}

// WithFormFields prompts the given form-level fields before the destination.
func WithFormFields(fields ...FormField) Option {
	return func(r *Renderer) {
		r.formFields = append(r.formFields, fields...)
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}
