package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/goliatone/go-destform/pkg/destination"
	"github.com/goliatone/go-destform/pkg/form"
	"github.com/goliatone/go-destform/pkg/validation"
)

const enterManually = "Enter a value manually"

// Renderer walks a user through a destination form in the terminal.
type Renderer struct {
	registry     *destination.Registry
	driver       PromptDriver
	messages     io.Writer
	outputFormat OutputFormat
	searcher     Searcher
	searchLimit  int
	previewer    form.DisplayInfoQuerier
	typeFilter   func(destination.TypeInfo) bool
	formFields   []FormField
	theme        Theme
	logger       *slog.Logger
}

// Result is what Run collected.
type Result struct {
	Input       destination.Input
	Values      map[string]any
	DisplayInfo *destination.DisplayInfo
	Submitted   bool
}

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(reg *destination.Registry, options ...Option) (*Renderer, error) {
	if reg == nil {
		return nil, errors.New("tui: registry is required")
	}
	r := &Renderer{
		registry:     reg,
		messages:     os.Stdout,
		outputFormat: OutputFormatJSON,
		searchLimit:  20,
		theme:        Theme{WarnPrefix: "Warning: "},
		logger:       slog.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = newSurveyDriver(r.messages)
	}
	return r, nil
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	if r.outputFormat == OutputFormatPrettyText {
		return "text/plain"
	}
	return "application/json"
}

// Render runs the form and serializes the result.
func (r *Renderer) Render(ctx context.Context, f *form.Form, submit form.SubmitFunc) ([]byte, error) {
	res, err := r.Run(ctx, f, submit)
	if err != nil {
		return nil, err
	}
	return r.serialize(res)
}

// Run prompts for a destination type (unless f already has one), the
// form-level fields and every destination field in order, validating each
// value remotely when supported. With a previewer configured the display
// info is shown before submitting. A nil submit only collects the payload.
func (r *Renderer) Run(ctx context.Context, f *form.Form, submit form.SubmitFunc) (Result, error) {
	if ctx == nil {
		return Result{}, errors.New("tui: context is required")
	}
	if f == nil {
		return Result{}, errors.New("tui: form is required")
	}

	if f.Type() == "" {
		if err := r.selectType(ctx, f); err != nil {
			return Result{}, err
		}
	}
	for _, field := range r.formFields {
		if err := r.promptFormField(ctx, f, field); err != nil {
			return Result{}, err
		}
	}
	for _, field := range f.Fields() {
		if err := r.promptDestField(ctx, f, field); err != nil {
			return Result{}, err
		}
	}

	var result Result
	if r.previewer != nil {
		info, err := r.preview(ctx, f)
		if err != nil {
			return Result{}, err
		}
		result.DisplayInfo = info
	}

	if submit == nil {
		if err := f.Validate(); err != nil {
			r.printErrors(ctx, f)
			return Result{}, err
		}
	} else if err := r.submit(ctx, f, submit); err != nil {
		return Result{}, err
	}

	input, err := f.Input()
	if err != nil {
		return Result{}, err
	}
	result.Input = input
	result.Values = r.formValues(f)
	result.Submitted = submit != nil
	return result, nil
}

func (r *Renderer) selectType(ctx context.Context, f *form.Form) error {
	var types []destination.TypeInfo
	for _, info := range r.registry.Types() {
		if r.typeFilter != nil && !r.typeFilter(info) {
			continue
		}
		if !info.Enabled {
			if info.DisabledMessage != "" {
				r.info(ctx, fmt.Sprintf("%s is unavailable: %s", info.Name, destination.PlainText(info.DisabledMessage)))
			}
			continue
		}
		types = append(types, info)
	}
	if len(types) == 0 {
		return ErrNoTypes
	}

	names := make([]string, len(types))
	for i, info := range types {
		names[i] = info.Name
	}
	idx, err := r.driver.Select(ctx, SelectConfig{Message: "Destination type", Options: names})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(types) {
		return fmt.Errorf("tui: invalid destination type selection %d", idx)
	}
	return f.SetType(types[idx].Type)
}

func (r *Renderer) promptFormField(ctx context.Context, f *form.Form, field FormField) error {
	_, err := f.Register(form.Registration{
		Name:     field.Name,
		Required: field.Required,
		Validate: func(value any) error {
			if field.Validate == nil {
				return nil
			}
			text, _ := value.(string)
			return field.Validate(text)
		},
	})
	if err != nil && !errors.Is(err, form.ErrDuplicateRegistration) {
		return err
	}

	label := field.Label
	if label == "" {
		label = field.Name
	}
	def := field.Default
	if current, ok := f.Value(field.Name); ok {
		def, _ = current.(string)
	}
	for {
		resp, err := r.driver.Input(ctx, InputConfig{Message: label, Default: def, Help: field.Help})
		if err != nil {
			return err
		}
		resp = strings.TrimSpace(resp)
		if field.Required && resp == "" {
			r.errorf(ctx, "%s: %s", label, form.MessageRequired)
			continue
		}
		if field.Validate != nil && resp != "" {
			if verr := field.Validate(resp); verr != nil {
				r.errorf(ctx, "Invalid %s: %v", label, verr)
				continue
			}
		}
		return f.SetValue(field.Name, resp)
	}
}

func (r *Renderer) promptDestField(ctx context.Context, f *form.Form, field destination.FieldConfig) error {
	label := field.Label()
	if field.Prefix != "" {
		label = fmt.Sprintf("%s (%s)", label, field.Prefix)
	}
	help := field.Hint
	if field.HintURL != "" {
		help = strings.TrimSpace(help + " " + field.HintURL)
	}
	destType := f.Type()

	for {
		if msg := f.FieldError(field.FieldID); msg != "" {
			r.errorf(ctx, "%s: %s", field.Label(), msg)
		}

		value, err := r.readDestValue(ctx, destType, field, label, help, f.FieldValue(field.FieldID))
		if err != nil {
			return err
		}
		if value == "" {
			r.errorf(ctx, "%s: %s", field.Label(), form.MessageRequired)
			continue
		}
		if err := f.SetFieldValue(ctx, field.FieldID, value); err != nil {
			return err
		}

		res, err := f.ValidateField(ctx, field.FieldID)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		switch res.Status {
		case validation.StatusInvalid:
			r.errorf(ctx, "Invalid %s.", field.Label())
			continue
		case validation.StatusFailed:
			r.warnf(ctx, "could not validate %s (%v); value accepted", field.Label(), res.Err)
		}
		return nil
	}
}

func (r *Renderer) readDestValue(ctx context.Context, destType string, field destination.FieldConfig, label, help, current string) (string, error) {
	if field.IsSearchSelectable && r.searcher != nil {
		value, ok, err := r.searchSelect(ctx, destType, field, label)
		if err != nil || ok {
			return value, err
		}
	}
	resp, err := r.driver.Input(ctx, InputConfig{
		Message: label,
		Default: current,
		Help:    joinNonEmpty(help, placeholderHelp(field.PlaceholderText)),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp), nil
}

// searchSelect reports ok=false when the user should type the value instead.
func (r *Renderer) searchSelect(ctx context.Context, destType string, field destination.FieldConfig, label string) (string, bool, error) {
	query, err := r.driver.Input(ctx, InputConfig{Message: "Search " + field.Label()})
	if err != nil {
		return "", false, err
	}
	found, err := r.searcher.SearchField(ctx, destination.SearchInput{
		Type:    destType,
		FieldID: field.FieldID,
		Search:  strings.TrimSpace(query),
		First:   r.searchLimit,
	})
	if err != nil {
		r.warnf(ctx, "search for %s failed (%v); falling back to manual input", field.Label(), err)
		return "", false, nil
	}
	if len(found) == 0 {
		r.info(ctx, fmt.Sprintf("No %s matches %q.", field.Label(), query))
		return "", false, nil
	}

	options := make([]string, 0, len(found)+1)
	for _, option := range found {
		text := option.Label
		if option.IsFavorite {
			text = "★ " + text
		}
		options = append(options, text)
	}
	options = append(options, enterManually)
	idx, err := r.driver.Select(ctx, SelectConfig{Message: label, Options: options, PageSize: r.searchLimit})
	if err != nil {
		return "", false, err
	}
	if idx < 0 || idx >= len(found) {
		return "", false, nil
	}
	return found[idx].Value, true, nil
}

func (r *Renderer) preview(ctx context.Context, f *form.Form) (*destination.DisplayInfo, error) {
	for {
		info, err := f.Preview(ctx, r.previewer)
		if err == nil {
			text := info.Text
			if info.LinkURL != "" {
				text += " <" + info.LinkURL + ">"
			}
			r.info(ctx, "Destination: "+text)
			return &info, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !r.correctFields(ctx, f) {
			r.warnf(ctx, "preview unavailable")
			return nil, nil
		}
	}
}

func (r *Renderer) submit(ctx context.Context, f *form.Form, submit form.SubmitFunc) error {
	for {
		err := f.Submit(ctx, submit)
		if err == nil {
			r.info(ctx, "Saved.")
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.logger.Debug("tui: submit failed", "form", f.ID(), "error", err)

		var verr *form.ValidationError
		if errors.As(err, &verr) {
			if r.correctFields(ctx, f) {
				continue
			}
			r.printErrors(ctx, f)
			return err
		}

		if r.correctFields(ctx, f) {
			continue
		}
		retry, cerr := r.driver.Confirm(ctx, ConfirmConfig{Message: "Retry?", Default: true})
		if cerr != nil {
			return cerr
		}
		if !retry {
			return fmt.Errorf("%w: %w", ErrDeclined, err)
		}
	}
}

// correctFields prints the dialog-level errors and re-prompts every field
// that has an attributed error. It reports whether any field was re-prompted.
func (r *Renderer) correctFields(ctx context.Context, f *form.Form) bool {
	for _, msg := range f.OtherMessages() {
		r.errorf(ctx, "%s", msg)
	}
	prompted := false
	for _, field := range f.Fields() {
		if f.FieldError(field.FieldID) == "" {
			continue
		}
		prompted = true
		if err := r.promptDestField(ctx, f, field); err != nil {
			r.logger.Debug("tui: re-prompt failed", "field", field.FieldID, "error", err)
			return false
		}
	}
	return prompted
}

func (r *Renderer) printErrors(ctx context.Context, f *form.Form) {
	for _, fe := range f.FieldErrors() {
		r.errorf(ctx, "%s: %s", fe.FieldID, fe.Message)
	}
	for _, msg := range f.OtherMessages() {
		r.errorf(ctx, "%s", msg)
	}
}

func (r *Renderer) formValues(f *form.Form) map[string]any {
	values := make(map[string]any, len(r.formFields))
	for _, field := range r.formFields {
		if v, ok := f.Value(field.Name); ok {
			values[field.Name] = v
		}
	}
	return values
}

func (r *Renderer) info(ctx context.Context, msg string) {
	_ = r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Renderer) errorf(ctx context.Context, format string, args ...any) {
	_ = r.driver.Info(ctx, r.theme.ErrorPrefix+fmt.Sprintf(format, args...))
}

func (r *Renderer) warnf(ctx context.Context, format string, args ...any) {
	_ = r.driver.Info(ctx, r.theme.WarnPrefix+fmt.Sprintf(format, args...))
}

func placeholderHelp(placeholder string) string {
	if placeholder == "" {
		return ""
	}
	return "e.g. " + placeholder
}

func joinNonEmpty(parts ...string) string {
	var out []string
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return strings.Join(out, " | ")
}
