package form

import (
	"context"
	"maps"
	"strings"

	"github.com/goliatone/go-destform/pkg/destination"
	"github.com/goliatone/go-destform/pkg/errutil"
	"github.com/goliatone/go-destform/pkg/validation"
)

// Validate checks the form without contacting the server and records the
// messages it finds. The returned error is a *ValidationError.
func (f *Form) Validate() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	verr := f.checkLocked()
	f.recordLocked(verr)
	if verr.empty() {
		return nil
	}
	return verr
}

// CanSubmit reports whether Submit would reach the server.
func (f *Form) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editableLocked() != nil {
		return false
	}
	return f.checkLocked().empty()
}

// checkLocked collects blocking problems. Pending, failed and unknown
// validity never block; neither does validity of fields that do not support
// remote validation.
func (f *Form) checkLocked() *ValidationError {
	verr := &ValidationError{Fields: map[string]string{}, Form: map[string]string{}}

	for _, name := range f.regOrder {
		reg := f.regs[name]
		value := f.formValues[name]
		if reg.Required && IsEmpty(value) {
			verr.Form[name] = MessageRequired
			continue
		}
		if reg.Validate == nil {
			continue
		}
		if err := reg.Validate(value); err != nil {
			verr.Form[name] = errutil.Capitalize(err.Error())
		}
	}

	if f.info == nil {
		verr.Type = MessageSelectType
		return verr
	}
	for _, field := range f.info.RequiredFields {
		id := field.FieldID
		switch {
		case len(f.serverErrs[id]) > 0:
			verr.Fields[id] = f.serverErrs[id][0]
		case strings.TrimSpace(f.values[id]) == "":
			verr.Fields[id] = MessageRequired
		case field.SupportsValidation && f.validity[id].Status == validation.StatusInvalid:
			verr.Fields[id] = MessageInvalidValue
		}
	}
	return verr
}

func (f *Form) recordLocked(verr *ValidationError) {
	f.formErrs = map[string]string{}
	maps.Copy(f.formErrs, verr.Form)
	f.localErrs = map[string]string{}
	for id, msg := range verr.Fields {
		if len(f.serverErrs[id]) == 0 {
			f.localErrs[id] = msg
		}
	}
}

// Submit validates the form, then hands the assembled payload to fn. On
// failure the returned error is attributed: destination field errors under a
// destination root attach to their field, everything else is kept for
// dialog-level display. Submit never retries.
func (f *Form) Submit(ctx context.Context, fn SubmitFunc) error {
	f.mu.Lock()
	if err := f.editableLocked(); err != nil {
		f.mu.Unlock()
		return err
	}
	verr := f.checkLocked()
	f.recordLocked(verr)
	if !verr.empty() {
		f.mu.Unlock()
		return verr
	}
	input, err := f.inputLocked()
	if err != nil {
		f.mu.Unlock()
		return err
	}
	sub := Submission{
		FormID: f.id.String(),
		Input:  input,
		Values: maps.Clone(f.formValues),
	}
	f.state = StateSubmitting
	f.clearPreviewLocked()
	f.mu.Unlock()

	f.logger.Debug("form: submitting", "type", input.Type)
	err = fn(ctx, sub)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		f.state = StateSubmitted
		f.serverErrs = map[string][]string{}
		f.localErrs = map[string]string{}
		f.formErrs = map[string]string{}
		f.other = nil
		f.logger.Info("form: submitted", "type", input.Type)
		return nil
	}
	f.state = StateError
	f.serverErrs, f.other = f.attributeLocked(err, f.destRoots)
	for id := range f.serverErrs {
		delete(f.localErrs, id)
	}
	f.logger.Info("form: submit failed",
		"type", input.Type, "field_errors", len(f.serverErrs), "other_errors", len(f.other))
	return err
}

// ApplyErrors attributes err the way a preview does: field errors are shown
// but never block a submit, and the lifecycle state is unchanged. Errors
// from a failed submit are left in place.
func (f *Form) ApplyErrors(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.previewErrs, f.previewOther = f.attributeLocked(err, f.destRoots)
}

// Preview renders the display info of the current payload. Errors from the
// query are attributed to fields under the preview root unless the values
// changed while it ran; a successful preview clears them.
func (f *Form) Preview(ctx context.Context, q DisplayInfoQuerier) (destination.DisplayInfo, error) {
	input, err := f.Input()
	if err != nil {
		return destination.DisplayInfo{}, err
	}
	info, err := q.DestinationDisplayInfo(ctx, input)

	f.mu.Lock()
	defer f.mu.Unlock()
	current, cerr := f.inputLocked()
	if cerr != nil || !sameInput(current, input) {
		return info, err
	}
	if err == nil {
		f.clearPreviewLocked()
		return info, nil
	}
	var roots []errutil.Path
	if len(f.previewRoot) > 0 {
		roots = []errutil.Path{f.previewRoot}
	}
	f.previewErrs, f.previewOther = f.attributeLocked(err, roots)
	return destination.DisplayInfo{}, err
}

func (f *Form) clearPreviewLocked() {
	f.previewErrs = map[string][]string{}
	f.previewOther = nil
}

func sameInput(a, b destination.Input) bool {
	if a.Type != b.Type || len(a.Values) != len(b.Values) {
		return false
	}
	for i := range a.Values {
		if a.Values[i] != b.Values[i] {
			return false
		}
	}
	return true
}

// attributeLocked splits err into messages per active destination field and
// dialog-level errors. With no roots every error is eligible for field
// attribution.
func (f *Form) attributeLocked(err error, roots []errutil.Path) (map[string][]string, []errutil.StructuredError) {
	fields := map[string][]string{}
	var other []errutil.StructuredError

	for _, item := range errutil.List(err) {
		class := errutil.Classify(item)
		if class.UnknownCode != "" {
			f.logger.Warn("form: unknown error code", "code", class.UnknownCode, "message", item.Message)
		}

		eligible := len(roots) == 0
		if !eligible {
			_, eligible = errutil.MatchPrefix(item, roots...)
		}
		if eligible && class.Kind == errutil.KindDestinationField && f.activeFieldLocked(class.FieldID) {
			msg := errutil.Capitalize(item.Message)
			fields[class.FieldID] = errutil.MergeMessages(fields[class.FieldID], msg)
			continue
		}
		other = append(other, item)
	}
	return fields, other
}

func (f *Form) activeFieldLocked(fieldID string) bool {
	return f.info != nil && f.info.HasField(fieldID)
}

// FieldError returns the message shown under a destination field.
func (f *Form) FieldError(fieldID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msgs := f.fieldMessagesLocked(fieldID); len(msgs) > 0 {
		return strings.Join(msgs, " ")
	}
	return f.localErrs[fieldID]
}

// FieldErrors returns every destination field error in declaration order.
func (f *Form) FieldErrors() []errutil.FieldError {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.info == nil {
		return nil
	}
	var out []errutil.FieldError
	for _, field := range f.info.RequiredFields {
		id := field.FieldID
		msgs := f.fieldMessagesLocked(id)
		for _, msg := range msgs {
			out = append(out, errutil.FieldError{FieldID: id, Message: msg})
		}
		if len(msgs) == 0 && f.localErrs[id] != "" {
			out = append(out, errutil.FieldError{FieldID: id, Message: f.localErrs[id]})
		}
	}
	return out
}

// OtherErrors returns the errors shown at dialog level, verbatim.
func (f *Form) OtherErrors() []errutil.StructuredError {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]errutil.StructuredError(nil), f.other...)
	return append(out, f.previewOther...)
}

// fieldMessagesLocked returns submit errors before preview errors.
func (f *Form) fieldMessagesLocked(fieldID string) []string {
	return errutil.MergeMessages(f.serverErrs[fieldID], f.previewErrs[fieldID]...)
}

// OtherMessages returns the dialog-level messages, trimmed and deduplicated.
func (f *Form) OtherMessages() []string {
	return errutil.MergeMessages(errutil.Messages(f.OtherErrors()))
}
