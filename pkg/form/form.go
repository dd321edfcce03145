package form

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-destform/pkg/destination"
	"github.com/goliatone/go-destform/pkg/errutil"
	"github.com/goliatone/go-destform/pkg/validation"
)

// State is a step of the form lifecycle.
type State int

const (
	StateEmpty State = iota
	StateEditing
	StateSubmitting
	StateError
	StateSubmitted
)

func (s State) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	case StateError:
		return "error"
	case StateSubmitted:
		return "submitted"
	default:
		return "empty"
	}
}

// DefaultPreviewRoot is where the display-info query nests its input.
var DefaultPreviewRoot = errutil.Path{"destinationDisplayInfo", "input"}

// ValidateFunc checks a registered form-level value. A nil error means valid.
type ValidateFunc func(value any) error

// Registration is recorded by each rendered form-level field.
type Registration struct {
	Name     string
	Required bool
	Validate ValidateFunc
}

// Submission is handed to a SubmitFunc.
type Submission struct {
	FormID string
	Input  destination.Input
	Values map[string]any
}

// SubmitFunc performs the create/update operation.
type SubmitFunc func(ctx context.Context, sub Submission) error

// DisplayInfoQuerier renders the display info for a destination payload.
type DisplayInfoQuerier interface {
	DestinationDisplayInfo(ctx context.Context, input destination.Input) (destination.DisplayInfo, error)
}

// Form is the state container for one destination form instance. It is safe
// for concurrent use.
type Form struct {
	id          uuid.UUID
	registry    *destination.Registry
	validator   *validation.Validator
	logger      *slog.Logger
	destRoots   []errutil.Path
	previewRoot errutil.Path
	initialType string
	onValidity  func(fieldID string, res validation.Result)

	manualValidation bool

	mu         sync.Mutex
	state      State
	info       *destination.TypeInfo
	values     map[string]string
	validity   map[string]validation.Result
	serverErrs map[string][]string
	localErrs  map[string]string
	other      []errutil.StructuredError

	// Preview errors are informational: they never block a submit and are
	// replaced by the next preview.
	previewErrs  map[string][]string
	previewOther []errutil.StructuredError
	regs         map[string]Registration
	regOrder     []string
	formValues   map[string]any
	formErrs     map[string]string
}

// New constructs a form bound to reg.
func New(reg *destination.Registry, opts ...Option) *Form {
	f := &Form{
		id:          uuid.New(),
		registry:    reg,
		logger:      slog.Default(),
		previewRoot: DefaultPreviewRoot,
		values:      map[string]string{},
		validity:    map[string]validation.Result{},
		serverErrs:  map[string][]string{},
		localErrs:   map[string]string{},
		previewErrs: map[string][]string{},
		regs:        map[string]Registration{},
		formValues:  map[string]any{},
		formErrs:    map[string]string{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	f.logger = f.logger.With("form", f.id.String())

	if f.initialType != "" {
		if err := f.SetType(f.initialType); err != nil {
			f.logger.Warn("form: initial type rejected", "type", f.initialType, "error", err)
		}
	}
	return f
}

// ID returns the form instance id.
func (f *Form) ID() string {
	return f.id.String()
}

// State returns the lifecycle state.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Type returns the selected destination type, or "".
func (f *Form) Type() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.info == nil {
		return ""
	}
	return f.info.Type
}

// TypeInfo returns the metadata of the selected type.
func (f *Form) TypeInfo() (destination.TypeInfo, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.info == nil {
		return destination.TypeInfo{}, false
	}
	return *f.info, true
}

// Fields returns the field configs of the selected type in declaration order.
func (f *Form) Fields() []destination.FieldConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.info == nil {
		return nil
	}
	return append([]destination.FieldConfig(nil), f.info.RequiredFields...)
}

// SetType selects a destination type. Values, field errors and validity of
// the previous type are discarded and its in-flight validations invalidated.
// Selecting the current type again is a no-op. Disabled types are rejected
// with ErrTypeDisabled.
func (f *Form) SetType(destType string) error {
	if f.registry == nil {
		return fmt.Errorf("%w: %s", destination.ErrUnknownType, destType)
	}
	info, err := f.registry.Lookup(destType)
	if err != nil {
		return err
	}
	if !info.Enabled {
		if msg := destination.PlainText(info.DisabledMessage); msg != "" {
			return fmt.Errorf("%w: %s: %s", ErrTypeDisabled, destType, msg)
		}
		return fmt.Errorf("%w: %s", ErrTypeDisabled, destType)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.editableLocked(); err != nil {
		return err
	}
	if f.info != nil && f.info.Type == info.Type {
		return nil
	}

	if f.info != nil {
		f.validator.InvalidateType(f.info.Type)
		f.logger.Debug("form: destination type changed", "from", f.info.Type, "to", info.Type)
		f.touchLocked()
	}
	f.info = &info
	f.values = map[string]string{}
	f.validity = map[string]validation.Result{}
	f.serverErrs = map[string][]string{}
	f.localErrs = map[string]string{}
	f.clearPreviewLocked()
	return nil
}

// SetFieldValue records the raw value of a destination field of the selected
// type, clears the field's error and validity, and starts remote validation
// when the field supports it. ctx bounds that validation.
func (f *Form) SetFieldValue(ctx context.Context, fieldID, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.editableLocked(); err != nil {
		return err
	}
	if f.info == nil {
		return ErrNoType
	}
	field, ok := f.info.Field(fieldID)
	if !ok {
		return fmt.Errorf("%w: %s.%s", destination.ErrUnknownField, f.info.Type, fieldID)
	}

	f.values[fieldID] = value
	delete(f.serverErrs, fieldID)
	delete(f.localErrs, fieldID)
	delete(f.previewErrs, fieldID)
	delete(f.validity, fieldID)
	f.touchLocked()

	destType := f.info.Type
	if !field.SupportsValidation || f.validator == nil || f.manualValidation {
		return nil
	}
	if strings.TrimSpace(value) == "" {
		f.validator.Cancel(destType, fieldID)
		return nil
	}
	f.validity[fieldID] = validation.Result{
		Key:    validation.Key{Type: destType, FieldID: fieldID},
		Value:  value,
		Status: validation.StatusPending,
	}
	// Issued under f.mu so the validator sees requests in edit order.
	f.validator.ValidateAsync(ctx, destType, fieldID, value, f.applyValidity)
	return nil
}

// FieldValue returns the raw value of a destination field.
func (f *Form) FieldValue(fieldID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[fieldID]
}

// Values returns the destination field values in declaration order.
func (f *Form) Values() []destination.FieldValue {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.info == nil {
		return nil
	}
	out := make([]destination.FieldValue, 0, len(f.info.RequiredFields))
	for _, field := range f.info.RequiredFields {
		out = append(out, destination.FieldValue{FieldID: field.FieldID, Value: f.values[field.FieldID]})
	}
	return out
}

// ValidateField synchronously validates the current value of fieldID and
// records the outcome unless the value changed meanwhile.
func (f *Form) ValidateField(ctx context.Context, fieldID string) (validation.Result, error) {
	f.mu.Lock()
	if f.info == nil {
		f.mu.Unlock()
		return validation.Result{}, ErrNoType
	}
	field, ok := f.info.Field(fieldID)
	if !ok {
		destType := f.info.Type
		f.mu.Unlock()
		return validation.Result{}, fmt.Errorf("%w: %s.%s", destination.ErrUnknownField, destType, fieldID)
	}
	destType, value := f.info.Type, f.values[fieldID]
	f.mu.Unlock()

	if !field.SupportsValidation || f.validator == nil || strings.TrimSpace(value) == "" {
		return validation.Skip(destType, field, value), nil
	}
	res, err := f.validator.ValidateField(ctx, destType, field, value)
	if err != nil {
		return res, err
	}
	f.applyValidity(res)
	return res, nil
}

func (f *Form) applyValidity(res validation.Result) {
	f.mu.Lock()
	if f.info == nil || f.info.Type != res.Key.Type ||
		f.values[res.Key.FieldID] != res.Value ||
		!f.validator.Current(res) {
		f.mu.Unlock()
		return
	}
	f.validity[res.Key.FieldID] = res
	hook := f.onValidity
	f.mu.Unlock()

	if hook != nil {
		hook(res.Key.FieldID, res)
	}
}

// Validity returns the validation status of a destination field. Fields
// without remote validation support always report StatusValid.
func (f *Form) Validity(fieldID string) validation.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.info != nil {
		if field, ok := f.info.Field(fieldID); ok && !field.SupportsValidation {
			return validation.StatusValid
		}
	}
	return f.validity[fieldID].Status
}

// Register records a form-level field. The returned func removes the
// registration and its error.
func (f *Form) Register(reg Registration) (func(), error) {
	name := strings.TrimSpace(reg.Name)
	if name == "" {
		return nil, fmt.Errorf("form: registration name is required")
	}
	reg.Name = name

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.regs[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateRegistration, name)
	}
	f.regs[name] = reg
	f.regOrder = append(f.regOrder, name)

	var once sync.Once
	return func() {
		once.Do(func() { f.unregister(name) })
	}, nil
}

func (f *Form) unregister(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.regs, name)
	delete(f.formErrs, name)
	for i, existing := range f.regOrder {
		if existing == name {
			f.regOrder = append(f.regOrder[:i], f.regOrder[i+1:]...)
			break
		}
	}
}

// SetValue records a form-level value and clears its error.
func (f *Form) SetValue(name string, value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.editableLocked(); err != nil {
		return err
	}
	f.formValues[name] = value
	delete(f.formErrs, name)
	f.touchLocked()
	return nil
}

// Value returns a form-level value.
func (f *Form) Value(name string) (any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.formValues[name]
	return v, ok
}

// Error returns the message recorded for a form-level field.
func (f *Form) Error(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.formErrs[name]
}

// Input assembles the destination payload from the current values.
func (f *Form) Input() (destination.Input, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inputLocked()
}

func (f *Form) inputLocked() (destination.Input, error) {
	if f.info == nil {
		return destination.Input{}, ErrNoType
	}
	return destination.BuildMap(*f.info, f.values)
}

func (f *Form) editableLocked() error {
	switch f.state {
	case StateSubmitting:
		return ErrBusy
	case StateSubmitted:
		return ErrSubmitted
	}
	return nil
}

func (f *Form) touchLocked() {
	if f.state == StateEmpty || f.state == StateError {
		f.state = StateEditing
	}
}
