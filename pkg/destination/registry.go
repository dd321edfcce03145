package destination

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrUnknownType is returned when a type id is not part of the loaded
	// registry.
	ErrUnknownType = errors.New("destination: unknown destination type")
	// ErrUnknownField is returned when a field id is not declared by the
	// selected type.
	ErrUnknownField = errors.New("destination: unknown field")
	// ErrDuplicateField is returned when a field id appears twice.
	ErrDuplicateField = errors.New("destination: duplicate field")
	// ErrInvalidRegistry wraps catalog entries that fail validation.
	ErrInvalidRegistry = errors.New("destination: invalid registry")
)

var (
	structValidatorOnce sync.Once
	structValidator     *validator.Validate
)

func catalogValidator() *validator.Validate {
	structValidatorOnce.Do(func() {
		structValidator = validator.New()
	})
	return structValidator
}

// Registry is an immutable catalog of destination types. It is safe for
// concurrent reads.
type Registry struct {
	types []TypeInfo
	index map[string]int
}

// NewRegistry validates the catalog and indexes it by type id. Entries must
// carry a type id, a name and a field id for every required field; type ids
// must be unique and field ids unique within their type.
func NewRegistry(types []TypeInfo) (*Registry, error) {
	reg := &Registry{
		types: make([]TypeInfo, 0, len(types)),
		index: make(map[string]int, len(types)),
	}

	for idx, info := range types {
		info = info.clone()
		info.Type = strings.TrimSpace(info.Type)
		if err := catalogValidator().Struct(info); err != nil {
			return nil, fmt.Errorf("%w: entry %d (%q): %s", ErrInvalidRegistry, idx, info.Type, describeValidation(err))
		}
		if _, exists := reg.index[info.Type]; exists {
			return nil, fmt.Errorf("%w: duplicate type %q", ErrInvalidRegistry, info.Type)
		}

		seen := make(map[string]struct{}, len(info.RequiredFields))
		for _, field := range info.RequiredFields {
			if _, dup := seen[field.FieldID]; dup {
				return nil, fmt.Errorf("%w: type %q: %w %q", ErrInvalidRegistry, info.Type, ErrDuplicateField, field.FieldID)
			}
			seen[field.FieldID] = struct{}{}
		}

		reg.index[info.Type] = len(reg.types)
		reg.types = append(reg.types, info)
	}

	return reg, nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}

// Lookup resolves a type id. Unknown ids return ErrUnknownType.
func (r *Registry) Lookup(destType string) (TypeInfo, error) {
	if r == nil {
		return TypeInfo{}, fmt.Errorf("%w: %q (registry not loaded)", ErrUnknownType, destType)
	}
	idx, ok := r.index[strings.TrimSpace(destType)]
	if !ok {
		return TypeInfo{}, fmt.Errorf("%w: %q", ErrUnknownType, destType)
	}
	return r.types[idx].clone(), nil
}

// Has reports whether destType is part of the registry.
func (r *Registry) Has(destType string) bool {
	if r == nil {
		return false
	}
	_, ok := r.index[strings.TrimSpace(destType)]
	return ok
}

// Field resolves a field of a type.
func (r *Registry) Field(destType, fieldID string) (FieldConfig, error) {
	info, err := r.Lookup(destType)
	if err != nil {
		return FieldConfig{}, err
	}
	field, ok := info.Field(fieldID)
	if !ok {
		return FieldConfig{}, fmt.Errorf("%w: %q for type %q", ErrUnknownField, fieldID, destType)
	}
	return field, nil
}

// Types returns every type in catalog order.
func (r *Registry) Types() []TypeInfo {
	return r.filter(func(TypeInfo) bool { return true })
}

// Enabled returns the types that can currently be selected.
func (r *Registry) Enabled() []TypeInfo {
	return r.filter(func(t TypeInfo) bool { return t.Enabled })
}

// ContactMethods returns the types usable as user contact methods.
func (r *Registry) ContactMethods() []TypeInfo {
	return r.filter(func(t TypeInfo) bool { return t.IsContactMethod })
}

// EPTargets returns the types usable as escalation policy step targets.
func (r *Registry) EPTargets() []TypeInfo {
	return r.filter(func(t TypeInfo) bool { return t.IsEPTarget })
}

// SchedOnCallNotify returns the types usable for schedule on-call
// notifications.
func (r *Registry) SchedOnCallNotify() []TypeInfo {
	return r.filter(func(t TypeInfo) bool { return t.IsSchedOnCallNotify })
}

// Build looks destType up and assembles its payload.
func (r *Registry) Build(destType string, values []FieldValue) (Input, error) {
	info, err := r.Lookup(destType)
	if err != nil {
		return Input{}, err
	}
	return Build(info, values)
}

func (r *Registry) filter(keep func(TypeInfo) bool) []TypeInfo {
	if r == nil {
		return nil
	}
	var out []TypeInfo
	for _, info := range r.types {
		if keep(info) {
			out = append(out, info.clone())
		}
	}
	return out
}
