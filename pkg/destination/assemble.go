package destination

import (
	"fmt"
)

// Build converts field values into the wire payload for info. The result
// contains exactly one entry per required field, in declaration order,
// independent of the order values were supplied in. Missing fields are
// emitted with an empty value; unknown and duplicate field ids are errors.
func Build(info TypeInfo, values []FieldValue) (Input, error) {
	byID := make(map[string]string, len(values))
	for _, v := range values {
		if !info.HasField(v.FieldID) {
			return Input{}, fmt.Errorf("%w: %q for type %q", ErrUnknownField, v.FieldID, info.Type)
		}
		if _, dup := byID[v.FieldID]; dup {
			return Input{}, fmt.Errorf("%w: %q for type %q", ErrDuplicateField, v.FieldID, info.Type)
		}
		byID[v.FieldID] = v.Value
	}
	return assemble(info, byID), nil
}

// BuildMap is Build for values keyed by field id.
func BuildMap(info TypeInfo, values map[string]string) (Input, error) {
	for id := range values {
		if !info.HasField(id) {
			return Input{}, fmt.Errorf("%w: %q for type %q", ErrUnknownField, id, info.Type)
		}
	}
	return assemble(info, values), nil
}

func assemble(info TypeInfo, byID map[string]string) Input {
	out := Input{
		Type:   info.Type,
		Values: make([]FieldValue, 0, len(info.RequiredFields)),
	}
	for _, field := range info.RequiredFields {
		out.Values = append(out.Values, FieldValue{
			FieldID: field.FieldID,
			Value:   byID[field.FieldID],
		})
	}
	return out
}

// Validate checks the payload invariant against info: matching type, one
// entry per required field, no duplicates and no extras.
func (in Input) Validate(info TypeInfo) error {
	if in.Type != info.Type {
		return fmt.Errorf("%w: payload type %q does not match %q", ErrUnknownType, in.Type, info.Type)
	}
	seen := make(map[string]struct{}, len(in.Values))
	for _, v := range in.Values {
		if !info.HasField(v.FieldID) {
			return fmt.Errorf("%w: %q for type %q", ErrUnknownField, v.FieldID, info.Type)
		}
		if _, dup := seen[v.FieldID]; dup {
			return fmt.Errorf("%w: %q for type %q", ErrDuplicateField, v.FieldID, info.Type)
		}
		seen[v.FieldID] = struct{}{}
	}
	for _, field := range info.RequiredFields {
		if _, ok := seen[field.FieldID]; !ok {
			return fmt.Errorf("destination: missing field %q for type %q", field.FieldID, info.Type)
		}
	}
	return nil
}
