package destination

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// ErrInvalidInput wraps payloads rejected by ValidateInputJSON.
var ErrInvalidInput = errors.New("destination: invalid input")

// SchemaName is the component name used for info in Registry.Schemas.
func SchemaName(info TypeInfo) string {
	return "DestinationInput_" + info.Type
}

// InputSchema describes the payload accepted for info: a fixed type id and one
// {fieldID, value} pair per required field.
func InputSchema(info TypeInfo) *openapi3.Schema {
	ids := make([]any, 0, len(info.RequiredFields))
	for _, field := range info.RequiredFields {
		ids = append(ids, field.FieldID)
	}

	fieldID := openapi3.NewStringSchema()
	if len(ids) > 0 {
		fieldID = fieldID.WithEnum(ids...)
	}

	pair := openapi3.NewObjectSchema().
		WithProperty("fieldID", fieldID).
		WithProperty("value", openapi3.NewStringSchema()).
		WithoutAdditionalProperties()
	pair.Required = []string{"fieldID", "value"}

	values := openapi3.NewArraySchema().
		WithItems(pair).
		WithMinItems(int64(len(ids))).
		WithMaxItems(int64(len(ids)))
	values.UniqueItems = true

	root := openapi3.NewObjectSchema().
		WithProperty("type", openapi3.NewStringSchema().WithEnum(info.Type)).
		WithProperty("values", values).
		WithoutAdditionalProperties()
	root.Required = []string{"type", "values"}
	root.Title = info.Name
	if info.DisabledMessage != "" && !info.Enabled {
		root.Description = info.DisabledMessage
	}
	return root
}

// Schemas returns one component schema per registered type, keyed by
// SchemaName.
func (r *Registry) Schemas() openapi3.Schemas {
	out := make(openapi3.Schemas)
	for _, info := range r.Types() {
		out[SchemaName(info)] = InputSchema(info).NewRef()
	}
	return out
}

// ValidateInputJSON checks a raw JSON payload against InputSchema(info) and
// the payload invariants, returning the decoded Input on success.
func ValidateInputJSON(info TypeInfo, raw []byte) (Input, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Input{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := InputSchema(info).VisitJSON(doc); err != nil {
		return Input{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var in Input
	if err := json.Unmarshal(raw, &in); err != nil {
		return Input{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := in.Validate(info); err != nil {
		return Input{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return in, nil
}
