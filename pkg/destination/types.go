package destination

import "strings"

// FieldConfig describes one input field of a destination type.
type FieldConfig struct {
	FieldID            string `json:"fieldID" yaml:"fieldID" validate:"required"`
	LabelSingular      string `json:"labelSingular" yaml:"labelSingular"`
	LabelPlural        string `json:"labelPlural,omitempty" yaml:"labelPlural,omitempty"`
	Hint               string `json:"hint,omitempty" yaml:"hint,omitempty"`
	HintURL            string `json:"hintURL,omitempty" yaml:"hintURL,omitempty"`
	PlaceholderText    string `json:"placeholderText,omitempty" yaml:"placeholderText,omitempty"`
	Prefix             string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	InputType          string `json:"inputType,omitempty" yaml:"inputType,omitempty"`
	IsSearchSelectable bool   `json:"isSearchSelectable" yaml:"isSearchSelectable"`
	SupportsValidation bool   `json:"supportsValidation" yaml:"supportsValidation"`
}

// Label returns the singular label, falling back to the field id.
func (f FieldConfig) Label() string {
	if label := strings.TrimSpace(f.LabelSingular); label != "" {
		return label
	}
	return f.FieldID
}

// TypeInfo is one entry of the destination type catalog.
type TypeInfo struct {
	Type                string        `json:"type" yaml:"type" validate:"required"`
	Name                string        `json:"name" yaml:"name" validate:"required"`
	Enabled             bool          `json:"enabled" yaml:"enabled"`
	DisabledMessage     string        `json:"disabledMessage,omitempty" yaml:"disabledMessage,omitempty"`
	IsContactMethod     bool          `json:"isContactMethod" yaml:"isContactMethod"`
	IsEPTarget          bool          `json:"isEPTarget" yaml:"isEPTarget"`
	IsSchedOnCallNotify bool          `json:"isSchedOnCallNotify" yaml:"isSchedOnCallNotify"`
	RequiredFields      []FieldConfig `json:"requiredFields" yaml:"requiredFields" validate:"dive"`
}

// Field looks up a required field by id.
func (t TypeInfo) Field(fieldID string) (FieldConfig, bool) {
	for _, field := range t.RequiredFields {
		if field.FieldID == fieldID {
			return field, true
		}
	}
	return FieldConfig{}, false
}

// HasField reports whether fieldID belongs to the type.
func (t TypeInfo) HasField(fieldID string) bool {
	_, ok := t.Field(fieldID)
	return ok
}

// FieldIDs lists the required field ids in declaration order.
func (t TypeInfo) FieldIDs() []string {
	ids := make([]string, 0, len(t.RequiredFields))
	for _, field := range t.RequiredFields {
		ids = append(ids, field.FieldID)
	}
	return ids
}

// Sanitized returns a copy with every human readable string reduced to plain
// text. Use it for catalogs fetched from a remote server.
func (t TypeInfo) Sanitized() TypeInfo {
	out := t.clone()
	out.Name = PlainText(out.Name)
	out.DisabledMessage = PlainText(out.DisabledMessage)
	for idx := range out.RequiredFields {
		field := &out.RequiredFields[idx]
		field.LabelSingular = PlainText(field.LabelSingular)
		field.LabelPlural = PlainText(field.LabelPlural)
		field.Hint = PlainText(field.Hint)
		field.PlaceholderText = PlainText(field.PlaceholderText)
		field.Prefix = PlainText(field.Prefix)
	}
	return out
}

func (t TypeInfo) clone() TypeInfo {
	out := t
	out.RequiredFields = append([]FieldConfig(nil), t.RequiredFields...)
	return out
}

// FieldValue is one field/value pair of a destination payload.
type FieldValue struct {
	FieldID string `json:"fieldID" yaml:"fieldID"`
	Value   string `json:"value" yaml:"value"`
}

// Input is the destination wire payload. Values holds exactly one entry per
// required field of Type, in declaration order.
type Input struct {
	Type   string       `json:"type" yaml:"type"`
	Values []FieldValue `json:"values" yaml:"values"`
}

// Value returns the value for fieldID, or "" when absent.
func (in Input) Value(fieldID string) string {
	for _, v := range in.Values {
		if v.FieldID == fieldID {
			return v.Value
		}
	}
	return ""
}

// DisplayInfo is the preview of a constructed destination.
type DisplayInfo struct {
	Text        string `json:"text"`
	IconURL     string `json:"iconURL,omitempty"`
	IconAltText string `json:"iconAltText,omitempty"`
	LinkURL     string `json:"linkURL,omitempty"`
}

// FieldOption is a selectable value for a search-selectable field.
type FieldOption struct {
	Label      string `json:"label"`
	Value      string `json:"value"`
	IsFavorite bool   `json:"isFavorite,omitempty"`
}

// SearchInput queries the options of a search-selectable field.
type SearchInput struct {
	Type    string   `json:"destType"`
	FieldID string   `json:"fieldID"`
	Search  string   `json:"search,omitempty"`
	First   int      `json:"first,omitempty"`
	After   string   `json:"after,omitempty"`
	Omit    []string `json:"omit,omitempty"`
}
