package errutil

// Kind is the taxonomy assigned by Classify.
type Kind int

const (
	// KindUnattributable errors have no usable code and are shown verbatim at
	// dialog level.
	KindUnattributable Kind = iota
	// KindGenericInput errors belong to the operation input as a whole.
	KindGenericInput
	// KindDestinationField errors belong to one destination field.
	KindDestinationField
)

func (k Kind) String() string {
	switch k {
	case KindGenericInput:
		return "generic-input"
	case KindDestinationField:
		return "destination-field"
	default:
		return "unattributable"
	}
}

// Classification is the result of Classify. UnknownCode is set when the error
// carried a code outside the enumeration so callers can log it.
type Classification struct {
	Kind        Kind
	FieldID     string
	UnknownCode string
}

// Classify determines the taxonomy of a single error. It never fails: shapes
// it does not recognise are unattributable.
func Classify(err StructuredError) Classification {
	code := err.Code()
	switch {
	case code == CodeInvalidDestFieldValue && err.FieldID() != "":
		return Classification{Kind: KindDestinationField, FieldID: err.FieldID()}
	case code == CodeInvalidInputValue:
		return Classification{Kind: KindGenericInput, FieldID: err.FieldID()}
	case code != "" && !code.Valid():
		return Classification{Kind: KindUnattributable, UnknownCode: string(code)}
	default:
		return Classification{Kind: KindUnattributable}
	}
}

// AttributeFields splits errs into destination field errors and everything
// else. known filters the field ids the caller currently renders; errors for
// other ids fall through to other. A nil known accepts every field id.
// Field messages are capitalised for inline display.
func AttributeFields(errs []StructuredError, known func(fieldID string) bool) (fields []FieldError, other []StructuredError) {
	for _, err := range errs {
		class := Classify(err)
		if class.Kind != KindDestinationField || (known != nil && !known(class.FieldID)) {
			other = append(other, err)
			continue
		}
		fields = append(fields, FieldError{
			FieldID: class.FieldID,
			Message: Capitalize(err.Message),
		})
	}
	return fields, other
}
