package errutil

// Consumer hands out the errors of one operation result, each at most once.
// Components take the errors they can display (by field or by path) and
// whatever is left over is reported by Remaining, so no error is silently
// dropped. A Consumer is not safe for concurrent use.
type Consumer struct {
	errs []StructuredError
	used []bool
}

// NewConsumer wraps the errors carried by err (normalised with List).
func NewConsumer(err error) *Consumer {
	errs := List(err)
	return &Consumer{
		errs: errs,
		used: make([]bool, len(errs)),
	}
}

// HasErrors reports whether the wrapped result carried any error.
func (c *Consumer) HasErrors() bool {
	return c != nil && len(c.errs) > 0
}

// ByField consumes and returns the first unused destination field error for
// fieldID.
func (c *Consumer) ByField(fieldID string) (FieldError, bool) {
	if c == nil || fieldID == "" {
		return FieldError{}, false
	}
	for idx, err := range c.errs {
		if c.used[idx] {
			continue
		}
		class := Classify(err)
		if class.Kind != KindDestinationField || class.FieldID != fieldID {
			continue
		}
		c.used[idx] = true
		return FieldError{FieldID: fieldID, Message: Capitalize(err.Message)}, true
	}
	return FieldError{}, false
}

// ByPath consumes and returns every unused error whose path starts with one
// of prefixes.
func (c *Consumer) ByPath(prefixes ...Path) []StructuredError {
	if c == nil {
		return nil
	}
	var out []StructuredError
	for idx, err := range c.errs {
		if c.used[idx] {
			continue
		}
		if _, ok := MatchPrefix(err, prefixes...); !ok {
			continue
		}
		c.used[idx] = true
		out = append(out, err)
	}
	return out
}

// Remaining consumes and returns every error not handed out yet.
func (c *Consumer) Remaining() []StructuredError {
	if c == nil {
		return nil
	}
	var out []StructuredError
	for idx, err := range c.errs {
		if c.used[idx] {
			continue
		}
		c.used[idx] = true
		out = append(out, err)
	}
	return out
}
