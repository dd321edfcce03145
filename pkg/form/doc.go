// Package form holds the in-progress state of one destination form: the
// selected destination type, its ordered field values, per-field validity,
// form-level field registrations and the errors attributed after a failed
// submit.
//
// A Form is constructed once per form instance and passed explicitly to every
// unit that renders one of its fields. The lifecycle is
//
//	Empty -> Editing -> Submitting -> Error | Submitted
//
// where Error returns to Editing on the next edit and Submitted is terminal.
// Switching the destination type always clears the field values, their errors
// and any validation still in flight for the previous type.
package form
