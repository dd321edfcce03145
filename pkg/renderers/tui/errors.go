package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoTypes is returned when no enabled destination type can be offered.
	ErrNoTypes = errors.New("tui: no destination types available")
	// ErrDeclined is returned when the user chooses not to retry a failed
	// submit.
	ErrDeclined = errors.New("tui: submit not retried")
)
