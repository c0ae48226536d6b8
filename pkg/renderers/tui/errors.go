package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoDispatcher is returned when an editor is built without a
	// form-set to edit.
	ErrNoDispatcher = errors.New("tui: dispatcher is required")
)
