package formset

import "errors"

var (
	// ErrUnknownEntry is returned when an entry does not belong to the
	// controller's state (already destroyed or from another form-set).
	ErrUnknownEntry = errors.New("formset: entry is not part of this form-set")
	// ErrMissingProvider is returned when a search is issued without a
	// SearchProvider or Autocomplete override.
	ErrMissingProvider = errors.New("formset: search provider is required")
	// ErrMissingHiddenField is returned when the controller has no hidden
	// field name to store candidate keys in.
	ErrMissingHiddenField = errors.New("formset: hidden field name is required")
	// ErrInvalidState wraps state invariant violations.
	ErrInvalidState = errors.New("formset: invalid state")
	// ErrManagementForm wraps problems decoding submitted management data.
	ErrManagementForm = errors.New("formset: management form data is missing or invalid")
)
