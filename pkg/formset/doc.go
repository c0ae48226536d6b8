// Package formset manages a server form-set (a variable-length list of
// sub-forms tracked by a TOTAL_FORMS counter and per-slot field names such as
// "form-3-addon") on behalf of an autocomplete-driven editor.
//
// A Controller owns exactly one State. Entries are added from search
// candidates, de-duplicated by their hidden-field value, soft-deleted when
// they carry a persisted key (Initial) and destroyed outright when they were
// added on the client (Extra). The controller never binds events itself:
// transports decode keystrokes, selections and removal clicks and call the
// matching method, receiving a Result that lists the UI effects to play.
//
// Controllers are not safe for concurrent use. The dispatch package wraps one
// in a mutex-guarded Dispatcher for multi-request environments.
package formset
