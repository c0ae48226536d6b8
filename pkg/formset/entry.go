package formset

import "strings"

// Origin records whether an entry was provided by the server with a persisted
// key (Initial) or added on the client (Extra). It is resolved once, when the
// entry is created.
type Origin struct {
	persisted bool
	key       string
}

// Initial returns the origin of a server-provided entry carrying key.
func Initial(key string) Origin {
	return Origin{persisted: true, key: strings.TrimSpace(key)}
}

// Extra returns the origin of a client-added entry.
func Extra() Origin {
	return Origin{}
}

// Persisted reports whether the entry exists in server storage.
func (o Origin) Persisted() bool { return o.persisted }

// Key returns the persisted key, empty for Extra entries.
func (o Origin) Key() string { return o.key }

func (o Origin) String() string {
	if o.persisted {
		return "initial(" + o.key + ")"
	}
	return "extra"
}

// EntryState is the lifecycle position of an entry.
type EntryState int

const (
	EntryAbsent EntryState = iota
	EntryActive
	EntrySoftDeleted
)

func (s EntryState) String() string {
	switch s {
	case EntryActive:
		return "active"
	case EntrySoftDeleted:
		return "soft-deleted"
	default:
		return "absent"
	}
}

// Entry is one managed slot of the form-set. Fields are only mutated through
// the owning Controller.
type Entry struct {
	index    int
	origin   Origin
	value    string
	deleted  bool
	visible  bool
	markup   string
	attached bool
}

// Index returns the slot number used in "{prefix}-{index}-{field}" names.
func (e *Entry) Index() int { return e.index }

// Origin returns the Initial/Extra variant of the entry.
func (e *Entry) Origin() Origin { return e.origin }

// Value returns the hidden-field value linking the entry to a candidate key.
func (e *Entry) Value() string { return e.value }

// Deleted reports whether the deletion flag is set.
func (e *Entry) Deleted() bool { return e.deleted }

// Visible reports whether the entry is shown.
func (e *Entry) Visible() bool { return e.visible }

// Markup returns the rendered fragment for the slot, if any.
func (e *Entry) Markup() string { return e.markup }

// State returns the lifecycle state of the entry.
func (e *Entry) State() EntryState {
	switch {
	case e == nil || !e.attached:
		return EntryAbsent
	case e.deleted:
		return EntrySoftDeleted
	default:
		return EntryActive
	}
}

// Seed describes an entry present when the state is built, typically one
// rendered by the server.
type Seed struct {
	Origin  Origin
	Value   string
	Deleted bool
	Markup  string
}
