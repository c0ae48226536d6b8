package formset

// Outcome names which branch an operation took.
type Outcome string

const (
	OutcomeIgnored     Outcome = "ignored"
	OutcomeDuplicate   Outcome = "duplicate"
	OutcomeRevived     Outcome = "revived"
	OutcomeCreated     Outcome = "created"
	OutcomeSoftDeleted Outcome = "soft-deleted"
	OutcomeDestroyed   Outcome = "destroyed"
)

// EffectKind is a UI step a transport should play back, in order.
type EffectKind string

const (
	// EffectInsert adds the entry markup to the forms container, hidden.
	EffectInsert EffectKind = "insert"
	// EffectReveal shows a hidden entry (animated).
	EffectReveal EffectKind = "reveal"
	// EffectHide hides an entry (animated).
	EffectHide EffectKind = "hide"
	// EffectDestroy removes the entry from the DOM.
	EffectDestroy EffectKind = "destroy"
	// EffectRenumber moves a slot from From to Index.
	EffectRenumber EffectKind = "renumber"
	// EffectClearInput empties the autocomplete input and its payload.
	EffectClearInput EffectKind = "clear-input"
)

type Effect struct {
	Kind  EffectKind `json:"kind"`
	Index int        `json:"index"`
	From  int        `json:"from,omitempty"`
}

// Result reports what an operation did.
type Result struct {
	Outcome Outcome
	Entry   *Entry
	Effects []Effect
}

func (r *Result) add(kind EffectKind, index int) {
	r.Effects = append(r.Effects, Effect{Kind: kind, Index: index})
}

// Match is the answer of a key lookup.
type Match struct {
	Exists  bool
	Visible bool
	Entry   *Entry
}

// Query is a sequenced search issued by BeginQuery. Only the most recent
// query may resolve; older ones are stale.
type Query struct {
	Seq  uint64
	Term string
}
