package formset

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// State is the ordered entry collection plus the TOTAL_FORMS counter. The
// counter always equals the number of entry slots, visible or not.
type State struct {
	prefix  string
	total   int
	entries []*Entry
}

// NewState builds a state from seeds. Initial entries must precede Extra
// entries, and Extra entries cannot start out soft-deleted.
func NewState(prefix string, seeds ...Seed) (*State, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultPrefix
	}

	s := &State{
		prefix:  prefix,
		entries: make([]*Entry, 0, len(seeds)),
	}
	seenExtra := false
	for idx, seed := range seeds {
		if seed.Origin.Persisted() {
			if seenExtra {
				return nil, fmt.Errorf("%w: initial entry at slot %d follows an extra entry", ErrInvalidState, idx)
			}
		} else {
			seenExtra = true
			if seed.Deleted {
				return nil, fmt.Errorf("%w: extra entry at slot %d cannot be soft-deleted", ErrInvalidState, idx)
			}
		}
		s.entries = append(s.entries, &Entry{
			index:    idx,
			origin:   seed.Origin,
			value:    strings.TrimSpace(seed.Value),
			deleted:  seed.Deleted,
			visible:  !seed.Deleted,
			markup:   seed.Markup,
			attached: true,
		})
		s.total++
	}
	return s, nil
}

// Prefix returns the form-set prefix.
func (s *State) Prefix() string { return s.prefix }

// Total returns the TOTAL_FORMS counter.
func (s *State) Total() int { return s.total }

// Len returns the number of entry slots.
func (s *State) Len() int { return len(s.entries) }

// InitialCount returns the number of Initial entries (INITIAL_FORMS).
func (s *State) InitialCount() int {
	count := 0
	for _, entry := range s.entries {
		if entry.origin.Persisted() {
			count++
		}
	}
	return count
}

// Entries returns the entries in slot order. The slice is a copy; the
// entries are shared.
func (s *State) Entries() []*Entry {
	return append([]*Entry(nil), s.entries...)
}

// Entry returns the entry occupying slot index.
func (s *State) Entry(index int) (*Entry, bool) {
	if index < 0 || index >= len(s.entries) {
		return nil, false
	}
	return s.entries[index], true
}

// Visible returns the entries currently shown.
func (s *State) Visible() []*Entry {
	out := make([]*Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		if entry.visible {
			out = append(out, entry)
		}
	}
	return out
}

// Validate checks the counter and slot numbering invariants.
func (s *State) Validate() error {
	if s.total != len(s.entries) {
		return fmt.Errorf("%w: TOTAL_FORMS is %d but %d slots are present", ErrInvalidState, s.total, len(s.entries))
	}
	for pos, entry := range s.entries {
		if entry.index != pos {
			return fmt.Errorf("%w: slot %d carries index %d", ErrInvalidState, pos, entry.index)
		}
		if !entry.attached {
			return fmt.Errorf("%w: slot %d holds a detached entry", ErrInvalidState, pos)
		}
	}
	return nil
}

// Values encodes the state as submitted form values: the management
// counters, the hidden field and persisted key of every slot, and the
// deletion flag of soft-deleted slots.
func (s *State) Values(hiddenField, formPK string) url.Values {
	values := url.Values{}
	values.Set(TotalFormsName(s.prefix), strconv.Itoa(s.total))
	values.Set(InitialFormsName(s.prefix), strconv.Itoa(s.InitialCount()))
	for _, entry := range s.entries {
		if hiddenField != "" {
			values.Set(FieldName(s.prefix, entry.index, hiddenField), entry.value)
		}
		if entry.origin.Persisted() && formPK != "" {
			values.Set(FieldName(s.prefix, entry.index, formPK), entry.origin.Key())
		}
		if entry.deleted {
			values.Set(DeleteFieldName(s.prefix, entry.index), "on")
		}
	}
	return values
}

func (s *State) indexOf(entry *Entry) int {
	if entry == nil || !entry.attached {
		return -1
	}
	for pos, candidate := range s.entries {
		if candidate == entry {
			return pos
		}
	}
	return -1
}

// updateTotal adjusts TOTAL_FORMS and returns the new value.
func (s *State) updateTotal(delta int) int {
	s.total += delta
	return s.total
}

func (s *State) appendExtra(markup, value string) *Entry {
	index := s.updateTotal(1) - 1
	entry := &Entry{
		index:    index,
		origin:   Extra(),
		value:    value,
		markup:   markup,
		attached: true,
	}
	s.entries = append(s.entries, entry)
	return entry
}

// destroy removes entry from the slots, decrements TOTAL_FORMS and shifts
// every later slot down by one so numbering stays contiguous. It returns the
// renumbering applied as (from, to) pairs.
func (s *State) destroy(entry *Entry) ([][2]int, error) {
	pos := s.indexOf(entry)
	if pos < 0 {
		return nil, ErrUnknownEntry
	}

	later := s.entries[pos+1:]
	markups := make([]string, len(later))
	for i, next := range later {
		rewritten, err := renumberMarkup(next.markup, s.prefix, next.index, next.index-1)
		if err != nil {
			return nil, fmt.Errorf("formset: renumber slot %d: %w", next.index, err)
		}
		markups[i] = rewritten
	}

	moves := make([][2]int, 0, len(later))
	for i, next := range later {
		moves = append(moves, [2]int{next.index, next.index - 1})
		next.index--
		next.markup = markups[i]
	}

	s.entries = append(s.entries[:pos], s.entries[pos+1:]...)
	s.updateTotal(-1)
	entry.attached = false
	entry.index = -1
	return moves, nil
}
