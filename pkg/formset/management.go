package formset

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ParseManagementForm rebuilds a State from submitted form values. Slots with
// a persisted key become Initial entries. Extra slots flagged for deletion
// never reached storage and are dropped, shrinking TOTAL_FORMS accordingly.
// When INITIAL_FORMS is submitted it must match the number of keyed slots.
func ParseManagementForm(values url.Values, fns ...OptionFn) (*State, error) {
	opts := NewOptions(fns...)
	prefix := opts.Prefix

	total, err := parseCounter(values, TotalFormsName(prefix), true)
	if err != nil {
		return nil, err
	}
	initial, err := parseCounter(values, InitialFormsName(prefix), false)
	if err != nil {
		return nil, err
	}
	if initial > total {
		return nil, fmt.Errorf("%w: %s (%d) exceeds %s (%d)",
			ErrManagementForm, InitialFormsName(prefix), initial, TotalFormsName(prefix), total)
	}

	seeds := make([]Seed, 0, total)
	keyed := 0
	for i := 0; i < total; i++ {
		key := strings.TrimSpace(values.Get(FieldName(prefix, i, opts.FormPK)))
		deleted := isChecked(values.Get(DeleteFieldName(prefix, i)))

		origin := Extra()
		if key != "" {
			origin = Initial(key)
			keyed++
		}
		if deleted && !origin.Persisted() {
			continue
		}

		var value string
		if opts.HiddenField != "" {
			value = values.Get(FieldName(prefix, i, opts.HiddenField))
		}
		seeds = append(seeds, Seed{Origin: origin, Value: value, Deleted: deleted})
	}
	if strings.TrimSpace(values.Get(InitialFormsName(prefix))) != "" && keyed != initial {
		return nil, fmt.Errorf("%w: %s is %d but %d slots carry %s",
			ErrManagementForm, InitialFormsName(prefix), initial, keyed, opts.FormPK)
	}

	state, err := NewState(prefix, seeds...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManagementForm, err)
	}
	return state, nil
}

func parseCounter(values url.Values, name string, required bool) (int, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		if required {
			return 0, fmt.Errorf("%w: %s is missing", ErrManagementForm, name)
		}
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer, got %q", ErrManagementForm, name, raw)
	}
	return n, nil
}

func isChecked(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "true", "1", "checked", "yes":
		return true
	default:
		return false
	}
}
