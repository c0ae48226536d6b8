package catalog

import (
	"sort"
	"strings"

	"github.com/goliatone/go-formset/pkg/formset"
)

// Query is one catalog lookup.
type Query struct {
	Term  string
	Limit int
	// Exclude drops items whose category is listed in
	// Options.ExcludedCategories.
	Exclude bool
	// Category, when set, keeps only items in that category.
	Category string
}

// Search matches query.Term case-insensitively against item labels (and
// exact keys). Label prefix matches sort before substring matches.
func Search(items []Item, query Query, opts Options) []Item {
	limit := clampLimit(query.Limit, opts)
	if limit == 0 {
		return nil
	}

	excluded := map[string]struct{}{}
	if query.Exclude {
		for _, category := range opts.ExcludedCategories {
			excluded[category] = struct{}{}
		}
	}
	allowed := func(item Item) bool {
		if query.Category != "" && item.Category != query.Category {
			return false
		}
		_, skip := excluded[item.Category]
		return !skip
	}

	term := strings.TrimSpace(query.Term)
	if term == "" {
		if opts.EmptySearchMode != EmptySearchTop {
			return nil
		}
		out := make([]Item, 0, limit)
		for _, item := range items {
			if len(out) == limit {
				break
			}
			if allowed(item) {
				out = append(out, item)
			}
		}
		return out
	}

	q := strings.ToLower(term)
	matches := make([]matchedItem, 0, 16)
	for _, item := range items {
		if !allowed(item) {
			continue
		}
		label := strings.ToLower(item.Label)
		if item.Key != term && !strings.Contains(label, q) {
			continue
		}
		matches = append(matches, matchedItem{
			item:     item,
			isPrefix: item.Key == term || strings.HasPrefix(label, q),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].isPrefix != matches[j].isPrefix {
			return matches[i].isPrefix
		}
		return matches[i].item.Label < matches[j].item.Label
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]Item, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.item)
	}
	return out
}

// SearchCandidates runs Search and converts the hits for the controller.
func SearchCandidates(items []Item, query Query, opts Options) []formset.Candidate {
	results := Search(items, query, opts)
	if len(results) == 0 {
		return nil
	}

	out := make([]formset.Candidate, 0, len(results))
	for _, item := range results {
		out = append(out, item.Candidate())
	}
	return out
}

// Candidate converts item into the autocomplete wire shape.
func (item Item) Candidate() formset.Candidate {
	return formset.Candidate{Key: item.Key, Label: item.Label, Icon: item.Icon}
}

type matchedItem struct {
	item     Item
	isPrefix bool
}
