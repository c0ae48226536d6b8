package catalog

import (
	"embed"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/addons.yaml
var dataFS embed.FS

const defaultListPath = "data/addons.yaml"

// Item is one catalog entry.
type Item struct {
	Key      string `json:"key" yaml:"key"`
	Label    string `json:"label" yaml:"label"`
	Icon     string `json:"icon,omitempty" yaml:"icon"`
	Category string `json:"category,omitempty" yaml:"category"`
}

type catalogFile struct {
	Items []Item `yaml:"items"`
}

var (
	defaultOnce  sync.Once
	defaultItems []Item
	defaultErr   error
)

// DefaultItems returns a copy of the embedded catalog.
func DefaultItems() ([]Item, error) {
	defaultOnce.Do(func() {
		f, err := dataFS.Open(defaultListPath)
		if err != nil {
			defaultErr = err
			return
		}
		defer func() { _ = f.Close() }()

		items, err := LoadItems(f)
		if err != nil {
			defaultErr = err
			return
		}
		defaultItems = items
	})

	if defaultErr != nil {
		return nil, defaultErr
	}
	return append([]Item{}, defaultItems...), nil
}

// LoadItems decodes a YAML (or JSON) catalog document with a top-level
// "items" list. Items without a key are skipped and duplicate keys keep the
// first occurrence. The result is sorted by label.
func LoadItems(r io.Reader) ([]Item, error) {
	if r == nil {
		return nil, fmt.Errorf("catalog: missing reader")
	}

	var doc catalogFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return []Item{}, nil
		}
		return nil, fmt.Errorf("catalog: decode items: %w", err)
	}

	items := make([]Item, 0, len(doc.Items))
	seen := map[string]struct{}{}
	for _, item := range doc.Items {
		item.Key = strings.TrimSpace(item.Key)
		if item.Key == "" {
			continue
		}
		if _, ok := seen[item.Key]; ok {
			continue
		}
		seen[item.Key] = struct{}{}

		item.Label = strings.TrimSpace(item.Label)
		if item.Label == "" {
			item.Label = item.Key
		}
		item.Category = strings.ToLower(strings.TrimSpace(item.Category))
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Label < items[j].Label
	})
	return items, nil
}
