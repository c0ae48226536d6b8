package catalog

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// EmptySearchMode decides what a blank term returns.
type EmptySearchMode string

const (
	EmptySearchNone EmptySearchMode = "none"
	EmptySearchTop  EmptySearchMode = "top"
)

const (
	// DefaultExcludedCategory is dropped from results when the exclusion
	// flag is set on a request.
	DefaultExcludedCategory = "persona"

	DefaultRoutePath     = "/api/addons/search"
	DefaultSearchParam   = "q"
	DefaultLimitParam    = "limit"
	DefaultExcludeParam  = "exclude_personas"
	DefaultCategoryParam = "category"
	DefaultLimit         = 10
	DefaultMaxLimit      = 50
)

// GuardFunc vets a request before the catalog is searched. Returning an
// HTTPError picks the rejection status, anything else rejects with 403.
type GuardFunc func(r *http.Request) error

// Options configures the catalog handler and in-process provider.
type Options struct {
	RoutePath     string
	SearchParam   string
	LimitParam    string
	ExcludeParam  string
	CategoryParam string

	DefaultLimit    int
	MaxLimit        int
	EmptySearchMode EmptySearchMode

	// ExcludedCategories are filtered out when a request sets ExcludeParam.
	ExcludedCategories []string

	// MaxAge, when positive, is advertised through Cache-Control so the
	// search client and browsers may reuse responses.
	MaxAge time.Duration

	Guard  GuardFunc
	Logger *zap.Logger

	// Items replaces the embedded catalog when non-nil.
	Items []Item
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath:          DefaultRoutePath,
		SearchParam:        DefaultSearchParam,
		LimitParam:         DefaultLimitParam,
		ExcludeParam:       DefaultExcludeParam,
		CategoryParam:      DefaultCategoryParam,
		DefaultLimit:       DefaultLimit,
		MaxLimit:           DefaultMaxLimit,
		EmptySearchMode:    EmptySearchNone,
		ExcludedCategories: []string{DefaultExcludedCategory},
		Logger:             zap.NewNop(),
	}
}

// NewOptions applies fns over the defaults and repairs blank or out of range
// values.
func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn != nil {
			fn(&opts)
		}
	}

	opts.RoutePath = orDefault(opts.RoutePath, DefaultRoutePath)
	opts.SearchParam = orDefault(opts.SearchParam, DefaultSearchParam)
	opts.LimitParam = orDefault(opts.LimitParam, DefaultLimitParam)
	opts.ExcludeParam = orDefault(opts.ExcludeParam, DefaultExcludeParam)
	opts.CategoryParam = orDefault(opts.CategoryParam, DefaultCategoryParam)
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultLimit
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = DefaultMaxLimit
	}
	if opts.EmptySearchMode != EmptySearchTop {
		opts.EmptySearchMode = EmptySearchNone
	}
	if opts.MaxAge < 0 {
		opts.MaxAge = 0
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.ExcludedCategories != nil {
		categories := make([]string, 0, len(opts.ExcludedCategories))
		for _, category := range opts.ExcludedCategories {
			if category = strings.ToLower(strings.TrimSpace(category)); category != "" {
				categories = append(categories, category)
			}
		}
		opts.ExcludedCategories = categories
	}
	if opts.Items != nil {
		opts.Items = append([]Item{}, opts.Items...)
	}
	return opts
}

func orDefault(value, fallback string) string {
	if value = strings.TrimSpace(value); value == "" {
		return fallback
	}
	return value
}

// items returns the configured items or the embedded catalog.
func (o Options) items() ([]Item, error) {
	if o.Items != nil {
		return o.Items, nil
	}
	items, err := DefaultItems()
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrMissingItems
	}
	return items, nil
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) { o.RoutePath = path }
}

func WithSearchParam(name string) OptionFn {
	return func(o *Options) { o.SearchParam = name }
}

func WithLimitParam(name string) OptionFn {
	return func(o *Options) { o.LimitParam = name }
}

func WithExcludeParam(name string) OptionFn {
	return func(o *Options) { o.ExcludeParam = name }
}

// WithCategoryParam renames the query parameter that narrows results to one
// category.
func WithCategoryParam(name string) OptionFn {
	return func(o *Options) { o.CategoryParam = name }
}

func WithDefaultLimit(limit int) OptionFn {
	return func(o *Options) { o.DefaultLimit = limit }
}

func WithMaxLimit(limit int) OptionFn {
	return func(o *Options) { o.MaxLimit = limit }
}

func WithEmptySearchMode(mode EmptySearchMode) OptionFn {
	return func(o *Options) { o.EmptySearchMode = mode }
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) { o.Guard = guard }
}

func WithMaxAge(age time.Duration) OptionFn {
	return func(o *Options) { o.MaxAge = age }
}

func WithLogger(logger *zap.Logger) OptionFn {
	return func(o *Options) { o.Logger = logger }
}

// WithExcludedCategories replaces the categories dropped by the exclusion
// flag. An empty list disables exclusion.
func WithExcludedCategories(categories ...string) OptionFn {
	return func(o *Options) { o.ExcludedCategories = append([]string{}, categories...) }
}

// WithItems replaces the embedded catalog. Passing nil restores it.
func WithItems(items []Item) OptionFn {
	return func(o *Options) {
		if items == nil {
			o.Items = nil
			return
		}
		o.Items = append([]Item{}, items...)
	}
}

func clampLimit(limit int, opts Options) int {
	switch {
	case limit < 0:
		return 0
	case limit == 0:
		limit = opts.DefaultLimit
	}
	if opts.MaxLimit > 0 && limit > opts.MaxLimit {
		return opts.MaxLimit
	}
	return limit
}
