package formset

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

const (
	DefaultDelegate        = "body"
	DefaultExtraForm       = ".extra-form"
	DefaultRemoveClass     = "remove"
	DefaultFormSelector    = "li"
	DefaultFormPK          = "id"
	DefaultInput           = "input.autocomplete"
	DefaultSearchField     = "q"
	DefaultExcludeParam    = "exclude_personas"
	DefaultMinSearchLength = 3
	DefaultWidth           = 300
)

// AddedHook customises the markup of a newly created entry. It receives the
// rendered extra-entry template and the selected candidate and returns the
// markup to insert.
type AddedHook func(markup string, candidate Candidate) (string, error)

// RemovedHook is invoked after an entry is hidden and flagged deleted, before
// Extra entries are destroyed.
type RemovedHook func(entry *Entry)

// AutocompleteFunc replaces the default search path entirely: no minimum
// length, no provider call, no duplicate filtering.
type AutocompleteFunc func(ctx context.Context, term string) ([]Candidate, error)

// Options configures a Controller. Selector-valued options (Delegate, Forms,
// ExtraForm, FormSelector, Input) are not interpreted by the controller; they
// are handed to renderers so the emitted markup and the client runtime agree.
type Options struct {
	Delegate          string
	Forms             string
	ExtraForm         string
	Prefix            string
	HiddenField       string
	RemoveClass       string
	FormSelector      string
	FormPK            string
	Src               string
	Input             string
	SearchField       string
	ExcludeCategories bool
	ExcludeParam      string
	MinSearchLength   int
	Width             int
	Placeholder       string
	ExtraTemplate     string

	OnAdded      AddedHook
	OnRemoved    RemovedHook
	Autocomplete AutocompleteFunc

	Renderer Renderer
	Provider SearchProvider
	Logger   *zap.Logger
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		Delegate:          DefaultDelegate,
		ExtraForm:         DefaultExtraForm,
		Prefix:            DefaultPrefix,
		RemoveClass:       DefaultRemoveClass,
		FormSelector:      DefaultFormSelector,
		FormPK:            DefaultFormPK,
		Input:             DefaultInput,
		SearchField:       DefaultSearchField,
		ExcludeCategories: true,
		ExcludeParam:      DefaultExcludeParam,
		MinSearchLength:   DefaultMinSearchLength,
		Width:             DefaultWidth,
		Placeholder:       DefaultPlaceholder,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	opts.Prefix = strings.TrimSpace(opts.Prefix)
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	opts.HiddenField = strings.TrimSpace(opts.HiddenField)
	if opts.Delegate == "" {
		opts.Delegate = DefaultDelegate
	}
	if opts.ExtraForm == "" {
		opts.ExtraForm = DefaultExtraForm
	}
	if opts.RemoveClass == "" {
		opts.RemoveClass = DefaultRemoveClass
	}
	if opts.FormSelector == "" {
		opts.FormSelector = DefaultFormSelector
	}
	if opts.FormPK == "" {
		opts.FormPK = DefaultFormPK
	}
	if opts.Input == "" {
		opts.Input = DefaultInput
	}
	if opts.SearchField == "" {
		opts.SearchField = DefaultSearchField
	}
	if opts.ExcludeParam == "" {
		opts.ExcludeParam = DefaultExcludeParam
	}
	if opts.MinSearchLength < 0 {
		opts.MinSearchLength = DefaultMinSearchLength
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Placeholder == "" {
		opts.Placeholder = DefaultPlaceholder
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return opts
}

func WithDelegate(selector string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Delegate = selector
	}
}

func WithForms(selector string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Forms = selector
	}
}

func WithExtraForm(selector string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.ExtraForm = selector
	}
}

func WithPrefix(prefix string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Prefix = prefix
	}
}

func WithHiddenField(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.HiddenField = name
	}
}

func WithRemoveClass(class string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RemoveClass = class
	}
}

func WithFormSelector(selector string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.FormSelector = selector
	}
}

func WithFormPK(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.FormPK = name
	}
}

func WithSearchEndpoint(src string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Src = src
	}
}

func WithInput(selector string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Input = selector
	}
}

func WithSearchField(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.SearchField = name
	}
}

func WithExcludeCategories(exclude bool) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.ExcludeCategories = exclude
	}
}

func WithExcludeParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.ExcludeParam = name
	}
}

func WithMinSearchLength(n int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MinSearchLength = n
	}
}

func WithWidth(px int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Width = px
	}
}

func WithPlaceholder(token string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Placeholder = token
	}
}

// WithExtraTemplate sets the extra-entry markup used by the default
// renderer. Every occurrence of the placeholder is replaced by the new slot
// index.
func WithExtraTemplate(markup string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.ExtraTemplate = markup
	}
}

func WithOnAdded(hook AddedHook) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.OnAdded = hook
	}
}

func WithOnRemoved(hook RemovedHook) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.OnRemoved = hook
	}
}

func WithAutocomplete(fn AutocompleteFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Autocomplete = fn
	}
}

func WithRenderer(renderer Renderer) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Renderer = renderer
	}
}

func WithProvider(provider SearchProvider) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Provider = provider
	}
}

func WithLogger(logger *zap.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}
