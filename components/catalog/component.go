package catalog

import (
	"context"
	"net/http"

	"github.com/goliatone/go-formset/pkg/formset"
)

// Component wraps the catalog handler, its configuration and routing
// helpers, and doubles as an in-process search provider.
type Component struct {
	opts Options
}

// New constructs a component with default options plus any overrides.
func New(fns ...OptionFn) *Component {
	return &Component{opts: NewOptions(fns...)}
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	if c == nil {
		return DefaultOptions()
	}
	return NewOptions(func(o *Options) { *o = c.opts })
}

// Handler returns a net/http handler for catalog queries.
func (c *Component) Handler() http.Handler {
	if c == nil {
		return Handler()
	}
	return HandlerWithOptions(c.opts)
}

// RegisterRoutes registers the component handler under basePath on mux.
func (c *Component) RegisterRoutes(mux Mux, basePath string) (string, error) {
	if c == nil {
		return RegisterRoutes(mux, basePath)
	}
	return RegisterRoutesWithOptions(mux, basePath, c.opts)
}

// Provider returns a formset.SearchProvider that queries the catalog
// directly, skipping HTTP.
func (c *Component) Provider() formset.SearchProvider {
	return Provider{opts: c.Options()}
}

// Provider searches a catalog in-process.
type Provider struct {
	opts Options
}

// NewProvider builds an in-process provider.
func NewProvider(fns ...OptionFn) Provider {
	return Provider{opts: NewOptions(fns...)}
}

func (p Provider) Search(ctx context.Context, req formset.SearchRequest) ([]formset.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items, err := p.opts.items()
	if err != nil {
		return nil, err
	}
	results := SearchCandidates(items, Query{Term: req.Term, Exclude: req.Exclude}, p.opts)
	if results == nil {
		results = []formset.Candidate{}
	}
	return results, nil
}
