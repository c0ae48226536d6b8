package formset

import (
	"context"
	"strconv"
	"strings"
)

// SearchRequest is the keyed lookup issued for one qualifying keystroke.
type SearchRequest struct {
	Term string
	// Field is the query parameter carrying Term (default "q").
	Field string
	// Exclude asks the provider to drop excluded categories; ExcludeParam
	// names the flag on the wire.
	Exclude      bool
	ExcludeParam string
}

// SearchProvider resolves a query term into candidates.
type SearchProvider interface {
	Search(ctx context.Context, req SearchRequest) ([]Candidate, error)
}

// SearchFunc adapts a plain function to SearchProvider.
type SearchFunc func(ctx context.Context, req SearchRequest) ([]Candidate, error)

func (fn SearchFunc) Search(ctx context.Context, req SearchRequest) ([]Candidate, error) {
	return fn(ctx, req)
}

// Renderer produces the markup of a new Extra entry for slot index.
type Renderer interface {
	RenderExtra(ctx context.Context, index int, candidate Candidate) (string, error)
}

// TemplateRenderer is the default Renderer: it substitutes the placeholder
// in a fixed extra-entry template.
type TemplateRenderer struct {
	Template    string
	Placeholder string
}

func (r TemplateRenderer) RenderExtra(ctx context.Context, index int, _ Candidate) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	placeholder := r.Placeholder
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	return strings.ReplaceAll(r.Template, placeholder, strconv.Itoa(index)), nil
}
