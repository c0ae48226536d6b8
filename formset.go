// Package formset is the top-level entry point for go-formset: aliases for
// the controller types plus shortcuts that wire the HTML renderer and
// OpenAPI-declared configuration.
package formset

import (
	"context"

	pkgformset "github.com/goliatone/go-formset/pkg/formset"
	formsethtml "github.com/goliatone/go-formset/pkg/renderers/html"
)

// Controller aliases the form-set controller.
type Controller = pkgformset.Controller

// Options aliases the controller configuration.
type Options = pkgformset.Options

// OptionFn aliases a controller option.
type OptionFn = pkgformset.OptionFn

// Candidate aliases a search result.
type Candidate = pkgformset.Candidate

// State aliases the entry collection.
type State = pkgformset.State

// NewController builds a controller whose entries are rendered by the
// embedded HTML templates.
func NewController(state *State, options ...OptionFn) (*Controller, error) {
	renderer, err := formsethtml.New(formsethtml.WithFormsetOptions(pkgformset.NewOptions(options...)))
	if err != nil {
		return nil, err
	}
	all := make([]OptionFn, 0, len(options)+1)
	all = append(all, pkgformset.WithRenderer(renderer))
	all = append(all, options...)
	return pkgformset.New(state, all...)
}

// RenderHTML renders state as a complete form-set: management fields,
// entries, the extra-entry template and the autocomplete input.
func RenderHTML(ctx context.Context, state *State, options ...OptionFn) (string, error) {
	renderer, err := formsethtml.New(formsethtml.WithFormsetOptions(pkgformset.NewOptions(options...)))
	if err != nil {
		return "", err
	}
	return renderer.RenderFormSet(ctx, state)
}
