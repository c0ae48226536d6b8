// Package formsetwiring maps catalog component settings onto form-set
// controller options so both sides agree on the endpoint and its parameters.
package formsetwiring

import (
	"github.com/goliatone/go-formset/components/catalog"
	"github.com/goliatone/go-formset/pkg/formset"
)

// ControllerOptions returns controller options pointing the autocomplete at
// the catalog search endpoint mounted under basePath:
// - search endpoint <basePath><RoutePath>
// - search field = catalog SearchParam
// - exclusion flag name = catalog ExcludeParam, enabled only when the
//   catalog excludes at least one category
func ControllerOptions(basePath string, fns ...catalog.OptionFn) []formset.OptionFn {
	opts := catalog.NewOptions(fns...)
	endpoint := catalog.MountPath(basePath, func(o *catalog.Options) {
		if o == nil {
			return
		}
		*o = opts
	})

	return []formset.OptionFn{
		formset.WithSearchEndpoint(endpoint),
		formset.WithSearchField(opts.SearchParam),
		formset.WithExcludeParam(opts.ExcludeParam),
		formset.WithExcludeCategories(len(opts.ExcludedCategories) > 0),
	}
}

// InProcess returns ControllerOptions plus the catalog itself as the search
// provider, for callers that host the catalog in the same process.
func InProcess(basePath string, fns ...catalog.OptionFn) []formset.OptionFn {
	component := catalog.New(fns...)
	out := ControllerOptions(basePath, fns...)
	return append(out, formset.WithProvider(component.Provider()))
}
