package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	gofs "github.com/goliatone/go-formset"
	"github.com/goliatone/go-formset/components/catalog"
	"github.com/goliatone/go-formset/components/catalog/formsetwiring"
	"github.com/goliatone/go-formset/pkg/config"
	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/openapi"
	formsethtml "github.com/goliatone/go-formset/pkg/renderers/html"
	"github.com/goliatone/go-formset/pkg/search"
)

// runtime bundles what both serve and edit need.
type runtime struct {
	controller []formset.OptionFn
	catalog    *catalog.Component
	renderer   *formsethtml.Renderer
}

// buildRuntime resolves the search provider: a remote endpoint when
// formset.src is an absolute URL, the bundled catalog otherwise.
func buildRuntime(cfg config.Config, basePath string, log *zap.Logger) (*runtime, error) {
	rt := &runtime{}

	var fns []formset.OptionFn
	src := strings.TrimSpace(cfg.FormSet.Src)
	remote := strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")

	if !cfg.Catalog.Disabled {
		catalogFns, err := catalogOptions(cfg.Catalog, log)
		if err != nil {
			return nil, err
		}
		rt.catalog = catalog.New(catalogFns...)
		if !remote {
			fns = append(fns, formsetwiring.ControllerOptions(basePath, catalogFns...)...)
			fns = append(fns, formset.WithProvider(rt.catalog.Provider()))
		}
	}

	// File settings win over catalog-derived defaults.
	fns = append(fns, cfg.Options()...)

	if remote {
		searchOpts := []search.Option{
			search.WithTimeout(cfg.Search.Timeout.Duration),
			search.WithCache(cfg.Search.CacheSize, cfg.Search.CacheTTL.Duration),
			search.WithLogger(log.Named("search")),
		}
		if ua := strings.TrimSpace(cfg.Search.UserAgent); ua != "" {
			searchOpts = append(searchOpts, search.WithUserAgent(ua))
		}
		client, err := search.New(src, searchOpts...)
		if err != nil {
			return nil, err
		}
		fns = append(fns, formset.WithProvider(client))
	} else if rt.catalog == nil {
		return nil, fmt.Errorf("no search provider: set formset.src to an http(s) endpoint or enable the catalog")
	}
	rt.controller = fns

	renderer, err := buildRenderer(cfg, formset.NewOptions(fns...), log)
	if err != nil {
		return nil, err
	}
	rt.renderer = renderer
	rt.controller = append(rt.controller, formset.WithOnAdded(formsethtml.SanitizeHook(passThrough)))
	return rt, nil
}

func passThrough(markup string, _ formset.Candidate) (string, error) {
	return markup, nil
}

func catalogOptions(cc config.CatalogConfig, log *zap.Logger) ([]catalog.OptionFn, error) {
	fns := []catalog.OptionFn{
		catalog.WithLogger(log.Named("catalog")),
		catalog.WithMaxAge(cc.MaxAge.Duration),
	}
	if cc.ExcludedCategories != nil {
		fns = append(fns, catalog.WithExcludedCategories(cc.ExcludedCategories...))
	}
	if path := strings.TrimSpace(cc.Path); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open catalog %s: %w", path, err)
		}
		defer f.Close()
		items, err := catalog.LoadItems(f)
		if err != nil {
			return nil, fmt.Errorf("load catalog %s: %w", path, err)
		}
		fns = append(fns, catalog.WithItems(items))
	}
	return fns, nil
}

func buildRenderer(cfg config.Config, opts formset.Options, log *zap.Logger) (*formsethtml.Renderer, error) {
	rendererOpts := []formsethtml.Option{
		formsethtml.WithFormsetOptions(opts),
		formsethtml.WithLogger(log.Named("html")),
	}
	if label := strings.TrimSpace(cfg.Theme.SearchLabel); label != "" {
		rendererOpts = append(rendererOpts, formsethtml.WithSearchLabel(label))
	}
	if dir := strings.TrimSpace(cfg.Theme.Templates); dir != "" {
		rendererOpts = append(rendererOpts, formsethtml.WithTemplatesFS(os.DirFS(dir)))
	}
	if path := strings.TrimSpace(cfg.Theme.Manifest); path != "" {
		manifest, err := formsethtml.LoadThemeManifest(path)
		if err != nil {
			return nil, err
		}
		if name := strings.TrimSpace(cfg.Theme.Name); name != "" && name != manifest.Name {
			return nil, fmt.Errorf("theme manifest %s declares %q, config wants %q", path, manifest.Name, name)
		}
		themeCfg, err := formsethtml.ThemeFromManifest(manifest, cfg.Theme.Variant)
		if err != nil {
			return nil, err
		}
		rendererOpts = append(rendererOpts, formsethtml.WithTheme(themeCfg))
	}
	return formsethtml.New(rendererOpts...)
}

// applyOpenAPI replaces the form-set section with the x-formset declaration
// named key (or the only one declared).
func applyOpenAPI(ctx context.Context, cfg *config.Config, source, key string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	sets, err := gofs.LoadFormSets(ctx, source)
	if err != nil {
		return err
	}

	var set openapi.FormSet
	switch {
	case key != "":
		set, err = openapi.Find(sets, key)
		if err != nil {
			return err
		}
	case len(sets) == 1:
		set = sets[0]
	case len(sets) == 0:
		return openapi.ErrNoFormSets
	default:
		return fmt.Errorf("%d form-sets declared in %s; pick one with --formset", len(sets), source)
	}

	cfg.FormSet = set.Config
	return cfg.Validate()
}
