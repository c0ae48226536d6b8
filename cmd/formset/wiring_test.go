package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/goliatone/go-formset/pkg/config"
	"github.com/goliatone/go-formset/pkg/formset"
)

func TestBuildRuntime_CatalogProvider(t *testing.T) {
	cfg := config.Default()

	rt, err := buildRuntime(cfg, "/app", zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, rt.catalog)

	opts := formset.NewOptions(rt.controller...)
	require.Equal(t, "/app/api/addons/search", opts.Src)
	require.Equal(t, "addon", opts.HiddenField)
	require.True(t, opts.ExcludeCategories)
	require.NotNil(t, opts.Provider)

	ctrl, err := formset.New(nil, append(rt.controller, formset.WithRenderer(rt.renderer))...)
	require.NoError(t, err)
	results, err := ctrl.Suggest(context.Background(), "dictionary")
	require.NoError(t, err)
	require.NotNil(t, results)
}

func TestBuildRuntime_RemoteProvider(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"key":"7","label":"Remote"}]`))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.FormSet.Src = srv.URL + "/search"
	cfg.Catalog.Disabled = true

	rt, err := buildRuntime(cfg, "", zap.NewNop())
	require.NoError(t, err)
	require.Nil(t, rt.catalog)

	ctrl, err := formset.New(nil, rt.controller...)
	require.NoError(t, err)
	results, err := ctrl.Suggest(context.Background(), "remote")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Contains(t, gotQuery, "q=remote")
}

func TestBuildRuntime_NoProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Catalog.Disabled = true

	_, err := buildRuntime(cfg, "", zap.NewNop())
	require.Error(t, err)
}

func TestApplyOpenAPI_SelectsDeclaredFormSet(t *testing.T) {
	doc := `openapi: 3.0.3
info: {title: t, version: "1"}
paths:
  /orders:
    post:
      operationId: createOrder
      requestBody:
        content:
          application/json:
            schema:
              type: object
              properties:
                gifts:
                  type: array
                  x-formset: {minSearchLength: 1}
                  items:
                    type: object
                    properties:
                      product: {type: string}
      responses:
        "200": {description: ok}
`
	path := filepath.Join(t.TempDir(), "openapi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg := config.Default()
	require.NoError(t, applyOpenAPI(context.Background(), &cfg, path, ""))
	require.Equal(t, "gifts", cfg.FormSet.Prefix)
	require.Equal(t, "product", cfg.FormSet.HiddenField)

	err := applyOpenAPI(context.Background(), &cfg, path, "createOrder.missing")
	require.Error(t, err)
}

func TestBuildRenderer_ThemeSettings(t *testing.T) {
	manifest := filepath.Join("..", "..", "pkg", "renderers", "html", "testdata", "theme.yaml")

	cfg := config.Default()
	cfg.Theme.Manifest = manifest
	cfg.Theme.Variant = "dark"
	cfg.Theme.SearchLabel = "Find an add-on"

	renderer, err := buildRenderer(cfg, formset.NewOptions(cfg.Options()...), zap.NewNop())
	require.NoError(t, err)
	state, err := formset.NewState("form")
	require.NoError(t, err)
	page, err := renderer.RenderFormSet(context.Background(), state)
	require.NoError(t, err)
	require.Contains(t, page, `placeholder="Find an add-on"`)
	require.Contains(t, page, `data-theme="acme"`)

	cfg.Theme.Name = "other"
	_, err = buildRenderer(cfg, formset.NewOptions(cfg.Options()...), zap.NewNop())
	require.ErrorContains(t, err, `config wants "other"`)
}
