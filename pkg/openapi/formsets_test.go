package openapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/openapi"
)

func TestExtract_DeclaredFormSets(t *testing.T) {
	doc, err := openapi.LoadFile(filepath.Join("testdata", "orders.yaml"))
	require.NoError(t, err)
	require.Equal(t, openapi.SourceKindFile, doc.Source().Kind())

	sets, err := openapi.Extract(context.Background(), doc, openapi.WithValidation(true))
	require.NoError(t, err)
	require.Len(t, sets, 2)

	addons, err := openapi.Find(sets, "createOrder.addons")
	require.NoError(t, err)
	require.Equal(t, http.MethodPost, addons.Method)
	require.Equal(t, "/orders", addons.Path)
	require.Equal(t, "addons", addons.Config.Prefix)
	require.Equal(t, "addon", addons.Config.HiddenField)
	require.Equal(t, "/api/addons/search", addons.Config.Src)
	require.NotNil(t, addons.Config.MinSearchLength)
	require.Equal(t, 2, *addons.Config.MinSearchLength)

	opts := formset.NewOptions(addons.Options()...)
	require.Equal(t, "addons", opts.Prefix)
	require.False(t, opts.ExcludeCategories)
	require.Equal(t, 2, opts.MinSearchLength)

	gifts, err := openapi.Find(sets, "put:/orders/{id}.gifts")
	require.NoError(t, err)
	require.Equal(t, http.MethodPut, gifts.Method)
	require.Equal(t, "gifts", gifts.Config.Prefix)
	require.Equal(t, "product", gifts.Config.HiddenField)
}

func TestExtract_AmbiguousHiddenField(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "ambiguous.json"))
	require.NoError(t, err)

	doc, err := openapi.LoadFS(fstest.MapFS{"spec.json": {Data: data}}, "spec.json")
	require.NoError(t, err)

	_, err = openapi.Extract(context.Background(), doc)
	require.Error(t, err)
	require.Contains(t, err.Error(), "hiddenField")
	require.Contains(t, err.Error(), "createCart")
}

func TestExtract_LoadURL(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "orders.yaml"))
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	doc, err := openapi.LoadURL(context.Background(), srv.Client(), srv.URL+"/openapi.yaml")
	require.NoError(t, err)
	require.Equal(t, openapi.SourceKindURL, doc.Source().Kind())
	require.True(t, strings.HasPrefix(doc.Location(), srv.URL))

	sets, err := openapi.Extract(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, sets, 2)
}

func TestFind_Errors(t *testing.T) {
	_, err := openapi.Find(nil, "x.y")
	require.ErrorIs(t, err, openapi.ErrNoFormSets)

	_, err = openapi.Find([]openapi.FormSet{{OperationID: "a", Property: "b"}}, "a.c")
	require.Error(t, err)
}

func TestSourceFromURL_RejectsInvalid(t *testing.T) {
	_, err := openapi.SourceFromURL("::not a url")
	require.Error(t, err)
}
