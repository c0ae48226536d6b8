package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formset/pkg/formset"
)

func TestClient_SearchSendsFieldAndExclusionFlag(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"key":1,"label":"Adblock","icon":"/a.png"},{"label":"keyless"},{"key":"2","label":"Bow"}]`))
	}))
	defer srv.Close()

	client, err := New(srv.URL+"/search?app=firefox", WithUserAgent("tests"), WithHeader("X-Requested-With", "XMLHttpRequest"))
	require.NoError(t, err)

	results, err := client.Search(context.Background(), formset.SearchRequest{
		Term:         "ad b",
		Field:        "q",
		Exclude:      true,
		ExcludeParam: "exclude_personas",
	})
	require.NoError(t, err)
	require.Equal(t, []formset.Candidate{
		{Key: "1", Label: "Adblock", Icon: "/a.png"},
		{Key: "2", Label: "Bow"},
	}, results)

	require.NotNil(t, got)
	require.Equal(t, "/search", got.URL.Path)
	require.Equal(t, "ad b", got.URL.Query().Get("q"))
	require.Equal(t, "true", got.URL.Query().Get("exclude_personas"))
	require.Equal(t, "firefox", got.URL.Query().Get("app"))
	require.Equal(t, "tests", got.Header.Get("User-Agent"))
	require.Equal(t, "XMLHttpRequest", got.Header.Get("X-Requested-With"))
	require.Equal(t, "application/json", got.Header.Get("Accept"))
}

func TestClient_RequestURLOmitsFlagWhenNotExcluding(t *testing.T) {
	client, err := New("http://example.test/api")
	require.NoError(t, err)

	require.Equal(t, "http://example.test/api?term=x", client.RequestURL(formset.SearchRequest{Term: "x", Field: "term"}))
	require.Equal(t, "http://example.test/api?q=x", client.RequestURL(formset.SearchRequest{Term: "x"}))
}

func TestClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, err := New(srv.URL)
	require.NoError(t, err)

	_, err = client.Search(context.Background(), formset.SearchRequest{Term: "abc"})
	var statusErr StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode())
}

func TestClient_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	client, err := New(srv.URL)
	require.NoError(t, err)

	_, err = client.Search(context.Background(), formset.SearchRequest{Term: "abc"})
	require.Error(t, err)
}

func TestClient_CachesSuccessfulResponses(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`[{"key":"1","label":"One"}]`))
	}))
	defer srv.Close()

	client, err := New(srv.URL, WithCache(8, time.Minute))
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		results, err := client.Search(ctx, formset.SearchRequest{Term: "one"})
		require.NoError(t, err)
		require.Len(t, results, 1)
	}
	require.EqualValues(t, 1, hits.Load())

	_, err = client.Search(ctx, formset.SearchRequest{Term: "two"})
	require.NoError(t, err)
	require.EqualValues(t, 2, hits.Load())

	client.Purge()
	_, err = client.Search(ctx, formset.SearchRequest{Term: "one"})
	require.NoError(t, err)
	require.EqualValues(t, 3, hits.Load())
}

func TestClient_TimeoutHonoured(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client, err := New(srv.URL, WithTimeout(20*time.Millisecond))
	require.NoError(t, err)

	_, err = client.Search(context.Background(), formset.SearchRequest{Term: "slow"})
	require.Error(t, err)
	require.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestNew_RequiresEndpoint(t *testing.T) {
	_, err := New("  ")
	require.ErrorIs(t, err, ErrMissingEndpoint)
}

func TestClient_DrivesController(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"key":"5","label":"Gift wrap"},{"key":"6","label":"Gift card"}]`))
	}))
	defer srv.Close()

	client, err := New(srv.URL)
	require.NoError(t, err)

	ctrl, err := formset.New(nil,
		formset.WithHiddenField("addon"),
		formset.WithProvider(client),
		formset.WithExtraTemplate(`<li><input type="hidden" name="form-__prefix__-addon"/></li>`),
	)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = ctrl.AddFromCandidate(ctx, formset.Candidate{Key: "5", Label: "Gift wrap"})
	require.NoError(t, err)

	suggestions, err := ctrl.Suggest(ctx, "gift")
	require.NoError(t, err)
	require.Equal(t, []formset.Candidate{{Key: "6", Label: "Gift card"}}, suggestions)
}
