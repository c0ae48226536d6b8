package catalog

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formset/pkg/formset"
)

// Handler builds the catalog search handler with default options plus any
// overrides.
func Handler(fns ...OptionFn) http.Handler {
	return HandlerWithOptions(NewOptions(fns...))
}

// HandlerWithOptions builds the search handler from a pre-built Options
// value. The response body is a bare JSON array of {key, label, icon}
// objects, empty when nothing matches.
func HandlerWithOptions(opts Options) http.Handler {
	return &searchHandler{opts: NewOptions(func(o *Options) { *o = opts })}
}

type searchHandler struct {
	opts Options
}

func (h *searchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	if h.opts.Guard != nil {
		if err := h.opts.Guard(r); err != nil {
			code := guardStatus(err)
			h.opts.Logger.Debug("catalog request rejected", zap.Int("status", code), zap.Error(err))
			http.Error(w, http.StatusText(code), code)
			return
		}
	}

	items, err := h.opts.items()
	if err != nil {
		h.opts.Logger.Error("catalog items unavailable", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := h.queryFrom(r)
	results := SearchCandidates(items, query, h.opts)
	if results == nil {
		results = []formset.Candidate{}
	}
	h.opts.Logger.Debug("catalog search",
		zap.String("term", query.Term),
		zap.String("category", query.Category),
		zap.Bool("exclude", query.Exclude),
		zap.Int("results", len(results)))

	header := w.Header()
	header.Set("Content-Type", "application/json; charset=utf-8")
	if h.opts.MaxAge > 0 {
		header.Set("Cache-Control", "public, max-age="+strconv.Itoa(int(h.opts.MaxAge.Seconds())))
	}
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(results); err != nil {
		h.opts.Logger.Warn("catalog response write failed", zap.Error(err))
	}
}

func (h *searchHandler) queryFrom(r *http.Request) Query {
	params := r.URL.Query()
	limit, _ := strconv.Atoi(strings.TrimSpace(params.Get(h.opts.LimitParam)))
	return Query{
		Term:     params.Get(h.opts.SearchParam),
		Limit:    limit,
		Exclude:  truthy(params.Get(h.opts.ExcludeParam)),
		Category: strings.ToLower(strings.TrimSpace(params.Get(h.opts.CategoryParam))),
	}
}

// truthy accepts the values browsers and the controller send for the
// exclusion flag.
func truthy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
