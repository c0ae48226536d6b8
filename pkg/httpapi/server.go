package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/goliatone/go-formset/pkg/formset"
	formsethtml "github.com/goliatone/go-formset/pkg/renderers/html"
	"github.com/goliatone/go-formset/pkg/session"
)

// Server serves form-set sessions.
type Server struct {
	router   *mux.Router
	store    *session.Store
	renderer *formsethtml.Renderer
	opts     Options
	logger   *zap.Logger
	base     string
}

// New wires the routes. The renderer must be built from the same form-set
// options passed through WithControllerOptions.
func New(store *session.Store, renderer *formsethtml.Renderer, options ...Option) (*Server, error) {
	if store == nil {
		return nil, errors.New("httpapi: session store is required")
	}
	if renderer == nil {
		return nil, errors.New("httpapi: renderer is required")
	}

	opts := Options{Logger: zap.NewNop(), MaxBodyBytes: defaultMaxBodyBytes}
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}

	s := &Server{
		router:   mux.NewRouter(),
		store:    store,
		renderer: renderer,
		opts:     opts,
		logger:   opts.Logger,
		base:     normaliseBase(opts.BasePath),
	}
	if err := s.routes(); err != nil {
		return nil, err
	}
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Router exposes the underlying router for extra routes.
func (s *Server) Router() *mux.Router {
	return s.router
}

func (s *Server) routes() error {
	s.router.Use(logRequests(s.logger))

	api := s.router
	if s.base != "" {
		api = s.router.PathPrefix(s.base).Subrouter()
	}

	api.HandleFunc("/healthz", s.health).Methods(http.MethodGet)
	api.HandleFunc("/formsets", s.create).Methods(http.MethodPost)
	api.HandleFunc("/formsets/{id}", s.render).Methods(http.MethodGet)
	api.HandleFunc("/formsets/{id}", s.remove).Methods(http.MethodDelete)
	api.HandleFunc("/formsets/{id}/suggestions", s.suggestions).Methods(http.MethodGet)
	api.HandleFunc("/formsets/{id}/events", s.events).Methods(http.MethodPost)
	api.HandleFunc("/formsets/{id}/management", s.management).Methods(http.MethodGet)

	assets := s.path("/assets/")
	api.PathPrefix("/assets/").
		Handler(http.StripPrefix(assets, http.FileServer(http.FS(formsethtml.AssetsFS())))).
		Methods(http.MethodGet, http.MethodHead)

	if s.opts.Catalog != nil {
		pattern, err := s.opts.Catalog.RegisterRoutes(routeAdder{api}, "")
		if err != nil {
			return fmt.Errorf("httpapi: mount catalog: %w", err)
		}
		s.logger.Info("catalog search mounted", zap.String("path", s.path(pattern)))
	}
	return nil
}

// controllerOptions are the options every session controller is built with.
func (s *Server) controllerOptions() []formset.OptionFn {
	out := make([]formset.OptionFn, 0, len(s.opts.Controller)+2)
	out = append(out, s.opts.Controller...)
	out = append(out,
		formset.WithRenderer(s.renderer),
		formset.WithLogger(s.logger),
	)
	return out
}

func (s *Server) path(p string) string {
	return s.base + p
}

func normaliseBase(base string) string {
	base = strings.TrimSpace(base)
	if base == "" || base == "/" {
		return ""
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	return strings.TrimRight(base, "/")
}

// routeAdder adapts *mux.Router to catalog.Mux.
type routeAdder struct {
	router *mux.Router
}

func (a routeAdder) Handle(pattern string, handler http.Handler) {
	a.router.Handle(pattern, handler)
}
