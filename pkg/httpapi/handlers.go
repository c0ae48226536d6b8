package httpapi

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/goliatone/go-formset/pkg/dispatch"
	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/session"
)

type createdBody struct {
	ID       string `json:"id"`
	Location string `json:"location"`
	Total    int    `json:"total"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "OK")
}

// create starts a session. A body carrying the management fields seeds the
// form-set the way a re-displayed submission would.
func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeError(w, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}

	fns := s.controllerOptions()
	prefix := formset.NewOptions(fns...).Prefix

	var state *formset.State
	if r.PostForm.Has(formset.TotalFormsName(prefix)) {
		parsed, err := formset.ParseManagementForm(r.PostForm, fns...)
		if err != nil {
			writeError(w, err)
			return
		}
		state = parsed
	}

	sess, err := s.store.Create(state, fns...)
	if err != nil {
		writeError(w, err)
		return
	}

	var total int
	_ = sess.Dispatcher.Do(func(ctrl *formset.Controller) error {
		total = ctrl.State().Total()
		return nil
	})

	location := s.path("/formsets/" + sess.ID)
	w.Header().Set("Location", location)
	writeJSON(w, http.StatusCreated, createdBody{ID: sess.ID, Location: location, Total: total})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var out string
	err := sess.Dispatcher.Do(func(ctrl *formset.Controller) error {
		var err error
		out, err = s.renderer.RenderFormSet(r.Context(), ctrl.State())
		return err
	})
	if err != nil {
		s.logger.Error("render form-set", zap.String("session", sess.ID), zap.Error(err))
		writeError(w, err)
		return
	}
	writeHTML(w, out)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.store.Delete(id) {
		writeError(w, fmt.Errorf("%w: %q", session.ErrNotFound, id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) suggestions(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	resp, err := sess.Dispatcher.Dispatch(r.Context(), dispatch.Event{
		Type: dispatch.EventQuery,
		Term: r.URL.Query().Get("q"),
	})
	if err != nil {
		s.logger.Warn("suggestions", zap.String("session", sess.ID), zap.Error(err))
		writeJSON(w, statusFor(err), resp)
		return
	}

	if wantsHTML(r) {
		out, err := s.renderer.RenderSuggestions(r.Context(), resp.Suggestions)
		if err != nil {
			writeError(w, err)
			return
		}
		writeHTML(w, out)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)

	ev, err := decodeEvent(r)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}

	resp, err := sess.Dispatcher.Dispatch(r.Context(), ev)
	if err != nil {
		if resp.Error == "" {
			resp.Error = err.Error()
		}
		writeJSON(w, statusFor(err), resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) management(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var values url.Values
	_ = sess.Dispatcher.Do(func(ctrl *formset.Controller) error {
		values = ctrl.Values()
		return nil
	})

	if strings.EqualFold(r.URL.Query().Get("format"), "json") {
		writeJSON(w, http.StatusOK, values)
		return
	}
	w.Header().Set("Content-Type", "application/x-www-form-urlencoded")
	_, _ = io.WriteString(w, values.Encode())
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.store.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return sess, true
}

func decodeEvent(r *http.Request) (dispatch.Event, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		return dispatch.DecodeEvent(r.Body)
	}
	if err := r.ParseForm(); err != nil {
		return dispatch.Event{}, err
	}
	return dispatch.EventFromForm(r.PostForm)
}

func wantsHTML(r *http.Request) bool {
	if format := r.URL.Query().Get("format"); format != "" {
		return strings.EqualFold(format, "html")
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") && !strings.Contains(accept, "application/json")
}

func writeHTML(w http.ResponseWriter, markup string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, markup)
}
