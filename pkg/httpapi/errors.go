package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/goliatone/go-formset/pkg/dispatch"
	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/session"
)

// errBadRequest marks request decoding failures.
var errBadRequest = errors.New("httpapi: bad request")

type errorBody struct {
	Error string `json:"error"`
}

func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, session.ErrNotFound), errors.Is(err, formset.ErrUnknownEntry):
		return http.StatusNotFound
	case errors.Is(err, dispatch.ErrSearchFailed):
		return http.StatusBadGateway
	case errors.Is(err, errBadRequest),
		errors.Is(err, dispatch.ErrUnknownEvent),
		errors.Is(err, dispatch.ErrMissingIndex),
		errors.Is(err, formset.ErrManagementForm),
		errors.Is(err, formset.ErrInvalidState):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorBody{Error: err.Error()})
}
