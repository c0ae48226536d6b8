package catalog

import (
	"errors"
	"net/http"
)

// ErrMissingItems is returned when neither configured items nor the embedded
// catalog are available.
var ErrMissingItems = errors.New("catalog: no items available")

// HTTPError lets a guard pick the rejection status.
type HTTPError interface {
	error
	StatusCode() int
}

// StatusError is an HTTPError carrying an explicit status code.
type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.StatusCode())
}

func (e StatusError) Unwrap() error { return e.Err }

// StatusCode defaults to 403 so a bare StatusError still rejects.
func (e StatusError) StatusCode() int {
	if e.Code < 400 || e.Code > 599 {
		return http.StatusForbidden
	}
	return e.Code
}

func guardStatus(err error) int {
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		if code := httpErr.StatusCode(); code >= 400 && code <= 599 {
			return code
		}
	}
	return http.StatusForbidden
}
