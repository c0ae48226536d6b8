// Package httpapi exposes form-set sessions over HTTP.
//
// Routes, relative to the configured base path:
//
//	POST   /formsets                      create a session (form body optional)
//	GET    /formsets/{id}                 render the form-set as HTML
//	DELETE /formsets/{id}                 drop the session
//	GET    /formsets/{id}/suggestions?q=  run a query (JSON, or HTML with format=html)
//	POST   /formsets/{id}/events          dispatch a JSON or form-encoded event
//	GET    /formsets/{id}/management      submission values (format=json for JSON)
//	GET    /assets/*                      embedded stylesheet
//	GET    /healthz                       liveness
//
// The add-on catalog search route is mounted when a catalog component is
// configured.
package httpapi
