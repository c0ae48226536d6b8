// Package template defines the template engine seam used by the form-set
// renderers. The gotemplate sub-package provides the pongo2-backed engine.
package template
