package formset

import (
	"io/fs"

	formsethtml "github.com/goliatone/go-formset/pkg/renderers/html"
)

// AssetsFS exposes the form-set stylesheet so Go applications can serve it.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(formset.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return formsethtml.AssetsFS()
}

// EmbeddedTemplates exposes the built-in templates so callers can copy or
// override them.
func EmbeddedTemplates() fs.FS {
	return formsethtml.TemplatesFS()
}
