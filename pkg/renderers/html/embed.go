package html

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

//go:embed assets/*
var embeddedAssets embed.FS

const StylesheetName = "formset.css"

// Partial keys a theme can override through RendererConfig.Partials.
const (
	PartialExtra       = "formset.extra"
	PartialFormSet     = "formset.form"
	PartialSuggestions = "formset.suggestions"
)

var defaultPartials = map[string]string{
	PartialExtra:       "extra",
	PartialFormSet:     "formset",
	PartialSuggestions: "suggestions",
}

// TemplatesFS exposes the embedded template bundle.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

// AssetsFS exposes the embedded stylesheet so callers can serve it.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}
