package formset

import (
	"context"
	"fmt"
	"strings"

	pkgopenapi "github.com/goliatone/go-formset/pkg/openapi"
)

// LoadFormSets reads an OpenAPI document from a file path or http(s) URL and
// returns its x-formset declarations.
func LoadFormSets(ctx context.Context, source string) ([]pkgopenapi.FormSet, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("formset: OpenAPI source is required")
	}

	var (
		doc pkgopenapi.Document
		err error
	)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		doc, err = pkgopenapi.LoadURL(ctx, nil, source)
	} else {
		doc, err = pkgopenapi.LoadFile(source)
	}
	if err != nil {
		return nil, err
	}
	return pkgopenapi.Extract(ctx, doc)
}

// ControllerFromOpenAPI builds a controller for the form-set declared as key
// (operationId.property). extra options apply after the declared ones.
func ControllerFromOpenAPI(ctx context.Context, source, key string, extra ...OptionFn) (*Controller, error) {
	sets, err := LoadFormSets(ctx, source)
	if err != nil {
		return nil, err
	}
	set, err := pkgopenapi.Find(sets, key)
	if err != nil {
		return nil, err
	}
	return NewController(nil, append(set.Options(), extra...)...)
}
