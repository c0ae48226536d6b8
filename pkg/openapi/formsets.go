package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formset/pkg/config"
	"github.com/goliatone/go-formset/pkg/formset"
)

const (
	// ExtensionKey marks an array property as a form-set.
	ExtensionKey = "x-formset"
	// HiddenFieldExtensionKey marks the item property holding the entry key.
	HiddenFieldExtensionKey = "x-formset-hidden"
)

var ErrNoFormSets = errors.New("openapi: no form-sets declared")

// FormSet is one x-formset declaration.
type FormSet struct {
	OperationID string
	Method      string
	Path        string
	Property    string
	Config      config.FormSetConfig
}

// Key identifies the form-set as operationId.property.
func (f FormSet) Key() string {
	return f.OperationID + "." + f.Property
}

// Options returns the controller options for the form-set.
func (f FormSet) Options() []formset.OptionFn {
	return config.Config{FormSet: f.Config}.Options()
}

// ExtractOptions configures Extract.
type ExtractOptions struct {
	// Validate runs the kin-openapi document validation first.
	Validate bool
}

// ExtractOption mutates ExtractOptions.
type ExtractOption func(*ExtractOptions)

// WithValidation toggles document validation.
func WithValidation(enabled bool) ExtractOption {
	return func(o *ExtractOptions) {
		o.Validate = enabled
	}
}

// Extract returns every form-set declared in doc, sorted by key.
func Extract(ctx context.Context, doc Document, options ...ExtractOption) ([]FormSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts := ExtractOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}

	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load %s: %w", doc.Location(), err)
	}
	if opts.Validate {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate %s: %w", doc.Location(), err)
		}
	}

	var out []FormSet
	if spec.Paths != nil {
		for path, item := range spec.Paths.Map() {
			if item == nil {
				continue
			}
			for method, op := range item.Operations() {
				sets, err := collect(method, path, op)
				if err != nil {
					return nil, err
				}
				out = append(out, sets...)
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Key() < out[j].Key()
	})
	return out, nil
}

// Find returns the form-set registered under key (operationId.property).
func Find(sets []FormSet, key string) (FormSet, error) {
	for _, set := range sets {
		if set.Key() == key {
			return set, nil
		}
	}
	if len(sets) == 0 {
		return FormSet{}, ErrNoFormSets
	}
	return FormSet{}, fmt.Errorf("openapi: form-set %q not found", key)
}

func collect(method, path string, op *openapi3.Operation) ([]FormSet, error) {
	if op == nil || op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil, nil
	}
	schema := requestSchema(op.RequestBody.Value.Content)
	if schema == nil {
		return nil, nil
	}

	opID := op.OperationID
	if opID == "" {
		opID = strings.ToLower(method) + ":" + path
	}

	var out []FormSet
	for name, prop := range schema.Properties {
		if prop == nil || prop.Value == nil {
			continue
		}
		ext, ok := prop.Value.Extensions[ExtensionKey]
		if !ok {
			continue
		}
		if !isType(prop.Value, "array") {
			return nil, fmt.Errorf("openapi: %s property %q: %s requires an array schema", opID, name, ExtensionKey)
		}

		cfg, err := decodeExtension(ext)
		if err != nil {
			return nil, fmt.Errorf("openapi: %s property %q: %w", opID, name, err)
		}
		if cfg.Prefix == "" {
			cfg.Prefix = name
		}
		if cfg.HiddenField == "" {
			cfg.HiddenField = inferHiddenField(prop.Value.Items, cfg.FormPK)
		}
		if cfg.HiddenField == "" {
			return nil, fmt.Errorf("openapi: %s property %q: cannot infer hiddenField", opID, name)
		}

		out = append(out, FormSet{
			OperationID: opID,
			Method:      strings.ToUpper(method),
			Path:        path,
			Property:    name,
			Config:      cfg,
		})
	}
	return out, nil
}

func requestSchema(content openapi3.Content) *openapi3.Schema {
	for _, mediaType := range []string{"application/x-www-form-urlencoded", "multipart/form-data", "application/json"} {
		if mt, ok := content[mediaType]; ok && mt != nil && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	for _, mt := range content {
		if mt != nil && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

// decodeExtension accepts an object or true (all defaults).
func decodeExtension(raw any) (config.FormSetConfig, error) {
	var cfg config.FormSetConfig
	switch v := raw.(type) {
	case bool:
		if !v {
			return cfg, fmt.Errorf("%s: false is not a valid declaration", ExtensionKey)
		}
		return cfg, nil
	case json.RawMessage:
		if err := json.Unmarshal(v, &cfg); err != nil {
			return cfg, fmt.Errorf("decode %s: %w", ExtensionKey, err)
		}
		return cfg, nil
	case map[string]any:
		data, err := json.Marshal(v)
		if err != nil {
			return cfg, err
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("decode %s: %w", ExtensionKey, err)
		}
		return cfg, nil
	default:
		return cfg, fmt.Errorf("%s: unsupported value %T", ExtensionKey, raw)
	}
}

// inferHiddenField picks the item property flagged x-formset-hidden, or the
// only property other than the primary key.
func inferHiddenField(items *openapi3.SchemaRef, pk string) string {
	if items == nil || items.Value == nil {
		return ""
	}
	if pk == "" {
		pk = formset.DefaultFormPK
	}

	names := make([]string, 0, len(items.Value.Properties))
	for name, prop := range items.Value.Properties {
		if prop != nil && prop.Value != nil {
			if flag, ok := prop.Value.Extensions[HiddenFieldExtensionKey].(bool); ok && flag {
				return name
			}
		}
		if name != pk {
			names = append(names, name)
		}
	}
	if len(names) == 1 {
		return names[0]
	}
	return ""
}

func isType(schema *openapi3.Schema, want string) bool {
	if schema == nil || schema.Type == nil {
		return false
	}
	for _, typ := range schema.Type.Slice() {
		if typ == want {
			return true
		}
	}
	return false
}
