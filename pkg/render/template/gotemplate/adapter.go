package gotemplate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"reflect"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/render/template"
)

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	templates []fs.FS
	funcs     map[string]any
}

// templateExt is appended to template names given without it.
const templateExt = ".tpl"

// WithFS loads templates from files. Later file systems are consulted only
// when earlier ones miss, so an override FS goes first.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templates = append(cfg.templates, files)
		}
	}
}

// WithFunc exposes fn to every template under name.
func WithFunc(name string, fn any) Option {
	return func(cfg *config) {
		name = strings.TrimSpace(name)
		if name == "" || !isCallable(fn) {
			return
		}
		if cfg.funcs == nil {
			cfg.funcs = map[string]any{}
		}
		cfg.funcs[name] = fn
	}
}

// Engine renders pongo2 templates. Besides configured functions every
// template can call the form-set naming helpers: field_name(prefix, index,
// field), field_id(name), delete_name(prefix, index), total_forms_name(prefix)
// and initial_forms_name(prefix).
type Engine struct {
	mu sync.RWMutex

	set   *pongo2.TemplateSet
	cache map[string]*pongo2.Template
}

var _ template.Renderer = (*Engine)(nil)

// New constructs an Engine over one or more template file systems.
func New(options ...Option) (*Engine, error) {
	cfg := &config{}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}
	if len(cfg.templates) == 0 {
		return nil, errors.New("gotemplate: at least one template fs.FS is required")
	}

	loaders := make([]pongo2.TemplateLoader, 0, len(cfg.templates))
	for _, files := range cfg.templates {
		loaders = append(loaders, pongo2.NewFSLoader(files))
	}

	engine := &Engine{
		set:   pongo2.NewSet("formset", loaders...),
		cache: make(map[string]*pongo2.Template),
	}
	engine.set.Globals = pongo2.Context{}
	for name, fn := range namingFuncs() {
		engine.set.Globals[name] = fn
	}
	for name, fn := range cfg.funcs {
		engine.set.Globals[name] = fn
	}
	registerDefaultFilters()
	return engine, nil
}

// RenderTemplate executes the named template, appending the engine extension
// when missing.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	path := withExt(name)
	tmpl, err := e.lookup(path)
	if err != nil {
		return "", err
	}
	rendered, err := e.execute(tmpl, data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: execute template %q: %w", path, err)
	}
	return rendered, copyTo(rendered, out)
}

// RenderString parses and executes inline template content.
func (e *Engine) RenderString(content string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("gotemplate: engine is nil")
	}

	tmpl, err := e.set.FromString(content)
	if err != nil {
		return "", fmt.Errorf("gotemplate: parse template string: %w", err)
	}
	rendered, err := e.execute(tmpl, data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: execute template string: %w", err)
	}
	return rendered, copyTo(rendered, out)
}

// GlobalContext merges data into the values every template sees.
func (e *Engine) GlobalContext(data any) error {
	if e == nil || e.set == nil {
		return errors.New("gotemplate: engine is nil")
	}
	if data == nil {
		return nil
	}

	globals, err := toContext(data)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.set.Globals.Update(globals)
	return nil
}

// HasTemplate reports whether name resolves through the configured loaders.
func (e *Engine) HasTemplate(name string) bool {
	if e == nil || e.set == nil {
		return false
	}
	_, err := e.lookup(withExt(name))
	return err == nil
}

func (e *Engine) execute(tmpl *pongo2.Template, data any) (string, error) {
	ctx, err := toContext(data)
	if err != nil {
		return "", fmt.Errorf("convert data: %w", err)
	}

	var buf bytes.Buffer
	e.mu.RLock()
	err = tmpl.ExecuteWriter(ctx, &buf)
	e.mu.RUnlock()
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (e *Engine) lookup(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.cache[path]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.cache[path]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load template %q: %w", path, err)
	}
	e.cache[path] = tmpl
	return tmpl, nil
}

func withExt(name string) string {
	if strings.HasSuffix(name, templateExt) {
		return name
	}
	return name + templateExt
}

func copyTo(rendered string, out []io.Writer) error {
	for _, w := range out {
		if w == nil {
			continue
		}
		if _, err := io.WriteString(w, rendered); err != nil {
			return err
		}
	}
	return nil
}

func namingFuncs() map[string]any {
	return map[string]any{
		"field_name":         formset.FieldName,
		"field_id":           formset.FieldID,
		"delete_name":        formset.DeleteFieldName,
		"total_forms_name":   formset.TotalFormsName,
		"initial_forms_name": formset.InitialFormsName,
	}
}

func isCallable(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.IsValid() && rv.Kind() == reflect.Func
}

// toContext normalises template data. Maps are walked so callables survive;
// anything else goes through a JSON round trip so struct tags decide the
// names templates see.
func toContext(data any) (pongo2.Context, error) {
	var in map[string]any
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		in = v
	case map[string]any:
		in = v
	default:
		decoded, err := viaJSON(v)
		if err != nil {
			return nil, err
		}
		m, ok := decoded.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("gotemplate: template data must be an object, got %T", data)
		}
		in = m
	}

	out := make(pongo2.Context, len(in))
	for key, value := range in {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		converted, err := normalise(value)
		if err != nil {
			return nil, err
		}
		out[key] = converted
	}
	return out, nil
}

func normalise(value any) (any, error) {
	switch v := value.(type) {
	case nil, string, bool, int, int64, float64:
		return v, nil
	case pongo2.Context:
		return normaliseMap(v)
	case map[string]any:
		return normaliseMap(v)
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			converted, err := normalise(item)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		}
		return out, nil
	}
	if isCallable(value) {
		return value, nil
	}
	decoded, err := viaJSON(value)
	if err != nil {
		return nil, err
	}
	return normalise(decoded)
}

func normaliseMap(in map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(in))
	for key, value := range in {
		converted, err := normalise(value)
		if err != nil {
			return nil, err
		}
		out[key] = converted
	}
	return out, nil
}

func viaJSON(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return numbersToInts(out), nil
}

// numbersToInts keeps integral JSON numbers usable in pongo2 arithmetic and
// comparisons.
func numbersToInts(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i)
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for key, value := range t {
			t[key] = numbersToInts(value)
		}
		return t
	case []any:
		for i, value := range t {
			t[i] = numbersToInts(value)
		}
		return t
	default:
		return v
	}
}

func registerDefaultFilters() {
	if !pongo2.FilterExists("trim") {
		_ = pongo2.RegisterFilter("trim", filterTrim)
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}
