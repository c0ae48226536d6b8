package html

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/render/template/gotemplate"
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithFormsetOptions copies naming, selectors and search settings from the
// controller configuration so the markup and the controller agree.
func WithFormsetOptions(opts formset.Options) Option {
	return func(r *Renderer) {
		r.opts = opts
	}
}

// WithTheme applies a go-theme renderer configuration.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(r *Renderer) {
		r.theme = cfg
	}
}

// WithTemplatesFS adds a template source consulted before the embedded
// templates. Theme partials resolve against it too.
func WithTemplatesFS(files fs.FS) Option {
	return func(r *Renderer) {
		if files != nil {
			r.overrides = append(r.overrides, files)
		}
	}
}

// WithSearchLabel sets the autocomplete input placeholder text.
func WithSearchLabel(label string) Option {
	return func(r *Renderer) {
		r.searchLabel = label
	}
}

// WithSanitizeEntries controls whether stored entry markup is sanitised when
// the whole form-set is rendered (default true).
func WithSanitizeEntries(enabled bool) Option {
	return func(r *Renderer) {
		r.sanitize = enabled
	}
}

// WithLogger sets the renderer logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Renderer renders form-set markup. It implements formset.Renderer.
type Renderer struct {
	engine      *gotemplate.Engine
	opts        formset.Options
	theme       *theme.RendererConfig
	overrides   []fs.FS
	searchLabel string
	sanitize    bool
	logger      *zap.Logger
}

var _ formset.Renderer = (*Renderer)(nil)

// New builds a renderer over the embedded templates.
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		opts:        formset.DefaultOptions(),
		searchLabel: "Start typing to add...",
		sanitize:    true,
		logger:      zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}

	engineOpts := make([]gotemplate.Option, 0, len(r.overrides)+1)
	for _, files := range r.overrides {
		engineOpts = append(engineOpts, gotemplate.WithFS(files))
	}
	engineOpts = append(engineOpts, gotemplate.WithFS(TemplatesFS()))

	engine, err := gotemplate.New(engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("html: template engine: %w", err)
	}
	r.engine = engine
	return r, nil
}

// RenderExtra renders the entry for candidate in slot index.
func (r *Renderer) RenderExtra(ctx context.Context, index int, candidate formset.Candidate) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return r.renderEntry(strconv.Itoa(index), candidate, nil)
}

// ExtraTemplate renders the empty extra entry with the placeholder in place
// of the slot index, the form client runtimes clone.
func (r *Renderer) ExtraTemplate() (string, error) {
	return r.renderEntry(r.opts.Placeholder, formset.Candidate{}, nil)
}

// renderEntry renders one slot. entry is set for slots rebuilt from a
// submitted form, which carry no markup of their own.
func (r *Renderer) renderEntry(index string, candidate formset.Candidate, entry *formset.Entry) (string, error) {
	data := map[string]any{
		"index":        index,
		"slot":         r.opts.Prefix + "-" + index + "-",
		"field":        r.opts.HiddenField,
		"key":          candidate.Key,
		"label":        candidate.Label,
		"icon":         iconMarkup(candidate.Icon),
		"entry_class":  "formset-entry",
		"remove_class": r.opts.RemoveClass,
	}
	if entry != nil {
		data["pk"] = entry.Origin().Key()
		data["pk_field"] = r.opts.FormPK
		data["deleted"] = entry.Deleted()
	}
	out, err := r.engine.RenderTemplate(r.partial(PartialExtra), data)
	if err != nil {
		return "", fmt.Errorf("html: render extra entry: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// RenderFormSet renders the management fields, every entry (soft-deleted
// ones hidden), the extra template and the autocomplete input.
func (r *Renderer) RenderFormSet(ctx context.Context, state *formset.State) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if state == nil {
		return "", fmt.Errorf("html: missing form-set state")
	}

	entries := make([]any, 0, state.Len())
	for _, entry := range state.Entries() {
		markup := entry.Markup()
		if markup == "" {
			rendered, err := r.renderEntry(strconv.Itoa(entry.Index()), formset.Candidate{Key: entry.Value(), Label: entry.Value()}, entry)
			if err != nil {
				return "", err
			}
			markup = rendered
		}
		if r.sanitize {
			markup = SanitizeEntry(markup)
		}
		markup, err := formset.SetHidden(markup, !entry.Visible())
		if err != nil {
			return "", fmt.Errorf("html: entry %d: %w", entry.Index(), err)
		}
		entries = append(entries, markup)
	}

	extra, err := r.ExtraTemplate()
	if err != nil {
		return "", err
	}

	prefix := state.Prefix()
	data := map[string]any{
		"prefix":         prefix,
		"total":          state.Total(),
		"initial":        state.InitialCount(),
		"total_name":     formset.TotalFormsName(prefix),
		"initial_name":   formset.InitialFormsName(prefix),
		"entries":        entries,
		"extra_template": strings.ReplaceAll(extra, "</script", `<\/script`),
		"src":            r.opts.Src,
		"search_field":   r.opts.SearchField,
		"min_length":     r.opts.MinSearchLength,
		"exclude":        strconv.FormatBool(r.opts.ExcludeCategories),
		"exclude_param":  r.opts.ExcludeParam,
		"width":          r.opts.Width,
		"search_label":   r.searchLabel,
		"forms_class":    classFromSelector(r.opts.Forms, "forms"),
		"extra_class":    classFromSelector(r.opts.ExtraForm, "extra-form"),
		"input_class":    classFromSelector(r.opts.Input, "autocomplete"),
		"theme":          buildThemeContext(r.theme).data(),
	}

	out, err := r.engine.RenderTemplate(r.partial(PartialFormSet), data)
	if err != nil {
		return "", fmt.Errorf("html: render form-set: %w", err)
	}
	r.logger.Debug("form-set rendered", zap.String("prefix", prefix), zap.Int("entries", len(entries)))
	return strings.TrimSpace(out), nil
}

// RenderSuggestions renders the suggestion list. Each item carries the
// candidate JSON payload a client stores as the pending input.
func (r *Renderer) RenderSuggestions(ctx context.Context, candidates []formset.Candidate) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	items := make([]any, 0, len(candidates))
	for _, candidate := range candidates {
		payload, err := json.Marshal(candidate)
		if err != nil {
			return "", fmt.Errorf("html: encode candidate %q: %w", candidate.Key, err)
		}
		items = append(items, map[string]any{
			"key":     candidate.Key,
			"label":   candidate.Label,
			"icon":    iconMarkup(candidate.Icon),
			"payload": string(payload),
		})
	}

	out, err := r.engine.RenderTemplate(r.partial(PartialSuggestions), map[string]any{
		"items": items,
		"width": r.opts.Width,
	})
	if err != nil {
		return "", fmt.Errorf("html: render suggestions: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func (r *Renderer) partial(key string) string {
	if r.theme != nil {
		if name := strings.TrimSpace(r.theme.Partials[key]); name != "" {
			if r.engine.HasTemplate(name) {
				return name
			}
			r.logger.Warn("theme partial not found, using default", zap.String("partial", key), zap.String("template", name))
		}
	}
	return defaultPartials[key]
}

// classFromSelector extracts the last class name from a simple selector
// such as "input.autocomplete" or ".extra-form".
func classFromSelector(selector, fallback string) string {
	selector = strings.TrimSpace(selector)
	if i := strings.LastIndex(selector, "."); i >= 0 && i < len(selector)-1 {
		class := selector[i+1:]
		if j := strings.IndexAny(class, " >+~[:#"); j >= 0 {
			class = class[:j]
		}
		if class != "" {
			return class
		}
	}
	return fallback
}
