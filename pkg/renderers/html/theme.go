package html

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"
)

// Asset key resolved through RendererConfig.AssetURL for the stylesheet link.
const AssetStylesheet = "formset.stylesheet"

// SelectTheme resolves name/variant through selector and derives the
// renderer configuration.
func SelectTheme(selector theme.ThemeSelector, name, variant string) (*theme.RendererConfig, error) {
	if selector == nil {
		return nil, fmt.Errorf("html: missing theme selector")
	}
	selection, err := selector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("html: select theme %q/%q: %w", name, variant, err)
	}
	return ThemeFromSelection(selection), nil
}

// ThemeFromSelection flattens a theme selection: variant tokens, templates
// and asset files override the manifest's, CSS variables are derived from
// tokens as --<token>, and template entries become partial overrides.
func ThemeFromSelection(selection *theme.Selection) *theme.RendererConfig {
	if selection == nil {
		return nil
	}
	cfg := &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: map[string]string{},
		Tokens:   map[string]string{},
		CSSVars:  map[string]string{},
	}

	prefix := ""
	files := map[string]string{}
	if manifest := selection.Manifest; manifest != nil {
		mergeInto(cfg.Tokens, manifest.Tokens)
		mergeInto(cfg.Partials, manifest.Templates)
		mergeInto(files, manifest.Assets.Files)
		prefix = manifest.Assets.Prefix

		if variant, ok := manifest.Variants[selection.Variant]; ok {
			mergeInto(cfg.Tokens, variant.Tokens)
			mergeInto(cfg.Partials, variant.Templates)
			mergeInto(files, variant.Assets.Files)
			if variant.Assets.Prefix != "" {
				prefix = variant.Assets.Prefix
			}
		}
	}
	for key, value := range cfg.Tokens {
		cfg.CSSVars["--"+strings.TrimPrefix(key, "--")] = value
	}

	cfg.AssetURL = func(key string) string {
		file, ok := files[key]
		if !ok || file == "" {
			return ""
		}
		if strings.HasPrefix(file, "/") || strings.Contains(file, "://") || prefix == "" {
			return file
		}
		return path.Join(prefix, file)
	}
	return cfg
}

type themeContext struct {
	Name         string
	Variant      string
	Partials     map[string]string
	CSSVarsStyle string
	Stylesheet   string
	JSON         string
}

func buildThemeContext(cfg *theme.RendererConfig) themeContext {
	if cfg == nil {
		return themeContext{}
	}
	ctx := themeContext{
		Name:         cfg.Theme,
		Variant:      cfg.Variant,
		Partials:     cfg.Partials,
		CSSVarsStyle: cssVarsStyle(cfg.CSSVars),
		JSON:         ThemeJSON(cfg),
	}
	if cfg.AssetURL != nil {
		ctx.Stylesheet = cfg.AssetURL(AssetStylesheet)
	}
	return ctx
}

func (t themeContext) data() map[string]any {
	return map[string]any{
		"name":           t.Name,
		"variant":        t.Variant,
		"css_vars_style": t.CSSVarsStyle,
		"stylesheet":     t.Stylesheet,
		"json":           t.JSON,
	}
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(".formset {\n")
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}

// ThemeJSON serialises the public parts of cfg for client runtimes.
func ThemeJSON(cfg *theme.RendererConfig) string {
	if cfg == nil {
		return ""
	}
	payload := struct {
		Name    string            `json:"name,omitempty"`
		Variant string            `json:"variant,omitempty"`
		Tokens  map[string]string `json:"tokens,omitempty"`
		CSSVars map[string]string `json:"cssVars,omitempty"`
	}{
		Name:    cfg.Theme,
		Variant: cfg.Variant,
		Tokens:  cfg.Tokens,
		CSSVars: cfg.CSSVars,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	return string(data)
}

func mergeInto(dst, src map[string]string) {
	for key, value := range src {
		dst[key] = value
	}
}

// LoadThemeManifest reads a go-theme manifest from a JSON or YAML file.
func LoadThemeManifest(path string) (*theme.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("html: read theme manifest: %w", err)
	}

	var manifest theme.Manifest
	if jsonErr := json.Unmarshal(data, &manifest); jsonErr != nil {
		var generic any
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return nil, fmt.Errorf("html: parse theme manifest %s: invalid JSON or YAML: %w", path, err)
		}
		raw, err := json.Marshal(generic)
		if err != nil {
			return nil, fmt.Errorf("html: parse theme manifest %s: %w", path, err)
		}
		if err := json.Unmarshal(raw, &manifest); err != nil {
			return nil, fmt.Errorf("html: parse theme manifest %s: %w", path, err)
		}
	}
	if strings.TrimSpace(manifest.Name) == "" {
		return nil, fmt.Errorf("html: theme manifest %s has no name", path)
	}
	return &manifest, nil
}

// ThemeFromManifest selects variant of manifest. An empty variant uses the
// base tokens only.
func ThemeFromManifest(manifest *theme.Manifest, variant string) (*theme.RendererConfig, error) {
	if manifest == nil {
		return nil, fmt.Errorf("html: missing theme manifest")
	}
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("html: theme %q has no variant %q", manifest.Name, variant)
		}
	}
	return ThemeFromSelection(&theme.Selection{
		Theme:    manifest.Name,
		Variant:  variant,
		Manifest: manifest,
	}), nil
}
