// Package config loads form-set controller and server settings from JSON or
// YAML files and turns them into option functions.
package config

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formset/pkg/formset"
)

// Config is the file representation of a form-set deployment.
type Config struct {
	FormSet FormSetConfig `json:"formset" yaml:"formset"`
	Search  SearchConfig  `json:"search" yaml:"search"`
	Theme   ThemeConfig   `json:"theme" yaml:"theme"`
	Server  ServerConfig  `json:"server" yaml:"server"`
	Catalog CatalogConfig `json:"catalog" yaml:"catalog"`
}

// FormSetConfig mirrors the controller options.
type FormSetConfig struct {
	Prefix            string `json:"prefix" yaml:"prefix"`
	HiddenField       string `json:"hiddenField" yaml:"hiddenField"`
	FormPK            string `json:"formPK" yaml:"formPK"`
	Delegate          string `json:"delegate" yaml:"delegate"`
	Forms             string `json:"forms" yaml:"forms"`
	ExtraForm         string `json:"extraForm" yaml:"extraForm"`
	RemoveClass       string `json:"removeClass" yaml:"removeClass"`
	FormSelector      string `json:"formSelector" yaml:"formSelector"`
	Input             string `json:"input" yaml:"input"`
	Src               string `json:"src" yaml:"src"`
	SearchField       string `json:"searchField" yaml:"searchField"`
	ExcludeCategories *bool  `json:"excludeCategories" yaml:"excludeCategories"`
	ExcludeParam      string `json:"excludeParam" yaml:"excludeParam"`
	MinSearchLength   *int   `json:"minSearchLength" yaml:"minSearchLength"`
	Width             int    `json:"width" yaml:"width"`
	Placeholder       string `json:"placeholder" yaml:"placeholder"`
	ExtraTemplate     string `json:"extraTemplate" yaml:"extraTemplate"`
}

// SearchConfig configures the HTTP search provider.
type SearchConfig struct {
	Timeout   Duration `json:"timeout" yaml:"timeout"`
	UserAgent string   `json:"userAgent" yaml:"userAgent"`
	CacheSize int      `json:"cacheSize" yaml:"cacheSize"`
	CacheTTL  Duration `json:"cacheTTL" yaml:"cacheTTL"`
}

// ThemeConfig selects a go-theme theme and variant. Name, when set, must
// match the manifest's name.
type ThemeConfig struct {
	Name    string `json:"name" yaml:"name"`
	Variant string `json:"variant" yaml:"variant"`
	// Manifest is a JSON or YAML go-theme manifest file.
	Manifest string `json:"manifest" yaml:"manifest"`
	// Templates is a directory consulted before the embedded templates.
	Templates string `json:"templates" yaml:"templates"`
	// SearchLabel is the autocomplete input placeholder.
	SearchLabel string `json:"searchLabel" yaml:"searchLabel"`
}

// ServerConfig configures `formset serve`.
type ServerConfig struct {
	Addr        string   `json:"addr" yaml:"addr"`
	BasePath    string   `json:"basePath" yaml:"basePath"`
	SessionTTL  Duration `json:"sessionTTL" yaml:"sessionTTL"`
	MaxSessions int      `json:"maxSessions" yaml:"maxSessions"`
}

// CatalogConfig configures the bundled add-on catalog.
type CatalogConfig struct {
	// Path points at a YAML catalog replacing the embedded one.
	Path string `json:"path" yaml:"path"`
	// Disabled skips mounting the catalog search endpoint.
	Disabled           bool     `json:"disabled" yaml:"disabled"`
	ExcludedCategories []string `json:"excludedCategories" yaml:"excludedCategories"`
	// MaxAge is advertised to search clients through Cache-Control.
	MaxAge Duration `json:"maxAge" yaml:"maxAge"`
}

// Duration accepts Go duration strings ("1500ms", "5m") in both formats.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return d.set(raw)
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	return d.set(raw)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) set(raw any) error {
	switch v := raw.(type) {
	case nil:
		d.Duration = 0
	case string:
		if strings.TrimSpace(v) == "" {
			d.Duration = 0
			return nil
		}
		parsed, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: invalid duration %q: %w", v, err)
		}
		d.Duration = parsed
	case float64:
		d.Duration = time.Duration(v) * time.Second
	case int:
		d.Duration = time.Duration(v) * time.Second
	default:
		return fmt.Errorf("config: invalid duration %v", raw)
	}
	return nil
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		FormSet: FormSetConfig{HiddenField: "addon"},
		Search: SearchConfig{
			Timeout:   Duration{10 * time.Second},
			CacheSize: 256,
			CacheTTL:  Duration{time.Minute},
		},
		Server: ServerConfig{
			Addr:        ":8080",
			SessionTTL:  Duration{30 * time.Minute},
			MaxSessions: 1024,
		},
	}
}

// Load reads path. An empty path returns Default().
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// LoadFS reads name from files.
func LoadFS(files fs.FS, name string) (Config, error) {
	if files == nil {
		return Config{}, fmt.Errorf("config: missing file system")
	}
	data, err := fs.ReadFile(files, name)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", name, err)
	}
	return Parse(data, name)
}

// Parse decodes data as JSON, falling back to YAML, on top of Default().
// source names the input in error messages.
func Parse(data []byte, source string) (Config, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Config{}, fmt.Errorf("config: file %s is empty", source)
	}

	cfg := Default()
	jsonErr := json.Unmarshal(data, &cfg)
	if jsonErr != nil {
		cfg = Default()
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: invalid JSON or YAML: %w", source, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", source, err)
	}
	return cfg, nil
}

// Validate rejects settings the controller cannot work with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.FormSet.HiddenField) == "" {
		return fmt.Errorf("formset.hiddenField is required")
	}
	if c.FormSet.MinSearchLength != nil && *c.FormSet.MinSearchLength < 0 {
		return fmt.Errorf("formset.minSearchLength must not be negative")
	}
	if c.FormSet.Width < 0 {
		return fmt.Errorf("formset.width must not be negative")
	}
	if c.Search.CacheSize < 0 {
		return fmt.Errorf("search.cacheSize must not be negative")
	}
	if c.Server.MaxSessions < 0 {
		return fmt.Errorf("server.maxSessions must not be negative")
	}
	return nil
}

// Options converts the form-set section into controller options. Unset
// fields keep the controller defaults.
func (c Config) Options() []formset.OptionFn {
	f := c.FormSet
	fns := []formset.OptionFn{formset.WithHiddenField(f.HiddenField)}

	strs := []struct {
		value string
		fn    func(string) formset.OptionFn
	}{
		{f.Prefix, formset.WithPrefix},
		{f.FormPK, formset.WithFormPK},
		{f.Delegate, formset.WithDelegate},
		{f.Forms, formset.WithForms},
		{f.ExtraForm, formset.WithExtraForm},
		{f.RemoveClass, formset.WithRemoveClass},
		{f.FormSelector, formset.WithFormSelector},
		{f.Input, formset.WithInput},
		{f.Src, formset.WithSearchEndpoint},
		{f.SearchField, formset.WithSearchField},
		{f.ExcludeParam, formset.WithExcludeParam},
		{f.Placeholder, formset.WithPlaceholder},
		{f.ExtraTemplate, formset.WithExtraTemplate},
	}
	for _, s := range strs {
		if strings.TrimSpace(s.value) != "" {
			fns = append(fns, s.fn(s.value))
		}
	}

	if f.ExcludeCategories != nil {
		fns = append(fns, formset.WithExcludeCategories(*f.ExcludeCategories))
	}
	if f.MinSearchLength != nil {
		fns = append(fns, formset.WithMinSearchLength(*f.MinSearchLength))
	}
	if f.Width > 0 {
		fns = append(fns, formset.WithWidth(f.Width))
	}
	return fns
}
