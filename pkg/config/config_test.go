package config

import (
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formset/pkg/formset"
)

func TestLoad_YAML(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "formset.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Search.Timeout.Duration != 1500*time.Millisecond || cfg.Search.CacheTTL.Duration != 2*time.Minute {
		t.Fatalf("unexpected search durations: %+v", cfg.Search)
	}
	if cfg.Server.Addr != "127.0.0.1:9090" || cfg.Server.SessionTTL.Duration != 10*time.Minute {
		t.Fatalf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Server.MaxSessions != 1024 {
		t.Fatalf("expected default max sessions kept, got %d", cfg.Server.MaxSessions)
	}
	if diff := cmp.Diff([]string{"persona", "theme"}, cfg.Catalog.ExcludedCategories); diff != "" {
		t.Fatalf("catalog categories mismatch (-want +got):\n%s", diff)
	}

	opts := formset.NewOptions(cfg.Options()...)
	if opts.Prefix != "addons" || opts.FormPK != "pk" || opts.HiddenField != "addon" {
		t.Fatalf("unexpected naming options: %+v", opts)
	}
	if opts.ExcludeCategories || opts.MinSearchLength != 2 || opts.Width != 420 {
		t.Fatalf("unexpected search options: exclude=%v min=%d width=%d", opts.ExcludeCategories, opts.MinSearchLength, opts.Width)
	}
	if opts.Src != "/api/addons/search" || opts.SearchField != formset.DefaultSearchField {
		t.Fatalf("unexpected endpoint options: %q %q", opts.Src, opts.SearchField)
	}
}

func TestLoad_JSON(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "formset.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Search.Timeout.Duration != 3*time.Second || cfg.Search.CacheSize != 0 {
		t.Fatalf("unexpected search config: %+v", cfg.Search)
	}
	if cfg.Server.MaxSessions != 8 || cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected server config: %+v", cfg.Server)
	}

	opts := formset.NewOptions(cfg.Options()...)
	if opts.SearchField != "term" || opts.MinSearchLength != 0 || !opts.ExcludeCategories {
		t.Fatalf("unexpected options: %+v", opts)
	}
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFS(t *testing.T) {
	files := fstest.MapFS{
		"cfg.yml": &fstest.MapFile{Data: []byte("formset:\n  hiddenField: product\n")},
	}
	cfg, err := LoadFS(files, "cfg.yml")
	if err != nil {
		t.Fatalf("load fs: %v", err)
	}
	if cfg.FormSet.HiddenField != "product" {
		t.Fatalf("unexpected hidden field %q", cfg.FormSet.HiddenField)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":            "  ",
		"garbage":          "formset: [",
		"missing hidden":   `{"formset": {"hiddenField": ""}}`,
		"negative min":     "formset:\n  hiddenField: a\n  minSearchLength: -1\n",
		"bad duration":     "search:\n  timeout: soon\n",
		"negative cache":   `{"search": {"cacheSize": -1}}`,
		"negative session": `{"server": {"maxSessions": -5}}`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(input), name); err == nil {
				t.Fatalf("expected error for %q", input)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "nope.yaml") {
		t.Fatalf("expected read error naming the file, got %v", err)
	}
}
