package gotemplate_test

import (
	"embed"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-formset/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formset/pkg/testsupport"
)

//go:embed testdata/templates/*.tpl
var embeddedTemplates embed.FS

func TestEngine_RenderTemplateWithNamingHelpers(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("slot", map[string]any{
			"prefix": "form",
			"index":  2,
			"field":  "addon",
			"value":  "<b>",
		}, w)
	})

	golden := filepath.Join("testdata", "slot.golden")
	if testsupport.WriteMaybeGolden(t, golden, []byte(result)) {
		return
	}
	want := testsupport.MustReadGoldenString(t, golden)
	if result != want {
		t.Fatalf("render template mismatch result\nwant: %q\n got: %q", want, result)
	}
	if written != want {
		t.Fatalf("render template mismatch writer\nwant: %q\n got: %q", want, written)
	}
}

func TestEngine_GlobalContextAndStructData(t *testing.T) {
	engine := newEngine(t)
	if err := engine.GlobalContext(map[string]any{
		"site": map[string]any{"name": "Marketplace"},
	}); err != nil {
		t.Fatalf("global context: %v", err)
	}

	data := struct {
		Label string `json:"label"`
	}{Label: "  Gift wrap "}

	got, err := engine.RenderTemplate("global.tpl", data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Gift wrap (Marketplace)" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngine_OverrideFSTakesPrecedence(t *testing.T) {
	override := fstest.MapFS{
		"global.tpl": &fstest.MapFile{Data: []byte("override {{ label }}")},
	}
	base, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}
	engine, err := gotemplate.New(gotemplate.WithFS(override), gotemplate.WithFS(base))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	got, err := engine.RenderTemplate("global", map[string]any{"label": "x"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "override x" {
		t.Fatalf("expected override template, got %q", got)
	}
	if !engine.HasTemplate("slot") || engine.HasTemplate("missing") {
		t.Fatalf("unexpected template lookup results")
	}
}

func TestEngine_RenderStringAndFuncs(t *testing.T) {
	base, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}
	engine, err := gotemplate.New(
		gotemplate.WithFS(base),
		gotemplate.WithFunc("shout", func(s string) string { return strings.ToUpper(s) + "!" }),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	got, err := engine.RenderString(`{{ shout(name) }} {{ total_forms_name("addons") }}`, map[string]any{"name": "ada"})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if got != "ADA! addons-TOTAL_FORMS" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestNew_RequiresTemplateSource(t *testing.T) {
	if _, err := gotemplate.New(); err == nil {
		t.Fatalf("expected error without template source")
	}
}

func newEngine(t *testing.T) *gotemplate.Engine {
	t.Helper()

	templatesFS, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}

	engine, err := gotemplate.New(gotemplate.WithFS(templatesFS))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}
