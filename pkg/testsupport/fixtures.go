package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formset/pkg/formset"
)

// ExtraTemplate is the list-item extra entry used across package tests. It
// carries the hidden "addon" field, the DELETE checkbox and a remove link.
const ExtraTemplate = `<li><input type="hidden" name="form-__prefix__-addon" value=""/>` +
	`<input type="checkbox" name="form-__prefix__-DELETE"/><a class="remove" href="#">x</a></li>`

// LoadManagementValues reads a fixture holding URL-encoded form values, one
// or more key=value pairs per line. Blank lines and lines starting with '#'
// are ignored.
func LoadManagementValues(path string) (url.Values, error) {
	if path == "" {
		return nil, errors.New("testsupport: values path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read values: %w", err)
	}

	out := url.Values{}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parsed, err := url.ParseQuery(line)
		if err != nil {
			return nil, fmt.Errorf("testsupport: parse values line %q: %w", line, err)
		}
		for key, values := range parsed {
			out[key] = append(out[key], values...)
		}
	}
	return out, nil
}

// MustState parses a management-form fixture into a State.
func MustState(t *testing.T, path string, fns ...formset.OptionFn) *formset.State {
	t.Helper()

	values, err := LoadManagementValues(path)
	if err != nil {
		t.Fatalf("load values: %v", err)
	}
	state, err := formset.ParseManagementForm(values, fns...)
	if err != nil {
		t.Fatalf("parse management form: %v", err)
	}
	return state
}

// MustController builds a controller with the shared extra template and the
// "addon" hidden field, plus any overrides.
func MustController(t *testing.T, state *formset.State, fns ...formset.OptionFn) *formset.Controller {
	t.Helper()

	base := []formset.OptionFn{
		formset.WithHiddenField("addon"),
		formset.WithExtraTemplate(ExtraTemplate),
	}
	ctrl, err := formset.New(state, append(base, fns...)...)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return ctrl
}

// WriteGolden writes arbitrary data as JSON to a golden file when
// UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
