package html

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formset/pkg/formset"
)

var (
	entryPolicyOnce sync.Once
	entryPolicy     *bluemonday.Policy

	iconPolicyOnce sync.Once
	iconPolicy     *bluemonday.Policy
)

// SanitizeEntry strips scripts, event handlers and unknown elements from
// entry markup while keeping the form controls a form-set slot needs.
func SanitizeEntry(markup string) string {
	if strings.TrimSpace(markup) == "" {
		return ""
	}
	return strings.TrimSpace(entrySanitizer().Sanitize(markup))
}

// SanitizeHook wraps an OnAdded hook so whatever markup it returns is
// sanitised before the controller stores it.
func SanitizeHook(hook formset.AddedHook) formset.AddedHook {
	if hook == nil {
		return nil
	}
	return func(markup string, candidate formset.Candidate) (string, error) {
		out, err := hook(markup, candidate)
		if err != nil {
			return "", err
		}
		return SanitizeEntry(out), nil
	}
}

// iconMarkup turns a candidate icon URL into an <img> tag, or "" when the
// URL is not an http(s) or relative reference.
func iconMarkup(src string) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	raw := `<img src="` + html.EscapeString(src) + `" alt="" width="16" height="16">`
	cleaned := strings.TrimSpace(iconSanitizer().Sanitize(raw))
	if !strings.Contains(cleaned, "src=") {
		return ""
	}
	return cleaned
}

func entrySanitizer() *bluemonday.Policy {
	entryPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements(
			"li", "tr", "td", "th", "div", "span", "p", "label", "strong", "em",
			"input", "select", "option", "textarea", "button", "a", "img",
		)
		policy.AllowAttrs(
			"class", "id", "hidden", "title", "role",
			"aria-label", "aria-hidden", "aria-controls", "aria-labelledby", "aria-describedby",
		).Globally()
		policy.AllowDataAttributes()

		policy.AllowAttrs("type", "name", "value", "checked", "disabled", "readonly", "placeholder").
			OnElements("input")
		policy.AllowAttrs("name", "multiple", "disabled").OnElements("select")
		policy.AllowAttrs("value", "selected").OnElements("option")
		policy.AllowAttrs("name", "rows", "cols").OnElements("textarea")
		policy.AllowAttrs("type", "name", "value").OnElements("button")
		policy.AllowAttrs("for").OnElements("label")
		policy.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
		policy.AllowAttrs("href").OnElements("a")
		policy.AllowAttrs("src", "alt", "width", "height").OnElements("img")

		policy.AllowURLSchemes("http", "https")
		policy.AllowRelativeURLs(true)

		entryPolicy = policy
	})
	return entryPolicy
}

func iconSanitizer() *bluemonday.Policy {
	iconPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("img")
		policy.AllowAttrs("src", "alt", "width", "height").OnElements("img")
		policy.AllowURLSchemes("http", "https")
		policy.AllowRelativeURLs(true)
		iconPolicy = policy
	})
	return iconPolicy
}
