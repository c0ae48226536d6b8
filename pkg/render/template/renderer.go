package template

import (
	"io"
)

// Renderer executes named templates or inline template content. Output is
// returned and, when writers are given, also copied to each of them.
type Renderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(content string, data any, out ...io.Writer) (string, error)
	GlobalContext(data any) error
}
