// Package report renders DiagnosticReport, BaseReport, and
// ValidationFailureReport values produced by internal/engine into
// text, plain, markdown, or JSON output.
package report

import "io"

// Renderer defines the output interface.
type Renderer interface {
	// Render accepts a model.DiagnosticReport, model.BaseReport, or
	// model.ValidationFailureReport and writes its rendering to the
	// underlying writer.
	Render(result any)
}

// NewRenderer creates a renderer for the given format.
func NewRenderer(format string, w io.Writer) Renderer {
	switch format {
	case "json":
		return &JSONRenderer{w: w}
	case "markdown":
		return &MarkdownRenderer{w: w}
	case "plain":
		return &PlainRenderer{w: w}
	default:
		return &TextRenderer{w: w}
	}
}
