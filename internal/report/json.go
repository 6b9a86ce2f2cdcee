package report

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONRenderer produces machine-readable JSON output.
type JSONRenderer struct {
	w io.Writer
}

// mapper is satisfied by model.BaseReport, model.DiagnosticReport, and
// model.ValidationFailureReport — each already knows how to shape
// itself into a JSON-friendly map.
type mapper interface {
	ToMap() map[string]any
}

func (r *JSONRenderer) Render(result any) {
	m, ok := result.(mapper)
	if !ok {
		fmt.Fprintf(r.w, `{"error":"unrenderable result type %T"}`+"\n", result)
		return
	}
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(m.ToMap())
}
