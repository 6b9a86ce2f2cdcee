package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/nethalo/sqlsentinel/internal/model"
)

func sampleBaseReport() model.BaseReport {
	m := model.NewMetrics()
	m.RowsExamined = 50000
	m.RowsReturned = 1
	m.Complexity = model.ComplexityLinear
	return model.BaseReport{
		SQL:       "SELECT * FROM orders WHERE status = 'open'",
		QueryHash: "abc123",
		Metrics:   m,
		Score:     model.Score{CompositeScore: 62, Grade: model.GradeC},
		Findings: []model.Finding{
			model.NewFinding(model.SeverityWarning, model.CategoryNoIndex, "Missing index", "The WHERE clause isn't covered by any index.").
				WithRecommendation("CREATE INDEX idx_orders_status ON orders (status)"),
		},
		Scalability: model.ScalabilityProjection{
			Risk: model.RiskMedium,
			Projections: []model.SizeProjection{
				{ProjectedRows: 1000000, ProjectedTimeMs: 4200, Model: "linear"},
			},
		},
	}
}

func sampleDiagnosticReport() model.DiagnosticReport {
	base := sampleBaseReport()
	confidence := model.Confidence{Overall: 0.82, Label: "high"}
	drift := model.CardinalityDrift{CompositeDrift: 12.5, Classification: "critical"}
	stability := model.PlanStability{Label: "stable"}
	safety := model.RegressionSafety{SafeToOptimize: true}
	return model.DiagnosticReport{
		Base:             base,
		Confidence:       &confidence,
		CardinalityDrift: &drift,
		Stability:        &stability,
		Safety:           &safety,
		IndexSynthesis: &model.IndexSynthesis{
			Recommendations: []model.IndexRecommendation{
				{Table: "orders", DDL: "CREATE INDEX idx_orders_status ON orders (status)", Improvement: "high"},
			},
		},
		ConsistencyViolations: []string{"rows_returned exceeds rows_examined"},
	}
}

func sampleValidationFailure() model.ValidationFailureReport {
	return model.ValidationFailureReport{
		Status:      "invalid",
		Stage:       "column",
		Suggestions: []string{"status_id"},
	}
}

func TestTextRenderer_RendersBaseReport(t *testing.T) {
	var buf bytes.Buffer
	(&TextRenderer{w: &buf}).Render(sampleBaseReport())
	out := buf.String()
	if !strings.Contains(out, "abc123") {
		t.Errorf("expected query hash in output, got %q", out)
	}
	if !strings.Contains(out, "Missing index") {
		t.Errorf("expected finding title in output, got %q", out)
	}
}

func TestTextRenderer_RendersDiagnosticReport(t *testing.T) {
	var buf bytes.Buffer
	(&TextRenderer{w: &buf}).Render(sampleDiagnosticReport())
	out := buf.String()
	for _, want := range []string{"high (0.82)", "12.5x (critical)", "stable", "CREATE INDEX"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got %q", want, out)
		}
	}
}

func TestTextRenderer_RendersValidationFailure(t *testing.T) {
	var buf bytes.Buffer
	(&TextRenderer{w: &buf}).Render(sampleValidationFailure())
	out := buf.String()
	if !strings.Contains(out, "invalid") || !strings.Contains(out, "column") {
		t.Errorf("expected status/stage in output, got %q", out)
	}
}

func TestTextRenderer_NoFindingsRendersSafeNote(t *testing.T) {
	var buf bytes.Buffer
	base := sampleBaseReport()
	base.Findings = nil
	(&TextRenderer{w: &buf}).Render(base)
	if !strings.Contains(buf.String(), "No findings") {
		t.Errorf("expected a no-findings note, got %q", buf.String())
	}
}

func TestPlainRenderer_RendersDiagnosticReport(t *testing.T) {
	var buf bytes.Buffer
	(&PlainRenderer{w: &buf}).Render(sampleDiagnosticReport())
	out := buf.String()
	if !strings.Contains(out, "Grade:") {
		t.Errorf("expected a Grade line, got %q", out)
	}
	if strings.Contains(out, "Regression trend:") {
		t.Errorf("expected no Regression trend line when Regression is nil, got %q", out)
	}
	if !strings.Contains(out, "Confidence:") {
		t.Errorf("expected a Confidence line, got %q", out)
	}
}

func TestMarkdownRenderer_RendersTablesAndHeadings(t *testing.T) {
	var buf bytes.Buffer
	(&MarkdownRenderer{w: &buf}).Render(sampleDiagnosticReport())
	out := buf.String()
	for _, want := range []string{"# sqlsentinel", "## Score", "## Findings", "## Diagnostics", "```sql"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected markdown to contain %q, got %q", want, out)
		}
	}
}

func TestJSONRenderer_RendersValidJSONWithExpectedFields(t *testing.T) {
	var buf bytes.Buffer
	(&JSONRenderer{w: &buf}).Render(sampleDiagnosticReport())

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if decoded["query_hash"] != "abc123" {
		t.Errorf("query_hash = %v, want abc123", decoded["query_hash"])
	}
	if _, ok := decoded["confidence"]; !ok {
		t.Errorf("expected a confidence key, got %v", decoded)
	}
}

func TestJSONRenderer_RendersValidationFailure(t *testing.T) {
	var buf bytes.Buffer
	(&JSONRenderer{w: &buf}).Render(sampleValidationFailure())

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if decoded["status"] != "invalid" || decoded["stage"] != "column" {
		t.Errorf("decoded = %v, want status=invalid stage=column", decoded)
	}
}

func TestNewRenderer_SelectsByFormat(t *testing.T) {
	cases := map[string]string{
		"json":     "*report.JSONRenderer",
		"markdown": "*report.MarkdownRenderer",
		"plain":    "*report.PlainRenderer",
		"text":     "*report.TextRenderer",
		"":         "*report.TextRenderer",
	}
	for format, want := range cases {
		r := NewRenderer(format, &bytes.Buffer{})
		got := typeName(r)
		if got != want {
			t.Errorf("NewRenderer(%q) = %s, want %s", format, got, want)
		}
	}
}

func typeName(r Renderer) string {
	switch r.(type) {
	case *JSONRenderer:
		return "*report.JSONRenderer"
	case *MarkdownRenderer:
		return "*report.MarkdownRenderer"
	case *PlainRenderer:
		return "*report.PlainRenderer"
	case *TextRenderer:
		return "*report.TextRenderer"
	default:
		return "unknown"
	}
}
