package report

import (
	"fmt"
	"io"

	"github.com/nethalo/sqlsentinel/internal/model"
)

// MarkdownRenderer produces markdown output for documentation/tickets.
type MarkdownRenderer struct {
	w io.Writer
}

func (r *MarkdownRenderer) Render(result any) {
	switch v := result.(type) {
	case model.DiagnosticReport:
		r.renderDiagnostic(v)
	case model.BaseReport:
		r.renderBase(v)
	case model.ValidationFailureReport:
		r.renderValidationFailure(v)
	default:
		fmt.Fprintf(r.w, "**unrenderable result type %T**\n", v)
	}
}

func (r *MarkdownRenderer) renderValidationFailure(v model.ValidationFailureReport) {
	fmt.Fprintf(r.w, "# sqlsentinel — %s\n\n", v.Status)
	fmt.Fprintf(r.w, "| Property | Value |\n|---|---|\n")
	fmt.Fprintf(r.w, "| Stage | %s |\n", v.Stage)
	if len(v.Suggestions) > 0 {
		fmt.Fprintf(r.w, "\n**Did you mean:**\n\n")
		for _, s := range v.Suggestions {
			fmt.Fprintf(r.w, "- `%s`\n", s)
		}
	}
}

func (r *MarkdownRenderer) renderBase(v model.BaseReport) {
	fmt.Fprintf(r.w, "# sqlsentinel — Query Analysis\n\n")
	fmt.Fprintf(r.w, "**Query:** `%s`\n\n", v.SQL)

	fmt.Fprintf(r.w, "## Score\n\n")
	fmt.Fprintf(r.w, "| Property | Value |\n|---|---|\n")
	fmt.Fprintf(r.w, "| Grade | **%s** |\n", v.Score.Grade)
	fmt.Fprintf(r.w, "| Composite score | %.1f / 100 |\n", v.Score.CompositeScore)
	fmt.Fprintf(r.w, "| Complexity | %s (%s) |\n", v.Metrics.Complexity.String(), v.Metrics.Complexity.Label())
	fmt.Fprintf(r.w, "| Rows examined | ~%s |\n", formatNumber(v.Metrics.RowsExamined))
	fmt.Fprintf(r.w, "| Rows returned | ~%s |\n\n", formatNumber(v.Metrics.RowsReturned))

	if len(v.Scalability.Projections) > 0 {
		fmt.Fprintf(r.w, "## Scalability\n\n")
		fmt.Fprintf(r.w, "Risk: **%s**\n\n", v.Scalability.Risk)
		fmt.Fprintf(r.w, "| Rows | Projected time | Model |\n|---|---|---|\n")
		for _, p := range v.Scalability.Projections {
			fmt.Fprintf(r.w, "| %s | %s | %s |\n", formatNumber(p.ProjectedRows), formatMs(p.ProjectedTimeMs), p.Model)
		}
		fmt.Fprintln(r.w)
	}

	fmt.Fprintf(r.w, "## Findings\n\n")
	if len(v.Findings) == 0 {
		fmt.Fprintf(r.w, "None.\n\n")
	}
	for _, f := range v.Findings {
		fmt.Fprintf(r.w, "### [%s] %s\n\n%s\n\n", f.Severity, f.Title, f.Description)
		if f.Recommendation != "" {
			fmt.Fprintf(r.w, "**Recommendation:** %s\n\n", f.Recommendation)
		}
	}
}

func (r *MarkdownRenderer) renderDiagnostic(v model.DiagnosticReport) {
	r.renderBase(v.Base)

	fmt.Fprintf(r.w, "## Diagnostics\n\n")
	fmt.Fprintf(r.w, "| Property | Value |\n|---|---|\n")
	if v.Confidence != nil {
		fmt.Fprintf(r.w, "| Confidence | %s (%.2f) |\n", v.Confidence.Label, v.Confidence.Overall)
	}
	if v.CardinalityDrift != nil {
		fmt.Fprintf(r.w, "| Cardinality drift | %.1fx (%s) |\n", v.CardinalityDrift.CompositeDrift, v.CardinalityDrift.Classification)
	}
	if v.Stability != nil {
		fmt.Fprintf(r.w, "| Plan stability | %s |\n", v.Stability.Label)
	}
	if v.Safety != nil {
		fmt.Fprintf(r.w, "| Safe to optimize | %v |\n", v.Safety.SafeToOptimize)
	}
	if v.ConcurrencyRisk != nil {
		fmt.Fprintf(r.w, "| Lock scope | %s |\n", v.ConcurrencyRisk.LockScope)
	}
	if v.MemoryPressure != nil {
		fmt.Fprintf(r.w, "| Memory pressure | %s |\n", v.MemoryPressure.Risk)
	}
	if v.Regression != nil {
		fmt.Fprintf(r.w, "| Regression trend | %s |\n", v.Regression.Trend)
	}
	fmt.Fprintln(r.w)

	if v.IndexSynthesis != nil && len(v.IndexSynthesis.Recommendations) > 0 {
		fmt.Fprintf(r.w, "## Recommended Indexes\n\n")
		for _, rec := range v.IndexSynthesis.Recommendations {
			fmt.Fprintf(r.w, "```sql\n%s\n```\n\nImprovement: %s\n\n", rec.DDL, rec.Improvement)
		}
	}

	if len(v.ConsistencyViolations) > 0 {
		fmt.Fprintf(r.w, "---\n\n*consistency check: %v*\n", v.ConsistencyViolations)
	}
}
