package report

import (
	"fmt"
	"io"

	"github.com/nethalo/sqlsentinel/internal/model"
)

// PlainRenderer produces unformatted text output safe for piping.
type PlainRenderer struct {
	w io.Writer
}

func (r *PlainRenderer) Render(result any) {
	switch v := result.(type) {
	case model.DiagnosticReport:
		r.renderDiagnostic(v)
	case model.BaseReport:
		r.renderBase(v)
	case model.ValidationFailureReport:
		r.renderValidationFailure(v)
	default:
		fmt.Fprintf(r.w, "unrenderable result type %T\n", v)
	}
}

func (r *PlainRenderer) renderValidationFailure(v model.ValidationFailureReport) {
	fmt.Fprintf(r.w, "=== sqlsentinel — %s ===\n\n", v.Status)
	fmt.Fprintf(r.w, "Stage:         %s\n", v.Stage)
	for _, s := range v.Suggestions {
		fmt.Fprintf(r.w, "did you mean:  %s\n", s)
	}
}

func (r *PlainRenderer) renderBase(v model.BaseReport) {
	fmt.Fprintf(r.w, "=== sqlsentinel — Query Analysis ===\n\n")
	fmt.Fprintf(r.w, "Query hash:    %s\n", v.QueryHash)
	fmt.Fprintf(r.w, "Grade:         %s\n", v.Score.Grade)
	fmt.Fprintf(r.w, "Score:         %.1f / 100\n", v.Score.CompositeScore)
	fmt.Fprintf(r.w, "Complexity:    %s (%s)\n", v.Metrics.Complexity.String(), v.Metrics.Complexity.Label())
	fmt.Fprintf(r.w, "Rows examined: %s\n", formatNumber(v.Metrics.RowsExamined))
	fmt.Fprintf(r.w, "Rows returned: %s\n", formatNumber(v.Metrics.RowsReturned))
	fmt.Fprintln(r.w)

	if len(v.Scalability.Projections) > 0 {
		fmt.Fprintf(r.w, "--- Scalability ---\n")
		fmt.Fprintf(r.w, "Risk:          %s\n", v.Scalability.Risk)
		for _, p := range v.Scalability.Projections {
			fmt.Fprintf(r.w, "  at %s rows: %s (%s)\n", formatNumber(p.ProjectedRows), formatMs(p.ProjectedTimeMs), p.Model)
		}
		fmt.Fprintln(r.w)
	}

	fmt.Fprintf(r.w, "--- Findings ---\n")
	if len(v.Findings) == 0 {
		fmt.Fprintf(r.w, "None.\n")
	}
	for _, f := range v.Findings {
		fmt.Fprintf(r.w, "[%s] %s\n%s\n", f.Severity, f.Title, f.Description)
		if f.Recommendation != "" {
			fmt.Fprintf(r.w, "%s\n", f.Recommendation)
		}
		fmt.Fprintln(r.w)
	}
}

func (r *PlainRenderer) renderDiagnostic(v model.DiagnosticReport) {
	r.renderBase(v.Base)

	fmt.Fprintf(r.w, "--- Diagnostics ---\n")
	if v.Confidence != nil {
		fmt.Fprintf(r.w, "Confidence:        %s (%.2f)\n", v.Confidence.Label, v.Confidence.Overall)
	}
	if v.CardinalityDrift != nil {
		fmt.Fprintf(r.w, "Cardinality drift: %.1fx (%s)\n", v.CardinalityDrift.CompositeDrift, v.CardinalityDrift.Classification)
	}
	if v.Stability != nil {
		fmt.Fprintf(r.w, "Plan stability:    %s\n", v.Stability.Label)
	}
	if v.Safety != nil {
		fmt.Fprintf(r.w, "Safe to optimize:  %v\n", v.Safety.SafeToOptimize)
	}
	if v.ConcurrencyRisk != nil {
		fmt.Fprintf(r.w, "Lock scope:        %s\n", v.ConcurrencyRisk.LockScope)
	}
	if v.MemoryPressure != nil {
		fmt.Fprintf(r.w, "Memory pressure:   %s\n", v.MemoryPressure.Risk)
	}
	if v.Regression != nil {
		fmt.Fprintf(r.w, "Regression trend:  %s\n", v.Regression.Trend)
	}
	fmt.Fprintln(r.w)

	if v.IndexSynthesis != nil && len(v.IndexSynthesis.Recommendations) > 0 {
		fmt.Fprintf(r.w, "--- Recommended Indexes ---\n")
		for _, rec := range v.IndexSynthesis.Recommendations {
			fmt.Fprintf(r.w, "%s (improvement: %s)\n", rec.DDL, rec.Improvement)
		}
		fmt.Fprintln(r.w)
	}

	if len(v.ConsistencyViolations) > 0 {
		fmt.Fprintf(r.w, "consistency check: %v\n", v.ConsistencyViolations)
	}
}
