package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nethalo/sqlsentinel/internal/model"
)

// TextRenderer produces Lip Gloss styled terminal output.
type TextRenderer struct {
	w io.Writer
}

func (r *TextRenderer) Render(result any) {
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

func (r *TextRenderer) renderValidationFailure(v model.ValidationFailureReport) {
	width := 60
	fmt.Fprintln(r.w)
	title := TitleStyle.Render(fmt.Sprintf("sqlsentinel — %s", v.Status))
	lines := []string{r.labelValue("Stage:", v.Stage)}
	for _, s := range v.Suggestions {
		lines = append(lines, "  "+MutedText.Render("did you mean: "+s))
	}
	box := DangerBoxStyle.Width(width).Render(title + "\n" + strings.Join(lines, "\n"))
	fmt.Fprintln(r.w, box)
	fmt.Fprintln(r.w)
}

func (r *TextRenderer) renderBase(v model.BaseReport) {
	width := 72
	fmt.Fprintln(r.w)

	header := TitleStyle.Render("sqlsentinel — Query Analysis")
	metaLines := []string{
		r.labelValue("Query hash:", v.QueryHash),
		r.labelValue("Grade:", r.colorGrade(v.Score.Grade)),
		r.labelValue("Composite score:", fmt.Sprintf("%.1f / 100", v.Score.CompositeScore)),
		r.labelValue("Complexity:", fmt.Sprintf("%s (%s)", v.Metrics.Complexity.String(), v.Metrics.Complexity.Label())),
		r.labelValue("Rows examined:", formatNumber(v.Metrics.RowsExamined)),
		r.labelValue("Rows returned:", formatNumber(v.Metrics.RowsReturned)),
	}
	metaBox := BoxStyle.Width(width).Render(header + "\n" + strings.Join(metaLines, "\n"))
	fmt.Fprintln(r.w, metaBox)

	r.renderScalability(v.Scalability, width)
	r.renderFindings(v.Findings, width)
}

func (r *TextRenderer) renderDiagnostic(v model.DiagnosticReport) {
	r.renderBase(v.Base)

	width := 72
	var lines []string
	if v.Confidence != nil {
		lines = append(lines, r.labelValue("Confidence:", fmt.Sprintf("%s (%.2f)", v.Confidence.Label, v.Confidence.Overall)))
	}
	if v.CardinalityDrift != nil {
		lines = append(lines, r.labelValue("Cardinality drift:", fmt.Sprintf("%.1fx (%s)", v.CardinalityDrift.CompositeDrift, v.CardinalityDrift.Classification)))
	}
	if v.Stability != nil {
		lines = append(lines, r.labelValue("Plan stability:", v.Stability.Label))
	}
	if v.Safety != nil {
		lines = append(lines, r.labelValue("Safe to optimize:", fmt.Sprintf("%v", v.Safety.SafeToOptimize)))
	}
	if v.ConcurrencyRisk != nil {
		lines = append(lines, r.labelValue("Lock scope:", v.ConcurrencyRisk.LockScope))
	}
	if v.MemoryPressure != nil {
		lines = append(lines, r.labelValue("Memory pressure:", v.MemoryPressure.Risk))
	}
	if v.Regression != nil {
		lines = append(lines, r.labelValue("Regression trend:", v.Regression.Trend))
	}
	if len(lines) > 0 {
		title := TitleStyle.Render("Diagnostics")
		box := BoxStyle.Width(width).Render(title + "\n" + strings.Join(lines, "\n"))
		fmt.Fprintln(r.w, box)
	}

	if v.IndexSynthesis != nil && len(v.IndexSynthesis.Recommendations) > 0 {
		var recLines []string
		for _, rec := range v.IndexSynthesis.Recommendations {
			recLines = append(recLines, fmt.Sprintf("%s\n  %s", rec.DDL, MutedText.Render("improvement: "+rec.Improvement)))
		}
		title := TitleStyle.Render("Recommended Indexes")
		box := SafeBoxStyle.Width(width).Render(title + "\n" + strings.Join(recLines, "\n\n"))
		fmt.Fprintln(r.w, box)
	}

	if len(v.ConsistencyViolations) > 0 {
		note := MutedText.Render("consistency check: " + strings.Join(v.ConsistencyViolations, "; "))
		fmt.Fprintln(r.w, note)
	}

	fmt.Fprintln(r.w)
}

func (r *TextRenderer) renderScalability(s model.ScalabilityProjection, width int) {
	if len(s.Projections) == 0 {
		return
	}
	var lines []string
	lines = append(lines, r.labelValue("Risk:", string(s.Risk)))
	for _, p := range s.Projections {
		lines = append(lines, fmt.Sprintf("  at %s rows: %s (%s)", formatNumber(p.ProjectedRows), formatMs(p.ProjectedTimeMs), p.Model))
	}
	title := TitleStyle.Render("Scalability")
	box := BoxStyle.Width(width).Render(title + "\n" + strings.Join(lines, "\n"))
	fmt.Fprintln(r.w, box)
}

func (r *TextRenderer) renderFindings(findings []model.Finding, width int) {
	if len(findings) == 0 {
		note := SafeText.Render(IconSafe + " No findings.")
		fmt.Fprintln(r.w, note)
		return
	}
	for _, f := range findings {
		icon, style := r.severityStyle(f.Severity)
		content := fmt.Sprintf("%s\n%s", TitleStyle.Render(icon+" "+f.Title), f.Description)
		if f.Recommendation != "" {
			content += "\n\n" + MutedText.Render(f.Recommendation)
		}
		box := style.Width(width).Render(content)
		fmt.Fprintln(r.w, box)
	}
}

func (r *TextRenderer) severityStyle(s model.Severity) (string, lipgloss.Style) {
	switch s {
	case model.SeverityCritical:
		return IconDanger, DangerBoxStyle
	case model.SeverityWarning:
		return IconWarning, WarningBoxStyle
	case model.SeverityOptimization:
		return IconInfo, BoxStyle
	default:
		return IconInfo, BoxStyle
	}
}

func (r *TextRenderer) colorGrade(g model.Grade) string {
	switch g {
	case model.GradeAPlus, model.GradeA:
		return SafeText.Render(string(g))
	case model.GradeB, model.GradeC:
		return WarningText.Render(string(g))
	default:
		return DangerText.Render(string(g))
	}
}

func (r *TextRenderer) labelValue(label, value string) string {
	return LabelStyle.Render(label) + " " + ValueStyle.Render(value)
}

func formatNumber(n int64) string {
	if n >= 1_000_000_000 {
		return fmt.Sprintf("%.0f,000,000,000+", float64(n)/1_000_000_000)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var result strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(c)
	}
	return result.String()
}

func formatMs(ms float64) string {
	if ms >= 1000 {
		return fmt.Sprintf("%.1fs", ms/1000)
	}
	return fmt.Sprintf("%.1fms", ms)
}
