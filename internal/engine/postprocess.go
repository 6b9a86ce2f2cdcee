package engine

import (
	"strings"

	"github.com/nethalo/sqlsentinel/internal/model"
	"github.com/nethalo/sqlsentinel/internal/sqlshape"
)

// postProcess applies the pipeline's cross-cutting passes over the
// combined finding set, in order: suppress findings an optimal access
// type makes meaningless, suppress findings a stronger root cause
// already explains, deduplicate, downgrade severity when confidence is
// low, then sort by severity.
func postProcess(findings []model.Finding, m *model.Metrics, shape *sqlshape.Shape, confidence model.Confidence) []model.Finding {
	findings = suppressOptimalAccess(findings, m, shape)
	findings = suppressExplainedByRootCause(findings, m)
	findings = dedupe(findings)
	findings = gateByConfidence(findings, confidence)
	return model.SortBySeverity(findings)
}

// suppressOptimalAccess drops index-related findings when the query's
// primary access type is already optimal (zero_row_const, const_row,
// single_row_lookup): no index change could possibly improve on that.
// It also drops two narrower classes of now-meaningless advice: a
// recommendation that mentions ORDER BY when the query has none, and a
// covering-index recommendation when the query selects every column
// with SELECT * (nothing can "cover" a wildcard select).
func suppressOptimalAccess(findings []model.Finding, m *model.Metrics, shape *sqlshape.Shape) []model.Finding {
	if !m.PrimaryAccessType.IsOptimal() {
		return findings
	}
	hasOrderBy := shape != nil && len(shape.OrderByColumns) > 0
	selectStar := shape != nil && shape.SelectStar

	out := findings[:0:0]
	for _, f := range findings {
		switch {
		case f.Category == model.CategoryNoIndex, f.Category == model.CategoryIndexSynthesis:
			continue
		case !hasOrderBy && strings.Contains(strings.ToUpper(f.Recommendation), "ORDER BY"):
			continue
		case selectStar && strings.Contains(strings.ToLower(f.Recommendation), "covering"):
			continue
		}
		out = append(out, f)
	}
	return out
}

// suppressExplainedByRootCause drops the generic no_index and
// full_table_scan findings once a more specific root cause is already
// on the table: a function wrapping the filtered column, a leading
// wildcard LIKE, a long OR chain, an intentional scan, or a concrete
// synthesized index recommendation. Any of these explains the scan
// better than the generic "no index" observation, which just repeats
// the same symptom from a different angle.
func suppressExplainedByRootCause(findings []model.Finding, m *model.Metrics) []model.Finding {
	hasRootCause := m != nil && m.IsIntentionalScan
	if !hasRootCause {
		for _, f := range findings {
			if isRootCauseFinding(f) {
				hasRootCause = true
				break
			}
		}
	}
	if !hasRootCause {
		return findings
	}
	out := findings[:0:0]
	for _, f := range findings {
		if f.Category == model.CategoryNoIndex || f.Category == model.CategoryFullTableScan {
			continue
		}
		out = append(out, f)
	}
	return out
}

// isRootCauseFinding reports whether f names one of the root causes
// that explain away a table scan on its own: a function wrapping a
// filtered column, a leading wildcard LIKE, a long OR chain, or a
// concrete synthesized index (the "missing_index" root cause — a
// specific recommendation, as opposed to the generic no_index
// observation).
func isRootCauseFinding(f model.Finding) bool {
	if f.Category == model.CategoryIndexSynthesis && strings.HasPrefix(f.Title, "Candidate index") {
		return true
	}
	if f.Category != model.CategoryAntiPattern {
		return false
	}
	title := strings.ToLower(f.Title)
	return strings.Contains(title, "function wraps") ||
		strings.Contains(title, "wildcard") ||
		strings.Contains(title, "or chain")
}

// dedupe runs three independent passes over the combined finding set:
// collapse findings that carry the identical recommendation text down
// to the most severe one, drop a table's generic no_index finding once
// a concrete index has already been synthesized for that table, and
// drop a full_table_scan finding once some no_index finding survives
// (a no_index observation is always the more specific of the two).
func dedupe(findings []model.Finding) []model.Finding {
	findings = dedupeIdenticalRecommendations(findings)
	findings = dedupeNoIndexWhereSynthesisExists(findings)
	findings = dedupeFullTableScanWhereNoIndexSurvives(findings)
	return findings
}

// dedupeIdenticalRecommendations keeps one finding per distinct,
// non-empty recommendation text — the most severe of the set — since
// several analyzers converge on the same fix from different angles.
// Findings with no recommendation always pass through untouched.
func dedupeIdenticalRecommendations(findings []model.Finding) []model.Finding {
	indexByRec := make(map[string]int, len(findings))
	out := findings[:0:0]
	for _, f := range findings {
		if f.Recommendation == "" {
			out = append(out, f)
			continue
		}
		if i, ok := indexByRec[f.Recommendation]; ok {
			if f.Severity < out[i].Severity {
				out[i] = f
			}
			continue
		}
		indexByRec[f.Recommendation] = len(out)
		out = append(out, f)
	}
	return out
}

// dedupeNoIndexWhereSynthesisExists drops a table's CategoryNoIndex
// finding once index_synthesis has already produced a concrete,
// actionable recommendation for that same table.
func dedupeNoIndexWhereSynthesisExists(findings []model.Finding) []model.Finding {
	synthesized := make(map[string]bool)
	for _, f := range findings {
		if f.Category != model.CategoryIndexSynthesis {
			continue
		}
		if table, ok := f.Metadata["table"].(string); ok && table != "" {
			synthesized[table] = true
		}
	}
	if len(synthesized) == 0 {
		return findings
	}
	out := findings[:0:0]
	for _, f := range findings {
		if f.Category == model.CategoryNoIndex {
			if table, ok := f.Metadata["table"].(string); ok && synthesized[table] {
				continue
			}
		}
		out = append(out, f)
	}
	return out
}

// dedupeFullTableScanWhereNoIndexSurvives drops every full_table_scan
// finding once at least one no_index finding survives the earlier
// passes: no_index already names the more specific problem (a filtered
// scan with no usable index), so a bare "table scan happened" finding
// next to it is redundant.
func dedupeFullTableScanWhereNoIndexSurvives(findings []model.Finding) []model.Finding {
	hasNoIndex := false
	for _, f := range findings {
		if f.Category == model.CategoryNoIndex {
			hasNoIndex = true
			break
		}
	}
	if !hasNoIndex {
		return findings
	}
	out := findings[:0:0]
	for _, f := range findings {
		if f.Category == model.CategoryFullTableScan {
			continue
		}
		out = append(out, f)
	}
	return out
}

// gateByConfidence softens severity in proportion to how much the
// report's own confidence score undercuts it: below 0.5 ("unreliable"),
// both Critical and Warning findings step down one level; between 0.5
// and 0.7 ("low"), only Critical steps down — a Warning is already a
// soft signal and shouldn't be buried at low confidence too.
func gateByConfidence(findings []model.Finding, confidence model.Confidence) []model.Finding {
	var suffix string
	var downgrade func(model.Severity) bool
	switch confidence.Label {
	case "unreliable":
		suffix = " [low confidence]"
		downgrade = func(s model.Severity) bool { return s == model.SeverityCritical || s == model.SeverityWarning }
	case "low":
		suffix = " [moderate confidence]"
		downgrade = func(s model.Severity) bool { return s == model.SeverityCritical }
	default:
		return findings
	}
	out := make([]model.Finding, len(findings))
	for i, f := range findings {
		if downgrade(f.Severity) {
			f.Severity = f.Severity.Downgrade()
			f.Title += suffix
		}
		out[i] = f
	}
	return out
}

// checkConsistency runs log-only invariant checks that never affect
// scoring or findings, purely to catch a metrics-extraction bug before
// it silently produces a nonsensical report.
func checkConsistency(report model.DiagnosticReport) []string {
	var violations []string
	m := report.Base.Metrics
	if m == nil {
		return violations
	}

	if m.RowsReturned > m.RowsExamined && m.RowsExamined > 0 {
		violations = append(violations, "rows_returned exceeds rows_examined")
	}
	if m.HasZeroRowConst && m.Complexity.String() != "Constant" {
		violations = append(violations, "zero_row_const access but complexity is not Constant")
	}
	if report.Confidence != nil && report.Confidence.Overall < 0 {
		violations = append(violations, "confidence score below zero")
	}
	if report.CardinalityDrift != nil && report.CardinalityDrift.CompositeDrift < 0 {
		violations = append(violations, "negative composite cardinality drift")
	}
	return violations
}
