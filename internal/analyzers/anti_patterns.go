package analyzers

import (
	"fmt"
	"regexp"

	"github.com/nethalo/sqlsentinel/internal/config"
	"github.com/nethalo/sqlsentinel/internal/model"
	"github.com/nethalo/sqlsentinel/internal/sqlshape"
)

// reImplicitConversion matches a CAST/CONVERT wrapping a bare column
// anywhere in the plan's access description — the one anti-pattern
// this analyzer reads from the raw EXPLAIN text rather than the shape,
// since a coercion is only interesting when the plan shows it actually
// defeated an index (internal/rules.ImplicitCast already flags the
// syntactic case unconditionally).
var reImplicitConversion = regexp.MustCompile(`(?i)\b(?:cast|convert)\s*\(`)

// reIDLikeColumn matches a select-list column named "id", bare or
// qualified ("users.id"), the redundant-DISTINCT heuristic's
// primary-key-like signature. Names ending in "_id" do not match.
var reIDLikeColumn = regexp.MustCompile(`(?i)\bid$`)

// AntiPatterns runs the broader sweep of structural anti-pattern
// detectors beyond the single-pass rules in internal/rules: each
// detector is independent, and one that fires tags its key into
// Detected and contributes exactly one finding (redundant-DISTINCT's is
// Info-level, not a warning).
func AntiPatterns(shape *sqlshape.Shape, m *model.Metrics, planText string, cfg config.AntiPatternThresholds) (model.AntiPatternReport, []model.Finding) {
	var report model.AntiPatternReport
	var findings []model.Finding
	if shape == nil {
		return report, findings
	}

	detect := func(key string, hit bool, f model.Finding) {
		if !hit {
			return
		}
		report.Detected = append(report.Detected, key)
		findings = append(findings, f)
	}

	detect("excessive_or_chain", shape.ORChainLength >= cfg.OrChainThreshold,
		model.NewFinding(model.SeverityWarning, model.CategoryAntiPattern,
			"Excessive OR chain",
			fmt.Sprintf("%d OR branches is past the point where the optimizer reliably chooses index_merge over a scan.", shape.ORChainLength)).
			WithRecommendation("Rewrite as UNION of indexed lookups or collapse same-column branches into IN(...)."))

	detect("correlated_subquery", shape.HasCorrelatedSubquery,
		model.NewFinding(model.SeverityWarning, model.CategoryAntiPattern,
			"Correlated subquery",
			"A subquery references a column from the outer query, so it re-evaluates once per outer row instead of once overall.").
			WithRecommendation("Rewrite as a JOIN or a window function where the engine supports one."))

	detect("not_in_subquery", shape.HasNotInSubquery,
		model.NewFinding(model.SeverityWarning, model.CategoryAntiPattern,
			"NOT IN with a subquery",
			"NOT IN (SELECT ...) silently returns no rows if the subquery produces any NULL, and many planners can't anti-join it efficiently.").
			WithRecommendation("Use NOT EXISTS or LEFT JOIN ... WHERE right.key IS NULL instead."))

	detect("leading_wildcard_like", shape.HasLeadingWildcardLike,
		model.NewFinding(model.SeverityOptimization, model.CategoryAntiPattern,
			"Leading wildcard LIKE",
			"A LIKE pattern starting with '%' cannot use a standard B-tree index prefix.").
			WithRecommendation("Consider full-text search or a trigram index if this pattern runs often."))

	detect("missing_limit_on_large_result", !shape.HasLimit && !shape.HasGroupBy && m.RowsReturned > cfg.MissingLimitRowThreshold,
		model.NewFinding(model.SeverityOptimization, model.CategoryAntiPattern,
			"Unbounded result set",
			fmt.Sprintf("The query returns roughly %d rows with no LIMIT; most callers don't need the entire set in one response.", m.RowsReturned)).
			WithRecommendation("Add pagination (LIMIT/OFFSET or keyset pagination) unless the caller genuinely consumes every row."))

	detect("order_by_rand", shape.HasOrderByRand,
		model.NewFinding(model.SeverityCritical, model.CategoryAntiPattern,
			"ORDER BY RAND()",
			"ORDER BY RAND() forces a full materialization and sort of the matched rows purely to shuffle them.").
			WithRecommendation("Sample rows with a random offset/ID range instead of sorting the whole set."))

	detect("function_on_indexed_column", cfg.FunctionOnColumnFlag && len(shape.FunctionWrappedColumns) > 0,
		model.NewFinding(model.SeverityOptimization, model.CategoryAntiPattern,
			"Function wraps a filtered column",
			"A function call wraps a WHERE column, which prevents the optimizer from using a plain index on it.").
			WithRecommendation("Rewrite the predicate so the column is bare, or add an expression index matching the function."))

	detect("redundant_distinct", shape.HasDistinct && selectsPrimaryKeyLike(shape.SelectColumns),
		model.NewFinding(model.SeverityInfo, model.CategoryAntiPattern,
			"Possibly redundant DISTINCT",
			"DISTINCT is applied to a select list that appears to include a primary-key-like column, which is already unique per row.").
			WithRecommendation("Confirm DISTINCT is still needed; a unique column in the select list makes every row distinct already."))

	detect("implicit_type_conversion", cfg.ImplicitCastFlag && reImplicitConversion.MatchString(planText),
		model.NewFinding(model.SeverityWarning, model.CategoryAntiPattern,
			"Implicit type conversion observed in the plan",
			"The execution plan shows a CAST/CONVERT applied during evaluation, which blocks index use on the converted column.").
			WithRecommendation("Store the value in its native type to let the optimizer use an index directly."))

	return report, findings
}

// selectsPrimaryKeyLike is a coarse heuristic: a select list naming a
// column called "id" (optionally table-qualified) is very likely
// already unique per row, making an outer DISTINCT redundant.
func selectsPrimaryKeyLike(columns []string) bool {
	for _, c := range columns {
		if c == "id" || reIDLikeColumn.MatchString(c) {
			return true
		}
	}
	return false
}
