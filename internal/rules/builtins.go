package rules

import (
	"fmt"
	"regexp"

	"github.com/nethalo/sqlsentinel/internal/model"
	"github.com/nethalo/sqlsentinel/internal/sqlshape"
)

// reCastLike matches CAST(...) / CONVERT(...) wrapping a column in a
// predicate — the narrow implicit-conversion signature, as opposed to
// any function call at all.
var reCastLike = regexp.MustCompile(`(?i)\b(?:CAST\s*\(|CONVERT\s*\()`)

// SelectStar flags `SELECT *`, since a wildcard select defeats covering
// indexes and pulls unnecessary bytes over the wire. The configured
// minimum is compared with the number of select-list entries, not with
// the table's column count; for a bare `SELECT *` that number is 1, so
// any minimum above 1 keeps the rule from firing on it.
func SelectStar(in Input) (model.Finding, bool) {
	if in.Shape == nil || !in.Shape.SelectStar {
		return model.Finding{}, false
	}
	if in.Cfg.SelectStarMinColumns > 0 && len(in.Shape.SelectColumns) > 0 &&
		len(in.Shape.SelectColumns) < in.Cfg.SelectStarMinColumns {
		return model.Finding{}, false
	}
	f := model.NewFinding(model.SeverityOptimization, model.CategoryAntiPattern,
		"SELECT * pulls every column",
		"The query selects all columns instead of naming the ones it needs, which "+
			"defeats covering indexes and increases row size on the wire.").
		WithRecommendation("List only the columns the caller actually uses.")
	return f, true
}

// MissingIndex flags a table-scan access type on a query that does
// have a WHERE clause — a scan with no filter at all is an intentional
// full read, not a missing index.
func MissingIndex(in Input) (model.Finding, bool) {
	if in.Metrics == nil || !in.Metrics.HasTableScan || in.Metrics.IsIntentionalScan {
		return model.Finding{}, false
	}
	if in.Shape == nil || len(in.Shape.WhereColumns) == 0 {
		return model.Finding{}, false
	}
	f := model.NewFinding(model.SeverityWarning, model.CategoryNoIndex,
		"Full table scan with a filtering WHERE clause",
		"The plan performs a table scan even though the query filters on "+
			fmt.Sprintf("%d column(s); no usable index covers this predicate.", len(in.Shape.WhereColumns))).
		WithRecommendation("Add an index covering the WHERE clause's leading column(s).").
		WithMeta("table", primaryTable(in.Shape))
	return f, true
}

// FullTableScan flags a table-scan access type on a query with no
// WHERE clause at all — this is distinct from MissingIndex, which
// covers a scan that does filter but has no usable index to filter
// with. An unfiltered scan is only acceptable when the plan itself
// marks it intentional (a small table, or a deliberate full read).
func FullTableScan(in Input) (model.Finding, bool) {
	if in.Metrics == nil || !in.Metrics.HasTableScan || in.Metrics.IsIntentionalScan {
		return model.Finding{}, false
	}
	if in.Shape == nil || len(in.Shape.WhereColumns) > 0 {
		return model.Finding{}, false
	}
	f := model.NewFinding(model.SeverityWarning, model.CategoryFullTableScan,
		"Full table scan with no filtering predicate",
		"The plan reads every row of the table: there is no WHERE clause to filter on, and the "+
			"plan doesn't mark this as an intentional full read.").
		WithRecommendation("Confirm the query is meant to read the whole table; add a WHERE clause if not.").
		WithMeta("table", primaryTable(in.Shape))
	return f, true
}

// primaryTable returns the query's only unambiguous table name — the
// sole FROM/JOIN target — or "" when the shape names more than one.
func primaryTable(shape *sqlshape.Shape) string {
	if shape == nil || len(shape.Tables) != 1 {
		return ""
	}
	return shape.Tables[0].Name
}

// ImplicitCast flags a CAST(...) or CONVERT(...) call anywhere in the
// statement text, the common case being a type-coercing cast around a
// WHERE column that prevents index use (e.g.
// `WHERE CAST(user_id AS CHAR) = '42'`). Other functions are left to
// FunctionOnColumn.
func ImplicitCast(in Input) (model.Finding, bool) {
	if !in.Cfg.ImplicitCastFlag || in.SQL == "" || !reCastLike.MatchString(in.SQL) {
		return model.Finding{}, false
	}
	f := model.NewFinding(model.SeverityWarning, model.CategoryAntiPattern,
		"Implicit type conversion on a filtered column",
		"A CAST/CONVERT wraps a column in the WHERE clause, which forces a "+
			"row-by-row conversion and blocks index use on that column.").
		WithRecommendation("Store the value in its native type, or add a generated/expression index matching the conversion.")
	return f, true
}

// OrPredicate flags a WHERE clause with enough OR branches that MySQL
// tends to fall back to a full scan rather than use index_merge.
func OrPredicate(in Input) (model.Finding, bool) {
	if !in.Cfg.OrFlag || in.Shape == nil || in.Shape.ORChainLength < 2 {
		return model.Finding{}, false
	}
	f := model.NewFinding(model.SeverityOptimization, model.CategoryAntiPattern,
		"Long OR chain in WHERE clause",
		fmt.Sprintf("The WHERE clause contains %d OR branches; beyond a handful, "+
			"the optimizer commonly abandons index_merge for a full scan.", in.Shape.ORChainLength)).
		WithRecommendation("Rewrite as UNION of indexed lookups, or use IN(...) for same-column alternation.")
	return f, true
}

// LeadingWildcard flags `LIKE '%...'` predicates, which can never use a
// standard B-tree index prefix.
func LeadingWildcard(in Input) (model.Finding, bool) {
	if !in.Cfg.LeadingWildcardFlag || in.Shape == nil || !in.Shape.HasLeadingWildcardLike {
		return model.Finding{}, false
	}
	f := model.NewFinding(model.SeverityOptimization, model.CategoryAntiPattern,
		"Leading wildcard LIKE pattern",
		"A LIKE pattern starting with '%' cannot use a standard index prefix and "+
			"forces a full scan of the matched rows.").
		WithRecommendation("Use a full-text index, a reversed-column index, or trigram search if this pattern is common.")
	return f, true
}

// FunctionOnColumn flags any function wrapped around a filtered column
// (independent of whether it looks like a cast) — a broader sibling of
// ImplicitCast for non-conversion functions like DATE() or UPPER().
func FunctionOnColumn(in Input) (model.Finding, bool) {
	if !in.Cfg.FunctionOnColumnFlag || in.Shape == nil || len(in.Shape.FunctionWrappedColumns) == 0 {
		return model.Finding{}, false
	}
	col := in.Shape.FunctionWrappedColumns[0]
	f := model.NewFinding(model.SeverityOptimization, model.CategoryAntiPattern,
		"Function wraps a filtered column",
		"A function call wraps "+qualifiedName(col)+" in a predicate, which prevents "+
			"the optimizer from using a plain index on that column.").
		WithRecommendation("Rewrite the predicate so the column is bare, or add a functional/expression index.")
	return f, true
}

// CartesianJoin flags a join predicate count that is lower than the
// table count would require. Both counts come from the parsed shape
// alone (an ON predicate counts only when it names two qualified
// columns); plan metrics are not consulted.
func CartesianJoin(in Input) (model.Finding, bool) {
	if in.Shape == nil || len(in.Shape.Tables) < 2 {
		return model.Finding{}, false
	}
	expectedPredicates := len(in.Shape.Tables) - 1
	if len(in.Shape.JoinPredicates) >= expectedPredicates {
		return model.Finding{}, false
	}
	f := model.NewFinding(model.SeverityCritical, model.CategoryJoinAnalysis,
		"Missing join predicate",
		fmt.Sprintf("%d tables are joined but only %d join predicate(s) were found; "+
			"this risks a cartesian product.", len(in.Shape.Tables), len(in.Shape.JoinPredicates))).
		WithRecommendation("Add an explicit ON/WHERE predicate connecting every joined table.")
	return f, true
}

// UnboundedSort flags ORDER BY without LIMIT on a query whose plan
// shows a filesort, since the whole result set must be materialized
// and sorted before the first row returns.
func UnboundedSort(in Input) (model.Finding, bool) {
	if in.Shape == nil || len(in.Shape.OrderByColumns) == 0 || in.Shape.HasLimit {
		return model.Finding{}, false
	}
	if in.Metrics == nil || !in.Metrics.HasFilesort {
		return model.Finding{}, false
	}
	f := model.NewFinding(model.SeverityWarning, model.CategoryAntiPattern,
		"Unbounded sort with no LIMIT",
		"The query sorts its full result set (filesort) with no LIMIT to bound it, "+
			"so every matching row must be read and sorted before anything is returned.").
		WithRecommendation("Add a LIMIT, or add an index matching the ORDER BY so the sort is free.")
	return f, true
}

// NPlusOne flags a single-row or index lookup whose loop count reaches
// the configured minimum — the classic signature of an application issuing
// one query per row of an outer result set instead of a join.
func NPlusOne(in Input) (model.Finding, bool) {
	if in.Metrics == nil {
		return model.Finding{}, false
	}
	if in.Metrics.PrimaryAccessType != model.AccessSingleRowLookup && in.Metrics.PrimaryAccessType != model.AccessIndexLookup {
		return model.Finding{}, false
	}
	if int(in.Metrics.MaxLoops) < in.Cfg.NPlusOneMinIterations {
		return model.Finding{}, false
	}
	f := model.NewFinding(model.SeverityWarning, model.CategoryAntiPattern,
		"Likely N+1 query pattern",
		fmt.Sprintf("This lookup plan runs %d times in a loop; if the caller issues "+
			"one query per row of an outer result, a join would replace all of them with one roundtrip.", in.Metrics.MaxLoops)).
		WithRecommendation("Batch the lookups into a single IN(...) query or a JOIN.")
	return f, true
}

func qualifiedName(col sqlshape.ColumnRef) string {
	if col.Table == "" {
		return col.Column
	}
	return col.Table + "." + col.Column
}
