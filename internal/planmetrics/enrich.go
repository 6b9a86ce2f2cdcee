package planmetrics

import (
	"strconv"
	"strings"

	"github.com/nethalo/sqlsentinel/internal/model"
)

// Enrich reads tabular EXPLAIN rows (the `type`/`Extra`/`rows` columns
// MySQL's non-ANALYZE EXPLAIN returns) to fill gaps the tree parser
// missed, and to populate per-table estimated-vs-actual rows for the
// cardinality-drift analyzer.
func Enrich(m *model.Metrics, rows []map[string]any, root *model.PlanNode) {
	for _, row := range rows {
		table, _ := row["table"].(string)
		if table == "" {
			table, _ = row["Table"].(string)
		}
		extra, _ := row["Extra"].(string)
		if extra == "" {
			extra, _ = row["extra"].(string)
		}
		typ, _ := row["type"].(string)
		if typ == "" {
			typ, _ = row["Type"].(string)
		}

		lowerExtra := strings.ToLower(extra)
		if strings.Contains(lowerExtra, "using index") {
			m.HasCoveringIndex = true
		}
		if strings.Contains(lowerExtra, "using filesort") {
			m.HasFilesort = true
		}
		if strings.Contains(lowerExtra, "using temporary") {
			m.HasTempTable = true
		}
		if strings.Contains(lowerExtra, "no matching row in const table") {
			m.HasZeroRowConst = true
		}

		if strings.EqualFold(typ, "const") || strings.EqualFold(typ, "system") {
			m.HasZeroRowConst = true
		}

		if table == "" {
			continue
		}
		estRows := parseRowsField(row["rows"])
		if estRows == 0 {
			continue
		}
		est := m.PerTableEstimates[table]
		est.EstimatedRows = estRows
		m.PerTableEstimates[table] = est
	}

	fillActualRowsFromPlan(m, root)
}

func parseRowsField(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	case float64:
		return int64(t)
	default:
		return 0
	}
}

// fillActualRowsFromPlan backfills PerTableEstimates' ActualRows/Loops
// from the ANALYZE tree, so CompositeDrift has both sides of the ratio
// for every table the tabular EXPLAIN reported an estimate for.
func fillActualRowsFromPlan(m *model.Metrics, root *model.PlanNode) {
	if root == nil {
		return
	}
	root.Walk(func(n *model.PlanNode) {
		if n.Table == "" || n.ActualRows == nil {
			return
		}
		est, ok := m.PerTableEstimates[n.Table]
		if !ok {
			return
		}
		est.ActualRows = *n.ActualRows
		if n.Loops != nil {
			est.Loops = *n.Loops
		} else {
			est.Loops = 1
		}
		m.PerTableEstimates[n.Table] = est
	})
}
