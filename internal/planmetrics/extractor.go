package planmetrics

import (
	"strings"

	"github.com/nethalo/sqlsentinel/internal/model"
	"github.com/nethalo/sqlsentinel/internal/sqlshape"
)

// ExtractMetrics walks root and produces the closed metrics dictionary,
// then applies the consistency-correction layer. sql is the sanitized
// statement text, consulted for the early-termination and
// intentional-scan signals that aren't visible in the plan alone.
func ExtractMetrics(root *model.PlanNode, sql string) *model.Metrics {
	m := model.NewMetrics()
	if root == nil {
		return m
	}

	upper := strings.ToUpper(sql)
	shape := sqlshape.Parse(sql)

	var maxLoops int64
	var maxCost float64
	var nestedLoopDepth int
	var hasLimitNode bool
	var singleLoopOverestimate bool

	root.Walk(func(n *model.PlanNode) {
		if n.IsIO() {
			m.RowsExamined += n.RowsProcessed()
			if n.Table != "" {
				m.TablesAccessed[n.Table] = struct{}{}
			}
		}
		if n.Index != "" {
			m.IndexesUsed[n.Index] = struct{}{}
		}
		if n.Loops != nil && *n.Loops > maxLoops {
			maxLoops = *n.Loops
		}
		if n.EstimatedCost != nil && *n.EstimatedCost > maxCost {
			maxCost = *n.EstimatedCost
		}
		if strings.Contains(strings.ToLower(n.Operation), "nested loop") {
			nestedLoopDepth++
		}
		if strings.Contains(strings.ToLower(n.Operation), "limit") {
			hasLimitNode = true
		}
		if n.AccessType == model.AccessTableScan && !n.IsSubqueryOrTemp() {
			m.HasTableScan = true
		}
		if strings.Contains(strings.ToLower(n.Operation), "filesort") {
			m.HasFilesort = true
		}
		if strings.Contains(strings.ToLower(n.Operation), "temporary") {
			m.HasTempTable = true
		}
		if strings.Contains(strings.ToLower(n.Operation), "disk") {
			m.HasDiskTemp = true
		}
		if strings.Contains(strings.ToLower(n.Operation), "weedout") {
			m.HasWeedout = true
		}
		if strings.Contains(strings.ToLower(n.Operation), "index merge") {
			m.HasIndexMerge = true
		}
		if n.AccessType == model.AccessCoveringIndexLook {
			m.HasCoveringIndex = true
		}
		if strings.Contains(strings.ToLower(n.Operation), "materialize") {
			m.HasMaterialization = true
		}
		if n.AccessType.IsIO() && n.AccessType != model.AccessTableScan {
			m.HasIndexBacked = true
		}
		if n.AccessType == model.AccessZeroRowConst {
			m.HasZeroRowConst = true
		}
		if n.Loops != nil && *n.Loops == 1 && n.EstimatedRows != nil && n.ActualRows != nil && *n.ActualRows > 0 {
			if float64(*n.EstimatedRows) > 5*float64(*n.ActualRows) {
				singleLoopOverestimate = true
			}
		}
		if joinType := classifyJoin(n.Operation); joinType != model.JoinUnknown {
			m.JoinCount++
		}
	})

	m.RowsReturned = root.RowsProcessed()
	if m.RowsReturned == 0 && root.ActualRows != nil {
		m.RowsReturned = *root.ActualRows
	}
	m.NestedLoopDepth = nestedLoopDepth
	m.MaxLoops = maxLoops
	m.MaxCost = maxCost
	m.PrimaryAccessType = root.AccessType
	m.MySQLAccessType = string(root.AccessType)

	m.HasEarlyTermination = (hasLimitNode && singleLoopOverestimate) ||
		strings.Contains(upper, "LIMIT") ||
		shape.HasExists ||
		(hasTopLevelAggregate(upper) && !shape.HasGroupBy)

	m.IsIntentionalScan = isIntentionalScan(shape, m)

	if m.RowsReturned > 0 {
		m.SelectivityRatio = float64(m.RowsExamined) / float64(m.RowsReturned)
	}
	if m.JoinCount > 0 {
		m.FanoutFactor = float64(m.RowsExamined) / float64(m.JoinCount+1)
	}

	classifyComplexity(m)
	applyConsistencyCorrections(m)

	return m
}

func classifyJoin(operation string) model.JoinType {
	op := strings.ToLower(operation)
	switch {
	case strings.Contains(op, "nested loop"):
		return model.JoinNestedLoop
	case strings.Contains(op, "hash join"):
		return model.JoinHash
	case strings.Contains(op, "merge"):
		return model.JoinMerge
	default:
		return model.JoinUnknown
	}
}

func hasTopLevelAggregate(upperSQL string) bool {
	for _, fn := range []string{"COUNT(", "SUM(", "AVG(", "MIN(", "MAX("} {
		if strings.Contains(upperSQL, fn) {
			return true
		}
	}
	return false
}

// isIntentionalScan recognizes shapes where a full scan is the correct
// plan rather than a missing-index symptom: no WHERE-clause filtering
// at all, or an aggregate computed over the whole table.
func isIntentionalScan(shape *sqlshape.Shape, m *model.Metrics) bool {
	if !m.HasTableScan {
		return false
	}
	return len(shape.WhereColumns) == 0
}

// classifyComplexity applies the precedence-ordered rules, first match
// wins.
func classifyComplexity(m *model.Metrics) {
	switch {
	case m.HasEarlyTermination && m.HasIndexBacked && !m.HasTempTable:
		setComplexity(m, model.ComplexityLimit)
	case m.HasTableScan && m.MaxLoops > 10000:
		setComplexity(m, model.ComplexityQuadratic)
	case m.NestedLoopDepth > 3 && m.MaxLoops > 1000:
		setComplexity(m, model.ComplexityQuadratic)
	case m.HasFilesort && !m.HasEarlyTermination:
		setComplexity(m, model.ComplexityLinearithmic)
	case m.HasTableScan:
		setComplexity(m, model.ComplexityLinear)
	case m.HasIndexBacked:
		setComplexity(m, model.ComplexityLogRange)
	default:
		setComplexity(m, model.ComplexityLinear)
	}
}

func setComplexity(m *model.Metrics, c model.ComplexityClass) {
	m.Complexity = c
	m.ComplexityLabel = c.Label()
	m.ComplexityRisk = c.Risk()
}

// applyConsistencyCorrections auto-corrects a few fields that the tree
// walk alone can get wrong: a non-table-scan access type implies index
// backing, a zero-row const plan is trivially O(1)/LOW risk, and an
// empty result with no table scan downgrades to Constant regardless of
// what the precedence rules above picked.
func applyConsistencyCorrections(m *model.Metrics) {
	if m.PrimaryAccessType != model.AccessTableScan && m.PrimaryAccessType != model.AccessUnknown {
		m.HasIndexBacked = true
	}
	if m.HasZeroRowConst {
		setComplexity(m, model.ComplexityConstant)
	}
	if m.RowsExamined == 0 && m.RowsReturned == 0 && !m.HasTableScan {
		setComplexity(m, model.ComplexityConstant)
	}
}
