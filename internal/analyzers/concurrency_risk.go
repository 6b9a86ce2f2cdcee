package analyzers

import (
	"github.com/nethalo/sqlsentinel/internal/model"
	"github.com/nethalo/sqlsentinel/internal/sqlshape"
)

// ConcurrencyRisk classifies the likely lock scope and estimates
// deadlock/contention exposure from the query's access type and shape:
// a full table scan implies table-level locking pressure under
// REPEATABLE READ, while an indexed point lookup implies a tight row
// lock with minimal blast radius.
func ConcurrencyRisk(shape *sqlshape.Shape, m *model.Metrics) (model.ConcurrencyRisk, []model.Finding) {
	var risk model.ConcurrencyRisk
	var findings []model.Finding

	switch {
	case m.PrimaryAccessType == model.AccessTableScan:
		risk.LockScope = "table"
		risk.DeadlockRisk = 0.6
		risk.ContentionScore = 0.8
		risk.IsolationImpact = "A full scan under REPEATABLE READ holds gap locks across the whole table, blocking concurrent inserts."
	case m.PrimaryAccessType == model.AccessIndexRangeScan:
		risk.LockScope = "range"
		risk.DeadlockRisk = 0.3
		risk.ContentionScore = 0.4
		risk.IsolationImpact = "A range scan takes gap locks across the matched range, which can block inserts that would land inside it."
	case m.PrimaryAccessType.IsOptimal():
		risk.LockScope = "row"
		risk.DeadlockRisk = 0.05
		risk.ContentionScore = 0.1
		risk.IsolationImpact = "A single-row lookup takes a tight row lock with minimal contention exposure."
	default:
		risk.LockScope = "row"
		risk.DeadlockRisk = 0.15
		risk.ContentionScore = 0.2
		risk.IsolationImpact = "An index lookup typically locks only the matched rows."
	}

	if m.JoinCount >= 2 {
		risk.DeadlockRisk += 0.1 * float64(m.JoinCount-1)
		if risk.DeadlockRisk > 1 {
			risk.DeadlockRisk = 1
		}
	}

	if risk.LockScope == "table" || risk.LockScope == "gap" {
		findings = append(findings, model.NewFinding(model.SeverityWarning, model.CategoryConcurrency,
			"Wide lock scope under concurrent writes",
			risk.IsolationImpact).
			WithRecommendation("Narrow the predicate to a covered index range, or run this under READ COMMITTED if gap locking isn't required."))
	}
	return risk, findings
}
