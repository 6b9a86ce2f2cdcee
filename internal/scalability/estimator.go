// Package scalability projects how a query's cost grows as its tables
// grow, separating fixed per-query overhead from the variable,
// table-size-dependent cost and extrapolating the variable part by the
// query's complexity class.
package scalability

import (
	"math"

	"github.com/nethalo/sqlsentinel/internal/model"
	"github.com/nethalo/sqlsentinel/internal/sqlshape"
)

// targetSizes are the table-size milestones every projection is run
// against.
var targetSizes = []int64{10_000, 100_000, 1_000_000, 10_000_000}

// limitSizes are the LIMIT values the sensitivity analysis checks.
var limitSizes = []int64{100, 500, 1000}

const rowsPerPage = 100

// Estimator produces a ScalabilityProjection from a query's metrics.
type Estimator struct{}

func NewEstimator() Estimator { return Estimator{} }

// Estimate projects cost at each target size and each LIMIT.
func (Estimator) Estimate(m *model.Metrics, shape *sqlshape.Shape) model.ScalabilityProjection {
	currentRows := m.RowsExamined
	if currentRows < 1 {
		currentRows = 1
	}

	fixedFrac := fixedFraction(currentRows)
	fixedCost := m.ExecutionTimeMs * fixedFrac
	variableCost := m.ExecutionTimeMs - fixedCost

	projections := make([]model.SizeProjection, 0, len(targetSizes))
	for _, target := range targetSizes {
		projections = append(projections, projectSize(m, currentRows, target, fixedCost, variableCost))
	}

	return model.ScalabilityProjection{
		Projections:      projections,
		Risk:             classifyRisk(m),
		LimitSensitivity: limitSensitivity(m, shape),
		LinearSubclass:   classifyLinearSubclass(m, shape),
	}
}

// fixedFraction interpolates the fixed-overhead share of execution time:
// 95% fixed below 100 rows, 10% fixed at 10,000 rows and above, linear
// in between.
func fixedFraction(rows int64) float64 {
	switch {
	case rows <= 100:
		return 0.95
	case rows >= 10_000:
		return 0.10
	default:
		t := float64(rows-100) / float64(10_000-100)
		return 0.95 - t*(0.95-0.10)
	}
}

func projectSize(m *model.Metrics, currentRows, targetRows int64, fixedCost, variableCost float64) model.SizeProjection {
	growthFactor := pageGrowthFactor(currentRows, targetRows)
	var projectedVariable float64
	var modelLabel string

	switch m.Complexity.String() {
	case "Linear":
		projectedVariable = variableCost * growthFactor
		modelLabel = "linear (page-based)"
	case "Linearithmic":
		projectedVariable = variableCost * growthFactor * logRatio(currentRows, targetRows)
		modelLabel = "linearithmic (page-based)"
	case "Quadratic":
		projectedVariable = variableCost * growthFactor * growthFactor
		modelLabel = "quadratic (page-based)"
	case "LogRange":
		projectedVariable = variableCost * logRatio(currentRows, targetRows)
		modelLabel = "log-range (closed-form)"
	case "Logarithmic":
		projectedVariable = variableCost * logRatio(currentRows, targetRows)
		modelLabel = "logarithmic (closed-form)"
	default:
		// Constant / Limit: variable cost does not grow with table size.
		projectedVariable = variableCost
		modelLabel = "constant (closed-form)"
	}

	projectedTime := fixedCost + projectedVariable
	lower := fixedCost + projectedVariable*0.8
	upper := fixedCost + projectedVariable*1.25

	return model.SizeProjection{
		TargetRows:      targetRows,
		GrowthFactor:     growthFactor,
		ProjectedTimeMs:  projectedTime,
		LowerMs:          lower,
		UpperMs:          upper,
		ProjectedRows:    int64(float64(m.RowsExamined) * growthFactor),
		Model:            modelLabel,
		Confidence:       extrapolationConfidence(currentRows, targetRows),
	}
}

func pageGrowthFactor(currentRows, targetRows int64) float64 {
	currentPages := math.Ceil(float64(currentRows) / rowsPerPage)
	targetPages := math.Ceil(float64(targetRows) / rowsPerPage)
	if currentPages < 1 {
		currentPages = 1
	}
	return targetPages / currentPages
}

func logRatio(currentRows, targetRows int64) float64 {
	cur := math.Log2(math.Max(float64(currentRows), 2))
	tgt := math.Log2(math.Max(float64(targetRows), 2))
	if cur <= 0 {
		return 1
	}
	return tgt / cur
}

// extrapolationConfidence degrades as the projection reaches further
// past the observed sample.
func extrapolationConfidence(currentRows, targetRows int64) string {
	ratio := float64(targetRows) / float64(currentRows)
	switch {
	case ratio <= 10:
		return "high"
	case ratio <= 100:
		return "moderate"
	default:
		return "low"
	}
}

// classifyRisk applies the size- and intent-aware risk rule: an
// intentional full scan is capped at MEDIUM since the caller chose it
// deliberately; a zero-row-const lookup is always LOW since it never
// touches storage.
func classifyRisk(m *model.Metrics) model.RiskLevel {
	if m.HasZeroRowConst {
		return model.RiskLow
	}
	if m.IsIntentionalScan {
		return model.RiskMedium
	}
	if m.RowsExamined > 100_000 {
		return model.RiskHigh
	}
	if m.HasTableScan && m.RowsExamined > 100_000 {
		return model.RiskHigh
	}
	return model.RiskMedium
}

// limitSensitivity projects how much a LIMIT clause at each candidate
// value would actually bound the work performed, in one of three
// regimes.
func limitSensitivity(m *model.Metrics, shape *sqlshape.Shape) []model.LimitProjection {
	out := make([]model.LimitProjection, 0, len(limitSizes))
	for _, limit := range limitSizes {
		out = append(out, model.LimitProjection{
			Limit:         limit,
			Regime:        limitRegime(m, shape),
			ProjectedRows: limitProjectedRows(m, shape, limit),
		})
	}
	return out
}

func limitRegime(m *model.Metrics, shape *sqlshape.Shape) string {
	switch {
	case m.HasEarlyTermination:
		return "already_early_terminating"
	case shape != nil && (len(shape.OrderByColumns) > 0 || m.HasFilesort):
		return "full_work"
	case m.IsIntentionalScan:
		return "sequential_early_stop"
	default:
		return "full_work"
	}
}

func limitProjectedRows(m *model.Metrics, shape *sqlshape.Shape, limit int64) int64 {
	switch limitRegime(m, shape) {
	case "already_early_terminating":
		if m.RowsReturned > 0 && m.RowsReturned < limit {
			return m.RowsReturned
		}
		return limit
	case "sequential_early_stop":
		return limit
	default:
		return m.RowsExamined
	}
}

// classifyLinearSubclass further labels a Linear-complexity finding by
// its likely cause, for display purposes only.
func classifyLinearSubclass(m *model.Metrics, shape *sqlshape.Shape) model.LinearSubclass {
	if m.Complexity.String() != "Linear" {
		return ""
	}
	switch {
	case shape != nil && shape.HasGroupBy:
		return model.LinearAnalytical
	case shape != nil && len(shape.WhereColumns) == 0 && m.HasTableScan:
		return model.LinearExport
	case shape != nil && len(shape.WhereColumns) > 0 && m.HasTableScan:
		return model.LinearIndexMissed
	default:
		return model.LinearPathological
	}
}
