package analyzers

import "github.com/nethalo/sqlsentinel/internal/model"

// PlanStability scores how likely the plan is to flip under normal
// statistics drift: every table whose cardinality drift crossed into
// warning/critical territory is a deviation that could tip the
// optimizer to a different access path next time statistics update.
func PlanStability(drift *model.CardinalityDrift, hasOptimizerHints bool) (model.PlanStability, []model.Finding) {
	var stability model.PlanStability
	var findings []model.Finding
	if drift == nil {
		stability.Label = "stable"
		return stability, findings
	}

	for _, td := range drift.PerTable {
		if td.Classification == "warning" || td.Classification == "critical" {
			stability.FlipRiskDeviations++
		}
	}
	stability.StatisticsDrift = stability.FlipRiskDeviations > 0

	// CompositeDrift is a multiplier with a floor of 1.0 (no drift);
	// VolatilityScore measures drift above that floor so a perfectly
	// matched estimate scores 0, not 1.
	stability.VolatilityScore = drift.CompositeDrift - 1
	if stability.VolatilityScore < 0 {
		stability.VolatilityScore = 0
	}
	if hasOptimizerHints {
		// A hinted plan doesn't flip with statistics, since the hint
		// pins the access path regardless of what the optimizer would
		// otherwise pick.
		stability.VolatilityScore *= 0.5
	}

	switch {
	case stability.VolatilityScore >= 5 || stability.FlipRiskDeviations >= 2:
		stability.Label = "volatile"
	case stability.VolatilityScore >= 1 || stability.FlipRiskDeviations == 1:
		stability.Label = "moderate"
	default:
		stability.Label = "stable"
	}

	if stability.Label == "volatile" {
		findings = append(findings, model.NewFinding(model.SeverityWarning, model.CategoryPlanStability,
			"Volatile plan",
			"Cardinality estimates drift enough from actuals that the next statistics refresh could flip this query to a different access path.").
			WithRecommendation("Refresh table statistics on a regular schedule, or pin the plan with an index hint if consistency matters more than letting the optimizer adapt."))
	}
	return stability, findings
}
