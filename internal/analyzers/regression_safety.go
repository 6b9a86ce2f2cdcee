package analyzers

import "github.com/nethalo/sqlsentinel/internal/model"

// RegressionSafety judges whether it's safe to apply the index-
// synthesis recommendations without a measured before/after comparison
// first: a volatile plan or ongoing cardinality drift means an
// optimization that looks good on this run's numbers might not hold up
// once statistics change again.
func RegressionSafety(stability *model.PlanStability, antiPatterns *model.AntiPatternReport) (model.RegressionSafety, []model.Finding) {
	safety := model.RegressionSafety{SafeToOptimize: true}
	var findings []model.Finding

	if stability != nil && stability.Label == "volatile" {
		safety.SafeToOptimize = false
		safety.Notes = append(safety.Notes, "plan stability is volatile; re-measure after any index change before trusting the result")
	}
	if antiPatterns != nil {
		for _, key := range antiPatterns.Detected {
			if key == "correlated_subquery" || key == "not_in_subquery" {
				safety.Notes = append(safety.Notes, "a rewrite to fix "+key+" changes query semantics at NULL boundaries; verify results match before deploying")
			}
		}
	}

	if !safety.SafeToOptimize {
		findings = append(findings, model.NewFinding(model.SeverityInfo, model.CategoryRegressionSafety,
			"Optimization safety caveat",
			"This query's plan is volatile enough that an index change should be measured before/after rather than assumed safe.").
			WithRecommendation("Capture a baseline snapshot, apply the change, and re-run this diagnosis to confirm the expected improvement."))
	}
	return safety, findings
}
