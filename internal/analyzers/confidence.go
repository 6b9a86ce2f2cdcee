package analyzers

import (
	"github.com/nethalo/sqlsentinel/internal/dbdriver"
	"github.com/nethalo/sqlsentinel/internal/model"
)

// Confidence computes the weighted 8-factor trust score (0-1) that
// gates how far the rest of the report's findings can be trusted:
// estimation accuracy, sample size, EXPLAIN ANALYZE availability,
// cache warmth, statistics freshness, plan stability, query
// complexity, and driver capabilities.
func Confidence(m *model.Metrics, drift *model.CardinalityDrift, stability *model.PlanStability, env *model.EnvironmentContext, caps dbdriver.Capabilities) (model.Confidence, []model.Finding) {
	c := model.Confidence{Factors: map[string]float64{}}

	// CompositeDrift is a multiplier (1.0 = estimates match actuals, see
	// model.DriftRatio), so accuracy is its reciprocal: 1.0 at no drift,
	// 0.1 at a 10x drift. A value below 1.0 means nothing was compared.
	estimationAccuracy := 1.0
	if drift != nil && drift.CompositeDrift > 1 {
		estimationAccuracy = 1 / drift.CompositeDrift
	}
	c.Factors["estimation_accuracy"] = estimationAccuracy

	sampleSize := 1.0
	if m != nil {
		sampleSize = float64(m.RowsExamined) / 1000
		if sampleSize > 1 {
			sampleSize = 1
		}
	}
	c.Factors["sample_size"] = sampleSize

	explainAnalyzeAvailable := 0.3
	if caps.ExplainAnalyze {
		explainAnalyzeAvailable = 1.0
	}
	c.Factors["explain_analyze_available"] = explainAnalyzeAvailable

	cacheWarmth := 0.5
	if env != nil && env.BufferPoolUtilization > 0.5 {
		cacheWarmth = 1.0
	}
	c.Factors["cache_warmth"] = cacheWarmth

	statisticsFreshness := 1.0
	if drift != nil && len(drift.PerTable) > 0 {
		stale := 0
		for _, td := range drift.PerTable {
			if td.Classification == "critical" || td.Classification == "warning" {
				stale++
			}
		}
		statisticsFreshness = 1 - float64(stale)/float64(len(drift.PerTable))
	}
	c.Factors["statistics_freshness"] = statisticsFreshness

	planStabilityFactor := 0.5
	if stability != nil && stability.Label == "stable" {
		planStabilityFactor = 1.0
	}
	c.Factors["plan_stability"] = planStabilityFactor

	queryComplexity := 1.0
	if m != nil && m.JoinCount > 3 {
		queryComplexity = 0.7
	}
	c.Factors["query_complexity"] = queryComplexity

	capsPresent := 0
	capsTotal := 4
	if caps.Histograms {
		capsPresent++
	}
	if caps.JSONExplain {
		capsPresent++
	}
	if caps.CoveringIndexInfo {
		capsPresent++
	}
	if caps.ParallelQuery {
		capsPresent++
	}
	driverCapabilities := float64(capsPresent) / float64(capsTotal)
	c.Factors["driver_capabilities"] = driverCapabilities

	c.Overall = 0.25*estimationAccuracy + 0.20*sampleSize + 0.15*explainAnalyzeAvailable +
		0.10*cacheWarmth + 0.10*statisticsFreshness + 0.10*planStabilityFactor +
		0.05*queryComplexity + 0.05*driverCapabilities

	c.Label = labelForOverall(c.Overall)

	var findings []model.Finding
	if c.Label == "low" || c.Label == "unreliable" {
		findings = append(findings, model.NewFinding(model.SeverityInfo, model.CategoryExplainWhy,
			"Reduced confidence in this diagnosis",
			"Cardinality drift, plan volatility, cache state, or limited driver capabilities reduce how far this report's numbers can be trusted.").
			WithMeta("confidence_factors", c.Factors))
	}
	return c, findings
}

// labelForOverall maps the weighted score to its report label.
func labelForOverall(overall float64) string {
	switch {
	case overall >= 0.9:
		return "high"
	case overall >= 0.7:
		return "moderate"
	case overall >= 0.5:
		return "low"
	default:
		return "unreliable"
	}
}
