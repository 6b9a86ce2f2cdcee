package analyzers

import (
	"fmt"

	"github.com/nethalo/sqlsentinel/internal/config"
	"github.com/nethalo/sqlsentinel/internal/model"
)

// CardinalityDrift compares the planner's row estimates against what
// the plan actually returned, per table and as a row-weighted
// composite, classifying each by the configured warning/critical
// thresholds. A stale statistics table is the single most common cause
// of a plan that looked fine at EXPLAIN time and wasn't.
func CardinalityDrift(m *model.Metrics, cfg config.CardinalityDriftThresholds) (model.CardinalityDrift, []model.Finding) {
	result := model.CardinalityDrift{PerTable: map[string]model.TableDrift{}}
	var findings []model.Finding

	for table, est := range m.PerTableEstimates {
		ratio := model.DriftRatio(est.EstimatedRows, est.ActualRows)
		class := classifyDrift(ratio, cfg)
		result.PerTable[table] = model.TableDrift{
			Table:          table,
			Estimated:      est.EstimatedRows,
			Actual:         est.ActualRows,
			DriftRatio:     ratio,
			Classification: class,
		}
		if class == "critical" || class == "warning" {
			sev := model.SeverityWarning
			if class == "critical" {
				sev = model.SeverityCritical
			}
			findings = append(findings, model.NewFinding(sev, model.CategoryCardinalityDrift,
				"Planner estimate diverges from actual rows",
				fmt.Sprintf("Table %s: the planner estimated %d row(s) but the plan actually produced %d — "+
					"a %.1fx drift, the signature of stale statistics.", table, est.EstimatedRows, est.ActualRows, ratio)).
				WithRecommendation("Run ANALYZE TABLE "+table+" to refresh statistics.").
				WithMeta("drift_ratio", ratio))
		}
	}

	result.CompositeDrift = m.CompositeDrift()
	result.Classification = classifyDrift(result.CompositeDrift, cfg)
	return result, findings
}

func classifyDrift(ratio float64, cfg config.CardinalityDriftThresholds) string {
	switch {
	case ratio >= cfg.Critical:
		return "critical"
	case ratio >= cfg.Warning:
		return "warning"
	case ratio >= 1.3:
		return "optimization"
	default:
		return "info"
	}
}
