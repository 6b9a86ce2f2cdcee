// Package scoring computes the weighted composite score and letter
// grade from a query's extracted Metrics.
package scoring

import (
	"github.com/nethalo/sqlsentinel/internal/config"
	"github.com/nethalo/sqlsentinel/internal/model"
)

// Engine scores a Metrics value into a composite Score, using the
// weights and grade thresholds from config.
type Engine struct {
	cfg config.Config
}

func NewEngine(cfg config.Config) Engine {
	return Engine{cfg: cfg}
}

// Score computes the five component scores, combines them by
// configured weight, and derives a letter grade. contextOverride, when
// true (early termination, a covering index, no filesort, and
// execution under 10ms — the query is already about as good as it can
// be), promotes the grade to at least A and clamps the composite score
// at 95 or above.
func (e Engine) Score(m *model.Metrics, contextOverride bool) model.Score {
	w := e.cfg.ScoringWeights

	components := map[string]model.ComponentScore{
		"execution_time": scored(scoreExecutionTime(m), w.ExecutionEfficiency),
		"scan_efficiency": scored(scoreScanEfficiency(m), w.IndexUtilization),
		"index_quality":  scored(scoreIndexQuality(m), w.ResourceFootprint),
		"join_efficiency": scored(scoreJoinEfficiency(m), w.PlanStability),
		"scalability":    scored(scoreScalability(m), w.Scalability),
	}

	var composite float64
	for _, c := range components {
		composite += c.Weighted
	}

	if contextOverride {
		if composite < 95 {
			composite = 95
		}
	}

	grade := e.grade(composite, contextOverride)

	return model.Score{
		CompositeScore:  composite,
		Grade:           grade,
		Breakdown:       components,
		ContextOverride: contextOverride,
	}
}

func scored(score, weight float64) model.ComponentScore {
	return model.ComponentScore{Score: score, Weight: weight, Weighted: score * weight}
}

func (e Engine) grade(composite float64, contextOverride bool) model.Grade {
	t := e.cfg.GradeThresholds
	var g model.Grade
	switch {
	case composite >= t.APlus:
		g = model.GradeAPlus
	case composite >= t.A:
		g = model.GradeA
	case composite >= t.B:
		g = model.GradeB
	case composite >= t.C:
		g = model.GradeC
	case composite >= t.D:
		g = model.GradeD
	default:
		g = model.GradeF
	}
	if contextOverride && (g == model.GradeB || g == model.GradeC || g == model.GradeD || g == model.GradeF) {
		g = model.GradeA
	}
	return g
}

// scoreExecutionTime is a 3-regime piecewise function: fast queries
// score near 100, a middle band decays linearly, slow queries floor
// out near 0.
func scoreExecutionTime(m *model.Metrics) float64 {
	ms := m.ExecutionTimeMs
	switch {
	case ms <= 10:
		return 100
	case ms <= 1000:
		// Linear decay from 100 at 10ms to 40 at 1000ms.
		return 100 - (ms-10)*(60.0/990.0)
	default:
		// Further decay from 40 at 1s to a floor of 5 at 30s+.
		if ms >= 30000 {
			return 5
		}
		return 40 - (ms-1000)*(35.0/29000.0)
	}
}

// scoreScanEfficiency is ratio-based on rows_examined/rows_returned
// (the selectivity ratio): 1:1 scores 100, wide ratios decay toward 0.
func scoreScanEfficiency(m *model.Metrics) float64 {
	if m.SelectivityRatio <= 1 {
		return 100
	}
	score := 100 - (m.SelectivityRatio-1)*2
	if score < 0 {
		return 0
	}
	return score
}

// scoreIndexQuality is categorical on access type.
func scoreIndexQuality(m *model.Metrics) float64 {
	switch m.PrimaryAccessType {
	case model.AccessZeroRowConst, model.AccessConstRow, model.AccessSingleRowLookup:
		return 100
	case model.AccessCoveringIndexLook:
		return 95
	case model.AccessIndexLookup, model.AccessFulltextIndex:
		return 85
	case model.AccessIndexRangeScan:
		return 70
	case model.AccessIndexScan:
		return 55
	case model.AccessTableScan:
		return 20
	default:
		return 50
	}
}

// scoreJoinEfficiency is count-based: every join costs a fixed penalty
// of 8, plus 20 more once fanout climbs past 100.
func scoreJoinEfficiency(m *model.Metrics) float64 {
	if m.JoinCount == 0 {
		return 100
	}
	penalty := float64(m.JoinCount) * 8
	if m.FanoutFactor > 100 {
		penalty += 20
	}
	score := 100 - penalty
	if score < 0 {
		return 0
	}
	return score
}

// scoreScalability derives from the complexity class ordinal: cheaper
// asymptotic shapes score higher.
func scoreScalability(m *model.Metrics) float64 {
	switch m.Complexity.Ordinal() {
	case 0:
		return 100
	case 1, 2:
		return 90
	case 3:
		return 60
	case 4:
		return 45
	case 5:
		return 15
	default:
		return 50
	}
}
