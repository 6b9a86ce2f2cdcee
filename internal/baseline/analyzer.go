package baseline

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/nethalo/sqlsentinel/internal/config"
	"github.com/nethalo/sqlsentinel/internal/model"
)

// Noise floor constants for the time-delta classification, distinct
// from the configurable percentage/absolute thresholds used by the
// third noise criterion below.
const (
	noiseAbsoluteFloorMs = 3.0
	noiseBaselineFloorMs = 5.0
)

// Analyzer compares a freshly-run snapshot against its stored history
// and classifies the result as a regression, an improvement, benign
// data growth, or nothing worth reporting.
type Analyzer struct {
	Store Store
	Cfg   config.RegressionThresholds
}

func NewAnalyzer(store Store, cfg config.RegressionThresholds) Analyzer {
	return Analyzer{Store: store, Cfg: cfg}
}

// Analyze compares current against up to Cfg.MaxHistory prior
// snapshots for the same query hash, then always appends current to
// the store regardless of what was found — a run that doesn't get
// recorded can never become a future baseline.
func (a Analyzer) Analyze(ctx context.Context, current model.BaselineSnapshot) (model.Regression, error) {
	history, err := a.Store.History(ctx, current.QueryHash, a.Cfg.MaxHistory)
	if err != nil {
		return model.Regression{}, fmt.Errorf("baseline: loading history: %w", err)
	}

	defer func() {
		if err := a.Store.Append(ctx, current); err != nil {
			log.Printf("baseline: saving snapshot for %s: %v", current.QueryHash, err)
		}
	}()

	result := model.Regression{Trend: "stable"}
	if len(history) == 0 {
		return result, nil
	}

	avgScore, avgTime, avgRows := baselineAverages(history)

	rowsChangePct := percentChange(float64(current.RowsExamined), avgRows)
	dataGrowth := false
	if math.Abs(rowsChangePct) > 20 {
		baselinePerRow := safeDiv(avgTime, avgRows)
		currentPerRow := safeDiv(current.ExecutionTimeMs, float64(current.RowsExamined))
		perRowDegradation := percentChange(currentPerRow, baselinePerRow)
		if perRowDegradation < 25 {
			dataGrowth = true
			result.DataGrowth = append(result.DataGrowth, model.RegressionEntry{
				Metric:         "rows_examined",
				Classification: "data_growth",
				BaselineValue:  avgRows,
				CurrentValue:   float64(current.RowsExamined),
				PercentChange:  rowsChangePct,
			})
		}
	}

	if !dataGrowth {
		classifyMetric(&result, "rows_examined", avgRows, float64(current.RowsExamined), rowsChangePct, a.Cfg)
	}

	timeDelta := current.ExecutionTimeMs - avgTime
	skipTime := cacheStateMismatch(history, current) || isTimeNoise(timeDelta, avgTime, a.Cfg)
	if !skipTime {
		if dataGrowth {
			result.DataGrowth = append(result.DataGrowth, model.RegressionEntry{
				Metric:         "execution_time_ms",
				Classification: "data_growth",
				BaselineValue:  avgTime,
				CurrentValue:   current.ExecutionTimeMs,
				PercentChange:  percentChange(current.ExecutionTimeMs, avgTime),
			})
		} else {
			classifyMetric(&result, "execution_time_ms", avgTime, current.ExecutionTimeMs, percentChange(current.ExecutionTimeMs, avgTime), a.Cfg)
		}
	}

	classifyPlanChange(&result, history[0], current)

	// avgScore is the baseline average composite score; classifyTrend
	// reads raw per-snapshot scores directly rather than this average,
	// since trend cares about monotonic direction, not magnitude.
	_ = avgScore

	result.Trend = classifyTrend(history, current)
	return result, nil
}

func baselineAverages(history []model.BaselineSnapshot) (avgScore, avgTime, avgRows float64) {
	for _, h := range history {
		avgScore += h.CompositeScore
		avgTime += h.ExecutionTimeMs
		avgRows += float64(h.RowsExamined)
	}
	n := float64(len(history))
	return avgScore / n, avgTime / n, avgRows / n
}

func percentChange(current, baseline float64) float64 {
	if baseline == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return (current - baseline) / baseline * 100
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// isTimeNoise applies the three-way noise filter: a tiny absolute
// delta, a baseline too small to measure meaningfully, or a delta that
// is simultaneously below both the configured percentage and absolute
// thresholds.
func isTimeNoise(delta, baselineAvgTime float64, cfg config.RegressionThresholds) bool {
	absDelta := math.Abs(delta)
	if absDelta < noiseAbsoluteFloorMs {
		return true
	}
	if baselineAvgTime < noiseBaselineFloorMs {
		return true
	}
	percentDelta := 0.0
	if baselineAvgTime > 0 {
		percentDelta = absDelta / baselineAvgTime * 100
	}
	return percentDelta < cfg.NoisePercent && absDelta < cfg.NoiseAbsoluteMs
}

// cacheStateMismatch reports whether the cache state of current
// disagrees with the majority cache state across history — in that
// case a time delta reflects the cache transition, not the query.
func cacheStateMismatch(history []model.BaselineSnapshot, current model.BaselineSnapshot) bool {
	cold := 0
	for _, h := range history {
		if h.IsColdCache {
			cold++
		}
	}
	n := len(history)
	majorityCold := cold*2 > n
	majorityWarm := (n-cold)*2 > n
	if majorityCold && !current.IsColdCache {
		return true
	}
	if majorityWarm && current.IsColdCache {
		return true
	}
	return false
}

func classifyMetric(result *model.Regression, metric string, baseline, current, pctChange float64, cfg config.RegressionThresholds) {
	entry := model.RegressionEntry{
		Metric:        metric,
		BaselineValue: baseline,
		CurrentValue:  current,
		PercentChange: pctChange,
	}
	switch {
	case pctChange >= cfg.DegradedPercent:
		entry.Classification = "regression"
		result.Regressions = append(result.Regressions, entry)
	case pctChange <= -cfg.ImprovedPercent:
		entry.Classification = "improvement"
		result.Improvements = append(result.Improvements, entry)
	}
}

// classifyPlanChange compares the access type against the most recent
// snapshot: a rank increase (cheaper -> more expensive) is a
// regression, a rank decrease is an improvement, and an index-set
// change at the same rank is informational only.
func classifyPlanChange(result *model.Regression, previous, current model.BaselineSnapshot) {
	prevRank, curRank := previous.AccessType.Rank(), current.AccessType.Rank()
	switch {
	case curRank > prevRank:
		result.Regressions = append(result.Regressions, model.RegressionEntry{
			Metric:         "access_type",
			Classification: "regression",
			BaselineValue:  float64(prevRank),
			CurrentValue:   float64(curRank),
		})
	case curRank < prevRank:
		result.Improvements = append(result.Improvements, model.RegressionEntry{
			Metric:         "access_type",
			Classification: "improvement",
			BaselineValue:  float64(prevRank),
			CurrentValue:   float64(curRank),
		})
	default:
		if !sameIndexSet(previous.IndexesUsed, current.IndexesUsed) {
			result.Informational = append(result.Informational, model.RegressionEntry{
				Metric:         "indexes_used",
				Classification: "informational",
			})
		}
	}
}

func sameIndexSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sa, sb := append([]string(nil), a...), append([]string(nil), b...)
	sort.Strings(sa)
	sort.Strings(sb)
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

// classifyTrend looks at the current snapshot plus the two most recent
// prior ones: a monotone decrease in score is degrading, a monotone
// increase is improving, anything else is stable.
func classifyTrend(history []model.BaselineSnapshot, current model.BaselineSnapshot) string {
	if len(history) < 2 {
		return "stable"
	}
	// history is sorted most-recent-first; read the two most recent in
	// chronological order, then append current as the newest point.
	oldest, middle := history[1].CompositeScore, history[0].CompositeScore
	newest := current.CompositeScore
	switch {
	case oldest < middle && middle < newest:
		return "improving"
	case oldest > middle && middle > newest:
		return "degrading"
	default:
		return "stable"
	}
}
