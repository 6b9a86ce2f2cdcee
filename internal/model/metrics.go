package model

// TableEstimate holds the per-table estimated vs. actual row counts used
// by the cardinality-drift and plan-stability analyzers.
type TableEstimate struct {
	EstimatedRows int64
	ActualRows    int64
	Loops         int64
}

// Metrics is the closed dictionary derived once from the plan tree and
// tabular EXPLAIN rows. It is built by internal/planmetrics and
// consumed read-only by every downstream component.
type Metrics struct {
	ExecutionTimeMs float64
	RowsExamined    int64
	RowsReturned    int64

	NestedLoopDepth int
	MaxLoops        int64
	MaxCost         float64

	HasTableScan       bool
	HasFilesort        bool
	HasTempTable       bool
	HasDiskTemp        bool
	HasWeedout         bool
	HasIndexMerge      bool
	HasCoveringIndex   bool
	HasMaterialization bool
	HasEarlyTermination bool
	HasIndexBacked     bool
	IsIntentionalScan  bool
	HasZeroRowConst    bool

	Complexity      ComplexityClass
	ComplexityLabel string
	ComplexityRisk  RiskLevel

	FanoutFactor     float64
	JoinCount        int
	SelectivityRatio float64

	IndexesUsed   map[string]struct{}
	TablesAccessed map[string]struct{}
	PerTableEstimates map[string]TableEstimate

	PrimaryAccessType AccessType
	MySQLAccessType   string
}

// NewMetrics returns a Metrics value with its maps initialized.
func NewMetrics() *Metrics {
	return &Metrics{
		IndexesUsed:       map[string]struct{}{},
		TablesAccessed:    map[string]struct{}{},
		PerTableEstimates: map[string]TableEstimate{},
	}
}

// CompositeDrift is the row-count-weighted mean drift ratio across all
// per-table estimates, as used by the cardinality-drift analyzer.
// Returns 0 when there is nothing to compare.
func (m *Metrics) CompositeDrift() float64 {
	if len(m.PerTableEstimates) == 0 {
		return 0
	}
	var weightedSum, totalWeight float64
	for _, est := range m.PerTableEstimates {
		ratio := DriftRatio(est.EstimatedRows, est.ActualRows)
		weight := float64(est.ActualRows)
		if weight <= 0 {
			weight = 1
		}
		weightedSum += ratio * weight
		totalWeight += weight
	}
	if totalWeight == 0 {
		return 0
	}
	return weightedSum / totalWeight
}

// DriftRatio computes max(estimated, actual) / max(min(estimated, actual), 1),
// the cardinality-drift analyzer's drift formula: a multiplier no
// smaller than 1.0, read as "Nx drift" rather than a normalized
// fraction, matching how both the configured Critical/Warning
// thresholds and the plan-stability volatility thresholds are tuned.
func DriftRatio(estimated, actual int64) float64 {
	lo, hi := estimated, actual
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo < 1 {
		lo = 1
	}
	return float64(hi) / float64(lo)
}
