package engine

import (
	"time"

	"github.com/nethalo/sqlsentinel/internal/model"
)

// buildSnapshot converts the current run's BaseReport and environment
// into the BaselineSnapshot the regression/workload analyzers compare
// against history. Table size isn't tracked by any port today, so it's
// left at zero — a known gap, noted in the grounding ledger.
func (p Pipeline) buildSnapshot(base model.BaseReport, env model.EnvironmentContext) model.BaselineSnapshot {
	m := base.Metrics
	indexes := make([]string, 0, len(m.IndexesUsed))
	for name := range m.IndexesUsed {
		indexes = append(indexes, name)
	}

	counts := map[string]int{}
	for _, f := range base.Findings {
		counts[f.Severity.String()]++
	}

	var timePerRow float64
	if m.RowsExamined > 0 {
		timePerRow = m.ExecutionTimeMs / float64(m.RowsExamined)
	}

	return model.BaselineSnapshot{
		QueryHash:             base.QueryHash,
		Timestamp:             p.Clock.Now().Format(time.RFC3339),
		CompositeScore:        base.Score.CompositeScore,
		Grade:                 string(base.Score.Grade),
		ExecutionTimeMs:       m.ExecutionTimeMs,
		RowsExamined:          m.RowsExamined,
		TimePerRow:            timePerRow,
		Complexity:            m.Complexity.String(),
		AccessType:            m.PrimaryAccessType,
		IndexesUsed:           indexes,
		FindingCounts:         counts,
		BufferPoolUtilization: env.BufferPoolUtilization,
		IsColdCache:           env.IsColdCache(),
	}
}
