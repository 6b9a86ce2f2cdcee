package analyzers

import "github.com/nethalo/sqlsentinel/internal/model"

// btreeFanout is the assumed average B-tree page fanout used to
// estimate index depth from distinct-value cardinality, matching the
// index-cardinality analyzer's depth formula.
const btreeFanout = 500

// ExecutionProfile derives the per-query execution shape the engine
// passes to memory-pressure: nested-loop depth and join
// fanout straight from Metrics, B-tree depth estimates from the
// index-cardinality section (when available), and a logical/physical
// read split driven by the environment's cache temperature.
func ExecutionProfile(m *model.Metrics, idx *model.IndexCardinalityAnalysis, env *model.EnvironmentContext) model.ExecutionProfile {
	profile := model.ExecutionProfile{
		NestedLoopDepth: m.NestedLoopDepth,
		JoinFanouts:     map[string]int64{},
		BtreeDepths:     map[string]int{},
		LogicalReads:    m.RowsExamined,
		ScanComplexity:  m.Complexity,
	}

	for table, est := range m.PerTableEstimates {
		loops := est.Loops
		if loops <= 0 {
			loops = 1
		}
		profile.JoinFanouts[table] = est.ActualRows * loops
	}

	if idx != nil {
		for name, card := range idx.Indexes {
			profile.BtreeDepths[name] = card.EstimatedDepth
		}
	}

	if m.HasFilesort {
		profile.SortComplexity = model.ComplexityLinearithmic
	} else {
		profile.SortComplexity = model.ComplexityConstant
	}

	profile.PhysicalReads = m.RowsExamined
	if env != nil && !env.IsColdCache() {
		profile.PhysicalReads = int64(float64(m.RowsExamined) * (1 - env.BufferPoolUtilization))
	}

	return profile
}
