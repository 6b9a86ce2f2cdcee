package analyzers

import (
	"context"
	"fmt"
	"math"

	"github.com/nethalo/sqlsentinel/internal/dbdriver"
	"github.com/nethalo/sqlsentinel/internal/model"
)

// IndexCardinality looks up column statistics for every index the plan
// actually used and estimates selectivity and B-tree depth from
// distinct-value counts. Indexes the driver can't resolve to column
// statistics (view-backed tables, permissive SQLite) are simply
// skipped rather than failing the whole analyzer.
func IndexCardinality(ctx context.Context, driver dbdriver.Driver, m *model.Metrics) (model.IndexCardinalityAnalysis, []model.Finding) {
	result := model.IndexCardinalityAnalysis{Indexes: map[string]model.IndexCardinality{}}
	var findings []model.Finding

	for table := range m.TablesAccessed {
		defs, err := driver.ListIndexes(ctx, table)
		if err != nil {
			continue
		}
		for _, def := range defs {
			if _, used := m.IndexesUsed[def.Name]; !used {
				continue
			}
			if len(def.Columns) == 0 {
				continue
			}
			stats, err := driver.GetColumnStats(ctx, table, def.Columns[0])
			if err != nil || stats.DistinctCount == nil {
				continue
			}
			distinct := *stats.DistinctCount
			card := model.IndexCardinality{
				Name:           def.Name,
				Table:          table,
				DistinctCount:  distinct,
				HasHistogram:   stats.HasHistogram,
				EstimatedDepth: btreeDepth(distinct),
			}
			if stats.NullFraction != nil {
				card.NullFraction = *stats.NullFraction
			}
			if distinct > 0 {
				card.Selectivity = 1.0 / float64(distinct)
			}
			result.Indexes[def.Name] = card

			if distinct > 0 && card.Selectivity > 0.1 {
				findings = append(findings, model.NewFinding(model.SeverityOptimization, model.CategoryIndexCardinality,
					"Low-selectivity index in use",
					fmt.Sprintf("Index %s on %s has only %d distinct value(s), yielding poor selectivity; "+
						"the optimizer may prefer a scan over it at larger sizes.", def.Name, table, distinct)).
					WithRecommendation("Extend the index with a more selective leading column, or drop it if it never narrows the row set.").
					WithMeta("distinct_count", distinct).
					WithMeta("selectivity", card.Selectivity))
			}
		}
	}
	return result, findings
}

func btreeDepth(distinct int64) int {
	if distinct <= 1 {
		return 1
	}
	depth := math.Ceil(math.Log(float64(distinct)) / math.Log(btreeFanout))
	if depth < 1 {
		depth = 1
	}
	return int(depth)
}
