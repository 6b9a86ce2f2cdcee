package analyzers

import (
	"fmt"

	"github.com/nethalo/sqlsentinel/internal/model"
	"github.com/nethalo/sqlsentinel/internal/sqlshape"
)

// highFanoutThreshold flags a join step whose fanout (rows produced per
// outer iteration) suggests the join is multiplying rows far more than
// a well-indexed one-to-many relationship would.
const highFanoutThreshold = 100

// JoinAnalysis walks the tables the query shape named and pairs each
// one (past the first, which is the driving table) with its actual
// fanout from the plan metrics. Join algorithm classification isn't
// tracked per edge by the metrics extractor today, so every step is
// reported as nested_loop, MySQL's default absent a hash/merge hint —
// a known simplification, not a claim that no other algorithm ran.
func JoinAnalysis(shape *sqlshape.Shape, m *model.Metrics) (model.JoinAnalysis, []model.Finding) {
	result := model.JoinAnalysis{}
	var findings []model.Finding
	if shape == nil || len(shape.Tables) < 2 {
		return result, findings
	}

	result.JoinCount = len(shape.Tables) - 1
	for _, t := range shape.Tables[1:] {
		name := t.Name
		fanout := int64(0)
		if est, ok := m.PerTableEstimates[name]; ok {
			loops := est.Loops
			if loops <= 0 {
				loops = 1
			}
			fanout = est.ActualRows * loops
		}
		result.Joins = append(result.Joins, model.JoinStep{
			Table:    name,
			JoinType: model.JoinNestedLoop,
			Fanout:   fanout,
		})
		if fanout >= highFanoutThreshold {
			findings = append(findings, model.NewFinding(model.SeverityWarning, model.CategoryJoinAnalysis,
				"High join fanout",
				fmt.Sprintf("Joining %s multiplies rows by roughly %d per outer row.", name, fanout)).
				WithRecommendation("Confirm the join predicate is selective and indexed on "+name+"; an unindexed join key inflates fanout like this."))
		}
	}

	if result.JoinCount >= 4 {
		findings = append(findings, model.NewFinding(model.SeverityOptimization, model.CategoryJoinAnalysis,
			"Many-way join",
			fmt.Sprintf("The query joins %d tables; the optimizer's join-order search space grows combinatorially past this point.", result.JoinCount+1)).
			WithRecommendation("Consider splitting into staged queries or materializing an intermediate result if this query is on a hot path."))
	}
	return result, findings
}
