package engine

import (
	"context"
	"fmt"

	"github.com/nethalo/sqlsentinel/internal/model"
	"github.com/nethalo/sqlsentinel/internal/planmetrics"
	"github.com/nethalo/sqlsentinel/internal/rules"
	"github.com/nethalo/sqlsentinel/internal/sqlsafety"
	"github.com/nethalo/sqlsentinel/internal/sqlshape"
	"github.com/nethalo/sqlsentinel/internal/validate"
)

// analysisState carries everything phases past metrics extraction need,
// so Diagnose can continue from where Analyze left off without
// re-running the sanitize/validate/explain/extract phases.
type analysisState struct {
	sanitized string
	shape     *sqlshape.Shape
	plan      *model.PlanNode
	planText  string
	metrics   *model.Metrics
	base      model.BaseReport
}

// Analyze runs the pipeline's first nine phases — sanitize, guard,
// validate, explain, parse, extract metrics, score, evaluate rules,
// project scalability — and returns the resulting BaseReport. This is
// the engine's simpler public operation; Diagnose wraps it and adds
// the deep analyzer sections.
func (p Pipeline) Analyze(ctx context.Context, sql string) (model.BaseReport, error) {
	state, err := p.runBase(ctx, sql)
	if err != nil {
		return model.BaseReport{}, err
	}
	return state.base, nil
}

// runBase executes phases 1-9 and returns the full intermediate state.
// An error here is a sqlsafety.ErrUnsafeQuery rejection, one of
// validate's typed errors (*validate.UnknownTable,
// *validate.UnknownColumn, *validate.ExplainUnsupported), a
// *dbdriver.EngineAbort from either
// EXPLAIN call, or a plan-parse error. The caller (Diagnose) turns all
// but the plan-parse error into a ValidationFailureReport instead of a
// bare error.
func (p Pipeline) runBase(ctx context.Context, sql string) (*analysisState, error) {
	sanitized := sqlsafety.Sanitize(sql)
	if err := p.guard.Check(sanitized); err != nil {
		return nil, err
	}

	shape := sqlshape.Parse(sanitized)

	validator := validate.NewPipeline(p.Introspector, p.Driver, p.Permissive)
	if err := validator.Run(ctx, shape, sanitized); err != nil {
		return nil, err
	}

	tabularRows, err := p.Driver.RunExplain(ctx, sanitized)
	if err != nil {
		return nil, err
	}
	planText, err := p.Driver.RunExplainAnalyze(ctx, sanitized)
	if err != nil {
		return nil, err
	}

	plan, err := planmetrics.ParsePlan(planText, p.Driver)
	if err != nil {
		return nil, fmt.Errorf("engine: parsing plan: %w", err)
	}

	metrics := planmetrics.ExtractMetrics(plan, sanitized)
	planmetrics.Enrich(metrics, tabularRows, plan)

	contextOverride := metrics.HasEarlyTermination && metrics.HasCoveringIndex &&
		!metrics.HasFilesort && metrics.ExecutionTimeMs < 10
	score := p.scorer.Score(metrics, contextOverride)

	ruleFindings := rules.Run(rules.All(p.Cfg.RulesEnabled), rules.Input{
		SQL: sanitized, Shape: shape, Metrics: metrics, Cfg: p.Cfg.AntiPattern,
	})

	scalabilityProjection := p.estimator.Estimate(metrics, shape)

	base := model.BaseReport{
		SQL:         sanitized,
		QueryHash:   queryHash(sanitized),
		Metrics:     metrics,
		Score:       score,
		Findings:    ruleFindings,
		Scalability: scalabilityProjection,
	}

	return &analysisState{
		sanitized: sanitized,
		shape:     shape,
		plan:      plan,
		planText:  planText,
		metrics:   metrics,
		base:      base,
	}, nil
}
