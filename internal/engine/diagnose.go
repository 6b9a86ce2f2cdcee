package engine

import (
	"context"
	"errors"
	"log"

	"github.com/nethalo/sqlsentinel/internal/analyzers"
	"github.com/nethalo/sqlsentinel/internal/baseline"
	"github.com/nethalo/sqlsentinel/internal/dbdriver"
	"github.com/nethalo/sqlsentinel/internal/model"
	"github.com/nethalo/sqlsentinel/internal/sqlsafety"
	"github.com/nethalo/sqlsentinel/internal/validate"
)

// Diagnose runs the full pipeline: Analyze's nine phases, then every
// deep analyzer in dependency order, then the cross-cutting
// post-processing passes (root-cause suppression, deduplication,
// confidence gating, severity sort) before returning the assembled
// report. A validation or EXPLAIN-preflight failure short-circuits
// into a ValidationFailureReport instead of a DiagnosticReport — there
// is nothing to score when the plan never ran.
func (p Pipeline) Diagnose(ctx context.Context, sql string) (any, error) {
	state, err := p.runBase(ctx, sql)
	if err != nil {
		if report, ok := validationFailure(err); ok {
			return report, nil
		}
		return nil, err
	}

	report := model.DiagnosticReport{Base: state.base}
	m := state.metrics

	env, envFindings, err := analyzers.Environment(ctx, p.EnvProbe, p.Database)
	if err != nil {
		return nil, err
	}
	report.Environment = &env
	report.Base.Findings = append(report.Base.Findings, envFindings...)

	idxCard, idxFindings := analyzers.IndexCardinality(ctx, p.Driver, m)
	report.IndexAnalysis = &idxCard
	report.Base.Findings = append(report.Base.Findings, idxFindings...)

	profile := analyzers.ExecutionProfile(m, &idxCard, &env)
	report.ExecutionProfile = &profile

	drift, driftFindings := analyzers.CardinalityDrift(m, p.Cfg.CardinalityDrift)
	report.CardinalityDrift = &drift
	report.Base.Findings = append(report.Base.Findings, driftFindings...)

	joins, joinFindings := analyzers.JoinAnalysis(state.shape, m)
	report.JoinAnalysis = &joins
	report.Base.Findings = append(report.Base.Findings, joinFindings...)

	antiPatterns, apFindings := analyzers.AntiPatterns(state.shape, m, state.planText, p.Cfg.AntiPattern)
	report.AntiPatterns = &antiPatterns
	report.Base.Findings = append(report.Base.Findings, apFindings...)

	synthesis, synthFindings := analyzers.IndexSynthesis(ctx, p.Driver, state.shape, state.sanitized, m, &drift, p.Cfg.IndexSynthesis)
	report.IndexSynthesis = &synthesis
	report.Base.Findings = append(report.Base.Findings, synthFindings...)

	memPressure, memFindings := analyzers.MemoryPressure(m, &env, &profile, p.Cfg.MemoryPressure)
	report.MemoryPressure = &memPressure
	report.Base.Findings = append(report.Base.Findings, memFindings...)

	concurrency, concFindings := analyzers.ConcurrencyRisk(state.shape, m)
	report.ConcurrencyRisk = &concurrency
	report.Base.Findings = append(report.Base.Findings, concFindings...)

	hasHints := false
	stability, stabFindings := analyzers.PlanStability(&drift, hasHints)
	report.Stability = &stability
	report.Base.Findings = append(report.Base.Findings, stabFindings...)

	safety, safetyFindings := analyzers.RegressionSafety(&stability, &antiPatterns)
	report.Safety = &safety
	report.Base.Findings = append(report.Base.Findings, safetyFindings...)

	confidence, confFindings := analyzers.Confidence(m, &drift, &stability, &env, p.Driver.GetCapabilities())
	report.Confidence = &confidence
	report.Base.Findings = append(report.Base.Findings, confFindings...)

	if p.Baseline != nil {
		snapshot := p.buildSnapshot(report.Base, env)
		history, _ := p.Baseline.History(ctx, snapshot.QueryHash, p.Cfg.Regression.MaxHistory)

		regression, regFindings, err := analyzers.Regression(ctx, baseline.NewAnalyzer(p.Baseline, p.Cfg.Regression), snapshot)
		if err == nil {
			report.Regression = &regression
			report.Base.Findings = append(report.Base.Findings, regFindings...)
		}

		workload, wlFindings := analyzers.Workload(history, m.RowsReturned, p.Cfg.Workload)
		report.Workload = &workload
		report.Base.Findings = append(report.Base.Findings, wlFindings...)
	}

	if p.Cfg.HypotheticalIndex.Enabled {
		hyp, hypFindings := analyzers.HypotheticalIndex(ctx, p.Driver, state.sanitized, &synthesis, p.Environment, p.Cfg.HypotheticalIndex)
		report.HypotheticalIdx = &hyp
		report.Base.Findings = append(report.Base.Findings, hypFindings...)
	}

	violations := checkConsistency(report)
	for _, v := range violations {
		log.Printf("consistency check: %s", v)
	}
	report.ConsistencyViolations = violations

	report.Base.Findings = postProcess(report.Base.Findings, m, state.shape, confidence)
	return report, nil
}

// validationFailure translates a runBase error into a
// ValidationFailureReport when it's one of validate's typed errors or
// an EngineAbort from the EXPLAIN preflight; any other error is not a
// validation failure and should propagate as-is.
func validationFailure(err error) (model.ValidationFailureReport, bool) {
	var unknownTable *validate.UnknownTable
	var unknownColumn *validate.UnknownColumn
	var ambiguousColumn *validate.AmbiguousColumn
	var explainUnsupported *validate.ExplainUnsupported
	var engineAbort *dbdriver.EngineAbort

	switch {
	case errors.Is(err, sqlsafety.ErrUnsafeQuery):
		return model.ValidationFailureReport{Status: "rejected", Stage: "guard", Suggestions: nil}, true
	case errors.As(err, &unknownTable):
		return model.ValidationFailureReport{Status: "invalid", Stage: "schema", Suggestions: unknownTable.Suggestions}, true
	case errors.As(err, &unknownColumn):
		return model.ValidationFailureReport{Status: "invalid", Stage: "column", Suggestions: unknownColumn.Suggestions}, true
	case errors.As(err, &ambiguousColumn):
		return model.ValidationFailureReport{Status: "invalid", Stage: "join", Suggestions: nil}, true
	case errors.As(err, &explainUnsupported):
		return model.ValidationFailureReport{Status: "invalid", Stage: "explain_preflight", Suggestions: nil}, true
	case errors.As(err, &engineAbort):
		return model.ValidationFailureReport{Status: "invalid", Stage: "explain_preflight", Suggestions: nil}, true
	default:
		return model.ValidationFailureReport{}, false
	}
}
