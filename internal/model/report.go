package model

// BaseReport is the output of the first pipeline phase: the scored,
// rule-evaluated, scalability-projected analysis every deeper section
// builds on. `analyze()` (the simpler public operation) returns exactly
// this; `diagnose()` wraps it in a DiagnosticReport with the deep
// sections attached.
type BaseReport struct {
	SQL          string
	QueryHash    string
	Metrics      *Metrics
	Score        Score
	Findings     []Finding
	Scalability  ScalabilityProjection
}

// ToMap renders the base report as a JSON-friendly map.
func (r BaseReport) ToMap() map[string]any {
	findings := make([]any, len(r.Findings))
	for i, f := range r.Findings {
		findings[i] = f.ToMap()
	}
	return map[string]any{
		"sql":         r.SQL,
		"query_hash":  r.QueryHash,
		"score":       r.Score.ToMap(),
		"findings":    findings,
	}
}

// DiagnosticReport is the root value the engine emits from diagnose().
// Every field beyond BaseReport is optional: a pipeline phase that
// didn't run (disabled analyzer, unsupported driver capability) simply
// leaves its section nil. No aliasing: the pipeline builds every
// section once and never mutates it after attaching it here.
type DiagnosticReport struct {
	Base BaseReport

	Environment       *EnvironmentContext
	ExecutionProfile  *ExecutionProfile
	IndexAnalysis     *IndexCardinalityAnalysis
	JoinAnalysis      *JoinAnalysis
	Stability         *PlanStability
	Safety            *RegressionSafety
	CardinalityDrift  *CardinalityDrift
	AntiPatterns      *AntiPatternReport
	IndexSynthesis    *IndexSynthesis
	Confidence        *Confidence
	ConcurrencyRisk   *ConcurrencyRisk
	MemoryPressure    *MemoryPressure
	Regression        *Regression
	HypotheticalIdx   *HypotheticalIndexes
	Workload          *Workload

	// ConsistencyViolations holds the consistency validator's log-only
	// findings (§4.7 phase 22): never surfaced as Findings, never
	// affects scoring, but testable.
	ConsistencyViolations []string
}

// Findings returns the report's severity-sorted findings.
func (r DiagnosticReport) Findings() []Finding { return r.Base.Findings }

// EffectiveGrade applies confidence capping on top of the raw grade:
// a report with unreliable confidence never displays as better than C,
// and low confidence caps at B, regardless of the raw composite score.
func (r DiagnosticReport) EffectiveGrade() Grade {
	grade := r.Base.Score.Grade
	if r.Confidence == nil {
		return grade
	}
	switch r.Confidence.Label {
	case "unreliable":
		return capGrade(grade, GradeC)
	case "low":
		return capGrade(grade, GradeB)
	default:
		return grade
	}
}

// EffectiveCompositeScore mirrors EffectiveGrade's capping in score
// terms, clamping at the top of the capped grade's threshold isn't
// possible without config thresholds, so this instead floors the
// confidence penalty: an unreliable read never reports above 70, a low
// one never above 85.
func (r DiagnosticReport) EffectiveCompositeScore() float64 {
	score := r.Base.Score.CompositeScore
	if r.Confidence == nil {
		return score
	}
	switch r.Confidence.Label {
	case "unreliable":
		if score > 70 {
			return 70
		}
	case "low":
		if score > 85 {
			return 85
		}
	}
	return score
}

var gradeRank = map[Grade]int{
	GradeAPlus: 0, GradeA: 1, GradeB: 2, GradeC: 3, GradeD: 4, GradeF: 5,
}

func capGrade(current, floor Grade) Grade {
	if gradeRank[current] < gradeRank[floor] {
		return floor
	}
	return current
}

// ToMap renders the full report as a JSON-friendly map, omitting
// sections that were never attached.
func (r DiagnosticReport) ToMap() map[string]any {
	out := r.Base.ToMap()
	out["effective_grade"] = string(r.EffectiveGrade())
	out["effective_composite_score"] = r.EffectiveCompositeScore()
	if r.Environment != nil {
		out["environment"] = r.Environment
	}
	if r.ExecutionProfile != nil {
		out["execution_profile"] = r.ExecutionProfile
	}
	if r.IndexAnalysis != nil {
		out["index_analysis"] = r.IndexAnalysis
	}
	if r.JoinAnalysis != nil {
		out["join_analysis"] = r.JoinAnalysis
	}
	if r.Stability != nil {
		out["stability"] = r.Stability
	}
	if r.Safety != nil {
		out["safety"] = r.Safety
	}
	if r.CardinalityDrift != nil {
		out["cardinality_drift"] = r.CardinalityDrift
	}
	if r.AntiPatterns != nil {
		out["anti_patterns"] = r.AntiPatterns
	}
	if r.IndexSynthesis != nil {
		out["index_synthesis"] = r.IndexSynthesis
	}
	if r.Confidence != nil {
		out["confidence"] = r.Confidence
	}
	if r.ConcurrencyRisk != nil {
		out["concurrency_risk"] = r.ConcurrencyRisk
	}
	if r.MemoryPressure != nil {
		out["memory_pressure"] = r.MemoryPressure
	}
	if r.Regression != nil {
		out["regression"] = r.Regression
	}
	if r.HypotheticalIdx != nil {
		out["hypothetical_indexes"] = r.HypotheticalIdx
	}
	if r.Workload != nil {
		out["workload"] = r.Workload
	}
	return out
}

// ValidationFailureReport is emitted instead of a DiagnosticReport when
// the ValidationPipeline aborts: scoring never runs, so there is
// nothing to grade.
type ValidationFailureReport struct {
	Status      string
	Stage       string
	Suggestions []string
}

func (r ValidationFailureReport) ToMap() map[string]any {
	return map[string]any{
		"status":      r.Status,
		"stage":       r.Stage,
		"suggestions": r.Suggestions,
	}
}
