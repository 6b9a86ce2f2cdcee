// Package config holds the tunable thresholds and weights for the
// diagnostic pipeline: scoring weights, grade thresholds, per-rule
// thresholds, and validation strictness. Values are loaded by viper from
// a YAML file plus SQLSENTINEL_-prefixed environment variables, the same
// two-source pattern cmd/root.go uses for connection flags.
package config

import "fmt"

// ScoringWeights are the five weighted terms of the composite score.
// Their sum must equal 1.0 within a small epsilon.
type ScoringWeights struct {
	ExecutionEfficiency float64 `mapstructure:"execution_efficiency"`
	IndexUtilization    float64 `mapstructure:"index_utilization"`
	Scalability         float64 `mapstructure:"scalability"`
	ResourceFootprint   float64 `mapstructure:"resource_footprint"`
	PlanStability       float64 `mapstructure:"plan_stability"`
}

// GradeThresholds maps the composite score (0-100) to a letter grade.
// Each field is the minimum score required for that grade.
type GradeThresholds struct {
	APlus float64 `mapstructure:"a_plus"`
	A     float64 `mapstructure:"a"`
	B     float64 `mapstructure:"b"`
	C     float64 `mapstructure:"c"`
	D     float64 `mapstructure:"d"`
}

// CardinalityDriftThresholds gates the cardinality-drift analyzer's
// severity classification by drift ratio.
type CardinalityDriftThresholds struct {
	Critical float64 `mapstructure:"critical"`
	Warning  float64 `mapstructure:"warning"`
}

// AntiPatternThresholds tunes the individual anti-pattern detectors,
// shared by internal/rules' single-pass findings and the deeper
// internal/analyzers anti-pattern analyzer.
type AntiPatternThresholds struct {
	SelectStarMinColumns     int  `mapstructure:"select_star_min_columns"`
	FunctionOnColumnFlag     bool `mapstructure:"flag_function_on_indexed_column"`
	ImplicitCastFlag         bool `mapstructure:"flag_implicit_cast"`
	OrFlag                   bool `mapstructure:"flag_or_predicate"`
	LeadingWildcardFlag      bool `mapstructure:"flag_leading_wildcard_like"`
	NPlusOneMinIterations    int  `mapstructure:"n_plus_one_min_iterations"`
	OrChainThreshold         int  `mapstructure:"or_chain_threshold"`
	MissingLimitRowThreshold int64 `mapstructure:"missing_limit_row_threshold"`
}

// IndexSynthesisThresholds bounds the index-synthesis analyzer's
// recommendation volume and ambition.
type IndexSynthesisThresholds struct {
	MaxRecommendations  int `mapstructure:"max_recommendations"`
	MaxColumnsPerIndex  int `mapstructure:"max_columns_per_index"`
}

// MemoryPressureThresholds gates the memory-pressure analyzer's risk
// labels, as fractions of the configured buffer sizes, plus the
// concurrency assumption used to scale a single session's execution
// memory estimate up to a realistic connection pool.
type MemoryPressureThresholds struct {
	HighRiskBytes        int64   `mapstructure:"high_risk_bytes"`
	ModerateRiskBytes     int64  `mapstructure:"moderate_risk_bytes"`
	HighRiskFraction     float64 `mapstructure:"high_risk_fraction"`
	ModerateRiskFraction float64 `mapstructure:"moderate_risk_fraction"`
	ConcurrentSessions   int     `mapstructure:"concurrent_sessions"`
}

// HypotheticalIndexConfig gates whether and how the engine simulates
// candidate indexes against a live connection.
type HypotheticalIndexConfig struct {
	Enabled             bool     `mapstructure:"enabled"`
	MaxSimulations      int      `mapstructure:"max_simulations"`
	TimeoutSeconds      int      `mapstructure:"timeout_seconds"`
	RequireSuperPriv    bool     `mapstructure:"require_super_priv"`
	AllowedEnvironments []string `mapstructure:"allowed_environments"`
}

// WorkloadThresholds tune the workload-pattern analyzer.
type WorkloadThresholds struct {
	FrequencyThreshold    int   `mapstructure:"frequency_threshold"`
	ExportRowThreshold    int64 `mapstructure:"export_row_threshold"`
	NetworkBytesThreshold int64 `mapstructure:"network_bytes_threshold"`
	RepeatedExportMinRows int   `mapstructure:"repeated_export_min_rows"`
	BurstWindowSeconds    int   `mapstructure:"burst_window_seconds"`
}

// RegressionThresholds gate the regression-baseline analyzer's
// classification of a run against its stored baseline.
type RegressionThresholds struct {
	DegradedPercent     float64 `mapstructure:"degraded_percent"`
	ImprovedPercent     float64 `mapstructure:"improved_percent"`
	DataGrowthPercent   float64 `mapstructure:"data_growth_percent"`
	MaxHistory          int     `mapstructure:"max_history"`
	NoiseAbsoluteMs     float64 `mapstructure:"noise_absolute_ms"`
	NoisePercent        float64 `mapstructure:"noise_percent"`
}

// ValidationConfig controls the pipeline's validation stage.
type ValidationConfig struct {
	Strict bool `mapstructure:"strict"`
}

// Config is the full set of recognized options for the diagnostic
// engine, independent of the connection/CLI flags cmd/ binds directly.
type Config struct {
	ScoringWeights    ScoringWeights             `mapstructure:"scoring_weights"`
	GradeThresholds   GradeThresholds            `mapstructure:"grade_thresholds"`
	CardinalityDrift  CardinalityDriftThresholds `mapstructure:"cardinality_drift"`
	AntiPattern       AntiPatternThresholds      `mapstructure:"anti_pattern"`
	IndexSynthesis    IndexSynthesisThresholds   `mapstructure:"index_synthesis"`
	MemoryPressure    MemoryPressureThresholds   `mapstructure:"memory_pressure"`
	HypotheticalIndex HypotheticalIndexConfig    `mapstructure:"hypothetical_index"`
	Workload          WorkloadThresholds         `mapstructure:"workload"`
	Regression        RegressionThresholds       `mapstructure:"regression"`
	Validation        ValidationConfig           `mapstructure:"validation"`
	RulesEnabled      []string                   `mapstructure:"rules_enabled"`
}

// Default returns the built-in configuration used when no config file or
// environment override is present.
func Default() Config {
	return Config{
		ScoringWeights: ScoringWeights{
			ExecutionEfficiency: 0.35,
			IndexUtilization:    0.25,
			Scalability:         0.20,
			ResourceFootprint:   0.10,
			PlanStability:       0.10,
		},
		GradeThresholds: GradeThresholds{
			APlus: 97,
			A:     93,
			B:     85,
			C:     70,
			D:     50,
		},
		CardinalityDrift: CardinalityDriftThresholds{
			Critical: 10.0,
			Warning:  3.0,
		},
		AntiPattern: AntiPatternThresholds{
			SelectStarMinColumns:  1,
			FunctionOnColumnFlag:  true,
			ImplicitCastFlag:      true,
			OrFlag:                   true,
			LeadingWildcardFlag:      true,
			NPlusOneMinIterations:    5,
			OrChainThreshold:         3,
			MissingLimitRowThreshold: 10000,
		},
		IndexSynthesis: IndexSynthesisThresholds{
			MaxRecommendations: 5,
			MaxColumnsPerIndex: 4,
		},
		MemoryPressure: MemoryPressureThresholds{
			HighRiskBytes:        256 * 1024 * 1024,
			ModerateRiskBytes:    64 * 1024 * 1024,
			HighRiskFraction:     0.8,
			ModerateRiskFraction: 0.5,
			ConcurrentSessions:   10,
		},
		HypotheticalIndex: HypotheticalIndexConfig{
			Enabled:             false,
			MaxSimulations:      3,
			TimeoutSeconds:      5,
			RequireSuperPriv:    true,
			AllowedEnvironments: []string{"dev", "staging"},
		},
		Workload: WorkloadThresholds{
			FrequencyThreshold:    10,
			ExportRowThreshold:    100000,
			NetworkBytesThreshold: 50 * 1024 * 1024,
			RepeatedExportMinRows: 100000,
			BurstWindowSeconds:    60,
		},
		Regression: RegressionThresholds{
			DegradedPercent:   20.0,
			ImprovedPercent:   20.0,
			DataGrowthPercent: 15.0,
			MaxHistory:        10,
			NoiseAbsoluteMs:   5.0,
			NoisePercent:      50.0,
		},
		Validation: ValidationConfig{
			Strict: false,
		},
		RulesEnabled: []string{
			"missing_index", "full_table_scan", "select_star", "implicit_cast", "or_predicate",
			"leading_wildcard", "function_on_column", "cartesian_join",
			"unbounded_sort", "n_plus_one",
		},
	}
}

// Validate checks internal consistency: the scoring weights must sum to
// 1.0 within 1e-6, and grade thresholds must be strictly descending.
func (c Config) Validate() error {
	sum := c.ScoringWeights.ExecutionEfficiency + c.ScoringWeights.IndexUtilization +
		c.ScoringWeights.Scalability + c.ScoringWeights.ResourceFootprint +
		c.ScoringWeights.PlanStability
	const epsilon = 1e-6
	if diff := sum - 1.0; diff > epsilon || diff < -epsilon {
		return fmt.Errorf("config: scoring_weights must sum to 1.0, got %.6f", sum)
	}

	t := c.GradeThresholds
	if !(t.APlus > t.A && t.A > t.B && t.B > t.C && t.C > t.D) {
		return fmt.Errorf("config: grade_thresholds must be strictly descending (a_plus > a > b > c > d), got %+v", t)
	}

	if c.CardinalityDrift.Critical <= c.CardinalityDrift.Warning {
		return fmt.Errorf("config: cardinality_drift.critical must exceed cardinality_drift.warning")
	}
	if c.IndexSynthesis.MaxRecommendations < 0 {
		return fmt.Errorf("config: index_synthesis.max_recommendations must be non-negative")
	}
	return nil
}
