package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestDefault_Validates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default() should validate cleanly: %v", err)
	}
}

func TestValidate_WeightsMustSumToOne(t *testing.T) {
	cfg := Default()
	cfg.ScoringWeights.PlanStability += 0.2

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected an error for weights summing past 1.0")
	}
	if !strings.Contains(err.Error(), "scoring_weights") {
		t.Errorf("error should mention scoring_weights, got: %v", err)
	}
}

func TestValidate_WeightsWithinEpsilon(t *testing.T) {
	cfg := Default()
	cfg.ScoringWeights.PlanStability += 1e-9
	cfg.ScoringWeights.ResourceFootprint -= 1e-9

	if err := cfg.Validate(); err != nil {
		t.Errorf("weights within epsilon of 1.0 should validate, got: %v", err)
	}
}

func TestValidate_GradeThresholdsMustDescend(t *testing.T) {
	cfg := Default()
	cfg.GradeThresholds.B = 99 // now B > A, out of order

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected an error for out-of-order grade thresholds")
	}
	if !strings.Contains(err.Error(), "grade_thresholds") {
		t.Errorf("error should mention grade_thresholds, got: %v", err)
	}
}

func TestValidate_DriftCriticalMustExceedWarning(t *testing.T) {
	cfg := Default()
	cfg.CardinalityDrift.Critical = 1.0
	cfg.CardinalityDrift.Warning = 2.0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error when critical <= warning")
	}
}

func TestLoad_NilViperReturnsDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load(nil) should not error: %v", err)
	}
	if cfg.ScoringWeights != Default().ScoringWeights {
		t.Errorf("Load(nil) should return default weights, got %+v", cfg.ScoringWeights)
	}
}

func TestLoad_NoEngineSectionReturnsDefaults(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader("connections:\n  default:\n    host: 127.0.0.1\n")); err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load should not error: %v", err)
	}
	if cfg.GradeThresholds != Default().GradeThresholds {
		t.Errorf("Load should fall back to default grade thresholds, got %+v", cfg.GradeThresholds)
	}
}

func TestLoad_OverridesFromEngineSection(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	yaml := `
engine:
  validation:
    strict: true
  cardinality_drift:
    critical: 20.0
    warning: 5.0
`
	if err := v.ReadConfig(strings.NewReader(yaml)); err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load should not error: %v", err)
	}
	if !cfg.Validation.Strict {
		t.Error("expected validation.strict to be true")
	}
	if cfg.CardinalityDrift.Critical != 20.0 {
		t.Errorf("cardinality_drift.critical = %v, want 20.0", cfg.CardinalityDrift.Critical)
	}
	// Unset fields still fall back to the defaults merged in before decode.
	if cfg.ScoringWeights != Default().ScoringWeights {
		t.Errorf("unset scoring_weights should keep defaults, got %+v", cfg.ScoringWeights)
	}
}

func TestLoad_InvalidOverrideRejected(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	yaml := `
engine:
  cardinality_drift:
    critical: 1.0
    warning: 5.0
`
	if err := v.ReadConfig(strings.NewReader(yaml)); err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}

	if _, err := Load(v); err == nil {
		t.Fatal("expected Load to reject an invalid override")
	}
}
