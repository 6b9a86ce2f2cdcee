package analyzers

import (
	"testing"

	"github.com/nethalo/sqlsentinel/internal/model"
)

func TestPlanStability_NilDriftIsStable(t *testing.T) {
	stability, findings := PlanStability(nil, false)
	if stability.Label != "stable" {
		t.Errorf("Label = %q, want stable", stability.Label)
	}
	if len(findings) != 0 {
		t.Errorf("expected no findings, got %v", findings)
	}
}

func TestPlanStability_NoDriftIsStable(t *testing.T) {
	drift := &model.CardinalityDrift{CompositeDrift: 1.0}
	stability, _ := PlanStability(drift, false)
	if stability.Label != "stable" {
		t.Errorf("Label = %q, want stable for a perfectly matched estimate", stability.Label)
	}
}

func TestPlanStability_HeavyDriftIsVolatile(t *testing.T) {
	drift := &model.CardinalityDrift{
		CompositeDrift: 20,
		PerTable: map[string]model.TableDrift{
			"orders": {Classification: "critical"},
			"users":  {Classification: "critical"},
		},
	}
	stability, findings := PlanStability(drift, false)
	if stability.Label != "volatile" {
		t.Errorf("Label = %q, want volatile", stability.Label)
	}
	if len(findings) != 1 {
		t.Fatalf("expected one volatile-plan finding, got %d", len(findings))
	}
}

func TestPlanStability_OptimizerHintsHalveVolatility(t *testing.T) {
	drift := &model.CardinalityDrift{CompositeDrift: 20}
	withoutHint, _ := PlanStability(drift, false)
	withHint, _ := PlanStability(drift, true)
	if withHint.VolatilityScore >= withoutHint.VolatilityScore {
		t.Errorf("hinted VolatilityScore (%v) should be lower than unhinted (%v)", withHint.VolatilityScore, withoutHint.VolatilityScore)
	}
}
