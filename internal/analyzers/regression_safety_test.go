package analyzers

import (
	"testing"

	"github.com/nethalo/sqlsentinel/internal/model"
)

func TestRegressionSafety_VolatilePlanIsUnsafe(t *testing.T) {
	stability := &model.PlanStability{Label: "volatile"}
	safety, findings := RegressionSafety(stability, nil)
	if safety.SafeToOptimize {
		t.Error("expected SafeToOptimize = false for a volatile plan")
	}
	if len(findings) != 1 {
		t.Fatalf("expected one safety-caveat finding, got %d", len(findings))
	}
}

func TestRegressionSafety_StablePlanIsSafe(t *testing.T) {
	stability := &model.PlanStability{Label: "stable"}
	safety, findings := RegressionSafety(stability, nil)
	if !safety.SafeToOptimize {
		t.Error("expected SafeToOptimize = true for a stable plan")
	}
	if len(findings) != 0 {
		t.Errorf("expected no findings for a stable, safe plan, got %v", findings)
	}
}

func TestRegressionSafety_CorrelatedSubqueryAddsSemanticNote(t *testing.T) {
	antiPatterns := &model.AntiPatternReport{Detected: []string{"correlated_subquery"}}
	safety, _ := RegressionSafety(&model.PlanStability{Label: "stable"}, antiPatterns)
	if len(safety.Notes) != 1 {
		t.Fatalf("expected one semantic-safety note, got %d", len(safety.Notes))
	}
}
