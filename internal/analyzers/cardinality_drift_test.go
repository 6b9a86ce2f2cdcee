package analyzers

import (
	"testing"

	"github.com/nethalo/sqlsentinel/internal/config"
	"github.com/nethalo/sqlsentinel/internal/model"
)

func TestCardinalityDrift_CriticalDriftFlagged(t *testing.T) {
	m := model.NewMetrics()
	m.PerTableEstimates["orders"] = model.TableEstimate{EstimatedRows: 10, ActualRows: 10000}

	drift, findings := CardinalityDrift(m, config.Default().CardinalityDrift)

	td := drift.PerTable["orders"]
	if td.Classification != "critical" {
		t.Errorf("Classification = %q, want critical", td.Classification)
	}
	if len(findings) != 1 {
		t.Fatalf("expected one finding, got %d", len(findings))
	}
	if findings[0].Severity != model.SeverityCritical {
		t.Errorf("Severity = %v, want Critical", findings[0].Severity)
	}
}

func TestCardinalityDrift_NoDriftNoFinding(t *testing.T) {
	m := model.NewMetrics()
	m.PerTableEstimates["orders"] = model.TableEstimate{EstimatedRows: 1000, ActualRows: 1000}

	drift, findings := CardinalityDrift(m, config.Default().CardinalityDrift)

	td := drift.PerTable["orders"]
	if td.Classification == "critical" || td.Classification == "warning" {
		t.Errorf("Classification = %q, want no drift for matching estimates", td.Classification)
	}
	if len(findings) != 0 {
		t.Errorf("expected no findings for matching estimates, got %v", findings)
	}
}

func TestCardinalityDrift_CompositeDriftMatchesMetrics(t *testing.T) {
	m := model.NewMetrics()
	m.PerTableEstimates["a"] = model.TableEstimate{EstimatedRows: 100, ActualRows: 100}
	m.PerTableEstimates["b"] = model.TableEstimate{EstimatedRows: 10, ActualRows: 1000}

	drift, _ := CardinalityDrift(m, config.Default().CardinalityDrift)
	if drift.CompositeDrift != m.CompositeDrift() {
		t.Errorf("CompositeDrift = %v, want %v (Metrics.CompositeDrift())", drift.CompositeDrift, m.CompositeDrift())
	}
}
