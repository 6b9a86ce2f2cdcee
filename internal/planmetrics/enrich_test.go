package planmetrics

import (
	"testing"

	"github.com/nethalo/sqlsentinel/internal/dbdriver"
	"github.com/nethalo/sqlsentinel/internal/model"
)

func TestEnrich_FillsFlagsFromExtra(t *testing.T) {
	m := model.NewMetrics()
	rows := []map[string]any{
		{"table": "orders", "type": "ref", "rows": int64(100), "Extra": "Using index; Using filesort"},
	}
	Enrich(m, rows, nil)

	if !m.HasCoveringIndex {
		t.Error("expected HasCoveringIndex = true")
	}
	if !m.HasFilesort {
		t.Error("expected HasFilesort = true")
	}
}

func TestEnrich_ConstTypeSetsZeroRowConst(t *testing.T) {
	m := model.NewMetrics()
	rows := []map[string]any{
		{"table": "users", "type": "const", "rows": int64(1)},
	}
	Enrich(m, rows, nil)
	if !m.HasZeroRowConst {
		t.Error("expected HasZeroRowConst = true for type=const")
	}
}

func TestEnrich_PopulatesPerTableEstimates(t *testing.T) {
	m := model.NewMetrics()
	rows := []map[string]any{
		{"table": "orders", "type": "ALL", "rows": int64(5000)},
	}
	text := "-> Table scan on orders  (cost=10 rows=5000) (actual time=0.1..5 rows=4200 loops=1)"
	root, err := ParsePlan(text, dbdriver.NewMySQLDriver(nil))
	if err != nil {
		t.Fatalf("ParsePlan: %v", err)
	}
	Enrich(m, rows, root)

	est, ok := m.PerTableEstimates["orders"]
	if !ok {
		t.Fatal("expected an estimate for table orders")
	}
	if est.EstimatedRows != 5000 {
		t.Errorf("EstimatedRows = %d, want 5000", est.EstimatedRows)
	}
	if est.ActualRows != 4200 {
		t.Errorf("ActualRows = %d, want 4200", est.ActualRows)
	}
}
