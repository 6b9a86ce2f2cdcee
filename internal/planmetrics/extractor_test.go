package planmetrics

import (
	"testing"

	"github.com/nethalo/sqlsentinel/internal/dbdriver"
	"github.com/nethalo/sqlsentinel/internal/model"
)

func TestExtractMetrics_TableScan(t *testing.T) {
	text := "-> Table scan on users  (cost=120.5 rows=5000) (actual time=0.5..12.3 rows=5000 loops=1)"
	root, err := ParsePlan(text, dbdriver.NewMySQLDriver(nil))
	if err != nil {
		t.Fatalf("ParsePlan: %v", err)
	}
	m := ExtractMetrics(root, "SELECT * FROM users WHERE status = 'active'")

	if !m.HasTableScan {
		t.Error("expected HasTableScan = true")
	}
	if m.RowsExamined != 5000 {
		t.Errorf("RowsExamined = %d, want 5000", m.RowsExamined)
	}
	if m.Complexity != model.ComplexityLinear {
		t.Errorf("Complexity = %v, want Linear", m.Complexity)
	}
}

func TestExtractMetrics_ZeroRowConst(t *testing.T) {
	text := "-> Rows fetched before execution  (cost=0 rows=0) (actual time=0..0 rows=0 loops=1)"
	root, err := ParsePlan(text, dbdriver.NewMySQLDriver(nil))
	if err != nil {
		t.Fatalf("ParsePlan: %v", err)
	}
	root.AccessType = model.AccessZeroRowConst

	m := ExtractMetrics(root, "SELECT 1 FROM users WHERE 1 = 0")
	if m.Complexity != model.ComplexityConstant {
		t.Errorf("Complexity = %v, want Constant", m.Complexity)
	}
	if m.ComplexityRisk != model.RiskLow {
		t.Errorf("ComplexityRisk = %v, want LOW", m.ComplexityRisk)
	}
}

func TestExtractMetrics_NestedLoopDepth(t *testing.T) {
	text := `-> Nested loop inner join  (cost=5 rows=50) (actual time=0.1..2 rows=50 loops=1)
    -> Nested loop inner join  (cost=3 rows=50) (actual time=0.05..1 rows=50 loops=1)
        -> Table scan on a  (cost=1 rows=10) (actual time=0.01..0.5 rows=10 loops=1)
        -> Index lookup on b using idx  (cost=1 rows=5) (actual time=0.01..0.1 rows=5 loops=10)
    -> Index lookup on c using idx2  (cost=1 rows=1) (actual time=0.01..0.01 rows=1 loops=50)
`
	root, err := ParsePlan(text, dbdriver.NewMySQLDriver(nil))
	if err != nil {
		t.Fatalf("ParsePlan: %v", err)
	}
	m := ExtractMetrics(root, "SELECT * FROM a JOIN b ON a.id=b.a_id JOIN c ON b.id=c.b_id")
	if m.NestedLoopDepth != 2 {
		t.Errorf("NestedLoopDepth = %d, want 2", m.NestedLoopDepth)
	}
}

func TestExtractMetrics_EarlyTerminationWithLimit(t *testing.T) {
	text := "-> Limit: 10 row(s)  (cost=1 rows=10) (actual time=0.01..0.02 rows=10 loops=1)\n" +
		"    -> Index lookup on orders using idx_status  (cost=1 rows=100) (actual time=0.01..0.02 rows=10 loops=1)\n"
	root, err := ParsePlan(text, dbdriver.NewMySQLDriver(nil))
	if err != nil {
		t.Fatalf("ParsePlan: %v", err)
	}
	m := ExtractMetrics(root, "SELECT * FROM orders WHERE status = 'open' LIMIT 10")
	if !m.HasEarlyTermination {
		t.Error("expected HasEarlyTermination = true due to LIMIT in SQL")
	}
}

func TestExtractMetrics_ConsistencyCorrection_IndexBacked(t *testing.T) {
	text := "-> Index lookup on orders using idx_status  (cost=1 rows=10) (actual time=0.01..0.02 rows=10 loops=1)"
	root, err := ParsePlan(text, dbdriver.NewMySQLDriver(nil))
	if err != nil {
		t.Fatalf("ParsePlan: %v", err)
	}
	m := ExtractMetrics(root, "SELECT * FROM orders WHERE status = 'open'")
	if !m.HasIndexBacked {
		t.Error("expected HasIndexBacked = true for a non-table-scan access type")
	}
}
