package analyzers

import (
	"context"
	"testing"

	"github.com/nethalo/sqlsentinel/internal/dbdriver"
	"github.com/nethalo/sqlsentinel/internal/model"
)

func int64ptr(v int64) *int64 { return &v }

func TestIndexCardinality_LowSelectivityFlagged(t *testing.T) {
	driver := dbdriver.NewStub()
	driver.IndexesByTable = map[string][]dbdriver.IndexDef{
		"orders": {{Name: "idx_status", Table: "orders", Columns: []string{"status"}}},
	}
	driver.ColumnStatsByKey = map[string]dbdriver.ColumnStats{
		"orders.status": {DistinctCount: int64ptr(3)},
	}

	m := model.NewMetrics()
	m.TablesAccessed["orders"] = struct{}{}
	m.IndexesUsed["idx_status"] = struct{}{}

	result, findings := IndexCardinality(context.Background(), driver, m)

	card, ok := result.Indexes["idx_status"]
	if !ok {
		t.Fatalf("expected idx_status to be present in result")
	}
	if card.DistinctCount != 3 {
		t.Errorf("DistinctCount = %d, want 3", card.DistinctCount)
	}
	if len(findings) != 1 {
		t.Fatalf("expected one low-selectivity finding, got %d", len(findings))
	}
}

func TestIndexCardinality_SkipsIndexesNotUsedByPlan(t *testing.T) {
	driver := dbdriver.NewStub()
	driver.IndexesByTable = map[string][]dbdriver.IndexDef{
		"orders": {{Name: "idx_unused", Table: "orders", Columns: []string{"created_at"}}},
	}
	driver.ColumnStatsByKey = map[string]dbdriver.ColumnStats{
		"orders.created_at": {DistinctCount: int64ptr(5000)},
	}

	m := model.NewMetrics()
	m.TablesAccessed["orders"] = struct{}{}

	result, findings := IndexCardinality(context.Background(), driver, m)
	if len(result.Indexes) != 0 {
		t.Errorf("expected no indexes analyzed when none are marked used, got %v", result.Indexes)
	}
	if len(findings) != 0 {
		t.Errorf("expected no findings, got %v", findings)
	}
}

func TestIndexCardinality_HighSelectivityNoFinding(t *testing.T) {
	driver := dbdriver.NewStub()
	driver.IndexesByTable = map[string][]dbdriver.IndexDef{
		"users": {{Name: "idx_email", Table: "users", Columns: []string{"email"}}},
	}
	driver.ColumnStatsByKey = map[string]dbdriver.ColumnStats{
		"users.email": {DistinctCount: int64ptr(1000000)},
	}

	m := model.NewMetrics()
	m.TablesAccessed["users"] = struct{}{}
	m.IndexesUsed["idx_email"] = struct{}{}

	_, findings := IndexCardinality(context.Background(), driver, m)
	if len(findings) != 0 {
		t.Errorf("expected no low-selectivity finding for a highly selective index, got %v", findings)
	}
}
