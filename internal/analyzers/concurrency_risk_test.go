package analyzers

import (
	"testing"

	"github.com/nethalo/sqlsentinel/internal/model"
)

func TestConcurrencyRisk_TableScanIsWideAndFlagged(t *testing.T) {
	m := model.NewMetrics()
	m.PrimaryAccessType = model.AccessTableScan

	risk, findings := ConcurrencyRisk(nil, m)
	if risk.LockScope != "table" {
		t.Errorf("LockScope = %q, want table", risk.LockScope)
	}
	if len(findings) != 1 {
		t.Fatalf("expected one wide-lock-scope finding, got %d", len(findings))
	}
}

func TestConcurrencyRisk_OptimalAccessIsNarrowAndUnflagged(t *testing.T) {
	m := model.NewMetrics()
	m.PrimaryAccessType = model.AccessSingleRowLookup

	risk, findings := ConcurrencyRisk(nil, m)
	if risk.LockScope != "row" {
		t.Errorf("LockScope = %q, want row", risk.LockScope)
	}
	if len(findings) != 0 {
		t.Errorf("expected no findings for a tight row lock, got %v", findings)
	}
}

func TestConcurrencyRisk_MultiJoinIncreasesDeadlockRisk(t *testing.T) {
	m := model.NewMetrics()
	m.PrimaryAccessType = model.AccessIndexLookup
	m.JoinCount = 3

	base := model.NewMetrics()
	base.PrimaryAccessType = model.AccessIndexLookup

	withJoins, _ := ConcurrencyRisk(nil, m)
	withoutJoins, _ := ConcurrencyRisk(nil, base)
	if withJoins.DeadlockRisk <= withoutJoins.DeadlockRisk {
		t.Errorf("DeadlockRisk with joins (%v) should exceed without (%v)", withJoins.DeadlockRisk, withoutJoins.DeadlockRisk)
	}
}
