package baseline

import (
	"context"
	"testing"

	"github.com/nethalo/sqlsentinel/internal/config"
	"github.com/nethalo/sqlsentinel/internal/model"
)

type memStore struct {
	snapshots map[string][]model.BaselineSnapshot
}

func newMemStore() *memStore { return &memStore{snapshots: map[string][]model.BaselineSnapshot{}} }

func (m *memStore) Append(_ context.Context, s model.BaselineSnapshot) error {
	m.snapshots[s.QueryHash] = append(m.snapshots[s.QueryHash], s)
	return nil
}

func (m *memStore) History(_ context.Context, hash string, limit int) ([]model.BaselineSnapshot, error) {
	all := m.snapshots[hash]
	// Most-recent-first, mirroring FileStore.History's ordering.
	out := make([]model.BaselineSnapshot, len(all))
	for i, s := range all {
		out[len(all)-1-i] = s
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func baseSnapshot(hash string, score, timeMs float64, rows int64, access model.AccessType) model.BaselineSnapshot {
	return model.BaselineSnapshot{
		QueryHash:       hash,
		CompositeScore:  score,
		ExecutionTimeMs: timeMs,
		RowsExamined:    rows,
		AccessType:      access,
	}
}

func TestAnalyze_NoHistoryReturnsStable(t *testing.T) {
	store := newMemStore()
	a := NewAnalyzer(store, config.Default().Regression)
	reg, err := a.Analyze(context.Background(), baseSnapshot("q1", 90, 10, 100, model.AccessIndexLookup))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if reg.Trend != "stable" {
		t.Errorf("Trend = %q, want stable", reg.Trend)
	}
	if len(reg.Regressions) != 0 {
		t.Errorf("expected no regressions with no history, got %v", reg.Regressions)
	}
}

func TestAnalyze_AlwaysAppendsCurrentSnapshot(t *testing.T) {
	store := newMemStore()
	a := NewAnalyzer(store, config.Default().Regression)
	_, err := a.Analyze(context.Background(), baseSnapshot("q1", 90, 10, 100, model.AccessIndexLookup))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(store.snapshots["q1"]) != 1 {
		t.Fatalf("expected the current snapshot to be appended, got %d entries", len(store.snapshots["q1"]))
	}
}

func TestAnalyze_DetectsTimeRegression(t *testing.T) {
	store := newMemStore()
	for i := 0; i < 3; i++ {
		store.snapshots["q1"] = append(store.snapshots["q1"], baseSnapshot("q1", 90, 100, 1000, model.AccessIndexLookup))
	}
	a := NewAnalyzer(store, config.Default().Regression)
	reg, err := a.Analyze(context.Background(), baseSnapshot("q1", 90, 500, 1000, model.AccessIndexLookup))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	found := false
	for _, r := range reg.Regressions {
		if r.Metric == "execution_time_ms" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an execution_time_ms regression, got %+v", reg.Regressions)
	}
}

func TestAnalyze_SmallAbsoluteDeltaIsNoise(t *testing.T) {
	store := newMemStore()
	for i := 0; i < 3; i++ {
		store.snapshots["q1"] = append(store.snapshots["q1"], baseSnapshot("q1", 90, 100, 1000, model.AccessIndexLookup))
	}
	a := NewAnalyzer(store, config.Default().Regression)
	// +1ms delta: below the 3ms noise floor regardless of percentage.
	reg, err := a.Analyze(context.Background(), baseSnapshot("q1", 90, 101, 1000, model.AccessIndexLookup))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	for _, r := range reg.Regressions {
		if r.Metric == "execution_time_ms" {
			t.Errorf("did not expect a time regression for a 1ms delta, got %+v", r)
		}
	}
}

func TestAnalyze_RowGrowthWithLowPerRowDegradationIsDataGrowth(t *testing.T) {
	store := newMemStore()
	for i := 0; i < 3; i++ {
		store.snapshots["q1"] = append(store.snapshots["q1"], baseSnapshot("q1", 90, 100, 1000, model.AccessIndexLookup))
	}
	a := NewAnalyzer(store, config.Default().Regression)
	// Rows roughly double (>20%), execution time grows proportionally
	// so per-row cost barely changes (<25% degradation).
	reg, err := a.Analyze(context.Background(), baseSnapshot("q1", 90, 210, 2100, model.AccessIndexLookup))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(reg.DataGrowth) == 0 {
		t.Errorf("expected a data_growth classification, got regressions=%v dataGrowth=%v", reg.Regressions, reg.DataGrowth)
	}
	for _, r := range reg.Regressions {
		if r.Metric == "rows_examined" || r.Metric == "execution_time_ms" {
			t.Errorf("did not expect a regression entry for %s under data growth, got %+v", r.Metric, r)
		}
	}
}

func TestAnalyze_AccessTypeDowngradeIsRegression(t *testing.T) {
	store := newMemStore()
	store.snapshots["q1"] = append(store.snapshots["q1"], baseSnapshot("q1", 90, 10, 100, model.AccessIndexLookup))
	a := NewAnalyzer(store, config.Default().Regression)
	reg, err := a.Analyze(context.Background(), baseSnapshot("q1", 90, 10, 100, model.AccessTableScan))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	found := false
	for _, r := range reg.Regressions {
		if r.Metric == "access_type" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an access_type regression on downgrade, got %+v", reg.Regressions)
	}
}

func TestAnalyze_AccessTypeUpgradeIsImprovement(t *testing.T) {
	store := newMemStore()
	store.snapshots["q1"] = append(store.snapshots["q1"], baseSnapshot("q1", 90, 10, 100, model.AccessTableScan))
	a := NewAnalyzer(store, config.Default().Regression)
	reg, err := a.Analyze(context.Background(), baseSnapshot("q1", 90, 10, 100, model.AccessIndexLookup))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	found := false
	for _, r := range reg.Improvements {
		if r.Metric == "access_type" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an access_type improvement on upgrade, got %+v", reg.Improvements)
	}
}

func TestClassifyTrend_MonotoneDecreaseIsDegrading(t *testing.T) {
	history := []model.BaselineSnapshot{
		{CompositeScore: 70}, // most recent prior
		{CompositeScore: 80}, // one before that
	}
	current := model.BaselineSnapshot{CompositeScore: 60}
	if got := classifyTrend(history, current); got != "degrading" {
		t.Errorf("trend = %q, want degrading", got)
	}
}

func TestClassifyTrend_MonotoneIncreaseIsImproving(t *testing.T) {
	history := []model.BaselineSnapshot{
		{CompositeScore: 80},
		{CompositeScore: 70},
	}
	current := model.BaselineSnapshot{CompositeScore: 90}
	if got := classifyTrend(history, current); got != "improving" {
		t.Errorf("trend = %q, want improving", got)
	}
}

func TestCacheStateMismatch_SkipsColdToWarmTransition(t *testing.T) {
	history := []model.BaselineSnapshot{
		{IsColdCache: true}, {IsColdCache: true}, {IsColdCache: true},
	}
	current := model.BaselineSnapshot{IsColdCache: false}
	if !cacheStateMismatch(history, current) {
		t.Error("expected a cache-state mismatch when history is cold and current is warm")
	}
}

func TestSameIndexSet(t *testing.T) {
	if !sameIndexSet([]string{"idx_a", "idx_b"}, []string{"idx_b", "idx_a"}) {
		t.Error("expected order-independent index sets to be equal")
	}
	if sameIndexSet([]string{"idx_a"}, []string{"idx_a", "idx_b"}) {
		t.Error("expected index sets of different sizes to differ")
	}
}
