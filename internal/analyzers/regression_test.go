package analyzers

import (
	"context"
	"errors"
	"testing"

	"github.com/nethalo/sqlsentinel/internal/baseline"
	"github.com/nethalo/sqlsentinel/internal/config"
	"github.com/nethalo/sqlsentinel/internal/model"
)

type memStore struct {
	snapshots map[string][]model.BaselineSnapshot
	err       error
}

func (m *memStore) Append(_ context.Context, s model.BaselineSnapshot) error {
	if m.err != nil {
		return m.err
	}
	m.snapshots[s.QueryHash] = append(m.snapshots[s.QueryHash], s)
	return nil
}

func (m *memStore) History(_ context.Context, hash string, limit int) ([]model.BaselineSnapshot, error) {
	if m.err != nil {
		return nil, m.err
	}
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

func TestRegression_DegradingTrendProducesWarning(t *testing.T) {
	store := &memStore{snapshots: map[string][]model.BaselineSnapshot{
		"q1": {
			{QueryHash: "q1", CompositeScore: 90, ExecutionTimeMs: 10, RowsExamined: 100, AccessType: model.AccessIndexLookup},
			{QueryHash: "q1", CompositeScore: 70, ExecutionTimeMs: 100, RowsExamined: 100, AccessType: model.AccessIndexLookup},
		},
	}}
	analyzer := baseline.NewAnalyzer(store, config.Default().Regression)
	current := model.BaselineSnapshot{QueryHash: "q1", CompositeScore: 30, ExecutionTimeMs: 900, RowsExamined: 100, AccessType: model.AccessIndexLookup}

	result, findings, err := Regression(context.Background(), analyzer, current)
	if err != nil {
		t.Fatalf("Regression: %v", err)
	}
	if result.Trend != "degrading" {
		t.Errorf("Trend = %q, want degrading", result.Trend)
	}
	found := false
	for _, f := range findings {
		if f.Title == "Degrading trend" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a degrading-trend finding, got %v", findings)
	}
}

func TestRegression_PropagatesStoreError(t *testing.T) {
	wantErr := errors.New("store unavailable")
	store := &memStore{snapshots: map[string][]model.BaselineSnapshot{}, err: wantErr}
	analyzer := baseline.NewAnalyzer(store, config.Default().Regression)

	_, _, err := Regression(context.Background(), analyzer, model.BaselineSnapshot{QueryHash: "q1"})
	if !errors.Is(err, wantErr) {
		t.Errorf("Regression error = %v, want wrapping %v", err, wantErr)
	}
}
