// Package dbdriver defines the Driver port the diagnostic pipeline runs
// EXPLAIN/EXPLAIN ANALYZE through, plus a guard that reclassifies any
// driver failure into a single EngineAbort the pipeline can branch on,
// and concrete drivers for MySQL, PostgreSQL, and SQLite (permissive
// mode).
package dbdriver

import (
	"context"
	"fmt"

	"github.com/nethalo/sqlsentinel/internal/model"
)

// ColumnStats is the driver's answer to get_column_stats: per-column
// cardinality information used by the index-cardinality analyzer.
type ColumnStats struct {
	HasHistogram  bool
	DistinctCount *int64
	NullFraction  *float64
	AvgWidth      *float64
}

// Capabilities describes what a driver can do, so the pipeline can skip
// phases a given backend doesn't support instead of failing.
type Capabilities struct {
	Histograms        bool
	ExplainAnalyze    bool
	JSONExplain       bool
	CoveringIndexInfo bool
	ParallelQuery     bool
}

// IndexDef is one existing index on a table, column-ordered, as
// reported by the backend's catalog. The index-synthesis analyzer uses
// this to detect prefix overlap with a candidate recommendation; the
// hypothetical-index analyzer uses CreateIndex/DropIndex to simulate a
// candidate and guarantee its removal.
type IndexDef struct {
	Name    string
	Table   string
	Columns []string
	Unique  bool
}

// Driver is the port every backend implements. The pipeline never talks
// to database/sql directly; every call site should go through this
// interface so tests can swap in a stub.
type Driver interface {
	Name() string
	SupportsAnalyze() bool
	GetCapabilities() Capabilities

	// RunExplain returns EXPLAIN's tabular rows, each a column-name to
	// value map, in statement order.
	RunExplain(ctx context.Context, sql string) ([]map[string]any, error)

	// RunExplainAnalyze returns the raw multiline, tree-shaped
	// EXPLAIN ANALYZE text.
	RunExplainAnalyze(ctx context.Context, sql string) (string, error)

	NormalizeAccessType(raw string) model.AccessType
	NormalizeJoinType(raw string) model.JoinType

	GetColumnStats(ctx context.Context, table, column string) (ColumnStats, error)

	// ListIndexes returns table's existing indexes, columns in
	// definition order.
	ListIndexes(ctx context.Context, table string) ([]IndexDef, error)

	// CreateIndex and DropIndex back the hypothetical-index analyzer's
	// scoped create/measure/drop simulation. Both are no-ops returning
	// an error on backends that don't support opt-in DDL simulation.
	CreateIndex(ctx context.Context, ddl string) error
	DropIndex(ctx context.Context, table, name string) error
}

// EngineAbort is the single failure mode the pipeline sees from the
// driver boundary, regardless of which backend or which operation
// produced it.
type EngineAbort struct {
	Op  string
	Err error
}

func (e *EngineAbort) Error() string {
	return fmt.Sprintf("engine abort during %s: %v", e.Op, e.Err)
}

func (e *EngineAbort) Unwrap() error { return e.Err }

// Guard wraps a Driver so that any error from RunExplain or
// RunExplainAnalyze — and any diagnostic-only text that looks like a
// planner failure rather than a plan — is reclassified as *EngineAbort.
// The pipeline never scores a query whose plan failed to produce.
type Guard struct {
	Driver
}

// NewGuard wraps d so every explain call funnels failures through
// *EngineAbort.
func NewGuard(d Driver) Guard {
	return Guard{Driver: d}
}

func (g Guard) RunExplain(ctx context.Context, sql string) ([]map[string]any, error) {
	rows, err := g.Driver.RunExplain(ctx, sql)
	if err != nil {
		return nil, &EngineAbort{Op: "run_explain", Err: err}
	}
	return rows, nil
}

func (g Guard) RunExplainAnalyze(ctx context.Context, sql string) (string, error) {
	text, err := g.Driver.RunExplainAnalyze(ctx, sql)
	if err != nil {
		return "", &EngineAbort{Op: "run_explain_analyze", Err: err}
	}
	if looksLikePlannerFailure(text) {
		return "", &EngineAbort{Op: "run_explain_analyze", Err: fmt.Errorf("driver returned a diagnostic instead of a plan: %q", text)}
	}
	return text, nil
}

func looksLikePlannerFailure(text string) bool {
	return text == "" || text == "ERROR" || len(text) < 2
}
