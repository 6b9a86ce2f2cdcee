package dbdriver

import (
	"context"

	"github.com/nethalo/sqlsentinel/internal/model"
)

// Stub is an in-memory Driver for tests: it returns canned
// responses instead of talking to a real backend, the same role
// go-sqlmock plays for raw database/sql call sites elsewhere in this
// module.
type Stub struct {
	NameValue         string
	ExplainRows       []map[string]any
	ExplainErr        error
	AnalyzeText       string
	AnalyzeErr        error
	Caps              Capabilities
	ColumnStatsByKey  map[string]ColumnStats
	AccessTypeMapping map[string]model.AccessType
	JoinTypeMapping   map[string]model.JoinType
	IndexesByTable    map[string][]IndexDef
	CreateIndexErr    error
	DropIndexErr      error
	CreatedDDL        []string
	DroppedIndexes    []string
}

// NewStub returns a Stub that reports EXPLAIN ANALYZE support and has
// empty access/join type mappings: every raw type normalizes to
// unknown until a test fills AccessTypeMapping/JoinTypeMapping.
func NewStub() *Stub {
	return &Stub{
		NameValue:         "stub",
		Caps:              Capabilities{ExplainAnalyze: true},
		ColumnStatsByKey:  map[string]ColumnStats{},
		AccessTypeMapping: map[string]model.AccessType{},
		JoinTypeMapping:   map[string]model.JoinType{},
	}
}

func (s *Stub) Name() string                   { return s.NameValue }
func (s *Stub) SupportsAnalyze() bool          { return s.Caps.ExplainAnalyze }
func (s *Stub) GetCapabilities() Capabilities  { return s.Caps }

func (s *Stub) RunExplain(ctx context.Context, sql string) ([]map[string]any, error) {
	return s.ExplainRows, s.ExplainErr
}

func (s *Stub) RunExplainAnalyze(ctx context.Context, sql string) (string, error) {
	return s.AnalyzeText, s.AnalyzeErr
}

func (s *Stub) NormalizeAccessType(raw string) model.AccessType {
	if at, ok := s.AccessTypeMapping[raw]; ok {
		return at
	}
	return model.AccessUnknown
}

func (s *Stub) NormalizeJoinType(raw string) model.JoinType {
	if jt, ok := s.JoinTypeMapping[raw]; ok {
		return jt
	}
	return model.JoinUnknown
}

func (s *Stub) GetColumnStats(ctx context.Context, table, column string) (ColumnStats, error) {
	return s.ColumnStatsByKey[table+"."+column], nil
}

func (s *Stub) ListIndexes(ctx context.Context, table string) ([]IndexDef, error) {
	return s.IndexesByTable[table], nil
}

func (s *Stub) CreateIndex(ctx context.Context, ddl string) error {
	s.CreatedDDL = append(s.CreatedDDL, ddl)
	return s.CreateIndexErr
}

func (s *Stub) DropIndex(ctx context.Context, table, name string) error {
	s.DroppedIndexes = append(s.DroppedIndexes, table+"."+name)
	return s.DropIndexErr
}
