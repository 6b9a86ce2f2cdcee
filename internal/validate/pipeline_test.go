package validate

import (
	"context"
	"errors"
	"testing"

	"github.com/nethalo/sqlsentinel/internal/dbdriver"
	"github.com/nethalo/sqlsentinel/internal/sqlshape"
)

type fakeIntrospector struct {
	tables  map[string]bool
	columns map[string]map[string]bool
}

func (f fakeIntrospector) TableExists(ctx context.Context, table string) (bool, error) {
	return f.tables[table], nil
}

func (f fakeIntrospector) ColumnExists(ctx context.Context, table, column string) (bool, error) {
	return f.columns[table][column], nil
}

func (f fakeIntrospector) ListTables(ctx context.Context) ([]string, error) {
	var out []string
	for t := range f.tables {
		out = append(out, t)
	}
	return out, nil
}

func (f fakeIntrospector) ListColumns(ctx context.Context, table string) ([]string, error) {
	var out []string
	for c := range f.columns[table] {
		out = append(out, c)
	}
	return out, nil
}

func TestPipeline_Run_Success(t *testing.T) {
	intro := fakeIntrospector{
		tables: map[string]bool{"orders": true},
		columns: map[string]map[string]bool{
			"orders": {"status": true},
		},
	}
	driver := dbdriver.NewStub()
	p := NewPipeline(intro, driver, false)

	shape := sqlshape.Parse("SELECT * FROM orders WHERE status = 'open'")
	if err := p.Run(context.Background(), shape, "SELECT * FROM orders WHERE status = 'open'"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPipeline_Run_UnknownTable(t *testing.T) {
	intro := fakeIntrospector{tables: map[string]bool{"orders": true}}
	driver := dbdriver.NewStub()
	p := NewPipeline(intro, driver, false)

	shape := sqlshape.Parse("SELECT * FROM ordrs")
	err := p.Run(context.Background(), shape, "SELECT * FROM ordrs")
	var unk *UnknownTable
	if !errors.As(err, &unk) {
		t.Fatalf("expected *UnknownTable, got %T: %v", err, err)
	}
}

func TestPipeline_Run_UnknownColumn(t *testing.T) {
	intro := fakeIntrospector{
		tables:  map[string]bool{"orders": true},
		columns: map[string]map[string]bool{"orders": {"status": true}},
	}
	driver := dbdriver.NewStub()
	p := NewPipeline(intro, driver, false)

	shape := sqlshape.Parse("SELECT * FROM orders WHERE orders.statuz = 'open'")
	err := p.Run(context.Background(), shape, "SELECT * FROM orders WHERE orders.statuz = 'open'")
	var unk *UnknownColumn
	if !errors.As(err, &unk) {
		t.Fatalf("expected *UnknownColumn, got %T: %v", err, err)
	}
}

func TestPipeline_Run_ExplainUnsupported(t *testing.T) {
	intro := fakeIntrospector{tables: map[string]bool{"orders": true}}
	driver := dbdriver.NewStub()
	driver.ExplainErr = errors.New("syntax error")
	p := NewPipeline(intro, driver, false)

	shape := sqlshape.Parse("SELECT * FROM orders")
	err := p.Run(context.Background(), shape, "SELECT * FROM orders")
	var eu *ExplainUnsupported
	if !errors.As(err, &eu) {
		t.Fatalf("expected *ExplainUnsupported, got %T: %v", err, err)
	}
}

func TestPipeline_Run_PermissiveModeSkipsSchemaChecks(t *testing.T) {
	intro := fakeIntrospector{} // empty: would fail schema stage if consulted
	driver := dbdriver.NewStub()
	p := NewPipeline(intro, driver, true)

	shape := sqlshape.Parse("SELECT * FROM anything WHERE nonexistent_col = 1")
	if err := p.Run(context.Background(), shape, "SELECT * FROM anything WHERE nonexistent_col = 1"); err != nil {
		t.Fatalf("permissive mode should skip schema/column checks: %v", err)
	}
}
