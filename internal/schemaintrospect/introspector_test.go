package schemaintrospect

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestMySQL_TableExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM information_schema.TABLES").
		WithArgs("shop", "orders").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	m := NewMySQL(db, "shop")
	ok, err := m.TableExists(context.Background(), "orders")
	if err != nil {
		t.Fatalf("TableExists: %v", err)
	}
	if !ok {
		t.Error("expected table to exist")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestMySQL_TableExists_Missing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM information_schema.TABLES").
		WithArgs("shop", "ordrs").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	m := NewMySQL(db, "shop")
	ok, err := m.TableExists(context.Background(), "ordrs")
	if err != nil {
		t.Fatalf("TableExists: %v", err)
	}
	if ok {
		t.Error("expected table to not exist")
	}
}

func TestPermissive_AlwaysExists(t *testing.T) {
	p := NewPermissive()
	ok, err := p.TableExists(context.Background(), "anything")
	if err != nil || !ok {
		t.Errorf("Permissive.TableExists = %v, %v; want true, nil", ok, err)
	}
	ok, err = p.ColumnExists(context.Background(), "anything", "col")
	if err != nil || !ok {
		t.Errorf("Permissive.ColumnExists = %v, %v; want true, nil", ok, err)
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"orders", "orders", 0},
		{"orders", "ordrs", 1},
		{"orders", "order", 1},
		{"orders", "orderz", 1},
		{"users", "customers", 4},
		{"", "abc", 3},
	}
	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

type fakeIntrospector struct {
	tables  []string
	columns map[string][]string
}

func (f fakeIntrospector) TableExists(ctx context.Context, table string) (bool, error) {
	for _, t := range f.tables {
		if t == table {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeIntrospector) ColumnExists(ctx context.Context, table, column string) (bool, error) {
	for _, c := range f.columns[table] {
		if c == column {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeIntrospector) ListTables(ctx context.Context) ([]string, error) { return f.tables, nil }

func (f fakeIntrospector) ListColumns(ctx context.Context, table string) ([]string, error) {
	return f.columns[table], nil
}

func TestSuggestTable(t *testing.T) {
	intro := fakeIntrospector{tables: []string{"orders", "order_items", "customers"}}
	suggestions, err := SuggestTable(context.Background(), intro, "ordrs")
	if err != nil {
		t.Fatalf("SuggestTable: %v", err)
	}
	if len(suggestions) != 1 || suggestions[0] != "orders" {
		t.Errorf("suggestions = %v, want [orders]", suggestions)
	}
}

func TestSuggestColumn(t *testing.T) {
	intro := fakeIntrospector{columns: map[string][]string{"orders": {"id", "status", "created_at"}}}
	suggestions, err := SuggestColumn(context.Background(), intro, "orders", "statuz")
	if err != nil {
		t.Fatalf("SuggestColumn: %v", err)
	}
	if len(suggestions) != 1 || suggestions[0] != "status" {
		t.Errorf("suggestions = %v, want [status]", suggestions)
	}
}
