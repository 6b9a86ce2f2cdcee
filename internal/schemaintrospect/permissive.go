package schemaintrospect

import "context"

// Permissive is the no-op introspector used in "permissive" mode:
// SQLite connections and tests. Every table and column is reported as
// existing, so the ValidationPipeline's schema/column/join stages
// short-circuit without a real catalog to query.
type Permissive struct{}

func NewPermissive() Permissive { return Permissive{} }

func (Permissive) TableExists(ctx context.Context, table string) (bool, error)         { return true, nil }
func (Permissive) ColumnExists(ctx context.Context, table, column string) (bool, error) { return true, nil }
func (Permissive) ListTables(ctx context.Context) ([]string, error)                     { return nil, nil }
func (Permissive) ListColumns(ctx context.Context, table string) ([]string, error)      { return nil, nil }
