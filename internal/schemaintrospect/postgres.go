package schemaintrospect

import (
	"context"
	"database/sql"
)

// Postgres introspects a schema through information_schema, scoped to
// the "public" search-path schema unless told otherwise.
type Postgres struct {
	db     *sql.DB
	schema string
}

func NewPostgres(db *sql.DB, schema string) *Postgres {
	if schema == "" {
		schema = "public"
	}
	return &Postgres{db: db, schema: schema}
}

func (p *Postgres) TableExists(ctx context.Context, table string) (bool, error) {
	const q = `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = $1 AND table_name = $2`
	var count int
	if err := p.db.QueryRowContext(ctx, q, p.schema, table).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (p *Postgres) ColumnExists(ctx context.Context, table, column string) (bool, error) {
	const q = `SELECT COUNT(*) FROM information_schema.columns WHERE table_schema = $1 AND table_name = $2 AND column_name = $3`
	var count int
	if err := p.db.QueryRowContext(ctx, q, p.schema, table, column).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (p *Postgres) ListTables(ctx context.Context) ([]string, error) {
	const q = `SELECT table_name FROM information_schema.tables WHERE table_schema = $1`
	rows, err := p.db.QueryContext(ctx, q, p.schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStrings(rows)
}

func (p *Postgres) ListColumns(ctx context.Context, table string) ([]string, error) {
	const q = `SELECT column_name FROM information_schema.columns WHERE table_schema = $1 AND table_name = $2`
	rows, err := p.db.QueryContext(ctx, q, p.schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStrings(rows)
}
