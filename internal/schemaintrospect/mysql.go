package schemaintrospect

import (
	"context"
	"database/sql"
)

// MySQL introspects a schema through information_schema.
type MySQL struct {
	db       *sql.DB
	database string
}

func NewMySQL(db *sql.DB, database string) *MySQL {
	return &MySQL{db: db, database: database}
}

func (m *MySQL) TableExists(ctx context.Context, table string) (bool, error) {
	const q = `SELECT COUNT(*) FROM information_schema.TABLES WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?`
	var count int
	if err := m.db.QueryRowContext(ctx, q, m.database, table).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (m *MySQL) ColumnExists(ctx context.Context, table, column string) (bool, error) {
	const q = `SELECT COUNT(*) FROM information_schema.COLUMNS WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ? AND COLUMN_NAME = ?`
	var count int
	if err := m.db.QueryRowContext(ctx, q, m.database, table, column).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (m *MySQL) ListTables(ctx context.Context) ([]string, error) {
	const q = `SELECT TABLE_NAME FROM information_schema.TABLES WHERE TABLE_SCHEMA = ?`
	rows, err := m.db.QueryContext(ctx, q, m.database)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStrings(rows)
}

func (m *MySQL) ListColumns(ctx context.Context, table string) ([]string, error) {
	const q = `SELECT COLUMN_NAME FROM information_schema.COLUMNS WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?`
	rows, err := m.db.QueryContext(ctx, q, m.database, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStrings(rows)
}

func scanStrings(rows *sql.Rows) ([]string, error) {
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
