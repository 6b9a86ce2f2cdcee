package dbdriver

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/nethalo/sqlsentinel/internal/model"
)

// PostgresDriver runs EXPLAIN/EXPLAIN ANALYZE against a *sql.DB opened
// with jackc/pgx's database/sql shim.
type PostgresDriver struct {
	db *sql.DB
}

func NewPostgresDriver(db *sql.DB) *PostgresDriver {
	return &PostgresDriver{db: db}
}

func (d *PostgresDriver) Name() string { return "postgres" }

func (d *PostgresDriver) SupportsAnalyze() bool { return true }

func (d *PostgresDriver) GetCapabilities() Capabilities {
	return Capabilities{
		Histograms:        true,
		ExplainAnalyze:    true,
		JSONExplain:       true,
		CoveringIndexInfo: false,
		ParallelQuery:     true,
	}
}

func (d *PostgresDriver) RunExplain(ctx context.Context, query string) ([]map[string]any, error) {
	rows, err := d.db.QueryContext(ctx, "EXPLAIN "+query)
	if err != nil {
		return nil, fmt.Errorf("EXPLAIN failed: %w", err)
	}
	defer rows.Close()
	return scanRowsToMaps(rows)
}

func (d *PostgresDriver) RunExplainAnalyze(ctx context.Context, query string) (string, error) {
	rows, err := d.db.QueryContext(ctx, "EXPLAIN (ANALYZE, VERBOSE, FORMAT TEXT) "+query)
	if err != nil {
		return "", fmt.Errorf("EXPLAIN ANALYZE failed: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return "", err
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String(), rows.Err()
}

// NormalizeAccessType maps a Postgres plan node's "Node Type" phrase to
// the canonical enum.
func (d *PostgresDriver) NormalizeAccessType(raw string) model.AccessType {
	key := strings.ToLower(raw)
	switch {
	case strings.Contains(key, "result") && !strings.Contains(key, "scan"):
		return model.AccessZeroRowConst
	case strings.Contains(key, "index only scan"):
		return model.AccessCoveringIndexLook
	case strings.Contains(key, "index scan"):
		return model.AccessIndexLookup
	case strings.Contains(key, "bitmap index scan"), strings.Contains(key, "bitmap heap scan"):
		return model.AccessIndexRangeScan
	case strings.Contains(key, "seq scan"):
		return model.AccessTableScan
	default:
		return model.AccessUnknown
	}
}

func (d *PostgresDriver) NormalizeJoinType(raw string) model.JoinType {
	key := strings.ToLower(raw)
	switch {
	case strings.Contains(key, "nested loop"):
		return model.JoinNestedLoop
	case strings.Contains(key, "hash join"):
		return model.JoinHash
	case strings.Contains(key, "merge join"):
		return model.JoinMerge
	default:
		return model.JoinUnknown
	}
}

func (d *PostgresDriver) ListIndexes(ctx context.Context, table string) ([]IndexDef, error) {
	const q = `SELECT indexname, indexdef FROM pg_indexes WHERE tablename = $1`
	rows, err := d.db.QueryContext(ctx, q, table)
	if err != nil {
		return nil, fmt.Errorf("listing indexes on %s: %w", table, err)
	}
	defer rows.Close()

	var out []IndexDef
	for rows.Next() {
		var name, def string
		if err := rows.Scan(&name, &def); err != nil {
			return nil, err
		}
		out = append(out, IndexDef{
			Name:    name,
			Table:   table,
			Columns: parseIndexDefColumns(def),
			Unique:  strings.Contains(strings.ToUpper(def), "UNIQUE"),
		})
	}
	return out, rows.Err()
}

// parseIndexDefColumns extracts the parenthesized column list from a
// `pg_indexes.indexdef` string like `CREATE INDEX idx ON t (a, b)`.
func parseIndexDefColumns(def string) []string {
	open := strings.IndexByte(def, '(')
	close := strings.LastIndexByte(def, ')')
	if open < 0 || close <= open {
		return nil
	}
	parts := strings.Split(def[open+1:close], ",")
	cols := make([]string, 0, len(parts))
	for _, p := range parts {
		cols = append(cols, strings.TrimSpace(p))
	}
	return cols
}

func (d *PostgresDriver) CreateIndex(ctx context.Context, ddl string) error {
	_, err := d.db.ExecContext(ctx, ddl)
	return err
}

func (d *PostgresDriver) DropIndex(ctx context.Context, table, name string) error {
	_, err := d.db.ExecContext(ctx, fmt.Sprintf("DROP INDEX IF EXISTS %q", name))
	return err
}

func (d *PostgresDriver) GetColumnStats(ctx context.Context, table, column string) (ColumnStats, error) {
	const q = `SELECT n_distinct, null_frac FROM pg_stats WHERE tablename = $1 AND attname = $2`
	row := d.db.QueryRowContext(ctx, q, table, column)
	var nDistinct, nullFrac sql.NullFloat64
	if err := row.Scan(&nDistinct, &nullFrac); err != nil {
		return ColumnStats{}, nil
	}
	stats := ColumnStats{HasHistogram: true}
	if nDistinct.Valid {
		v := int64(nDistinct.Float64)
		stats.DistinctCount = &v
	}
	if nullFrac.Valid {
		v := nullFrac.Float64
		stats.NullFraction = &v
	}
	return stats, nil
}
