package dbdriver

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/nethalo/sqlsentinel/internal/model"
)

// SQLiteDriver runs EXPLAIN QUERY PLAN against a *sql.DB opened with
// modernc.org/sqlite. SQLite has no EXPLAIN ANALYZE with per-node
// timing, so this driver is used in the pipeline's permissive mode:
// structural findings (anti-patterns, index synthesis hints) still run,
// execution-timing-dependent analyzers degrade gracefully on missing
// actual_rows/actual_time.
type SQLiteDriver struct {
	db *sql.DB
}

func NewSQLiteDriver(db *sql.DB) *SQLiteDriver {
	return &SQLiteDriver{db: db}
}

func (d *SQLiteDriver) Name() string { return "sqlite" }

func (d *SQLiteDriver) SupportsAnalyze() bool { return false }

func (d *SQLiteDriver) GetCapabilities() Capabilities {
	return Capabilities{
		Histograms:        false,
		ExplainAnalyze:    false,
		JSONExplain:       false,
		CoveringIndexInfo: false,
		ParallelQuery:     false,
	}
}

func (d *SQLiteDriver) RunExplain(ctx context.Context, query string) ([]map[string]any, error) {
	rows, err := d.db.QueryContext(ctx, "EXPLAIN QUERY PLAN "+query)
	if err != nil {
		return nil, fmt.Errorf("EXPLAIN QUERY PLAN failed: %w", err)
	}
	defer rows.Close()
	return scanRowsToMaps(rows)
}

// RunExplainAnalyze synthesizes a single-node plan from EXPLAIN QUERY
// PLAN's flat detail text, since SQLite has no tree-shaped ANALYZE
// output with timing. The permissive pipeline mode treats this as a
// best-effort plan with estimated_rows/actual_rows left blank.
func (d *SQLiteDriver) RunExplainAnalyze(ctx context.Context, query string) (string, error) {
	rows, err := d.RunExplain(ctx, query)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, row := range rows {
		detail, _ := row["detail"].(string)
		if detail == "" {
			detail, _ = row["DETAIL"].(string)
		}
		b.WriteString("-> ")
		b.WriteString(detail)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func (d *SQLiteDriver) NormalizeAccessType(raw string) model.AccessType {
	key := strings.ToLower(raw)
	switch {
	case strings.Contains(key, "covering index"):
		return model.AccessCoveringIndexLook
	case strings.Contains(key, "using index"):
		return model.AccessIndexLookup
	case strings.Contains(key, "using integer primary key"):
		return model.AccessSingleRowLookup
	case strings.Contains(key, "scan"):
		return model.AccessTableScan
	default:
		return model.AccessUnknown
	}
}

func (d *SQLiteDriver) NormalizeJoinType(raw string) model.JoinType {
	if strings.Contains(strings.ToLower(raw), "nested loop") {
		return model.JoinNestedLoop
	}
	return model.JoinUnknown
}

func (d *SQLiteDriver) ListIndexes(ctx context.Context, table string) ([]IndexDef, error) {
	rows, err := d.db.QueryContext(ctx, fmt.Sprintf(`PRAGMA index_list("%s")`, table))
	if err != nil {
		return nil, fmt.Errorf("listing indexes on %s: %w", table, err)
	}
	defer rows.Close()

	var names []string
	var uniqueByName = map[string]bool{}
	for rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			return nil, err
		}
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		var name string
		var unique bool
		for i, c := range cols {
			switch strings.ToLower(c) {
			case "name":
				if b, ok := raw[i].([]byte); ok {
					name = string(b)
				} else if s, ok := raw[i].(string); ok {
					name = s
				}
			case "unique":
				switch v := raw[i].(type) {
				case int64:
					unique = v != 0
				case bool:
					unique = v
				}
			}
		}
		if name != "" {
			names = append(names, name)
			uniqueByName[name] = unique
		}
	}
	rows.Close()

	out := make([]IndexDef, 0, len(names))
	for _, name := range names {
		infoRows, err := d.db.QueryContext(ctx, fmt.Sprintf(`PRAGMA index_info("%s")`, name))
		if err != nil {
			continue
		}
		var cols []string
		for infoRows.Next() {
			var seqno, cid int
			var colName sql.NullString
			if err := infoRows.Scan(&seqno, &cid, &colName); err == nil && colName.Valid {
				cols = append(cols, colName.String)
			}
		}
		infoRows.Close()
		out = append(out, IndexDef{Name: name, Table: table, Columns: cols, Unique: uniqueByName[name]})
	}
	return out, nil
}

func (d *SQLiteDriver) CreateIndex(ctx context.Context, ddl string) error {
	_, err := d.db.ExecContext(ctx, ddl)
	return err
}

func (d *SQLiteDriver) DropIndex(ctx context.Context, table, name string) error {
	_, err := d.db.ExecContext(ctx, fmt.Sprintf(`DROP INDEX IF EXISTS "%s"`, name))
	return err
}

func (d *SQLiteDriver) GetColumnStats(ctx context.Context, table, column string) (ColumnStats, error) {
	q := fmt.Sprintf(`SELECT COUNT(DISTINCT "%s") FROM "%s"`, column, table)
	row := d.db.QueryRowContext(ctx, q)
	var distinct sql.NullInt64
	if err := row.Scan(&distinct); err != nil {
		return ColumnStats{}, nil
	}
	stats := ColumnStats{}
	if distinct.Valid {
		v := distinct.Int64
		stats.DistinctCount = &v
	}
	return stats, nil
}
