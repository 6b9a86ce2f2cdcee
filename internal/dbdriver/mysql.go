package dbdriver

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/nethalo/sqlsentinel/internal/model"
)

// MySQLDriver runs EXPLAIN/EXPLAIN ANALYZE against a *sql.DB opened with
// go-sql-driver/mysql. Connection setup (DSN, TLS, password prompting)
// stays in cmd/, which owns *sql.DB lifetime; MySQLDriver only runs
// read-only diagnostic statements against it.
type MySQLDriver struct {
	db *sql.DB
}

// NewMySQLDriver wraps an already-open connection.
func NewMySQLDriver(db *sql.DB) *MySQLDriver {
	return &MySQLDriver{db: db}
}

func (d *MySQLDriver) Name() string { return "mysql" }

func (d *MySQLDriver) SupportsAnalyze() bool { return true }

func (d *MySQLDriver) GetCapabilities() Capabilities {
	return Capabilities{
		Histograms:        true,
		ExplainAnalyze:    true,
		JSONExplain:       true,
		CoveringIndexInfo: true,
		ParallelQuery:     false,
	}
}

func (d *MySQLDriver) RunExplain(ctx context.Context, query string) ([]map[string]any, error) {
	rows, err := d.db.QueryContext(ctx, "EXPLAIN "+query)
	if err != nil {
		return nil, fmt.Errorf("EXPLAIN failed: %w", err)
	}
	defer rows.Close()
	return scanRowsToMaps(rows)
}

func (d *MySQLDriver) RunExplainAnalyze(ctx context.Context, query string) (string, error) {
	rows, err := d.db.QueryContext(ctx, "EXPLAIN ANALYZE "+query)
	if err != nil {
		return "", fmt.Errorf("EXPLAIN ANALYZE failed: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return "", fmt.Errorf("scanning EXPLAIN ANALYZE output: %w", err)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	return b.String(), nil
}

// mysqlAccessTypeMap maps MySQL's own "type" column values, listed
// cheapest first, matching the EXPLAIN documentation's ordering.
var mysqlAccessTypeMap = map[string]model.AccessType{
	"system":          model.AccessZeroRowConst,
	"const":           model.AccessConstRow,
	"eq_ref":          model.AccessSingleRowLookup,
	"ref":             model.AccessIndexLookup,
	"fulltext":        model.AccessFulltextIndex,
	"ref_or_null":     model.AccessIndexLookup,
	"index_merge":     model.AccessIndexRangeScan,
	"unique_subquery": model.AccessSingleRowLookup,
	"index_subquery":  model.AccessIndexLookup,
	"range":           model.AccessIndexRangeScan,
	"index":           model.AccessIndexScan,
	"all":             model.AccessTableScan,
}

// NormalizeAccessType maps MySQL's lowercase `type` column value (or the
// verb in an EXPLAIN ANALYZE operation string) to the canonical enum.
func (d *MySQLDriver) NormalizeAccessType(raw string) model.AccessType {
	key := strings.ToLower(strings.TrimSpace(raw))
	if at, ok := mysqlAccessTypeMap[key]; ok {
		return at
	}
	switch {
	case strings.Contains(key, "covering index"):
		return model.AccessCoveringIndexLook
	case strings.Contains(key, "single-row index lookup"), strings.Contains(key, "single-row"):
		return model.AccessSingleRowLookup
	case strings.Contains(key, "index range scan"), strings.Contains(key, "range scan"), strings.Contains(key, "index range"):
		return model.AccessIndexRangeScan
	case strings.Contains(key, "index lookup"):
		return model.AccessIndexLookup
	case strings.Contains(key, "full text"), strings.Contains(key, "fulltext"):
		return model.AccessFulltextIndex
	case strings.Contains(key, "index scan"):
		return model.AccessIndexScan
	case strings.Contains(key, "table scan"):
		return model.AccessTableScan
	case strings.Contains(key, "const"):
		return model.AccessConstRow
	}
	return model.AccessUnknown
}

// NormalizeJoinType maps MySQL's operation-string join phrasing
// ("Nested loop", "Hash join") to the canonical enum.
func (d *MySQLDriver) NormalizeJoinType(raw string) model.JoinType {
	key := strings.ToLower(raw)
	switch {
	case strings.Contains(key, "nested loop"):
		return model.JoinNestedLoop
	case strings.Contains(key, "hash join"):
		return model.JoinHash
	case strings.Contains(key, "merge"):
		return model.JoinMerge
	default:
		return model.JoinUnknown
	}
}

func (d *MySQLDriver) GetColumnStats(ctx context.Context, table, column string) (ColumnStats, error) {
	const q = `
SELECT COUNT(DISTINCT ` + "`" + `%s` + "`" + `), SUM(` + "`" + `%s` + "`" + ` IS NULL) / COUNT(*)
FROM ` + "`" + `%s` + "`"

	row := d.db.QueryRowContext(ctx, fmt.Sprintf(q, column, column, table))
	var distinct sql.NullInt64
	var nullFraction sql.NullFloat64
	if err := row.Scan(&distinct, &nullFraction); err != nil {
		return ColumnStats{}, nil
	}
	stats := ColumnStats{HasHistogram: false}
	if distinct.Valid {
		v := distinct.Int64
		stats.DistinctCount = &v
	}
	if nullFraction.Valid {
		v := nullFraction.Float64
		stats.NullFraction = &v
	}
	return stats, nil
}

func (d *MySQLDriver) ListIndexes(ctx context.Context, table string) ([]IndexDef, error) {
	const q = `
SELECT INDEX_NAME, COLUMN_NAME, NON_UNIQUE
FROM information_schema.STATISTICS
WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
ORDER BY INDEX_NAME, SEQ_IN_INDEX`
	rows, err := d.db.QueryContext(ctx, q, table)
	if err != nil {
		return nil, fmt.Errorf("listing indexes on %s: %w", table, err)
	}
	defer rows.Close()

	order := make([]string, 0, 4)
	byName := make(map[string]*IndexDef)
	for rows.Next() {
		var name, column string
		var nonUnique int
		if err := rows.Scan(&name, &column, &nonUnique); err != nil {
			return nil, err
		}
		def, ok := byName[name]
		if !ok {
			def = &IndexDef{Name: name, Table: table, Unique: nonUnique == 0}
			byName[name] = def
			order = append(order, name)
		}
		def.Columns = append(def.Columns, column)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make([]IndexDef, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out, nil
}

func (d *MySQLDriver) CreateIndex(ctx context.Context, ddl string) error {
	_, err := d.db.ExecContext(ctx, ddl)
	return err
}

func (d *MySQLDriver) DropIndex(ctx context.Context, table, name string) error {
	stmt := fmt.Sprintf("DROP INDEX `%s` ON `%s`", name, table)
	_, err := d.db.ExecContext(ctx, stmt)
	return err
}

func scanRowsToMaps(rows *sql.Rows) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []map[string]any
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		m := make(map[string]any, len(cols))
		for i, c := range cols {
			if b, ok := raw[i].([]byte); ok {
				m[c] = string(b)
			} else {
				m[c] = raw[i]
			}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
