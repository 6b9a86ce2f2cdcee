package analyzers

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/nethalo/sqlsentinel/internal/config"
	"github.com/nethalo/sqlsentinel/internal/dbdriver"
	"github.com/nethalo/sqlsentinel/internal/model"
	"github.com/nethalo/sqlsentinel/internal/sqlshape"
)

// indexIdentifier mirrors sqlshape's column-identifier pattern, used
// here to spot the operator sitting next to a column so the ERS column
// order (equality, then join, then range) can be derived without a
// second full parse.
const indexIdentifier = `[a-zA-Z_][a-zA-Z0-9_$]*`

var (
	reRangeOperator   = regexp.MustCompile(`(?i)(` + indexIdentifier + `(?:\.` + indexIdentifier + `)?)\s*(?:>=|<=|<>|!=|>|<)`)
	reBetweenOperator = regexp.MustCompile(`(?i)\b(` + indexIdentifier + `(?:\.` + indexIdentifier + `)?)\s+BETWEEN\b`)
)

// IndexSynthesis proposes covering/composite indexes for every table
// the shape parser found WHERE columns on, built from those columns,
// and assesses every existing index on the tables the plan accessed as
// optimal/suboptimal/redundant/unused against the cardinality-drift
// classification. Recommendations are capped at cfg.MaxRecommendations
// and cfg.MaxColumnsPerIndex; tables are visited in map order, so which
// tables make the cut when more qualify than the cap is not defined.
//
// An already-optimal access type (const/eq_ref-class lookups) or an
// intentional full scan short-circuits the whole analyzer: no index
// change can improve on either, so there is nothing to synthesize.
func IndexSynthesis(ctx context.Context, driver dbdriver.Driver, shape *sqlshape.Shape, sql string, m *model.Metrics, drift *model.CardinalityDrift, cfg config.IndexSynthesisThresholds) (model.IndexSynthesis, []model.Finding) {
	var result model.IndexSynthesis
	var findings []model.Finding
	if shape == nil || m == nil {
		return result, findings
	}
	if m.PrimaryAccessType.IsOptimal() || m.IsIntentionalScan {
		return result, findings
	}

	existingByTable := map[string][]dbdriver.IndexDef{}
	for table := range m.TablesAccessed {
		defs, err := driver.ListIndexes(ctx, table)
		if err != nil {
			continue
		}
		existingByTable[table] = defs
	}

	colsByTable := map[string][]string{}
	for _, c := range shape.WhereColumns {
		table := c.Table
		if table == "" && len(shape.Tables) == 1 {
			table = shape.Tables[0].Name
		}
		if table == "" {
			continue
		}
		colsByTable[table] = appendUnique(colsByTable[table], c.Column)
	}

	for table, whereCols := range colsByTable {
		if len(result.Recommendations) >= cfg.MaxRecommendations {
			break
		}

		cols, covering := buildColumnPlan(sql, shape, table, whereCols, cfg.MaxColumnsPerIndex)
		existing := existingByTable[table]
		coverage := coverageAgainst(existing, cols)

		driftCritical := drift != nil && drift.PerTable[table].Classification == "critical"
		improvement := classifyImprovement(coverage, driftCritical, m.RowsExamined)

		indexName := buildIndexName(table, cols, covering)
		ddl := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", indexName, table, strings.Join(cols, ", "))

		result.Recommendations = append(result.Recommendations, model.IndexRecommendation{
			Table:       table,
			Columns:     cols,
			DDL:         ddl,
			Improvement: improvement,
			Covering:    covering,
		})
		findings = append(findings, model.NewFinding(model.SeverityOptimization, model.CategoryIndexSynthesis,
			"Candidate index for "+table,
			fmt.Sprintf("No usable index covers the predicate on %s(%s), forcing a table scan.", table, strings.Join(cols, ", "))).
			WithRecommendation(ddl).
			WithMeta("table", table).
			WithMeta("columns", cols).
			WithMeta("improvement", improvement))
	}

	for table, defs := range existingByTable {
		assessments := assessExistingIndexes(defs, m, drift, table)
		for _, a := range assessments {
			result.ExistingAssessments = append(result.ExistingAssessments, a)
			switch a.Assessment {
			case "unused":
				findings = append(findings, model.NewFinding(model.SeverityInfo, model.CategoryIndexSynthesis,
					"Unused index",
					"Index "+a.Index+" on "+a.Table+" was not used by this query's plan.").
					WithRecommendation("If no query uses this index, dropping it removes write-path overhead for no read-path cost."))
			case "redundant":
				findings = append(findings, model.NewFinding(model.SeverityInfo, model.CategoryIndexSynthesis,
					"Redundant index",
					"Index "+a.Index+" on "+a.Table+" is a column prefix of another index on the same table, so it adds write overhead without serving any lookup the other index can't."))
			}
		}
	}

	return result, findings
}

// buildColumnPlan orders whereCols by the ERS convention (equality
// predicates first, then join columns, then range predicates), appends
// any ORDER BY columns on table not already covered, and — space
// permitting under maxCols — appends select-list columns to make the
// index covering. It reports whether the covering tail was applied.
func buildColumnPlan(sql string, shape *sqlshape.Shape, table string, whereCols []string, maxCols int) ([]string, bool) {
	isJoinColumn := func(col string) bool {
		for _, jp := range shape.JoinPredicates {
			if jp.Left.Table == table && jp.Left.Column == col {
				return true
			}
			if jp.Right.Table == table && jp.Right.Column == col {
				return true
			}
		}
		return false
	}

	var equality, join, rangeCols []string
	for _, c := range whereCols {
		ref := sqlshape.ColumnRef{Table: table, Column: c}
		switch {
		case isRangeColumn(sql, ref):
			rangeCols = append(rangeCols, c)
		case isJoinColumn(c):
			join = append(join, c)
		default:
			equality = append(equality, c)
		}
	}

	cols := make([]string, 0, len(whereCols))
	cols = append(cols, equality...)
	cols = append(cols, join...)
	cols = append(cols, rangeCols...)

	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		seen[c] = true
	}

	for _, oc := range shape.OrderByColumns {
		if oc.Table != "" && oc.Table != table {
			continue
		}
		if seen[oc.Column] {
			continue
		}
		if maxCols > 0 && len(cols) >= maxCols {
			break
		}
		cols = append(cols, oc.Column)
		seen[oc.Column] = true
	}

	if maxCols > 0 && len(cols) > maxCols {
		return cols[:maxCols], false
	}

	covering := false
	if !shape.SelectStar {
		for _, sc := range shape.SelectColumns {
			if maxCols > 0 && len(cols) >= maxCols {
				break
			}
			name := sc
			if idx := strings.LastIndexByte(sc, '.'); idx >= 0 {
				name = sc[idx+1:]
			}
			name = strings.TrimSpace(name)
			if name == "" || name == "*" || seen[name] {
				continue
			}
			cols = append(cols, name)
			seen[name] = true
			covering = true
		}
	}

	return cols, covering
}

// isRangeColumn reports whether col sits immediately next to a
// range-style operator (or BETWEEN) anywhere in sql.
func isRangeColumn(sql string, col sqlshape.ColumnRef) bool {
	if sql == "" {
		return false
	}
	qualified := col.Column
	if col.Table != "" {
		qualified = col.Table + "." + col.Column
	}
	matches := func(name string) bool {
		for _, m := range reRangeOperator.FindAllStringSubmatch(sql, -1) {
			if strings.EqualFold(m[1], name) {
				return true
			}
		}
		for _, m := range reBetweenOperator.FindAllStringSubmatch(sql, -1) {
			if strings.EqualFold(m[1], name) {
				return true
			}
		}
		return false
	}
	return matches(qualified) || matches(col.Column)
}

// indexCoverage classifies how much of a proposed column list an
// existing index already serves.
type indexCoverage int

const (
	coverageNone indexCoverage = iota
	coveragePartial
	coverageFull
)

// coverageAgainst compares proposed against every existing index's
// column prefix: a match on the full proposed prefix is full coverage,
// a match on at least the leading column is partial, anything else is
// none.
func coverageAgainst(existing []dbdriver.IndexDef, proposed []string) indexCoverage {
	best := coverageNone
	for _, def := range existing {
		prefixLen := commonPrefixLen(def.Columns, proposed)
		switch {
		case prefixLen >= len(proposed) && prefixLen > 0:
			return coverageFull
		case prefixLen > 0:
			best = coveragePartial
		}
	}
	return best
}

func commonPrefixLen(a, b []string) int {
	n := 0
	for n < len(a) && n < len(b) && strings.EqualFold(a[n], b[n]) {
		n++
	}
	return n
}

// classifyImprovement rates a recommendation's expected payoff: high
// when no existing index covers it at all and either the table's
// cardinality estimate is already known to be off or the plan examined
// a large number of rows to find its result; medium when an index
// partially covers the predicate; low otherwise.
func classifyImprovement(coverage indexCoverage, driftCritical bool, rowsExamined int64) string {
	switch {
	case coverage == coverageNone && (driftCritical || rowsExamined > 10000):
		return "high"
	case coverage == coveragePartial:
		return "medium"
	default:
		return "low"
	}
}

// buildIndexName renders a CREATE INDEX name from the table and column
// list, tagging it _covering or _composite to describe its shape, and
// truncates to the 64-byte identifier limit most engines enforce.
func buildIndexName(table string, cols []string, covering bool) string {
	name := "idx_" + table + "_" + strings.Join(cols, "_")
	switch {
	case covering:
		name += "_covering"
	case len(cols) > 1:
		name += "_composite"
	}
	if len(name) > 64 {
		name = name[:64]
	}
	return name
}

// assessExistingIndexes labels each index on table as optimal (used,
// and the table's estimates aren't critically off), suboptimal (used,
// but critical cardinality drift means it may no longer fit the data),
// unused, or redundant (its column list is a prefix of another index
// on the same table, so every query it serves, the longer index serves
// too).
func assessExistingIndexes(defs []dbdriver.IndexDef, m *model.Metrics, drift *model.CardinalityDrift, table string) []model.ExistingIndexAssessment {
	out := make([]model.ExistingIndexAssessment, 0, len(defs))
	for i, def := range defs {
		assessment := "unused"
		if _, used := m.IndexesUsed[def.Name]; used {
			assessment = "optimal"
			if drift != nil && drift.PerTable[table].Classification == "critical" {
				assessment = "suboptimal"
			}
		}
		if isPrefixOfAnother(def, defs, i) {
			assessment = "redundant"
		}
		out = append(out, model.ExistingIndexAssessment{Table: table, Index: def.Name, Assessment: assessment})
	}
	return out
}

// isPrefixOfAnother reports whether defs[self].Columns is a non-empty,
// strict column prefix of some other index on the same table.
func isPrefixOfAnother(self dbdriver.IndexDef, defs []dbdriver.IndexDef, selfIdx int) bool {
	if len(self.Columns) == 0 {
		return false
	}
	for i, other := range defs {
		if i == selfIdx || len(other.Columns) <= len(self.Columns) {
			continue
		}
		if commonPrefixLen(self.Columns, other.Columns) == len(self.Columns) {
			return true
		}
	}
	return false
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}
