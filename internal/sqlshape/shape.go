// Package sqlshape is the structural SQL parser: case-insensitive regex
// extraction of tables, where-columns, join predicates, order-by
// columns, select-list, and anti-pattern shapes. A full SQL parser is
// deliberately out of scope here; every regex lives in this one package
// so it can be swapped for a real parser later without ripple.
package sqlshape

import (
	"regexp"
	"strings"
)

// TableRef is a table named in FROM or JOIN, with its alias if any.
type TableRef struct {
	Name  string
	Alias string
}

// ColumnRef is a column reference, optionally qualified by table or
// alias. Table is empty when the reference is bare (`WHERE id = 1`).
type ColumnRef struct {
	Table  string
	Column string
}

// JoinPredicate is one side-by-side pair from a `JOIN … ON` clause.
type JoinPredicate struct {
	Left  ColumnRef
	Right ColumnRef
}

// Shape is the full structural extraction over one statement.
type Shape struct {
	Tables         []TableRef
	WhereColumns   []ColumnRef
	JoinPredicates []JoinPredicate
	OrderByColumns []ColumnRef
	SelectColumns  []string

	SelectStar             bool
	HasGroupBy             bool
	HasLimit               bool
	HasExists              bool
	HasDistinct            bool
	HasOrderByRand         bool
	HasLeadingWildcardLike bool
	HasNotInSubquery       bool
	HasCorrelatedSubquery  bool
	ORChainLength          int
	FunctionWrappedColumns []ColumnRef
}

var (
	identifier = `[a-zA-Z_][a-zA-Z0-9_$]*`

	reFromTable = regexp.MustCompile(`(?i)\bFROM\s+(` + identifier + `(?:\.` + identifier + `)?)(?:\s+(?:AS\s+)?(` + identifier + `))?`)
	reJoinTable = regexp.MustCompile(`(?i)\bJOIN\s+(` + identifier + `(?:\.` + identifier + `)?)(?:\s+(?:AS\s+)?(` + identifier + `))?\s+ON\s+`)
	// reJoinEnd finds where an ON predicate stops: the next join or a
	// later clause. A predicate followed by neither runs to the end.
	reJoinEnd = regexp.MustCompile(`(?i)\s+(?:INNER\s+JOIN|LEFT\s+JOIN|RIGHT\s+JOIN|CROSS\s+JOIN|JOIN|WHERE|GROUP\s+BY|ORDER\s+BY|LIMIT)`)

	reWhereClause   = regexp.MustCompile(`(?is)\bWHERE\s+(.+?)(?:\bGROUP\s+BY\b|\bORDER\s+BY\b|\bLIMIT\b|$)`)
	reQualifiedCol  = regexp.MustCompile(`(` + identifier + `)\.(` + identifier + `)`)
	reBareCol       = regexp.MustCompile(`(?i)(?:^|[\s(,])(` + identifier + `)\s*(?:=|<|>|<=|>=|<>|!=|\bLIKE\b|\bIN\b|\bIS\b)`)
	reOrderByClause = regexp.MustCompile(`(?is)\bORDER\s+BY\s+(.+?)(?:\bLIMIT\b|$)`)
	reSelectClause  = regexp.MustCompile(`(?is)\bSELECT\s+(?:DISTINCT\s+)?(.+?)\bFROM\b`)
	reFunctionCall  = regexp.MustCompile(`(?i)(` + identifier + `)\s*\(\s*(?:(` + identifier + `)\.)?(` + identifier + `)\s*\)`)
	reLeadingWild   = regexp.MustCompile(`(?i)\bLIKE\s+'%`)
	reOrderByRand   = regexp.MustCompile(`(?i)\bORDER\s+BY\s+RAND\s*\(\s*\)`)
	reNotInSubquery = regexp.MustCompile(`(?i)\bNOT\s+IN\s*\(\s*SELECT\b`)
	reOrWord        = regexp.MustCompile(`(?i)\bOR\b`)
	reSubquery      = regexp.MustCompile(`(?i)\(\s*SELECT\b`)
	reExists        = regexp.MustCompile(`(?i)\bEXISTS\s*\(`)
	reIdentOnly     = regexp.MustCompile(`^` + identifier + `$`)
)

var reservedWords = map[string]struct{}{
	"AND": {}, "OR": {}, "NOT": {}, "NULL": {}, "IS": {}, "IN": {}, "LIKE": {},
	"BETWEEN": {}, "TRUE": {}, "FALSE": {}, "SELECT": {}, "FROM": {}, "WHERE": {},
	"GROUP": {}, "ORDER": {}, "BY": {}, "LIMIT": {}, "JOIN": {}, "ON": {}, "AS": {},
	"DISTINCT": {}, "HAVING": {}, "EXISTS": {}, "CASE": {}, "WHEN": {}, "THEN": {},
	"ELSE": {}, "END": {}, "ASC": {}, "DESC": {},
}

// cleanAlias drops an alias capture that is actually the next clause
// keyword (JOIN, WHERE, ...), which the table regexes can't rule out
// on their own since they don't look ahead past the optional group.
func cleanAlias(alias string) string {
	if isReserved(alias) {
		return ""
	}
	return alias
}

func isReserved(word string) bool {
	_, ok := reservedWords[strings.ToUpper(word)]
	return ok
}

// Parse extracts the structural shape of sql. It never returns an error:
// a statement this regex set can't make sense of simply yields a mostly
// empty Shape, the same way an optional regex match yields no groups.
func Parse(sql string) *Shape {
	s := &Shape{}

	for _, m := range reFromTable.FindAllStringSubmatch(sql, -1) {
		s.Tables = append(s.Tables, TableRef{Name: m[1], Alias: cleanAlias(m[2])})
	}
	for _, loc := range reJoinTable.FindAllStringSubmatchIndex(sql, -1) {
		alias := ""
		if loc[4] >= 0 {
			alias = sql[loc[4]:loc[5]]
		}
		s.Tables = append(s.Tables, TableRef{Name: sql[loc[2]:loc[3]], Alias: cleanAlias(alias)})
		predicate := sql[loc[1]:]
		if end := reJoinEnd.FindStringIndex(predicate); end != nil {
			predicate = predicate[:end[0]]
		}
		cols := reQualifiedCol.FindAllStringSubmatch(predicate, -1)
		if len(cols) >= 2 {
			s.JoinPredicates = append(s.JoinPredicates, JoinPredicate{
				Left:  ColumnRef{Table: cols[0][1], Column: cols[0][2]},
				Right: ColumnRef{Table: cols[1][1], Column: cols[1][2]},
			})
		}
	}

	if wm := reWhereClause.FindStringSubmatch(sql); wm != nil {
		where := wm[1]
		s.WhereColumns = extractColumns(where)
		s.ORChainLength = len(reOrWord.FindAllString(where, -1))
		if reLeadingWild.MatchString(where) {
			s.HasLeadingWildcardLike = true
		}
		if reNotInSubquery.MatchString(where) {
			s.HasNotInSubquery = true
		}
		if reExists.MatchString(where) {
			s.HasExists = true
		}
		if reSubquery.MatchString(where) && referencesOuterTable(where, s.Tables) {
			s.HasCorrelatedSubquery = true
		}
		for _, fm := range reFunctionCall.FindAllStringSubmatch(where, -1) {
			fn := strings.ToUpper(fm[1])
			if isReserved(fn) {
				continue
			}
			s.FunctionWrappedColumns = append(s.FunctionWrappedColumns, ColumnRef{Table: fm[2], Column: fm[3]})
		}
	}

	if om := reOrderByClause.FindStringSubmatch(sql); om != nil {
		s.OrderByColumns = extractOrderByColumns(om[1])
	}
	if reOrderByRand.MatchString(sql) {
		s.HasOrderByRand = true
	}

	if sm := reSelectClause.FindStringSubmatch(sql); sm != nil {
		list := sm[1]
		for _, col := range strings.Split(list, ",") {
			col = strings.TrimSpace(col)
			if col != "" {
				s.SelectColumns = append(s.SelectColumns, col)
			}
		}
	}
	if strings.Contains(sql, "*") && reSelectStar.MatchString(sql) {
		s.SelectStar = true
	}

	upper := strings.ToUpper(sql)
	s.HasGroupBy = strings.Contains(upper, "GROUP BY")
	s.HasLimit = strings.Contains(upper, "LIMIT")
	s.HasDistinct = strings.Contains(upper, "DISTINCT")

	return s
}

var reSelectStar = regexp.MustCompile(`(?i)\bSELECT\s+(?:DISTINCT\s+)?\*`)

func extractColumns(clause string) []ColumnRef {
	var cols []ColumnRef
	seen := map[string]bool{}

	for _, m := range reQualifiedCol.FindAllStringSubmatch(clause, -1) {
		key := m[1] + "." + m[2]
		if seen[key] || isReserved(m[1]) || isReserved(m[2]) {
			continue
		}
		seen[key] = true
		cols = append(cols, ColumnRef{Table: m[1], Column: m[2]})
	}
	for _, m := range reBareCol.FindAllStringSubmatch(clause, -1) {
		name := m[1]
		if isReserved(name) || seen[name] {
			continue
		}
		seen[name] = true
		cols = append(cols, ColumnRef{Column: name})
	}
	return cols
}

// extractOrderByColumns handles ORDER BY's comma-separated column list,
// where each item is a bare or qualified column optionally followed by
// ASC/DESC — a different shape than WHERE's operator-suffixed columns,
// so it gets its own extraction instead of reusing extractColumns.
func extractOrderByColumns(clause string) []ColumnRef {
	var cols []ColumnRef
	for _, part := range strings.Split(clause, ",") {
		fields := strings.Fields(strings.TrimSpace(part))
		if len(fields) == 0 {
			continue
		}
		token := fields[0]
		if m := reQualifiedCol.FindStringSubmatch(token); m != nil {
			cols = append(cols, ColumnRef{Table: m[1], Column: m[2]})
			continue
		}
		if reIdentOnly.MatchString(token) && !isReserved(token) {
			cols = append(cols, ColumnRef{Column: token})
		}
	}
	return cols
}

// referencesOuterTable is a coarse correlated-subquery test: true when a
// parenthesized SELECT mentions one of the outer query's table aliases
// or names.
func referencesOuterTable(clause string, tables []TableRef) bool {
	subMatch := reSubquery.FindStringIndex(clause)
	if subMatch == nil {
		return false
	}
	inner := clause[subMatch[0]:]
	for _, t := range tables {
		ref := t.Alias
		if ref == "" {
			ref = t.Name
		}
		if ref == "" {
			continue
		}
		if regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(ref)+`\.`).MatchString(inner) {
			return true
		}
	}
	return false
}
