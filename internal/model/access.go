// Package model holds the data types shared across the diagnostic
// pipeline: the plan tree, the metrics map, severities, findings, scores,
// and the final report. Everything here is produced by the pipeline and
// owned by the value it's embedded in — nothing here is mutated after the
// pipeline hands it to the caller.
package model

// AccessType is the normalized enum describing how a plan node reaches
// its rows. Driver-specific strings (MySQL's "const"/"ALL"/"ref", etc.)
// are mapped into this set by Driver.NormalizeAccessType.
type AccessType string

const (
	AccessZeroRowConst       AccessType = "zero_row_const"
	AccessConstRow           AccessType = "const_row"
	AccessSingleRowLookup    AccessType = "single_row_lookup"
	AccessIndexLookup        AccessType = "index_lookup"
	AccessCoveringIndexLook  AccessType = "covering_index_lookup"
	AccessIndexRangeScan     AccessType = "index_range_scan"
	AccessIndexScan          AccessType = "index_scan"
	AccessTableScan          AccessType = "table_scan"
	AccessFulltextIndex      AccessType = "fulltext_index"
	AccessUnknown            AccessType = "unknown"
)

// accessRank totally orders access types from cheapest to most expensive,
// used by the regression-baseline analyzer to detect plan
// upgrades/downgrades.
var accessRank = map[AccessType]int{
	AccessZeroRowConst:      0,
	AccessConstRow:          1,
	AccessSingleRowLookup:   2,
	AccessCoveringIndexLook: 3,
	AccessIndexLookup:       3,
	AccessFulltextIndex:     4,
	AccessIndexRangeScan:    5,
	AccessIndexScan:         6,
	AccessUnknown:           6,
	AccessTableScan:         7,
}

// Rank returns the total order position of the access type; lower is
// cheaper. Unranked/unknown types rank alongside AccessUnknown.
func (a AccessType) Rank() int {
	if r, ok := accessRank[a]; ok {
		return r
	}
	return accessRank[AccessUnknown]
}

// IsIO reports whether a node of this access type performs I/O against a
// table or index, i.e. whether it should contribute to rows_examined.
// zero_row_const is explicitly excluded: it never touches storage.
func (a AccessType) IsIO() bool {
	return a != AccessZeroRowConst && a != ""
}

// IsOptimal reports membership in the "optimal access" set:
// zero_row_const, const_row, single_row_lookup. Findings about missing
// indexes are suppressed for these access types because no index change
// could possibly help.
func (a AccessType) IsOptimal() bool {
	switch a {
	case AccessZeroRowConst, AccessConstRow, AccessSingleRowLookup:
		return true
	default:
		return false
	}
}

// JoinType is the normalized join algorithm, produced by
// Driver.NormalizeJoinType.
type JoinType string

const (
	JoinNestedLoop JoinType = "nested_loop"
	JoinHash       JoinType = "hash_join"
	JoinMerge      JoinType = "merge_join"
	JoinUnknown    JoinType = "unknown"
)
