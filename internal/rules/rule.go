// Package rules holds the single-pass legacy-style findings: small,
// independent checks that each inspect the query's shape and metrics
// and emit zero or one Finding, the way a lint ruleset would. These sit
// alongside (and feed into) the deeper analyzers, but unlike those,
// each rule here is self-contained and order-independent.
package rules

import (
	"github.com/nethalo/sqlsentinel/internal/config"
	"github.com/nethalo/sqlsentinel/internal/model"
	"github.com/nethalo/sqlsentinel/internal/sqlshape"
)

// Input is everything a Rule is allowed to look at. Rules never touch
// the database directly — by the time rules run, the plan has already
// been explained and its metrics extracted.
type Input struct {
	SQL     string
	Shape   *sqlshape.Shape
	Metrics *model.Metrics
	Cfg     config.AntiPatternThresholds
}

// Rule is a capability: something that can evaluate an Input and
// optionally produce a Finding. Each built-in rule below implements
// this with a single exported evaluator function rather than a
// method-per-type hierarchy, since there's no shared state to carry.
type Rule interface {
	Name() string
	Evaluate(in Input) (model.Finding, bool)
}

// funcRule adapts a plain function to the Rule interface.
type funcRule struct {
	name string
	fn   func(Input) (model.Finding, bool)
}

func (r funcRule) Name() string { return r.name }

func (r funcRule) Evaluate(in Input) (model.Finding, bool) { return r.fn(in) }

// All returns the full built-in rule set, filtered to the names listed
// in enabled. A nil/empty enabled list means "all of them" — the same
// default-permissive convention the DDL-operation lookup tables use
// elsewhere in this codebase.
func All(enabled []string) []Rule {
	all := []Rule{
		funcRule{"select_star", SelectStar},
		funcRule{"missing_index", MissingIndex},
		funcRule{"full_table_scan", FullTableScan},
		funcRule{"implicit_cast", ImplicitCast},
		funcRule{"or_predicate", OrPredicate},
		funcRule{"leading_wildcard", LeadingWildcard},
		funcRule{"function_on_column", FunctionOnColumn},
		funcRule{"cartesian_join", CartesianJoin},
		funcRule{"unbounded_sort", UnboundedSort},
		funcRule{"n_plus_one", NPlusOne},
	}
	if len(enabled) == 0 {
		return all
	}
	want := make(map[string]bool, len(enabled))
	for _, name := range enabled {
		want[name] = true
	}
	var out []Rule
	for _, r := range all {
		if want[r.Name()] {
			out = append(out, r)
		}
	}
	return out
}

// Run evaluates every rule against in and returns the findings that
// fired, in rule-list order.
func Run(rules []Rule, in Input) []model.Finding {
	var out []model.Finding
	for _, r := range rules {
		if f, ok := r.Evaluate(in); ok {
			out = append(out, f)
		}
	}
	return out
}
