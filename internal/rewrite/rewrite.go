// Package rewrite implements the semantic pass that turns a raw parsed
// Query into one the evaluator can run directly: implicit FROM/SELECT
// filled in, clause defaults inserted, aggregate calls lifted to
// AggFunction nodes with their own accumulator slot, and GROUP BY legality
// checked. Grounded on `original_source/lsql/ast.py`'s `QueryNode.__init__`,
// which performs the same fill-in-and-validate work inline in its
// constructor; this package pulls that into an explicit, testable pass
// over an already-built tree instead.
package rewrite

import (
	"math"

	"github.com/alexandershov/lsql/ast"
	"github.com/alexandershov/lsql/internal/agg"
	"github.com/alexandershov/lsql/internal/builtin"
	"github.com/alexandershov/lsql/internal/ctx"
	"github.com/alexandershov/lsql/internal/errs"
	"github.com/alexandershov/lsql/internal/value"
	"github.com/alexandershov/lsql/visitor"
	"github.com/alexandershov/lsql/token"
)

// Build runs every rewrite step on a freshly parsed Query node and returns
// the checked, fully-defaulted tree the evaluator consumes.
func Build(query *ast.Node) (*ast.Node, error) {
	span := query.Span

	from := implicitFrom(query.FromClause(), span)
	rowType, err := fromType(from)
	if err != nil {
		return nil, err
	}

	sel := expandSelect(query.SelectClause(), rowType, span)

	where := query.WhereClause()
	if where == nil {
		where = ast.NewValue(value.Bool(true), span)
	}
	order := query.OrderClauseN()
	if order == nil {
		order = ast.NewOrder(nil, span)
	}
	limit := query.LimitClause()
	if limit == nil {
		limit = ast.NewValue(value.Float(math.Inf(1)), span)
	}
	offset := query.OffsetClause()
	if offset == nil {
		offset = ast.NewValue(value.Int(0), span)
	}
	having := query.HavingClause()

	if found := visitor.Find(where, isAggregateCall); found != nil {
		return nil, errs.Trace(&errs.AggregateInWhere{Node: found})
	}

	group := query.GroupClause()
	if group == nil {
		switch {
		case containsAggregate(sel) || containsAggregate(order) || containsAggregate(having):
			group = ast.NewGroup(nil, span)
		case having != nil:
			group = ast.NewGroup(nil, span)
		default:
			group = ast.NewFakeGroup(span)
		}
	}
	if found := visitor.Find(group, isAggregateCall); found != nil {
		return nil, errs.Trace(&errs.IllegalGroupBy{Node: found, Reason: "GROUP BY cannot contain an aggregate function"})
	}

	sel = liftAggregates(sel)
	order = liftAggregates(order)
	if having != nil {
		having = liftAggregates(having)
	}

	if group.Kind == ast.Group {
		if err := checkGroupByLegality(sel, having, order, group, rowType); err != nil {
			return nil, err
		}
	}

	return ast.NewQuery(sel, from, where, group, having, order, limit, offset, span), nil
}

// implicitFrom fills in an absent FROM with `cwd`, then wraps a bare
// name/literal directory expression as a `files(...)` call -- the same two
// steps `QueryNode.__init__` performs before typing the from-expression.
func implicitFrom(from *ast.Node, span token.Span) *ast.Node {
	if from == nil {
		from = ast.NewName("cwd", span)
	}
	if from.Kind == ast.Name || from.Kind == ast.ValueNode {
		from = ast.NewFunction("files", []*ast.Node{from}, from.Span)
	}
	return from
}

// fromType resolves the from-expression's declared row type against the
// virtual-table registry, without evaluating the expression.
func fromType(from *ast.Node) (builtin.RowType, error) {
	if from.Kind != ast.Function {
		return nil, errs.Trace(&errs.UnexpectedToken{Span: from.Span})
	}
	rowType, ok := builtin.TableType(ctx.Fold(from.Func))
	if !ok {
		return nil, errs.Trace(&errs.UnknownColumn{Name: from.Func, Span: from.Span})
	}
	return rowType, nil
}

// expandSelect fills in an absent SELECT with the from-type's default
// columns, and expands `SELECT *` to the from-type's star columns.
func expandSelect(sel *ast.Node, rowType builtin.RowType, span token.Span) *ast.Node {
	switch {
	case sel == nil:
		return ast.NewSelect(namesFrom(rowType.DefaultColumns(), span), span)
	case sel.Kind == ast.SelectStar:
		return ast.NewSelect(namesFrom(rowType.StarColumns(), span), sel.Span)
	default:
		return sel
	}
}

func namesFrom(columns []string, span token.Span) []*ast.Node {
	nodes := make([]*ast.Node, len(columns))
	for i, col := range columns {
		nodes[i] = ast.NewName(col, span)
	}
	return nodes
}

func isAggregateCall(n *ast.Node) bool {
	return n != nil && n.Kind == ast.Function && isAggName(n.Func)
}

func isAggName(name string) bool {
	_, ok := agg.Factories[ctx.Fold(name)]
	return ok
}

func containsAggregate(n *ast.Node) bool {
	return visitor.Find(n, isAggregateCall) != nil
}

var liftTransformer = visitor.TransformerFunc(func(n *ast.Node) *ast.Node {
	if n != nil && n.Kind == ast.Function && isAggName(n.Func) {
		return ast.NewAggFunction(n.Func, n.Children, ast.NextAggID(), n.Span)
	}
	return n
})

// liftAggregates replaces every aggregate Function call in n's subtree
// (including n itself) with an AggFunction carrying a fresh accumulator
// slot. Returns n unchanged if n is nil.
func liftAggregates(n *ast.Node) *ast.Node {
	if n == nil {
		return nil
	}
	return visitor.Rewrite(n, liftTransformer)
}

// checkGroupByLegality enforces §4.4 step 9: every from-type column
// reference in select/having/order must be a GROUP BY key (or a
// sub-expression of one, found by walking up from the reference), or lie
// inside an aggregate call. Nested aggregates are illegal regardless of
// grouping.
func checkGroupByLegality(sel, having, order, group *ast.Node, rowType builtin.RowType) error {
	columns := make(map[string]bool, len(rowType.AllColumns()))
	for _, c := range rowType.AllColumns() {
		columns[ctx.Fold(c)] = true
	}

	for _, clause := range []*ast.Node{sel, having, order} {
		if clause == nil {
			continue
		}
		if err := checkNestedAggregates(clause); err != nil {
			return err
		}
		if err := checkNameLegality(clause, group, columns); err != nil {
			return err
		}
	}
	return nil
}

func checkNestedAggregates(clause *ast.Node) error {
	var result error
	visitor.Inspect(clause, func(n *ast.Node) bool {
		if result != nil {
			return false
		}
		if n.Kind != ast.AggFunction {
			return true
		}
		for p := n.Parent(); p != nil; p = p.Parent() {
			if p.Kind == ast.AggFunction {
				result = errs.Trace(&errs.IllegalGroupBy{Node: n, Reason: "aggregate functions cannot be nested"})
				return false
			}
		}
		return true
	})
	return result
}

func checkNameLegality(clause, group *ast.Node, columns map[string]bool) error {
	var result error
	visitor.Inspect(clause, func(n *ast.Node) bool {
		if result != nil {
			return false
		}
		if n.Kind != ast.Name || !columns[ctx.Fold(n.Ident)] {
			return true
		}
		if nameIsLegal(n, group) {
			return true
		}
		result = errs.Trace(&errs.IllegalGroupBy{
			Node:   n,
			Reason: "column " + n.Ident + " is not a GROUP BY key, a sub-expression of one, or inside an aggregate",
		})
		return false
	})
	return result
}

// nameIsLegal reports whether name satisfies §4.4 step 9 (a)/(b)/(c): it
// (or an ancestor of it) structurally equals a GROUP BY key, or it lies
// inside an aggregate call.
func nameIsLegal(name, group *ast.Node) bool {
	for anc := name; anc != nil; anc = anc.Parent() {
		if anc.Kind == ast.AggFunction {
			return true
		}
		for _, key := range group.Children {
			if ast.Equal(anc, key) {
				return true
			}
		}
	}
	return false
}
