// Package eval runs a checked, rewritten Query against a row source and
// produces a Table, implementing SPEC_FULL.md §4.5's seven stages: row
// source, schema, filter, group, project/having, sort, slice. Grounded on
// `original_source/lsql/expr.py`'s `QueryExpr.get_value`, which performs
// the same stages inline over a Python generator; this package splits
// them into named, independently testable steps over the Go AST.
package eval

import (
	"fmt"
	"math"
	"sort"

	"github.com/alexandershov/lsql/ast"
	"github.com/alexandershov/lsql/internal/agg"
	"github.com/alexandershov/lsql/internal/builtin"
	"github.com/alexandershov/lsql/internal/ctx"
	"github.com/alexandershov/lsql/internal/value"
	"github.com/alexandershov/lsql/visitor"
)

// Table is a query's result: a column schema paired with its rows, in
// final (sorted, sliced) order.
type Table struct {
	Columns []string
	Rows    []value.Row

	// Denied lists permission-denied directories the row source skipped
	// over during the walk, for the CLI's trailing warning report (§6.6).
	// Empty for row sources (e.g. non-filesystem table functions) that
	// don't track this.
	Denied []string
}

// Header, RowCount, and Cell satisfy internal/render.Table, letting the
// renderer format a Table without importing internal/eval.
func (t *Table) Header() []string              { return t.Columns }
func (t *Table) RowCount() int                 { return len(t.Rows) }
func (t *Table) Cell(row, col int) value.Value { return t.Rows[row].Values[col] }

// Run evaluates query -- already passed through package rewrite -- against
// outer, the layered scope of builtins and any external names (such as
// cwd) the caller supplies.
func Run(query *ast.Node, outer ctx.Context) (*Table, error) {
	sel := query.SelectClause()
	schema := deriveSchema(sel)

	source, err := openRowSource(query.FromClause(), outer)
	if err != nil {
		return nil, err
	}
	defer source.Close()

	where := query.WhereClause()
	group := query.GroupClause()
	having := havingCondition(query)
	order := query.OrderClauseN()

	limit, unlimited, err := evalLimit(query.LimitClause(), outer)
	if err != nil {
		return nil, err
	}
	offset, err := evalOffset(query.OffsetClause(), outer)
	if err != nil {
		return nil, err
	}

	aggNodes := map[int64]*ast.Node{}
	collectAggNodes(sel, aggNodes)
	collectAggNodes(having, aggNodes)
	collectAggNodes(order, aggNodes)

	var rows []projectedRow
	if group.Kind == ast.FakeGroup {
		rows, err = runUngrouped(source, where, sel, offset, limit, unlimited, order)
	} else {
		rows, err = runGrouped(source, where, sel, group, having, order, aggNodes)
	}
	if err != nil {
		return nil, err
	}

	if order != nil && len(order.Children) > 0 {
		sortRows(rows, order)
	}
	rows = sliceRows(rows, offset, limit, unlimited)

	out := &Table{Columns: schema, Rows: make([]value.Row, len(rows)), Denied: source.denied()}
	for i, r := range rows {
		out.Rows[i] = value.Row{Columns: schema, Values: r.values}
	}
	return out, nil
}

// projectedRow is one emitted row, its select-list values and (if ORDER
// BY is present) its precomputed sort key.
type projectedRow struct {
	values  []value.Value
	sortKey []value.Value
}

func deriveSchema(sel *ast.Node) []string {
	schema := make([]string, len(sel.Children))
	for i, c := range sel.Children {
		if c.Kind == ast.Name {
			schema[i] = c.Ident
		} else {
			schema[i] = fmt.Sprintf("column_%d", i)
		}
	}
	return schema
}

func havingCondition(query *ast.Node) *ast.Node {
	h := query.HavingClause()
	if h == nil {
		return nil
	}
	return h.Children[0]
}

func openRowSource(from *ast.Node, outer ctx.Context) (*rowSource, error) {
	args, err := evalArgs(from.Children, outer, nil)
	if err != nil {
		return nil, err
	}
	it, err := builtin.CallTable(from.Func, args)
	if err != nil {
		return nil, err
	}
	return newRowSource(it, outer), nil
}

func evalLimit(n *ast.Node, outer ctx.Context) (limit int, unlimited bool, err error) {
	v, err := evalExpr(n, outer, nil)
	if err != nil {
		return 0, false, err
	}
	if f, ok := v.(value.Float); ok && math.IsInf(float64(f), 1) {
		return 0, true, nil
	}
	i, err := toInt(v)
	if err != nil {
		return 0, false, fmt.Errorf("LIMIT: %w", err)
	}
	return i, false, nil
}

func evalOffset(n *ast.Node, outer ctx.Context) (int, error) {
	v, err := evalExpr(n, outer, nil)
	if err != nil {
		return 0, err
	}
	i, err := toInt(v)
	if err != nil {
		return 0, fmt.Errorf("OFFSET: %w", err)
	}
	return i, nil
}

func toInt(v value.Value) (int, error) {
	switch x := v.(type) {
	case value.Int:
		return int(x), nil
	case value.Float:
		return int(x), nil
	default:
		return 0, fmt.Errorf("expected a number, got %s", v.String())
	}
}

// runUngrouped implements stages 3-5 for a FakeGroup query: every row
// projects independently, with no accumulator state carried across rows.
// Grounded on §4.5 stage 4's "treat every row as its own group" rule.
// Applies the short-circuit optimization described after stage 7: with no
// ORDER BY and no real grouping, filtering stops once offset+limit rows
// have been produced.
func runUngrouped(source *rowSource, where, sel *ast.Node, offset, limit int, unlimited bool, order *ast.Node) ([]projectedRow, error) {
	shortCircuit := !unlimited && (order == nil || len(order.Children) == 0)
	needed := offset + limit

	var rows []projectedRow
	for {
		rowCtx, ok, err := source.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		cond, err := evalExpr(where, rowCtx, nil)
		if err != nil {
			return nil, err
		}
		if !truthy(cond) {
			continue
		}
		values, err := evalArgs(sel.Children, rowCtx, nil)
		if err != nil {
			return nil, err
		}
		row := projectedRow{values: values}
		if order != nil && len(order.Children) > 0 {
			key, err := evalOrderKey(order, rowCtx, nil)
			if err != nil {
				return nil, err
			}
			row.sortKey = key
		}
		rows = append(rows, row)
		if shortCircuit && len(rows) >= needed {
			break
		}
	}
	return rows, nil
}

// group is one accumulated GROUP BY bucket.
type group struct {
	keyVals []value.Value
	accums  map[int64]agg.Accumulator
	lastCtx ctx.Context
}

// runGrouped implements stages 3-5 for a real Group clause, including the
// degenerate Group([]) "whole table is one group" case, which must still
// emit a row even when zero input rows were fed (a bare aggregate query
// over an empty table yields one row, not zero).
func runGrouped(source *rowSource, where, sel, grp, having, order *ast.Node, aggNodes map[int64]*ast.Node) ([]projectedRow, error) {
	groups := map[string]*group{}
	var ordered []*group

	if len(grp.Children) == 0 {
		sole := &group{accums: newAccumulators(aggNodes)}
		groups[""] = sole
		ordered = append(ordered, sole)
	}

	for {
		rowCtx, ok, err := source.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		cond, err := evalExpr(where, rowCtx, nil)
		if err != nil {
			return nil, err
		}
		if !truthy(cond) {
			continue
		}

		var keyVals []value.Value
		keyStr := ""
		if len(grp.Children) > 0 {
			keyVals, err = evalArgs(grp.Children, rowCtx, nil)
			if err != nil {
				return nil, err
			}
			keyStr = groupKeyString(keyVals)
		}

		g, found := groups[keyStr]
		if !found {
			g = &group{keyVals: keyVals, accums: newAccumulators(aggNodes)}
			groups[keyStr] = g
			ordered = append(ordered, g)
		}
		g.lastCtx = rowCtx

		for id, node := range aggNodes {
			argVal, err := evalExpr(node.Children[0], rowCtx, nil)
			if err != nil {
				return nil, err
			}
			if !value.IsNull(argVal) {
				g.accums[id].Feed(argVal)
			}
		}
	}

	var rows []projectedRow
	for _, g := range ordered {
		rowCtx := g.lastCtx
		if rowCtx == nil {
			rowCtx = ctx.Empty
		}
		values, err := projectChildren(sel.Children, grp, g.keyVals, rowCtx, g.accums)
		if err != nil {
			return nil, err
		}
		if having != nil {
			hv, err := evalExpr(having, rowCtx, g.accums)
			if err != nil {
				return nil, err
			}
			if !truthy(hv) {
				continue
			}
		}
		row := projectedRow{values: values}
		if order != nil && len(order.Children) > 0 {
			key, err := evalOrderKeyGrouped(order, grp, g.keyVals, rowCtx, g.accums)
			if err != nil {
				return nil, err
			}
			row.sortKey = key
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func newAccumulators(aggNodes map[int64]*ast.Node) map[int64]agg.Accumulator {
	out := make(map[int64]agg.Accumulator, len(aggNodes))
	for id, n := range aggNodes {
		factory, ok := agg.Factories[ctx.Fold(n.Func)]
		if !ok {
			continue
		}
		out[id] = factory()
	}
	return out
}

func collectAggNodes(n *ast.Node, out map[int64]*ast.Node) {
	if n == nil {
		return
	}
	visitor.Inspect(n, func(x *ast.Node) bool {
		if x.Kind == ast.AggFunction {
			out[x.AggID] = x
		}
		return true
	})
}

func groupKeyString(vals []value.Value) string {
	keys := make([]interface{}, len(vals))
	for i, v := range vals {
		keys[i] = value.Key(v)
	}
	return fmt.Sprintf("%v", keys)
}

// projectChildren evaluates each select child, substituting the matching
// GROUP BY key component when the child is structurally a direct member
// of grp, per §4.5 stage 5.
func projectChildren(children []*ast.Node, grp *ast.Node, keyVals []value.Value, rowCtx ctx.Context, accums map[int64]agg.Accumulator) ([]value.Value, error) {
	values := make([]value.Value, len(children))
	for i, child := range children {
		v, err := projectOne(child, grp, keyVals, rowCtx, accums)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

func projectOne(child, grp *ast.Node, keyVals []value.Value, rowCtx ctx.Context, accums map[int64]agg.Accumulator) (value.Value, error) {
	for i, key := range grp.Children {
		if ast.Equal(child, key) {
			return keyVals[i], nil
		}
	}
	return evalExpr(child, rowCtx, accums)
}

func evalOrderKey(order *ast.Node, rowCtx ctx.Context, accums map[int64]agg.Accumulator) ([]value.Value, error) {
	key := make([]value.Value, len(order.Children))
	for i, part := range order.Children {
		v, err := evalExpr(part.Children[0], rowCtx, accums)
		if err != nil {
			return nil, err
		}
		key[i] = v
	}
	return key, nil
}

func evalOrderKeyGrouped(order, grp *ast.Node, keyVals []value.Value, rowCtx ctx.Context, accums map[int64]agg.Accumulator) ([]value.Value, error) {
	key := make([]value.Value, len(order.Children))
	for i, part := range order.Children {
		v, err := projectOne(part.Children[0], grp, keyVals, rowCtx, accums)
		if err != nil {
			return nil, err
		}
		key[i] = v
	}
	return key, nil
}

// sortRows implements §4.5 stage 6: a stable, multi-column comparator.
// NULL sorts strictly before any non-NULL value regardless of direction;
// within a column's non-NULL values, ASC uses <, DESC uses >.
func sortRows(rows []projectedRow, order *ast.Node) {
	dirs := make([]ast.Direction, len(order.Children))
	for i, part := range order.Children {
		dirs[i] = part.Dir
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for k, dir := range dirs {
			a, b := rows[i].sortKey[k], rows[j].sortKey[k]
			less, equal := compareForSort(a, b, dir)
			if equal {
				continue
			}
			return less
		}
		return false
	})
}

func compareForSort(a, b value.Value, dir ast.Direction) (less, equal bool) {
	aNull, bNull := value.IsNull(a), value.IsNull(b)
	switch {
	case aNull && bNull:
		return false, true
	case aNull:
		return true, false
	case bNull:
		return false, false
	}
	if value.OrderEqual(a, b) {
		return false, true
	}
	natural := value.OrderLess(a, b)
	if dir == ast.Desc {
		return !natural, false
	}
	return natural, false
}

// sliceRows implements §4.5 stage 7.
func sliceRows(rows []projectedRow, offset, limit int, unlimited bool) []projectedRow {
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if !unlimited && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
