package eval

import (
	"fmt"

	"github.com/alexandershov/lsql/ast"
	"github.com/alexandershov/lsql/internal/agg"
	"github.com/alexandershov/lsql/internal/builtin"
	"github.com/alexandershov/lsql/internal/ctx"
	"github.com/alexandershov/lsql/internal/errs"
	"github.com/alexandershov/lsql/internal/value"
)

// evalExpr evaluates one checked, rewritten expression node against c,
// reading a lifted aggregate's running value from accums. accums may be
// nil for any expression known not to contain an AggFunction (e.g. the
// FROM-expression's arguments or a LIMIT/OFFSET literal).
func evalExpr(n *ast.Node, c ctx.Context, accums map[int64]agg.Accumulator) (value.Value, error) {
	switch n.Kind {
	case ast.Null:
		return value.NullValue, nil

	case ast.ValueNode:
		return n.Lit, nil

	case ast.Name:
		bound, ok := c.Get(n.Ident)
		if !ok {
			return nil, errs.Trace(&errs.UnknownColumn{Name: n.Ident, Span: n.Span})
		}
		v, ok := bound.(value.Value)
		if !ok {
			return nil, fmt.Errorf("%s does not name a value", n.Ident)
		}
		return v, nil

	case ast.Array:
		elems := make(value.List, len(n.Children))
		for i, child := range n.Children {
			v, err := evalExpr(child, c, accums)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return elems, nil

	case ast.Function:
		args, err := evalArgs(n.Children, c, accums)
		if err != nil {
			return nil, err
		}
		bound, ok := c.Get(n.Func)
		if !ok {
			return nil, fmt.Errorf("unknown function: %s", n.Func)
		}
		fn, ok := bound.(builtin.Func)
		if !ok {
			return nil, fmt.Errorf("%s is not callable", n.Func)
		}
		return fn(args)

	case ast.AggFunction:
		acc, ok := accums[n.AggID]
		if !ok {
			return nil, fmt.Errorf("no accumulator bound for aggregate %s", n.Func)
		}
		return acc.Value(), nil

	case ast.And:
		left, err := evalExpr(n.Children[0], c, accums)
		if err != nil {
			return nil, err
		}
		right, err := evalExpr(n.Children[1], c, accums)
		if err != nil {
			return nil, err
		}
		return value.And(left, right), nil

	case ast.Or:
		left, err := evalExpr(n.Children[0], c, accums)
		if err != nil {
			return nil, err
		}
		right, err := evalExpr(n.Children[1], c, accums)
		if err != nil {
			return nil, err
		}
		return value.Or(left, right), nil

	case ast.Between:
		probe, err := evalExpr(n.Children[0], c, accums)
		if err != nil {
			return nil, err
		}
		lo, err := evalExpr(n.Children[1], c, accums)
		if err != nil {
			return nil, err
		}
		hi, err := evalExpr(n.Children[2], c, accums)
		if err != nil {
			return nil, err
		}
		return value.And(value.Gte(probe, lo), value.Lte(probe, hi)), nil

	default:
		return nil, fmt.Errorf("cannot evaluate %s node", n.Kind)
	}
}

func evalArgs(children []*ast.Node, c ctx.Context, accums map[int64]agg.Accumulator) ([]value.Value, error) {
	args := make([]value.Value, len(children))
	for i, child := range children {
		v, err := evalExpr(child, c, accums)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// truthy reports whether v keeps a row/group: NULL and any non-truthy
// value are both dropped.
func truthy(v value.Value) bool {
	return !value.IsNull(v) && v.Truthy()
}
