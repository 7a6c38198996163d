// Package lsql is the top-level entry point into the query pipeline:
// parse a query, walk or rewrite its AST, run semantic checking, and
// evaluate it against a row source. Shaped after a dialect SQL parser's
// top-level Parse/Walk/Rewrite package API, generalized here to this
// grammar's own checked-and-rewritten pipeline and tree-walking
// evaluator instead of a statement-type hierarchy and SQL re-formatter.
//
// Basic usage:
//
//	table, err := lsql.Query("select name, size where size > 1mb order by size desc", ".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(table.Columns)
//
// Finer-grained control over parsing, rewriting, and evaluation:
//
//	query, err := lsql.Parse(src)
//	built, err := lsql.Build(query)
//	lsql.Walk(built, func(n *lsql.Node) bool {
//	    return true
//	})
//	table, err := lsql.Eval(built, outer)
package lsql

import (
	"time"

	"github.com/alexandershov/lsql/ast"
	"github.com/alexandershov/lsql/internal/builtin"
	"github.com/alexandershov/lsql/internal/ctx"
	"github.com/alexandershov/lsql/internal/eval"
	"github.com/alexandershov/lsql/internal/rewrite"
	"github.com/alexandershov/lsql/internal/value"
	"github.com/alexandershov/lsql/parser"
	"github.com/alexandershov/lsql/visitor"
)

// Node is the AST node type every pipeline stage operates on.
type Node = ast.Node

// Table is a query's result: a column schema paired with its rows, in
// final (sorted, sliced) order.
type Table = eval.Table

// Parse tokenizes and parses src into a Query node. The result has not
// been through semantic rewriting (star expansion, implicit FROM,
// GROUP BY legality checking) -- pass it to Build before Eval, or call
// Query to do both plus evaluation in one step.
func Parse(src string) (*Node, error) {
	return parser.Parse(src)
}

// Build runs semantic rewriting over a parsed query.
func Build(query *Node) (*Node, error) {
	return rewrite.Build(query)
}

// Walk traverses node's subtree in pre-order, calling fn for every node;
// fn returning false skips that node's children.
func Walk(node *Node, fn func(*Node) bool) {
	visitor.WalkFunc(node, fn)
}

// Rewrite traverses node's subtree, calling fn on each node as originally
// written (before its children are rewritten) and attaching the rewritten
// children to whatever fn returns for it.
func Rewrite(node *Node, fn func(*Node) *Node) *Node {
	return visitor.Rewrite(node, visitor.TransformerFunc(fn))
}

// Eval evaluates a built query against outer, the layered scope of
// builtins and any external names (such as cwd) the caller supplies.
func Eval(query *Node, outer ctx.Context) (*Table, error) {
	return eval.Run(query, outer)
}

// Query parses, rewrites, and evaluates src in one call, resolving its
// implicit or explicit FROM directory relative to dir. This is the
// one-shot convenience entry point; callers needing a custom outer
// context or a chance to Walk the AST first should use Parse/Build/Eval
// directly instead (see cmd/lsql for exactly that).
func Query(src, dir string) (*Table, error) {
	query, err := Parse(src)
	if err != nil {
		return nil, err
	}
	built, err := Build(query)
	if err != nil {
		return nil, err
	}
	outer := ctx.Merged{
		ctx.NewMap(map[string]interface{}{"cwd": value.NewStr(dir)}),
		builtin.Namespace(time.Now()),
	}
	return Eval(built, outer)
}
