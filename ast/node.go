// Package ast defines the unified abstract syntax tree this system parses
// queries into, rewrites, and evaluates. Unlike a one-struct-per-production
// AST, every node shares a single Node type tagged by Kind; walking and
// rewriting (package visitor) dispatch on that tag instead of a Go type
// switch. This mirrors the reference implementation's single Node base
// class, which every expression/clause subclasses rather than defining
// unrelated types per production.
package ast

import (
	"fmt"

	"github.com/alexandershov/lsql/internal/ctx"
	"github.com/alexandershov/lsql/internal/value"
	"github.com/alexandershov/lsql/token"
)

// Kind discriminates the syntactic/semantic role of a Node.
type Kind int

const (
	// Null is a literal NULL.
	Null Kind = iota
	// Value wraps a literal runtime value (number, string).
	ValueNode
	// Name is a bare identifier (a column or context-bound name).
	Name
	// Array is a parenthesized, comma-delimited expression list, as used on
	// the right-hand side of IN.
	Array
	// Function is a scalar or pattern-match function call; Children are its
	// arguments.
	Function
	// AggFunction is a Function lifted by the rewrite pass because its name
	// names a registered aggregate. AggID identifies this call site's
	// per-group accumulator slot; it does not participate in Equal.
	AggFunction
	// And is a short-circuit-free three-valued conjunction of two children.
	And
	// Or is a short-circuit-free three-valued disjunction of two children.
	Or
	// Between has exactly three children: the probe, the lower bound, the
	// upper bound.
	Between
	// OrderByPart wraps one ORDER BY expression with a sort Direction.
	OrderByPart
	// SelectStar is the unexpanded `SELECT *`.
	SelectStar
	// Select holds the projected expression list as Children.
	Select
	// OrderClause holds OrderByPart Children, in priority order.
	OrderClause
	// Group holds the GROUP BY key expression list as Children.
	Group
	// FakeGroup marks "every row is its own group" -- inserted by the
	// rewrite pass when a query has no GROUP BY, no aggregate call and no
	// HAVING.
	FakeGroup
	// Having wraps the single post-aggregation filter expression.
	Having
	// Query is the top-level node: Select, From, Where, GroupBy, Having,
	// OrderBy, Limit, Offset children, any of which may be nil.
	Query
)

var kindNames = map[Kind]string{
	Null: "NULL", ValueNode: "Value", Name: "Name", Array: "Array",
	Function: "Function", AggFunction: "AggFunction", And: "And", Or: "Or",
	Between: "Between", OrderByPart: "OrderByPart", SelectStar: "SelectStar",
	Select: "Select", OrderClause: "Order", Group: "Group", FakeGroup: "FakeGroup",
	Having: "Having", Query: "Query",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Direction is an ORDER BY sort direction.
type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// Node is a single AST node. Nodes are treated as immutable after
// construction, with one exception: parent is re-linked by the visitor
// package's rewriting machinery as it threads fresh copies back together.
// Construct nodes with the New* functions below, never with a literal.
type Node struct {
	Kind     Kind
	Children []*Node
	Span     token.Span

	parent *Node

	// Lit is the literal payload of a ValueNode.
	Lit value.Value
	// Ident is the identifier payload of a Name.
	Ident string
	// Func is the function-name payload of a Function or AggFunction.
	Func string
	// Dir is the sort-direction payload of an OrderByPart.
	Dir Direction
	// AggID identifies an AggFunction's accumulator slot. Zero for every
	// other kind and for any AggFunction not yet assigned one; excluded
	// from Equal since it is call-site identity, not syntax.
	AggID int64
}

// Parent returns the node this node was last attached under, or nil for a
// root or detached node.
func (n *Node) Parent() *Node { return n.parent }

func reparent(self *Node, children []*Node) {
	for _, c := range children {
		if c != nil {
			c.parent = self
		}
	}
}

func NewNull(span token.Span) *Node {
	return &Node{Kind: Null, Span: span}
}

func NewValue(v value.Value, span token.Span) *Node {
	return &Node{Kind: ValueNode, Lit: v, Span: span}
}

func NewName(ident string, span token.Span) *Node {
	return &Node{Kind: Name, Ident: ident, Span: span}
}

func NewArray(children []*Node, span token.Span) *Node {
	n := &Node{Kind: Array, Children: children, Span: span}
	reparent(n, children)
	return n
}

func NewFunction(name string, args []*Node, span token.Span) *Node {
	n := &Node{Kind: Function, Func: name, Children: args, Span: span}
	reparent(n, args)
	return n
}

// NewAggFunction builds a lifted aggregate call. id should come from
// NextAggID so every call site gets a distinct accumulator slot.
func NewAggFunction(name string, args []*Node, id int64, span token.Span) *Node {
	n := &Node{Kind: AggFunction, Func: name, Children: args, AggID: id, Span: span}
	reparent(n, args)
	return n
}

func NewAnd(left, right *Node, span token.Span) *Node {
	n := &Node{Kind: And, Children: []*Node{left, right}, Span: span}
	reparent(n, n.Children)
	return n
}

func NewOr(left, right *Node, span token.Span) *Node {
	n := &Node{Kind: Or, Children: []*Node{left, right}, Span: span}
	reparent(n, n.Children)
	return n
}

func NewBetween(probe, lo, hi *Node, span token.Span) *Node {
	n := &Node{Kind: Between, Children: []*Node{probe, lo, hi}, Span: span}
	reparent(n, n.Children)
	return n
}

func NewOrderByPart(child *Node, dir Direction, span token.Span) *Node {
	n := &Node{Kind: OrderByPart, Children: []*Node{child}, Dir: dir, Span: span}
	reparent(n, n.Children)
	return n
}

func NewSelectStar(span token.Span) *Node {
	return &Node{Kind: SelectStar, Span: span}
}

func NewSelect(children []*Node, span token.Span) *Node {
	n := &Node{Kind: Select, Children: children, Span: span}
	reparent(n, children)
	return n
}

func NewOrder(children []*Node, span token.Span) *Node {
	n := &Node{Kind: OrderClause, Children: children, Span: span}
	reparent(n, children)
	return n
}

func NewGroup(children []*Node, span token.Span) *Node {
	n := &Node{Kind: Group, Children: children, Span: span}
	reparent(n, children)
	return n
}

func NewFakeGroup(span token.Span) *Node {
	return &Node{Kind: FakeGroup, Span: span}
}

func NewHaving(cond *Node, span token.Span) *Node {
	n := &Node{Kind: Having, Children: []*Node{cond}, Span: span}
	reparent(n, n.Children)
	return n
}

// NewQuery builds the top-level node. Any of the clause nodes may be nil
// except selectClause and fromClause, which the rewrite pass guarantees are
// always present (the implicit SELECT of the from-type's default columns
// and the implicit FROM cwd are filled in there, not here).
func NewQuery(selectClause, from, where, group, having, order, limit, offset *Node, span token.Span) *Node {
	n := &Node{
		Kind:     Query,
		Children: []*Node{selectClause, from, where, group, having, order, limit, offset},
		Span:     span,
	}
	reparent(n, n.Children)
	return n
}

// Query child accessors, by fixed position -- clearer at call sites than a
// magic Children index.
func (n *Node) SelectClause() *Node { return n.Children[0] }
func (n *Node) FromClause() *Node   { return n.Children[1] }
func (n *Node) WhereClause() *Node  { return n.Children[2] }
func (n *Node) GroupClause() *Node  { return n.Children[3] }
func (n *Node) HavingClause() *Node { return n.Children[4] }
func (n *Node) OrderClauseN() *Node { return n.Children[5] }
func (n *Node) LimitClause() *Node  { return n.Children[6] }
func (n *Node) OffsetClause() *Node { return n.Children[7] }

// WithChildren returns a shallow copy of n with Children replaced, and
// reparents the new children to the copy. Used by package visitor to
// rebuild a node after transforming its subtree.
func (n *Node) WithChildren(children []*Node) *Node {
	cp := *n
	cp.Children = children
	reparent(&cp, children)
	return &cp
}

// Equal reports structural (syntactic) equality, ignoring parent links and
// AggID (accumulator-slot identity, not syntax).
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ValueNode:
		if !value.KeyEqual(a.Lit, b.Lit) {
			return false
		}
	case Name:
		if ctx.Fold(a.Ident) != ctx.Fold(b.Ident) {
			return false
		}
	case Function, AggFunction:
		if ctx.Fold(a.Func) != ctx.Fold(b.Func) {
			return false
		}
	case OrderByPart:
		if a.Dir != b.Dir {
			return false
		}
	}
	if len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

var nextAggID int64

// NextAggID returns a fresh, process-unique aggregate accumulator slot ID.
// Called by the rewrite pass when lifting a Function into an AggFunction.
func NextAggID() int64 {
	nextAggID++
	return nextAggID
}
