// Package visitor provides AST traversal and rewriting utilities.
package visitor

import "github.com/alexandershov/lsql/ast"

// Visitor is the interface for AST traversal.
type Visitor interface {
	Visit(node *ast.Node) Visitor
}

// Walk traverses an AST in depth-first order. Since every node shares the
// same Node type, descent just follows Children -- there is no per-
// production shape to switch on.
func Walk(v Visitor, node *ast.Node) {
	if node == nil {
		return
	}
	if v = v.Visit(node); v == nil {
		return
	}
	for _, child := range node.Children {
		Walk(v, child)
	}
}

// WalkFunc is a convenience wrapper that calls a function for each node.
func WalkFunc(node *ast.Node, fn func(*ast.Node) bool) {
	Walk(&funcVisitor{fn: fn}, node)
}

type funcVisitor struct {
	fn func(*ast.Node) bool
}

func (v *funcVisitor) Visit(node *ast.Node) Visitor {
	if v.fn(node) {
		return v
	}
	return nil
}

// Inspect calls f for each node in the AST. If f returns false, children
// are not visited.
func Inspect(node *ast.Node, f func(*ast.Node) bool) {
	WalkFunc(node, f)
}

// Find returns the first node for which match reports true, in depth-first
// order, or nil if none matches.
func Find(node *ast.Node, match func(*ast.Node) bool) *ast.Node {
	var found *ast.Node
	Inspect(node, func(n *ast.Node) bool {
		if found != nil {
			return false
		}
		if match(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// Contains reports whether any node in the subtree rooted at node is
// ast.Equal to target.
func Contains(node, target *ast.Node) bool {
	return Find(node, func(n *ast.Node) bool { return ast.Equal(n, target) }) != nil
}
