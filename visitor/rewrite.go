package visitor

import "github.com/alexandershov/lsql/ast"

// Transformer replaces a single node. Visit is called with the original,
// untransformed node -- it must not assume its children have already been
// rewritten. Returning nil leaves a nil entry at the node's position in
// its parent's children (see Rewrite).
type Transformer interface {
	Visit(node *ast.Node) *ast.Node
}

// TransformerFunc adapts a plain function to a Transformer.
type TransformerFunc func(*ast.Node) *ast.Node

func (f TransformerFunc) Visit(node *ast.Node) *ast.Node { return f(node) }

// Rewrite transforms node and its subtree in two independent passes per
// node: first Visit is applied to the node as originally parsed, then each
// child is rewritten (recursively, on its own original form) and the
// results are reattached to whatever Visit returned. This mirrors the
// reference implementation's Node.transform, which replaces a node's
// identity without presupposing what its rewritten children will look
// like -- the rewrite pass's rules are written against original shapes
// (e.g. "is this a bare Function node named like an aggregate") and would
// misfire if a child had already been rewritten out from under them.
//
// Child positions are always preserved: Query's eight clause slots are
// addressed by fixed index (see ast.Node's accessor methods), and a nil
// clause must stay nil in place rather than shift its siblings. Returning
// nil for a non-nil child leaves a nil hole at that position in the
// parent's rebuilt Children rather than shrinking the slice; callers that
// walk a variable-arity list (a Select's projections, a Group's keys)
// should skip nil entries.
func Rewrite(node *ast.Node, t Transformer) *ast.Node {
	if node == nil {
		return nil
	}
	result := t.Visit(node)
	children := make([]*ast.Node, len(node.Children))
	for i, child := range node.Children {
		children[i] = Rewrite(child, t)
	}
	if result == nil {
		return nil
	}
	return result.WithChildren(children)
}
