package ast

import (
	"testing"

	"github.com/alexandershov/lsql/internal/value"
	"github.com/alexandershov/lsql/token"
	"github.com/stretchr/testify/assert"
)

func span(offset int) token.Span {
	return token.Span{Start: token.Pos{Offset: offset}, End: token.Pos{Offset: offset + 1}}
}

func TestEqualIgnoresSpanAndAggID(t *testing.T) {
	a := NewValue(value.Int(1), span(0))
	b := NewValue(value.Int(1), span(10))
	assert.True(t, Equal(a, b))

	f1 := NewAggFunction("sum", []*Node{NewName("size", span(0))}, 1, span(0))
	f2 := NewAggFunction("sum", []*Node{NewName("size", span(0))}, 99, span(0))
	assert.True(t, Equal(f1, f2))
}

func TestEqualDiffersOnName(t *testing.T) {
	a := NewName("size", span(0))
	b := NewName("path", span(0))
	assert.False(t, Equal(a, b))
}

func TestEqualDiffersOnKind(t *testing.T) {
	a := NewName("size", span(0))
	b := NewValue(value.NewStr("size"), span(0))
	assert.False(t, Equal(a, b))
}

func TestWithChildrenReparents(t *testing.T) {
	child := NewValue(value.Int(1), span(0))
	and := NewAnd(child, NewValue(value.Int(2), span(0)), span(0))
	newChild := NewValue(value.Int(3), span(0))
	cp := and.WithChildren([]*Node{newChild, and.Children[1]})
	assert.Same(t, cp, newChild.Parent())
	assert.NotSame(t, and, cp)
}

func TestNextAggIDIsUnique(t *testing.T) {
	a := NextAggID()
	b := NextAggID()
	assert.NotEqual(t, a, b)
}
