// Package agg implements the running accumulators behind COUNT, SUM, MIN,
// MAX, and AVG. An accumulator is fed one argument value per row in its
// group, in row order, and produces a final Value on demand.
//
// Accumulators are kept out of the AST itself: the rewrite pass tags each
// lifted aggregate call with a stable ID (see ast.Node.AggID), and the
// evaluator owns a map from that ID to a fresh Accumulator per group. This
// keeps AST nodes immutable and reusable across groups.
package agg

import "github.com/alexandershov/lsql/internal/value"

// Accumulator consumes argument values in row order and reports a result.
// Value is safe to call at any time, including before Feed has ever been
// called (an empty group), and does not reset or mutate state.
type Accumulator interface {
	Feed(v value.Value)
	Value() value.Value
}

// Factory builds a fresh Accumulator for a new group. The registry in
// internal/builtin maps aggregate function names to a Factory.
type Factory func() Accumulator

// Factories is the fixed set of aggregate functions this system recognizes,
// keyed by their case-folded name.
var Factories = map[string]Factory{
	"count": func() Accumulator { return &countAcc{} },
	"sum":   func() Accumulator { return &sumAcc{} },
	"min":   func() Accumulator { return &minMaxAcc{less: value.OrderLess} },
	"max":   func() Accumulator { return &minMaxAcc{less: func(a, b value.Value) bool { return value.OrderLess(b, a) }} },
	"avg":   func() Accumulator { return &avgAcc{} },
}

// countAcc counts fed values, including NULLs -- COUNT(*) is rewritten
// upstream into COUNT(1), so every row feeds a non-NULL literal and every
// fed value counts.
type countAcc struct {
	n int64
}

func (a *countAcc) Feed(value.Value) { a.n++ }
func (a *countAcc) Value() value.Value { return value.Int(a.n) }

// sumAcc sums fed numeric values, skipping NULLs. An all-NULL or empty
// group sums to 0, not NULL.
type sumAcc struct {
	sum   float64
	isInt bool
	seen  bool
}

func (a *sumAcc) Feed(v value.Value) {
	if value.IsNull(v) {
		return
	}
	if !a.seen {
		a.isInt = true
	}
	switch x := v.(type) {
	case value.Int:
		a.sum += float64(x)
	case value.Float:
		a.sum += float64(x)
		a.isInt = false
	default:
		return
	}
	a.seen = true
}

func (a *sumAcc) Value() value.Value {
	if !a.seen {
		return value.Int(0)
	}
	if a.isInt {
		return value.Int(int64(a.sum))
	}
	return value.Float(a.sum)
}

// minMaxAcc tracks the extreme fed value under less, skipping NULLs. An
// all-NULL or empty group yields NULL.
type minMaxAcc struct {
	less  func(a, b value.Value) bool
	best  value.Value
	seen  bool
}

func (a *minMaxAcc) Feed(v value.Value) {
	if value.IsNull(v) {
		return
	}
	if !a.seen || a.less(v, a.best) {
		a.best = v
		a.seen = true
	}
}

func (a *minMaxAcc) Value() value.Value {
	if !a.seen {
		return value.NullValue
	}
	return a.best
}

// avgAcc computes the mean of fed numeric values, skipping NULLs. An
// all-NULL or empty group averages to NULL -- a deliberate correction over
// dividing by a zero count (see DESIGN.md).
type avgAcc struct {
	sum   float64
	count int64
}

func (a *avgAcc) Feed(v value.Value) {
	switch x := v.(type) {
	case value.Int:
		a.sum += float64(x)
		a.count++
	case value.Float:
		a.sum += float64(x)
		a.count++
	}
}

func (a *avgAcc) Value() value.Value {
	if a.count == 0 {
		return value.NullValue
	}
	return value.Float(a.sum / float64(a.count))
}
