// Package ctx implements the immutable, case-insensitive, layered name
// scopes the evaluator threads through expression evaluation: row columns,
// the builtin namespace, and the outer (CLI-supplied) names such as "cwd".
//
// A Context is deliberately untyped (interface{}) in what it stores: it
// holds runtime values for columns and constants, but also holds function
// and aggregate-factory objects for names bound to callables, mirroring the
// reference implementation's single flat namespace of values and callables.
package ctx

import "golang.org/x/text/cases"

var fold = cases.Fold()

// Context is a read-only, case-insensitive name scope.
type Context interface {
	// Get returns the value bound to name and whether it was found. name is
	// folded to a canonical case before lookup.
	Get(name string) (interface{}, bool)
}

// Map is a flat Context backed by a Go map. Keys are stored already
// case-folded; use NewMap to build one correctly.
type Map struct {
	m map[string]interface{}
}

// NewMap builds a Map from name->value pairs, case-folding every key.
func NewMap(entries map[string]interface{}) *Map {
	m := make(map[string]interface{}, len(entries))
	for k, v := range entries {
		m[Fold(k)] = v
	}
	return &Map{m: m}
}

// Get implements Context.
func (c *Map) Get(name string) (interface{}, bool) {
	v, ok := c.m[Fold(name)]
	return v, ok
}

// Set mutates the map in place. Used only while assembling the outer/
// builtin contexts at startup; once handed to the evaluator a Context is
// treated as read-only (see SPEC_FULL.md §5).
func (c *Map) Set(name string, v interface{}) {
	c.m[Fold(name)] = v
}

// Fold case-folds a name for lookup, using Unicode case folding rather than
// ASCII-only lower-casing.
func Fold(name string) string {
	return fold.String(name)
}

// Merged composes contexts in construction order; lookup stops at the
// first layer that has the name. The evaluator uses a two-layer
// Merged{row, builtin} context per row.
type Merged []Context

// Get implements Context.
func (m Merged) Get(name string) (interface{}, bool) {
	for _, c := range m {
		if c == nil {
			continue
		}
		if v, ok := c.Get(name); ok {
			return v, ok
		}
	}
	return nil, false
}

// empty is the always-absent base Context.
type empty struct{}

// Empty is the dedicated always-absent Context.
var Empty Context = empty{}

func (empty) Get(string) (interface{}, bool) { return nil, false }
