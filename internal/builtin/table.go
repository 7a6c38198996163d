package builtin

import (
	"fmt"

	"github.com/alexandershov/lsql/internal/ctx"
	"github.com/alexandershov/lsql/internal/value"
)

// RowIterator is a pull-based source of rows, matching the row-source
// contract (SPEC_FULL.md §6.3): each Next call blocks until a row is ready,
// an error, or exhaustion. Close releases any held resources (open
// directory handles) on every exit path.
type RowIterator interface {
	Next() (value.Row, bool, error)
	Close() error
}

// TableFunc is a virtual-table builtin: given its call arguments (already
// evaluated), it returns a row source instead of a scalar Value.
type TableFunc func(args []value.Value) (RowIterator, error)

// tableFuncs is populated by RegisterTable, not a literal, so that
// internal/fsrow (the walker/row-type package) can register "files"
// without this package importing it -- the dependency runs the other way,
// matching how database/sql drivers register themselves instead of
// database/sql importing every driver.
var tableFuncs = map[string]TableFunc{}

// RegisterTable adds a virtual table to the builtin namespace. Called once
// at startup, from internal/fsrow's init function.
func RegisterTable(name string, fn TableFunc) {
	tableFuncs[name] = fn
}

// RowType describes a virtual table's declared row shape statically --
// the columns `SELECT *` expands to and the columns an entirely implicit
// SELECT defaults to -- without evaluating the table, matching §4.4 step
// 2's "evaluate the from-expression's declared row type in the built-in
// scope".
type RowType interface {
	StarColumns() []string
	DefaultColumns() []string
	AllColumns() []string
}

// rowTypes is populated by RegisterTableType, mirroring tableFuncs'
// registration pattern.
var rowTypes = map[string]RowType{}

// RegisterTableType associates a virtual table's name with its declared
// row type, for the rewrite pass's static SELECT-expansion step. Call
// alongside RegisterTable for any table that SELECT * or implicit SELECT
// needs to expand against.
func RegisterTableType(name string, t RowType) {
	rowTypes[name] = t
}

// TableType looks up a previously registered row type by table name.
func TableType(name string) (RowType, bool) {
	t, ok := rowTypes[name]
	return t, ok
}

// CallTable invokes a registered virtual table by name with already
// evaluated arguments, for the evaluator's row-source stage (SPEC_FULL.md
// §4.5 stage 1).
func CallTable(name string, args []value.Value) (RowIterator, error) {
	fn, ok := tableFuncs[ctx.Fold(name)]
	if !ok {
		return nil, fmt.Errorf("unknown table function: %s", name)
	}
	return fn(args)
}
