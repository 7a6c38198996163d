package eval

import (
	"github.com/alexandershov/lsql/internal/builtin"
	"github.com/alexandershov/lsql/internal/ctx"
	"github.com/alexandershov/lsql/internal/fsrow"
	"github.com/alexandershov/lsql/internal/value"
)

// rowSource adapts a builtin.RowIterator into a stream of per-row
// contexts layered over outer (builtins plus external names such as
// cwd). When the concrete iterator is an *fsrow.Walker it drains it
// through Contexts instead of Next, keeping the lazy per-column Stat
// access §4.5 describes; any other virtual table falls back to
// materializing each value.Row and wrapping it.
type rowSource struct {
	walker *fsrow.Walker
	it     builtin.RowIterator
	outer  ctx.Context
}

func newRowSource(it builtin.RowIterator, outer ctx.Context) *rowSource {
	w, _ := it.(*fsrow.Walker)
	return &rowSource{walker: w, it: it, outer: outer}
}

func (rs *rowSource) next() (ctx.Context, bool, error) {
	if rs.walker != nil {
		_, c, ok, err := rs.walker.Contexts(rs.outer)
		return c, ok, err
	}
	row, ok, err := rs.it.Next()
	if err != nil || !ok {
		return nil, ok, err
	}
	return ctx.Merged{rowValuesContext(row), rs.outer}, true, nil
}

func (rs *rowSource) Close() error { return rs.it.Close() }

// denied reports the permission-denied directories the underlying walker
// skipped, when it tracks them (only *fsrow.Walker does today).
func (rs *rowSource) denied() []string {
	if rs.walker == nil {
		return nil
	}
	return rs.walker.Denied()
}

// rowValuesContext adapts a materialized value.Row to ctx.Context for
// table functions that don't expose fsrow's lazy per-column path.
type rowValuesContext value.Row

func (r rowValuesContext) Get(name string) (interface{}, bool) {
	folded := ctx.Fold(name)
	for i, col := range r.Columns {
		if ctx.Fold(col) == folded {
			return r.Values[i], true
		}
	}
	return nil, false
}
