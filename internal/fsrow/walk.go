package fsrow

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alexandershov/lsql/internal/builtin"
	"github.com/alexandershov/lsql/internal/ctx"
	"github.com/alexandershov/lsql/internal/errs"
	"github.com/alexandershov/lsql/internal/value"
)

func init() {
	builtin.RegisterTable("files", filesTableFunc)
	builtin.RegisterTableType("files", FileTableType{})
}

// entry is one (path, depth) pair queued for visiting.
type entry struct {
	path  string
	depth int
}

// frame holds one open directory's traversal state: the children still to
// be yielded as rows, and -- once that list is empty -- the subset of
// those children that were themselves directories, still to be recursed
// into (in listing order). Splitting these into two phases is what
// reproduces `walk_with_depth`'s order: a directory's own children are
// yielded as a complete batch *before* any of them is descended into.
type frame struct {
	toYield     []entry
	pendingDirs []entry
}

// Walker is a pull-based iterator over a directory tree, implementing
// builtin.RowIterator. Permission-denied subdirectories are skipped and
// recorded rather than failing the walk, per §6.3.
type Walker struct {
	stack  []frame
	denied []string
}

// Walk starts a recursive, depth-first walk of root. Symlinked directories
// are listed but not descended into; hidden entries are included. Grounded
// on `expr.py`'s `walk_with_depth`, reshaped into a pull iterator instead
// of a generator so it can be closed mid-traversal.
func Walk(root string) (*Walker, error) {
	info, err := os.Lstat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Trace(&errs.DirectoryDoesNotExist{Path: root})
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, errs.Trace(&errs.DirectoryDoesNotExist{Path: root})
	}
	// root's own direct children are depth 0 (matching walk_with_depth(root,
	// depth=0)); seeding listChildren with depth -1 here makes every
	// subsequent depth come out of the same e.depth+1 formula used when
	// expanding an ordinary discovered directory below.
	children, err := listChildren(entry{path: root, depth: -1})
	if err != nil {
		return nil, err
	}
	return &Walker{stack: []frame{{toYield: children}}}, nil
}

// Denied returns the permission-denied directories encountered so far,
// for the CLI's trailing warning report (§6.6).
func (w *Walker) Denied() []string { return w.denied }

// next pops the next row off the open frame, recursing into subdirectories
// only once the current frame's own children are exhausted.
func (w *Walker) next() (*Stat, bool, error) {
	for len(w.stack) > 0 {
		top := &w.stack[len(w.stack)-1]

		if len(top.toYield) > 0 {
			e := top.toYield[0]
			top.toYield = top.toYield[1:]
			stat, err := NewStat(e.path, e.depth)
			if err != nil {
				continue
			}
			if stat.Type() == "dir" {
				top.pendingDirs = append(top.pendingDirs, e)
			}
			return stat, true, nil
		}

		if len(top.pendingDirs) > 0 {
			d := top.pendingDirs[0]
			top.pendingDirs = top.pendingDirs[1:]
			children, err := listChildren(d)
			if err != nil {
				w.denied = append(w.denied, d.path)
				continue
			}
			w.stack = append(w.stack, frame{toYield: children})
			continue
		}

		w.stack = w.stack[:len(w.stack)-1]
	}
	return nil, false, nil
}

// listChildren lists e's direct children, skipping descent into symlinked
// directories at the caller's discretion (the caller only calls
// listChildren on entries it has already confirmed are non-symlink
// directories).
func listChildren(e entry) ([]entry, error) {
	names, err := readDirNames(e.path)
	if err != nil {
		return nil, err
	}
	children := make([]entry, len(names))
	for i, name := range names {
		children[i] = entry{path: filepath.Join(e.path, name), depth: e.depth + 1}
	}
	return children, nil
}

func readDirNames(dir string) ([]string, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.Readdirnames(-1)
}

// Next implements builtin.RowIterator.
func (w *Walker) Next() (value.Row, bool, error) {
	stat, ok, err := w.next()
	if err != nil || !ok {
		return value.Row{}, ok, err
	}
	row := value.Row{Columns: Columns, Values: make([]value.Value, len(Columns))}
	for i, col := range Columns {
		v, err := stat.Column(col)
		if err != nil {
			return value.Row{}, false, err
		}
		row.Values[i] = v
	}
	return row, true, nil
}

func (w *Walker) Close() error { return nil }

// Contexts drains the walker yielding each row's two-layer context (row
// columns over the builtin namespace) instead of a materialized Row --
// this is what the evaluator actually consumes, since most queries never
// touch most of the 23 columns and a Stat's expensive columns
// (size/text/lines) should only be computed on demand.
func (w *Walker) Contexts(builtinNS ctx.Context) (*Stat, ctx.Context, bool, error) {
	stat, ok, err := w.next()
	if err != nil || !ok {
		return nil, nil, ok, err
	}
	return stat, ctx.Merged{stat.Context(), builtinNS}, true, nil
}

func filesTableFunc(args []value.Value) (builtin.RowIterator, error) {
	dir := "."
	if len(args) == 1 {
		if value.IsNull(args[0]) {
			return nil, fmt.Errorf("files: directory argument must not be NULL")
		}
		dir = args[0].String()
	} else if len(args) > 1 {
		return nil, fmt.Errorf("files: expected at most 1 argument, got %d", len(args))
	}
	return Walk(dir)
}
