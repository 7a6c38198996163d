// Package fsrow implements the filesystem-stat row type and its
// directory walker: the one concrete row source this query engine reads
// from. Grounded on `original_source/lsql/expr.py`'s `Stat` class and
// `walk_with_depth` generator, translated into the fixed-schema,
// lazily-computed Go shape SPEC_FULL.md §3 describes.
package fsrow

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strconv"

	"github.com/alexandershov/lsql/internal/ctx"
	"github.com/alexandershov/lsql/internal/statcache"
	"github.com/alexandershov/lsql/internal/value"
)

// dirCache is the opt-in recursive-directory-size cache, wired in by the
// CLI driver via UseCache when --cache is given. Never touched by the
// core query engine; nil means "no cache, always recompute".
var dirCache *statcache.Cache

// UseCache sets (or, with a nil c, clears) the on-disk cache Size
// consults before recursively summing a directory's contents.
func UseCache(c *statcache.Cache) { dirCache = c }

// Columns lists every column the file-stat row exposes, in the order of
// the row Walker.Next materializes -- this is NOT StarColumns (see
// FileTableType): Columns is the full schema, StarColumns is the
// five-column summary a bare `*` actually expands to.
var Columns = []string{
	"fullpath", "size", "owner", "path", "fulldir", "dir", "name",
	"extension", "no_ext", "mode", "group", "atime", "mtime", "ctime",
	"birthtime", "depth", "type", "device", "hardlinks", "inode",
	"text", "lines", "is_executable",
}

// aliases maps a shorthand column name to its canonical one; both resolve
// to the same value (§3: "ext and is_exec are aliases resolved before
// access").
var aliases = map[string]string{
	"ext":     "extension",
	"is_exec": "is_executable",
}

// FileTableType describes the file-stat row type's two special column
// lists: the set `SELECT *` expands to, and the set an entirely implicit
// SELECT defaults to, both grounded on `expr.py`'s `FileTableContext`
// (`star_columns` = `Stat.MAIN_ATTRS`, `default_columns` = `['name']`).
type FileTableType struct{}

func (FileTableType) StarColumns() []string    { return []string{"mode", "owner", "size", "mtime", "path"} }
func (FileTableType) DefaultColumns() []string { return []string{"name"} }
func (FileTableType) AllColumns() []string     { return Columns }

// Stat is one filesystem entry, with expensive/rarely-needed columns
// computed lazily and cached on first access within the row's lifetime.
type Stat struct {
	relPath string
	depth   int
	info    os.FileInfo // from Lstat: never follows the entry itself

	sizeOnce  bool
	size      int64
	sizeErr   error
	textOnce  bool
	text      []byte
	textErr   error
	typeOnce  bool
	typeTag   string
	tagsOnce  bool
	tags      map[string]bool
}

// NewStat lstats relPath (relative to the process working directory, per
// §6.3) and pairs it with its walk depth.
func NewStat(relPath string, depth int) (*Stat, error) {
	info, err := os.Lstat(relPath)
	if err != nil {
		return nil, fmt.Errorf("fsrow: %w", err)
	}
	return &Stat{relPath: relPath, depth: depth, info: info}, nil
}

func (s *Stat) Path() string { return s.relPath }
func (s *Stat) Depth() int   { return s.depth }

func (s *Stat) fullPath() string {
	abs, err := filepath.Abs(s.relPath)
	if err != nil {
		return s.relPath
	}
	return abs
}

// Type classifies the entry per §3's tag set: a symlink is reported as
// "link" regardless of what it points to (matching `expr.py`'s
// `os.path.islink` check running *before* `isdir`/`isfile`, so a symlinked
// directory is "link", not "dir").
func (s *Stat) Type() string {
	if s.typeOnce {
		return s.typeTag
	}
	s.typeOnce = true
	switch {
	case s.info.Mode()&os.ModeSymlink != 0:
		s.typeTag = "link"
	case s.info.IsDir():
		s.typeTag = "dir"
	case s.info.Mode().IsRegular():
		s.typeTag = "file"
	case s.isMountPoint():
		s.typeTag = "mount"
	default:
		s.typeTag = "unknown"
	}
	return s.typeTag
}

// isMountPoint reports whether relPath's device differs from its parent
// directory's -- the one case `expr.py`'s `os.path.ismount` catches that
// islink/isdir/isfile don't (e.g. a bind-mounted special file).
func (s *Stat) isMountPoint() bool {
	parent := filepath.Dir(s.relPath)
	parentInfo, err := os.Lstat(parent)
	if err != nil {
		return false
	}
	return devOf(s.info) != devOf(parentInfo)
}

func (s *Stat) isExecutable() bool {
	return s.info.Mode()&0o100 != 0 // owner execute bit, matching S_IXUSR
}

func (s *Stat) tagSet() map[string]bool {
	if s.tagsOnce {
		return s.tags
	}
	s.tagsOnce = true
	s.tags = map[string]bool{s.Type(): true}
	if s.isExecutable() {
		s.tags["exec"] = true
	}
	return s.tags
}

func (s *Stat) tagged(str string) value.Str {
	tags := s.tagSet()
	names := make([]string, 0, len(tags))
	for t := range tags {
		names = append(names, t)
	}
	return value.Tagged(str, names...)
}

// Size returns the entry's byte size, recursively summing regular-file
// sizes for a directory (matching `expr.py`'s `get_dir_size`); this is the
// one column whose cost scales with subtree size rather than being O(1).
func (s *Stat) Size() (int64, error) {
	if s.sizeOnce {
		return s.size, s.sizeErr
	}
	s.sizeOnce = true
	if s.Type() != "dir" {
		s.size = s.info.Size()
		return s.size, nil
	}
	if dirCache != nil {
		if cached, ok := dirCache.Get(s.fullPath(), s.info); ok {
			s.size = cached
			return s.size, nil
		}
	}
	var total int64
	walkErr := filepath.Walk(s.relPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // permission-denied subentries don't fail a size computation
		}
		if info.Mode().IsRegular() {
			total += info.Size()
		}
		return nil
	})
	if walkErr != nil {
		s.sizeErr = walkErr
	}
	s.size = total
	if dirCache != nil && walkErr == nil {
		dirCache.Put(s.fullPath(), s.info, total)
	}
	return s.size, s.sizeErr
}

// Text reads the whole file's contents; NULL for anything but a regular
// file, matching `expr.py`'s `text` property (NULL for directories).
func (s *Stat) Text() ([]byte, bool, error) {
	if s.Type() != "file" {
		return nil, false, nil
	}
	if s.textOnce {
		return s.text, true, s.textErr
	}
	s.textOnce = true
	s.text, s.textErr = os.ReadFile(s.relPath)
	return s.text, true, s.textErr
}

func ownerName(uid uint32) string {
	u, err := user.LookupId(strconv.FormatUint(uint64(uid), 10))
	if err != nil {
		return strconv.FormatUint(uint64(uid), 10)
	}
	return u.Username
}

func groupName(gid uint32) string {
	g, err := user.LookupGroupId(strconv.FormatUint(uint64(gid), 10))
	if err != nil {
		return strconv.FormatUint(uint64(gid), 10)
	}
	return g.Name
}

// Column resolves one (possibly aliased) column name against the
// row's lazily-computed values. Name folding/alias resolution is the
// caller's (rowContext's) job; Column expects a canonical lowercase name.
func (s *Stat) Column(name string) (value.Value, error) {
	switch name {
	case "fullpath":
		return s.tagged(s.fullPath()), nil
	case "path":
		return s.tagged(s.relPath), nil
	case "fulldir":
		return value.NewStr(filepath.Dir(s.fullPath())), nil
	case "dir":
		return value.NewStr(filepath.Dir(s.relPath)), nil
	case "name":
		return s.tagged(filepath.Base(s.relPath)), nil
	case "extension":
		ext := filepath.Ext(s.relPath)
		if ext != "" {
			ext = ext[1:]
		}
		return value.NewStr(ext), nil
	case "no_ext":
		base := filepath.Base(s.relPath)
		ext := filepath.Ext(base)
		return s.tagged(base[:len(base)-len(ext)]), nil
	case "mode":
		return value.Mode(rawModeOf(s.info)), nil
	case "size":
		n, err := s.Size()
		if err != nil {
			return nil, err
		}
		return value.Int(n), nil
	case "owner":
		return value.NewStr(ownerName(uidOf(s.info))), nil
	case "group":
		return value.NewStr(groupName(gidOf(s.info))), nil
	case "atime":
		return value.Timestamp(atimeOf(s.info)), nil
	case "mtime":
		return value.Timestamp(s.info.ModTime()), nil
	case "ctime":
		return value.Timestamp(ctimeOf(s.info)), nil
	case "birthtime":
		t, err := birthtimeOf(s.info)
		if err != nil {
			return nil, err
		}
		return value.Timestamp(t), nil
	case "depth":
		return value.Int(s.depth), nil
	case "type":
		return value.NewStr(s.Type()), nil
	case "device":
		return value.Int(int64(devOf(s.info))), nil
	case "hardlinks":
		return value.Int(int64(nlinkOf(s.info))), nil
	case "inode":
		return value.Int(int64(inoOf(s.info))), nil
	case "text":
		b, ok, err := s.Text()
		if err != nil {
			return nil, err
		}
		if !ok {
			return value.NullValue, nil
		}
		return value.Bytes(b), nil
	case "lines":
		b, ok, err := s.Text()
		if err != nil {
			return nil, err
		}
		if !ok {
			return value.NullValue, nil
		}
		return splitLines(b), nil
	case "is_executable":
		return value.Bool(s.isExecutable()), nil
	}
	return nil, fmt.Errorf("unknown column: %s", name)
}

func splitLines(b []byte) value.List {
	var lines value.List
	start := 0
	for i, c := range b {
		if c == '\n' {
			lines = append(lines, value.NewStr(string(b[start:i])))
			start = i + 1
		}
	}
	if start < len(b) {
		lines = append(lines, value.NewStr(string(b[start:])))
	}
	return lines
}

// rowContext adapts a Stat to ctx.Context, resolving aliases and case
// folding before delegating to Column.
type rowContext struct {
	stat *Stat
}

// Context returns a case-insensitive name scope over this row's columns.
func (s *Stat) Context() ctx.Context { return rowContext{stat: s} }

func (rc rowContext) Get(name string) (interface{}, bool) {
	folded := ctx.Fold(name)
	if canon, ok := aliases[folded]; ok {
		folded = canon
	}
	v, err := rc.stat.Column(folded)
	if err != nil {
		return nil, false
	}
	return v, true
}
