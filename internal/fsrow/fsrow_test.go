package fsrow

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alexandershov/lsql/internal/errs"
	"github.com/alexandershov/lsql/internal/statcache"
	"github.com/alexandershov/lsql/internal/value"
	jujuerrors "github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWalkYieldsChildrenBeforeDescending(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "a"), 0o755))
	writeFile(t, filepath.Join(root, "a", "nested.txt"), "x")
	writeFile(t, filepath.Join(root, "b.txt"), "y")

	w, err := Walk(root)
	require.NoError(t, err)

	var paths []string
	var depths []int
	for {
		stat, ok, err := w.next()
		require.NoError(t, err)
		if !ok {
			break
		}
		paths = append(paths, stat.Path())
		depths = append(depths, stat.Depth())
	}

	require.Len(t, paths, 3)
	// both top-level entries are yielded before the nested file.
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "a"), filepath.Join(root, "b.txt"),
	}, paths[:2])
	assert.Equal(t, filepath.Join(root, "a", "nested.txt"), paths[2])
	assert.Equal(t, 0, depths[0])
	assert.Equal(t, 0, depths[1])
	assert.Equal(t, 1, depths[2])
}

func TestWalkDoesNotDescendIntoSymlinkedDirectory(t *testing.T) {
	root := t.TempDir()
	real := filepath.Join(root, "real")
	require.NoError(t, os.Mkdir(real, 0o755))
	writeFile(t, filepath.Join(real, "inside.txt"), "z")
	require.NoError(t, os.Symlink(real, filepath.Join(root, "link")))

	w, err := Walk(root)
	require.NoError(t, err)

	var paths []string
	for {
		stat, ok, err := w.next()
		require.NoError(t, err)
		if !ok {
			break
		}
		paths = append(paths, stat.Path())
	}
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "real"), filepath.Join(root, "link"), filepath.Join(root, "real", "inside.txt"),
	}, paths)
}

func TestWalkNonexistentRootErrors(t *testing.T) {
	_, err := Walk(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
	dne, ok := jujuerrors.Cause(err).(*errs.DirectoryDoesNotExist)
	require.True(t, ok)
	assert.Contains(t, dne.Path, "does-not-exist")
}

func TestStatTypeTags(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "f.txt"), "hello")
	stat, err := NewStat(filepath.Join(root, "f.txt"), 0)
	require.NoError(t, err)
	assert.Equal(t, "file", stat.Type())
}

func TestStatColumnNameAndExtension(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.go"), "package main")
	stat, err := NewStat(filepath.Join(root, "main.go"), 0)
	require.NoError(t, err)

	name, err := stat.Column("name")
	require.NoError(t, err)
	assert.Equal(t, "main.go", name.String())

	ext, err := stat.Column("extension")
	require.NoError(t, err)
	assert.Equal(t, "go", ext.String())

	noExt, err := stat.Column("no_ext")
	require.NoError(t, err)
	assert.Equal(t, "main", noExt.String())
}

func TestStatColumnAliasesResolveViaContext(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.go"), "package main")
	stat, err := NewStat(filepath.Join(root, "main.go"), 0)
	require.NoError(t, err)

	rc := stat.Context()
	v, ok := rc.Get("Ext")
	require.True(t, ok)
	assert.Equal(t, "go", v.(value.Value).String())

	v, ok = rc.Get("IS_EXEC")
	require.True(t, ok)
	_ = v
}

func TestStatTextAndLinesNullForDirectory(t *testing.T) {
	root := t.TempDir()
	stat, err := NewStat(root, 0)
	require.NoError(t, err)

	text, err := stat.Column("text")
	require.NoError(t, err)
	assert.True(t, value.IsNull(text))

	lines, err := stat.Column("lines")
	require.NoError(t, err)
	assert.True(t, value.IsNull(lines))
}

func TestStatLinesSplitsOnNewline(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "multi.txt"), "one\ntwo\nthree")
	stat, err := NewStat(filepath.Join(root, "multi.txt"), 0)
	require.NoError(t, err)

	lines, err := stat.Column("lines")
	require.NoError(t, err)
	list, ok := lines.(value.List)
	require.True(t, ok)
	require.Len(t, list, 3)
	assert.Equal(t, "one", list[0].String())
	assert.Equal(t, "three", list[2].String())
}

func TestStatSizeSumsDirectoryContents(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "12345")
	writeFile(t, filepath.Join(root, "b.txt"), "123")
	stat, err := NewStat(root, 0)
	require.NoError(t, err)
	size, err := stat.Column("size")
	require.NoError(t, err)
	assert.Equal(t, value.Int(8), size)
}

func TestFileTableTypeColumns(t *testing.T) {
	var ft FileTableType
	assert.Equal(t, []string{"mode", "owner", "size", "mtime", "path"}, ft.StarColumns())
	assert.Equal(t, []string{"name"}, ft.DefaultColumns())
}

func TestStatSizePopulatesAndServesCache(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "12345")

	c, err := statcache.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer c.Close()
	UseCache(c)
	defer UseCache(nil)

	first, err := NewStat(root, 0)
	require.NoError(t, err)
	size, err := first.Size()
	require.NoError(t, err)
	require.EqualValues(t, 5, size)

	fi, err := os.Lstat(root)
	require.NoError(t, err)
	absRoot, err := filepath.Abs(root)
	require.NoError(t, err)
	cached, ok := c.Get(absRoot, fi)
	require.True(t, ok, "Size should have populated the cache under the directory's own Lstat fingerprint")
	require.EqualValues(t, 5, cached)

	second, err := NewStat(root, 0)
	require.NoError(t, err)
	sizeAgain, err := second.Size()
	require.NoError(t, err)
	require.EqualValues(t, 5, sizeAgain, "an unmodified directory's size should come back the same whether served from cache or recomputed")
}
