package statcache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	dir := t.TempDir()
	c, err := Open(filepath.Join(dir, "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func lstatSelf(t *testing.T, path string) os.FileInfo {
	t.Helper()
	fi, err := os.Lstat(path)
	require.NoError(t, err)
	return fi
}

func TestGetMissOnEmptyCache(t *testing.T) {
	c := openTestCache(t)
	dir := t.TempDir()
	_, ok := c.Get(dir, lstatSelf(t, dir))
	require.False(t, ok)
}

func TestPutThenGetHits(t *testing.T) {
	c := openTestCache(t)
	dir := t.TempDir()
	fi := lstatSelf(t, dir)

	require.NoError(t, c.Put(dir, fi, 1234))

	got, ok := c.Get(dir, fi)
	require.True(t, ok)
	require.EqualValues(t, 1234, got)
}

func TestGetMissWhenMtimeChanges(t *testing.T) {
	c := openTestCache(t)
	dir := t.TempDir()
	fi := lstatSelf(t, dir)
	require.NoError(t, c.Put(dir, fi, 1234))

	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(dir, future, future))

	_, ok := c.Get(dir, lstatSelf(t, dir))
	require.False(t, ok)
}
