package eval

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexandershov/lsql/internal/builtin"
	"github.com/alexandershov/lsql/internal/ctx"
	_ "github.com/alexandershov/lsql/internal/fsrow"
	"github.com/alexandershov/lsql/internal/rewrite"
	"github.com/alexandershov/lsql/internal/value"
	"github.com/alexandershov/lsql/parser"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func run(t *testing.T, dir, src string) *Table {
	t.Helper()
	q, err := parser.Parse(src)
	require.NoError(t, err, src)
	built, err := rewrite.Build(q)
	require.NoError(t, err, src)
	outer := ctx.Merged{
		ctx.NewMap(map[string]interface{}{"cwd": value.NewStr(dir)}),
		builtin.Namespace(time.Now()),
	}
	table, err := Run(built, outer)
	require.NoError(t, err, src)
	return table
}

func names(t *testing.T, table *Table) []string {
	t.Helper()
	idx := -1
	for i, c := range table.Columns {
		if c == "name" {
			idx = i
		}
	}
	require.NotEqual(t, -1, idx, "no name column in %v", table.Columns)
	var out []string
	for _, r := range table.Rows {
		out = append(out, r.Values[idx].String())
	}
	return out
}

func TestSelectNameListsTopLevelEntries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "x")
	writeFile(t, filepath.Join(dir, "b.txt"), "yy")

	table := run(t, dir, "select name")
	require.Equal(t, []string{"name"}, table.Columns)
	require.ElementsMatch(t, []string{"a.txt", "b.txt"}, names(t, table))
}

func TestWhereFiltersBySize(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "small.txt"), "x")
	writeFile(t, filepath.Join(dir, "big.txt"), "this is much bigger")

	table := run(t, dir, "select name where size > 5")
	require.Equal(t, []string{"big.txt"}, names(t, table))
}

func TestOrderByNameDesc(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "x")
	writeFile(t, filepath.Join(dir, "b.txt"), "x")
	writeFile(t, filepath.Join(dir, "c.txt"), "x")

	table := run(t, dir, "select name order by name desc")
	require.Equal(t, []string{"c.txt", "b.txt", "a.txt"}, names(t, table))
}

func TestLimitAndOffset(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"a.txt", "b.txt", "c.txt", "d.txt"} {
		writeFile(t, filepath.Join(dir, n), "x")
	}

	table := run(t, dir, "select name order by name limit 2 offset 1")
	require.Equal(t, []string{"b.txt", "c.txt"}, names(t, table))
}

func TestCountStarOverWholeTable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "x")
	writeFile(t, filepath.Join(dir, "b.txt"), "x")

	table := run(t, dir, "select count(*)")
	require.Len(t, table.Rows, 1)
	require.Equal(t, value.Int(2), table.Rows[0].Values[0])
}

func TestCountStarOverEmptyDirectoryStillEmitsOneRow(t *testing.T) {
	dir := t.TempDir()

	table := run(t, dir, "select count(*)")
	require.Len(t, table.Rows, 1)
	require.Equal(t, value.Int(0), table.Rows[0].Values[0])
}

func TestGroupByExtensionCountsPerGroup(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.go"), "x")
	writeFile(t, filepath.Join(dir, "b.go"), "x")
	writeFile(t, filepath.Join(dir, "c.md"), "x")

	table := run(t, dir, "select extension, count(*) group by extension order by extension")
	require.Len(t, table.Rows, 2)
	require.Equal(t, value.NewStr("go"), table.Rows[0].Values[0])
	require.Equal(t, value.Int(2), table.Rows[0].Values[1])
	require.Equal(t, value.NewStr("md"), table.Rows[1].Values[0])
	require.Equal(t, value.Int(1), table.Rows[1].Values[1])
}

func TestHavingDropsGroupsBelowThreshold(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.go"), "x")
	writeFile(t, filepath.Join(dir, "b.go"), "x")
	writeFile(t, filepath.Join(dir, "c.md"), "x")

	table := run(t, dir, "select extension, count(*) group by extension having count(*) > 1")
	require.Len(t, table.Rows, 1)
	require.Equal(t, value.NewStr("go"), table.Rows[0].Values[0])
}

func TestNullsSortFirstRegardlessOfDirection(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "hello")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	table := run(t, dir, "select name order by text desc")
	require.Len(t, table.Rows, 2)
	require.Equal(t, "sub", table.Rows[0].Values[0].String())
}

func TestWhereNotNegatesCondition(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "small.txt"), "x")
	writeFile(t, filepath.Join(dir, "big.txt"), "this is much bigger")

	table := run(t, dir, "select name where not (size > 5)")
	require.Equal(t, []string{"small.txt"}, names(t, table))
}

func TestWhereIsNullAndIsNotNull(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "hello")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	table := run(t, dir, "select name where text is null")
	require.Equal(t, []string{"sub"}, names(t, table))

	table = run(t, dir, "select name where text is not null")
	require.Equal(t, []string{"a.txt"}, names(t, table))

	table = run(t, dir, "select name where text isnull")
	require.Equal(t, []string{"sub"}, names(t, table))

	table = run(t, dir, "select name where text notnull")
	require.Equal(t, []string{"a.txt"}, names(t, table))
}

func TestWhereNotInExcludesListedNames(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "x")
	writeFile(t, filepath.Join(dir, "b.txt"), "x")
	writeFile(t, filepath.Join(dir, "c.txt"), "x")

	table := run(t, dir, "select name where name not in ('a.txt', 'b.txt') order by name")
	require.Equal(t, []string{"c.txt"}, names(t, table))
}

func TestWhereNotBetweenExcludesRange(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "x")
	writeFile(t, filepath.Join(dir, "bb.txt"), "xx")
	writeFile(t, filepath.Join(dir, "ccc.txt"), "xxx")

	table := run(t, dir, "select name where size not between 2 and 3 order by name")
	require.Equal(t, []string{"a.txt"}, names(t, table))
}

func TestWhereNotLikeExcludesMatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "x")
	writeFile(t, filepath.Join(dir, "b.md"), "x")

	table := run(t, dir, "select name where name not like '%.txt' order by name")
	require.Equal(t, []string{"b.md"}, names(t, table))
}

func TestSumOfEmptyGroupIsZero(t *testing.T) {
	dir := t.TempDir()

	table := run(t, dir, "select sum(size) where name = 'nonexistent'")
	require.Len(t, table.Rows, 1)
	require.Equal(t, value.Int(0), table.Rows[0].Values[0])
}
