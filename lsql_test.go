package lsql

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexandershov/lsql/internal/builtin"
	"github.com/alexandershov/lsql/internal/ctx"
	"github.com/alexandershov/lsql/internal/value"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestQueryEndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "x")
	writeFile(t, filepath.Join(dir, "b.txt"), "yy")

	tests := []struct {
		name  string
		query string
		want  []string // rendered "name" column values, in order
	}{
		{
			name:  "select name",
			query: "select name order by name",
			want:  []string{"a.txt", "b.txt"},
		},
		{
			name:  "where filters",
			query: "select name where size > 1",
			want:  []string{"b.txt"},
		},
		{
			name:  "limit",
			query: "select name order by name limit 1",
			want:  []string{"a.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Query(tt.query, dir)
			require.NoError(t, err)

			idx := -1
			for i, c := range table.Columns {
				if c == "name" {
					idx = i
				}
			}
			require.NotEqual(t, -1, idx)

			var got []string
			for _, r := range table.Rows {
				got = append(got, r.Values[idx].String())
			}
			require.Equal(t, tt.want, got)
		})
	}
}

func TestQueryPropagatesParseErrors(t *testing.T) {
	_, err := Query("select where where", t.TempDir())
	require.Error(t, err)
}

func TestParseBuildEvalDirectly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "only.txt"), "x")

	query, err := Parse("select name")
	require.NoError(t, err)

	var sawName bool
	Walk(query, func(n *Node) bool {
		if n.Ident == "name" {
			sawName = true
		}
		return true
	})
	require.True(t, sawName)

	built, err := Build(query)
	require.NoError(t, err)

	outer := ctx.Merged{
		ctx.NewMap(map[string]interface{}{"cwd": value.NewStr(dir)}),
		builtin.Namespace(time.Now()),
	}
	table, err := Eval(built, outer)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	require.Equal(t, "only.txt", table.Rows[0].Values[0].String())
}
