package render

import (
	"bytes"
	"testing"

	"github.com/alexandershov/lsql/internal/value"
	"github.com/stretchr/testify/require"
)

type fakeTable struct {
	header []string
	rows   [][]value.Value
}

func (f *fakeTable) Header() []string             { return f.header }
func (f *fakeTable) RowCount() int                { return len(f.rows) }
func (f *fakeTable) Cell(row, col int) value.Value { return f.rows[row][col] }

func TestRenderAlignsColumns(t *testing.T) {
	table := &fakeTable{
		header: []string{"name", "size"},
		rows: [][]value.Value{
			{value.NewStr("a.txt"), value.Int(1)},
			{value.NewStr("big.txt"), value.Int(2000)},
		},
	}

	var buf bytes.Buffer
	w := New(&buf, true, nil)
	require.NoError(t, w.Render(table))

	require.Equal(t, "name     size\na.txt    1   \nbig.txt  2000\n", buf.String())
}

func TestRenderFormatsNull(t *testing.T) {
	table := &fakeTable{
		header: []string{"text"},
		rows: [][]value.Value{
			{value.NullValue},
		},
	}

	var buf bytes.Buffer
	w := New(&buf, true, nil)
	require.NoError(t, w.Render(table))

	require.Equal(t, "text\nNULL\n", buf.String())
}

func TestRenderDoesNotColorizeNonTerminal(t *testing.T) {
	table := &fakeTable{
		header: []string{"name"},
		rows: [][]value.Value{
			{value.Tagged("sub", "dir")},
		},
	}

	var buf bytes.Buffer
	w := New(&buf, false, nil)
	require.NoError(t, w.Render(table))
	require.NotContains(t, buf.String(), "\x1b[")
}
