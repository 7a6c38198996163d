// Package render turns an internal/eval.Table into the text the CLI
// prints: column-aligned cells, with path-valued cells colorized by tag
// when writing to a real terminal. Grounded on aretext's use of
// github.com/mattn/go-runewidth for per-rune display width (gcwidth.go),
// generalized here from a single grapheme cluster to a whole column's
// alignment padding.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alexandershov/lsql/internal/value"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	runewidth "github.com/mattn/go-runewidth"
)

// Table is the minimal shape render needs from an internal/eval.Table,
// spelled out locally so this package doesn't import internal/eval.
type Table interface {
	Header() []string
	RowCount() int
	Cell(row, col int) value.Value
}

// defaultPalette is the built-in tag -> SGR color code mapping, in the
// style of an LSCOLORS default, consulted whenever a user-supplied
// palette (internal/config.Palette) has no entry for a tag.
var defaultPalette = map[string]string{
	"dir":     "34", // blue
	"file":    "",   // no color
	"exec":    "32", // green
	"mount":   "35", // magenta
	"unknown": "31", // red
}

// Writer renders result tables to an io.Writer, colorizing tagged cells
// when the destination is a real terminal and colorization hasn't been
// disabled.
type Writer struct {
	out      io.Writer
	colorize bool
	palette  map[string]string
}

// New wraps w for rendering. noColor forces colorization off regardless of
// w's terminal-ness (the CLI's --no-color flag); palette overrides entries
// of the built-in default LSCOLORS-equivalent mapping.
func New(w io.Writer, noColor bool, palette map[string]string) *Writer {
	out := w
	colorize := false
	if f, ok := w.(*os.File); ok {
		colorize = !noColor && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
		out = colorable.NewColorable(f)
	}
	merged := make(map[string]string, len(defaultPalette))
	for tag, code := range defaultPalette {
		merged[tag] = code
	}
	for tag, code := range palette {
		merged[tag] = code
	}
	return &Writer{out: out, colorize: colorize, palette: merged}
}

// Render writes t to the underlying writer as a header row followed by
// one aligned, space-separated row per result row.
func (rw *Writer) Render(t Table) error {
	header := t.Header()
	widths := columnWidths(t, header)

	if err := rw.writeRow(header, widths, nil); err != nil {
		return err
	}
	for r := 0; r < t.RowCount(); r++ {
		cells := make([]string, len(header))
		tags := make([]string, len(header))
		for c := range header {
			v := t.Cell(r, c)
			cells[c] = v.String()
			if s, ok := v.(value.Str); ok {
				tags[c] = primaryTag(s)
			}
		}
		if err := rw.writeRow(cells, widths, tags); err != nil {
			return err
		}
	}
	return nil
}

func (rw *Writer) writeRow(cells []string, widths []int, tags []string) error {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		pad := widths[i] - runewidth.StringWidth(cell)
		padded := cell + strings.Repeat(" ", maxInt(pad, 0))
		if i < len(tags) && tags[i] != "" {
			padded = rw.colorizeCell(padded, tags[i])
		}
		parts[i] = padded
	}
	_, err := fmt.Fprintln(rw.out, strings.Join(parts, "  "))
	return err
}

func (rw *Writer) colorizeCell(s, tag string) string {
	if !rw.colorize {
		return s
	}
	code, ok := rw.palette[tag]
	if !ok || code == "" {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

// primaryTag picks the one tag from a Str's tag set that colorizeCell
// should key off of, preferring the filesystem-type tags over "exec" so a
// directory is colored as a directory even when (nonsensically) also
// marked executable.
func primaryTag(s value.Str) string {
	for _, tag := range []string{"dir", "mount", "unknown", "exec", "file"} {
		if s.HasTag(tag) {
			return tag
		}
	}
	return ""
}

func columnWidths(t Table, header []string) []int {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for r := 0; r < t.RowCount(); r++ {
		for c := range header {
			w := runewidth.StringWidth(t.Cell(r, c).String())
			if w > widths[c] {
				widths[c] = w
			}
		}
	}
	return widths
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
