package cli

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

const columnGap = 2

// Table renders column-aligned output. Rows are buffered until Flush so
// column widths can be capped to the terminal and long cells wrapped.
// Empty tables produce no output.
type Table struct {
	out     io.Writer
	headers []string
	rows    [][]string
	prefix  string
	width   int // 0 means unlimited
}

// NewTable creates a table on stdout with the given column headers.
func NewTable(headers ...string) *Table {
	return NewTableTo(os.Stdout, headers...)
}

// NewTableTo creates a table that writes to w. When w is a terminal the
// table is fitted to its width.
func NewTableTo(w io.Writer, headers ...string) *Table {
	t := &Table{out: w, headers: headers}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil {
			t.width = cols
		}
	}
	return t
}

// WithPrefix sets a string prepended to each line (headers, divider, rows).
// Useful for indenting sub-tables within larger output.
func (t *Table) WithPrefix(prefix string) *Table {
	t.prefix = prefix
	return t
}

// WithWidth caps the rendered width in columns. Zero disables capping.
func (t *Table) WithWidth(cols int) *Table {
	t.width = cols
	return t
}

// Row buffers a row. Missing trailing cells render empty.
func (t *Table) Row(values ...string) {
	t.rows = append(t.rows, values)
}

// Flush writes the headers, a dash divider and every buffered row. If no
// rows were added, nothing is printed.
func (t *Table) Flush() {
	if len(t.rows) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = visualLen(h)
	}
	for _, row := range t.rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if n := visualLen(row[i]); n > widths[i] {
				widths[i] = n
			}
		}
	}
	if t.width > 0 {
		widths = capWidths(widths, t.headers, t.width, visualLen(t.prefix))
	}

	dividers := make([]string, len(t.headers))
	for i, h := range t.headers {
		dividers[i] = strings.Repeat("-", visualLen(h))
	}
	t.writeLine(t.headers, widths)
	t.writeLine(dividers, widths)

	for _, row := range t.rows {
		cells := make([][]string, len(widths))
		height := 1
		for i := range widths {
			var v string
			if i < len(row) {
				v = row[i]
			}
			cells[i] = wrapCell(v, widths[i])
			if len(cells[i]) > height {
				height = len(cells[i])
			}
		}
		for line := 0; line < height; line++ {
			values := make([]string, len(widths))
			for i := range widths {
				if line < len(cells[i]) {
					values[i] = cells[i][line]
				}
			}
			t.writeLine(values, widths)
		}
	}
	t.rows = nil
}

func (t *Table) writeLine(values []string, widths []int) {
	var b strings.Builder
	b.WriteString(t.prefix)
	for i, v := range values {
		b.WriteString(v)
		if i == len(values)-1 {
			break
		}
		b.WriteString(strings.Repeat(" ", widths[i]-visualLen(v)+columnGap))
	}
	fmt.Fprintln(t.out, strings.TrimRight(b.String(), " "))
}

var ansiPattern = regexp.MustCompile("\x1b\\[[0-9;]*m")

// visualLen is the printed width of s, ignoring ANSI color codes.
func visualLen(s string) int {
	return utf8.RuneCountInString(ansiPattern.ReplaceAllString(s, ""))
}

// capWidths shrinks the widest columns until the table fits in termWidth.
// A column never shrinks below the width of its header.
func capWidths(widths []int, headers []string, termWidth, prefix int) []int {
	got := append([]int(nil), widths...)
	minWidths := make([]int, len(got))
	for i := range got {
		if i < len(headers) {
			minWidths[i] = visualLen(headers[i])
		}
	}

	total := func() int {
		sum := prefix + columnGap*(len(got)-1)
		for _, w := range got {
			sum += w
		}
		return sum
	}

	for total() > termWidth {
		widest := -1
		for i := range got {
			if got[i] > minWidths[i] && (widest < 0 || got[i] > got[widest]) {
				widest = i
			}
		}
		if widest < 0 {
			break
		}
		over := total() - termWidth
		slack := got[widest] - minWidths[widest]
		if over < slack {
			slack = over
		}
		got[widest] -= slack
	}
	return got
}

// wrapCell splits s into lines no wider than width, breaking at spaces and
// hard-breaking words that are longer than a line. Cells that fit are
// returned unchanged, color codes included.
func wrapCell(s string, width int) []string {
	if width <= 0 || visualLen(s) <= width {
		return []string{s}
	}

	var lines []string
	line := ""
	for _, word := range strings.Fields(ansiPattern.ReplaceAllString(s, "")) {
		runes := []rune(word)
		if len(runes) > width {
			if line != "" {
				lines = append(lines, line)
			}
			for len(runes) > width {
				lines = append(lines, string(runes[:width]))
				runes = runes[width:]
			}
			line = string(runes)
			continue
		}
		switch {
		case line == "":
			line = word
		case utf8.RuneCountInString(line)+1+len(runes) <= width:
			line += " " + word
		default:
			lines = append(lines, line)
			line = word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}
