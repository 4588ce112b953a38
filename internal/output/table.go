package output

import (
	"io"
	"strings"
	"unicode/utf8"
)

// Align is the horizontal alignment of a table column.
type Align int

// Column alignments.
const (
	AlignLeft Align = iota
	AlignRight
)

const columnGap = "  "

// Table renders rows under a header line and a dashed rule. Every column is
// as wide as its widest cell, counted in runes.
type Table struct {
	headers  []string
	align    map[int]Align
	rows     [][]string
	noHeader bool
}

// NewTable creates a table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers, align: make(map[int]Align)}
}

// AlignColumn sets the alignment of column col.
func (t *Table) AlignColumn(col int, a Align) *Table {
	t.align[col] = a
	return t
}

// AddRow appends a row. Missing cells render empty.
func (t *Table) AddRow(cells ...string) *Table {
	t.rows = append(t.rows, cells)
	return t
}

// SetNoHeader suppresses the header and rule lines.
func (t *Table) SetNoHeader(noHeader bool) {
	t.noHeader = noHeader
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render writes the table to w.
func (t *Table) Render(w io.Writer) error {
	widths := t.widths()
	if len(widths) == 0 {
		return nil
	}

	var sb strings.Builder
	if !t.noHeader && len(t.headers) > 0 {
		t.writeLine(&sb, t.headers, widths)
		rule := make([]string, len(widths))
		for i, n := range widths {
			rule[i] = strings.Repeat("-", n)
		}
		t.writeLine(&sb, rule, widths)
	}
	for _, row := range t.rows {
		t.writeLine(&sb, row, widths)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// String returns the rendered table.
func (t *Table) String() string {
	var sb strings.Builder
	_ = t.Render(&sb)
	return sb.String()
}

func (t *Table) widths() []int {
	n := len(t.headers)
	for _, row := range t.rows {
		n = max(n, len(row))
	}

	widths := make([]int, n)
	measure := func(cells []string) {
		for i, c := range cells {
			widths[i] = max(widths[i], utf8.RuneCountInString(c))
		}
	}
	measure(t.headers)
	for _, row := range t.rows {
		measure(row)
	}
	return widths
}

func (t *Table) writeLine(sb *strings.Builder, cells []string, widths []int) {
	for i, width := range widths {
		if i > 0 {
			sb.WriteString(columnGap)
		}
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		pad := strings.Repeat(" ", width-utf8.RuneCountInString(cell))
		if t.align[i] == AlignRight {
			sb.WriteString(pad + cell)
		} else {
			sb.WriteString(cell + pad)
		}
	}
	sb.WriteByte('\n')
}
