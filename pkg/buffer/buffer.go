// Package buffer reshapes the flat value list read from the instrument's
// trace buffer into per-point rows.
package buffer

import (
	"fmt"
	"strings"
)

// ShapeError reports a flat list whose length is not a multiple of the
// column count.
type ShapeError struct {
	Len  int
	Cols int
}

func (e *ShapeError) Error() string {
	if e.Cols <= 0 {
		return fmt.Sprintf("buffer: column count must be positive, got %d", e.Cols)
	}
	return fmt.Sprintf("buffer: %d values cannot be split into rows of %d", e.Len, e.Cols)
}

// Table is a row-major grid of reply tokens.
type Table struct {
	Cols int
	Rows [][]string
}

// Reshape splits flat into rows of cols entries, preserving order. An empty
// input gives an empty table.
//
// Surrounding whitespace is stripped from every value, so Flatten returns
// the trimmed values rather than the padded originals.
func Reshape(flat []string, cols int) (*Table, error) {
	if cols <= 0 || len(flat)%cols != 0 {
		return nil, &ShapeError{Len: len(flat), Cols: cols}
	}
	t := &Table{Cols: cols, Rows: make([][]string, 0, len(flat)/cols)}
	for i := 0; i < len(flat); i += cols {
		row := make([]string, cols)
		for j := 0; j < cols; j++ {
			row[j] = strings.TrimSpace(flat[i+j])
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ReshapeText splits a comma separated reply and reshapes it.
func ReshapeText(reply string, cols int) (*Table, error) {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return Reshape(nil, cols)
	}
	return Reshape(strings.Split(reply, ","), cols)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Text renders one row per line with fields joined by delim.
func (t *Table) Text(delim string) string {
	var b strings.Builder
	for i, row := range t.Rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.Join(row, delim))
	}
	return b.String()
}

// Column returns the i'th column.
func (t *Table) Column(i int) []string {
	if i < 0 || i >= t.Cols {
		return nil
	}
	out := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out
}

// Columns returns every column.
func (t *Table) Columns() [][]string {
	out := make([][]string, t.Cols)
	for i := range out {
		out[i] = t.Column(i)
	}
	return out
}

// Flatten reverses Reshape.
func (t *Table) Flatten() []string {
	out := make([]string, 0, len(t.Rows)*t.Cols)
	for _, row := range t.Rows {
		out = append(out, row...)
	}
	return out
}
