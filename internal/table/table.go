package table

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedInput indicates a structurally invalid table (duplicate headers, ragged rows).
	ErrMalformedInput = errors.New("malformed table")
	// ErrAttributeNotFound indicates a column name absent from the headers.
	ErrAttributeNotFound = errors.New("attribute not found")
)

// Table is an in-memory dataset: ordered headers and ordered rows of raw text.
// Cells are stored column-wise; an empty string denotes a missing value.
type Table struct {
	headers []string
	index   map[string]int
	cols    [][]string
	rows    int
}

// New creates an empty table with the given headers.
func New(headers []string) (*Table, error) {
	t := &Table{
		headers: make([]string, 0, len(headers)),
		index:   make(map[string]int, len(headers)),
		cols:    make([][]string, 0, len(headers)),
	}
	for _, h := range headers {
		if strings.TrimSpace(h) == "" {
			return nil, fmt.Errorf("%w: empty header at position %d", ErrMalformedInput, len(t.headers)+1)
		}
		if _, dup := t.index[h]; dup {
			return nil, fmt.Errorf("%w: duplicate header %q", ErrMalformedInput, h)
		}
		t.index[h] = len(t.headers)
		t.headers = append(t.headers, h)
		t.cols = append(t.cols, nil)
	}
	return t, nil
}

// AppendRow adds one row. values must have exactly one cell per header.
func (t *Table) AppendRow(values []string) error {
	if len(values) != len(t.headers) {
		return fmt.Errorf("%w: row %d has %d values, want %d", ErrMalformedInput, t.rows+1, len(values), len(t.headers))
	}
	for j, v := range values {
		t.cols[j] = append(t.cols[j], v)
	}
	t.rows++
	return nil
}

// Headers returns a copy of the column names in source order.
func (t *Table) Headers() []string {
	out := make([]string, len(t.headers))
	copy(out, t.headers)
	return out
}

func (t *Table) NumRows() int { return t.rows }
func (t *Table) NumCols() int { return len(t.headers) }

// Has reports whether name is one of the headers.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Value returns the raw cell at (row, name). ok is false when the column is
// unknown or the cell is missing.
func (t *Table) Value(row int, name string) (string, bool) {
	j, ok := t.index[name]
	if !ok || row < 0 || row >= t.rows {
		return "", false
	}
	v := t.cols[j][row]
	return v, v != ""
}

// Row returns a copy of row i in header order.
func (t *Table) Row(i int) []string {
	out := make([]string, len(t.headers))
	for j := range t.headers {
		out[j] = t.cols[j][i]
	}
	return out
}

// Column returns the non-missing values of name in row order and the number
// of missing cells.
func (t *Table) Column(name string) ([]string, int, error) {
	j, ok := t.index[name]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", ErrAttributeNotFound, name)
	}
	vals := make([]string, 0, t.rows)
	for _, v := range t.cols[j] {
		if v != "" {
			vals = append(vals, v)
		}
	}
	return vals, t.rows - len(vals), nil
}

// Cells returns every cell of name in row order, missing ones included as "".
func (t *Table) Cells(name string) ([]string, error) {
	j, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAttributeNotFound, name)
	}
	out := make([]string, t.rows)
	copy(out, t.cols[j])
	return out, nil
}

// Filter returns a new table holding the rows for which keep returns true,
// in their original order.
func (t *Table) Filter(keep func(row int) bool) *Table {
	out := t.emptyLike()
	for i := 0; i < t.rows; i++ {
		if !keep(i) {
			continue
		}
		for j := range t.cols {
			out.cols[j] = append(out.cols[j], t.cols[j][i])
		}
		out.rows++
	}
	return out
}

// RemoveColumns deletes the named columns and returns the names that were
// actually present. Unknown names are ignored.
func (t *Table) RemoveColumns(names ...string) []string {
	drop := make(map[string]bool, len(names))
	var removed []string
	for _, n := range names {
		if _, ok := t.index[n]; ok && !drop[n] {
			drop[n] = true
			removed = append(removed, n)
		}
	}
	if len(removed) == 0 {
		return nil
	}
	headers := make([]string, 0, len(t.headers)-len(removed))
	cols := make([][]string, 0, len(t.headers)-len(removed))
	index := make(map[string]int, len(t.headers)-len(removed))
	for j, h := range t.headers {
		if drop[h] {
			continue
		}
		index[h] = len(headers)
		headers = append(headers, h)
		cols = append(cols, t.cols[j])
	}
	// swap all three at once so the header/cell invariant never breaks
	t.headers, t.cols, t.index = headers, cols, index
	return removed
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := t.emptyLike()
	for j := range t.cols {
		out.cols[j] = append([]string(nil), t.cols[j]...)
	}
	out.rows = t.rows
	return out
}

// Equal reports whether both tables have the same headers and cells.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.rows != o.rows || len(t.headers) != len(o.headers) {
		return false
	}
	for j, h := range t.headers {
		if o.headers[j] != h {
			return false
		}
		for i, v := range t.cols[j] {
			if o.cols[j][i] != v {
				return false
			}
		}
	}
	return true
}

func (t *Table) emptyLike() *Table {
	out := &Table{
		headers: append([]string(nil), t.headers...),
		index:   make(map[string]int, len(t.headers)),
		cols:    make([][]string, len(t.headers)),
	}
	for k, v := range t.index {
		out.index[k] = v
	}
	return out
}
