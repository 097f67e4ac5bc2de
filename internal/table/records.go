package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// FromRecords builds a table from the wire shape [header, row1, row2, ...].
// Every row must have exactly one value per header.
func FromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: missing header row", ErrMalformedInput)
	}
	t, err := New(records[0])
	if err != nil {
		return nil, err
	}
	for _, rec := range records[1:] {
		if err := t.AppendRow(rec); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Records returns the table as [header, row1, row2, ...].
func (t *Table) Records() [][]string {
	out := make([][]string, 0, t.rows+1)
	out = append(out, t.Headers())
	for i := 0; i < t.rows; i++ {
		out = append(out, t.Row(i))
	}
	return out
}

// FromMaps builds a table from keyed rows. A key that is not a header makes
// the payload malformed; absent keys are missing values.
func FromMaps(headers []string, rows []map[string]string) (*Table, error) {
	t, err := New(headers)
	if err != nil {
		return nil, err
	}
	for i, m := range rows {
		rec := make([]string, len(t.headers))
		for k, v := range m {
			j, ok := t.index[k]
			if !ok {
				return nil, fmt.Errorf("%w: row %d has unknown key %q", ErrMalformedInput, i+1, k)
			}
			rec[j] = v
		}
		if err := t.AppendRow(rec); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Maps returns keyed rows; missing cells are omitted from each map.
func (t *Table) Maps() []map[string]string {
	out := make([]map[string]string, t.rows)
	for i := range out {
		m := make(map[string]string, len(t.headers))
		for j, h := range t.headers {
			if v := t.cols[j][i]; v != "" {
				m[h] = v
			}
		}
		out[i] = m
	}
	return out
}

// ReadCSV reads a delimited stream whose first record is the header row.
// Short rows are padded with missing values; rows longer than the header are malformed.
func ReadCSV(r io.Reader, delim rune) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	if delim != 0 {
		cr.Comma = delim
	}
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty input", ErrMalformedInput)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	t, err := New(header)
	if err != nil {
		return nil, err
	}
	line := 1
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		line++
		if len(rec) < len(header) {
			tmp := make([]string, len(header))
			copy(tmp, rec)
			rec = tmp
		}
		if err := t.AppendRow(rec); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// WriteCSV writes the header row followed by every data row.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := 0; i < t.rows; i++ {
		if err := cw.Write(t.Row(i)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
