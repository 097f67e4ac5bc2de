package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/KaramelBytes/datalens-cli/internal/library"
	"github.com/KaramelBytes/datalens-cli/internal/parser"
	"github.com/KaramelBytes/datalens-cli/internal/store"
	"github.com/KaramelBytes/datalens-cli/internal/table"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// writeError maps domain errors to HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var missing *library.MissingDatasetsError
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &missing):
		writeJSON(w, http.StatusNotFound, map[string]any{"error": err.Error(), "missingFiles": missing.Missing})
		return
	case errors.Is(err, store.ErrEmptyStore),
		errors.Is(err, table.ErrMalformedInput),
		errors.Is(err, parser.ErrUnsupported),
		errors.Is(err, library.ErrInvalidName),
		errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, table.ErrAttributeNotFound),
		errors.Is(err, library.ErrDatasetNotFound),
		errors.Is(err, library.ErrComparisonNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrSourceUnavailable):
		status = http.StatusGone
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed: %v", err)
	} else {
		s.log.Debug("request rejected (%d): %v", status, err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

var errBadRequest = errors.New("bad request")

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decode body: %v", errBadRequest, err)
	}
	return nil
}

// tablePayload accepts either [[header...], [row...], ...] with string,
// number, bool or null cells, or {"headers": [...], "rows": [{...}]}.
// It remembers which shape was posted and which columns held only JSON
// numbers so a reply can be rendered the same way.
type tablePayload struct {
	table   *table.Table
	keyed   bool
	numeric map[string]bool
}

func (p *tablePayload) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("%w: %v", table.ErrMalformedInput, err)
	}
	cols := newColumnKinds()
	switch v := raw.(type) {
	case []any:
		records := make([][]string, len(v))
		for i, r := range v {
			rec, ok := r.([]any)
			if !ok {
				return fmt.Errorf("%w: record %d is not a list", table.ErrMalformedInput, i)
			}
			records[i] = make([]string, len(rec))
			for j, cell := range rec {
				records[i][j] = cellString(cell)
				if i > 0 && j < len(records[0]) {
					cols.observe(records[0][j], cell)
				}
			}
		}
		t, err := table.FromRecords(records)
		if err != nil {
			return err
		}
		p.table = t
	case map[string]any:
		var headers []string
		hs, _ := v["headers"].([]any)
		for _, h := range hs {
			headers = append(headers, cellString(h))
		}
		rs, _ := v["rows"].([]any)
		rows := make([]map[string]string, len(rs))
		for i, r := range rs {
			m, ok := r.(map[string]any)
			if !ok {
				return fmt.Errorf("%w: row %d is not an object", table.ErrMalformedInput, i+1)
			}
			rows[i] = make(map[string]string, len(m))
			for k, cell := range m {
				rows[i][k] = cellString(cell)
				cols.observe(k, cell)
			}
		}
		t, err := table.FromMaps(headers, rows)
		if err != nil {
			return err
		}
		p.table, p.keyed = t, true
	default:
		return fmt.Errorf("%w: dataset must be a list of records or {headers, rows}", table.ErrMalformedInput)
	}
	p.numeric = cols.numeric()
	return nil
}

// render returns t in the shape that was posted. Cells of columns that held
// only numbers are emitted as JSON numbers; missing cells are null in records
// and absent in keyed rows.
func (p *tablePayload) render(t *table.Table) any {
	if p.keyed {
		rows := t.Maps()
		out := make([]map[string]any, len(rows))
		for i, m := range rows {
			out[i] = make(map[string]any, len(m))
			for k, v := range m {
				out[i][k] = p.cell(k, v)
			}
		}
		return map[string]any{"headers": t.Headers(), "rows": out}
	}
	recs := t.Records()
	out := make([][]any, len(recs))
	for i, rec := range recs {
		out[i] = make([]any, len(rec))
		for j, v := range rec {
			if i == 0 {
				out[i][j] = v
				continue
			}
			out[i][j] = p.cell(recs[0][j], v)
		}
	}
	return out
}

func (p *tablePayload) cell(column, v string) any {
	if v == "" {
		return nil
	}
	if p.numeric[column] {
		return json.Number(v)
	}
	return v
}

// columnKinds tracks, per column, whether any number and any non-number
// (other than null) was seen.
type columnKinds struct {
	numbers map[string]bool
	others  map[string]bool
}

func newColumnKinds() *columnKinds {
	return &columnKinds{numbers: map[string]bool{}, others: map[string]bool{}}
}

func (c *columnKinds) observe(column string, cell any) {
	switch cell.(type) {
	case nil:
	case json.Number:
		c.numbers[column] = true
	default:
		c.others[column] = true
	}
}

func (c *columnKinds) numeric() map[string]bool {
	out := make(map[string]bool, len(c.numbers))
	for k := range c.numbers {
		if !c.others[k] {
			out[k] = true
		}
	}
	return out
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}
