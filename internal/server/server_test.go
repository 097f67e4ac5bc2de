package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/datalens-cli/internal/library"
	"github.com/KaramelBytes/datalens-cli/internal/parser"
	"github.com/KaramelBytes/datalens-cli/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hopsCSV = "date,plot,alpha acid\n" +
	"2024-08-10,A1,12.5\n" +
	"2024-08-12,A1,11.8\n" +
	"2024-08-15,B3,\n" +
	"2024-08-19,B3,13.1\n"

type fixture struct {
	srv   *Server
	lib   *library.Library
	store *store.Store
	dir   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	lib, err := library.Open(filepath.Join(dir, "uploads"))
	require.NoError(t, err)
	st := store.New(parser.ParseFile)
	opt := DefaultOptions()
	opt.ConfigsDir = filepath.Join(dir, "configs")
	return &fixture{srv: New(st, lib, opt, nil), lib: lib, store: st, dir: dir}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func (f *fixture) upload(t *testing.T, path, field, name, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestEmptyStoreIsBadRequest(t *testing.T) {
	f := newFixture(t)
	for _, p := range []string{"/dataset-summary", "/dataset", "/attributes", "/attribute-details/x"} {
		rec := f.do(t, http.MethodGet, p, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, p)
	}
	rec := f.do(t, http.MethodPost, "/undo-remove", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadRemoveUndo(t *testing.T) {
	f := newFixture(t)
	rec := f.upload(t, "/upload", "file", "hops.csv", hopsCSV)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sum := decode[store.Summary](t, rec)
	assert.Equal(t, store.Summary{Name: "hops.csv", NumAttributes: 3, NumInstances: 4}, sum)
	assert.True(t, f.lib.Has("hops.csv"))

	rec = f.do(t, http.MethodPost, "/remove-attributes", map[string]any{"attributesToRemove": []string{"plot", "ghost"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"date", "alpha acid"}, decode[[]string](t, f.do(t, http.MethodGet, "/attributes", nil)))

	rec = f.do(t, http.MethodPost, "/undo-remove", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"date", "plot", "alpha acid"}, decode[[]string](t, f.do(t, http.MethodGet, "/attributes", nil)))

	records := decode[[][]string](t, f.do(t, http.MethodGet, "/dataset", nil))
	require.Len(t, records, 5)
	assert.Equal(t, []string{"2024-08-15", "B3", ""}, records[3])
}

func TestUploadRejectsNonCSV(t *testing.T) {
	f := newFixture(t)
	rec := f.upload(t, "/upload", "file", "notes.txt", "hello")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.upload(t, "/upload", "file", "dup.csv", "a,a\n1,2\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, f.lib.Has("dup.csv"))
}

func TestAttributeDetails(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.upload(t, "/upload", "file", "hops.csv", hopsCSV).Code)

	rec := f.do(t, http.MethodGet, "/attribute-details/alpha%20acid", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "alpha acid", got["name"])
	assert.Equal(t, "Numeric", got["dataType"])
	assert.EqualValues(t, 1, got["missingValues"])
	stats := got["stats"].(map[string]any)
	assert.InDelta(t, 11.8, stats["min"], 1e-9)
	assert.InDelta(t, 13.1, stats["max"], 1e-9)

	rec = f.do(t, http.MethodGet, "/attribute-details/plot", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"stats":{}`)
	assert.Contains(t, rec.Body.String(), `"labels":["A1","B3"]`)

	rec = f.do(t, http.MethodGet, "/attribute-details/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRemoveOutliers(t *testing.T) {
	f := newFixture(t)
	dataset := [][]any{
		{"id", "v", "label"},
		{1, 10, "a"},
		{2, 12, "b"},
		{3, 11, "c"},
		{4, 13, "d"},
		{5, 12, "e"},
		{6, 11, "f"},
		{7, 1000, "g"},
	}
	rec := f.do(t, http.MethodPost, "/remove-outliers", map[string]any{"dataset": dataset})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `[["id","v","label"],[1,10,"a"],[2,12,"b"],[3,11,"c"],[4,13,"d"],[5,12,"e"],[6,11,"f"]]`, rec.Body.String())

	keyed := map[string]any{
		"headers": []string{"v"},
		"rows":    []map[string]any{{"v": 1}, {"v": 2}, {"v": nil}, {"v": "x"}},
	}
	rec = f.do(t, http.MethodPost, "/remove-outliers", map[string]any{"dataset": keyed, "attribute": "v"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	// "x" makes the column textual, so the kept cells stay strings
	assert.JSONEq(t, `{"headers":["v"],"rows":[{"v":"1"},{"v":"2"}]}`, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/remove-outliers", map[string]any{"dataset": dataset, "attribute": "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/remove-outliers", map[string]any{"dataset": [][]string{{"a", "a"}}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoveOutliersKeepsPayloadShape(t *testing.T) {
	f := newFixture(t)
	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/remove-outliers", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		f.srv.Handler().ServeHTTP(rec, req)
		return rec
	}

	keyed := `{"headers":["v","w"],"rows":[{"v":1.5,"w":"a"},{"v":2,"w":"b"}]}`
	rec := post(`{"dataset":` + keyed + `}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, keyed, rec.Body.String())

	rec = post(`{"dataset":[["a","b"],[1,null],[2,"x"]]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `[["a","b"],[1,null],[2,"x"]]`, rec.Body.String())

	rec = post(`{"dataset":[["id","v"],[12345678901234567890,1],[12345678901234567891,2]]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "[12345678901234567890,1]")
	assert.Contains(t, rec.Body.String(), "[12345678901234567891,2]")

	rec = post(`{"dataset":{"headers":["v"],"rows":[{"v":1,"extra":2}]}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = post(`{"dataset":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaveDatasetUsesSourceName(t *testing.T) {
	f := newFixture(t)
	out := filepath.Join(f.dir, "exports")

	rec := f.do(t, http.MethodPost, "/save-dataset", map[string]any{"directory": out, "dataset": [][]string{{"a"}, {"1"}}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	_, err := os.Stat(filepath.Join(out, defaultSaveName))
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, f.upload(t, "/upload", "file", "hops.csv", hopsCSV).Code)
	rec = f.do(t, http.MethodPost, "/save-dataset", map[string]any{"directory": out, "dataset": [][]string{{"a", "b"}, {"1", ""}}})
	require.Equal(t, http.StatusOK, rec.Code)
	b, err := os.ReadFile(filepath.Join(out, "hops.csv"))
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,\n", string(b))

	rec = f.do(t, http.MethodPost, "/save-dataset", map[string]any{"dataset": [][]string{{"a"}}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUndoAfterSourceRemoved(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.upload(t, "/upload", "file", "hops.csv", hopsCSV).Code)
	f.do(t, http.MethodPost, "/remove-attributes", map[string]any{"attributesToRemove": []string{"plot"}})
	require.NoError(t, f.lib.Delete("hops.csv"))

	rec := f.do(t, http.MethodPost, "/undo-remove", nil)
	assert.Equal(t, http.StatusGone, rec.Code)
	assert.Equal(t, []string{"date", "alpha acid"}, decode[[]string](t, f.do(t, http.MethodGet, "/attributes", nil)))
}

func TestLibraryAndChartData(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.upload(t, "/datasets/upload", "dataset", "a.csv", "t,v\n1,10\n2,20\n3,30\n").Code)
	require.Equal(t, http.StatusOK, f.upload(t, "/datasets/upload", "dataset", "b.csv", "t,v\n1,5\n2,\n").Code)

	assert.Equal(t, []string{"a.csv", "b.csv"}, decode[[]string](t, f.do(t, http.MethodGet, "/datasets/list", nil)))
	assert.Equal(t, []string{"t", "v"}, decode[[]string](t, f.do(t, http.MethodGet, "/datasets/attributes/b.csv", nil)))

	rec := f.do(t, http.MethodPost, "/datasets/chart-data", map[string]any{
		"datasets": []string{"a.csv", "b.csv"}, "xAxis": "t", "yAxis": "v", "referenceDataset": "a.csv",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	series := decode[map[string][]map[string]string](t, rec)
	assert.Len(t, series["a.csv"], 3)
	assert.Equal(t, []map[string]string{{"x": "1", "y": "5"}, {"x": "2", "y": ""}}, series["b.csv"])

	rec = f.do(t, http.MethodPost, "/datasets/chart-data", map[string]any{"datasets": []string{"nope.csv"}, "xAxis": "t", "yAxis": "v"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodDelete, "/datasets/delete/b.csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodDelete, "/datasets/delete/b.csv", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConfigurations(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.upload(t, "/datasets/upload", "dataset", "a.csv", "t,v\n1,2\n").Code)
	require.Equal(t, http.StatusOK, f.upload(t, "/datasets/upload", "dataset", "b.csv", "t,v\n1,2\n").Code)

	rec := f.do(t, http.MethodPost, "/configurations/save", map[string]any{
		"configName": "season", "datasets": []string{"a.csv", "b.csv"}, "xAxis": "t", "yAxis": "v", "referenceDataset": "a.csv",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	c := decode[library.Comparison](t, f.do(t, http.MethodGet, "/configurations/load/season", nil))
	assert.Equal(t, library.Comparison{Datasets: []string{"a.csv", "b.csv"}, XAxis: "t", YAxis: "v", Reference: "a.csv"}, c)

	require.NoError(t, f.lib.Delete("b.csv"))
	rec = f.do(t, http.MethodGet, "/configurations/load/season", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, []any{"b.csv"}, body["missingFiles"])

	rec = f.do(t, http.MethodGet, "/configurations/load/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/configurations/save", strings.Repeat("x", 3))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
