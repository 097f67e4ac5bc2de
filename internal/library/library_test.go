package library_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/datalens-cli/internal/library"
	"github.com/KaramelBytes/datalens-cli/internal/parser"
	"github.com/KaramelBytes/datalens-cli/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestAddListDelete(t *testing.T) {
	src := t.TempDir()
	libDir := filepath.Join(t.TempDir(), "uploads")
	lib, err := library.Open(libDir)
	require.NoError(t, err)

	e, err := lib.Add(writeFile(t, src, "b.csv", "x,y\n1,2\n3,4\n"))
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, 2, e.Rows)
	assert.Equal(t, 2, e.Columns)

	_, err = lib.AddReader("a.csv", strings.NewReader("k\nv\n"))
	require.NoError(t, err)

	names := []string{}
	for _, en := range lib.List() {
		names = append(names, en.Name)
	}
	assert.Equal(t, []string{"a.csv", "b.csv"}, names)

	attrs, err := lib.Attributes("b.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, attrs)

	require.NoError(t, lib.Delete("a.csv"))
	assert.False(t, lib.Has("a.csv"))
	_, err = os.Stat(filepath.Join(libDir, "a.csv"))
	assert.True(t, os.IsNotExist(err))
	assert.ErrorIs(t, lib.Delete("a.csv"), library.ErrDatasetNotFound)

	// manifest survives a reopen
	again, err := library.Open(libDir)
	require.NoError(t, err)
	assert.True(t, again.Has("b.csv"))
	assert.Len(t, again.List(), 1)
}

func TestAddReaderRejectsInvalidInput(t *testing.T) {
	lib, err := library.Open(t.TempDir())
	require.NoError(t, err)

	_, err = lib.AddReader("../evil.csv", strings.NewReader("a\n1\n"))
	assert.ErrorIs(t, err, library.ErrInvalidName)

	_, err = lib.AddReader("notes.txt", strings.NewReader("hello"))
	assert.ErrorIs(t, err, parser.ErrUnsupported)

	_, err = lib.AddReader("dup.csv", strings.NewReader("a,a\n1,2\n"))
	assert.ErrorIs(t, err, table.ErrMalformedInput)
	assert.False(t, lib.Has("dup.csv"))
	entries, _ := os.ReadDir(lib.RootDir())
	for _, e := range entries {
		assert.NotContains(t, e.Name(), "dup.csv")
	}
}

func TestOpenReconcilesDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "seed.csv", "a,b\n1,2\n")
	writeFile(t, dir, "readme.md", "ignored")

	lib, err := library.Open(dir)
	require.NoError(t, err)
	list := lib.List()
	require.Len(t, list, 1)
	assert.Equal(t, "seed.csv", list[0].Name)

	require.NoError(t, os.Remove(filepath.Join(dir, "seed.csv")))
	lib, err = library.Open(dir)
	require.NoError(t, err)
	assert.Empty(t, lib.List())
}

func TestTableNotFound(t *testing.T) {
	lib, err := library.Open(t.TempDir())
	require.NoError(t, err)
	_, err = lib.Table("ghost.csv")
	assert.ErrorIs(t, err, library.ErrDatasetNotFound)
}

func TestComparisonRoundTripAndMissingFiles(t *testing.T) {
	libDir := t.TempDir()
	cfgDir := filepath.Join(t.TempDir(), "configs")
	lib, err := library.Open(libDir)
	require.NoError(t, err)
	_, err = lib.AddReader("a.csv", strings.NewReader("x,y\n1,2\n"))
	require.NoError(t, err)
	_, err = lib.AddReader("b.csv", strings.NewReader("x,y\n3,4\n"))
	require.NoError(t, err)

	want := library.Comparison{Datasets: []string{"a.csv", "b.csv"}, XAxis: "x", YAxis: "y", Reference: "a.csv"}
	require.NoError(t, library.SaveComparison(cfgDir, "weekly", want))

	got, err := library.LoadComparison(cfgDir, "weekly", lib)
	require.NoError(t, err)
	assert.Equal(t, want, *got)

	require.NoError(t, library.SaveComparison(cfgDir, "daily", want))
	names, err := library.ListComparisons(cfgDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"daily", "weekly"}, names)
	none, err := library.ListComparisons(filepath.Join(cfgDir, "absent"))
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, lib.Delete("b.csv"))
	_, err = library.LoadComparison(cfgDir, "weekly", lib)
	var missing *library.MissingDatasetsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"b.csv"}, missing.Missing)
	assert.Equal(t, "missing files: b.csv", err.Error())

	_, err = library.LoadComparison(cfgDir, "nope", lib)
	assert.ErrorIs(t, err, library.ErrComparisonNotFound)
	assert.ErrorIs(t, library.SaveComparison(cfgDir, "a/b", want), library.ErrInvalidName)
}

func TestSaveTable(t *testing.T) {
	tb, err := table.FromRecords([][]string{{"a", "b"}, {"1", ""}})
	require.NoError(t, err)
	dir := filepath.Join(t.TempDir(), "out")
	p, err := library.SaveTable(dir, "clean.csv", tb)
	require.NoError(t, err)
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,\n", string(b))
}
