package compare

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/KaramelBytes/datalens-cli/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapResolver map[string]*table.Table

func (m mapResolver) Table(id string) (*table.Table, error) {
	t, ok := m[id]
	if !ok {
		return nil, fmt.Errorf("unknown dataset %s", id)
	}
	return t, nil
}

func series(t *testing.T, n int, extra ...string) *table.Table {
	t.Helper()
	headers := append([]string{"day", "temp"}, extra...)
	tb, err := table.New(headers)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		row := []string{strconv.Itoa(i + 1), strconv.Itoa(20 + i)}
		for range extra {
			row = append(row, "")
		}
		require.NoError(t, tb.AppendRow(row))
	}
	return tb
}

func TestAlignIsPositionalWithoutPadding(t *testing.T) {
	r := mapResolver{"long.csv": series(t, 5), "short.csv": series(t, 3, "note")}
	c, err := Align(context.Background(), r, Request{
		Datasets:  []string{"long.csv", "short.csv", "long.csv"},
		XAxis:     "day",
		YAxis:     "temp",
		Reference: "long.csv",
	}, 0)
	require.NoError(t, err)
	require.Len(t, c.Series, 2)
	assert.Len(t, c.Series["long.csv"], 5)
	assert.Len(t, c.Series["short.csv"], 3)
	assert.Equal(t, Point{X: "3", Y: "22"}, c.Series["short.csv"][2])
	assert.Equal(t, "long.csv", c.Reference)
}

func TestAlignKeepsMissingCells(t *testing.T) {
	tb, err := table.FromRecords([][]string{{"x", "y"}, {"1", ""}, {"", "b"}})
	require.NoError(t, err)
	c, err := Align(context.Background(), mapResolver{"a": tb}, Request{Datasets: []string{"a"}, XAxis: "x", YAxis: "y"}, 1)
	require.NoError(t, err)
	assert.Equal(t, []Point{{X: "1", Y: ""}, {X: "", Y: "b"}}, c.Series["a"])
}

func TestAlignMissingColumn(t *testing.T) {
	r := mapResolver{"a": series(t, 2)}
	_, err := Align(context.Background(), r, Request{Datasets: []string{"a"}, XAxis: "day", YAxis: "rain"}, 2)
	assert.ErrorIs(t, err, table.ErrAttributeNotFound)
}

func TestAlignResolverError(t *testing.T) {
	_, err := Align(context.Background(), mapResolver{}, Request{Datasets: []string{"ghost"}, XAxis: "x", YAxis: "y"}, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestAlignCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Align(ctx, mapResolver{"a": series(t, 1)}, Request{Datasets: []string{"a"}, XAxis: "day", YAxis: "temp"}, 1)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestAlignEmptyRequest(t *testing.T) {
	c, err := Align(context.Background(), mapResolver{}, Request{XAxis: "x", YAxis: "y"}, 0)
	require.NoError(t, err)
	assert.Empty(t, c.Series)
}
