// Package compare extracts (x, y) point series from several datasets so they
// can be charted on shared axes. Values are paired by row position only;
// there is no join on matching x values, so series lengths follow each
// dataset's row count.
package compare

import (
	"context"
	"fmt"

	"github.com/KaramelBytes/datalens-cli/internal/table"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds how many datasets are loaded at once.
const DefaultWorkers = 4

// Resolver maps a dataset identifier to its table.
type Resolver interface {
	Table(id string) (*table.Table, error)
}

// Request names the datasets and axes to compare. Reference only labels the
// baseline series; it does not affect alignment.
type Request struct {
	Datasets  []string `json:"datasets"`
	XAxis     string   `json:"xAxis"`
	YAxis     string   `json:"yAxis"`
	Reference string   `json:"referenceDataset,omitempty"`
}

// Point is one positional pair of raw cell values. Missing cells are "".
type Point struct {
	X string `json:"x"`
	Y string `json:"y"`
}

// Chart holds one point series per dataset.
type Chart struct {
	Reference string             `json:"referenceDataset,omitempty"`
	XAxis     string             `json:"xAxis"`
	YAxis     string             `json:"yAxis"`
	Series    map[string][]Point `json:"series"`
}

// Align loads every requested dataset through r and zips its x and y columns
// row by row. workers <= 0 uses DefaultWorkers.
func Align(ctx context.Context, r Resolver, req Request, workers int) (*Chart, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	ids := dedupe(req.Datasets)
	series := make([][]Point, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, id := range ids {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := r.Table(id)
			if err != nil {
				return fmt.Errorf("load %s: %w", id, err)
			}
			pts, err := Points(t, req.XAxis, req.YAxis)
			if err != nil {
				return fmt.Errorf("dataset %s: %w", id, err)
			}
			series[i] = pts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c := &Chart{Reference: req.Reference, XAxis: req.XAxis, YAxis: req.YAxis, Series: make(map[string][]Point, len(ids))}
	for i, id := range ids {
		c.Series[id] = series[i]
	}
	return c, nil
}

// Points pairs row i of column x with row i of column y.
func Points(t *table.Table, x, y string) ([]Point, error) {
	xs, err := t.Cells(x)
	if err != nil {
		return nil, err
	}
	ys, err := t.Cells(y)
	if err != nil {
		return nil, err
	}
	out := make([]Point, len(xs))
	for i := range xs {
		out[i] = Point{X: xs[i], Y: ys[i]}
	}
	return out, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
