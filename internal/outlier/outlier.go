// Package outlier filters anomalous rows out of a table. Both strategies are
// pure: the input table is never modified and a new table is returned.
package outlier

import (
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/datalens-cli/internal/analysis"
	"github.com/KaramelBytes/datalens-cli/internal/table"
	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultIQRFactor is the fence multiplier applied to the interquartile range.
	DefaultIQRFactor = 1.5
	// DefaultSigma is the number of standard deviations kept around the mean.
	DefaultSigma = 3.0
)

// Fence is the closed interval of accepted values for one column.
type Fence struct {
	Column string  `json:"column"`
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
}

// Contains reports whether v lies within the fence.
func (f Fence) Contains(v float64) bool { return v >= f.Lower && v <= f.Upper }

// IQR drops every row whose value in any restricted column lies outside that
// column's interquartile fences. columns == nil means all headers; the set is
// always narrowed to columns inferred as Numeric. Values that do not parse
// never cause a row to be dropped. The fences used are returned in column order.
func IQR(t *table.Table, columns []string, factor float64) (*table.Table, []Fence) {
	if factor <= 0 {
		factor = DefaultIQRFactor
	}
	if columns == nil {
		columns = t.Headers()
	}
	var fences []Fence
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if seen[c] {
			continue
		}
		seen[c] = true
		vals, _, err := t.Column(c)
		if err != nil || analysis.InferType(vals) != analysis.Numeric {
			continue
		}
		nums := analysis.ParseNumbers(vals)
		if len(nums) == 0 {
			continue
		}
		q1, q3 := quartiles(nums)
		iqr := q3 - q1
		fences = append(fences, Fence{Column: c, Lower: q1 - factor*iqr, Upper: q3 + factor*iqr})
	}
	out := t.Filter(func(row int) bool {
		for _, f := range fences {
			v, ok := t.Value(row, f.Column)
			if !ok {
				continue
			}
			x, ok := analysis.ParseNumber(v)
			if ok && !f.Contains(x) {
				return false
			}
		}
		return true
	})
	return out, fences
}

// quartiles uses index-based positions: Q1 = s[floor(n/4)], Q3 = s[ceil(3n/4)-1].
func quartiles(nums []float64) (q1, q3 float64) {
	s := append([]float64(nil), nums...)
	sort.Float64s(s)
	n := len(s)
	q1 = s[n/4]
	q3 = s[int(math.Ceil(3*float64(n)/4))-1]
	return q1, q3
}

// Bounds keeps only rows whose value in column parses as a number and lies
// within mean ± sigma·σ, with the population σ taken over every parseable
// value of the column. Missing or non-numeric cells are dropped.
func Bounds(t *table.Table, column string, sigma float64) (*table.Table, Fence, error) {
	if !t.Has(column) {
		return nil, Fence{}, fmt.Errorf("%w: %s", table.ErrAttributeNotFound, column)
	}
	if sigma <= 0 {
		sigma = DefaultSigma
	}
	vals, _, _ := t.Column(column)
	nums := analysis.ParseNumbers(vals)
	f := Fence{Column: column, Lower: math.NaN(), Upper: math.NaN()}
	if len(nums) > 0 {
		mean, variance := stat.PopMeanVariance(nums, nil)
		sd := math.Sqrt(variance)
		f.Lower, f.Upper = mean-sigma*sd, mean+sigma*sd
	}
	out := t.Filter(func(row int) bool {
		v, ok := t.Value(row, column)
		if !ok {
			return false
		}
		x, ok := analysis.ParseNumber(v)
		return ok && f.Contains(x)
	})
	return out, f, nil
}
