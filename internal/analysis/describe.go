package analysis

import (
	"github.com/KaramelBytes/datalens-cli/internal/table"
	"github.com/montanaflynn/stats"
)

// Stats are the descriptive statistics of a numeric column. Variance is the
// population variance (divided by N).
type Stats struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
}

// AttributeSummary describes one column of the current table.
type AttributeSummary struct {
	Name      string    `json:"name"`
	DataType  DataType  `json:"dataType"`
	Missing   int       `json:"missingValues"`
	Distinct  int       `json:"distinctValues"`
	Stats     *Stats    `json:"stats,omitempty"`
	Histogram Histogram `json:"histogramData"`
}

// Describe builds the summary of a column from its non-missing values.
// totalRows is the table's row count, so Missing = totalRows - len(values).
// Date columns get neither stats nor a histogram.
func Describe(name string, values []string, totalRows, bins int) AttributeSummary {
	s := AttributeSummary{
		Name:     name,
		DataType: InferType(values),
		Missing:  totalRows - len(values),
		Distinct: distinct(values),
	}
	switch s.DataType {
	case Numeric:
		nums := ParseNumbers(values)
		if st, ok := numericStats(nums); ok {
			s.Stats = &st
			s.Histogram = BuildHistogram(nums, bins)
		}
	case Nominal:
		s.Histogram = frequencies(values)
	}
	return s
}

// DescribeColumn summarizes one column of t.
func DescribeColumn(t *table.Table, name string, bins int) (AttributeSummary, error) {
	vals, _, err := t.Column(name)
	if err != nil {
		return AttributeSummary{}, err
	}
	return Describe(name, vals, t.NumRows(), bins), nil
}

// numericStats reports ok=false for an empty set instead of producing NaN.
func numericStats(nums []float64) (Stats, bool) {
	if len(nums) == 0 {
		return Stats{}, false
	}
	data := stats.Float64Data(nums)
	minV, err := stats.Min(data)
	if err != nil {
		return Stats{}, false
	}
	maxV, _ := stats.Max(data)
	mean, _ := stats.Mean(data)
	variance, _ := stats.PopulationVariance(data)
	return Stats{Min: minV, Max: maxV, Mean: mean, Variance: variance}, true
}

func distinct(values []string) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}
