package analysis

import (
	"fmt"
	"math"
)

// DefaultBins is the bucket count used for numeric histograms.
const DefaultBins = 10

// Histogram holds parallel bucket labels and counts. For numeric columns a
// label is the lower edge of its bin; for nominal columns it is the value.
type Histogram struct {
	Labels []string `json:"labels,omitempty"`
	Counts []int    `json:"histogram,omitempty"`
}

// Total returns the sum of all counts.
func (h Histogram) Total() int {
	n := 0
	for _, c := range h.Counts {
		n += c
	}
	return n
}

// BuildHistogram buckets values into equal-width bins between min and max.
// The maximum lands in the last bin. When every value is equal the result is
// a single bin labelled with that value.
func BuildHistogram(values []float64, bins int) Histogram {
	if len(values) == 0 {
		return Histogram{}
	}
	if bins <= 0 {
		bins = DefaultBins
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	width := (hi - lo) / float64(bins)
	if width == 0 || math.IsInf(width, 0) || math.IsNaN(width) {
		return Histogram{Labels: []string{fmt.Sprintf("%.2f", lo)}, Counts: []int{len(values)}}
	}
	counts := make([]int, bins)
	for _, v := range values {
		idx := int(math.Floor((v - lo) / width))
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		counts[idx]++
	}
	labels := make([]string, bins)
	for i := range labels {
		labels[i] = fmt.Sprintf("%.2f", lo+float64(i)*width)
	}
	return Histogram{Labels: labels, Counts: counts}
}

// frequencies counts raw values in first-seen order.
func frequencies(values []string) Histogram {
	pos := make(map[string]int)
	var h Histogram
	for _, v := range values {
		i, ok := pos[v]
		if !ok {
			i = len(h.Labels)
			pos[v] = i
			h.Labels = append(h.Labels, v)
			h.Counts = append(h.Counts, 0)
		}
		h.Counts[i]++
	}
	return h
}
