package analysis

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/datalens-cli/internal/table"
	"github.com/gomarkdown/markdown"
)

// Report is a markdown-friendly profile of a whole table.
type Report struct {
	Name       string             `json:"name"`
	Rows       int                `json:"rows"`
	Attributes []AttributeSummary `json:"attributes"`
}

// Profile summarizes every column of t. A column whose statistics cannot be
// computed still gets its type and counts, so one column never blocks others.
func Profile(name string, t *table.Table, bins int) *Report {
	rep := &Report{Name: name, Rows: t.NumRows()}
	for _, h := range t.Headers() {
		s, err := DescribeColumn(t, h, bins)
		if err != nil {
			continue
		}
		rep.Attributes = append(rep.Attributes, s)
	}
	return rep
}

// Markdown renders a compact report suitable for terminals or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Attributes)))

	b.WriteString("[ATTRIBUTES]\n")
	for _, a := range r.Attributes {
		missPct := 0.0
		if r.Rows > 0 {
			missPct = float64(a.Missing) * 100.0 / float64(r.Rows)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (missing %d / %.1f%%, distinct %d)",
			safeName(a.Name), a.DataType, a.Missing, missPct, a.Distinct))
		switch {
		case a.Stats != nil:
			b.WriteString(fmt.Sprintf("; min %.4g, max %.4g, mean %.4g, variance %.4g",
				a.Stats.Min, a.Stats.Max, a.Stats.Mean, a.Stats.Variance))
		case a.DataType == Nominal && len(a.Histogram.Labels) > 0:
			b.WriteString("; top: ")
			lim := len(a.Histogram.Labels)
			if lim > 8 {
				lim = 8
			}
			for i := 0; i < lim; i++ {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(fmt.Sprintf("%s(%d)", safeVal(a.Histogram.Labels[i]), a.Histogram.Counts[i]))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// AttributeMarkdown renders one attribute with its full histogram.
func AttributeMarkdown(a AttributeSummary) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[ATTRIBUTE] %s\n", safeName(a.Name)))
	b.WriteString(fmt.Sprintf("Type: %s\nMissing: %d\nDistinct: %d\n", a.DataType, a.Missing, a.Distinct))
	if a.Stats != nil {
		b.WriteString(fmt.Sprintf("Min: %g\nMax: %g\nMean: %g\nVariance: %g\n", a.Stats.Min, a.Stats.Max, a.Stats.Mean, a.Stats.Variance))
	}
	if len(a.Histogram.Labels) > 0 {
		b.WriteString("\n| bin | count |\n| --- | --- |\n")
		for i, l := range a.Histogram.Labels {
			b.WriteString(fmt.Sprintf("| %s | %d |\n", safeVal(l), a.Histogram.Counts[i]))
		}
	}
	return b.String()
}

// HTML renders the Markdown report as an HTML fragment.
func (r *Report) HTML() string {
	return string(markdown.ToHTML([]byte(r.Markdown()), nil, nil))
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}
func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
