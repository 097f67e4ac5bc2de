package analysis

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// DataType is the semantic type inferred for a column.
type DataType string

const (
	Numeric DataType = "Numeric"
	Date    DataType = "Date"
	Nominal DataType = "Nominal"
)

// dateLayout is the only accepted date shape (YYYY-MM-DD).
const dateLayout = "2006-01-02"

// InferType classifies the non-missing values of one column. A column is
// Numeric when every value is a finite number, otherwise Date when every value
// is a valid calendar date, otherwise Nominal. An empty sequence is Nominal.
func InferType(values []string) DataType {
	if len(values) == 0 {
		return Nominal
	}
	numeric, date := true, true
	for _, v := range values {
		if numeric {
			if _, ok := ParseNumber(v); !ok {
				numeric = false
			}
		}
		if date && !isDate(v) {
			date = false
		}
		if !numeric && !date {
			return Nominal
		}
	}
	if numeric {
		return Numeric
	}
	return Date
}

// ParseNumber parses a finite float from a raw cell. Surrounding whitespace is ignored.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseNumbers returns the parseable values of vals, dropping the rest.
func ParseNumbers(vals []string) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if f, ok := ParseNumber(v); ok {
			out = append(out, f)
		}
	}
	return out
}

func isDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}
