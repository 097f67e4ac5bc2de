package parser

import (
	"fmt"
	"os"
	"strings"

	"github.com/KaramelBytes/datalens-cli/internal/table"
)

type csvParser struct{}

func (csvParser) CanParse(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

func (csvParser) Parse(path string) (*table.Table, error) {
	return ParseCSVFile(path, sniffDelimiter(path))
}

// ParseCSVFile reads a delimited file from disk. A zero delim means comma.
func ParseCSVFile(path string, delim rune) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return table.ReadCSV(f, delim)
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}
