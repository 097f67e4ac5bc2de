package parser

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/datalens-cli/internal/table"
)

// Parser turns a dataset file into a Table.
type Parser interface {
	CanParse(filename string) bool
	Parse(path string) (*table.Table, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// ParseFile selects a parser based on filename and returns the complete table.
func ParseFile(path string) (*table.Table, error) {
	for _, p := range registry {
		if p.CanParse(path) {
			t, err := p.Parse(path)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
			}
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
}

// ParseSheet is ParseFile with an explicit worksheet for spreadsheet files.
// sheet is ignored for delimited formats; an empty sheet selects the first.
func ParseSheet(path, sheet string) (*table.Table, error) {
	if sheet == "" || !(xlsxParser{}).CanParse(path) {
		return ParseFile(path)
	}
	t, err := ParseXLSXFile(path, sheet)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// Supported reports whether some registered parser accepts filename.
func Supported(filename string) bool {
	for _, p := range registry {
		if p.CanParse(filename) {
			return true
		}
	}
	return false
}

func init() {
	Register(csvParser{})
	Register(xlsxParser{})
}

// ErrUnsupported indicates a format is not supported yet.
var ErrUnsupported = errors.New("unsupported dataset format")
