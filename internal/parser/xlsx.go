package parser

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/datalens-cli/internal/table"
	"github.com/xuri/excelize/v2"
)

type xlsxParser struct{}

func (xlsxParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

func (xlsxParser) Parse(path string) (*table.Table, error) {
	return ParseXLSXFile(path, "")
}

// ParseXLSXFile reads one worksheet; an empty sheetName selects the first sheet.
// The first row holds the headers and cells are read as displayed text.
func ParseXLSXFile(path, sheetName string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	if sheetName == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: workbook has no sheets", table.ErrMalformedInput)
		}
		sheetName = sheets[0]
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheetName, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q is empty", table.ErrMalformedInput, sheetName)
	}
	t, err := table.New(rows[0])
	if err != nil {
		return nil, err
	}
	ncol := len(rows[0])
	for _, r := range rows[1:] {
		// excelize trims trailing empty cells
		if len(r) < ncol {
			tmp := make([]string, ncol)
			copy(tmp, r)
			r = tmp
		}
		if err := t.AppendRow(r); err != nil {
			return nil, err
		}
	}
	return t, nil
}
