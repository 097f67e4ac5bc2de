package library

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/datalens-cli/internal/table"
	"github.com/KaramelBytes/datalens-cli/internal/utils"
)

// SaveTable writes t as CSV to dir/name and returns the full path. The first
// record is the header row.
func SaveTable(dir, name string, t *table.Table) (string, error) {
	if !utils.SafeBaseName(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if err := utils.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("ensure dir: %w", err)
	}
	var buf bytes.Buffer
	if err := t.WriteCSV(&buf); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return "", err
	}
	return path, nil
}
