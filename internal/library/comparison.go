package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/datalens-cli/internal/utils"
)

// Comparison is a saved chart configuration: which datasets to plot on which axes.
type Comparison struct {
	Datasets  []string `json:"datasets"`
	XAxis     string   `json:"xAxis"`
	YAxis     string   `json:"yAxis"`
	Reference string   `json:"referenceDataset"`
}

// MissingDatasetsError is returned when a saved comparison references
// datasets that are no longer in the library.
type MissingDatasetsError struct {
	Missing []string
}

func (e *MissingDatasetsError) Error() string {
	return fmt.Sprintf("missing files: %s", strings.Join(e.Missing, ", "))
}

// ErrComparisonNotFound indicates no saved comparison with the given name.
var ErrComparisonNotFound = errors.New("comparison not found")

// SaveComparison writes c to dir as <name>.json.
func SaveComparison(dir, name string, c Comparison) error {
	if !utils.SafeBaseName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if err := utils.EnsureDir(dir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	data, err := utils.PrettyJSON(c)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(dir, name+".json"), data)
}

// LoadComparison reads a saved comparison and checks that every dataset it
// references is still present in lib.
func LoadComparison(dir, name string, lib *Library) (*Comparison, error) {
	if !utils.SafeBaseName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	b, err := os.ReadFile(filepath.Join(dir, name+".json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrComparisonNotFound, name)
		}
		return nil, fmt.Errorf("read comparison: %w", err)
	}
	var c Comparison
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse comparison: %w", err)
	}
	var missing []string
	for _, ds := range c.Datasets {
		if !lib.Has(ds) {
			missing = append(missing, ds)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingDatasetsError{Missing: missing}
	}
	return &c, nil
}

// ListComparisons returns the names of the saved comparisons in dir, sorted.
// A missing directory has none.
func ListComparisons(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read configs dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}
