// Package store holds the current dataset and the path of the file it was
// loaded from. Writers are serialized and readers receive copies, so callers
// never observe a partially applied change.
package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/KaramelBytes/datalens-cli/internal/analysis"
	"github.com/KaramelBytes/datalens-cli/internal/table"
)

var (
	// ErrEmptyStore indicates no dataset has been loaded.
	ErrEmptyStore = errors.New("no dataset available")
	// ErrSourceUnavailable indicates the backing file can no longer be read.
	ErrSourceUnavailable = errors.New("source unavailable")
)

// Loader reads a complete table from a file path.
type Loader func(path string) (*table.Table, error)

// Summary is the shape reported for the current dataset.
type Summary struct {
	Name          string `json:"name"`
	NumAttributes int    `json:"numAttributes"`
	NumInstances  int    `json:"numInstances"`
}

// Store is the holder of the current table. The zero value is not usable; call New.
type Store struct {
	mu     sync.RWMutex
	load   Loader
	table  *table.Table
	source string
}

// New returns an empty store that re-reads sources with load.
func New(load Loader) *Store {
	return &Store{load: load}
}

// Load replaces the current state wholesale. The table is copied.
func (s *Store) Load(t *table.Table, source string) error {
	if t == nil {
		return fmt.Errorf("%w: nil table", table.ErrMalformedInput)
	}
	cp := t.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table, s.source = cp, source
	return nil
}

// LoadFile parses path and makes it the current dataset.
func (s *Store) LoadFile(path string) error {
	t, err := s.load(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table, s.source = t, path
	return nil
}

// RemoveAttributes deletes the named columns from the current table and
// returns the ones that existed. Unknown names and an empty store are no-ops.
func (s *Store) RemoveAttributes(names ...string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.table == nil {
		return nil
	}
	return s.table.RemoveColumns(names...)
}

// Reload re-reads the backing file and discards every edit made since the
// last load. On failure the current state is left untouched.
func (s *Store) Reload() error {
	s.mu.RLock()
	source := s.source
	s.mu.RUnlock()
	if source == "" {
		return ErrEmptyStore
	}
	t, err := s.load(source)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, filepath.Base(source), err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	// a concurrent Load switched sources while we were reading
	if s.source != source {
		return nil
	}
	s.table = t
	return nil
}

// Commit replaces the current table while keeping the backing source, e.g. to
// apply an outlier filter result.
func (s *Store) Commit(t *table.Table) error {
	if t == nil {
		return fmt.Errorf("%w: nil table", table.ErrMalformedInput)
	}
	cp := t.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.table == nil {
		return ErrEmptyStore
	}
	s.table = cp
	return nil
}

// Summary reports the name of the source and the table's shape.
func (s *Store) Summary() (Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.table == nil {
		return Summary{}, ErrEmptyStore
	}
	return Summary{
		Name:          filepath.Base(s.source),
		NumAttributes: s.table.NumCols(),
		NumInstances:  s.table.NumRows(),
	}, nil
}

// Snapshot returns a copy of the current table.
func (s *Store) Snapshot() (*table.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.table == nil {
		return nil, ErrEmptyStore
	}
	return s.table.Clone(), nil
}

// Source returns the path of the backing file, or "" when empty.
func (s *Store) Source() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// Headers returns the current column names.
func (s *Store) Headers() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.table == nil {
		return nil, ErrEmptyStore
	}
	return s.table.Headers(), nil
}

// Attribute computes the summary of one column of the current table.
func (s *Store) Attribute(name string, bins int) (analysis.AttributeSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.table == nil {
		return analysis.AttributeSummary{}, ErrEmptyStore
	}
	return analysis.DescribeColumn(s.table, name, bins)
}
