package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/KaramelBytes/datalens-cli/internal/parser"
	"github.com/KaramelBytes/datalens-cli/internal/table"
	"github.com/KaramelBytes/datalens-cli/internal/utils"
	"github.com/google/uuid"
)

const (
	manifestFileName = "library.json"
)

var (
	// ErrDatasetNotFound indicates a dataset name that is not in the library.
	ErrDatasetNotFound = errors.New("dataset not found")
	// ErrInvalidName indicates a name that is not a plain file name.
	ErrInvalidName = errors.New("invalid name")
)

// Library is a directory of dataset files plus a manifest describing them.
type Library struct {
	Entries   map[string]*Entry `json:"entries"`
	UpdatedAt time.Time         `json:"updated_at"`

	mu      sync.Mutex
	rootDir string
}

// Open loads the library rooted at dir, creating the directory if needed.
// Supported files present on disk but missing from the manifest are indexed,
// and entries whose files have vanished are dropped.
func Open(dir string) (*Library, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("ensure dir: %w", err)
	}
	l := &Library{Entries: make(map[string]*Entry), rootDir: dir}
	b, err := os.ReadFile(filepath.Join(dir, manifestFileName))
	switch {
	case err == nil:
		if err := json.Unmarshal(b, l); err != nil {
			return nil, fmt.Errorf("parse library manifest: %w", err)
		}
		if l.Entries == nil {
			l.Entries = make(map[string]*Entry)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("read library manifest: %w", err)
	}
	changed, err := l.reconcile()
	if err != nil {
		return nil, err
	}
	if changed {
		if err := l.save(); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// RootDir returns the on-disk library directory.
func (l *Library) RootDir() string { return l.rootDir }

func (l *Library) reconcile() (bool, error) {
	files, err := os.ReadDir(l.rootDir)
	if err != nil {
		return false, fmt.Errorf("list library: %w", err)
	}
	changed := false
	onDisk := make(map[string]bool, len(files))
	for _, f := range files {
		if f.IsDir() || strings.HasPrefix(f.Name(), ".") || !parser.Supported(f.Name()) {
			continue
		}
		onDisk[f.Name()] = true
		if _, ok := l.Entries[f.Name()]; ok {
			continue
		}
		e, err := l.index(f.Name())
		if err != nil {
			// unreadable files stay on disk but are not listed
			continue
		}
		l.Entries[e.Name] = e
		changed = true
	}
	for name := range l.Entries {
		if !onDisk[name] {
			delete(l.Entries, name)
			changed = true
		}
	}
	return changed, nil
}

func (l *Library) index(name string) (*Entry, error) {
	path := filepath.Join(l.rootDir, name)
	t, err := parser.ParseFile(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat dataset: %w", err)
	}
	return &Entry{
		ID:      uuid.NewString(),
		Name:    name,
		Path:    path,
		Rows:    t.NumRows(),
		Columns: t.NumCols(),
		AddedAt: info.ModTime(),
	}, nil
}

func (l *Library) save() error {
	l.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(l)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(l.rootDir, manifestFileName), data)
}

// Add copies the file at src into the library under its base name. A dataset
// with the same name is replaced.
func (l *Library) Add(src string) (*Entry, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return l.AddReader(filepath.Base(src), f)
}

// AddReader stores the content of r as name. The content must parse as a
// supported dataset; otherwise nothing is written.
func (l *Library) AddReader(name string, r io.Reader) (*Entry, error) {
	if !utils.SafeBaseName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if !parser.Supported(name) {
		return nil, fmt.Errorf("%w: %s", parser.ErrUnsupported, filepath.Ext(name))
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	// keep the extension on the temp file so the parser registry can pick it
	tmp, err := os.CreateTemp(l.rootDir, ".upload-*-"+name)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("write dataset: %w", err)
	}
	t, err := parser.ParseFile(tmpPath)
	if err != nil {
		return nil, err
	}
	dst := filepath.Join(l.rootDir, name)
	if err := os.Rename(tmpPath, dst); err != nil {
		return nil, fmt.Errorf("store dataset: %w", err)
	}
	e := &Entry{
		ID:      uuid.NewString(),
		Name:    name,
		Path:    dst,
		Rows:    t.NumRows(),
		Columns: t.NumCols(),
		AddedAt: time.Now(),
	}
	l.Entries[name] = e
	if err := l.save(); err != nil {
		return nil, err
	}
	cp := *e
	return &cp, nil
}

// List returns the entries sorted by name.
func (l *Library) List() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, 0, len(l.Entries))
	for _, e := range l.Entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Has reports whether name is in the library.
func (l *Library) Has(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.Entries[name]
	return ok
}

// Path returns the on-disk path of a dataset.
func (l *Library) Path(name string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.Entries[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrDatasetNotFound, name)
	}
	return e.Path, nil
}

// Delete removes a dataset file and its entry.
func (l *Library) Delete(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.Entries[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrDatasetNotFound, name)
	}
	if err := os.Remove(e.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete dataset: %w", err)
	}
	delete(l.Entries, name)
	return l.save()
}

// Table parses a dataset from the library.
func (l *Library) Table(name string) (*table.Table, error) {
	path, err := l.Path(name)
	if err != nil {
		return nil, err
	}
	t, err := parser.ParseFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, name)
		}
		return nil, err
	}
	return t, nil
}

// Attributes returns the headers of a dataset.
func (l *Library) Attributes(name string) ([]string, error) {
	t, err := l.Table(name)
	if err != nil {
		return nil, err
	}
	return t.Headers(), nil
}
