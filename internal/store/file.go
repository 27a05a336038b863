package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/zulandar/track/internal/migrate"
)

// FileBackend keeps the store as one YAML document. Saves write a temp file
// next to the target and rename it into place, so readers see either the old
// or the new document. Concurrent writers are not coordinated: the last
// rename wins.
type FileBackend struct {
	Path string
}

// NewFileBackend returns a backend for the document at path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{Path: path}
}

// Load reads the document. A missing or empty file is an empty snapshot.
func (b *FileBackend) Load() (*migrate.Snapshot, error) {
	data, err := os.ReadFile(b.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return &migrate.Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file: read %s: %w", b.Path, err)
	}

	var snap migrate.Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("file: parse %s: %w", b.Path, err)
	}
	return &snap, nil
}

// Save replaces the document with snap.
func (b *FileBackend) Save(snap *migrate.Snapshot) error {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("file: marshal: %w", err)
	}

	dir := filepath.Dir(b.Path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(b.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("file: create temp in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("file: write %s: %w", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("file: sync %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file: close %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, b.Path); err != nil {
		return fmt.Errorf("file: replace %s: %w", b.Path, err)
	}
	return nil
}
