package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pageza/recipebox/backend/internal/model"
)

// File keeps snapshots in a local YAML file
type File struct {
	path string
}

// NewFile creates a snapshotter writing to path
func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Location() string {
	return f.path
}

func (f *File) Load(_ context.Context) ([]model.Recipe, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", f.path, err)
	}
	return decode(data)
}

// Save replaces the file atomically
func (f *File) Save(_ context.Context, recipes []model.Recipe) error {
	data, err := encode(recipes)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace snapshot %s: %w", f.path, err)
	}
	return nil
}
