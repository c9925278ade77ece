package archive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DirStore implements Store using a directory on the local file system.
// Artifacts are written to a temporary file and renamed into place, so a
// crash mid-write never leaves a partial artifact under its final name.
type DirStore struct {
	root string
}

// NewDirStore creates a DirStore rooted at the given directory, creating it
// if necessary.
func NewDirStore(root string) (*DirStore, error) {
	if err := os.MkdirAll(root, 0750); err != nil {
		return nil, fmt.Errorf("archive: create root: %w", err)
	}
	return &DirStore{root: root}, nil
}

// Put writes an artifact atomically under the given name.
func (s *DirStore) Put(_ context.Context, name string, data []byte) (err error) {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("archive: create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".archive-*")
	if err != nil {
		return fmt.Errorf("archive: create temp file: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("archive: write %s: %w", name, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("archive: sync %s: %w", name, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("archive: close %s: %w", name, err)
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("archive: finalize %s: %w", name, err)
	}

	return nil
}

// Get reads an artifact back.
func (s *DirStore) Get(_ context.Context, name string) ([]byte, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: Path is rooted and cleaned
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("archive: read %s: %w", name, err)
	}
	return data, nil
}

// List returns all artifact names matching the prefix, unordered.
func (s *DirStore) List(_ context.Context, prefix string) ([]string, error) {
	var names []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".archive-") {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("archive: list: %w", err)
	}
	return names, nil
}

// Delete removes an artifact.
func (s *DirStore) Delete(_ context.Context, name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("archive: delete %s: %w", name, err)
	}
	return nil
}

// path resolves an artifact name below the store root, rejecting names that
// escape it.
func (s *DirStore) path(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("archive: invalid artifact name %q", name)
	}
	return filepath.Join(s.root, clean), nil
}
