// Package fileutil writes key store and session files so that a reader never
// sees a partially written file.
package fileutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrEmptyPath indicates an empty file path was provided.
	ErrEmptyPath = errors.New("path is empty")

	// ErrExists is returned by CreateExclusive when path is already present.
	ErrExists = errors.New("file already exists")
)

// WriteAtomic replaces path with data. The data is staged in a temp file in
// the same directory, synced, then renamed over path.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	return commit(path, data, perm, func(tmpPath string) error {
		return os.Rename(tmpPath, path) //nolint:gosec // G703: path is built by the caller from validated names
	})
}

// CreateExclusive writes data to path only if path does not exist yet. The
// staged file is hard-linked into place, so two writers racing for the same
// name cannot both succeed.
func CreateExclusive(path string, data []byte, perm os.FileMode) error {
	return commit(path, data, perm, func(tmpPath string) error {
		if err := os.Link(tmpPath, path); err != nil {
			if errors.Is(err, os.ErrExist) {
				return ErrExists
			}
			return err
		}
		return nil
	})
}

// WriteJSON encodes v as indented JSON and replaces path with it, creating
// the parent directory with dirPerm when missing.
func WriteJSON(path string, v any, perm, dirPerm os.FileMode) error {
	if path == "" {
		return ErrEmptyPath
	}
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	return WriteAtomic(path, data, perm)
}

// RemoveIfExists deletes path. A missing file is not an error.
func RemoveIfExists(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// commit stages data next to path and hands the staged file to place.
// The staged file is always removed afterwards.
func commit(path string, data []byte, perm os.FileMode, place func(tmpPath string) error) error {
	if path == "" {
		return ErrEmptyPath
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if err := stage(tmp, data, perm); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := place(tmpPath); err != nil {
		if errors.Is(err, ErrExists) {
			return err
		}
		return fmt.Errorf("placing %s: %w", filepath.Base(path), err)
	}

	// The directory entry is synced on a best effort basis.
	if d, err := os.Open(dir); err == nil { //nolint:gosec // G304: dir is derived from the caller's path
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}

func stage(f *os.File, data []byte, perm os.FileMode) error {
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Chmod(perm); err != nil {
		return fmt.Errorf("setting temp file permissions: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	return nil
}
