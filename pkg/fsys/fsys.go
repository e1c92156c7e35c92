// Package fsys provides the file-store and path-resolver capability ports
// consumed by the skill engine. The default implementation is backed by
// afero, so production code runs against the OS filesystem while tests can
// run against an in-memory one.
package fsys

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// FileStore is the filesystem capability consumed by the skill engine.
// Implementations must make RemoveDir tolerant of absent paths and CopyDir
// overwrite existing files.
type FileStore interface {
	Exists(path string) bool
	EnsureDir(path string) error
	RemoveDir(path string) error
	CopyDir(src, dst string) error
	ReadFile(path string) (string, error)
	WriteFile(path string, content string) error
	ListDirectories(path string) ([]string, error)
}

// Store implements FileStore on top of an afero filesystem.
type Store struct {
	fs afero.Fs
}

// NewOSStore returns a FileStore backed by the operating system filesystem.
func NewOSStore() *Store {
	return &Store{fs: afero.NewOsFs()}
}

// NewMemStore returns a FileStore backed by an in-memory filesystem.
func NewMemStore() *Store {
	return &Store{fs: afero.NewMemMapFs()}
}

// NewStore wraps an arbitrary afero filesystem.
func NewStore(fs afero.Fs) *Store {
	return &Store{fs: fs}
}

// Exists reports whether the path exists as a file or directory.
func (s *Store) Exists(path string) bool {
	_, err := s.fs.Stat(path)
	return err == nil
}

// EnsureDir creates the directory and any missing parents.
func (s *Store) EnsureDir(path string) error {
	return errors.Wrapf(s.fs.MkdirAll(path, 0o755), "failed to create directory %s", path)
}

// RemoveDir removes the directory tree at path. Absent paths are a no-op.
func (s *Store) RemoveDir(path string) error {
	return errors.Wrapf(s.fs.RemoveAll(path), "failed to remove %s", path)
}

// CopyDir recursively copies src into dst, overwriting existing files.
func (s *Store) CopyDir(src, dst string) error {
	err := afero.Walk(s.fs, src, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		destPath := filepath.Join(dst, relPath)

		if info.IsDir() {
			return s.fs.MkdirAll(destPath, 0o755)
		}

		data, err := afero.ReadFile(s.fs, path)
		if err != nil {
			return err
		}
		if err := s.fs.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return err
		}
		return afero.WriteFile(s.fs, destPath, data, info.Mode().Perm())
	})
	return errors.Wrapf(err, "failed to copy %s to %s", src, dst)
}

// ReadFile returns the file content as text.
func (s *Store) ReadFile(path string) (string, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s", path)
	}
	return string(data), nil
}

// WriteFile writes text content, creating parent directories as needed.
func (s *Store) WriteFile(path string, content string) error {
	if err := s.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create parent directory for %s", path)
	}
	return errors.Wrapf(afero.WriteFile(s.fs, path, []byte(content), 0o644), "failed to write %s", path)
}

// ListDirectories returns the names of the immediate child directories of
// path, sorted. A missing path yields an error the caller may treat as
// "nothing to list".
func (s *Store) ListDirectories(path string) ([]string, error) {
	entries, err := afero.ReadDir(s.fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %s", path)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() {
			// Follow symlinked directories the way os.Stat would.
			info, err := s.fs.Stat(filepath.Join(path, name))
			if err != nil || !info.IsDir() {
				continue
			}
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// PathResolver is the path capability port: platform-appropriate joining
// and home-directory expansion.
type PathResolver interface {
	Join(segments ...string) string
	ExpandHome(path string) (string, error)
}

// OSPathResolver resolves paths against the current user environment.
type OSPathResolver struct{}

// Join joins path segments with the platform separator.
func (OSPathResolver) Join(segments ...string) string {
	return filepath.Join(segments...)
}

// ExpandHome expands a leading "~" to the current user's home directory.
func (OSPathResolver) ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~"+string(os.PathSeparator)) && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user home directory")
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}
