// Package vfs provides a virtual filesystem abstraction for testing and production use.
// It wraps afero to provide a consistent interface for filesystem operations.
package vfs

import (
	"os"

	"github.com/spf13/afero"
)

// FS is the filesystem interface used throughout the codebase.
// It provides an abstraction over real and in-memory filesystems.
type FS = afero.Fs

// NewOSFS returns a filesystem backed by the real operating system filesystem.
func NewOSFS() FS {
	return afero.NewOsFs()
}

// NewMemMapFS returns an in-memory filesystem for testing purposes.
func NewMemMapFS() FS {
	return afero.NewMemMapFs()
}

// FileExists checks whether path exists and is a regular file on the given
// filesystem. Returns (false, nil) if the path does not exist and
// (false, error) for other failures such as permission errors.
func FileExists(fs FS, path string) (bool, error) {
	info, err := fs.Stat(path)
	if err == nil {
		return !info.IsDir(), nil
	}

	if os.IsNotExist(err) {
		return false, nil
	}

	return false, err
}

// DirExists checks whether path exists and is a directory on the given filesystem.
func DirExists(fs FS, path string) (bool, error) {
	info, err := fs.Stat(path)
	if err == nil {
		return info.IsDir(), nil
	}

	if os.IsNotExist(err) {
		return false, nil
	}

	return false, err
}

// ReadFile reads the contents of a file from the given filesystem.
func ReadFile(fs FS, filename string) ([]byte, error) {
	return afero.ReadFile(fs, filename)
}

// IsOSFS reports whether the given filesystem is backed by the real OS.
// Symlink-aware operations are only meaningful against the OS filesystem;
// in-memory filesystems have no symlinks to resolve.
func IsOSFS(fs FS) bool {
	_, ok := fs.(*afero.OsFs)
	return ok
}
