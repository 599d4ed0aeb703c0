// Package util provides path, URL, and collection helpers shared across the codebase.
package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	homedir "github.com/mitchellh/go-homedir"

	"github.com/mosaic-build/mosaic/internal/errors"
	"github.com/mosaic-build/mosaic/internal/vfs"
)

// PathNotFoundError is returned when a path that must exist does not.
type PathNotFoundError struct {
	Path string
}

func (err PathNotFoundError) Error() string {
	return fmt.Sprintf("path %s does not exist", err.Path)
}

// SymlinkCycleError is returned when resolving a path runs into a symlink loop.
type SymlinkCycleError struct {
	Path string
}

func (err SymlinkCycleError) Error() string {
	return fmt.Sprintf("symlink cycle detected while resolving %s", err.Path)
}

// CanonicalPath returns the canonical version of the given path, relative to the
// given base path. That is, if the given path is a relative path, assume it is
// relative to the given base path. A canonical path is an absolute path with all
// relative components (e.g. "../") fully resolved, which makes it safe to compare
// paths as strings. The path does not need to exist; no symlinks are resolved.
func CanonicalPath(path string, basePath string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", errors.WithStackTrace(err)
	}

	path = expanded
	if !filepath.IsAbs(path) {
		path = filepath.Join(basePath, path)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", errors.WithStackTrace(err)
	}

	return filepath.Clean(absPath), nil
}

// ResolveCanonicalPath canonicalizes the given path against basePath and verifies
// it exists on the given filesystem. Against the OS filesystem, symlinks are
// resolved so that two aliases of the same directory compare equal as strings.
// Returns a PathNotFoundError if the path does not exist and a SymlinkCycleError
// if resolution runs into a symlink loop.
func ResolveCanonicalPath(fsys vfs.FS, path string, basePath string) (string, error) {
	canonical, err := CanonicalPath(path, basePath)
	if err != nil {
		return "", err
	}

	if _, err := fsys.Stat(canonical); err != nil {
		if os.IsNotExist(err) {
			return "", errors.New(PathNotFoundError{Path: canonical})
		}

		if isSymlinkLoop(err) {
			return "", errors.New(SymlinkCycleError{Path: canonical})
		}

		return "", errors.WithStackTrace(err)
	}

	// In-memory filesystems have no symlinks to resolve.
	if !vfs.IsOSFS(fsys) {
		return canonical, nil
	}

	resolved, err := filepath.EvalSymlinks(canonical)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.New(PathNotFoundError{Path: canonical})
		}

		if isSymlinkLoop(err) {
			return "", errors.New(SymlinkCycleError{Path: canonical})
		}

		return "", errors.WithStackTrace(err)
	}

	return resolved, nil
}

// isSymlinkLoop reports whether the error indicates a symlink loop. EvalSymlinks
// reports ELOOP-like failures either as syscall.ELOOP or as its own "too many
// links" error, depending on the platform.
func isSymlinkLoop(err error) bool {
	return errors.Is(err, syscall.ELOOP) || strings.Contains(err.Error(), "too many links")
}

// GetPathRelativeTo returns the relative path you would have to take to get from
// basePath to path.
func GetPathRelativeTo(path string, basePath string) (string, error) {
	if path == "" {
		path = "."
	}

	if basePath == "" {
		basePath = "."
	}

	inputFolderAbs, err := filepath.Abs(basePath)
	if err != nil {
		return "", errors.WithStackTrace(err)
	}

	fileAbs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.WithStackTrace(err)
	}

	relPath, err := filepath.Rel(inputFolderAbs, fileAbs)
	if err != nil {
		return "", errors.WithStackTrace(err)
	}

	return filepath.ToSlash(relPath), nil
}

// ContainsPath reports whether child lies within the subtree rooted at parent.
// Both paths must already be canonical; the check is purely lexical.
func ContainsPath(parent string, child string) bool {
	if parent == child {
		return true
	}

	return strings.HasPrefix(child, parent+string(os.PathSeparator))
}
