// Package fsops provides read-only filesystem access with path safety checks.
//
// Every filesystem read performed while scanning group roots goes through the
// FS interface, so scans can be exercised against fakes that inject walk
// errors or misbehaving traversals.
//
// Key features:
//   - Recursive traversal via WalkDir (symlinks are not followed)
//   - Path validation for relative member paths
//   - Testable via the FS interface
package fsops

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FS provides an abstraction for filesystem reads.
type FS interface {
	// Lstat returns file info without following symlinks.
	Lstat(path string) (os.FileInfo, error)

	// Stat returns file info, following symlinks.
	Stat(path string) (os.FileInfo, error)

	// WalkDir walks the tree rooted at root, calling fn for each entry.
	// It has the semantics of filepath.WalkDir.
	WalkDir(root string, fn fs.WalkDirFunc) error

	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// EvalSymlinks returns path with every symlink resolved.
	EvalSymlinks(path string) (string, error)

	// ValidateRelPath validates a relative path for safety.
	ValidateRelPath(relPath string) error
}

// RealFS implements FS using actual OS operations.
type RealFS struct{}

// NewRealFS creates a new RealFS.
func NewRealFS() *RealFS {
	return &RealFS{}
}

// Lstat returns file info without following symlinks.
func (fs *RealFS) Lstat(path string) (os.FileInfo, error) {
	return os.Lstat(path)
}

// Stat returns file info, following symlinks.
func (fs *RealFS) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// WalkDir walks the tree rooted at root using filepath.WalkDir.
func (fs *RealFS) WalkDir(root string, fn fs.WalkDirFunc) error {
	return filepath.WalkDir(root, fn)
}

// ReadFile reads the entire contents of a file.
func (fs *RealFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// EvalSymlinks resolves symlinks using filepath.EvalSymlinks.
func (fs *RealFS) EvalSymlinks(path string) (string, error) {
	return filepath.EvalSymlinks(path)
}

// ValidateRelPath validates a relative path for safety.
// Returns an error if the path is empty, absolute, or climbs out of its root.
func (fs *RealFS) ValidateRelPath(relPath string) error {
	return ValidateRelPath(relPath)
}

// ValidateRelPath is the stateless form of RealFS.ValidateRelPath, usable by
// FS implementations that have no OS backing.
func ValidateRelPath(relPath string) error {
	cleaned := filepath.Clean(relPath)

	// Reject empty or current directory
	if cleaned == "" || cleaned == "." {
		return fmt.Errorf("invalid path: empty or current directory")
	}

	if filepath.IsAbs(cleaned) {
		return fmt.Errorf("invalid path: must be relative, got absolute path %q", cleaned)
	}

	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return fmt.Errorf("invalid path: path traversal not allowed in %q", cleaned)
	}

	return nil
}
