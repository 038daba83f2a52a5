// Package vfs provides a virtual file system abstraction.
//
// The VFS interface allows swapping the underlying file system implementation,
// enabling testing with in-memory file systems. The related-file engine only
// ever reads from the file system; the write operations exist so tests and
// staging areas can build fixtures through the same interface.
package vfs

import (
	"io"
	"io/fs"
	"time"
)

// VFS is a virtual file system abstraction.
type VFS interface {
	// Read operations

	// Open opens a file for reading.
	Open(path string) (io.ReadCloser, error)

	// ReadFile reads the entire file content.
	ReadFile(path string) ([]byte, error)

	// Stat returns file information.
	Stat(path string) (FileInfo, error)

	// ReadDir reads a directory and returns its immediate entries.
	ReadDir(path string) ([]FileInfo, error)

	// Write operations

	// WriteFile writes data to a file, creating it if necessary.
	WriteFile(path string, data []byte, perm fs.FileMode) error

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string, perm fs.FileMode) error

	// Remove removes a file or empty directory.
	Remove(path string) error

	// Path operations

	// Abs returns the absolute path.
	Abs(path string) (string, error)

	// Join joins path elements.
	Join(elem ...string) string

	// Dir returns the directory portion of a path.
	Dir(path string) string

	// Base returns the last element of a path.
	Base(path string) string

	// Ext returns the file extension.
	Ext(path string) string

	// Query operations

	// Exists returns true if the path exists.
	Exists(path string) bool

	// IsDir returns true if the path is a directory.
	IsDir(path string) bool
}

// FileInfo describes a file system entry.
type FileInfo struct {
	path    string
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
	symlink bool
}

// NewFileInfo creates a FileInfo with the given attributes.
func NewFileInfo(path, name string, size int64, mode fs.FileMode, modTime time.Time, isDir, symlink bool) FileInfo {
	return FileInfo{
		path:    path,
		name:    name,
		size:    size,
		mode:    mode,
		modTime: modTime,
		isDir:   isDir,
		symlink: symlink,
	}
}

// Path returns the full path of the entry.
func (fi FileInfo) Path() string { return fi.path }

// Name returns the base name of the entry.
func (fi FileInfo) Name() string { return fi.name }

// Size returns the entry size in bytes.
func (fi FileInfo) Size() int64 { return fi.size }

// Mode returns the file mode.
func (fi FileInfo) Mode() fs.FileMode { return fi.mode }

// ModTime returns the modification time.
func (fi FileInfo) ModTime() time.Time { return fi.modTime }

// IsDir returns true if the entry is a directory.
func (fi FileInfo) IsDir() bool { return fi.isDir }

// IsSymlink returns true if the entry is a symbolic link.
func (fi FileInfo) IsSymlink() bool { return fi.symlink }

// IsFile returns true if the entry is a regular file or a symlink to one.
// Directory entries are never eligible related-file candidates.
func (fi FileInfo) IsFile() bool { return !fi.isDir }
