package vfs

import (
	"bytes"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemFS implements VFS using an in-memory file system.
// It is primarily used for testing.
//
// MemFS is safe for concurrent use.
type MemFS struct {
	mu    sync.RWMutex
	files map[string]*memFile
	dirs  map[string]bool
}

type memFile struct {
	content []byte
	mode    fs.FileMode
	modTime time.Time
	symlink bool
}

// NewMemFS creates a new in-memory file system.
func NewMemFS() *MemFS {
	return &MemFS{
		files: make(map[string]*memFile),
		dirs:  map[string]bool{"/": true},
	}
}

// Ensure MemFS implements VFS.
var _ VFS = (*MemFS)(nil)

// cleanPath normalizes a path to an absolute, cleaned form.
func (m *MemFS) cleanPath(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// Open opens a file for reading.
func (m *MemFS) Open(filePath string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	filePath = m.cleanPath(filePath)
	f, ok := m.files[filePath]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: filePath, Err: fs.ErrNotExist}
	}
	return io.NopCloser(bytes.NewReader(f.content)), nil
}

// ReadFile reads the entire file content.
func (m *MemFS) ReadFile(filePath string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	filePath = m.cleanPath(filePath)
	f, ok := m.files[filePath]
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: filePath, Err: fs.ErrNotExist}
	}

	// Return a copy to prevent modification
	content := make([]byte, len(f.content))
	copy(content, f.content)
	return content, nil
}

// Stat returns file information.
func (m *MemFS) Stat(filePath string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	filePath = m.cleanPath(filePath)

	if f, ok := m.files[filePath]; ok {
		return NewFileInfo(filePath, path.Base(filePath), int64(len(f.content)), f.mode, f.modTime, false, f.symlink), nil
	}
	if m.dirs[filePath] {
		return NewFileInfo(filePath, path.Base(filePath), 0, fs.ModeDir|0755, time.Now(), true, false), nil
	}
	return FileInfo{}, &fs.PathError{Op: "stat", Path: filePath, Err: fs.ErrNotExist}
}

// ReadDir reads a directory and returns its immediate entries sorted by name.
func (m *MemFS) ReadDir(dirPath string) ([]FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dirPath = m.cleanPath(dirPath)
	if !m.dirs[dirPath] {
		return nil, &fs.PathError{Op: "readdir", Path: dirPath, Err: fs.ErrNotExist}
	}

	var infos []FileInfo
	for p, f := range m.files {
		if path.Dir(p) == dirPath {
			infos = append(infos, NewFileInfo(p, path.Base(p), int64(len(f.content)), f.mode, f.modTime, false, f.symlink))
		}
	}
	for p := range m.dirs {
		if p != dirPath && path.Dir(p) == dirPath {
			infos = append(infos, NewFileInfo(p, path.Base(p), 0, fs.ModeDir|0755, time.Now(), true, false))
		}
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })
	return infos, nil
}

// WriteFile writes data to a file, creating it and any parent directories.
func (m *MemFS) WriteFile(filePath string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	filePath = m.cleanPath(filePath)
	if m.dirs[filePath] {
		return &fs.PathError{Op: "write", Path: filePath, Err: fs.ErrInvalid}
	}

	m.mkdirAllLocked(path.Dir(filePath))
	content := make([]byte, len(data))
	copy(content, data)
	m.files[filePath] = &memFile{content: content, mode: perm, modTime: time.Now()}
	return nil
}

// MkdirAll creates a directory and all parent directories.
func (m *MemFS) MkdirAll(dirPath string, _ fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	dirPath = m.cleanPath(dirPath)
	if _, ok := m.files[dirPath]; ok {
		return &fs.PathError{Op: "mkdir", Path: dirPath, Err: fs.ErrExist}
	}
	m.mkdirAllLocked(dirPath)
	return nil
}

// mkdirAllLocked creates dirPath and its parents. Caller holds the lock.
func (m *MemFS) mkdirAllLocked(dirPath string) {
	for p := dirPath; p != "/" && !m.dirs[p]; p = path.Dir(p) {
		m.dirs[p] = true
	}
}

// Remove removes a file or empty directory.
func (m *MemFS) Remove(filePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	filePath = m.cleanPath(filePath)
	if _, ok := m.files[filePath]; ok {
		delete(m.files, filePath)
		return nil
	}
	if m.dirs[filePath] {
		for p := range m.files {
			if path.Dir(p) == filePath {
				return &fs.PathError{Op: "remove", Path: filePath, Err: fs.ErrInvalid}
			}
		}
		for p := range m.dirs {
			if p != filePath && path.Dir(p) == filePath {
				return &fs.PathError{Op: "remove", Path: filePath, Err: fs.ErrInvalid}
			}
		}
		delete(m.dirs, filePath)
		return nil
	}
	return &fs.PathError{Op: "remove", Path: filePath, Err: fs.ErrNotExist}
}

// Abs returns the absolute path.
func (m *MemFS) Abs(p string) (string, error) {
	return m.cleanPath(p), nil
}

// Join joins path elements.
func (m *MemFS) Join(elem ...string) string {
	return path.Join(elem...)
}

// Dir returns the directory portion of a path.
func (m *MemFS) Dir(p string) string {
	return path.Dir(p)
}

// Base returns the last element of a path.
func (m *MemFS) Base(p string) string {
	return path.Base(p)
}

// Ext returns the file extension.
func (m *MemFS) Ext(p string) string {
	return path.Ext(p)
}

// Exists returns true if the path exists.
func (m *MemFS) Exists(p string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p = m.cleanPath(p)
	_, ok := m.files[p]
	return ok || m.dirs[p]
}

// IsDir returns true if the path is a directory.
func (m *MemFS) IsDir(p string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dirs[m.cleanPath(p)]
}

// AddSymlink records a symlink entry pointing at existing content.
// MemFS does not resolve symlinks; the flag is only surfaced via FileInfo.
func (m *MemFS) AddSymlink(filePath string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	filePath = m.cleanPath(filePath)
	m.mkdirAllLocked(path.Dir(filePath))
	m.files[filePath] = &memFile{content: content, mode: fs.ModeSymlink | 0644, modTime: time.Now(), symlink: true}
}
