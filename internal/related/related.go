package related

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dshills/filekin/internal/project/vfs"
	"github.com/dshills/filekin/internal/related/provider"
)

// Result is the outcome of a related-file lookup.
type Result struct {
	// Files is the ordered set of related paths, the queried file included.
	Files []string

	// Index is the position of the queried file within Files.
	Index int
}

// Finder resolves related files using the directory heuristic and the
// provider registry. A Finder is stateless per call and safe for concurrent
// use.
type Finder struct {
	fs       vfs.VFS
	registry *provider.Registry
	timeout  time.Duration
}

// Option configures a Finder.
type Option func(*Finder)

// WithTimeout sets the per-provider deadline.
func WithTimeout(d time.Duration) Option {
	return func(f *Finder) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// NewFinder creates a Finder over the given file system and provider
// registry. The registry may be nil when no providers participate.
func NewFinder(fs vfs.VFS, registry *provider.Registry, opts ...Option) *Finder {
	f := &Finder{
		fs:      fs,
		timeout: provider.DefaultTimeout,
	}
	if registry != nil {
		f.registry = registry
	} else {
		f.registry = provider.NewRegistry()
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Find returns the related files for path, ordered, with the queried path's
// position. extraExts optionally restricts the directory heuristic to the
// given extensions (leading dot optional).
//
// The directory scan and the provider fan-out run concurrently. A failing or
// slow provider contributes nothing; a failing directory read fails the whole
// lookup and is the only fatal case.
func (f *Finder) Find(ctx context.Context, path string, extraExts ...string) (Result, error) {
	// Snapshot the registry before fanning out so concurrent register or
	// dispose calls cannot affect this lookup.
	providers := f.registry.Snapshot()

	provided := make(chan []string, 1)
	go func() {
		provided <- provider.Collect(ctx, providers, path, f.timeout)
	}()

	siblings, err := f.scanDirectory(path, extraExts)
	if err != nil {
		return Result{}, err
	}

	return f.merge(path, siblings, <-provided), nil
}

// scanDirectory applies the naming heuristic to the siblings of path.
// The returned paths are literal on-disk names.
func (f *Finder) scanDirectory(path string, extraExts []string) ([]string, error) {
	dir := f.fs.Dir(path)
	entries, err := f.fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list directory %s: %w", dir, err)
	}

	queryStem, _ := splitExt(stripBackup(f.fs.Base(path)))
	queryKey := matchKey(queryStem)

	type candidate struct {
		name string
		ext  string
	}
	var matched []candidate
	for _, entry := range entries {
		if !entry.IsFile() {
			continue
		}
		stem, ext := splitExt(stripBackup(entry.Name()))
		if matchKey(stem) != queryKey {
			continue
		}
		matched = append(matched, candidate{name: entry.Name(), ext: ext})
	}

	// The extension whitelist restricts the candidate set; when it would
	// discard every candidate it is ignored and all matches are kept.
	if len(extraExts) > 0 {
		allowed := make(map[string]bool, len(extraExts))
		for _, ext := range extraExts {
			allowed[normalizeExt(ext)] = true
		}
		var filtered []candidate
		for _, c := range matched {
			if allowed[c.ext] {
				filtered = append(filtered, c)
			}
		}
		if len(filtered) > 0 {
			matched = filtered
		}
	}

	paths := make([]string, len(matched))
	for i, c := range matched {
		paths[i] = f.fs.Join(dir, c.name)
	}
	return paths, nil
}

// merge combines the heuristic and provider candidate sets with the queried
// path, de-duplicates by backup-stripped identity, and orders the result.
func (f *Finder) merge(path string, siblings, provided []string) Result {
	// literal on-disk name per stripped identity; a non-backup literal wins
	// over a backup one, and the queried path always keeps its own literal.
	literals := make(map[string]string)

	add := func(p string) {
		if p == "" {
			return
		}
		key := stripBackup(p)
		if existing, ok := literals[key]; ok {
			if existing != key && p == key {
				literals[key] = p
			}
			return
		}
		literals[key] = p
	}

	for _, p := range provided {
		add(p)
	}
	for _, p := range siblings {
		add(p)
	}

	// The queried file is always related to itself.
	selfKey := stripBackup(path)
	literals[selfKey] = path

	keys := make([]string, 0, len(literals))
	for k := range literals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	res := Result{Files: make([]string, len(keys))}
	for i, k := range keys {
		res.Files[i] = literals[k]
		if k == selfKey {
			res.Index = i
		}
	}
	return res
}
