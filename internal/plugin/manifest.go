// Package plugin discovers and hosts Lua provider plugins.
//
// A plugin is a directory containing a manifest.json and a Lua script whose
// related(path) function contributes candidates to lookups. The Host loads
// each plugin and registers it with the provider registry; a broken plugin is
// skipped without affecting the others.
package plugin

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ManifestName is the manifest file every plugin directory must contain.
const ManifestName = "manifest.json"

// Manifest describes a plugin's metadata and entry point.
type Manifest struct {
	// Identity
	Name        string `json:"name"`        // Unique identifier (e.g. "objc-pairs")
	Version     string `json:"version"`     // Semver (e.g. "1.2.0")
	Description string `json:"description"` // Short description
	Author      string `json:"author"`      // Author name or org

	// Entry point
	Main string `json:"main"` // Relative path to the Lua script (default: "init.lua")

	// Extensions restricts the plugin to queries with these file extensions.
	// Empty means the plugin is consulted for every query.
	Extensions []string `json:"extensions"`

	// Internal: path to the plugin directory
	path string
}

// Validation errors.
var (
	ErrMissingName    = errors.New("manifest: name is required")
	ErrInvalidName    = errors.New("manifest: name must be lowercase alphanumeric with hyphens")
	ErrMissingVersion = errors.New("manifest: version is required")
	ErrInvalidVersion = errors.New("manifest: version must be valid semver")
	ErrInvalidMain    = errors.New("manifest: main must be a .lua file")
)

// namePattern validates plugin names.
var namePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*[a-z0-9]$|^[a-z]$`)

// versionPattern validates plugin versions.
var versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?$`)

// LoadManifest reads and validates the manifest in a plugin directory.
func LoadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, fmt.Errorf("manifest: read: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: parse: %w", err)
	}

	if m.Main == "" {
		m.Main = "init.lua"
	}
	m.path = dir

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the manifest fields.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return ErrMissingName
	}
	if !namePattern.MatchString(m.Name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, m.Name)
	}
	if m.Version == "" {
		return ErrMissingVersion
	}
	if !versionPattern.MatchString(m.Version) {
		return fmt.Errorf("%w: %q", ErrInvalidVersion, m.Version)
	}
	if !strings.HasSuffix(m.Main, ".lua") || filepath.IsAbs(m.Main) {
		return fmt.Errorf("%w: %q", ErrInvalidMain, m.Main)
	}
	return nil
}

// MainPath returns the absolute path of the plugin's entry script.
func (m *Manifest) MainPath() string {
	return filepath.Join(m.path, m.Main)
}

// Serves reports whether the plugin handles queries for the given file
// extension.
func (m *Manifest) Serves(ext string) bool {
	if len(m.Extensions) == 0 {
		return true
	}
	for _, e := range m.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}
