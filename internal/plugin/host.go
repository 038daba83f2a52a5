package plugin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dshills/filekin/internal/event"
	"github.com/dshills/filekin/internal/plugin/lua"
	"github.com/dshills/filekin/internal/related/provider"
)

// Plugin is a loaded provider plugin. It implements provider.Provider.
type Plugin struct {
	manifest *Manifest
	script   *lua.Script
	handle   provider.Disposable
}

// Name returns the plugin name.
func (p *Plugin) Name() string {
	return p.manifest.Name
}

// Manifest returns the plugin's manifest.
func (p *Plugin) Manifest() *Manifest {
	return p.manifest
}

// RelatedFiles runs the plugin script for the queried path. A plugin whose
// manifest restricts extensions declines other queries without running Lua.
func (p *Plugin) RelatedFiles(ctx context.Context, path string) ([]string, error) {
	if !p.manifest.Serves(filepath.Ext(stripTrailingTilde(path))) {
		return nil, nil
	}
	return p.script.Call(ctx, path)
}

// stripTrailingTilde drops an editor backup marker before extension lookup.
func stripTrailingTilde(path string) string {
	for len(path) > 0 && path[len(path)-1] == '~' {
		path = path[:len(path)-1]
	}
	return path
}

// Host loads plugins and registers them as providers.
type Host struct {
	mu       sync.Mutex
	registry *provider.Registry
	bus      *event.Bus
	plugins  []*Plugin
}

// NewHost creates a Host that registers plugins into the given registry.
// The bus may be nil when no one observes provider lifecycle events.
func NewHost(registry *provider.Registry, bus *event.Bus) *Host {
	return &Host{registry: registry, bus: bus}
}

// LoadDir scans dir for plugin directories and loads each one. A plugin that
// fails to load is skipped; the failures are joined into the returned error
// alongside the count of plugins that did load. A missing plugin directory is
// not an error.
func (h *Host) LoadDir(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("plugin: scan %s: %w", dir, err)
	}

	loaded := 0
	var errs []error
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		pluginDir := filepath.Join(dir, entry.Name())
		if _, statErr := os.Stat(filepath.Join(pluginDir, ManifestName)); statErr != nil {
			continue
		}
		if loadErr := h.load(ctx, pluginDir); loadErr != nil {
			errs = append(errs, fmt.Errorf("plugin %s: %w", entry.Name(), loadErr))
			continue
		}
		loaded++
	}
	return loaded, errors.Join(errs...)
}

// load loads a single plugin directory and registers it.
func (h *Host) load(ctx context.Context, dir string) error {
	manifest, err := LoadManifest(dir)
	if err != nil {
		return err
	}

	script, err := lua.LoadFile(manifest.MainPath())
	if err != nil {
		return err
	}

	p := &Plugin{manifest: manifest, script: script}
	handle, err := h.registry.Register(p)
	if err != nil {
		script.Close()
		return err
	}
	p.handle = handle

	h.mu.Lock()
	h.plugins = append(h.plugins, p)
	h.mu.Unlock()

	if h.bus != nil {
		_ = h.bus.Publish(ctx, event.ProviderRegistered{Name: manifest.Name})
	}
	return nil
}

// Plugins returns the loaded plugins.
func (h *Host) Plugins() []*Plugin {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*Plugin(nil), h.plugins...)
}

// Close unregisters and shuts down every loaded plugin.
func (h *Host) Close(ctx context.Context) {
	h.mu.Lock()
	plugins := h.plugins
	h.plugins = nil
	h.mu.Unlock()

	for _, p := range plugins {
		p.handle.Dispose()
		p.script.Close()
		if h.bus != nil {
			_ = h.bus.Publish(ctx, event.ProviderUnregistered{Name: p.manifest.Name})
		}
	}
}
