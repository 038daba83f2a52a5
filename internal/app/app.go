// Package app wires the related-file engine together: configuration, logging,
// file system, provider registry, plugin host, event bus and finder.
package app

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/filekin/internal/config"
	"github.com/dshills/filekin/internal/event"
	"github.com/dshills/filekin/internal/plugin"
	"github.com/dshills/filekin/internal/project/vfs"
	"github.com/dshills/filekin/internal/related"
	"github.com/dshills/filekin/internal/related/provider"
)

// ErrNoPath is returned when Find is called with an empty path.
var ErrNoPath = errors.New("app: no path given")

// Options configure the application.
type Options struct {
	// ConfigPath is the settings file. Empty means defaults only.
	ConfigPath string

	// PluginDirs are scanned for provider plugins in addition to the
	// directories named in the settings file.
	PluginDirs []string

	// Timeout overrides the configured per-provider timeout when positive.
	Timeout time.Duration

	// LogLevel overrides the configured log level when non-empty.
	LogLevel string

	// LogOutput is where logs are written. Defaults to stderr.
	LogOutput io.Writer

	// FS is the file system to resolve against. Defaults to the OS.
	FS vfs.VFS
}

// App owns the composed related-file engine.
type App struct {
	cfg      config.Settings
	logger   *Logger
	fs       vfs.VFS
	registry *provider.Registry
	bus      *event.Bus
	host     *plugin.Host
	finder   *related.Finder
}

// New creates the application. Plugin load failures are logged and skipped;
// only a config read failure is fatal.
func New(opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Timeout > 0 {
		cfg.ProviderTimeout = opts.Timeout
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	logCfg := DefaultLoggerConfig()
	logCfg.Level = ParseLogLevel(cfg.LogLevel)
	if opts.LogOutput != nil {
		logCfg.Output = opts.LogOutput
	}
	logger := NewLogger(logCfg)

	fsys := opts.FS
	if fsys == nil {
		fsys = vfs.NewOSFS()
	}

	registry := provider.NewRegistry()
	bus := event.NewBus()
	host := plugin.NewHost(registry, bus)

	a := &App{
		cfg:      cfg,
		logger:   logger,
		fs:       fsys,
		registry: registry,
		bus:      bus,
		host:     host,
		finder:   related.NewFinder(fsys, registry, related.WithTimeout(cfg.ProviderTimeout)),
	}

	a.loadPlugins(append(append([]string(nil), cfg.PluginDirs...), opts.PluginDirs...))
	return a, nil
}

// loadPlugins loads every plugin directory, tolerating broken plugins.
func (a *App) loadPlugins(dirs []string) {
	ctx := context.Background()
	for _, dir := range dirs {
		loaded, err := a.host.LoadDir(ctx, dir)
		if err != nil {
			a.logger.Warn("plugin load: %v", err)
		}
		if loaded > 0 {
			a.logger.Info("loaded %d plugin(s) from %s", loaded, dir)
		}
	}
}

// Find resolves the related files for path. When the caller supplies no
// extension whitelist, the one configured for the file's extension applies.
func (a *App) Find(ctx context.Context, path string, extraExts ...string) (related.Result, error) {
	if path == "" {
		return related.Result{}, ErrNoPath
	}
	if len(extraExts) == 0 {
		extraExts = a.cfg.ExtensionsFor(filepath.Ext(strings.TrimRight(path, "~")))
	}

	start := time.Now()
	res, err := a.finder.Find(ctx, path, extraExts...)
	if err != nil {
		a.logger.Error("find %s: %v", path, err)
		return related.Result{}, err
	}

	a.logger.Debug("find %s: %d file(s), index %d in %v", path, len(res.Files), res.Index, time.Since(start))
	_ = a.bus.Publish(ctx, event.QueryResolved{
		Path:      path,
		Files:     len(res.Files),
		Index:     res.Index,
		Providers: a.registry.Len(),
		Duration:  time.Since(start),
	})
	return res, nil
}

// RegisterProvider adds a provider and announces it on the bus. The returned
// handle unregisters the provider and announces the removal.
func (a *App) RegisterProvider(p provider.Provider) (provider.Disposable, error) {
	handle, err := a.registry.Register(p)
	if err != nil {
		return nil, err
	}
	_ = a.bus.Publish(context.Background(), event.ProviderRegistered{Name: p.Name()})
	return &announcingDisposable{handle: handle, bus: a.bus, name: p.Name()}, nil
}

type announcingDisposable struct {
	handle provider.Disposable
	bus    *event.Bus
	name   string
}

// Dispose unregisters the provider and publishes the removal.
func (d *announcingDisposable) Dispose() {
	d.handle.Dispose()
	_ = d.bus.Publish(context.Background(), event.ProviderUnregistered{Name: d.name})
}

// Bus returns the application's event bus.
func (a *App) Bus() *event.Bus {
	return a.bus
}

// Registry returns the provider registry.
func (a *App) Registry() *provider.Registry {
	return a.registry
}

// Logger returns the application's logger.
func (a *App) Logger() *Logger {
	return a.logger
}

// Settings returns the resolved configuration.
func (a *App) Settings() config.Settings {
	return a.cfg
}

// Shutdown releases the plugin host and its Lua states.
func (a *App) Shutdown() {
	a.host.Close(context.Background())
}
