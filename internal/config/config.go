// Package config loads filekin settings from a JSON file.
//
// A missing file yields the defaults; a malformed file is an error. Settings
// cover the provider timeout, plugin script directories, per-extension
// whitelists for the directory heuristic, and the log level.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ErrMalformed is returned when the settings file is not valid JSON.
var ErrMalformed = errors.New("config: malformed settings file")

// Settings holds the resolved configuration.
type Settings struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// ProviderTimeout bounds each provider query during a lookup.
	ProviderTimeout time.Duration

	// PluginDirs are scanned for Lua provider plugins.
	PluginDirs []string

	// ExtraExtensions maps a queried file's extension to the extension
	// whitelist applied to the directory heuristic, e.g. ".m" -> [".h"].
	ExtraExtensions map[string][]string
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		LogLevel:        "info",
		ProviderTimeout: time.Second,
		ExtraExtensions: map[string][]string{},
	}
}

// Load reads settings from path. A missing file returns the defaults.
func Load(path string) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("config: read %s: %w", path, err)
	}

	if !gjson.ValidBytes(data) {
		return s, fmt.Errorf("%w: %s", ErrMalformed, path)
	}

	if v := gjson.GetBytes(data, "log_level"); v.Exists() {
		s.LogLevel = v.String()
	}
	if v := gjson.GetBytes(data, "provider_timeout_ms"); v.Exists() {
		if ms := v.Int(); ms > 0 {
			s.ProviderTimeout = time.Duration(ms) * time.Millisecond
		}
	}
	for _, dir := range gjson.GetBytes(data, "plugin_dirs").Array() {
		if dir.String() != "" {
			s.PluginDirs = append(s.PluginDirs, dir.String())
		}
	}
	gjson.GetBytes(data, "extra_extensions").ForEach(func(key, value gjson.Result) bool {
		var exts []string
		for _, e := range value.Array() {
			if e.String() != "" {
				exts = append(exts, e.String())
			}
		}
		s.ExtraExtensions[key.String()] = exts
		return true
	})

	return s, nil
}

// ExtensionsFor returns the extension whitelist configured for files with the
// given extension, or nil when none is configured.
func (s Settings) ExtensionsFor(ext string) []string {
	return s.ExtraExtensions[ext]
}

// Save writes the settings to path as JSON.
func (s Settings) Save(path string) error {
	data := []byte("{}")
	var err error

	if data, err = sjson.SetBytes(data, "log_level", s.LogLevel); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if data, err = sjson.SetBytes(data, "provider_timeout_ms", s.ProviderTimeout.Milliseconds()); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	for i, dir := range s.PluginDirs {
		if data, err = sjson.SetBytes(data, fmt.Sprintf("plugin_dirs.%d", i), dir); err != nil {
			return fmt.Errorf("config: encode: %w", err)
		}
	}
	for ext, exts := range s.ExtraExtensions {
		// gjson path syntax escapes the dot in extension keys
		key := "extra_extensions." + escapeKey(ext)
		if data, err = sjson.SetBytes(data, key, exts); err != nil {
			return fmt.Errorf("config: encode: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// escapeKey escapes dots in a JSON object key for sjson/gjson path syntax.
func escapeKey(key string) string {
	out := make([]byte, 0, len(key)+2)
	for i := 0; i < len(key); i++ {
		if key[i] == '.' || key[i] == '*' || key[i] == '?' {
			out = append(out, '\\')
		}
		out = append(out, key[i])
	}
	return string(out)
}
