package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/dshills/filekin/internal/event"
	"github.com/dshills/filekin/internal/project/vfs"
	"github.com/dshills/filekin/internal/related/provider"
)

func newTestApp(t *testing.T, opts Options, files ...string) *App {
	t.Helper()

	m := vfs.NewMemFS()
	for _, f := range files {
		if err := m.WriteFile(f, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	opts.FS = m
	if opts.LogOutput == nil {
		opts.LogOutput = io.Discard
	}

	a, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(a.Shutdown)
	return a
}

func TestApp_Find(t *testing.T) {
	a := newTestApp(t, Options{}, "/dir/Test.h", "/dir/Test.m")

	res, err := a.Find(context.Background(), "/dir/Test.m")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	want := []string{"/dir/Test.h", "/dir/Test.m"}
	if !reflect.DeepEqual(res.Files, want) || res.Index != 1 {
		t.Errorf("Find() = %v index %d, want %v index 1", res.Files, res.Index, want)
	}
}

func TestApp_FindEmptyPath(t *testing.T) {
	a := newTestApp(t, Options{})

	if _, err := a.Find(context.Background(), ""); err != ErrNoPath {
		t.Errorf("Find(\"\") error = %v, want ErrNoPath", err)
	}
}

func TestApp_FindPublishesEvent(t *testing.T) {
	a := newTestApp(t, Options{}, "/dir/Test.m")

	var got []event.QueryResolved
	if _, err := a.Bus().SubscribeFunc(event.TopicQueryResolved, func(_ context.Context, e any) error {
		got = append(got, e.(event.QueryResolved))
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := a.Find(context.Background(), "/dir/Test.m"); err != nil {
		t.Fatal(err)
	}

	if len(got) != 1 {
		t.Fatalf("received %d events, want 1", len(got))
	}
	if got[0].Path != "/dir/Test.m" || got[0].Files != 1 || got[0].Index != 0 {
		t.Errorf("event = %+v", got[0])
	}
}

func TestApp_ConfiguredExtensionWhitelist(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "settings.json")
	doc := `{"extra_extensions": {".m": [".t"]}}`
	if err := os.WriteFile(cfgPath, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	a := newTestApp(t, Options{ConfigPath: cfgPath}, "/dir/Test.m", "/dir/Test.t", "/dir/Test.v")

	res, err := a.Find(context.Background(), "/dir/Test.m")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"/dir/Test.m", "/dir/Test.t"}
	if !reflect.DeepEqual(res.Files, want) {
		t.Errorf("Files = %v, want %v", res.Files, want)
	}

	// An explicit whitelist wins over the configured one
	res, err = a.Find(context.Background(), "/dir/Test.m", ".v")
	if err != nil {
		t.Fatal(err)
	}
	want = []string{"/dir/Test.m", "/dir/Test.v"}
	if !reflect.DeepEqual(res.Files, want) {
		t.Errorf("Files = %v, want %v", res.Files, want)
	}
}

func TestApp_MalformedConfigFatal(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(cfgPath, []byte("{oops"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := New(Options{ConfigPath: cfgPath, LogOutput: io.Discard}); err == nil {
		t.Error("New() with malformed config should fail")
	}
}

func TestApp_RegisterProvider(t *testing.T) {
	a := newTestApp(t, Options{}, "/dir/Test.m")

	var topics []event.Topic
	if _, err := a.Bus().SubscribeFunc("related.provider.*", func(_ context.Context, e any) error {
		topics = append(topics, e.(event.TopicProvider).EventTopic())
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	handle, err := a.RegisterProvider(provider.Func{
		ProviderName: "static",
		Fn: func(context.Context, string) ([]string, error) {
			return []string{"/dir/Extra.h"}, nil
		},
	})
	if err != nil {
		t.Fatalf("RegisterProvider() error = %v", err)
	}

	res, err := a.Find(context.Background(), "/dir/Test.m")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"/dir/Extra.h", "/dir/Test.m"}
	if !reflect.DeepEqual(res.Files, want) || res.Index != 1 {
		t.Errorf("Find() = %v index %d, want %v index 1", res.Files, res.Index, want)
	}

	handle.Dispose()
	if a.Registry().Len() != 0 {
		t.Errorf("registry has %d providers after Dispose, want 0", a.Registry().Len())
	}

	wantTopics := []event.Topic{event.TopicProviderRegistered, event.TopicProviderUnregistered}
	if !reflect.DeepEqual(topics, wantTopics) {
		t.Errorf("topics = %v, want %v", topics, wantTopics)
	}
}

func TestApp_PluginProvider(t *testing.T) {
	pluginRoot := t.TempDir()
	dir := filepath.Join(pluginRoot, "headers")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	manifest := `{"name": "headers", "version": "1.0.0"}`
	if err := os.WriteFile(filepath.Join(dir, "manifest.json"), []byte(manifest), 0644); err != nil {
		t.Fatal(err)
	}
	script := `
function related(path)
	local stem = string.gsub(path, "%.%w+$", "")
	return { stem .. ".h" }
end
`
	if err := os.WriteFile(filepath.Join(dir, "init.lua"), []byte(script), 0644); err != nil {
		t.Fatal(err)
	}

	a := newTestApp(t, Options{PluginDirs: []string{pluginRoot}}, "/dir/Test.m")

	res, err := a.Find(context.Background(), "/dir/Test.m")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"/dir/Test.h", "/dir/Test.m"}
	if !reflect.DeepEqual(res.Files, want) || res.Index != 1 {
		t.Errorf("Find() = %v index %d, want %v index 1", res.Files, res.Index, want)
	}
}
