package plugin

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/filekin/internal/event"
	"github.com/dshills/filekin/internal/related/provider"
)

func writePlugin(t *testing.T, root, name, manifest, script string) {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestName), []byte(manifest), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "init.lua"), []byte(script), 0644); err != nil {
		t.Fatal(err)
	}
}

const pairScript = `
function related(path)
	local stem = string.gsub(path, "%.%w+$", "")
	return { stem .. ".h" }
end
`

func TestHost_LoadDir(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "objc-pairs", `{"name": "objc-pairs", "version": "1.0.0"}`, pairScript)

	registry := provider.NewRegistry()
	h := NewHost(registry, nil)

	loaded, err := h.LoadDir(context.Background(), root)
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if loaded != 1 {
		t.Errorf("LoadDir() = %d, want 1", loaded)
	}
	if registry.Len() != 1 {
		t.Errorf("registry has %d providers, want 1", registry.Len())
	}

	got, err := registry.Snapshot()[0].RelatedFiles(context.Background(), "/dir/Test.m")
	if err != nil {
		t.Fatalf("RelatedFiles() error = %v", err)
	}
	if len(got) != 1 || got[0] != "/dir/Test.h" {
		t.Errorf("RelatedFiles() = %v, want [/dir/Test.h]", got)
	}
}

func TestHost_LoadDirMissing(t *testing.T) {
	h := NewHost(provider.NewRegistry(), nil)
	loaded, err := h.LoadDir(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Errorf("LoadDir() error = %v, want nil for missing dir", err)
	}
	if loaded != 0 {
		t.Errorf("LoadDir() = %d, want 0", loaded)
	}
}

func TestHost_BrokenPluginSkipped(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "good", `{"name": "good", "version": "1.0.0"}`, pairScript)
	writePlugin(t, root, "broken", `{"name": "broken", "version": "1.0.0"}`, `function related(`)
	// Directory without a manifest is ignored, not an error
	if err := os.MkdirAll(filepath.Join(root, "not-a-plugin"), 0755); err != nil {
		t.Fatal(err)
	}

	registry := provider.NewRegistry()
	h := NewHost(registry, nil)

	loaded, err := h.LoadDir(context.Background(), root)
	if err == nil {
		t.Error("LoadDir() should report the broken plugin")
	}
	if loaded != 1 {
		t.Errorf("LoadDir() = %d, want 1", loaded)
	}
	if registry.Len() != 1 {
		t.Errorf("registry has %d providers, want 1", registry.Len())
	}
}

func TestHost_ExtensionRestriction(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "objc-only",
		`{"name": "objc-only", "version": "1.0.0", "extensions": [".m"]}`, pairScript)

	registry := provider.NewRegistry()
	h := NewHost(registry, nil)
	if _, err := h.LoadDir(context.Background(), root); err != nil {
		t.Fatal(err)
	}

	p := registry.Snapshot()[0]

	got, err := p.RelatedFiles(context.Background(), "/dir/Test.m")
	if err != nil || len(got) != 1 {
		t.Errorf("RelatedFiles(.m) = %v, %v", got, err)
	}

	got, err = p.RelatedFiles(context.Background(), "/dir/main.go")
	if err != nil || got != nil {
		t.Errorf("RelatedFiles(.go) = %v, %v; want nil, nil", got, err)
	}
}

func TestHost_CloseUnregisters(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "objc-pairs", `{"name": "objc-pairs", "version": "1.0.0"}`, pairScript)

	registry := provider.NewRegistry()
	bus := event.NewBus()

	var topics []event.Topic
	if _, err := bus.SubscribeFunc("related.provider.*", func(_ context.Context, e any) error {
		topics = append(topics, e.(event.TopicProvider).EventTopic())
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	h := NewHost(registry, bus)
	if _, err := h.LoadDir(context.Background(), root); err != nil {
		t.Fatal(err)
	}
	h.Close(context.Background())

	if registry.Len() != 0 {
		t.Errorf("registry has %d providers after Close, want 0", registry.Len())
	}
	if len(h.Plugins()) != 0 {
		t.Errorf("Plugins() = %d after Close, want 0", len(h.Plugins()))
	}

	want := []event.Topic{event.TopicProviderRegistered, event.TopicProviderUnregistered}
	if len(topics) != 2 || topics[0] != want[0] || topics[1] != want[1] {
		t.Errorf("published topics = %v, want %v", topics, want)
	}
}
