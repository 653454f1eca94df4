package assets

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestManager(t *testing.T) (*AssetManager, string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "shaders"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "citadel.toml"), []byte("[window]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "shaders", "castle.vert"), []byte("#version 450\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}

	am, err := NewAssetManager(50 * time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if err := am.Initialize(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = am.Shutdown() })
	return am, dir
}

func TestInitializeIndexesKnownAssets(t *testing.T) {
	am, _ := newTestManager(t)

	if am.Len() != 2 {
		t.Fatalf("indexed %d assets, want 2", am.Len())
	}
	info, ok := am.Lookup("shaders/castle.vert")
	if !ok || info.Type != AssetTypeShaderSource {
		t.Errorf("castle.vert = %+v, %v", info, ok)
	}
	if _, ok := am.Lookup("notes.txt"); ok {
		t.Error("unknown extensions should not be indexed")
	}
}

func TestChangesAreDebounced(t *testing.T) {
	am, dir := newTestManager(t)
	path := filepath.Join(dir, "citadel.toml")

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("[window]\nwidth = 800\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case got := <-am.Changes():
		if got != "citadel.toml" {
			t.Fatalf("change = %q, want citadel.toml", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change delivered")
	}

	select {
	case got := <-am.Changes():
		t.Fatalf("burst delivered a second change %q", got)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestNewDirectoriesAreWatched(t *testing.T) {
	am, dir := newTestManager(t)
	sub := filepath.Join(dir, "extra")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	// Give the watcher a moment to register the directory.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(sub, "more.toml"), []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case got := <-am.Changes():
			if got == "extra/more.toml" {
				return
			}
		case <-deadline:
			t.Fatal("change in new directory not delivered")
		}
	}
}

func TestLoadShaderRejectsOtherTypes(t *testing.T) {
	am, _ := newTestManager(t)
	if _, err := am.LoadShader("citadel.toml"); err == nil {
		t.Error("loading a config as shader should fail")
	}
	if err := am.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if err := am.Shutdown(); err != ErrClosed {
		t.Errorf("second shutdown = %v, want ErrClosed", err)
	}
}
