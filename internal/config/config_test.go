package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.HistoryLimit != 100 {
		t.Errorf("expected default history limit 100, got %d", cfg.HistoryLimit)
	}
	if cfg.DefaultLocale != "en" {
		t.Errorf("expected default locale en, got %q", cfg.DefaultLocale)
	}
	if cfg.EmitNodeIDs {
		t.Error("node id emission should default to off")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.LibraryPath = dir
	cfg.HistoryLimit = 25
	cfg.EmitNodeIDs = true
	cfg.DefaultLocale = "de"
	cfg.TargetClients = []string{"outlook", "gmail"}

	if err := cfg.Save(); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.HistoryLimit != 25 || !loaded.EmitNodeIDs || loaded.DefaultLocale != "de" {
		t.Errorf("round-trip lost values: %+v", loaded)
	}
	if len(loaded.TargetClients) != 2 || loaded.TargetClients[0] != "outlook" {
		t.Errorf("target clients lost: %v", loaded.TargetClients)
	}
	if loaded.LibraryPath != dir {
		t.Errorf("library path not set on load: %q", loaded.LibraryPath)
	}
}

func TestLoadRepairsBadHistoryLimit(t *testing.T) {
	dir := t.TempDir()
	content := "history_limit: -5\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.HistoryLimit != 100 {
		t.Errorf("non-positive limit should fall back to 100, got %d", cfg.HistoryLimit)
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("history_limit: [broken"), 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if _, err := Load(dir); err == nil {
		t.Error("malformed yaml should fail to load")
	}
}

func TestLibraryDirPrecedence(t *testing.T) {
	t.Setenv(EnvLibraryDir, "/env/mailsmith")

	dir, err := LibraryDir("/explicit/path")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if dir != "/explicit/path" {
		t.Errorf("explicit path must win, got %q", dir)
	}

	dir, err = LibraryDir("")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if dir != "/env/mailsmith" {
		t.Errorf("environment should win over the home default, got %q", dir)
	}

	t.Setenv(EnvLibraryDir, "")
	dir, err = LibraryDir("")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if filepath.Base(dir) != ".mailsmith" {
		t.Errorf("expected the home default, got %q", dir)
	}
}
