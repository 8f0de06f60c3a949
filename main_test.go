package main

import (
	"os"
	"path/filepath"
	"testing"

	"callboard/settings"
)

func TestLoadConfigFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	config, err := loadConfig(path, false)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if *config != settings.Default() {
		t.Errorf("loadConfig() = %+v, want defaults", *config)
	}
}

func TestLoadConfigExplicitMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if _, err := loadConfig(path, true); err == nil {
		t.Error("loadConfig() with a named missing file should fail")
	}
}

func TestLoadConfigReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[dispatcher]\nnumbering = \"per_class\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	config, err := loadConfig(path, false)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if config.Dispatcher.Numbering != "per_class" {
		t.Errorf("Numbering = %q, want per_class", config.Dispatcher.Numbering)
	}
}
