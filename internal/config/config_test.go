package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wlblur/wlblurd/internal/params"
)

func TestLoadExplicitMissingPathErrors(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err == nil {
		t.Fatal("Load with an explicit nonexistent path should error, not silently default")
	}
	_ = cfg
}

func TestLoadEmptyPathFallsBackToDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") with no config files present: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadValidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	const body = `{
		"socket_path": "/tmp/test.sock",
		"log_level": "debug",
		"max_nodes_per_client": 10,
		"defaults": {"radius": 6.0},
		"presets": {"custom": {"num_passes": 2, "radius": 3.0}}
	}`
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SocketPath != "/tmp/test.sock" {
		t.Errorf("SocketPath = %q, want /tmp/test.sock", cfg.SocketPath)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.MaxNodesPerClient != 10 {
		t.Errorf("MaxNodesPerClient = %d, want 10", cfg.MaxNodesPerClient)
	}
	if cfg.Defaults == nil || cfg.Defaults.Radius != 6.0 {
		t.Errorf("Defaults.Radius = %+v, want 6.0", cfg.Defaults)
	}
	preset, ok := cfg.Presets["custom"]
	if !ok {
		t.Fatal("preset \"custom\" missing")
	}
	if preset.Passes != 2 || preset.Radius != 3.0 {
		t.Errorf("preset custom = %+v, want passes=2 radius=3.0", preset)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	const body = `{"log_level": "not-a-real-level"}`
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load should reject an invalid log_level")
	}
}

func TestLoadNeverMutatesPreviousConfigOnFailure(t *testing.T) {
	dir := t.TempDir()
	goodPath := filepath.Join(dir, "good.json")
	badPath := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(goodPath, []byte(`{"log_level": "warn"}`), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(badPath, []byte(`{"log_level": "not-a-real-level"}`), 0600); err != nil {
		t.Fatal(err)
	}

	good, err := Load(goodPath)
	if err != nil {
		t.Fatalf("Load(good): %v", err)
	}

	_, err = Load(badPath)
	if err == nil {
		t.Fatal("Load(bad) should fail")
	}

	// good is an independent value; a failed reload must not have
	// touched it, since Load always builds a fresh Config rather than
	// mutating one in place.
	if good.LogLevel != "warn" {
		t.Errorf("previously loaded config was mutated: LogLevel = %q", good.LogLevel)
	}
}

func TestValidateRejectsOversizedPresetName(t *testing.T) {
	cfg := DefaultConfig()
	longName := make([]byte, 40)
	for i := range longName {
		longName[i] = 'x'
	}
	cfg.Presets = map[string]params.Set{string(longName): params.Default()}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate should reject a preset name longer than MaxPresetNameLen")
	}
}
