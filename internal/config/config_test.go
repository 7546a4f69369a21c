// ABOUTME: Tests for configuration loading, defaults, and the storage factory.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setTestConfigHome(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	return tmp
}

func TestConfigDefaults(t *testing.T) {
	cfg := &Config{}

	if got := cfg.GetBackend(); got != "sqlite" {
		t.Errorf("GetBackend() = %q, want sqlite", got)
	}
	if got := cfg.GetLogLevel(); got != "info" {
		t.Errorf("GetLogLevel() = %q, want info", got)
	}
	if got := cfg.GetDataDir(); got == "" {
		t.Error("GetDataDir() returned empty default")
	}
}

func TestConfigOverrides(t *testing.T) {
	cfg := &Config{
		Backend:  "sqlite",
		DataDir:  "/tmp/vitals-test",
		LogLevel: "debug",
	}

	if got := cfg.GetDataDir(); got != "/tmp/vitals-test" {
		t.Errorf("GetDataDir() = %q, want /tmp/vitals-test", got)
	}
	if got := cfg.GetLogLevel(); got != "debug" {
		t.Errorf("GetLogLevel() = %q, want debug", got)
	}
	if got := cfg.SeenCachePath(); got != filepath.Join("/tmp/vitals-test", "seen") {
		t.Errorf("SeenCachePath() = %q", got)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("UserHomeDir failed: %v", err)
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "bare tilde",
			input: "~",
			want:  home,
		},
		{
			name:  "tilde prefix",
			input: "~/vitals-data",
			want:  filepath.Join(home, "vitals-data"),
		},
		{
			name:  "absolute path unchanged",
			input: "/var/lib/vitals",
			want:  "/var/lib/vitals",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandPath(tt.input); got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGetConfigPathHonorsXDG(t *testing.T) {
	tmp := setTestConfigHome(t)

	got := GetConfigPath()
	want := filepath.Join(tmp, "vitals", "config.json")
	if got != want {
		t.Errorf("GetConfigPath() = %q, want %q", got, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	setTestConfigHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Backend != "" || cfg.DataDir != "" {
		t.Errorf("Expected empty config for missing file, got %+v", cfg)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	tmp := setTestConfigHome(t)

	dir := filepath.Join(tmp, "vitals")
	if err := os.MkdirAll(dir, 0750); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Error("Expected error for invalid config JSON")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	setTestConfigHome(t)

	cfg := &Config{
		DataDir:          "/tmp/vitals-roundtrip",
		LogLevel:         "warn",
		DisableSeenCache: true,
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.DataDir != cfg.DataDir || loaded.LogLevel != cfg.LogLevel || !loaded.DisableSeenCache {
		t.Errorf("Loaded config = %+v, want %+v", loaded, cfg)
	}
}

func TestOpenStorageSQLite(t *testing.T) {
	cfg := &Config{DataDir: t.TempDir()}

	repo, err := cfg.OpenStorage()
	if err != nil {
		t.Fatalf("OpenStorage failed: %v", err)
	}
	defer repo.Close()

	if _, err := os.Stat(filepath.Join(cfg.DataDir, "vitals.db")); err != nil {
		t.Errorf("Expected database file in data dir: %v", err)
	}
}

func TestOpenStorageUnknownBackend(t *testing.T) {
	cfg := &Config{Backend: "postgres"}

	_, err := cfg.OpenStorage()
	if err == nil {
		t.Fatal("Expected error for unknown backend")
	}
	if !strings.Contains(err.Error(), "unknown backend") {
		t.Errorf("Error = %v, want unknown backend message", err)
	}
}
