package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Default()

	if cfg.General.AutosaveSchedule != "@every 30s" {
		t.Errorf("AutosaveSchedule = %q, want @every 30s", cfg.General.AutosaveSchedule)
	}
	if cfg.Display.RecentEntries != 15 {
		t.Errorf("RecentEntries = %d, want 15", cfg.Display.RecentEntries)
	}
	if cfg.Web.Enabled {
		t.Error("Web.Enabled should default to false")
	}
	if cfg.Web.Port != 8080 {
		t.Errorf("Web.Port = %d, want 8080", cfg.Web.Port)
	}
	if cfg.General.ArchivePath == "" {
		t.Error("ArchivePath should have a default")
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")

	content := `
[general]
data_dir = "/test/data"
autosave_schedule = "@every 1m"

[display]
recent_entries = 25

[web]
enabled = true
port = 9000
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.General.DataDir != "/test/data" {
		t.Errorf("DataDir = %q, want /test/data", cfg.General.DataDir)
	}
	if cfg.General.AutosaveSchedule != "@every 1m" {
		t.Errorf("AutosaveSchedule = %q, want @every 1m", cfg.General.AutosaveSchedule)
	}
	if cfg.Display.RecentEntries != 25 {
		t.Errorf("RecentEntries = %d, want 25", cfg.Display.RecentEntries)
	}
	if !cfg.Web.Enabled || cfg.Web.Port != 9000 {
		t.Errorf("Web = %+v, want enabled on port 9000", cfg.Web)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "no-such.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Display.RecentEntries != 15 {
		t.Errorf("RecentEntries = %d, want default 15", cfg.Display.RecentEntries)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		input string
		want  string
	}{
		{"~/test", filepath.Join(home, "test")},
		{"/absolute/path", "/absolute/path"},
		{"relative", "relative"},
	}

	for _, tt := range tests {
		got := ExpandPath(tt.input)
		if got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
