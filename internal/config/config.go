package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/opentiming/finishline/internal/sessionstore"
)

// Config holds all application configuration
type Config struct {
	General GeneralConfig `toml:"general"`
	Display DisplayConfig `toml:"display"`
	Web     WebConfig     `toml:"web"`
}

// GeneralConfig holds general settings
type GeneralConfig struct {
	DataDir          string `toml:"data_dir"`
	AutosaveSchedule string `toml:"autosave_schedule"`
	ArchivePath      string `toml:"archive_path"`
}

// DisplayConfig holds console display settings
type DisplayConfig struct {
	RecentEntries int `toml:"recent_entries"`
}

// WebConfig holds the live results server settings
type WebConfig struct {
	Enabled bool   `toml:"enabled"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	dataDir := sessionstore.DefaultDataDir()
	return &Config{
		General: GeneralConfig{
			DataDir:          dataDir,
			AutosaveSchedule: "@every 30s",
			ArchivePath:      filepath.Join(dataDir, "archive.db"),
		},
		Display: DisplayConfig{
			RecentEntries: 15,
		},
		Web: WebConfig{
			Enabled: false,
			Host:    "127.0.0.1",
			Port:    8080,
		},
	}
}

// Load reads configuration from a TOML file, falling back to defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.General.DataDir = ExpandPath(cfg.General.DataDir)
	cfg.General.ArchivePath = ExpandPath(cfg.General.ArchivePath)
	if cfg.General.ArchivePath == "" {
		cfg.General.ArchivePath = filepath.Join(cfg.General.DataDir, "archive.db")
	}

	return cfg, nil
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// DefaultConfigPath returns the default config file location
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "finishline", "config.toml")
}
