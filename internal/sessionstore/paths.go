package sessionstore

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultDataDir returns the per-user application data directory.
func DefaultDataDir() string {
	home, _ := os.UserHomeDir()

	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(home, "AppData", "Roaming")
		}
	case "darwin":
		base = filepath.Join(home, "Library", "Application Support")
	default:
		base = os.Getenv("XDG_DATA_HOME")
		if base == "" {
			base = filepath.Join(home, ".local", "share")
		}
	}
	return filepath.Join(base, "finishline")
}

// SafeFilename replaces characters that are invalid on at least one
// supported platform.
func SafeFilename(name string) string {
	const invalid = `<>:"/\|?*`
	safe := strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalid, r) {
			return '_'
		}
		return r
	}, name)

	safe = strings.Trim(safe, ". ")
	if safe == "" {
		return "unnamed"
	}
	return safe
}
