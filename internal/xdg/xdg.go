package xdg

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "spectrum-chain"

// ConfigDir returns the configuration directory for spectrum-chain.
// On Linux: $XDG_CONFIG_HOME/spectrum-chain or ~/.config/spectrum-chain
// On macOS: ~/Library/Application Support/spectrum-chain (fallback to XDG if set)
//
// Note: This function creates the directory (with 0700 permissions) if it doesn't exist.
func ConfigDir() (string, error) {
	var base string

	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		base = configHome
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if runtime.GOOS == "darwin" {
			base = filepath.Join(home, "Library", "Application Support")
		} else {
			base = filepath.Join(home, ".config")
		}
	}

	dir := filepath.Join(base, appName)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}

// PaletteDir returns the directory holding saved palettes, creating it if needed.
func PaletteDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}

	dir = filepath.Join(dir, "palettes")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}

// PaletteFile returns the path of the named palette file.
// The name is not validated here.
func PaletteFile(name string) (string, error) {
	dir, err := PaletteDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name+".json"), nil
}
