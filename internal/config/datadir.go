package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// userDataDir mirrors internal/search's bundled-binary data directory
// resolution (§6.3): $XDG_DATA_HOME or ~/.local/share on Linux/macOS,
// %APPDATA% on Windows.
func userDataDir() (string, error) {
	if runtime.GOOS == "windows" {
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return filepath.Join(appdata, "btca"), nil
		}
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "btca"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "btca"), nil
}

// userConfigDir resolves the directory the global config file lives in:
// $XDG_CONFIG_HOME or ~/.config on Linux/macOS, %APPDATA% on Windows.
func userConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return filepath.Join(appdata, "btca"), nil
		}
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "btca"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "btca"), nil
}

// defaultDataDirs returns the default resourcesDir/collectionsDir (§6.3),
// rooted under the per-OS data directory. Neither is part of the
// persisted config file; both can be overridden via BTCA_RESOURCES_DIR
// and BTCA_COLLECTIONS_DIR for deployments that want the cache elsewhere.
func defaultDataDirs() (resourcesDir, collectionsDir string, err error) {
	if r := os.Getenv("BTCA_RESOURCES_DIR"); r != "" {
		resourcesDir = r
	}
	if c := os.Getenv("BTCA_COLLECTIONS_DIR"); c != "" {
		collectionsDir = c
	}
	if resourcesDir != "" && collectionsDir != "" {
		return resourcesDir, collectionsDir, nil
	}

	base, err := userDataDir()
	if err != nil {
		return "", "", err
	}
	if resourcesDir == "" {
		resourcesDir = filepath.Join(base, "resources")
	}
	if collectionsDir == "" {
		collectionsDir = filepath.Join(base, "collections")
	}
	return resourcesDir, collectionsDir, nil
}
