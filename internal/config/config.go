// Package config resolves medkit's on-disk locations and loads its TOML settings.
package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const appName = "medkit"

const (
	EnvDataDir    = "MEDKIT_DIR"
	EnvCacheDir   = "MEDKIT_CACHE_DIR"
	EnvConfigFile = "MEDKIT_CONFIG"
)

// GetDataDir resolves the base directory for the inventory database. MEDKIT_DIR
// wins, then XDG_DATA_HOME, then ~/.local/share.
func GetDataDir() string {
	if explicit := os.Getenv(EnvDataDir); explicit != "" {
		return explicit
	}

	xdg.Reload()

	dataHome := xdg.DataHome
	if dataHome == "" {
		home := homeDir()
		if home == "" {
			return filepath.Join(os.TempDir(), appName)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	return filepath.Join(dataHome, appName)
}

// GetDBPath returns the absolute path to the SQLite database file.
func GetDBPath() string {
	return filepath.Join(GetDataDir(), "inventory.db")
}

// GetCacheDir returns the private directory that holds cached backup artifacts.
func GetCacheDir() string {
	if explicit := os.Getenv(EnvCacheDir); explicit != "" {
		return explicit
	}

	xdg.Reload()

	cacheHome := xdg.CacheHome
	if cacheHome == "" {
		home := homeDir()
		if home == "" {
			return filepath.Join(os.TempDir(), appName, "cache")
		}
		cacheHome = filepath.Join(home, ".cache")
	}

	return filepath.Join(cacheHome, appName)
}

// GetConfigPath returns the location of config.toml.
func GetConfigPath() string {
	if explicit := os.Getenv(EnvConfigFile); explicit != "" {
		return explicit
	}

	xdg.Reload()

	configHome := xdg.ConfigHome
	if configHome == "" {
		home := homeDir()
		if home == "" {
			return filepath.Join(os.TempDir(), appName, "config.toml")
		}
		configHome = filepath.Join(home, ".config")
	}

	return filepath.Join(configHome, appName, "config.toml")
}

func homeDir() string {
	if xdg.Home != "" {
		return xdg.Home
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}
