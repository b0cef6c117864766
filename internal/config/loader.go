package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/mitchellh/go-homedir"
)

// RelPath is the config file location below the XDG config dirs.
const RelPath = "boxannotator/config.rc"

// Loader handles loading the configuration.
type Loader struct {
	Version      string // Build version, used to determine dev mode
	OverridePath string
}

// NewLoader creates a new Loader.
func NewLoader(version string, overridePath string) *Loader {
	return &Loader{
		Version:      version,
		OverridePath: overridePath,
	}
}

// Load attempts to load the configuration. A missing file yields defaults.
func (l *Loader) Load() (*Config, error) {
	path := l.GetConfigPath()
	if path == "" {
		return New(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f)
}

// GetConfigPath returns the path to the configuration file, or empty string if not found.
func (l *Loader) GetConfigPath() string {
	if l.OverridePath != "" {
		if p, err := homedir.Expand(l.OverridePath); err == nil {
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}

	if l.Version == "dev" {
		wd, _ := os.Getwd()
		localPath := filepath.Join(wd, ".boxannotatorrc")
		if _, err := os.Stat(localPath); err == nil {
			return localPath
		}
	}

	if p, err := xdg.SearchConfigFile(RelPath); err == nil {
		return p
	}
	return ""
}

// Save writes cfg to the override path, or to the user's XDG config file.
func (l *Loader) Save(cfg *Config) (string, error) {
	path := l.OverridePath
	var err error
	if path != "" {
		path, err = homedir.Expand(path)
	} else {
		path, err = xdg.ConfigFile(RelPath)
	}
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", errors.New("no config path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := cfg.Write(f); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}
