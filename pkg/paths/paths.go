// Package paths provides centralized path handling for doplug.
// It implements XDG Base Directory specification compliance and
// provides a consistent API for all path operations in the codebase.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Environment variable names
const (
	// EnvDataDir overrides the XDG data directory for doplug
	EnvDataDir = "DOPLUG_DATA_DIR"

	// EnvConfigDir overrides the XDG config directory for doplug
	EnvConfigDir = "DOPLUG_CONFIG_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files
// IMPORTANT: These constants define doplug's on-disk layout and are NOT
// user-configurable. User-configurable paths belong in pkg/config.
const (
	// DoplugDirName is the directory name for doplug-specific files
	DoplugDirName = "doplug"

	// PluginsDirName is the subdirectory holding plugin clones
	PluginsDirName = "plugins"

	// ManifestFileName is the declared plugin set
	ManifestFileName = "plugins.json"

	// LockFileName records what is believed installed
	LockFileName = "plugins.lock.json"

	// ConfigFileName is the optional app configuration file
	ConfigFileName = "doplug.toml"

	// LogFileName is the name of the log file
	LogFileName = "doplug.log"
)

// Paths provides centralized path management for doplug
type Paths interface {
	ConfigDir() string
	DataDir() string
	StateDir() string
	PluginsDir() string
	PluginPath(name string) string
	ManifestPath() string
	LockPath() string
	ConfigFilePath() string
	LogFilePath() string
}

type paths struct {
	xdgConfig string
	xdgData   string
	xdgState  string

	// optional overrides from pkg/config; empty means the default
	// location under the config or data dir.
	pluginsDir   string
	manifestPath string
	lockPath     string
}

// Option adjusts path resolution.
type Option func(*paths)

// WithPluginsDir overrides where plugin clones live.
func WithPluginsDir(dir string) Option {
	return func(p *paths) {
		p.pluginsDir = expandHome(dir)
	}
}

// WithManifestPath overrides the manifest location.
func WithManifestPath(path string) Option {
	return func(p *paths) {
		p.manifestPath = expandHome(path)
	}
}

// WithLockPath overrides the lock file location.
func WithLockPath(path string) Option {
	return func(p *paths) {
		p.lockPath = expandHome(path)
	}
}

// New creates a new Paths instance. Directories come from DOPLUG_* overrides
// first, XDG base directories otherwise.
func New(opts ...Option) Paths {
	p := &paths{}

	if configDir := os.Getenv(EnvConfigDir); configDir != "" {
		p.xdgConfig = expandHome(configDir)
	} else {
		p.xdgConfig = filepath.Join(xdg.ConfigHome, DoplugDirName)
	}

	if dataDir := os.Getenv(EnvDataDir); dataDir != "" {
		p.xdgData = expandHome(dataDir)
	} else {
		p.xdgData = filepath.Join(xdg.DataHome, DoplugDirName)
	}

	// XDG doesn't always provide StateHome, so we check manually
	if stateDir := os.Getenv("XDG_STATE_HOME"); stateDir != "" {
		p.xdgState = filepath.Join(stateDir, DoplugDirName)
	} else {
		homeDir, _ := os.UserHomeDir()
		p.xdgState = filepath.Join(homeDir, ".local", "state", DoplugDirName)
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *paths) ConfigDir() string {
	return p.xdgConfig
}

func (p *paths) DataDir() string {
	return p.xdgData
}

func (p *paths) StateDir() string {
	return p.xdgState
}

func (p *paths) PluginsDir() string {
	if p.pluginsDir != "" {
		return p.pluginsDir
	}
	return filepath.Join(p.xdgData, PluginsDirName)
}

// PluginPath returns the install directory for one plugin. The plugin name
// is the directory name, which is why names are validated as path-safe.
func (p *paths) PluginPath(name string) string {
	return filepath.Join(p.PluginsDir(), name)
}

func (p *paths) ManifestPath() string {
	if p.manifestPath != "" {
		return p.manifestPath
	}
	return filepath.Join(p.xdgConfig, ManifestFileName)
}

func (p *paths) LockPath() string {
	if p.lockPath != "" {
		return p.lockPath
	}
	return filepath.Join(p.xdgData, LockFileName)
}

func (p *paths) ConfigFilePath() string {
	return filepath.Join(p.xdgConfig, ConfigFileName)
}

func (p *paths) LogFilePath() string {
	return filepath.Join(p.xdgState, LogFileName)
}

// expandHome expands ~ to the home directory
func expandHome(path string) string {
	if path == "" {
		return path
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = os.Getenv(EnvHome)
			if homeDir == "" {
				return path
			}
		}
		if path == "~" {
			return homeDir
		}
		if len(path) > 1 && path[1] == '/' {
			return filepath.Join(homeDir, path[2:])
		}
	}

	return path
}
