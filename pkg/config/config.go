// Package config loads doplug's app configuration. Three layers, later
// layers winning: built-in defaults, an optional doplug.toml (or .yaml) in
// the config dir, and DOPLUG_* environment variables. The manifest is not
// configuration; it is data, owned by pkg/manifest.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/doplug/pkg/errors"
)

// Settings is the resolved app configuration.
type Settings struct {
	// PluginsDir overrides where plugin clones live. Empty means the
	// default location under the data dir.
	PluginsDir string `koanf:"plugins_dir" toml:"plugins_dir"`

	// Manifest overrides the manifest location. Empty means plugins.json
	// in the config dir.
	Manifest string `koanf:"manifest" toml:"manifest"`

	// LockFile overrides the lock file location. Empty means
	// plugins.lock.json in the data dir.
	LockFile string `koanf:"lock_file" toml:"lock_file"`

	Git    GitSettings    `koanf:"git" toml:"git"`
	Output OutputSettings `koanf:"output" toml:"output"`
}

// GitSettings configures the git collaborator.
type GitSettings struct {
	// Binary is the git executable to run.
	Binary string `koanf:"binary" toml:"binary"`

	// Timeout bounds one git operation, in seconds.
	Timeout int `koanf:"timeout" toml:"timeout"`
}

// OutputSettings configures rendering.
type OutputSettings struct {
	// Format is one of auto, term, text, json.
	Format string `koanf:"format" toml:"format"`

	// NoColor disables styling even on capable terminals.
	NoColor bool `koanf:"no_color" toml:"no_color"`
}

// GitTimeout returns the configured timeout as a duration.
func (s *Settings) GitTimeout() time.Duration {
	return time.Duration(s.Git.Timeout) * time.Second
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Git: GitSettings{
			Binary:  "git",
			Timeout: 300,
		},
		Output: OutputSettings{
			Format: "auto",
		},
	}
}

// envKeys maps accepted environment variables onto config keys. An explicit
// table beats prefix munging: DOPLUG_LOCK_FILE vs git.binary style keys
// cannot be told apart mechanically.
var envKeys = map[string]string{
	"DOPLUG_PLUGINS_DIR":   "plugins_dir",
	"DOPLUG_MANIFEST":      "manifest",
	"DOPLUG_LOCK_FILE":     "lock_file",
	"DOPLUG_GIT_BINARY":    "git.binary",
	"DOPLUG_GIT_TIMEOUT":   "git.timeout",
	"DOPLUG_OUTPUT_FORMAT": "output.format",
	"DOPLUG_NO_COLOR":      "output.no_color",
}

// configFileNames are tried in order; the first that exists wins.
var configFileNames = []string{"doplug.toml", "doplug.yaml", "doplug.yml"}

// Load resolves settings for the given config directory.
func Load(configDir string) (*Settings, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaultsMap(), "."), nil); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. Config file, if present
	for _, name := range configFileNames {
		path := filepath.Join(configDir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), parserFor(name)); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad,
				"failed to load config from %s", path)
		}
		break
	}

	// 3. Environment
	envProvider := env.Provider("DOPLUG_", ".", func(key string) string {
		return envKeys[key]
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load environment")
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "invalid configuration")
	}
	return &s, nil
}

func defaultsMap() map[string]interface{} {
	d := Defaults()
	return map[string]interface{}{
		"plugins_dir":     d.PluginsDir,
		"manifest":        d.Manifest,
		"lock_file":       d.LockFile,
		"git.binary":      d.Git.Binary,
		"git.timeout":     d.Git.Timeout,
		"output.format":   d.Output.Format,
		"output.no_color": d.Output.NoColor,
	}
}

func parserFor(name string) koanf.Parser {
	if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
		return yaml.Parser()
	}
	return toml.Parser()
}
