// Package manifest loads the declared plugin set. The manifest is the
// user-authored side of doplug: JSON canonically, YAML accepted for people
// who keep the rest of their editor config in YAML. Structural decoding
// happens here; the semantic checks are delegated to pkg/validate so a
// malformed manifest is rejected with zero side effects.
package manifest

import (
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/doplug/pkg/errors"
	"github.com/arthur-debert/doplug/pkg/types"
	"github.com/arthur-debert/doplug/pkg/validate"
	"gopkg.in/yaml.v3"
)

// Manifest is the on-disk shape of the declared set.
type Manifest struct {
	Plugins []types.PluginSpec `json:"plugins" yaml:"plugins"`
}

// Load reads and validates the manifest at path. When path itself does
// not exist, the .yaml and .yml siblings are tried before giving up. The
// declared order of plugins is preserved: it is the tie-break order for
// dependency resolution.
func Load(filesystem types.FS, path string) ([]types.PluginSpec, error) {
	data, err := filesystem.ReadFile(path)
	if isNotExist(err) {
		for _, alt := range yamlSiblings(path) {
			if altData, altErr := filesystem.ReadFile(alt); altErr == nil {
				data, path, err = altData, alt, nil
				break
			}
		}
	}
	if err != nil {
		if isNotExist(err) {
			return nil, errors.Newf(errors.ErrManifestNotFound,
				"no manifest at %s (run 'doplug init' to create one)", path)
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess,
			"cannot read manifest %s", path)
	}

	m, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestInvalid,
			"manifest %s", path)
	}

	if err := Validate(m.Plugins); err != nil {
		return nil, err
	}
	return m.Plugins, nil
}

func isNotExist(err error) bool {
	return err != nil && (os.IsNotExist(err) || stderrors.Is(err, fs.ErrNotExist))
}

// yamlSiblings returns the same path with .yaml and .yml extensions.
func yamlSiblings(path string) []string {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	return []string{base + ".yaml", base + ".yml"}
}

// Parse decodes manifest bytes. ext selects the decoder: ".yaml"/".yml"
// for YAML, JSON otherwise.
func Parse(data []byte, ext string) (Manifest, error) {
	var m Manifest
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return Manifest{}, err
		}
	default:
		if err := json.Unmarshal(data, &m); err != nil {
			return Manifest{}, err
		}
	}
	return m, nil
}

// Validate applies the semantic checks to a decoded declared set: every
// field of every spec, plus name uniqueness. Dependency existence and
// acyclicity belong to the resolver, not here.
func Validate(specs []types.PluginSpec) error {
	seen := make(map[string]bool, len(specs))
	for _, spec := range specs {
		if err := validate.ValidateSpec(spec); err != nil {
			return err
		}
		if seen[spec.Name] {
			return errors.Newf(errors.ErrDuplicatePlugin,
				"plugin %q is declared more than once", spec.Name)
		}
		seen[spec.Name] = true
	}
	return nil
}

// StarterContent is the manifest 'doplug init' writes: a commented example
// the user edits rather than an empty skeleton.
const StarterContent = `{
  "plugins": [
    {
      "name": "plenary",
      "source": "https://github.com/nvim-lua/plenary.nvim",
      "revision": "0000000000000000000000000000000000000000"
    },
    {
      "name": "telescope",
      "source": "https://github.com/nvim-telescope/telescope.nvim",
      "revision": "0000000000000000000000000000000000000000",
      "dependencies": ["plenary"]
    }
  ]
}
`
