package types

// PluginSpec is one declared plugin: what the user wants on disk.
// Specs come from the manifest and are matched to InstalledRecords by Name.
type PluginSpec struct {
	// Name is the unique plugin identifier, stable across runs. It doubles
	// as the install directory name under the plugins dir.
	Name string `json:"name" yaml:"name"`

	// Source is the HTTPS GitHub address of the plugin repository.
	Source string `json:"source" yaml:"source"`

	// Revision is the exact commit the plugin is pinned to (40 hex chars).
	// Branches, tags and ranges are deliberately unsupported.
	Revision string `json:"revision" yaml:"revision"`

	// Dependencies names other plugins in the same manifest that must be
	// installed before this one. Order is irrelevant; may be empty or nil.
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}
