package config

// RootConfig holds scan settings for a single directory root.
// This allows customizing scan behavior per project tree.
type RootConfig struct {
	// Extensions are the file extensions recognized as headers for this
	// root. If empty, the built-in defaults are used.
	Extensions []string `yaml:"extensions,omitempty"`

	// Exclude are directory names to skip, subtree included.
	// If empty, the built-in defaults (.git, .svn) are used.
	Exclude []string `yaml:"exclude,omitempty"`

	// Workers overrides the classification parallelism for this root.
	// If zero, the global setting is used.
	Workers int `yaml:"workers,omitempty"`
}

// File represents the structure of the .guardscan configuration file.
type File struct {
	// Roots maps directory paths to their root-specific configurations.
	// Keys are matched against the scan root as given on the command
	// line.
	Roots map[string]RootConfig `yaml:"roots,omitempty"`

	// Defaults contains configuration applied to every root unless
	// overridden in the root-specific configuration.
	Defaults RootConfig `yaml:"defaults,omitempty"`
}

// GetRootConfig returns the configuration for a scan root, merging the
// root-specific configuration over the defaults.
func (cf *File) GetRootConfig(root string) RootConfig {
	result := cf.Defaults

	if rc, ok := cf.Roots[root]; ok {
		if len(rc.Extensions) > 0 {
			result.Extensions = rc.Extensions
		}
		if len(rc.Exclude) > 0 {
			result.Exclude = rc.Exclude
		}
		if rc.Workers > 0 {
			result.Workers = rc.Workers
		}
	}

	return result
}
