// Package config manages modclash settings, group manifests and named-set
// documents.
//
// Settings live in a TOML file under the modclash root (default
// ~/.modclash/config.toml) and can be overridden with MODCLASH_* environment
// variables. Manifests describe the groups to check for one installation;
// named-set documents describe generic groups for filesystem-free checks.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains the filesystem paths used by modclash.
type Paths struct {
	// Root is the base directory for modclash data (default: ~/.modclash)
	Root string

	// Config is the path to the settings file
	Config string
}

// DefaultPaths returns the default paths for modclash.
// Paths can be overridden with environment variables:
// - MODCLASH_ROOT: Override the root directory
func DefaultPaths() (*Paths, error) {
	root := os.Getenv("MODCLASH_ROOT")
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		root = filepath.Join(home, ".modclash")
	}

	return &Paths{
		Root:   root,
		Config: filepath.Join(root, "config.toml"),
	}, nil
}
