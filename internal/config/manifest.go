package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"sigs.k8s.io/yaml"

	"github.com/danieljhkim/modclash/internal/fsops"
)

// Manifest lists the groups checked together for one installation.
//
//	group_label = "Packages"
//	ignore_extensions = ["bak"]
//
//	[[group]]
//	name = "ModA"
//	root = "mods/ModA"
type Manifest struct {
	GroupLabel       string          `toml:"group_label"`
	MemberLabel      string          `toml:"member_label"`
	IgnoreExtensions []string        `toml:"ignore_extensions"`
	IgnorePatterns   []string        `toml:"ignore_patterns"`
	Groups           []ManifestGroup `toml:"group"`
}

// ManifestGroup is one group root in a manifest.
type ManifestGroup struct {
	// Name defaults to Root when empty.
	Name string `toml:"name"`

	// Root is resolved against the manifest's directory when relative.
	Root string `toml:"root"`
}

// LoadManifest reads and validates a TOML manifest. Unknown keys are rejected.
func LoadManifest(fsys fsops.FS, path string) (*Manifest, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: manifest %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i := range m.Groups {
		if !filepath.IsAbs(m.Groups[i].Root) {
			m.Groups[i].Root = filepath.Join(base, filepath.FromSlash(m.Groups[i].Root))
		}
	}

	return m, nil
}

// ParseManifest decodes a TOML manifest without resolving roots.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidManifest, strict.String())
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	if len(m.Groups) == 0 {
		return nil, fmt.Errorf("%w: no [[group]] entries", ErrInvalidManifest)
	}
	for i, g := range m.Groups {
		if g.Root == "" {
			return nil, fmt.Errorf("%w: group %d has no root", ErrInvalidManifest, i+1)
		}
		if g.Name == "" {
			m.Groups[i].Name = g.Root
		}
	}

	return &m, nil
}

// SetsDocument describes named string sets checked without touching the
// filesystem. It decodes from YAML or JSON:
//
//	group_label: Teams
//	member_label: Owners
//	groups:
//	  - name: core
//	    members: [alice, bob]
type SetsDocument struct {
	GroupLabel  string     `json:"group_label"`
	MemberLabel string     `json:"member_label"`
	Groups      []NamedSet `json:"groups"`
}

// NamedSet is one group of a SetsDocument. Repeated members collapse.
type NamedSet struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// ParseSets decodes a YAML or JSON named-set document. Unknown keys are rejected.
func ParseSets(data []byte) (*SetsDocument, error) {
	var doc SetsDocument
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if len(doc.Groups) == 0 {
		return nil, fmt.Errorf("%w: no groups", ErrInvalidManifest)
	}
	return &doc, nil
}
