package resources

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Kind groups assets by how the renderer consumes them.
type Kind int

const (
	KindModel Kind = iota
	KindShader
	KindTexture
	KindSkybox
)

func (k Kind) String() string {
	switch k {
	case KindModel:
		return "model"
	case KindShader:
		return "shader"
	case KindTexture:
		return "texture"
	case KindSkybox:
		return "skybox"
	default:
		return "unknown"
	}
}

// Manifest maps asset names to paths, per kind. Relative paths resolve
// against the manifest's directory.
type Manifest struct {
	Models   map[string]string `yaml:"models"`
	Shaders  map[string]string `yaml:"shaders"`
	Textures map[string]string `yaml:"textures"`
	Skyboxes map[string]string `yaml:"skyboxes"`

	dir string
}

// LoadManifest reads a resource manifest.
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	m.dir = filepath.Dir(path)
	return &m, nil
}

// entry is one asset to load.
type entry struct {
	kind Kind
	name string
	path string
}

// entries lists every asset in a stable order (kind, then name).
func (m *Manifest) entries() []entry {
	var out []entry
	add := func(k Kind, set map[string]string) {
		names := make([]string, 0, len(set))
		for n := range set {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			p := set[n]
			if !filepath.IsAbs(p) {
				p = filepath.Join(m.dir, p)
			}
			out = append(out, entry{kind: k, name: n, path: p})
		}
	}
	add(KindModel, m.Models)
	add(KindShader, m.Shaders)
	add(KindTexture, m.Textures)
	add(KindSkybox, m.Skyboxes)
	return out
}
