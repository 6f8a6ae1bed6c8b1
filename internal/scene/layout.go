package scene

import (
	"fmt"
	"os"

	"github.com/glade/glade/internal/graphics"
	"gopkg.in/yaml.v3"
)

// CameraPose is a camera position plus orientation in degrees.
type CameraPose struct {
	Position graphics.Vec3 `yaml:"position"`
	Yaw      float32       `yaml:"yaw"`
	Pitch    float32       `yaml:"pitch"`
}

// Placement draws one model at every listed transform.
type Placement struct {
	Model     string               `yaml:"model"`
	Shader    string               `yaml:"shader"`
	NightOnly bool                 `yaml:"night_only"`
	Instances []graphics.Transform `yaml:"instances"`
}

// Layout is the static content of a scene.
type Layout struct {
	Name       string      `yaml:"name"`
	Camera     CameraPose  `yaml:"camera"`
	Placements []Placement `yaml:"placements"`
}

// LoadLayout reads a scene layout file.
func LoadLayout(path string) (*Layout, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	return ParseLayout(raw)
}

func ParseLayout(raw []byte) (*Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(raw, &l); err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	for i := range l.Placements {
		p := &l.Placements[i]
		if p.Model == "" {
			return nil, fmt.Errorf("placement %d: model is required", i)
		}
		if p.Shader == "" {
			p.Shader = "basic"
		}
		for j := range p.Instances {
			if p.Instances[j].Scale == 0 {
				p.Instances[j].Scale = 1
			}
		}
	}
	if l.Name == "" {
		l.Name = "default"
	}
	return &l, nil
}

// Instances returns the number of model instances in the layout.
func (l *Layout) Instances() int {
	n := 0
	for _, p := range l.Placements {
		n += len(p.Instances)
	}
	return n
}
