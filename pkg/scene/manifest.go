package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/meshlet-lab/pkg/formats"
	"github.com/Faultbox/meshlet-lab/pkg/math"
)

// Scene manifest errors.
var (
	ErrUnknownMesh = errors.New("unknown mesh source")
	ErrEmptyScene  = errors.New("scene has no entities")
)

// Manifest is the YAML scene description.
type Manifest struct {
	Name     string       `yaml:"name"`
	Entities []EntitySpec `yaml:"entities"`
}

// EntitySpec describes one entity in a manifest.
type EntitySpec struct {
	Name      string      `yaml:"name"`
	Mesh      string      `yaml:"mesh"`            // "cube", "quad", "grid:N" (N <= MaxGridSize) or an .obj path
	Color     *[3]float32 `yaml:"color,omitempty"` // Default white
	Translate [3]float32  `yaml:"translate"`       // World position
	Scale     *[3]float32 `yaml:"scale,omitempty"` // Default 1
	RotateY   float32     `yaml:"rotate_y"`        // Degrees
}

// LoadManifest loads a scene manifest from disk. OBJ paths resolve
// relative to the manifest's directory.
func LoadManifest(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene manifest: %w", err)
	}
	return ParseManifest(data, filepath.Dir(path))
}

// ParseManifest parses a YAML manifest and loads every referenced mesh.
func ParseManifest(data []byte, baseDir string) (*Scene, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing scene manifest: %w", err)
	}
	if len(m.Entities) == 0 {
		return nil, ErrEmptyScene
	}

	s := &Scene{Name: m.Name}
	for i, spec := range m.Entities {
		mesh, err := resolveMesh(spec.Mesh, baseDir)
		if err != nil {
			return nil, fmt.Errorf("entity %d (%s): %w", i, spec.Name, err)
		}
		s.Entities = append(s.Entities, spec.entity(mesh))
	}
	return s, nil
}

func (spec EntitySpec) entity(mesh *Mesh) Entity {
	color := math.Splat(1)
	if spec.Color != nil {
		color = math.FromArray(*spec.Color)
	}
	scale := math.Splat(1)
	if spec.Scale != nil {
		scale = math.FromArray(*spec.Scale)
	}

	return Entity{
		Name:      spec.Name,
		Mesh:      mesh,
		Color:     color,
		Transform: math.TRS(math.FromArray(spec.Translate), math.Radians(spec.RotateY), scale),
	}
}

// resolveMesh maps a manifest mesh source to geometry.
func resolveMesh(source, baseDir string) (*Mesh, error) {
	name, arg, hasArg := strings.Cut(source, ":")
	switch {
	case source == "cube":
		return Cube(), nil
	case source == "quad":
		return Quad(), nil
	case name == "grid" && hasArg:
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%w: grid size %q", ErrUnknownMesh, arg)
		}
		if n > MaxGridSize {
			return nil, fmt.Errorf("%w: grid size %d exceeds %d", ErrUnknownMesh, n, MaxGridSize)
		}
		return Grid(n), nil
	case strings.EqualFold(filepath.Ext(source), ".obj"):
		path := source
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		obj, err := formats.ParseOBJFile(path)
		if err != nil {
			return nil, err
		}
		return MeshFromOBJ(obj), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMesh, source)
	}
}

// MeshFromOBJ wraps parsed OBJ geometry.
func MeshFromOBJ(obj *formats.OBJ) *Mesh {
	return &Mesh{
		Positions: obj.Positions,
		Colors:    obj.Colors,
		Indices:   obj.Indices,
	}
}
