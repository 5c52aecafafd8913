package scene

import (
	"fmt"
	"strings"

	"github.com/Faultbox/meshlet-lab/pkg/math"
	"github.com/Faultbox/meshlet-lab/pkg/meshlet"
)

// Entity is a placed mesh.
type Entity struct {
	Name      string
	Mesh      *Mesh
	Color     math.Vec3
	Transform math.Mat4
}

// Helper reports whether the entity is a helper object. Helper names
// contain an underscore and are never built.
func (e *Entity) Helper() bool {
	return strings.Contains(e.Name, "_")
}

// Scene is an ordered list of entities.
type Scene struct {
	Name     string
	Entities []Entity
}

// Single wraps one mesh in a scene with an identity transform.
func Single(name string, mesh *Mesh) *Scene {
	return &Scene{
		Name: name,
		Entities: []Entity{{
			Name:      name,
			Mesh:      mesh,
			Color:     math.Splat(1),
			Transform: math.Identity(),
		}},
	}
}

// Renderable returns the entities that take part in a build.
func (s *Scene) Renderable() []Entity {
	var out []Entity
	for _, e := range s.Entities {
		if e.Helper() || e.Mesh == nil {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Vertices places the entity mesh in world space.
func (e *Entity) Vertices() []Vertex {
	vertices := make([]Vertex, len(e.Mesh.Positions))
	for i, p := range e.Mesh.Positions {
		color := e.Color
		if i < len(e.Mesh.Colors) {
			color = color.Mul(e.Mesh.Colors[i])
		}
		vertices[i] = NewVertex(e.Transform.TransformVec3(p), color)
	}
	return vertices
}

// Build appends one fragment per renderable entity and packs the meshlets.
func (s *Scene) Build(limits meshlet.Limits) (*meshlet.MeshData[Vertex], error) {
	if err := limits.Check(); err != nil {
		return nil, err
	}

	b := meshlet.NewWithLimits[Vertex](limits)
	for _, e := range s.Renderable() {
		if len(e.Mesh.Indices)%3 != 0 {
			return nil, fmt.Errorf("entity %s: index count %d is not a multiple of 3", e.Name, len(e.Mesh.Indices))
		}
		b.Append(e.Vertices(), e.Mesh.Indices)
	}
	return b.Build(), nil
}
