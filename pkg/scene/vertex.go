// Package scene assembles entity geometry into meshlet input.
package scene

import "github.com/Faultbox/meshlet-lab/pkg/math"

// VertexSize is the byte stride of Vertex in a storage buffer.
const VertexSize = 32

// Vertex is the GPU vertex record: std430 vec3 members padded to 16 bytes.
type Vertex struct {
	Pos   math.Vec3
	_     float32
	Color math.Vec3
	_     float32
}

// NewVertex creates a vertex with zeroed padding.
func NewVertex(pos, color math.Vec3) Vertex {
	return Vertex{Pos: pos, Color: color}
}
