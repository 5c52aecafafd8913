package scene

import "github.com/Faultbox/meshlet-lab/pkg/math"

// Mesh is an indexed triangle fragment before placement.
type Mesh struct {
	Positions []math.Vec3
	Colors    []math.Vec3 // Optional, parallel to Positions
	Indices   []uint16
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Cube returns the 8 vertex, 12 triangle cube spanning [-1, 1].
func Cube() *Mesh {
	return &Mesh{
		Positions: []math.Vec3{
			math.V3(-1, -1, -1),
			math.V3(-1, -1, 1),
			math.V3(1, -1, 1),
			math.V3(1, -1, -1),

			math.V3(-1, 1, -1),
			math.V3(1, 1, -1),
			math.V3(1, 1, 1),
			math.V3(-1, 1, 1),
		},
		Indices: []uint16{
			0, 1, 2, 0, 2, 3, // bottom
			4, 5, 6, 4, 7, 6, // top

			0, 1, 7, 0, 7, 4, // left
			3, 6, 2, 3, 5, 6, // right

			0, 3, 5, 0, 5, 4, // back
			1, 6, 7, 1, 2, 6, // front
		},
	}
}

// Quad returns a unit quad on the XZ plane.
func Quad() *Mesh {
	return Grid(1)
}

// Grid returns an n x n quad grid on the XZ plane spanning [-1, 1].
// n is clamped so the vertex count stays within 16-bit indices.
func Grid(n int) *Mesh {
	n = max(1, min(n, MaxGridSize))
	row := n + 1

	m := &Mesh{
		Positions: make([]math.Vec3, 0, row*row),
		Indices:   make([]uint16, 0, n*n*6),
	}
	step := 2 / float32(n)
	for z := 0; z <= n; z++ {
		for x := 0; x <= n; x++ {
			m.Positions = append(m.Positions, math.V3(-1+float32(x)*step, 0, -1+float32(z)*step))
		}
	}
	for z := 0; z < n; z++ {
		for x := 0; x < n; x++ {
			i := uint16(z*row + x)
			r := uint16(row)
			m.Indices = append(m.Indices, i, i+r, i+1, i+1, i+r, i+r+1)
		}
	}
	return m
}

// MaxGridSize keeps (n+1)^2 vertices addressable by uint16.
const MaxGridSize = 255
