// Package meshlet packs indexed triangle meshes into meshlets for mesh-shading pipelines.
//
// A meshlet is a group of at most MaxVertices unique vertices and MaxTriangles
// triangles. Triangles reference vertices through 8-bit local indices into the
// meshlet's own vertex table, which in turn holds 32-bit indices into the global
// vertex buffer.
package meshlet

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Default meshlet capacities.
const (
	MaxVertices  = 64
	MaxTriangles = 126
)

// Limits bounds the size of a single meshlet.
type Limits struct {
	MaxVertices  int
	MaxTriangles int
}

// DefaultLimits returns the standard 64 vertex / 126 triangle limits.
func DefaultLimits() Limits {
	return Limits{
		MaxVertices:  MaxVertices,
		MaxTriangles: MaxTriangles,
	}
}

// Check reports whether the limits can be used to build meshlets.
func (l Limits) Check() error {
	// a triangle needs 3 vertex slots, local indices are 8-bit
	if l.MaxVertices < 3 || l.MaxVertices > 256 {
		return fmt.Errorf("meshlet vertex limit %d out of range [3, 256]", l.MaxVertices)
	}
	if l.MaxTriangles < 1 {
		return fmt.Errorf("meshlet triangle limit %d must be positive", l.MaxTriangles)
	}
	return nil
}

// MeshData is the result of a build.
type MeshData[V any] struct {
	Vertices    []V    // One entry per appended vertex, in append order
	Meshlets    []byte // Packed meshlet buffer (see Header)
	NumMeshlets int
}

// Stats is a snapshot of builder progress.
type Stats struct {
	Vertices  int // Global vertices appended
	Triangles int // Triangles committed
	Meshlets  int // Meshlets closed so far
}

// Builder accumulates mesh fragments into meshlets.
// It is single use: after Build it must not be touched again.
type Builder[V any] struct {
	limits Limits

	vertices []V

	descriptors      []Descriptor
	vertexIndices    []uint32
	primitiveIndices []uint8

	vertexBegin    int
	primitiveBegin int

	triangles int
	built     bool
}

// New creates a builder with the default limits.
func New[V any]() *Builder[V] {
	return NewWithLimits[V](DefaultLimits())
}

// NewWithLimits creates a builder with custom limits. It panics on unusable limits.
func NewWithLimits[V any](limits Limits) *Builder[V] {
	if err := limits.Check(); err != nil {
		panic("meshlet: " + err.Error())
	}
	return &Builder[V]{limits: limits}
}

// Limits returns the limits the builder was created with.
func (b *Builder[V]) Limits() Limits {
	return b.limits
}

// Stats returns the current progress counters.
func (b *Builder[V]) Stats() Stats {
	return Stats{
		Vertices:  len(b.vertices),
		Triangles: b.triangles,
		Meshlets:  len(b.descriptors),
	}
}

// Append adds a mesh fragment. Indices are local to vertices and are taken
// three at a time; len(indices) must be a multiple of 3.
func (b *Builder[V]) Append(vertices []V, indices []uint16) {
	if b.built {
		panic("meshlet: Append called after Build")
	}
	if len(indices)%3 != 0 {
		panic(fmt.Sprintf("meshlet: index count %d is not a multiple of 3", len(indices)))
	}

	vertexStart := uint32(len(b.vertices))
	b.vertices = append(b.vertices, vertices...)

	var triangle [3]uint32
	for t := 0; t < len(indices); t += 3 {
		for i := range triangle {
			idx := indices[t+i]
			if int(idx) >= len(vertices) {
				panic(fmt.Sprintf("meshlet: index %d out of range for fragment with %d vertices", idx, len(vertices)))
			}
			triangle[i] = vertexStart + uint32(idx)
		}
		b.addTriangle(triangle)
	}
}

func (b *Builder[V]) addTriangle(triangle [3]uint32) {
	unique, added := b.newVertices(triangle)

	if b.vertexCount()+added > b.limits.MaxVertices {
		b.flush()
		unique, _ = b.newVertices(triangle)
	}

	for i, v := range triangle {
		if unique[i] {
			b.vertexIndices = append(b.vertexIndices, v)
		}
	}

	local := b.vertexIndices[b.vertexBegin:]
	for _, v := range triangle {
		b.primitiveIndices = append(b.primitiveIndices, uint8(position(local, v)))
	}
	b.triangles++

	if b.primitiveCount() >= b.limits.MaxTriangles {
		b.flush()
	}
}

// Build finalizes the meshlets and packs them into a single buffer.
func (b *Builder[V]) Build() *MeshData[V] {
	if b.built {
		panic("meshlet: Build called twice")
	}
	b.built = true

	if b.primitiveCount() > 0 {
		b.flush()
	}

	// pad to 32 bits
	for len(b.primitiveIndices)%4 != 0 {
		b.primitiveIndices = append(b.primitiveIndices, 0)
	}

	headerSize := binary.Size(Header{})
	descriptorsSize := DescriptorSize * len(b.descriptors)
	vertexIndicesSize := 4 * len(b.vertexIndices)
	primitiveIndicesSize := len(b.primitiveIndices)

	for _, size := range []int{headerSize, descriptorsSize, vertexIndicesSize, primitiveIndicesSize} {
		if size%4 != 0 {
			panic(fmt.Sprintf("meshlet: region size %d is not 4-byte aligned", size))
		}
	}

	header := Header{
		VertexIndicesOffset:    uint32((headerSize + descriptorsSize) / 4),
		PrimitiveIndicesOffset: uint32((headerSize + descriptorsSize + vertexIndicesSize) / 4),
	}

	buf := bytes.NewBuffer(make([]byte, 0, headerSize+descriptorsSize+vertexIndicesSize+primitiveIndicesSize))
	// bytes.Buffer writes cannot fail
	_ = binary.Write(buf, binary.LittleEndian, header)
	_ = binary.Write(buf, binary.LittleEndian, b.descriptors)
	_ = binary.Write(buf, binary.LittleEndian, b.vertexIndices)
	buf.Write(b.primitiveIndices)

	data := &MeshData[V]{
		Vertices:    b.vertices,
		Meshlets:    buf.Bytes(),
		NumMeshlets: len(b.descriptors),
	}

	b.vertices = nil
	b.descriptors = nil
	b.vertexIndices = nil
	b.primitiveIndices = nil

	return data
}

// newVertices marks the triangle corners missing from the in-progress meshlet.
// A vertex repeated within a degenerate triangle is only marked once.
func (b *Builder[V]) newVertices(triangle [3]uint32) (unique [3]bool, count int) {
	current := b.vertexIndices[b.vertexBegin:]
	for i, v := range triangle {
		if contains(current, v) || contains(triangle[:i], v) {
			continue
		}
		unique[i] = true
		count++
	}
	return unique, count
}

// flush closes the in-progress meshlet and starts an empty one.
func (b *Builder[V]) flush() {
	b.descriptors = append(b.descriptors, Descriptor{
		VertexCount:    uint32(b.vertexCount()),
		PrimitiveCount: uint32(b.primitiveCount()),
		VertexBegin:    uint32(b.vertexBegin),
		PrimitiveBegin: uint32(b.primitiveBegin / 3),
	})

	b.vertexBegin = len(b.vertexIndices)
	b.primitiveBegin = len(b.primitiveIndices)
}

func (b *Builder[V]) vertexCount() int {
	return len(b.vertexIndices) - b.vertexBegin
}

func (b *Builder[V]) primitiveCount() int {
	return (len(b.primitiveIndices) - b.primitiveBegin) / 3
}

// contains and position are linear scans; the slice never exceeds 256 entries.
func contains(vertices []uint32, v uint32) bool {
	return position(vertices, v) >= 0
}

func position(vertices []uint32, v uint32) int {
	for i, u := range vertices {
		if u == v {
			return i
		}
	}
	return -1
}
