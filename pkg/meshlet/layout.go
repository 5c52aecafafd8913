package meshlet

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Packed buffer layout, all values little-endian:
//
//	Header
//	Descriptor[NumMeshlets]
//	uint32 vertex indices     (starts at word Header.VertexIndicesOffset)
//	uint8  primitive indices  (starts at word Header.PrimitiveIndicesOffset, zero padded to 4 bytes)
const (
	HeaderSize     = 8
	DescriptorSize = 16
)

// Meshlet buffer errors.
var (
	ErrTruncatedMeshletData  = errors.New("truncated meshlet data")
	ErrMisalignedMeshletData = errors.New("meshlet data is not 4-byte aligned")
	ErrInvalidMeshletOffsets = errors.New("invalid meshlet region offsets")
	ErrMeshletOutOfRange     = errors.New("meshlet references data outside its region")
	ErrMeshletInvariant      = errors.New("meshlet invariant violated")
)

// Header locates the index regions, in 4-byte words from the buffer start.
type Header struct {
	VertexIndicesOffset    uint32
	PrimitiveIndicesOffset uint32
}

// Descriptor describes one meshlet.
type Descriptor struct {
	VertexCount    uint32
	PrimitiveCount uint32
	VertexBegin    uint32 // Offset into the vertex index region, in entries
	PrimitiveBegin uint32 // Offset into the primitive index region, in triangles
}

// Packed is a decoded view over a packed meshlet buffer.
type Packed struct {
	Header           Header
	Descriptors      []Descriptor
	VertexIndices    []uint32
	PrimitiveIndices []uint8 // Includes trailing padding
}

// Meshlet is a single meshlet resolved from a Packed buffer.
type Meshlet struct {
	Vertices  []uint32   // Global vertex indices
	Triangles [][3]uint8 // Local indices into Vertices
}

// Decode parses a packed meshlet buffer produced by Builder.Build.
func Decode(data []byte) (*Packed, error) {
	if len(data) < HeaderSize {
		return nil, ErrTruncatedMeshletData
	}
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("%w: length %d", ErrMisalignedMeshletData, len(data))
	}

	p := &Packed{}
	p.Header.VertexIndicesOffset = binary.LittleEndian.Uint32(data[0:4])
	p.Header.PrimitiveIndicesOffset = binary.LittleEndian.Uint32(data[4:8])

	vertexStart := int(p.Header.VertexIndicesOffset) * 4
	primitiveStart := int(p.Header.PrimitiveIndicesOffset) * 4
	if vertexStart < HeaderSize || primitiveStart < vertexStart || primitiveStart > len(data) {
		return nil, fmt.Errorf("%w: vertex=%d primitive=%d size=%d",
			ErrInvalidMeshletOffsets, p.Header.VertexIndicesOffset, p.Header.PrimitiveIndicesOffset, len(data))
	}
	if (vertexStart-HeaderSize)%DescriptorSize != 0 {
		return nil, fmt.Errorf("%w: descriptor region of %d bytes", ErrInvalidMeshletOffsets, vertexStart-HeaderSize)
	}

	count := (vertexStart - HeaderSize) / DescriptorSize
	p.Descriptors = make([]Descriptor, count)
	for i := range p.Descriptors {
		off := HeaderSize + i*DescriptorSize
		p.Descriptors[i] = Descriptor{
			VertexCount:    binary.LittleEndian.Uint32(data[off:]),
			PrimitiveCount: binary.LittleEndian.Uint32(data[off+4:]),
			VertexBegin:    binary.LittleEndian.Uint32(data[off+8:]),
			PrimitiveBegin: binary.LittleEndian.Uint32(data[off+12:]),
		}
	}

	p.VertexIndices = make([]uint32, (primitiveStart-vertexStart)/4)
	for i := range p.VertexIndices {
		p.VertexIndices[i] = binary.LittleEndian.Uint32(data[vertexStart+i*4:])
	}

	p.PrimitiveIndices = append([]uint8(nil), data[primitiveStart:]...)

	for i, d := range p.Descriptors {
		if uint64(d.VertexBegin)+uint64(d.VertexCount) > uint64(len(p.VertexIndices)) {
			return nil, fmt.Errorf("meshlet %d vertices: %w", i, ErrMeshletOutOfRange)
		}
		if (uint64(d.PrimitiveBegin)+uint64(d.PrimitiveCount))*3 > uint64(len(p.PrimitiveIndices)) {
			return nil, fmt.Errorf("meshlet %d primitives: %w", i, ErrMeshletOutOfRange)
		}
	}

	return p, nil
}

// NumMeshlets returns the number of meshlet descriptors.
func (p *Packed) NumMeshlets() int {
	return len(p.Descriptors)
}

// TriangleCount returns the total number of triangles over all meshlets.
func (p *Packed) TriangleCount() int {
	total := 0
	for _, d := range p.Descriptors {
		total += int(d.PrimitiveCount)
	}
	return total
}

// Meshlet resolves meshlet i. The returned slices alias the Packed buffers.
func (p *Packed) Meshlet(i int) Meshlet {
	d := p.Descriptors[i]
	m := Meshlet{
		Vertices:  p.VertexIndices[d.VertexBegin : d.VertexBegin+d.VertexCount],
		Triangles: make([][3]uint8, d.PrimitiveCount),
	}
	prims := p.PrimitiveIndices[d.PrimitiveBegin*3:]
	for t := range m.Triangles {
		copy(m.Triangles[t][:], prims[t*3:t*3+3])
	}
	return m
}

// Validate checks every meshlet against the structural invariants and the
// capacity limits.
func (p *Packed) Validate(limits Limits) error {
	if err := p.CheckStructure(); err != nil {
		return err
	}
	return p.CheckCapacity(limits)
}

// CheckStructure checks the invariants that hold for any buffer regardless of
// the limits it was built with: every meshlet has primitives, its vertex table
// has no duplicates, and every local index points into that table.
func (p *Packed) CheckStructure() error {
	for i, d := range p.Descriptors {
		if d.PrimitiveCount == 0 {
			return fmt.Errorf("meshlet %d has no primitives: %w", i, ErrMeshletInvariant)
		}

		m := p.Meshlet(i)
		seen := make(map[uint32]struct{}, len(m.Vertices))
		for _, v := range m.Vertices {
			if _, dup := seen[v]; dup {
				return fmt.Errorf("meshlet %d repeats vertex %d: %w", i, v, ErrMeshletInvariant)
			}
			seen[v] = struct{}{}
		}
		for t, tri := range m.Triangles {
			for _, local := range tri {
				if int(local) >= len(m.Vertices) {
					return fmt.Errorf("meshlet %d triangle %d uses local index %d of %d: %w",
						i, t, local, len(m.Vertices), ErrMeshletInvariant)
				}
			}
		}
	}
	return nil
}

// CheckCapacity checks every meshlet against the vertex and triangle limits.
func (p *Packed) CheckCapacity(limits Limits) error {
	for i, d := range p.Descriptors {
		if int(d.VertexCount) > limits.MaxVertices {
			return fmt.Errorf("meshlet %d has %d vertices (max %d): %w",
				i, d.VertexCount, limits.MaxVertices, ErrMeshletInvariant)
		}
		if int(d.PrimitiveCount) > limits.MaxTriangles {
			return fmt.Errorf("meshlet %d has %d triangles (max %d): %w",
				i, d.PrimitiveCount, limits.MaxTriangles, ErrMeshletInvariant)
		}
	}
	return nil
}
