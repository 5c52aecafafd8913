package meshlet

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

// makePacked assembles a buffer by hand so malformed layouts can be expressed.
func makePacked(header Header, descriptors []Descriptor, vertexIndices []uint32, prims []uint8) []byte {
	buf := make([]byte, 0, 64)
	buf = binary.LittleEndian.AppendUint32(buf, header.VertexIndicesOffset)
	buf = binary.LittleEndian.AppendUint32(buf, header.PrimitiveIndicesOffset)
	for _, d := range descriptors {
		buf = binary.LittleEndian.AppendUint32(buf, d.VertexCount)
		buf = binary.LittleEndian.AppendUint32(buf, d.PrimitiveCount)
		buf = binary.LittleEndian.AppendUint32(buf, d.VertexBegin)
		buf = binary.LittleEndian.AppendUint32(buf, d.PrimitiveBegin)
	}
	for _, v := range vertexIndices {
		buf = binary.LittleEndian.AppendUint32(buf, v)
	}
	return append(buf, prims...)
}

func TestDecodeErrors(t *testing.T) {
	valid := Descriptor{VertexCount: 3, PrimitiveCount: 1}

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{
			name:    "empty",
			data:    []byte{},
			wantErr: ErrTruncatedMeshletData,
		},
		{
			name:    "short header",
			data:    []byte{2, 0, 0, 0},
			wantErr: ErrTruncatedMeshletData,
		},
		{
			name:    "misaligned length",
			data:    append(makePacked(Header{2, 2}, nil, nil, nil), 0),
			wantErr: ErrMisalignedMeshletData,
		},
		{
			name:    "vertex offset inside header",
			data:    makePacked(Header{1, 2}, nil, nil, nil),
			wantErr: ErrInvalidMeshletOffsets,
		},
		{
			name:    "primitive offset before vertex offset",
			data:    makePacked(Header{6, 5}, []Descriptor{valid}, nil, nil),
			wantErr: ErrInvalidMeshletOffsets,
		},
		{
			name:    "primitive offset past end",
			data:    makePacked(Header{2, 9}, nil, nil, nil),
			wantErr: ErrInvalidMeshletOffsets,
		},
		{
			name:    "partial descriptor",
			data:    makePacked(Header{3, 3}, nil, []uint32{0}, nil),
			wantErr: ErrInvalidMeshletOffsets,
		},
		{
			name:    "vertices out of range",
			data:    makePacked(Header{6, 8}, []Descriptor{valid}, []uint32{0, 1}, []uint8{0, 1, 2, 0}),
			wantErr: ErrMeshletOutOfRange,
		},
		{
			name:    "primitives out of range",
			data:    makePacked(Header{6, 9}, []Descriptor{{VertexCount: 3, PrimitiveCount: 2}}, []uint32{0, 1, 2}, []uint8{0, 1, 2, 0}),
			wantErr: ErrMeshletOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDecodeHandBuilt(t *testing.T) {
	data := makePacked(
		Header{VertexIndicesOffset: 6, PrimitiveIndicesOffset: 10},
		[]Descriptor{{VertexCount: 4, PrimitiveCount: 2}},
		[]uint32{7, 8, 9, 10},
		[]uint8{0, 1, 2, 0, 2, 3, 0, 0},
	)

	p, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := p.Validate(DefaultLimits()); err != nil {
		t.Fatalf("validate: %v", err)
	}

	m := p.Meshlet(0)
	if len(m.Triangles) != 2 {
		t.Fatalf("expected 2 triangles, got %d", len(m.Triangles))
	}
	if m.Vertices[m.Triangles[1][2]] != 10 {
		t.Errorf("expected last corner to resolve to vertex 10, got %d", m.Vertices[m.Triangles[1][2]])
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		data       []byte
		limits     Limits
		structural bool
	}{
		{
			name:       "empty meshlet",
			data:       makePacked(Header{6, 6}, []Descriptor{{}}, nil, nil),
			limits:     DefaultLimits(),
			structural: true,
		},
		{
			name:       "too many vertices",
			data:       makePacked(Header{6, 10}, []Descriptor{{VertexCount: 4, PrimitiveCount: 1}}, []uint32{0, 1, 2, 3}, []uint8{0, 1, 2, 0}),
			limits:     Limits{MaxVertices: 3, MaxTriangles: 1},
		},
		{
			name:       "too many triangles",
			data:       makePacked(Header{6, 9}, []Descriptor{{VertexCount: 3, PrimitiveCount: 2}}, []uint32{0, 1, 2}, []uint8{0, 1, 2, 0, 1, 2, 0, 0}),
			limits:     Limits{MaxVertices: 3, MaxTriangles: 1},
		},
		{
			name:       "duplicate vertex",
			data:       makePacked(Header{6, 9}, []Descriptor{{VertexCount: 3, PrimitiveCount: 1}}, []uint32{0, 1, 0}, []uint8{0, 1, 2, 0}),
			limits:     DefaultLimits(),
			structural: true,
		},
		{
			name:       "local index out of table",
			data:       makePacked(Header{6, 9}, []Descriptor{{VertexCount: 3, PrimitiveCount: 1}}, []uint32{0, 1, 2}, []uint8{0, 1, 3, 0}),
			limits:     DefaultLimits(),
			structural: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Decode(tt.data)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if err := p.Validate(tt.limits); !errors.Is(err, ErrMeshletInvariant) {
				t.Errorf("expected invariant error, got %v", err)
			}

			err = p.CheckStructure()
			if tt.structural && !errors.Is(err, ErrMeshletInvariant) {
				t.Errorf("CheckStructure: expected invariant error, got %v", err)
			}
			if !tt.structural && err != nil {
				t.Errorf("CheckStructure: over-capacity meshlet is well formed, got %v", err)
			}
		})
	}
}

type paddedVertex struct {
	Pos   [3]float32
	_     float32
	Color [3]float32
	_     float32
}

func TestEncodeVertices(t *testing.T) {
	vertices := []paddedVertex{
		{Pos: [3]float32{1, 2, 3}, Color: [3]float32{0.5, 0.25, 1}},
		{Pos: [3]float32{-1, 0, 4}, Color: [3]float32{1, 1, 1}},
	}

	data, err := EncodeVertices(vertices)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(data) != 64 {
		t.Fatalf("expected 64 bytes, got %d", len(data))
	}

	word := func(i int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	if word(0) != 1 || word(2) != 3 {
		t.Errorf("unexpected position %v %v", word(0), word(2))
	}
	if word(3) != 0 {
		t.Errorf("expected zero padding, got %v", word(3))
	}
	if word(4) != 0.5 || word(9) != 0 {
		t.Errorf("unexpected color/position layout: %v %v", word(4), word(9))
	}
	if word(10) != 4 {
		t.Errorf("expected second vertex z=4, got %v", word(10))
	}
}

func TestEncodeVerticesEmpty(t *testing.T) {
	data, err := EncodeVertices([]paddedVertex{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("expected no bytes, got %d", len(data))
	}
}

func TestEncodeVerticesVariableSize(t *testing.T) {
	type named struct {
		Name string
	}
	if _, err := EncodeVertices([]named{{"a"}}); err == nil {
		t.Error("expected error for variable-size vertex type")
	}
}
