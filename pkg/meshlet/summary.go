package meshlet

// Summary aggregates meshlet occupancy for reporting.
type Summary struct {
	Meshlets     int
	VertexRefs   int // Sum of per-meshlet vertex table sizes
	Triangles    int
	MaxVertices  int // Largest vertex table
	MaxTriangles int // Largest triangle count
	Bytes        int // Packed buffer size, including padding
}

// Summary computes occupancy statistics over all meshlets.
func (p *Packed) Summary() Summary {
	s := Summary{
		Meshlets: len(p.Descriptors),
		Bytes:    HeaderSize + DescriptorSize*len(p.Descriptors) + 4*len(p.VertexIndices) + len(p.PrimitiveIndices),
	}
	for _, d := range p.Descriptors {
		s.VertexRefs += int(d.VertexCount)
		s.Triangles += int(d.PrimitiveCount)
		s.MaxVertices = max(s.MaxVertices, int(d.VertexCount))
		s.MaxTriangles = max(s.MaxTriangles, int(d.PrimitiveCount))
	}
	return s
}

// VertexFill is the mean vertex table occupancy relative to limits, in [0, 1].
func (s Summary) VertexFill(limits Limits) float64 {
	if s.Meshlets == 0 {
		return 0
	}
	return float64(s.VertexRefs) / float64(s.Meshlets*limits.MaxVertices)
}

// TriangleFill is the mean triangle occupancy relative to limits, in [0, 1].
func (s Summary) TriangleFill(limits Limits) float64 {
	if s.Meshlets == 0 {
		return 0
	}
	return float64(s.Triangles) / float64(s.Meshlets*limits.MaxTriangles)
}
