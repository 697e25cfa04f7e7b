package geom

import "github.com/Faultbox/bldgltf/pkg/math"

// DefaultTolerance is the distance under which two vertices are the same.
const DefaultTolerance = 0.001

// VertexIndexer assigns stable indices to vertices, merging any vertex
// closer than the tolerance to one seen before. The first one seen wins.
type VertexIndexer struct {
	tolerance float64
	vertices  []math.Vec3
}

// NewVertexIndexer returns an indexer; a non-positive tolerance selects
// DefaultTolerance.
func NewVertexIndexer(tolerance float64) *VertexIndexer {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &VertexIndexer{tolerance: tolerance}
}

// Index returns the index of p, adding it if no earlier vertex matches.
func (vi *VertexIndexer) Index(p math.Vec3) uint32 {
	for i, v := range vi.vertices {
		if v.Distance(p) < vi.tolerance {
			return uint32(i)
		}
	}
	vi.vertices = append(vi.vertices, p)
	return uint32(len(vi.vertices) - 1)
}

// Vertices returns the vertex set in index order.
func (vi *VertexIndexer) Vertices() []math.Vec3 {
	return vi.vertices
}

// Len returns the number of distinct vertices.
func (vi *VertexIndexer) Len() int {
	return len(vi.vertices)
}
