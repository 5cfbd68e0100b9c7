package shapes

import (
	"fmt"

	"bvh-raytracer/internal/geom"
	"bvh-raytracer/internal/mathutil"
)

// MaxFaceVertices is the largest polygon a face can hold (a quad).
const MaxFaceVertices = 4

// Face is a triangle or quad referencing mesh vertices by index.
type Face struct {
	VertexIDs   [MaxFaceVertices]int
	VertexCount int
	MatID       int
}

// Mesh owns vertex positions, per-vertex shading normals and faces.
// Normals is filled by ComputeVertexNormals before any ray is traced.
type Mesh struct {
	Vertices []mathutil.Vec3
	Normals  []mathutil.Vec3
	Faces    []Face
}

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(p mathutil.Vec3) int {
	m.Vertices = append(m.Vertices, p)
	return len(m.Vertices) - 1
}

// AddFace appends a triangle or quad. Vertex ids must already exist.
func (m *Mesh) AddFace(matID int, ids ...int) error {
	f, err := m.newFace(matID, ids)
	if err != nil {
		return err
	}
	m.Faces = append(m.Faces, f)
	return nil
}

func (m *Mesh) newFace(matID int, ids []int) (Face, error) {
	if len(ids) < 3 || len(ids) > MaxFaceVertices {
		return Face{}, fmt.Errorf("shapes: face with %d vertices, want 3 or 4", len(ids))
	}
	f := Face{VertexCount: len(ids), MatID: matID}
	for i, id := range ids {
		if id < 0 || id >= len(m.Vertices) {
			return Face{}, fmt.Errorf("shapes: vertex id %d out of range [0,%d)", id, len(m.Vertices))
		}
		f.VertexIDs[i] = id
	}
	return f, nil
}

// Validate checks every face against the vertex array.
func (m *Mesh) Validate() error {
	for i, f := range m.Faces {
		if _, err := m.newFace(f.MatID, f.VertexIDs[:f.VertexCount]); err != nil {
			return fmt.Errorf("shapes: face %d: %w", i, err)
		}
	}
	return nil
}

// FaceBounds returns the box enclosing face i.
func (m *Mesh) FaceBounds(i int) geom.AABB {
	f := &m.Faces[i]
	b := geom.EmptyAABB()
	for j := 0; j < f.VertexCount; j++ {
		b = b.Extend(m.Vertices[f.VertexIDs[j]])
	}
	return b
}

// ComputeVertexNormals derives smooth shading normals. Each face adds its
// unnormalized geometric normal (length proportional to its area) to every
// vertex it uses, and the sums are renormalized.
func (m *Mesh) ComputeVertexNormals() {
	m.Normals = make([]mathutil.Vec3, len(m.Vertices))

	for _, f := range m.Faces {
		v := func(k int) mathutil.Vec3 { return m.Vertices[f.VertexIDs[k]] }

		n := v(1).Sub(v(0)).Cross(v(2).Sub(v(0)))
		if f.VertexCount == 4 {
			n = n.Add(v(2).Sub(v(0)).Cross(v(3).Sub(v(0))))
		}

		for j := 0; j < f.VertexCount; j++ {
			id := f.VertexIDs[j]
			m.Normals[id] = m.Normals[id].Add(n)
		}
	}

	for i := range m.Normals {
		m.Normals[i] = m.Normals[i].Normalize()
	}
}

// IntersectFace tests face i. Quads are split along the v0-v2 diagonal into
// (v0,v1,v2) and (v0,v2,v3); the second half is only tried when the first
// misses.
func (m *Mesh) IntersectFace(r geom.Ray, i int, it *geom.Intersect) bool {
	f := &m.Faces[i]
	ids := &f.VertexIDs

	if IntersectTriangle(r,
		[3]mathutil.Vec3{m.Vertices[ids[0]], m.Vertices[ids[1]], m.Vertices[ids[2]]},
		[3]mathutil.Vec3{m.Normals[ids[0]], m.Normals[ids[1]], m.Normals[ids[2]]},
		f.MatID, it) {
		return true
	}
	if f.VertexCount < 4 {
		return false
	}

	return IntersectTriangle(r,
		[3]mathutil.Vec3{m.Vertices[ids[0]], m.Vertices[ids[2]], m.Vertices[ids[3]]},
		[3]mathutil.Vec3{m.Normals[ids[0]], m.Normals[ids[2]], m.Normals[ids[3]]},
		f.MatID, it)
}
