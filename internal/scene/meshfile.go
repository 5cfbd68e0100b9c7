package scene

import (
	"fmt"

	"bvh-raytracer/internal/mathutil"
	"bvh-raytracer/internal/shapes"

	"github.com/fogleman/fauxgl"
)

// ImportMesh appends the triangles of an OBJ, STL, PLY or 3DS file to m,
// all with material matID. Coincident positions are welded into a single
// vertex so smoothing sees a connected surface. Imported vertices go after
// any existing ones, so a MeshFile directive belongs after Vertices/Faces.
func ImportMesh(path string, matID int, m *shapes.Mesh) error {
	src, err := fauxgl.LoadMesh(path)
	if err != nil {
		return fmt.Errorf("scene: load mesh %s: %w", path, err)
	}

	weld := make(map[mathutil.Vec3]int)
	vertex := func(v fauxgl.Vertex) int {
		p := mathutil.Vec3{v.Position.X, v.Position.Y, v.Position.Z}
		if id, ok := weld[p]; ok {
			return id
		}
		id := m.AddVertex(p)
		weld[p] = id
		return id
	}

	for _, t := range src.Triangles {
		a, b, c := vertex(t.V1), vertex(t.V2), vertex(t.V3)
		if a == b || b == c || a == c {
			continue // collapsed after welding
		}
		if err := m.AddFace(matID, a, b, c); err != nil {
			return fmt.Errorf("scene: mesh %s: %w", path, err)
		}
	}
	return nil
}
