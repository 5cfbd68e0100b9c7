package bvh

import (
	"bvh-raytracer/internal/geom"
	"bvh-raytracer/internal/shapes"
)

// stackSize bounds the traversal stack of a median-split tree for any
// realistic scene; append spills to the heap beyond it.
const stackSize = 64

// Intersect finds the nearest primitive closer than it.T and records it.
// Seed it with ResetTo(d) to only look for occluders nearer than d.
func (t *Tree) Intersect(r geom.Ray, it *geom.Intersect) bool {
	if len(t.nodes) == 0 {
		return false
	}

	inv := r.InvDir()
	hit := false

	var buf [stackSize]int
	stack := append(buf[:0], 0)

	for len(stack) > 0 {
		n := &t.nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]

		if !n.Bounds.Slab(r.Origin, inv, it.T) {
			continue
		}

		if n.Leaf {
			for _, p := range t.prims[n.First : n.First+n.Count] {
				if t.intersectPrim(p, r, it) {
					hit = true
				}
			}
			continue
		}

		// Pop the child on the ray's near side first.
		if r.Dir[n.Axis] < 0 {
			stack = append(stack, n.Left, n.Right)
		} else {
			stack = append(stack, n.Right, n.Left)
		}
	}
	return hit
}

func (t *Tree) intersectPrim(idx int, r geom.Ray, it *geom.Intersect) bool {
	if idx < len(t.mesh.Faces) {
		return t.mesh.IntersectFace(r, idx, it)
	}
	return t.spheres[idx-len(t.mesh.Faces)].Intersect(r, it)
}

// IntersectLinear tests every primitive in turn. It is the reference the
// tree must agree with.
func IntersectLinear(mesh *shapes.Mesh, spheres []shapes.Sphere, r geom.Ray, it *geom.Intersect) bool {
	hit := false
	if mesh != nil {
		for i := range mesh.Faces {
			if mesh.IntersectFace(r, i, it) {
				hit = true
			}
		}
	}
	for i := range spheres {
		if spheres[i].Intersect(r, it) {
			hit = true
		}
	}
	return hit
}

// Linear adapts IntersectLinear to the same method set as *Tree.
type Linear struct {
	Mesh    *shapes.Mesh
	Spheres []shapes.Sphere
}

func (l Linear) Intersect(r geom.Ray, it *geom.Intersect) bool {
	return IntersectLinear(l.Mesh, l.Spheres, r, it)
}
