package shapes

import (
	"bvh-raytracer/internal/geom"
	"bvh-raytracer/internal/mathutil"
)

// Sphere is an analytic sphere primitive.
type Sphere struct {
	Center mathutil.Vec3
	Radius float64
	MatID  int
}

func (s Sphere) Bounds() geom.AABB {
	r := mathutil.Vec3{s.Radius, s.Radius, s.Radius}
	return geom.AABB{Min: s.Center.Sub(r), Max: s.Center.Add(r)}
}

// Intersect takes the nearest positive root below it.T. A ray starting
// inside the sphere hits the far wall. The stored normal is unit length and
// points outward.
func (s Sphere) Intersect(r geom.Ray, it *geom.Intersect) bool {
	relo := r.Origin.Sub(s.Center)

	a := r.Dir.Dot(r.Dir)
	b := 2 * r.Dir.Dot(relo)
	c := relo.Dot(relo) - s.Radius*s.Radius

	t0, t1, ok := mathutil.SolveQuadratic(a, b, c)
	if !ok {
		return false
	}

	t := t0
	if t <= 0 {
		t = t1
	}
	if t <= 0 || t >= it.T {
		return false
	}

	normal := relo.Add(r.Dir.Scale(t)).Normalize()
	it.Update(t, normal, s.MatID)
	return true
}
