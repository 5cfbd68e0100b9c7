package geom

import "bvh-raytracer/internal/mathutil"

const (
	// NoHit is the MatID of an Intersect that has not hit anything.
	NoHit = -1

	// FarAway is the initial T of a reset Intersect.
	FarAway = 1e20
)

// Intersect accumulates the nearest hit along a ray. T only decreases, and
// the normals and MatID are always written together with T. Normal is the
// shading normal; Geometric is the unit normal of the surface itself, which
// for smoothed meshes can disagree with Normal about which side faces the
// ray.
type Intersect struct {
	T         float64
	Normal    mathutil.Vec3
	Geometric mathutil.Vec3
	MatID     int
}

// NewIntersect returns a reset accumulator.
func NewIntersect() Intersect {
	return Intersect{T: FarAway, MatID: NoHit}
}

// Reset restores the no-hit state.
func (it *Intersect) Reset() {
	it.ResetTo(FarAway)
}

// ResetTo clears the hit and only accepts hits closer than tMax.
func (it *Intersect) ResetTo(tMax float64) {
	it.T = tMax
	it.Normal = mathutil.Vec3{}
	it.Geometric = mathutil.Vec3{}
	it.MatID = NoHit
}

// Update records a closer hit on a surface whose shading and geometric
// normals coincide.
func (it *Intersect) Update(t float64, normal mathutil.Vec3, matID int) {
	it.UpdateSmooth(t, normal, normal, matID)
}

// UpdateSmooth records a closer hit with an interpolated shading normal.
func (it *Intersect) UpdateSmooth(t float64, shading, geometric mathutil.Vec3, matID int) {
	it.T = t
	it.Normal = shading
	it.Geometric = geometric
	it.MatID = matID
}

// Hit reports whether any primitive has been recorded.
func (it *Intersect) Hit() bool {
	return it.MatID != NoHit
}
