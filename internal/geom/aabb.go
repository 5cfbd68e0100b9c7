package geom

import (
	"math"

	"bvh-raytracer/internal/mathutil"
)

// AABB is an axis-aligned bounding box with Min <= Max on every axis.
type AABB struct {
	Min mathutil.Vec3
	Max mathutil.Vec3
}

// EmptyAABB returns an inverted box that any Union or Extend replaces.
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: mathutil.Vec3{inf, inf, inf},
		Max: mathutil.Vec3{-inf, -inf, -inf},
	}
}

func (b AABB) Union(o AABB) AABB {
	return AABB{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// Extend grows the box to contain p.
func (b AABB) Extend(p mathutil.Vec3) AABB {
	return AABB{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

func (b AABB) Centroid() mathutil.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

func (b AABB) Extent() mathutil.Vec3 {
	return b.Max.Sub(b.Min)
}

// LongestAxis returns the axis (0=X, 1=Y, 2=Z) with the largest extent.
func (b AABB) LongestAxis() int {
	e := b.Extent()
	if e[0] >= e[1] && e[0] >= e[2] {
		return 0
	}
	if e[1] >= e[2] {
		return 1
	}
	return 2
}

// Valid reports whether Min <= Max on all axes.
func (b AABB) Valid() bool {
	return b.Min[0] <= b.Max[0] && b.Min[1] <= b.Max[1] && b.Min[2] <= b.Max[2]
}

// IsDegenerate reports a box that collapsed to a single point.
func (b AABB) IsDegenerate() bool {
	e := b.Extent()
	return e[0] == 0 && e[1] == 0 && e[2] == 0
}

// Slab reports whether a ray with the given origin and inverse direction
// enters the box in (0, tMax]. An infinite inverse component means the ray
// is parallel to that slab, so it only passes when the origin lies inside.
func (b AABB) Slab(origin, invDir mathutil.Vec3, tMax float64) bool {
	tNear, tFar := 0.0, tMax
	for a := 0; a < 3; a++ {
		if math.IsInf(invDir[a], 0) {
			if origin[a] < b.Min[a] || origin[a] > b.Max[a] {
				return false
			}
			continue
		}
		t0 := (b.Min[a] - origin[a]) * invDir[a]
		t1 := (b.Max[a] - origin[a]) * invDir[a]
		if invDir[a] < 0 {
			t0, t1 = t1, t0
		}
		if t0 > tNear {
			tNear = t0
		}
		if t1 < tFar {
			tFar = t1
		}
		if tFar < tNear {
			return false
		}
	}
	return true
}
