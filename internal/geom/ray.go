package geom

import (
	"math"

	"bvh-raytracer/internal/mathutil"
)

// Ray is a half-line Origin + t·Dir, t > 0. Dir is not required to be unit
// length unless a caller says so.
type Ray struct {
	Origin mathutil.Vec3
	Dir    mathutil.Vec3
}

func NewRay(origin, dir mathutil.Vec3) Ray {
	return Ray{Origin: origin, Dir: dir}
}

// At returns the point at parameter t.
func (r Ray) At(t float64) mathutil.Vec3 {
	return r.Origin.Add(r.Dir.Scale(t))
}

// InvDir returns 1/Dir per component. Zero components map to a signed
// infinity so slab tests never divide 0/0.
func (r Ray) InvDir() mathutil.Vec3 {
	var inv mathutil.Vec3
	for a := 0; a < 3; a++ {
		if r.Dir[a] == 0 {
			inv[a] = math.Copysign(math.Inf(1), r.Dir[a])
		} else {
			inv[a] = 1 / r.Dir[a]
		}
	}
	return inv
}
