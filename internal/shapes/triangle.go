package shapes

import (
	"bvh-raytracer/internal/geom"
	"bvh-raytracer/internal/mathutil"
)

// IntersectTriangle runs the watertight ray/triangle test against triangle p
// with vertex normals n. On a hit closer than it.T it stores the distance,
// the barycentric blend of n (normalized), the face normal of p in its
// winding order and matID.
func IntersectTriangle(r geom.Ray, p, n [3]mathutil.Vec3, matID int, it *geom.Intersect) bool {
	t, b, ok := watertight(r, p, it.T)
	if !ok {
		return false
	}
	normal := n[0].Scale(b[0]).Add(n[1].Scale(b[1])).Add(n[2].Scale(b[2])).Normalize()
	face := p[1].Sub(p[0]).Cross(p[2].Sub(p[0])).Normalize()
	it.UpdateSmooth(t, normal, face, matID)
	return true
}

// watertight returns the hit distance and barycentric weights of p[0..2].
// Edges shared by two triangles are evaluated identically from both sides,
// so a ray can never slip between them.
func watertight(r geom.Ray, p [3]mathutil.Vec3, tMax float64) (float64, [3]float64, bool) {
	// Permute so the dominant direction axis is z; swap x/y when it points
	// negative to keep the winding.
	kz := r.Dir.MaxDimension()
	kx := (kz + 1) % 3
	ky := (kx + 1) % 3
	if r.Dir[kz] < 0 {
		kx, ky = ky, kx
	}
	d := r.Dir.Permute(kx, ky, kz)

	sx := d[0] / d[2]
	sy := d[1] / d[2]
	sz := 1 / d[2]

	a := p[0].Sub(r.Origin).Permute(kx, ky, kz)
	b := p[1].Sub(r.Origin).Permute(kx, ky, kz)
	c := p[2].Sub(r.Origin).Permute(kx, ky, kz)

	// Shear so the ray runs along +z.
	ax, ay := a[0]-sx*a[2], a[1]-sy*a[2]
	bx, by := b[0]-sx*b[2], b[1]-sy*b[2]
	cx, cy := c[0]-sx*c[2], c[1]-sy*c[2]

	e0 := cx*by - cy*bx
	e1 := ax*cy - ay*cx
	e2 := bx*ay - by*ax

	if (e0 < 0 || e1 < 0 || e2 < 0) && (e0 > 0 || e1 > 0 || e2 > 0) {
		return 0, [3]float64{}, false
	}

	det := e0 + e1 + e2
	if det == 0 {
		return 0, [3]float64{}, false
	}

	tScaled := e0*sz*a[2] + e1*sz*b[2] + e2*sz*c[2]
	if det < 0 && (tScaled >= 0 || tScaled <= tMax*det) {
		return 0, [3]float64{}, false
	}
	if det > 0 && (tScaled <= 0 || tScaled >= tMax*det) {
		return 0, [3]float64{}, false
	}

	inv := 1 / det
	return tScaled * inv, [3]float64{e0 * inv, e1 * inv, e2 * inv}, true
}
