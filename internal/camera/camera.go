package camera

import (
	"fmt"
	"math"

	"bvh-raytracer/internal/geom"
	"bvh-raytracer/internal/mathutil"
	"bvh-raytracer/internal/scene"
)

// Camera turns pixel coordinates into world-space rays. The image plane sits
// at unit distance along the local +X axis; local Y runs across the image
// and local Z up it. Pixel row 0 is the bottom of the image.
type Camera struct {
	Width  int
	Height int

	origin   mathutil.Vec3
	rot      mathutil.Mat3
	dx       float64 // pixel pitch on the image plane
	y0, z0   float64 // plane coordinates of pixel (0,0)'s centre
	aperture float64
	focal    float64
}

// New builds a camera for a width×height film.
func New(p scene.Camera, width, height int) (*Camera, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("camera: invalid film size %dx%d", width, height)
	}
	if p.Fov <= 0 || p.Fov >= 180 {
		return nil, fmt.Errorf("camera: field of view %v out of (0,180)", p.Fov)
	}
	if p.Aperture < 0 {
		return nil, fmt.Errorf("camera: negative aperture %v", p.Aperture)
	}
	focal := p.FocalLength
	if focal <= 0 {
		focal = 1
	}

	h := 2 * math.Tan(0.5*mathutil.Deg2Rad(p.Fov))
	w := h * float64(width) / float64(height)
	dx := h / float64(height)

	return &Camera{
		Width:    width,
		Height:   height,
		origin:   p.Centre,
		rot:      mathutil.CameraRotation(p.Rotation),
		dx:       dx,
		y0:       0.5 * (w - dx),
		z0:       -0.5 * (h - dx),
		aperture: p.Aperture,
		focal:    focal,
	}, nil
}

// Ray returns the ray through sub-pixel position (u,v) ∈ [0,1)² of pixel
// (ix,iy). (0.5,0.5) is the pixel centre. (lx,ly) is a point in the unit
// disk used only when the aperture is open.
func (c *Camera) Ray(ix, iy int, u, v, lx, ly float64) geom.Ray {
	local := mathutil.Vec3{
		1,
		c.y0 - (float64(ix)+u-0.5)*c.dx,
		c.z0 + (float64(iy)+v-0.5)*c.dx,
	}

	if c.aperture == 0 {
		return geom.NewRay(c.origin, c.rot.MulVec3(local).Normalize())
	}

	// Thin lens: shift the origin across the lens and aim at the same point
	// on the focal plane.
	r := 0.5 * c.aperture
	offset := c.rot.MulVec3(mathutil.Vec3{0, lx * r, ly * r})
	dir := c.rot.MulVec3(local.Scale(c.focal)).Sub(offset)
	return geom.NewRay(c.origin.Add(offset), dir.Normalize())
}

// Forward returns the unit viewing direction.
func (c *Camera) Forward() mathutil.Vec3 {
	return c.rot.Column(0)
}
