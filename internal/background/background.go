package background

import (
	"fmt"
	"image"
	"math"

	"bvh-raytracer/internal/mathutil"
)

// Sampler colors rays that leave the scene.
type Sampler interface {
	ColorAt(dir mathutil.Vec3) mathutil.Vec3
}

// Sky is a flat background color.
type Sky struct {
	Color mathutil.Vec3
}

func (s Sky) ColorAt(mathutil.Vec3) mathutil.Vec3 {
	return s.Color
}

// Filter selects how panorama texels are reconstructed.
type Filter int

const (
	Nearest Filter = iota
	Bilinear
)

// ParseFilter maps "nearest" or "bilinear" to a Filter; "" is Nearest.
func ParseFilter(s string) (Filter, error) {
	switch s {
	case "", "nearest":
		return Nearest, nil
	case "bilinear":
		return Bilinear, nil
	}
	return Nearest, fmt.Errorf("background: unknown filter %q", s)
}

func (f Filter) String() string {
	if f == Bilinear {
		return "bilinear"
	}
	return "nearest"
}

// Image is an equirectangular panorama. The top row looks along +Z and
// columns sweep the azimuth from φ = π at the left edge to -π at the right.
type Image struct {
	pix    *image.NRGBA
	Filter Filter
}

// NewImage wraps an already decoded panorama.
func NewImage(img image.Image, filter Filter) *Image {
	return &Image{pix: toNRGBA(img), Filter: filter}
}

// Size returns the panorama dimensions in pixels.
func (im *Image) Size() (w, h int) {
	return im.pix.Rect.Dx(), im.pix.Rect.Dy()
}

// ColorAt returns the panorama color seen along dir. dir need not be unit.
func (im *Image) ColorAt(dir mathutil.Vec3) mathutil.Vec3 {
	l := dir.Len()
	if l == 0 {
		return mathutil.Vec3{}
	}
	theta := math.Acos(math.Max(-1, math.Min(1, dir[2]/l)))
	phi := math.Atan2(dir[1], dir[0])

	w, h := im.Size()
	jx := float64(w) * (math.Pi - phi) / (2 * math.Pi)
	jy := float64(h) * theta / math.Pi

	if im.Filter == Bilinear {
		return im.bilinear(jx-0.5, jy-0.5)
	}
	return im.texel(clampInt(int(jx), w), clampInt(int(jy), h))
}

func (im *Image) texel(x, y int) mathutil.Vec3 {
	i := im.pix.PixOffset(x, y)
	p := im.pix.Pix[i : i+3 : i+3]
	return mathutil.Vec3{float64(p[0]) / 255, float64(p[1]) / 255, float64(p[2]) / 255}
}

// bilinear blends the four texels around (fx,fy). Columns wrap around the
// seam; rows clamp at the poles.
func (im *Image) bilinear(fx, fy float64) mathutil.Vec3 {
	w, h := im.Size()

	x0f := math.Floor(fx)
	y0f := math.Floor(fy)
	dx := fx - x0f
	dy := fy - y0f

	x0 := wrapInt(int(x0f), w)
	x1 := wrapInt(int(x0f)+1, w)
	y0 := clampInt(int(y0f), h)
	y1 := clampInt(int(y0f)+1, h)

	c00 := im.texel(x0, y0)
	c10 := im.texel(x1, y0)
	c01 := im.texel(x0, y1)
	c11 := im.texel(x1, y1)

	top := c00.Scale(1 - dx).Add(c10.Scale(dx))
	bottom := c01.Scale(1 - dx).Add(c11.Scale(dx))
	return top.Scale(1 - dy).Add(bottom.Scale(dy))
}

func clampInt(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

func wrapInt(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
