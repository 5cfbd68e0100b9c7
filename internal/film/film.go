package film

import (
	"fmt"
	"image"
	"math"

	"bvh-raytracer/internal/geom"
	"bvh-raytracer/internal/mathutil"
)

// minWeight is the accumulated weight below which a pixel reads as black.
const minWeight = 1e-3

// Film accumulates samples as flat slices for cache locality. Each pixel is
// written only by the worker tracing its row, so no locking is needed.
type Film struct {
	Width  int
	Height int
	Sum    []mathutil.Vec3 // len = W*H
	Weight []float64       // len = W*H
	IDs    []int           // material id of the first sample, len = W*H
}

// New allocates an empty film; every id starts as background.
func New(w, h int) (*Film, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("film: invalid size %dx%d", w, h)
	}
	n := w * h
	ids := make([]int, n)
	for i := range ids {
		ids[i] = geom.NoHit
	}
	return &Film{
		Width:  w,
		Height: h,
		Sum:    make([]mathutil.Vec3, n),
		Weight: make([]float64, n),
		IDs:    ids,
	}, nil
}

func (f *Film) index(ix, iy int) int {
	return iy*f.Width + ix
}

// Add accumulates one unit-weight sample. Row 0 is the bottom of the image.
func (f *Film) Add(ix, iy int, c mathutil.Vec3) {
	i := f.index(ix, iy)
	f.Sum[i] = f.Sum[i].Add(c)
	f.Weight[i]++
}

// SetID records the material seen through a pixel.
func (f *Film) SetID(ix, iy, id int) {
	f.IDs[f.index(ix, iy)] = id
}

// ID returns the recorded material id, or -1 for background.
func (f *Film) ID(ix, iy int) int {
	return f.IDs[f.index(ix, iy)]
}

// Pixel returns the mean of the accumulated samples.
func (f *Film) Pixel(ix, iy int) mathutil.Vec3 {
	i := f.index(ix, iy)
	if f.Weight[i] < minWeight {
		return mathutil.Vec3{}
	}
	return f.Sum[i].Scale(1 / f.Weight[i])
}

// Downsample merges blocks of a supersampled film into a w×h film. Sums and
// weights are added per block, so each output pixel is the mean radiance of
// every sample in its block. The size must divide evenly.
func (f *Film) Downsample(w, h int) (*Film, error) {
	if w == f.Width && h == f.Height {
		return f, nil
	}
	if w <= 0 || h <= 0 || f.Width%w != 0 || f.Height%h != 0 {
		return nil, fmt.Errorf("film: cannot downsample %dx%d to %dx%d", f.Width, f.Height, w, h)
	}
	kx, ky := f.Width/w, f.Height/h

	out, err := New(w, h)
	if err != nil {
		return nil, err
	}
	for iy := 0; iy < f.Height; iy++ {
		for ix := 0; ix < f.Width; ix++ {
			i, j := f.index(ix, iy), out.index(ix/kx, iy/ky)
			out.Sum[j] = out.Sum[j].Add(f.Sum[i])
			out.Weight[j] += f.Weight[i]
		}
	}
	// Each block keeps the id seen through its centre.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.IDs[out.index(x, y)] = f.ID(x*kx+kx/2, y*ky+ky/2)
		}
	}
	return out, nil
}

// Image converts the film to 8-bit color with a square-root tone curve.
// The image's top row is the film's last row.
func (f *Film) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	for iy := 0; iy < f.Height; iy++ {
		y := f.Height - 1 - iy
		for ix := 0; ix < f.Width; ix++ {
			c := f.Pixel(ix, iy)
			o := img.PixOffset(ix, y)
			img.Pix[o] = encode(c[0])
			img.Pix[o+1] = encode(c[1])
			img.Pix[o+2] = encode(c[2])
			img.Pix[o+3] = 255
		}
	}
	return img
}

func encode(v float64) uint8 {
	if !(v > 0) {
		return 0
	}
	v = math.Sqrt(v)
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
