package camera

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// ErrNotPerfectSquare is returned for a stratified sampler whose sample
// count has no integer square root.
var ErrNotPerfectSquare = errors.New("camera: stratified sampling needs a perfect-square sample count")

// Sample is a sub-pixel offset in [0,1)².
type Sample struct {
	U, V float64
}

// Sampler produces the sub-pixel samples of one pixel. It holds no random
// state; callers pass their own generator.
type Sampler struct {
	count      int
	strata     int
	stratified bool
}

// NewSampler validates the sample configuration.
func NewSampler(samples int, stratified bool) (*Sampler, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("camera: invalid sample count %d", samples)
	}
	s := &Sampler{count: samples, stratified: stratified}
	if stratified {
		n := int(math.Round(math.Sqrt(float64(samples))))
		if n*n != samples {
			return nil, fmt.Errorf("%w: %d", ErrNotPerfectSquare, samples)
		}
		s.strata = n
	}
	return s, nil
}

// Count returns the samples per pixel.
func (s *Sampler) Count() int {
	return s.count
}

// Stratified reports the sampling mode.
func (s *Sampler) Stratified() bool {
	return s.stratified
}

// Samples appends one pixel's samples to dst[:0]. A single sample per pixel
// is always the centre; otherwise stratified mode draws one jittered sample
// per cell of an n×n grid and random mode draws uniformly.
func (s *Sampler) Samples(rng *rand.Rand, dst []Sample) []Sample {
	dst = dst[:0]
	if s.count == 1 {
		return append(dst, Sample{0.5, 0.5})
	}
	if !s.stratified {
		for i := 0; i < s.count; i++ {
			dst = append(dst, Sample{rng.Float64(), rng.Float64()})
		}
		return dst
	}

	inv := 1 / float64(s.strata)
	for j := 0; j < s.strata; j++ {
		for i := 0; i < s.strata; i++ {
			dst = append(dst, Sample{
				U: jitter(i, inv, rng),
				V: jitter(j, inv, rng),
			})
		}
	}
	return dst
}

// jitter returns a uniform point in stratum cell of width inv, kept below 1.
func jitter(cell int, inv float64, rng *rand.Rand) float64 {
	v := (float64(cell) + rng.Float64()) * inv
	if v >= 1 {
		v = math.Nextafter(1, 0)
	}
	return v
}

// LensSample draws a uniform point in the unit disk by rejection.
func LensSample(rng *rand.Rand) (x, y float64) {
	for {
		x = 2*rng.Float64() - 1
		y = 2*rng.Float64() - 1
		if x*x+y*y <= 1 {
			return x, y
		}
	}
}
