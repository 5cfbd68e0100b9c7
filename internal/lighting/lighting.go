package lighting

import (
	"math"
	"math/rand"

	"bvh-raytracer/internal/geom"
	"bvh-raytracer/internal/mathutil"
	"bvh-raytracer/internal/scene"
)

const (
	// ShadowBias lifts shadow-ray origins off the surface along the normal.
	ShadowBias = 0.001

	DefaultShadowSamples = 3
	DefaultShadowRadius  = 0.005
)

// Occluder answers nearest-hit queries; *bvh.Tree and bvh.Linear both
// satisfy it.
type Occluder interface {
	Intersect(r geom.Ray, it *geom.Intersect) bool
}

// Config holds the tunable shadow parameters.
type Config struct {
	Ambient       float64
	ShadowSamples int     // jittered rays per spotlight
	ShadowRadius  float64 // radius of the jitter ball around each spotlight
	Seed          int64   // seeds the jitter pool
}

// DefaultConfig returns the standard soft-shadow settings.
func DefaultConfig(ambient float64) Config {
	return Config{
		Ambient:       ambient,
		ShadowSamples: DefaultShadowSamples,
		ShadowRadius:  DefaultShadowRadius,
		Seed:          1,
	}
}

// Lighting evaluates direct illumination from the ambient term, the sun and
// all spotlights. It is read-only after New and safe for concurrent use.
type Lighting struct {
	ambient float64
	sun     scene.Sun
	spots   []scene.Spotlight
	occ     Occluder
	offsets []mathutil.Vec3 // jitter pool shared by every spotlight
}

// New precomputes the spotlight jitter pool.
func New(s *scene.Scene, occ Occluder, cfg Config) *Lighting {
	if cfg.ShadowSamples <= 0 {
		cfg.ShadowSamples = DefaultShadowSamples
	}
	if cfg.ShadowRadius < 0 {
		cfg.ShadowRadius = 0
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	offsets := make([]mathutil.Vec3, cfg.ShadowSamples)
	for i := range offsets {
		offsets[i] = randomInBall(rng).Scale(cfg.ShadowRadius)
	}

	return &Lighting{
		ambient: cfg.Ambient,
		sun:     s.Sun,
		spots:   s.Spotlights,
		occ:     occ,
		offsets: offsets,
	}
}

// randomInBall draws a uniform point in the unit ball by rejection.
func randomInBall(rng *rand.Rand) mathutil.Vec3 {
	for {
		p := mathutil.Vec3{2*rng.Float64() - 1, 2*rng.Float64() - 1, 2*rng.Float64() - 1}
		if p.Dot(p) <= 1 {
			return p
		}
	}
}

// Surface is a point being shaded. Normal is the shading normal used for the
// Lambert terms; Geometric is the true face normal on the same side, along
// which shadow rays leave the surface.
type Surface struct {
	Point     mathutil.Vec3
	Normal    mathutil.Vec3
	Geometric mathutil.Vec3
}

// Flat is a surface whose shading normal is its face normal.
func Flat(point, normal mathutil.Vec3) Surface {
	return Surface{Point: point, Normal: normal, Geometric: normal}
}

func (s Surface) shadowOrigin() mathutil.Vec3 {
	return s.Point.Add(s.Geometric.Scale(ShadowBias))
}

// ShadowRay starts just above point along normal and heads towards the
// light along toLight.
func ShadowRay(point, normal, toLight mathutil.Vec3) geom.Ray {
	return geom.NewRay(point.Add(normal.Scale(ShadowBias)), toLight.Normalize())
}

// occluded reports whether anything lies on r closer than dist.
func (l *Lighting) occluded(r geom.Ray, dist float64) bool {
	it := geom.NewIntersect()
	it.ResetTo(dist)
	l.occ.Intersect(r, &it)
	return it.Hit()
}

// SunTerm is the sun's Lambert contribution, zero in shadow.
func (l *Lighting) SunTerm(point, normal mathutil.Vec3) float64 {
	return l.sunTerm(Flat(point, normal))
}

func (l *Lighting) sunTerm(s Surface) float64 {
	if l.sun.Intensity == 0 || l.sun.Dir == (mathutil.Vec3{}) {
		return 0
	}
	toLight := l.sun.Dir.Neg()
	cos := toLight.Dot(s.Normal)
	if cos <= 0 {
		return 0
	}
	if l.occluded(ShadowRay(s.Point, s.Geometric, toLight), geom.FarAway) {
		return 0
	}
	return cos * l.sun.Intensity
}

// SpotTerm is spotlight i's contribution: cone cutoff and falloff, Lambert
// cosine and the visible fraction of the jittered light positions.
func (l *Lighting) SpotTerm(i int, point, normal mathutil.Vec3) float64 {
	return l.spotTerm(i, Flat(point, normal))
}

func (l *Lighting) spotTerm(i int, s Surface) float64 {
	sl := &l.spots[i]

	toLight := sl.Position.Sub(s.Point)
	dist := toLight.Len()
	if dist == 0 {
		return 0
	}
	toLight = toLight.Scale(1 / dist)

	cos := toLight.Dot(s.Normal)
	if cos <= 0 {
		return 0
	}

	cosTheta := toLight.Neg().Dot(sl.Dir)
	if sl.UseCutoff && cosTheta < sl.CosCutoff {
		return 0
	}
	cone := 1.0
	if sl.UseFalloff {
		cone = Falloff(cosTheta, sl.CosCutoff, sl.Sharpness)
		if cone == 0 {
			return 0
		}
	}

	return sl.Intensity * cos * cone * l.visibility(sl.Position, s.shadowOrigin())
}

// visibility is the fraction of jittered copies of light reachable from
// origin.
func (l *Lighting) visibility(light, origin mathutil.Vec3) float64 {
	visible := 0
	for _, off := range l.offsets {
		d := light.Add(off).Sub(origin)
		dist := d.Len()
		if dist == 0 {
			visible++
			continue
		}
		if !l.occluded(geom.NewRay(origin, d.Scale(1/dist)), dist) {
			visible++
		}
	}
	return float64(visible) / float64(len(l.offsets))
}

// Falloff ramps linearly from 0 at the cutoff cone to 1 towards the axis;
// sharpness scales the ramp so larger values reach full intensity sooner.
// The result is clamped to [0,1] and never decreases as cosTheta grows.
func Falloff(cosTheta, cosCutoff, sharpness float64) float64 {
	if sharpness <= 0 {
		return 1
	}
	if cosCutoff >= 1 {
		if cosTheta >= 1 {
			return 1
		}
		return 0
	}
	f := sharpness * (cosTheta - cosCutoff) / (1 - cosCutoff)
	return math.Max(0, math.Min(1, f))
}

// Intensity is min(ambient + sun + Σ spotlights, 1).
func (l *Lighting) Intensity(point, normal mathutil.Vec3) float64 {
	return l.IntensityAt(Flat(point, normal))
}

// IntensityAt is Intensity for a surface with a separate shading normal.
func (l *Lighting) IntensityAt(s Surface) float64 {
	total := l.ambient + l.sunTerm(s)
	for i := range l.spots {
		if total >= 1 {
			break
		}
		total += l.spotTerm(i, s)
	}
	return math.Min(total, 1)
}

// Shade scales a material's base color by the light reaching point.
func (l *Lighting) Shade(point, normal, base mathutil.Vec3) mathutil.Vec3 {
	return l.ShadeSurface(Flat(point, normal), base)
}

// ShadeSurface is Shade for a surface with a separate shading normal.
func (l *Lighting) ShadeSurface(s Surface, base mathutil.Vec3) mathutil.Vec3 {
	return base.Scale(l.IntensityAt(s))
}
