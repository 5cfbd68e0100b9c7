package render

import (
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"bvh-raytracer/internal/background"
	"bvh-raytracer/internal/bvh"
	"bvh-raytracer/internal/camera"
	"bvh-raytracer/internal/film"
	"bvh-raytracer/internal/geom"
	"bvh-raytracer/internal/lighting"
	"bvh-raytracer/internal/scene"
)

const defaultProgressInterval = 2 * time.Second

// Logger receives progress lines. *log.Logger satisfies it.
type Logger interface {
	Printf(format string, args ...any)
}

// Options controls a render. Zero values select the defaults.
type Options struct {
	Workers          int   // row workers; default runtime.NumCPU()
	Seed             int64 // base seed for per-row sample generators
	Supersample      int   // trace at k× the scene resolution
	Background       background.Sampler
	Shadows          lighting.Config // Ambient is taken from the scene
	BVH              bvh.Options
	Logger           Logger
	ProgressInterval time.Duration
}

// Stats describes a finished render.
type Stats struct {
	Width     int
	Height    int
	Samples   int
	Rays      int64 // primary rays
	Hits      int64 // primary rays that hit geometry
	Tree      bvh.Stats
	BuildTime time.Duration
	TraceTime time.Duration
}

func (s Stats) String() string {
	return fmt.Sprintf("%dx%d @ %d spp, %d rays (%d hits), build %v, trace %v",
		s.Width, s.Height, s.Samples, s.Rays, s.Hits,
		s.BuildTime.Round(time.Millisecond), s.TraceTime.Round(time.Millisecond))
}

// Render traces every pixel of s into a new film. Configuration errors are
// returned before any ray is traced. The result depends only on the scene
// and the options' seed, not on the worker count.
func Render(s *scene.Scene, opts Options) (*film.Film, Stats, error) {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Supersample <= 0 {
		opts.Supersample = 1
	}
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = defaultProgressInterval
	}

	if err := s.Prepare(); err != nil {
		return nil, Stats{}, err
	}

	sampler, err := camera.NewSampler(s.Camera.Samples, s.Camera.Stratified)
	if err != nil {
		return nil, Stats{}, err
	}

	w, h := s.Width*opts.Supersample, s.Height*opts.Supersample
	cam, err := camera.New(s.Camera, w, h)
	if err != nil {
		return nil, Stats{}, err
	}

	f, err := film.New(w, h)
	if err != nil {
		return nil, Stats{}, err
	}

	start := time.Now()
	tree, err := bvh.Build(&s.Mesh, s.Spheres, opts.BVH)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("render: build bvh: %w", err)
	}

	shadows := opts.Shadows
	if shadows.ShadowSamples == 0 {
		shadows = lighting.DefaultConfig(s.Ambient)
		shadows.Seed = opts.Seed
	}
	shadows.Ambient = s.Ambient
	light := lighting.New(s, tree, shadows)

	stats := Stats{
		Width:     w,
		Height:    h,
		Samples:   sampler.Count(),
		Tree:      tree.Stats(),
		BuildTime: time.Since(start),
	}

	r := &renderer{
		film:    f,
		cam:     cam,
		sampler: sampler,
		tracer:  NewTracer(tree, light, &s.Materials, opts.Background),
		lens:    s.Camera.Aperture > 0,
		seed:    opts.Seed,
	}

	start = time.Now()
	r.run(opts)
	stats.TraceTime = time.Since(start)
	stats.Rays = r.rays.Load()
	stats.Hits = r.hits.Load()

	if opts.Logger != nil {
		opts.Logger.Printf("render: %s", stats)
	}
	return f, stats, nil
}

type renderer struct {
	film    *film.Film
	cam     *camera.Camera
	sampler *camera.Sampler
	tracer  *Tracer
	lens    bool
	seed    int64

	rays atomic.Int64
	hits atomic.Int64
}

// run traces rows on a fixed pool of workers fed through a channel.
func (r *renderer) run(opts Options) {
	total := r.film.Height
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	var reporter sync.WaitGroup
	if opts.Logger != nil {
		reporter.Add(1)
		go func() {
			defer reporter.Done()
			ticker := time.NewTicker(opts.ProgressInterval)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					p := processed.Load()
					if p > 0 {
						elapsed := time.Since(start).Seconds()
						rate := float64(p) / elapsed
						opts.Logger.Printf("  [%d/%d] %.1f rows/sec", p, total, rate)
					}
				}
			}
		}()
	}

	rows := make(chan int, opts.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := make([]camera.Sample, 0, r.sampler.Count())
			for iy := range rows {
				buf = r.traceRow(iy, buf)
				processed.Add(1)
			}
		}()
	}

	for iy := 0; iy < total; iy++ {
		rows <- iy
	}
	close(rows)

	wg.Wait()
	close(done)
	reporter.Wait()
}

// traceRow renders one row with a generator seeded from the row index, so
// the samples drawn never depend on which worker picked the row up.
func (r *renderer) traceRow(iy int, buf []camera.Sample) []camera.Sample {
	rng := rand.New(rand.NewSource(r.seed + int64(iy)))
	var rays, hits int64

	for ix := 0; ix < r.film.Width; ix++ {
		buf = r.sampler.Samples(rng, buf)
		for k, sm := range buf {
			var lx, ly float64
			if r.lens {
				lx, ly = camera.LensSample(rng)
			}
			c, id := r.tracer.Trace(r.cam.Ray(ix, iy, sm.U, sm.V, lx, ly))
			r.film.Add(ix, iy, c)
			if k == 0 {
				r.film.SetID(ix, iy, id)
			}
			rays++
			if id != geom.NoHit {
				hits++
			}
		}
	}

	r.rays.Add(rays)
	r.hits.Add(hits)
	return buf
}
