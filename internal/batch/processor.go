package batch

import (
	"context"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"bvh-raytracer/internal/background"
	"bvh-raytracer/internal/film"
	"bvh-raytracer/internal/lighting"
	"bvh-raytracer/internal/render"
	"bvh-raytracer/internal/scene"
)

// Uploader publishes a finished image and returns its object key.
type Uploader interface {
	PutFile(ctx context.Context, file, name string) (string, error)
}

// Config holds all shared resources for a batch run.
type Config struct {
	OutputDir     string
	Format        film.Format
	Workers       int // row workers per scene
	Jobs          int // scenes rendered at once
	Seed          int64
	Supersample   int
	ShadowSamples int
	ShadowRadius  float64
	Backgrounds   *background.Cache
	Uploader      Uploader // nil skips uploading
	Logger        render.Logger
}

// Result holds the outcome of rendering one scene.
type Result struct {
	Name    string
	Image   string // output path
	Key     string // object key when uploaded
	Success bool
	Error   string
	Stats   render.Stats
	Elapsed time.Duration
}

// Run renders all jobs using a worker pool.
func Run(cfg Config, jobs []Job) []Result {
	if cfg.Jobs <= 0 {
		cfg.Jobs = 1
	}
	if cfg.Backgrounds == nil {
		cfg.Backgrounds = background.NewCache(0, background.Nearest)
	}

	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	var reporter sync.WaitGroup
	if cfg.Logger != nil {
		reporter.Add(1)
		go func() {
			defer reporter.Done()
			ticker := time.NewTicker(2 * time.Second)
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
						cfg.Logger.Printf("  [%d/%d] %.2f scenes/sec", p, total, rate)
					}
				}
			}
		}()
	}

	// Worker pool
	jobChan := make(chan int, cfg.Jobs*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Jobs; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				results[idx] = processScene(cfg, jobs[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(done)
	reporter.Wait()

	return results
}

func processScene(cfg Config, job Job) Result {
	start := time.Now()
	res := Result{Name: job.Name}
	fail := func(err error) Result {
		res.Error = err.Error()
		res.Elapsed = time.Since(start)
		return res
	}

	s, err := scene.Load(job.Path)
	if err != nil {
		return fail(err)
	}

	bg, err := cfg.Backgrounds.Sampler(s.Background, background.Sky{Color: scene.SkyColor})
	if err != nil {
		return fail(err)
	}

	opts := render.Options{
		Workers:     cfg.Workers,
		Seed:        cfg.Seed,
		Supersample: cfg.Supersample,
		Background:  bg,
	}
	if cfg.ShadowSamples > 0 {
		opts.Shadows = lighting.Config{
			ShadowSamples: cfg.ShadowSamples,
			ShadowRadius:  cfg.ShadowRadius,
			Seed:          cfg.Seed,
		}
	}

	f, stats, err := render.Render(s, opts)
	if err != nil {
		return fail(err)
	}
	res.Stats = stats

	// Post-processing: merge supersampled blocks before tone mapping
	f, err = f.Downsample(s.Width, s.Height)
	if err != nil {
		return fail(err)
	}
	img := f.Image()

	name := outputName(job, s, cfg.Format)
	res.Image = filepath.Join(cfg.OutputDir, filepath.FromSlash(name))
	if err := film.Save(res.Image, img); err != nil {
		return fail(err)
	}

	if cfg.Uploader != nil {
		key, err := cfg.Uploader.PutFile(context.Background(), res.Image, name)
		if err != nil {
			return fail(err)
		}
		res.Key = key
	}

	res.Success = true
	res.Elapsed = time.Since(start)
	return res
}

// outputName is the image path relative to the output dir: the scene's
// Filename when it names a known format, otherwise the job name with the
// batch format.
func outputName(job Job, s *scene.Scene, format film.Format) string {
	dir := path.Dir(job.Name)
	if s.Output == "" {
		return job.Name + format.Ext()
	}

	base := filepath.Base(s.Output)
	ext := filepath.Ext(base)
	if _, err := film.ParseFormat(ext); err != nil || ext == "" {
		base = strings.TrimSuffix(base, ext) + format.Ext()
	}
	return path.Join(dir, base)
}
