package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"bvh-raytracer/internal/background"
	"bvh-raytracer/internal/batch"
	"bvh-raytracer/internal/config"
	"bvh-raytracer/internal/film"
	"bvh-raytracer/internal/sysinfo"
	"bvh-raytracer/internal/upload"

	"github.com/joho/godotenv"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	envFile := flag.String("env", ".env", "Path to .env file with S3 credentials")
	sceneDir := flag.String("scenes", "", "Directory of scene files (default: ./scenes or cwd)")
	match := flag.String("match", "", "Render only scenes whose name matches this glob")
	outputDir := flag.String("output", "", "Output directory (default: <scenes>/renders)")
	format := flag.String("format", "", "Image format: bmp, png, webp or tga (default: bmp)")
	workers := flag.Int("workers", 0, "Row workers per scene (default: NumCPU)")
	jobs := flag.Int("jobs", 0, "Scenes rendered concurrently (default: 1)")
	seed := flag.Int64("seed", 0, "Base seed for sample generators")
	supersample := flag.Int("supersample", 0, "Render at k times the resolution and downsample")
	bucket := flag.String("bucket", "", "Upload results to this S3 bucket")

	flag.Parse()

	// Scene files given as arguments bypass discovery
	args := flag.Args()

	if err := loadEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading env: %v\n", err)
		os.Exit(1)
	}

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		SceneDir:    *sceneDir,
		OutputDir:   *outputDir,
		Format:      *format,
		Workers:     *workers,
		Jobs:        *jobs,
		Seed:        *seed,
		Supersample: *supersample,
		Bucket:      *bucket,
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var todo []batch.Job
	if len(args) > 0 {
		for _, a := range args {
			todo = append(todo, batch.Job{
				Name: filepath.Base(a[:len(a)-len(filepath.Ext(a))]),
				Path: a,
			})
		}
	} else {
		found, err := batch.Discover(cfg.SceneDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		todo = found
	}

	todo, err := batch.Filter(todo, *match)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(todo) == 0 {
		fmt.Println("No scenes to render.")
		os.Exit(0)
	}

	fmtOut, _ := film.ParseFormat(cfg.Format)
	filter, _ := background.ParseFilter(cfg.BackgroundFilter)

	var uploader batch.Uploader
	if cfg.S3Bucket != "" {
		u, err := upload.New(upload.ConfigFromEnv(upload.Config{
			Bucket:   cfg.S3Bucket,
			Prefix:   cfg.S3Prefix,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
		}))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		uploader = u
	}

	// Print summary
	fmt.Println("BVH ray tracer")
	if host, err := sysinfo.Probe(); err == nil {
		fmt.Printf("Host: %s\n", host)
	}
	fmt.Printf("Scenes: %d, Jobs: %d, Workers: %d\n", len(todo), cfg.Jobs, cfg.Workers)
	fmt.Printf("Output: %s (%s)\n", cfg.OutputDir, fmtOut)
	if uploader != nil {
		fmt.Printf("Upload: s3://%s/%s\n", cfg.S3Bucket, cfg.S3Prefix)
	}
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	results := batch.Run(batch.Config{
		OutputDir:     cfg.OutputDir,
		Format:        fmtOut,
		Workers:       cfg.Workers,
		Jobs:          cfg.Jobs,
		Seed:          cfg.Seed,
		Supersample:   cfg.Supersample,
		ShadowSamples: cfg.ShadowSamples,
		ShadowRadius:  cfg.ShadowRadius,
		Backgrounds:   background.NewCache(cfg.BackgroundMaxWidth, filter),
		Uploader:      uploader,
		Logger:        log.New(os.Stdout, "", 0),
	}, todo)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, failed := 0, 0
	var errors []batch.Result
	for _, r := range results {
		if r.Success {
			success++
			fmt.Printf("  %s: %s\n", r.Name, r.Stats)
		} else {
			failed++
			errors = append(errors, r)
		}
	}

	fmt.Printf("Rendered: %d/%d\n", success, len(todo))

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		limit := 20
		if len(errors) < limit {
			limit = len(errors)
		}
		for _, e := range errors[:limit] {
			fmt.Printf("  %s: %s\n", e.Name, e.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		os.Exit(1)
	}
}

// loadEnv reads S3 credentials from a .env file. A missing file is fine.
func loadEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
