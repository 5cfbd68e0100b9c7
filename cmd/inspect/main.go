package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"bvh-raytracer/internal/bvh"
	"bvh-raytracer/internal/geom"
	"bvh-raytracer/internal/mathutil"
	"bvh-raytracer/internal/scene"
)

func main() {
	verify := flag.Int("verify", 0, "Cross-check N random rays against a linear scan")
	seed := flag.Int64("seed", 1, "Seed for the random rays")
	leaf := flag.Int("leaf", bvh.DefaultLeafSize, "BVH leaf size")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: inspect [-verify N] [-seed S] [-leaf L] scene.in")
		os.Exit(2)
	}
	path := flag.Arg(0)

	s, err := scene.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := s.Prepare(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	b := s.Bounds()
	fmt.Printf("Scene: %s\n", s.Name)
	fmt.Printf("  Film: %dx%d, %d spp (stratified=%v), fov %.1f, aperture %.3f\n",
		s.Width, s.Height, s.Camera.Samples, s.Camera.Stratified, s.Camera.Fov, s.Camera.Aperture)
	fmt.Printf("  Geometry: %d vertices, %d faces, %d spheres\n", len(s.Mesh.Vertices), len(s.Mesh.Faces), len(s.Spheres))
	if b.Valid() {
		size := b.Extent()
		fmt.Printf("    BBox: X[%.2f, %.2f] Y[%.2f, %.2f] Z[%.2f, %.2f]\n", b.Min[0], b.Max[0], b.Min[1], b.Max[1], b.Min[2], b.Max[2])
		fmt.Printf("    Size: %.2f x %.2f x %.2f\n", size[0], size[1], size[2])
	}
	fmt.Printf("  Lights: sun %v x %.2f, %d spotlights, ambient %.2f\n", s.Sun.Dir, s.Sun.Intensity, len(s.Spotlights), s.Ambient)
	for i, sl := range s.Spotlights {
		fmt.Printf("    Spot[%d]: pos=%v dir=%v intensity=%.2f cutoff=%.1f° cutoff=%v falloff=%v\n",
			i, sl.Position, sl.Dir, sl.Intensity, math.Acos(sl.CosCutoff)*180/math.Pi, sl.UseCutoff, sl.UseFalloff)
	}
	fmt.Printf("  Materials: %d defined\n", s.Materials.Len())
	if s.Background != "" {
		fmt.Printf("  Background: %s\n", s.Background)
	}

	start := time.Now()
	tree, err := bvh.Build(&s.Mesh, s.Spheres, bvh.Options{LeafSize: *leaf})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("BVH: %s (built in %v)\n", tree.Stats(), time.Since(start).Round(time.Microsecond))

	if *verify <= 0 || !b.Valid() {
		return
	}

	fmt.Println("------------------------------------------------------------")
	lin := bvh.Linear{Mesh: &s.Mesh, Spheres: s.Spheres}
	rng := rand.New(rand.NewSource(*seed))
	centre := b.Centroid()
	reach := math.Max(b.Extent().Len(), 1)

	mismatches, hits := 0, 0
	var treeTime, linTime time.Duration
	for i := 0; i < *verify; i++ {
		origin := centre.Add(randomDir(rng).Scale(reach * (0.1 + 2*rng.Float64())))
		target := b.Min.Add(b.Extent().Mul(mathutil.Vec3{rng.Float64(), rng.Float64(), rng.Float64()}))
		r := geom.NewRay(origin, target.Sub(origin).Normalize())

		a, l := geom.NewIntersect(), geom.NewIntersect()
		t0 := time.Now()
		tree.Intersect(r, &a)
		treeTime += time.Since(t0)
		t0 = time.Now()
		lin.Intersect(r, &l)
		linTime += time.Since(t0)

		if a.Hit() {
			hits++
		}
		if a.MatID != l.MatID || math.Abs(a.T-l.T) > 1e-9*math.Max(1, l.T) {
			mismatches++
			if mismatches <= 10 {
				fmt.Printf("  ray %d: bvh t=%.6g mat=%d, linear t=%.6g mat=%d\n", i, a.T, a.MatID, l.T, l.MatID)
			}
		}
	}

	fmt.Printf("Verify: %d rays, %d hits, %d mismatches\n", *verify, hits, mismatches)
	fmt.Printf("  BVH %v, linear %v", treeTime.Round(time.Microsecond), linTime.Round(time.Microsecond))
	if treeTime > 0 {
		fmt.Printf(" (%.1fx)", float64(linTime)/float64(treeTime))
	}
	fmt.Println()

	if mismatches > 0 {
		os.Exit(1)
	}
}

func randomDir(rng *rand.Rand) mathutil.Vec3 {
	for {
		v := mathutil.Vec3{2*rng.Float64() - 1, 2*rng.Float64() - 1, 2*rng.Float64() - 1}
		if l := v.Len(); l > 1e-6 && l <= 1 {
			return v.Scale(1 / l)
		}
	}
}
