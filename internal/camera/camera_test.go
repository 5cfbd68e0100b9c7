package camera

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"bvh-raytracer/internal/mathutil"
	"bvh-raytracer/internal/scene"
)

const tolerance = 1e-9

func lookDown(fov float64) scene.Camera {
	return scene.Camera{
		Centre:      mathutil.Vec3{0, 0, 5},
		Rotation:    mathutil.Vec3{0, -90, 0},
		Fov:         fov,
		Samples:     1,
		FocalLength: 1,
	}
}

func TestCentrePixelLooksForward(t *testing.T) {
	cam, err := New(lookDown(60), 41, 31)
	if err != nil {
		t.Fatal(err)
	}
	r := cam.Ray(20, 15, 0.5, 0.5, 0, 0)
	if r.Origin != (mathutil.Vec3{0, 0, 5}) {
		t.Errorf("origin = %v", r.Origin)
	}
	want := mathutil.Vec3{0, 0, -1}
	for i := 0; i < 3; i++ {
		if math.Abs(r.Dir[i]-want[i]) > tolerance {
			t.Fatalf("dir = %v, want %v", r.Dir, want)
		}
	}
	if f := cam.Forward(); math.Abs(f.Dot(want)-1) > tolerance {
		t.Errorf("Forward = %v", f)
	}
}

func TestRaysAreUnit(t *testing.T) {
	cam, err := New(scene.Camera{Rotation: mathutil.Vec3{12, 34, 56}, Fov: 75}, 64, 48)
	if err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		r := cam.Ray(rng.Intn(64), rng.Intn(48), rng.Float64(), rng.Float64(), 0, 0)
		if math.Abs(r.Dir.Len()-1) > tolerance {
			t.Fatalf("|dir| = %v", r.Dir.Len())
		}
	}
}

func TestFieldOfView(t *testing.T) {
	const fov = 50.0
	cam, err := New(lookDown(fov), 21, 11)
	if err != nil {
		t.Fatal(err)
	}
	fwd := cam.Forward()

	// Top edge of the top row and bottom edge of the bottom row.
	top := cam.Ray(10, 10, 0.5, 1, 0, 0).Dir
	bottom := cam.Ray(10, 0, 0.5, 0, 0, 0).Dir

	half := mathutil.Deg2Rad(fov / 2)
	if got := math.Acos(top.Dot(fwd)); math.Abs(got-half) > 1e-9 {
		t.Errorf("top edge angle = %v, want %v", got, half)
	}
	if got := math.Acos(bottom.Dot(fwd)); math.Abs(got-half) > 1e-9 {
		t.Errorf("bottom edge angle = %v, want %v", got, half)
	}

	// Row 0 is the bottom: camera up is world +X here.
	if bottom[0] >= 0 || top[0] <= 0 {
		t.Errorf("rows flipped: bottom %v top %v", bottom, top)
	}
}

func TestThinLensFocus(t *testing.T) {
	p := lookDown(40)
	p.Aperture = 0.5
	p.FocalLength = 4
	cam, err := New(p, 33, 25)
	if err != nil {
		t.Fatal(err)
	}
	// Point on the focal plane hit by the lens-centre ray.
	local := mathutil.Vec3{1, cam.y0 - (7+0.3-0.5)*cam.dx, cam.z0 + (19+0.6-0.5)*cam.dx}
	focus := p.Centre.Add(cam.rot.MulVec3(local.Scale(p.FocalLength)))

	rng := rand.New(rand.NewSource(2))
	spread := 0.0
	for i := 0; i < 50; i++ {
		lx, ly := LensSample(rng)
		r := cam.Ray(7, 19, 0.3, 0.6, lx, ly)

		off := r.Origin.Sub(p.Centre)
		spread = math.Max(spread, off.Len())
		if off.Len() > 0.25+tolerance {
			t.Fatalf("lens offset %v outside aperture", off)
		}
		if math.Abs(off.Dot(cam.Forward())) > tolerance {
			t.Fatalf("lens offset %v leaves the lens plane", off)
		}

		// Distance from the focus point to the ray's line.
		toFocus := focus.Sub(r.Origin)
		perp := toFocus.Sub(r.Dir.Scale(toFocus.Dot(r.Dir)))
		if perp.Len() > 1e-9 {
			t.Fatalf("lens ray misses focus by %v", perp.Len())
		}
	}
	if spread == 0 {
		t.Error("lens samples never moved the origin")
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name string
		p    scene.Camera
		w, h int
	}{
		{"zero fov", scene.Camera{Fov: 0}, 10, 10},
		{"straight fov", scene.Camera{Fov: 180}, 10, 10},
		{"empty film", scene.Camera{Fov: 60}, 0, 10},
		{"negative aperture", scene.Camera{Fov: 60, Aperture: -1}, 10, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.p, tt.w, tt.h); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestStratifiedOnePerStratum(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, n := range []int{2, 3, 4, 7} {
		s, err := NewSampler(n*n, true)
		if err != nil {
			t.Fatal(err)
		}
		samples := s.Samples(rng, nil)
		if len(samples) != n*n {
			t.Fatalf("n=%d: %d samples", n, len(samples))
		}

		counts := make([]int, n*n)
		for _, sm := range samples {
			if sm.U < 0 || sm.U >= 1 || sm.V < 0 || sm.V >= 1 {
				t.Fatalf("n=%d: sample %+v outside [0,1)²", n, sm)
			}
			i := int(sm.U * float64(n))
			j := int(sm.V * float64(n))
			counts[j*n+i]++
		}
		for cell, c := range counts {
			if c != 1 {
				t.Errorf("n=%d: stratum %d holds %d samples", n, cell, c)
			}
		}
	}
}

func TestStratifiedRejectsNonSquare(t *testing.T) {
	for _, n := range []int{2, 3, 5, 8, 10, 15} {
		_, err := NewSampler(n, true)
		if !errors.Is(err, ErrNotPerfectSquare) {
			t.Errorf("NewSampler(%d, stratified) err = %v", n, err)
		}
		if _, err := NewSampler(n, false); err != nil {
			t.Errorf("NewSampler(%d, random) err = %v", n, err)
		}
	}
	if _, err := NewSampler(0, false); err == nil {
		t.Error("zero samples accepted")
	}
}

func TestSingleSampleIsPixelCentre(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, stratified := range []bool{false, true} {
		s, err := NewSampler(1, stratified)
		if err != nil {
			t.Fatal(err)
		}
		got := s.Samples(rng, nil)
		if len(got) != 1 || got[0] != (Sample{0.5, 0.5}) {
			t.Errorf("stratified=%v: samples = %v", stratified, got)
		}
	}
}

func TestRandomSamplesInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	s, err := NewSampler(16, false)
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]Sample, 0, 16)
	for k := 0; k < 100; k++ {
		buf = s.Samples(rng, buf)
		if len(buf) != 16 {
			t.Fatalf("len = %d", len(buf))
		}
		for _, sm := range buf {
			if sm.U < 0 || sm.U >= 1 || sm.V < 0 || sm.V >= 1 {
				t.Fatalf("sample %+v outside [0,1)²", sm)
			}
		}
	}
}

func TestLensSampleInDisk(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	var sx, sy float64
	const n = 5000
	for i := 0; i < n; i++ {
		x, y := LensSample(rng)
		if x*x+y*y > 1 {
			t.Fatalf("(%v,%v) outside unit disk", x, y)
		}
		sx += x
		sy += y
	}
	if math.Abs(sx/n) > 0.05 || math.Abs(sy/n) > 0.05 {
		t.Errorf("lens samples biased: mean (%v, %v)", sx/n, sy/n)
	}
}
