package geom

import (
	"math"
	"testing"

	"bvh-raytracer/internal/mathutil"
)

func unitBox() AABB {
	return AABB{Min: mathutil.Vec3{-1, -1, -1}, Max: mathutil.Vec3{1, 1, 1}}
}

func TestInvDirZeroComponents(t *testing.T) {
	r := NewRay(mathutil.Vec3{}, mathutil.Vec3{0, math.Copysign(0, -1), 2})
	inv := r.InvDir()
	if !math.IsInf(inv[0], 1) {
		t.Errorf("inv[0] = %v, want +Inf", inv[0])
	}
	if !math.IsInf(inv[1], -1) {
		t.Errorf("inv[1] = %v, want -Inf", inv[1])
	}
	if inv[2] != 0.5 {
		t.Errorf("inv[2] = %v, want 0.5", inv[2])
	}
}

func TestSlab(t *testing.T) {
	box := unitBox()
	tests := []struct {
		name   string
		origin mathutil.Vec3
		dir    mathutil.Vec3
		tMax   float64
		want   bool
	}{
		{"head on", mathutil.Vec3{0, 0, 5}, mathutil.Vec3{0, 0, -1}, FarAway, true},
		{"pointing away", mathutil.Vec3{0, 0, 5}, mathutil.Vec3{0, 0, 1}, FarAway, false},
		{"beyond tMax", mathutil.Vec3{0, 0, 5}, mathutil.Vec3{0, 0, -1}, 3, false},
		{"reaches within tMax", mathutil.Vec3{0, 0, 5}, mathutil.Vec3{0, 0, -1}, 4.5, true},
		{"origin inside", mathutil.Vec3{0.2, 0.1, 0}, mathutil.Vec3{1, 2, 3}, FarAway, true},
		{"parallel inside slab", mathutil.Vec3{0.5, -5, 0.5}, mathutil.Vec3{0, 1, 0}, FarAway, true},
		{"parallel outside slab", mathutil.Vec3{1.5, -5, 0.5}, mathutil.Vec3{0, 1, 0}, FarAway, false},
		{"parallel on slab face", mathutil.Vec3{1, -5, 1}, mathutil.Vec3{0, 1, 0}, FarAway, true},
		{"diagonal miss", mathutil.Vec3{3, 0, 0}, mathutil.Vec3{0, 1, 1}, FarAway, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRay(tt.origin, tt.dir)
			if got := box.Slab(r.Origin, r.InvDir(), tt.tMax); got != tt.want {
				t.Errorf("Slab = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSlabFlatBox(t *testing.T) {
	// A planar mesh has zero extent on one axis but is still hittable.
	box := AABB{Min: mathutil.Vec3{-1, -1, 0}, Max: mathutil.Vec3{1, 1, 0}}
	r := NewRay(mathutil.Vec3{0.3, 0.3, 2}, mathutil.Vec3{0, 0, -1})
	if !box.Slab(r.Origin, r.InvDir(), FarAway) {
		t.Error("flat box missed")
	}
	if box.IsDegenerate() {
		t.Error("flat box reported degenerate")
	}
}

func TestAABBHelpers(t *testing.T) {
	b := EmptyAABB()
	if b.Valid() {
		t.Error("empty box should not be valid")
	}
	b = b.Extend(mathutil.Vec3{1, 2, 3})
	if !b.IsDegenerate() {
		t.Error("single point box should be degenerate")
	}
	b = b.Union(AABB{Min: mathutil.Vec3{-1, 0, 0}, Max: mathutil.Vec3{0, 10, 4}})
	if b.Min != (mathutil.Vec3{-1, 0, 0}) || b.Max != (mathutil.Vec3{1, 10, 4}) {
		t.Errorf("union = %+v", b)
	}
	if got := b.LongestAxis(); got != 1 {
		t.Errorf("LongestAxis = %d, want 1", got)
	}
	if got := b.Centroid(); got != (mathutil.Vec3{0, 5, 2}) {
		t.Errorf("Centroid = %v", got)
	}
}

func TestIntersectReset(t *testing.T) {
	it := NewIntersect()
	if it.Hit() || it.T != FarAway || it.MatID != NoHit {
		t.Fatalf("NewIntersect = %+v", it)
	}
	it.Update(2, mathutil.Vec3{0, 0, 1}, 3)
	if !it.Hit() {
		t.Fatal("Update did not register a hit")
	}
	it.ResetTo(7)
	if it.Hit() || it.T != 7 || it.Normal != (mathutil.Vec3{}) {
		t.Errorf("ResetTo = %+v", it)
	}
	it.Reset()
	if it.T != FarAway {
		t.Errorf("Reset T = %v", it.T)
	}
}
