package render

import (
	"bvh-raytracer/internal/background"
	"bvh-raytracer/internal/geom"
	"bvh-raytracer/internal/lighting"
	"bvh-raytracer/internal/mathutil"
	"bvh-raytracer/internal/scene"
)

// Tracer shades single rays: nearest hit, then direct lighting.
type Tracer struct {
	scene      lighting.Occluder
	light      *lighting.Lighting
	materials  *scene.Materials
	background background.Sampler
}

// NewTracer wires the hit query, lighting and material table together. A nil
// background falls back to the default sky.
func NewTracer(occ lighting.Occluder, light *lighting.Lighting, materials *scene.Materials, bg background.Sampler) *Tracer {
	if bg == nil {
		bg = background.Sky{Color: scene.SkyColor}
	}
	return &Tracer{scene: occ, light: light, materials: materials, background: bg}
}

// Trace returns the color seen along r and the material id hit, or
// geom.NoHit with the background color.
func (t *Tracer) Trace(r geom.Ray) (mathutil.Vec3, int) {
	it := geom.NewIntersect()
	if !t.scene.Intersect(r, &it) {
		return t.background.ColorAt(r.Dir), geom.NoHit
	}

	surf := lighting.Surface{
		Point:     r.At(it.T),
		Normal:    it.Normal.Normalize(),
		Geometric: it.Geometric.Normalize(),
	}
	if surf.Geometric == (mathutil.Vec3{}) {
		surf.Geometric = surf.Normal
	}
	// Face-forward by the face normal so open meshes are lit from both sides.
	// Interpolated normals can lean away from the viewer on coarse meshes.
	if surf.Geometric.Dot(r.Dir) > 0 {
		surf.Normal = surf.Normal.Neg()
		surf.Geometric = surf.Geometric.Neg()
	}

	return t.light.ShadeSurface(surf, t.materials.Color(it.MatID)), it.MatID
}
