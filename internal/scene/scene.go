package scene

import (
	"errors"
	"fmt"
	"math"

	"bvh-raytracer/internal/geom"
	"bvh-raytracer/internal/mathutil"
	"bvh-raytracer/internal/shapes"
)

// SkyColor is the flat background used when no image is configured.
var SkyColor = mathutil.Vec3{0.678, 0.847, 0.902}

// Camera holds the camera block of a scene file.
type Camera struct {
	Centre      mathutil.Vec3
	Rotation    mathutil.Vec3 // pitch, yaw, roll in degrees
	Fov         float64       // vertical field of view in degrees
	Samples     int
	Stratified  bool
	Aperture    float64
	FocalLength float64
}

// Sun is a directional light. Dir is the unit direction the light travels.
type Sun struct {
	Dir       mathutil.Vec3
	Intensity float64
}

// Spotlight is a point light with an optional cone.
type Spotlight struct {
	Position   mathutil.Vec3
	Dir        mathutil.Vec3 // unit axis of the cone; inferred when zero
	Intensity  float64
	CosCutoff  float64
	Sharpness  float64
	UseCutoff  bool
	UseFalloff bool
}

// Scene is everything a render needs. It is built once and treated as
// read-only once Prepare has run.
type Scene struct {
	Name       string
	Dir        string // directory of the scene file, for relative paths
	Output     string
	Camera     Camera
	Width      int
	Height     int
	Background string
	Ambient    float64
	Sun        Sun
	Spotlights []Spotlight
	Mesh       shapes.Mesh
	Spheres    []shapes.Sphere
	Materials  Materials
}

// New returns a scene with the defaults of an empty input file.
func New() *Scene {
	return &Scene{
		Camera: Camera{
			Fov:         60,
			Samples:     1,
			FocalLength: 1,
		},
		Width:   640,
		Height:  480,
		Ambient: 0.1,
	}
}

// Bounds returns the box around all geometry.
func (s *Scene) Bounds() geom.AABB {
	b := geom.EmptyAABB()
	for i := range s.Mesh.Faces {
		b = b.Union(s.Mesh.FaceBounds(i))
	}
	for _, sp := range s.Spheres {
		b = b.Union(sp.Bounds())
	}
	return b
}

// Prepare validates the scene and derives data needed before tracing:
// vertex normals and spotlight axes that the input left out.
func (s *Scene) Prepare() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("scene: invalid film resolution %dx%d", s.Width, s.Height)
	}
	if s.Camera.Samples <= 0 {
		return fmt.Errorf("scene: invalid sample count %d", s.Camera.Samples)
	}
	if err := s.Mesh.Validate(); err != nil {
		return fmt.Errorf("scene: %w", err)
	}
	for i, sp := range s.Spheres {
		if sp.Radius < 0 || math.IsNaN(sp.Radius) {
			return fmt.Errorf("scene: sphere %d has radius %v", i, sp.Radius)
		}
	}
	s.Mesh.ComputeVertexNormals()

	if s.Sun.Dir != (mathutil.Vec3{}) {
		s.Sun.Dir = s.Sun.Dir.Normalize()
	}

	aim := mathutil.Vec3{}
	if b := s.Bounds(); b.Valid() {
		aim = b.Centroid()
	}
	for i := range s.Spotlights {
		sl := &s.Spotlights[i]
		if sl.Dir == (mathutil.Vec3{}) {
			sl.Dir = aim.Sub(sl.Position)
		}
		sl.Dir = sl.Dir.Normalize()
		if sl.Dir == (mathutil.Vec3{}) {
			return errors.New("scene: spotlight sits on its own target")
		}
	}
	return nil
}
