package scene

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"bvh-raytracer/internal/mathutil"
	"bvh-raytracer/internal/shapes"
)

// Load reads and parses a scene file. Relative paths inside it resolve
// against the file's directory.
func Load(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scene: open %s: %w", path, err)
	}
	defer f.Close()

	s, err := read(f, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("scene: parse %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// Read parses a scene from r. Relative paths resolve against the working
// directory.
func Read(r io.Reader) (*Scene, error) {
	return read(r, "")
}

func read(r io.Reader, dir string) (*Scene, error) {
	tk, err := tokenize(r)
	if err != nil {
		return nil, err
	}

	s := New()
	s.Dir = dir

	for {
		label, ok := tk.next()
		if !ok || label == "EndInput" {
			break
		}

		switch label {
		case "Camera":
			err = readCamera(tk, &s.Camera)
		case "Film":
			err = readFilm(tk, s)
		case "BackGround":
			err = readBackground(tk, s)
		case "Sun":
			err = readSun(tk, &s.Sun)
		case "Ambient":
			s.Ambient, err = tk.number()
		case "Spotlights":
			err = readSpotlights(tk, s)
		case "Spheres":
			err = readSpheres(tk, s)
		case "Vertices":
			err = readVertices(tk, &s.Mesh)
		case "Faces":
			err = readFaces(tk, &s.Mesh)
		case "Materials":
			err = readMaterials(tk, &s.Materials)
		case "MeshFile":
			err = readMeshFile(tk, s)
		case "Filename":
			s.Output, err = tk.word()
		default:
			err = tk.errorf("unknown directive %q", label)
		}
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

func readCamera(tk *tokenizer, c *Camera) error {
	return tk.block(func(label string) error {
		var err error
		switch label {
		case "Centre":
			c.Centre, err = tk.vec3()
		case "Rotation":
			c.Rotation, err = tk.vec3()
		case "Fov":
			c.Fov, err = tk.number()
		case "Samples":
			c.Samples, err = tk.integer()
		case "Stratified":
			var v int
			v, err = tk.integer()
			c.Stratified = v != 0
		case "Aperture":
			c.Aperture, err = tk.number()
		case "Focallength":
			c.FocalLength, err = tk.number()
		default:
			err = tk.errorf("unknown camera field %q", label)
		}
		return err
	})
}

func readFilm(tk *tokenizer, s *Scene) error {
	return tk.block(func(label string) error {
		if label != "Resolution" {
			return tk.errorf("unknown film field %q", label)
		}
		h, err := tk.integer()
		if err != nil {
			return err
		}
		w, err := tk.integer()
		if err != nil {
			return err
		}
		s.Height, s.Width = h, w
		return nil
	})
}

func readBackground(tk *tokenizer, s *Scene) error {
	return tk.block(func(label string) error {
		if label != "Image" {
			return tk.errorf("unknown background field %q", label)
		}
		name, err := tk.word()
		if err != nil {
			return err
		}
		s.Background = s.resolve(name)
		return nil
	})
}

func readSun(tk *tokenizer, sun *Sun) error {
	err := tk.block(func(label string) error {
		var err error
		switch label {
		case "Direction":
			sun.Dir, err = tk.vec3()
		case "Intensity":
			sun.Intensity, err = tk.number()
		default:
			err = tk.errorf("unknown sun field %q", label)
		}
		return err
	})
	sun.Dir = sun.Dir.Normalize()
	return err
}

func readSpotlights(tk *tokenizer, s *Scene) error {
	useCutoff, useFalloff := true, true
	var target *mathutil.Vec3

	for {
		label, ok := tk.peek()
		if !ok {
			return tk.errorf("spotlights: missing light count")
		}
		switch label {
		case "UseCutoff", "UseFalloff":
			tk.next()
			v, err := tk.integer()
			if err != nil {
				return err
			}
			if label == "UseCutoff" {
				useCutoff = v != 0
			} else {
				useFalloff = v != 0
			}
			continue
		case "Target":
			tk.next()
			v, err := tk.vec3()
			if err != nil {
				return err
			}
			target = &v
			continue
		}
		break
	}

	n, err := tk.count()
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		pos, err := tk.vec3()
		if err != nil {
			return err
		}
		var vals [3]float64 // intensity, cutoff degrees, sharpness
		for k := range vals {
			if vals[k], err = tk.number(); err != nil {
				return err
			}
		}
		sl := Spotlight{
			Position:   pos,
			Intensity:  vals[0],
			CosCutoff:  math.Cos(mathutil.Deg2Rad(vals[1])),
			Sharpness:  vals[2],
			UseCutoff:  useCutoff,
			UseFalloff: useFalloff,
		}
		if target != nil {
			sl.Dir = target.Sub(pos)
		}
		s.Spotlights = append(s.Spotlights, sl)
	}
	return nil
}

func readSpheres(tk *tokenizer, s *Scene) error {
	n, err := tk.count()
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		mat, err := tk.integer()
		if err != nil {
			return err
		}
		c, err := tk.vec3()
		if err != nil {
			return err
		}
		r, err := tk.number()
		if err != nil {
			return err
		}
		s.Spheres = append(s.Spheres, shapes.Sphere{Center: c, Radius: r, MatID: mat})
	}
	return nil
}

func readVertices(tk *tokenizer, m *shapes.Mesh) error {
	n, err := tk.count()
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		v, err := tk.vec3()
		if err != nil {
			return err
		}
		m.AddVertex(v)
	}
	return nil
}

// readFaces keeps vertex ids unchecked: faces may precede their vertices in
// the file, and Prepare validates the finished mesh.
func readFaces(tk *tokenizer, m *shapes.Mesh) error {
	n, err := tk.count()
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		mat, err := tk.integer()
		if err != nil {
			return err
		}
		nv, err := tk.integer()
		if err != nil {
			return err
		}
		if nv < 3 || nv > shapes.MaxFaceVertices {
			return tk.errorf("face %d has %d vertices, want 3 or 4", i, nv)
		}
		f := shapes.Face{VertexCount: nv, MatID: mat}
		for k := 0; k < nv; k++ {
			if f.VertexIDs[k], err = tk.integer(); err != nil {
				return err
			}
		}
		m.Faces = append(m.Faces, f)
	}
	return nil
}

// readMaterials reads "n" followed by n lines of "id r g b" with channels in
// 0..255. A bare Materials keyword keeps the default palette.
func readMaterials(tk *tokenizer, m *Materials) error {
	label, ok := tk.peek()
	if !ok {
		return nil
	}
	if _, err := strconv.Atoi(label); err != nil {
		return nil
	}
	n, err := tk.count()
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		id, err := tk.integer()
		if err != nil {
			return err
		}
		c, err := tk.vec3()
		if err != nil {
			return err
		}
		m.Set(id, mathutil.Vec3{c[0] / 255, c[1] / 255, c[2] / 255})
	}
	return nil
}

func readMeshFile(tk *tokenizer, s *Scene) error {
	name, err := tk.word()
	if err != nil {
		return err
	}
	mat, err := tk.integer()
	if err != nil {
		return err
	}
	if err := ImportMesh(s.resolve(name), mat, &s.Mesh); err != nil {
		return tk.errorf("%v", err)
	}
	return nil
}

func (s *Scene) resolve(name string) string {
	if s.Dir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.Dir, name)
}

// tokenizer splits the input into whitespace separated words. '#' starts a
// comment that runs to the end of the line.
type tokenizer struct {
	words []string
	lines []int
	pos   int
}

func tokenize(r io.Reader) (*tokenizer, error) {
	tk := &tokenizer{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		for _, w := range strings.Fields(text) {
			tk.words = append(tk.words, w)
			tk.lines = append(tk.lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return tk, nil
}

func (tk *tokenizer) next() (string, bool) {
	if tk.pos >= len(tk.words) {
		return "", false
	}
	tk.pos++
	return tk.words[tk.pos-1], true
}

func (tk *tokenizer) peek() (string, bool) {
	if tk.pos >= len(tk.words) {
		return "", false
	}
	return tk.words[tk.pos], true
}

func (tk *tokenizer) errorf(format string, args ...any) error {
	line := 0
	if n := len(tk.lines); n > 0 {
		i := tk.pos - 1
		if i < 0 {
			i = 0
		}
		if i >= n {
			i = n - 1
		}
		line = tk.lines[i]
	}
	return fmt.Errorf("line %d: %s", line, fmt.Sprintf(format, args...))
}

func (tk *tokenizer) word() (string, error) {
	w, ok := tk.next()
	if !ok {
		return "", tk.errorf("unexpected end of input")
	}
	return w, nil
}

func (tk *tokenizer) number() (float64, error) {
	w, err := tk.word()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(w, 64)
	if err != nil {
		return 0, tk.errorf("bad number %q", w)
	}
	return v, nil
}

func (tk *tokenizer) integer() (int, error) {
	w, err := tk.word()
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(w)
	if err != nil {
		return 0, tk.errorf("bad integer %q", w)
	}
	return v, nil
}

func (tk *tokenizer) count() (int, error) {
	n, err := tk.integer()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, tk.errorf("negative count %d", n)
	}
	return n, nil
}

func (tk *tokenizer) vec3() (mathutil.Vec3, error) {
	var v mathutil.Vec3
	for i := range v {
		f, err := tk.number()
		if err != nil {
			return mathutil.Vec3{}, err
		}
		v[i] = f
	}
	return v, nil
}

// block calls field for every label up to the closing "End".
func (tk *tokenizer) block(field func(label string) error) error {
	for {
		label, ok := tk.next()
		if !ok {
			return tk.errorf("unterminated block")
		}
		if label == "End" {
			return nil
		}
		if err := field(label); err != nil {
			return err
		}
	}
}
