package film

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"bvh-raytracer/internal/mathutil"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
)

func TestAccumulate(t *testing.T) {
	f, err := New(3, 2)
	if err != nil {
		t.Fatal(err)
	}
	if f.ID(2, 1) != -1 {
		t.Errorf("fresh id = %d, want -1", f.ID(2, 1))
	}
	if f.Pixel(0, 0) != (mathutil.Vec3{}) {
		t.Errorf("empty pixel = %v", f.Pixel(0, 0))
	}

	f.Add(1, 1, mathutil.Vec3{1, 0, 0.5})
	f.Add(1, 1, mathutil.Vec3{0, 1, 0.5})
	f.SetID(1, 1, 7)
	if got := f.Pixel(1, 1); got != (mathutil.Vec3{0.5, 0.5, 0.5}) {
		t.Errorf("mean = %v", got)
	}
	if f.ID(1, 1) != 7 {
		t.Errorf("id = %d", f.ID(1, 1))
	}
	if f.Weight[f.index(1, 1)] != 2 {
		t.Errorf("weight = %v", f.Weight[f.index(1, 1)])
	}
}

func TestNewRejectsEmpty(t *testing.T) {
	for _, sz := range [][2]int{{0, 1}, {1, 0}, {-2, 4}} {
		if _, err := New(sz[0], sz[1]); err == nil {
			t.Errorf("New(%d,%d) accepted", sz[0], sz[1])
		}
	}
}

func TestImageToneCurveAndFlip(t *testing.T) {
	f, _ := New(2, 2)
	f.Add(0, 0, mathutil.Vec3{0.25, 1, 4}) // bottom-left
	f.Add(1, 1, mathutil.Vec3{0.04, 0, -1})

	img := f.Image()
	if got := img.NRGBAAt(0, 1); got != (color.NRGBA{128, 255, 255, 255}) {
		t.Errorf("bottom-left = %v", got)
	}
	if got := img.NRGBAAt(1, 0); got != (color.NRGBA{51, 0, 0, 255}) {
		t.Errorf("top-right = %v", got)
	}
	// Pixels without samples are black.
	if got := img.NRGBAAt(1, 1); got != (color.NRGBA{0, 0, 0, 255}) {
		t.Errorf("unsampled = %v", got)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", BMP},
		{"bmp", BMP},
		{".PNG", PNG},
		{"webp", WebP},
		{".tga", TGA},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
	if _, err := ParseFormat("gif"); err == nil {
		t.Error("gif accepted")
	}
	if WebP.Ext() != ".webp" {
		t.Errorf("ext = %q", WebP.Ext())
	}
}

func checker() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(60 * x), uint8(100 * y), 77, 255})
		}
	}
	return img
}

func sameOpaque(t *testing.T, name string, got image.Image, want *image.NRGBA) {
	t.Helper()
	if got.Bounds() != want.Bounds() {
		t.Fatalf("%s: bounds %v", name, got.Bounds())
	}
	b := want.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.NRGBAModel.Convert(got.At(x, y)).(color.NRGBA)
			if g != want.NRGBAAt(x, y) {
				t.Fatalf("%s: (%d,%d) = %v, want %v", name, x, y, g, want.NRGBAAt(x, y))
			}
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	img := checker()

	decoders := map[string]func(*os.File) (image.Image, error){
		"out.png": func(f *os.File) (image.Image, error) { return png.Decode(f) },
		"out.bmp": func(f *os.File) (image.Image, error) { return bmp.Decode(f) },
		"out.tga": func(f *os.File) (image.Image, error) { return tga.Decode(f) },
	}
	for name, decode := range decoders {
		path := filepath.Join(dir, "nested", name)
		if err := Save(path, img); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		f, err := os.Open(path)
		if err != nil {
			t.Fatal(err)
		}
		got, err := decode(f)
		f.Close()
		if err != nil {
			t.Fatalf("%s: decode: %v", name, err)
		}
		sameOpaque(t, name, got, img)
	}

	if err := Save(filepath.Join(dir, "out.gif"), img); err == nil {
		t.Error("gif accepted")
	}
}

func TestEncodeWebP(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, checker(), WebP); err != nil {
		t.Fatal(err)
	}
	b := buf.Bytes()
	if len(b) < 12 || string(b[:4]) != "RIFF" || string(b[8:12]) != "WEBP" {
		t.Errorf("not a webp stream: % x", b[:min(len(b), 12)])
	}
}

func TestDownsampleAveragesRadiance(t *testing.T) {
	f, err := New(4, 2)
	if err != nil {
		t.Fatal(err)
	}
	// Left block: half black, half white samples. Right block: one 0.25
	// sample in one pixel, nothing in the others.
	for iy := 0; iy < 2; iy++ {
		f.Add(0, iy, mathutil.Vec3{})
		f.Add(1, iy, mathutil.Vec3{1, 1, 1})
	}
	f.Add(3, 1, mathutil.Vec3{0.25, 0.25, 0.25})
	f.SetID(1, 1, 7)

	small, err := f.Downsample(2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if small.Width != 2 || small.Height != 1 {
		t.Fatalf("size = %dx%d", small.Width, small.Height)
	}
	if got := small.Pixel(0, 0); got != (mathutil.Vec3{0.5, 0.5, 0.5}) {
		t.Errorf("left = %v, want linear mean 0.5", got)
	}
	if got := small.Pixel(1, 0); got != (mathutil.Vec3{0.25, 0.25, 0.25}) {
		t.Errorf("right = %v, want 0.25 from its only sample", got)
	}
	if got := small.ID(0, 0); got != 7 {
		t.Errorf("id = %d, want the centre sample's 7", got)
	}
	if got := small.ID(1, 0); got != -1 {
		t.Errorf("empty id = %d, want -1", got)
	}

	// sqrt(0.5) rather than the mean of the two tone-mapped values.
	img := small.Image()
	if got := img.Pix[0]; got != 180 {
		t.Errorf("tone-mapped left = %d, want 180", got)
	}

	if same, err := f.Downsample(4, 2); err != nil || same != f {
		t.Errorf("same-size downsample = %p, %v", same, err)
	}
	if _, err := f.Downsample(3, 2); err == nil {
		t.Error("uneven downsample accepted")
	}
}
