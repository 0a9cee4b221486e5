package render

import (
	"context"
	"errors"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/taigrr/refract/pkg/geom"
	"github.com/taigrr/refract/pkg/math3d"
	"github.com/taigrr/refract/pkg/scene"
	"github.com/taigrr/refract/pkg/shade"
)

func approxColor(a, b shade.Color, tol float64) bool {
	return math.Abs(a.R-b.R) <= tol && math.Abs(a.G-b.G) <= tol && math.Abs(a.B-b.B) <= tol
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 8, 6
	cfg.Workers = 2
	return cfg
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"zero width", func(c *Config) { c.Width = 0 }, true},
		{"negative height", func(c *Config) { c.Height = -1 }, true},
		{"negative depth", func(c *Config) { c.MaxDepth = -1 }, true},
		{"zero depth", func(c *Config) { c.MaxDepth = 0 }, false},
		{"attenuation one", func(c *Config) { c.MinAttenuation = 1 }, true},
		{"negative workers", func(c *Config) { c.Workers = -2 }, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
		})
	}
}

func TestPrimaryRays(t *testing.T) {
	cam := NewCamera()

	r := cam.PrimaryRay(1, 1, 3, 3)
	if r.Origin != cam.Position {
		t.Errorf("origin = %v, want camera position", r.Origin)
	}
	if d := r.Direction.Sub(math3d.V3(0, 0, -1)).Len(); d > 1e-9 {
		t.Errorf("center direction = %v, want (0,0,-1)", r.Direction)
	}

	// The top-left pixel looks up and to the left.
	r = cam.PrimaryRay(0, 0, 3, 3)
	if r.Direction.X >= 0 || r.Direction.Y <= 0 {
		t.Errorf("top-left direction = %v", r.Direction)
	}

	cam.SetOrthographic(2)
	gen := cam.Rays(4, 2)
	a, b := gen.Ray(0, 0), gen.Ray(4, 2)
	if a.Direction != b.Direction {
		t.Errorf("orthographic rays should be parallel: %v vs %v", a.Direction, b.Direction)
	}
	// View plane is 2 tall and 4 wide around the camera position.
	if math.Abs(a.Origin.X+2) > 1e-9 || math.Abs(a.Origin.Y-1) > 1e-9 {
		t.Errorf("corner origin = %v, want (-2, 1, 5)", a.Origin)
	}
}

func TestSphereScenarioPixel(t *testing.T) {
	sc := scene.New()
	sc.Background = shade.RGB(0, 0, 0.5)
	sphere := geom.NewUnitSphere()
	sphere.SetMaterial(shade.NewPhong(shade.RGB(1, 0, 0)))
	sc.Add(sphere)
	sc.AddLight(shade.NewPointLight(math3d.V3(0, 0, 10), shade.White, 1))

	cam := NewCamera()
	tr := NewTracer(sc, DefaultConfig())

	// Head-on: diffuse 0.9 red plus a full specular highlight.
	got := tr.Trace(cam.PrimaryRay(1, 1, 3, 3), 0, 1)
	if want := shade.RGB(1, 0.9, 0.9); !approxColor(got, want, 1e-6) {
		t.Errorf("center = %v, want %v", got, want)
	}
	got = tr.Trace(cam.PrimaryRay(0, 0, 3, 3), 0, 1)
	if got != sc.Background {
		t.Errorf("corner = %v, want background", got)
	}
}

func TestMirrorsTerminate(t *testing.T) {
	tests := []struct {
		depth int
		refl  float64
		minAt float64
		rays  int64
	}{
		{depth: 0, refl: 1, rays: 1},
		{depth: 1, refl: 1, rays: 2},
		{depth: 3, refl: 1, rays: 4},
		{depth: 7, refl: 1, rays: 8},
		// 1, 0.5, 0.25 are traced; 0.125 is below the threshold.
		{depth: 10, refl: 0.5, minAt: 0.2, rays: 3},
	}
	for _, tc := range tests {
		sc := scene.New()
		left, right := geom.NewUnitSphere(), geom.NewUnitSphere()
		left.SetTransform(math3d.Translate(math3d.V3(-2, 0, 0)))
		right.SetTransform(math3d.Translate(math3d.V3(2, 0, 0)))
		left.SetMaterial(shade.NewMirror(shade.White, tc.refl))
		right.SetMaterial(shade.NewMirror(shade.White, tc.refl))
		sc.Add(left, right)
		sc.AddLight(shade.NewAmbientLight(shade.White, 1))

		cfg := DefaultConfig()
		cfg.MaxDepth = tc.depth
		cfg.MinAttenuation = tc.minAt
		tr := NewTracer(sc, cfg)

		c := tr.Trace(math3d.NewRay(math3d.Zero3(), math3d.V3(1, 0, 0)), 0, 1)
		if got := tr.Rays(); got != tc.rays {
			t.Errorf("depth %d refl %v: traced %d rays, want %d", tc.depth, tc.refl, got, tc.rays)
		}
		if c.R < 0 || c.R > 1 {
			t.Errorf("color %v not clamped", c)
		}
	}
}

func TestMissingMaterialUsesDefault(t *testing.T) {
	sc := scene.New()
	sc.Add(geom.NewUnitSphere())
	sc.AddLight(shade.NewAmbientLight(shade.White, 1))

	got := NewTracer(sc, DefaultConfig()).Trace(math3d.NewRay(math3d.V3(0, 0, 5), math3d.V3(0, 0, -1)), 0, 1)
	if got.R <= 0 || got.B <= 0 || got.G != 0 {
		t.Errorf("color = %v, want the magenta default", got)
	}
}

func TestEmissiveShortCircuits(t *testing.T) {
	sc := scene.New()
	s := geom.NewUnitSphere()
	s.SetMaterial(shade.NewEmissive(shade.RGB(0.2, 0.4, 0.6)))
	sc.Add(s)

	got := NewTracer(sc, DefaultConfig()).Trace(math3d.NewRay(math3d.V3(0, 0, 5), math3d.V3(0, 0, -1)), 0, 1)
	if !approxColor(got, shade.RGB(0.2, 0.4, 0.6), 1e-12) {
		t.Errorf("color = %v, want the emission", got)
	}
}

func TestShadows(t *testing.T) {
	sc := scene.New()
	floor := geom.NewPlane()
	floor.SetMaterial(shade.NewPhong(shade.White))
	blocker := geom.NewUnitSphere()
	blocker.SetTransform(math3d.Translate(math3d.V3(0, 2, 0)))
	blocker.SetMaterial(shade.NewPhong(shade.White))
	sc.Add(floor, blocker)
	sc.AddLight(shade.NewPointLight(math3d.V3(0, 10, 0), shade.White, 1))

	// Looks at the floor right under the sphere, passing beneath it.
	r := math3d.NewRay(math3d.V3(0, 0.5, 3), math3d.V3(0, -0.5, -3))

	cfg := DefaultConfig()
	if got := NewTracer(sc, cfg).Trace(r, 0, 1); !got.IsBlack() {
		t.Errorf("shadowed floor = %v, want black", got)
	}
	cfg.Shadows = false
	if got := NewTracer(sc, cfg).Trace(r, 0, 1); got.IsBlack() {
		t.Error("floor without shadows should be lit")
	}
}

func TestRefractionThroughGlass(t *testing.T) {
	sc := scene.New()
	glass := geom.NewUnitSphere()
	glass.SetMaterial(shade.NewGlass(1.5))
	wall := geom.NewQuad(10, 10)
	wall.SetTransform(math3d.Translate(math3d.V3(0, 0, -10)))
	wall.SetMaterial(shade.NewEmissive(shade.RGB(0, 1, 0)))
	sc.Add(glass, wall)

	// Down the axis the ray passes straight through the sphere.
	r := math3d.NewRay(math3d.V3(0, 0, 5), math3d.V3(0, 0, -1))

	cfg := DefaultConfig()
	if got := NewTracer(sc, cfg).Trace(r, 0, 1); got.G < 0.99 {
		t.Errorf("through glass = %v, want the green wall", got)
	}
	cfg.Refractions = false
	if got := NewTracer(sc, cfg).Trace(r, 0, 1); got.G != 0 {
		t.Errorf("refraction disabled = %v, want no green", got)
	}
}

func emissiveScene() *scene.Scene {
	sc := scene.New()
	sc.Background = shade.RGB(0, 0, 1)
	s := geom.NewUnitSphere()
	s.SetMaterial(shade.NewEmissive(shade.RGB(1, 0, 0)))
	sc.Add(s)
	return sc
}

func TestRenderImage(t *testing.T) {
	cfg := testConfig()
	r, err := NewRenderer(cfg)
	if err != nil {
		t.Fatal(err)
	}
	var rows atomic.Int32
	r.OnRow = func(done, total int) {
		if total != cfg.Height {
			t.Errorf("total = %d, want %d", total, cfg.Height)
		}
		rows.Add(1)
	}
	fb := NewFramebuffer(cfg.Width, cfg.Height)
	stats, err := r.Render(context.Background(), emissiveScene(), NewCamera(), fb)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if n := rows.Load(); n != int32(cfg.Height) {
		t.Errorf("OnRow called %d times, want %d", n, cfg.Height)
	}
	if stats.Pixels != cfg.Width*cfg.Height {
		t.Errorf("pixels = %d, want %d", stats.Pixels, cfg.Width*cfg.Height)
	}
	if stats.Rays < int64(stats.Pixels) {
		t.Errorf("rays = %d, want at least one per pixel", stats.Rays)
	}
	if center := fb.RGBAAt(cfg.Width/2, cfg.Height/2); center.R != 255 || center.B != 0 {
		t.Errorf("center pixel = %v, want red", center)
	}
	if corner := fb.RGBAAt(0, 0); corner.B != 255 || corner.R != 0 {
		t.Errorf("corner pixel = %v, want background blue", corner)
	}
}

func TestRenderCancelled(t *testing.T) {
	r, err := NewRenderer(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Render(ctx, emissiveScene(), NewCamera(), NewFramebuffer(8, 6))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestNewRendererRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Width = 0
	if _, err := NewRenderer(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestSavePNG(t *testing.T) {
	fb := NewFramebuffer(4, 2)
	fb.Fill(shade.RGB(0, 0, 1))
	fb.Set(3, 1, shade.White)

	path := filepath.Join(t.TempDir(), "out.png")
	if err := fb.SavePNG(path); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 2 {
		t.Errorf("size = %v, want 4x2", b)
	}
	if r, _, _, _ := img.At(3, 1).RGBA(); r != 0xffff {
		t.Errorf("pixel (3,1) red = %x, want ffff", r)
	}
}

func TestWireframeDrawScene(t *testing.T) {
	sc := scene.New()
	sc.Add(geom.NewUnitSphere(), geom.NewPlane())
	behind := geom.NewUnitSphere()
	behind.SetTransform(math3d.Translate(math3d.V3(0, 0, 20)))
	sc.Add(behind)

	fb := NewFramebuffer(40, 30)
	w := NewWireframe(NewCamera(), fb)
	if n := w.DrawScene(sc); n != 1 {
		t.Errorf("drew %d boxes, want 1", n)
	}
	lit := 0
	for _, p := range fb.Pixels {
		if p == ColorCyan {
			lit++
		}
	}
	if lit == 0 {
		t.Error("no box edges drawn")
	}
}

func BenchmarkTraceSphere(b *testing.B) {
	sc := scene.New()
	s := geom.NewUnitSphere()
	s.SetMaterial(shade.NewPhong(shade.White))
	sc.Add(s)
	sc.AddLight(shade.NewPointLight(math3d.V3(5, 5, 5), shade.White, 1))
	tr := NewTracer(sc, DefaultConfig())
	r := math3d.NewRay(math3d.V3(0, 0, 5), math3d.V3(0, 0, -1))

	for b.Loop() {
		_ = tr.Trace(r, 0, 1)
	}
}
