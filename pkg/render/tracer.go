package render

import (
	"sync"
	"sync/atomic"

	"github.com/taigrr/refract/pkg/geom"
	"github.com/taigrr/refract/pkg/math3d"
	"github.com/taigrr/refract/pkg/scene"
	"github.com/taigrr/refract/pkg/shade"
)

// coefficientEpsilon is the smallest reflectivity or transparency that
// spawns a secondary ray.
const coefficientEpsilon = 1e-3

// Tracer evaluates the color seen along a ray by recursive Whitted-style
// ray tracing: direct lighting with shadow rays plus mirror reflection
// and refraction. A Tracer is safe for concurrent use.
type Tracer struct {
	scene      *scene.Scene
	cfg        Config
	background shade.Color
	fallback   shade.Material

	rays     atomic.Int64
	warnOnce sync.Once
}

// NewTracer creates a tracer for sc. The scene must not change while the
// tracer is in use.
func NewTracer(sc *scene.Scene, cfg Config) *Tracer {
	bg := sc.Background
	if cfg.Background != nil {
		bg = *cfg.Background
	}
	return &Tracer{
		scene:      sc,
		cfg:        cfg,
		background: bg,
		fallback:   shade.DefaultMaterial(),
	}
}

// Rays returns the number of rays traced so far, shadow rays excluded.
func (t *Tracer) Rays() int64 { return t.rays.Load() }

func (t *Tracer) eps() float64 {
	if t.scene.Tolerance > 0 {
		return t.scene.Tolerance
	}
	return math3d.DefaultEpsilon
}

// miss is the color of a ray that hits nothing or runs out of energy.
// Only camera rays see the background.
func (t *Tracer) miss(depth int) shade.Color {
	if depth == 0 {
		return t.background
	}
	return shade.Black
}

// Trace returns the clamped color seen along r. depth counts the bounces
// so far and attenuation is the fraction of energy the ray still carries.
// Every recursive call increases depth and multiplies attenuation by a
// coefficient in [0,1], and no secondary ray is spawned at MaxDepth, so
// the recursion is bounded by MaxDepth for any scene.
func (t *Tracer) Trace(r math3d.Ray, depth int, attenuation float64) shade.Color {
	if depth > t.cfg.MaxDepth || attenuation < t.cfg.MinAttenuation {
		return t.miss(depth)
	}
	t.rays.Add(1)

	// No exclusion: refracted rays must be able to hit their own shape's
	// far side, and the origin offset already avoids self-hits.
	hit, ok := t.scene.NearestHit(r, nil)
	if !ok {
		return t.miss(depth)
	}

	mat := t.material(hit.Shape)

	normal := hit.Normal
	entering := r.Direction.Dot(normal) < 0
	if !entering {
		normal = normal.Negate()
	}

	if e, ok := mat.(shade.Emitter); ok {
		return e.Emission().Clamp()
	}

	color := t.direct(mat, hit.Point, normal, r.Origin).Scale(attenuation)

	if depth >= t.cfg.MaxDepth {
		return color.Clamp()
	}
	eps := t.eps()

	if refl := mat.Reflectivity(); t.cfg.Reflections && refl > coefficientEpsilon {
		dir := r.Direction.Reflect(normal)
		child := math3d.NewRayWithEnergy(hit.Point.Add(normal.Scale(eps)), dir, attenuation*refl)
		color = color.Add(t.Trace(child, depth+1, attenuation*refl).Clamp())
	}

	if transp := mat.Transparency(); t.cfg.Refractions && transp > coefficientEpsilon {
		eta := mat.IOR()
		if entering {
			eta = 1 / eta
		}
		if dir, ok := r.Direction.Refract(normal, eta); ok {
			child := math3d.NewRayWithEnergy(hit.Point.Add(dir.Scale(eps)), dir, attenuation*transp)
			refracted := t.Trace(child, depth+1, attenuation*transp)
			if tinter, ok := mat.(shade.Tinter); ok {
				refracted = refracted.Mul(tinter.Tint())
			}
			color = color.Add(refracted)
		}
	}

	return color.Clamp()
}

// direct sums the contribution of every light at point, gating
// non-ambient lights by their shadow factor.
func (t *Tracer) direct(mat shade.Material, point, normal, viewer math3d.Vec3) shade.Color {
	var sum shade.Color
	for _, l := range t.scene.Lights {
		c := mat.ColorAt(point, normal, l, viewer)
		if c.IsBlack() {
			continue
		}
		if t.cfg.Shadows && !l.IsAmbient() {
			f := t.scene.ShadowFactor(point, normal, l)
			if f == 0 {
				continue
			}
			c = c.Scale(f)
		}
		sum = sum.Add(c)
	}
	return sum
}

func (t *Tracer) material(s geom.Shape) shade.Material {
	if s != nil {
		if m := s.Material(); m != nil {
			return m
		}
	}
	t.warnOnce.Do(func() {
		logger.Warn("shape without material, using default")
	})
	return t.fallback
}
