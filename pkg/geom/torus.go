package geom

import (
	"math"

	"github.com/taigrr/refract/pkg/math3d"
)

// Torus is a ring around the Y axis: a tube of radius Minor swept along
// a circle of radius Major in the XZ plane. It is rendered by sphere
// marching its distance function.
type Torus struct {
	base
	Major, Minor float64
	march        marcher
}

// NewTorus creates a torus with default march parameters.
func NewTorus(major, minor float64) *Torus {
	t := &Torus{Major: math.Abs(major), Minor: math.Abs(minor)}
	t.march = marcher{sdf: t.distance, grad: t.localNormal, bounds: t.localBounds(), params: DefaultMarchParams()}
	t.bind(t, t)
	return t
}

// SetMarchParams replaces the marching accuracy parameters.
func (t *Torus) SetMarchParams(p MarchParams) { t.march.params = p }

func (t *Torus) distance(p math3d.Vec3) float64 {
	q := math.Hypot(p.X, p.Z) - t.Major
	return math.Hypot(q, p.Y) - t.Minor
}

func (t *Torus) localIntervals(r math3d.Ray) Intervals { return t.march.intervals(r) }

func (t *Torus) localNearest(r math3d.Ray, minT float64) (Intersection, bool) {
	return t.march.nearest(r, minT)
}

// localNormal points from the nearest point of the core circle.
func (t *Torus) localNormal(p math3d.Vec3) math3d.Vec3 {
	rho := math.Hypot(p.X, p.Z)
	if rho == 0 {
		return t.march.normal(p)
	}
	center := math3d.V3(p.X/rho*t.Major, 0, p.Z/rho*t.Major)
	n := p.Sub(center).Normalize()
	if n == (math3d.Vec3{}) {
		return math3d.Up()
	}
	return n
}

func (t *Torus) localDistance(p math3d.Vec3) float64 { return t.distance(p) }

func (t *Torus) localBounds() AABB {
	outer := t.Major + t.Minor
	return NewAABB(math3d.V3(-outer, -t.Minor, -outer), math3d.V3(outer, t.Minor, outer))
}

// knotSamplesPerWind sets how finely the knot curve is sampled before
// local refinement.
const knotSamplesPerWind = 48

// TorusKnot is a tube of radius Tube following the (P, Q) torus knot
// that winds P times around the Y axis and Q times through the hole of a
// torus with radii Major and Minor.
type TorusKnot struct {
	base
	P, Q         int
	Major, Minor float64
	Tube         float64

	samples []math3d.Vec3
	bound   float64 // radius of a sphere containing the tube
	march   marcher
}

// NewTorusKnot creates a torus knot. p and q should be coprime for a
// single closed curve; (2,3) is the trefoil.
func NewTorusKnot(p, q int, major, minor, tube float64) *TorusKnot {
	k := &TorusKnot{P: p, Q: q, Major: math.Abs(major), Minor: math.Abs(minor), Tube: math.Abs(tube)}
	n := knotSamplesPerWind * max(absInt(p), absInt(q), 1)
	k.samples = make([]math3d.Vec3, n)
	for i := range n {
		k.samples[i] = k.curve(2 * math.Pi * float64(i) / float64(n))
	}
	k.bound = k.Major + k.Minor + k.Tube
	k.march = marcher{sdf: k.distance, bounds: k.localBounds(), params: DefaultMarchParams()}
	k.bind(k, k)
	return k
}

func absInt(i int) int {
	if i < 0 {
		return -i
	}
	return i
}

// SetMarchParams replaces the marching accuracy parameters.
func (k *TorusKnot) SetMarchParams(p MarchParams) { k.march.params = p }

func (k *TorusKnot) curve(phi float64) math3d.Vec3 {
	p, q := float64(k.P), float64(k.Q)
	rr := k.Major + k.Minor*math.Cos(q*phi)
	return math3d.V3(rr*math.Cos(p*phi), k.Minor*math.Sin(q*phi), rr*math.Sin(p*phi))
}

// distance finds the closest sampled curve point and refines it with a
// ternary search over the neighbouring parameter range.
func (k *TorusKnot) distance(p math3d.Vec3) float64 {
	// Far from the knot the bounding sphere is a cheap lower bound.
	if far := p.Len() - k.bound; far > k.Tube {
		return far
	}
	n := len(k.samples)
	best, bestD := 0, math.Inf(1)
	for i, s := range k.samples {
		if d := s.Sub(p).LenSq(); d < bestD {
			best, bestD = i, d
		}
	}
	step := 2 * math.Pi / float64(n)
	lo := float64(best-1) * step
	hi := float64(best+1) * step
	for range 16 {
		m1 := lo + (hi-lo)/3
		m2 := hi - (hi-lo)/3
		if k.curve(m1).Sub(p).LenSq() < k.curve(m2).Sub(p).LenSq() {
			hi = m2
		} else {
			lo = m1
		}
	}
	d := math.Sqrt(math.Min(bestD, k.curve(0.5*(lo+hi)).Sub(p).LenSq()))
	return d - k.Tube
}

func (k *TorusKnot) localIntervals(r math3d.Ray) Intervals { return k.march.intervals(r) }

func (k *TorusKnot) localNearest(r math3d.Ray, minT float64) (Intersection, bool) {
	return k.march.nearest(r, minT)
}

func (k *TorusKnot) localNormal(p math3d.Vec3) math3d.Vec3 { return k.march.normal(p) }

func (k *TorusKnot) localDistance(p math3d.Vec3) float64 { return k.distance(p) }

func (k *TorusKnot) localBounds() AABB {
	xz := k.Major + k.Minor + k.Tube
	y := k.Minor + k.Tube
	return NewAABB(math3d.V3(-xz, -y, -xz), math3d.V3(xz, y, xz))
}
