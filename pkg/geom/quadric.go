package geom

import (
	"math"

	"github.com/taigrr/refract/pkg/math3d"
)

// Ellipsoid is centered on the local origin with semi-axes A, B and C
// along X, Y and Z.
type Ellipsoid struct {
	base
	A, B, C float64
}

// NewEllipsoid creates an ellipsoid.
func NewEllipsoid(a, b, c float64) *Ellipsoid {
	e := &Ellipsoid{A: math.Abs(a), B: math.Abs(b), C: math.Abs(c)}
	e.bind(e, e)
	return e
}

func (e *Ellipsoid) axes() math3d.Vec3 { return math3d.V3(e.A, e.B, e.C) }

func (e *Ellipsoid) localIntervals(r math3d.Ray) Intervals {
	if e.A == 0 || e.B == 0 || e.C == 0 {
		return nil
	}
	// Squash into the unit sphere; t is unchanged by the scaling.
	inv := math3d.V3(1/e.A, 1/e.B, 1/e.C)
	o := r.Origin.Mul(inv)
	d := r.Direction.Mul(inv)
	t0, t1, ok := solveQuadratic(d.LenSq(), 2*o.Dot(d), o.LenSq()-1)
	if !ok {
		return nil
	}
	p0, p1 := r.At(t0), r.At(t1)
	return Intervals{{
		In:  Intersection{T: t0, Point: p0, Normal: e.localNormal(p0)},
		Out: Intersection{T: t1, Point: p1, Normal: e.localNormal(p1)},
	}}
}

func (e *Ellipsoid) localNormal(p math3d.Vec3) math3d.Vec3 {
	a := e.axes()
	n := math3d.V3(p.X/(a.X*a.X), p.Y/(a.Y*a.Y), p.Z/(a.Z*a.Z)).Normalize()
	if n == (math3d.Vec3{}) {
		return math3d.Up()
	}
	return n
}

// localDistance uses the first-order ellipsoid distance bound.
func (e *Ellipsoid) localDistance(p math3d.Vec3) float64 {
	a := e.axes()
	k0 := math3d.V3(p.X/a.X, p.Y/a.Y, p.Z/a.Z).Len()
	k1 := math3d.V3(p.X/(a.X*a.X), p.Y/(a.Y*a.Y), p.Z/(a.Z*a.Z)).Len()
	if k1 == 0 {
		return -math.Min(a.X, math.Min(a.Y, a.Z))
	}
	return k0 * (k0 - 1) / k1
}

func (e *Ellipsoid) localBounds() AABB {
	a := e.axes()
	return NewAABB(a.Negate(), a)
}

// Hyperboloid is a hyperboloid of one sheet around the Y axis,
//
//	x²/A² + z²/C² - y²/B² = 1
//
// cut to |y| <= Height/2. With caps the solid is the waisted region
// inside the sheet; without them it is an open surface.
type Hyperboloid struct {
	base
	A, B, C float64
	Height  float64
	Closed  bool
}

// NewHyperboloid creates a capped hyperboloid.
func NewHyperboloid(a, b, c, height float64) *Hyperboloid {
	h := &Hyperboloid{A: math.Abs(a), B: math.Abs(b), C: math.Abs(c), Height: math.Abs(height), Closed: true}
	h.bind(h, h)
	return h
}

// NewOpenHyperboloid creates a hyperboloid without caps.
func NewOpenHyperboloid(a, b, c, height float64) *Hyperboloid {
	h := NewHyperboloid(a, b, c, height)
	h.Closed = false
	return h
}

func (h *Hyperboloid) implicit(p math3d.Vec3) float64 {
	return p.X*p.X/(h.A*h.A) + p.Z*p.Z/(h.C*h.C) - p.Y*p.Y/(h.B*h.B) - 1
}

func (h *Hyperboloid) hits(r math3d.Ray) []Intersection {
	if h.A == 0 || h.B == 0 || h.C == 0 {
		return nil
	}
	o, d := r.Origin, r.Direction
	ia, ib, ic := 1/(h.A*h.A), 1/(h.B*h.B), 1/(h.C*h.C)
	half := h.Height / 2
	hits := make([]Intersection, 0, 4)

	qa := d.X*d.X*ia + d.Z*d.Z*ic - d.Y*d.Y*ib
	qb := 2 * (o.X*d.X*ia + o.Z*d.Z*ic - o.Y*d.Y*ib)
	qc := o.X*o.X*ia + o.Z*o.Z*ic - o.Y*o.Y*ib - 1
	if t0, t1, ok := solveQuadratic(qa, qb, qc); ok {
		for i, t := range [2]float64{t0, t1} {
			if i == 1 && t1 == t0 {
				break
			}
			p := r.At(t)
			if math.Abs(p.Y) <= half {
				hits = append(hits, Intersection{T: t, Point: p, Normal: h.lateralNormal(p)})
			}
		}
	}

	if h.Closed && math.Abs(d.Y) >= parallelEpsilon {
		limit := 1 + half*half*ib
		for _, y := range [2]float64{-half, half} {
			t := (y - o.Y) / d.Y
			p := r.At(t)
			if p.X*p.X*ia+p.Z*p.Z*ic <= limit {
				hits = append(hits, Intersection{T: t, Point: p, Normal: math3d.V3(0, math.Copysign(1, y), 0)})
			}
		}
	}
	return hits
}

func (h *Hyperboloid) lateralNormal(p math3d.Vec3) math3d.Vec3 {
	n := math3d.V3(p.X/(h.A*h.A), -p.Y/(h.B*h.B), p.Z/(h.C*h.C)).Normalize()
	if n == (math3d.Vec3{}) {
		return math3d.Right()
	}
	return n
}

func (h *Hyperboloid) localIntervals(r math3d.Ray) Intervals {
	hits := h.hits(r)
	if !h.Closed {
		return surfaceHits(hits)
	}
	return pairHits(hits, h.eps)
}

func (h *Hyperboloid) localNormal(p math3d.Vec3) math3d.Vec3 {
	if h.Closed && math.Abs(math.Abs(p.Y)-h.Height/2) < h.eps && h.implicit(p) < 0 {
		return math3d.V3(0, math.Copysign(1, p.Y), 0)
	}
	return h.lateralNormal(p)
}

// localDistance divides the implicit function by its gradient length,
// a first-order estimate, and intersects it with the height slab.
func (h *Hyperboloid) localDistance(p math3d.Vec3) float64 {
	g := math3d.V3(2*p.X/(h.A*h.A), -2*p.Y/(h.B*h.B), 2*p.Z/(h.C*h.C)).Len()
	d := h.implicit(p)
	if g > 0 {
		d /= g
	}
	if !h.Closed {
		return math.Abs(d)
	}
	return math.Max(d, math.Abs(p.Y)-h.Height/2)
}

func (h *Hyperboloid) localBounds() AABB {
	half := h.Height / 2
	s := math.Sqrt(1 + half*half/(h.B*h.B))
	return NewAABB(math3d.V3(-h.A*s, -half, -h.C*s), math3d.V3(h.A*s, half, h.C*s))
}
