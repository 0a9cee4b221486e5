package geom

import (
	"math"

	"github.com/taigrr/refract/pkg/math3d"
)

// solveQuadratic returns the real roots of a*t² + b*t + c = 0 in
// ascending order. A vanishing a degrades to the linear solution, which
// is returned twice.
func solveQuadratic(a, b, c float64) (float64, float64, bool) {
	if math.Abs(a) < parallelEpsilon {
		if math.Abs(b) < parallelEpsilon {
			return 0, 0, false
		}
		t := -c / b
		return t, t, true
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, 0, false
	}
	sq := math.Sqrt(disc)
	// Avoid cancellation when b and sq have similar magnitude.
	var q float64
	if b < 0 {
		q = -0.5 * (b - sq)
	} else {
		q = -0.5 * (b + sq)
	}
	var t0, t1 float64
	if q == 0 {
		t0, t1 = 0, 0
	} else {
		t0, t1 = q/a, c/q
	}
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	return t0, t1, true
}

// Sphere is a sphere of the given radius centered on the local origin.
type Sphere struct {
	base
	Radius float64
}

// NewSphere creates a sphere.
func NewSphere(radius float64) *Sphere {
	s := &Sphere{Radius: radius}
	s.bind(s, s)
	return s
}

// NewUnitSphere creates a sphere of radius 1.
func NewUnitSphere() *Sphere {
	return NewSphere(1)
}

func (s *Sphere) hit(r math3d.Ray, t float64) Intersection {
	p := r.At(t)
	return Intersection{T: t, Point: p, Normal: s.localNormal(p)}
}

func (s *Sphere) localIntervals(r math3d.Ray) Intervals {
	o := r.Origin
	b := 2 * o.Dot(r.Direction)
	c := o.LenSq() - s.Radius*s.Radius
	t0, t1, ok := solveQuadratic(r.Direction.LenSq(), b, c)
	if !ok {
		return nil
	}
	return Intervals{{In: s.hit(r, t0), Out: s.hit(r, t1)}}
}

func (s *Sphere) localNearest(r math3d.Ray, minT float64) (Intersection, bool) {
	o := r.Origin
	t0, t1, ok := solveQuadratic(r.Direction.LenSq(), 2*o.Dot(r.Direction), o.LenSq()-s.Radius*s.Radius)
	switch {
	case !ok:
		return Intersection{}, false
	case t0 > minT:
		return s.hit(r, t0), true
	case t1 > minT:
		return s.hit(r, t1), true
	}
	return Intersection{}, false
}

func (s *Sphere) localNormal(p math3d.Vec3) math3d.Vec3 {
	n := p.Normalize()
	if n == (math3d.Vec3{}) {
		return math3d.Up()
	}
	return n
}

func (s *Sphere) localDistance(p math3d.Vec3) float64 {
	return p.Len() - s.Radius
}

func (s *Sphere) localBounds() AABB {
	r := s.Radius
	return NewAABB(math3d.V3(-r, -r, -r), math3d.V3(r, r, r))
}
