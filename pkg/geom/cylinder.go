package geom

import (
	"math"

	"github.com/taigrr/refract/pkg/math3d"
)

// Cylinder is a Y-axis cylinder centered on the local origin, spanning
// y in [-Height/2, Height/2]. An open cylinder has no caps and behaves as
// a surface rather than a solid in CSG.
type Cylinder struct {
	base
	Radius float64
	Height float64
	Closed bool
}

// NewCylinder creates a capped cylinder.
func NewCylinder(radius, height float64) *Cylinder {
	c := &Cylinder{Radius: radius, Height: height, Closed: true}
	c.bind(c, c)
	return c
}

// NewOpenCylinder creates a cylinder tube without caps.
func NewOpenCylinder(radius, height float64) *Cylinder {
	c := NewCylinder(radius, height)
	c.Closed = false
	return c
}

func (c *Cylinder) hits(r math3d.Ray) []Intersection {
	o, d := r.Origin, r.Direction
	half := c.Height / 2
	hits := make([]Intersection, 0, 4)

	a := d.X*d.X + d.Z*d.Z
	if a >= parallelEpsilon {
		b := 2 * (o.X*d.X + o.Z*d.Z)
		cc := o.X*o.X + o.Z*o.Z - c.Radius*c.Radius
		if t0, t1, ok := solveQuadratic(a, b, cc); ok {
			for _, t := range [2]float64{t0, t1} {
				p := r.At(t)
				if p.Y >= -half && p.Y <= half {
					hits = append(hits, Intersection{T: t, Point: p, Normal: math3d.V3(p.X, 0, p.Z).Normalize()})
				}
			}
			if t0 == t1 && len(hits) == 2 {
				hits = hits[:1]
			}
		}
	}

	if c.Closed && math.Abs(d.Y) >= parallelEpsilon {
		r2 := c.Radius * c.Radius
		for _, y := range [2]float64{-half, half} {
			t := (y - o.Y) / d.Y
			p := r.At(t)
			if p.X*p.X+p.Z*p.Z <= r2 {
				hits = append(hits, Intersection{T: t, Point: p, Normal: math3d.V3(0, math.Copysign(1, y), 0)})
			}
		}
	}
	return hits
}

func (c *Cylinder) localIntervals(r math3d.Ray) Intervals {
	hits := c.hits(r)
	if !c.Closed {
		return surfaceHits(hits)
	}
	return pairHits(hits, c.eps)
}

func (c *Cylinder) localNormal(p math3d.Vec3) math3d.Vec3 {
	half := c.Height / 2
	rho := math.Hypot(p.X, p.Z)
	if c.Closed {
		capDist := half - math.Abs(p.Y)
		if capDist < c.Radius-rho || rho < c.eps {
			return math3d.V3(0, math.Copysign(1, p.Y), 0)
		}
	}
	return math3d.V3(p.X, 0, p.Z).Normalize()
}

func (c *Cylinder) localDistance(p math3d.Vec3) float64 {
	dx := math.Hypot(p.X, p.Z) - c.Radius
	dy := math.Abs(p.Y) - c.Height/2
	if !c.Closed {
		return math.Hypot(dx, math.Max(dy, 0))
	}
	return math.Hypot(math.Max(dx, 0), math.Max(dy, 0)) + math.Min(math.Max(dx, dy), 0)
}

func (c *Cylinder) localBounds() AABB {
	r, h := c.Radius, c.Height/2
	return NewAABB(math3d.V3(-r, -h, -r), math3d.V3(r, h, r))
}
