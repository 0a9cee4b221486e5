package geom

import (
	"math"

	"github.com/taigrr/refract/pkg/math3d"
)

// Cone is a Y-axis cone with its base disc of radius Radius at y=0 and
// its apex at y=Height.
type Cone struct {
	base
	Radius float64
	Height float64
	Closed bool // base disc present
}

// NewCone creates a cone with a closed base.
func NewCone(radius, height float64) *Cone {
	c := &Cone{Radius: radius, Height: height, Closed: true}
	c.bind(c, c)
	return c
}

// NewOpenCone creates a cone without its base disc.
func NewOpenCone(radius, height float64) *Cone {
	c := NewCone(radius, height)
	c.Closed = false
	return c
}

// slope is the radius lost per unit of height.
func (c *Cone) slope() float64 {
	if c.Height == 0 {
		return 0
	}
	return c.Radius / c.Height
}

func (c *Cone) hits(r math3d.Ray) []Intersection {
	if c.Height <= 0 || c.Radius <= 0 {
		return nil
	}
	o, d := r.Origin, r.Direction
	k2 := c.slope() * c.slope()
	w := c.Height - o.Y
	hits := make([]Intersection, 0, 3)

	// x² + z² = k²(h - y)²
	a := d.X*d.X + d.Z*d.Z - k2*d.Y*d.Y
	b := 2 * (o.X*d.X + o.Z*d.Z + k2*w*d.Y)
	cc := o.X*o.X + o.Z*o.Z - k2*w*w
	if t0, t1, ok := solveQuadratic(a, b, cc); ok {
		for i, t := range [2]float64{t0, t1} {
			if i == 1 && t1 == t0 {
				break
			}
			p := r.At(t)
			if p.Y >= 0 && p.Y <= c.Height {
				hits = append(hits, Intersection{T: t, Point: p, Normal: c.lateralNormal(p)})
			}
		}
	}

	if c.Closed && math.Abs(d.Y) >= parallelEpsilon {
		t := -o.Y / d.Y
		p := r.At(t)
		if p.X*p.X+p.Z*p.Z <= c.Radius*c.Radius {
			hits = append(hits, Intersection{T: t, Point: p, Normal: math3d.V3(0, -1, 0)})
		}
	}
	return hits
}

func (c *Cone) lateralNormal(p math3d.Vec3) math3d.Vec3 {
	k2 := c.slope() * c.slope()
	n := math3d.V3(p.X, k2*(c.Height-p.Y), p.Z).Normalize()
	if n == (math3d.Vec3{}) {
		return math3d.Up()
	}
	return n
}

func (c *Cone) localIntervals(r math3d.Ray) Intervals {
	hits := c.hits(r)
	if !c.Closed {
		return surfaceHits(hits)
	}
	return pairHits(hits, c.eps)
}

func (c *Cone) localNormal(p math3d.Vec3) math3d.Vec3 {
	if c.Closed && math.Abs(p.Y) < c.eps {
		return math3d.V3(0, -1, 0)
	}
	return c.lateralNormal(p)
}

// localDistance measures in the (radial, height) half-plane, where the
// solid cone is the triangle (0,0), (Radius,0), (0,Height).
func (c *Cone) localDistance(p math3d.Vec3) float64 {
	rho := math.Hypot(p.X, p.Z)
	q := math3d.V2(rho, p.Y)
	d := segmentDistance(q, math3d.V2(c.Radius, 0), math3d.V2(0, c.Height))
	if c.Closed {
		d = math.Min(d, segmentDistance(q, math3d.V2(0, 0), math3d.V2(c.Radius, 0)))
		if p.Y >= 0 && rho <= c.slope()*(c.Height-p.Y) {
			return -d
		}
	}
	return d
}

func segmentDistance(p, a, b math3d.Vec2) float64 {
	abx, aby := b.X-a.X, b.Y-a.Y
	apx, apy := p.X-a.X, p.Y-a.Y
	l2 := abx*abx + aby*aby
	t := 0.0
	if l2 > 0 {
		t = math.Max(0, math.Min(1, (apx*abx+apy*aby)/l2))
	}
	return math.Hypot(apx-t*abx, apy-t*aby)
}

func (c *Cone) localBounds() AABB {
	r := c.Radius
	return NewAABB(math3d.V3(-r, 0, -r), math3d.V3(r, c.Height, r))
}
