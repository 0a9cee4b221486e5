package geom

import (
	"math"

	"github.com/taigrr/refract/pkg/math3d"
)

// Footprint selects the outline of a billboard.
type Footprint int

const (
	FootprintRect Footprint = iota
	FootprintEllipse
)

// Billboard is a flat quad or disc in the local z=0 plane facing +Z,
// bounded by half extents HalfWidth (X) and HalfHeight (Y).
type Billboard struct {
	base
	HalfWidth  float64
	HalfHeight float64
	Footprint  Footprint
}

// NewQuad creates a rectangular billboard.
func NewQuad(halfWidth, halfHeight float64) *Billboard {
	b := &Billboard{HalfWidth: math.Abs(halfWidth), HalfHeight: math.Abs(halfHeight)}
	b.bind(b, b)
	return b
}

// NewDisc creates an elliptical billboard with the given semi-axes.
func NewDisc(halfWidth, halfHeight float64) *Billboard {
	b := NewQuad(halfWidth, halfHeight)
	b.Footprint = FootprintEllipse
	return b
}

func (b *Billboard) inside(p math3d.Vec3) bool {
	if b.HalfWidth == 0 || b.HalfHeight == 0 {
		return false
	}
	if b.Footprint == FootprintEllipse {
		x, y := p.X/b.HalfWidth, p.Y/b.HalfHeight
		return x*x+y*y <= 1
	}
	return math.Abs(p.X) <= b.HalfWidth && math.Abs(p.Y) <= b.HalfHeight
}

func (b *Billboard) localIntervals(r math3d.Ray) Intervals {
	if math.Abs(r.Direction.Z) < parallelEpsilon {
		return nil
	}
	t := -r.Origin.Z / r.Direction.Z
	p := r.At(t)
	if !b.inside(p) {
		return nil
	}
	return Intervals{point(Intersection{T: t, Point: p, Normal: math3d.V3(0, 0, 1)})}
}

func (b *Billboard) localNormal(math3d.Vec3) math3d.Vec3 { return math3d.V3(0, 0, 1) }

func (b *Billboard) localDistance(p math3d.Vec3) float64 {
	var dx, dy float64
	if b.Footprint == FootprintEllipse {
		// Radial estimate, exact for circles.
		rx, ry := p.X/math.Max(b.HalfWidth, parallelEpsilon), p.Y/math.Max(b.HalfHeight, parallelEpsilon)
		k := math.Hypot(rx, ry)
		if k > 1 {
			dx = (k - 1) * math.Min(b.HalfWidth, b.HalfHeight)
		}
	} else {
		dx = math.Max(math.Abs(p.X)-b.HalfWidth, 0)
		dy = math.Max(math.Abs(p.Y)-b.HalfHeight, 0)
	}
	return math.Sqrt(dx*dx + dy*dy + p.Z*p.Z)
}

func (b *Billboard) localBounds() AABB {
	return NewAABB(math3d.V3(-b.HalfWidth, -b.HalfHeight, 0), math3d.V3(b.HalfWidth, b.HalfHeight, 0))
}
