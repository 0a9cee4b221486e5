package geom

import (
	"math"

	"github.com/taigrr/refract/pkg/math3d"
)

// Box is an axis-aligned box centered on the local origin.
type Box struct {
	base
	HalfExtents math3d.Vec3
}

// NewBox creates a box with the given half extents.
func NewBox(halfExtents math3d.Vec3) *Box {
	b := &Box{HalfExtents: halfExtents.Abs()}
	b.bind(b, b)
	return b
}

// Cube is a box with equal half extents, by default the cube from
// (-1,-1,-1) to (1,1,1).
type Cube struct {
	Box
}

// NewCube creates a cube with the given half extent.
func NewCube(halfExtent float64) *Cube {
	h := math.Abs(halfExtent)
	c := &Cube{Box: Box{HalfExtents: math3d.V3(h, h, h)}}
	c.bind(c, &c.Box)
	return c
}

func (b *Box) localIntervals(r math3d.Ray) Intervals {
	tmin, tmax, ok := NewAABB(b.HalfExtents.Negate(), b.HalfExtents).IntersectRay(r)
	if !ok {
		return nil
	}
	in, out := r.At(tmin), r.At(tmax)
	return Intervals{{
		In:  Intersection{T: tmin, Point: in, Normal: b.localNormal(in)},
		Out: Intersection{T: tmax, Point: out, Normal: b.localNormal(out)},
	}}
}

// localNormal picks the face whose plane p lies closest to, relative to
// the box size.
func (b *Box) localNormal(p math3d.Vec3) math3d.Vec3 {
	h := b.HalfExtents
	best, axis := math.Inf(-1), 0
	for i := range 3 {
		hi := h.Axis(i)
		if hi == 0 {
			continue
		}
		if v := math.Abs(p.Axis(i)) / hi; v > best {
			best, axis = v, i
		}
	}
	var n math3d.Vec3
	sign := math.Copysign(1, p.Axis(axis))
	switch axis {
	case 0:
		n.X = sign
	case 1:
		n.Y = sign
	default:
		n.Z = sign
	}
	return n
}

func (b *Box) localDistance(p math3d.Vec3) float64 {
	q := p.Abs().Sub(b.HalfExtents)
	outside := q.Max(math3d.Zero3()).Len()
	inside := math.Min(q.MaxComponent(), 0)
	return outside + inside
}

func (b *Box) localBounds() AABB {
	return NewAABB(b.HalfExtents.Negate(), b.HalfExtents)
}
