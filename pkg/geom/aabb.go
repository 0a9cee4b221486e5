package geom

import (
	"math"

	"github.com/taigrr/refract/pkg/math3d"
)

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// NewAABB creates an AABB from min and max points.
func NewAABB(min, max math3d.Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// EmptyAABB returns a box containing nothing. Growing it by any box
// yields that box.
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{Min: math3d.V3(inf, inf, inf), Max: math3d.V3(-inf, -inf, -inf)}
}

// InfiniteAABB returns a box containing everything.
func InfiniteAABB() AABB {
	inf := math.Inf(1)
	return AABB{Min: math3d.V3(-inf, -inf, -inf), Max: math3d.V3(inf, inf, inf)}
}

// IsEmpty reports whether the box contains no points.
func (b AABB) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// IsInfinite reports whether any extent is unbounded.
func (b AABB) IsInfinite() bool {
	for i := range 3 {
		if math.IsInf(b.Min.Axis(i), 0) || math.IsInf(b.Max.Axis(i), 0) {
			return true
		}
	}
	return false
}

// Center returns the center of the AABB.
func (b AABB) Center() math3d.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the dimensions of the AABB.
func (b AABB) Size() math3d.Vec3 {
	return b.Max.Sub(b.Min)
}

// Union returns the smallest box containing both boxes.
func (b AABB) Union(o AABB) AABB {
	return AABB{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// Expand grows the box by d on every side.
func (b AABB) Expand(d float64) AABB {
	v := math3d.V3(d, d, d)
	return AABB{Min: b.Min.Sub(v), Max: b.Max.Add(v)}
}

// Corners returns the 8 corners of the box.
func (b AABB) Corners() [8]math3d.Vec3 {
	return [8]math3d.Vec3{
		{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
	}
}

// Transform returns an AABB that bounds the box after transformation.
// Empty and infinite boxes stay empty and infinite.
func (b AABB) Transform(m math3d.Mat4) AABB {
	if b.IsEmpty() || b.IsInfinite() {
		return b
	}
	corners := b.Corners()
	out := EmptyAABB()
	for _, c := range corners {
		p := m.MulVec3(c)
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}

// ContainsPoint returns true if the point is inside the AABB.
func (b AABB) ContainsPoint(p math3d.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// IntersectRay clips the ray against the box with the slab method and
// returns the parameter range inside it. Negative parameters are
// included.
func (b AABB) IntersectRay(r math3d.Ray) (tmin, tmax float64, ok bool) {
	if b.IsEmpty() {
		return 0, 0, false
	}
	tmin, tmax = math.Inf(-1), math.Inf(1)
	for i := range 3 {
		o, d := r.Origin.Axis(i), r.Direction.Axis(i)
		lo, hi := b.Min.Axis(i), b.Max.Axis(i)
		if math.Abs(d) < parallelEpsilon {
			if o < lo || o > hi {
				return 0, 0, false
			}
			continue
		}
		t0, t1 := (lo-o)/d, (hi-o)/d
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tmin = math.Max(tmin, t0)
		tmax = math.Min(tmax, t1)
		if tmin > tmax {
			return 0, 0, false
		}
	}
	return tmin, tmax, true
}

// HitsRay reports whether the ray meets the box at some t in (minT, maxT).
func (b AABB) HitsRay(r math3d.Ray, minT, maxT float64) bool {
	if b.IsInfinite() {
		return true
	}
	t0, t1, ok := b.IntersectRay(r)
	return ok && t1 > minT && t0 < maxT
}
