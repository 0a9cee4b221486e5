package geom

import (
	"math"

	"github.com/taigrr/refract/pkg/math3d"
)

// baryEpsilon widens the barycentric acceptance range so rays through a
// shared edge of two mesh triangles hit at least one of them.
const baryEpsilon = 1e-9

// Triangle is a flat triangle. Both faces are hit.
type Triangle struct {
	base
	V0, V1, V2 math3d.Vec3

	// Optional per-vertex normals for smooth shading. Zero vectors mean
	// the flat face normal is used.
	N0, N1, N2 math3d.Vec3

	e1, e2     math3d.Vec3
	normal     math3d.Vec3
	degenerate bool
}

// NewTriangle creates a triangle from three vertices in counter-clockwise
// order as seen from the front face.
func NewTriangle(v0, v1, v2 math3d.Vec3) *Triangle {
	t := &Triangle{V0: v0, V1: v1, V2: v2}
	t.e1 = v1.Sub(v0)
	t.e2 = v2.Sub(v0)
	cross := t.e1.Cross(t.e2)
	t.degenerate = cross.NearZero(parallelEpsilon)
	t.normal = cross.Normalize()
	t.bind(t, t)
	return t
}

// NewSmoothTriangle creates a triangle that interpolates vertex normals.
func NewSmoothTriangle(v0, v1, v2, n0, n1, n2 math3d.Vec3) *Triangle {
	t := NewTriangle(v0, v1, v2)
	t.N0, t.N1, t.N2 = n0.Normalize(), n1.Normalize(), n2.Normalize()
	return t
}

func (tr *Triangle) smooth() bool {
	return tr.N0 != (math3d.Vec3{}) && tr.N1 != (math3d.Vec3{}) && tr.N2 != (math3d.Vec3{})
}

// mollerTrumbore returns the ray parameter and barycentric coordinates
// of the hit.
func (tr *Triangle) mollerTrumbore(r math3d.Ray) (t, u, v float64, ok bool) {
	if tr.degenerate {
		return 0, 0, 0, false
	}
	pvec := r.Direction.Cross(tr.e2)
	det := tr.e1.Dot(pvec)
	if math.Abs(det) < parallelEpsilon {
		return 0, 0, 0, false
	}
	inv := 1 / det
	tvec := r.Origin.Sub(tr.V0)
	u = tvec.Dot(pvec) * inv
	if u < -baryEpsilon || u > 1+baryEpsilon {
		return 0, 0, 0, false
	}
	qvec := tvec.Cross(tr.e1)
	v = r.Direction.Dot(qvec) * inv
	if v < -baryEpsilon || u+v > 1+baryEpsilon {
		return 0, 0, 0, false
	}
	return tr.e2.Dot(qvec) * inv, u, v, true
}

func (tr *Triangle) hit(r math3d.Ray, t, u, v float64) Intersection {
	n := tr.normal
	if tr.smooth() {
		n = tr.N0.Scale(1 - u - v).Add(tr.N1.Scale(u)).Add(tr.N2.Scale(v)).Normalize()
		if n == (math3d.Vec3{}) {
			n = tr.normal
		}
	}
	return Intersection{T: t, Point: r.At(t), Normal: n}
}

func (tr *Triangle) localIntervals(r math3d.Ray) Intervals {
	t, u, v, ok := tr.mollerTrumbore(r)
	if !ok {
		return nil
	}
	return Intervals{point(tr.hit(r, t, u, v))}
}

func (tr *Triangle) localNearest(r math3d.Ray, minT float64) (Intersection, bool) {
	t, u, v, ok := tr.mollerTrumbore(r)
	if !ok || t <= minT {
		return Intersection{}, false
	}
	return tr.hit(r, t, u, v), true
}

func (tr *Triangle) localNormal(p math3d.Vec3) math3d.Vec3 {
	if !tr.smooth() {
		return tr.normal
	}
	// Barycentrics of p projected onto the triangle's plane.
	v0p := p.Sub(tr.V0)
	d00, d01, d11 := tr.e1.Dot(tr.e1), tr.e1.Dot(tr.e2), tr.e2.Dot(tr.e2)
	d20, d21 := v0p.Dot(tr.e1), v0p.Dot(tr.e2)
	den := d00*d11 - d01*d01
	if math.Abs(den) < parallelEpsilon {
		return tr.normal
	}
	u := (d11*d20 - d01*d21) / den
	v := (d00*d21 - d01*d20) / den
	return tr.N0.Scale(1 - u - v).Add(tr.N1.Scale(u)).Add(tr.N2.Scale(v)).Normalize()
}

// localDistance is the unsigned distance to the triangle's plane, which
// is all the composites need to pick a nearby surface.
func (tr *Triangle) localDistance(p math3d.Vec3) float64 {
	return math.Abs(p.Sub(tr.V0).Dot(tr.normal))
}

func (tr *Triangle) localBounds() AABB {
	return NewAABB(tr.V0.Min(tr.V1).Min(tr.V2), tr.V0.Max(tr.V1).Max(tr.V2))
}
