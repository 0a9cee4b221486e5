package render

import (
	"github.com/taigrr/refract/pkg/geom"
	"github.com/taigrr/refract/pkg/math3d"
)

// ClipPlane is a plane Ax + By + Cz + D = 0 where (A, B, C) is the normal.
type ClipPlane struct {
	Normal math3d.Vec3
	D      float64
}

// Normalize normalizes the plane equation so the normal has unit length.
func (p *ClipPlane) Normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1.0 / l)
	p.D /= l
}

// DistanceToPoint returns the signed distance from the plane to a point.
// Positive = in front (same side as normal), negative = behind.
func (p ClipPlane) DistanceToPoint(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum represents the 6 planes of a view frustum.
// Planes are ordered: Left, Right, Bottom, Top, Near, Far.
// Each plane's normal points inward (toward the center of the frustum).
type Frustum struct {
	Planes [6]ClipPlane
}

// Frustum plane indices.
const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// NewFrustumFromMatrix extracts frustum planes from a view-projection matrix
// with the Gribb/Hartmann method. The resulting normals point inward.
func NewFrustumFromMatrix(m math3d.Mat4) Frustum {
	// For column-major m, row i element j is at m[i + j*4].
	row := func(i int) (float64, float64, float64, float64) {
		return m[i], m[i+4], m[i+8], m[i+12]
	}
	r0x, r0y, r0z, r0w := row(0)
	r1x, r1y, r1z, r1w := row(1)
	r2x, r2y, r2z, r2w := row(2)
	r3x, r3y, r3z, r3w := row(3)

	var f Frustum
	f.Planes[FrustumLeft] = ClipPlane{math3d.V3(r3x+r0x, r3y+r0y, r3z+r0z), r3w + r0w}
	f.Planes[FrustumRight] = ClipPlane{math3d.V3(r3x-r0x, r3y-r0y, r3z-r0z), r3w - r0w}
	f.Planes[FrustumBottom] = ClipPlane{math3d.V3(r3x+r1x, r3y+r1y, r3z+r1z), r3w + r1w}
	f.Planes[FrustumTop] = ClipPlane{math3d.V3(r3x-r1x, r3y-r1y, r3z-r1z), r3w - r1w}
	f.Planes[FrustumNear] = ClipPlane{math3d.V3(r3x+r2x, r3y+r2y, r3z+r2z), r3w + r2w}
	f.Planes[FrustumFar] = ClipPlane{math3d.V3(r3x-r2x, r3y-r2y, r3z-r2z), r3w - r2w}

	for i := range f.Planes {
		f.Planes[i].Normalize()
	}
	return f
}

// IntersectAABB tests if the box intersects or is inside the frustum.
// Empty boxes are never visible and unbounded ones always are.
// Uses the "positive vertex" test for early rejection.
func (f Frustum) IntersectAABB(box geom.AABB) bool {
	if box.IsEmpty() {
		return false
	}
	if box.IsInfinite() {
		return true
	}
	for i := range f.Planes {
		plane := f.Planes[i]

		// The corner furthest along the plane normal. If it is outside,
		// the whole box is.
		pVertex := math3d.V3(
			selectComponent(plane.Normal.X >= 0, box.Max.X, box.Min.X),
			selectComponent(plane.Normal.Y >= 0, box.Max.Y, box.Min.Y),
			selectComponent(plane.Normal.Z >= 0, box.Max.Z, box.Min.Z),
		)
		if plane.DistanceToPoint(pVertex) < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint tests if a point is inside the frustum.
func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}

// IntersectsSphere tests if a sphere intersects the frustum.
func (f Frustum) IntersectsSphere(center math3d.Vec3, radius float64) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceToPoint(center) < -radius {
			return false
		}
	}
	return true
}

func selectComponent(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}

// Frustum returns the current view frustum of the camera.
func (c *Camera) Frustum() Frustum {
	return NewFrustumFromMatrix(c.ViewProjectionMatrix())
}
