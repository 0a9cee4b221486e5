package geom

import (
	"math"

	"github.com/taigrr/refract/pkg/math3d"
	"github.com/taigrr/refract/pkg/shade"
)

// parallelEpsilon guards divisions by direction components and
// determinants. Anything smaller is treated as zero.
const parallelEpsilon = 1e-12

// Shape is a renderable surface. The set of shapes is closed: every
// implementation lives in this package and embeds base.
//
// Points, normals and t values are expressed in the space the ray was
// given in. For a top-level shape that is world space; for a CSG operand
// or group child it is the parent's local space.
type Shape interface {
	// IntersectNearest returns the closest hit with t > Tolerance().
	IntersectNearest(r math3d.Ray) (Intersection, bool)
	// IntersectAll returns every entry/exit interval along the ray,
	// including those behind the origin.
	IntersectAll(r math3d.Ray) Intervals
	// NormalAt returns the unit outward normal at a point on the surface.
	NormalAt(p math3d.Vec3) math3d.Vec3

	SetTransform(m math3d.Mat4)
	Transform() math3d.Mat4
	InverseTransform() math3d.Mat4

	// Material returns the shape's material, or nil if none was set.
	Material() shade.Material
	SetMaterial(m shade.Material)

	// Bounds returns the box enclosing the shape, infinite for
	// unbounded surfaces.
	Bounds() AABB

	Tolerance() float64
	SetTolerance(eps float64)

	nearest(r math3d.Ray, minT float64) (Intersection, bool)
	surfaceDistance(p math3d.Vec3) float64
	setParent(world math3d.Mat4)
}

// kernel is the local-space geometry of a shape.
type kernel interface {
	localIntervals(r math3d.Ray) Intervals
	localNormal(p math3d.Vec3) math3d.Vec3
	// localDistance approximates the signed distance to the surface,
	// negative inside.
	localDistance(p math3d.Vec3) float64
	localBounds() AABB
}

// nearester is implemented by kernels with a cheaper nearest-hit path
// than building every interval.
type nearester interface {
	localNearest(r math3d.Ray, minT float64) (Intersection, bool)
}

// container is implemented by composite kernels.
type container interface {
	children() []Shape
}

// base holds the transform and material state shared by every shape and
// implements the Shape methods on top of a kernel.
type base struct {
	self   Shape
	kernel kernel

	transform math3d.Mat4 // local -> parent
	inverse   math3d.Mat4 // parent -> local
	normalMat math3d.Mat4
	identity  bool
	scaleHint float64 // approximate length scale of transform

	parent   math3d.Mat4 // parent -> world, for materials
	material shade.Material
	eps      float64
}

func (b *base) bind(self Shape, k kernel) {
	b.self = self
	b.kernel = k
	b.transform = math3d.Identity()
	b.inverse = math3d.Identity()
	b.normalMat = math3d.Identity()
	b.parent = math3d.Identity()
	b.identity = true
	b.scaleHint = 1
	b.eps = math3d.DefaultEpsilon
}

// SetTransform sets the local-to-parent transform. A singular matrix is
// replaced by identity and logged.
func (b *base) SetTransform(m math3d.Mat4) {
	inv, ok := m.AffineInverse()
	nm, nok := m.NormalMatrix()
	if !ok || !nok {
		logger.Warn("singular transform, using identity", "shape", shapeName(b.self), "det", m.Determinant())
		m, inv, nm = math3d.Identity(), math3d.Identity(), math3d.Identity()
	}
	b.transform = m
	b.inverse = inv
	b.normalMat = nm
	b.identity = m == math3d.Identity()
	b.scaleHint = math.Cbrt(math.Abs(m.Determinant()))
	if b.scaleHint == 0 {
		b.scaleHint = 1
	}
	b.propagate()
}

func (b *base) Transform() math3d.Mat4        { return b.transform }
func (b *base) InverseTransform() math3d.Mat4 { return b.inverse }
func (b *base) Material() shade.Material      { return b.material }
func (b *base) Tolerance() float64            { return b.eps }

// SetMaterial attaches m and tells it the shape's world-to-object
// transform.
func (b *base) SetMaterial(m shade.Material) {
	b.material = m
	b.notifyMaterial()
}

// SetTolerance sets the numerical tolerance used for hit rejection and
// interval comparisons. Composites pass it on to their children.
func (b *base) SetTolerance(eps float64) {
	if eps <= 0 {
		eps = math3d.DefaultEpsilon
	}
	b.eps = eps
	if c, ok := b.kernel.(container); ok {
		for _, child := range c.children() {
			child.SetTolerance(eps)
		}
	}
}

func (b *base) setParent(world math3d.Mat4) {
	b.parent = world
	b.propagate()
}

func (b *base) world() math3d.Mat4 {
	return b.parent.Mul(b.transform)
}

func (b *base) propagate() {
	b.notifyMaterial()
	if c, ok := b.kernel.(container); ok {
		w := b.world()
		for _, child := range c.children() {
			child.setParent(w)
		}
	}
}

func (b *base) notifyMaterial() {
	if b.material == nil {
		return
	}
	inv, ok := b.world().AffineInverse()
	if !ok {
		inv = math3d.Identity()
	}
	b.material.SetObjectTransform(inv)
}

func (b *base) toLocal(r math3d.Ray) (math3d.Ray, float64) {
	if b.identity {
		return r, 1
	}
	return r.Transform(b.inverse)
}

// toParent maps a local hit back onto ray r, whose parameter is scaled
// by 1/scale relative to the local ray.
func (b *base) toParent(h Intersection, r math3d.Ray, scale float64) Intersection {
	if !b.identity {
		h.T /= scale
		h.Point = r.At(h.T)
		h.Normal = b.normalMat.MulNormal(h.Normal)
	}
	if h.Shape == nil {
		h.Shape = b.self
	}
	return h
}

func (b *base) IntersectAll(r math3d.Ray) Intervals {
	local, scale := b.toLocal(r)
	if scale == 0 {
		return nil
	}
	ivs := b.kernel.localIntervals(local)
	for i := range ivs {
		ivs[i].In = b.toParent(ivs[i].In, r, scale)
		ivs[i].Out = b.toParent(ivs[i].Out, r, scale)
	}
	return ivs
}

func (b *base) IntersectNearest(r math3d.Ray) (Intersection, bool) {
	return b.nearest(r, b.eps)
}

func (b *base) nearest(r math3d.Ray, minT float64) (Intersection, bool) {
	local, scale := b.toLocal(r)
	if scale == 0 {
		return Intersection{}, false
	}
	localMin := minT * scale
	var (
		h  Intersection
		ok bool
	)
	if n, fast := b.kernel.(nearester); fast {
		h, ok = n.localNearest(local, localMin)
	} else {
		h, ok = b.kernel.localIntervals(local).Nearest(localMin)
	}
	if !ok {
		return Intersection{}, false
	}
	return b.toParent(h, r, scale), true
}

func (b *base) NormalAt(p math3d.Vec3) math3d.Vec3 {
	if b.identity {
		return b.kernel.localNormal(p).Normalize()
	}
	return b.normalMat.MulNormal(b.kernel.localNormal(b.inverse.MulVec3(p)))
}

func (b *base) surfaceDistance(p math3d.Vec3) float64 {
	if b.identity {
		return b.kernel.localDistance(p)
	}
	return b.kernel.localDistance(b.inverse.MulVec3(p)) * b.scaleHint
}

func (b *base) Bounds() AABB {
	lb := b.kernel.localBounds()
	if b.identity {
		return lb
	}
	return lb.Transform(b.transform)
}

func shapeName(s Shape) string {
	switch s.(type) {
	case *Sphere:
		return "sphere"
	case *Plane:
		return "plane"
	case *Cube:
		return "cube"
	case *Box:
		return "box"
	case *Cylinder:
		return "cylinder"
	case *Cone:
		return "cone"
	case *Triangle:
		return "triangle"
	case *Ellipsoid:
		return "ellipsoid"
	case *Hyperboloid:
		return "hyperboloid"
	case *Torus:
		return "torus"
	case *TorusKnot:
		return "torus knot"
	case *Billboard:
		return "billboard"
	case *Implicit:
		return "implicit"
	case *Group:
		return "group"
	case *CSG:
		return "csg"
	}
	return "shape"
}
