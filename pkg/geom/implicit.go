package geom

import (
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/taigrr/refract/pkg/math3d"
)

// Implicit renders any sdfx solid by sphere marching its distance
// function. sdfx distances are exact or conservative for its primitives
// and boolean operations, which is what marching needs.
type Implicit struct {
	base
	SDF   sdf.SDF3
	march marcher
}

// NewImplicit wraps an sdfx solid.
func NewImplicit(s sdf.SDF3) *Implicit {
	im := &Implicit{SDF: s}
	im.march = marcher{sdf: im.distance, bounds: im.localBounds(), params: DefaultMarchParams()}
	im.bind(im, im)
	return im
}

// SetMarchParams replaces the marching accuracy parameters.
func (im *Implicit) SetMarchParams(p MarchParams) { im.march.params = p }

func (im *Implicit) distance(p math3d.Vec3) float64 {
	return im.SDF.Evaluate(v3.Vec{X: p.X, Y: p.Y, Z: p.Z})
}

func (im *Implicit) localIntervals(r math3d.Ray) Intervals { return im.march.intervals(r) }

func (im *Implicit) localNearest(r math3d.Ray, minT float64) (Intersection, bool) {
	return im.march.nearest(r, minT)
}

func (im *Implicit) localNormal(p math3d.Vec3) math3d.Vec3 { return im.march.normal(p) }

func (im *Implicit) localDistance(p math3d.Vec3) float64 { return im.distance(p) }

func (im *Implicit) localBounds() AABB {
	bb := im.SDF.BoundingBox()
	return NewAABB(math3d.V3(bb.Min.X, bb.Min.Y, bb.Min.Z), math3d.V3(bb.Max.X, bb.Max.Y, bb.Max.Z))
}

// Tessellate converts an sdfx solid into a group of triangles using
// uniform marching cubes with the given number of cells along the
// longest axis. The result renders with analytic triangle hits instead of
// marching.
func Tessellate(s sdf.SDF3, cells int) *Group {
	tris := render.ToTriangles(s, render.NewMarchingCubesUniform(max(cells, 8)))
	g := NewGroup()
	for _, tri := range tris {
		a, b, c := tri[0], tri[1], tri[2]
		g.Add(NewTriangle(
			math3d.V3(a.X, a.Y, a.Z),
			math3d.V3(b.X, b.Y, b.Z),
			math3d.V3(c.X, c.Y, c.Z),
		))
	}
	logger.Debug("tessellated implicit solid", "triangles", len(tris), "cells", cells)
	return g
}
