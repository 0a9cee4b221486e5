package geom

import (
	"math"

	"github.com/taigrr/refract/pkg/math3d"
)

// Group is a composite of child shapes sharing one transform, such as
// the triangles of a mesh. The group exclusively owns its children:
// a child's transform is relative to the group, and adding a shape to two
// groups is not supported.
type Group struct {
	base
	shapes []Shape
	bounds AABB // local bounds of all children
}

// NewGroup creates an empty group.
func NewGroup(children ...Shape) *Group {
	g := &Group{bounds: EmptyAABB()}
	g.bind(g, g)
	for _, c := range children {
		g.Add(c)
	}
	return g
}

// Add appends a child to the group.
func (g *Group) Add(s Shape) {
	g.shapes = append(g.shapes, s)
	g.bounds = g.bounds.Union(s.Bounds())
	s.SetTolerance(g.eps)
	s.setParent(g.world())
}

// Children returns the group's children in insertion order.
func (g *Group) Children() []Shape { return g.shapes }

// Len returns the number of children.
func (g *Group) Len() int { return len(g.shapes) }

func (g *Group) children() []Shape { return g.shapes }

// claim makes the group the reported shape for hits when it carries its
// own material, so one material can cover a whole mesh.
func (g *Group) claim(h Intersection) Intersection {
	if g.material != nil {
		h.Shape = g
	}
	return h
}

func (g *Group) localIntervals(r math3d.Ray) Intervals {
	if !g.bounds.HitsRay(r, math.Inf(-1), math.Inf(1)) {
		return nil
	}
	var (
		all     Intervals
		hits    []Intersection
		surface = true
	)
	for _, s := range g.shapes {
		ivs := s.IntersectAll(r)
		for _, iv := range ivs {
			surface = surface && iv.Degenerate(g.eps)
			hits = append(hits, iv.In)
		}
		all = append(all, ivs...)
	}
	// A group made only of surfaces, such as a triangle mesh, encloses
	// solid between alternate crossings.
	var merged Intervals
	if surface && len(hits) > 1 {
		merged = pairHits(hits, g.eps)
	} else {
		merged = Union(all, nil, g.eps)
	}
	for i := range merged {
		merged[i].In = g.claim(merged[i].In)
		merged[i].Out = g.claim(merged[i].Out)
	}
	return merged
}

func (g *Group) localNearest(r math3d.Ray, minT float64) (Intersection, bool) {
	if !g.bounds.HitsRay(r, minT, math.Inf(1)) {
		return Intersection{}, false
	}
	var (
		best  Intersection
		found bool
	)
	for _, s := range g.shapes {
		h, ok := s.nearest(r, minT)
		if ok && (!found || h.T < best.T) {
			best, found = h, true
		}
	}
	if !found {
		return Intersection{}, false
	}
	return g.claim(best), true
}

// localNormal uses the child whose surface is closest to p.
func (g *Group) localNormal(p math3d.Vec3) math3d.Vec3 {
	if s := closestSurface(p, g.shapes...); s != nil {
		return s.NormalAt(p)
	}
	return math3d.Up()
}

func (g *Group) localDistance(p math3d.Vec3) float64 {
	d := math.Inf(1)
	for _, s := range g.shapes {
		d = math.Min(d, s.surfaceDistance(p))
	}
	return d
}

func (g *Group) localBounds() AABB { return g.bounds }

func closestSurface(p math3d.Vec3, shapes ...Shape) Shape {
	var (
		best  Shape
		bestD = math.Inf(1)
	)
	for _, s := range shapes {
		if d := math.Abs(s.surfaceDistance(p)); d < bestD {
			best, bestD = s, d
		}
	}
	return best
}
