package geom

import (
	"math"

	"github.com/taigrr/refract/pkg/math3d"
)

// Op is a CSG boolean operation.
type Op int

const (
	OpUnion Op = iota
	OpIntersection
	OpDifference
)

func (o Op) String() string {
	switch o {
	case OpUnion:
		return "union"
	case OpIntersection:
		return "intersection"
	case OpDifference:
		return "difference"
	}
	return "unknown"
}

// CSG combines two operand shapes with a boolean operation on the
// intervals a ray spends inside each. The operands' transforms are
// relative to the CSG's own transform. A CSG exclusively owns its
// operands.
type CSG struct {
	base
	Op          Op
	Left, Right Shape
}

// NewCSG creates a CSG node.
func NewCSG(op Op, left, right Shape) *CSG {
	c := &CSG{Op: op, Left: left, Right: right}
	c.bind(c, c)
	left.SetTolerance(c.eps)
	right.SetTolerance(c.eps)
	return c
}

// NewUnion creates the union of a and b.
func NewUnion(a, b Shape) *CSG { return NewCSG(OpUnion, a, b) }

// NewIntersection creates the intersection of a and b.
func NewIntersection(a, b Shape) *CSG { return NewCSG(OpIntersection, a, b) }

// NewDifference creates a minus b.
func NewDifference(a, b Shape) *CSG { return NewCSG(OpDifference, a, b) }

func (c *CSG) children() []Shape { return []Shape{c.Left, c.Right} }

// Combine applies the node's operation to two interval lists.
func (c *CSG) Combine(a, b Intervals) Intervals {
	switch c.Op {
	case OpIntersection:
		return Intersect(a, b, c.eps)
	case OpDifference:
		return Subtract(a, b, c.eps)
	default:
		return Union(a, b, c.eps)
	}
}

func (c *CSG) localIntervals(r math3d.Ray) Intervals {
	out := c.Combine(c.Left.IntersectAll(r), c.Right.IntersectAll(r))
	if c.material != nil {
		for i := range out {
			out[i].In.Shape = c
			out[i].Out.Shape = c
		}
	}
	return out
}

// localNormal cannot know which operand produced a point, so it uses the
// operand whose surface is closest. Hits from IntersectNearest carry the
// operand's own normal and do not go through here.
func (c *CSG) localNormal(p math3d.Vec3) math3d.Vec3 {
	s := closestSurface(p, c.Left, c.Right)
	n := s.NormalAt(p)
	if c.Op == OpDifference && s == c.Right {
		return n.Negate()
	}
	return n
}

func (c *CSG) localDistance(p math3d.Vec3) float64 {
	a, b := c.Left.surfaceDistance(p), c.Right.surfaceDistance(p)
	switch c.Op {
	case OpIntersection:
		return math.Max(a, b)
	case OpDifference:
		return math.Max(a, -b)
	default:
		return math.Min(a, b)
	}
}

func (c *CSG) localBounds() AABB {
	l, r := c.Left.Bounds(), c.Right.Bounds()
	switch c.Op {
	case OpIntersection:
		box := AABB{Min: l.Min.Max(r.Min), Max: l.Max.Min(r.Max)}
		if box.IsEmpty() {
			return EmptyAABB()
		}
		return box
	case OpDifference:
		return l
	default:
		return l.Union(r)
	}
}

// normalize sorts a list and merges overlapping or touching intervals.
func normalize(ivs Intervals, eps float64) Intervals {
	if len(ivs) == 0 {
		return nil
	}
	sorted := make(Intervals, len(ivs))
	copy(sorted, ivs)
	sorted.Sort()
	out := sorted[:1]
	for _, iv := range sorted[1:] {
		last := &out[len(out)-1]
		if iv.In.T <= last.Out.T+eps {
			if iv.Out.T > last.Out.T {
				last.Out = iv.Out
			}
			continue
		}
		out = append(out, iv)
	}
	return out
}

// Union merges both lists. Intervals that overlap or touch within eps
// become one, keeping the earliest entry and latest exit hit.
func Union(a, b Intervals, eps float64) Intervals {
	all := make(Intervals, 0, len(a)+len(b))
	all = append(all, a...)
	all = append(all, b...)
	return normalize(all, eps)
}

// Intersect keeps the spans inside both lists. Each boundary takes the
// hit of the operand that defines it; when both operands' boundaries
// coincide within eps their hit data is averaged.
func Intersect(a, b Intervals, eps float64) Intervals {
	a, b = normalize(a, eps), normalize(b, eps)
	var out Intervals
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		x, y := a[i], b[j]
		lo := math.Max(x.In.T, y.In.T)
		hi := math.Min(x.Out.T, y.Out.T)
		if lo < hi-eps {
			out = append(out, Interval{
				In:  pickBoundary(x.In, y.In, eps, true),
				Out: pickBoundary(x.Out, y.Out, eps, false),
			})
		}
		if x.Out.T < y.Out.T {
			i++
		} else {
			j++
		}
	}
	return out
}

// pickBoundary chooses the later entry (later=true) or earlier exit.
func pickBoundary(a, b Intersection, eps float64, later bool) Intersection {
	if math.Abs(a.T-b.T) <= eps {
		return average(a, b)
	}
	if (a.T > b.T) == later {
		return a
	}
	return b
}

func average(a, b Intersection) Intersection {
	n := a.Normal.Add(b.Normal).Normalize()
	if n == (math3d.Vec3{}) {
		n = a.Normal
	}
	return Intersection{
		T:      0.5 * (a.T + b.T),
		Point:  a.Point.Lerp(b.Point, 0.5),
		Normal: n,
		Shape:  a.Shape,
	}
}

// Subtract removes from each interval of a the spans covered by b.
// Boundaries created by b use b's actual hits with reversed normals rather
// than data interpolated across a's span, since the surface of b faces into
// the remaining solid. Zero-thickness intervals of b remove nothing.
func Subtract(a, b Intervals, eps float64) Intervals {
	a, b = normalize(a, eps), normalize(b, eps)
	var out Intervals
	for _, iv := range a {
		cur := iv
		alive := true
		for _, cut := range b {
			if cut.Degenerate(eps) || cut.Out.T <= cur.In.T+eps {
				continue
			}
			if cut.In.T >= cur.Out.T-eps {
				break
			}
			if cut.In.T > cur.In.T+eps {
				out = append(out, Interval{In: cur.In, Out: cut.In.flipped()})
			}
			if cut.Out.T < cur.Out.T-eps {
				cur.In = cut.Out.flipped()
				continue
			}
			alive = false
			break
		}
		if alive {
			out = append(out, cur)
		}
	}
	return out
}
