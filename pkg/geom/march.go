package geom

import (
	"math"

	"github.com/taigrr/refract/pkg/math3d"
)

// MarchParams tune sphere marching for shapes without a closed-form
// intersection. Smaller thresholds and steps are more accurate and
// slower; MaxSteps bounds the work per ray.
type MarchParams struct {
	HitThreshold float64 // distance below which the ray is on the surface
	MinStep      float64 // smallest advance per step
	MaxDistance  float64 // march length limit, in local units
	MaxSteps     int
	NormalDelta  float64 // central difference offset for normals
}

// DefaultMarchParams returns parameters suited to shapes of unit scale.
func DefaultMarchParams() MarchParams {
	return MarchParams{
		HitThreshold: 1e-3,
		MinStep:      1e-3,
		MaxDistance:  100,
		MaxSteps:     512,
		NormalDelta:  1e-4,
	}
}

// bisectSteps refines a bracketed surface crossing.
const bisectSteps = 24

// marcher sphere-marches a signed distance function within a bounding
// box.
type marcher struct {
	sdf    func(p math3d.Vec3) float64
	grad   func(p math3d.Vec3) math3d.Vec3 // exact normal, if known
	bounds AABB
	params MarchParams
}

func (m *marcher) step(d float64) float64 {
	return math.Max(math.Abs(d)*0.5, m.params.MinStep)
}

// bisect finds the zero crossing of the SDF between a (outside) and
// b (inside), or the reverse.
func (m *marcher) bisect(r math3d.Ray, a, b float64) float64 {
	insideA := m.sdf(r.At(a)) < 0
	for range bisectSteps {
		mid := 0.5 * (a + b)
		if (m.sdf(r.At(mid)) < 0) == insideA {
			a = mid
		} else {
			b = mid
		}
	}
	return 0.5 * (a + b)
}

// span returns the parameter range to march, clipped to the bounds and
// to MaxDistance from start. clipped reports whether start lies inside
// the bounds, in which case the ray may begin on the surface.
func (m *marcher) span(r math3d.Ray, start float64) (t0, t1 float64, clipped, ok bool) {
	t0, t1, ok = m.bounds.Expand(4 * m.params.HitThreshold).IntersectRay(r)
	if !ok || t1 < start {
		return 0, 0, false, false
	}
	if start > t0 {
		t0, clipped = start, true
	}
	t1 = math.Min(t1, t0+m.params.MaxDistance)
	return t0, t1, clipped, true
}

func (m *marcher) hit(r math3d.Ray, t float64) Intersection {
	p := r.At(t)
	if m.grad != nil {
		return Intersection{T: t, Point: p, Normal: m.grad(p)}
	}
	return Intersection{T: t, Point: p, Normal: m.normal(p)}
}

// entry resolves the surface position once a sample at t with distance
// d has come within the threshold. prev is the last sample outside.
func (m *marcher) entry(r math3d.Ray, prev, t, d float64) float64 {
	if d < 0 {
		return m.bisect(r, prev, t)
	}
	return t + d
}

// intervals marches the whole bounded span of the ray, tracking
// inside = distance < threshold.
func (m *marcher) intervals(r math3d.Ray) Intervals {
	t0, t1, _, ok := m.span(r, math.Inf(-1))
	if !ok {
		return nil
	}
	var (
		out      Intervals
		inside   bool
		in       Intersection
		lastNeg  = t0
		prev     = t0
		t        = t0
		thr      = m.params.HitThreshold
		maxSteps = m.params.MaxSteps
	)
	for i := 0; i < maxSteps && t <= t1; i++ {
		d := m.sdf(r.At(t))
		switch {
		case !inside && d < thr:
			inT := m.entry(r, prev, t, d)
			in = m.hit(r, inT)
			inside = true
			lastNeg = inT
		case inside && d >= thr:
			outT := m.bisect(r, lastNeg, t)
			out = append(out, Interval{In: in, Out: m.hit(r, outT)})
			inside = false
		case inside && d < 0:
			lastNeg = t
		}
		prev = t
		t += m.step(d)
	}
	if inside {
		// Ran out of steps or bounds while inside: close at the last
		// inside sample.
		out = append(out, Interval{In: in, Out: m.hit(r, lastNeg)})
	}
	return out
}

// nearest marches from minT to the first surface crossing, which is an
// exit if the ray starts inside.
func (m *marcher) nearest(r math3d.Ray, minT float64) (Intersection, bool) {
	t0, t1, clipped, ok := m.span(r, minT)
	if !ok {
		return Intersection{}, false
	}
	thr := m.params.HitThreshold
	d0 := m.sdf(r.At(t0))
	startInside := d0 < 0
	// A ray leaving the surface it was spawned on starts within the
	// threshold; ignore that surface until the ray is clear of it.
	leaving := clipped && !startInside && d0 < thr
	prev, t := t0, t0
	for range m.params.MaxSteps {
		if t > t1 {
			break
		}
		d := m.sdf(r.At(t))
		switch {
		case startInside:
			if d >= 0 {
				if hitT := m.bisect(r, prev, t); hitT > minT {
					return m.hit(r, hitT), true
				}
			}
		case leaving:
			if d >= thr {
				leaving = false
			} else if d < 0 {
				startInside = true
			}
		case d < thr:
			if hitT := m.entry(r, prev, t, d); hitT > minT {
				return m.hit(r, hitT), true
			}
		}
		prev = t
		t += m.step(d)
	}
	return Intersection{}, false
}

// normal estimates the SDF gradient with central differences.
func (m *marcher) normal(p math3d.Vec3) math3d.Vec3 {
	h := m.params.NormalDelta
	dx := m.sdf(p.Add(math3d.V3(h, 0, 0))) - m.sdf(p.Sub(math3d.V3(h, 0, 0)))
	dy := m.sdf(p.Add(math3d.V3(0, h, 0))) - m.sdf(p.Sub(math3d.V3(0, h, 0)))
	dz := m.sdf(p.Add(math3d.V3(0, 0, h))) - m.sdf(p.Sub(math3d.V3(0, 0, h)))
	n := math3d.V3(dx, dy, dz).Normalize()
	if n == (math3d.Vec3{}) {
		return math3d.Up()
	}
	return n
}
