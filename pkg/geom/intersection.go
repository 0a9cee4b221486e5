package geom

import (
	"slices"

	"github.com/taigrr/refract/pkg/math3d"
)

// Intersection is a single ray/surface hit.
type Intersection struct {
	T      float64     // ray parameter; the hit lies at Ray.At(T)
	Point  math3d.Vec3 // hit position
	Normal math3d.Vec3 // unit outward surface normal
	Shape  Shape       // the shape whose material applies
}

// flipped returns the hit with its normal reversed.
func (h Intersection) flipped() Intersection {
	h.Normal = h.Normal.Negate()
	return h
}

// Interval is a span of the ray inside a solid, from In to Out.
// Zero-thickness surfaces produce intervals with In.T == Out.T.
type Interval struct {
	In, Out Intersection
}

// Degenerate reports whether the interval has no thickness within eps.
func (iv Interval) Degenerate(eps float64) bool {
	return iv.Out.T-iv.In.T <= eps
}

// point returns a degenerate interval for a single surface crossing.
func point(h Intersection) Interval {
	return Interval{In: h, Out: h}
}

// Intervals is a list of intervals along one ray, ordered by In.T.
type Intervals []Interval

// Sort orders the intervals by entry parameter.
func (ivs Intervals) Sort() {
	slices.SortFunc(ivs, func(a, b Interval) int {
		switch {
		case a.In.T < b.In.T:
			return -1
		case a.In.T > b.In.T:
			return 1
		}
		return 0
	})
}

// Valid reports whether the list is sorted by In.T, every interval has
// In.T <= Out.T, and no two intervals overlap by more than eps.
func (ivs Intervals) Valid(eps float64) bool {
	for i, iv := range ivs {
		if iv.In.T > iv.Out.T {
			return false
		}
		if i > 0 {
			prev := ivs[i-1]
			if iv.In.T < prev.In.T || iv.In.T < prev.Out.T-eps {
				return false
			}
		}
	}
	return true
}

// Nearest returns the first interval boundary with T > minT.
func (ivs Intervals) Nearest(minT float64) (Intersection, bool) {
	best := Intersection{}
	found := false
	for _, iv := range ivs {
		for _, h := range [2]Intersection{iv.In, iv.Out} {
			if h.T > minT && (!found || h.T < best.T) {
				best, found = h, true
			}
		}
		if found && best.T <= iv.In.T {
			break
		}
	}
	return best, found
}

// pairHits turns sorted surface crossings of a closed surface into
// in/out intervals. Crossings closer than eps are merged first, which
// removes the duplicate hits where a lateral surface meets a cap.
// A leftover unpaired crossing (a tangent graze) becomes a degenerate
// interval.
func pairHits(hits []Intersection, eps float64) Intervals {
	if len(hits) == 0 {
		return nil
	}
	slices.SortFunc(hits, func(a, b Intersection) int {
		switch {
		case a.T < b.T:
			return -1
		case a.T > b.T:
			return 1
		}
		return 0
	})
	uniq := hits[:1]
	for _, h := range hits[1:] {
		if h.T-uniq[len(uniq)-1].T > eps {
			uniq = append(uniq, h)
		}
	}
	out := make(Intervals, 0, (len(uniq)+1)/2)
	for i := 0; i+1 < len(uniq); i += 2 {
		out = append(out, Interval{In: uniq[i], Out: uniq[i+1]})
	}
	if len(uniq)%2 == 1 {
		out = append(out, point(uniq[len(uniq)-1]))
	}
	return out
}

// surfaceHits turns crossings of an open surface into degenerate
// intervals.
func surfaceHits(hits []Intersection) Intervals {
	out := make(Intervals, 0, len(hits))
	for _, h := range hits {
		out = append(out, point(h))
	}
	out.Sort()
	return out
}
