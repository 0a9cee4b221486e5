// Package scene holds the shapes and lights of a render and answers the
// ray queries the integrator needs.
package scene

import (
	"math"
	"os"

	"github.com/charmbracelet/log"

	"github.com/taigrr/refract/pkg/geom"
	"github.com/taigrr/refract/pkg/math3d"
	"github.com/taigrr/refract/pkg/shade"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "scene"})

// SetLogger replaces the package logger.
func SetLogger(l *log.Logger) {
	logger = l
}

// Scene is an ordered collection of shapes and lights. Shapes and lights
// must not be added or transformed while a render is running; all queries
// are read-only and safe for concurrent use.
type Scene struct {
	Shapes     []geom.Shape
	Lights     []shade.Light
	Background shade.Color
	// Tolerance is the numerical epsilon for hit rejection, CSG boundary
	// comparisons and shadow ray offsets. It is pushed to every shape added.
	Tolerance float64
}

// New creates an empty scene with a black background.
func New() *Scene {
	return &Scene{
		Background: shade.Black,
		Tolerance:  math3d.DefaultEpsilon,
	}
}

func (s *Scene) eps() float64 {
	if s.Tolerance <= 0 {
		return math3d.DefaultEpsilon
	}
	return s.Tolerance
}

// Add appends shapes to the scene and gives them the scene tolerance.
func (s *Scene) Add(shapes ...geom.Shape) {
	for _, sh := range shapes {
		if sh == nil {
			logger.Warn("ignoring nil shape")
			continue
		}
		sh.SetTolerance(s.eps())
		s.Shapes = append(s.Shapes, sh)
	}
}

// AddLight appends lights to the scene.
func (s *Scene) AddLight(lights ...shade.Light) {
	for _, l := range lights {
		if l == nil {
			logger.Warn("ignoring nil light")
			continue
		}
		s.Lights = append(s.Lights, l)
	}
}

// SetTolerance changes the scene tolerance and pushes it to every shape.
func (s *Scene) SetTolerance(eps float64) {
	s.Tolerance = eps
	for _, sh := range s.Shapes {
		sh.SetTolerance(s.eps())
	}
}

// Bounds returns the union of the bounds of all finite shapes.
func (s *Scene) Bounds() geom.AABB {
	box := geom.EmptyAABB()
	for _, sh := range s.Shapes {
		if b := sh.Bounds(); !b.IsInfinite() {
			box = box.Union(b)
		}
	}
	return box
}

// NearestHit scans every shape and returns the closest hit in front of the
// ray origin. A non-nil exclude is skipped; pass the shape a secondary ray
// leaves from when it is convex and cannot be hit again on the way out.
func (s *Scene) NearestHit(r math3d.Ray, exclude geom.Shape) (geom.Intersection, bool) {
	var (
		best  geom.Intersection
		found bool
	)
	for _, sh := range s.Shapes {
		if exclude != nil && sh == exclude {
			continue
		}
		h, ok := sh.IntersectNearest(r)
		if !ok || h.T <= s.eps() {
			continue
		}
		if !found || h.T < best.T {
			best, found = h, true
		}
	}
	return best, found
}

// AnyOccluder reports whether some shape is hit strictly between the ray
// origin and maxDistance. It returns on the first such hit.
func (s *Scene) AnyOccluder(r math3d.Ray, maxDistance float64) bool {
	eps := s.eps()
	limit := maxDistance - eps
	for _, sh := range s.Shapes {
		if !math.IsInf(maxDistance, 1) && !sh.Bounds().Expand(eps).HitsRay(r, eps, limit) {
			continue
		}
		h, ok := sh.IntersectNearest(r)
		if ok && h.T > eps && h.T < limit {
			return true
		}
	}
	return false
}

// ShadowFactor returns the fraction of light l that reaches point, in
// [0,1]. Lights that expose sample points (area lights) are tested at each
// sample for a soft shadow; all others with a single shadow ray. Ambient
// lights are never shadowed. normal is used to lift the shadow ray origin
// off the surface.
func (s *Scene) ShadowFactor(point, normal math3d.Vec3, l shade.Light) float64 {
	if l.IsAmbient() {
		return 1
	}
	sampler, ok := l.(shade.Sampler)
	if !ok {
		dir, dist := l.DirectionAt(point)
		if s.visible(point, normal, dir, dist) {
			return 1
		}
		return 0
	}
	samples := sampler.SamplePoints()
	if len(samples) == 0 {
		return 1
	}
	lit := 0
	for _, p := range samples {
		d := p.Sub(point)
		dist := d.Len()
		if dist == 0 {
			lit++
			continue
		}
		if s.visible(point, normal, d.Scale(1/dist), dist) {
			lit++
		}
	}
	return float64(lit) / float64(len(samples))
}

func (s *Scene) visible(point, normal, dir math3d.Vec3, dist float64) bool {
	if dir == (math3d.Vec3{}) {
		return true
	}
	eps := s.eps()
	off := normal.Scale(eps)
	if dir.Dot(normal) < 0 {
		off = off.Negate()
	}
	return !s.AnyOccluder(math3d.NewRay(point.Add(off), dir), dist)
}
