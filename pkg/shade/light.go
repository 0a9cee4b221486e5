package shade

import (
	"math"

	"github.com/taigrr/refract/pkg/math3d"
)

// Light is a light source as seen by the integrator.
type Light interface {
	// PositionOrDirection returns the light position for positional lights
	// and the direction light travels for directional ones.
	PositionOrDirection() math3d.Vec3
	Color() Color
	Intensity() float64
	// DirectionAt returns the unit direction from p toward the light and
	// the distance to it (+Inf for lights at infinity).
	DirectionAt(p math3d.Vec3) (math3d.Vec3, float64)
	// AttenuatedIntensityAt returns the light's color scaled by its
	// intensity after distance and cone falloff at p.
	AttenuatedIntensityAt(p math3d.Vec3) Color
	// IsAmbient reports whether the light has no direction. Ambient lights
	// are never shadowed.
	IsAmbient() bool
}

// Sampler is implemented by lights with extent. Shadow tests count how
// many sample points are visible to produce soft shadows.
type Sampler interface {
	SamplePoints() []math3d.Vec3
}

// AmbientLight lights every point uniformly.
type AmbientLight struct {
	color     Color
	intensity float64
}

// NewAmbientLight creates an ambient light.
func NewAmbientLight(c Color, intensity float64) *AmbientLight {
	return &AmbientLight{color: c, intensity: intensity}
}

func (l *AmbientLight) PositionOrDirection() math3d.Vec3 { return math3d.Zero3() }
func (l *AmbientLight) Color() Color                     { return l.color }
func (l *AmbientLight) Intensity() float64               { return l.intensity }
func (l *AmbientLight) IsAmbient() bool                  { return true }

func (l *AmbientLight) DirectionAt(math3d.Vec3) (math3d.Vec3, float64) {
	return math3d.Zero3(), 0
}

func (l *AmbientLight) AttenuatedIntensityAt(math3d.Vec3) Color {
	return l.color.Scale(l.intensity)
}

// Attenuation holds the constant, linear and quadratic falloff terms:
// intensity / (Constant + Linear*d + Quadratic*d²).
type Attenuation struct {
	Constant, Linear, Quadratic float64
}

// NoAttenuation keeps intensity constant over distance.
var NoAttenuation = Attenuation{Constant: 1}

func (a Attenuation) factor(d float64) float64 {
	den := a.Constant + a.Linear*d + a.Quadratic*d*d
	if den <= 0 {
		return 1
	}
	return 1 / den
}

// PointLight radiates from a single position.
type PointLight struct {
	Position    math3d.Vec3
	Attenuation Attenuation
	color       Color
	intensity   float64
}

// NewPointLight creates an unattenuated point light.
func NewPointLight(pos math3d.Vec3, c Color, intensity float64) *PointLight {
	return &PointLight{Position: pos, Attenuation: NoAttenuation, color: c, intensity: intensity}
}

func (l *PointLight) PositionOrDirection() math3d.Vec3 { return l.Position }
func (l *PointLight) Color() Color                     { return l.color }
func (l *PointLight) Intensity() float64               { return l.intensity }
func (l *PointLight) IsAmbient() bool                  { return false }

func (l *PointLight) DirectionAt(p math3d.Vec3) (math3d.Vec3, float64) {
	d := l.Position.Sub(p)
	return d.Normalize(), d.Len()
}

func (l *PointLight) AttenuatedIntensityAt(p math3d.Vec3) Color {
	return l.color.Scale(l.intensity * l.Attenuation.factor(l.Position.Distance(p)))
}

// DirectionalLight is a light at infinity, like the sun.
type DirectionalLight struct {
	direction math3d.Vec3 // direction the light travels
	color     Color
	intensity float64
}

// NewDirectionalLight creates a light travelling along dir.
func NewDirectionalLight(dir math3d.Vec3, c Color, intensity float64) *DirectionalLight {
	return &DirectionalLight{direction: dir.Normalize(), color: c, intensity: intensity}
}

func (l *DirectionalLight) PositionOrDirection() math3d.Vec3 { return l.direction }
func (l *DirectionalLight) Color() Color                     { return l.color }
func (l *DirectionalLight) Intensity() float64               { return l.intensity }
func (l *DirectionalLight) IsAmbient() bool                  { return false }

func (l *DirectionalLight) DirectionAt(math3d.Vec3) (math3d.Vec3, float64) {
	return l.direction.Negate(), math.Inf(1)
}

func (l *DirectionalLight) AttenuatedIntensityAt(math3d.Vec3) Color {
	return l.color.Scale(l.intensity)
}

// SpotLight is a point light restricted to a cone. Intensity falls off
// smoothly between the inner and outer cone angles.
type SpotLight struct {
	PointLight
	Axis       math3d.Vec3
	InnerAngle float64 // radians
	OuterAngle float64 // radians
}

// NewSpotLight creates a spot light at pos aimed along axis.
func NewSpotLight(pos, axis math3d.Vec3, inner, outer float64, c Color, intensity float64) *SpotLight {
	if outer < inner {
		inner, outer = outer, inner
	}
	return &SpotLight{
		PointLight: *NewPointLight(pos, c, intensity),
		Axis:       axis.Normalize(),
		InnerAngle: inner,
		OuterAngle: outer,
	}
}

func (l *SpotLight) AttenuatedIntensityAt(p math3d.Vec3) Color {
	toPoint := p.Sub(l.Position).Normalize()
	cosAngle := toPoint.Dot(l.Axis)
	cosInner, cosOuter := math.Cos(l.InnerAngle), math.Cos(l.OuterAngle)
	if cosAngle <= cosOuter {
		return Black
	}
	falloff := 1.0
	if cosAngle < cosInner && cosInner > cosOuter {
		x := (cosAngle - cosOuter) / (cosInner - cosOuter)
		falloff = x * x * (3 - 2*x) // smoothstep
	}
	return l.PointLight.AttenuatedIntensityAt(p).Scale(falloff)
}

// AreaLight is a rectangular light spanned by two edge vectors from a
// corner. It is shaded as a point light at its center and shadowed by a
// grid of sample points.
type AreaLight struct {
	PointLight
	Corner math3d.Vec3
	U, V   math3d.Vec3
	USteps int
	VSteps int
}

// NewAreaLight creates an area light with usteps*vsteps shadow samples.
func NewAreaLight(corner, u, v math3d.Vec3, usteps, vsteps int, c Color, intensity float64) *AreaLight {
	usteps = max(usteps, 1)
	vsteps = max(vsteps, 1)
	center := corner.Add(u.Scale(0.5)).Add(v.Scale(0.5))
	return &AreaLight{
		PointLight: *NewPointLight(center, c, intensity),
		Corner:     corner,
		U:          u,
		V:          v,
		USteps:     usteps,
		VSteps:     vsteps,
	}
}

// SamplePoints returns the centers of the light's grid cells. The grid is
// deterministic so renders are reproducible.
func (l *AreaLight) SamplePoints() []math3d.Vec3 {
	pts := make([]math3d.Vec3, 0, l.USteps*l.VSteps)
	for i := range l.USteps {
		for j := range l.VSteps {
			u := (float64(i) + 0.5) / float64(l.USteps)
			v := (float64(j) + 0.5) / float64(l.VSteps)
			pts = append(pts, l.Corner.Add(l.U.Scale(u)).Add(l.V.Scale(v)))
		}
	}
	return pts
}
