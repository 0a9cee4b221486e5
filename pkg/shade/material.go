package shade

import (
	"math"

	"github.com/taigrr/refract/pkg/math3d"
)

// Material is the shading function attached to a shape. Implementations
// must be safe for concurrent ColorAt calls once rendering starts.
type Material interface {
	// ColorAt returns the light reflected toward viewer at point from a
	// single light. normal is the unit surface normal facing the viewer.
	ColorAt(point, normal math3d.Vec3, light Light, viewer math3d.Vec3) Color
	// Reflectivity is the mirror reflection coefficient in [0,1].
	Reflectivity() float64
	// Transparency is the refraction coefficient in [0,1].
	Transparency() float64
	// IOR is the index of refraction, at least 1.
	IOR() float64
	// SetObjectTransform tells the material the world-to-object matrix of
	// the shape it is attached to, so patterns follow the shape.
	SetObjectTransform(inv math3d.Mat4)
}

// Emitter is implemented by materials that give off light. The tracer
// returns the emission directly without further lighting.
type Emitter interface {
	Emission() Color
}

// Tinter is implemented by materials that color the light refracted
// through them.
type Tinter interface {
	Tint() Color
}

// Phong is the classic ambient + diffuse + specular material.
// Sharing one Phong between shapes also shares its object transform; give
// each patterned shape its own copy.
type Phong struct {
	Pattern         Pattern
	Ambient         float64
	Diffuse         float64
	Specular        float64
	Shininess       float64
	Reflective      float64
	Transparent     float64
	RefractiveIndex float64
	Absorb          Color // refraction tint; zero means untinted

	toObject math3d.Mat4
}

// NewPhong creates a plain diffuse material of color c.
func NewPhong(c Color) *Phong {
	return &Phong{
		Pattern:         Solid(c),
		Ambient:         0.1,
		Diffuse:         0.9,
		Specular:        0.9,
		Shininess:       200,
		RefractiveIndex: 1,
		toObject:        math3d.Identity(),
	}
}

// NewMirror creates a mostly reflective material.
func NewMirror(c Color, reflectivity float64) *Phong {
	m := NewPhong(c)
	m.Diffuse = 0.1
	m.Specular = 1
	m.Shininess = 300
	m.Reflective = reflectivity
	return m
}

// NewGlass creates a transparent refracting material.
func NewGlass(ior float64) *Phong {
	m := NewPhong(Black)
	m.Ambient = 0
	m.Diffuse = 0.05
	m.Specular = 1
	m.Shininess = 300
	m.Reflective = 0.1
	m.Transparent = 0.9
	m.RefractiveIndex = ior
	return m
}

// DefaultMaterial is substituted for shapes without a material. Its
// magenta color makes the omission obvious in a render.
func DefaultMaterial() *Phong {
	m := NewPhong(RGB(1, 0, 1))
	m.Specular = 0
	return m
}

func (m *Phong) Reflectivity() float64 { return clamp01(m.Reflective) }
func (m *Phong) Transparency() float64 { return clamp01(m.Transparent) }

func (m *Phong) IOR() float64 {
	return math.Max(1, m.RefractiveIndex)
}

func (m *Phong) SetObjectTransform(inv math3d.Mat4) {
	m.toObject = inv
}

// Tint returns the refraction tint, or white when none is set.
func (m *Phong) Tint() Color {
	if m.Absorb.IsBlack() {
		return White
	}
	return m.Absorb
}

// SurfaceColor returns the pattern color at a world-space point.
func (m *Phong) SurfaceColor(point math3d.Vec3) Color {
	if m.Pattern == nil {
		return White
	}
	return m.Pattern.At(m.objectPoint(point))
}

func (m *Phong) objectPoint(p math3d.Vec3) math3d.Vec3 {
	if m.toObject == (math3d.Mat4{}) {
		return p
	}
	return m.toObject.MulVec3(p)
}

func (m *Phong) ColorAt(point, normal math3d.Vec3, light Light, viewer math3d.Vec3) Color {
	surface := m.SurfaceColor(point)
	lightColor := light.AttenuatedIntensityAt(point)
	effective := surface.Mul(lightColor)

	if light.IsAmbient() {
		return effective.Scale(m.Ambient)
	}

	toLight, _ := light.DirectionAt(point)
	lambert := toLight.Dot(normal)
	if lambert <= 0 {
		return Black
	}
	out := effective.Scale(m.Diffuse * lambert)

	if m.Specular > 0 {
		toViewer := viewer.Sub(point).Normalize()
		reflected := toLight.Negate().Reflect(normal)
		if rv := reflected.Dot(toViewer); rv > 0 {
			out = out.Add(lightColor.Scale(m.Specular * math.Pow(rv, m.Shininess)))
		}
	}
	return out
}

// Emissive is a light-emitting surface. It ignores lights entirely.
type Emissive struct {
	Color Color
}

// NewEmissive creates an emissive material.
func NewEmissive(c Color) *Emissive {
	return &Emissive{Color: c}
}

func (e *Emissive) ColorAt(math3d.Vec3, math3d.Vec3, Light, math3d.Vec3) Color {
	return e.Color
}

func (e *Emissive) Emission() Color                { return e.Color }
func (e *Emissive) Reflectivity() float64          { return 0 }
func (e *Emissive) Transparency() float64          { return 0 }
func (e *Emissive) IOR() float64                   { return 1 }
func (e *Emissive) SetObjectTransform(math3d.Mat4) {}
