package shade

import (
	"math"

	"github.com/taigrr/refract/pkg/math3d"
)

// Pattern gives a color for a point in object space.
type Pattern interface {
	At(p math3d.Vec3) Color
}

// Solid is a uniform color pattern.
type Solid Color

// At returns the solid color.
func (s Solid) At(math3d.Vec3) Color { return Color(s) }

// Checker alternates two colors in a 3D grid of cells of side Size.
type Checker struct {
	A, B Color
	Size float64
}

// At returns A or B depending on the cell containing p.
func (c Checker) At(p math3d.Vec3) Color {
	size := c.Size
	if size <= 0 {
		size = 1
	}
	// A tiny bias keeps points lying exactly on a cell face (such as a
	// y=0 floor) from flickering between cells.
	const bias = 1e-6
	n := math.Floor(p.X/size+bias) + math.Floor(p.Y/size+bias) + math.Floor(p.Z/size+bias)
	if int64(n)%2 == 0 {
		return c.A
	}
	return c.B
}

// Stripe alternates two colors along the X axis.
type Stripe struct {
	A, B  Color
	Width float64
}

// At returns A or B depending on the stripe containing p.
func (s Stripe) At(p math3d.Vec3) Color {
	w := s.Width
	if w <= 0 {
		w = 1
	}
	if int64(math.Floor(p.X/w))%2 == 0 {
		return s.A
	}
	return s.B
}

// UVMapping projects an object-space point onto texture coordinates.
type UVMapping func(p math3d.Vec3) math3d.Vec2

// SphericalMap wraps a texture around the unit sphere: U follows
// longitude and V latitude.
func SphericalMap(p math3d.Vec3) math3d.Vec2 {
	d := p.Normalize()
	u := 0.5 + math.Atan2(d.Z, d.X)/(2*math.Pi)
	v := 0.5 + math.Asin(math.Max(-1, math.Min(1, d.Y)))/math.Pi
	return math3d.V2(u, v)
}

// PlanarMap maps the XZ plane onto the texture, tiling once per unit.
func PlanarMap(p math3d.Vec3) math3d.Vec2 {
	return math3d.V2(p.X-math.Floor(p.X), p.Z-math.Floor(p.Z))
}

// TexturePattern samples an image texture through a UV mapping.
type TexturePattern struct {
	Texture *Texture
	Mapping UVMapping
}

// NewTexturePattern creates a pattern using mapping, or SphericalMap if
// mapping is nil.
func NewTexturePattern(tex *Texture, mapping UVMapping) *TexturePattern {
	if mapping == nil {
		mapping = SphericalMap
	}
	return &TexturePattern{Texture: tex, Mapping: mapping}
}

// At samples the texture at the mapped coordinates.
func (t *TexturePattern) At(p math3d.Vec3) Color {
	if t.Texture == nil {
		return Black
	}
	uv := t.Mapping(p)
	return t.Texture.Sample(uv.X, uv.Y)
}
