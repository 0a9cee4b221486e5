// Package shade provides the colors, materials and lights the ray tracer
// shades with. The tracer only depends on the Material and Light
// interfaces; the concrete types here are a small default set.
package shade

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a linear RGB color. Components are nominally in [0,1] but may
// exceed 1 while light is being accumulated.
type Color struct {
	R, G, B float64
}

// RGB creates a new Color.
func RGB(r, g, b float64) Color {
	return Color{r, g, b}
}

// Gray returns a color with all components set to v.
func Gray(v float64) Color {
	return Color{v, v, v}
}

// Common colors.
var (
	Black = Color{0, 0, 0}
	White = Color{1, 1, 1}
)

// Add returns the component-wise sum.
func (c Color) Add(o Color) Color {
	return Color{c.R + o.R, c.G + o.G, c.B + o.B}
}

// Mul returns the component-wise product (filtering one color by another).
func (c Color) Mul(o Color) Color {
	return Color{c.R * o.R, c.G * o.G, c.B * o.B}
}

// Scale multiplies every component by s.
func (c Color) Scale(s float64) Color {
	return Color{c.R * s, c.G * s, c.B * s}
}

// Lerp linearly interpolates between c and o.
func (c Color) Lerp(o Color, t float64) Color {
	return Color{
		c.R + (o.R-c.R)*t,
		c.G + (o.G-c.G)*t,
		c.B + (o.B-c.B)*t,
	}
}

// Clamp limits every component to [0,1]. NaN components become 0.
func (c Color) Clamp() Color {
	return Color{clamp01(c.R), clamp01(c.G), clamp01(c.B)}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// IsBlack reports whether the color carries no light.
func (c Color) IsBlack() bool {
	return c.R <= 0 && c.G <= 0 && c.B <= 0
}

// RGBA converts the color to an opaque 8-bit color, clamping first.
func (c Color) RGBA() color.RGBA {
	r, g, b := colorful.Color{R: c.R, G: c.G, B: c.B}.Clamped().RGB255()
	return color.RGBA{r, g, b, 255}
}

// FromColor converts any image color to a Color, ignoring alpha.
func FromColor(c color.Color) Color {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return Black
	}
	return Color{cf.R, cf.G, cf.B}
}

// ParseHex parses "#rrggbb" (or "#rgb") into a Color.
func ParseHex(s string) (Color, error) {
	cf, err := colorful.Hex(s)
	if err != nil {
		return Black, fmt.Errorf("parse color %q: %w", s, err)
	}
	return Color{cf.R, cf.G, cf.B}, nil
}

// String formats the color as hex, for logs and flags.
func (c Color) String() string {
	return colorful.Color{R: c.R, G: c.G, B: c.B}.Clamped().Hex()
}
