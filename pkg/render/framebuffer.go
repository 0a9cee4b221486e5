package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/taigrr/refract/pkg/shade"
)

// Framebuffer holds the quantized output of a render. Rows are independent,
// so concurrent writers may fill disjoint rows without locking.
//
// For terminal display the height is twice the number of rows, since each
// cell shows two pixels with a half-block character (▀).
//
// Framebuffer implements image.Image.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []color.RGBA // Row-major
}

var _ image.Image = (*Framebuffer)(nil)

// NewFramebuffer creates a new framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	fb := &Framebuffer{}
	fb.Resize(width, height)
	return fb
}

// Resize changes the dimensions, reusing the pixel storage when it is large
// enough. Contents are undefined afterwards.
func (fb *Framebuffer) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	n := width * height
	if cap(fb.Pixels) < n {
		fb.Pixels = make([]color.RGBA, n)
	}
	fb.Pixels = fb.Pixels[:n]
	fb.Width, fb.Height = width, height
}

// Fill sets every pixel to c.
func (fb *Framebuffer) Fill(c shade.Color) {
	q := c.RGBA()
	for i := range fb.Pixels {
		fb.Pixels[i] = q
	}
}

// Set stores the radiance c at (x, y), clamped to [0,1] and quantized to
// 8 bits per channel. Out-of-range coordinates are ignored.
func (fb *Framebuffer) Set(x, y int, c shade.Color) {
	fb.SetRGBA(x, y, c.RGBA())
}

// SetRGBA stores an already quantized pixel.
func (fb *Framebuffer) SetRGBA(x, y int, c color.RGBA) {
	if !fb.in(x, y) {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// RGBAAt returns the pixel at (x, y), or transparent black outside the
// buffer.
func (fb *Framebuffer) RGBAAt(x, y int) color.RGBA {
	if !fb.in(x, y) {
		return color.RGBA{}
	}
	return fb.Pixels[y*fb.Width+x]
}

func (fb *Framebuffer) in(x, y int) bool {
	return x >= 0 && x < fb.Width && y >= 0 && y < fb.Height
}

func (fb *Framebuffer) ColorModel() color.Model { return color.RGBAModel }

func (fb *Framebuffer) Bounds() image.Rectangle { return image.Rect(0, 0, fb.Width, fb.Height) }

func (fb *Framebuffer) At(x, y int) color.Color { return fb.RGBAAt(x, y) }

// DrawLine draws a line from (x0, y0) to (x1, y1) with Bresenham's
// algorithm. Pixels outside the buffer are clipped.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c color.RGBA) {
	dx, sx := x1-x0, 1
	if dx < 0 {
		dx, sx = -dx, -1
	}
	dy, sy := y0-y1, 1
	if dy > 0 {
		dy = -dy
	}
	if y0 > y1 {
		sy = -1
	}

	for e := dx + dy; ; {
		fb.SetRGBA(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// SavePNG writes the framebuffer to path as a PNG.
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, fb); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
