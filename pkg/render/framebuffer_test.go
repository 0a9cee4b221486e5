package render

import (
	"image/color"
	"testing"

	"github.com/taigrr/refract/pkg/shade"
)

func TestFramebufferSetClamps(t *testing.T) {
	fb := NewFramebuffer(2, 2)
	fb.Set(0, 0, shade.RGB(2, 0.5, -1))
	got := fb.RGBAAt(0, 0)
	if got.R != 255 || got.B != 0 || got.A != 255 {
		t.Errorf("RGBAAt = %v, want clamped red channel and opaque alpha", got)
	}

	fb.Set(-1, 0, shade.White)
	fb.Set(2, 2, shade.White)
	if c := fb.RGBAAt(5, 5); c != (color.RGBA{}) {
		t.Errorf("out of range read = %v, want zero", c)
	}
}

func TestFramebufferImage(t *testing.T) {
	fb := NewFramebuffer(3, 2)
	fb.Fill(shade.RGB(0, 0, 1))
	if b := fb.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Errorf("Bounds = %v, want 3x2", b)
	}
	if _, _, b, a := fb.At(2, 1).RGBA(); b != 0xffff || a != 0xffff {
		t.Errorf("At(2,1) blue/alpha = %x/%x, want ffff/ffff", b, a)
	}
}

func TestFramebufferResize(t *testing.T) {
	fb := NewFramebuffer(4, 4)
	fb.Resize(2, 3)
	if fb.Width != 2 || fb.Height != 3 || len(fb.Pixels) != 6 {
		t.Errorf("Resize(2,3) = %dx%d with %d pixels", fb.Width, fb.Height, len(fb.Pixels))
	}
	if cap(fb.Pixels) != 16 {
		t.Errorf("cap = %d, want storage reused", cap(fb.Pixels))
	}
	fb.Resize(-1, 5)
	if fb.Width != 0 || len(fb.Pixels) != 0 {
		t.Errorf("negative width gave %dx%d", fb.Width, fb.Height)
	}
}

func TestDrawLine(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 int
		want           int
	}{
		{"horizontal", 0, 2, 4, 2, 5},
		{"vertical", 1, 4, 1, 0, 5},
		{"diagonal", 0, 0, 4, 4, 5},
		{"single point", 2, 2, 2, 2, 1},
		{"clipped", -3, 0, 2, 0, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := NewFramebuffer(5, 5)
			fb.DrawLine(tt.x0, tt.y0, tt.x1, tt.y1, ColorYellow)
			lit := 0
			for _, p := range fb.Pixels {
				if p == ColorYellow {
					lit++
				}
			}
			if lit != tt.want {
				t.Errorf("lit %d pixels, want %d", lit, tt.want)
			}
		})
	}
}
