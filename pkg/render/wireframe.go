package render

import (
	"image/color"
	"math"

	"github.com/taigrr/refract/pkg/geom"
	"github.com/taigrr/refract/pkg/math3d"
	"github.com/taigrr/refract/pkg/scene"
)

// boxEdges lists the corner pairs of geom.AABB.Corners forming the 12
// edges of a box.
var boxEdges = [12][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7}, // along X
	{0, 2}, {1, 3}, {4, 6}, {5, 7}, // along Y
	{0, 4}, {1, 5}, {2, 6}, {3, 7}, // along Z
}

// Wireframe draws debugging overlays on top of a rendered image.
type Wireframe struct {
	camera *Camera
	fb     *Framebuffer
}

// NewWireframe creates a new wireframe renderer.
func NewWireframe(camera *Camera, fb *Framebuffer) *Wireframe {
	camera.SetAspectRatio(float64(fb.Width) / float64(max(fb.Height, 1)))
	return &Wireframe{
		camera: camera,
		fb:     fb,
	}
}

// DrawLine3D draws a line in 3D space.
func (w *Wireframe) DrawLine3D(p1, p2 math3d.Vec3, c color.RGBA) {
	x1, y1, _, vis1 := w.camera.WorldToScreen(p1, w.fb.Width, w.fb.Height)
	x2, y2, _, vis2 := w.camera.WorldToScreen(p2, w.fb.Width, w.fb.Height)

	// Only lines with both ends on screen are drawn. WorldToScreen does
	// not return coordinates for clipped points.
	if !vis1 || !vis2 {
		return
	}
	w.fb.DrawLine(int(x1), int(y1), int(x2), int(y2), c)
}

// DrawBox draws the edges of a bounding box. Empty and unbounded boxes
// are skipped.
func (w *Wireframe) DrawBox(box geom.AABB, c color.RGBA) {
	if box.IsEmpty() || box.IsInfinite() {
		return
	}
	corners := box.Corners()
	for _, e := range boxEdges {
		w.DrawLine3D(corners[e[0]], corners[e[1]], c)
	}
}

// DrawAxes draws the coordinate axes at the origin.
func (w *Wireframe) DrawAxes(length float64) {
	origin := math3d.Zero3()
	w.DrawLine3D(origin, math3d.V3(length, 0, 0), ColorRed)
	w.DrawLine3D(origin, math3d.V3(0, length, 0), ColorGreen)
	w.DrawLine3D(origin, math3d.V3(0, 0, length), ColorBlue)
}

// DrawPoint draws a point as a small cross.
func (w *Wireframe) DrawPoint(pos math3d.Vec3, size float64, c color.RGBA) {
	h := size / 2
	w.DrawLine3D(math3d.V3(pos.X-h, pos.Y, pos.Z), math3d.V3(pos.X+h, pos.Y, pos.Z), c)
	w.DrawLine3D(math3d.V3(pos.X, pos.Y-h, pos.Z), math3d.V3(pos.X, pos.Y+h, pos.Z), c)
	w.DrawLine3D(math3d.V3(pos.X, pos.Y, pos.Z-h), math3d.V3(pos.X, pos.Y, pos.Z+h), c)
}

// DrawScene outlines the bounds of every shape in the view frustum, marks
// the positions of point-like lights and draws unit world axes. It returns
// the number of boxes drawn.
func (w *Wireframe) DrawScene(sc *scene.Scene) int {
	w.DrawAxes(1)
	frustum := w.camera.Frustum()
	drawn := 0
	for _, s := range sc.Shapes {
		box := s.Bounds()
		if box.IsInfinite() || box.IsEmpty() {
			continue
		}
		// Bounding sphere first, then the exact box test.
		radius := box.Max.Sub(box.Min).Len() / 2
		if !frustum.IntersectsSphere(box.Center(), radius) || !frustum.IntersectAABB(box) {
			continue
		}
		w.DrawBox(box, ColorCyan)
		drawn++
	}
	for _, l := range sc.Lights {
		if l.IsAmbient() {
			continue
		}
		pos := l.PositionOrDirection()
		if _, dist := l.DirectionAt(math3d.Zero3()); !math.IsInf(dist, 1) && frustum.ContainsPoint(pos) {
			w.DrawPoint(pos, 0.25, ColorYellow)
		}
	}
	return drawn
}
