package render

import (
	"math"

	"github.com/taigrr/refract/pkg/math3d"
)

// Projection selects how primary rays leave the camera.
type Projection int

const (
	// Perspective rays fan out from the camera position through the
	// image plane according to the field of view.
	Perspective Projection = iota
	// Orthographic rays are parallel to the view direction and start on a
	// view-plane rectangle OrthoHeight units tall.
	Orthographic
)

func (p Projection) String() string {
	if p == Orthographic {
		return "orthographic"
	}
	return "perspective"
}

// Camera represents a 3D camera with position and orientation.
type Camera struct {
	// Position in world space
	Position math3d.Vec3

	// Orientation (Euler angles in radians)
	Pitch float64 // Rotation around X axis (look up/down)
	Yaw   float64 // Rotation around Y axis (look left/right)
	Roll  float64 // Rotation around Z axis (tilt)

	// Projection parameters
	Projection  Projection
	FOV         float64 // Vertical field of view in radians
	OrthoHeight float64 // View-plane height for orthographic projection
	AspectRatio float64 // Width / Height
	Near        float64 // Near clipping plane
	Far         float64 // Far clipping plane

	// Cached matrices (computed on demand)
	viewMatrix     math3d.Mat4
	projMatrix     math3d.Mat4
	viewProjMatrix math3d.Mat4
	viewDirty      bool
	projDirty      bool
}

// NewCamera creates a perspective camera at (0, 0, 5) looking down -Z.
func NewCamera() *Camera {
	return &Camera{
		Position:    math3d.V3(0, 0, 5),
		FOV:         math.Pi / 3, // 60 degrees
		OrthoHeight: 4,
		AspectRatio: 4.0 / 3.0,
		Near:        0.1,
		Far:         1000,
		viewDirty:   true,
		projDirty:   true,
	}
}

// SetPosition sets the camera position.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.Position = pos
	c.viewDirty = true
}

// SetFOV sets the field of view (in radians).
func (c *Camera) SetFOV(fov float64) {
	c.FOV = fov
	c.projDirty = true
}

// SetOrthographic switches to an orthographic projection with a view
// plane height units tall.
func (c *Camera) SetOrthographic(height float64) {
	c.Projection = Orthographic
	c.OrthoHeight = height
	c.projDirty = true
}

// SetAspectRatio sets the aspect ratio.
func (c *Camera) SetAspectRatio(aspect float64) {
	c.AspectRatio = aspect
	c.projDirty = true
}

// Forward returns the forward direction vector.
func (c *Camera) Forward() math3d.Vec3 {
	// Forward is -Z in camera space, rotated by yaw and pitch
	return math3d.V3(
		-math.Sin(c.Yaw)*math.Cos(c.Pitch),
		math.Sin(c.Pitch),
		-math.Cos(c.Yaw)*math.Cos(c.Pitch),
	)
}

// Right returns the right direction vector.
func (c *Camera) Right() math3d.Vec3 {
	return math3d.V3(
		math.Cos(c.Yaw),
		0,
		-math.Sin(c.Yaw),
	)
}

// Up returns the up direction vector.
func (c *Camera) Up() math3d.Vec3 {
	return c.Right().Cross(c.Forward())
}

// ViewMatrix returns the view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		c.computeViewMatrix()
		c.viewDirty = false
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		c.computeProjectionMatrix()
		c.projDirty = false
	}
	return c.projMatrix
}

// ViewProjectionMatrix returns the combined view-projection matrix.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	view := c.ViewMatrix()
	proj := c.ProjectionMatrix()
	c.viewProjMatrix = proj.Mul(view)
	return c.viewProjMatrix
}

func (c *Camera) computeViewMatrix() {
	// View = Rotation * Translation(-position)
	rot := math3d.RotateZ(-c.Roll).Mul(
		math3d.RotateX(-c.Pitch)).Mul(
		math3d.RotateY(-c.Yaw))
	trans := math3d.Translate(c.Position.Negate())
	c.viewMatrix = rot.Mul(trans)
}

func (c *Camera) computeProjectionMatrix() {
	if c.Projection == Orthographic {
		hh := c.OrthoHeight / 2
		hw := hh * c.AspectRatio
		c.projMatrix = math3d.Orthographic(-hw, hw, -hh, hh, c.Near, c.Far)
		return
	}
	c.projMatrix = math3d.Perspective(c.FOV, c.AspectRatio, c.Near, c.Far)
}

// LookAt makes the camera look at a target point.
func (c *Camera) LookAt(target math3d.Vec3) {
	dir := target.Sub(c.Position).Normalize()

	c.Pitch = math.Asin(dir.Y)
	c.Yaw = math.Atan2(-dir.X, -dir.Z)
	c.Roll = 0

	c.viewDirty = true
}

// Orbit places the camera on a sphere of the given radius around target,
// at the given yaw and pitch, and points it at target.
func (c *Camera) Orbit(target math3d.Vec3, radius, yaw, pitch float64) {
	offset := math3d.V3(
		math.Sin(yaw)*math.Cos(pitch),
		math.Sin(pitch),
		math.Cos(yaw)*math.Cos(pitch),
	).Scale(radius)
	c.Position = target.Add(offset)
	c.LookAt(target)
}

// WorldToScreen transforms a world point to screen coordinates.
// Returns (screenX, screenY, depth, visible).
func (c *Camera) WorldToScreen(worldPos math3d.Vec3, screenWidth, screenHeight int) (x, y, depth float64, visible bool) {
	clipPos := c.ViewProjectionMatrix().MulVec4(math3d.Point4(worldPos))

	// Behind camera
	if clipPos.W <= 0 {
		return 0, 0, 0, false
	}

	ndc := clipPos.PerspectiveDivide()
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, 0, false
	}

	x = (ndc.X + 1) * 0.5 * float64(screenWidth)
	y = (1 - ndc.Y) * 0.5 * float64(screenHeight) // Y is flipped
	depth = ndc.Z

	return x, y, depth, true
}

// RayGenerator produces primary rays for an image of fixed size. It is a
// snapshot of the camera and is safe for concurrent use.
type RayGenerator struct {
	toWorld    math3d.Mat4
	origin     math3d.Vec3
	forward    math3d.Vec3
	projection Projection
	halfW      float64
	halfH      float64
	width      float64
	height     float64
}

// Rays returns a generator for a width x height image. The camera aspect
// ratio is taken from the image size.
func (c *Camera) Rays(width, height int) *RayGenerator {
	c.SetAspectRatio(float64(width) / float64(max(height, 1)))
	toWorld, ok := c.ViewMatrix().AffineInverse()
	if !ok {
		toWorld = math3d.Identity()
	}
	g := &RayGenerator{
		toWorld:    toWorld,
		origin:     c.Position,
		forward:    toWorld.MulVec3Dir(math3d.V3(0, 0, -1)).Normalize(),
		projection: c.Projection,
		width:      float64(width),
		height:     float64(height),
	}
	if c.Projection == Orthographic {
		g.halfH = c.OrthoHeight / 2
	} else {
		g.halfH = math.Tan(c.FOV / 2)
	}
	g.halfW = g.halfH * c.AspectRatio
	return g
}

// Ray returns the primary ray through image position (px, py), measured
// in pixels from the top-left corner. Pass pixel centers (x+0.5).
func (g *RayGenerator) Ray(px, py float64) math3d.Ray {
	sx := (2*px/g.width - 1) * g.halfW
	sy := (1 - 2*py/g.height) * g.halfH
	if g.projection == Orthographic {
		origin := g.toWorld.MulVec3(math3d.V3(sx, sy, 0))
		return math3d.NewRay(origin, g.forward)
	}
	dir := g.toWorld.MulVec3Dir(math3d.V3(sx, sy, -1))
	return math3d.NewRay(g.origin, dir)
}

// PrimaryRay returns the ray through the center of pixel (x, y).
func (c *Camera) PrimaryRay(x, y, width, height int) math3d.Ray {
	return c.Rays(width, height).Ray(float64(x)+0.5, float64(y)+0.5)
}
