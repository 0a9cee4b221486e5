// Package scenes is a catalog of named demo scenes. Each builder returns
// a populated scene together with a camera framing it.
package scenes

import (
	"errors"
	"fmt"
	"math"
	"os"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/taigrr/refract/pkg/geom"
	"github.com/taigrr/refract/pkg/math3d"
	"github.com/taigrr/refract/pkg/models"
	"github.com/taigrr/refract/pkg/render"
	"github.com/taigrr/refract/pkg/scene"
	"github.com/taigrr/refract/pkg/shade"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "scenes"})

// SetLogger replaces the package logger.
func SetLogger(l *log.Logger) { logger = l }

// ErrUnknownScene is returned by Build for names not in the catalog.
var ErrUnknownScene = errors.New("unknown scene")

// Options tune scene construction.
type Options struct {
	// MeshPath is the glTF/GLB file shown by the "mesh" scene.
	MeshPath string
	// Mesh, when set, is used by the "mesh" scene instead of loading
	// MeshPath.
	Mesh *models.Mesh
}

type builder func(Options) (*scene.Scene, *render.Camera, error)

type entry struct {
	description string
	build       builder
}

var catalog = map[string]entry{
	"spheres":    {"three spheres on a checkered floor", buildSpheres},
	"csg":        {"union, intersection and difference of solids", buildCSG},
	"mirrors":    {"a sphere between two facing mirrors", buildMirrors},
	"quadrics":   {"cylinder, cone, ellipsoid and hyperboloid", buildQuadrics},
	"torus":      {"a torus and a trefoil knot", buildTorus},
	"sdf":        {"sdfx rounded box with a bored hole, marched and tessellated", buildSDF},
	"billboards": {"patterned quads and discs under a spot light", buildBillboards},
	"glass":      {"refracting glass in front of a checker wall", buildGlass},
	"mesh":       {"a glTF mesh on a floor", buildMesh},
}

// List returns the catalog names in sorted order.
func List() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Description returns a one-line summary of the named scene.
func Description(name string) string {
	return catalog[name].description
}

// Build constructs the named scene.
func Build(name string, opts Options) (*scene.Scene, *render.Camera, error) {
	e, ok := catalog[name]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownScene, name)
	}
	sc, cam, err := e.build(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("build %s: %w", name, err)
	}
	logger.Debug("built scene", "name", name, "shapes", len(sc.Shapes), "lights", len(sc.Lights))
	return sc, cam, nil
}

// place sets a transform and material on s and returns it.
func place[S geom.Shape](s S, m math3d.Mat4, mat shade.Material) S {
	s.SetTransform(m)
	if mat != nil {
		s.SetMaterial(mat)
	}
	return s
}

func camera(pos, target math3d.Vec3) *render.Camera {
	cam := render.NewCamera()
	cam.SetPosition(pos)
	cam.LookAt(target)
	return cam
}

func checkerFloor(a, b shade.Color) *geom.Plane {
	mat := shade.NewPhong(shade.White)
	mat.Pattern = shade.Checker{A: a, B: b, Size: 1}
	mat.Specular = 0
	mat.Reflective = 0.1
	return place(geom.NewPlane(), math3d.Identity(), mat)
}

func defaultLights(sc *scene.Scene) {
	sc.AddLight(
		shade.NewAmbientLight(shade.White, 1),
		shade.NewPointLight(math3d.V3(-10, 10, 10), shade.White, 1),
	)
}

func buildSpheres(Options) (*scene.Scene, *render.Camera, error) {
	sc := scene.New()
	sc.Background = shade.RGB(0.05, 0.05, 0.15)

	textured := shade.NewPhong(shade.White)
	textured.Pattern = shade.NewTexturePattern(
		shade.NewCheckerTexture(64, 32, 8, shade.RGB(0.9, 0.4, 0.1), shade.RGB(0.1, 0.1, 0.1)),
		shade.SphericalMap,
	)

	sc.Add(
		checkerFloor(shade.Gray(0.8), shade.Gray(0.2)),
		place(geom.NewUnitSphere(), math3d.Translate(math3d.V3(-2.2, 1, 0)), shade.NewPhong(shade.RGB(0.9, 0.15, 0.1))),
		place(geom.NewUnitSphere(), math3d.Translate(math3d.V3(0, 1, -0.5)), shade.NewMirror(shade.Gray(0.3), 0.8)),
		place(geom.NewUnitSphere(), math3d.Translate(math3d.V3(2.2, 1, 0)), textured),
	)
	defaultLights(sc)

	return sc, camera(math3d.V3(0, 2.5, 7), math3d.V3(0, 1, 0)), nil
}

func buildCSG(Options) (*scene.Scene, *render.Camera, error) {
	sc := scene.New()
	sc.Background = shade.RGB(0.1, 0.1, 0.1)

	union := geom.NewUnion(
		place(geom.NewUnitSphere(), math3d.Translate(math3d.V3(-0.5, 0, 0)), nil),
		place(geom.NewUnitSphere(), math3d.Translate(math3d.V3(0.5, 0, 0)), nil),
	)
	union.SetTransform(math3d.Translate(math3d.V3(-3, 1, 0)).Mul(math3d.ScaleUniform(0.8)))
	union.SetMaterial(shade.NewPhong(shade.RGB(0.2, 0.6, 0.9)))

	// Rounded cube: a cube clipped by a slightly larger sphere.
	inter := geom.NewIntersection(geom.NewCube(1), geom.NewSphere(1.35))
	inter.SetTransform(math3d.Translate(math3d.V3(0, 1, 0)).Mul(math3d.RotateY(math.Pi / 6)))
	inter.SetMaterial(shade.NewPhong(shade.RGB(0.9, 0.7, 0.2)))

	// Hollow shell with a window cut by a cylinder.
	shell := geom.NewDifference(geom.NewSphere(1), geom.NewSphere(0.85))
	window := place(geom.NewCylinder(0.5, 3), math3d.RotateX(math.Pi/2), nil)
	cut := geom.NewDifference(shell, window)
	cut.SetTransform(math3d.Translate(math3d.V3(3, 1, 0)))
	cut.SetMaterial(shade.NewPhong(shade.RGB(0.8, 0.2, 0.3)))

	sc.Add(checkerFloor(shade.Gray(0.7), shade.Gray(0.3)), union, inter, cut)
	defaultLights(sc)

	return sc, camera(math3d.V3(0, 3, 8), math3d.V3(0, 1, 0)), nil
}

func buildMirrors(Options) (*scene.Scene, *render.Camera, error) {
	sc := scene.New()
	sc.Background = shade.RGB(0.02, 0.02, 0.05)

	mirror := func(x float64, yaw float64) *geom.Billboard {
		return place(geom.NewQuad(4, 2.5),
			math3d.Translate(math3d.V3(x, 2.5, 0)).Mul(math3d.RotateY(yaw)),
			shade.NewMirror(shade.Gray(0.1), 0.9))
	}

	sc.Add(
		checkerFloor(shade.Gray(0.9), shade.RGB(0.2, 0.3, 0.5)),
		mirror(-3, math.Pi/2),
		mirror(3, -math.Pi/2),
		place(geom.NewUnitSphere(), math3d.Translate(math3d.V3(0, 1, 0)), shade.NewPhong(shade.RGB(0.9, 0.3, 0.1))),
	)
	defaultLights(sc)

	return sc, camera(math3d.V3(1, 3, 6), math3d.V3(-1, 1, 0)), nil
}

func buildQuadrics(Options) (*scene.Scene, *render.Camera, error) {
	sc := scene.New()
	sc.Background = shade.RGB(0.15, 0.15, 0.2)

	stripes := shade.NewPhong(shade.White)
	stripes.Pattern = shade.Stripe{A: shade.RGB(0.9, 0.9, 0.9), B: shade.RGB(0.2, 0.5, 0.2), Width: 0.25}

	sc.Add(
		checkerFloor(shade.Gray(0.75), shade.Gray(0.35)),
		place(geom.NewCylinder(0.7, 2), math3d.Translate(math3d.V3(-4.5, 1, 0)), shade.NewPhong(shade.RGB(0.8, 0.3, 0.2))),
		place(geom.NewCone(0.8, 2), math3d.Translate(math3d.V3(-1.5, 0, 0)), stripes),
		place(geom.NewEllipsoid(1, 0.6, 0.8), math3d.Translate(math3d.V3(1.5, 0.6, 0)), shade.NewMirror(shade.RGB(0.2, 0.2, 0.5), 0.5)),
		place(geom.NewHyperboloid(0.5, 0.8, 0.5, 2), math3d.Translate(math3d.V3(4.5, 1, 0)), shade.NewPhong(shade.RGB(0.9, 0.8, 0.3))),
	)
	defaultLights(sc)

	return sc, camera(math3d.V3(0, 3, 9), math3d.V3(0, 0.8, 0)), nil
}

func buildTorus(Options) (*scene.Scene, *render.Camera, error) {
	sc := scene.New()
	sc.Background = shade.RGB(0.08, 0.08, 0.12)

	sc.Add(
		checkerFloor(shade.Gray(0.8), shade.Gray(0.25)),
		place(geom.NewTorus(1.2, 0.4),
			math3d.Translate(math3d.V3(-2, 1.2, 0)).Mul(math3d.Rotate(math3d.V3(1, 0, 1), math.Pi/3)),
			shade.NewPhong(shade.RGB(0.3, 0.7, 0.4))),
		place(geom.NewTorusKnot(2, 3, 1, 0.45, 0.22),
			math3d.Translate(math3d.V3(2, 1.5, 0)).Mul(math3d.RotateX(math.Pi/2)),
			shade.NewMirror(shade.RGB(0.7, 0.5, 0.2), 0.4)),
	)
	defaultLights(sc)

	return sc, camera(math3d.V3(0, 3, 7), math3d.V3(0, 1.2, 0)), nil
}

// boredBox is a rounded box with a cylindrical hole along Z.
func boredBox() (sdf.SDF3, error) {
	box, err := sdf.Box3D(v3.Vec{X: 2, Y: 2, Z: 2}, 0.3)
	if err != nil {
		return nil, fmt.Errorf("box: %w", err)
	}
	hole, err := sdf.Cylinder3D(3, 0.55, 0)
	if err != nil {
		return nil, fmt.Errorf("cylinder: %w", err)
	}
	return sdf.Difference3D(box, hole), nil
}

func buildSDF(Options) (*scene.Scene, *render.Camera, error) {
	solid, err := boredBox()
	if err != nil {
		return nil, nil, err
	}

	sc := scene.New()
	sc.Background = shade.RGB(0.12, 0.1, 0.1)

	marched := place(geom.NewImplicit(solid),
		math3d.Translate(math3d.V3(-1.8, 1, 0)).Mul(math3d.RotateY(math.Pi/8)),
		shade.NewPhong(shade.RGB(0.6, 0.6, 0.9)))

	mesh := geom.Tessellate(solid, 48)
	mesh.SetTransform(math3d.Translate(math3d.V3(1.8, 1, 0)).Mul(math3d.RotateY(-math.Pi / 8)))
	mesh.SetMaterial(shade.NewPhong(shade.RGB(0.9, 0.6, 0.4)))

	sc.Add(checkerFloor(shade.Gray(0.8), shade.Gray(0.3)), marched, mesh)
	defaultLights(sc)

	return sc, camera(math3d.V3(0, 2.5, 7), math3d.V3(0, 1, 0)), nil
}

func buildBillboards(Options) (*scene.Scene, *render.Camera, error) {
	sc := scene.New()
	sc.Background = shade.RGB(0.05, 0.05, 0.05)

	for i := range 5 {
		x := float64(i-2) * 1.6
		mat := shade.NewPhong(shade.White)
		mat.Pattern = shade.Stripe{A: shade.RGB(0.9, 0.2, 0.2), B: shade.RGB(0.9, 0.9, 0.9), Width: 0.2}
		mat.Specular = 0.2
		var b *geom.Billboard
		if i%2 == 0 {
			b = geom.NewQuad(0.6, 0.9)
		} else {
			b = geom.NewDisc(0.6, 0.6)
		}
		sc.Add(place(b, math3d.Translate(math3d.V3(x, 1, -float64(i%2))), mat))
	}

	sc.Add(checkerFloor(shade.Gray(0.6), shade.Gray(0.2)))
	sc.AddLight(
		shade.NewAmbientLight(shade.White, 0.5),
		shade.NewSpotLight(math3d.V3(0, 6, 4), math3d.V3(0, -1, -0.8), math.Pi/10, math.Pi/5, shade.White, 1.2),
	)

	return sc, camera(math3d.V3(0, 1.5, 6), math3d.V3(0, 1, 0)), nil
}

func buildGlass(Options) (*scene.Scene, *render.Camera, error) {
	sc := scene.New()
	sc.Background = shade.RGB(0.1, 0.1, 0.1)

	wallMat := shade.NewPhong(shade.White)
	wallMat.Pattern = shade.Checker{A: shade.RGB(0.9, 0.9, 0.2), B: shade.RGB(0.1, 0.3, 0.8), Size: 0.5}
	wallMat.Specular = 0
	wall := place(geom.NewQuad(6, 4), math3d.Translate(math3d.V3(0, 3, -4)), wallMat)

	tinted := shade.NewGlass(1.5)
	tinted.Absorb = shade.RGB(0.7, 1, 0.8)

	// Thick lens: intersection of two offset spheres.
	lens := geom.NewIntersection(
		place(geom.NewSphere(2), math3d.Translate(math3d.V3(0, 0, 1.6)), nil),
		place(geom.NewSphere(2), math3d.Translate(math3d.V3(0, 0, -1.6)), nil),
	)
	lens.SetTransform(math3d.Translate(math3d.V3(2.2, 1.3, 0)))
	lens.SetMaterial(shade.NewGlass(1.5))

	sc.Add(
		checkerFloor(shade.Gray(0.8), shade.Gray(0.3)),
		wall,
		place(geom.NewUnitSphere(), math3d.Translate(math3d.V3(-2, 1, 0)), shade.NewGlass(1.5)),
		place(geom.NewCube(0.7), math3d.Translate(math3d.V3(0, 0.7, 1)).Mul(math3d.RotateY(math.Pi/4)), tinted),
		lens,
	)
	sc.AddLight(
		shade.NewAmbientLight(shade.White, 0.6),
		shade.NewAreaLight(math3d.V3(-1, 6, 2), math3d.V3(2, 0, 0), math3d.V3(0, 0, 2), 3, 3, shade.White, 1),
	)

	return sc, camera(math3d.V3(0, 2, 7), math3d.V3(0, 1, 0)), nil
}

func buildMesh(opts Options) (*scene.Scene, *render.Camera, error) {
	mesh := opts.Mesh
	if mesh == nil {
		if opts.MeshPath == "" {
			return nil, nil, errors.New("no mesh given")
		}
		var err error
		mesh, err = models.LoadGLB(opts.MeshPath)
		if err != nil {
			return nil, nil, err
		}
	}
	if mesh.TriangleCount() == 0 {
		return nil, nil, fmt.Errorf("mesh %q has no triangles", mesh.Name)
	}

	mesh = mesh.Clone()
	mesh.FitTo(3)
	// Rest the mesh on the floor.
	mesh.Transform(math3d.Translate(math3d.V3(0, -mesh.BoundsMin.Y, 0)))

	sc := scene.New()
	sc.Background = shade.RGB(0.1, 0.12, 0.15)
	sc.Add(
		checkerFloor(shade.Gray(0.8), shade.Gray(0.3)),
		mesh.ToGroup(shade.NewPhong(shade.RGB(0.8, 0.8, 0.85))),
	)
	defaultLights(sc)

	return sc, camera(math3d.V3(0, 2.5, 6), math3d.V3(0, 1.2, 0)), nil
}
