// Package models loads triangle meshes and turns them into shapes the
// ray tracer can intersect.
package models

import (
	"github.com/taigrr/refract/pkg/geom"
	"github.com/taigrr/refract/pkg/math3d"
	"github.com/taigrr/refract/pkg/shade"
)

// Mesh represents a 3D mesh with vertices, faces, and materials.
type Mesh struct {
	Name      string
	Vertices  []MeshVertex
	Faces     []Face
	Materials []Material

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// MeshVertex holds all vertex attributes.
type MeshVertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	UV       math3d.Vec2
}

// Face represents a triangle face with vertex indices and material reference.
type Face struct {
	V        [3]int // Indices into Mesh.Vertices
	Material int    // Index into Mesh.Materials (-1 for no material)
}

// Material is the subset of a glTF metallic-roughness material the
// ray tracer understands.
type Material struct {
	Name      string
	BaseColor shade.Color
	Alpha     float64
	Metallic  float64 // 0 = dielectric, 1 = metal
	Roughness float64 // 0 = smooth, 1 = rough
	BaseMap   *shade.Texture
	Emission  shade.Color
}

// Shade converts the material for the ray tracer. Emissive materials
// become light sources, smooth metals become mirrors and partially
// transparent materials refract like glass.
func (m Material) Shade() shade.Material {
	if !m.Emission.IsBlack() {
		return shade.NewEmissive(m.Emission)
	}
	p := shade.NewPhong(m.BaseColor)
	if m.BaseMap != nil {
		p.Pattern = shade.NewTexturePattern(m.BaseMap, shade.SphericalMap)
	}
	smooth := 1 - clamp01(m.Roughness)
	p.Reflective = clamp01(m.Metallic) * smooth
	p.Specular = 0.2 + 0.8*smooth
	p.Shininess = 10 + 290*smooth
	if m.Alpha > 0 && m.Alpha < 1 {
		p.Transparent = 1 - m.Alpha
		p.RefractiveIndex = 1.5
	}
	return p
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: make([]MeshVertex, 0),
		Faces:    make([]Face, 0),
	}
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Bounds returns the bounding box as a geom.AABB.
func (m *Mesh) Bounds() geom.AABB {
	if len(m.Vertices) == 0 {
		return geom.EmptyAABB()
	}
	return geom.NewAABB(m.BoundsMin, m.BoundsMax)
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// CalculateSmoothNormals computes area-weighted vertex normals.
func (m *Mesh) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Zero3()
	}

	for _, f := range m.Faces {
		v0 := m.Vertices[f.V[0]].Position
		v1 := m.Vertices[f.V[1]].Position
		v2 := m.Vertices[f.V[2]].Position

		// Unnormalized, so larger faces weigh more.
		normal := v1.Sub(v0).Cross(v2.Sub(v0))

		for _, vi := range f.V {
			m.Vertices[vi].Normal = m.Vertices[vi].Normal.Add(normal)
		}
	}

	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

// Transform applies a transformation matrix to all vertices. Normals are
// transformed with the inverse transpose so non-uniform scales keep them
// perpendicular to the surface.
func (m *Mesh) Transform(mat math3d.Mat4) {
	nm, ok := mat.NormalMatrix()
	for i := range m.Vertices {
		m.Vertices[i].Position = mat.MulVec3(m.Vertices[i].Position)
		if ok {
			m.Vertices[i].Normal = nm.MulNormal(m.Vertices[i].Normal)
		}
	}
	m.CalculateBounds()
}

// FitTo centers the mesh on the origin and scales it uniformly so its
// largest dimension equals size.
func (m *Mesh) FitTo(size float64) {
	extent := m.Size().MaxComponent()
	if extent <= 0 {
		return
	}
	m.Transform(math3d.ScaleUniform(size / extent).Mul(math3d.Translate(m.Center().Negate())))
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		Name:      m.Name,
		Vertices:  make([]MeshVertex, len(m.Vertices)),
		Faces:     make([]Face, len(m.Faces)),
		Materials: make([]Material, len(m.Materials)),
		BoundsMin: m.BoundsMin,
		BoundsMax: m.BoundsMax,
	}
	copy(clone.Vertices, m.Vertices)
	copy(clone.Faces, m.Faces)
	copy(clone.Materials, m.Materials)
	return clone
}

// GetFaceMaterial returns the material index of face i, or -1.
func (m *Mesh) GetFaceMaterial(i int) int {
	if i < 0 || i >= len(m.Faces) {
		return -1
	}
	return m.Faces[i].Material
}

// GetMaterial returns the material at index i.
// Returns nil if index is out of bounds or -1.
func (m *Mesh) GetMaterial(i int) *Material {
	if i < 0 || i >= len(m.Materials) {
		return nil
	}
	return &m.Materials[i]
}

// MaterialCount returns the number of materials.
func (m *Mesh) MaterialCount() int {
	return len(m.Materials)
}

// hasNormals reports whether every vertex carries a usable normal.
func (m *Mesh) hasNormals() bool {
	for _, v := range m.Vertices {
		if v.Normal.LenSq() < 1e-12 {
			return false
		}
	}
	return len(m.Vertices) > 0
}

// ToGroup converts the mesh into a group of triangles. Faces use their
// own glTF material when they have one. If no face does, fallback is set
// on the group as a whole; a nil fallback leaves the default material to
// the renderer. Vertex normals, when present, give smooth triangles.
func (m *Mesh) ToGroup(fallback shade.Material) *geom.Group {
	g := geom.NewGroup()
	smooth := m.hasNormals()
	materials := make(map[int]shade.Material)
	perFace := false

	for _, f := range m.Faces {
		a, b, c := m.Vertices[f.V[0]], m.Vertices[f.V[1]], m.Vertices[f.V[2]]
		var tri *geom.Triangle
		if smooth {
			tri = geom.NewSmoothTriangle(a.Position, b.Position, c.Position, a.Normal, b.Normal, c.Normal)
		} else {
			tri = geom.NewTriangle(a.Position, b.Position, c.Position)
		}
		if src := m.GetMaterial(f.Material); src != nil {
			mat, ok := materials[f.Material]
			if !ok {
				mat = src.Shade()
				materials[f.Material] = mat
			}
			tri.SetMaterial(mat)
			perFace = true
		} else if fallback != nil {
			tri.SetMaterial(fallback)
		}
		g.Add(tri)
	}

	if !perFace && fallback != nil {
		g.SetMaterial(fallback)
	}
	return g
}
