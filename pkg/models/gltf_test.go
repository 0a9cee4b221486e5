package models

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/refract/pkg/math3d"
	"github.com/taigrr/refract/pkg/shade"
)

func ptr[T any](v T) *T { return &v }

// tetraDocument builds a single-primitive tetrahedron with outward,
// counter-clockwise faces and one material.
func tetraDocument() *gltf.Document {
	positions := []float32{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
	indices := []uint16{
		0, 2, 1,
		0, 1, 3,
		0, 3, 2,
		1, 2, 3,
	}

	var data []byte
	for _, f := range positions {
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(f))
	}
	posLen := len(data)
	for _, i := range indices {
		data = binary.LittleEndian.AppendUint16(data, i)
	}

	return &gltf.Document{
		Buffers: []*gltf.Buffer{{ByteLength: len(data), Data: data}},
		BufferViews: []*gltf.BufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: posLen},
			{Buffer: 0, ByteOffset: posLen, ByteLength: len(data) - posLen},
		},
		Accessors: []*gltf.Accessor{
			{BufferView: ptr(0), ComponentType: gltf.ComponentFloat, Count: 4, Type: gltf.AccessorVec3},
			{BufferView: ptr(1), ComponentType: gltf.ComponentUshort, Count: len(indices), Type: gltf.AccessorScalar},
		},
		Materials: []*gltf.Material{{
			Name: "brass",
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor: &[4]float64{0.8, 0.6, 0.2, 1},
				MetallicFactor:  ptr(1.0),
				RoughnessFactor: ptr(0.0),
			},
		}},
		Meshes: []*gltf.Mesh{{
			Name: "tetra",
			Primitives: []*gltf.Primitive{{
				Attributes: map[string]int{gltf.POSITION: 0},
				Indices:    ptr(1),
				Material:   ptr(0),
			}},
		}},
	}
}

func TestLoadGLBInvalidPath(t *testing.T) {
	_, err := LoadGLB("/nonexistent/path.glb")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestGLTFLoaderCreation(t *testing.T) {
	loader := NewGLTFLoader()
	if loader == nil {
		t.Fatal("NewGLTFLoader returned nil")
	}
	if !loader.SmoothNormals {
		t.Error("SmoothNormals should default to true")
	}
	if !loader.Materials {
		t.Error("Materials should default to true")
	}
}

func TestFromDocument(t *testing.T) {
	loader := &GLTFLoader{Materials: true}
	mesh, err := loader.FromDocument(tetraDocument(), "tetra.glb", "")
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}

	if mesh.VertexCount() != 4 {
		t.Errorf("VertexCount() = %d, want 4", mesh.VertexCount())
	}
	if mesh.TriangleCount() != 4 {
		t.Errorf("TriangleCount() = %d, want 4", mesh.TriangleCount())
	}
	if mesh.Faces[1].V != [3]int{0, 1, 3} {
		t.Errorf("face winding changed: %v", mesh.Faces[1].V)
	}
	if mesh.BoundsMin != math3d.V3(0, 0, 0) || mesh.BoundsMax != math3d.V3(1, 1, 1) {
		t.Errorf("bounds = %v..%v", mesh.BoundsMin, mesh.BoundsMax)
	}

	if mesh.MaterialCount() != 1 {
		t.Fatalf("MaterialCount() = %d, want 1", mesh.MaterialCount())
	}
	m := mesh.Materials[0]
	if m.Name != "brass" || m.Metallic != 1 || m.Roughness != 0 {
		t.Errorf("material = %+v", m)
	}
	if math.Abs(m.BaseColor.G-0.6) > 1e-9 {
		t.Errorf("BaseColor.G = %f, want 0.6", m.BaseColor.G)
	}
	for i, f := range mesh.Faces {
		if f.Material != 0 {
			t.Errorf("face %d material = %d, want 0", i, f.Material)
		}
	}
}

func TestFromDocumentSkipsMaterials(t *testing.T) {
	mesh, err := (&GLTFLoader{}).FromDocument(tetraDocument(), "tetra", "")
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	if mesh.MaterialCount() != 0 {
		t.Errorf("MaterialCount() = %d, want 0", mesh.MaterialCount())
	}
	if mesh.GetFaceMaterial(0) != -1 {
		t.Errorf("face material = %d, want -1", mesh.GetFaceMaterial(0))
	}
}

func TestFromDocumentSmoothNormals(t *testing.T) {
	mesh, err := (&GLTFLoader{SmoothNormals: true}).FromDocument(tetraDocument(), "tetra", "")
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	// The apex at (0,0,1) touches faces with normals -x, -y and (1,1,1).
	n := mesh.Vertices[3].Normal
	if math.Abs(n.Len()-1) > 1e-9 {
		t.Errorf("normal not unit: %v", n)
	}
	if n.Z <= 0 {
		t.Errorf("apex normal should point up, got %v", n)
	}
}

func TestFromDocumentRejectsBadIndices(t *testing.T) {
	doc := tetraDocument()
	doc.Accessors[1].Count = 100
	if _, err := (&GLTFLoader{}).FromDocument(doc, "bad", ""); err == nil {
		t.Error("expected error for accessor past end of buffer")
	}
}

func TestMeshToGroup(t *testing.T) {
	mesh, err := (&GLTFLoader{Materials: true}).FromDocument(tetraDocument(), "tetra", "")
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	g := mesh.ToGroup(shade.NewPhong(shade.White))
	if g.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", g.Len())
	}

	r := math3d.NewRay(math3d.V3(0.2, 0.2, 5), math3d.V3(0, 0, -1))
	hit, ok := g.IntersectNearest(r)
	if !ok {
		t.Fatal("expected hit on slanted face")
	}
	if math.Abs(hit.T-4.4) > 1e-9 {
		t.Errorf("T = %f, want 4.4", hit.T)
	}
	want := math3d.V3(1, 1, 1).Normalize()
	if hit.Normal.Sub(want).Len() > 1e-9 {
		t.Errorf("Normal = %v, want %v", hit.Normal, want)
	}
	if hit.Shape.Material() == nil || hit.Shape.Material().Reflectivity() != 1 {
		t.Error("hit should carry the polished metal face material")
	}
}

func TestMeshToGroupFallback(t *testing.T) {
	mesh, err := (&GLTFLoader{}).FromDocument(tetraDocument(), "tetra", "")
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	fallback := shade.NewPhong(shade.RGB(0, 0, 1))
	g := mesh.ToGroup(fallback)
	if g.Material() != fallback {
		t.Error("group should carry the fallback material")
	}

	hit, ok := g.IntersectNearest(math3d.NewRay(math3d.V3(0.2, 0.2, 5), math3d.V3(0, 0, -1)))
	if !ok {
		t.Fatal("expected hit")
	}
	if hit.Shape != g {
		t.Error("group with a material should report itself as the hit shape")
	}
}

func TestMeshFitTo(t *testing.T) {
	mesh, err := (&GLTFLoader{}).FromDocument(tetraDocument(), "tetra", "")
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	mesh.FitTo(4)

	if c := mesh.Center(); c.Len() > 1e-9 {
		t.Errorf("Center() = %v, want origin", c)
	}
	if s := mesh.Size(); math.Abs(s.X-4) > 1e-9 || math.Abs(s.Y-4) > 1e-9 || math.Abs(s.Z-4) > 1e-9 {
		t.Errorf("Size() = %v, want 4x4x4", s)
	}
	if b := mesh.Bounds(); b.IsEmpty() {
		t.Error("Bounds() should not be empty")
	}
}

func TestMeshTransformNormals(t *testing.T) {
	mesh := NewMesh("quad")
	mesh.Vertices = []MeshVertex{
		{Position: math3d.V3(0, 0, 0), Normal: math3d.V3(1, 1, 0).Normalize()},
	}
	mesh.Transform(math3d.Scale(math3d.V3(2, 1, 1)))

	// A surface with normal (1,1,0) stretched along x tilts toward y.
	n := mesh.Vertices[0].Normal
	want := math3d.V3(0.5, 1, 0).Normalize()
	if n.Sub(want).Len() > 1e-9 {
		t.Errorf("Normal = %v, want %v", n, want)
	}
}

func BenchmarkMeshToGroup(b *testing.B) {
	mesh, err := (&GLTFLoader{}).FromDocument(tetraDocument(), "tetra", "")
	if err != nil {
		b.Fatal(err)
	}
	for b.Loop() {
		mesh.ToGroup(nil)
	}
}
