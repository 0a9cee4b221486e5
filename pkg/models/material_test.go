package models

import (
	"math"
	"testing"

	"github.com/taigrr/refract/pkg/math3d"
	"github.com/taigrr/refract/pkg/shade"
)

// TestMaterialShade verifies the PBR to Phong conversion.
func TestMaterialShade(t *testing.T) {
	tests := []struct {
		name        string
		mat         Material
		reflective  float64
		transparent float64
		emitter     bool
	}{
		{"rough dielectric", Material{BaseColor: shade.White, Alpha: 1, Metallic: 0, Roughness: 1}, 0, 0, false},
		{"polished metal", Material{BaseColor: shade.White, Alpha: 1, Metallic: 1, Roughness: 0}, 1, 0, false},
		{"half rough metal", Material{BaseColor: shade.White, Alpha: 1, Metallic: 1, Roughness: 0.5}, 0.5, 0, false},
		{"translucent", Material{BaseColor: shade.White, Alpha: 0.25, Roughness: 1}, 0, 0.75, false},
		{"emissive", Material{Alpha: 1, Emission: shade.RGB(1, 0.5, 0)}, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.mat.Shade()
			if _, ok := m.(shade.Emitter); ok != tt.emitter {
				t.Fatalf("emitter = %v, want %v", ok, tt.emitter)
			}
			if math.Abs(m.Reflectivity()-tt.reflective) > 1e-9 {
				t.Errorf("Reflectivity() = %f, want %f", m.Reflectivity(), tt.reflective)
			}
			if math.Abs(m.Transparency()-tt.transparent) > 1e-9 {
				t.Errorf("Transparency() = %f, want %f", m.Transparency(), tt.transparent)
			}
		})
	}
}

// TestMaterialShadeUsesBaseMap verifies textured materials sample their map.
func TestMaterialShadeUsesBaseMap(t *testing.T) {
	tex := shade.NewCheckerTexture(4, 4, 4, shade.RGB(0, 1, 0), shade.RGB(0, 1, 0))
	m := Material{BaseColor: shade.White, Alpha: 1, Roughness: 1, BaseMap: tex}.Shade()

	p, ok := m.(*shade.Phong)
	if !ok {
		t.Fatalf("Shade() = %T, want *shade.Phong", m)
	}
	got := p.SurfaceColor(math3d.V3(0, 1, 0))
	if got.R > 1e-6 || math.Abs(got.G-1) > 1e-6 || got.B > 1e-6 {
		t.Errorf("SurfaceColor = %v, want green", got)
	}
}

// TestFaceMaterialIndex verifies per-face material assignment.
func TestFaceMaterialIndex(t *testing.T) {
	mesh := NewMesh("test")

	mesh.Materials = []Material{
		{Name: "red", BaseColor: shade.RGB(1, 0, 0), Alpha: 1},
		{Name: "green", BaseColor: shade.RGB(0, 1, 0), Alpha: 1},
		{Name: "blue", BaseColor: shade.RGB(0, 0, 1), Alpha: 1},
	}

	mesh.Faces = []Face{
		{V: [3]int{0, 1, 2}, Material: 0},    // red
		{V: [3]int{3, 4, 5}, Material: 1},    // green
		{V: [3]int{6, 7, 8}, Material: 2},    // blue
		{V: [3]int{9, 10, 11}, Material: -1}, // no material
	}

	if mesh.GetFaceMaterial(0) != 0 {
		t.Errorf("Face 0 should have material 0, got %d", mesh.GetFaceMaterial(0))
	}
	if mesh.GetFaceMaterial(1) != 1 {
		t.Errorf("Face 1 should have material 1, got %d", mesh.GetFaceMaterial(1))
	}
	if mesh.GetFaceMaterial(3) != -1 {
		t.Errorf("Face 3 should have material -1, got %d", mesh.GetFaceMaterial(3))
	}
	if mesh.GetFaceMaterial(42) != -1 {
		t.Errorf("Out-of-range face should report -1, got %d", mesh.GetFaceMaterial(42))
	}

	mat := mesh.GetMaterial(0)
	if mat == nil || mat.Name != "red" {
		t.Errorf("GetMaterial(0) should return 'red' material")
	}
	if mesh.GetMaterial(-1) != nil {
		t.Errorf("GetMaterial(-1) should return nil")
	}
	if mesh.GetMaterial(99) != nil {
		t.Errorf("GetMaterial(99) should return nil for out-of-bounds")
	}
}

// TestMeshClonePreservesMaterials verifies Clone copies materials.
func TestMeshClonePreservesMaterials(t *testing.T) {
	mesh := NewMesh("original")
	mesh.Materials = []Material{
		{Name: "mat1", BaseColor: shade.RGB(1, 0, 0)},
		{Name: "mat2", BaseColor: shade.RGB(0, 1, 0)},
	}
	mesh.Faces = []Face{
		{V: [3]int{0, 1, 2}, Material: 0},
		{V: [3]int{3, 4, 5}, Material: 1},
	}

	clone := mesh.Clone()

	if clone.MaterialCount() != mesh.MaterialCount() {
		t.Errorf("Clone should have %d materials, got %d", mesh.MaterialCount(), clone.MaterialCount())
	}

	clone.Materials[0].Name = "modified"
	if mesh.Materials[0].Name == "modified" {
		t.Errorf("Clone should have independent material copy")
	}

	if clone.GetFaceMaterial(0) != 0 || clone.GetFaceMaterial(1) != 1 {
		t.Errorf("Clone should preserve face material indices")
	}
}

func TestMaterialCount(t *testing.T) {
	mesh := NewMesh("test")

	if mesh.MaterialCount() != 0 {
		t.Errorf("Empty mesh should have 0 materials")
	}

	mesh.Materials = make([]Material, 5)
	if mesh.MaterialCount() != 5 {
		t.Errorf("Mesh should have 5 materials, got %d", mesh.MaterialCount())
	}
}
