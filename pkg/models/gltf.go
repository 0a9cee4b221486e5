package models

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/qmuntal/gltf"
	"github.com/taigrr/refract/pkg/math3d"
	"github.com/taigrr/refract/pkg/shade"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "models"})

// SetLogger replaces the package logger.
func SetLogger(l *log.Logger) { logger = l }

// GLTFLoader loads GLTF/GLB files into Mesh format.
type GLTFLoader struct {
	// SmoothNormals computes area-weighted vertex normals for files that
	// carry none. Otherwise such meshes render with flat faces.
	SmoothNormals bool
	// Materials extracts PBR materials and base color textures.
	Materials bool
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		SmoothNormals: true,
		Materials:     true,
	}
}

// LoadGLB loads a binary GLTF (.glb) file.
func LoadGLB(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load loads a GLTF or GLB file and returns a Mesh.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return l.FromDocument(doc, filepath.Base(path), filepath.Dir(path))
}

// FromDocument converts an already decoded document. External image URIs
// are resolved against dir.
func (l *GLTFLoader) FromDocument(doc *gltf.Document, name, dir string) (*Mesh, error) {
	mesh := NewMesh(name)

	if l.Materials {
		mesh.Materials = readMaterials(doc, dir)
	}

	for _, m := range doc.Meshes {
		if err := l.processMesh(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}

	if l.SmoothNormals && !mesh.hasNormals() {
		mesh.CalculateSmoothNormals()
	}

	mesh.CalculateBounds()
	logger.Debug("loaded mesh", "name", name, "vertices", mesh.VertexCount(),
		"triangles", mesh.TriangleCount(), "materials", mesh.MaterialCount())

	return mesh, nil
}

// processMesh extracts geometry from a GLTF mesh. Faces keep the file's
// counter-clockwise winding, so geometric normals point outward.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals []math3d.Vec3
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err = readVec3Accessor(doc, normIdx)
			if err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}

		var uvs []math3d.Vec2
		if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err = readVec2Accessor(doc, uvIdx)
			if err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}

		material := -1
		if prim.Material != nil && *prim.Material < len(mesh.Materials) {
			material = *prim.Material
		}

		baseVertex := len(mesh.Vertices)

		for i := range positions {
			v := MeshVertex{
				Position: positions[i],
			}
			if i < len(normals) {
				v.Normal = normals[i]
			}
			if i < len(uvs) {
				// GLTF uses top-left origin (V=0 at top), flip V for bottom-left origin
				v.UV = math3d.V2(uvs[i].X, 1.0-uvs[i].Y)
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		var indices []int
		if prim.Indices != nil {
			indices, err = readIndices(doc, *prim.Indices)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		for i := 0; i+2 < len(indices); i += 3 {
			f := Face{Material: material}
			for j := range 3 {
				idx := indices[i+j]
				if idx < 0 || idx >= len(positions) {
					return fmt.Errorf("index %d out of range for %d vertices", idx, len(positions))
				}
				f.V[j] = baseVertex + idx
			}
			mesh.Faces = append(mesh.Faces, f)
		}
	}

	return nil
}

// readMaterials converts the document's metallic-roughness materials.
// Missing factors take the glTF defaults.
func readMaterials(doc *gltf.Document, dir string) []Material {
	textures := make(map[int]*shade.Texture)
	out := make([]Material, 0, len(doc.Materials))

	for _, gm := range doc.Materials {
		m := Material{
			Name:      gm.Name,
			BaseColor: shade.White,
			Alpha:     1,
			Metallic:  1,
			Roughness: 1,
			Emission: shade.RGB(
				float64(gm.EmissiveFactor[0]),
				float64(gm.EmissiveFactor[1]),
				float64(gm.EmissiveFactor[2]),
			),
		}
		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			if f := pbr.BaseColorFactor; f != nil {
				m.BaseColor = shade.RGB(f[0], f[1], f[2])
				m.Alpha = f[3]
			}
			if pbr.MetallicFactor != nil {
				m.Metallic = *pbr.MetallicFactor
			}
			if pbr.RoughnessFactor != nil {
				m.Roughness = *pbr.RoughnessFactor
			}
			if info := pbr.BaseColorTexture; info != nil {
				tex, ok := textures[info.Index]
				if !ok {
					tex = readTexture(doc, info.Index, dir)
					textures[info.Index] = tex
				}
				m.BaseMap = tex
			}
		}
		if gm.AlphaMode == gltf.AlphaOpaque {
			m.Alpha = 1
		}
		out = append(out, m)
	}

	return out
}

// readTexture decodes the image behind a texture index. Failures are
// logged and yield nil so the material falls back to its base color.
func readTexture(doc *gltf.Document, index int, dir string) *shade.Texture {
	if index < 0 || index >= len(doc.Textures) || doc.Textures[index].Source == nil {
		return nil
	}
	src := *doc.Textures[index].Source
	if src < 0 || src >= len(doc.Images) {
		return nil
	}

	data, err := imageBytes(doc, doc.Images[src], dir)
	if err != nil {
		logger.Warn("skipping texture", "image", src, "err", err)
		return nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		logger.Warn("skipping texture", "image", src, "err", err)
		return nil
	}
	return shade.TextureFromImage(img)
}

// imageBytes returns the encoded image data, either embedded in a buffer
// view or stored in a file next to the document.
func imageBytes(doc *gltf.Document, img *gltf.Image, dir string) ([]byte, error) {
	if img.BufferView != nil {
		bv := doc.BufferViews[*img.BufferView]
		buf := doc.Buffers[bv.Buffer]
		end := bv.ByteOffset + bv.ByteLength
		if buf.Data == nil || end > len(buf.Data) {
			return nil, fmt.Errorf("buffer view %d out of range", *img.BufferView)
		}
		return buf.Data[bv.ByteOffset:end], nil
	}
	if img.URI == "" || strings.HasPrefix(img.URI, "data:") {
		return nil, fmt.Errorf("unsupported image source")
	}
	return os.ReadFile(filepath.Join(dir, img.URI))
}

// readVec3Accessor reads Vec3 data from a GLTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("expected VEC3, got %v", accessor.Type)
	}

	floats, err := readFloats(doc, accessor, 3)
	if err != nil {
		return nil, err
	}

	result := make([]math3d.Vec3, accessor.Count)
	for i := range result {
		result[i] = math3d.V3(floats[i*3], floats[i*3+1], floats[i*3+2])
	}
	return result, nil
}

// readVec2Accessor reads Vec2 data from a GLTF accessor.
func readVec2Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec2, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec2 {
		return nil, fmt.Errorf("expected VEC2, got %v", accessor.Type)
	}

	floats, err := readFloats(doc, accessor, 2)
	if err != nil {
		return nil, err
	}

	result := make([]math3d.Vec2, accessor.Count)
	for i := range result {
		result[i] = math3d.V2(floats[i*2], floats[i*2+1])
	}
	return result, nil
}

// readIndices reads index data from a GLTF accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR indices, got %v", accessor.Type)
	}

	var size int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index component type: %v", accessor.ComponentType)
	}

	data, start, stride, err := accessorBytes(doc, accessor, size)
	if err != nil {
		return nil, err
	}

	result := make([]int, accessor.Count)
	for i := range result {
		b := data[start+i*stride:]
		switch size {
		case 1:
			result[i] = int(b[0])
		case 2:
			result[i] = int(binary.LittleEndian.Uint16(b))
		case 4:
			result[i] = int(binary.LittleEndian.Uint32(b))
		}
	}
	return result, nil
}

// readFloats reads n float32 components per element.
func readFloats(doc *gltf.Document, accessor *gltf.Accessor, n int) ([]float64, error) {
	if accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("unsupported component type %v", accessor.ComponentType)
	}
	data, start, stride, err := accessorBytes(doc, accessor, n*4)
	if err != nil {
		return nil, err
	}

	result := make([]float64, accessor.Count*n)
	for i := range accessor.Count {
		offset := start + i*stride
		for j := range n {
			bits := binary.LittleEndian.Uint32(data[offset+j*4:])
			result[i*n+j] = float64(math.Float32frombits(bits))
		}
	}
	return result, nil
}

// accessorBytes resolves an accessor to its buffer, the offset of its
// first element and the element stride, checking that every element
// lies inside the buffer.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elemSize int) ([]byte, int, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, 0, fmt.Errorf("accessor has no buffer view")
	}

	bufferView := doc.BufferViews[*accessor.BufferView]
	buffer := doc.Buffers[bufferView.Buffer]
	if buffer.Data == nil {
		return nil, 0, 0, fmt.Errorf("buffer has no data")
	}

	start := bufferView.ByteOffset + accessor.ByteOffset
	stride := bufferView.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	if accessor.Count > 0 {
		end := start + (accessor.Count-1)*stride + elemSize
		if end > len(buffer.Data) {
			return nil, 0, 0, fmt.Errorf("accessor reads past end of buffer (%d > %d)", end, len(buffer.Data))
		}
	}
	return buffer.Data, start, stride, nil
}
