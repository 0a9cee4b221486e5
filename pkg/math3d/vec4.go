package math3d

// Vec4 is a homogeneous coordinate. W is 1 for points and 0 for
// directions, so translation only moves points.
type Vec4 struct {
	X, Y, Z, W float64
}

// V4 creates a new Vec4.
func V4(x, y, z, w float64) Vec4 {
	return Vec4{x, y, z, w}
}

// Point4 lifts a position into homogeneous space (W = 1).
func Point4(p Vec3) Vec4 {
	return Vec4{p.X, p.Y, p.Z, 1}
}

// Dir4 lifts a direction into homogeneous space (W = 0).
func Dir4(d Vec3) Vec4 {
	return Vec4{d.X, d.Y, d.Z, 0}
}

// XYZ drops W.
func (v Vec4) XYZ() Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

// PerspectiveDivide projects back to 3D by dividing through W. Directions
// (W = 0) are returned unchanged.
func (v Vec4) PerspectiveDivide() Vec3 {
	if v.W == 0 {
		return v.XYZ()
	}
	inv := 1 / v.W
	return Vec3{v.X * inv, v.Y * inv, v.Z * inv}
}
