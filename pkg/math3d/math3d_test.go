package math3d

import (
	"math"
	"testing"
)

func approxVec(a, b Vec3, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

func approxMat(a, b Mat4, tol float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

func TestNormalizeZeroVector(t *testing.T) {
	n := Zero3().Normalize()
	if math.IsNaN(n.X) || math.IsNaN(n.Y) || math.IsNaN(n.Z) {
		t.Fatalf("Normalize of zero vector produced NaN: %v", n)
	}
	if n != Zero3() {
		t.Errorf("Normalize(0) = %v, want zero vector", n)
	}
}

func TestReflect(t *testing.T) {
	d := V3(1, -1, 0).Normalize()
	r := d.Reflect(V3(0, 1, 0))
	want := V3(1, 1, 0).Normalize()
	if !approxVec(r, want, 1e-9) {
		t.Errorf("Reflect = %v, want %v", r, want)
	}
}

func TestRefract(t *testing.T) {
	tests := []struct {
		name   string
		dir    Vec3
		eta    float64
		wantOK bool
		want   Vec3
	}{
		{"normal incidence", V3(0, -1, 0), 1 / 1.5, true, V3(0, -1, 0)},
		{"same medium", V3(1, -1, 0).Normalize(), 1, true, V3(1, -1, 0).Normalize()},
		{"total internal reflection", V3(1, -0.2, 0).Normalize(), 1.5, false, Vec3{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.dir.Refract(V3(0, 1, 0), tc.eta)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if ok && !approxVec(got, tc.want, 1e-9) {
				t.Errorf("Refract = %v, want %v", got, tc.want)
			}
		})
	}

	t.Run("snell", func(t *testing.T) {
		in := V3(math.Sin(0.5), -math.Cos(0.5), 0)
		out, ok := in.Refract(V3(0, 1, 0), 1/1.5)
		if !ok {
			t.Fatal("unexpected total internal reflection")
		}
		sinOut := out.X
		if math.Abs(math.Sin(0.5)-1.5*sinOut) > 1e-9 {
			t.Errorf("Snell's law violated: sin(in)=%v, 1.5*sin(out)=%v", math.Sin(0.5), 1.5*sinOut)
		}
	})
}

func TestAffineInverse(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
	}{
		{"identity", Identity()},
		{"translate", Translate(V3(1, -2, 3))},
		{"rotate", RotateY(0.7).Mul(RotateX(-0.3))},
		{"non-uniform scale", Scale(V3(2, 0.5, 3))},
		{"composite", Translate(V3(4, 5, 6)).Mul(Rotate(V3(1, 1, 0), 1.1)).Mul(Scale(V3(1, 2, 3)))},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			inv, ok := tc.m.AffineInverse()
			if !ok {
				t.Fatal("AffineInverse reported singular matrix")
			}
			if !approxMat(inv.Mul(tc.m), Identity(), 1e-9) {
				t.Errorf("inverse * m != identity: %v", inv.Mul(tc.m))
			}
			if !approxMat(tc.m.Mul(inv), Identity(), 1e-9) {
				t.Errorf("m * inverse != identity: %v", tc.m.Mul(inv))
			}
		})
	}
}

func TestAffineInverseSingular(t *testing.T) {
	inv, ok := Scale(V3(1, 0, 1)).AffineInverse()
	if ok {
		t.Fatal("expected singular matrix to be rejected")
	}
	if inv != Identity() {
		t.Errorf("singular inverse = %v, want identity", inv)
	}
}

func TestNormalMatrixNonUniformScale(t *testing.T) {
	// A sphere squashed along Y: the surface point (1,1,0)/sqrt2 on the unit
	// sphere maps to (1,0.5,0)/sqrt2, whose true normal is along (1,2,0).
	m := Scale(V3(1, 0.5, 1))
	nm, ok := m.NormalMatrix()
	if !ok {
		t.Fatal("NormalMatrix reported singular matrix")
	}
	got := nm.MulNormal(V3(1, 1, 0).Normalize())
	want := V3(1, 2, 0).Normalize()
	if !approxVec(got, want, 1e-9) {
		t.Errorf("MulNormal = %v, want %v", got, want)
	}

	// Translation never reaches normals.
	nm, _ = Translate(V3(5, -3, 2)).Mul(m).NormalMatrix()
	if got := nm.MulNormal(V3(1, 1, 0).Normalize()); !approxVec(got, want, 1e-9) {
		t.Errorf("translated MulNormal = %v, want %v", got, want)
	}
	if nm[3] != 0 || nm[7] != 0 || nm[11] != 0 || nm[12] != 0 || nm[13] != 0 || nm[14] != 0 {
		t.Errorf("normal matrix carries translation: %v", nm)
	}
}

func TestNearZero(t *testing.T) {
	if !V3(1e-9, -1e-9, 0).NearZero(1e-6) {
		t.Error("tiny vector not near zero")
	}
	if V3(0, 0, 1e-3).NearZero(1e-6) {
		t.Error("vector with a large component reported near zero")
	}
}

func TestRayTransform(t *testing.T) {
	r := NewRay(V3(0, 0, 10), V3(0, 0, -2))
	if r.Direction != V3(0, 0, -1) {
		t.Fatalf("NewRay did not normalize: %v", r.Direction)
	}
	if r.Energy != 1 {
		t.Errorf("Energy = %v, want 1", r.Energy)
	}

	// World -> local for a shape scaled by 2: local distances halve.
	inv, _ := ScaleUniform(2).AffineInverse()
	local, scale := r.Transform(inv)
	if math.Abs(scale-0.5) > 1e-12 {
		t.Errorf("scale = %v, want 0.5", scale)
	}
	if !approxVec(local.Origin, V3(0, 0, 5), 1e-12) {
		t.Errorf("local origin = %v, want (0,0,5)", local.Origin)
	}
	if math.Abs(local.Direction.Len()-1) > 1e-12 {
		t.Errorf("local direction not normalized: %v", local.Direction)
	}
	// local t=4 (hits z=1) maps back to world t=8 (z=2).
	if w := 4 / scale; math.Abs(r.At(w).Z-2) > 1e-12 {
		t.Errorf("world point z = %v, want 2", r.At(w).Z)
	}
}

func TestHomogeneousTranslate(t *testing.T) {
	m := Translate(V3(1, 2, 3))
	tests := []struct {
		name string
		in   Vec4
		want Vec3
	}{
		{"point moves", Point4(V3(1, 1, 1)), V3(2, 3, 4)},
		{"direction ignores translation", Dir4(V3(1, 1, 1)), V3(1, 1, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.MulVec4(tt.in).PerspectiveDivide()
			if !approxVec(got, tt.want, 1e-12) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	if got := V4(2, 4, 6, 2).PerspectiveDivide(); !approxVec(got, V3(1, 2, 3), 1e-12) {
		t.Errorf("PerspectiveDivide = %v, want (1,2,3)", got)
	}
}
