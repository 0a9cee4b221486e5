package math3d

// DefaultEpsilon is the default numerical tolerance for intersection tests,
// CSG boundary comparisons and self-intersection offsets.
const DefaultEpsilon = 1e-4

// Ray is a half-line with a unit direction. Energy in [0,1] is the fraction
// of a primary ray's contribution this ray still carries.
// Rays are values: derived rays are new values.
type Ray struct {
	Origin    Vec3
	Direction Vec3
	Energy    float64
}

// NewRay creates a full-energy ray. The direction is normalized.
func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize(), Energy: 1}
}

// NewRayWithEnergy creates a ray carrying the given energy.
func NewRayWithEnergy(origin, direction Vec3, energy float64) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize(), Energy: energy}
}

// At returns the point at parameter t.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// Transform maps the ray through m and renormalizes the direction.
// The second result is the length of the mapped direction before
// normalization: a parameter t on the returned ray corresponds to
// t/scale on r. A zero scale means m collapsed the direction.
func (r Ray) Transform(m Mat4) (Ray, float64) {
	d := m.MulVec3Dir(r.Direction)
	scale := d.Len()
	if scale == 0 {
		return Ray{Origin: m.MulVec3(r.Origin), Energy: r.Energy}, 0
	}
	return Ray{
		Origin:    m.MulVec3(r.Origin),
		Direction: d.Div(scale),
		Energy:    r.Energy,
	}, scale
}
