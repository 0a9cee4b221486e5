package geom

import (
	"math"

	"github.com/taigrr/refract/pkg/math3d"
)

// Plane is the infinite local y=0 plane with normal +Y.
type Plane struct {
	base
}

// NewPlane creates a plane.
func NewPlane() *Plane {
	p := &Plane{}
	p.bind(p, p)
	return p
}

func (pl *Plane) localIntervals(r math3d.Ray) Intervals {
	if math.Abs(r.Direction.Y) < parallelEpsilon {
		return nil
	}
	t := -r.Origin.Y / r.Direction.Y
	return Intervals{point(Intersection{T: t, Point: r.At(t), Normal: math3d.Up()})}
}

func (pl *Plane) localNormal(math3d.Vec3) math3d.Vec3 { return math3d.Up() }

func (pl *Plane) localDistance(p math3d.Vec3) float64 { return p.Y }

func (pl *Plane) localBounds() AABB { return InfiniteAABB() }
