package spatialmath

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// MotionDim is the number of components of a spatial motion vector.
const MotionDim = 6

// Motion is the spatial velocity or acceleration of a frame: the linear motion of the frame origin and the
// angular motion of the frame, both expressed in the world frame. As a 6-vector it is laid out linear first.
type Motion struct {
	Linear  r3.Vector `json:"linear"`
	Angular r3.Vector `json:"angular"`
}

// NewMotion creates a Motion from its linear and angular parts.
func NewMotion(linear, angular r3.Vector) Motion {
	return Motion{Linear: linear, Angular: angular}
}

// MotionFromVector builds a Motion from a slice laid out as [linear; angular].
func MotionFromVector(v []float64) (Motion, error) {
	if len(v) != MotionDim {
		return Motion{}, errors.Errorf("motion vector must have %d elements, got %d", MotionDim, len(v))
	}
	return Motion{
		Linear:  r3.Vector{X: v[0], Y: v[1], Z: v[2]},
		Angular: r3.Vector{X: v[3], Y: v[4], Z: v[5]},
	}, nil
}

// Vector returns the motion as a [linear; angular] slice.
func (m Motion) Vector() []float64 {
	return []float64{m.Linear.X, m.Linear.Y, m.Linear.Z, m.Angular.X, m.Angular.Y, m.Angular.Z}
}

// Add returns the component-wise sum of two motions.
func (m Motion) Add(o Motion) Motion {
	return Motion{Linear: m.Linear.Add(o.Linear), Angular: m.Angular.Add(o.Angular)}
}

// Sub returns the component-wise difference of two motions.
func (m Motion) Sub(o Motion) Motion {
	return Motion{Linear: m.Linear.Sub(o.Linear), Angular: m.Angular.Sub(o.Angular)}
}

// Mul scales both parts of the motion.
func (m Motion) Mul(s float64) Motion {
	return Motion{Linear: m.Linear.Mul(s), Angular: m.Angular.Mul(s)}
}

// MotionAlmostEqual returns whether two motions agree component-wise within epsilon.
func MotionAlmostEqual(a, b Motion, epsilon float64) bool {
	return R3VectorAlmostEqual(a.Linear, b.Linear, epsilon) && R3VectorAlmostEqual(a.Angular, b.Angular, epsilon)
}
