// Package spatialmath defines spatial mathematical operations.
// Poses, orientations and spatial motions used by the kinematics engine all live here. Every rotation crosses
// package boundaries as a unit quaternion; the other parameterizations are conversions layered on top of it.
package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Pose represents a rigid transform: a translation followed by a rotation. Poses are values; composing or
// inverting them never mutates the operands. The zero value is the zero pose.
type Pose struct {
	point       r3.Vector
	orientation quat.Number
}

// NewZeroPose returns a pose at (0,0,0) with the same orientation as its parent.
func NewZeroPose() Pose {
	return Pose{orientation: quat.Number{Real: 1}}
}

// NewPose returns a pose at the given point with the given orientation. A nil orientation means no rotation.
func NewPose(p r3.Vector, o Orientation) Pose {
	if o == nil {
		return NewPoseFromPoint(p)
	}
	return Pose{point: p, orientation: normalizeQuat(o.Quaternion())}
}

// NewPoseFromPoint returns a pose with the given translation and no rotation.
func NewPoseFromPoint(p r3.Vector) Pose {
	return Pose{point: p, orientation: quat.Number{Real: 1}}
}

// NewPoseFromOrientation returns a pose with the given rotation and no translation.
func NewPoseFromOrientation(o Orientation) Pose {
	return NewPose(r3.Vector{}, o)
}

// NewPoseFromQuat returns a pose at the given point whose rotation is the given quaternion. The quaternion is
// normalized; a zero quaternion is treated as no rotation.
func NewPoseFromQuat(p r3.Vector, q quat.Number) Pose {
	return Pose{point: p, orientation: normalizeQuat(q)}
}

// rotation returns the unit quaternion of the pose. An unset orientation is the identity.
func (p Pose) rotation() quat.Number {
	if p.orientation == (quat.Number{}) {
		return quat.Number{Real: 1}
	}
	return p.orientation
}

// Point returns the translation of the pose.
func (p Pose) Point() r3.Vector {
	return p.point
}

// Orientation returns the rotation of the pose as a unit quaternion.
func (p Pose) Orientation() Orientation {
	q := Quaternion(p.rotation())
	return &q
}

// Quaternion returns the rotation of the pose as a unit quaternion number.
func (p Pose) Quaternion() quat.Number {
	return p.rotation()
}

// RotationMatrix returns the rotation of the pose as an orthonormal matrix.
func (p Pose) RotationMatrix() *RotationMatrix {
	return QuatToRotationMatrix(p.rotation())
}

// Rotate applies only the rotation of the pose to v.
func (p Pose) Rotate(v r3.Vector) r3.Vector {
	return RotateVector(p.rotation(), v)
}

// TransformPoint maps a point expressed in this pose's frame into the parent frame.
func (p Pose) TransformPoint(v r3.Vector) r3.Vector {
	return p.point.Add(p.Rotate(v))
}

func (p Pose) String() string {
	q := p.rotation()
	return fmt.Sprintf("{X:%.6f Y:%.6f Z:%.6f W:%.6f I:%.6f J:%.6f K:%.6f}",
		p.point.X, p.point.Y, p.point.Z,
		q.Real, q.Imag, q.Jmag, q.Kmag)
}

// Compose returns the pose that results from first applying b and then a, i.e. the pose of b's frame when b is
// expressed relative to a.
func Compose(a, b Pose) Pose {
	return Pose{
		point:       a.point.Add(a.Rotate(b.point)),
		orientation: normalizeQuat(quat.Mul(a.rotation(), b.rotation())),
	}
}

// PoseInverse returns the pose that undoes p, so that Compose(p, PoseInverse(p)) is the zero pose.
func PoseInverse(p Pose) Pose {
	conj := quat.Conj(p.rotation())
	return Pose{
		point:       RotateVector(conj, p.point).Mul(-1),
		orientation: conj,
	}
}

// PoseBetween returns the pose of b expressed in the frame of a.
func PoseBetween(a, b Pose) Pose {
	return Compose(PoseInverse(a), b)
}

// PoseDelta returns the world-frame difference between two poses: the translation from a to b and the rotation
// that carries a's orientation onto b's.
func PoseDelta(a, b Pose) Pose {
	return Pose{
		point:       b.point.Sub(a.point),
		orientation: normalizeQuat(quat.Mul(b.rotation(), quat.Conj(a.rotation()))),
	}
}

// PoseAlmostEqual will return a bool describing whether 2 poses are approximately the same.
func PoseAlmostEqual(a, b Pose) bool {
	return PoseAlmostEqualEps(a, b, 1e-8)
}

// PoseAlmostEqualEps will return a bool describing whether 2 poses are approximately the same, with a given
// tolerance on both translation and rotation.
func PoseAlmostEqualEps(a, b Pose, epsilon float64) bool {
	return R3VectorAlmostEqual(a.point, b.point, epsilon) &&
		QuaternionAlmostEqual(a.rotation(), b.rotation(), epsilon)
}

// RotateVector rotates v by the unit quaternion q. A zero quaternion leaves v unchanged.
func RotateVector(q quat.Number, v r3.Vector) r3.Vector {
	if q == (quat.Number{}) {
		return v
	}
	rotated := quat.Mul(quat.Mul(q, quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}), quat.Conj(q))
	return r3.Vector{X: rotated.Imag, Y: rotated.Jmag, Z: rotated.Kmag}
}

func normalizeQuat(q quat.Number) quat.Number {
	norm := quat.Abs(q)
	if norm == 0 {
		return quat.Number{Real: 1}
	}
	return quat.Scale(1/norm, q)
}
