package spatialmath

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// OrientationToAngularVel returns the constant world-frame angular velocity, in rad/s, that carries orientation from
// onto orientation to in dt seconds.
func OrientationToAngularVel(from, to Orientation, dt float64) r3.Vector {
	return QuatToAngVel(from.Quaternion(), to.Quaternion(), dt)
}

// QuatToAngVel is OrientationToAngularVel for unit quaternions.
func QuatToAngVel(from, to quat.Number, dt float64) r3.Vector {
	return QuatToR3AA(quat.Mul(to, quat.Conj(from))).Mul(1 / dt)
}

// PoseToMotion returns the constant motion that carries pose from onto pose to in dt seconds: the average linear
// velocity of the origin and the world-frame angular velocity.
func PoseToMotion(from, to Pose, dt float64) Motion {
	delta := PoseDelta(from, to)
	return Motion{
		Linear:  delta.Point().Mul(1 / dt),
		Angular: QuatToR3AA(delta.Quaternion()).Mul(1 / dt),
	}
}
