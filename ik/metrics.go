package ik

import (
	"go.viam.com/wholebody/spatialmath"
	"go.viam.com/wholebody/utils"
)

const orientationDistanceScaling = 10.

// Metric scores how far a pose is from some goal. Lower is better.
type Metric func(spatialmath.Pose) float64

// PoseResidual returns the task error of a frame at pose current: the world-frame position error, followed by the
// rotation vector of R_target * R_current^T when the target constrains orientation.
func PoseResidual(current spatialmath.Pose, target PoseTarget) []float64 {
	delta := spatialmath.PoseDelta(current, target.Pose)
	p := delta.Point()
	if !target.WithOrientation {
		return []float64{p.X, p.Y, p.Z}
	}
	r := spatialmath.QuatToR3AA(delta.Quaternion())
	return []float64{p.X, p.Y, p.Z, r.X, r.Y, r.Z}
}

// NewSquaredNormMetric is the distance between two poses used to rank solutions. Orientation error is weighted up
// since it is usually a small number.
func NewSquaredNormMetric(goal spatialmath.Pose) Metric {
	return func(query spatialmath.Pose) float64 {
		delta := spatialmath.PoseDelta(goal, query)
		return delta.Point().Norm2() + spatialmath.QuatToR3AA(delta.Quaternion()).Mul(orientationDistanceScaling).Norm2()
	}
}

// NewPositionOnlyMetric returns the squared distance between the positions of two poses.
func NewPositionOnlyMetric(goal spatialmath.Pose) Metric {
	return func(query spatialmath.Pose) float64 {
		return query.Point().Sub(goal.Point()).Norm2()
	}
}

// NewTargetMetric picks the metric matching what a target constrains.
func NewTargetMetric(target PoseTarget) Metric {
	if target.WithOrientation {
		return NewSquaredNormMetric(target.Pose)
	}
	return NewPositionOnlyMetric(target.Pose)
}

// OrientDist returns the arclength between two orientations in degrees.
func OrientDist(o1, o2 spatialmath.Orientation) float64 {
	return utils.RadToDeg(spatialmath.QuatToR4AA(spatialmath.OrientationBetween(o1, o2).Quaternion()).Theta)
}

// JointMetric returns the squared euclidean distance between two joint vectors of equal length.
func JointMetric(from, to []float64) float64 {
	dist := 0.
	for i, v := range from {
		dist += utils.Square(to[i] - v)
	}
	return dist
}
