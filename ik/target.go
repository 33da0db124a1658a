package ik

import (
	"github.com/golang/geo/r3"

	"go.viam.com/wholebody/spatialmath"
)

// PoseTarget is the desired world pose of a frame. Only the position is constrained unless WithOrientation is set.
type PoseTarget struct {
	Pose            spatialmath.Pose
	WithOrientation bool
}

// NewPositionTarget constrains only the position of a frame.
func NewPositionTarget(p r3.Vector) PoseTarget {
	return PoseTarget{Pose: spatialmath.NewPoseFromPoint(p)}
}

// NewPoseTarget constrains both position and orientation of a frame.
func NewPoseTarget(pose spatialmath.Pose) PoseTarget {
	return PoseTarget{Pose: pose, WithOrientation: true}
}

// Rows returns how many residual rows the target contributes.
func (t PoseTarget) Rows() int {
	if t.WithOrientation {
		return spatialmath.MotionDim
	}
	return 3
}

// MotionTarget is the desired world-frame velocity or acceleration of a frame. Only the linear part is constrained
// unless WithAngular is set.
type MotionTarget struct {
	Motion      spatialmath.Motion
	WithAngular bool
}

// NewLinearTarget constrains only the linear motion of a frame.
func NewLinearTarget(linear r3.Vector) MotionTarget {
	return MotionTarget{Motion: spatialmath.Motion{Linear: linear}}
}

// NewMotionTarget constrains both the linear and the angular motion of a frame.
func NewMotionTarget(m spatialmath.Motion) MotionTarget {
	return MotionTarget{Motion: m, WithAngular: true}
}

// Rows returns how many rows the target contributes to a stacked solve.
func (t MotionTarget) Rows() int {
	if t.WithAngular {
		return spatialmath.MotionDim
	}
	return 3
}
