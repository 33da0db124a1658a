package referenceframe

import (
	"math"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/wholebody/spatialmath"
)

// JointType is the closed set of joints a body can be attached to its parent with.
type JointType int

const (
	// FixedJoint rigidly attaches a body to its parent.
	FixedJoint JointType = iota
	// RevoluteJoint rotates a body about an axis of the joint frame.
	RevoluteJoint
	// PrismaticJoint translates a body along an axis of the joint frame.
	PrismaticJoint
	// FloatingBaseJoint is the virtual 6 DoF joint between the world and the root body. Its state is the base
	// pose and twist of a Configuration, so it contributes nothing to the joint vectors.
	FloatingBaseJoint
)

// ParseJointType converts a joint type name into a JointType. "continuous" is accepted as a revolute joint
// without limits.
func ParseJointType(s string) (JointType, error) {
	switch strings.ToLower(s) {
	case "fixed", "":
		return FixedJoint, nil
	case "revolute", "continuous":
		return RevoluteJoint, nil
	case "prismatic":
		return PrismaticJoint, nil
	case "floating", "floating_base":
		return FloatingBaseJoint, nil
	default:
		return FixedJoint, errors.Errorf("unsupported joint type %q", s)
	}
}

func (jt JointType) String() string {
	switch jt {
	case FixedJoint:
		return "fixed"
	case RevoluteJoint:
		return "revolute"
	case PrismaticJoint:
		return "prismatic"
	case FloatingBaseJoint:
		return "floating"
	default:
		return "unknown"
	}
}

// DoF returns how many entries the joint occupies in the joint vectors.
func (jt JointType) DoF() int {
	switch jt {
	case RevoluteJoint, PrismaticJoint:
		return 1
	case FixedJoint, FloatingBaseJoint:
		return 0
	default:
		return 0
	}
}

// Limit represents the limits of motion for a joint.
type Limit struct {
	Min float64
	Max float64
}

// Unbounded returns a limit that admits any value.
func Unbounded() Limit {
	return Limit{Min: math.Inf(-1), Max: math.Inf(1)}
}

// Contains returns whether v lies within the limit.
func (l Limit) Contains(v float64) bool {
	return v >= l.Min && v <= l.Max
}

// Clamp returns v restricted to the limit.
func (l Limit) Clamp(v float64) float64 {
	return math.Max(l.Min, math.Min(l.Max, v))
}

// Joint connects a body to its parent.
type Joint struct {
	Name string
	Type JointType
	// Axis is a unit vector expressed in the joint frame.
	Axis  r3.Vector
	Limit Limit
	// Index is the position of the joint in the joint vectors, or -1 when the joint has no entry.
	Index int
}

// Transform returns the motion transform of the joint at position q.
func (j Joint) Transform(q float64) spatialmath.Pose {
	switch j.Type {
	case RevoluteJoint:
		return spatialmath.NewPoseFromOrientation(&spatialmath.R4AA{Theta: q, RX: j.Axis.X, RY: j.Axis.Y, RZ: j.Axis.Z})
	case PrismaticJoint:
		return spatialmath.NewPoseFromPoint(j.Axis.Mul(q))
	case FixedJoint, FloatingBaseJoint:
		return spatialmath.NewZeroPose()
	default:
		return spatialmath.NewZeroPose()
	}
}

// HasDoF returns whether the joint has an entry in the joint vectors.
func (j Joint) HasDoF() bool {
	return j.Index >= 0
}
