package referenceframe

import (
	"go.uber.org/multierr"

	"go.viam.com/wholebody/spatialmath"
)

// Configuration is the generalized state of a model at one instant: the floating-base pose, twist and
// acceleration followed by the joint position, velocity and acceleration vectors in DoF order. A nil velocity or
// acceleration vector is treated as all zeros. The base fields are ignored for fixed-base models.
type Configuration struct {
	BasePose          spatialmath.Pose
	BaseVelocity      spatialmath.Motion
	BaseAcceleration  spatialmath.Motion
	JointPosition     []float64
	JointVelocity     []float64
	JointAcceleration []float64
}

// NewConfiguration returns the zero configuration of a model: identity base pose, base at rest and every joint
// at zero.
func NewConfiguration(m *Model) Configuration {
	return Configuration{
		BasePose:      spatialmath.NewZeroPose(),
		JointPosition: m.ZeroJointPositions(),
	}
}

// Validate checks that every joint vector of the configuration has the length the model expects.
func (c Configuration) Validate(m *Model) error {
	var errs error
	errs = multierr.Append(errs, m.CheckDimension("joint position", c.JointPosition))
	if c.JointVelocity != nil {
		errs = multierr.Append(errs, m.CheckDimension("joint velocity", c.JointVelocity))
	}
	if c.JointAcceleration != nil {
		errs = multierr.Append(errs, m.CheckDimension("joint acceleration", c.JointAcceleration))
	}
	return errs
}

// Velocity returns qd at index i, treating a nil vector as zero.
func (c Configuration) Velocity(i int) float64 {
	if c.JointVelocity == nil {
		return 0
	}
	return c.JointVelocity[i]
}

// Acceleration returns qdd at index i, treating a nil vector as zero.
func (c Configuration) Acceleration(i int) float64 {
	if c.JointAcceleration == nil {
		return 0
	}
	return c.JointAcceleration[i]
}

// WithJointPosition returns a copy of the configuration with a new joint position vector.
func (c Configuration) WithJointPosition(q []float64) Configuration {
	c.JointPosition = q
	return c
}
