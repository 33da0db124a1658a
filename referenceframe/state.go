package referenceframe

import (
	"github.com/golang/geo/r3"

	"go.viam.com/wholebody/spatialmath"
)

// Wrench is a force and torque pair expressed in the world frame.
type Wrench struct {
	Force  r3.Vector `json:"force"`
	Torque r3.Vector `json:"torque"`
}

// WholeBodyState is a timestamped snapshot of a legged robot: base and joint state, joint efforts and the state of
// every contact keyed by end-effector name.
type WholeBodyState struct {
	Time     float64 `json:"time"`
	Duration float64 `json:"duration"`

	BasePose         spatialmath.Pose   `json:"-"`
	BaseVelocity     spatialmath.Motion `json:"base_velocity"`
	BaseAcceleration spatialmath.Motion `json:"base_acceleration"`
	BaseWrench       Wrench             `json:"base_wrench"`

	JointPosition     []float64 `json:"joint_position"`
	JointVelocity     []float64 `json:"joint_velocity"`
	JointAcceleration []float64 `json:"joint_acceleration"`
	JointEffort       []float64 `json:"joint_effort"`

	ContactPosition     map[string]r3.Vector `json:"contact_position,omitempty"`
	ContactVelocity     map[string]r3.Vector `json:"contact_velocity,omitempty"`
	ContactAcceleration map[string]r3.Vector `json:"contact_acceleration,omitempty"`
	ContactWrench       map[string]Wrench    `json:"contact_wrench,omitempty"`
}

// NewWholeBodyState returns a state at rest with dof zeroed joint coordinates and an identity base pose.
func NewWholeBodyState(dof int) *WholeBodyState {
	ws := &WholeBodyState{BasePose: spatialmath.NewZeroPose()}
	ws.SetJointDoF(dof)
	return ws
}

// SetJointDoF resizes every joint vector to n entries, all zero.
func (ws *WholeBodyState) SetJointDoF(n int) {
	ws.JointPosition = make([]float64, n)
	ws.JointVelocity = make([]float64, n)
	ws.JointAcceleration = make([]float64, n)
	ws.JointEffort = make([]float64, n)
}

// JointDoF returns the number of joint coordinates in the state.
func (ws *WholeBodyState) JointDoF() int {
	return len(ws.JointPosition)
}

// Configuration projects the state onto the kinematic quantities queries take as input.
func (ws *WholeBodyState) Configuration() Configuration {
	return Configuration{
		BasePose:          ws.BasePose,
		BaseVelocity:      ws.BaseVelocity,
		BaseAcceleration:  ws.BaseAcceleration,
		JointPosition:     ws.JointPosition,
		JointVelocity:     ws.JointVelocity,
		JointAcceleration: ws.JointAcceleration,
	}
}

// SetJointPosition sets the position of the named joint.
func (ws *WholeBodyState) SetJointPosition(m *Model, joint string, value float64) error {
	idx, err := m.JointIndex(joint)
	if err != nil {
		return err
	}
	if err := m.CheckDimension("joint position", ws.JointPosition); err != nil {
		return err
	}
	ws.JointPosition[idx] = value
	return nil
}

// ReducedBodyState summarizes a whole-body state by its center of mass, center of pressure and support region.
type ReducedBodyState struct {
	Time            float64   `json:"time"`
	CoMPosition     r3.Vector `json:"com_position"`
	CoMVelocity     r3.Vector `json:"com_velocity"`
	CoMAcceleration r3.Vector `json:"com_acceleration"`
	CoPPosition     r3.Vector `json:"cop_position"`
	// SupportRegion holds the positions of the active contacts, keyed by end-effector.
	SupportRegion map[string]r3.Vector `json:"support_region,omitempty"`
}
