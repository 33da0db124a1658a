package referenceframe

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/golang/geo/r3"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"go.viam.com/wholebody/spatialmath"
	"go.viam.com/wholebody/utils"
)

// World is the name of the inertial frame every model is expressed in.
const World = "world"

// Body is a rigid body of a kinematic tree together with the joint attaching it to its parent.
type Body struct {
	ID   int
	Name string
	// Parent is the ID of the parent body, or -1 for the root.
	Parent int
	// ParentTransform places the joint frame in the parent body frame. For the root it places the joint frame
	// in the world when the model is fixed-base.
	ParentTransform spatialmath.Pose
	Joint           Joint
	Mass            float64
	// CoM is the center of mass expressed in the body frame.
	CoM r3.Vector
}

// Model is an immutable kinematic tree. Bodies are stored in an arena indexed by ID, with IDs assigned in
// depth-first order from the root so that every parent precedes its children. A Model is safe for concurrent use.
type Model struct {
	name         string
	bodies       []Body
	children     [][]int
	order        []int
	chains       [][]int
	byName       map[string]int
	jointByName  map[string]int
	jointBodies  []int
	jointNames   []string
	limits       []Limit
	endEffectors []string
	floatingBase bool
	totalMass    float64
}

// Name returns the name of the model.
func (m *Model) Name() string {
	return m.name
}

// DoF returns the number of actuated joint coordinates.
func (m *Model) DoF() int {
	return len(m.jointNames)
}

// IsFloatingBase returns whether the root body is attached to the world through a 6 DoF floating joint.
func (m *Model) IsFloatingBase() bool {
	return m.floatingBase
}

// TotalMass returns the sum of all body masses.
func (m *Model) TotalMass() float64 {
	return m.totalMass
}

// NumBodies returns the number of bodies in the tree.
func (m *Model) NumBodies() int {
	return len(m.bodies)
}

// Resolve returns the body ID of the named frame.
func (m *Model) Resolve(frame string) (int, error) {
	id, ok := m.byName[frame]
	if !ok {
		return -1, NewUnknownFrameError(frame)
	}
	return id, nil
}

// ResolveAll resolves every name in frames, failing on the first unknown one.
func (m *Model) ResolveAll(frames []string) ([]int, error) {
	ids := make([]int, 0, len(frames))
	for _, f := range frames {
		id, err := m.Resolve(f)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// JointIndex returns the position of the named joint in the joint vectors.
func (m *Model) JointIndex(joint string) (int, error) {
	idx, ok := m.jointByName[joint]
	if !ok {
		return -1, NewUnknownJointError(joint)
	}
	return idx, nil
}

// JointNames returns the joint names in DoF order.
func (m *Model) JointNames() []string {
	return append([]string(nil), m.jointNames...)
}

// Limits returns the joint limits in DoF order.
func (m *Model) Limits() []Limit {
	return append([]Limit(nil), m.limits...)
}

// EndEffectorNames returns the frames that are treated as end-effectors, in model order.
func (m *Model) EndEffectorNames() []string {
	return append([]string(nil), m.endEffectors...)
}

// FrameNames returns every body name in arena order.
func (m *Model) FrameNames() []string {
	return lo.Map(m.bodies, func(b Body, _ int) string { return b.Name })
}

// String prints out a table of each body in the model, with columns of name, parent, joint, translation,
// orientation and mass.
func (m *Model) String() string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Name", "Parent", "Joint", "Translation", "Orientation", "Mass"})
	for _, b := range m.bodies {
		parent := World
		if b.Parent >= 0 {
			parent = m.bodies[b.Parent].Name
		}
		joint := b.Joint.Type.String()
		if b.Joint.HasDoF() {
			joint = fmt.Sprintf("%s %s [%d]", joint, b.Joint.Name, b.Joint.Index)
		}
		tra := b.ParentTransform.Point()
		ori := b.ParentTransform.Orientation().EulerAngles()
		t.AppendRow(table.Row{
			b.ID,
			b.Name,
			parent,
			joint,
			fmt.Sprintf("X:%.3f, Y:%.3f, Z:%.3f", tra.X, tra.Y, tra.Z),
			fmt.Sprintf(
				"Roll:%.2f, Pitch:%.2f, Yaw:%.2f",
				utils.RadToDeg(ori.Roll),
				utils.RadToDeg(ori.Pitch),
				utils.RadToDeg(ori.Yaw),
			),
			fmt.Sprintf("%.3f", b.Mass),
		})
	}
	return t.Render()
}

// Body returns the body with the given ID.
func (m *Model) Body(id int) Body {
	return m.bodies[id]
}

// Bodies returns a copy of the body arena.
func (m *Model) Bodies() []Body {
	return append([]Body(nil), m.bodies...)
}

// Order returns the cached parent-before-child traversal order of body IDs.
func (m *Model) Order() []int {
	return append([]int(nil), m.order...)
}

// Children returns the IDs of the direct children of a body.
func (m *Model) Children(id int) []int {
	return append([]int(nil), m.children[id]...)
}

// Chain returns the IDs of the bodies from the root down to and including id.
func (m *Model) Chain(id int) []int {
	return append([]int(nil), m.chains[id]...)
}

// CheckDimension verifies that a joint vector matches the model's degrees of freedom.
func (m *Model) CheckDimension(what string, v []float64) error {
	return CheckDimension(what, len(v), m.DoF())
}

// AreJointPositionsValid checks whether the given positions are within the limits of each joint.
func (m *Model) AreJointPositionsValid(q []float64) bool {
	if len(q) != len(m.limits) {
		return false
	}
	for i, l := range m.limits {
		if !l.Contains(q[i]) {
			return false
		}
	}
	return true
}

// ClampToLimits returns a copy of q with every coordinate restricted to its joint limit.
func (m *Model) ClampToLimits(q []float64) []float64 {
	out := make([]float64, len(q))
	for i, v := range q {
		if i < len(m.limits) {
			v = m.limits[i].Clamp(v)
		}
		out[i] = v
	}
	return out
}

// RandomJointPositions generates joint positions that are random but valid for each joint. Unbounded revolute
// joints are sampled in [-pi, pi] and unbounded prismatic joints in [-1, 1].
func (m *Model) RandomJointPositions(randSeed *rand.Rand) []float64 {
	q := make([]float64, 0, len(m.limits))
	for i, l := range m.limits {
		low, high := l.Min, l.Max
		span := 1.0
		if m.bodies[m.jointBodies[i]].Joint.Type == RevoluteJoint {
			span = math.Pi
		}
		if math.IsInf(low, -1) {
			low = -span
		}
		if math.IsInf(high, 1) {
			high = span
		}
		q = append(q, utils.SampleRandomFloatRange(low, high, randSeed))
	}
	return q
}

// JointPositionsFromMap builds a joint vector from values keyed by joint name. Joints that are not named stay at
// zero; unknown names are all reported.
func (m *Model) JointPositionsFromMap(values map[string]float64) ([]float64, error) {
	q := m.ZeroJointPositions()
	var errs error
	for name, v := range values {
		idx, err := m.JointIndex(name)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		q[idx] = v
	}
	if errs != nil {
		return nil, errs
	}
	return q, nil
}

// ZeroJointPositions returns a joint vector of zeros sized to the model.
func (m *Model) ZeroJointPositions() []float64 {
	return make([]float64, m.DoF())
}
