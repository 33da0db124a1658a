package referenceframe

import (
	"encoding/json"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"go.viam.com/wholebody/spatialmath"
)

var (
	// ErrNoModelInformation is used when there is no model information.
	ErrNoModelInformation = errors.New("no model information")

	// ErrCircularReference is returned when the parent relations of a model do not form a tree.
	ErrCircularReference = errors.New("infinite loop finding path from end effector to world")
)

// ModelConfig is the plain description of a kinematic tree, as produced by a model loader.
type ModelConfig struct {
	Name   string       `json:"name"`
	Bodies []BodyConfig `json:"bodies"`
	// EndEffectors names the frames that default queries are evaluated on. When empty, every leaf body is an
	// end-effector.
	EndEffectors []string `json:"end_effectors,omitempty"`
}

// BodyConfig describes one body and the joint attaching it to its parent. The joint frame is placed in the parent
// body frame by Translation followed by RPY; the body frame coincides with the joint frame at zero joint position.
type BodyConfig struct {
	Name string `json:"name"`
	// Parent is empty for the root body.
	Parent      string                   `json:"parent,omitempty"`
	Joint       JointConfig              `json:"joint"`
	Translation r3.Vector                `json:"translation"`
	RPY         *spatialmath.EulerAngles `json:"rpy,omitempty"`
	Mass        float64                  `json:"mass,omitempty"`
	CoM         r3.Vector                `json:"com"`
}

// JointConfig describes a joint. Nil limits are unbounded.
type JointConfig struct {
	Name string    `json:"name,omitempty"`
	Type string    `json:"type"`
	Axis r3.Vector `json:"axis"`
	Min  *float64  `json:"min,omitempty"`
	Max  *float64  `json:"max,omitempty"`
}

// UnmarshalModelJSON will parse the given JSON data into a kinematic tree. modelName sets the name of the model,
// the name from the JSON is used if it is empty.
func UnmarshalModelJSON(jsonData []byte, modelName string) (*Model, error) {
	// empty data probably means that the caller has no model information
	if len(jsonData) == 0 {
		return nil, ErrNoModelInformation
	}
	cfg := &ModelConfig{}
	if err := json.Unmarshal(jsonData, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal json model")
	}
	return cfg.ParseConfig(modelName)
}

func (jc JointConfig) limit() Limit {
	l := Unbounded()
	if jc.Min != nil {
		l.Min = *jc.Min
	}
	if jc.Max != nil {
		l.Max = *jc.Max
	}
	return l
}

func (bc BodyConfig) jointName() string {
	if bc.Joint.Name != "" {
		return bc.Joint.Name
	}
	return bc.Name + "_joint"
}

func (bc BodyConfig) parentTransform() spatialmath.Pose {
	if bc.RPY == nil {
		return spatialmath.NewPoseFromPoint(bc.Translation)
	}
	return spatialmath.NewPose(bc.Translation, bc.RPY)
}

func isRoot(bc BodyConfig) bool {
	return bc.Parent == "" || bc.Parent == World
}

// Validate checks the description for structural problems, reporting all of them at once.
func (cfg *ModelConfig) Validate() error {
	var errs error
	if len(cfg.Bodies) == 0 {
		return ErrNoModelInformation
	}

	names := lo.Map(cfg.Bodies, func(b BodyConfig, _ int) string { return b.Name })
	for _, dup := range lo.FindDuplicates(names) {
		errs = multierr.Append(errs, NewInvalidModelError("duplicate body name %q", dup))
	}
	actuated := lo.Filter(cfg.Bodies, func(b BodyConfig, _ int) bool {
		jt, err := ParseJointType(b.Joint.Type)
		return err == nil && jt.DoF() > 0
	})
	jointNames := lo.Map(actuated, func(b BodyConfig, _ int) string { return b.jointName() })
	for _, dup := range lo.FindDuplicates(jointNames) {
		errs = multierr.Append(errs, NewInvalidModelError("duplicate joint name %q", dup))
	}

	known := lo.SliceToMap(names, func(n string) (string, struct{}) { return n, struct{}{} })
	roots := 0
	for _, b := range cfg.Bodies {
		if b.Name == "" {
			errs = multierr.Append(errs, NewInvalidModelError("body with empty name"))
		}
		if b.Name == World {
			errs = multierr.Append(errs, NewInvalidModelError("body name %q is reserved", World))
		}
		if isRoot(b) {
			roots++
		} else if _, ok := known[b.Parent]; !ok {
			errs = multierr.Append(errs, NewInvalidModelError("body %q has unknown parent %q", b.Name, b.Parent))
		}

		jt, err := ParseJointType(b.Joint.Type)
		if err != nil {
			errs = multierr.Append(errs, NewInvalidModelError("body %q: %v", b.Name, err))
			continue
		}
		if jt == FloatingBaseJoint && !isRoot(b) {
			errs = multierr.Append(errs, NewInvalidModelError("floating joint on non-root body %q", b.Name))
		}
		if jt.DoF() > 0 && b.Joint.Axis.Norm() == 0 {
			errs = multierr.Append(errs, NewInvalidModelError("joint %q has a zero axis", b.jointName()))
		}
		if l := b.Joint.limit(); l.Min > l.Max {
			errs = multierr.Append(errs, NewInvalidModelError("joint %q has min %v greater than max %v", b.jointName(), l.Min, l.Max))
		}
		if b.Mass < 0 {
			errs = multierr.Append(errs, NewInvalidModelError("body %q has negative mass", b.Name))
		}
	}
	if roots != 1 {
		errs = multierr.Append(errs, NewInvalidModelError("model must have exactly one root body, have %d", roots))
	}
	for _, ee := range cfg.EndEffectors {
		if _, ok := known[ee]; !ok {
			errs = multierr.Append(errs, NewUnknownFrameError(ee))
		}
	}
	return errs
}

// ParseConfig converts the ModelConfig into an immutable Model with the name modelName.
func (cfg *ModelConfig) ParseConfig(modelName string) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = cfg.Name
	}

	// Make a map of children for each element, to allow items to be listed out of order
	childMap := map[string][]int{}
	root := -1
	for i, b := range cfg.Bodies {
		if isRoot(b) {
			root = i
			continue
		}
		childMap[b.Parent] = append(childMap[b.Parent], i)
	}

	model := &Model{
		name:        modelName,
		byName:      map[string]int{},
		jointByName: map[string]int{},
	}

	// depth-first from the root, so body IDs and joint indices come out in topological order
	type entry struct{ cfgIdx, parent int }
	stack := []entry{{cfgIdx: root, parent: -1}}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		bc := cfg.Bodies[e.cfgIdx]

		jt, err := ParseJointType(bc.Joint.Type)
		if err != nil {
			return nil, err
		}
		id := len(model.bodies)
		body := Body{
			ID:              id,
			Name:            bc.Name,
			Parent:          e.parent,
			ParentTransform: bc.parentTransform(),
			Joint: Joint{
				Name:  bc.Name,
				Type:  jt,
				Limit: Unbounded(),
				Index: -1,
			},
			Mass: bc.Mass,
			CoM:  bc.CoM,
		}
		if jt.DoF() > 0 {
			body.Joint.Name = bc.jointName()
			body.Joint.Axis = bc.Joint.Axis.Normalize()
			if !strings.EqualFold(bc.Joint.Type, "continuous") {
				body.Joint.Limit = bc.Joint.limit()
			}
			body.Joint.Index = len(model.jointNames)
			model.jointByName[body.Joint.Name] = body.Joint.Index
			model.jointNames = append(model.jointNames, body.Joint.Name)
			model.jointBodies = append(model.jointBodies, id)
			model.limits = append(model.limits, body.Joint.Limit)
		}
		if jt == FloatingBaseJoint {
			model.floatingBase = true
		}

		model.bodies = append(model.bodies, body)
		model.children = append(model.children, nil)
		model.order = append(model.order, id)
		model.byName[bc.Name] = id
		model.totalMass += bc.Mass
		if e.parent < 0 {
			model.chains = append(model.chains, []int{id})
		} else {
			model.children[e.parent] = append(model.children[e.parent], id)
			chain := append(append([]int(nil), model.chains[e.parent]...), id)
			model.chains = append(model.chains, chain)
		}

		// push in reverse so children are visited in the order they were listed
		kids := childMap[bc.Name]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, entry{cfgIdx: kids[i], parent: id})
		}
	}

	// bodies whose parent chain never reaches the root form a cycle
	if len(model.bodies) != len(cfg.Bodies) {
		unreached := lo.Filter(cfg.Bodies, func(b BodyConfig, _ int) bool {
			_, ok := model.byName[b.Name]
			return !ok
		})
		return nil, errors.Wrapf(ErrCircularReference, "bodies %v are not connected to the root",
			lo.Map(unreached, func(b BodyConfig, _ int) string { return b.Name }))
	}

	if len(cfg.EndEffectors) > 0 {
		model.endEffectors = append([]string(nil), cfg.EndEffectors...)
	} else {
		for _, b := range model.bodies {
			if len(model.children[b.ID]) == 0 {
				model.endEffectors = append(model.endEffectors, b.Name)
			}
		}
	}
	return model, nil
}

// Float returns a pointer to v, for filling optional limits in a JointConfig.
func Float(v float64) *float64 {
	return &v
}
