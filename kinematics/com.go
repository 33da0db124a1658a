package kinematics

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/wholebody/referenceframe"
)

// comState returns the world-frame position, velocity and acceleration of the whole-body center of mass from the
// propagated body states. Acceleration is only filled when ts.acc is.
func (k *WholeBodyKinematics) comState(ts *treeState) (pos, vel, acc r3.Vector, err error) {
	total := k.model.TotalMass()
	if total <= 0 {
		return r3.Vector{}, r3.Vector{}, r3.Vector{}, errors.Wrap(referenceframe.ErrInvalidModel, "model has no mass")
	}
	for id := range k.bodies {
		b := &k.bodies[id]
		if b.Mass == 0 {
			continue
		}
		com := ts.poses[id].TransformPoint(b.CoM)
		pos = pos.Add(com.Mul(b.Mass))
		// body CoM offset in world coordinates
		d := com.Sub(ts.poses[id].Point())
		if ts.vel != nil {
			v := ts.vel[id]
			vel = vel.Add(v.Linear.Add(v.Angular.Cross(d)).Mul(b.Mass))
		}
		if ts.acc != nil {
			w := ts.vel[id].Angular
			a := ts.acc[id]
			acc = acc.Add(a.Linear.Add(a.Angular.Cross(d)).Add(w.Cross(w.Cross(d))).Mul(b.Mass))
		}
	}
	return pos.Mul(1 / total), vel.Mul(1 / total), acc.Mul(1 / total), nil
}

// ComputeCoM returns the world-frame center of mass of the model.
func (k *WholeBodyKinematics) ComputeCoM(cfg referenceframe.Configuration) (r3.Vector, error) {
	if err := cfg.Validate(k.model); err != nil {
		return r3.Vector{}, err
	}
	pos, _, _, err := k.comState(k.forwardPose(cfg))
	return pos, err
}

// ComputeCoMRate returns the world-frame position and velocity of the center of mass.
func (k *WholeBodyKinematics) ComputeCoMRate(cfg referenceframe.Configuration) (r3.Vector, r3.Vector, error) {
	if err := cfg.Validate(k.model); err != nil {
		return r3.Vector{}, r3.Vector{}, err
	}
	ts := k.forwardPose(cfg)
	k.forwardVelocity(cfg, ts)
	pos, vel, _, err := k.comState(ts)
	return pos, vel, err
}

// ComputeCoMAcceleration returns the world-frame acceleration of the center of mass.
func (k *WholeBodyKinematics) ComputeCoMAcceleration(cfg referenceframe.Configuration) (r3.Vector, error) {
	if err := cfg.Validate(k.model); err != nil {
		return r3.Vector{}, err
	}
	ts := k.forwardPose(cfg)
	k.forwardVelocity(cfg, ts)
	k.forwardAcceleration(cfg, ts, true)
	_, _, acc, err := k.comState(ts)
	return acc, err
}

// ComputeReducedBodyState summarizes a whole-body state. The support region is the state's contact positions,
// or the end-effector positions when the state has none. The center of pressure weights the support points by
// their normal contact force, falling back to their centroid when no contact pushes on the ground.
func (k *WholeBodyKinematics) ComputeReducedBodyState(
	ws *referenceframe.WholeBodyState,
) (*referenceframe.ReducedBodyState, error) {
	cfg := ws.Configuration()
	if err := cfg.Validate(k.model); err != nil {
		return nil, err
	}
	ts := k.forwardPose(cfg)
	k.forwardVelocity(cfg, ts)
	k.forwardAcceleration(cfg, ts, true)
	pos, vel, acc, err := k.comState(ts)
	if err != nil {
		return nil, err
	}

	support := make(map[string]r3.Vector, len(ws.ContactPosition))
	if len(ws.ContactPosition) > 0 {
		for name, p := range ws.ContactPosition {
			support[name] = p
		}
	} else {
		names, ids, err := k.resolveFrames(nil)
		if err != nil {
			return nil, err
		}
		for i, name := range names {
			support[name] = ts.poses[ids[i]].Point()
		}
	}

	return &referenceframe.ReducedBodyState{
		Time:            ws.Time,
		CoMPosition:     pos,
		CoMVelocity:     vel,
		CoMAcceleration: acc,
		CoPPosition:     centerOfPressure(support, ws.ContactWrench),
		SupportRegion:   support,
	}, nil
}

func centerOfPressure(support map[string]r3.Vector, wrenches map[string]referenceframe.Wrench) r3.Vector {
	var weighted, centroid r3.Vector
	var normal float64
	for name, p := range support {
		centroid = centroid.Add(p)
		if w, ok := wrenches[name]; ok && w.Force.Z > 0 {
			weighted = weighted.Add(p.Mul(w.Force.Z))
			normal += w.Force.Z
		}
	}
	if normal > 0 {
		return weighted.Mul(1 / normal)
	}
	if len(support) == 0 {
		return r3.Vector{}
	}
	return centroid.Mul(1 / float64(len(support)))
}
