package kinematics

import (
	"github.com/golang/geo/r3"

	"go.viam.com/wholebody/referenceframe"
	"go.viam.com/wholebody/spatialmath"
)

// treeState holds the world-frame quantities of every body for one configuration, indexed by body ID.
type treeState struct {
	poses []spatialmath.Pose
	// axes are the joint axes expressed in the world frame.
	axes []r3.Vector
	vel  []spatialmath.Motion
	acc  []spatialmath.Motion
}

func (k *WholeBodyKinematics) jointPosition(cfg referenceframe.Configuration, b *referenceframe.Body) float64 {
	if !b.Joint.HasDoF() {
		return 0
	}
	return cfg.JointPosition[b.Joint.Index]
}

// forwardPose places every body in the world. The root takes the base pose when floating, otherwise its fixed
// transform; every other body is X_parent * T_fixed * T_joint(q).
func (k *WholeBodyKinematics) forwardPose(cfg referenceframe.Configuration) *treeState {
	n := k.model.NumBodies()
	ts := &treeState{
		poses: make([]spatialmath.Pose, n),
		axes:  make([]r3.Vector, n),
	}
	for _, id := range k.order {
		b := &k.bodies[id]
		q := k.jointPosition(cfg, b)
		switch {
		case b.Parent < 0 && b.Joint.Type == referenceframe.FloatingBaseJoint:
			ts.poses[id] = cfg.BasePose
		case b.Parent < 0:
			ts.poses[id] = spatialmath.Compose(b.ParentTransform, b.Joint.Transform(q))
		default:
			jointFrame := spatialmath.Compose(ts.poses[b.Parent], b.ParentTransform)
			ts.poses[id] = spatialmath.Compose(jointFrame, b.Joint.Transform(q))
		}
		// the joint motion leaves its own axis unchanged, so the body orientation maps it to the world
		ts.axes[id] = ts.poses[id].Rotate(b.Joint.Axis)
	}
	return ts
}

// parentMotion returns the motion and origin of a body's parent. The root's parent is the world, at rest.
func (ts *treeState) parentMotion(b *referenceframe.Body, motions []spatialmath.Motion) (spatialmath.Motion, r3.Vector) {
	if b.Parent < 0 {
		return spatialmath.Motion{}, ts.poses[b.ID].Point()
	}
	return motions[b.Parent], ts.poses[b.Parent].Point()
}

// forwardVelocity propagates spatial velocities from the root outwards.
func (k *WholeBodyKinematics) forwardVelocity(cfg referenceframe.Configuration, ts *treeState) {
	ts.vel = make([]spatialmath.Motion, len(k.bodies))
	for _, id := range k.order {
		b := &k.bodies[id]
		if b.Parent < 0 && b.Joint.Type == referenceframe.FloatingBaseJoint {
			ts.vel[id] = cfg.BaseVelocity
			continue
		}
		parent, parentOrigin := ts.parentMotion(b, ts.vel)
		r := ts.poses[id].Point().Sub(parentOrigin)

		v := spatialmath.Motion{
			Linear:  parent.Linear.Add(parent.Angular.Cross(r)),
			Angular: parent.Angular,
		}
		if b.Joint.HasDoF() {
			qd := cfg.Velocity(b.Joint.Index)
			a := ts.axes[id]
			//nolint:exhaustive
			switch b.Joint.Type {
			case referenceframe.RevoluteJoint:
				v.Angular = v.Angular.Add(a.Mul(qd))
			case referenceframe.PrismaticJoint:
				v.Linear = v.Linear.Add(a.Mul(qd))
			}
		}
		ts.vel[id] = v
	}
}

// forwardAcceleration propagates classical accelerations of the body origins, including the Coriolis and
// centripetal terms. With withAcc false the joint and base accelerations are taken as zero, which leaves only the
// velocity-dependent bias.
func (k *WholeBodyKinematics) forwardAcceleration(cfg referenceframe.Configuration, ts *treeState, withAcc bool) {
	ts.acc = make([]spatialmath.Motion, len(k.bodies))
	for _, id := range k.order {
		b := &k.bodies[id]
		if b.Parent < 0 && b.Joint.Type == referenceframe.FloatingBaseJoint {
			if withAcc {
				ts.acc[id] = cfg.BaseAcceleration
			}
			continue
		}
		parentVel, parentOrigin := ts.parentMotion(b, ts.vel)
		parentAcc, _ := ts.parentMotion(b, ts.acc)
		r := ts.poses[id].Point().Sub(parentOrigin)
		w := parentVel.Angular

		acc := spatialmath.Motion{
			Linear:  parentAcc.Linear.Add(parentAcc.Angular.Cross(r)).Add(w.Cross(w.Cross(r))),
			Angular: parentAcc.Angular,
		}
		if b.Joint.HasDoF() {
			qd := cfg.Velocity(b.Joint.Index)
			qdd := 0.0
			if withAcc {
				qdd = cfg.Acceleration(b.Joint.Index)
			}
			a := ts.axes[id]
			//nolint:exhaustive
			switch b.Joint.Type {
			case referenceframe.RevoluteJoint:
				acc.Angular = acc.Angular.Add(w.Cross(a).Mul(qd)).Add(a.Mul(qdd))
			case referenceframe.PrismaticJoint:
				acc.Linear = acc.Linear.Add(w.Cross(a).Mul(2 * qd)).Add(a.Mul(qdd))
			}
		}
		ts.acc[id] = acc
	}
}

// ComputePose returns the world pose of each requested frame. With no frames, every end-effector is evaluated.
func (k *WholeBodyKinematics) ComputePose(
	cfg referenceframe.Configuration,
	frames ...string,
) (map[string]spatialmath.Pose, error) {
	names, ids, err := k.prepare(cfg, frames)
	if err != nil {
		return nil, err
	}
	ts := k.forwardPose(cfg)
	out := make(map[string]spatialmath.Pose, len(names))
	for i, name := range names {
		out[name] = ts.poses[ids[i]]
	}
	return out, nil
}

// ComputeVelocity returns the world-frame velocity of each requested frame: the linear velocity of its origin
// and its angular velocity.
func (k *WholeBodyKinematics) ComputeVelocity(
	cfg referenceframe.Configuration,
	frames ...string,
) (map[string]spatialmath.Motion, error) {
	names, ids, err := k.prepare(cfg, frames)
	if err != nil {
		return nil, err
	}
	ts := k.forwardPose(cfg)
	k.forwardVelocity(cfg, ts)
	return pick(names, ids, ts.vel), nil
}

// ComputeAcceleration returns the world-frame acceleration of each requested frame: the linear acceleration of
// its origin and its angular acceleration.
func (k *WholeBodyKinematics) ComputeAcceleration(
	cfg referenceframe.Configuration,
	frames ...string,
) (map[string]spatialmath.Motion, error) {
	names, ids, err := k.prepare(cfg, frames)
	if err != nil {
		return nil, err
	}
	ts := k.forwardPose(cfg)
	k.forwardVelocity(cfg, ts)
	k.forwardAcceleration(cfg, ts, true)
	return pick(names, ids, ts.acc), nil
}

// ComputeJdQd returns the acceleration bias of each requested frame, the product of the Jacobian's time
// derivative with the generalized velocity. It is the frame acceleration at zero joint and base acceleration.
func (k *WholeBodyKinematics) ComputeJdQd(
	cfg referenceframe.Configuration,
	frames ...string,
) (map[string]spatialmath.Motion, error) {
	names, ids, err := k.prepare(cfg, frames)
	if err != nil {
		return nil, err
	}
	ts := k.forwardPose(cfg)
	k.forwardVelocity(cfg, ts)
	k.forwardAcceleration(cfg, ts, false)
	return pick(names, ids, ts.acc), nil
}

func pick(names []string, ids []int, motions []spatialmath.Motion) map[string]spatialmath.Motion {
	out := make(map[string]spatialmath.Motion, len(names))
	for i, name := range names {
		out[name] = motions[ids[i]]
	}
	return out
}
