// Package ik inverts frame targets into joint positions, velocities and accelerations using damped least squares
// on the fixed-base Jacobian.
package ik

import (
	"context"
	"slices"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/wholebody/kinematics"
	"go.viam.com/wholebody/logging"
	"go.viam.com/wholebody/referenceframe"
	"go.viam.com/wholebody/spatialmath"
)

// JacobianIK is a damped least squares Newton solver. The base is never a free variable: position solves hold
// the base pose fixed and rate solves move the given base motion to the right hand side.
type JacobianIK struct {
	kin    *kinematics.WholeBodyKinematics
	model  *referenceframe.Model
	cfg    Config
	logger logging.Logger
}

// NewJacobianIK creates a solver over kin. Unset config fields take their defaults.
func NewJacobianIK(kin *kinematics.WholeBodyKinematics, cfg Config, logger logging.Logger) (*JacobianIK, error) {
	if kin == nil {
		return nil, errors.New("cannot create ik solver without kinematics")
	}
	if err := cfg.Validate("ik"); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Global()
	}
	return &JacobianIK{
		kin:    kin,
		model:  kin.Model(),
		cfg:    cfg.withDefaults(),
		logger: logger.Sublogger("ik"),
	}, nil
}

// Config returns the solver parameters in use, defaults included.
func (ik *JacobianIK) Config() Config {
	return ik.cfg
}

// ComputeJointPosition searches for joint positions that bring every target frame to its target, with the base
// held at base. A nil seed starts from zero. A solve that runs out of iterations still returns the lowest
// residual estimate found, with Converged unset; Solution.Err reports it as an unreachable target.
func (ik *JacobianIK) ComputeJointPosition(
	base spatialmath.Pose,
	targets map[string]PoseTarget,
	seed []float64,
) (*Solution, error) {
	frames, q, err := ik.prepare(targets, seed)
	if err != nil {
		return nil, err
	}
	return ik.solve(context.Background(), base, frames, targets, q)
}

// prepare validates a position solve and returns the sorted target frames and the clamped starting point.
func (ik *JacobianIK) prepare(targets map[string]PoseTarget, seed []float64) ([]string, []float64, error) {
	if ik.model.DoF() == 0 {
		return nil, nil, ErrNoJoints
	}
	frames, err := ik.targetFrames(lo.Keys(targets))
	if err != nil {
		return nil, nil, err
	}
	if seed == nil {
		seed = ik.model.ZeroJointPositions()
	}
	if err := ik.model.CheckDimension("seed", seed); err != nil {
		return nil, nil, err
	}
	return frames, ik.model.ClampToLimits(seed), nil
}

// targetFrames sorts frames so the stacked rows have a stable order, and checks that each of them exists.
func (ik *JacobianIK) targetFrames(frames []string) ([]string, error) {
	if len(frames) == 0 {
		return nil, ErrNoTargets
	}
	slices.Sort(frames)
	if _, err := ik.model.ResolveAll(frames); err != nil {
		return nil, err
	}
	return frames, nil
}

// solve runs the Newton loop from q. ctx is checked between iterations.
func (ik *JacobianIK) solve(
	ctx context.Context,
	base spatialmath.Pose,
	frames []string,
	targets map[string]PoseTarget,
	q []float64,
) (*Solution, error) {
	sol := &Solution{Status: StatusIdle}
	cfg := referenceframe.Configuration{BasePose: base, JointPosition: q}
	best := -1.

	sol.Status = StatusIterating
	for iter := 0; ; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		poses, err := ik.kin.ComputePose(cfg, frames...)
		if err != nil {
			return nil, err
		}
		residual := make([]float64, 0, spatialmath.MotionDim*len(frames))
		for _, f := range frames {
			residual = append(residual, PoseResidual(poses[f], targets[f])...)
		}
		norm := floats.Norm(residual, 2)
		if best < 0 || norm < best {
			best = norm
			sol.JointPosition = append([]float64(nil), cfg.JointPosition...)
			sol.Residual = norm
		}
		sol.Iterations = iter

		if norm < ik.cfg.Tolerance {
			sol.Status = StatusConverged
			sol.Converged = true
			ik.logger.Debugw("ik converged", "iterations", iter, "residual", norm)
			return sol, nil
		}
		if iter == ik.cfg.MaxIterations {
			break
		}

		jacs, err := ik.kin.ComputeJacobian(cfg, frames...)
		if err != nil {
			return nil, err
		}
		blocks := make([]*mat.Dense, 0, len(frames))
		for _, f := range frames {
			blocks = append(blocks, kinematics.FixedBaseJacobian(jacs[f]))
		}
		step, err := dampedLeastSquares(stackRows(blocks, ik.poseRows(frames, targets)), residual)
		if err != nil {
			return nil, err
		}
		floats.Add(step, cfg.JointPosition)
		cfg.JointPosition = ik.model.ClampToLimits(step)
	}

	sol.Status = StatusMaxIterationsExceeded
	ik.logger.Debugw("ik did not converge", "iterations", sol.Iterations, "residual", sol.Residual)
	return sol, nil
}

func (ik *JacobianIK) poseRows(frames []string, targets map[string]PoseTarget) []int {
	return lo.Map(frames, func(f string, _ int) int { return targets[f].Rows() })
}

// ComputeJointVelocity returns the joint velocities that best produce the target frame motions, given the base
// twist in cfg. Joint velocities in cfg are ignored.
func (ik *JacobianIK) ComputeJointVelocity(
	cfg referenceframe.Configuration,
	targets map[string]MotionTarget,
) ([]float64, error) {
	frames, err := ik.rateFrames(targets)
	if err != nil {
		return nil, err
	}
	return ik.solveRates(cfg, frames, targets, cfg.BaseVelocity, nil)
}

// ComputeJointAcceleration returns the joint accelerations that best produce the target frame accelerations,
// given the base acceleration and the joint and base velocities in cfg. Joint accelerations in cfg are ignored.
func (ik *JacobianIK) ComputeJointAcceleration(
	cfg referenceframe.Configuration,
	targets map[string]MotionTarget,
) ([]float64, error) {
	frames, err := ik.rateFrames(targets)
	if err != nil {
		return nil, err
	}
	bias, err := ik.kin.ComputeJdQd(cfg, frames...)
	if err != nil {
		return nil, err
	}
	return ik.solveRates(cfg, frames, targets, cfg.BaseAcceleration, bias)
}

func (ik *JacobianIK) rateFrames(targets map[string]MotionTarget) ([]string, error) {
	if ik.model.DoF() == 0 {
		return nil, ErrNoJoints
	}
	return ik.targetFrames(lo.Keys(targets))
}

// solveRates solves J_q x = target - J_b base - bias in the damped least squares sense.
func (ik *JacobianIK) solveRates(
	cfg referenceframe.Configuration,
	frames []string,
	targets map[string]MotionTarget,
	base spatialmath.Motion,
	bias map[string]spatialmath.Motion,
) ([]float64, error) {
	jacs, err := ik.kin.ComputeJacobian(cfg, frames...)
	if err != nil {
		return nil, err
	}

	baseVec := mat.NewVecDense(kinematics.BaseDoF, base.Vector())
	rows := make([]int, 0, len(frames))
	blocks := make([]*mat.Dense, 0, len(frames))
	var rhs []float64
	for _, f := range frames {
		target := targets[f]
		var carried mat.VecDense
		carried.MulVec(kinematics.FloatingBaseJacobian(jacs[f]), baseVec)
		want := target.Motion.Vector()
		floats.Sub(want, carried.RawVector().Data)
		if b, ok := bias[f]; ok {
			floats.Sub(want, b.Vector())
		}
		rhs = append(rhs, want[:target.Rows()]...)
		rows = append(rows, target.Rows())
		blocks = append(blocks, kinematics.FixedBaseJacobian(jacs[f]))
	}
	return dampedLeastSquares(stackRows(blocks, rows), rhs)
}

// stackRows stacks the leading rows[i] rows of each block into one matrix.
func stackRows(blocks []*mat.Dense, rows []int) *mat.Dense {
	_, cols := blocks[0].Dims()
	stacked := mat.NewDense(lo.Sum(rows), cols, nil)
	at := 0
	for i, b := range blocks {
		for r := 0; r < rows[i]; r++ {
			stacked.SetRow(at, b.RawRowView(r))
			at++
		}
	}
	return stacked
}

// dampedLeastSquares returns x = V diag(s/(s^2+l^2)) U^T b for the thin SVD of a. Directions with vanishing
// singular values get no motion.
func dampedLeastSquares(a *mat.Dense, b []float64) ([]float64, error) {
	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, errors.New("failed to factorize jacobian")
	}
	sigma := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	var projected mat.VecDense
	projected.MulVec(u.T(), mat.NewVecDense(len(b), b))
	for i, s := range sigma {
		projected.SetVec(i, projected.AtVec(i)*s/(s*s+defaultDamping*defaultDamping))
	}
	var x mat.VecDense
	x.MulVec(&v, &projected)
	return x.RawVector().Data, nil
}
