package ik

import (
	"context"
	"math/rand"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/wholebody/kinematics"
	"go.viam.com/wholebody/logging"
	"go.viam.com/wholebody/spatialmath"
)

// CombinedIK runs one Newton solve per starting point in parallel. The caller's seed is always tried first; the
// remaining starting points are drawn at random within the joint limits.
type CombinedIK struct {
	solver *JacobianIK
	logger logging.Logger
}

type seededSolution struct {
	index int
	sol   *Solution
	err   error
}

// NewCombinedIK creates a combined parallel solver. cfg.NumSeeds sets how many solves run per call and cfg.Seed
// makes the extra starting points reproducible.
func NewCombinedIK(kin *kinematics.WholeBodyKinematics, cfg Config, logger logging.Logger) (*CombinedIK, error) {
	solver, err := NewJacobianIK(kin, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &CombinedIK{solver: solver, logger: solver.logger}, nil
}

// ComputeJointPosition returns the first converged solution from any starting point and stops the other solves.
// If none converges, the solution with the lowest residual is returned, with Converged unset. All solves have
// returned by the time this does.
func (ik *CombinedIK) ComputeJointPosition(
	ctx context.Context,
	base spatialmath.Pose,
	targets map[string]PoseTarget,
	seed []float64,
) (*Solution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	frames, q, err := ik.solver.prepare(targets, seed)
	if err != nil {
		return nil, err
	}
	seeds := ik.seeds(q)
	ik.logger.Debugw("starting combined ik", "seeds", len(seeds), "frames", frames)

	ctxWithCancel, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan seededSolution, len(seeds))
	var activeSolvers sync.WaitGroup
	for i, start := range seeds {
		if ctxWithCancel.Err() != nil {
			break
		}
		activeSolvers.Add(1)
		utils.PanicCapturingGo(func() {
			defer activeSolvers.Done()
			sol, err := ik.solver.solve(ctxWithCancel, base, frames, targets, start)
			results <- seededSolution{index: i, sol: sol, err: err}
		})
	}
	utils.PanicCapturingGo(func() {
		activeSolvers.Wait()
		close(results)
	})

	var winner, best *seededSolution
	var collectedErrs error
	for res := range results {
		switch {
		case winner != nil:
			// drain the stopped solves
		case res.err != nil:
			collectedErrs = multierr.Combine(collectedErrs, res.err)
		case res.sol.Converged:
			winner = &res
			cancel()
		case best == nil || res.sol.Residual < best.sol.Residual ||
			(res.sol.Residual == best.sol.Residual && res.index < best.index):
			best = &res
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if winner != nil {
		ik.logger.Debugw("combined ik converged", "seed", winner.index, "iterations", winner.sol.Iterations)
		return winner.sol, nil
	}
	if best == nil {
		return nil, multierr.Combine(errors.New("no ik solve returned a solution"), collectedErrs)
	}
	ik.logger.Debugw("combined ik did not converge", "seed", best.index, "residual", best.sol.Residual)
	return best.sol, nil
}

// seeds returns q followed by NumSeeds-1 random starting points.
func (ik *CombinedIK) seeds(q []float64) [][]float64 {
	//nolint:gosec
	randSeed := rand.New(rand.NewSource(ik.solver.cfg.Seed))
	seeds := [][]float64{q}
	for len(seeds) < ik.solver.cfg.NumSeeds {
		seeds = append(seeds, ik.solver.model.RandomJointPositions(randSeed))
	}
	return seeds
}
