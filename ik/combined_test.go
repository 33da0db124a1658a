package ik

import (
	"context"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/wholebody/logging"
	"go.viam.com/wholebody/referenceframe"
	"go.viam.com/wholebody/robots/hyq"
	"go.viam.com/wholebody/robots/sagittal"
	"go.viam.com/wholebody/spatialmath"
)

func TestCombinedIKConverges(t *testing.T) {
	k := newHyQ(t)
	solver, err := NewCombinedIK(k, Config{NumSeeds: 4, Seed: 1}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	want := posture(t, k.Model(), hyq.NominalPosture())
	base := spatialmath.NewPoseFromPoint(r3.Vector{Z: 0.55})
	targets := footTargets(t, k, base, want)

	sol, err := solver.ComputeJointPosition(context.Background(), base, targets, perturb(want, 0.1))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sol.Converged, test.ShouldBeTrue)
	test.That(t, sol.Status, test.ShouldEqual, StatusConverged)

	poses, err := k.ComputePose(referenceframe.Configuration{BasePose: base, JointPosition: sol.JointPosition})
	test.That(t, err, test.ShouldBeNil)
	for name, target := range targets {
		test.That(t, spatialmath.R3VectorAlmostEqual(poses[name].Point(), target.Pose.Point(), 1e-7), test.ShouldBeTrue)
	}
}

func TestCombinedIKUnreachable(t *testing.T) {
	k := newSagittal(t)
	solver, err := NewCombinedIK(k, Config{NumSeeds: 3, MaxIterations: 10}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	targets := map[string]PoseTarget{"rf_foot": NewPositionTarget(r3.Vector{X: -4, Z: 3})}
	sol, err := solver.ComputeJointPosition(context.Background(), spatialmath.NewZeroPose(), targets, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sol.Converged, test.ShouldBeFalse)
	test.That(t, sol.Status, test.ShouldEqual, StatusMaxIterationsExceeded)
	test.That(t, errors.Is(sol.Err(), ErrUnreachableTarget), test.ShouldBeTrue)
	test.That(t, k.Model().AreJointPositionsValid(sol.JointPosition), test.ShouldBeTrue)
}

func TestCombinedIKErrors(t *testing.T) {
	k := newSagittal(t)
	solver, err := NewCombinedIK(k, Config{NumSeeds: 2}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	base := spatialmath.NewZeroPose()
	targets := map[string]PoseTarget{"lf_foot": NewPositionTarget(r3.Vector{X: 0.3, Z: -0.5})}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = solver.ComputeJointPosition(ctx, base, targets, nil)
	test.That(t, errors.Is(err, context.Canceled), test.ShouldBeTrue)

	_, err = solver.ComputeJointPosition(context.Background(), base, map[string]PoseTarget{"nose": {}}, nil)
	test.That(t, errors.Is(err, referenceframe.ErrUnknownFrame), test.ShouldBeTrue)

	_, err = solver.ComputeJointPosition(context.Background(), base, targets, []float64{1})
	test.That(t, errors.Is(err, referenceframe.ErrDimensionMismatch), test.ShouldBeTrue)

	_, err = NewCombinedIK(k, Config{NumSeeds: -1}, nil)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestCombinedIKSeeds(t *testing.T) {
	k := newSagittal(t)
	solver, err := NewCombinedIK(k, Config{NumSeeds: 5, Seed: 42}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	start := posture(t, k.Model(), sagittal.NominalPosture())
	seeds := solver.seeds(start)
	test.That(t, seeds, test.ShouldHaveLength, 5)
	test.That(t, seeds[0], test.ShouldResemble, start)
	for _, s := range seeds[1:] {
		test.That(t, k.Model().AreJointPositionsValid(s), test.ShouldBeTrue)
		test.That(t, s, test.ShouldNotResemble, start)
	}
	// the same seed draws the same starting points
	test.That(t, solver.seeds(start), test.ShouldResemble, seeds)

	single, err := NewCombinedIK(k, Config{}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, single.seeds(start), test.ShouldHaveLength, 1)
}
