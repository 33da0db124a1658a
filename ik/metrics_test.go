package ik

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/wholebody/spatialmath"
)

func TestPoseResidual(t *testing.T) {
	current := spatialmath.NewPoseFromPoint(r3.Vector{X: 1, Y: 2, Z: 3})
	goal := spatialmath.NewPoseFromQuat(r3.Vector{X: 1.5, Y: 2, Z: 2}, spatialmath.R3ToQuat(r3.Vector{Z: 0.3}))

	residual := PoseResidual(current, NewPositionTarget(goal.Point()))
	test.That(t, residual, test.ShouldHaveLength, 3)
	test.That(t, residual[0], test.ShouldAlmostEqual, 0.5)
	test.That(t, residual[1], test.ShouldAlmostEqual, 0)
	test.That(t, residual[2], test.ShouldAlmostEqual, -1)

	residual = PoseResidual(current, NewPoseTarget(goal))
	test.That(t, residual, test.ShouldHaveLength, 6)
	test.That(t, residual[3], test.ShouldAlmostEqual, 0, 1e-12)
	test.That(t, residual[4], test.ShouldAlmostEqual, 0, 1e-12)
	test.That(t, residual[5], test.ShouldAlmostEqual, 0.3, 1e-12)

	// the rotation error is measured in the world frame
	rotated := spatialmath.NewPoseFromQuat(r3.Vector{}, spatialmath.R3ToQuat(r3.Vector{X: math.Pi / 2}))
	target := spatialmath.NewPoseFromQuat(r3.Vector{}, spatialmath.R3ToQuat(r3.Vector{X: math.Pi/2 + 0.2}))
	residual = PoseResidual(rotated, NewPoseTarget(target))
	test.That(t, residual[3], test.ShouldAlmostEqual, 0.2, 1e-12)
	test.That(t, residual[4], test.ShouldAlmostEqual, 0, 1e-12)
	test.That(t, residual[5], test.ShouldAlmostEqual, 0, 1e-12)

	test.That(t, NewPositionTarget(r3.Vector{}).Rows(), test.ShouldEqual, 3)
	test.That(t, NewPoseTarget(goal).Rows(), test.ShouldEqual, 6)
	test.That(t, NewLinearTarget(r3.Vector{}).Rows(), test.ShouldEqual, 3)
	test.That(t, NewMotionTarget(spatialmath.Motion{}).Rows(), test.ShouldEqual, 6)
}

func TestMetrics(t *testing.T) {
	goal := spatialmath.NewPoseFromQuat(r3.Vector{X: 1, Y: 1}, spatialmath.R3ToQuat(r3.Vector{Z: 0.1}))
	test.That(t, NewSquaredNormMetric(goal)(goal), test.ShouldAlmostEqual, 0, 1e-12)

	moved := spatialmath.NewPoseFromPoint(r3.Vector{X: 1, Y: 3})
	test.That(t, NewPositionOnlyMetric(goal)(moved), test.ShouldAlmostEqual, 4, 1e-12)
	// orientation error is scaled before squaring
	test.That(t, NewSquaredNormMetric(goal)(moved), test.ShouldAlmostEqual, 4+math.Pow(0.1*orientationDistanceScaling, 2), 1e-9)

	test.That(t, NewTargetMetric(NewPositionTarget(goal.Point()))(moved), test.ShouldAlmostEqual, 4, 1e-12)
	test.That(t, NewTargetMetric(NewPoseTarget(goal))(goal), test.ShouldAlmostEqual, 0, 1e-12)

	quarter := &spatialmath.R4AA{Theta: math.Pi / 2, RZ: 1}
	test.That(t, OrientDist(spatialmath.NewZeroOrientation(), quarter), test.ShouldAlmostEqual, 90, 1e-9)
	test.That(t, OrientDist(quarter, quarter), test.ShouldAlmostEqual, 0, 1e-9)

	test.That(t, JointMetric([]float64{1, 2, 3}, []float64{1, 0, 4}), test.ShouldAlmostEqual, 5)
	test.That(t, JointMetric(nil, nil), test.ShouldEqual, 0)
}

func TestSolutionStatus(t *testing.T) {
	test.That(t, StatusIdle.String(), test.ShouldEqual, "idle")
	test.That(t, StatusIterating.String(), test.ShouldEqual, "iterating")
	test.That(t, StatusConverged.String(), test.ShouldEqual, "converged")
	test.That(t, StatusMaxIterationsExceeded.String(), test.ShouldEqual, "max_iterations_exceeded")
	test.That(t, Status(9).String(), test.ShouldEqual, "status(9)")

	sol := &Solution{Status: StatusConverged, Converged: true}
	test.That(t, sol.Err(), test.ShouldBeNil)
	sol = &Solution{Status: StatusMaxIterationsExceeded, Iterations: 12, Residual: 0.5}
	test.That(t, errors.Is(sol.Err(), ErrUnreachableTarget), test.ShouldBeTrue)
	test.That(t, sol.Err().Error(), test.ShouldContainSubstring, "after 12 iterations")
}
