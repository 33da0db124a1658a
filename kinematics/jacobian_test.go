package kinematics

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/wholebody/referenceframe"
	"go.viam.com/wholebody/robots/sagittal"
	"go.viam.com/wholebody/spatialmath"
)

func TestJacobianShape(t *testing.T) {
	k := newSagittal(t)
	cfg := standingConfiguration(t, k, sagittal.NominalPosture())
	jacs, err := k.ComputeJacobian(cfg)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, jacs, test.ShouldHaveLength, 4)

	jac := jacs["lf_foot"]
	r, c := jac.Dims()
	test.That(t, r, test.ShouldEqual, 6)
	test.That(t, c, test.ShouldEqual, 6+8)

	// hip flexion moves the foot forward in proportion to its depth below the hip
	height := -2 * segment * math.Cos(0.75)
	hfe, err := k.Model().JointIndex("lf_hfe_joint")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, jac.At(0, BaseDoF+hfe), test.ShouldAlmostEqual, height, 1e-12)
	test.That(t, jac.At(2, BaseDoF+hfe), test.ShouldAlmostEqual, 0, 1e-12)
	test.That(t, jac.At(4, BaseDoF+hfe), test.ShouldAlmostEqual, 1, 1e-12)

	// joints of other legs do not move the foot
	for _, joint := range []string{"lh_hfe_joint", "lh_kfe_joint", "rf_hfe_joint", "rf_kfe_joint", "rh_hfe_joint", "rh_kfe_joint"} {
		idx, err := k.Model().JointIndex(joint)
		test.That(t, err, test.ShouldBeNil)
		for row := 0; row < 6; row++ {
			test.That(t, jac.At(row, BaseDoF+idx), test.ShouldEqual, 0)
		}
	}
}

func TestJacobianBlocks(t *testing.T) {
	k := newHyQ(t)
	r := rand.New(rand.NewSource(11))
	cfg := randomConfiguration(k.Model(), r)
	jacs, err := k.ComputeJacobian(cfg, "rh_foot")
	test.That(t, err, test.ShouldBeNil)
	jac := jacs["rh_foot"]

	base := FloatingBaseJacobian(jac)
	rows, cols := base.Dims()
	test.That(t, rows, test.ShouldEqual, 6)
	test.That(t, cols, test.ShouldEqual, 6)

	joints := FixedBaseJacobian(jac)
	rows, cols = joints.Dims()
	test.That(t, rows, test.ShouldEqual, 6)
	test.That(t, cols, test.ShouldEqual, 12)

	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			test.That(t, base.At(i, j), test.ShouldEqual, jac.At(i, j))
		}
		for j := 0; j < 12; j++ {
			test.That(t, joints.At(i, j), test.ShouldEqual, jac.At(i, BaseDoF+j))
		}
	}

	// base linear velocity passes straight through, and the angular block is the identity
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			test.That(t, base.At(i, j), test.ShouldEqual, want)
			test.That(t, base.At(3+i, 3+j), test.ShouldEqual, want)
			test.That(t, base.At(3+i, j), test.ShouldEqual, 0)
		}
	}

	// the blocks are copies
	base.Set(0, 0, 42)
	test.That(t, jac.At(0, 0), test.ShouldEqual, 1)
}

func TestFixedBaseJacobianHasNoBaseColumns(t *testing.T) {
	k := mixedModel(t, false)
	r := rand.New(rand.NewSource(12))
	jacs, err := k.ComputeJacobian(randomConfiguration(k.Model(), r), "tool")
	test.That(t, err, test.ShouldBeNil)
	base := FloatingBaseJacobian(jacs["tool"])
	test.That(t, mat.Equal(base, mat.NewDense(6, 6, nil)), test.ShouldBeTrue)
}

func TestJacobianMatchesVelocity(t *testing.T) {
	r := rand.New(rand.NewSource(13))
	for _, k := range []*WholeBodyKinematics{newHyQ(t), mixedModel(t, true), mixedModel(t, false)} {
		for i := 0; i < 10; i++ {
			cfg := randomConfiguration(k.Model(), r)
			frames := k.Model().FrameNames()
			jacs, err := k.ComputeJacobian(cfg, frames...)
			test.That(t, err, test.ShouldBeNil)
			vel, err := k.ComputeVelocity(cfg, frames...)
			test.That(t, err, test.ShouldBeNil)

			u := generalizedVelocity(cfg)
			if !k.Model().IsFloatingBase() {
				// base columns are zero, so the base twist drops out
				copy(u[:BaseDoF], make([]float64, BaseDoF))
			}
			for _, f := range frames {
				test.That(t, spatialmath.MotionAlmostEqual(mulJacobian(t, jacs[f], u), vel[f], 1e-10), test.ShouldBeTrue)
			}
		}
	}
}

func TestJacobianFiniteDifference(t *testing.T) {
	r := rand.New(rand.NewSource(14))
	for _, k := range []*WholeBodyKinematics{newHyQ(t), mixedModel(t, true), mixedModel(t, false)} {
		cfg := randomConfiguration(k.Model(), r)
		cfg.BaseAcceleration = spatialmath.Motion{}
		cfg.JointAcceleration = nil
		frames := k.Model().FrameNames()
		jacs, err := k.ComputeJacobian(cfg, frames...)
		test.That(t, err, test.ShouldBeNil)

		n := BaseDoF + k.Model().DoF()
		for col := 0; col < n; col++ {
			// move along a single generalized coordinate
			u := make([]float64, n)
			u[col] = 1
			probe := cfg
			probe.BaseVelocity, err = spatialmath.MotionFromVector(u[:BaseDoF])
			test.That(t, err, test.ShouldBeNil)
			probe.JointVelocity = u[BaseDoF:]

			for _, f := range frames {
				fd := poseRate(t, k, probe, f)
				column, err := spatialmath.MotionFromVector(mat.Col(nil, col, jacs[f]))
				test.That(t, err, test.ShouldBeNil)
				test.That(t, spatialmath.MotionAlmostEqual(column, fd, 1e-6), test.ShouldBeTrue)
			}
		}
	}
}

func TestJdQdIsAccelerationBias(t *testing.T) {
	r := rand.New(rand.NewSource(15))
	for _, k := range []*WholeBodyKinematics{newHyQ(t), mixedModel(t, true), mixedModel(t, false)} {
		for i := 0; i < 5; i++ {
			cfg := randomConfiguration(k.Model(), r)
			frames := k.Model().FrameNames()

			bias, err := k.ComputeJdQd(cfg, frames...)
			test.That(t, err, test.ShouldBeNil)

			still := cfg
			still.JointAcceleration = make([]float64, k.Model().DoF())
			still.BaseAcceleration = spatialmath.Motion{}
			acc, err := k.ComputeAcceleration(still, frames...)
			test.That(t, err, test.ShouldBeNil)
			for _, f := range frames {
				test.That(t, spatialmath.MotionAlmostEqual(acc[f], bias[f], 1e-12), test.ShouldBeTrue)
			}

			// JdQd does not depend on the accelerations of the configuration
			again, err := k.ComputeJdQd(still, frames...)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, again, test.ShouldResemble, bias)
		}
	}
}

func TestAccelerationDecomposition(t *testing.T) {
	r := rand.New(rand.NewSource(16))
	for _, k := range []*WholeBodyKinematics{newHyQ(t), mixedModel(t, true), mixedModel(t, false)} {
		for i := 0; i < 5; i++ {
			cfg := randomConfiguration(k.Model(), r)
			frames := k.Model().FrameNames()
			jacs, err := k.ComputeJacobian(cfg, frames...)
			test.That(t, err, test.ShouldBeNil)
			bias, err := k.ComputeJdQd(cfg, frames...)
			test.That(t, err, test.ShouldBeNil)
			acc, err := k.ComputeAcceleration(cfg, frames...)
			test.That(t, err, test.ShouldBeNil)

			ud := generalizedAcceleration(cfg)
			for _, f := range frames {
				want := mulJacobian(t, jacs[f], ud).Add(bias[f])
				test.That(t, spatialmath.MotionAlmostEqual(acc[f], want, 1e-10), test.ShouldBeTrue)
			}
		}
	}
}

func TestJdQdMatchesJacobianRate(t *testing.T) {
	r := rand.New(rand.NewSource(17))
	k := mixedModel(t, true)
	cfg := randomConfiguration(k.Model(), r)
	cfg.BaseAcceleration = spatialmath.Motion{}
	cfg.JointAcceleration = nil

	bias, err := k.ComputeJdQd(cfg, "tool")
	test.That(t, err, test.ShouldBeNil)
	// with constant generalized velocities, the frame velocity changes only through the Jacobian
	fd := velocityRate(t, k, cfg, "tool")
	test.That(t, spatialmath.MotionAlmostEqual(bias["tool"], fd, fdAccTol), test.ShouldBeTrue)
}

func TestComputeJacobianParallel(t *testing.T) {
	k := newHyQ(t)
	r := rand.New(rand.NewSource(18))
	cfg := randomConfiguration(k.Model(), r)
	frames := k.Model().FrameNames()

	serial, err := k.ComputeJacobian(cfg, frames...)
	test.That(t, err, test.ShouldBeNil)
	parallel, err := k.ComputeJacobianParallel(context.Background(), cfg, frames...)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, parallel, test.ShouldHaveLength, len(serial))
	for f, jac := range serial {
		test.That(t, mat.Equal(jac, parallel[f]), test.ShouldBeTrue)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = k.ComputeJacobianParallel(ctx, cfg, frames...)
	test.That(t, errors.Is(err, context.Canceled), test.ShouldBeTrue)

	bad := cfg
	bad.JointPosition = nil
	_, err = k.ComputeJacobianParallel(context.Background(), bad)
	test.That(t, errors.Is(err, referenceframe.ErrDimensionMismatch), test.ShouldBeTrue)
}
