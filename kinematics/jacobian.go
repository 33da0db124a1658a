package kinematics

import (
	"context"

	"github.com/golang/geo/r3"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/wholebody/referenceframe"
	"go.viam.com/wholebody/spatialmath"
	"go.viam.com/wholebody/utils"
)

// BaseDoF is the number of generalized coordinates of the floating base. Jacobian columns for the base come
// first, linear then angular, followed by the joints in DoF order.
const BaseDoF = 6

// ComputeJacobian returns the 6x(6+n) Jacobian of each requested frame. Rows 0-2 map generalized velocities to the
// linear velocity of the frame origin and rows 3-5 to its angular velocity, both in the world frame. The base
// columns are zero for fixed-base models.
func (k *WholeBodyKinematics) ComputeJacobian(
	cfg referenceframe.Configuration,
	frames ...string,
) (map[string]*mat.Dense, error) {
	names, ids, err := k.prepare(cfg, frames)
	if err != nil {
		return nil, err
	}
	ts := k.forwardPose(cfg)
	out := make(map[string]*mat.Dense, len(names))
	for i, name := range names {
		out[name] = k.jacobian(ts, ids[i])
	}
	return out, nil
}

// ComputeJacobianParallel is ComputeJacobian with one goroutine per frame. Poses are computed once and shared
// read-only between the workers.
func (k *WholeBodyKinematics) ComputeJacobianParallel(
	ctx context.Context,
	cfg referenceframe.Configuration,
	frames ...string,
) (map[string]*mat.Dense, error) {
	names, ids, err := k.prepare(cfg, frames)
	if err != nil {
		return nil, err
	}
	ts := k.forwardPose(cfg)

	results := make([]*mat.Dense, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(utils.ParallelFactor)
	for i := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = k.jacobian(ts, ids[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	k.logger.Debugw("computed jacobians", "frames", len(names), "workers", utils.ParallelFactor)

	out := make(map[string]*mat.Dense, len(names))
	for i, name := range names {
		out[name] = results[i]
	}
	return out, nil
}

// jacobian assembles the Jacobian of body id from the world poses and axes of its ancestors.
func (k *WholeBodyKinematics) jacobian(ts *treeState, id int) *mat.Dense {
	jac := mat.NewDense(spatialmath.MotionDim, BaseDoF+k.model.DoF(), nil)
	p := ts.poses[id].Point()

	if k.model.IsFloatingBase() {
		// v_frame = v_base + w_base x r = v_base - [r]x w_base
		r := p.Sub(ts.poses[k.order[0]].Point())
		for i := 0; i < 3; i++ {
			jac.Set(i, i, 1)
			jac.Set(3+i, 3+i, 1)
		}
		setBlock(jac, 0, 3, negSkew(r))
	}

	for _, ancestor := range k.model.Chain(id) {
		b := &k.bodies[ancestor]
		if !b.Joint.HasDoF() {
			continue
		}
		col := BaseDoF + b.Joint.Index
		a := ts.axes[ancestor]
		//nolint:exhaustive
		switch b.Joint.Type {
		case referenceframe.RevoluteJoint:
			setColumn(jac, col, a.Cross(p.Sub(ts.poses[ancestor].Point())), a)
		case referenceframe.PrismaticJoint:
			setColumn(jac, col, a, r3.Vector{})
		}
	}
	return jac
}

// FloatingBaseJacobian returns a copy of the 6x6 block of a Jacobian that maps the base twist.
func FloatingBaseJacobian(jac *mat.Dense) *mat.Dense {
	r, _ := jac.Dims()
	return mat.DenseCopyOf(jac.Slice(0, r, 0, BaseDoF))
}

// FixedBaseJacobian returns a copy of the 6xn block of a Jacobian that maps the joint velocities.
// A model without joints yields an empty matrix.
func FixedBaseJacobian(jac *mat.Dense) *mat.Dense {
	r, c := jac.Dims()
	if c == BaseDoF {
		return &mat.Dense{}
	}
	return mat.DenseCopyOf(jac.Slice(0, r, BaseDoF, c))
}

// negSkew returns -[r]x, the matrix with -[r]x w = w x r.
func negSkew(r r3.Vector) [3][3]float64 {
	return [3][3]float64{
		{0, r.Z, -r.Y},
		{-r.Z, 0, r.X},
		{r.Y, -r.X, 0},
	}
}

func setBlock(m *mat.Dense, row, col int, block [3][3]float64) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m.Set(row+i, col+j, block[i][j])
		}
	}
}

func setColumn(m *mat.Dense, col int, linear, angular r3.Vector) {
	m.Set(0, col, linear.X)
	m.Set(1, col, linear.Y)
	m.Set(2, col, linear.Z)
	m.Set(3, col, angular.X)
	m.Set(4, col, angular.Y)
	m.Set(5, col, angular.Z)
}
