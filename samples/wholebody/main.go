// Package main runs the whole-body kinematics of a quadruped at its standing posture and prints frame poses,
// velocities, accelerations, Jacobians and inverse kinematics solutions.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/wholebody/ik"
	"go.viam.com/wholebody/kinematics"
	"go.viam.com/wholebody/logging"
	"go.viam.com/wholebody/referenceframe"
	"go.viam.com/wholebody/robots/hyq"
	"go.viam.com/wholebody/robots/sagittal"
	"go.viam.com/wholebody/spatialmath"
)

const (
	flagRobot         = "robot"
	flagModel         = "model"
	flagDebug         = "debug"
	flagTolerance     = "tolerance"
	flagMaxIterations = "max-iterations"
	flagSeeds         = "seeds"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	var logger logging.Logger
	return &cli.App{
		Name:   "wholebody",
		Usage:  "evaluate the kinematics of a legged robot",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  flagRobot,
				Value: hyq.ModelName,
				Usage: "built-in robot to load, one of hyq or sagittal",
			},
			&cli.StringFlag{
				Name:  flagModel,
				Usage: "load the robot description from JSON `FILE` instead of a built-in robot",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
			&cli.Float64Flag{
				Name:  flagTolerance,
				Value: 1e-12,
				Usage: "residual norm at which inverse kinematics has converged",
			},
			&cli.IntFlag{
				Name:  flagMaxIterations,
				Value: 50,
				Usage: "iteration budget of each inverse kinematics solve",
			},
			&cli.IntFlag{
				Name:  flagSeeds,
				Value: 1,
				Usage: "number of starting points tried in parallel by inverse kinematics",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool(flagDebug) {
				logger = logging.NewDebugLogger("wholebody")
			} else {
				logger = logging.NewLogger("wholebody")
			}
			return nil
		},
		Action: func(c *cli.Context) error {
			model, err := loadModel(c)
			if err != nil {
				return err
			}
			cfg := ik.Config{
				Tolerance:     c.Float64(flagTolerance),
				MaxIterations: c.Int(flagMaxIterations),
				NumSeeds:      c.Int(flagSeeds),
			}
			return run(c.Context, c.App.Writer, model, cfg, logger)
		},
		Commands: []*cli.Command{
			{
				Name:  "tree",
				Usage: "print the bodies and joints of the robot",
				Action: func(c *cli.Context) error {
					model, err := loadModel(c)
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, model.String())
					return nil
				},
			},
			{
				Name:  "schema",
				Usage: "print the JSON schema of the inverse kinematics config",
				Action: func(c *cli.Context) error {
					out, err := json.MarshalIndent(ik.ConfigSchema(), "", "  ")
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, string(out))
					return nil
				},
			},
		},
	}
}

func loadModel(c *cli.Context) (*referenceframe.Model, error) {
	if path := c.String(flagModel); path != "" {
		//nolint:gosec
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return referenceframe.UnmarshalModelJSON(data, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	}
	switch c.String(flagRobot) {
	case hyq.ModelName:
		return hyq.Model()
	case sagittal.ModelName:
		return sagittal.Model()
	default:
		return nil, errors.Errorf("unknown robot %q", c.String(flagRobot))
	}
}

// standingPosture bends every hip and knee the way a quadruped stands, front knees backwards and hind knees
// forwards. flexion scales the hip angle and the knee is bent twice as far.
func standingPosture(model *referenceframe.Model, flexion float64) []float64 {
	q := model.ZeroJointPositions()
	for i, name := range model.JointNames() {
		sign := 1.
		if len(name) > 1 && name[1] == 'h' {
			sign = -1
		}
		switch {
		case strings.Contains(name, "hfe"):
			q[i] = sign * flexion
		case strings.Contains(name, "kfe"):
			q[i] = -2 * sign * flexion
		}
	}
	return q
}

func run(ctx context.Context, w io.Writer, model *referenceframe.Model, cfg ik.Config, logger logging.Logger) error {
	kin, err := kinematics.NewWholeBodyKinematics(model, logger)
	if err != nil {
		return err
	}

	ws := referenceframe.NewWholeBodyState(model.DoF())
	copy(ws.JointPosition, standingPosture(model, 0.75))
	if idx, err := model.JointIndex("lf_hfe_joint"); err == nil {
		ws.JointAcceleration[idx] = 1
	}
	state := ws.Configuration()

	com, comVel, err := kin.ComputeCoMRate(state)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "x = %v\nxd = %v\n\n", com, comVel)

	frames := model.EndEffectorNames()
	slices.Sort(frames)

	poses, err := kin.ComputePose(state, frames...)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Frame position:")
	for _, f := range frames {
		fmt.Fprintf(w, "  %s  t = %v\n", f, poses[f].Point())
		fmt.Fprintf(w, "  R = %v\n", mat.Formatted(poses[f].RotationMatrix().Dense(), mat.Prefix("      ")))
	}
	fmt.Fprintln(w)

	for _, section := range []struct {
		title   string
		compute func(referenceframe.Configuration, ...string) (map[string]spatialmath.Motion, error)
	}{
		{"Frame velocity", kin.ComputeVelocity},
		{"Frame acceleration", kin.ComputeAcceleration},
		{"Frame Jd*qd term", kin.ComputeJdQd},
	} {
		motions, err := section.compute(state, frames...)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s:\n", section.title)
		for _, f := range frames {
			fmt.Fprintf(w, "  %s  v = %v\n  w = %v\n", f, motions[f].Linear, motions[f].Angular)
		}
		fmt.Fprintln(w)
	}

	jacs, err := kin.ComputeJacobianParallel(ctx, state, frames...)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Frame Jacobian:")
	for _, f := range frames {
		fmt.Fprintf(w, "%s:\n%v\n---\n", f, mat.Formatted(jacs[f]))
		fmt.Fprintf(w, "%v = Floating-base Jacobian\n---\n", mat.Formatted(kinematics.FloatingBaseJacobian(jacs[f])))
		fmt.Fprintf(w, "%v = Fixed-base Jacobian\n\n", mat.Formatted(kinematics.FixedBaseJacobian(jacs[f])))
	}
	fmt.Fprintln(w, "---------------------------------------")

	return runIK(ctx, w, kin, state, poses, cfg, logger)
}

func runIK(
	ctx context.Context,
	w io.Writer,
	kin *kinematics.WholeBodyKinematics,
	state referenceframe.Configuration,
	poses map[string]spatialmath.Pose,
	cfg ik.Config,
	logger logging.Logger,
) error {
	model := kin.Model()
	solver, err := ik.NewCombinedIK(kin, cfg, logger)
	if err != nil {
		return err
	}
	// the first two feet are pinned where the standing posture puts them
	targets := lo.SliceToMap(lo.Slice(model.EndEffectorNames(), 0, 2), func(f string) (string, ik.PoseTarget) {
		return f, ik.NewPoseTarget(poses[f])
	})
	sol, err := solver.ComputeJointPosition(ctx, state.BasePose, targets, standingPosture(model, 0.5))
	if err != nil {
		return err
	}
	if sol.Converged {
		fmt.Fprintf(w, "Joint position = %v\n\n", sol.JointPosition)
		state.JointPosition = sol.JointPosition
	} else {
		fmt.Fprintf(w, "The IK problem could not be solved: %v\n\n", sol.Err())
	}

	rates, err := ik.NewJacobianIK(kin, cfg, logger)
	if err != nil {
		return err
	}
	axes := []r3.Vector{{X: 1}, {Y: 1}, {Z: 1}}
	motionTargets := make(map[string]ik.MotionTarget)
	for i, f := range lo.Slice(model.EndEffectorNames(), 0, len(axes)) {
		motionTargets[f] = ik.NewMotionTarget(spatialmath.Motion{Angular: axes[i]})
	}
	qd, err := rates.ComputeJointVelocity(state, motionTargets)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Joint velocity = %v\n\n", qd)

	state.JointVelocity = qd
	qdd, err := rates.ComputeJointAcceleration(state, motionTargets)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Joint acceleration = %v\n\n", qdd)
	return nil
}
