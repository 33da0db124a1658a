package ik

import (
	"github.com/pkg/errors"
)

var (
	// ErrUnreachableTarget is returned when the solver exhausts its iteration budget before the residual drops
	// below the tolerance.
	ErrUnreachableTarget = errors.New("target unreachable")

	// ErrMaxIterationsExceeded names the same failure from the solver's point of view.
	ErrMaxIterationsExceeded = ErrUnreachableTarget

	// ErrNoTargets is returned when a solve is requested without any target frame.
	ErrNoTargets = errors.New("no targets to solve for")

	// ErrNoJoints is returned when the model has no joint coordinates to solve for.
	ErrNoJoints = errors.New("model has no joints to solve for")
)

func newUnreachableTargetError(iterations int, residual float64) error {
	return errors.Wrapf(ErrUnreachableTarget, "residual %g after %d iterations", residual, iterations)
}
