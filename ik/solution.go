package ik

import "fmt"

// Status is the state of a position solve. A solve starts Idle, is Iterating while the Newton loop runs, and
// ends either Converged or MaxIterationsExceeded.
type Status int

const (
	// StatusIdle means no iteration has run yet.
	StatusIdle Status = iota
	// StatusIterating means the Newton loop is running.
	StatusIterating
	// StatusConverged means the residual dropped below the tolerance.
	StatusConverged
	// StatusMaxIterationsExceeded means the iteration budget ran out first.
	StatusMaxIterationsExceeded
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusIterating:
		return "iterating"
	case StatusConverged:
		return "converged"
	case StatusMaxIterationsExceeded:
		return "max_iterations_exceeded"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Solution is the outcome of a position solve. When the solve did not converge, JointPosition holds the best
// estimate found.
type Solution struct {
	JointPosition []float64
	Status        Status
	Converged     bool
	Iterations    int
	// Residual is the norm of the stacked task error at JointPosition.
	Residual float64
}

// Err returns nil for a converged solution and an ErrUnreachableTarget otherwise.
func (s *Solution) Err() error {
	if s.Converged {
		return nil
	}
	return newUnreachableTargetError(s.Iterations, s.Residual)
}
