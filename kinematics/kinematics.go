// Package kinematics computes forward kinematics, Jacobians and their time derivatives for floating-base and
// fixed-base kinematic trees. Every query is a pure function of the model and the Configuration it is handed.
package kinematics

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/wholebody/logging"
	"go.viam.com/wholebody/referenceframe"
)

// WholeBodyKinematics evaluates kinematic quantities of a model. It holds no per-query state and is safe for
// concurrent use.
type WholeBodyKinematics struct {
	model  *referenceframe.Model
	bodies []referenceframe.Body
	order  []int
	logger logging.Logger
}

// NewWholeBodyKinematics creates a kinematics evaluator for model.
func NewWholeBodyKinematics(model *referenceframe.Model, logger logging.Logger) (*WholeBodyKinematics, error) {
	if model == nil {
		return nil, errors.New("cannot create kinematics for a nil model")
	}
	if logger == nil {
		logger = logging.Global()
	}
	return &WholeBodyKinematics{
		model:  model,
		bodies: model.Bodies(),
		order:  model.Order(),
		logger: logger.Sublogger("kinematics"),
	}, nil
}

// Model returns the model the evaluator was created for.
func (k *WholeBodyKinematics) Model() *referenceframe.Model {
	return k.model
}

// resolveFrames maps frame names to body IDs. No names means every end-effector. All unknown names are reported.
func (k *WholeBodyKinematics) resolveFrames(frames []string) ([]string, []int, error) {
	if len(frames) == 0 {
		frames = k.model.EndEffectorNames()
	}
	ids := make([]int, 0, len(frames))
	var errs error
	for _, f := range frames {
		id, err := k.model.Resolve(f)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		ids = append(ids, id)
	}
	if errs != nil {
		return nil, nil, errs
	}
	return frames, ids, nil
}

// prepare validates the configuration and resolves the frames of a query.
func (k *WholeBodyKinematics) prepare(cfg referenceframe.Configuration, frames []string) ([]string, []int, error) {
	if err := cfg.Validate(k.model); err != nil {
		return nil, nil, err
	}
	return k.resolveFrames(frames)
}
