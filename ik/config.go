package ik

import (
	"github.com/go-viper/mapstructure/v2"
	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
)

const (
	// defaultDamping is the Levenberg-Marquardt damping of the pseudo-inverse. It keeps steps bounded near
	// singular configurations and is not user tunable.
	defaultDamping = 1e-4

	defaultTolerance     = 1e-8
	defaultMaxIterations = 100
	defaultNumSeeds      = 1
)

// Config holds the tunable parameters of the inverse kinematics solvers. Zero values take their defaults.
type Config struct {
	// Tolerance is the residual norm below which a solve has converged.
	Tolerance float64 `json:"tolerance,omitempty" jsonschema:"minimum=0"`
	// MaxIterations is the Newton iteration budget of one solve.
	MaxIterations int `json:"max_iterations,omitempty" jsonschema:"minimum=0"`
	// NumSeeds is the number of starting points the combined solver tries in parallel.
	NumSeeds int `json:"num_seeds,omitempty" jsonschema:"minimum=0"`
	// Seed initializes the random generator that draws extra starting points.
	Seed int64 `json:"seed,omitempty"`
}

// NewDefaultConfig returns the default solver parameters.
func NewDefaultConfig() Config {
	return Config{
		Tolerance:     defaultTolerance,
		MaxIterations: defaultMaxIterations,
		NumSeeds:      defaultNumSeeds,
	}
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if cfg.Tolerance < 0 {
		return goutils.NewConfigValidationError(path, errors.New("tolerance cannot be negative"))
	}
	if cfg.MaxIterations < 0 {
		return goutils.NewConfigValidationError(path, errors.New("max_iterations cannot be negative"))
	}
	if cfg.NumSeeds < 0 {
		return goutils.NewConfigValidationError(path, errors.New("num_seeds cannot be negative"))
	}
	return nil
}

// withDefaults fills every unset field with its default.
func (cfg Config) withDefaults() Config {
	def := NewDefaultConfig()
	if cfg.Tolerance == 0 {
		cfg.Tolerance = def.Tolerance
	}
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = def.MaxIterations
	}
	if cfg.NumSeeds == 0 {
		cfg.NumSeeds = def.NumSeeds
	}
	return cfg
}

// NewConfigFromAttributes decodes a solver config from a loosely typed attribute map, using the json field names.
func NewConfigFromAttributes(attributes map[string]interface{}) (*Config, error) {
	var conf Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &conf,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, errors.Wrap(err, "failed to decode ik config")
	}
	if err := conf.Validate("ik"); err != nil {
		return nil, err
	}
	return &conf, nil
}

// ConfigSchema returns the JSON schema of Config.
func ConfigSchema() *jsonschema.Schema {
	return jsonschema.Reflect(&Config{})
}
