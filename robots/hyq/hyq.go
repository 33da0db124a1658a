// Package hyq provides the kinematic description of the HyQ hydraulic quadruped. Each leg has hip
// abduction-adduction (haa), hip flexion-extension (hfe) and knee flexion-extension (kfe) joints.
package hyq

import (
	_ "embed" // for embedding model file

	"go.viam.com/wholebody/referenceframe"
)

// ModelName is the name of the model.
const ModelName = "hyq"

//go:embed hyq.json
var modeljson []byte

// Model parses the embedded description into a floating-base model with 12 joints.
func Model() (*referenceframe.Model, error) {
	return referenceframe.UnmarshalModelJSON(modeljson, ModelName)
}

// NominalPosture returns the standing posture keyed by joint name.
func NominalPosture() map[string]float64 {
	return map[string]float64{
		"lf_haa_joint": -0.2, "lf_hfe_joint": 0.75, "lf_kfe_joint": -1.5,
		"lh_haa_joint": -0.2, "lh_hfe_joint": -0.75, "lh_kfe_joint": 1.5,
		"rf_haa_joint": -0.2, "rf_hfe_joint": 0.75, "rf_kfe_joint": -1.5,
		"rh_haa_joint": -0.2, "rh_hfe_joint": -0.75, "rh_kfe_joint": 1.5,
	}
}
