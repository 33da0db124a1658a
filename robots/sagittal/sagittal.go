// Package sagittal provides the kinematic description of a quadruped whose legs only move in the sagittal plane:
// every leg has a hip flexion-extension (hfe) and a knee flexion-extension (kfe) joint, both about the trunk's
// lateral axis.
package sagittal

import (
	_ "embed" // for embedding model file

	"go.viam.com/wholebody/referenceframe"
)

// ModelName is the name of the model.
const ModelName = "sagittal"

//go:embed sagittal.json
var modeljson []byte

// Model parses the embedded description into a floating-base model with 8 joints.
func Model() (*referenceframe.Model, error) {
	return referenceframe.UnmarshalModelJSON(modeljson, ModelName)
}

// NominalPosture returns the standing posture with front knees bent backwards and hind knees bent forwards,
// keyed by joint name.
func NominalPosture() map[string]float64 {
	return map[string]float64{
		"lf_hfe_joint": 0.75, "lf_kfe_joint": -1.5,
		"lh_hfe_joint": -0.75, "lh_kfe_joint": 1.5,
		"rf_hfe_joint": 0.75, "rf_kfe_joint": -1.5,
		"rh_hfe_joint": -0.75, "rh_kfe_joint": 1.5,
	}
}
