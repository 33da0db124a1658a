package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// RotationMatrix is a 3x3 orthonormal matrix in row-major order.
type RotationMatrix struct {
	mat [9]float64
}

// NewRotationMatrix creates the rotation matrix from a row-major slice of 9 elements.
func NewRotationMatrix(m []float64) (*RotationMatrix, error) {
	if len(m) != 9 {
		return nil, newRotationMatrixInputError(m)
	}
	var data [9]float64
	copy(data[:], m)
	return &RotationMatrix{data}, nil
}

// At returns the element at row r, column c.
func (rm *RotationMatrix) At(r, c int) float64 {
	return rm.mat[r*3+c]
}

// Row returns row i as a vector.
func (rm *RotationMatrix) Row(i int) r3.Vector {
	return r3.Vector{X: rm.mat[3*i], Y: rm.mat[3*i+1], Z: rm.mat[3*i+2]}
}

// Col returns column i as a vector.
func (rm *RotationMatrix) Col(i int) r3.Vector {
	return r3.Vector{X: rm.mat[i], Y: rm.mat[i+3], Z: rm.mat[i+6]}
}

// Dense returns a copy of the matrix as a gonum dense matrix.
func (rm *RotationMatrix) Dense() *mat.Dense {
	data := make([]float64, 9)
	copy(data, rm.mat[:])
	return mat.NewDense(3, 3, data)
}

// RotationMatrix returns the orientation in rotation matrix representation.
func (rm *RotationMatrix) RotationMatrix() *RotationMatrix {
	return rm
}

// AxisAngles returns the orientation in axis angle representation.
func (rm *RotationMatrix) AxisAngles() *R4AA {
	aa := QuatToR4AA(rm.Quaternion())
	return &aa
}

// EulerAngles returns orientation in Euler angle representation.
func (rm *RotationMatrix) EulerAngles() *EulerAngles {
	return QuatToEulerAngles(rm.Quaternion())
}

// Quaternion returns orientation in quaternion representation.
// Reference: http://www.euclideanspace.com/maths/geometry/rotations/conversions/matrixToQuaternion/index.htm
func (rm *RotationMatrix) Quaternion() quat.Number {
	var q quat.Number
	tr := rm.At(0, 0) + rm.At(1, 1) + rm.At(2, 2)
	switch {
	case tr > 0:
		s := 0.5 / math.Sqrt(tr+1.0)
		q.Real = 0.25 / s
		q.Imag = (rm.At(2, 1) - rm.At(1, 2)) * s
		q.Jmag = (rm.At(0, 2) - rm.At(2, 0)) * s
		q.Kmag = (rm.At(1, 0) - rm.At(0, 1)) * s
	case rm.At(0, 0) > rm.At(1, 1) && rm.At(0, 0) > rm.At(2, 2):
		s := 2.0 * math.Sqrt(1.0+rm.At(0, 0)-rm.At(1, 1)-rm.At(2, 2))
		q.Real = (rm.At(2, 1) - rm.At(1, 2)) / s
		q.Imag = 0.25 * s
		q.Jmag = (rm.At(0, 1) + rm.At(1, 0)) / s
		q.Kmag = (rm.At(0, 2) + rm.At(2, 0)) / s
	case rm.At(1, 1) > rm.At(2, 2):
		s := 2.0 * math.Sqrt(1.0+rm.At(1, 1)-rm.At(0, 0)-rm.At(2, 2))
		q.Real = (rm.At(0, 2) - rm.At(2, 0)) / s
		q.Imag = (rm.At(0, 1) + rm.At(1, 0)) / s
		q.Jmag = 0.25 * s
		q.Kmag = (rm.At(1, 2) + rm.At(2, 1)) / s
	default:
		s := 2.0 * math.Sqrt(1.0+rm.At(2, 2)-rm.At(0, 0)-rm.At(1, 1))
		q.Real = (rm.At(1, 0) - rm.At(0, 1)) / s
		q.Imag = (rm.At(0, 2) + rm.At(2, 0)) / s
		q.Jmag = (rm.At(1, 2) + rm.At(2, 1)) / s
		q.Kmag = 0.25 * s
	}
	return normalizeQuat(q)
}

// QuatToRotationMatrix converts a quat to a Rotation Matrix
// reference: https://github.com/go-gl/mathgl/blob/592312d8590acb0686c14740dcf60e2f32d9c618/mgl64/quat.go#L168
func QuatToRotationMatrix(q quat.Number) *RotationMatrix {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	x2, y2, z2 := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z
	return &RotationMatrix{[9]float64{
		1 - 2*(y2+z2), 2 * (xy - wz), 2 * (xz + wy),
		2 * (xy + wz), 1 - 2*(x2+z2), 2 * (yz - wx),
		2 * (xz - wy), 2 * (yz + wx), 1 - 2*(x2+y2),
	}}
}
