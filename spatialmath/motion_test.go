package spatialmath

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestMotionVector(t *testing.T) {
	m := NewMotion(r3.Vector{X: 1, Y: 2, Z: 3}, r3.Vector{X: 4, Y: 5, Z: 6})
	test.That(t, m.Vector(), test.ShouldResemble, []float64{1, 2, 3, 4, 5, 6})

	back, err := MotionFromVector(m.Vector())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, back, test.ShouldResemble, m)

	_, err = MotionFromVector([]float64{1, 2})
	test.That(t, err, test.ShouldBeError, "motion vector must have 6 elements, got 2")
}

func TestMotionArithmetic(t *testing.T) {
	a := NewMotion(r3.Vector{X: 1}, r3.Vector{Y: 1})
	b := NewMotion(r3.Vector{Z: 1}, r3.Vector{X: 1})
	test.That(t, a.Add(b), test.ShouldResemble, NewMotion(r3.Vector{X: 1, Z: 1}, r3.Vector{X: 1, Y: 1}))
	test.That(t, a.Sub(b), test.ShouldResemble, NewMotion(r3.Vector{X: 1, Z: -1}, r3.Vector{X: -1, Y: 1}))
	test.That(t, a.Mul(2), test.ShouldResemble, NewMotion(r3.Vector{X: 2}, r3.Vector{Y: 2}))
	test.That(t, MotionAlmostEqual(a, a.Add(NewMotion(r3.Vector{X: 1e-10}, r3.Vector{})), 1e-8), test.ShouldBeTrue)
	test.That(t, MotionAlmostEqual(a, b, 1e-8), test.ShouldBeFalse)
}
