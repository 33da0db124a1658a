package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"
)

// represent a 45 degree rotation around the x axis in all the representations
var (
	th = math.Pi / 4.

	// in quaternion representation
	q45x = quat.Number{Real: math.Cos(th / 2.), Imag: math.Sin(th / 2.)}

	// in axis-angle representation
	aa45x = &R4AA{th, 1., 0., 0.}

	// in euler angle representation
	ea45x = &EulerAngles{Roll: th, Pitch: 0, Yaw: 0}

	// in rotation matrix representation
	rm45x = &RotationMatrix{[9]float64{
		1, 0, 0,
		0, math.Cos(th), -math.Sin(th),
		0, math.Sin(th), math.Cos(th),
	}}
)

func TestZeroOrientation(t *testing.T) {
	zero := NewZeroOrientation()
	test.That(t, zero.AxisAngles(), test.ShouldResemble, NewR4AA())
	test.That(t, zero.Quaternion(), test.ShouldResemble, quat.Number{Real: 1})
	test.That(t, zero.EulerAngles(), test.ShouldResemble, NewEulerAngles())
}

func testQuatAlmostEqual(t *testing.T, got, want quat.Number) {
	t.Helper()
	test.That(t, QuaternionAlmostEqual(got, want, 1e-9), test.ShouldBeTrue)
}

func TestQuaternions(t *testing.T) {
	qq45x := Quaternion(q45x)
	testQuatAlmostEqual(t, qq45x.Quaternion(), q45x)
	test.That(t, qq45x.AxisAngles().Theta, test.ShouldAlmostEqual, aa45x.Theta)
	test.That(t, qq45x.AxisAngles().RX, test.ShouldAlmostEqual, aa45x.RX)
	test.That(t, qq45x.AxisAngles().RY, test.ShouldAlmostEqual, aa45x.RY)
	test.That(t, qq45x.AxisAngles().RZ, test.ShouldAlmostEqual, aa45x.RZ)
	test.That(t, qq45x.EulerAngles().Roll, test.ShouldAlmostEqual, ea45x.Roll)
	test.That(t, qq45x.EulerAngles().Pitch, test.ShouldAlmostEqual, ea45x.Pitch)
	test.That(t, qq45x.EulerAngles().Yaw, test.ShouldAlmostEqual, ea45x.Yaw)
	for i := 0; i < 9; i++ {
		test.That(t, qq45x.RotationMatrix().mat[i], test.ShouldAlmostEqual, rm45x.mat[i])
	}
}

func TestEulerAngles(t *testing.T) {
	testQuatAlmostEqual(t, ea45x.Quaternion(), q45x)
	test.That(t, ea45x.AxisAngles().Theta, test.ShouldAlmostEqual, aa45x.Theta)

	yaw := &EulerAngles{Yaw: math.Pi / 2}
	testQuatAlmostEqual(t, yaw.Quaternion(), quat.Number{Real: math.Cos(math.Pi / 4), Kmag: math.Sin(math.Pi / 4)})

	pitch := &EulerAngles{Pitch: 0.3}
	testQuatAlmostEqual(t, pitch.Quaternion(), quat.Number{Real: math.Cos(0.15), Jmag: math.Sin(0.15)})

	// fixed-axis roll, pitch, yaw composes as Rz * Ry * Rx
	ea := &EulerAngles{Roll: 0.1, Pitch: -0.2, Yaw: 0.3}
	rx := (&R4AA{0.1, 1, 0, 0}).ToQuat()
	ry := (&R4AA{-0.2, 0, 1, 0}).ToQuat()
	rz := (&R4AA{0.3, 0, 0, 1}).ToQuat()
	testQuatAlmostEqual(t, ea.Quaternion(), quat.Mul(rz, quat.Mul(ry, rx)))

	back := QuatToEulerAngles(ea.Quaternion())
	test.That(t, back.Roll, test.ShouldAlmostEqual, 0.1)
	test.That(t, back.Pitch, test.ShouldAlmostEqual, -0.2)
	test.That(t, back.Yaw, test.ShouldAlmostEqual, 0.3)
}

func TestRotationMatrix(t *testing.T) {
	testQuatAlmostEqual(t, rm45x.Quaternion(), q45x)

	// exercise every branch of the matrix to quaternion conversion
	for _, aa := range []*R4AA{
		{0.3, 0, 0, 1},
		{3.0, 1, 0, 0},
		{3.0, 0, 1, 0},
		{3.0, 0, 0, 1},
		{2.5, 1, 1, 1},
	} {
		q := aa.ToQuat()
		testQuatAlmostEqual(t, QuatToRotationMatrix(q).Quaternion(), q)
	}

	_, err := NewRotationMatrix([]float64{1, 0, 0})
	test.That(t, err, test.ShouldNotBeNil)
	rm, err := NewRotationMatrix([]float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, rm.Row(1), test.ShouldResemble, r3.Vector{Y: 1})
	test.That(t, rm.Col(2), test.ShouldResemble, r3.Vector{Z: 1})
	test.That(t, rm.Dense().At(0, 0), test.ShouldEqual, 1.)
}

func TestAxisAngleLogExp(t *testing.T) {
	for _, v := range []r3.Vector{
		{},
		{X: 1e-14},
		{X: 0.3, Y: -0.2, Z: 0.5},
		{Z: math.Pi - 1e-6},
		{X: -1.2, Y: 0.4, Z: 0.1},
	} {
		q := R3ToQuat(v)
		test.That(t, quat.Abs(q), test.ShouldAlmostEqual, 1.)
		back := QuatToR3AA(q)
		test.That(t, R3VectorAlmostEqual(back, v, 1e-9), test.ShouldBeTrue)
		// the log map is insensitive to the sign of the quaternion
		test.That(t, R3VectorAlmostEqual(QuatToR3AA(Flip(q)), v, 1e-9), test.ShouldBeTrue)
	}

	r4 := R3ToR4(r3.Vector{Z: 2})
	test.That(t, r4.Theta, test.ShouldAlmostEqual, 2.)
	test.That(t, r4.RZ, test.ShouldAlmostEqual, 1.)
	test.That(t, R3ToR4(r3.Vector{}), test.ShouldResemble, NewR4AA())
	test.That(t, r4.ToR3(), test.ShouldResemble, r3.Vector{Z: 2})

	unnormalized := &R4AA{1, 0, 0, 2}
	unnormalized.Normalize()
	test.That(t, unnormalized.RZ, test.ShouldAlmostEqual, 1.)
	zeroAxis := &R4AA{1, 0, 0, 0}
	test.That(t, zeroAxis.ToQuat(), test.ShouldResemble, quat.Number{Real: 1})
}

func TestOrientationBetween(t *testing.T) {
	a := &R4AA{0.2, 0, 0, 1}
	b := &R4AA{0.5, 0, 0, 1}
	between := OrientationBetween(a, b)
	test.That(t, between.AxisAngles().Theta, test.ShouldAlmostEqual, 0.3)
	test.That(t, between.AxisAngles().RZ, test.ShouldAlmostEqual, 1.)
	test.That(t, OrientationAlmostEqual(a, &R4AA{0.2, 0, 0, 1}), test.ShouldBeTrue)
	test.That(t, OrientationAlmostEqual(a, b), test.ShouldBeFalse)
}
