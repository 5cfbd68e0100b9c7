package mathutil

import "math"

// RotX returns a 3×3 rotation matrix around the X axis. Angle in radians.
func RotX(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{
		1, 0, 0,
		0, c, -s,
		0, s, c,
	}
}

// RotY returns a 3×3 rotation matrix around the Y axis.
func RotY(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{
		c, 0, s,
		0, 1, 0,
		-s, 0, c,
	}
}

// RotZ returns a 3×3 rotation matrix around the Z axis.
func RotZ(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	}
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(d float64) float64 {
	return d * math.Pi / 180
}

// CameraRotation builds the camera-to-world matrix from a tilt in degrees:
// tilt[0] is pitch, tilt[1] is yaw and tilt[2] is roll. The camera looks
// along its local +X axis, with local +Z as up.
//
// The result is (Rz(roll)·Ry(yaw)·Rx(pitch))ᵀ, so the first row reads
// [cy·cz, cy·sz, -sy].
func CameraRotation(tilt Vec3) Mat3 {
	pitch := Deg2Rad(tilt[0])
	yaw := Deg2Rad(tilt[1])
	roll := Deg2Rad(tilt[2])
	return Mat3Mul(Mat3Mul(RotZ(roll), RotY(yaw)), RotX(pitch)).Transpose()
}
