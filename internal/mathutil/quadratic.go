package mathutil

import "math"

// tangentEps absorbs round-off in the discriminant of a grazing hit.
const tangentEps = 1e-12

// SolveQuadratic returns the real roots of a·t² + b·t + c = 0 with t0 <= t1.
// A discriminant slightly below zero is treated as a tangent (t0 == t1).
func SolveQuadratic(a, b, c float64) (t0, t1 float64, ok bool) {
	if a == 0 {
		if b == 0 {
			return 0, 0, false
		}
		t := -c / b
		return t, t, true
	}

	disc := b*b - 4*a*c
	if disc < 0 {
		if disc < -tangentEps*math.Max(1, b*b) {
			return 0, 0, false
		}
		disc = 0
	}

	// Numerically stable form: avoid subtracting nearly equal values.
	sq := math.Sqrt(disc)
	var q float64
	if b < 0 {
		q = -0.5 * (b - sq)
	} else {
		q = -0.5 * (b + sq)
	}

	if q == 0 {
		// b == 0 and disc == 0, so c == 0 as well.
		return 0, 0, true
	}

	t0 = q / a
	t1 = c / q
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	return t0, t1, true
}
