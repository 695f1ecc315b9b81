// Package utils contains small numeric helpers shared by the camera models.
package utils

import (
	"math"
)

// Epsilon is the smallest magnitude a divisor is allowed to take before it is clamped.
const Epsilon = 1e-10

// MaxNormalized bounds the magnitude of a normalized image plane coordinate so that distortion
// polynomials of it stay finite.
const MaxNormalized = 1e15

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// SafeDivisor returns d pushed away from zero to at least Epsilon, keeping its sign.
// Zero is treated as positive.
func SafeDivisor(d float64) float64 {
	if d >= Epsilon || d <= -Epsilon {
		return d
	}
	if d < 0 {
		return -Epsilon
	}
	return Epsilon
}

// IsFinite reports whether every value is neither NaN nor infinite.
func IsFinite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
