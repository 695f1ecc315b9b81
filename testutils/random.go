package testutils

import (
	"math/rand"

	"github.com/golang/geo/r3"
)

// RandomPointsInFront returns n points with depth in [minZ, maxZ] whose lateral offsets are at
// most spread times their depth.
func RandomPointsInFront(rng *rand.Rand, n int, minZ, maxZ, spread float64) []r3.Vector {
	points := make([]r3.Vector, n)
	for i := range points {
		z := minZ + rng.Float64()*(maxZ-minZ)
		points[i] = r3.Vector{
			X: (2*rng.Float64() - 1) * spread * z,
			Y: (2*rng.Float64() - 1) * spread * z,
			Z: z,
		}
	}
	return points
}

// RandomPoints returns n points with every coordinate uniform in [-extent, extent].
func RandomPoints(rng *rand.Rand, n int, extent float64) []r3.Vector {
	points := make([]r3.Vector, n)
	for i := range points {
		points[i] = r3.Vector{
			X: (2*rng.Float64() - 1) * extent,
			Y: (2*rng.Float64() - 1) * extent,
			Z: (2*rng.Float64() - 1) * extent,
		}
	}
	return points
}
