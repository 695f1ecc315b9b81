// Package testutils contains helpers for testing camera models.
package testutils

import (
	"math"
	"testing"

	"go.viam.com/test"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// NumericJacobian approximates the Jacobian of f at x with central differences. f writes its
// rows outputs into y.
func NumericJacobian(rows int, f func(y, x []float64), x []float64) *mat.Dense {
	jac := mat.NewDense(rows, len(x), nil)
	fd.Jacobian(jac, f, x, &fd.JacobianSettings{Formula: fd.Central})
	return jac
}

// CheckJacobian fails the test if the analytic Jacobian differs from the numeric one by more than
// tol relative to the size of the entry.
func CheckJacobian(t *testing.T, analytic, numeric mat.Matrix, tol float64) {
	t.Helper()
	ar, ac := analytic.Dims()
	nr, nc := numeric.Dims()
	test.That(t, ar, test.ShouldEqual, nr)
	test.That(t, ac, test.ShouldEqual, nc)
	for i := 0; i < ar; i++ {
		for j := 0; j < ac; j++ {
			want := numeric.At(i, j)
			test.That(t, analytic.At(i, j), test.ShouldAlmostEqual, want, tol*math.Max(1, math.Abs(want)))
		}
	}
}
