package symdecomp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// DecomposePSDIntoXtX factors a positive semidefinite Y as XᵀX. X has one
// row per eigenvalue of Y above tol, scaled eigenvectors in ascending
// eigenvalue order, so X has full row rank.
//
// When an eigenvalue of Y is below -tol, Y is not PSD within tol and the
// result is an empty Dense. A Y whose eigenvalues all lie in [-tol, tol]
// also yields an empty Dense.
func DecomposePSDIntoXtX(Y mat.Symmetric, tol float64) (*mat.Dense, error) {
	if tol < 0 {
		return nil, &DecomposeError{Kind: ErrNegativeTolerance, Detail: fmt.Sprintf("psd tolerance %g", tol)}
	}
	n := Y.SymmetricDim()
	if n == 0 {
		return &mat.Dense{}, nil
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(Y, true); !ok {
		return nil, fmt.Errorf("symdecomp: eigendecomposition of %dx%d matrix did not converge", n, n)
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	rank := 0
	for _, lambda := range values {
		if lambda < -tol {
			return &mat.Dense{}, nil
		}
		if lambda > tol {
			rank++
		}
	}
	if rank == 0 {
		return &mat.Dense{}, nil
	}

	X := mat.NewDense(rank, n, nil)
	row := 0
	for k, lambda := range values {
		if lambda <= tol {
			continue
		}
		scale := math.Sqrt(lambda)
		for j := 0; j < n; j++ {
			X.Set(row, j, scale*vectors.At(j, k))
		}
		row++
	}
	return X, nil
}
