package symdecomp_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/njchilds90/symdecomp"
	"github.com/njchilds90/symdecomp/symbolic"
)

const tol = 1e-8

// ============================================================
// DecomposePSDIntoXtX
// ============================================================

func TestDecomposePSDIntoXtX(t *testing.T) {
	Y := mat.NewSymDense(3, []float64{
		4, 2, 0,
		2, 2, 0,
		0, 0, 0,
	})
	X, err := symdecomp.DecomposePSDIntoXtX(Y, tol)
	require.NoError(t, err)

	r, c := X.Dims()
	assert.Equal(t, 2, r, "rank-2 input gives two rows")
	assert.Equal(t, 3, c)

	var XtX mat.Dense
	XtX.Mul(X.T(), X)
	assert.True(t, mat.EqualApprox(Y, &XtX, 1e-10), "XᵀX = %v", mat.Formatted(&XtX))
}

func TestDecomposePSDIntoXtX_NotPSD(t *testing.T) {
	X, err := symdecomp.DecomposePSDIntoXtX(mat.NewSymDense(2, []float64{1, 0, 0, -1}), tol)
	require.NoError(t, err)
	assert.True(t, X.IsEmpty())

	X, err = symdecomp.DecomposePSDIntoXtX(mat.NewSymDense(2, []float64{1, 0, 0, -1e-12}), tol)
	require.NoError(t, err)
	assert.False(t, X.IsEmpty(), "eigenvalue within tolerance is accepted")
}

func TestDecomposePSDIntoXtX_Zero(t *testing.T) {
	X, err := symdecomp.DecomposePSDIntoXtX(mat.NewSymDense(2, nil), tol)
	require.NoError(t, err)
	assert.True(t, X.IsEmpty())
}

func TestDecomposePSDIntoXtX_NegativeTolerance(t *testing.T) {
	_, err := symdecomp.DecomposePSDIntoXtX(mat.NewSymDense(1, []float64{1}), -1)
	assert.True(t, errors.Is(err, symdecomp.ErrNegativeTolerance))
}

// ============================================================
// DecomposeL2Norm
// ============================================================

func TestDecomposeL2Norm_ShiftedCircle(t *testing.T) {
	x, y := symbolic.NewVariable("x"), symbolic.NewVariable("y")
	e := symbolic.SqrtOf(symbolic.AddOf(
		symbolic.PowOf(symbolic.SubOf(x, symbolic.N(1)), symbolic.N(2)),
		symbolic.PowOf(symbolic.SubOf(y, symbolic.N(2)), symbolic.N(2)),
	))

	norm, ok, err := symdecomp.DecomposeL2Norm(e, tol, tol)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"x", "y"}, varNames(norm.Vars))
	assert.True(t, mat.EqualApprox(mat.NewDiagDense(2, []float64{1, 1}), norm.A, 1e-10), "A = %v", mat.Formatted(norm.A))
	assert.True(t, mat.EqualApprox(mat.NewVecDense(2, []float64{-1, -2}), norm.B, 1e-10), "b = %v", mat.Formatted(norm.B.T()))

	// Any factorization must keep AᵀA = I and ‖b‖² = 5.
	var AtA mat.Dense
	AtA.Mul(norm.A.T(), norm.A)
	assert.True(t, mat.EqualApprox(mat.NewDiagDense(2, []float64{1, 1}), &AtA, 1e-10))
	assert.InDelta(t, 5.0, mat.Dot(norm.B, norm.B), 1e-10)

	// The norm vanishes at its center x=1, y=2.
	center := map[*symbolic.Variable]float64{x: 1, y: 2}
	c := mat.NewVecDense(2, nil)
	for i, v := range norm.Vars {
		c.SetVec(i, center[v])
	}
	var at mat.VecDense
	at.MulVec(norm.A, c)
	at.AddVec(&at, norm.B)
	assert.InDelta(t, 0.0, mat.Norm(&at, 2), 1e-10)
}

func TestDecomposeL2Norm_RankDeficient(t *testing.T) {
	x, y := symbolic.NewVariable("x"), symbolic.NewVariable("y")
	e := symbolic.SqrtOf(symbolic.PowOf(symbolic.AddOf(x, y), symbolic.N(2)))

	norm, ok, err := symdecomp.DecomposeL2Norm(e, tol, tol)
	require.NoError(t, err)
	require.True(t, ok)
	r, c := norm.A.Dims()
	assert.Equal(t, 1, r)
	assert.Equal(t, 2, c)
	assert.InDelta(t, 1.0, norm.A.At(0, 0)*norm.A.At(0, 0), 1e-10)
	assert.InDelta(t, norm.A.At(0, 0), norm.A.At(0, 1), 1e-10)
	assert.InDelta(t, 0.0, norm.B.AtVec(0), 1e-10)
}

func TestDecomposeL2Norm_Rejects(t *testing.T) {
	x, y := symbolic.NewVariable("x"), symbolic.NewVariable("y")
	two := symbolic.N(2)
	tests := []struct {
		name string
		e    symbolic.Expr
	}{
		{"not a sqrt", symbolic.AddOf(symbolic.PowOf(x, two), symbolic.PowOf(y, two))},
		{"linear in y", symbolic.SqrtOf(symbolic.AddOf(symbolic.PowOf(x, two), y))},
		{"degree 1", symbolic.SqrtOf(x)},
		{"degree 4", symbolic.SqrtOf(symbolic.PowOf(x, symbolic.N(4)))},
		{"non-polynomial", symbolic.SqrtOf(symbolic.SinOf(x))},
		{"indefinite", symbolic.SqrtOf(symbolic.SubOf(symbolic.PowOf(x, two), symbolic.PowOf(y, two)))},
		{"constant offset", symbolic.SqrtOf(symbolic.AddOf(symbolic.PowOf(x, two), symbolic.N(1)))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, err := symdecomp.DecomposeL2Norm(tt.e, tol, tol)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestDecomposeL2Norm_NegativeTolerance(t *testing.T) {
	x := symbolic.NewVariable("x")
	e := symbolic.SqrtOf(symbolic.PowOf(x, symbolic.N(2)))

	_, _, err := symdecomp.DecomposeL2Norm(e, -1, tol)
	assert.True(t, errors.Is(err, symdecomp.ErrNegativeTolerance))
	_, _, err = symdecomp.DecomposeL2Norm(e, tol, -1)
	assert.True(t, errors.Is(err, symdecomp.ErrNegativeTolerance))
}
