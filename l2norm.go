package symdecomp

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/njchilds90/symdecomp/symbolic"
)

// L2Norm is ‖A·x + B‖₂ over Vars.
type L2Norm struct {
	A    *mat.Dense
	B    *mat.VecDense
	Vars []*symbolic.Variable
}

// DecomposeL2Norm recognizes e = sqrt(q(x)) with q a quadratic polynomial
// equal to ‖A·x + b‖₂², A of full row rank. A non-matching e is reported by
// the boolean, not by an error; errors are for negative tolerances only.
//
// psdTol bounds the negative eigenvalues tolerated in q's Hessian.
// coeffTol bounds the mismatch of the linear and constant terms of q
// against those of ‖A·x + b‖₂².
func DecomposeL2Norm(e symbolic.Expr, psdTol, coeffTol float64) (L2Norm, bool, error) {
	if psdTol < 0 {
		return L2Norm{}, false, &DecomposeError{Kind: ErrNegativeTolerance, Detail: fmt.Sprintf("psd tolerance %g", psdTol)}
	}
	if coeffTol < 0 {
		return L2Norm{}, false, &DecomposeError{Kind: ErrNegativeTolerance, Detail: fmt.Sprintf("coefficient tolerance %g", coeffTol)}
	}

	f, ok := e.(*symbolic.Func)
	if !ok || f.Kind() != symbolic.KindSqrt {
		return L2Norm{}, false, nil
	}
	arg := f.Arg()
	if !symbolic.IsPolynomial(arg) {
		return L2Norm{}, false, nil
	}
	p, err := symbolic.NewPolynomial(arg)
	if err != nil || p.TotalDegree() != 2 {
		return L2Norm{}, false, nil
	}

	vars, index := ExtractVariables(e)
	quad, err := DecomposeQuadratic(p, index)
	if err != nil {
		return L2Norm{}, false, nil
	}

	// q = xᵀ(Q/2)x + rᵀx + s, and ‖Ax + b‖² = xᵀAᵀAx + 2bᵀAx + bᵀb.
	var half mat.SymDense
	half.ScaleSym(0.5, quad.Q)
	A, err := DecomposePSDIntoXtX(&half, psdTol)
	if err != nil {
		return L2Norm{}, false, nil
	}
	if A.IsEmpty() {
		return L2Norm{}, false, nil
	}

	rhs := mat.NewVecDense(len(vars), nil)
	rhs.ScaleVec(0.5, quad.B)
	var b mat.VecDense
	if err := b.SolveVec(A.T(), rhs); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return L2Norm{}, false, nil
		}
	}

	var residual mat.VecDense
	residual.MulVec(A.T(), &b)
	residual.SubVec(&residual, rhs)
	if mat.Norm(&residual, math.Inf(1)) > coeffTol {
		return L2Norm{}, false, nil
	}
	if math.Abs(quad.C-mat.Dot(&b, &b)) > coeffTol {
		return L2Norm{}, false, nil
	}
	return L2Norm{A: A, B: &b, Vars: vars}, true, nil
}
