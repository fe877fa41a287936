package symdecomp

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/njchilds90/symdecomp/symbolic"
)

// Quadratic is 0.5·xᵀQx + bᵀx + c over an indexed variable vector x.
type Quadratic struct {
	Q *mat.SymDense
	B *mat.VecDense
	C float64
}

// DecomposeQuadratic writes p, a polynomial of total degree at most 2, as
// 0.5·xᵀQx + bᵀx + c where x[index[v]] = v. Every coefficient must be a
// number and every indeterminate of a term must be in index.
//
// A zero coefficient stored in p is an invariant violation of
// symbolic.Polynomial and panics.
func DecomposeQuadratic(p *symbolic.Polynomial, index VariableIndex) (Quadratic, error) {
	n := len(index)
	q := make([]float64, n*n)
	b := make([]float64, n)
	var c float64

	pos := func(v *symbolic.Variable) (int, error) {
		i, ok := index.Lookup(v)
		if !ok {
			return 0, newError(ErrVariableNotIndexed, p, "variable "+v.Name())
		}
		if i < 0 || i >= n {
			return 0, newError(ErrDimensionMismatch, p,
				fmt.Sprintf("variable %s at position %d of a %d-entry index", v.Name(), i, n))
		}
		return i, nil
	}

	for _, t := range p.Terms() {
		coeff, ok := symbolic.ConstantValue(t.Coefficient)
		if !ok {
			return Quadratic{}, newError(ErrNonConstantCoefficient, t.Coefficient,
				"coefficient of "+t.Monomial.String())
		}
		if symbolic.IsZero(t.Coefficient) {
			panic(fmt.Sprintf("symdecomp: zero coefficient stored for monomial %s", t.Monomial))
		}
		if d := t.Monomial.TotalDegree(); d > 2 {
			return Quadratic{}, &DecomposeError{
				Kind:   ErrDegreeExceeded,
				Expr:   t.Monomial.String(),
				Vars:   p.Indeterminates().String(),
				Detail: fmt.Sprintf("total degree %d, want at most 2", d),
			}
		}
		powers := t.Monomial.Powers()
		switch {
		case len(powers) == 2:
			i, err := pos(powers[0].Var)
			if err != nil {
				return Quadratic{}, err
			}
			j, err := pos(powers[1].Var)
			if err != nil {
				return Quadratic{}, err
			}
			q[i*n+j] += coeff
			q[j*n+i] = q[i*n+j]
		case len(powers) == 1:
			i, err := pos(powers[0].Var)
			if err != nil {
				return Quadratic{}, err
			}
			if powers[0].Power == 2 {
				q[i*n+i] += 2 * coeff
			} else {
				b[i] += coeff
			}
		default:
			c += coeff
		}
	}

	out := Quadratic{Q: &mat.SymDense{}, B: &mat.VecDense{}, C: c}
	if n > 0 {
		out.Q = mat.NewSymDense(n, q)
		out.B = mat.NewVecDense(n, b)
	}
	return out, nil
}
