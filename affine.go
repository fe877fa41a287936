package symdecomp

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/njchilds90/symdecomp/symbolic"
)

// ============================================================
// IsAffine
// ============================================================

// IsAffine reports whether every entry of m is a polynomial of total degree
// at most 1 in its own free variables. An empty matrix is affine.
func IsAffine(m *symbolic.Matrix) bool {
	return isAffineMatrix(m, nil)
}

// IsAffineIn is IsAffine with the degree taken in vars only. An entry must
// still be a polynomial in all of its variables, so sin(a)*x is not affine
// in {x}.
func IsAffineIn(m *symbolic.Matrix, vars symbolic.Variables) bool {
	return isAffineMatrix(m, &vars)
}

func isAffineMatrix(m *symbolic.Matrix, vars *symbolic.Variables) bool {
	affine := true
	m.Each(func(_, _ int, e symbolic.Expr) bool {
		affine = isAffineEntry(e, vars)
		return affine
	})
	return affine
}

func isAffineEntry(e symbolic.Expr, vars *symbolic.Variables) bool {
	if !symbolic.IsPolynomial(e) {
		return false
	}
	indet := symbolic.VariablesOf(e)
	if vars != nil {
		indet = *vars
	}
	p, err := symbolic.NewPolynomialIn(e, indet)
	return err == nil && p.TotalDegree() <= 1
}

// ============================================================
// Linear and affine decomposition
// ============================================================

// DecomposeLinear returns M with exprs[i] = Σⱼ M[i,j]·vars[j]. Every
// expression must be linear in vars: a polynomial of degree at most 1 with
// no constant term. When either dimension is zero M is an empty Dense.
func DecomposeLinear(exprs []symbolic.Expr, vars []*symbolic.Variable) (*mat.Dense, error) {
	M := newDense(len(exprs), len(vars))
	if err := DecomposeLinearInto(exprs, vars, M); err != nil {
		return nil, err
	}
	return M, nil
}

// DecomposeLinearInto is DecomposeLinear writing into a caller-owned M of
// size len(exprs)×len(vars).
func DecomposeLinearInto(exprs []symbolic.Expr, vars []*symbolic.Variable, M *mat.Dense) error {
	if err := checkDense(M, len(exprs), len(vars)); err != nil {
		return err
	}
	indet := symbolic.NewVariables(vars...)
	for i, e := range exprs {
		p, err := affinePolynomial(e, indet)
		if err != nil {
			return err
		}
		if c, ok := p.Coefficient(symbolic.Monomial{}); ok {
			return &DecomposeError{
				Kind:   ErrUnexpectedConstantTerm,
				Expr:   e.String(),
				Vars:   indet.String(),
				Detail: fmt.Sprintf("constant term %s; a linear expression has none", c),
			}
		}
		for j, v := range vars {
			f, err := coefficientOf(p, symbolic.MonomialOf(v, 1))
			if err != nil {
				return err
			}
			M.Set(i, j, f)
		}
	}
	return nil
}

// DecomposeAffine returns M and v with exprs[i] = Σⱼ M[i,j]·vars[j] + v[i].
func DecomposeAffine(exprs []symbolic.Expr, vars []*symbolic.Variable) (*mat.Dense, *mat.VecDense, error) {
	M := newDense(len(exprs), len(vars))
	v := newVecDense(len(exprs))
	if err := DecomposeAffineInto(exprs, vars, M, v); err != nil {
		return nil, nil, err
	}
	return M, v, nil
}

// DecomposeAffineInto is DecomposeAffine writing into caller-owned M
// (len(exprs)×len(vars)) and v (len(exprs)).
func DecomposeAffineInto(exprs []symbolic.Expr, vars []*symbolic.Variable, M *mat.Dense, v *mat.VecDense) error {
	if err := checkDense(M, len(exprs), len(vars)); err != nil {
		return err
	}
	if v == nil || v.Len() != len(exprs) {
		return &DecomposeError{
			Kind:   ErrDimensionMismatch,
			Detail: fmt.Sprintf("constant vector must have length %d", len(exprs)),
		}
	}
	indet := symbolic.NewVariables(vars...)
	for i, e := range exprs {
		p, err := affinePolynomial(e, indet)
		if err != nil {
			return err
		}
		for j, x := range vars {
			f, err := coefficientOf(p, symbolic.MonomialOf(x, 1))
			if err != nil {
				return err
			}
			M.Set(i, j, f)
		}
		c, err := coefficientOf(p, symbolic.Monomial{})
		if err != nil {
			return err
		}
		v.SetVec(i, c)
	}
	return nil
}

// DecomposeAffineImplicit discovers the variables of exprs in first
// occurrence order and returns M, v and that variable list, with
// exprs[i] = Σⱼ M[i,j]·vars[j] + v[i].
func DecomposeAffineImplicit(exprs []symbolic.Expr) (*mat.Dense, *mat.VecDense, []*symbolic.Variable, error) {
	vars, index := ExtractVariablesFromExprs(exprs)
	M := newDense(len(exprs), len(vars))
	v := newVecDense(len(exprs))
	for i, e := range exprs {
		row, err := DecomposeAffineRow(e, index)
		if err != nil {
			return nil, nil, nil, err
		}
		for j, c := range row.Coeffs {
			M.Set(i, j, c)
		}
		v.SetVec(i, row.Constant)
	}
	return M, v, vars, nil
}

// AffineRow is the decomposition of one affine expression against an
// index map.
type AffineRow struct {
	Coeffs   []float64 // Coeffs[index[v]] is the coefficient of v
	Constant float64
	// NumVariables counts the variables with a nonzero coefficient.
	NumVariables int
}

// DecomposeAffineRow decomposes e = Σ Coeffs[index[v]]·v + Constant. Every
// variable of e must be in index.
func DecomposeAffineRow(e symbolic.Expr, index VariableIndex) (AffineRow, error) {
	row := AffineRow{Coeffs: make([]float64, len(index))}
	p, err := affinePolynomial(e, symbolic.VariablesOf(e))
	if err != nil {
		return AffineRow{}, err
	}
	for _, t := range p.Terms() {
		f, ok := symbolic.ConstantValue(t.Coefficient)
		if !ok {
			return AffineRow{}, newError(ErrNonConstantCoefficient, t.Coefficient,
				"coefficient of "+t.Monomial.String())
		}
		powers := t.Monomial.Powers()
		if len(powers) == 0 {
			row.Constant = f
			continue
		}
		j, ok := index.Lookup(powers[0].Var)
		if !ok {
			return AffineRow{}, newError(ErrVariableNotIndexed, e, "variable "+powers[0].Var.Name())
		}
		row.Coeffs[j] = f
		if f != 0 {
			row.NumVariables++
		}
	}
	return row, nil
}

// affinePolynomial checks that e is a polynomial of degree at most 1 in
// indet and returns it.
func affinePolynomial(e symbolic.Expr, indet symbolic.Variables) (*symbolic.Polynomial, error) {
	if !symbolic.IsPolynomial(e) {
		return nil, newError(ErrInputNotPolynomial, e, "")
	}
	p, err := symbolic.NewPolynomialIn(e, indet)
	if err != nil {
		return nil, newError(ErrInputNotPolynomial, e, err.Error())
	}
	if d := p.TotalDegree(); d > 1 {
		return nil, &DecomposeError{
			Kind:   ErrDegreeExceeded,
			Expr:   e.String(),
			Vars:   indet.String(),
			Detail: fmt.Sprintf("total degree %d, want at most 1", d),
		}
	}
	return p, nil
}

// coefficientOf reads the numeric coefficient of m; a missing monomial
// reads as 0.
func coefficientOf(p *symbolic.Polynomial, m symbolic.Monomial) (float64, error) {
	c, ok := p.Coefficient(m)
	if !ok {
		return 0, nil
	}
	f, ok := symbolic.ConstantValue(c)
	if !ok {
		return 0, newError(ErrNonConstantCoefficient, c, "coefficient of "+m.String())
	}
	return f, nil
}

// ============================================================
// gonum helpers
// ============================================================

// newDense allocates an r×c zero matrix. gonum has no zero-sized Dense, so
// an empty Dense stands for any shape with a zero dimension.
func newDense(r, c int) *mat.Dense {
	if r == 0 || c == 0 {
		return &mat.Dense{}
	}
	return mat.NewDense(r, c, nil)
}

func newVecDense(n int) *mat.VecDense {
	if n == 0 {
		return &mat.VecDense{}
	}
	return mat.NewVecDense(n, nil)
}

func checkDense(M *mat.Dense, r, c int) error {
	if M == nil {
		return &DecomposeError{Kind: ErrDimensionMismatch, Detail: "nil coefficient matrix"}
	}
	gr, gc := M.Dims()
	if r == 0 || c == 0 {
		if gr*gc == 0 {
			return nil
		}
	} else if gr == r && gc == c {
		return nil
	}
	return &DecomposeError{
		Kind:   ErrDimensionMismatch,
		Detail: fmt.Sprintf("coefficient matrix is %dx%d, want %dx%d", gr, gc, r, c),
	}
}
