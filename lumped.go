package symdecomp

import (
	"github.com/njchilds90/symdecomp/symbolic"
)

// ============================================================
// Lumped-parameter factorization
// ============================================================

// LumpedFactorization writes an expression as Σᵢ W[i]·Alpha[i] + W0, where
// W and W0 are free of parameters and every Alpha[i] depends on
// parameters only.
type LumpedFactorization struct {
	W     []symbolic.Expr
	Alpha []symbolic.Expr
	W0    symbolic.Expr
}

// Expr rebuilds Σᵢ W[i]·Alpha[i] + W0.
func (f LumpedFactorization) Expr() symbolic.Expr {
	parts := make([]symbolic.Expr, 0, len(f.W)+1)
	for i, w := range f.W {
		parts = append(parts, symbolic.MulOf(w, f.Alpha[i]))
	}
	parts = append(parts, f.W0)
	return symbolic.AddOf(parts...)
}

// DecomposeLumpedParameter factors e over the parameters params; every
// other free variable of e is a state variable. e is expanded first.
//
// Terms repeated with the same weight inside one sum are merged by summing
// their parameter parts, so x*p + x*q gives W=[x], Alpha=[p + q]. Equal
// parameter parts with different weights stay separate; the vector form
// DecomposeLumpedParameters merges those.
//
// It fails with ErrNonSeparableNonlinearTerm, ErrNonSeparablePower or
// ErrUnsupportedMixedPower when a sub-expression couples parameters and
// state variables other than by multiplication.
func DecomposeLumpedParameter(e symbolic.Expr, params symbolic.Variables) (LumpedFactorization, error) {
	l := lumper{params: params}
	return l.visit(symbolic.Expand(e))
}

// LumpedDecomposition writes a vector f as W·Alpha + W0, with one column of
// W per distinct parameter expression in Alpha.
type LumpedDecomposition struct {
	W     *symbolic.Matrix
	Alpha []symbolic.Expr
	W0    []symbolic.Expr
}

// DecomposeLumpedParameters factors every row of f over params and shares
// structurally identical parameter expressions between rows. Alpha is
// ordered by symbolic.Compare. No partial result is returned on failure.
func DecomposeLumpedParameters(f []symbolic.Expr, params symbolic.Variables) (LumpedDecomposition, error) {
	l := lumper{params: params}
	var columns exprMap[[]symbolic.Expr]
	zeros := func() []symbolic.Expr {
		col := make([]symbolic.Expr, len(f))
		for i := range col {
			col[i] = symbolic.N(0)
		}
		return col
	}

	w0 := make([]symbolic.Expr, len(f))
	for i, e := range f {
		row, err := l.visit(symbolic.Expand(e))
		if err != nil {
			return LumpedDecomposition{}, err
		}
		w0[i] = row.W0
		for j, alpha := range row.Alpha {
			col := *columns.slot(alpha, zeros)
			col[i] = symbolic.AddOf(col[i], row.W[j])
		}
	}

	out := LumpedDecomposition{
		W:     symbolic.NewMatrix(len(f), columns.Len()),
		Alpha: make([]symbolic.Expr, 0, columns.Len()),
		W0:    w0,
	}
	columns.each(func(alpha symbolic.Expr, col []symbolic.Expr) {
		j := len(out.Alpha)
		out.Alpha = append(out.Alpha, alpha)
		for i, w := range col {
			out.W.Set(i, j, w)
		}
	})
	return out, nil
}

type lumper struct {
	params symbolic.Variables
}

func (l lumper) visit(e symbolic.Expr) (LumpedFactorization, error) {
	switch v := e.(type) {
	case *symbolic.Num:
		return stateOnly(e), nil
	case *symbolic.Variable:
		if l.params.Contains(v) {
			return paramOnly(e), nil
		}
		return stateOnly(e), nil
	case *symbolic.Add:
		return l.visitAdd(v)
	case *symbolic.Mul:
		return l.visitMul(v)
	case *symbolic.Pow:
		return l.visitPow(e, v.ExpExpr())
	}
	return l.visitOpaque(e)
}

// visitAdd handles c₀ + Σ cᵢ·eᵢ. Weight terms are keyed by cᵢ·wᵢⱼ and
// their parameter parts summed.
func (l lumper) visitAdd(a *symbolic.Add) (LumpedFactorization, error) {
	var weights exprMap[symbolic.Expr]
	zero := func() symbolic.Expr { return symbolic.N(0) }
	w0 := []symbolic.Expr{a.Constant()}
	for _, t := range a.Terms() {
		sub, err := l.visit(t.Expr)
		if err != nil {
			return LumpedFactorization{}, err
		}
		w0 = append(w0, symbolic.MulOf(t.Coeff, sub.W0))
		for j, w := range sub.W {
			alpha := weights.slot(symbolic.MulOf(t.Coeff, w), zero)
			*alpha = symbolic.AddOf(*alpha, sub.Alpha[j])
		}
	}
	out := LumpedFactorization{W0: symbolic.AddOf(w0...)}
	weights.each(func(w, alpha symbolic.Expr) {
		out.W = append(out.W, w)
		out.Alpha = append(out.Alpha, alpha)
	})
	return out, nil
}

// visitMul handles c·∏ baseᵢ^expᵢ as a running product of factorizations.
func (l lumper) visitMul(m *symbolic.Mul) (LumpedFactorization, error) {
	f := LumpedFactorization{W0: m.Constant()}
	for _, factor := range m.Factors() {
		var (
			g   LumpedFactorization
			err error
		)
		if symbolic.IsOne(factor.Exp) {
			g, err = l.visit(factor.Base)
		} else {
			g, err = l.visitPow(symbolic.PowOf(factor.Base, factor.Exp), factor.Exp)
		}
		if err != nil {
			return LumpedFactorization{}, err
		}
		f = multiply(f, g)
	}
	return f, nil
}

// multiply expands (Wa·αa + w0a)(Wb·αb + w0b). Products with a
// structurally zero w0 are skipped.
func multiply(a, b LumpedFactorization) LumpedFactorization {
	n := len(a.W) * len(b.W)
	if !symbolic.IsZero(a.W0) {
		n += len(b.W)
	}
	if !symbolic.IsZero(b.W0) {
		n += len(a.W)
	}
	out := LumpedFactorization{
		W:     make([]symbolic.Expr, 0, n),
		Alpha: make([]symbolic.Expr, 0, n),
		W0:    symbolic.MulOf(a.W0, b.W0),
	}
	for i := range a.W {
		for j := range b.W {
			out.W = append(out.W, symbolic.MulOf(a.W[i], b.W[j]))
			out.Alpha = append(out.Alpha, symbolic.MulOf(a.Alpha[i], b.Alpha[j]))
		}
	}
	if !symbolic.IsZero(a.W0) {
		for j := range b.W {
			out.W = append(out.W, symbolic.MulOf(a.W0, b.W[j]))
			out.Alpha = append(out.Alpha, b.Alpha[j])
		}
	}
	if !symbolic.IsZero(b.W0) {
		for i := range a.W {
			out.W = append(out.W, symbolic.MulOf(b.W0, a.W[i]))
			out.Alpha = append(out.Alpha, a.Alpha[i])
		}
	}
	return out
}

func (l lumper) visitPow(e, exp symbolic.Expr) (LumpedFactorization, error) {
	switch l.classify(e) {
	case allParams:
		return paramOnly(e), nil
	case noParams:
		return stateOnly(e), nil
	}
	if symbolic.IsConstant(exp) {
		return LumpedFactorization{}, newError(ErrUnsupportedMixedPower, e,
			"the power of a product of parameters and state variables is not factored")
	}
	return LumpedFactorization{}, newError(ErrNonSeparablePower, e,
		"the exponent couples parameters and state variables")
}

func (l lumper) visitOpaque(e symbolic.Expr) (LumpedFactorization, error) {
	switch l.classify(e) {
	case allParams:
		return paramOnly(e), nil
	case noParams:
		return stateOnly(e), nil
	}
	return LumpedFactorization{}, newError(ErrNonSeparableNonlinearTerm, e,
		e.Kind().String()+" depends on both parameters and state variables")
}

type dependence int

const (
	noParams dependence = iota
	allParams
	mixed
)

// classify reports how e depends on the parameters. A closed e counts as
// parameter free, so constants land in W0 and never in Alpha.
func (l lumper) classify(e symbolic.Expr) dependence {
	vars := symbolic.VariablesOf(e)
	switch {
	case vars.Intersect(l.params).Empty():
		return noParams
	case vars.IsSubsetOf(l.params):
		return allParams
	}
	return mixed
}

func paramOnly(e symbolic.Expr) LumpedFactorization {
	return LumpedFactorization{W: []symbolic.Expr{symbolic.N(1)}, Alpha: []symbolic.Expr{e}, W0: symbolic.N(0)}
}

func stateOnly(e symbolic.Expr) LumpedFactorization {
	return LumpedFactorization{W0: e}
}
