package symbolic

// ============================================================
// Expand
// ============================================================

// Expand distributes products over sums, expands non-negative integer
// powers of sums, splits a sum numerator over its denominator and recurses
// into function arguments. The result is a sum of products none of which
// has a sum as a factor raised to a positive integer power. Expand is
// idempotent.
func Expand(e Expr) Expr {
	switch v := e.(type) {
	case *Num, *Variable:
		return e
	case *Add:
		parts := make([]Expr, 0, len(v.terms)+1)
		parts = append(parts, v.constant)
		for _, t := range v.terms {
			parts = append(parts, MulOf(t.Coeff, Expand(t.Expr)))
		}
		return AddOf(parts...)
	case *Mul:
		result := Expr(v.constant)
		for _, f := range v.factors {
			result = distribute(result, expandPow(Expand(f.Base), Expand(f.Exp)))
		}
		return result
	case *Pow:
		return expandPow(Expand(v.base), Expand(v.exp))
	case *Div:
		num, den := Expand(v.num), Expand(v.den)
		a, ok := num.(*Add)
		if !ok {
			return DivOf(num, den)
		}
		parts := []Expr{DivOf(a.constant, den)}
		for _, t := range a.terms {
			parts = append(parts, DivOf(scaleTerm(t.Coeff, t.Expr), den))
		}
		return AddOf(parts...)
	case *Func:
		args := make([]Expr, len(v.args))
		for i, a := range v.args {
			args[i] = Expand(a)
		}
		return rebuildFunc(v, args)
	case *IfThenElse:
		cond := Condition{Op: v.cond.Op, Lhs: Expand(v.cond.Lhs), Rhs: Expand(v.cond.Rhs)}
		return IfThenElseOf(cond, Expand(v.then), Expand(v.els))
	}
	return e
}

// expandPow expands base^exp for an already expanded base and exponent.
func expandPow(base, exp Expr) Expr {
	if en, ok := exp.(*Num); ok {
		if n, ok := en.Int64(); ok && n > 1 {
			if _, isAdd := base.(*Add); isAdd {
				result := base
				for i := int64(1); i < n; i++ {
					result = distribute(result, base)
				}
				return result
			}
		}
	}
	return settle(PowOf(base, exp))
}

// distribute multiplies two expanded expressions, distributing over sums.
func distribute(a, b Expr) Expr {
	if sa, ok := a.(*Add); ok {
		parts := make([]Expr, 0, len(sa.terms)+1)
		parts = append(parts, distribute(sa.constant, b))
		for _, t := range sa.terms {
			parts = append(parts, distribute(scaleTerm(t.Coeff, t.Expr), b))
		}
		return AddOf(parts...)
	}
	if sb, ok := b.(*Add); ok {
		return distribute(sb, a)
	}
	return settle(MulOf(a, b))
}

// settle re-expands a product in which merging exponents turned a
// fractional power of a sum into a positive integer power.
func settle(e Expr) Expr {
	m, ok := e.(*Mul)
	if !ok {
		return e
	}
	for _, f := range m.factors {
		if _, isAdd := f.Base.(*Add); !isAdd {
			continue
		}
		if en, ok := f.Exp.(*Num); ok {
			if n, ok := en.Int64(); ok && n > 0 {
				return Expand(e)
			}
		}
	}
	return e
}

// IsPolynomial reports whether e is built only from constants, variables,
// sums, and products and powers with non-negative integer exponents.
func IsPolynomial(e Expr) bool {
	switch v := e.(type) {
	case *Num, *Variable:
		return true
	case *Add:
		for _, t := range v.terms {
			if !IsPolynomial(t.Expr) {
				return false
			}
		}
		return true
	case *Mul:
		for _, f := range v.factors {
			if !isPolynomialPower(f.Base, f.Exp) {
				return false
			}
		}
		return true
	case *Pow:
		return isPolynomialPower(v.base, v.exp)
	}
	return false
}

func isPolynomialPower(base, exp Expr) bool {
	en, ok := exp.(*Num)
	if !ok {
		return false
	}
	n, ok := en.Int64()
	return ok && n >= 0 && IsPolynomial(base)
}
