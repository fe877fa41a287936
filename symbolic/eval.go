package symbolic

import (
	"fmt"
	"math"
)

// ============================================================
// Substitution and numeric evaluation
// ============================================================

// Subs replaces variables by expressions and re-simplifies through the
// constructors. Variables absent from repl are kept.
func Subs(e Expr, repl map[*Variable]Expr) Expr {
	if len(repl) == 0 {
		return e
	}
	return mapLeaves(e, func(v *Variable) Expr {
		if r, ok := repl[v]; ok {
			return r
		}
		return v
	})
}

// mapLeaves rebuilds e bottom-up with every variable replaced by fn(v).
func mapLeaves(e Expr, fn func(*Variable) Expr) Expr {
	rec := func(x Expr) Expr { return mapLeaves(x, fn) }
	switch v := e.(type) {
	case *Num:
		return v
	case *Variable:
		return fn(v)
	case *Add:
		parts := make([]Expr, 0, len(v.terms)+1)
		parts = append(parts, v.constant)
		for _, t := range v.terms {
			parts = append(parts, MulOf(t.Coeff, rec(t.Expr)))
		}
		return AddOf(parts...)
	case *Mul:
		parts := make([]Expr, 0, len(v.factors)+1)
		parts = append(parts, v.constant)
		for _, f := range v.factors {
			parts = append(parts, PowOf(rec(f.Base), rec(f.Exp)))
		}
		return MulOf(parts...)
	case *Pow:
		return PowOf(rec(v.base), rec(v.exp))
	case *Div:
		return DivOf(rec(v.num), rec(v.den))
	case *Func:
		args := make([]Expr, len(v.args))
		for i, a := range v.args {
			args[i] = rec(a)
		}
		return rebuildFunc(v, args)
	case *IfThenElse:
		cond := Condition{Op: v.cond.Op, Lhs: rec(v.cond.Lhs), Rhs: rec(v.cond.Rhs)}
		return IfThenElseOf(cond, rec(v.then), rec(v.els))
	}
	panic(fmt.Sprintf("symdecomp: unknown expression type %T", e))
}

// Evaluate computes e in float64 arithmetic. Every free variable of e must
// be bound in env; uninterpreted functions cannot be evaluated.
func Evaluate(e Expr, env map[*Variable]float64) (float64, error) {
	switch v := e.(type) {
	case *Num:
		return v.Float64(), nil
	case *Variable:
		x, ok := env[v]
		if !ok {
			return 0, fmt.Errorf("symbolic: variable %s is not bound", v.name)
		}
		return x, nil
	case *Add:
		sum := v.constant.Float64()
		for _, t := range v.terms {
			x, err := Evaluate(t.Expr, env)
			if err != nil {
				return 0, err
			}
			sum += t.Coeff.Float64() * x
		}
		return sum, nil
	case *Mul:
		prod := v.constant.Float64()
		for _, f := range v.factors {
			x, err := evaluatePow(f.Base, f.Exp, env)
			if err != nil {
				return 0, err
			}
			prod *= x
		}
		return prod, nil
	case *Pow:
		return evaluatePow(v.base, v.exp, env)
	case *Div:
		n, err := Evaluate(v.num, env)
		if err != nil {
			return 0, err
		}
		d, err := Evaluate(v.den, env)
		if err != nil {
			return 0, err
		}
		return n / d, nil
	case *Func:
		args := make([]float64, len(v.args))
		for i, a := range v.args {
			x, err := Evaluate(a, env)
			if err != nil {
				return 0, err
			}
			args[i] = x
		}
		switch v.kind {
		case KindAtan2:
			return math.Atan2(args[0], args[1]), nil
		case KindMin:
			return math.Min(args[0], args[1]), nil
		case KindMax:
			return math.Max(args[0], args[1]), nil
		case KindUninterpreted:
			return 0, fmt.Errorf("symbolic: cannot evaluate uninterpreted function %s", v.name)
		}
		return unaryFloat[v.kind](args[0]), nil
	case *IfThenElse:
		l, err := Evaluate(v.cond.Lhs, env)
		if err != nil {
			return 0, err
		}
		r, err := Evaluate(v.cond.Rhs, env)
		if err != nil {
			return 0, err
		}
		if holds(v.cond.Op, l, r) {
			return Evaluate(v.then, env)
		}
		return Evaluate(v.els, env)
	}
	return 0, fmt.Errorf("symbolic: cannot evaluate %T", e)
}

func evaluatePow(base, exp Expr, env map[*Variable]float64) (float64, error) {
	b, err := Evaluate(base, env)
	if err != nil {
		return 0, err
	}
	x, err := Evaluate(exp, env)
	if err != nil {
		return 0, err
	}
	return math.Pow(b, x), nil
}

func holds(op RelOp, l, r float64) bool {
	switch op {
	case OpEq:
		return l == r
	case OpNeq:
		return l != r
	case OpLt:
		return l < r
	case OpLeq:
		return l <= r
	case OpGt:
		return l > r
	}
	return l >= r
}
