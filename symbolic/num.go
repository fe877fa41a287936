package symbolic

import (
	"fmt"
	"math"
	"math/big"
)

// ============================================================
// Num: exact rational number
// ============================================================

type Num struct{ val *big.Rat }

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }

func F(p, q int64) *Num {
	if q == 0 {
		panic("symdecomp: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// NFloat converts a finite float64 exactly. It panics on NaN or ±Inf.
func NFloat(f float64) *Num {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		panic(fmt.Sprintf("symdecomp: non-finite constant %v", f))
	}
	return &Num{val: new(big.Rat).SetFloat64(f)}
}

// NRat wraps a copy of r.
func NRat(r *big.Rat) *Num { return &Num{val: new(big.Rat).Set(r)} }

func (n *Num) Kind() Kind       { return KindConstant }
func (n *Num) Float64() float64 { f, _ := n.val.Float64(); return f }
func (n *Num) IsZero() bool     { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool      { return n.val.IsInt() && n.val.Num().IsInt64() && n.val.Num().Int64() == 1 }
func (n *Num) IsNegOne() bool   { return n.val.IsInt() && n.val.Num().IsInt64() && n.val.Num().Int64() == -1 }
func (n *Num) IsInteger() bool  { return n.val.IsInt() }
func (n *Num) IsNegative() bool { return n.val.Sign() < 0 }
func (n *Num) IsPositive() bool { return n.val.Sign() > 0 }
func (n *Num) Rat() *big.Rat    { return new(big.Rat).Set(n.val) }

// Int64 returns the value when it is an integer that fits in an int64.
func (n *Num) Int64() (int64, bool) {
	if !n.val.IsInt() || !n.val.Num().IsInt64() {
		return 0, false
	}
	return n.val.Num().Int64(), true
}

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (n *Num) LaTeX() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	sign := ""
	v := new(big.Rat).Set(n.val)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, v.Num().String(), v.Denom().String())
}

func (n *Num) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "num", "value": n.String()}
}

func numAdd(a, b *Num) *Num { return &Num{val: new(big.Rat).Add(a.val, b.val)} }
func numMul(a, b *Num) *Num { return &Num{val: new(big.Rat).Mul(a.val, b.val)} }
func numNeg(a *Num) *Num    { return &Num{val: new(big.Rat).Neg(a.val)} }
func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("symdecomp: division by zero")
	}
	return &Num{val: new(big.Rat).Inv(a.val)}
}
func numCmp(a, b *Num) int { return a.val.Cmp(b.val) }

// numPowInt raises a to an integer power exactly.
func numPowInt(a *Num, e int64) *Num {
	neg := e < 0
	if neg {
		e = -e
	}
	num := new(big.Int).Exp(a.val.Num(), big.NewInt(e), nil)
	den := new(big.Int).Exp(a.val.Denom(), big.NewInt(e), nil)
	r := &Num{val: new(big.Rat).SetFrac(num, den)}
	if neg {
		return numRecip(r)
	}
	return r
}

// numPow folds base^exp to a constant when the result is real and finite.
// Integer exponents are exact; others go through float64.
func numPow(base, exp *Num) (*Num, bool) {
	if e, ok := exp.Int64(); ok {
		if base.IsZero() && e < 0 {
			return nil, false
		}
		return numPowInt(base, e), true
	}
	if base.IsNegative() {
		return nil, false
	}
	if r, ok := exactRationalRoot(base, exp); ok {
		return r, true
	}
	f := math.Pow(base.Float64(), exp.Float64())
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return NFloat(f), true
}

// exactRationalRoot handles base^(p/q) when both numerator and denominator
// of base are perfect q-th powers, e.g. (4/9)^(1/2) = 2/3.
func exactRationalRoot(base, exp *Num) (*Num, bool) {
	q := exp.val.Denom()
	if !q.IsInt64() || q.Int64() > 8 {
		return nil, false
	}
	root := func(x *big.Int) (*big.Int, bool) {
		if !x.IsInt64() || x.Sign() < 0 {
			return nil, false
		}
		r := big.NewInt(int64(math.Round(math.Pow(float64(x.Int64()), 1/float64(q.Int64())))))
		if new(big.Int).Exp(r, q, nil).Cmp(x) != 0 {
			return nil, false
		}
		return r, true
	}
	rn, ok1 := root(base.val.Num())
	rd, ok2 := root(base.val.Denom())
	if !ok1 || !ok2 {
		return nil, false
	}
	p := exp.val.Num()
	if !p.IsInt64() {
		return nil, false
	}
	return numPowInt(&Num{val: new(big.Rat).SetFrac(rn, rd)}, p.Int64()), true
}
