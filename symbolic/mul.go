package symbolic

import (
	"sort"
	"strings"
)

// ============================================================
// Mul: c · ∏ baseᵢ^expᵢ
// ============================================================

// MulFactor is one baseᵢ^expᵢ factor; Exp is never zero.
type MulFactor struct {
	Base Expr
	Exp  Expr
}

// Mul is a product in canonical form: factors sorted by Compare on Base,
// each distinct base at most once. A constant other than 1 never multiplies
// a lone sum; the constant is distributed instead.
type Mul struct {
	constant *Num
	factors  []MulFactor
}

func MulOf(factors ...Expr) Expr {
	b := newProdBuilder(N(1))
	for _, f := range factors {
		b.mul(f)
	}
	return b.build()
}

func (m *Mul) Kind() Kind           { return KindMul }
func (m *Mul) Constant() *Num       { return m.constant }
func (m *Mul) Factors() []MulFactor { return append([]MulFactor(nil), m.factors...) }

func (m *Mul) String() string {
	parts := make([]string, len(m.factors))
	for i, f := range m.factors {
		parts[i] = factorString(f.Base, f.Exp)
	}
	body := strings.Join(parts, "*")
	switch {
	case m.constant.IsOne():
		return body
	case m.constant.IsNegOne():
		return "-" + body
	}
	return parenthesize(m.constant) + "*" + body
}

func factorString(base, exp Expr) string {
	b := base.String()
	switch v := base.(type) {
	case *Add, *Mul, *Div, *Pow:
		b = "(" + b + ")"
	case *Num:
		b = parenthesize(v)
	}
	if IsOne(exp) {
		return b
	}
	return b + "^" + parenthesize(exp)
}

func (m *Mul) LaTeX() string {
	parts := make([]string, len(m.factors))
	for i, f := range m.factors {
		b := f.Base.LaTeX()
		switch f.Base.(type) {
		case *Add, *Mul, *Div, *Pow:
			b = "\\left(" + b + "\\right)"
		}
		if !IsOne(f.Exp) {
			b += "^{" + f.Exp.LaTeX() + "}"
		}
		parts[i] = b
	}
	body := strings.Join(parts, " ")
	switch {
	case m.constant.IsOne():
		return body
	case m.constant.IsNegOne():
		return "-" + body
	}
	return m.constant.LaTeX() + " " + body
}

func (m *Mul) toJSON() map[string]interface{} {
	fs := make([]map[string]interface{}, 0, len(m.factors)+1)
	if !m.constant.IsOne() {
		fs = append(fs, m.constant.toJSON())
	}
	for _, f := range m.factors {
		fs = append(fs, powFromParts(f.Base, f.Exp).toJSON())
	}
	return map[string]interface{}{"type": "mul", "factors": fs}
}

// prodBuilder accumulates c · ∏ baseᵢ^expᵢ, merging repeated bases by
// adding exponents.
type prodBuilder struct {
	constant *Num
	factors  []MulFactor
}

func newProdBuilder(c *Num) *prodBuilder { return &prodBuilder{constant: c} }

func (b *prodBuilder) mul(e Expr) {
	switch v := e.(type) {
	case *Num:
		b.constant = numMul(b.constant, v)
	case *Mul:
		b.constant = numMul(b.constant, v.constant)
		for _, f := range v.factors {
			b.addFactor(f.Base, f.Exp)
		}
	case *Pow:
		b.addFactor(v.base, v.exp)
	default:
		b.addFactor(e, N(1))
	}
}

func (b *prodBuilder) addFactor(base, exp Expr) {
	i := sort.Search(len(b.factors), func(i int) bool { return Compare(b.factors[i].Base, base) >= 0 })
	if i < len(b.factors) && Compare(b.factors[i].Base, base) == 0 {
		exp = AddOf(b.factors[i].Exp, exp)
		b.factors = append(b.factors[:i], b.factors[i+1:]...)
		if IsZero(exp) {
			return
		}
	}
	if bn, ok := base.(*Num); ok {
		if en, ok := exp.(*Num); ok {
			if r, ok := numPow(bn, en); ok {
				b.constant = numMul(b.constant, r)
				return
			}
		}
	}
	b.factors = append(b.factors, MulFactor{})
	copy(b.factors[i+1:], b.factors[i:])
	b.factors[i] = MulFactor{Base: base, Exp: exp}
}

func (b *prodBuilder) build() Expr {
	if b.constant.IsZero() {
		return N(0)
	}
	if len(b.factors) == 0 {
		return b.constant
	}
	if len(b.factors) == 1 {
		p := powFromParts(b.factors[0].Base, b.factors[0].Exp)
		if b.constant.IsOne() {
			return p
		}
		if a, ok := p.(*Add); ok {
			s := newSumBuilder()
			s.add(b.constant, a)
			return s.build()
		}
	}
	return &Mul{constant: b.constant, factors: b.factors}
}

// mulFromParts rebuilds c · ∏ factors from factors already in canonical
// order.
func mulFromParts(c *Num, factors []MulFactor) Expr {
	b := &prodBuilder{constant: c, factors: append([]MulFactor(nil), factors...)}
	return b.build()
}

func powFromParts(base, exp Expr) Expr {
	if IsOne(exp) {
		return base
	}
	return &Pow{base: base, exp: exp}
}
