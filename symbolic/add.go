package symbolic

import (
	"sort"
	"strings"
)

// ============================================================
// Add: c₀ + Σ cᵢ·eᵢ
// ============================================================

// AddTerm is one cᵢ·eᵢ summand. Coeff is never zero and Expr is never a
// constant, a sum, or a product with a constant other than 1.
type AddTerm struct {
	Coeff *Num
	Expr  Expr
}

// Add is a sum in canonical form: terms sorted by Compare on Expr, each
// distinct Expr at most once.
type Add struct {
	constant *Num
	terms    []AddTerm
}

func AddOf(terms ...Expr) Expr {
	b := newSumBuilder()
	for _, t := range terms {
		b.add(N(1), t)
	}
	return b.build()
}

// SubOf returns a - b.
func SubOf(a, b Expr) Expr { return AddOf(a, Neg(b)) }

// Neg returns -e.
func Neg(e Expr) Expr { return MulOf(N(-1), e) }

func (a *Add) Kind() Kind       { return KindAdd }
func (a *Add) Constant() *Num   { return a.constant }
func (a *Add) Terms() []AddTerm { return append([]AddTerm(nil), a.terms...) }

func (a *Add) String() string {
	var sb strings.Builder
	for i, t := range a.terms {
		writeSignedTerm(&sb, i == 0, t.Coeff, t.Expr.String())
	}
	if !a.constant.IsZero() {
		writeSignedTerm(&sb, false, a.constant, "")
	}
	return sb.String()
}

func (a *Add) LaTeX() string {
	var sb strings.Builder
	for i, t := range a.terms {
		body := t.Expr.LaTeX()
		if _, ok := t.Expr.(*Div); ok {
			body = "\\left(" + body + "\\right)"
		}
		writeSignedTerm(&sb, i == 0, t.Coeff, body)
	}
	if !a.constant.IsZero() {
		writeSignedTerm(&sb, false, a.constant, "")
	}
	return sb.String()
}

// writeSignedTerm writes c·body; an empty body writes the bare constant.
func writeSignedTerm(sb *strings.Builder, first bool, c *Num, body string) {
	abs := c
	if c.IsNegative() {
		abs = numNeg(c)
	}
	switch {
	case first && c.IsNegative():
		sb.WriteString("-")
	case !first && c.IsNegative():
		sb.WriteString(" - ")
	case !first:
		sb.WriteString(" + ")
	}
	switch {
	case body == "":
		sb.WriteString(abs.String())
	case abs.IsOne():
		sb.WriteString(body)
	default:
		sb.WriteString(abs.String())
		sb.WriteString("*")
		sb.WriteString(body)
	}
}

func (a *Add) toJSON() map[string]interface{} {
	ts := make([]map[string]interface{}, 0, len(a.terms)+1)
	for _, t := range a.terms {
		ts = append(ts, scaleTerm(t.Coeff, t.Expr).toJSON())
	}
	if !a.constant.IsZero() {
		ts = append(ts, a.constant.toJSON())
	}
	return map[string]interface{}{"type": "add", "terms": ts}
}

// sumBuilder accumulates c₀ + Σ cᵢ·eᵢ, merging repeated eᵢ.
type sumBuilder struct {
	constant *Num
	terms    []AddTerm
}

func newSumBuilder() *sumBuilder { return &sumBuilder{constant: N(0)} }

func (b *sumBuilder) add(c *Num, e Expr) {
	if c.IsZero() {
		return
	}
	switch v := e.(type) {
	case *Num:
		b.constant = numAdd(b.constant, numMul(c, v))
	case *Add:
		b.constant = numAdd(b.constant, numMul(c, v.constant))
		for _, t := range v.terms {
			b.addTerm(numMul(c, t.Coeff), t.Expr)
		}
	case *Mul:
		if v.constant.IsOne() {
			b.addTerm(c, v)
			return
		}
		b.addTerm(numMul(c, v.constant), mulFromParts(N(1), v.factors))
	default:
		b.addTerm(c, e)
	}
}

func (b *sumBuilder) addTerm(c *Num, e Expr) {
	i := sort.Search(len(b.terms), func(i int) bool { return Compare(b.terms[i].Expr, e) >= 0 })
	if i < len(b.terms) && Compare(b.terms[i].Expr, e) == 0 {
		sum := numAdd(b.terms[i].Coeff, c)
		if sum.IsZero() {
			b.terms = append(b.terms[:i], b.terms[i+1:]...)
			return
		}
		b.terms[i].Coeff = sum
		return
	}
	b.terms = append(b.terms, AddTerm{})
	copy(b.terms[i+1:], b.terms[i:])
	b.terms[i] = AddTerm{Coeff: c, Expr: e}
}

func (b *sumBuilder) build() Expr {
	switch {
	case len(b.terms) == 0:
		return b.constant
	case len(b.terms) == 1 && b.constant.IsZero():
		t := b.terms[0]
		if t.Coeff.IsOne() {
			return t.Expr
		}
		return scaleTerm(t.Coeff, t.Expr)
	}
	return &Add{constant: b.constant, terms: b.terms}
}

// scaleTerm builds c·e for an AddTerm expression without re-entering the
// sum constructor.
func scaleTerm(c *Num, e Expr) Expr {
	if c.IsOne() {
		return e
	}
	switch v := e.(type) {
	case *Mul:
		return &Mul{constant: c, factors: v.factors}
	case *Pow:
		return &Mul{constant: c, factors: []MulFactor{{Base: v.base, Exp: v.exp}}}
	}
	return &Mul{constant: c, factors: []MulFactor{{Base: e, Exp: N(1)}}}
}
