package symbolic

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrNotPolynomial is returned when an expression cannot be written as a
// polynomial in the requested indeterminates.
var ErrNotPolynomial = errors.New("symbolic: expression is not a polynomial")

// ============================================================
// Monomial
// ============================================================

// VarPower is one variable raised to a positive integer power.
type VarPower struct {
	Var   *Variable
	Power int
}

// Monomial is a product of variable powers, sorted by variable id. The
// empty monomial is the constant 1.
type Monomial struct {
	powers []VarPower
}

// MonomialOf returns v^power; a non-positive power gives the constant
// monomial.
func MonomialOf(v *Variable, power int) Monomial {
	if power <= 0 {
		return Monomial{}
	}
	return Monomial{powers: []VarPower{{Var: v, Power: power}}}
}

func (m Monomial) TotalDegree() int {
	d := 0
	for _, p := range m.powers {
		d += p.Power
	}
	return d
}

func (m Monomial) Powers() []VarPower { return append([]VarPower(nil), m.powers...) }

// Key is a canonical string usable as a map key.
func (m Monomial) Key() string {
	var sb strings.Builder
	for i, p := range m.powers {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(strconv.FormatUint(p.Var.id, 10))
		sb.WriteByte('^')
		sb.WriteString(strconv.Itoa(p.Power))
	}
	return sb.String()
}

func (m Monomial) Mul(o Monomial) Monomial {
	out := make([]VarPower, 0, len(m.powers)+len(o.powers))
	i, j := 0, 0
	for i < len(m.powers) && j < len(o.powers) {
		a, b := m.powers[i], o.powers[j]
		switch {
		case a.Var.id < b.Var.id:
			out = append(out, a)
			i++
		case a.Var.id > b.Var.id:
			out = append(out, b)
			j++
		default:
			out = append(out, VarPower{Var: a.Var, Power: a.Power + b.Power})
			i++
			j++
		}
	}
	out = append(out, m.powers[i:]...)
	out = append(out, o.powers[j:]...)
	return Monomial{powers: out}
}

func (m Monomial) ToExpr() Expr {
	factors := make([]Expr, len(m.powers))
	for i, p := range m.powers {
		factors[i] = PowOf(p.Var, N(int64(p.Power)))
	}
	return MulOf(factors...)
}

func (m Monomial) String() string {
	if len(m.powers) == 0 {
		return "1"
	}
	return m.ToExpr().String()
}

// compareMonomials orders by total degree, then by the power lists.
func compareMonomials(a, b Monomial) int {
	if c := cmpInt(a.TotalDegree(), b.TotalDegree()); c != 0 {
		return c
	}
	for i := 0; i < len(a.powers) && i < len(b.powers); i++ {
		if c := cmpUint(a.powers[i].Var.id, b.powers[i].Var.id); c != 0 {
			return c
		}
		if c := cmpInt(b.powers[i].Power, a.powers[i].Power); c != 0 {
			return c
		}
	}
	return cmpInt(len(a.powers), len(b.powers))
}

// ============================================================
// Polynomial
// ============================================================

// PolynomialTerm is one monomial with its coefficient.
type PolynomialTerm struct {
	Monomial    Monomial
	Coefficient Expr
}

// Polynomial maps monomials over a set of indeterminates to coefficient
// expressions. Coefficients may mention variables outside the
// indeterminates. Zero coefficients are never stored.
type Polynomial struct {
	indeterminates Variables
	terms          map[string]PolynomialTerm
}

// NewPolynomial treats every free variable of e as an indeterminate.
func NewPolynomial(e Expr) (*Polynomial, error) {
	return NewPolynomialIn(e, VariablesOf(e))
}

// NewPolynomialIn builds the polynomial of e in the given indeterminates.
// Sub-expressions free of the indeterminates become coefficients, so
// sin(a)*x is a polynomial in {x}.
func NewPolynomialIn(e Expr, indeterminates Variables) (*Polynomial, error) {
	p, err := toPolynomial(Expand(e), indeterminates)
	if err != nil {
		return nil, fmt.Errorf("%w: %s in %s", err, e, indeterminates)
	}
	return p, nil
}

func newPolynomial(indeterminates Variables) *Polynomial {
	return &Polynomial{indeterminates: indeterminates, terms: map[string]PolynomialTerm{}}
}

func constantPolynomial(c Expr, indeterminates Variables) *Polynomial {
	p := newPolynomial(indeterminates)
	p.addTerm(Monomial{}, c)
	return p
}

func toPolynomial(e Expr, indet Variables) (*Polynomial, error) {
	switch v := e.(type) {
	case *Num:
		return constantPolynomial(v, indet), nil
	case *Variable:
		if !indet.Contains(v) {
			return constantPolynomial(v, indet), nil
		}
		p := newPolynomial(indet)
		p.addTerm(MonomialOf(v, 1), N(1))
		return p, nil
	case *Add:
		p := constantPolynomial(v.constant, indet)
		for _, t := range v.terms {
			q, err := toPolynomial(t.Expr, indet)
			if err != nil {
				return nil, err
			}
			p.addScaled(q, t.Coeff)
		}
		return p, nil
	case *Mul:
		p := constantPolynomial(v.constant, indet)
		for _, f := range v.factors {
			q, err := powerToPolynomial(f.Base, f.Exp, indet)
			if err != nil {
				return nil, err
			}
			p = p.mul(q)
		}
		return p, nil
	case *Pow:
		return powerToPolynomial(v.base, v.exp, indet)
	}
	if VariablesOf(e).Intersect(indet).Empty() {
		return constantPolynomial(e, indet), nil
	}
	return nil, ErrNotPolynomial
}

func powerToPolynomial(base, exp Expr, indet Variables) (*Polynomial, error) {
	if VariablesOf(base).Union(VariablesOf(exp)).Intersect(indet).Empty() {
		return constantPolynomial(powFromParts(base, exp), indet), nil
	}
	en, ok := exp.(*Num)
	if !ok {
		return nil, ErrNotPolynomial
	}
	n, ok := en.Int64()
	if !ok || n < 0 {
		return nil, ErrNotPolynomial
	}
	b, err := toPolynomial(base, indet)
	if err != nil {
		return nil, err
	}
	result := constantPolynomial(N(1), indet)
	for i := int64(0); i < n; i++ {
		result = result.mul(b)
	}
	return result, nil
}

func (p *Polynomial) addTerm(m Monomial, c Expr) {
	key := m.Key()
	if old, ok := p.terms[key]; ok {
		c = AddOf(old.Coefficient, c)
	}
	if IsZero(c) {
		delete(p.terms, key)
		return
	}
	p.terms[key] = PolynomialTerm{Monomial: m, Coefficient: c}
}

func (p *Polynomial) addScaled(q *Polynomial, c *Num) {
	for _, t := range q.terms {
		p.addTerm(t.Monomial, MulOf(c, t.Coefficient))
	}
}

func (p *Polynomial) mul(q *Polynomial) *Polynomial {
	out := newPolynomial(p.indeterminates)
	for _, a := range p.terms {
		for _, b := range q.terms {
			out.addTerm(a.Monomial.Mul(b.Monomial), Expand(MulOf(a.Coefficient, b.Coefficient)))
		}
	}
	return out
}

func (p *Polynomial) Indeterminates() Variables { return p.indeterminates }
func (p *Polynomial) Len() int                  { return len(p.terms) }

// TotalDegree is the largest monomial degree present; the zero polynomial
// has degree 0.
func (p *Polynomial) TotalDegree() int {
	d := 0
	for _, t := range p.terms {
		if td := t.Monomial.TotalDegree(); td > d {
			d = td
		}
	}
	return d
}

// Coefficient returns the coefficient of m and whether m is present.
func (p *Polynomial) Coefficient(m Monomial) (Expr, bool) {
	t, ok := p.terms[m.Key()]
	if !ok {
		return N(0), false
	}
	return t.Coefficient, true
}

// Terms lists the terms ordered by degree, then by variable id.
func (p *Polynomial) Terms() []PolynomialTerm {
	out := make([]PolynomialTerm, 0, len(p.terms))
	for _, t := range p.terms {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return compareMonomials(out[i].Monomial, out[j].Monomial) < 0 })
	return out
}

func (p *Polynomial) ToExpr() Expr {
	parts := make([]Expr, 0, len(p.terms))
	for _, t := range p.Terms() {
		parts = append(parts, MulOf(t.Coefficient, t.Monomial.ToExpr()))
	}
	return AddOf(parts...)
}

func (p *Polynomial) String() string { return p.ToExpr().String() }
