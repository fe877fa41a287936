package symbolic

// ============================================================
// Pow: base^exponent
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr {
	en, expIsNum := exp.(*Num)
	if expIsNum && en.IsZero() {
		return N(1)
	}
	if expIsNum && en.IsOne() {
		return base
	}
	if bn, ok := base.(*Num); ok {
		if bn.IsOne() {
			return N(1)
		}
		if expIsNum {
			if r, ok := numPow(bn, en); ok {
				return r
			}
		}
		return &Pow{base: base, exp: exp}
	}
	if expIsNum && en.IsInteger() {
		switch b := base.(type) {
		case *Pow:
			return PowOf(b.base, MulOf(b.exp, en))
		case *Mul:
			n, ok := en.Int64()
			if !ok {
				break
			}
			pb := newProdBuilder(numPowInt(b.constant, n))
			for _, f := range b.factors {
				pb.addFactor(f.Base, MulOf(f.Exp, en))
			}
			return pb.build()
		}
	}
	return &Pow{base: base, exp: exp}
}

func (p *Pow) Kind() Kind    { return KindPow }
func (p *Pow) Base() Expr    { return p.base }
func (p *Pow) ExpExpr() Expr { return p.exp }

func (p *Pow) String() string { return factorString(p.base, p.exp) }

func (p *Pow) LaTeX() string {
	b := p.base.LaTeX()
	switch p.base.(type) {
	case *Add, *Mul, *Div, *Pow:
		b = "\\left(" + b + "\\right)"
	}
	return b + "^{" + p.exp.LaTeX() + "}"
}

func (p *Pow) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "pow", "base": p.base.toJSON(), "exp": p.exp.toJSON()}
}

// ============================================================
// Div: numerator / denominator
// ============================================================

// Div keeps a quotient with a non-constant denominator as its own node.
// Division by a constant is folded into a product.
type Div struct{ num, den Expr }

func DivOf(num, den Expr) Expr {
	if dn, ok := den.(*Num); ok {
		return MulOf(num, numRecip(dn))
	}
	if IsZero(num) {
		return N(0)
	}
	if Equal(num, den) {
		return N(1)
	}
	return &Div{num: num, den: den}
}

func (d *Div) Kind() Kind        { return KindDiv }
func (d *Div) Numerator() Expr   { return d.num }
func (d *Div) Denominator() Expr { return d.den }

func (d *Div) String() string {
	return parenthesize(d.num) + " / " + parenthesize(d.den)
}

func (d *Div) LaTeX() string {
	return "\\frac{" + d.num.LaTeX() + "}{" + d.den.LaTeX() + "}"
}

func (d *Div) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "div", "num": d.num.toJSON(), "den": d.den.toJSON()}
}
