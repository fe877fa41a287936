package symbolic

import (
	"math"
	"math/big"
	"strings"
)

// ============================================================
// Func: named function applications
// ============================================================

// Func is a transcendental, piecewise or uninterpreted application. The
// kind decides the arity: one argument for the unary kinds, two for atan2,
// min and max, any number for uninterpreted functions.
type Func struct {
	kind Kind
	name string
	args []Expr
}

var unaryFloat = map[Kind]func(float64) float64{
	KindAbs:   math.Abs,
	KindLog:   math.Log,
	KindExp:   math.Exp,
	KindSqrt:  math.Sqrt,
	KindSin:   math.Sin,
	KindCos:   math.Cos,
	KindTan:   math.Tan,
	KindAsin:  math.Asin,
	KindAcos:  math.Acos,
	KindAtan:  math.Atan,
	KindSinh:  math.Sinh,
	KindCosh:  math.Cosh,
	KindTanh:  math.Tanh,
	KindCeil:  math.Ceil,
	KindFloor: math.Floor,
}

func AbsOf(arg Expr) Expr   { return unaryOf(KindAbs, arg) }
func LogOf(arg Expr) Expr   { return unaryOf(KindLog, arg) }
func ExpOf(arg Expr) Expr   { return unaryOf(KindExp, arg) }
func SqrtOf(arg Expr) Expr  { return unaryOf(KindSqrt, arg) }
func SinOf(arg Expr) Expr   { return unaryOf(KindSin, arg) }
func CosOf(arg Expr) Expr   { return unaryOf(KindCos, arg) }
func TanOf(arg Expr) Expr   { return unaryOf(KindTan, arg) }
func AsinOf(arg Expr) Expr  { return unaryOf(KindAsin, arg) }
func AcosOf(arg Expr) Expr  { return unaryOf(KindAcos, arg) }
func AtanOf(arg Expr) Expr  { return unaryOf(KindAtan, arg) }
func SinhOf(arg Expr) Expr  { return unaryOf(KindSinh, arg) }
func CoshOf(arg Expr) Expr  { return unaryOf(KindCosh, arg) }
func TanhOf(arg Expr) Expr  { return unaryOf(KindTanh, arg) }
func CeilOf(arg Expr) Expr  { return unaryOf(KindCeil, arg) }
func FloorOf(arg Expr) Expr { return unaryOf(KindFloor, arg) }

func unaryOf(kind Kind, arg Expr) Expr {
	if n, ok := arg.(*Num); ok {
		if r, ok := foldUnary(kind, n); ok {
			return r
		}
	}
	if kind == KindAbs {
		if m, ok := arg.(*Mul); ok && m.constant.IsNegative() {
			return unaryOf(KindAbs, Neg(m))
		}
		if inner, ok := arg.(*Func); ok && inner.kind == KindAbs {
			return inner
		}
	}
	if kind == KindLog {
		if inner, ok := arg.(*Func); ok && inner.kind == KindExp {
			return inner.args[0]
		}
	}
	return &Func{kind: kind, name: kind.String(), args: []Expr{arg}}
}

func foldUnary(kind Kind, n *Num) (Expr, bool) {
	switch kind {
	case KindAbs:
		if n.IsNegative() {
			return numNeg(n), true
		}
		return n, true
	case KindCeil, KindFloor:
		q, r := new(big.Int).QuoRem(n.val.Num(), n.val.Denom(), new(big.Int))
		if kind == KindCeil && r.Sign() > 0 {
			q.Add(q, big.NewInt(1))
		}
		if kind == KindFloor && r.Sign() < 0 {
			q.Sub(q, big.NewInt(1))
		}
		return &Num{val: new(big.Rat).SetInt(q)}, true
	case KindSqrt:
		if n.IsNegative() {
			return nil, false
		}
		if r, ok := exactRationalRoot(n, F(1, 2)); ok {
			return r, true
		}
	case KindExp, KindCos, KindCosh:
		if n.IsZero() {
			return N(1), true
		}
	case KindLog:
		if n.IsOne() {
			return N(0), true
		}
	default:
		if n.IsZero() {
			return N(0), true
		}
	}
	f := unaryFloat[kind](n.Float64())
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return NFloat(f), true
}

func Atan2Of(y, x Expr) Expr {
	yn, ok1 := y.(*Num)
	xn, ok2 := x.(*Num)
	if ok1 && ok2 {
		return NFloat(math.Atan2(yn.Float64(), xn.Float64()))
	}
	return &Func{kind: KindAtan2, name: KindAtan2.String(), args: []Expr{y, x}}
}

func MinOf(a, b Expr) Expr { return extremumOf(KindMin, a, b) }
func MaxOf(a, b Expr) Expr { return extremumOf(KindMax, a, b) }

func extremumOf(kind Kind, a, b Expr) Expr {
	if Equal(a, b) {
		return a
	}
	an, ok1 := a.(*Num)
	bn, ok2 := b.(*Num)
	if ok1 && ok2 {
		if (numCmp(an, bn) < 0) == (kind == KindMin) {
			return an
		}
		return bn
	}
	return &Func{kind: kind, name: kind.String(), args: []Expr{a, b}}
}

// UninterpretedOf applies an opaque named function. It is never folded.
func UninterpretedOf(name string, args ...Expr) Expr {
	return &Func{kind: KindUninterpreted, name: name, args: append([]Expr(nil), args...)}
}

// rebuildFunc applies f's function to new arguments, re-running folding.
func rebuildFunc(f *Func, args []Expr) Expr {
	switch f.kind {
	case KindAtan2:
		return Atan2Of(args[0], args[1])
	case KindMin, KindMax:
		return extremumOf(f.kind, args[0], args[1])
	case KindUninterpreted:
		return UninterpretedOf(f.name, args...)
	}
	return unaryOf(f.kind, args[0])
}

func (f *Func) Kind() Kind       { return f.kind }
func (f *Func) FuncName() string { return f.name }
func (f *Func) Args() []Expr     { return append([]Expr(nil), f.args...) }
func (f *Func) Arg() Expr        { return f.args[0] }

func (f *Func) String() string {
	parts := make([]string, len(f.args))
	for i, a := range f.args {
		parts[i] = a.String()
	}
	return f.name + "(" + strings.Join(parts, ", ") + ")"
}

func (f *Func) LaTeX() string {
	parts := make([]string, len(f.args))
	for i, a := range f.args {
		parts[i] = a.LaTeX()
	}
	inner := strings.Join(parts, ", ")
	switch f.kind {
	case KindSin, KindCos, KindTan, KindExp, KindLog, KindSinh, KindCosh, KindTanh, KindMin, KindMax:
		return "\\" + f.name + "\\left(" + inner + "\\right)"
	case KindAsin:
		return "\\arcsin\\left(" + inner + "\\right)"
	case KindAcos:
		return "\\arccos\\left(" + inner + "\\right)"
	case KindAtan:
		return "\\arctan\\left(" + inner + "\\right)"
	case KindSqrt:
		return "\\sqrt{" + inner + "}"
	case KindAbs:
		return "\\left|" + inner + "\\right|"
	case KindFloor:
		return "\\lfloor " + inner + " \\rfloor"
	case KindCeil:
		return "\\lceil " + inner + " \\rceil"
	}
	return "\\operatorname{" + f.name + "}\\left(" + inner + "\\right)"
}

func (f *Func) toJSON() map[string]interface{} {
	args := make([]map[string]interface{}, len(f.args))
	for i, a := range f.args {
		args[i] = a.toJSON()
	}
	return map[string]interface{}{"type": "func", "name": f.name, "args": args}
}

// ============================================================
// IfThenElse: conditional on a relational formula
// ============================================================

type RelOp int

const (
	OpEq RelOp = iota
	OpNeq
	OpLt
	OpLeq
	OpGt
	OpGeq
)

var relOpNames = []string{"==", "!=", "<", "<=", ">", ">="}

func (op RelOp) String() string {
	if int(op) < len(relOpNames) {
		return relOpNames[op]
	}
	return "?"
}

func parseRelOp(s string) (RelOp, bool) {
	for i, n := range relOpNames {
		if n == s {
			return RelOp(i), true
		}
	}
	return 0, false
}

// Condition is the relational formula Lhs Op Rhs.
type Condition struct {
	Op       RelOp
	Lhs, Rhs Expr
}

func (c Condition) String() string {
	return c.Lhs.String() + " " + c.Op.String() + " " + c.Rhs.String()
}

// decide evaluates the condition when both sides are constants.
func (c Condition) decide() (value, known bool) {
	ln, ok1 := c.Lhs.(*Num)
	rn, ok2 := c.Rhs.(*Num)
	if !ok1 || !ok2 {
		return false, false
	}
	cmp := numCmp(ln, rn)
	switch c.Op {
	case OpEq:
		return cmp == 0, true
	case OpNeq:
		return cmp != 0, true
	case OpLt:
		return cmp < 0, true
	case OpLeq:
		return cmp <= 0, true
	case OpGt:
		return cmp > 0, true
	case OpGeq:
		return cmp >= 0, true
	}
	return false, false
}

type IfThenElse struct {
	cond      Condition
	then, els Expr
}

func IfThenElseOf(cond Condition, then, els Expr) Expr {
	if v, ok := cond.decide(); ok {
		if v {
			return then
		}
		return els
	}
	if Equal(then, els) {
		return then
	}
	return &IfThenElse{cond: cond, then: then, els: els}
}

func (e *IfThenElse) Kind() Kind           { return KindIfThenElse }
func (e *IfThenElse) Condition() Condition { return e.cond }
func (e *IfThenElse) Then() Expr           { return e.then }
func (e *IfThenElse) Else() Expr           { return e.els }

func (e *IfThenElse) String() string {
	return "(if " + e.cond.String() + " then " + e.then.String() + " else " + e.els.String() + ")"
}

func (e *IfThenElse) LaTeX() string {
	return "\\begin{cases}" + e.then.LaTeX() + " & " + e.cond.Lhs.LaTeX() + " " + e.cond.Op.String() +
		" " + e.cond.Rhs.LaTeX() + " \\\\ " + e.els.LaTeX() + " & \\text{otherwise}\\end{cases}"
}

func (e *IfThenElse) toJSON() map[string]interface{} {
	return map[string]interface{}{
		"type": "ite",
		"cond": map[string]interface{}{
			"op":  e.cond.Op.String(),
			"lhs": e.cond.Lhs.toJSON(),
			"rhs": e.cond.Rhs.toJSON(),
		},
		"then": e.then.toJSON(),
		"else": e.els.toJSON(),
	}
}
