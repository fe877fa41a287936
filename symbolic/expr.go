// Package symbolic is the expression algebra consumed by the decomposition
// routines of symdecomp.
//
// Design goals:
//   - Exact rational arithmetic (math/big.Rat)
//   - Canonical forms from every constructor, so structurally equal
//     expressions compare equal under Compare
//   - Identity-based variables: two variables named "x" are different
//     variables unless they are the same *Variable
//   - Deterministic printing and a JSON codec for tool and CLI surfaces
package symbolic

import (
	"fmt"
	"strings"
)

// Kind tags the operator of an expression node. The numeric order of the
// kinds is the first key of Compare.
type Kind int

const (
	KindConstant Kind = iota
	KindVariable
	KindAdd
	KindMul
	KindPow
	KindDiv
	KindAbs
	KindLog
	KindExp
	KindSqrt
	KindSin
	KindCos
	KindTan
	KindAsin
	KindAcos
	KindAtan
	KindAtan2
	KindSinh
	KindCosh
	KindTanh
	KindMin
	KindMax
	KindCeil
	KindFloor
	KindIfThenElse
	KindUninterpreted
)

var kindNames = map[Kind]string{
	KindConstant:      "constant",
	KindVariable:      "variable",
	KindAdd:           "add",
	KindMul:           "mul",
	KindPow:           "pow",
	KindDiv:           "div",
	KindAbs:           "abs",
	KindLog:           "log",
	KindExp:           "exp",
	KindSqrt:          "sqrt",
	KindSin:           "sin",
	KindCos:           "cos",
	KindTan:           "tan",
	KindAsin:          "asin",
	KindAcos:          "acos",
	KindAtan:          "atan",
	KindAtan2:         "atan2",
	KindSinh:          "sinh",
	KindCosh:          "cosh",
	KindTanh:          "tanh",
	KindMin:           "min",
	KindMax:           "max",
	KindCeil:          "ceil",
	KindFloor:         "floor",
	KindIfThenElse:    "if_then_else",
	KindUninterpreted: "uninterpreted",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Expr is an immutable expression node. Values are only built through the
// constructors of this package (N, NewVariable, AddOf, MulOf, ...), which
// keep every node in canonical form.
type Expr interface {
	Kind() Kind
	String() string
	LaTeX() string
	toJSON() map[string]interface{}
}

// Equal reports structural equality.
func Equal(a, b Expr) bool { return Compare(a, b) == 0 }

// IsConstant reports whether e is a numeric constant node.
func IsConstant(e Expr) bool {
	_, ok := e.(*Num)
	return ok
}

// ConstantValue returns the float64 value of a constant node.
func ConstantValue(e Expr) (float64, bool) {
	n, ok := e.(*Num)
	if !ok {
		return 0, false
	}
	return n.Float64(), true
}

// IsZero reports whether e is the constant 0. The check is structural.
func IsZero(e Expr) bool {
	n, ok := e.(*Num)
	return ok && n.IsZero()
}

// IsOne reports whether e is the constant 1.
func IsOne(e Expr) bool {
	n, ok := e.(*Num)
	return ok && n.IsOne()
}

// Compare is a total order over expressions: operator kind first, then the
// node's structure. Variables order by id, so the order is stable within a
// process but not across processes.
func Compare(a, b Expr) int {
	if ka, kb := a.Kind(), b.Kind(); ka != kb {
		if ka < kb {
			return -1
		}
		return 1
	}
	switch x := a.(type) {
	case *Num:
		return numCmp(x, b.(*Num))
	case *Variable:
		return cmpUint(x.id, b.(*Variable).id)
	case *Add:
		y := b.(*Add)
		if c := numCmp(x.constant, y.constant); c != 0 {
			return c
		}
		for i := 0; i < len(x.terms) && i < len(y.terms); i++ {
			if c := Compare(x.terms[i].Expr, y.terms[i].Expr); c != 0 {
				return c
			}
			if c := numCmp(x.terms[i].Coeff, y.terms[i].Coeff); c != 0 {
				return c
			}
		}
		return cmpInt(len(x.terms), len(y.terms))
	case *Mul:
		y := b.(*Mul)
		if c := numCmp(x.constant, y.constant); c != 0 {
			return c
		}
		for i := 0; i < len(x.factors) && i < len(y.factors); i++ {
			if c := Compare(x.factors[i].Base, y.factors[i].Base); c != 0 {
				return c
			}
			if c := Compare(x.factors[i].Exp, y.factors[i].Exp); c != 0 {
				return c
			}
		}
		return cmpInt(len(x.factors), len(y.factors))
	case *Pow:
		y := b.(*Pow)
		if c := Compare(x.base, y.base); c != 0 {
			return c
		}
		return Compare(x.exp, y.exp)
	case *Div:
		y := b.(*Div)
		if c := Compare(x.num, y.num); c != 0 {
			return c
		}
		return Compare(x.den, y.den)
	case *Func:
		y := b.(*Func)
		if c := strings.Compare(x.name, y.name); c != 0 {
			return c
		}
		return compareSlices(x.args, y.args)
	case *IfThenElse:
		y := b.(*IfThenElse)
		if c := cmpInt(int(x.cond.Op), int(y.cond.Op)); c != 0 {
			return c
		}
		return compareSlices(
			[]Expr{x.cond.Lhs, x.cond.Rhs, x.then, x.els},
			[]Expr{y.cond.Lhs, y.cond.Rhs, y.then, y.els},
		)
	}
	panic(fmt.Sprintf("symdecomp: Compare: unhandled expression type %T", a))
}

func compareSlices(a, b []Expr) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmpInt(len(a), len(b))
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Operands returns the direct sub-expressions of e in canonical order.
func Operands(e Expr) []Expr {
	switch v := e.(type) {
	case *Add:
		out := make([]Expr, 0, len(v.terms)+1)
		for _, t := range v.terms {
			out = append(out, t.Expr)
		}
		return out
	case *Mul:
		out := make([]Expr, 0, 2*len(v.factors))
		for _, f := range v.factors {
			out = append(out, f.Base, f.Exp)
		}
		return out
	case *Pow:
		return []Expr{v.base, v.exp}
	case *Div:
		return []Expr{v.num, v.den}
	case *Func:
		return append([]Expr(nil), v.args...)
	case *IfThenElse:
		return []Expr{v.cond.Lhs, v.cond.Rhs, v.then, v.els}
	}
	return nil
}

// WalkVariables calls fn for every variable occurrence in e, depth-first,
// operands in canonical order. Repeated occurrences are reported again.
func WalkVariables(e Expr, fn func(*Variable)) {
	if v, ok := e.(*Variable); ok {
		fn(v)
		return
	}
	for _, op := range Operands(e) {
		WalkVariables(op, fn)
	}
}

// VariablesOf returns the set of free variables of e.
func VariablesOf(e Expr) Variables {
	out := NewVariables()
	WalkVariables(e, out.Insert)
	return out
}

func String(e Expr) string { return e.String() }
func LaTeX(e Expr) string  { return e.LaTeX() }

func parenthesize(e Expr) string {
	switch e.(type) {
	case *Add, *Mul, *Div:
		return "(" + e.String() + ")"
	case *Num:
		if n := e.(*Num); n.IsNegative() || !n.IsInteger() {
			return "(" + e.String() + ")"
		}
	}
	return e.String()
}
