package symbolic_test

import (
	"testing"

	"github.com/njchilds90/symdecomp/symbolic"
)

// ============================================================
// Num tests
// ============================================================

func TestNum_RationalIsReduced(t *testing.T) {
	n := symbolic.F(2, 4)
	if n.String() != "1/2" {
		t.Errorf("want 1/2, got %s", n.String())
	}
}

func TestNum_LaTeX_Negative(t *testing.T) {
	n := symbolic.F(-2, 5)
	if n.LaTeX() != `-\frac{2}{5}` {
		t.Errorf("want -\\frac{2}{5}, got %s", n.LaTeX())
	}
}

func TestPow_FoldsConstants(t *testing.T) {
	if got := symbolic.PowOf(symbolic.N(2), symbolic.N(3)); !symbolic.Equal(got, symbolic.N(8)) {
		t.Errorf("want 8, got %s", got)
	}
	if got := symbolic.PowOf(symbolic.N(4), symbolic.F(1, 2)); !symbolic.Equal(got, symbolic.N(2)) {
		t.Errorf("want 2, got %s", got)
	}
	if got := symbolic.PowOf(symbolic.N(2), symbolic.N(-1)); !symbolic.Equal(got, symbolic.F(1, 2)) {
		t.Errorf("want 1/2, got %s", got)
	}
}

// ============================================================
// Variable tests
// ============================================================

func TestVariable_IdentityNotName(t *testing.T) {
	a := symbolic.NewVariable("x")
	b := symbolic.NewVariable("x")
	if symbolic.Equal(a, b) {
		t.Error("two variables named x must be distinct")
	}
	if !symbolic.Equal(a, a) {
		t.Error("a variable equals itself")
	}
}

func TestVariables_SetOperations(t *testing.T) {
	v := symbolic.NewVariableList("x", "y", "z")
	xy := symbolic.NewVariables(v[0], v[1])
	yz := symbolic.NewVariables(v[1], v[2])

	if got := xy.Intersect(yz); got.Len() != 1 || !got.Contains(v[1]) {
		t.Errorf("want {y}, got %s", got)
	}
	if got := xy.Union(yz); got.Len() != 3 {
		t.Errorf("want 3 members, got %s", got)
	}
	if !symbolic.NewVariables(v[0]).IsSubsetOf(xy) {
		t.Error("{x} is a subset of {x, y}")
	}
	if xy.IsSubsetOf(yz) {
		t.Error("{x, y} is not a subset of {y, z}")
	}
	if got := xy.String(); got != "{x, y}" {
		t.Errorf("want {x, y}, got %s", got)
	}
}

// ============================================================
// Add / Mul tests
// ============================================================

func TestAdd_CombinesLikeTerms(t *testing.T) {
	x := symbolic.NewVariable("x")
	e := symbolic.AddOf(x, x, x, symbolic.N(2))
	if e.String() != "3*x + 2" {
		t.Errorf("want 3*x + 2, got %s", e)
	}
}

func TestAdd_Cancels(t *testing.T) {
	x := symbolic.NewVariable("x")
	if e := symbolic.SubOf(x, x); !symbolic.IsZero(e) {
		t.Errorf("want 0, got %s", e)
	}
}

func TestAdd_IsOrderIndependent(t *testing.T) {
	x, y := symbolic.NewVariable("x"), symbolic.NewVariable("y")
	a := symbolic.AddOf(x, symbolic.MulOf(symbolic.N(2), y), symbolic.N(1))
	b := symbolic.AddOf(symbolic.N(1), symbolic.MulOf(y, symbolic.N(2)), x)
	if !symbolic.Equal(a, b) {
		t.Errorf("want equal, got %s and %s", a, b)
	}
}

func TestMul_MergesPowers(t *testing.T) {
	x := symbolic.NewVariable("x")
	got := symbolic.MulOf(x, symbolic.PowOf(x, symbolic.N(2)))
	if !symbolic.Equal(got, symbolic.PowOf(x, symbolic.N(3))) {
		t.Errorf("want x^3, got %s", got)
	}
	if got.String() != "x^3" {
		t.Errorf("want x^3, got %s", got)
	}
}

func TestMul_ZeroAnnihilates(t *testing.T) {
	x := symbolic.NewVariable("x")
	if got := symbolic.MulOf(x, symbolic.N(0), symbolic.SinOf(x)); !symbolic.IsZero(got) {
		t.Errorf("want 0, got %s", got)
	}
}

func TestMul_InverseCancels(t *testing.T) {
	x := symbolic.NewVariable("x")
	if got := symbolic.MulOf(x, symbolic.PowOf(x, symbolic.N(-1))); !symbolic.IsOne(got) {
		t.Errorf("want 1, got %s", got)
	}
}

func TestDiv_ByConstantIsProduct(t *testing.T) {
	x := symbolic.NewVariable("x")
	got := symbolic.DivOf(x, symbolic.N(2))
	if got.Kind() != symbolic.KindMul {
		t.Errorf("want mul, got %s", got.Kind())
	}
	if !symbolic.Equal(got, symbolic.MulOf(symbolic.F(1, 2), x)) {
		t.Errorf("want x/2, got %s", got)
	}
}

// ============================================================
// Func tests
// ============================================================

func TestFunc_Folding(t *testing.T) {
	x := symbolic.NewVariable("x")
	cases := []struct {
		name string
		got  symbolic.Expr
		want symbolic.Expr
	}{
		{"sqrt(4)", symbolic.SqrtOf(symbolic.N(4)), symbolic.N(2)},
		{"abs(-3)", symbolic.AbsOf(symbolic.N(-3)), symbolic.N(3)},
		{"floor(-1/2)", symbolic.FloorOf(symbolic.F(-1, 2)), symbolic.N(-1)},
		{"ceil(1/2)", symbolic.CeilOf(symbolic.F(1, 2)), symbolic.N(1)},
		{"log(exp(x))", symbolic.LogOf(symbolic.ExpOf(x)), x},
		{"abs(abs(x))", symbolic.AbsOf(symbolic.AbsOf(x)), symbolic.AbsOf(x)},
		{"cos(0)", symbolic.CosOf(symbolic.N(0)), symbolic.N(1)},
		{"max(x, x)", symbolic.MaxOf(x, x), x},
		{"min(2, 3)", symbolic.MinOf(symbolic.N(2), symbolic.N(3)), symbolic.N(2)},
	}
	for _, c := range cases {
		if !symbolic.Equal(c.got, c.want) {
			t.Errorf("%s: want %s, got %s", c.name, c.want, c.got)
		}
	}
}

func TestFunc_SqrtKind(t *testing.T) {
	x := symbolic.NewVariable("x")
	e := symbolic.SqrtOf(x)
	if e.Kind() != symbolic.KindSqrt {
		t.Errorf("want sqrt kind, got %s", e.Kind())
	}
	if e.String() != "sqrt(x)" {
		t.Errorf("want sqrt(x), got %s", e)
	}
}

func TestUninterpreted_NeverFolds(t *testing.T) {
	e := symbolic.UninterpretedOf("f", symbolic.N(1))
	if e.Kind() != symbolic.KindUninterpreted || e.String() != "f(1)" {
		t.Errorf("want f(1), got %s", e)
	}
}

func TestIfThenElse_DecidesConstantCondition(t *testing.T) {
	x, y := symbolic.NewVariable("x"), symbolic.NewVariable("y")
	cond := symbolic.Condition{Op: symbolic.OpLt, Lhs: symbolic.N(1), Rhs: symbolic.N(2)}
	if got := symbolic.IfThenElseOf(cond, x, y); !symbolic.Equal(got, x) {
		t.Errorf("want x, got %s", got)
	}
	open := symbolic.Condition{Op: symbolic.OpLt, Lhs: x, Rhs: y}
	if got := symbolic.IfThenElseOf(open, x, y); got.Kind() != symbolic.KindIfThenElse {
		t.Errorf("want if_then_else, got %s", got.Kind())
	}
}

// ============================================================
// Compare / traversal tests
// ============================================================

func TestCompare_IsTotalOrder(t *testing.T) {
	x, y := symbolic.NewVariable("x"), symbolic.NewVariable("y")
	exprs := []symbolic.Expr{
		symbolic.N(0), symbolic.N(3), x, y,
		symbolic.AddOf(x, y), symbolic.AddOf(x, symbolic.N(1)),
		symbolic.MulOf(x, y), symbolic.MulOf(symbolic.N(2), x, y),
		symbolic.PowOf(x, symbolic.N(2)), symbolic.DivOf(x, y),
		symbolic.SinOf(x), symbolic.CosOf(x), symbolic.SinOf(y),
		symbolic.UninterpretedOf("f", x), symbolic.UninterpretedOf("g", x),
	}
	for i, a := range exprs {
		for j, b := range exprs {
			ab, ba := symbolic.Compare(a, b), symbolic.Compare(b, a)
			if ab != -ba {
				t.Errorf("Compare(%s, %s)=%d but Compare(%s, %s)=%d", a, b, ab, b, a, ba)
			}
			if (ab == 0) != (i == j) {
				t.Errorf("Compare(%s, %s)=%d", a, b, ab)
			}
		}
	}
}

func TestWalkVariables_DepthFirstWithRepeats(t *testing.T) {
	x, y := symbolic.NewVariable("x"), symbolic.NewVariable("y")
	e := symbolic.AddOf(symbolic.SinOf(symbolic.MulOf(x, y)), x)
	var seen []string
	symbolic.WalkVariables(e, func(v *symbolic.Variable) { seen = append(seen, v.Name()) })
	if len(seen) != 3 {
		t.Fatalf("want 3 occurrences, got %v", seen)
	}
	if got := symbolic.VariablesOf(e); got.Len() != 2 {
		t.Errorf("want {x, y}, got %s", got)
	}
}

// ============================================================
// Matrix tests
// ============================================================

func TestMatrix_Empty(t *testing.T) {
	m := symbolic.NewMatrix(0, 0)
	if m.Size() != 0 {
		t.Errorf("want size 0, got %d", m.Size())
	}
	if m.String() != "[]" {
		t.Errorf("want [], got %s", m)
	}
}

func TestMatrix_FromRows(t *testing.T) {
	x, y := symbolic.NewVariable("x"), symbolic.NewVariable("y")
	m, err := symbolic.MatrixFromRows([][]symbolic.Expr{{x, symbolic.N(1)}, {symbolic.N(0), y}})
	if err != nil {
		t.Fatal(err)
	}
	if m.Rows() != 2 || m.Cols() != 2 {
		t.Fatalf("want 2x2, got %dx%d", m.Rows(), m.Cols())
	}
	got := m.MulVec([]symbolic.Expr{x, y})
	if !symbolic.Equal(got[0], symbolic.AddOf(symbolic.PowOf(x, symbolic.N(2)), y)) {
		t.Errorf("want x^2 + y, got %s", got[0])
	}
	if !symbolic.Equal(got[1], symbolic.PowOf(y, symbolic.N(2))) {
		t.Errorf("want y^2, got %s", got[1])
	}

	if _, err := symbolic.MatrixFromRows([][]symbolic.Expr{{x}, {x, y}}); err == nil {
		t.Error("want error for ragged rows")
	}
}

func TestMatrix_OutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("want panic")
		}
	}()
	symbolic.NewMatrix(1, 1).At(1, 0)
}
