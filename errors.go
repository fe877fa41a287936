package symdecomp

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Every failure returned by this package matches exactly
// one of them under errors.Is; details travel in *DecomposeError.
var (
	// ErrInputNotPolynomial: an input that must be polynomial is not.
	ErrInputNotPolynomial = errors.New("symdecomp: non-polynomial expression")

	// ErrDegreeExceeded: a linear, affine or quadratic degree bound was
	// violated.
	ErrDegreeExceeded = errors.New("symdecomp: degree bound exceeded")

	// ErrUnexpectedConstantTerm: a linear decomposition met a constant term.
	ErrUnexpectedConstantTerm = errors.New("symdecomp: unexpected constant term")

	// ErrNonConstantCoefficient: a coefficient did not reduce to a number.
	ErrNonConstantCoefficient = errors.New("symdecomp: non-constant coefficient")

	// ErrUnsupportedMixedPower: a constant power of an expression mixing
	// parameters and state variables. Such terms are separable in principle
	// but are not factored.
	ErrUnsupportedMixedPower = errors.New("symdecomp: mixed power not supported")

	// ErrNonSeparablePower: a non-constant exponent couples parameters and
	// state variables.
	ErrNonSeparablePower = errors.New("symdecomp: non-separable power")

	// ErrNonSeparableNonlinearTerm: a nonlinear operator couples parameters
	// and state variables.
	ErrNonSeparableNonlinearTerm = errors.New("symdecomp: non-separable nonlinear term")

	// ErrNegativeTolerance: a tolerance argument was negative.
	ErrNegativeTolerance = errors.New("symdecomp: tolerance must be non-negative")

	// ErrDimensionMismatch: an output buffer or index map has the wrong size.
	ErrDimensionMismatch = errors.New("symdecomp: dimension mismatch")

	// ErrVariableNotIndexed: a variable is missing from the index map.
	ErrVariableNotIndexed = errors.New("symdecomp: variable not in index map")

	// ErrInvalidParams: a tool request carried missing or malformed params.
	ErrInvalidParams = errors.New("symdecomp: invalid tool parameters")

	// ErrUnknownTool: a tool request named no known tool.
	ErrUnknownTool = errors.New("symdecomp: unknown tool")
)

var errorCodes = map[error]string{
	ErrInputNotPolynomial:        "input_not_polynomial",
	ErrDegreeExceeded:            "degree_exceeded",
	ErrUnexpectedConstantTerm:    "unexpected_constant_term",
	ErrNonConstantCoefficient:    "non_constant_coefficient",
	ErrUnsupportedMixedPower:     "unsupported_mixed_power",
	ErrNonSeparablePower:         "non_separable_power",
	ErrNonSeparableNonlinearTerm: "non_separable_nonlinear_term",
	ErrNegativeTolerance:         "negative_tolerance",
	ErrDimensionMismatch:         "dimension_mismatch",
	ErrVariableNotIndexed:        "variable_not_indexed",
	ErrInvalidParams:             "invalid_params",
	ErrUnknownTool:               "unknown_tool",
}

// DecomposeError carries the offending sub-expression of a failure.
type DecomposeError struct {
	Kind   error  // one of the sentinels above
	Expr   string // printable form of the offending expression
	Vars   string // indeterminates used for degree computation, if any
	Detail string
}

func (e *DecomposeError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.Error())
	if e.Expr != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Expr)
	}
	if e.Vars != "" {
		sb.WriteString(" of indeterminates ")
		sb.WriteString(e.Vars)
	}
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	return sb.String()
}

func (e *DecomposeError) Unwrap() error { return e.Kind }

// ErrorCode returns the stable snake_case code of err's sentinel, or
// "internal" when err matches none.
func ErrorCode(err error) string {
	for sentinel, code := range errorCodes {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return "internal"
}

func newError(kind error, expr fmt.Stringer, detail string) *DecomposeError {
	e := &DecomposeError{Kind: kind, Detail: detail}
	if expr != nil {
		e.Expr = expr.String()
	}
	return e
}
