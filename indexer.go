// Package symdecomp decomposes symbolic polynomial expressions into the
// normal forms used when building optimization programs from symbolic
// models: affine and linear coefficient matrices, quadratic forms,
// Euclidean-norm structure, and lumped-parameter factorizations that
// separate state variables from parameters.
//
// Every function is a pure function of its inputs. Numeric outputs are
// gonum containers freshly allocated per call; symbolic outputs are
// expressions of package symbolic.
package symdecomp

import (
	"fmt"

	"github.com/njchilds90/symdecomp/symbolic"
)

// VariableIndex maps a variable id to its dense position.
type VariableIndex map[uint64]int

// Lookup returns the position of v.
func (idx VariableIndex) Lookup(v *symbolic.Variable) (int, bool) {
	i, ok := idx[v.ID()]
	return i, ok
}

// ExtractVariables returns the distinct free variables of e sorted by id,
// and their positions. Sorting keeps the order independent of how e was
// canonicalized.
func ExtractVariables(e symbolic.Expr) ([]*symbolic.Variable, VariableIndex) {
	vars := symbolic.VariablesOf(e).Slice()
	index := make(VariableIndex, len(vars))
	for i, v := range vars {
		index[v.ID()] = i
	}
	return vars, index
}

// ExtractVariablesFromExprs is ExtractVariables over a sequence; positions
// follow the first occurrence across the whole sequence.
func ExtractVariablesFromExprs(exprs []symbolic.Expr) ([]*symbolic.Variable, VariableIndex) {
	var vars []*symbolic.Variable
	index := VariableIndex{}
	for _, e := range exprs {
		appendVariables(e, &vars, index)
	}
	return vars, index
}

// ExtractAndAppendVariables appends the variables of e not yet in index to
// vars, extending index accordingly. index and vars must describe the same
// list.
func ExtractAndAppendVariables(e symbolic.Expr, vars *[]*symbolic.Variable, index VariableIndex) error {
	if vars == nil || index == nil {
		return &DecomposeError{Kind: ErrDimensionMismatch, Detail: "nil variable list or index"}
	}
	if len(*vars) != len(index) {
		return &DecomposeError{
			Kind:   ErrDimensionMismatch,
			Detail: fmt.Sprintf("index has %d entries, variable list has %d", len(index), len(*vars)),
		}
	}
	appendVariables(e, vars, index)
	return nil
}

func appendVariables(e symbolic.Expr, vars *[]*symbolic.Variable, index VariableIndex) {
	symbolic.WalkVariables(e, func(v *symbolic.Variable) {
		if _, seen := index[v.ID()]; seen {
			return
		}
		index[v.ID()] = len(*vars)
		*vars = append(*vars, v)
	})
}
