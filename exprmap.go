package symdecomp

import (
	"slices"

	"github.com/njchilds90/symdecomp/symbolic"
)

// exprMap is a map keyed by expression structure, iterated in
// symbolic.Compare order.
type exprMap[V any] struct {
	keys []symbolic.Expr
	vals []V
}

// slot returns a pointer to the value stored under k, inserting init() when
// k is new.
func (m *exprMap[V]) slot(k symbolic.Expr, init func() V) *V {
	i, found := slices.BinarySearchFunc(m.keys, k, symbolic.Compare)
	if !found {
		m.keys = slices.Insert(m.keys, i, k)
		m.vals = slices.Insert(m.vals, i, init())
	}
	return &m.vals[i]
}

func (m *exprMap[V]) Len() int { return len(m.keys) }

// each visits the entries in key order.
func (m *exprMap[V]) each(fn func(k symbolic.Expr, v V)) {
	for i, k := range m.keys {
		fn(k, m.vals[i])
	}
}
