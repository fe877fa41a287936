package symbolic

import (
	"sort"
	"strings"
	"sync/atomic"
)

// ============================================================
// Variable: identity-based symbol
// ============================================================

var lastVariableID atomic.Uint64

// Variable is a free symbol. Equality is identity: the id is unique within
// the process and the name is only used for printing.
type Variable struct {
	id   uint64
	name string
}

func NewVariable(name string) *Variable {
	return &Variable{id: lastVariableID.Add(1), name: name}
}

// NewVariableList creates one variable per name, in order.
func NewVariableList(names ...string) []*Variable {
	out := make([]*Variable, len(names))
	for i, n := range names {
		out[i] = NewVariable(n)
	}
	return out
}

func (v *Variable) Kind() Kind     { return KindVariable }
func (v *Variable) ID() uint64     { return v.id }
func (v *Variable) Name() string   { return v.name }
func (v *Variable) String() string { return v.name }
func (v *Variable) LaTeX() string  { return v.name }
func (v *Variable) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "sym", "name": v.name}
}

// ============================================================
// Variables: set of variables keyed by id
// ============================================================

// Variables is an unordered set. The zero value is an empty set ready for
// reads; Insert allocates on first use.
type Variables struct {
	m map[uint64]*Variable
}

func NewVariables(vars ...*Variable) Variables {
	s := Variables{m: make(map[uint64]*Variable, len(vars))}
	for _, v := range vars {
		s.m[v.id] = v
	}
	return s
}

func (s *Variables) Insert(v *Variable) {
	if s.m == nil {
		s.m = map[uint64]*Variable{}
	}
	s.m[v.id] = v
}

func (s Variables) Len() int    { return len(s.m) }
func (s Variables) Empty() bool { return len(s.m) == 0 }

func (s Variables) Contains(v *Variable) bool {
	_, ok := s.m[v.id]
	return ok
}

func (s Variables) IsSubsetOf(other Variables) bool {
	for id := range s.m {
		if _, ok := other.m[id]; !ok {
			return false
		}
	}
	return true
}

func (s Variables) Intersect(other Variables) Variables {
	out := NewVariables()
	for id, v := range s.m {
		if _, ok := other.m[id]; ok {
			out.m[id] = v
		}
	}
	return out
}

func (s Variables) Union(other Variables) Variables {
	out := NewVariables()
	for id, v := range s.m {
		out.m[id] = v
	}
	for id, v := range other.m {
		out.m[id] = v
	}
	return out
}

// Slice returns the members sorted by id.
func (s Variables) Slice() []*Variable {
	out := make([]*Variable, 0, len(s.m))
	for _, v := range s.m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (s Variables) String() string {
	vs := s.Slice()
	names := make([]string, len(vs))
	for i, v := range vs {
		names[i] = v.name
	}
	return "{" + strings.Join(names, ", ") + "}"
}
