package symbolic

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
)

// ============================================================
// VariableTable: name resolution for decoded documents
// ============================================================

// VariableTable maps names to variables while decoding, so that every "x"
// in one document is the same *Variable.
type VariableTable struct {
	byName map[string]*Variable
	order  []*Variable
}

func NewVariableTable() *VariableTable {
	return &VariableTable{byName: map[string]*Variable{}}
}

// Declare registers existing variables under their names.
func (t *VariableTable) Declare(vars ...*Variable) {
	for _, v := range vars {
		if _, ok := t.byName[v.name]; !ok {
			t.order = append(t.order, v)
		}
		t.byName[v.name] = v
	}
}

// Lookup returns the variable called name, creating it on first use.
func (t *VariableTable) Lookup(name string) *Variable {
	if v, ok := t.byName[name]; ok {
		return v
	}
	v := NewVariable(name)
	t.Declare(v)
	return v
}

func (t *VariableTable) Get(name string) (*Variable, bool) {
	v, ok := t.byName[name]
	return v, ok
}

// Variables lists the table in declaration order.
func (t *VariableTable) Variables() []*Variable { return append([]*Variable(nil), t.order...) }

// ============================================================
// JSON Serialization
// ============================================================

func ToJSON(e Expr) (string, error) {
	b, err := json.Marshal(e.toJSON())
	return string(b), err
}

// JSONValue returns the generic JSON object form of e.
func JSONValue(e Expr) map[string]interface{} { return e.toJSON() }

var funcKinds = map[string]Kind{
	"ln": KindLog,
}

func init() {
	for k, name := range kindNames {
		if k >= KindAbs && k <= KindFloor {
			funcKinds[name] = k
		}
	}
}

// FromJSON decodes the object form produced by ToJSON. Numbers may be
// strings ("1/3", "0.25") or JSON/YAML numbers. Unknown function names
// decode as uninterpreted functions.
func FromJSON(data map[string]interface{}, table *VariableTable) (Expr, error) {
	if data == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	if table == nil {
		table = NewVariableTable()
	}
	typAny, ok := data["type"]
	if !ok {
		return nil, fmt.Errorf("missing 'type' field")
	}
	typ, ok := typAny.(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}

	sub := func(field string) (Expr, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an object", typ, field)
		}
		e, err := FromJSON(m, table)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", typ, field, err)
		}
		return e, nil
	}

	subArray := func(field string) ([]Expr, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an array", typ, field)
		}
		out := make([]Expr, len(raw))
		for i, it := range raw {
			m, ok := it.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%s: %q[%d] must be an object", typ, field, i)
			}
			e, err := FromJSON(m, table)
			if err != nil {
				return nil, fmt.Errorf("%s: %s[%d]: %w", typ, field, i, err)
			}
			out[i] = e
		}
		return out, nil
	}

	subString := func(field string) (string, error) {
		v, ok := data[field]
		if !ok {
			return "", fmt.Errorf("%s: missing %q", typ, field)
		}
		s, ok := v.(string)
		if !ok || s == "" {
			return "", fmt.Errorf("%s: %q must be a non-empty string", typ, field)
		}
		return s, nil
	}

	switch typ {
	case "num":
		valAny, ok := data["value"]
		if !ok {
			return nil, fmt.Errorf("num: missing 'value'")
		}
		return ParseNum(valAny)

	case "sym":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		return table.Lookup(name), nil

	case "add":
		terms, err := subArray("terms")
		if err != nil {
			return nil, err
		}
		return AddOf(terms...), nil

	case "mul":
		factors, err := subArray("factors")
		if err != nil {
			return nil, err
		}
		return MulOf(factors...), nil

	case "pow":
		base, err := sub("base")
		if err != nil {
			return nil, err
		}
		exp, err := sub("exp")
		if err != nil {
			return nil, err
		}
		return PowOf(base, exp), nil

	case "div":
		num, err := sub("num")
		if err != nil {
			return nil, err
		}
		den, err := sub("den")
		if err != nil {
			return nil, err
		}
		if IsZero(den) {
			return nil, fmt.Errorf("div: zero denominator")
		}
		return DivOf(num, den), nil

	case "func":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		var args []Expr
		if _, single := data["arg"]; single {
			arg, err := sub("arg")
			if err != nil {
				return nil, err
			}
			args = []Expr{arg}
		} else if args, err = subArray("args"); err != nil {
			return nil, err
		}
		return applyFunc(name, args)

	case "ite":
		condAny, ok := data["cond"].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("ite: 'cond' must be an object")
		}
		opName, _ := condAny["op"].(string)
		op, ok := parseRelOp(opName)
		if !ok {
			return nil, fmt.Errorf("ite: unknown relational operator %q", opName)
		}
		lm, ok1 := condAny["lhs"].(map[string]interface{})
		rm, ok2 := condAny["rhs"].(map[string]interface{})
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("ite: cond needs 'lhs' and 'rhs' objects")
		}
		lhs, err := FromJSON(lm, table)
		if err != nil {
			return nil, fmt.Errorf("ite: cond.lhs: %w", err)
		}
		rhs, err := FromJSON(rm, table)
		if err != nil {
			return nil, fmt.Errorf("ite: cond.rhs: %w", err)
		}
		then, err := sub("then")
		if err != nil {
			return nil, err
		}
		els, err := sub("else")
		if err != nil {
			return nil, err
		}
		return IfThenElseOf(Condition{Op: op, Lhs: lhs, Rhs: rhs}, then, els), nil
	}
	return nil, fmt.Errorf("unknown expression type: %s", typ)
}

func applyFunc(name string, args []Expr) (Expr, error) {
	kind, known := funcKinds[name]
	if !known {
		return UninterpretedOf(name, args...), nil
	}
	switch kind {
	case KindAtan2, KindMin, KindMax:
		if len(args) != 2 {
			return nil, fmt.Errorf("func: %s takes 2 arguments, got %d", name, len(args))
		}
		if kind == KindAtan2 {
			return Atan2Of(args[0], args[1]), nil
		}
		return extremumOf(kind, args[0], args[1]), nil
	}
	if len(args) != 1 {
		return nil, fmt.Errorf("func: %s takes 1 argument, got %d", name, len(args))
	}
	return unaryOf(kind, args[0]), nil
}

// ParseNum reads a constant from a string, float or integer value.
func ParseNum(v interface{}) (*Num, error) {
	switch x := v.(type) {
	case string:
		r, ok := new(big.Rat).SetString(x)
		if !ok {
			return nil, fmt.Errorf("invalid num value: %s", x)
		}
		return &Num{val: r}, nil
	case float64:
		r := new(big.Rat)
		if _, ok := r.SetString(strconv.FormatFloat(x, 'g', -1, 64)); !ok {
			return nil, fmt.Errorf("invalid num value: %v", x)
		}
		return &Num{val: r}, nil
	case int:
		return N(int64(x)), nil
	case int64:
		return N(x), nil
	case uint64:
		return &Num{val: new(big.Rat).SetFrac(new(big.Int).SetUint64(x), big.NewInt(1))}, nil
	}
	return nil, fmt.Errorf("num: 'value' must be a string or number, got %T", v)
}
