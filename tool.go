package symdecomp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/njchilds90/symdecomp/symbolic"
)

// ============================================================
// Tool Interface
// ============================================================

// ToolRequest names one decomposition. Expressions in Params use the JSON
// object form of package symbolic; variables are referred to by name.
type ToolRequest struct {
	Tool   string                 `json:"tool" yaml:"tool"`
	Params map[string]interface{} `json:"params" yaml:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
	Code   string      `json:"code,omitempty"`
}

// Toolbox dispatches tool requests to the decomposition routines.
type Toolbox struct {
	logger   *zap.Logger
	psdTol   float64
	coeffTol float64
}

type Option func(*Toolbox)

// WithLogger sets the logger used for per-call records.
func WithLogger(l *zap.Logger) Option {
	return func(tb *Toolbox) {
		if l != nil {
			tb.logger = l
		}
	}
}

// WithTolerances sets the default tolerances of decompose_l2_norm.
func WithTolerances(psdTol, coeffTol float64) Option {
	return func(tb *Toolbox) {
		tb.psdTol = psdTol
		tb.coeffTol = coeffTol
	}
}

const defaultTolerance = 1e-8

func NewToolbox(opts ...Option) *Toolbox {
	tb := &Toolbox{logger: zap.NewNop(), psdTol: defaultTolerance, coeffTol: defaultTolerance}
	for _, opt := range opts {
		opt(tb)
	}
	return tb
}

type requestIDKey struct{}

// ContextWithRequestID tags ctx with an id that Handle logs.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the id stored by ContextWithRequestID.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Handle runs one tool call. Failures are reported in the response, never
// returned, so the response is always encodable.
func (tb *Toolbox) Handle(ctx context.Context, req ToolRequest) ToolResponse {
	start := time.Now()
	resp := tb.dispatch(req)
	fields := []zap.Field{
		zap.String("tool", req.Tool),
		zap.Duration("duration", time.Since(start)),
	}
	if id := RequestIDFrom(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if resp.Error != "" {
		tb.logger.Warn("tool call failed", append(fields, zap.String("code", resp.Code), zap.String("error", resp.Error))...)
	} else {
		tb.logger.Debug("tool call", fields...)
	}
	return resp
}

func failure(err error) ToolResponse {
	return ToolResponse{Error: err.Error(), Code: ErrorCode(err)}
}

func (tb *Toolbox) dispatch(req ToolRequest) ToolResponse {
	p := params{raw: req.Params, table: symbolic.NewVariableTable()}

	switch req.Tool {
	case "is_affine":
		m, err := p.matrix("matrix")
		if err != nil {
			return failure(err)
		}
		var affine bool
		if p.has("vars") {
			vars, err := p.variables("vars")
			if err != nil {
				return failure(err)
			}
			affine = IsAffineIn(m, symbolic.NewVariables(vars...))
		} else {
			affine = IsAffine(m)
		}
		return ToolResponse{Result: affine, String: fmt.Sprint(affine)}

	case "decompose_linear":
		exprs, err := p.exprList("exprs")
		if err != nil {
			return failure(err)
		}
		vars, err := p.variables("vars")
		if err != nil {
			return failure(err)
		}
		M, err := DecomposeLinear(exprs, vars)
		if err != nil {
			return failure(err)
		}
		return ToolResponse{
			Result: map[string]interface{}{"M": denseRows(M), "vars": names(vars)},
			String: fmt.Sprint(denseRows(M)),
		}

	case "decompose_affine":
		exprs, err := p.exprList("exprs")
		if err != nil {
			return failure(err)
		}
		vars, err := p.variables("vars")
		if err != nil {
			return failure(err)
		}
		M, v, err := DecomposeAffine(exprs, vars)
		if err != nil {
			return failure(err)
		}
		return affineResponse(M, v, vars)

	case "decompose_affine_implicit":
		exprs, err := p.exprList("exprs")
		if err != nil {
			return failure(err)
		}
		M, v, vars, err := DecomposeAffineImplicit(exprs)
		if err != nil {
			return failure(err)
		}
		return affineResponse(M, v, vars)

	case "decompose_affine_row":
		e, err := p.expr("expr")
		if err != nil {
			return failure(err)
		}
		vars, index, err := p.index("vars", e)
		if err != nil {
			return failure(err)
		}
		row, err := DecomposeAffineRow(e, index)
		if err != nil {
			return failure(err)
		}
		return ToolResponse{
			Result: map[string]interface{}{
				"coeffs":        row.Coeffs,
				"constant":      row.Constant,
				"num_variables": row.NumVariables,
				"vars":          names(vars),
			},
			String: fmt.Sprintf("%v · %v + %g", row.Coeffs, names(vars), row.Constant),
		}

	case "decompose_quadratic":
		e, err := p.expr("expr")
		if err != nil {
			return failure(err)
		}
		vars, index, err := p.index("vars", e)
		if err != nil {
			return failure(err)
		}
		if !symbolic.IsPolynomial(e) {
			return failure(newError(ErrInputNotPolynomial, e, ""))
		}
		poly, err := symbolic.NewPolynomial(e)
		if err != nil {
			return failure(newError(ErrInputNotPolynomial, e, err.Error()))
		}
		quad, err := DecomposeQuadratic(poly, index)
		if err != nil {
			return failure(err)
		}
		return ToolResponse{
			Result: map[string]interface{}{
				"Q":    symRows(quad.Q),
				"b":    vecSlice(quad.B),
				"c":    quad.C,
				"vars": names(vars),
			},
			String: fmt.Sprintf("0.5·xᵀ%vx + %vᵀx + %g", symRows(quad.Q), vecSlice(quad.B), quad.C),
		}

	case "decompose_l2_norm":
		e, err := p.expr("expr")
		if err != nil {
			return failure(err)
		}
		psdTol, err := p.numberOr("psd_tol", tb.psdTol)
		if err != nil {
			return failure(err)
		}
		coeffTol, err := p.numberOr("coefficient_tol", tb.coeffTol)
		if err != nil {
			return failure(err)
		}
		norm, ok, err := DecomposeL2Norm(e, psdTol, coeffTol)
		if err != nil {
			return failure(err)
		}
		if !ok {
			return ToolResponse{Result: map[string]interface{}{"is_l2_norm": false}, String: "false"}
		}
		return ToolResponse{
			Result: map[string]interface{}{
				"is_l2_norm": true,
				"A":          denseRows(norm.A),
				"b":          vecSlice(norm.B),
				"vars":       names(norm.Vars),
			},
			String: fmt.Sprintf("‖%v·%v + %v‖", denseRows(norm.A), names(norm.Vars), vecSlice(norm.B)),
		}

	case "decompose_lumped":
		e, err := p.expr("expr")
		if err != nil {
			return failure(err)
		}
		ps, err := p.variables("params")
		if err != nil {
			return failure(err)
		}
		f, err := DecomposeLumpedParameter(e, symbolic.NewVariables(ps...))
		if err != nil {
			return failure(err)
		}
		return ToolResponse{
			Result: map[string]interface{}{
				"w":     exprStrings(f.W),
				"alpha": exprStrings(f.Alpha),
				"w0":    f.W0.String(),
				"json": map[string]interface{}{
					"w":     exprTrees(f.W),
					"alpha": exprTrees(f.Alpha),
					"w0":    symbolic.JSONValue(f.W0),
				},
			},
			LaTeX:  f.Expr().LaTeX(),
			String: f.Expr().String(),
		}

	case "decompose_lumped_vector":
		exprs, err := p.exprList("exprs")
		if err != nil {
			return failure(err)
		}
		ps, err := p.variables("params")
		if err != nil {
			return failure(err)
		}
		d, err := DecomposeLumpedParameters(exprs, symbolic.NewVariables(ps...))
		if err != nil {
			return failure(err)
		}
		rows := make([][]string, d.W.Rows())
		for i := range rows {
			rows[i] = exprStrings(d.W.Row(i))
		}
		return ToolResponse{
			Result: map[string]interface{}{
				"W":     rows,
				"alpha": exprStrings(d.Alpha),
				"w0":    exprStrings(d.W0),
				"json": map[string]interface{}{
					"alpha": exprTrees(d.Alpha),
					"w0":    exprTrees(d.W0),
				},
			},
			LaTeX:  d.W.LaTeX(),
			String: d.W.String(),
		}

	case "extract_variables":
		exprs, err := p.exprList("exprs")
		if err != nil {
			return failure(err)
		}
		vars, _ := ExtractVariablesFromExprs(exprs)
		return ToolResponse{Result: names(vars), String: fmt.Sprint(names(vars))}

	case "tool_spec":
		return ToolResponse{Result: json.RawMessage(ToolSpec()), String: ToolSpec()}
	}
	return failure(&DecomposeError{Kind: ErrUnknownTool, Detail: req.Tool})
}

func affineResponse(M *mat.Dense, v *mat.VecDense, vars []*symbolic.Variable) ToolResponse {
	return ToolResponse{
		Result: map[string]interface{}{"M": denseRows(M), "v": vecSlice(v), "vars": names(vars)},
		String: fmt.Sprintf("%v·%v + %v", denseRows(M), names(vars), vecSlice(v)),
	}
}

// ============================================================
// Parameter decoding
// ============================================================

// params decodes request parameters. One table per request, so every "x"
// in a request is the same variable.
type params struct {
	raw   map[string]interface{}
	table *symbolic.VariableTable
}

func invalid(format string, args ...interface{}) error {
	return &DecomposeError{Kind: ErrInvalidParams, Detail: fmt.Sprintf(format, args...)}
}

func (p params) has(key string) bool {
	_, ok := p.raw[key]
	return ok
}

func (p params) get(key string) (interface{}, error) {
	v, ok := p.raw[key]
	if !ok {
		return nil, invalid("missing param: %s", key)
	}
	return v, nil
}

func (p params) decode(v interface{}, what string) (symbolic.Expr, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, invalid("%s must be an expression object", what)
	}
	e, err := symbolic.FromJSON(m, p.table)
	if err != nil {
		return nil, invalid("%s: %v", what, err)
	}
	return e, nil
}

func (p params) expr(key string) (symbolic.Expr, error) {
	v, err := p.get(key)
	if err != nil {
		return nil, err
	}
	return p.decode(v, "param "+key)
}

func (p params) array(key string) ([]interface{}, error) {
	v, err := p.get(key)
	if err != nil {
		return nil, err
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, invalid("param %s must be an array", key)
	}
	return raw, nil
}

func (p params) exprList(key string) ([]symbolic.Expr, error) {
	raw, err := p.array(key)
	if err != nil {
		return nil, err
	}
	out := make([]symbolic.Expr, len(raw))
	for i, r := range raw {
		if out[i], err = p.decode(r, fmt.Sprintf("param %s[%d]", key, i)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p params) variables(key string) ([]*symbolic.Variable, error) {
	raw, err := p.array(key)
	if err != nil {
		return nil, err
	}
	out := make([]*symbolic.Variable, len(raw))
	for i, r := range raw {
		name, ok := r.(string)
		if !ok || name == "" {
			return nil, invalid("param %s[%d] must be a variable name", key, i)
		}
		out[i] = p.table.Lookup(name)
	}
	return out, nil
}

// index returns the variable order named by key, or the variables of e
// sorted by id when key is absent.
func (p params) index(key string, e symbolic.Expr) ([]*symbolic.Variable, VariableIndex, error) {
	if !p.has(key) {
		vars, index := ExtractVariables(e)
		return vars, index, nil
	}
	vars, err := p.variables(key)
	if err != nil {
		return nil, nil, err
	}
	index := VariableIndex{}
	for i, v := range vars {
		if _, dup := index[v.ID()]; dup {
			return nil, nil, invalid("param %s names %s twice", key, v.Name())
		}
		index[v.ID()] = i
	}
	return vars, index, nil
}

func (p params) numberOr(key string, def float64) (float64, error) {
	v, ok := p.raw[key]
	if !ok {
		return def, nil
	}
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	}
	return 0, invalid("param %s must be a number", key)
}

func intField(raw map[string]interface{}, key string) (int, error) {
	switch x := raw[key].(type) {
	case float64:
		if math.Abs(x) <= 1<<53 && x == math.Trunc(x) {
			return int(x), nil
		}
	case int:
		return x, nil
	}
	return 0, invalid("matrix.%s must be an integer", key)
}

// maxEmptyMatrixDim bounds the nonzero side of a matrix with no entries.
const maxEmptyMatrixDim = 1 << 12

// matrix decodes {rows, cols, entries} with entries in row-major order.
func (p params) matrix(key string) (*symbolic.Matrix, error) {
	v, err := p.get(key)
	if err != nil {
		return nil, err
	}
	raw, ok := v.(map[string]interface{})
	if !ok {
		return nil, invalid("param %s must be a matrix object", key)
	}
	rows, err := intField(raw, "rows")
	if err != nil {
		return nil, err
	}
	cols, err := intField(raw, "cols")
	if err != nil {
		return nil, err
	}
	if rows < 0 || cols < 0 {
		return nil, invalid("matrix dimensions must be non-negative")
	}
	entries, _ := raw["entries"].([]interface{})
	n := len(entries)
	switch {
	case rows == 0 || cols == 0:
		if n != 0 || rows > maxEmptyMatrixDim || cols > maxEmptyMatrixDim {
			return nil, invalid("matrix shape %dx%d does not fit %d entries", rows, cols, n)
		}
	case rows > n || cols > n || rows*cols != n:
		return nil, invalid("matrix shape %dx%d does not fit %d entries", rows, cols, n)
	}
	m := symbolic.NewMatrix(rows, cols)
	for k, r := range entries {
		e, err := p.decode(r, fmt.Sprintf("matrix entry %d", k))
		if err != nil {
			return nil, err
		}
		m.Set(k/cols, k%cols, e)
	}
	return m, nil
}

// ============================================================
// Result encoding
// ============================================================

func denseRows(m mat.Matrix) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = make([]float64, c)
		for j := range out[i] {
			out[i][j] = m.At(i, j)
		}
	}
	return out
}

func symRows(m *mat.SymDense) [][]float64 {
	if m.IsEmpty() {
		return [][]float64{}
	}
	return denseRows(m)
}

func vecSlice(v *mat.VecDense) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}

func names(vars []*symbolic.Variable) []string {
	out := make([]string, len(vars))
	for i, v := range vars {
		out[i] = v.Name()
	}
	return out
}

func exprStrings(es []symbolic.Expr) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.String()
	}
	return out
}

func exprTrees(es []symbolic.Expr) []map[string]interface{} {
	out := make([]map[string]interface{}, len(es))
	for i, e := range es {
		out[i] = symbolic.JSONValue(e)
	}
	return out
}

// ============================================================
// Tool schema
// ============================================================

// ToolSpec returns the JSON schema of every tool Handle accepts.
func ToolSpec() string {
	tools := []map[string]interface{}{
		ts("is_affine", "Whether every matrix entry is affine. matrix={rows,cols,entries:[expr,...]}; optional vars restricts the degree check",
			[]string{"matrix"}, map[string]string{"matrix": "object", "vars": "array"}),
		ts("decompose_linear", "Coefficient matrix M with exprs = M·vars; rejects constant terms",
			[]string{"exprs", "vars"}, map[string]string{"exprs": "array", "vars": "array"}),
		ts("decompose_affine", "M and v with exprs = M·vars + v",
			[]string{"exprs", "vars"}, map[string]string{"exprs": "array", "vars": "array"}),
		ts("decompose_affine_implicit", "M, v and the discovered variables with exprs = M·vars + v",
			[]string{"exprs"}, map[string]string{"exprs": "array"}),
		ts("decompose_affine_row", "Coefficients, constant and nonzero count of one affine expression",
			[]string{"expr"}, map[string]string{"expr": "object", "vars": "array"}),
		ts("decompose_quadratic", "Q, b, c with expr = 0.5·xᵀQx + bᵀx + c",
			[]string{"expr"}, map[string]string{"expr": "object", "vars": "array"}),
		ts("decompose_l2_norm", "Recognize sqrt(q(x)) = ‖Ax + b‖. Optional psd_tol, coefficient_tol",
			[]string{"expr"}, map[string]string{"expr": "object", "psd_tol": "number", "coefficient_tol": "number"}),
		ts("decompose_lumped", "Factor expr = Σ w[i]·alpha[i] + w0 with alpha in params only",
			[]string{"expr", "params"}, map[string]string{"expr": "object", "params": "array"}),
		ts("decompose_lumped_vector", "Factor exprs = W·alpha + w0 with alpha shared across rows",
			[]string{"exprs", "params"}, map[string]string{"exprs": "array", "params": "array"}),
		ts("extract_variables", "Free variables in first occurrence order",
			[]string{"exprs"}, map[string]string{"exprs": "array"}),
		ts("tool_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
