package symdecomp_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/njchilds90/symdecomp"
)

// request decodes a JSON tool request the way the HTTP server does, so
// numbers arrive as float64.
func request(t *testing.T, s string) symdecomp.ToolRequest {
	t.Helper()
	var req symdecomp.ToolRequest
	require.NoError(t, json.Unmarshal([]byte(s), &req))
	return req
}

// roundTrip passes the response through JSON so results compare as
// generic values.
func roundTrip(t *testing.T, resp symdecomp.ToolResponse) map[string]interface{} {
	t.Helper()
	b, err := json.Marshal(resp)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

const (
	symX = `{"type":"sym","name":"x"}`
	symY = `{"type":"sym","name":"y"}`
	symP = `{"type":"sym","name":"p"}`
)

func TestToolbox_DecomposeAffine(t *testing.T) {
	tb := symdecomp.NewToolbox()
	resp := tb.Handle(context.Background(), request(t, `{"tool":"decompose_affine","params":{
		"exprs":[{"type":"add","terms":[{"type":"mul","factors":[{"type":"num","value":3},`+symY+`]},{"type":"num","value":"1/2"}]}],
		"vars":["x","y"]}}`))
	require.Empty(t, resp.Error)

	out := roundTrip(t, resp)["result"].(map[string]interface{})
	assert.Equal(t, []interface{}{[]interface{}{0.0, 3.0}}, out["M"])
	assert.Equal(t, []interface{}{0.5}, out["v"])
	assert.Equal(t, []interface{}{"x", "y"}, out["vars"])
}

func TestToolbox_IsAffine(t *testing.T) {
	tb := symdecomp.NewToolbox()
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"affine", `{"tool":"is_affine","params":{"matrix":{"rows":1,"cols":2,"entries":[` + symX + `,{"type":"num","value":2}]}}}`, true},
		{"square", `{"tool":"is_affine","params":{"matrix":{"rows":1,"cols":1,"entries":[{"type":"pow","base":` + symX + `,"exp":{"type":"num","value":2}}]}}}`, false},
		{"restricted", `{"tool":"is_affine","params":{"vars":["x"],"matrix":{"rows":1,"cols":1,"entries":[{"type":"mul","factors":[` + symX + `,` + symY + `]}]}}}`, true},
		{"empty", `{"tool":"is_affine","params":{"matrix":{"rows":0,"cols":0,"entries":[]}}}`, true},
		{"no rows", `{"tool":"is_affine","params":{"matrix":{"rows":0,"cols":3,"entries":[]}}}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := tb.Handle(context.Background(), request(t, tt.body))
			require.Empty(t, resp.Error)
			assert.Equal(t, tt.want, resp.Result)
		})
	}
}

func TestToolbox_DecomposeQuadratic(t *testing.T) {
	tb := symdecomp.NewToolbox()
	resp := tb.Handle(context.Background(), request(t, `{"tool":"decompose_quadratic","params":{
		"expr":{"type":"add","terms":[{"type":"pow","base":`+symX+`,"exp":{"type":"num","value":2}},{"type":"mul","factors":[`+symX+`,`+symY+`]},`+symY+`]},
		"vars":["x","y"]}}`))
	require.Empty(t, resp.Error)

	out := roundTrip(t, resp)["result"].(map[string]interface{})
	assert.Equal(t, []interface{}{[]interface{}{2.0, 1.0}, []interface{}{1.0, 0.0}}, out["Q"])
	assert.Equal(t, []interface{}{0.0, 1.0}, out["b"])
	assert.Equal(t, 0.0, out["c"])
}

func TestToolbox_DecomposeL2Norm(t *testing.T) {
	tb := symdecomp.NewToolbox()
	body := `{"tool":"decompose_l2_norm","params":{"expr":{"type":"func","name":"sqrt","arg":
		{"type":"add","terms":[{"type":"pow","base":` + symX + `,"exp":{"type":"num","value":2}},` + symY + `]}}}}`
	resp := tb.Handle(context.Background(), request(t, body))
	require.Empty(t, resp.Error)
	assert.Equal(t, false, resp.Result.(map[string]interface{})["is_l2_norm"])

	body = `{"tool":"decompose_l2_norm","params":{"psd_tol":-1,"expr":{"type":"func","name":"sqrt","arg":` + symX + `}}}`
	resp = tb.Handle(context.Background(), request(t, body))
	assert.Equal(t, "negative_tolerance", resp.Code)
}

func TestToolbox_DecomposeLumped(t *testing.T) {
	tb := symdecomp.NewToolbox()
	resp := tb.Handle(context.Background(), request(t, `{"tool":"decompose_lumped","params":{
		"expr":{"type":"add","terms":[{"type":"mul","factors":[`+symX+`,`+symP+`]},`+symX+`]},
		"params":["p"]}}`))
	require.Empty(t, resp.Error)

	out := roundTrip(t, resp)["result"].(map[string]interface{})
	assert.Equal(t, []interface{}{"x"}, out["w"])
	assert.Equal(t, []interface{}{"p"}, out["alpha"])
	assert.Equal(t, "x", out["w0"])
	assert.NotEmpty(t, resp.LaTeX)
}

func TestToolbox_Errors(t *testing.T) {
	tb := symdecomp.NewToolbox()
	tests := []struct {
		name string
		body string
		code string
	}{
		{"unknown tool", `{"tool":"integrate"}`, "unknown_tool"},
		{"missing param", `{"tool":"decompose_linear","params":{"vars":["x"]}}`, "invalid_params"},
		{"bad expression", `{"tool":"decompose_lumped","params":{"expr":{"type":"nope"},"params":["p"]}}`, "invalid_params"},
		{"bad variable", `{"tool":"decompose_affine","params":{"exprs":[],"vars":[1]}}`, "invalid_params"},
		{"duplicate vars", `{"tool":"decompose_affine_row","params":{"expr":` + symX + `,"vars":["x","x"]}}`, "invalid_params"},
		{"bad matrix", `{"tool":"is_affine","params":{"matrix":{"rows":2,"cols":1,"entries":[]}}}`, "invalid_params"},
		{"constant term", `{"tool":"decompose_linear","params":{"exprs":[{"type":"num","value":1}],"vars":["x"]}}`, "unexpected_constant_term"},
		{"not polynomial", `{"tool":"decompose_quadratic","params":{"expr":{"type":"func","name":"sin","arg":` + symX + `}}}`, "input_not_polynomial"},
		{"non-separable", `{"tool":"decompose_lumped_vector","params":{"exprs":[{"type":"func","name":"cos","arg":{"type":"mul","factors":[` + symX + `,` + symP + `]}}],"params":["p"]}}`, "non_separable_nonlinear_term"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := tb.Handle(context.Background(), request(t, tt.body))
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, tt.code, resp.Code)
			assert.Nil(t, resp.Result)
		})
	}
}

func TestToolbox_MatrixShapeMustFitEntries(t *testing.T) {
	tb := symdecomp.NewToolbox()
	shapes := []struct {
		name       string
		rows, cols interface{}
		entries    []interface{}
	}{
		{"huge rows, zero cols", 1 << 62, 0, []interface{}{}},
		{"huge float rows", 3e8, 0.0, []interface{}{}},
		{"beyond float precision", 1e300, 1.0, []interface{}{}},
		{"product wraps", 1 << 32, 1 << 32, []interface{}{}},
		{"too many rows", 4, 1, []interface{}{map[string]interface{}{"type": "num", "value": 1.0}}},
		{"fractional", 1.5, 2, []interface{}{}},
	}
	for _, tt := range shapes {
		t.Run(tt.name, func(t *testing.T) {
			resp := tb.Handle(context.Background(), symdecomp.ToolRequest{
				Tool: "is_affine",
				Params: map[string]interface{}{
					"matrix": map[string]interface{}{"rows": tt.rows, "cols": tt.cols, "entries": tt.entries},
				},
			})
			assert.Equal(t, "invalid_params", resp.Code)
			assert.Nil(t, resp.Result)
		})
	}
}

func TestToolbox_ToolSpecListsEveryTool(t *testing.T) {
	var spec struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal([]byte(symdecomp.ToolSpec()), &spec))

	got := map[string]bool{}
	for _, tool := range spec.Tools {
		got[tool.Name] = true
	}
	for _, name := range []string{
		"is_affine", "decompose_linear", "decompose_affine", "decompose_affine_implicit",
		"decompose_affine_row", "decompose_quadratic", "decompose_l2_norm",
		"decompose_lumped", "decompose_lumped_vector", "extract_variables", "tool_spec",
	} {
		assert.True(t, got[name], "missing %s", name)
	}

	resp := symdecomp.NewToolbox().Handle(context.Background(), symdecomp.ToolRequest{Tool: "tool_spec"})
	assert.Empty(t, resp.Error)
	assert.JSONEq(t, symdecomp.ToolSpec(), resp.String)
}

func TestToolbox_Logging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	tb := symdecomp.NewToolbox(symdecomp.WithLogger(zap.New(core)))
	ctx := symdecomp.ContextWithRequestID(context.Background(), "req-1")

	tb.Handle(ctx, request(t, `{"tool":"extract_variables","params":{"exprs":[`+symX+`]}}`))
	tb.Handle(ctx, request(t, `{"tool":"integrate"}`))

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)

	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "extract_variables", entries[0].ContextMap()["tool"])
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "unknown_tool", entries[1].ContextMap()["code"])
}

func TestToolbox_WithTolerances(t *testing.T) {
	tb := symdecomp.NewToolbox(symdecomp.WithTolerances(-1, 1e-8))
	resp := tb.Handle(context.Background(), request(t,
		`{"tool":"decompose_l2_norm","params":{"expr":{"type":"func","name":"sqrt","arg":`+symX+`}}}`))
	assert.Equal(t, "negative_tolerance", resp.Code)
}

func TestRequestIDFrom_Missing(t *testing.T) {
	assert.Equal(t, "", symdecomp.RequestIDFrom(context.Background()))
}
