package engine

import (
	"testing"

	"github.com/dmnfeel/engine/core/ast"
	"github.com/dmnfeel/engine/core/model"
	"github.com/dmnfeel/engine/core/types"
	"github.com/dmnfeel/engine/jsoncodec"
	"github.com/dmnfeel/engine/runtime/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustExpr(t *testing.T, src string) ast.Node {
	t.Helper()
	n, err := parser.ParseExpression(src)
	require.NoError(t, err, src)
	return n
}

func mustUnaryTest(t *testing.T, src string) ast.Node {
	t.Helper()
	n, err := parser.ParseUnaryTests(src)
	require.NoError(t, err, src)
	return n
}

// TestLiteralDecisionScenario covers a Greeting decision concatenating a
// literal with a name carrying a space.
func TestLiteralDecisionScenario(t *testing.T) {
	eng := New()
	m := &model.DmnModel{
		Literals: []*model.LiteralDecision{
			{Name: "Greeting", Expression: mustExpr(t, `"Hello " + Full Name`)},
		},
	}
	require.NoError(t, eng.LoadModel(m, nil))

	input, err := jsoncodec.DecodeContext([]byte(`{"Full Name":"John Doe"}`))
	require.NoError(t, err)

	result, diags := eng.Evaluate(input, EvalOptions{})
	assert.Empty(t, diags)
	greeting, ok := result.Get("Greeting")
	require.True(t, ok)
	assert.Equal(t, "Hello John Doe", greeting.Str)
}

// TestNameToleranceScenario covers a snake_case JSON key resolving
// against a space-separated FEEL name.
func TestNameToleranceScenario(t *testing.T) {
	eng := New()
	m := &model.DmnModel{
		Literals: []*model.LiteralDecision{
			{Name: "Echo", Expression: mustExpr(t, "Input With Spaces")},
		},
	}
	require.NoError(t, eng.LoadModel(m, nil))

	input, err := jsoncodec.DecodeContext([]byte(`{"input_with_spaces":42}`))
	require.NoError(t, err)

	result, _ := eng.Evaluate(input, EvalOptions{})
	echo, ok := result.Get("Echo")
	require.True(t, ok)
	assert.Equal(t, "42", echo.Num.String())
}

// TestDecisionIndependence verifies that a failing decision table does not
// prevent other decisions from producing a result.
func TestDecisionIndependence(t *testing.T) {
	eng := New()
	broken := &model.DecisionTable{
		Name:      "Broken",
		HitPolicy: model.Unique,
		Inputs:    []model.InputClause{{Label: "x", Expression: mustExpr(t, "x")}},
		Outputs:   []model.OutputClause{{Name: "out"}},
		Rules: []model.Rule{
			{Tests: []ast.Node{mustUnaryTest(t, "-")}, Outputs: []ast.Node{mustExpr(t, "1")}},
			{Tests: []ast.Node{mustUnaryTest(t, "-")}, Outputs: []ast.Node{mustExpr(t, "2")}},
		},
	}
	m := &model.DmnModel{
		Tables: []*model.DecisionTable{broken},
		Literals: []*model.LiteralDecision{
			{Name: "Fine", Expression: mustExpr(t, "1 + 1")},
		},
	}
	require.NoError(t, eng.LoadModel(m, nil))

	input := types.NewContext()
	input.Set("x", types.NumberFromInt(1))
	result, diags := eng.Evaluate(input, EvalOptions{})

	broke, ok := result.Get("Broken")
	require.True(t, ok)
	assert.True(t, broke.IsNull())

	fine, ok := result.Get("Fine")
	require.True(t, ok)
	assert.Equal(t, "2", fine.Num.String())

	require.NotEmpty(t, diags)
	assert.Equal(t, "Broken", diags[0].Decision)
}

func TestLoadModelRejectsCycle(t *testing.T) {
	eng := New()
	m := &model.DmnModel{
		BKMs: []*model.BusinessKnowledgeModel{
			{Name: "A", Parameters: []string{"x"}, Body: mustExpr(t, "B(x)")},
			{Name: "B", Parameters: []string{"x"}, Body: mustExpr(t, "A(x)")},
		},
	}
	err := eng.LoadModel(m, nil)
	require.Error(t, err)
	_, ok := err.(*LoadError)
	assert.True(t, ok)
}

// A BKM that calls itself is a one-node cycle: detectCycle catches it at
// LoadModel time, the same as any longer cycle. The evaluator's
// MaxRecursionDepth cap applies to recursion that load-time detection
// cannot see (a BKM cycle split across separate LoadModel calls, or a
// locally bound function value calling itself) and is never reached by a
// direct-recursive BKM, since LoadModel rejects the model before any
// evaluation happens.
func TestLoadModelRejectsDirectSelfRecursion(t *testing.T) {
	eng := New()
	m := &model.DmnModel{
		BKMs: []*model.BusinessKnowledgeModel{
			{Name: "Loop", Parameters: []string{"x"}, Body: mustExpr(t, "Loop(x)")},
		},
	}
	err := eng.LoadModel(m, nil)
	require.Error(t, err)
	_, ok := err.(*LoadError)
	assert.True(t, ok)
}

func TestRemoveAndClear(t *testing.T) {
	eng := New()
	m := &model.DmnModel{
		Literals: []*model.LiteralDecision{{Name: "X", Expression: mustExpr(t, "1")}},
	}
	require.NoError(t, eng.LoadModel(m, nil))
	assert.Equal(t, []string{"X"}, eng.LiteralNames())

	assert.True(t, eng.RemoveLiteral("X"))
	assert.False(t, eng.RemoveLiteral("X"))
	assert.Empty(t, eng.LiteralNames())

	require.NoError(t, eng.LoadModel(m, nil))
	eng.Clear()
	assert.Empty(t, eng.LiteralNames())
}
