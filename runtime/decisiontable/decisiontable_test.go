package decisiontable

import (
	"testing"

	"github.com/dmnfeel/engine/core/ast"
	"github.com/dmnfeel/engine/core/model"
	"github.com/dmnfeel/engine/core/types"
	"github.com/dmnfeel/engine/runtime/evaluator"
	"github.com/dmnfeel/engine/runtime/parser"
	"github.com/dmnfeel/engine/runtime/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustUnaryTest(t *testing.T, src string) ast.Node {
	t.Helper()
	n, err := parser.ParseUnaryTests(src)
	require.NoError(t, err, src)
	return n
}

func mustExpr(t *testing.T, src string) ast.Node {
	t.Helper()
	n, err := parser.ParseExpression(src)
	require.NoError(t, err, src)
	return n
}

func envWithAge(age int64) *resolver.Env {
	frame := resolver.NewFrame()
	frame.Bind("age", types.NumberFromInt(age))
	return resolver.NewEnv(frame)
}

// ageCategoryTable builds a FIRST-hit-policy table:
// <18 -> "Minor", [18..65) -> "Adult", >=65 -> "Senior".
func ageCategoryTable(t *testing.T) *model.DecisionTable {
	return &model.DecisionTable{
		Name:      "AgeCategory",
		HitPolicy: model.First,
		Inputs:    []model.InputClause{{Label: "age", Expression: mustExpr(t, "age")}},
		Outputs:   []model.OutputClause{{Name: "category"}},
		Rules: []model.Rule{
			{Tests: []ast.Node{mustUnaryTest(t, "<18")}, Outputs: []ast.Node{mustExpr(t, `"Minor"`)}},
			{Tests: []ast.Node{mustUnaryTest(t, "[18..65)")}, Outputs: []ast.Node{mustExpr(t, `"Adult"`)}},
			{Tests: []ast.Node{mustUnaryTest(t, ">=65")}, Outputs: []ast.Node{mustExpr(t, `"Senior"`)}},
		},
	}
}

func TestFirstHitPolicyAgeCategory(t *testing.T) {
	table := ageCategoryTable(t)
	ev := evaluator.New(evaluator.DefaultOptions(), nil, nil)

	for _, tc := range []struct {
		age  int64
		want string
	}{{10, "Minor"}, {25, "Adult"}, {70, "Senior"}} {
		v, err := Evaluate(ev, table, envWithAge(tc.age))
		require.NoError(t, err)
		assert.Equal(t, tc.want, v.Str)
	}
}

// ruleOrderTable builds a table with rules on Age with overlapping
// matches under RULE ORDER.
func ruleOrderTable(t *testing.T) *model.DecisionTable {
	return &model.DecisionTable{
		Name:      "Approval",
		HitPolicy: model.RuleOrder,
		Inputs:    []model.InputClause{{Label: "Age", Expression: mustExpr(t, "Age")}},
		Outputs:   []model.OutputClause{{Name: "result"}},
		Rules: []model.Rule{
			{Tests: []ast.Node{mustUnaryTest(t, ">=18")}, Outputs: []ast.Node{mustExpr(t, `"Best"`)}},
			{Tests: []ast.Node{mustUnaryTest(t, ">=12")}, Outputs: []ast.Node{mustExpr(t, `"Standard"`)}},
			{Tests: []ast.Node{mustUnaryTest(t, "<12")}, Outputs: []ast.Node{mustExpr(t, `"Standard"`)}},
		},
	}
}

func TestRuleOrderHitPolicy(t *testing.T) {
	table := ruleOrderTable(t)
	ev := evaluator.New(evaluator.DefaultOptions(), nil, nil)

	frame := resolver.NewFrame()
	frame.Bind("Age", types.NumberFromInt(19))
	v, err := Evaluate(ev, table, resolver.NewEnv(frame))
	require.NoError(t, err)
	require.Len(t, v.List, 2)
	assert.Equal(t, "Best", v.List[0].Str)
	assert.Equal(t, "Standard", v.List[1].Str)

	frame = resolver.NewFrame()
	frame.Bind("Age", types.NumberFromInt(13))
	v, err = Evaluate(ev, table, resolver.NewEnv(frame))
	require.NoError(t, err)
	require.Len(t, v.List, 1)
	assert.Equal(t, "Standard", v.List[0].Str)
}

// collectSumTable builds a table with three rules each outputting a
// number, COLLECT+SUM.
func collectSumTable(t *testing.T, outputs []string) *model.DecisionTable {
	table := &model.DecisionTable{
		Name:        "Total",
		HitPolicy:   model.Collect,
		Aggregation: model.Sum,
		Inputs:      []model.InputClause{{Label: "x", Expression: mustExpr(t, "x")}},
		Outputs:     []model.OutputClause{{Name: "amount"}},
	}
	for _, expr := range outputs {
		table.Rules = append(table.Rules, model.Rule{
			Tests:   []ast.Node{mustUnaryTest(t, "-")},
			Outputs: []ast.Node{mustExpr(t, expr)},
		})
	}
	return table
}

func TestCollectSumAggregation(t *testing.T) {
	ev := evaluator.New(evaluator.DefaultOptions(), nil, nil)
	frame := resolver.NewFrame()
	frame.Bind("x", types.NumberFromInt(1))
	env := resolver.NewEnv(frame)

	table := collectSumTable(t, []string{"10", "20", "30"})
	v, err := Evaluate(ev, table, env)
	require.NoError(t, err)
	assert.Equal(t, "60", v.Num.String())

	table = collectSumTable(t, []string{"null", "30"})
	v, err = Evaluate(ev, table, env)
	require.NoError(t, err)
	assert.Equal(t, "30", v.Num.String())
}

func TestUniqueHitPolicyViolation(t *testing.T) {
	table := &model.DecisionTable{
		Name:      "Dup",
		HitPolicy: model.Unique,
		Inputs:    []model.InputClause{{Label: "x", Expression: mustExpr(t, "x")}},
		Outputs:   []model.OutputClause{{Name: "out"}},
		Rules: []model.Rule{
			{Tests: []ast.Node{mustUnaryTest(t, "-")}, Outputs: []ast.Node{mustExpr(t, "1")}},
			{Tests: []ast.Node{mustUnaryTest(t, "-")}, Outputs: []ast.Node{mustExpr(t, "2")}},
		},
	}
	ev := evaluator.New(evaluator.DefaultOptions(), nil, nil)
	frame := resolver.NewFrame()
	frame.Bind("x", types.NumberFromInt(1))
	_, err := Evaluate(ev, table, resolver.NewEnv(frame))
	require.Error(t, err)
	hpErr, ok := err.(*HitPolicyError)
	require.True(t, ok)
	assert.Equal(t, UniqueViolation, hpErr.Kind)
}

func TestUniqueHitPolicyNoMatch(t *testing.T) {
	table := &model.DecisionTable{
		Name:      "NoMatch",
		HitPolicy: model.Unique,
		Inputs:    []model.InputClause{{Label: "x", Expression: mustExpr(t, "x")}},
		Outputs:   []model.OutputClause{{Name: "out"}},
		Rules: []model.Rule{
			{Tests: []ast.Node{mustUnaryTest(t, ">100")}, Outputs: []ast.Node{mustExpr(t, "1")}},
		},
	}
	ev := evaluator.New(evaluator.DefaultOptions(), nil, nil)
	frame := resolver.NewFrame()
	frame.Bind("x", types.NumberFromInt(1))
	v, err := Evaluate(ev, table, resolver.NewEnv(frame))
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestPriorityHitPolicy(t *testing.T) {
	table := &model.DecisionTable{
		Name:      "Priority",
		HitPolicy: model.Priority,
		Inputs:    []model.InputClause{{Label: "x", Expression: mustExpr(t, "x")}},
		Outputs:   []model.OutputClause{{Name: "level", Priority: []string{"Senior", "Adult", "Minor"}}},
		Rules: []model.Rule{
			{Tests: []ast.Node{mustUnaryTest(t, "-")}, Outputs: []ast.Node{mustExpr(t, `"Minor"`)}},
			{Tests: []ast.Node{mustUnaryTest(t, "-")}, Outputs: []ast.Node{mustExpr(t, `"Senior"`)}},
		},
	}
	require.NoError(t, table.Validate())

	ev := evaluator.New(evaluator.DefaultOptions(), nil, nil)
	frame := resolver.NewFrame()
	frame.Bind("x", types.NumberFromInt(1))
	v, err := Evaluate(ev, table, resolver.NewEnv(frame))
	require.NoError(t, err)
	assert.Equal(t, "Senior", v.Str)
}

func TestValidateRejectsPriorityWithoutDeclaredList(t *testing.T) {
	table := &model.DecisionTable{
		Name:      "Priority",
		HitPolicy: model.Priority,
		Outputs:   []model.OutputClause{{Name: "level"}},
	}
	assert.Error(t, table.Validate())
}
