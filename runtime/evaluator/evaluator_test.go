package evaluator

import (
	"testing"

	"github.com/dmnfeel/engine/core/types"
	"github.com/dmnfeel/engine/runtime/parser"
	"github.com/dmnfeel/engine/runtime/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eval(t *testing.T, src string, bindings map[string]types.Value) types.Value {
	t.Helper()
	node, err := parser.ParseExpression(src)
	require.NoError(t, err, src)
	frame := resolver.NewFrame()
	for k, v := range bindings {
		frame.Bind(k, v)
	}
	env := resolver.NewEnv(frame)
	ev := New(DefaultOptions(), nil, nil)
	v, err := ev.Eval(node, env)
	require.NoError(t, err, src)
	return v
}

func TestTernaryTruthTables(t *testing.T) {
	cases := []struct {
		src  string
		env  map[string]types.Value
		want types.Value
	}{
		{"A and B", map[string]types.Value{"A": types.Bool(true), "B": types.Null}, types.Null},
		{"A and B", map[string]types.Value{"A": types.Bool(false), "B": types.Null}, types.Bool(false)},
		{"A or B", map[string]types.Value{"A": types.Bool(true), "B": types.Null}, types.Bool(true)},
		{"A or B", map[string]types.Value{"A": types.Bool(false), "B": types.Null}, types.Null},
		{"not A", map[string]types.Value{"A": types.Null}, types.Null},
	}
	for _, c := range cases {
		got := eval(t, c.src, c.env)
		assert.True(t, types.Equal(c.want, got), "%s: want %v got %v", c.src, c.want, got)
	}
}

func TestNullPropagationArithmetic(t *testing.T) {
	v := eval(t, "1 + X", map[string]types.Value{"X": types.Null})
	assert.True(t, v.IsNull())

	v = eval(t, "X + 1", map[string]types.Value{"X": types.Null})
	assert.True(t, v.IsNull())
}

func TestDivisionByZero(t *testing.T) {
	v := eval(t, "1 / 0", nil)
	assert.True(t, v.IsNull())
}

func TestStringConcatenation(t *testing.T) {
	v := eval(t, `"Hello " + Full Name`, map[string]types.Value{"Full Name": types.String("John Doe")})
	require.Equal(t, types.KindString, v.Kind)
	assert.Equal(t, "Hello John Doe", v.Str)
}

func TestIfNonBooleanConditionTakesElse(t *testing.T) {
	v := eval(t, `if X then "yes" else "no"`, map[string]types.Value{"X": types.Null})
	assert.Equal(t, "no", v.Str)
}

func TestForLoopCollectsResults(t *testing.T) {
	v := eval(t, "for x in [1,2,3] return x * 2", nil)
	require.Equal(t, types.KindList, v.Kind)
	require.Len(t, v.List, 3)
	assert.Equal(t, "2", v.List[0].Num.String())
	assert.Equal(t, "6", v.List[2].Num.String())
}

func TestSomeEveryTernary(t *testing.T) {
	v := eval(t, "some x in [1,2,3] satisfies x > 2", nil)
	assert.True(t, v.Truthy())

	v = eval(t, "every x in [1,2,3] satisfies x > 0", nil)
	assert.True(t, v.Truthy())
}

func TestPathAndIndex(t *testing.T) {
	ctx := types.NewContext()
	ctx.Set("Full Name", types.String("Jane"))
	v := eval(t, "Person.Full Name", map[string]types.Value{"Person": types.FromContext(ctx)})
	assert.Equal(t, "Jane", v.Str)

	v = eval(t, "[10,20,30][-1]", nil)
	assert.Equal(t, "30", v.Num.String())
}

func TestBuiltinStringFunctions(t *testing.T) {
	v := eval(t, `upper case("abc")`, nil)
	assert.Equal(t, "ABC", v.Str)

	v = eval(t, `string length("hello")`, nil)
	assert.Equal(t, "5", v.Num.String())
}

func TestBuiltinNumericFunctions(t *testing.T) {
	v := eval(t, "sum([1,2,3])", nil)
	assert.Equal(t, "6", v.Num.String())

	v = eval(t, "max(1,5,3)", nil)
	assert.Equal(t, "5", v.Num.String())
}

func TestBetweenOperator(t *testing.T) {
	v := eval(t, "x between 1 and 10", map[string]types.Value{"x": types.NumberFromInt(5)})
	assert.True(t, v.Truthy())

	v = eval(t, "x between 1 and 10", map[string]types.Value{"x": types.NumberFromInt(20)})
	assert.False(t, v.Truthy())
}

func TestRecursionLimit(t *testing.T) {
	// invokeBKM enforces MaxRecursionDepth; exercised directly via invokeBKM
	// since registering a self-recursive BKM requires the bkm package.
	ev := New(Options{MaxRecursionDepth: 2}, nil, nil)
	ev.depth = 3
	node, err := parser.ParseExpression("1")
	require.NoError(t, err)
	_, err = ev.invokeBKM(nil, node, nil, resolver.NewEnv(resolver.NewFrame()), node.Span())
	require.Error(t, err)
	evalErr, ok := err.(*EvalError)
	require.True(t, ok)
	assert.Equal(t, RecursionLimit, evalErr.Kind)
}
