package evaluator

import (
	"github.com/dmnfeel/engine/core/ast"
	"github.com/dmnfeel/engine/core/types"
	"github.com/dmnfeel/engine/runtime/resolver"
)

// MatchUnaryTest reports whether input satisfies test, following the
// decision-table matching rule: a wildcard always matches; a bare
// expression is an implicit equality test; a leading relational operator
// applies to input; a range tests membership; a Disjunction matches if
// any alternative matches.
func (ev *Evaluator) MatchUnaryTest(test ast.Node, input types.Value, env *resolver.Env) (bool, error) {
	switch n := test.(type) {
	case *ast.Disjunction:
		for _, alt := range n.Tests {
			ok, err := ev.MatchUnaryTest(alt, input, env)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case *ast.UnaryTest:
		return ev.matchSingleUnaryTest(n, input, env)
	case *ast.RangeLit:
		v, err := ev.evalRangeLit(n, env)
		if err != nil {
			return false, err
		}
		return ev.testRange(input, v.Rng).Truthy(), nil
	default:
		v, err := ev.Eval(test, env)
		if err != nil {
			return false, err
		}
		return types.Equal(input, v), nil
	}
}

func (ev *Evaluator) matchSingleUnaryTest(n *ast.UnaryTest, input types.Value, env *resolver.Env) (bool, error) {
	if n.Op == ast.UTWildcard {
		return true, nil
	}
	operand, err := ev.Eval(n.Operand, env)
	if err != nil {
		return false, err
	}
	if (input.IsNull() || operand.IsNull()) && n.Op != ast.UTEquals {
		return false, nil
	}
	switch n.Op {
	case ast.UTEquals:
		return types.Equal(input, operand), nil
	case ast.UTNeq:
		return !types.Equal(input, operand), nil
	case ast.UTLt, ast.UTLte, ast.UTGt, ast.UTGte:
		c, ok := types.Compare(input, operand)
		if !ok {
			return false, nil
		}
		switch n.Op {
		case ast.UTLt:
			return c < 0, nil
		case ast.UTLte:
			return c <= 0, nil
		case ast.UTGt:
			return c > 0, nil
		case ast.UTGte:
			return c >= 0, nil
		}
	}
	return false, nil
}
