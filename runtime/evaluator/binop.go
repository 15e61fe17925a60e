package evaluator

import (
	"github.com/dmnfeel/engine/core/ast"
	"github.com/dmnfeel/engine/core/types"
	"github.com/dmnfeel/engine/runtime/resolver"
	"github.com/shopspring/decimal"
)

func (ev *Evaluator) evalBinOp(n *ast.BinOp, env *resolver.Env) (types.Value, error) {
	// and/or resolve both operands before applying ternary logic: the
	// resolver must not short-circuit around an undefined name, even though
	// the truth table itself may short-circuit on the value.
	switch n.Kind {
	case ast.OpAnd:
		lhs, err := ev.Eval(n.Lhs, env)
		if err != nil {
			return types.Null, err
		}
		rhs, err := ev.Eval(n.Rhs, env)
		if err != nil {
			return types.Null, err
		}
		return ternaryAnd(lhs, rhs), nil
	case ast.OpOr:
		lhs, err := ev.Eval(n.Lhs, env)
		if err != nil {
			return types.Null, err
		}
		rhs, err := ev.Eval(n.Rhs, env)
		if err != nil {
			return types.Null, err
		}
		return ternaryOr(lhs, rhs), nil
	}

	lhs, err := ev.Eval(n.Lhs, env)
	if err != nil {
		return types.Null, err
	}

	if n.Kind == ast.OpIn {
		return ev.evalIn(lhs, n.Rhs, env)
	}
	if n.Kind == ast.OpBetween {
		return ev.evalBetween(lhs, n.Rhs, env)
	}

	rhs, err := ev.Eval(n.Rhs, env)
	if err != nil {
		return types.Null, err
	}

	switch n.Kind {
	case ast.OpAdd:
		return ev.evalAdd(n.Span(), lhs, rhs)
	case ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpPow:
		return ev.evalArith(n.Span(), n.Kind, lhs, rhs)
	case ast.OpEq:
		if lhs.IsNull() || rhs.IsNull() {
			return types.Bool(lhs.IsNull() && rhs.IsNull()), nil
		}
		return types.Bool(types.Equal(lhs, rhs)), nil
	case ast.OpNeq:
		if lhs.IsNull() || rhs.IsNull() {
			return types.Bool(!(lhs.IsNull() && rhs.IsNull())), nil
		}
		return types.Bool(!types.Equal(lhs, rhs)), nil
	case ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
		return ev.evalCompare(n.Span(), n.Kind, lhs, rhs)
	default:
		return ev.recoverNull(n.Span(), "unsupported operator")
	}
}

func (ev *Evaluator) evalAdd(span types.Span, lhs, rhs types.Value) (types.Value, error) {
	if lhs.IsNull() || rhs.IsNull() {
		return ev.recoverNull(span, "null operand to +")
	}
	if lhs.Kind == types.KindString || rhs.Kind == types.KindString {
		ls, lok := ev.toStringForConcat(lhs)
		rs, rok := ev.toStringForConcat(rhs)
		if !lok || !rok {
			return ev.recoverNull(span, "cannot coerce operand to string for +")
		}
		return types.String(ls + rs), nil
	}
	return ev.evalArith(span, ast.OpAdd, lhs, rhs)
}

func (ev *Evaluator) toStringForConcat(v types.Value) (string, bool) {
	if v.Kind == types.KindString {
		return v.Str, true
	}
	return "", false
}

func (ev *Evaluator) evalArith(span types.Span, kind ast.BinOpKind, lhs, rhs types.Value) (types.Value, error) {
	if lhs.IsNull() || rhs.IsNull() {
		return ev.recoverNull(span, "null operand to arithmetic operator")
	}
	a, aok := ev.toNumber(lhs)
	b, bok := ev.toNumber(rhs)
	if !aok || !bok {
		return ev.recoverNull(span, "cannot coerce operand to number")
	}
	switch kind {
	case ast.OpAdd:
		return types.Number(a.Add(b)), nil
	case ast.OpSub:
		return types.Number(a.Sub(b)), nil
	case ast.OpMul:
		return types.Number(a.Mul(b)), nil
	case ast.OpDiv:
		if b.IsZero() {
			return ev.recoverNull(span, "division by zero")
		}
		return types.Number(a.Div(b)), nil
	case ast.OpPow:
		f, _ := b.Float64()
		return types.Number(a.Pow(decimal.NewFromFloat(f))), nil
	default:
		return ev.recoverNull(span, "unsupported arithmetic operator")
	}
}

func (ev *Evaluator) evalCompare(span types.Span, kind ast.BinOpKind, lhs, rhs types.Value) (types.Value, error) {
	c, ok := types.Compare(lhs, rhs)
	if !ok {
		return ev.recoverNull(span, "values are not comparable")
	}
	switch kind {
	case ast.OpLt:
		return types.Bool(c < 0), nil
	case ast.OpLte:
		return types.Bool(c <= 0), nil
	case ast.OpGt:
		return types.Bool(c > 0), nil
	case ast.OpGte:
		return types.Bool(c >= 0), nil
	default:
		return ev.recoverNull(span, "unsupported comparison operator")
	}
}

func (ev *Evaluator) evalIn(lhs types.Value, rhsNode ast.Node, env *resolver.Env) (types.Value, error) {
	rhs, err := ev.Eval(rhsNode, env)
	if err != nil {
		return types.Null, err
	}
	if lhs.IsNull() {
		return ev.recoverNull(rhsNode.Span(), "null left operand to in")
	}
	switch rhs.Kind {
	case types.KindRange:
		return ev.testRange(lhs, rhs.Rng), nil
	case types.KindList:
		for _, item := range rhs.List {
			if types.Equal(lhs, item) {
				return types.Bool(true), nil
			}
		}
		return types.Bool(false), nil
	default:
		return types.Bool(types.Equal(lhs, rhs)), nil
	}
}

func (ev *Evaluator) evalBetween(lhs types.Value, rhsNode ast.Node, env *resolver.Env) (types.Value, error) {
	rng, ok := rhsNode.(*ast.RangeLit)
	if !ok {
		return ev.recoverNull(rhsNode.Span(), "malformed between range")
	}
	low, err := ev.Eval(rng.Low, env)
	if err != nil {
		return types.Null, err
	}
	high, err := ev.Eval(rng.High, env)
	if err != nil {
		return types.Null, err
	}
	if lhs.IsNull() {
		return ev.recoverNull(rhsNode.Span(), "null left operand to between")
	}
	return ev.testRange(lhs, &types.Range{Low: low, High: high, LowInclusive: true, HighInclusive: true}), nil
}

func (ev *Evaluator) testRange(v types.Value, r *types.Range) types.Value {
	if r.Low.IsNull() || r.High.IsNull() {
		return types.Null
	}
	loCmp, ok1 := types.Compare(v, r.Low)
	hiCmp, ok2 := types.Compare(v, r.High)
	if !ok1 || !ok2 {
		return types.Null
	}
	lowOK := loCmp > 0 || (loCmp == 0 && r.LowInclusive)
	highOK := hiCmp < 0 || (hiCmp == 0 && r.HighInclusive)
	return types.Bool(lowOK && highOK)
}
