package evaluator

import (
	"github.com/dmnfeel/engine/core/ast"
	"github.com/dmnfeel/engine/core/types"
	"github.com/dmnfeel/engine/runtime/resolver"
)

// expandIterable turns a for/quantified source Value into the sequence of
// Values to bind the iterator variable to: a list expands to its elements,
// a range expands to the integers it spans.
func (ev *Evaluator) expandIterable(v types.Value) ([]types.Value, bool) {
	switch v.Kind {
	case types.KindList:
		return v.List, true
	case types.KindRange:
		lo, lok := ev.toNumber(v.Rng.Low)
		hi, hok := ev.toNumber(v.Rng.High)
		if !lok || !hok {
			return nil, false
		}
		var out []types.Value
		start := lo.IntPart()
		if !v.Rng.LowInclusive {
			start++
		}
		end := hi.IntPart()
		if !v.Rng.HighInclusive {
			end--
		}
		for i := start; i <= end; i++ {
			out = append(out, types.NumberFromInt(i))
		}
		return out, true
	default:
		return nil, false
	}
}

// bindIterators evaluates each iterator's source and returns the cartesian
// product of frames (one binding per combination), in left-to-right,
// nested iteration order.
func (ev *Evaluator) bindIterators(iterators []ast.Iterator, env *resolver.Env) ([]*resolver.Env, error) {
	envs := []*resolver.Env{env}
	for _, it := range iterators {
		var next []*resolver.Env
		for _, e := range envs {
			src, err := ev.Eval(it.Source, e)
			if err != nil {
				return nil, err
			}
			items, ok := ev.expandIterable(src)
			if !ok {
				continue
			}
			for _, item := range items {
				frame := resolver.NewFrame()
				frame.Bind(it.Name, item)
				next = append(next, e.Push(frame))
			}
		}
		envs = next
	}
	return envs, nil
}

func (ev *Evaluator) checkIterationBudget(n int, span types.Span) error {
	if ev.Options.MaxIterations > 0 && n > ev.Options.MaxIterations {
		return &EvalError{Kind: IterationLimit, Message: "iteration limit exceeded", Span: span}
	}
	return nil
}

func (ev *Evaluator) evalFor(n *ast.ForLoop, env *resolver.Env) (types.Value, error) {
	envs, err := ev.bindIterators(n.Iterators, env)
	if err != nil {
		return types.Null, err
	}
	if err := ev.checkIterationBudget(len(envs), n.Span()); err != nil {
		return types.Null, err
	}
	results := make([]types.Value, 0, len(envs))
	for _, e := range envs {
		v, err := ev.Eval(n.Body, e)
		if err != nil {
			return types.Null, err
		}
		results = append(results, v)
	}
	return types.List(results), nil
}

func (ev *Evaluator) evalQuantified(n *ast.Quantified, env *resolver.Env) (types.Value, error) {
	envs, err := ev.bindIterators(n.Iterators, env)
	if err != nil {
		return types.Null, err
	}
	if err := ev.checkIterationBudget(len(envs), n.Span()); err != nil {
		return types.Null, err
	}
	sawNull := false
	sawTrue := false
	sawFalse := false
	for _, e := range envs {
		v, err := ev.Eval(n.Predicate, e)
		if err != nil {
			return types.Null, err
		}
		b, isBool, _ := ternaryKind(v)
		switch {
		case isBool && b:
			sawTrue = true
		case isBool && !b:
			sawFalse = true
		default:
			sawNull = true
		}
	}
	if n.Kind == ast.QuantSome {
		if sawTrue {
			return types.Bool(true), nil
		}
		if sawNull {
			return types.Null, nil
		}
		return types.Bool(false), nil
	}
	// every
	if sawFalse {
		return types.Bool(false), nil
	}
	if sawNull {
		return types.Null, nil
	}
	return types.Bool(true), nil
}

func (ev *Evaluator) evalPath(n *ast.Path, env *resolver.Env) (types.Value, error) {
	base, err := ev.Eval(n.Expr, env)
	if err != nil {
		return types.Null, err
	}
	if base.Kind != types.KindContext {
		return ev.recoverNull(n.Span(), "path access on non-context value")
	}
	frame := resolver.NewFrame()
	for _, k := range base.Ctx.Keys() {
		v, _ := base.Ctx.Get(k)
		frame.Bind(k, v)
	}
	if v, ok := frame.Lookup(n.Name); ok {
		return v, nil
	}
	return ev.recoverNull(n.Span(), "name not found in context: "+n.Name)
}

func (ev *Evaluator) evalIndex(n *ast.Index, env *resolver.Env) (types.Value, error) {
	base, err := ev.Eval(n.Expr, env)
	if err != nil {
		return types.Null, err
	}
	idxVal, err := ev.Eval(n.Idx, env)
	if err != nil {
		return types.Null, err
	}
	if base.Kind != types.KindList {
		return ev.recoverNull(n.Span(), "index access on non-list value")
	}
	idxNum, ok := ev.toNumber(idxVal)
	if !ok {
		return ev.recoverNull(n.Span(), "list index does not coerce to number")
	}
	i := int(idxNum.IntPart())
	length := len(base.List)
	if i < 0 {
		i = length + i + 1
	}
	if i < 1 || i > length {
		return ev.recoverNull(n.Span(), "list index out of bounds")
	}
	return base.List[i-1], nil
}

func (ev *Evaluator) evalContextLit(n *ast.ContextLit, env *resolver.Env) (types.Value, error) {
	ctx := types.NewContext()
	frame := resolver.NewFrame()
	inner := env.Push(frame)
	for _, entry := range n.Entries {
		v, err := ev.Eval(entry.Value, inner)
		if err != nil {
			return types.Null, err
		}
		ctx.Set(entry.Key, v)
		frame.Bind(entry.Key, v)
	}
	return types.FromContext(ctx), nil
}

func (ev *Evaluator) evalListLit(n *ast.ListLit, env *resolver.Env) (types.Value, error) {
	items := make([]types.Value, 0, len(n.Items))
	for _, item := range n.Items {
		v, err := ev.Eval(item, env)
		if err != nil {
			return types.Null, err
		}
		items = append(items, v)
	}
	return types.List(items), nil
}

func (ev *Evaluator) evalRangeLit(n *ast.RangeLit, env *resolver.Env) (types.Value, error) {
	lo, err := ev.Eval(n.Low, env)
	if err != nil {
		return types.Null, err
	}
	hi, err := ev.Eval(n.High, env)
	if err != nil {
		return types.Null, err
	}
	return types.FromRange(&types.Range{Low: lo, High: hi, LowInclusive: n.LowInclusive, HighInclusive: n.HighInclusive}), nil
}
