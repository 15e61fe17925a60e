package evaluator

import (
	"github.com/dmnfeel/engine/core/ast"
	"github.com/dmnfeel/engine/core/types"
	"github.com/dmnfeel/engine/runtime/resolver"
)

func (ev *Evaluator) evalCall(n *ast.FnCall, env *resolver.Env) (types.Value, error) {
	name, ok := calleeName(n.Callee)
	if !ok {
		callee, err := ev.Eval(n.Callee, env)
		if err != nil {
			return types.Null, err
		}
		return ev.invokeValue(callee, n, env)
	}

	args, err := ev.evalArgs(n, env)
	if err != nil {
		return types.Null, err
	}

	if b, found := ev.BKMs.Get(name); found {
		return ev.invokeBKM(b.Params, b.Body, args, env, n.Span())
	}

	// A name bound to a function literal (e.g. a context entry or `for`
	// variable) is callable like a BKM; this is checked before built-ins so
	// a locally defined function can shadow a built-in of the same name.
	if v, found := env.Lookup(name); found && v.Kind == types.KindFunction {
		return v.Fn.Call(args), nil
	}

	if fn, found := builtins[name]; found {
		return fn(ev, args), nil
	}

	return ev.recoverNull(n.Span(), "unknown function: "+name)
}

func calleeName(n ast.Node) (string, bool) {
	if name, ok := n.(*ast.Name); ok {
		return name.Ident, true
	}
	return "", false
}

func (ev *Evaluator) evalArgs(n *ast.FnCall, env *resolver.Env) ([]types.Value, error) {
	args := make([]types.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := ev.Eval(a, env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func (ev *Evaluator) invokeValue(callee types.Value, n *ast.FnCall, env *resolver.Env) (types.Value, error) {
	if callee.Kind != types.KindFunction {
		return ev.recoverNull(n.Span(), "call target is not a function")
	}
	args, err := ev.evalArgs(n, env)
	if err != nil {
		return types.Null, err
	}
	return callee.Fn.Call(args), nil
}

// invokeBKM evaluates a Business Knowledge Model body with params bound
// positionally, enforcing the recursion-depth cap. The body runs against
// env's root frame only, not the caller's full frame stack: a BKM is a
// named, parameterized unit invoked by name from anywhere, so its body must
// not see the calling expression's local bindings (for/some/every
// iterators, an enclosing BKM's own parameters) — only its own parameters
// and the model's input context.
func (ev *Evaluator) invokeBKM(params []string, body ast.Node, args []types.Value, env *resolver.Env, span types.Span) (types.Value, error) {
	ev.depth++
	defer func() { ev.depth-- }()
	if ev.depth > ev.Options.MaxRecursionDepth {
		return types.Null, &EvalError{Kind: RecursionLimit, Message: "BKM recursion depth exceeded", Span: span}
	}
	frame := resolver.NewFrame()
	for i, p := range params {
		if i < len(args) {
			frame.Bind(p, args[i])
		} else {
			frame.Bind(p, types.Null)
		}
	}
	return ev.Eval(body, env.Root().Push(frame))
}
