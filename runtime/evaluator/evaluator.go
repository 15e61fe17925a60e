// Package evaluator implements the tree-walking FEEL evaluator: it turns an
// AST and a binding environment into a Value, applying ternary logic, null
// propagation, and arithmetic coercion as it goes.
package evaluator

import (
	"github.com/dmnfeel/engine/core/ast"
	"github.com/dmnfeel/engine/core/types"
	"github.com/dmnfeel/engine/diagnostics"
	"github.com/dmnfeel/engine/runtime/bkm"
	"github.com/dmnfeel/engine/runtime/resolver"
)

// ErrorKind classifies an EvalError.
type ErrorKind int

const (
	TypeMismatch ErrorKind = iota
	NameNotFound
	DivisionByZero
	HitPolicyViolation
	RecursionLimit
	IterationLimit
)

func (k ErrorKind) String() string {
	switch k {
	case TypeMismatch:
		return "TypeMismatch"
	case NameNotFound:
		return "NameNotFound"
	case DivisionByZero:
		return "DivisionByZero"
	case HitPolicyViolation:
		return "HitPolicyViolation"
	case RecursionLimit:
		return "RecursionLimit"
	case IterationLimit:
		return "IterationLimit"
	default:
		return "Unknown"
	}
}

// EvalError is returned for surfaced failures: RecursionLimit and
// IterationLimit. No EvalError of kind HitPolicyViolation is constructed;
// the decisiontable package reports hit-policy violations as its own
// *HitPolicyError. Coercion and lookup failures recover locally to Null
// and are never returned as an error, only optionally noted as a
// diagnostic under strict mode.
type EvalError struct {
	Kind    ErrorKind
	Message string
	Span    types.Span
}

func (e *EvalError) Error() string { return e.Message }

// Options configures evaluator behavior (mirrored by engine.EvalOptions
// at the external boundary).
type Options struct {
	StrictMode        bool
	MaxRecursionDepth int // default 64
	MaxIterations     int // 0 = unbounded
}

// DefaultOptions returns the engine's default evaluation options.
func DefaultOptions() Options {
	return Options{MaxRecursionDepth: 64}
}

// Evaluator walks an AST against a binding environment. It is not
// goroutine-safe: create one per Evaluate call.
type Evaluator struct {
	Options    Options
	BKMs       *bkm.Registry
	Diagnostic diagnostics.Sink
	DecisionName string

	depth int
}

// New returns an Evaluator. bkms may be nil if no BKMs are registered.
func New(opts Options, bkms *bkm.Registry, sink diagnostics.Sink) *Evaluator {
	if bkms == nil {
		bkms = bkm.NewRegistry()
	}
	return &Evaluator{Options: opts, BKMs: bkms, Diagnostic: sink}
}

func (ev *Evaluator) note(severity diagnostics.Severity, span types.Span, message string) {
	if ev.Diagnostic == nil {
		return
	}
	ev.Diagnostic(diagnostics.Diagnostic{Severity: severity, Decision: ev.DecisionName, Message: message, Span: span})
}

// recoverNull returns Null for a recoverable failure, noting a diagnostic
// under strict mode.
func (ev *Evaluator) recoverNull(span types.Span, message string) (types.Value, error) {
	if ev.Options.StrictMode {
		ev.note(diagnostics.SeverityError, span, message)
	}
	return types.Null, nil
}

// Eval evaluates node against env. The returned error is non-nil only for
// surfaced failures (RecursionLimit, IterationLimit); all other failure
// modes recover to types.Null per DMN null-propagation semantics.
func (ev *Evaluator) Eval(node ast.Node, env *resolver.Env) (types.Value, error) {
	switch n := node.(type) {
	case *ast.Literal:
		return n.Value, nil
	case *ast.Name:
		if v, ok := env.Lookup(n.Ident); ok {
			return v, nil
		}
		return ev.recoverNull(n.Span(), "name not found: "+n.Ident)
	case *ast.Neg:
		return ev.evalNeg(n, env)
	case *ast.Not:
		return ev.evalNot(n, env)
	case *ast.BinOp:
		return ev.evalBinOp(n, env)
	case *ast.If:
		return ev.evalIf(n, env)
	case *ast.ForLoop:
		return ev.evalFor(n, env)
	case *ast.Quantified:
		return ev.evalQuantified(n, env)
	case *ast.FnCall:
		return ev.evalCall(n, env)
	case *ast.Path:
		return ev.evalPath(n, env)
	case *ast.Index:
		return ev.evalIndex(n, env)
	case *ast.ContextLit:
		return ev.evalContextLit(n, env)
	case *ast.ListLit:
		return ev.evalListLit(n, env)
	case *ast.RangeLit:
		return ev.evalRangeLit(n, env)
	case *ast.FunctionLit:
		return ev.evalFunctionLit(n, env), nil
	default:
		return types.Null, nil
	}
}

func (ev *Evaluator) evalNeg(n *ast.Neg, env *resolver.Env) (types.Value, error) {
	v, err := ev.Eval(n.Operand, env)
	if err != nil {
		return types.Null, err
	}
	num, ok := ev.toNumber(v)
	if !ok {
		return ev.recoverNull(n.Span(), "cannot negate non-numeric value")
	}
	return types.Number(num.Neg()), nil
}

func (ev *Evaluator) evalNot(n *ast.Not, env *resolver.Env) (types.Value, error) {
	v, err := ev.Eval(n.Operand, env)
	if err != nil {
		return types.Null, err
	}
	return ternaryNot(v), nil
}

func (ev *Evaluator) evalIf(n *ast.If, env *resolver.Env) (types.Value, error) {
	cond, err := ev.Eval(n.Cond, env)
	if err != nil {
		return types.Null, err
	}
	if cond.Kind == types.KindBoolean && cond.Bool {
		return ev.Eval(n.Then, env)
	}
	return ev.Eval(n.Else, env)
}

func (ev *Evaluator) evalFunctionLit(n *ast.FunctionLit, env *resolver.Env) types.Value {
	body, params := n.Body, n.Params
	captured := env
	return types.FromFunction(&types.Function{
		Name:   "anonymous",
		Params: params,
		Call: func(args []types.Value) types.Value {
			ev.depth++
			defer func() { ev.depth-- }()
			if ev.depth > ev.Options.MaxRecursionDepth {
				ev.note(diagnostics.SeverityError, n.Span(), "function recursion depth exceeded")
				return types.Null
			}
			frame := resolver.NewFrame()
			for i, p := range params {
				if i < len(args) {
					frame.Bind(p, args[i])
				} else {
					frame.Bind(p, types.Null)
				}
			}
			v, _ := ev.Eval(body, captured.Push(frame))
			return v
		},
	})
}
