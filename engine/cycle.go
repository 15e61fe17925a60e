package engine

import (
	"strings"

	"github.com/dmnfeel/engine/core/ast"
	"github.com/dmnfeel/engine/core/model"
)

// detectCycle walks the FnCall graph among the decisions/BKMs being loaded
// together and reports the first cycle found, as a " -> "-joined chain of
// names, or "" if none. Cycles are rejected as a load-time LoadError
// rather than a runtime recursion concern (BKM self/mutual recursion at
// eval time is bounded instead by Evaluator.Options.MaxRecursionDepth).
func detectCycle(declaredNames map[string]bool, m *model.DmnModel) string {
	bodies := make(map[string]ast.Node, len(m.Literals)+len(m.BKMs))
	for _, l := range m.Literals {
		bodies[l.Name] = l.Expression
	}
	for _, b := range m.BKMs {
		bodies[b.Name] = b.Body
	}
	// Decision tables reference names through input/output expressions;
	// fold every clause into one synthetic body per table so a table that
	// calls back into a BKM that calls the table is still caught.
	for _, t := range m.Tables {
		bodies[t.Name] = tableBody(t)
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(bodies))
	var stack []string

	var visit func(name string) string
	visit = func(name string) string {
		switch state[name] {
		case done:
			return ""
		case visiting:
			stack = append(stack, name)
			return strings.Join(stack, " -> ")
		}
		body, ok := bodies[name]
		if !ok {
			return ""
		}
		state[name] = visiting
		stack = append(stack, name)
		for _, callee := range calledNames(body) {
			if !declaredNames[callee] {
				continue
			}
			if cyc := visit(callee); cyc != "" {
				return cyc
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = done
		return ""
	}

	for name := range bodies {
		if cyc := visit(name); cyc != "" {
			return cyc
		}
	}
	return ""
}

// tableBody folds a table's clause/rule expressions into one synthetic
// composite node purely so calledNames can walk it; it is never evaluated.
func tableBody(t *model.DecisionTable) ast.Node {
	items := make([]ast.Node, 0, len(t.Inputs)+len(t.Rules)*2)
	for _, in := range t.Inputs {
		items = append(items, in.Expression)
	}
	for _, r := range t.Rules {
		items = append(items, r.Tests...)
		items = append(items, r.Outputs...)
	}
	return &ast.ListLit{Items: items}
}

// calledNames collects every bare-name function-call callee reachable in
// node, recursively.
func calledNames(node ast.Node) []string {
	var out []string
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		if n == nil {
			return
		}
		switch v := n.(type) {
		case *ast.FnCall:
			if name, ok := v.Callee.(*ast.Name); ok {
				out = append(out, name.Ident)
			}
			walk(v.Callee)
			for _, a := range v.Args {
				walk(a)
			}
		case *ast.Neg:
			walk(v.Operand)
		case *ast.Not:
			walk(v.Operand)
		case *ast.BinOp:
			walk(v.Lhs)
			walk(v.Rhs)
		case *ast.If:
			walk(v.Cond)
			walk(v.Then)
			walk(v.Else)
		case *ast.ForLoop:
			for _, it := range v.Iterators {
				walk(it.Source)
			}
			walk(v.Body)
		case *ast.Quantified:
			for _, it := range v.Iterators {
				walk(it.Source)
			}
			walk(v.Predicate)
		case *ast.Path:
			walk(v.Expr)
		case *ast.Index:
			walk(v.Expr)
			walk(v.Idx)
		case *ast.ContextLit:
			for _, e := range v.Entries {
				walk(e.Value)
			}
		case *ast.ListLit:
			for _, item := range v.Items {
				walk(item)
			}
		case *ast.RangeLit:
			walk(v.Low)
			walk(v.High)
		case *ast.Disjunction:
			for _, t := range v.Tests {
				walk(t)
			}
		case *ast.UnaryTest:
			walk(v.Operand)
		case *ast.FunctionLit:
			walk(v.Body)
		}
	}
	walk(node)
	return out
}
