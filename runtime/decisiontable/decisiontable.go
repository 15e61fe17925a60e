// Package decisiontable interprets a model.DecisionTable against a binding
// environment: evaluating input clauses, matching rules via unary tests,
// and dispatching on hit policy to produce a final Value.
package decisiontable

import (
	"github.com/dmnfeel/engine/core/model"
	"github.com/dmnfeel/engine/core/types"
	"github.com/dmnfeel/engine/runtime/evaluator"
	"github.com/dmnfeel/engine/runtime/resolver"
)

// ErrorKind classifies a hit-policy dispatch failure.
type ErrorKind int

const (
	UniqueViolation ErrorKind = iota
	AnyViolation
)

func (k ErrorKind) String() string {
	switch k {
	case UniqueViolation:
		return "UniqueViolation"
	case AnyViolation:
		return "AnyViolation"
	default:
		return "Unknown"
	}
}

// HitPolicyError is raised by UNIQUE (more than one match) and ANY
// (matching rules disagree on output); it surfaces at the decision
// boundary, leaving the decision's result Null.
type HitPolicyError struct {
	Kind  ErrorKind
	Table string
}

func (e *HitPolicyError) Error() string {
	return "decision table " + e.Table + ": " + e.Kind.String()
}

// matchedRule pairs a matching rule with its evaluated output tuple.
type matchedRule struct {
	index   int
	outputs []types.Value
}

// Evaluate runs t against env, returning the shaped result Value, or a
// *HitPolicyError for UNIQUE/ANY violations.
func Evaluate(ev *evaluator.Evaluator, t *model.DecisionTable, env *resolver.Env) (types.Value, error) {
	inputs := make([]types.Value, len(t.Inputs))
	for i, clause := range t.Inputs {
		v, err := ev.Eval(clause.Expression, env)
		if err != nil {
			return types.Null, err
		}
		inputs[i] = v
	}

	var matches []matchedRule
	for ri, rule := range t.Rules {
		ok, err := matchRule(ev, rule, inputs, env)
		if err != nil {
			return types.Null, err
		}
		if !ok {
			continue
		}
		outputs := make([]types.Value, len(rule.Outputs))
		for oi, expr := range rule.Outputs {
			v, err := ev.Eval(expr, env)
			if err != nil {
				return types.Null, err
			}
			outputs[oi] = v
		}
		matches = append(matches, matchedRule{index: ri, outputs: outputs})
	}

	return dispatch(t, matches)
}

func matchRule(ev *evaluator.Evaluator, rule model.Rule, inputs []types.Value, env *resolver.Env) (bool, error) {
	for j, test := range rule.Tests {
		ok, err := ev.MatchUnaryTest(test, inputs[j], env)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func dispatch(t *model.DecisionTable, matches []matchedRule) (types.Value, error) {
	switch t.HitPolicy {
	case model.Unique:
		if len(matches) == 0 {
			return types.Null, nil
		}
		if len(matches) > 1 {
			return types.Null, &HitPolicyError{Kind: UniqueViolation, Table: t.Name}
		}
		return shapeSingle(t, matches[0].outputs), nil

	case model.First:
		if len(matches) == 0 {
			return types.Null, nil
		}
		return shapeSingle(t, matches[0].outputs), nil

	case model.Any:
		if len(matches) == 0 {
			return types.Null, nil
		}
		first := matches[0].outputs
		for _, m := range matches[1:] {
			if !outputsEqual(first, m.outputs) {
				return types.Null, &HitPolicyError{Kind: AnyViolation, Table: t.Name}
			}
		}
		return shapeSingle(t, first), nil

	case model.Priority:
		if len(matches) == 0 {
			return types.Null, nil
		}
		best := matches[0]
		for _, m := range matches[1:] {
			if priorityLess(t, best.outputs, m.outputs) {
				best = m
			}
		}
		return shapeSingle(t, best.outputs), nil

	case model.Collect:
		tuples := make([][]types.Value, len(matches))
		for i, m := range matches {
			tuples[i] = m.outputs
		}
		if t.Aggregation == model.NoAggregation {
			return shapeList(t, tuples), nil
		}
		return aggregate(t, tuples), nil

	case model.RuleOrder:
		tuples := make([][]types.Value, len(matches))
		for i, m := range matches {
			tuples[i] = m.outputs
		}
		return shapeList(t, tuples), nil

	case model.OutputOrder:
		ordered := append([]matchedRule(nil), matches...)
		sortByPriority(t, ordered)
		tuples := make([][]types.Value, len(ordered))
		for i, m := range ordered {
			tuples[i] = m.outputs
		}
		return shapeList(t, tuples), nil

	default:
		return types.Null, nil
	}
}

func outputsEqual(a, b []types.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !types.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// priorityRank returns the index of v within clause's declared priority
// list (lower is more preferred), or len(Priority) if v is not listed.
func priorityRank(clause model.OutputClause, v types.Value) int {
	s := v.String()
	for i, p := range clause.Priority {
		if p == s {
			return i
		}
	}
	return len(clause.Priority)
}

// priorityLess reports whether candidate outranks current: the first
// output column decides, ties broken by subsequent columns.
func priorityLess(t *model.DecisionTable, current, candidate []types.Value) bool {
	for i, clause := range t.Outputs {
		cr := priorityRank(clause, current[i])
		kr := priorityRank(clause, candidate[i])
		if kr != cr {
			return kr < cr
		}
	}
	return false
}

func sortByPriority(t *model.DecisionTable, matches []matchedRule) {
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && priorityLess(t, matches[j-1].outputs, matches[j].outputs); j-- {
			matches[j-1], matches[j] = matches[j], matches[j-1]
		}
	}
}

// shapeSingle produces the scalar result for a single-output table, or a
// context for a multi-output table.
func shapeSingle(t *model.DecisionTable, outputs []types.Value) types.Value {
	if len(t.Outputs) == 1 {
		return outputs[0]
	}
	return contextOf(t, outputs)
}

func shapeList(t *model.DecisionTable, tuples [][]types.Value) types.Value {
	items := make([]types.Value, len(tuples))
	for i, tuple := range tuples {
		items[i] = shapeSingle(t, tuple)
	}
	return types.List(items)
}

func contextOf(t *model.DecisionTable, outputs []types.Value) types.Value {
	ctx := types.NewContext()
	for i, clause := range t.Outputs {
		ctx.Set(clause.Name, outputs[i])
	}
	return types.FromContext(ctx)
}

// aggregate reduces COLLECT's matched tuples per the declared Aggregation.
// Only meaningful for single-output tables; COUNT always returns a number,
// SUM/MIN/MAX skip Nulls and require numeric outputs.
func aggregate(t *model.DecisionTable, tuples [][]types.Value) types.Value {
	if t.Aggregation == model.Count {
		return types.NumberFromInt(int64(len(tuples)))
	}
	var nums []types.Value
	for _, tuple := range tuples {
		v := shapeSingle(t, tuple)
		if !v.IsNull() && v.Kind == types.KindNumber {
			nums = append(nums, v)
		}
	}
	if len(nums) == 0 {
		return types.Null
	}
	acc := nums[0].Num
	for _, v := range nums[1:] {
		switch t.Aggregation {
		case model.Sum:
			acc = acc.Add(v.Num)
		case model.Min:
			if v.Num.LessThan(acc) {
				acc = v.Num
			}
		case model.Max:
			if v.Num.GreaterThan(acc) {
				acc = v.Num
			}
		}
	}
	return types.Number(acc)
}
