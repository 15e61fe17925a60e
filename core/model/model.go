// Package model defines the in-memory DMN model: decision tables, literal
// expression decisions, and business knowledge models, as produced by the
// dmnxml reader and consumed by the engine façade.
package model

import (
	"strconv"

	"github.com/dmnfeel/engine/core/ast"
)

// HitPolicy selects which matching rules of a DecisionTable contribute to
// the output.
type HitPolicy int

const (
	Unique HitPolicy = iota
	First
	Priority
	Any
	Collect
	RuleOrder
	OutputOrder
)

func (h HitPolicy) String() string {
	switch h {
	case Unique:
		return "UNIQUE"
	case First:
		return "FIRST"
	case Priority:
		return "PRIORITY"
	case Any:
		return "ANY"
	case Collect:
		return "COLLECT"
	case RuleOrder:
		return "RULE ORDER"
	case OutputOrder:
		return "OUTPUT ORDER"
	default:
		return "UNKNOWN"
	}
}

// Aggregation reduces a COLLECT hit policy's matched outputs to one value.
type Aggregation int

const (
	NoAggregation Aggregation = iota
	Sum
	Count
	Min
	Max
)

func (a Aggregation) String() string {
	switch a {
	case Sum:
		return "SUM"
	case Count:
		return "COUNT"
	case Min:
		return "MIN"
	case Max:
		return "MAX"
	default:
		return "NONE"
	}
}

// InputClause is one input column: a FEEL expression computing the actual
// value to test against each rule's unary tests in that column.
type InputClause struct {
	Label      string
	Expression ast.Node
}

// OutputClause is one output column. Priority lists the output's declared
// values in descending preference order, used by PRIORITY and OUTPUT ORDER
// hit policies: every output clause using one of those policies must
// declare a priority list, enforced at load time.
type OutputClause struct {
	Name     string
	Priority []string
}

// Rule is one row: a unary-test AST per input column and an output
// expression AST per output column. len(Tests) == len(inputs),
// len(Outputs) == len(outputs), enforced by DecisionTable's Validate.
type Rule struct {
	Tests   []ast.Node
	Outputs []ast.Node
}

// DecisionTable is a complete decision table.
type DecisionTable struct {
	Name        string
	Inputs      []InputClause
	Outputs     []OutputClause
	Rules       []Rule
	HitPolicy   HitPolicy
	Aggregation Aggregation
}

// Validate checks the table-level invariants that load_model must enforce
// before registering a table: uniform rule arity, and that PRIORITY/OUTPUT
// ORDER tables declare a priority list for every output.
func (t *DecisionTable) Validate() error {
	for i, r := range t.Rules {
		if len(r.Tests) != len(t.Inputs) {
			return &ValidationError{Table: t.Name, Message: ruleArityMessage(i, "inputs", len(r.Tests), len(t.Inputs))}
		}
		if len(r.Outputs) != len(t.Outputs) {
			return &ValidationError{Table: t.Name, Message: ruleArityMessage(i, "outputs", len(r.Outputs), len(t.Outputs))}
		}
	}
	if t.HitPolicy == Priority || t.HitPolicy == OutputOrder {
		for _, o := range t.Outputs {
			if len(o.Priority) == 0 {
				return &ValidationError{Table: t.Name, Message: "output \"" + o.Name + "\" has no declared priority list, required for " + t.HitPolicy.String()}
			}
		}
	}
	return nil
}

func ruleArityMessage(ruleIndex int, kind string, got, want int) string {
	return "rule " + strconv.Itoa(ruleIndex) + " has " + strconv.Itoa(got) + " " + kind + ", table declares " + strconv.Itoa(want)
}

// ValidationError reports a structural defect caught by Validate, surfaced
// as part of a LoadError.
type ValidationError struct {
	Table   string
	Message string
}

func (e *ValidationError) Error() string {
	return "decision table " + e.Table + ": " + e.Message
}

// LiteralDecision is a decision whose value is a single FEEL expression,
// e.g. `"Hello " + Full Name`.
type LiteralDecision struct {
	Name       string
	Expression ast.Node
}

// BusinessKnowledgeModel is the load-time representation of a BKM
// definition, registered into runtime/bkm.Registry by the engine façade.
type BusinessKnowledgeModel struct {
	Name       string
	Parameters []string
	Body       ast.Node
}

// DmnModel is the output of the DMN XML reader: every decision and BKM
// declared in one document, ready to merge into the Engine's registries.
type DmnModel struct {
	Tables    []*DecisionTable
	Literals  []*LiteralDecision
	BKMs      []*BusinessKnowledgeModel
}
