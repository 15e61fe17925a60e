// Package dmnxml reads DMN 1.5 XML documents into a *model.DmnModel. It
// is a collaborator, not core engine logic: this package owns
// no evaluation semantics, only structure mapping, and wraps encoding/xml
// directly rather than inventing a parallel codec.
package dmnxml

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/dmnfeel/engine/core/ast"
	"github.com/dmnfeel/engine/core/model"
	"github.com/dmnfeel/engine/runtime/parser"
)

// Read parses a DMN 1.5 XML document into a DmnModel. The engine does not
// mandate a namespace: elements are matched by local name only.
func Read(data []byte) (*model.DmnModel, error) {
	var doc definitions
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("dmnxml: %w", err)
	}

	out := &model.DmnModel{}
	for _, d := range doc.Decisions {
		if d.DecisionTable != nil {
			t, err := buildTable(d.Name, d.DecisionTable)
			if err != nil {
				return nil, fmt.Errorf("dmnxml: decision %q: %w", d.Name, err)
			}
			out.Tables = append(out.Tables, t)
			continue
		}
		if d.LiteralExpression != nil {
			expr, err := parser.ParseExpression(d.LiteralExpression.Text)
			if err != nil {
				return nil, fmt.Errorf("dmnxml: decision %q: %w", d.Name, err)
			}
			out.Literals = append(out.Literals, &model.LiteralDecision{Name: d.Name, Expression: expr})
			continue
		}
		return nil, fmt.Errorf("dmnxml: decision %q has neither decisionTable nor literalExpression", d.Name)
	}

	for _, b := range doc.BKMs {
		if b.EncapsulatedLogic == nil || b.EncapsulatedLogic.LiteralExpression == nil {
			return nil, fmt.Errorf("dmnxml: businessKnowledgeModel %q missing encapsulatedLogic literal expression", b.Name)
		}
		params := make([]string, len(b.EncapsulatedLogic.FormalParameters))
		for i, p := range b.EncapsulatedLogic.FormalParameters {
			params[i] = p.Name
		}
		body, err := parser.ParseExpression(b.EncapsulatedLogic.LiteralExpression.Text)
		if err != nil {
			return nil, fmt.Errorf("dmnxml: businessKnowledgeModel %q: %w", b.Name, err)
		}
		out.BKMs = append(out.BKMs, &model.BusinessKnowledgeModel{Name: b.Name, Parameters: params, Body: body})
	}

	return out, nil
}

func buildTable(name string, xt *decisionTableXML) (*model.DecisionTable, error) {
	t := &model.DecisionTable{
		Name:        name,
		HitPolicy:   parseHitPolicy(xt.HitPolicy),
		Aggregation: parseAggregation(xt.Aggregation),
	}

	for _, in := range xt.Inputs {
		if in.InputExpression == nil {
			return nil, fmt.Errorf("input %q has no inputExpression", in.Label)
		}
		expr, err := parser.ParseExpression(in.InputExpression.Text)
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", in.Label, err)
		}
		t.Inputs = append(t.Inputs, model.InputClause{Label: in.Label, Expression: expr})
	}

	for _, out := range xt.Outputs {
		t.Outputs = append(t.Outputs, model.OutputClause{Name: out.Name, Priority: parsePriority(out.OutputValues)})
	}

	for ri, r := range xt.Rules {
		if len(r.InputEntries) != len(t.Inputs) {
			return nil, fmt.Errorf("rule %d has %d input entries, table declares %d inputs", ri, len(r.InputEntries), len(t.Inputs))
		}
		if len(r.OutputEntries) != len(t.Outputs) {
			return nil, fmt.Errorf("rule %d has %d output entries, table declares %d outputs", ri, len(r.OutputEntries), len(t.Outputs))
		}
		tests := make([]ast.Node, len(r.InputEntries))
		for ci, entry := range r.InputEntries {
			test, err := parser.ParseUnaryTests(entry.Text)
			if err != nil {
				return nil, fmt.Errorf("rule %d, input %d: %w", ri, ci, err)
			}
			tests[ci] = test
		}
		outputs := make([]ast.Node, len(r.OutputEntries))
		for ci, entry := range r.OutputEntries {
			expr, err := parser.ParseExpression(entry.Text)
			if err != nil {
				return nil, fmt.Errorf("rule %d, output %d: %w", ri, ci, err)
			}
			outputs[ci] = expr
		}
		t.Rules = append(t.Rules, model.Rule{Tests: tests, Outputs: outputs})
	}

	return t, nil
}

func parseHitPolicy(s string) model.HitPolicy {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "UNIQUE":
		return model.Unique
	case "FIRST":
		return model.First
	case "PRIORITY":
		return model.Priority
	case "ANY":
		return model.Any
	case "COLLECT":
		return model.Collect
	case "RULE ORDER":
		return model.RuleOrder
	case "OUTPUT ORDER":
		return model.OutputOrder
	default:
		return model.Unique
	}
}

func parseAggregation(s string) model.Aggregation {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SUM":
		return model.Sum
	case "COUNT":
		return model.Count
	case "MIN":
		return model.Min
	case "MAX":
		return model.Max
	default:
		return model.NoAggregation
	}
}

// parsePriority reads an outputValues list such as `"Senior","Adult","Minor"`
// into a declared preference order, most-preferred first.
func parsePriority(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		part = strings.Trim(part, `"`)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
