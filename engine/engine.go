// Package engine implements the DMN engine façade: a registry of
// decision tables, literal decisions, and business knowledge models,
// mutated only by LoadModel/Remove*/Clear and read-only during Evaluate.
package engine

import (
	"fmt"

	"github.com/dmnfeel/engine/core/model"
	"github.com/dmnfeel/engine/core/types"
	"github.com/dmnfeel/engine/diagnostics"
	"github.com/dmnfeel/engine/runtime/bkm"
	"github.com/dmnfeel/engine/runtime/decisiontable"
	"github.com/dmnfeel/engine/runtime/evaluator"
	"github.com/dmnfeel/engine/runtime/resolver"
)

// EvalOptions configures one Evaluate call.
type EvalOptions struct {
	StrictMode         bool
	OverrideHitPolicy  bool
	HitPolicyOverride  model.HitPolicy
	CollectAggregation model.Aggregation
	DebugOutput        bool
	MaxRecursionDepth  int // 0 uses evaluator.DefaultOptions' 64
	MaxIterations      int // 0 = unbounded
}

// LoadError reports a malformed model rejected by LoadModel: a cycle
// between decisions/BKMs, or a structural defect caught by
// DecisionTable.Validate.
type LoadError struct {
	Message string
}

func (e *LoadError) Error() string { return e.Message }

// Engine is the process-wide or per-instance registry of loaded decisions.
// It is safe to share read-only across goroutines once all mutating
// calls (LoadModel/Remove*/Clear) have completed; mutation itself is not
// goroutine-safe and must be externally serialized.
type Engine struct {
	tableOrder   []string
	tables       map[string]*model.DecisionTable
	literalOrder []string
	literals     map[string]*model.LiteralDecision
	bkms         *bkm.Registry
}

// New returns an empty Engine.
func New() *Engine {
	return &Engine{
		tables:   make(map[string]*model.DecisionTable),
		literals: make(map[string]*model.LiteralDecision),
		bkms:     bkm.NewRegistry(),
	}
}

// LoadModel merges m's decisions and BKMs into the registries. Duplicate
// names overwrite with a warning (emitted to sink if non-nil); malformed
// tables or a dependency cycle reject the whole call with a LoadError and
// leave the Engine unmodified.
func (e *Engine) LoadModel(m *model.DmnModel, sink diagnostics.Sink) error {
	for _, t := range m.Tables {
		if err := t.Validate(); err != nil {
			return &LoadError{Message: err.Error()}
		}
	}

	names := make(map[string]bool, len(m.Tables)+len(m.Literals)+len(m.BKMs))
	for _, t := range m.Tables {
		names[t.Name] = true
	}
	for _, l := range m.Literals {
		names[l.Name] = true
	}
	for _, b := range m.BKMs {
		names[b.Name] = true
	}
	if cyc := detectCycle(names, m); cyc != "" {
		return &LoadError{Message: "cyclic reference detected involving: " + cyc}
	}

	for _, t := range m.Tables {
		if _, exists := e.tables[t.Name]; !exists {
			e.tableOrder = append(e.tableOrder, t.Name)
		} else {
			note(sink, "overwriting decision table "+t.Name)
		}
		e.tables[t.Name] = t
	}
	for _, l := range m.Literals {
		if _, exists := e.literals[l.Name]; !exists {
			e.literalOrder = append(e.literalOrder, l.Name)
		} else {
			note(sink, "overwriting literal decision "+l.Name)
		}
		e.literals[l.Name] = l
	}
	for _, b := range m.BKMs {
		if e.bkms.Register(&bkm.BKM{Name: b.Name, Params: b.Parameters, Body: b.Body}) {
			note(sink, "overwriting BKM "+b.Name)
		}
	}
	return nil
}

func note(sink diagnostics.Sink, message string) {
	if sink == nil {
		return
	}
	sink(diagnostics.Diagnostic{Severity: diagnostics.SeverityWarning, Message: message})
}

// RemoveTable deletes a decision table by name, reporting whether it existed.
func (e *Engine) RemoveTable(name string) bool {
	if _, exists := e.tables[name]; !exists {
		return false
	}
	delete(e.tables, name)
	e.tableOrder = removeName(e.tableOrder, name)
	return true
}

// RemoveLiteral deletes a literal decision by name, reporting whether it existed.
func (e *Engine) RemoveLiteral(name string) bool {
	if _, exists := e.literals[name]; !exists {
		return false
	}
	delete(e.literals, name)
	e.literalOrder = removeName(e.literalOrder, name)
	return true
}

// RemoveBKM deletes a BKM by name, reporting whether it existed.
func (e *Engine) RemoveBKM(name string) bool {
	return e.bkms.Remove(name)
}

func removeName(order []string, name string) []string {
	for i, n := range order {
		if n == name {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}

// Clear removes every registered table, literal decision, and BKM.
func (e *Engine) Clear() {
	e.tableOrder = nil
	e.tables = make(map[string]*model.DecisionTable)
	e.literalOrder = nil
	e.literals = make(map[string]*model.LiteralDecision)
	e.bkms.Clear()
}

// TableNames returns registered decision-table names in registration order.
func (e *Engine) TableNames() []string { return append([]string(nil), e.tableOrder...) }

// LiteralNames returns registered literal-decision names in registration order.
func (e *Engine) LiteralNames() []string { return append([]string(nil), e.literalOrder...) }

// BKMNames returns registered BKM names in registration order.
func (e *Engine) BKMNames() []string { return e.bkms.Names() }

// ValidateModels re-runs DecisionTable.Validate over every registered
// table, returning a list of issue messages (empty if none).
func (e *Engine) ValidateModels() []string {
	var issues []string
	for _, name := range e.tableOrder {
		if err := e.tables[name].Validate(); err != nil {
			issues = append(issues, err.Error())
		}
	}
	return issues
}

// Evaluate runs every registered decision (literal decisions first, then
// tables, each group in registration order) against root, returning a
// result Context keyed by
// decision name and the diagnostics collected along the way. A decision
// that fails evaluates to Null and appends a diagnostic; it never prevents
// other decisions from being evaluated.
func (e *Engine) Evaluate(root *types.Context, opts EvalOptions) (*types.Context, []diagnostics.Diagnostic) {
	collector := &diagnostics.Collector{}
	sink := collector.Sink()

	evalOpts := evaluator.DefaultOptions()
	evalOpts.StrictMode = opts.StrictMode
	if opts.MaxRecursionDepth > 0 {
		evalOpts.MaxRecursionDepth = opts.MaxRecursionDepth
	}
	evalOpts.MaxIterations = opts.MaxIterations

	result := types.NewContext()

	rootFrame := resolver.NewFrame()
	for _, k := range root.Keys() {
		v, _ := root.Get(k)
		rootFrame.Bind(k, v)
	}
	env := resolver.NewEnv(rootFrame)

	for _, name := range e.literalOrder {
		lit := e.literals[name]
		ev := evaluator.New(evalOpts, e.bkms, sink)
		ev.DecisionName = name
		v, err := ev.Eval(lit.Expression, env)
		if err != nil {
			sink(diagnostics.Diagnostic{Severity: diagnostics.SeverityError, Decision: name, Message: err.Error()})
			v = types.Null
		}
		result.Set(name, v)
	}

	for _, name := range e.tableOrder {
		table := e.tables[name]
		effective := applyOverride(table, opts)
		ev := evaluator.New(evalOpts, e.bkms, sink)
		ev.DecisionName = name
		v, err := decisiontable.Evaluate(ev, effective, env)
		if err != nil {
			sink(diagnostics.Diagnostic{Severity: diagnostics.SeverityError, Decision: name, Message: err.Error()})
			v = types.Null
		}
		if opts.DebugOutput {
			sink(diagnostics.Diagnostic{Severity: diagnostics.SeverityInfo, Decision: name, Message: fmt.Sprintf("evaluated %d rules under %s", len(effective.Rules), effective.HitPolicy)})
		}
		result.Set(name, v)
	}

	return result, collector.Entries()
}

// applyOverride returns t as-is, or a shallow copy with HitPolicy/
// Aggregation forced, when opts requests an override. The override is
// call-scoped: the registry's stored table is never mutated.
func applyOverride(t *model.DecisionTable, opts EvalOptions) *model.DecisionTable {
	if !opts.OverrideHitPolicy {
		return t
	}
	copied := *t
	copied.HitPolicy = opts.HitPolicyOverride
	if copied.HitPolicy == model.Collect {
		copied.Aggregation = opts.CollectAggregation
	}
	return &copied
}
