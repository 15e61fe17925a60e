// Package diagnostics defines the diagnostics channel shared by the
// evaluator, decision-table layer, and engine façade. Diagnostics are
// informational/advisory; they never replace the JSON result, which always
// carries Null for a failing decision.
package diagnostics

import "github.com/dmnfeel/engine/core/types"

// Severity classifies a Diagnostic entry.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Diagnostic is one entry of the diagnostics channel.
type Diagnostic struct {
	Severity Severity
	Decision string
	Message  string
	Span     types.Span
}

// Sink receives Diagnostics as they are produced. A nil Sink is valid and
// discards entries.
type Sink func(Diagnostic)

// Collector is a Sink that appends to an in-memory slice, used by the
// engine façade to build the diagnostics channel returned from Evaluate.
type Collector struct {
	entries []Diagnostic
}

// Sink returns a Sink bound to this Collector.
func (c *Collector) Sink() Sink {
	return func(d Diagnostic) {
		c.entries = append(c.entries, d)
	}
}

// Entries returns all collected diagnostics in emission order.
func (c *Collector) Entries() []Diagnostic {
	return append([]Diagnostic(nil), c.entries...)
}
