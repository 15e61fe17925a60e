// Package ast defines the FEEL abstract syntax tree produced by the parser
// and walked by the evaluator.
package ast

import (
	"github.com/dmnfeel/engine/core/types"
)

// Node is implemented by every AST variant. Every node records the source
// span it was parsed from, for diagnostics.
type Node interface {
	Span() types.Span
}

// Base is the embeddable span-holder shared by every node type. Parser
// construction sites set it with NewBase so every node carries the source
// range it was parsed from.
type Base struct {
	span types.Span
}

func (b Base) Span() types.Span { return b.span }

// NewBase constructs a Base from a span.
func NewBase(span types.Span) Base { return Base{span: span} }

// BinOpKind identifies a binary operator.
type BinOpKind int

const (
	OpAdd BinOpKind = iota
	OpSub
	OpMul
	OpDiv
	OpPow
	OpAnd
	OpOr
	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpIn
	OpBetween
)

// Literal is a constant number, string, boolean, or null.
type Literal struct {
	Base
	Value types.Value
}

// Name is a (possibly multi-word) identifier reference.
type Name struct {
	Base
	Ident string
}

// Neg is unary arithmetic negation: -x.
type Neg struct {
	Base
	Operand Node
}

// Not is unary logical negation: not x.
type Not struct {
	Base
	Operand Node
}

// BinOp is a binary operator application.
type BinOp struct {
	Base
	Kind BinOpKind
	Lhs  Node
	Rhs  Node
}

// If is the conditional expression `if c then a else b`.
type If struct {
	Base
	Cond, Then, Else Node
}

// Iterator is one `name in source` clause of a for-loop or quantified
// expression.
type Iterator struct {
	Name   string
	Source Node
}

// ForLoop is `for x in L [, y in M ...] return body`.
type ForLoop struct {
	Base
	Iterators []Iterator
	Body      Node
}

// QuantifiedKind distinguishes `some` from `every`.
type QuantifiedKind int

const (
	QuantSome QuantifiedKind = iota
	QuantEvery
)

// Quantified is `some/every x in L satisfies p`.
type Quantified struct {
	Base
	Kind      QuantifiedKind
	Iterators []Iterator
	Predicate Node
}

// FnCall is a function invocation, either built-in, BKM, or a locally bound
// function value.
type FnCall struct {
	Base
	Callee Node
	Args   []Node
	Names  []string // parallel to Args; named arguments use "name: expr" form; empty entry means positional
}

// Path is `expr.name`, context/member access.
type Path struct {
	Base
	Expr Node
	Name string
}

// Index is `expr[idx]`, 1-based list indexing (a negative idx counts from
// the end). idx is evaluated once in the enclosing environment and coerced
// to a number; a boolean expression is not applied per element as a filter.
type Index struct {
	Base
	Expr Node
	Idx  Node
}

// ContextEntry is one `key: value` pair of a context literal.
type ContextEntry struct {
	Key   string
	Value Node
}

// ContextLit is a `{ key: value, ... }` literal.
type ContextLit struct {
	Base
	Entries []ContextEntry
}

// ListLit is a `[ item, ... ]` literal.
type ListLit struct {
	Base
	Items []Node
}

// RangeLit is an explicit `[a..b]`-style interval literal, with inclusivity
// recorded per bracket.
type RangeLit struct {
	Base
	Low, High                 Node
	LowInclusive, HighInclusive bool
}

// UnaryTestOp identifies the relational operator of a unary test.
type UnaryTestOp int

const (
	UTEquals UnaryTestOp = iota // implicit equality, no leading operator
	UTWildcard                  // "-"
	UTLt
	UTLte
	UTGt
	UTGte
	UTNeq
)

// UnaryTest is one test of a decision-table input entry: a comparison
// operator applied to an (implicit) input value, or a wildcard. Range
// tests are parsed as RangeLit nodes instead.
type UnaryTest struct {
	Base
	Op      UnaryTestOp
	Operand Node // nil for UTWildcard
}

// Disjunction is a comma-separated list of unary tests/expressions; it
// matches if any alternative matches.
type Disjunction struct {
	Base
	Tests []Node
}

// FunctionLit is a FEEL `function(params) body` literal.
type FunctionLit struct {
	Base
	Params []string
	Body   Node
}
