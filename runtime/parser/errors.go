package parser

import (
	"fmt"

	"github.com/dmnfeel/engine/core/types"
)

// ParseError reports a syntax error with the offending token's position,
// what the parser expected, and what it actually found.
type ParseError struct {
	Span     types.Span
	Expected string
	Found    types.Token
	Message  string
}

func (e *ParseError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Span.Start, e.Message)
	}
	return fmt.Sprintf("%s: expected %s, found %q", e.Span.Start, e.Expected, e.Found.Lexeme)
}
