package lexer

import "github.com/dmnfeel/engine/core/types"

// LexError is a lexical error with location and message, reported in place
// of a Token stream at load time.
type LexError struct {
	Position types.Position
	Message  string
}

func (e *LexError) Error() string {
	return e.Position.String() + ": " + e.Message
}
