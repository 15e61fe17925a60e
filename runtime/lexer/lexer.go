// Package lexer turns FEEL source text into a token stream.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dmnfeel/engine/core/types"
)

// Lexer scans a FEEL expression or unary-test string into Tokens.
type Lexer struct {
	src        string
	pos        int // byte offset of the rune at `ch`
	readPos    int // byte offset of the next rune
	ch         rune
	line, col  int
	// prevSignificant is the kind of the last emitted token, used to decide
	// whether a leading '-' begins a number literal or is the subtraction
	// operator: a '-' starts a number only when no preceding token could be
	// an operand (start of expression, after an operator, keyword, '(', or
	// ',').
	prevSignificant types.TokenKind
	havePrev        bool
}

// New returns a Lexer positioned at the start of src.
func New(src string) *Lexer {
	l := &Lexer{src: src, line: 1, col: 0}
	l.advance()
	return l
}

func (l *Lexer) advance() {
	if l.readPos >= len(l.src) {
		l.ch = 0
		l.pos = l.readPos
		return
	}
	r, size := utf8.DecodeRuneInString(l.src[l.readPos:])
	if r == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	l.pos = l.readPos
	l.readPos += size
	l.ch = r
}

func (l *Lexer) peekRune() rune {
	if l.readPos >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.readPos:])
	return r
}

func (l *Lexer) position() types.Position {
	return types.Position{Line: l.line, Column: l.col, Offset: l.pos}
}

func asciiByte(r rune) (byte, bool) {
	if r >= 0 && r < 128 {
		return byte(r), true
	}
	return 0, false
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		if b, ok := asciiByte(l.ch); ok && isWhitespace[b] {
			l.advance()
			continue
		}
		if l.ch == '/' && l.peekRune() == '/' {
			for l.ch != '\n' && l.ch != 0 {
				l.advance()
			}
			continue
		}
		if l.ch == '/' && l.peekRune() == '*' {
			l.advance()
			l.advance()
			for !(l.ch == '*' && l.peekRune() == '/') && l.ch != 0 {
				l.advance()
			}
			if l.ch != 0 {
				l.advance()
				l.advance()
			}
			continue
		}
		return
	}
}

// canPrecedeOperand reports whether the previously emitted token permits a
// following '-' to be read as part of a number literal rather than the
// subtraction operator.
func (l *Lexer) canPrecedeOperand() bool {
	if !l.havePrev {
		return true
	}
	switch l.prevSignificant {
	case types.LPAREN, types.LBRACKET, types.LBRACE, types.COMMA, types.COLON,
		types.AND, types.OR, types.NOT, types.IN, types.IF, types.THEN, types.ELSE,
		types.FOR, types.RETURN, types.SOME, types.EVERY, types.SATISFIES, types.BETWEEN,
		types.PLUS, types.MINUS, types.STAR, types.SLASH, types.POW,
		types.EQ, types.NEQ, types.LT, types.LTE, types.GT, types.GTE, types.DOTDOT:
		return true
	default:
		return false
	}
}

// Next scans and returns the next Token, or a *LexError.
func (l *Lexer) Next() (types.Token, error) {
	l.skipWhitespaceAndComments()
	start := l.position()

	if l.ch == 0 {
		return l.emit(types.EOF, "", start), nil
	}

	if b, ok := asciiByte(l.ch); ok && isDigit[b] {
		return l.lexNumber(start, false)
	}

	if l.ch == '-' && l.canPrecedeOperand() {
		if b, ok := asciiByte(l.peekRune()); ok && isDigit[b] {
			l.advance() // consume '-'
			return l.lexNumber(start, true)
		}
	}

	if l.ch == '"' {
		return l.lexString(start)
	}

	if b, ok := asciiByte(l.ch); ok && isIdentStart[b] {
		return l.lexIdentifier(start)
	}
	if unicode.IsLetter(l.ch) {
		return l.lexIdentifier(start)
	}

	return l.lexOperator(start)
}

func (l *Lexer) emit(kind types.TokenKind, lexeme string, start types.Position) types.Token {
	l.prevSignificant = kind
	l.havePrev = true
	return types.Token{Kind: kind, Lexeme: lexeme, Position: start}
}

func (l *Lexer) lexNumber(start types.Position, negative bool) (types.Token, error) {
	var sb strings.Builder
	if negative {
		sb.WriteByte('-')
	}
	for {
		b, ok := asciiByte(l.ch)
		if !ok || !isDigit[b] {
			break
		}
		sb.WriteRune(l.ch)
		l.advance()
	}
	if l.ch == '.' {
		if b, ok := asciiByte(l.peekRune()); ok && isDigit[b] {
			sb.WriteByte('.')
			l.advance()
			for {
				b, ok := asciiByte(l.ch)
				if !ok || !isDigit[b] {
					break
				}
				sb.WriteRune(l.ch)
				l.advance()
			}
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		save := l.pos
		saveCh, saveLine, saveCol, saveReadPos := l.ch, l.line, l.col, l.readPos
		exp := strings.Builder{}
		exp.WriteRune(l.ch)
		l.advance()
		if l.ch == '+' || l.ch == '-' {
			exp.WriteRune(l.ch)
			l.advance()
		}
		digits := 0
		for {
			b, ok := asciiByte(l.ch)
			if !ok || !isDigit[b] {
				break
			}
			exp.WriteRune(l.ch)
			l.advance()
			digits++
		}
		if digits > 0 {
			sb.WriteString(exp.String())
		} else {
			l.pos, l.ch, l.line, l.col, l.readPos = save, saveCh, saveLine, saveCol, saveReadPos
		}
	}
	return l.emit(types.NUMBER, sb.String(), start), nil
}

func (l *Lexer) lexString(start types.Position) (types.Token, error) {
	var sb strings.Builder
	sb.WriteByte('"')
	l.advance() // consume opening quote
	for {
		if l.ch == 0 {
			return types.Token{}, &LexError{Position: start, Message: "unterminated string literal"}
		}
		if l.ch == '"' {
			sb.WriteByte('"')
			l.advance()
			break
		}
		if l.ch == '\\' {
			esc := l.peekRune()
			switch esc {
			case '\\', '"', 'n', 't':
				sb.WriteRune('\\')
				sb.WriteRune(esc)
				l.advance()
				l.advance()
				continue
			case 'u':
				sb.WriteRune('\\')
				sb.WriteRune('u')
				l.advance()
				l.advance()
				for i := 0; i < 4; i++ {
					if l.ch == 0 {
						return types.Token{}, &LexError{Position: start, Message: "truncated \\u escape"}
					}
					sb.WriteRune(l.ch)
					l.advance()
				}
				continue
			default:
				return types.Token{}, &LexError{Position: l.position(), Message: "unknown escape sequence"}
			}
		}
		sb.WriteRune(l.ch)
		l.advance()
	}
	return l.emit(types.STRING, sb.String(), start), nil
}

// lookaheadWord skips leading spaces/tabs from the current position without
// consuming them, and reports the next maximal identifier-part run found,
// how many space/tab characters precede it, and whether such a run exists.
func (l *Lexer) lookaheadWord() (word string, spaceCount int, ok bool) {
	p := l.readPos
	spaces := 0
	// l.ch is the first space; account for it plus any further spaces.
	if l.ch != ' ' && l.ch != '\t' {
		return "", 0, false
	}
	spaces = 1
	for p < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[p:])
		if r != ' ' && r != '\t' {
			break
		}
		p += size
		spaces++
	}
	start := p
	for p < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[p:])
		if b, isASCII := asciiByte(r); isASCII && isIdentPart[b] {
			p += size
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			p += size
			continue
		}
		break
	}
	if p == start {
		return "", 0, false
	}
	return l.src[start:p], spaces, true
}

func (l *Lexer) lexIdentifier(start types.Position) (types.Token, error) {
	var sb strings.Builder
	for {
		b, isASCII := asciiByte(l.ch)
		if (isASCII && isIdentPart[b]) || (!isASCII && (unicode.IsLetter(l.ch) || unicode.IsDigit(l.ch))) {
			sb.WriteRune(l.ch)
			l.advance()
			continue
		}
		break
	}

	for l.ch == ' ' || l.ch == '\t' {
		word, spaceCount, ok := l.lookaheadWord()
		if !ok {
			break
		}
		if _, isKeyword := types.LookupKeyword(strings.ToLower(word)); isKeyword {
			break
		}
		if strings.EqualFold(word, "true") || strings.EqualFold(word, "false") {
			break
		}
		for i := 0; i < spaceCount; i++ {
			l.advance()
		}
		sb.WriteByte(' ')
		for i := 0; i < len(word); {
			r, size := utf8.DecodeRuneInString(word[i:])
			sb.WriteRune(r)
			l.advance()
			i += size
		}
	}

	lexeme := sb.String()
	lower := strings.ToLower(lexeme)
	if lower == "true" || lower == "false" {
		return l.emit(types.BOOLEAN_KW, lexeme, start), nil
	}
	if lower == "null" {
		return l.emit(types.NULL_KW, lexeme, start), nil
	}
	if kind, ok := types.LookupKeyword(lexeme); ok && lexeme == lower {
		return l.emit(kind, lexeme, start), nil
	}
	return l.emit(types.IDENTIFIER, lexeme, start), nil
}

func (l *Lexer) lexOperator(start types.Position) (types.Token, error) {
	ch := l.ch
	next := l.peekRune()

	two := func(kind types.TokenKind, lex string) (types.Token, error) {
		l.advance()
		l.advance()
		return l.emit(kind, lex, start), nil
	}
	one := func(kind types.TokenKind) (types.Token, error) {
		l.advance()
		return l.emit(kind, string(ch), start), nil
	}

	switch ch {
	case '<':
		if next == '=' {
			return two(types.LTE, "<=")
		}
		return one(types.LT)
	case '>':
		if next == '=' {
			return two(types.GTE, ">=")
		}
		return one(types.GT)
	case '!':
		if next == '=' {
			return two(types.NEQ, "!=")
		}
	case '=':
		if next == '=' {
			return two(types.EQ, "==")
		}
		return one(types.EQ)
	case '*':
		if next == '*' {
			return two(types.POW, "**")
		}
		return one(types.STAR)
	case '.':
		if next == '.' {
			return two(types.DOTDOT, "..")
		}
		return one(types.DOT)
	case '+':
		return one(types.PLUS)
	case '-':
		return one(types.MINUS)
	case '/':
		return one(types.SLASH)
	case '(':
		return one(types.LPAREN)
	case ')':
		return one(types.RPAREN)
	case '[':
		return one(types.LBRACKET)
	case ']':
		return one(types.RBRACKET)
	case '{':
		return one(types.LBRACE)
	case '}':
		return one(types.RBRACE)
	case ',':
		return one(types.COMMA)
	case ':':
		return one(types.COLON)
	}

	l.advance()
	return types.Token{}, &LexError{Position: start, Message: "unexpected character '" + string(ch) + "'"}
}

// Tokenize scans src to completion, returning all tokens up to and
// including the terminating EOF.
func Tokenize(src string) ([]types.Token, error) {
	l := New(src)
	var toks []types.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == types.EOF {
			return toks, nil
		}
	}
}
