// Package parser implements a recursive-descent parser that turns a FEEL
// token stream into the AST defined by core/ast.
package parser

import (
	"strconv"
	"strings"

	"github.com/dmnfeel/engine/core/ast"
	"github.com/dmnfeel/engine/core/types"
	"github.com/dmnfeel/engine/runtime/lexer"
	"github.com/shopspring/decimal"
)

// Parser consumes a pre-scanned token stream and builds an AST.
type Parser struct {
	toks []types.Token
	pos  int
}

func newParser(toks []types.Token) *Parser {
	return &Parser{toks: toks}
}

// ParseExpression parses src as a complete FEEL expression.
func ParseExpression(src string) (ast.Node, error) {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := newParser(toks)
	node, err := p.parseExpr(precOr)
	if err != nil {
		return nil, err
	}
	if !p.at(types.EOF) {
		return nil, p.errorf("end of expression", "unexpected trailing input")
	}
	return node, nil
}

// ParseUnaryTests parses src as a decision-table input entry: a
// comma-separated disjunction of unary tests, ranges, or plain expressions
// (implicit equality), or the wildcard "-".
func ParseUnaryTests(src string) (ast.Node, error) {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := newParser(toks)
	node, err := p.parseUnaryTestList()
	if err != nil {
		return nil, err
	}
	if !p.at(types.EOF) {
		return nil, p.errorf("end of unary tests", "unexpected trailing input")
	}
	return node, nil
}

func (p *Parser) cur() types.Token  { return p.toks[p.pos] }
func (p *Parser) at(k types.TokenKind) bool { return p.cur().Kind == k }

func (p *Parser) advance() types.Token {
	tok := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(k types.TokenKind, what string) (types.Token, error) {
	if !p.at(k) {
		return types.Token{}, p.errorf(what, "unexpected token")
	}
	return p.advance(), nil
}

func (p *Parser) errorf(expected, message string) error {
	tok := p.cur()
	span := types.Span{Start: tok.Position, End: tok.Position}
	return &ParseError{Span: span, Expected: expected, Found: tok, Message: message}
}

func span(start, end types.Token) types.Span {
	return types.Span{Start: start.Position, End: tokenEnd(end)}
}

// tokenEnd is the position just past tok's lexeme, the exclusive end of the
// half-open span tok covers.
func tokenEnd(tok types.Token) types.Position {
	return types.Position{
		Line:   tok.Position.Line,
		Column: tok.Position.Column + len([]rune(tok.Lexeme)),
		Offset: tok.Position.Offset + len(tok.Lexeme),
	}
}

// nodeSpan covers from, a's start through b's end, for a node built out of
// two already-spanned sub-nodes.
func nodeSpan(a, b ast.Node) types.Span {
	return types.Span{Start: a.Span().Start, End: b.Span().End}
}

// prev returns the most recently consumed token; every construction site
// calls it after advancing past at least one token.
func (p *Parser) prev() types.Token {
	if p.pos == 0 {
		return p.toks[0]
	}
	return p.toks[p.pos-1]
}

// ---- unary-test grammar (decision table cells) ----

func (p *Parser) parseUnaryTestList() (ast.Node, error) {
	startTok := p.cur()
	first, err := p.parseUnaryTest()
	if err != nil {
		return nil, err
	}
	tests := []ast.Node{first}
	for p.at(types.COMMA) {
		p.advance()
		next, err := p.parseUnaryTest()
		if err != nil {
			return nil, err
		}
		tests = append(tests, next)
	}
	if len(tests) == 1 {
		return tests[0], nil
	}
	return &ast.Disjunction{Base: ast.NewBase(span(startTok, p.prev())), Tests: tests}, nil
}

func (p *Parser) parseUnaryTest() (ast.Node, error) {
	start := p.cur()
	if p.at(types.MINUS) && p.pos+1 < len(p.toks) {
		// bare "-" wildcard: lone minus not followed by a number token
		// (a leading-minus number is already lexed as a single NUMBER token).
		next := p.toks[p.pos+1]
		if next.Kind == types.COMMA || next.Kind == types.EOF {
			p.advance()
			return &ast.UnaryTest{Base: ast.NewBase(span(start, start)), Op: ast.UTWildcard}, nil
		}
	}

	switch p.cur().Kind {
	case types.LT, types.LTE, types.GT, types.GTE, types.NEQ:
		op := p.advance()
		operand, err := p.parseExpr(precAdditive)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryTest{Base: ast.NewBase(span(start, p.prev())), Op: relOpFor(op.Kind), Operand: operand}, nil
	case types.LBRACKET:
		return p.parseRangeLiteral(true)
	case types.RBRACKET:
		return p.parseRangeLiteral(false)
	case types.LPAREN:
		if p.looksLikeRange() {
			return p.parseRangeLiteral(false)
		}
	}

	expr, err := p.parseExpr(precOr)
	if err != nil {
		return nil, err
	}
	if rl, ok := expr.(*ast.RangeLit); ok {
		return rl, nil
	}
	return &ast.UnaryTest{Base: ast.NewBase(span(start, p.prev())), Op: ast.UTEquals, Operand: expr}, nil
}

func relOpFor(k types.TokenKind) ast.UnaryTestOp {
	switch k {
	case types.LT:
		return ast.UTLt
	case types.LTE:
		return ast.UTLte
	case types.GT:
		return ast.UTGt
	case types.GTE:
		return ast.UTGte
	case types.NEQ:
		return ast.UTNeq
	default:
		return ast.UTEquals
	}
}

// looksLikeRange performs a cheap lookahead to distinguish "(expr..expr)"
// from an ordinary parenthesized expression.
func (p *Parser) looksLikeRange() bool {
	depth := 0
	for i := p.pos; i < len(p.toks); i++ {
		switch p.toks[i].Kind {
		case types.LPAREN:
			depth++
		case types.RPAREN:
			depth--
			if depth == 0 {
				return false
			}
		case types.DOTDOT:
			if depth == 1 {
				return true
			}
		case types.EOF:
			return false
		}
	}
	return false
}

// parseRangeLiteral parses "[a..b]", "(a..b)", "]a..b[" etc. openBracket
// indicates the literal started with '[' (so we expect a closing bracket of
// either kind) versus '(' (same). DMN treats '(' and ']' as equivalent open
// markers for exclusivity at that end.
func (p *Parser) parseRangeLiteral(_ bool) (ast.Node, error) {
	openTok := p.advance() // consume '[' or '('
	lowInclusive := openTok.Kind == types.LBRACKET

	low, err := p.parseExpr(precAdditive)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(types.DOTDOT, ".."); err != nil {
		return nil, err
	}
	high, err := p.parseExpr(precAdditive)
	if err != nil {
		return nil, err
	}
	closeTok := p.cur()
	if closeTok.Kind != types.RBRACKET && closeTok.Kind != types.RPAREN && closeTok.Kind != types.LBRACKET {
		return nil, p.errorf("], ) or [", "unterminated range literal")
	}
	p.advance()
	highInclusive := closeTok.Kind == types.RBRACKET

	return &ast.RangeLit{
		Base:          ast.NewBase(span(openTok, closeTok)),
		Low:           low,
		High:          high,
		LowInclusive:  lowInclusive,
		HighInclusive: highInclusive,
	}, nil
}

// ---- expression grammar, precedence climbing ----

type precLevel int

const (
	precOr precLevel = iota
	precAnd
	precComparison
	precAdditive
	precMultiplicative
	precExponent
	precUnary
	precPostfix
)

func (p *Parser) parseExpr(min precLevel) (ast.Node, error) {
	switch p.cur().Kind {
	case types.IF:
		return p.parseIf()
	case types.FOR:
		return p.parseFor()
	case types.SOME, types.EVERY:
		return p.parseQuantified()
	}

	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	if p.at(types.BETWEEN) && precComparison >= min {
		p.advance()
		low, err := p.parseExpr(precAdditive)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(types.AND, "and"); err != nil {
			return nil, err
		}
		high, err := p.parseExpr(precAdditive)
		if err != nil {
			return nil, err
		}
		rangeLit := &ast.RangeLit{
			Base:          ast.NewBase(nodeSpan(low, high)),
			Low:           low,
			High:          high,
			LowInclusive:  true,
			HighInclusive: true,
		}
		left = &ast.BinOp{Base: ast.NewBase(nodeSpan(left, high)), Kind: ast.OpBetween, Lhs: left, Rhs: rangeLit}
	}

	for {
		kind, ok := p.binOpAt(min)
		if !ok {
			break
		}
		p.advance()
		nextMin := precLevel(kind.level) + 1
		if kind.rightAssoc {
			nextMin = precLevel(kind.level)
		}
		right, err := p.parseExpr(nextMin)
		if err != nil {
			return nil, err
		}
		left = &ast.BinOp{Base: ast.NewBase(nodeSpan(left, right)), Kind: kind.op, Lhs: left, Rhs: right}
	}
	return left, nil
}

type opInfo struct {
	op         ast.BinOpKind
	level      precLevel
	rightAssoc bool
}

func (p *Parser) binOpAt(min precLevel) (opInfo, bool) {
	k := p.cur().Kind
	var info opInfo
	switch k {
	case types.OR:
		info = opInfo{ast.OpOr, precOr, false}
	case types.AND:
		info = opInfo{ast.OpAnd, precAnd, false}
	case types.EQ:
		info = opInfo{ast.OpEq, precComparison, false}
	case types.NEQ:
		info = opInfo{ast.OpNeq, precComparison, false}
	case types.LT:
		info = opInfo{ast.OpLt, precComparison, false}
	case types.LTE:
		info = opInfo{ast.OpLte, precComparison, false}
	case types.GT:
		info = opInfo{ast.OpGt, precComparison, false}
	case types.GTE:
		info = opInfo{ast.OpGte, precComparison, false}
	case types.IN:
		info = opInfo{ast.OpIn, precComparison, false}
	case types.PLUS:
		info = opInfo{ast.OpAdd, precAdditive, false}
	case types.MINUS:
		info = opInfo{ast.OpSub, precAdditive, false}
	case types.STAR:
		info = opInfo{ast.OpMul, precMultiplicative, false}
	case types.SLASH:
		info = opInfo{ast.OpDiv, precMultiplicative, false}
	case types.POW:
		info = opInfo{ast.OpPow, precExponent, true}
	default:
		return opInfo{}, false
	}
	if info.level < min {
		return opInfo{}, false
	}
	return info, true
}

func (p *Parser) parseUnary() (ast.Node, error) {
	switch p.cur().Kind {
	case types.MINUS:
		startTok := p.advance()
		operand, err := p.parseExpr(precUnary)
		if err != nil {
			return nil, err
		}
		return &ast.Neg{Base: ast.NewBase(span(startTok, p.prev())), Operand: operand}, nil
	case types.NOT:
		startTok := p.advance()
		operand, err := p.parseExpr(precUnary)
		if err != nil {
			return nil, err
		}
		return &ast.Not{Base: ast.NewBase(span(startTok, p.prev())), Operand: operand}, nil
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() (ast.Node, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur().Kind {
		case types.DOT:
			p.advance()
			nameTok, err := p.expect(types.IDENTIFIER, "member name")
			if err != nil {
				return nil, err
			}
			expr = &ast.Path{
				Base: ast.NewBase(types.Span{Start: expr.Span().Start, End: tokenEnd(nameTok)}),
				Expr: expr, Name: nameTok.Lexeme,
			}
		case types.LBRACKET:
			p.advance()
			idx, err := p.parseExpr(precOr)
			if err != nil {
				return nil, err
			}
			closeTok, err := p.expect(types.RBRACKET, "]")
			if err != nil {
				return nil, err
			}
			expr = &ast.Index{
				Base: ast.NewBase(types.Span{Start: expr.Span().Start, End: tokenEnd(closeTok)}),
				Expr: expr, Idx: idx,
			}
		case types.LPAREN:
			startSpan := expr.Span()
			args, names, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			expr = &ast.FnCall{
				Base: ast.NewBase(types.Span{Start: startSpan.Start, End: tokenEnd(p.prev())}),
				Callee: expr, Args: args, Names: names,
			}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseArgList() ([]ast.Node, []string, error) {
	p.advance() // consume '('
	var args []ast.Node
	var names []string
	if p.at(types.RPAREN) {
		p.advance()
		return args, names, nil
	}
	for {
		name := ""
		if p.at(types.IDENTIFIER) && p.toks[p.pos+1].Kind == types.COLON {
			name = p.advance().Lexeme
			p.advance() // colon
		}
		arg, err := p.parseExpr(precOr)
		if err != nil {
			return nil, nil, err
		}
		args = append(args, arg)
		names = append(names, name)
		if p.at(types.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(types.RPAREN, ")"); err != nil {
		return nil, nil, err
	}
	return args, names, nil
}

func (p *Parser) parsePrimary() (ast.Node, error) {
	tok := p.cur()
	switch tok.Kind {
	case types.NUMBER:
		p.advance()
		d, err := decimal.NewFromString(tok.Lexeme)
		if err != nil {
			return nil, &ParseError{Span: span(tok, tok), Message: "invalid number literal: " + tok.Lexeme}
		}
		return &ast.Literal{Base: ast.NewBase(span(tok, tok)), Value: types.Number(d)}, nil
	case types.STRING:
		p.advance()
		s, err := unquote(tok.Lexeme)
		if err != nil {
			return nil, &ParseError{Span: span(tok, tok), Message: err.Error()}
		}
		return &ast.Literal{Base: ast.NewBase(span(tok, tok)), Value: types.String(s)}, nil
	case types.BOOLEAN_KW:
		p.advance()
		return &ast.Literal{Base: ast.NewBase(span(tok, tok)), Value: types.Bool(strings.EqualFold(tok.Lexeme, "true"))}, nil
	case types.NULL_KW:
		p.advance()
		return &ast.Literal{Base: ast.NewBase(span(tok, tok)), Value: types.Null}, nil
	case types.IDENTIFIER:
		p.advance()
		return &ast.Name{Base: ast.NewBase(span(tok, tok)), Ident: tok.Lexeme}, nil
	case types.LPAREN:
		p.advance()
		if p.looksLikeRangeFromHere() {
			return p.parseRangeLiteral(false)
		}
		inner, err := p.parseExpr(precOr)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(types.RPAREN, ")"); err != nil {
			return nil, err
		}
		return inner, nil
	case types.LBRACKET:
		return p.parseListOrRange()
	case types.LBRACE:
		return p.parseContextLit()
	case types.FUNCTION:
		return p.parseFunctionLit()
	case types.IF:
		return p.parseIf()
	case types.FOR:
		return p.parseFor()
	case types.SOME, types.EVERY:
		return p.parseQuantified()
	}
	return nil, p.errorf("expression", "unexpected token")
}

func (p *Parser) looksLikeRangeFromHere() bool {
	depth := 1
	for i := p.pos; i < len(p.toks); i++ {
		switch p.toks[i].Kind {
		case types.LPAREN:
			depth++
		case types.RPAREN:
			depth--
			if depth == 0 {
				return false
			}
		case types.DOTDOT:
			if depth == 1 {
				return true
			}
		case types.EOF:
			return false
		}
	}
	return false
}

func (p *Parser) parseListOrRange() (ast.Node, error) {
	startTok := p.advance() // consume '['
	if p.at(types.RBRACKET) {
		closeTok := p.advance()
		return &ast.ListLit{Base: ast.NewBase(span(startTok, closeTok))}, nil
	}
	first, err := p.parseExpr(precOr)
	if err != nil {
		return nil, err
	}
	if p.at(types.DOTDOT) {
		p.advance()
		high, err := p.parseExpr(precAdditive)
		if err != nil {
			return nil, err
		}
		closeTok, err := p.expect(types.RBRACKET, "]")
		if err != nil {
			return nil, err
		}
		return &ast.RangeLit{
			Base: ast.NewBase(span(startTok, closeTok)), Low: first, High: high,
			LowInclusive: true, HighInclusive: true,
		}, nil
	}
	items := []ast.Node{first}
	for p.at(types.COMMA) {
		p.advance()
		next, err := p.parseExpr(precOr)
		if err != nil {
			return nil, err
		}
		items = append(items, next)
	}
	closeTok, err := p.expect(types.RBRACKET, "]")
	if err != nil {
		return nil, err
	}
	return &ast.ListLit{Base: ast.NewBase(span(startTok, closeTok)), Items: items}, nil
}

func (p *Parser) parseContextLit() (ast.Node, error) {
	startTok := p.advance() // consume '{'
	var entries []ast.ContextEntry
	if p.at(types.RBRACE) {
		closeTok := p.advance()
		return &ast.ContextLit{Base: ast.NewBase(span(startTok, closeTok))}, nil
	}
	for {
		key, err := p.parseContextKey()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(types.COLON, ":"); err != nil {
			return nil, err
		}
		val, err := p.parseExpr(precOr)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ast.ContextEntry{Key: key, Value: val})
		if p.at(types.COMMA) {
			p.advance()
			continue
		}
		break
	}
	closeTok, err := p.expect(types.RBRACE, "}")
	if err != nil {
		return nil, err
	}
	return &ast.ContextLit{Base: ast.NewBase(span(startTok, closeTok)), Entries: entries}, nil
}

func (p *Parser) parseContextKey() (string, error) {
	switch p.cur().Kind {
	case types.IDENTIFIER:
		return p.advance().Lexeme, nil
	case types.STRING:
		tok := p.advance()
		return unquote(tok.Lexeme)
	default:
		return "", p.errorf("context key", "expected identifier or string key")
	}
}

func (p *Parser) parseFunctionLit() (ast.Node, error) {
	startTok := p.advance() // consume 'function'
	if _, err := p.expect(types.LPAREN, "("); err != nil {
		return nil, err
	}
	var params []string
	if !p.at(types.RPAREN) {
		for {
			nameTok, err := p.expect(types.IDENTIFIER, "parameter name")
			if err != nil {
				return nil, err
			}
			params = append(params, nameTok.Lexeme)
			if p.at(types.COMMA) {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expect(types.RPAREN, ")"); err != nil {
		return nil, err
	}
	body, err := p.parseExpr(precOr)
	if err != nil {
		return nil, err
	}
	return &ast.FunctionLit{Base: ast.NewBase(span(startTok, p.prev())), Params: params, Body: body}, nil
}

func (p *Parser) parseIf() (ast.Node, error) {
	startTok := p.advance() // consume 'if'
	cond, err := p.parseExpr(precOr)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(types.THEN, "then"); err != nil {
		return nil, err
	}
	thenExpr, err := p.parseExpr(precOr)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(types.ELSE, "else"); err != nil {
		return nil, err
	}
	elseExpr, err := p.parseExpr(precOr)
	if err != nil {
		return nil, err
	}
	return &ast.If{Base: ast.NewBase(span(startTok, p.prev())), Cond: cond, Then: thenExpr, Else: elseExpr}, nil
}

func (p *Parser) parseIterators() ([]ast.Iterator, error) {
	var iterators []ast.Iterator
	for {
		nameTok, err := p.expect(types.IDENTIFIER, "iterator name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(types.IN, "in"); err != nil {
			return nil, err
		}
		src, err := p.parseExpr(precOr)
		if err != nil {
			return nil, err
		}
		iterators = append(iterators, ast.Iterator{Name: nameTok.Lexeme, Source: src})
		if p.at(types.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return iterators, nil
}

func (p *Parser) parseFor() (ast.Node, error) {
	startTok := p.advance() // consume 'for'
	iterators, err := p.parseIterators()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(types.RETURN, "return"); err != nil {
		return nil, err
	}
	body, err := p.parseExpr(precOr)
	if err != nil {
		return nil, err
	}
	return &ast.ForLoop{Base: ast.NewBase(span(startTok, p.prev())), Iterators: iterators, Body: body}, nil
}

func (p *Parser) parseQuantified() (ast.Node, error) {
	kind := ast.QuantSome
	if p.at(types.EVERY) {
		kind = ast.QuantEvery
	}
	startTok := p.advance() // consume 'some'/'every'
	iterators, err := p.parseIterators()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(types.SATISFIES, "satisfies"); err != nil {
		return nil, err
	}
	pred, err := p.parseExpr(precOr)
	if err != nil {
		return nil, err
	}
	return &ast.Quantified{Base: ast.NewBase(span(startTok, p.prev())), Kind: kind, Iterators: iterators, Predicate: pred}, nil
}

// unquote converts a lexed string's raw lexeme (including surrounding
// quotes) into its value with escapes resolved.
func unquote(lexeme string) (string, error) {
	if len(lexeme) < 2 {
		return "", nil
	}
	body := lexeme[1 : len(lexeme)-1]
	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] != '\\' {
			sb.WriteByte(body[i])
			continue
		}
		i++
		if i >= len(body) {
			break
		}
		switch body[i] {
		case '\\':
			sb.WriteByte('\\')
		case '"':
			sb.WriteByte('"')
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'u':
			if i+4 < len(body) {
				code, err := strconv.ParseInt(body[i+1:i+5], 16, 32)
				if err == nil {
					sb.WriteRune(rune(code))
					i += 4
				}
			}
		}
	}
	return sb.String(), nil
}
