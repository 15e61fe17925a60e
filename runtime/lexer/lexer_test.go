package lexer

import (
	"testing"

	"github.com/dmnfeel/engine/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(t *testing.T, src string) []types.TokenKind {
	t.Helper()
	toks, err := Tokenize(src)
	require.NoError(t, err)
	out := make([]types.TokenKind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestBasicPunctuation(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []types.TokenKind
	}{
		{"lparen", "(", []types.TokenKind{types.LPAREN, types.EOF}},
		{"rbracket", "]", []types.TokenKind{types.RBRACKET, types.EOF}},
		{"comma colon", ",:", []types.TokenKind{types.COMMA, types.COLON, types.EOF}},
		{"dotdot", "1..10", []types.TokenKind{types.NUMBER, types.DOTDOT, types.NUMBER, types.EOF}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, kinds(t, tt.input))
		})
	}
}

func TestMultiCharOperators(t *testing.T) {
	tests := []struct {
		input    string
		expected types.TokenKind
	}{
		{"<=", types.LTE},
		{">=", types.GTE},
		{"!=", types.NEQ},
		{"**", types.POW},
	}
	for _, tt := range tests {
		toks, err := Tokenize(tt.input)
		require.NoError(t, err)
		require.Len(t, toks, 2)
		assert.Equal(t, tt.expected, toks[0].Kind)
	}
}

func TestNumberLiterals(t *testing.T) {
	tests := []struct {
		name, input, lexeme string
	}{
		{"integer", "42", "42"},
		{"decimal", "3.14", "3.14"},
		{"exponent", "1.5e10", "1.5e10"},
		{"negative exponent", "2e-3", "2e-3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := Tokenize(tt.input)
			require.NoError(t, err)
			require.Equal(t, types.NUMBER, toks[0].Kind)
			assert.Equal(t, tt.lexeme, toks[0].Lexeme)
		})
	}
}

func TestLeadingMinusDisambiguation(t *testing.T) {
	// "-" after an operator starts a number; "-" after an operand is the
	// subtraction operator.
	toks, err := Tokenize("1 - 2")
	require.NoError(t, err)
	assert.Equal(t, []types.TokenKind{types.NUMBER, types.MINUS, types.NUMBER, types.EOF}, kindsOf(toks))

	toks, err = Tokenize("x * -2")
	require.NoError(t, err)
	assert.Equal(t, "-2", toks[2].Lexeme)
	assert.Equal(t, types.NUMBER, toks[2].Kind)
}

func kindsOf(toks []types.Token) []types.TokenKind {
	out := make([]types.TokenKind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestStringEscapes(t *testing.T) {
	toks, err := Tokenize(`"hello\nworld"`)
	require.NoError(t, err)
	require.Equal(t, types.STRING, toks[0].Kind)
	assert.Equal(t, `"hello\nworld"`, toks[0].Lexeme)
}

func TestUnterminatedString(t *testing.T) {
	_, err := Tokenize(`"unterminated`)
	require.Error(t, err)
}

func TestMultiWordIdentifier(t *testing.T) {
	toks, err := Tokenize("Full Name")
	require.NoError(t, err)
	require.Equal(t, types.IDENTIFIER, toks[0].Kind)
	assert.Equal(t, "Full Name", toks[0].Lexeme)
}

func TestMultiWordIdentifierStopsAtKeyword(t *testing.T) {
	toks, err := Tokenize("Full Name and Age")
	require.NoError(t, err)
	assert.Equal(t, "Full Name", toks[0].Lexeme)
	assert.Equal(t, types.AND, toks[1].Kind)
	assert.Equal(t, "Age", toks[2].Lexeme)
}

func TestKeywordsAreCaseSensitive(t *testing.T) {
	toks, err := Tokenize("And")
	require.NoError(t, err)
	assert.Equal(t, types.IDENTIFIER, toks[0].Kind)
}

func TestLineComment(t *testing.T) {
	toks, err := Tokenize("1 // a comment\n+ 2")
	require.NoError(t, err)
	assert.Equal(t, []types.TokenKind{types.NUMBER, types.PLUS, types.NUMBER, types.EOF}, kindsOf(toks))
}
