package lexer

// ASCII character lookup tables for fast classification. Only the ASCII
// range is pre-computed; non-ASCII runes fall back to unicode.IsLetter /
// unicode.IsDigit in the lexer itself.
var (
	isWhitespace [128]bool
	isDigit      [128]bool
	isIdentStart [128]bool
	isIdentPart  [128]bool
)

func init() {
	for i := 0; i < 128; i++ {
		ch := byte(i)
		isWhitespace[i] = ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\f'
		isDigit[i] = '0' <= ch && ch <= '9'
		isIdentStart[i] = ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
		isIdentPart[i] = isIdentStart[i] || isDigit[i] || ch == '_'
	}
}
