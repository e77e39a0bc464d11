package chess

import (
	"strings"
)

// TokenType classifies a lexical token of PGN text.
type TokenType int

const (
	EOF TokenType = iota
	ILLEGAL
	TagStart       // [
	TagEnd         // ]
	TagKey         // the tag's key
	TagValue       // the tag's value, unquoted and unescaped
	MoveNumber     // 1, 2, 3, ...
	DOT            // .
	ELLIPSIS       // ...
	SAN            // e4, Nbd7, O-O, exd8=Q+
	NAG            // $1, or the number of a suffix annotation such as !?
	CommentStart   // {
	CommentEnd     // }
	COMMENT        // comment text
	CommandStart   // [%
	CommandName    // clk, eval, ...
	CommandParam   // command parameter
	CommandEnd     // ]
	VariationStart // (
	VariationEnd   // )
	RESULT         // 1-0, 0-1, 1/2-1/2, *
)

var tokenNames = [...]string{
	"EOF", "ILLEGAL", "TagStart", "TagEnd", "TagKey", "TagValue",
	"MoveNumber", "DOT", "ELLIPSIS", "SAN", "NAG",
	"CommentStart", "CommentEnd", "COMMENT",
	"CommandStart", "CommandName", "CommandParam", "CommandEnd",
	"VariationStart", "VariationEnd", "RESULT",
}

func (t TokenType) String() string {
	if t >= 0 && int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return "Unknown"
}

// Token is a lexical token of PGN text.
type Token struct {
	Type  TokenType
	Value string
}

// suffixNAGs maps move suffix annotations to their numeric glyphs.
var suffixNAGs = map[string]string{
	"!":  "1",
	"?":  "2",
	"!!": "3",
	"??": "4",
	"!?": "5",
	"?!": "6",
}

// Lexer splits PGN text into tokens.
type Lexer struct {
	input     string
	pos       int
	lineStart bool
	pending   []Token
}

// NewLexer returns a lexer reading input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input, lineStart: true}
}

// TokenizeGame returns all tokens of a single game, without the final EOF.
func TokenizeGame(input string) []Token {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Type == EOF {
			return tokens
		}
		tokens = append(tokens, tok)
		if tok.Type == ILLEGAL {
			return tokens
		}
	}
}

// NextToken returns the next token, or an EOF token at the end of input.
func (l *Lexer) NextToken() Token {
	if len(l.pending) > 0 {
		tok := l.pending[0]
		l.pending = l.pending[1:]
		return tok
	}

	l.skipWhitespace()
	if l.pos >= len(l.input) {
		return Token{Type: EOF}
	}

	ch := l.input[l.pos]
	switch {
	case ch == '[':
		return l.readTagPair()
	case ch == '{':
		return l.readComment()
	case ch == ';':
		return l.readLineComment()
	case ch == '(':
		l.pos++
		return Token{Type: VariationStart, Value: "("}
	case ch == ')':
		l.pos++
		return Token{Type: VariationEnd, Value: ")"}
	case ch == '*':
		l.pos++
		return Token{Type: RESULT, Value: "*"}
	case ch == '$':
		return l.readNAG()
	case ch == '!' || ch == '?':
		return l.readSuffixNAG()
	case ch == '.':
		return l.readDots()
	case isDigit(ch):
		return l.readNumber()
	case isSANStart(ch):
		return Token{Type: SAN, Value: l.readWhile(isSANChar)}
	}
	l.pos++
	return Token{Type: ILLEGAL, Value: string(ch)}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch {
		case ch == '\n':
			l.lineStart = true
			l.pos++
		case ch == ' ' || ch == '\t' || ch == '\r':
			l.pos++
		case ch == '%' && l.lineStart:
			// escape line
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
		default:
			l.lineStart = false
			return
		}
	}
}

func (l *Lexer) readWhile(pred func(byte) bool) string {
	start := l.pos
	for l.pos < len(l.input) && pred(l.input[l.pos]) {
		l.pos++
	}
	return l.input[start:l.pos]
}

func (l *Lexer) skipInlineSpace() {
	for l.pos < len(l.input) && (l.input[l.pos] == ' ' || l.input[l.pos] == '\t') {
		l.pos++
	}
}

// readTagPair reads [Key "Value"] and queues the tokens following TagStart.
func (l *Lexer) readTagPair() Token {
	l.pos++ // [
	l.skipInlineSpace()
	key := l.readWhile(isTagKeyChar)
	if key == "" {
		return Token{Type: ILLEGAL, Value: "expected tag key"}
	}
	l.skipInlineSpace()
	if l.pos >= len(l.input) || l.input[l.pos] != '"' {
		return Token{Type: ILLEGAL, Value: "expected quoted value for tag " + key}
	}
	l.pos++

	var value strings.Builder
	for {
		if l.pos >= len(l.input) || l.input[l.pos] == '\n' {
			return Token{Type: ILLEGAL, Value: "unterminated value for tag " + key}
		}
		ch := l.input[l.pos]
		l.pos++
		if ch == '"' {
			break
		}
		if ch == '\\' && l.pos < len(l.input) && (l.input[l.pos] == '"' || l.input[l.pos] == '\\') {
			ch = l.input[l.pos]
			l.pos++
		}
		value.WriteByte(ch)
	}

	l.skipInlineSpace()
	if l.pos >= len(l.input) || l.input[l.pos] != ']' {
		return Token{Type: ILLEGAL, Value: "expected ] after tag " + key}
	}
	l.pos++

	l.pending = append(l.pending,
		Token{Type: TagKey, Value: key},
		Token{Type: TagValue, Value: value.String()},
		Token{Type: TagEnd, Value: "]"},
	)
	return Token{Type: TagStart, Value: "["}
}

// readComment reads a brace comment, splitting out embedded [%name value] commands.
// An unterminated comment yields no CommentEnd token.
func (l *Lexer) readComment() Token {
	l.pos++ // {
	var text strings.Builder
	flush := func() {
		if s := strings.TrimSpace(text.String()); s != "" {
			l.pending = append(l.pending, Token{Type: COMMENT, Value: s})
		}
		text.Reset()
	}

	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch {
		case ch == '}':
			l.pos++
			flush()
			l.pending = append(l.pending, Token{Type: CommentEnd, Value: "}"})
			return Token{Type: CommentStart, Value: "{"}
		case ch == '[' && l.pos+1 < len(l.input) && l.input[l.pos+1] == '%':
			flush()
			l.readCommand()
		default:
			text.WriteByte(ch)
			l.pos++
		}
	}
	flush()
	return Token{Type: CommentStart, Value: "{"}
}

// readCommand queues the tokens of one [%name param ...] command.
func (l *Lexer) readCommand() {
	l.pos += 2 // [%
	l.pending = append(l.pending, Token{Type: CommandStart, Value: "[%"})
	name := l.readWhile(func(c byte) bool { return !isSpace(c) && c != ']' && c != '}' })
	if name != "" {
		l.pending = append(l.pending, Token{Type: CommandName, Value: name})
	}
	for {
		l.readWhile(isSpace)
		if l.pos >= len(l.input) || l.input[l.pos] == '}' {
			return
		}
		if l.input[l.pos] == ']' {
			l.pos++
			l.pending = append(l.pending, Token{Type: CommandEnd, Value: "]"})
			return
		}
		param := l.readWhile(func(c byte) bool { return c != ']' && c != '}' })
		l.pending = append(l.pending, Token{Type: CommandParam, Value: strings.TrimSpace(param)})
	}
}

func (l *Lexer) readLineComment() Token {
	l.pos++ // ;
	text := strings.TrimSpace(l.readWhile(func(c byte) bool { return c != '\n' }))
	if text != "" {
		l.pending = append(l.pending, Token{Type: COMMENT, Value: text})
	}
	l.pending = append(l.pending, Token{Type: CommentEnd, Value: "}"})
	return Token{Type: CommentStart, Value: "{"}
}

func (l *Lexer) readNAG() Token {
	l.pos++ // $
	digits := l.readWhile(isDigit)
	if digits == "" {
		return Token{Type: ILLEGAL, Value: "$"}
	}
	return Token{Type: NAG, Value: digits}
}

func (l *Lexer) readSuffixNAG() Token {
	suffix := l.readWhile(func(c byte) bool { return c == '!' || c == '?' })
	if nag, ok := suffixNAGs[suffix]; ok {
		return Token{Type: NAG, Value: nag}
	}
	return Token{Type: ILLEGAL, Value: suffix}
}

func (l *Lexer) readDots() Token {
	dots := l.readWhile(func(c byte) bool { return c == '.' })
	if len(dots) > 1 {
		return Token{Type: ELLIPSIS, Value: dots}
	}
	return Token{Type: DOT, Value: dots}
}

// readNumber reads a move number, a result or a castle written with zeros.
func (l *Lexer) readNumber() Token {
	rest := l.input[l.pos:]
	for _, result := range []string{"1/2-1/2", "1-0", "0-1"} {
		if strings.HasPrefix(rest, result) && !l.continuesSAN(len(result)) {
			l.pos += len(result)
			return Token{Type: RESULT, Value: result}
		}
	}
	for _, castle := range []string{"0-0-0", "0-0"} {
		if strings.HasPrefix(rest, castle) {
			l.pos += len(castle)
			san := strings.ReplaceAll(castle, "0", "O") + l.readWhile(isSANChar)
			return Token{Type: SAN, Value: san}
		}
	}

	digits := l.readWhile(isDigit)
	if l.pos < len(l.input) && l.input[l.pos] == '.' {
		l.pending = append(l.pending, l.readDots())
	}
	return Token{Type: MoveNumber, Value: digits}
}

func (l *Lexer) continuesSAN(offset int) bool {
	i := l.pos + offset
	return i < len(l.input) && isSANChar(l.input[i])
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isTagKeyChar(c byte) bool {
	return c == '_' || isDigit(c) || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isSANStart(c byte) bool {
	return c >= 'a' && c <= 'h' || strings.IndexByte("KQRBNPO-", c) >= 0
}

func isSANChar(c byte) bool {
	return isDigit(c) || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		strings.IndexByte("=+#-", c) >= 0
}
