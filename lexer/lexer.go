package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pawsong/js-interp/token"
)

type Lexer struct {
	input   string
	pos     int // current position in input (points to current char)
	readPos int // current reading position (after current char)
	ch      rune
	line    int
	col     int

	prevType    token.TokenType
	firstToken  bool
}

func New(input string) *Lexer {
	l := &Lexer{
		input:      input,
		line:       1,
		col:        0,
		firstToken: true,
	}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
		l.pos = l.readPos
		l.readPos++
		l.col++
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += size
	l.col++
}

func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

func (l *Lexer) peekCharAt(offset int) rune {
	pos := l.readPos + offset
	if pos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[pos:])
	return r
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' || l.ch == '\v' || l.ch == '\f' || l.ch == '\u00a0' || l.ch == '\ufeff' {
		if l.ch == '\n' {
			l.line++
			l.col = 0
		}
		l.readChar()
	}
}

func (l *Lexer) skipLineComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

func (l *Lexer) skipBlockComment() {
	// skip past /*
	l.readChar()
	l.readChar()
	for {
		if l.ch == 0 {
			return
		}
		if l.ch == '\n' {
			l.line++
			l.col = 0
		}
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			return
		}
		l.readChar()
	}
}

func (l *Lexer) skipWhitespaceAndComments() {
	sawNewline := l.firstToken
	for {
		prevLine := l.line
		l.skipWhitespace()
		if l.line > prevLine {
			sawNewline = true
		}
		if l.ch == '/' && l.peekChar() == '/' {
			l.skipLineComment()
			sawNewline = true
			continue
		}
		if l.ch == '/' && l.peekChar() == '*' {
			prevLine = l.line
			l.skipBlockComment()
			if l.line > prevLine {
				sawNewline = true
			}
			continue
		}
		// Annex B: <!-- is a single-line comment (anywhere)
		if l.ch == '<' && l.peekChar() == '!' && l.peekCharAt(1) == '-' && l.peekCharAt(2) == '-' {
			l.skipLineComment()
			sawNewline = true
			continue
		}
		// Annex B: --> is a single-line comment ONLY after a line terminator
		if sawNewline && l.ch == '-' && l.peekChar() == '-' && l.peekCharAt(1) == '>' {
			l.skipLineComment()
			sawNewline = true
			continue
		}
		break
	}
	l.firstToken = false
}

// Token types after which a '/' must be division, not the start of a regex.
var regexPrecedingTokens = map[token.TokenType]bool{
	token.Identifier:   false,
	token.Number:       false,
	token.String:       false,
	token.RegExp:       false,
	token.True:         false,
	token.False:        false,
	token.Null:         false,
	token.This:         false,
	token.RightParen:   false,
	token.RightBracket: false,
	token.RightBrace:   false,
	token.Increment:    false,
	token.Decrement:    false,
}

func canPrecedeRegex(tt token.TokenType) bool {
	if _, found := regexPrecedingTokens[tt]; found {
		return false
	}
	return true
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	line := l.line
	col := l.col
	start := l.pos + 1

	tok := func(tt token.TokenType, lit string) token.Token {
		t := token.Token{Type: tt, Literal: lit, Line: line, Column: col, Start: start, End: l.pos + 1}
		l.prevType = tt
		return t
	}

	switch {
	case l.ch == 0:
		return tok(token.EOF, "")

	case l.ch == '(':
		l.readChar()
		return tok(token.LeftParen, "(")
	case l.ch == ')':
		l.readChar()
		return tok(token.RightParen, ")")
	case l.ch == '{':
		l.readChar()
		return tok(token.LeftBrace, "{")
	case l.ch == '}':
		l.readChar()
		return tok(token.RightBrace, "}")
	case l.ch == '[':
		l.readChar()
		return tok(token.LeftBracket, "[")
	case l.ch == ']':
		l.readChar()
		return tok(token.RightBracket, "]")
	case l.ch == ';':
		l.readChar()
		return tok(token.Semicolon, ";")
	case l.ch == ':':
		l.readChar()
		return tok(token.Colon, ":")
	case l.ch == ',':
		l.readChar()
		return tok(token.Comma, ",")
	case l.ch == '~':
		l.readChar()
		return tok(token.BitwiseNot, "~")
	case l.ch == '?':
		l.readChar()
		return tok(token.QuestionMark, "?")

	case l.ch == '.':
		if isDigit(l.peekChar()) {
			return l.readNumber(line, col, start)
		}
		l.readChar()
		return tok(token.Dot, ".")

	case l.ch == '+':
		l.readChar()
		if l.ch == '+' {
			l.readChar()
			return tok(token.Increment, "++")
		}
		if l.ch == '=' {
			l.readChar()
			return tok(token.PlusAssign, "+=")
		}
		return tok(token.Plus, "+")

	case l.ch == '-':
		l.readChar()
		if l.ch == '-' {
			l.readChar()
			return tok(token.Decrement, "--")
		}
		if l.ch == '=' {
			l.readChar()
			return tok(token.MinusAssign, "-=")
		}
		return tok(token.Minus, "-")

	case l.ch == '*':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return tok(token.AsteriskAssign, "*=")
		}
		return tok(token.Asterisk, "*")

	case l.ch == '/':
		if canPrecedeRegex(l.prevType) {
			return l.readRegExp(line, col, start)
		}
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return tok(token.SlashAssign, "/=")
		}
		return tok(token.Slash, "/")

	case l.ch == '%':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return tok(token.PercentAssign, "%=")
		}
		return tok(token.Percent, "%")

	case l.ch == '=':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			if l.ch == '=' {
				l.readChar()
				return tok(token.StrictEqual, "===")
			}
			return tok(token.Equal, "==")
		}
		return tok(token.Assign, "=")

	case l.ch == '!':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			if l.ch == '=' {
				l.readChar()
				return tok(token.StrictNotEqual, "!==")
			}
			return tok(token.NotEqual, "!=")
		}
		return tok(token.Not, "!")

	case l.ch == '<':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return tok(token.LessThanOrEqual, "<=")
		}
		if l.ch == '<' {
			l.readChar()
			if l.ch == '=' {
				l.readChar()
				return tok(token.LeftShiftAssign, "<<=")
			}
			return tok(token.LeftShift, "<<")
		}
		return tok(token.LessThan, "<")

	case l.ch == '>':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return tok(token.GreaterThanOrEqual, ">=")
		}
		if l.ch == '>' {
			l.readChar()
			if l.ch == '=' {
				l.readChar()
				return tok(token.RightShiftAssign, ">>=")
			}
			if l.ch == '>' {
				l.readChar()
				if l.ch == '=' {
					l.readChar()
					return tok(token.UnsignedRightShiftAssign, ">>>=")
				}
				return tok(token.UnsignedRightShift, ">>>")
			}
			return tok(token.RightShift, ">>")
		}
		return tok(token.GreaterThan, ">")

	case l.ch == '&':
		l.readChar()
		if l.ch == '&' {
			l.readChar()
			return tok(token.And, "&&")
		}
		if l.ch == '=' {
			l.readChar()
			return tok(token.AmpersandAssign, "&=")
		}
		return tok(token.BitwiseAnd, "&")

	case l.ch == '|':
		l.readChar()
		if l.ch == '|' {
			l.readChar()
			return tok(token.Or, "||")
		}
		if l.ch == '=' {
			l.readChar()
			return tok(token.PipeAssign, "|=")
		}
		return tok(token.BitwiseOr, "|")

	case l.ch == '^':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return tok(token.CaretAssign, "^=")
		}
		return tok(token.BitwiseXor, "^")

	case l.ch == '"' || l.ch == '\'':
		return l.readString(line, col, start)

	case isDigit(l.ch):
		return l.readNumber(line, col, start)

	case isIdentStart(l.ch):
		return l.readIdentifier(line, col, start)

	default:
		ch := string(l.ch)
		l.readChar()
		return tok(token.Illegal, ch)
	}
}

func (l *Lexer) readIdentifier(line, col, start int) token.Token {
	startPos := l.pos
	for isIdentPart(l.ch) {
		l.readChar()
	}
	lit := l.input[startPos:l.pos]
	tt := token.LookupIdentifier(lit)
	l.prevType = tt
	return token.Token{Type: tt, Literal: lit, Line: line, Column: col, Start: start, End: l.pos + 1}
}

func (l *Lexer) readNumber(line, col, start int) token.Token {
	startPos := l.pos
	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		for isHexDigit(l.ch) {
			l.readChar()
		}
	} else {
		for isDigit(l.ch) {
			l.readChar()
		}
		if l.ch == '.' {
			l.readChar()
			for isDigit(l.ch) {
				l.readChar()
			}
		}
		if l.ch == 'e' || l.ch == 'E' {
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}
	lit := l.input[startPos:l.pos]
	l.prevType = token.Number
	return token.Token{Type: token.Number, Literal: lit, Line: line, Column: col, Start: start, End: l.pos + 1}
}

func (l *Lexer) readString(line, col, start int) token.Token {
	quote := l.ch
	l.readChar()
	var sb strings.Builder
	for l.ch != quote {
		if l.ch == 0 || l.ch == '\n' {
			l.prevType = token.Illegal
			return token.Token{Type: token.Illegal, Literal: "unterminated string", Line: line, Column: col, Start: start, End: l.pos + 1}
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case 'r':
				sb.WriteRune('\r')
			case 'b':
				sb.WriteRune('\b')
			case 'f':
				sb.WriteRune('\f')
			case 'v':
				sb.WriteRune('\v')
			case '0':
				if !isDigit(l.peekChar()) {
					sb.WriteRune(0)
				}
			case 'x':
				h := l.readHexDigits(2)
				sb.WriteRune(rune(h))
			case 'u':
				h := l.readHexDigits(4)
				sb.WriteRune(rune(h))
			case '\n':
				// line continuation
				l.line++
				l.col = 0
			default:
				sb.WriteRune(l.ch)
			}
			l.readChar()
			continue
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	l.readChar() // consume closing quote
	l.prevType = token.String
	return token.Token{Type: token.String, Literal: sb.String(), Line: line, Column: col, Start: start, End: l.pos + 1}
}

// readHexDigits consumes up to n hex digits following the current escape
// character and returns their value. The caller's readChar consumes the last.
func (l *Lexer) readHexDigits(n int) int {
	v := 0
	for i := 0; i < n; i++ {
		c := l.peekChar()
		if !isHexDigit(c) {
			break
		}
		l.readChar()
		v = v*16 + hexValue(c)
	}
	return v
}

// readRegExp scans a regular expression literal body plus flags. The decision
// that '/' starts a regex here was already made from the previous token.
func (l *Lexer) readRegExp(line, col, start int) token.Token {
	startPos := l.pos
	l.readChar() // consume '/'
	inClass := false
	for {
		if l.ch == 0 || l.ch == '\n' {
			l.prevType = token.Illegal
			return token.Token{Type: token.Illegal, Literal: "unterminated regular expression", Line: line, Column: col, Start: start, End: l.pos + 1}
		}
		if l.ch == '\\' {
			l.readChar()
			l.readChar()
			continue
		}
		if l.ch == '[' {
			inClass = true
		} else if l.ch == ']' {
			inClass = false
		} else if l.ch == '/' && !inClass {
			break
		}
		l.readChar()
	}
	l.readChar() // consume closing '/'
	for isIdentPart(l.ch) {
		l.readChar()
	}
	lit := l.input[startPos:l.pos]
	l.prevType = token.RegExp
	return token.Token{Type: token.RegExp, Literal: lit, Line: line, Column: col, Start: start, End: l.pos + 1}
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func hexValue(ch rune) int {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0')
	case ch >= 'a' && ch <= 'f':
		return int(ch-'a') + 10
	default:
		return int(ch-'A') + 10
	}
}

func isIdentStart(ch rune) bool {
	return ch == '_' || ch == '$' || unicode.IsLetter(ch)
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || unicode.IsDigit(ch)
}
