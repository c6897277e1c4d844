package lexer

import (
	"testing"

	"github.com/pawsong/js-interp/token"
)

func expectTokens(t *testing.T, input string, expected []struct {
	typ token.TokenType
	lit string
}) {
	t.Helper()
	l := New(input)
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp.typ {
			t.Errorf("test[%d]: type wrong. expected=%d, got=%d (lit=%q)", i, exp.typ, tok.Type, tok.Literal)
		}
		if tok.Literal != exp.lit {
			t.Errorf("test[%d]: literal wrong. expected=%q, got=%q", i, exp.lit, tok.Literal)
		}
	}
}

func TestPunctuation(t *testing.T) {
	expectTokens(t, `( ) { } [ ] ; : , . ? ~`, []struct {
		typ token.TokenType
		lit string
	}{
		{token.LeftParen, "("},
		{token.RightParen, ")"},
		{token.LeftBrace, "{"},
		{token.RightBrace, "}"},
		{token.LeftBracket, "["},
		{token.RightBracket, "]"},
		{token.Semicolon, ";"},
		{token.Colon, ":"},
		{token.Comma, ","},
		{token.Dot, "."},
		{token.QuestionMark, "?"},
		{token.BitwiseNot, "~"},
		{token.EOF, ""},
	})
}

func TestOperators(t *testing.T) {
	// no bare `/` here: after an operator the scanner reads `/` as a regex
	// start, so division is covered separately in TestRegExpVersusDivision
	expectTokens(t, `+ - * % = += -= == != === !== < > <= >= && || ! & | ^ << >> >>> ++ --`, []struct {
		typ token.TokenType
		lit string
	}{
		{token.Plus, "+"},
		{token.Minus, "-"},
		{token.Asterisk, "*"},
		{token.Percent, "%"},
		{token.Assign, "="},
		{token.PlusAssign, "+="},
		{token.MinusAssign, "-="},
		{token.Equal, "=="},
		{token.NotEqual, "!="},
		{token.StrictEqual, "==="},
		{token.StrictNotEqual, "!=="},
		{token.LessThan, "<"},
		{token.GreaterThan, ">"},
		{token.LessThanOrEqual, "<="},
		{token.GreaterThanOrEqual, ">="},
		{token.And, "&&"},
		{token.Or, "||"},
		{token.Not, "!"},
		{token.BitwiseAnd, "&"},
		{token.BitwiseOr, "|"},
		{token.BitwiseXor, "^"},
		{token.LeftShift, "<<"},
		{token.RightShift, ">>"},
		{token.UnsignedRightShift, ">>>"},
		{token.Increment, "++"},
		{token.Decrement, "--"},
		{token.EOF, ""},
	})
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	expectTokens(t, `var foo function typeof instanceof $x _y`, []struct {
		typ token.TokenType
		lit string
	}{
		{token.Var, "var"},
		{token.Identifier, "foo"},
		{token.Function, "function"},
		{token.Typeof, "typeof"},
		{token.Instanceof, "instanceof"},
		{token.Identifier, "$x"},
		{token.Identifier, "_y"},
		{token.EOF, ""},
	})
}

func TestNumbers(t *testing.T) {
	expectTokens(t, `0 42 3.14 .5 1e3 2.5e-2 0xFF`, []struct {
		typ token.TokenType
		lit string
	}{
		{token.Number, "0"},
		{token.Number, "42"},
		{token.Number, "3.14"},
		{token.Number, ".5"},
		{token.Number, "1e3"},
		{token.Number, "2.5e-2"},
		{token.Number, "0xFF"},
		{token.EOF, ""},
	})
}

func TestStrings(t *testing.T) {
	expectTokens(t, `"hello" 'it' "a\nb" "A" "q\"q"`, []struct {
		typ token.TokenType
		lit string
	}{
		{token.String, "hello"},
		{token.String, "it"},
		{token.String, "a\nb"},
		{token.String, "A"},
		{token.String, `q"q`},
		{token.EOF, ""},
	})
}

func TestUnterminatedString(t *testing.T) {
	l := New(`"oops`)
	tok := l.NextToken()
	if tok.Type != token.Illegal {
		t.Fatalf("expected Illegal, got %d (%q)", tok.Type, tok.Literal)
	}
}

func TestComments(t *testing.T) {
	expectTokens(t, "1 // line comment\n/* block\ncomment */ 2", []struct {
		typ token.TokenType
		lit string
	}{
		{token.Number, "1"},
		{token.Number, "2"},
		{token.EOF, ""},
	})
}

// A slash after a value is division; after an operator or keyword it starts
// a regular expression.
func TestRegExpVersusDivision(t *testing.T) {
	l := New(`a / b`)
	for _, want := range []token.TokenType{token.Identifier, token.Slash, token.Identifier} {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("division context: expected %d, got %d (%q)", want, tok.Type, tok.Literal)
		}
	}

	l = New(`x = /ab+c/gi`)
	types := []token.TokenType{token.Identifier, token.Assign, token.RegExp}
	var lit string
	for _, want := range types {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("regexp context: expected %d, got %d (%q)", want, tok.Type, tok.Literal)
		}
		lit = tok.Literal
	}
	if lit != "/ab+c/gi" {
		t.Fatalf("regexp literal wrong: %q", lit)
	}

	l = New(`return /x/[0]`)
	tok := l.NextToken()
	if tok.Type != token.Return {
		t.Fatalf("expected return, got %q", tok.Literal)
	}
	tok = l.NextToken()
	if tok.Type != token.RegExp {
		t.Fatalf("slash after return must start a regexp, got %d (%q)", tok.Type, tok.Literal)
	}
}

func TestRegExpClassWithSlash(t *testing.T) {
	l := New(`= /[/]/`)
	l.NextToken()
	tok := l.NextToken()
	if tok.Type != token.RegExp || tok.Literal != "/[/]/" {
		t.Fatalf("slash inside a character class must not terminate: %d %q", tok.Type, tok.Literal)
	}
}

func TestPositions(t *testing.T) {
	l := New("ab cd\nef")
	a := l.NextToken()
	if a.Start != 1 || a.End != 3 || a.Line != 1 || a.Column != 1 {
		t.Fatalf("ab position wrong: %+v", a)
	}
	c := l.NextToken()
	if c.Start != 4 || c.End != 6 {
		t.Fatalf("cd position wrong: %+v", c)
	}
	e := l.NextToken()
	if e.Line != 2 {
		t.Fatalf("ef line wrong: %+v", e)
	}
}
