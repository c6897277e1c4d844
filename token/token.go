package token

type TokenType int

const (
	// Literals
	Illegal TokenType = iota
	EOF
	Identifier
	Number
	String
	RegExp

	// Operators
	Plus
	Minus
	Asterisk
	Slash
	Percent
	Assign
	PlusAssign
	MinusAssign
	AsteriskAssign
	SlashAssign
	PercentAssign
	AmpersandAssign
	PipeAssign
	CaretAssign
	LeftShiftAssign
	RightShiftAssign
	UnsignedRightShiftAssign
	Equal
	NotEqual
	StrictEqual
	StrictNotEqual
	LessThan
	GreaterThan
	LessThanOrEqual
	GreaterThanOrEqual
	And
	Or
	Not
	BitwiseAnd
	BitwiseOr
	BitwiseXor
	BitwiseNot
	LeftShift
	RightShift
	UnsignedRightShift
	Increment
	Decrement

	// Delimiters
	LeftParen
	RightParen
	LeftBrace
	RightBrace
	LeftBracket
	RightBracket
	Semicolon
	Colon
	Comma
	Dot
	QuestionMark

	// Keywords
	Var
	Function
	Return
	If
	Else
	While
	For
	Do
	Break
	Continue
	Switch
	Case
	Default
	Throw
	Try
	Catch
	Finally
	New
	Delete
	Typeof
	Void
	In
	Instanceof
	This
	True
	False
	Null
	Debugger
	With
)

// Token carries the lexeme plus its position. Start and End are byte offsets
// into the source counted from 1, so a zero offset means "no position"
// (used to mark stripped startup-code nodes).
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
	Start   int
	End     int
}

var Keywords = map[string]TokenType{
	"var":        Var,
	"function":   Function,
	"return":     Return,
	"if":         If,
	"else":       Else,
	"while":      While,
	"for":        For,
	"do":         Do,
	"break":      Break,
	"continue":   Continue,
	"switch":     Switch,
	"case":       Case,
	"default":    Default,
	"throw":      Throw,
	"try":        Try,
	"catch":      Catch,
	"finally":    Finally,
	"new":        New,
	"delete":     Delete,
	"typeof":     Typeof,
	"void":       Void,
	"in":         In,
	"instanceof": Instanceof,
	"this":       This,
	"true":       True,
	"false":      False,
	"null":       Null,
	"debugger":   Debugger,
	"with":       With,
}

func LookupIdentifier(ident string) TokenType {
	if tok, ok := Keywords[ident]; ok {
		return tok
	}
	return Identifier
}
