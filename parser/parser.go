// Package parser turns ECMAScript 5 source into an ESTree-shaped AST.
// The interpreter depends on it in exactly two places: parsing a whole
// program, and parsing the small function snippet built by Function(...).
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pawsong/js-interp/ast"
	"github.com/pawsong/js-interp/lexer"
	"github.com/pawsong/js-interp/token"
)

type Parser struct {
	l *lexer.Lexer

	curToken  token.Token
	peekToken token.Token

	// true when a line terminator occurred before curToken (drives ASI and
	// the restricted productions: return/break/continue/postfix ++).
	curLineBreak bool
	prevEnd      int // End offset of the last consumed token

	errors []error
}

func New(source string) *Parser {
	p := &Parser{l: lexer.New(source)}
	p.nextToken()
	p.nextToken()
	p.curLineBreak = true
	return p
}

// ParseProgram parses the whole source, accumulating errors rather than
// stopping at the first one.
func (p *Parser) ParseProgram() (*ast.Program, []error) {
	program := &ast.Program{}
	program.Start = 1
	for !p.curTokenIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			program.Body = append(program.Body, stmt)
		} else {
			// error recovery: skip the offending token
			p.nextToken()
		}
	}
	program.End = p.prevEnd
	return program, p.errors
}

func (p *Parser) nextToken() {
	prevLine := p.curToken.Line
	p.prevEnd = p.curToken.End
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
	p.curLineBreak = p.curToken.Line > prevLine
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expect(t token.TokenType) bool {
	if p.curTokenIs(t) {
		p.nextToken()
		return true
	}
	p.addError("line %d: expected %s, got %q", p.curToken.Line, tokenName(t), p.curToken.Literal)
	return false
}

func (p *Parser) addError(format string, args ...interface{}) {
	p.errors = append(p.errors, fmt.Errorf(format, args...))
}

// consumeSemicolon implements automatic semicolon insertion: an explicit
// semicolon, a closing brace, EOF, or a preceding line break all terminate
// the statement.
func (p *Parser) consumeSemicolon() {
	if p.curTokenIs(token.Semicolon) {
		p.nextToken()
		return
	}
	if p.curTokenIs(token.RightBrace) || p.curTokenIs(token.EOF) {
		return
	}
	if p.curLineBreak {
		return
	}
	p.addError("line %d: expected semicolon, got %q", p.curToken.Line, p.curToken.Literal)
}

// ---------- Statements ----------

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.Var:
		return p.parseVariableDeclaration()
	case token.LeftBrace:
		return p.parseBlockStatement()
	case token.Semicolon:
		s := &ast.EmptyStatement{}
		s.SetPos(p.curToken.Start, p.curToken.End)
		p.nextToken()
		return s
	case token.Return:
		return p.parseReturnStatement()
	case token.If:
		return p.parseIfStatement()
	case token.While:
		return p.parseWhileStatement()
	case token.Do:
		return p.parseDoWhileStatement()
	case token.For:
		return p.parseForStatement()
	case token.Break:
		return p.parseBreakStatement()
	case token.Continue:
		return p.parseContinueStatement()
	case token.Switch:
		return p.parseSwitchStatement()
	case token.Throw:
		return p.parseThrowStatement()
	case token.Try:
		return p.parseTryStatement()
	case token.Function:
		return p.parseFunctionDeclaration()
	case token.With:
		return p.parseWithStatement()
	case token.Debugger:
		s := &ast.DebuggerStatement{}
		s.Start = p.curToken.Start
		p.nextToken()
		p.consumeSemicolon()
		s.End = p.prevEnd
		return s
	case token.EOF:
		return nil
	default:
		return p.parseExpressionOrLabeledStatement()
	}
}

func (p *Parser) parseExpressionOrLabeledStatement() ast.Statement {
	if p.curTokenIs(token.Identifier) && p.peekTokenIs(token.Colon) {
		return p.parseLabeledStatement()
	}
	return p.parseExpressionStatement()
}

func (p *Parser) parseLabeledStatement() ast.Statement {
	stmt := &ast.LabeledStatement{}
	stmt.Start = p.curToken.Start
	stmt.Label = p.parseIdentifier()
	p.expect(token.Colon)
	stmt.Body = p.parseStatement()
	stmt.End = p.prevEnd
	return stmt
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	stmt := &ast.ExpressionStatement{}
	stmt.Start = p.curToken.Start
	stmt.Expression = p.parseExpression(false)
	if stmt.Expression == nil {
		return nil
	}
	p.consumeSemicolon()
	stmt.End = p.prevEnd
	return stmt
}

func (p *Parser) parseVariableDeclaration() *ast.VariableDeclaration {
	decl := &ast.VariableDeclaration{Kind: "var"}
	decl.Start = p.curToken.Start
	p.nextToken() // consume 'var'
	for {
		d := p.parseVariableDeclarator(false)
		if d == nil {
			break
		}
		decl.Declarations = append(decl.Declarations, d)
		if !p.curTokenIs(token.Comma) {
			break
		}
		p.nextToken()
	}
	p.consumeSemicolon()
	decl.End = p.prevEnd
	return decl
}

func (p *Parser) parseVariableDeclarator(noIn bool) *ast.VariableDeclarator {
	if !p.curTokenIs(token.Identifier) {
		p.addError("line %d: expected variable name, got %q", p.curToken.Line, p.curToken.Literal)
		return nil
	}
	d := &ast.VariableDeclarator{}
	d.Start = p.curToken.Start
	d.Id = p.parseIdentifier()
	if p.curTokenIs(token.Assign) {
		p.nextToken()
		d.Init = p.parseAssignment(noIn)
	}
	d.End = p.prevEnd
	return d
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{}
	block.Start = p.curToken.Start
	p.expect(token.LeftBrace)
	for !p.curTokenIs(token.RightBrace) && !p.curTokenIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Body = append(block.Body, stmt)
		} else {
			p.nextToken()
		}
	}
	p.expect(token.RightBrace)
	block.End = p.prevEnd
	return block
}

func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	stmt := &ast.ReturnStatement{}
	stmt.Start = p.curToken.Start
	p.nextToken()
	// restricted production: no argument after a line break
	if !p.curTokenIs(token.Semicolon) && !p.curTokenIs(token.RightBrace) &&
		!p.curTokenIs(token.EOF) && !p.curLineBreak {
		stmt.Argument = p.parseExpression(false)
	}
	p.consumeSemicolon()
	stmt.End = p.prevEnd
	return stmt
}

func (p *Parser) parseIfStatement() *ast.IfStatement {
	stmt := &ast.IfStatement{}
	stmt.Start = p.curToken.Start
	p.nextToken()
	p.expect(token.LeftParen)
	stmt.Test = p.parseExpression(false)
	p.expect(token.RightParen)
	stmt.Consequent = p.parseStatement()
	if p.curTokenIs(token.Else) {
		p.nextToken()
		stmt.Alternate = p.parseStatement()
	}
	stmt.End = p.prevEnd
	return stmt
}

func (p *Parser) parseWhileStatement() *ast.WhileStatement {
	stmt := &ast.WhileStatement{}
	stmt.Start = p.curToken.Start
	p.nextToken()
	p.expect(token.LeftParen)
	stmt.Test = p.parseExpression(false)
	p.expect(token.RightParen)
	stmt.Body = p.parseStatement()
	stmt.End = p.prevEnd
	return stmt
}

func (p *Parser) parseDoWhileStatement() *ast.DoWhileStatement {
	stmt := &ast.DoWhileStatement{}
	stmt.Start = p.curToken.Start
	p.nextToken()
	stmt.Body = p.parseStatement()
	p.expect(token.While)
	p.expect(token.LeftParen)
	stmt.Test = p.parseExpression(false)
	p.expect(token.RightParen)
	if p.curTokenIs(token.Semicolon) {
		p.nextToken()
	}
	stmt.End = p.prevEnd
	return stmt
}

func (p *Parser) parseForStatement() ast.Statement {
	start := p.curToken.Start
	p.nextToken()
	p.expect(token.LeftParen)

	if p.curTokenIs(token.Var) {
		declStart := p.curToken.Start
		p.nextToken()
		decl := &ast.VariableDeclaration{Kind: "var"}
		decl.Start = declStart
		for {
			d := p.parseVariableDeclarator(true)
			if d == nil {
				break
			}
			decl.Declarations = append(decl.Declarations, d)
			if !p.curTokenIs(token.Comma) {
				break
			}
			p.nextToken()
		}
		decl.End = p.prevEnd
		if p.curTokenIs(token.In) && len(decl.Declarations) == 1 {
			p.nextToken()
			return p.parseForInTail(start, decl)
		}
		return p.parseForTail(start, decl)
	}

	if p.curTokenIs(token.Semicolon) {
		return p.parseForTail(start, nil)
	}

	init := p.parseExpression(true)
	if p.curTokenIs(token.In) {
		if !isAssignTarget(init) {
			p.addError("line %d: invalid left-hand side in for-in", p.curToken.Line)
		}
		p.nextToken()
		return p.parseForInTail(start, init)
	}
	return p.parseForTail(start, init)
}

func (p *Parser) parseForTail(start int, init ast.Node) *ast.ForStatement {
	stmt := &ast.ForStatement{Init: init}
	stmt.Start = start
	p.expect(token.Semicolon)
	if !p.curTokenIs(token.Semicolon) {
		stmt.Test = p.parseExpression(false)
	}
	p.expect(token.Semicolon)
	if !p.curTokenIs(token.RightParen) {
		stmt.Update = p.parseExpression(false)
	}
	p.expect(token.RightParen)
	stmt.Body = p.parseStatement()
	stmt.End = p.prevEnd
	return stmt
}

func (p *Parser) parseForInTail(start int, left ast.Node) *ast.ForInStatement {
	stmt := &ast.ForInStatement{Left: left}
	stmt.Start = start
	stmt.Right = p.parseExpression(false)
	p.expect(token.RightParen)
	stmt.Body = p.parseStatement()
	stmt.End = p.prevEnd
	return stmt
}

func (p *Parser) parseBreakStatement() *ast.BreakStatement {
	stmt := &ast.BreakStatement{}
	stmt.Start = p.curToken.Start
	p.nextToken()
	if p.curTokenIs(token.Identifier) && !p.curLineBreak {
		stmt.Label = p.parseIdentifier()
	}
	p.consumeSemicolon()
	stmt.End = p.prevEnd
	return stmt
}

func (p *Parser) parseContinueStatement() *ast.ContinueStatement {
	stmt := &ast.ContinueStatement{}
	stmt.Start = p.curToken.Start
	p.nextToken()
	if p.curTokenIs(token.Identifier) && !p.curLineBreak {
		stmt.Label = p.parseIdentifier()
	}
	p.consumeSemicolon()
	stmt.End = p.prevEnd
	return stmt
}

func (p *Parser) parseSwitchStatement() *ast.SwitchStatement {
	stmt := &ast.SwitchStatement{}
	stmt.Start = p.curToken.Start
	p.nextToken()
	p.expect(token.LeftParen)
	stmt.Discriminant = p.parseExpression(false)
	p.expect(token.RightParen)
	p.expect(token.LeftBrace)
	sawDefault := false
	for !p.curTokenIs(token.RightBrace) && !p.curTokenIs(token.EOF) {
		c := &ast.SwitchCase{}
		c.Start = p.curToken.Start
		if p.curTokenIs(token.Case) {
			p.nextToken()
			c.Test = p.parseExpression(false)
		} else if p.curTokenIs(token.Default) {
			if sawDefault {
				p.addError("line %d: more than one default clause in switch", p.curToken.Line)
			}
			sawDefault = true
			p.nextToken()
		} else {
			p.addError("line %d: expected case or default, got %q", p.curToken.Line, p.curToken.Literal)
			p.nextToken()
			continue
		}
		p.expect(token.Colon)
		for !p.curTokenIs(token.Case) && !p.curTokenIs(token.Default) &&
			!p.curTokenIs(token.RightBrace) && !p.curTokenIs(token.EOF) {
			s := p.parseStatement()
			if s != nil {
				c.Consequent = append(c.Consequent, s)
			} else {
				p.nextToken()
			}
		}
		c.End = p.prevEnd
		stmt.Cases = append(stmt.Cases, c)
	}
	p.expect(token.RightBrace)
	stmt.End = p.prevEnd
	return stmt
}

func (p *Parser) parseThrowStatement() *ast.ThrowStatement {
	stmt := &ast.ThrowStatement{}
	stmt.Start = p.curToken.Start
	p.nextToken()
	if p.curLineBreak {
		p.addError("line %d: illegal newline after throw", p.curToken.Line)
	}
	stmt.Argument = p.parseExpression(false)
	p.consumeSemicolon()
	stmt.End = p.prevEnd
	return stmt
}

func (p *Parser) parseTryStatement() *ast.TryStatement {
	stmt := &ast.TryStatement{}
	stmt.Start = p.curToken.Start
	p.nextToken()
	stmt.Block = p.parseBlockStatement()
	if p.curTokenIs(token.Catch) {
		handler := &ast.CatchClause{}
		handler.Start = p.curToken.Start
		p.nextToken()
		p.expect(token.LeftParen)
		if p.curTokenIs(token.Identifier) {
			handler.Param = p.parseIdentifier()
		} else {
			p.addError("line %d: expected catch parameter", p.curToken.Line)
		}
		p.expect(token.RightParen)
		handler.Body = p.parseBlockStatement()
		handler.End = p.prevEnd
		stmt.Handler = handler
	}
	if p.curTokenIs(token.Finally) {
		p.nextToken()
		stmt.Finalizer = p.parseBlockStatement()
	}
	if stmt.Handler == nil && stmt.Finalizer == nil {
		p.addError("line %d: missing catch or finally after try", p.curToken.Line)
	}
	stmt.End = p.prevEnd
	return stmt
}

func (p *Parser) parseWithStatement() *ast.WithStatement {
	stmt := &ast.WithStatement{}
	stmt.Start = p.curToken.Start
	p.nextToken()
	p.expect(token.LeftParen)
	stmt.Object = p.parseExpression(false)
	p.expect(token.RightParen)
	stmt.Body = p.parseStatement()
	stmt.End = p.prevEnd
	return stmt
}

func (p *Parser) parseFunctionDeclaration() *ast.FunctionDeclaration {
	fn := &ast.FunctionDeclaration{}
	fn.Start = p.curToken.Start
	p.nextToken()
	if !p.curTokenIs(token.Identifier) {
		p.addError("line %d: expected function name, got %q", p.curToken.Line, p.curToken.Literal)
		return nil
	}
	fn.Id = p.parseIdentifier()
	fn.Params = p.parseFunctionParams()
	fn.Body = p.parseBlockStatement()
	fn.End = p.prevEnd
	return fn
}

func (p *Parser) parseFunctionParams() []*ast.Identifier {
	var params []*ast.Identifier
	p.expect(token.LeftParen)
	for !p.curTokenIs(token.RightParen) && !p.curTokenIs(token.EOF) {
		if !p.curTokenIs(token.Identifier) {
			p.addError("line %d: expected parameter name, got %q", p.curToken.Line, p.curToken.Literal)
			p.nextToken()
			continue
		}
		params = append(params, p.parseIdentifier())
		if p.curTokenIs(token.Comma) {
			p.nextToken()
		}
	}
	p.expect(token.RightParen)
	return params
}

// ---------- Expressions ----------

// parseExpression parses a full expression including the comma operator.
// noIn suppresses the `in` relational operator (for-statement headers).
func (p *Parser) parseExpression(noIn bool) ast.Expression {
	start := p.curToken.Start
	expr := p.parseAssignment(noIn)
	if expr == nil {
		return nil
	}
	if !p.curTokenIs(token.Comma) {
		return expr
	}
	seq := &ast.SequenceExpression{Expressions: []ast.Expression{expr}}
	seq.Start = start
	for p.curTokenIs(token.Comma) {
		p.nextToken()
		next := p.parseAssignment(noIn)
		if next == nil {
			break
		}
		seq.Expressions = append(seq.Expressions, next)
	}
	seq.End = p.prevEnd
	return seq
}

var assignOps = map[token.TokenType]string{
	token.Assign:                   "=",
	token.PlusAssign:               "+=",
	token.MinusAssign:              "-=",
	token.AsteriskAssign:           "*=",
	token.SlashAssign:              "/=",
	token.PercentAssign:            "%=",
	token.AmpersandAssign:          "&=",
	token.PipeAssign:               "|=",
	token.CaretAssign:              "^=",
	token.LeftShiftAssign:          "<<=",
	token.RightShiftAssign:         ">>=",
	token.UnsignedRightShiftAssign: ">>>=",
}

func (p *Parser) parseAssignment(noIn bool) ast.Expression {
	start := p.curToken.Start
	left := p.parseConditional(noIn)
	if left == nil {
		return nil
	}
	op, ok := assignOps[p.curToken.Type]
	if !ok {
		return left
	}
	if !isAssignTarget(left) {
		p.addError("line %d: invalid assignment target", p.curToken.Line)
	}
	p.nextToken()
	right := p.parseAssignment(noIn)
	expr := &ast.AssignmentExpression{Operator: op, Left: left, Right: right}
	expr.Start = start
	expr.End = p.prevEnd
	return expr
}

func isAssignTarget(e ast.Node) bool {
	switch e.(type) {
	case *ast.Identifier, *ast.MemberExpression:
		return true
	}
	return false
}

func (p *Parser) parseConditional(noIn bool) ast.Expression {
	start := p.curToken.Start
	test := p.parseBinary(0, noIn)
	if test == nil || !p.curTokenIs(token.QuestionMark) {
		return test
	}
	p.nextToken()
	expr := &ast.ConditionalExpression{Test: test}
	expr.Start = start
	expr.Consequent = p.parseAssignment(false)
	p.expect(token.Colon)
	expr.Alternate = p.parseAssignment(noIn)
	expr.End = p.prevEnd
	return expr
}

// binaryPrec returns the precedence of the current token as a binary
// operator, or 0 if it is not one.
func (p *Parser) binaryPrec(noIn bool) int {
	switch p.curToken.Type {
	case token.Or:
		return 1
	case token.And:
		return 2
	case token.BitwiseOr:
		return 3
	case token.BitwiseXor:
		return 4
	case token.BitwiseAnd:
		return 5
	case token.Equal, token.NotEqual, token.StrictEqual, token.StrictNotEqual:
		return 6
	case token.LessThan, token.GreaterThan, token.LessThanOrEqual, token.GreaterThanOrEqual, token.Instanceof:
		return 7
	case token.In:
		if noIn {
			return 0
		}
		return 7
	case token.LeftShift, token.RightShift, token.UnsignedRightShift:
		return 8
	case token.Plus, token.Minus:
		return 9
	case token.Asterisk, token.Slash, token.Percent:
		return 10
	}
	return 0
}

func (p *Parser) parseBinary(minPrec int, noIn bool) ast.Expression {
	start := p.curToken.Start
	left := p.parseUnary()
	for {
		prec := p.binaryPrec(noIn)
		if prec == 0 || prec <= minPrec || left == nil {
			return left
		}
		op := p.curToken.Literal
		logical := p.curTokenIs(token.And) || p.curTokenIs(token.Or)
		p.nextToken()
		right := p.parseBinary(prec, noIn)
		if logical {
			e := &ast.LogicalExpression{Operator: op, Left: left, Right: right}
			e.Start = start
			e.End = p.prevEnd
			left = e
		} else {
			e := &ast.BinaryExpression{Operator: op, Left: left, Right: right}
			e.Start = start
			e.End = p.prevEnd
			left = e
		}
	}
}

func (p *Parser) parseUnary() ast.Expression {
	start := p.curToken.Start
	switch p.curToken.Type {
	case token.Delete, token.Typeof, token.Void, token.Plus, token.Minus, token.Not, token.BitwiseNot:
		op := p.curToken.Literal
		p.nextToken()
		arg := p.parseUnary()
		e := &ast.UnaryExpression{Operator: op, Prefix: true, Argument: arg}
		e.Start = start
		e.End = p.prevEnd
		return e
	case token.Increment, token.Decrement:
		op := p.curToken.Literal
		p.nextToken()
		arg := p.parseUnary()
		if !isAssignTarget(arg) {
			p.addError("line %d: invalid %s operand", p.curToken.Line, op)
		}
		e := &ast.UpdateExpression{Operator: op, Argument: arg, Prefix: true}
		e.Start = start
		e.End = p.prevEnd
		return e
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expression {
	start := p.curToken.Start
	expr := p.parseLeftHandSide()
	// restricted production: postfix ++/-- must be on the same line
	if (p.curTokenIs(token.Increment) || p.curTokenIs(token.Decrement)) && !p.curLineBreak {
		if !isAssignTarget(expr) {
			p.addError("line %d: invalid %s operand", p.curToken.Line, p.curToken.Literal)
		}
		e := &ast.UpdateExpression{Operator: p.curToken.Literal, Argument: expr, Prefix: false}
		e.Start = start
		p.nextToken()
		e.End = p.prevEnd
		return e
	}
	return expr
}

func (p *Parser) parseLeftHandSide() ast.Expression {
	expr := p.parsePrimary()
	return p.parsePostfixOps(expr, true)
}

// parsePostfixOps applies call, dot and bracket suffixes left to right.
func (p *Parser) parsePostfixOps(expr ast.Expression, allowCall bool) ast.Expression {
	for expr != nil {
		start, _ := expr.Pos()
		switch {
		case p.curTokenIs(token.Dot):
			p.nextToken()
			if !p.curTokenIs(token.Identifier) && token.LookupIdentifier(p.curToken.Literal) == token.Identifier {
				p.addError("line %d: expected property name, got %q", p.curToken.Line, p.curToken.Literal)
				return expr
			}
			// keywords are valid property names after a dot in most real code
			prop := &ast.Identifier{Name: p.curToken.Literal}
			prop.SetPos(p.curToken.Start, p.curToken.End)
			p.nextToken()
			e := &ast.MemberExpression{Object: expr, Property: prop, Computed: false}
			e.Start = start
			e.End = p.prevEnd
			expr = e
		case p.curTokenIs(token.LeftBracket):
			p.nextToken()
			prop := p.parseExpression(false)
			p.expect(token.RightBracket)
			e := &ast.MemberExpression{Object: expr, Property: prop, Computed: true}
			e.Start = start
			e.End = p.prevEnd
			expr = e
		case allowCall && p.curTokenIs(token.LeftParen):
			args := p.parseArguments()
			e := &ast.CallExpression{Callee: expr, Arguments: args}
			e.Start = start
			e.End = p.prevEnd
			expr = e
		default:
			return expr
		}
	}
	return expr
}

func (p *Parser) parseArguments() []ast.Expression {
	var args []ast.Expression
	p.expect(token.LeftParen)
	for !p.curTokenIs(token.RightParen) && !p.curTokenIs(token.EOF) {
		arg := p.parseAssignment(false)
		if arg == nil {
			break
		}
		args = append(args, arg)
		if p.curTokenIs(token.Comma) {
			p.nextToken()
		}
	}
	p.expect(token.RightParen)
	return args
}

func (p *Parser) parseNewExpression() ast.Expression {
	start := p.curToken.Start
	p.nextToken() // consume 'new'
	// the callee is a member expression: suffixes bind to the callee until
	// the argument list, calls bind after
	callee := p.parsePrimary()
	callee = p.parsePostfixOps(callee, false)
	expr := &ast.NewExpression{Callee: callee}
	expr.Start = start
	if p.curTokenIs(token.LeftParen) {
		expr.Arguments = p.parseArguments()
	}
	expr.End = p.prevEnd
	return expr
}

func (p *Parser) parsePrimary() ast.Expression {
	switch p.curToken.Type {
	case token.Identifier:
		return p.parseIdentifier()
	case token.Number:
		return p.parseNumberLiteral()
	case token.String:
		lit := &ast.Literal{Kind: ast.LiteralString, Str: p.curToken.Literal}
		lit.SetPos(p.curToken.Start, p.curToken.End)
		p.nextToken()
		return lit
	case token.True, token.False:
		lit := &ast.Literal{Kind: ast.LiteralBoolean, Boolean: p.curTokenIs(token.True), Raw: p.curToken.Literal}
		lit.SetPos(p.curToken.Start, p.curToken.End)
		p.nextToken()
		return lit
	case token.Null:
		lit := &ast.Literal{Kind: ast.LiteralNull, Raw: "null"}
		lit.SetPos(p.curToken.Start, p.curToken.End)
		p.nextToken()
		return lit
	case token.RegExp:
		return p.parseRegExpLiteral()
	case token.This:
		e := &ast.ThisExpression{}
		e.SetPos(p.curToken.Start, p.curToken.End)
		p.nextToken()
		return e
	case token.LeftParen:
		p.nextToken()
		expr := p.parseExpression(false)
		p.expect(token.RightParen)
		return expr
	case token.LeftBracket:
		return p.parseArrayExpression()
	case token.LeftBrace:
		return p.parseObjectExpression()
	case token.Function:
		return p.parseFunctionExpression()
	case token.New:
		return p.parseNewExpression()
	default:
		p.addError("line %d: unexpected token %q", p.curToken.Line, p.curToken.Literal)
		return nil
	}
}

func (p *Parser) parseIdentifier() *ast.Identifier {
	ident := &ast.Identifier{Name: p.curToken.Literal}
	ident.SetPos(p.curToken.Start, p.curToken.End)
	p.nextToken()
	return ident
}

func (p *Parser) parseNumberLiteral() *ast.Literal {
	lit := &ast.Literal{Kind: ast.LiteralNumber, Raw: p.curToken.Literal}
	lit.SetPos(p.curToken.Start, p.curToken.End)
	n, err := parseJSNumber(p.curToken.Literal)
	if err != nil {
		p.addError("line %d: invalid number %q", p.curToken.Line, p.curToken.Literal)
	}
	lit.Number = n
	p.nextToken()
	return lit
}

// parseJSNumber handles decimal, hex (0x) and legacy octal (leading zero)
// numeric literal forms.
func parseJSNumber(s string) (float64, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		n, err := strconv.ParseUint(s[2:], 16, 64)
		return float64(n), err
	}
	if len(s) > 1 && s[0] == '0' && isAllOctal(s[1:]) {
		n, err := strconv.ParseUint(s[1:], 8, 64)
		return float64(n), err
	}
	return strconv.ParseFloat(s, 64)
}

func isAllOctal(s string) bool {
	for _, c := range s {
		if c < '0' || c > '7' {
			return false
		}
	}
	return len(s) > 0
}

func (p *Parser) parseRegExpLiteral() ast.Expression {
	raw := p.curToken.Literal
	lit := &ast.Literal{Kind: ast.LiteralRegExp, Raw: raw}
	lit.SetPos(p.curToken.Start, p.curToken.End)
	end := strings.LastIndex(raw, "/")
	if end <= 0 {
		p.addError("line %d: malformed regular expression %q", p.curToken.Line, raw)
	} else {
		lit.Pattern = raw[1:end]
		lit.Flags = raw[end+1:]
	}
	p.nextToken()
	return lit
}

func (p *Parser) parseArrayExpression() *ast.ArrayExpression {
	arr := &ast.ArrayExpression{}
	arr.Start = p.curToken.Start
	p.expect(token.LeftBracket)
	for !p.curTokenIs(token.RightBracket) && !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.Comma) {
			// elision
			arr.Elements = append(arr.Elements, nil)
			p.nextToken()
			continue
		}
		elem := p.parseAssignment(false)
		if elem == nil {
			break
		}
		arr.Elements = append(arr.Elements, elem)
		if p.curTokenIs(token.Comma) {
			p.nextToken()
			// a trailing comma before ] is not an elision
			if p.curTokenIs(token.RightBracket) {
				break
			}
			if p.curTokenIs(token.Comma) {
				continue
			}
			continue
		}
	}
	p.expect(token.RightBracket)
	arr.End = p.prevEnd
	return arr
}

func (p *Parser) parseObjectExpression() *ast.ObjectExpression {
	obj := &ast.ObjectExpression{}
	obj.Start = p.curToken.Start
	p.expect(token.LeftBrace)
	for !p.curTokenIs(token.RightBrace) && !p.curTokenIs(token.EOF) {
		prop := p.parseObjectProperty()
		if prop == nil {
			p.nextToken()
			continue
		}
		obj.Properties = append(obj.Properties, prop)
		if p.curTokenIs(token.Comma) {
			p.nextToken()
		}
	}
	p.expect(token.RightBrace)
	obj.End = p.prevEnd
	return obj
}

func (p *Parser) parseObjectProperty() *ast.Property {
	prop := &ast.Property{Kind: "init"}
	prop.Start = p.curToken.Start

	// accessor forms: get name() {...} / set name(v) {...}
	if p.curTokenIs(token.Identifier) && (p.curToken.Literal == "get" || p.curToken.Literal == "set") &&
		!p.peekTokenIs(token.Colon) && !p.peekTokenIs(token.Comma) && !p.peekTokenIs(token.RightBrace) && !p.peekTokenIs(token.LeftParen) {
		prop.Kind = p.curToken.Literal
		p.nextToken()
		prop.Key = p.parsePropertyKey()
		fn := &ast.FunctionExpression{}
		fnStart := p.curToken.Start
		fn.Params = p.parseFunctionParams()
		fn.Body = p.parseBlockStatement()
		fn.SetPos(fnStart, p.prevEnd)
		prop.Value = fn
		prop.End = p.prevEnd
		return prop
	}

	prop.Key = p.parsePropertyKey()
	if prop.Key == nil {
		return nil
	}
	p.expect(token.Colon)
	prop.Value = p.parseAssignment(false)
	prop.End = p.prevEnd
	return prop
}

func (p *Parser) parsePropertyKey() ast.Expression {
	switch {
	case p.curTokenIs(token.String):
		key := &ast.Literal{Kind: ast.LiteralString, Str: p.curToken.Literal}
		key.SetPos(p.curToken.Start, p.curToken.End)
		p.nextToken()
		return key
	case p.curTokenIs(token.Number):
		return p.parseNumberLiteral()
	case p.curTokenIs(token.Identifier) || token.LookupIdentifier(p.curToken.Literal) != token.Identifier:
		// identifiers and reserved words are both valid keys
		key := &ast.Identifier{Name: p.curToken.Literal}
		key.SetPos(p.curToken.Start, p.curToken.End)
		p.nextToken()
		return key
	default:
		p.addError("line %d: invalid property key %q", p.curToken.Line, p.curToken.Literal)
		return nil
	}
}

func (p *Parser) parseFunctionExpression() *ast.FunctionExpression {
	fn := &ast.FunctionExpression{}
	fn.Start = p.curToken.Start
	p.nextToken()
	if p.curTokenIs(token.Identifier) {
		fn.Id = p.parseIdentifier()
	}
	fn.Params = p.parseFunctionParams()
	fn.Body = p.parseBlockStatement()
	fn.End = p.prevEnd
	return fn
}

func tokenName(t token.TokenType) string {
	for lit, tt := range token.Keywords {
		if tt == t {
			return lit
		}
	}
	switch t {
	case token.Identifier:
		return "identifier"
	case token.Semicolon:
		return ";"
	case token.Colon:
		return ":"
	case token.Comma:
		return ","
	case token.LeftParen:
		return "("
	case token.RightParen:
		return ")"
	case token.LeftBrace:
		return "{"
	case token.RightBrace:
		return "}"
	case token.LeftBracket:
		return "["
	case token.RightBracket:
		return "]"
	}
	return fmt.Sprintf("token(%d)", int(t))
}
