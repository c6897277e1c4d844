// Package ast defines an ESTree-shaped abstract syntax tree for ECMAScript 5.
// Node kinds and field names follow the ESTree spec so that hosts may hand
// the interpreter a pre-built program in place of source text.
package ast

// Loc is embedded in every node. Start and End are 1-based byte offsets into
// the source; both zero means the node has no position (startup code whose
// positions were stripped).
type Loc struct {
	Start int
	End   int
}

func (l *Loc) Pos() (int, int) { return l.Start, l.End }
func (l *Loc) SetPos(start, end int) {
	l.Start = start
	l.End = end
}

// Node is the interface all AST nodes implement. Type returns the ESTree
// node kind ("Program", "BinaryExpression", ...).
type Node interface {
	Type() string
	Pos() (start, end int)
	SetPos(start, end int)
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

// Program is the root node of every AST.
type Program struct {
	Loc
	Body []Statement
}

// ---------- Statements ----------

type ExpressionStatement struct {
	Loc
	Expression Expression
}

type BlockStatement struct {
	Loc
	Body []Statement
}

type EmptyStatement struct {
	Loc
}

type DebuggerStatement struct {
	Loc
}

type VariableDeclaration struct {
	Loc
	Declarations []*VariableDeclarator
	Kind         string // always "var" in ES5
}

type VariableDeclarator struct {
	Loc
	Id   *Identifier
	Init Expression // may be nil
}

type ReturnStatement struct {
	Loc
	Argument Expression // may be nil
}

type IfStatement struct {
	Loc
	Test       Expression
	Consequent Statement
	Alternate  Statement // may be nil
}

type WhileStatement struct {
	Loc
	Test Expression
	Body Statement
}

type DoWhileStatement struct {
	Loc
	Body Statement
	Test Expression
}

type ForStatement struct {
	Loc
	Init   Node // VariableDeclaration, Expression, or nil
	Test   Expression
	Update Expression
	Body   Statement
}

type ForInStatement struct {
	Loc
	Left  Node // VariableDeclaration or Expression
	Right Expression
	Body  Statement
}

type BreakStatement struct {
	Loc
	Label *Identifier // may be nil
}

type ContinueStatement struct {
	Loc
	Label *Identifier // may be nil
}

type SwitchStatement struct {
	Loc
	Discriminant Expression
	Cases        []*SwitchCase
}

type SwitchCase struct {
	Loc
	Test       Expression // nil for default
	Consequent []Statement
}

type ThrowStatement struct {
	Loc
	Argument Expression
}

type TryStatement struct {
	Loc
	Block     *BlockStatement
	Handler   *CatchClause    // may be nil
	Finalizer *BlockStatement // may be nil
}

type CatchClause struct {
	Loc
	Param *Identifier
	Body  *BlockStatement
}

type LabeledStatement struct {
	Loc
	Label *Identifier
	Body  Statement
}

type WithStatement struct {
	Loc
	Object Expression
	Body   Statement
}

type FunctionDeclaration struct {
	Loc
	Id     *Identifier
	Params []*Identifier
	Body   *BlockStatement
}

// ---------- Expressions ----------

type Identifier struct {
	Loc
	Name string
}

// LiteralKind discriminates the payload of a Literal node.
type LiteralKind int

const (
	LiteralNumber LiteralKind = iota
	LiteralString
	LiteralBoolean
	LiteralNull
	LiteralRegExp
)

type Literal struct {
	Loc
	Kind    LiteralKind
	Number  float64
	Str     string
	Boolean bool
	// regexp literals
	Pattern string
	Flags   string
	Raw     string
}

type ThisExpression struct {
	Loc
}

type ArrayExpression struct {
	Loc
	Elements []Expression // nil entries are elisions: [1,,3]
}

type ObjectExpression struct {
	Loc
	Properties []*Property
}

type Property struct {
	Loc
	Key   Expression // Identifier or Literal
	Value Expression
	Kind  string // "init", "get", "set"
}

type FunctionExpression struct {
	Loc
	Id     *Identifier // may be nil
	Params []*Identifier
	Body   *BlockStatement
}

type UnaryExpression struct {
	Loc
	Operator string
	Prefix   bool
	Argument Expression
}

type UpdateExpression struct {
	Loc
	Operator string // "++" or "--"
	Argument Expression
	Prefix   bool
}

type BinaryExpression struct {
	Loc
	Operator string
	Left     Expression
	Right    Expression
}

type LogicalExpression struct {
	Loc
	Operator string // "&&" or "||"
	Left     Expression
	Right    Expression
}

type AssignmentExpression struct {
	Loc
	Operator string
	Left     Expression
	Right    Expression
}

type ConditionalExpression struct {
	Loc
	Test       Expression
	Consequent Expression
	Alternate  Expression
}

type CallExpression struct {
	Loc
	Callee    Expression
	Arguments []Expression
}

type NewExpression struct {
	Loc
	Callee    Expression
	Arguments []Expression
}

type MemberExpression struct {
	Loc
	Object   Expression
	Property Expression
	Computed bool
}

type SequenceExpression struct {
	Loc
	Expressions []Expression
}

// FunctionNode is implemented by the two function node kinds so the runtime
// can hold either behind one field.
type FunctionNode interface {
	Node
	FunctionParams() []*Identifier
	FunctionBody() *BlockStatement
}

func (f *FunctionDeclaration) FunctionParams() []*Identifier { return f.Params }
func (f *FunctionDeclaration) FunctionBody() *BlockStatement { return f.Body }
func (f *FunctionExpression) FunctionParams() []*Identifier  { return f.Params }
func (f *FunctionExpression) FunctionBody() *BlockStatement  { return f.Body }

// --- marker methods ---

func (s *ExpressionStatement) statementNode() {}
func (s *BlockStatement) statementNode()      {}
func (s *EmptyStatement) statementNode()      {}
func (s *DebuggerStatement) statementNode()   {}
func (s *VariableDeclaration) statementNode() {}
func (s *ReturnStatement) statementNode()     {}
func (s *IfStatement) statementNode()         {}
func (s *WhileStatement) statementNode()      {}
func (s *DoWhileStatement) statementNode()    {}
func (s *ForStatement) statementNode()        {}
func (s *ForInStatement) statementNode()      {}
func (s *BreakStatement) statementNode()      {}
func (s *ContinueStatement) statementNode()   {}
func (s *SwitchStatement) statementNode()     {}
func (s *ThrowStatement) statementNode()      {}
func (s *TryStatement) statementNode()        {}
func (s *LabeledStatement) statementNode()    {}
func (s *WithStatement) statementNode()       {}
func (s *FunctionDeclaration) statementNode() {}

func (e *Identifier) expressionNode()            {}
func (e *Literal) expressionNode()               {}
func (e *ThisExpression) expressionNode()        {}
func (e *ArrayExpression) expressionNode()       {}
func (e *ObjectExpression) expressionNode()      {}
func (e *FunctionExpression) expressionNode()    {}
func (e *UnaryExpression) expressionNode()       {}
func (e *UpdateExpression) expressionNode()      {}
func (e *BinaryExpression) expressionNode()      {}
func (e *LogicalExpression) expressionNode()     {}
func (e *AssignmentExpression) expressionNode()  {}
func (e *ConditionalExpression) expressionNode() {}
func (e *CallExpression) expressionNode()        {}
func (e *NewExpression) expressionNode()         {}
func (e *MemberExpression) expressionNode()      {}
func (e *SequenceExpression) expressionNode()    {}

// --- Type implementations ---

func (p *Program) Type() string              { return "Program" }
func (s *ExpressionStatement) Type() string  { return "ExpressionStatement" }
func (s *BlockStatement) Type() string       { return "BlockStatement" }
func (s *EmptyStatement) Type() string       { return "EmptyStatement" }
func (s *DebuggerStatement) Type() string    { return "DebuggerStatement" }
func (s *VariableDeclaration) Type() string  { return "VariableDeclaration" }
func (s *VariableDeclarator) Type() string   { return "VariableDeclarator" }
func (s *ReturnStatement) Type() string      { return "ReturnStatement" }
func (s *IfStatement) Type() string          { return "IfStatement" }
func (s *WhileStatement) Type() string       { return "WhileStatement" }
func (s *DoWhileStatement) Type() string     { return "DoWhileStatement" }
func (s *ForStatement) Type() string         { return "ForStatement" }
func (s *ForInStatement) Type() string       { return "ForInStatement" }
func (s *BreakStatement) Type() string       { return "BreakStatement" }
func (s *ContinueStatement) Type() string    { return "ContinueStatement" }
func (s *SwitchStatement) Type() string      { return "SwitchStatement" }
func (s *SwitchCase) Type() string           { return "SwitchCase" }
func (s *ThrowStatement) Type() string       { return "ThrowStatement" }
func (s *TryStatement) Type() string         { return "TryStatement" }
func (s *CatchClause) Type() string          { return "CatchClause" }
func (s *LabeledStatement) Type() string     { return "LabeledStatement" }
func (s *WithStatement) Type() string        { return "WithStatement" }
func (s *FunctionDeclaration) Type() string  { return "FunctionDeclaration" }
func (e *Identifier) Type() string           { return "Identifier" }
func (e *Literal) Type() string              { return "Literal" }
func (e *ThisExpression) Type() string       { return "ThisExpression" }
func (e *ArrayExpression) Type() string      { return "ArrayExpression" }
func (e *ObjectExpression) Type() string     { return "ObjectExpression" }
func (e *Property) Type() string             { return "Property" }
func (e *FunctionExpression) Type() string   { return "FunctionExpression" }
func (e *UnaryExpression) Type() string      { return "UnaryExpression" }
func (e *UpdateExpression) Type() string     { return "UpdateExpression" }
func (e *BinaryExpression) Type() string     { return "BinaryExpression" }
func (e *LogicalExpression) Type() string    { return "LogicalExpression" }
func (e *AssignmentExpression) Type() string { return "AssignmentExpression" }
func (e *ConditionalExpression) Type() string {
	return "ConditionalExpression"
}
func (e *CallExpression) Type() string     { return "CallExpression" }
func (e *NewExpression) Type() string      { return "NewExpression" }
func (e *MemberExpression) Type() string   { return "MemberExpression" }
func (e *SequenceExpression) Type() string { return "SequenceExpression" }
