package interpreter

import (
	"fmt"

	"github.com/pawsong/js-interp/ast"
	"github.com/pawsong/js-interp/runtime"
)

// frame is one entry of the evaluation stack. A frame's step runs at most
// one unit of work: push a child frame, or finish and pop itself with a
// value.
type frame interface {
	base() *frameBase
	step(ip *Interpreter) error
}

// frameBase carries the state every frame shares. n is the frame's progress
// counter; its meaning is private to each frame kind.
type frameBase struct {
	node  ast.Node
	scope *runtime.Scope

	value runtime.Value // last completed child's value
	ref   *reference    // last completed child's reference

	components bool // evaluate to a reference instead of a value
	labels     []string
	isLoop     bool
	isSwitch   bool
	n          int
}

func (fb *frameBase) base() *frameBase { return fb }

func (fb *frameBase) hasLabel(label string) bool {
	for _, l := range fb.labels {
		if l == label {
			return true
		}
	}
	return false
}

// reference names a mutable slot: a property of base, or, when base is nil,
// a binding resolved against scope.
type reference struct {
	base  runtime.Value
	scope *runtime.Scope
	name  string
}

// loopFrame is implemented by frames a continue statement can target.
type loopFrame interface {
	frame
	continueLoop()
}

func (ip *Interpreter) push(f frame) {
	ip.stack = append(ip.stack, f)
}

// pushNode creates and pushes the frame for node, returning its base so the
// caller can set flags (components, labels).
func (ip *Interpreter) pushNode(node ast.Node, scope *runtime.Scope) *frameBase {
	f := newFrame(node, scope)
	ip.push(f)
	return f.base()
}

// popValue removes the top frame, handing v to the new top frame.
func (ip *Interpreter) popValue(v runtime.Value) {
	ip.stack = ip.stack[:len(ip.stack)-1]
	if len(ip.stack) > 0 {
		ip.stack[len(ip.stack)-1].base().value = v
	}
}

// popRef removes the top frame, handing a reference to the new top frame.
func (ip *Interpreter) popRef(ref *reference) {
	ip.stack = ip.stack[:len(ip.stack)-1]
	if len(ip.stack) > 0 {
		ip.stack[len(ip.stack)-1].base().ref = ref
	}
}

// newFrame maps an AST node to its frame.
func newFrame(node ast.Node, scope *runtime.Scope) frame {
	fb := frameBase{node: node, scope: scope}
	switch n := node.(type) {
	// statements
	case *ast.ExpressionStatement:
		return &exprStatementFrame{frameBase: fb, stmt: n}
	case *ast.BlockStatement:
		return &blockFrame{frameBase: fb, body: n.Body}
	case *ast.EmptyStatement, *ast.DebuggerStatement, *ast.FunctionDeclaration:
		return &noopFrame{frameBase: fb}
	case *ast.VariableDeclaration:
		return &varDeclFrame{frameBase: fb, decl: n}
	case *ast.ReturnStatement:
		return &returnFrame{frameBase: fb, stmt: n}
	case *ast.IfStatement:
		return &ifFrame{frameBase: fb, stmt: n}
	case *ast.WhileStatement:
		f := &whileFrame{frameBase: fb, test: n.Test, body: n.Body}
		f.isLoop = true
		return f
	case *ast.DoWhileStatement:
		f := &whileFrame{frameBase: fb, test: n.Test, body: n.Body, skipFirstTest: true}
		f.isLoop = true
		return f
	case *ast.ForStatement:
		f := &forFrame{frameBase: fb, stmt: n}
		f.isLoop = true
		return f
	case *ast.ForInStatement:
		f := &forInFrame{frameBase: fb, stmt: n}
		f.isLoop = true
		return f
	case *ast.BreakStatement:
		return &breakFrame{frameBase: fb, stmt: n}
	case *ast.ContinueStatement:
		return &continueFrame{frameBase: fb, stmt: n}
	case *ast.SwitchStatement:
		f := &switchFrame{frameBase: fb, stmt: n}
		f.isSwitch = true
		return f
	case *ast.ThrowStatement:
		return &throwFrame{frameBase: fb, stmt: n}
	case *ast.TryStatement:
		return &tryFrame{frameBase: fb, stmt: n}
	case *ast.LabeledStatement:
		return &labeledFrame{frameBase: fb, stmt: n}
	case *ast.WithStatement:
		return &withFrame{frameBase: fb, stmt: n}

	// expressions
	case *ast.Identifier:
		return &identifierFrame{frameBase: fb, name: n.Name}
	case *ast.Literal:
		return &literalFrame{frameBase: fb, lit: n}
	case *ast.ThisExpression:
		return &thisFrame{frameBase: fb}
	case *ast.ArrayExpression:
		return &arrayLitFrame{frameBase: fb, expr: n}
	case *ast.ObjectExpression:
		return &objectLitFrame{frameBase: fb, expr: n}
	case *ast.FunctionExpression:
		return &functionLitFrame{frameBase: fb, fn: n}
	case *ast.UnaryExpression:
		return &unaryFrame{frameBase: fb, expr: n}
	case *ast.UpdateExpression:
		return &updateFrame{frameBase: fb, expr: n}
	case *ast.BinaryExpression:
		return &binaryFrame{frameBase: fb, expr: n}
	case *ast.LogicalExpression:
		return &logicalFrame{frameBase: fb, expr: n}
	case *ast.AssignmentExpression:
		return &assignFrame{frameBase: fb, expr: n}
	case *ast.ConditionalExpression:
		return &conditionalFrame{frameBase: fb, expr: n}
	case *ast.CallExpression:
		return &callFrame{frameBase: fb, callee: n.Callee, arguments: n.Arguments}
	case *ast.NewExpression:
		return &callFrame{frameBase: fb, callee: n.Callee, arguments: n.Arguments, isNew: true}
	case *ast.MemberExpression:
		return &memberFrame{frameBase: fb, expr: n}
	case *ast.SequenceExpression:
		return &sequenceFrame{frameBase: fb, expr: n}
	}
	return &failFrame{frameBase: fb}
}

// noopFrame covers statements with no runtime effect: empty and debugger
// statements, and function declarations (hoisting already ran).
type noopFrame struct{ frameBase }

func (f *noopFrame) step(ip *Interpreter) error {
	ip.popValue(nil)
	return nil
}

// failFrame guards against nodes the dispatcher does not know, which can
// only come from a malformed host-built AST.
type failFrame struct{ frameBase }

func (f *failFrame) step(ip *Interpreter) error {
	return fmt.Errorf("interpreter: unknown node type %s", f.node.Type())
}
