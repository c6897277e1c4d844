package parser

import (
	"testing"

	"github.com/pawsong/js-interp/ast"
)

func parse(t *testing.T, input string) *ast.Program {
	t.Helper()
	prog, errs := New(input).ParseProgram()
	if len(errs) > 0 {
		for _, e := range errs {
			t.Errorf("parser error: %s", e)
		}
		t.FailNow()
	}
	return prog
}

func parseWithErrors(input string) (*ast.Program, []error) {
	return New(input).ParseProgram()
}

func firstStmt(t *testing.T, prog *ast.Program) ast.Statement {
	t.Helper()
	if len(prog.Body) == 0 {
		t.Fatal("empty program")
	}
	return prog.Body[0]
}

func firstExpr(t *testing.T, input string) ast.Expression {
	t.Helper()
	prog := parse(t, input)
	es, ok := firstStmt(t, prog).(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("expected ExpressionStatement, got %T", prog.Body[0])
	}
	return es.Expression
}

func TestVarDeclaration(t *testing.T) {
	prog := parse(t, `var x = 1, y;`)
	decl, ok := firstStmt(t, prog).(*ast.VariableDeclaration)
	if !ok {
		t.Fatalf("expected VariableDeclaration, got %T", prog.Body[0])
	}
	if decl.Kind != "var" {
		t.Errorf("expected kind var, got %s", decl.Kind)
	}
	if len(decl.Declarations) != 2 {
		t.Fatalf("expected 2 declarators, got %d", len(decl.Declarations))
	}
	if decl.Declarations[0].Id.Name != "x" || decl.Declarations[0].Init == nil {
		t.Errorf("first declarator wrong: %+v", decl.Declarations[0])
	}
	if decl.Declarations[1].Id.Name != "y" || decl.Declarations[1].Init != nil {
		t.Errorf("second declarator wrong: %+v", decl.Declarations[1])
	}
}

func TestOperatorPrecedence(t *testing.T) {
	// 1 + 2 * 3 parses as 1 + (2 * 3)
	bin, ok := firstExpr(t, "1 + 2 * 3").(*ast.BinaryExpression)
	if !ok || bin.Operator != "+" {
		t.Fatalf("expected + at the root, got %#v", bin)
	}
	right, ok := bin.Right.(*ast.BinaryExpression)
	if !ok || right.Operator != "*" {
		t.Fatalf("expected * on the right, got %#v", bin.Right)
	}

	// left associativity: 8 - 4 - 2 parses as (8 - 4) - 2
	bin, ok = firstExpr(t, "8 - 4 - 2").(*ast.BinaryExpression)
	if !ok || bin.Operator != "-" {
		t.Fatal("expected - at the root")
	}
	if _, ok := bin.Left.(*ast.BinaryExpression); !ok {
		t.Fatalf("expected nested - on the left, got %T", bin.Left)
	}

	// || binds looser than &&
	log, ok := firstExpr(t, "a && b || c").(*ast.LogicalExpression)
	if !ok || log.Operator != "||" {
		t.Fatalf("expected || at the root, got %#v", log)
	}
	if l, ok := log.Left.(*ast.LogicalExpression); !ok || l.Operator != "&&" {
		t.Fatalf("expected && on the left, got %#v", log.Left)
	}
}

func TestAssignmentChain(t *testing.T) {
	// right associativity: a = b = 1
	assign, ok := firstExpr(t, "a = b = 1").(*ast.AssignmentExpression)
	if !ok {
		t.Fatal("expected AssignmentExpression")
	}
	if _, ok := assign.Right.(*ast.AssignmentExpression); !ok {
		t.Fatalf("expected nested assignment on the right, got %T", assign.Right)
	}

	compound, ok := firstExpr(t, "x += 2").(*ast.AssignmentExpression)
	if !ok || compound.Operator != "+=" {
		t.Fatalf("expected +=, got %#v", compound)
	}
}

func TestInvalidAssignmentTarget(t *testing.T) {
	_, errs := parseWithErrors("1 = 2;")
	if len(errs) == 0 {
		t.Fatal("expected an error for an invalid assignment target")
	}
}

func TestMemberAndCall(t *testing.T) {
	call, ok := firstExpr(t, "a.b.c(1)[2]").(*ast.MemberExpression)
	if !ok || !call.Computed {
		t.Fatalf("expected computed member at the root, got %#v", call)
	}
	inner, ok := call.Object.(*ast.CallExpression)
	if !ok || len(inner.Arguments) != 1 {
		t.Fatalf("expected call below, got %#v", call.Object)
	}
	if _, ok := inner.Callee.(*ast.MemberExpression); !ok {
		t.Fatalf("expected member callee, got %T", inner.Callee)
	}

	// keywords are valid property names after a dot
	member, ok := firstExpr(t, "a.delete").(*ast.MemberExpression)
	if !ok {
		t.Fatal("expected MemberExpression")
	}
	if id, ok := member.Property.(*ast.Identifier); !ok || id.Name != "delete" {
		t.Fatalf("keyword property name lost: %#v", member.Property)
	}
}

func TestNewExpression(t *testing.T) {
	// new a.b(1) binds the member to the callee
	ne, ok := firstExpr(t, "new a.b(1)").(*ast.NewExpression)
	if !ok {
		t.Fatal("expected NewExpression")
	}
	if _, ok := ne.Callee.(*ast.MemberExpression); !ok {
		t.Fatalf("expected member callee, got %T", ne.Callee)
	}
	if len(ne.Arguments) != 1 {
		t.Fatalf("expected 1 argument, got %d", len(ne.Arguments))
	}

	// new f()() is a call of the construction
	call, ok := firstExpr(t, "new f()()").(*ast.CallExpression)
	if !ok {
		t.Fatal("expected CallExpression at the root")
	}
	if _, ok := call.Callee.(*ast.NewExpression); !ok {
		t.Fatalf("expected NewExpression callee, got %T", call.Callee)
	}
}

func TestObjectLiteralAccessors(t *testing.T) {
	obj, ok := firstExpr(t, `({ a: 1, get b() { return 2; }, set b(v) {}, "c": 3, 4: 5 })`).(*ast.ObjectExpression)
	if !ok {
		t.Fatal("expected ObjectExpression")
	}
	if len(obj.Properties) != 5 {
		t.Fatalf("expected 5 properties, got %d", len(obj.Properties))
	}
	kinds := []string{"init", "get", "set", "init", "init"}
	for i, want := range kinds {
		if obj.Properties[i].Kind != want {
			t.Errorf("property %d: expected kind %s, got %s", i, want, obj.Properties[i].Kind)
		}
	}
	// an ordinary property named get
	obj, _ = firstExpr(t, `({ get: 1 })`).(*ast.ObjectExpression)
	if obj == nil || obj.Properties[0].Kind != "init" {
		t.Fatal("get as a plain property name must stay init")
	}
}

func TestArrayElisions(t *testing.T) {
	arr, ok := firstExpr(t, "[1, , 3, ]").(*ast.ArrayExpression)
	if !ok {
		t.Fatal("expected ArrayExpression")
	}
	if len(arr.Elements) != 3 {
		t.Fatalf("expected 3 elements (trailing comma is not an elision), got %d", len(arr.Elements))
	}
	if arr.Elements[1] != nil {
		t.Fatal("expected a hole at index 1")
	}
}

func TestForVariants(t *testing.T) {
	prog := parse(t, "for (var i = 0; i < 3; i++) {}")
	fs, ok := firstStmt(t, prog).(*ast.ForStatement)
	if !ok {
		t.Fatalf("expected ForStatement, got %T", prog.Body[0])
	}
	if _, ok := fs.Init.(*ast.VariableDeclaration); !ok {
		t.Fatalf("expected var init, got %T", fs.Init)
	}

	prog = parse(t, "for (;;) break;")
	fs = firstStmt(t, prog).(*ast.ForStatement)
	if fs.Init != nil || fs.Test != nil || fs.Update != nil {
		t.Fatal("empty for headers must be nil")
	}

	prog = parse(t, "for (var k in o) {}")
	fi, ok := firstStmt(t, prog).(*ast.ForInStatement)
	if !ok {
		t.Fatalf("expected ForInStatement, got %T", prog.Body[0])
	}
	if _, ok := fi.Left.(*ast.VariableDeclaration); !ok {
		t.Fatalf("expected var left, got %T", fi.Left)
	}

	// a bare `in` is suppressed in a for header, but parentheses restore it
	prog = parse(t, "for (var i = ('a' in o) ? 0 : 1; i < 2; i++) {}")
	if _, ok := firstStmt(t, prog).(*ast.ForStatement); !ok {
		t.Fatal("noIn handling broke a plain for statement")
	}
	if _, errs := parseWithErrors("for (var i = 'a' in o ? 0 : 1; i < 2; i++) {}"); len(errs) == 0 {
		t.Error("unparenthesized `in` in a for initializer must not parse")
	}
}

func TestTryRequiresHandlerOrFinalizer(t *testing.T) {
	_, errs := parseWithErrors("try { }")
	if len(errs) == 0 {
		t.Fatal("expected 'missing catch or finally'")
	}
	prog := parse(t, "try { } catch (e) { } finally { }")
	ts := firstStmt(t, prog).(*ast.TryStatement)
	if ts.Handler == nil || ts.Finalizer == nil {
		t.Fatal("handler and finalizer both expected")
	}
}

func TestSwitchDuplicateDefault(t *testing.T) {
	_, errs := parseWithErrors("switch (x) { default: default: }")
	if len(errs) == 0 {
		t.Fatal("expected an error for two default clauses")
	}
}

func TestAutomaticSemicolonInsertion(t *testing.T) {
	prog := parse(t, "var a = 1\nvar b = 2")
	if len(prog.Body) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Body))
	}

	// a restricted production: the newline terminates the return
	prog = parse(t, "function f() { return\n1 }")
	fd := firstStmt(t, prog).(*ast.FunctionDeclaration)
	ret, ok := fd.Body.Body[0].(*ast.ReturnStatement)
	if !ok {
		t.Fatalf("expected ReturnStatement, got %T", fd.Body.Body[0])
	}
	if ret.Argument != nil {
		t.Fatal("newline after return must end the statement")
	}

	// postfix ++ must stay on the operand's line
	prog = parse(t, "a\n++b")
	if len(prog.Body) != 2 {
		t.Fatalf("a newline before ++ must split the statements, got %d", len(prog.Body))
	}
}

func TestLabeledStatement(t *testing.T) {
	prog := parse(t, "outer: for (;;) { break outer; }")
	ls, ok := firstStmt(t, prog).(*ast.LabeledStatement)
	if !ok {
		t.Fatalf("expected LabeledStatement, got %T", prog.Body[0])
	}
	if ls.Label.Name != "outer" {
		t.Fatalf("label name wrong: %s", ls.Label.Name)
	}
	fs := ls.Body.(*ast.ForStatement)
	bs := fs.Body.(*ast.BlockStatement).Body[0].(*ast.BreakStatement)
	if bs.Label == nil || bs.Label.Name != "outer" {
		t.Fatal("break label lost")
	}
}

func TestRegExpLiteral(t *testing.T) {
	lit, ok := firstExpr(t, "/ab+c/gi").(*ast.Literal)
	if !ok || lit.Kind != ast.LiteralRegExp {
		t.Fatalf("expected regexp literal, got %#v", lit)
	}
	if lit.Pattern != "ab+c" || lit.Flags != "gi" {
		t.Fatalf("pattern/flags wrong: %q %q", lit.Pattern, lit.Flags)
	}
}

func TestStringKeyKeywords(t *testing.T) {
	obj, ok := firstExpr(t, `({ "var": 1 })`).(*ast.ObjectExpression)
	if !ok {
		t.Fatal("expected ObjectExpression")
	}
	key, ok := obj.Properties[0].Key.(*ast.Literal)
	if !ok || key.Str != "var" {
		t.Fatalf("string key mangled: %#v", obj.Properties[0].Key)
	}
}

func TestPositions(t *testing.T) {
	prog := parse(t, "var x = 1;")
	if prog.Start != 1 {
		t.Fatalf("program start wrong: %d", prog.Start)
	}
	stmt := firstStmt(t, prog)
	start, end := stmt.Pos()
	if start != 1 || end <= start {
		t.Fatalf("statement span wrong: [%d, %d)", start, end)
	}
}

func TestConditionalExpression(t *testing.T) {
	cond, ok := firstExpr(t, "a ? b : c ? d : e").(*ast.ConditionalExpression)
	if !ok {
		t.Fatal("expected ConditionalExpression")
	}
	if _, ok := cond.Alternate.(*ast.ConditionalExpression); !ok {
		t.Fatalf("conditional must nest to the right, got %T", cond.Alternate)
	}
}

func TestSequenceExpression(t *testing.T) {
	seq, ok := firstExpr(t, "a, b, c").(*ast.SequenceExpression)
	if !ok {
		t.Fatal("expected SequenceExpression")
	}
	if len(seq.Expressions) != 3 {
		t.Fatalf("expected 3 expressions, got %d", len(seq.Expressions))
	}
}
