package interpreter

import (
	"github.com/pawsong/js-interp/ast"
	"github.com/pawsong/js-interp/builtins"
	"github.com/pawsong/js-interp/runtime"
)

// programFrame anchors the stack. It never pops itself: once the body is
// exhausted the interpreter reports done, and AppendCode may extend the
// body later.
type programFrame struct {
	frameBase
	body []ast.Statement
	idx  int
}

func (f *programFrame) step(ip *Interpreter) error {
	if f.idx >= len(f.body) {
		return nil
	}
	stmt := f.body[f.idx]
	f.idx++
	ip.pushNode(stmt, f.scope)
	return nil
}

// evalFrame runs an eval() program inside the caller's scope and completes
// with the value of its last expression statement.
type evalFrame struct {
	frameBase
	body       []ast.Statement
	idx        int
	completion runtime.Value
}

func (f *evalFrame) step(ip *Interpreter) error {
	if f.value != nil {
		f.completion = f.value
		f.value = nil
	}
	if f.idx < len(f.body) {
		stmt := f.body[f.idx]
		f.idx++
		ip.pushNode(stmt, f.scope)
		return nil
	}
	if f.completion == nil {
		f.completion = ip.Undefined
	}
	ip.popValue(f.completion)
	return nil
}

type exprStatementFrame struct {
	frameBase
	stmt *ast.ExpressionStatement
}

func (f *exprStatementFrame) step(ip *Interpreter) error {
	if f.n == 0 {
		f.n = 1
		ip.pushNode(f.stmt.Expression, f.scope)
		return nil
	}
	// positionless statements are internal startup code and do not touch
	// the completion value
	if _, end := f.node.Pos(); end > 0 {
		ip.Value = f.value
	}
	ip.popValue(f.value)
	return nil
}

type blockFrame struct {
	frameBase
	body []ast.Statement
}

func (f *blockFrame) step(ip *Interpreter) error {
	if f.n < len(f.body) {
		stmt := f.body[f.n]
		f.n++
		ip.pushNode(stmt, f.scope)
		return nil
	}
	ip.popValue(nil)
	return nil
}

type varDeclFrame struct {
	frameBase
	decl          *ast.VariableDeclaration
	assignPending bool
}

func (f *varDeclFrame) step(ip *Interpreter) error {
	if f.assignPending {
		f.assignPending = false
		d := f.decl.Declarations[f.n-1]
		setter, err := ip.assignToScope(f.scope, d.Id.Name, f.value)
		if err != nil {
			return err
		}
		if setter != nil {
			ip.push(newPendingCall(nil, setter, ip.GlobalObject, []runtime.Value{f.value}, f.scope, false))
			return nil
		}
	}
	for f.n < len(f.decl.Declarations) {
		d := f.decl.Declarations[f.n]
		f.n++
		if d.Init != nil {
			f.assignPending = true
			ip.pushNode(d.Init, f.scope)
			return nil
		}
	}
	ip.popValue(nil)
	return nil
}

type returnFrame struct {
	frameBase
	stmt *ast.ReturnStatement
}

func (f *returnFrame) step(ip *Interpreter) error {
	if f.stmt.Argument != nil && f.n == 0 {
		f.n = 1
		ip.pushNode(f.stmt.Argument, f.scope)
		return nil
	}
	v := f.value
	if v == nil {
		v = ip.Undefined
	}
	return ip.unwindReturn(v)
}

type ifFrame struct {
	frameBase
	stmt *ast.IfStatement
}

func (f *ifFrame) step(ip *Interpreter) error {
	switch f.n {
	case 0:
		f.n = 1
		ip.pushNode(f.stmt.Test, f.scope)
	case 1:
		f.n = 2
		if ip.ToBoolean(f.value) {
			ip.pushNode(f.stmt.Consequent, f.scope)
		} else if f.stmt.Alternate != nil {
			ip.pushNode(f.stmt.Alternate, f.scope)
		} else {
			ip.popValue(nil)
		}
	default:
		ip.popValue(nil)
	}
	return nil
}

// whileFrame serves both while and do-while loops.
type whileFrame struct {
	frameBase
	test          ast.Expression
	body          ast.Statement
	skipFirstTest bool
}

func (f *whileFrame) step(ip *Interpreter) error {
	switch f.n {
	case 0:
		if f.skipFirstTest {
			f.n = 2
			ip.pushNode(f.body, f.scope)
		} else {
			f.n = 1
			ip.pushNode(f.test, f.scope)
		}
	case 1:
		if !ip.ToBoolean(f.value) {
			ip.popValue(nil)
			return nil
		}
		f.n = 2
		ip.pushNode(f.body, f.scope)
	default:
		f.n = 1
		ip.pushNode(f.test, f.scope)
	}
	return nil
}

func (f *whileFrame) continueLoop() { f.n = 2 }

type forFrame struct {
	frameBase
	stmt *ast.ForStatement
}

func (f *forFrame) step(ip *Interpreter) error {
	switch f.n {
	case 0: // init
		f.n = 1
		if f.stmt.Init != nil {
			ip.pushNode(f.stmt.Init, f.scope)
			return nil
		}
		fallthrough
	case 1: // start iteration
		if f.stmt.Test != nil {
			f.n = 2
			ip.pushNode(f.stmt.Test, f.scope)
			return nil
		}
		f.n = 3
		ip.pushNode(f.stmt.Body, f.scope)
	case 2: // test result
		if !ip.ToBoolean(f.value) {
			ip.popValue(nil)
			return nil
		}
		f.n = 3
		ip.pushNode(f.stmt.Body, f.scope)
	case 3: // body done
		if f.stmt.Update != nil {
			f.n = 4
			ip.pushNode(f.stmt.Update, f.scope)
			return nil
		}
		f.n = 1
	default: // update done
		f.n = 1
	}
	return nil
}

func (f *forFrame) continueLoop() { f.n = 3 }

type forInFrame struct {
	frameBase
	stmt   *ast.ForInStatement
	target runtime.Value
	keys   []string
	idx    int
	key    string
}

func (f *forInFrame) step(ip *Interpreter) error {
	switch f.n {
	case 0:
		f.n = 1
		ip.pushNode(f.stmt.Right, f.scope)
	case 1:
		if runtime.IsNullOrUndefined(f.value) {
			ip.popValue(nil)
			return nil
		}
		f.target = f.value
		f.keys = ip.ForInKeys(f.target)
		f.n = 2
		return f.step(ip)
	case 2: // pick the next surviving key
		for f.idx < len(f.keys) {
			key := f.keys[f.idx]
			f.idx++
			if !ip.HasProperty(f.target, key) {
				continue
			}
			f.key = key
			return f.assignKey(ip)
		}
		ip.popValue(nil)
	case 3: // left reference evaluated
		setter, err := ip.setValueRef(f.ref, ip.NewString(f.key))
		if err != nil {
			return err
		}
		if setter != nil {
			f.n = 4
			ip.push(newPendingCall(nil, setter, f.ref.base, []runtime.Value{ip.NewString(f.key)}, f.scope, false))
			return nil
		}
		f.n = 2
		ip.pushNode(f.stmt.Body, f.scope)
	case 4: // setter done, run the body
		f.n = 2
		ip.pushNode(f.stmt.Body, f.scope)
	}
	return nil
}

func (f *forInFrame) assignKey(ip *Interpreter) error {
	if decl, ok := f.stmt.Left.(*ast.VariableDeclaration); ok {
		setter, err := ip.assignToScope(f.scope, decl.Declarations[0].Id.Name, ip.NewString(f.key))
		if err != nil {
			return err
		}
		if setter != nil {
			f.n = 4
			ip.push(newPendingCall(nil, setter, ip.GlobalObject, []runtime.Value{ip.NewString(f.key)}, f.scope, false))
			return nil
		}
		f.n = 2
		ip.pushNode(f.stmt.Body, f.scope)
		return nil
	}
	f.n = 3
	fb := ip.pushNode(f.stmt.Left, f.scope)
	fb.components = true
	return nil
}

func (f *forInFrame) continueLoop() { f.n = 2 }

type breakFrame struct {
	frameBase
	stmt *ast.BreakStatement
}

func (f *breakFrame) step(ip *Interpreter) error {
	label := ""
	if f.stmt.Label != nil {
		label = f.stmt.Label.Name
	}
	return ip.unwindBreak(label)
}

type continueFrame struct {
	frameBase
	stmt *ast.ContinueStatement
}

func (f *continueFrame) step(ip *Interpreter) error {
	label := ""
	if f.stmt.Label != nil {
		label = f.stmt.Label.Name
	}
	return ip.unwindContinue(label)
}

type switchFrame struct {
	frameBase
	stmt       *ast.SwitchStatement
	disc       runtime.Value
	caseIdx    int
	defaultIdx int
	execIdx    int
	stmtIdx    int
}

func (f *switchFrame) step(ip *Interpreter) error {
	switch f.n {
	case 0:
		f.defaultIdx = -1
		f.n = 1
		ip.pushNode(f.stmt.Discriminant, f.scope)
	case 1: // scan for the matching case
		f.disc = orUndefined(ip, f.disc, f.value)
		for f.caseIdx < len(f.stmt.Cases) {
			c := f.stmt.Cases[f.caseIdx]
			if c.Test == nil {
				f.defaultIdx = f.caseIdx
				f.caseIdx++
				continue
			}
			f.n = 2
			ip.pushNode(c.Test, f.scope)
			return nil
		}
		if f.defaultIdx >= 0 {
			f.execIdx = f.defaultIdx
			f.n = 3
			return nil
		}
		ip.popValue(nil)
	case 2:
		if ip.AbstractEquals(f.disc, f.value) {
			f.execIdx = f.caseIdx
			f.n = 3
			return nil
		}
		f.caseIdx++
		f.n = 1
		f.value = f.disc
		return f.step(ip)
	case 3: // run consequents, falling through until a break unwinds us
		for f.execIdx < len(f.stmt.Cases) {
			c := f.stmt.Cases[f.execIdx]
			if f.stmtIdx < len(c.Consequent) {
				stmt := c.Consequent[f.stmtIdx]
				f.stmtIdx++
				ip.pushNode(stmt, f.scope)
				return nil
			}
			f.execIdx++
			f.stmtIdx = 0
		}
		ip.popValue(nil)
	}
	return nil
}

// orUndefined keeps the discriminant stable across the scan: the first
// entry records it, later entries must not clobber it with test values.
func orUndefined(ip *Interpreter, prior, v runtime.Value) runtime.Value {
	if prior != nil {
		return prior
	}
	if v == nil {
		return ip.Undefined
	}
	return v
}

type throwFrame struct {
	frameBase
	stmt *ast.ThrowStatement
}

func (f *throwFrame) step(ip *Interpreter) error {
	if f.n == 0 {
		f.n = 1
		ip.pushNode(f.stmt.Argument, f.scope)
		return nil
	}
	return ip.ThrowValue(f.value)
}

// tryFrame phases: 0 before the block, 1 in the block, 2 in the handler,
// 3 in the finalizer.
type tryFrame struct {
	frameBase
	stmt       *ast.TryStatement
	phase      int
	pending    runtime.Value
	hasPending bool
	queued     int // unwind to re-issue after the finalizer
	queuedLbl  string
	queuedVal  runtime.Value
}

// unwinds a finalizer can interrupt and then re-issue
const (
	finallyNone = iota
	finallyReturn
	finallyBreak
	finallyContinue
)

func (f *tryFrame) step(ip *Interpreter) error {
	switch f.phase {
	case 0:
		f.phase = 1
		ip.pushNode(f.stmt.Block, f.scope)
	case 1, 2: // block or handler completed normally
		if f.stmt.Finalizer != nil {
			f.phase = 3
			ip.pushNode(f.stmt.Finalizer, f.scope)
			return nil
		}
		ip.popValue(nil)
	case 3: // finalizer completed
		if f.hasPending {
			return ip.ThrowValue(f.pending)
		}
		switch f.queued {
		case finallyReturn:
			return ip.unwindReturn(f.queuedVal)
		case finallyBreak:
			return ip.unwindBreak(f.queuedLbl)
		case finallyContinue:
			return ip.unwindContinue(f.queuedLbl)
		}
		ip.popValue(nil)
	}
	return nil
}

// wantsFinalizer reports whether a return/break/continue passing this frame
// must detour through the finalizer first.
func (f *tryFrame) wantsFinalizer() bool {
	return (f.phase == 1 || f.phase == 2) && f.stmt.Finalizer != nil
}

// interceptUnwind records an unwind that crossed this frame and runs the
// finalizer; step re-issues the unwind when the finalizer completes. An
// abrupt completion inside the finalizer abandons the recorded action.
func (f *tryFrame) interceptUnwind(ip *Interpreter, action int, label string, v runtime.Value) {
	f.queued = action
	f.queuedLbl = label
	f.queuedVal = v
	f.phase = 3
	ip.pushNode(f.stmt.Finalizer, f.scope)
}

// canHandle reports whether a thrown value arriving now has somewhere to go
// inside this try statement.
func (f *tryFrame) canHandle() bool {
	switch f.phase {
	case 1:
		return f.stmt.Handler != nil || f.stmt.Finalizer != nil
	case 2:
		return f.stmt.Finalizer != nil
	}
	return false
}

// deliver routes a thrown value to the handler, or through the finalizer
// with a rethrow queued.
func (f *tryFrame) deliver(ip *Interpreter, v runtime.Value) {
	if f.phase == 1 && f.stmt.Handler != nil {
		f.phase = 2
		scope := &runtime.Scope{Parent: f.scope, Strict: f.scope.Strict, Object: runtime.NewRawObject(nil)}
		scope.Object.Set(f.stmt.Handler.Param.Name, v)
		fb := ip.pushNode(f.stmt.Handler.Body, f.scope)
		fb.scope = scope
		return
	}
	f.pending = v
	f.hasPending = true
	f.phase = 3
	ip.pushNode(f.stmt.Finalizer, f.scope)
}

type labeledFrame struct {
	frameBase
	stmt *ast.LabeledStatement
}

func (f *labeledFrame) step(ip *Interpreter) error {
	if f.n == 0 {
		f.n = 1
		fb := ip.pushNode(f.stmt.Body, f.scope)
		fb.labels = append(append([]string{}, f.labels...), f.stmt.Label.Name)
		return nil
	}
	ip.popValue(nil)
	return nil
}

type withFrame struct {
	frameBase
	stmt *ast.WithStatement
}

func (f *withFrame) step(ip *Interpreter) error {
	switch f.n {
	case 0:
		f.n = 1
		ip.pushNode(f.stmt.Object, f.scope)
	case 1:
		var target *runtime.Object
		switch t := f.value.(type) {
		case *runtime.Object:
			target = t
		case *runtime.Primitive:
			if t.Kind == runtime.KindUndefined || t.Kind == runtime.KindNull {
				return ip.TypeError("Cannot convert undefined or null to object")
			}
			target = builtins.BoxPrimitive(ip.Realm, t)
		}
		f.n = 2
		scope := &runtime.Scope{Parent: f.scope, Strict: f.scope.Strict, Object: target}
		fb := ip.pushNode(f.stmt.Body, f.scope)
		fb.scope = scope
	default:
		ip.popValue(nil)
	}
	return nil
}
