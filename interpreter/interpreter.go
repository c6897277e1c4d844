// Package interpreter is the sandboxed, step-wise ECMAScript 5 evaluator.
// An Interpreter owns one realm and one frame stack; Step runs a single unit
// of work and Run drives it to completion. Script code cannot reach the host
// except through values the embedder installs via the init hook.
package interpreter

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pawsong/js-interp/ast"
	"github.com/pawsong/js-interp/builtins"
	"github.com/pawsong/js-interp/parser"
	"github.com/pawsong/js-interp/runtime"
)

// Interpreter evaluates one program. It is not safe for concurrent use; the
// only cross-goroutine entry point is the done callback of an async function.
type Interpreter struct {
	*runtime.Realm

	// Value is the completion value: the result of the last expression
	// statement the program executed.
	Value runtime.Value

	stack  []frame
	paused bool

	mu      sync.Mutex
	mailbox *asyncResult
}

type asyncResult struct {
	value runtime.Value
	err   error
}

// New parses code and returns a ready interpreter. initFn, when non-nil,
// runs after the builtins are installed and before any script code; it
// receives the global object so the host can add its own bindings.
func New(code string, initFn func(*Interpreter, *runtime.Object)) (*Interpreter, error) {
	prog, errs := parser.New(code).ParseProgram()
	if len(errs) > 0 {
		return nil, fmt.Errorf("parse: %w", errors.Join(errs...))
	}
	return NewFromProgram(prog, initFn)
}

// NewFromProgram wraps a host-built or pre-parsed AST.
func NewFromProgram(prog *ast.Program, initFn func(*Interpreter, *runtime.Object)) (*Interpreter, error) {
	realm := runtime.NewRealm()
	builtins.RegisterAll(realm)
	ip := &Interpreter{Realm: realm}
	ip.Value = realm.Undefined
	if initFn != nil {
		initFn(ip, realm.GlobalObject)
	}

	poly, errs := parser.New(builtins.PolyfillSource).ParseProgram()
	if len(errs) > 0 {
		return nil, fmt.Errorf("polyfills: %w", errors.Join(errs...))
	}
	ast.StripPositions(poly)

	if hasUseStrict(prog.Body) {
		realm.Global.Strict = true
	}
	body := append(poly.Body, prog.Body...)
	ip.hoist(body, realm.Global)
	ip.push(&programFrame{frameBase: frameBase{node: prog, scope: realm.Global}, body: body})
	return ip, nil
}

// AppendCode parses more source and schedules it after the current program.
// It is legal only between top-level statements, when the stack has drained
// back to the program frame.
func (ip *Interpreter) AppendCode(code string) error {
	prog, errs := parser.New(code).ParseProgram()
	if len(errs) > 0 {
		return fmt.Errorf("parse: %w", errors.Join(errs...))
	}
	return ip.AppendProgram(prog)
}

// AppendProgram schedules a pre-parsed AST after the current program.
func (ip *Interpreter) AppendProgram(prog *ast.Program) error {
	if len(ip.stack) == 0 {
		return fmt.Errorf("interpreter: no program to append to")
	}
	pf, ok := ip.stack[len(ip.stack)-1].(*programFrame)
	if !ok {
		return fmt.Errorf("interpreter: cannot append while a statement is executing")
	}
	ip.hoist(prog.Body, ip.Global)
	pf.body = append(pf.body, prog.Body...)
	return nil
}

// Step executes one unit of work and reports whether more remain. Internal
// frames with no source position (polyfills, dynamically built functions)
// run through without counting as steps. A false return with a nil error
// means normal completion; a *runtime.Thrown error is an uncaught script
// exception.
func (ip *Interpreter) Step() (bool, error) {
	for {
		if ip.paused {
			delivered, err := ip.deliverAsync()
			if err != nil {
				return false, err
			}
			if !delivered {
				return true, nil
			}
		}
		if len(ip.stack) == 0 {
			return false, nil
		}
		top := ip.stack[len(ip.stack)-1]
		if pf, ok := top.(*programFrame); ok && pf.idx >= len(pf.body) {
			return false, nil
		}
		if err := top.step(ip); err != nil {
			t, ok := err.(*runtime.Thrown)
			if !ok {
				return false, err
			}
			if !ip.dispatchThrow(t.Value) {
				return false, err
			}
		}
		if ip.paused {
			continue // a synchronous done() may already be waiting
		}
		if len(ip.stack) == 0 {
			return false, nil
		}
		top = ip.stack[len(ip.stack)-1]
		if pf, ok := top.(*programFrame); ok {
			if pf.idx >= len(pf.body) {
				return false, nil
			}
			// startup statements with stripped positions run for free
			if _, end := pf.body[pf.idx].Pos(); end == 0 {
				continue
			}
			return true, nil
		}
		if node := top.base().node; node != nil {
			if _, end := node.Pos(); end > 0 {
				return true, nil
			}
		}
	}
}

// Run steps until the program completes or blocks on an async call. The bool
// reports whether it is blocked: call Run again after the done callback
// fires (or poll with Step).
func (ip *Interpreter) Run() (bool, error) {
	for {
		more, err := ip.Step()
		if err != nil {
			return false, err
		}
		if !more {
			return false, nil
		}
		if ip.Paused() {
			return true, nil
		}
	}
}

// Paused reports whether the interpreter is blocked on an async function
// whose done callback has not fired yet.
func (ip *Interpreter) Paused() bool {
	if !ip.paused {
		return false
	}
	ip.mu.Lock()
	defer ip.mu.Unlock()
	return ip.mailbox == nil
}

// resume is the done callback handed to async functions. It may run on any
// goroutine; delivery happens on the next Step.
func (ip *Interpreter) resume(v runtime.Value, err error) {
	ip.mu.Lock()
	defer ip.mu.Unlock()
	if ip.mailbox == nil {
		ip.mailbox = &asyncResult{value: v, err: err}
	}
}

func (ip *Interpreter) deliverAsync() (bool, error) {
	ip.mu.Lock()
	res := ip.mailbox
	ip.mailbox = nil
	ip.mu.Unlock()
	if res == nil {
		return false, nil
	}
	ip.paused = false
	pc, ok := ip.stack[len(ip.stack)-1].(*pendingCallFrame)
	if !ok || !pc.awaiting {
		return false, fmt.Errorf("interpreter: async completion with no pending call")
	}
	pc.awaiting = false
	if res.err != nil {
		t, ok := res.err.(*runtime.Thrown)
		if !ok {
			return true, res.err
		}
		if !ip.dispatchThrow(t.Value) {
			return true, res.err
		}
		return true, nil
	}
	pc.finishAsync(ip, res.value)
	return true, nil
}

// ---------- unwinding ----------

// dispatchThrow routes a thrown value to the nearest try statement that can
// still take it. It reports false when the exception is uncaught, leaving
// the stack empty.
func (ip *Interpreter) dispatchThrow(v runtime.Value) bool {
	for i := len(ip.stack) - 1; i >= 0; i-- {
		if tf, ok := ip.stack[i].(*tryFrame); ok && tf.canHandle() {
			ip.stack = ip.stack[:i+1]
			tf.deliver(ip, v)
			return true
		}
	}
	ip.stack = ip.stack[:0]
	return false
}

// unwindReturn pops frames down to the active call. Any try statement still
// inside its block or handler runs its finalizer on the way out; the
// finalizer re-issues the return when it completes normally.
func (ip *Interpreter) unwindReturn(v runtime.Value) error {
	target := -1
	for i := len(ip.stack) - 1; i >= 0; i-- {
		if _, ok := ip.stack[i].(*pendingCallFrame); ok {
			target = i
			break
		}
	}
	if target < 0 {
		return ip.SyntaxError("Illegal return statement")
	}
	for i := len(ip.stack) - 1; i > target; i-- {
		if tf, ok := ip.stack[i].(*tryFrame); ok && tf.wantsFinalizer() {
			ip.stack = ip.stack[:i+1]
			tf.interceptUnwind(ip, finallyReturn, "", v)
			return nil
		}
	}
	pc := ip.stack[target].(*pendingCallFrame)
	pc.retVal = v
	ip.stack = ip.stack[:target+1]
	return nil
}

func (ip *Interpreter) unwindBreak(label string) error {
	target := -1
	for i := len(ip.stack) - 1; i >= 0; i-- {
		if _, ok := ip.stack[i].(*pendingCallFrame); ok {
			break
		}
		fb := ip.stack[i].base()
		if (label == "" && (fb.isLoop || fb.isSwitch)) || (label != "" && fb.hasLabel(label)) {
			target = i
			break
		}
	}
	if target < 0 {
		return ip.SyntaxError("Illegal break statement")
	}
	// i >= target: a labeled try statement can be its own break target
	for i := len(ip.stack) - 1; i >= target; i-- {
		if tf, ok := ip.stack[i].(*tryFrame); ok && tf.wantsFinalizer() {
			ip.stack = ip.stack[:i+1]
			tf.interceptUnwind(ip, finallyBreak, label, nil)
			return nil
		}
	}
	ip.stack = ip.stack[:target]
	if len(ip.stack) > 0 {
		ip.stack[len(ip.stack)-1].base().value = nil
	}
	return nil
}

func (ip *Interpreter) unwindContinue(label string) error {
	target := -1
	for i := len(ip.stack) - 1; i >= 0; i-- {
		if _, ok := ip.stack[i].(*pendingCallFrame); ok {
			break
		}
		fb := ip.stack[i].base()
		if fb.isLoop && (label == "" || fb.hasLabel(label)) {
			target = i
			break
		}
	}
	if target < 0 {
		return ip.SyntaxError("Illegal continue statement")
	}
	for i := len(ip.stack) - 1; i > target; i-- {
		if tf, ok := ip.stack[i].(*tryFrame); ok && tf.wantsFinalizer() {
			ip.stack = ip.stack[:i+1]
			tf.interceptUnwind(ip, finallyContinue, label, nil)
			return nil
		}
	}
	f := ip.stack[target]
	ip.stack = ip.stack[:target+1]
	f.(loopFrame).continueLoop()
	return nil
}

// ---------- references ----------

// getValue reads through a reference. A non-nil getter must be invoked by
// the caller with the returned this value.
func (ip *Interpreter) getValue(ref *reference) (runtime.Value, *runtime.Object, runtime.Value, error) {
	if ref.base != nil {
		v, getter, err := ip.GetPropertyOrGetter(ref.base, ref.name)
		return v, getter, ref.base, err
	}
	for s := ref.scope; s != nil; s = s.Parent {
		if !ip.HasProperty(s.Object, ref.name) {
			continue
		}
		v, getter, err := ip.GetPropertyOrGetter(s.Object, ref.name)
		return v, getter, s.Object, err
	}
	return nil, nil, nil, ip.ReferenceError("%s is not defined", ref.name)
}

// setValueRef writes through a reference, performing the strict-mode failure
// checks the silent runtime write path leaves to the evaluator. A non-nil
// setter must be invoked by the caller.
func (ip *Interpreter) setValueRef(ref *reference, v runtime.Value) (*runtime.Object, error) {
	strict := ref.scope != nil && ref.scope.Strict
	if ref.base != nil {
		if strict {
			if err := ip.strictSetCheck(ref.base, ref.name); err != nil {
				return nil, err
			}
		}
		return ip.SetProperty(ref.base, ref.name, v)
	}
	if strict {
		if _, _, found := ip.ScopeLookup(ref.scope, ref.name); !found {
			return nil, ip.ReferenceError("%s is not defined", ref.name)
		}
		for s := ref.scope; s != nil; s = s.Parent {
			if ip.HasProperty(s.Object, ref.name) {
				if err := ip.strictSetCheck(s.Object, ref.name); err != nil {
					return nil, err
				}
				break
			}
		}
	}
	return ip.ScopeAssign(ref.scope, ref.name, v)
}

// strictSetCheck turns the silent assignment failures into throws.
func (ip *Interpreter) strictSetCheck(base runtime.Value, name string) error {
	obj, ok := base.(*runtime.Object)
	if !ok {
		p, isPrim := base.(*runtime.Primitive)
		if isPrim && p.Kind != runtime.KindUndefined && p.Kind != runtime.KindNull {
			return ip.TypeError("Cannot create property '%s' on %s '%s'", name, runtime.TypeOf(p), ip.ToString(p))
		}
		return nil
	}
	for c := obj; c != nil; c = c.Proto {
		if c.Setters[name] != nil {
			return nil
		}
		if c.Getters[name] != nil {
			return ip.TypeError("Cannot set property %s of %s which has only a getter", name, ip.ToString(obj))
		}
		if c.HasOwn(name) {
			if c.NotWritable[name] {
				return ip.TypeError("Cannot assign to read only property '%s' of object", name)
			}
			return nil
		}
	}
	if obj.PreventExtensions {
		return ip.TypeError("Cannot add property %s, object is not extensible", name)
	}
	return nil
}

// deleteRef implements the delete operator over a reference.
func (ip *Interpreter) deleteRef(ref *reference) (bool, error) {
	strict := ref.scope != nil && ref.scope.Strict
	if ref.base != nil {
		return ip.DeleteProperty(ref.base, ref.name, strict)
	}
	for s := ref.scope; s != nil; s = s.Parent {
		if s.Object.HasOwn(ref.name) {
			return ip.DeleteProperty(s.Object, ref.name, strict)
		}
	}
	return true, nil
}

// refThis resolves the receiver a setter invocation gets.
func refThis(ip *Interpreter, ref *reference) runtime.Value {
	if ref.base != nil {
		return ref.base
	}
	for s := ref.scope; s != nil; s = s.Parent {
		if ip.HasProperty(s.Object, ref.name) {
			return s.Object
		}
	}
	return ip.GlobalObject
}

// assignToScope is the var-declaration write path: the binding was hoisted,
// so the chain walk finds it, but a with-object or global accessor can still
// intercept.
func (ip *Interpreter) assignToScope(scope *runtime.Scope, name string, v runtime.Value) (*runtime.Object, error) {
	return ip.ScopeAssign(scope, name, v)
}

// ---------- hoisting ----------

// hoist declares the var and function bindings of a statement list into
// scope before execution. Nested functions are not entered; their bodies
// hoist at call time.
func (ip *Interpreter) hoist(stmts []ast.Statement, scope *runtime.Scope) {
	for _, stmt := range stmts {
		ip.hoistStatement(stmt, scope)
	}
}

func (ip *Interpreter) hoistStatement(stmt ast.Statement, scope *runtime.Scope) {
	switch n := stmt.(type) {
	case *ast.VariableDeclaration:
		for _, d := range n.Declarations {
			ip.DeclareVar(scope, d.Id.Name, ip.Undefined)
		}
	case *ast.FunctionDeclaration:
		scope.Object.Set(n.Id.Name, ip.NewFunction(n, scope))
	case *ast.BlockStatement:
		ip.hoist(n.Body, scope)
	case *ast.IfStatement:
		ip.hoistStatement(n.Consequent, scope)
		if n.Alternate != nil {
			ip.hoistStatement(n.Alternate, scope)
		}
	case *ast.WhileStatement:
		ip.hoistStatement(n.Body, scope)
	case *ast.DoWhileStatement:
		ip.hoistStatement(n.Body, scope)
	case *ast.ForStatement:
		if decl, ok := n.Init.(*ast.VariableDeclaration); ok {
			ip.hoistStatement(decl, scope)
		}
		ip.hoistStatement(n.Body, scope)
	case *ast.ForInStatement:
		if decl, ok := n.Left.(*ast.VariableDeclaration); ok {
			ip.hoistStatement(decl, scope)
		}
		ip.hoistStatement(n.Body, scope)
	case *ast.SwitchStatement:
		for _, c := range n.Cases {
			ip.hoist(c.Consequent, scope)
		}
	case *ast.TryStatement:
		ip.hoistStatement(n.Block, scope)
		if n.Handler != nil {
			ip.hoistStatement(n.Handler.Body, scope)
		}
		if n.Finalizer != nil {
			ip.hoistStatement(n.Finalizer, scope)
		}
	case *ast.LabeledStatement:
		ip.hoistStatement(n.Body, scope)
	case *ast.WithStatement:
		ip.hoistStatement(n.Body, scope)
	}
}
