package interpreter

import (
	"strconv"

	"github.com/pawsong/js-interp/ast"
	"github.com/pawsong/js-interp/builtins"
	"github.com/pawsong/js-interp/parser"
	"github.com/pawsong/js-interp/runtime"
)

// pendingCallFrame invokes one function value. It unwraps bound functions,
// rewrites apply/call, dispatches eval, native, async and interpreted
// callees, and is the frame a return statement unwinds to.
type pendingCallFrame struct {
	frameBase
	fn    *runtime.Object
	this  runtime.Value
	args  []runtime.Value
	isNew bool
	name  string

	started  bool
	receiver *runtime.Object
	retVal   runtime.Value
	awaiting bool // async call in flight
}

// newPendingCall builds a call frame for an already-resolved function value.
// A nil node marks the call as internal so the step counter runs through it.
func newPendingCall(node ast.Node, fn runtime.Value, this runtime.Value, args []runtime.Value, scope *runtime.Scope, isNew bool) *pendingCallFrame {
	f, _ := fn.(*runtime.Object)
	return &pendingCallFrame{
		frameBase: frameBase{node: node, scope: scope},
		fn:        f,
		this:      this,
		args:      args,
		isNew:     isNew,
		name:      "expression",
	}
}

func (f *pendingCallFrame) step(ip *Interpreter) error {
	if f.started {
		return f.finishInterpreted(ip)
	}

	fn := f.fn
	this := f.this
	args := f.args

	// unwrap bound functions and the apply/call markers
	for {
		if fn == nil || !fn.IsFunction() {
			return ip.TypeError("%s is not a function", f.name)
		}
		if fn.BoundTarget != nil {
			args = append(append([]runtime.Value{}, fn.BoundArgs...), args...)
			if !f.isNew {
				this = fn.BoundThis
			}
			fn = fn.BoundTarget
			continue
		}
		if fn.Special != runtime.SpecialNone {
			target, ok := this.(*runtime.Object)
			if !ok || !target.IsFunction() {
				return ip.TypeError("Function.prototype.%s called on non-function", fn.Special)
			}
			var newThis runtime.Value = ip.Undefined
			if len(args) > 0 {
				newThis = args[0]
			}
			var newArgs []runtime.Value
			if fn.Special == runtime.SpecialApply {
				expanded, err := ip.spreadArguments(argOrUndefined(ip, args, 1))
				if err != nil {
					return err
				}
				newArgs = expanded
			} else if len(args) > 1 {
				newArgs = args[1:]
			}
			fn, this, args = target, newThis, newArgs
			continue
		}
		break
	}

	if fn.Eval {
		return f.startEval(ip, args)
	}
	if fn.AsyncFunc != nil {
		f.started = true
		f.awaiting = true
		ip.paused = true
		fn.AsyncFunc(ip.Realm, this, args, ip.resume)
		return nil
	}
	if fn.NativeFunc != nil {
		if f.isNew {
			f.receiver = ip.NewObject(fn)
			this = f.receiver
		}
		prev := ip.CalledAsConstructor
		ip.CalledAsConstructor = f.isNew
		v, err := fn.NativeFunc(ip.Realm, this, args)
		ip.CalledAsConstructor = prev
		if err != nil {
			return err
		}
		ip.popValue(f.constructed(v))
		return nil
	}
	if fn.Node == nil {
		return ip.TypeError("%s is not a function", f.name)
	}
	return f.startInterpreted(ip, fn, this, args)
}

// startEval parses and runs eval code in the caller's scope. Non-string
// arguments come back unchanged.
func (f *pendingCallFrame) startEval(ip *Interpreter, args []runtime.Value) error {
	arg := argOrUndefined(ip, args, 0)
	p, ok := arg.(*runtime.Primitive)
	if !ok || p.Kind != runtime.KindString {
		ip.popValue(arg)
		return nil
	}
	prog, errs := parser.New(p.Str).ParseProgram()
	if len(errs) > 0 {
		return ip.SyntaxError("%s", errs[0].Error())
	}
	ip.hoist(prog.Body, f.scope)
	f.started = true
	ip.push(&evalFrame{frameBase: frameBase{node: prog, scope: f.scope}, body: prog.Body})
	return nil
}

func (f *pendingCallFrame) startInterpreted(ip *Interpreter, fn *runtime.Object, this runtime.Value, args []runtime.Value) error {
	if f.isNew {
		f.receiver = ip.NewObject(fn)
		this = f.receiver
	}
	node := fn.Node
	body := node.FunctionBody()
	strict := fn.Scope.Strict || hasUseStrict(body.Body)
	scope := runtime.NewScope(fn.Scope, strict)
	scope.This = f.resolveThis(ip, this, strict)

	params := node.FunctionParams()
	for i, p := range params {
		scope.Object.Set(p.Name, argOrUndefined(ip, args, i))
	}

	argsObj := ip.NewArray()
	argsObj.Class = "Arguments"
	argsObj.Proto = ip.ObjectProto
	for i, a := range args {
		argsObj.Set(strconv.Itoa(i), a)
	}
	argsObj.Length = len(args)
	argsObj.Set("length", ip.NewNumber(float64(len(args))))
	argsObj.NotEnumerable["length"] = true
	if !scope.Object.HasOwn("arguments") {
		scope.Object.Set("arguments", argsObj)
	}

	ip.hoist(body.Body, scope)
	f.started = true
	fb := ip.pushNode(body, f.scope)
	fb.scope = scope
	return nil
}

// resolveThis applies the this-binding rules at function entry: strict code
// takes the value as is, sloppy code substitutes the global object for
// null/undefined and boxes primitives.
func (f *pendingCallFrame) resolveThis(ip *Interpreter, this runtime.Value, strict bool) runtime.Value {
	if strict {
		if this == nil {
			return ip.Undefined
		}
		return this
	}
	switch t := this.(type) {
	case nil:
		return ip.GlobalObject
	case *runtime.Primitive:
		if t.Kind == runtime.KindUndefined || t.Kind == runtime.KindNull {
			return ip.GlobalObject
		}
		return builtins.BoxPrimitive(ip.Realm, t)
	}
	return this
}

// finishInterpreted handles normal completion of an interpreted body, an
// eval frame's completion value, or an unwound return.
func (f *pendingCallFrame) finishInterpreted(ip *Interpreter) error {
	result := f.retVal
	if result == nil {
		result = f.value
	}
	if result == nil {
		result = ip.Undefined
	}
	ip.popValue(f.constructed(result))
	return nil
}

// constructed applies new-expression result semantics: a constructor's
// non-object return is discarded in favor of the receiver.
func (f *pendingCallFrame) constructed(v runtime.Value) runtime.Value {
	if !f.isNew {
		if v == nil {
			return nil
		}
		return v
	}
	if obj, ok := v.(*runtime.Object); ok {
		return obj
	}
	return f.receiver
}

// finishAsync delivers an async function's completion.
func (f *pendingCallFrame) finishAsync(ip *Interpreter, v runtime.Value) {
	if v == nil {
		v = ip.Undefined
	}
	ip.popValue(f.constructed(v))
}

// spreadArguments expands the second apply() argument into a slice.
func (ip *Interpreter) spreadArguments(v runtime.Value) ([]runtime.Value, error) {
	if runtime.IsNullOrUndefined(v) {
		return nil, nil
	}
	obj, ok := v.(*runtime.Object)
	if !ok {
		return nil, ip.TypeError("CreateListFromArrayLike called on non-object")
	}
	lenVal, err := ip.GetProperty(obj, "length")
	if err != nil {
		return nil, err
	}
	n := ip.ToInteger(lenVal)
	out := make([]runtime.Value, 0, n)
	for i := 0; i < n; i++ {
		el, err := ip.GetProperty(obj, strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		out = append(out, el)
	}
	return out, nil
}

func argOrUndefined(ip *Interpreter, args []runtime.Value, i int) runtime.Value {
	if i < len(args) {
		return args[i]
	}
	return ip.Undefined
}

func indexKey(i int) string { return strconv.Itoa(i) }

// hasUseStrict recognizes the strict-mode directive prologue.
func hasUseStrict(body []ast.Statement) bool {
	for _, stmt := range body {
		es, ok := stmt.(*ast.ExpressionStatement)
		if !ok {
			return false
		}
		lit, ok := es.Expression.(*ast.Literal)
		if !ok || lit.Kind != ast.LiteralString {
			return false
		}
		if lit.Str == "use strict" {
			return true
		}
	}
	return false
}
