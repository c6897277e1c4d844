package builtins

import (
	"strings"

	"github.com/pawsong/js-interp/ast"
	"github.com/pawsong/js-interp/parser"
	"github.com/pawsong/js-interp/runtime"
)

func registerFunction(r *runtime.Realm) {
	proto := runtime.NewRawObject(nil)
	proto.Class = "Function"
	proto.NativeFunc = func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return r.Undefined, nil
	}
	r.FunctionProto = proto
	r.FunctionCtor = newCtor(r, "Function", 1, functionConstructor, proto)

	setMethod(r, proto, "toString", 0, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		fn, ok := this.(*runtime.Object)
		if !ok || !fn.IsFunction() {
			return nil, r.TypeError("Function.prototype.toString requires that 'this' be a Function")
		}
		return r.NewString(r.ToString(fn)), nil
	})

	// apply and call are resolved by the call dispatcher; the marker is all
	// that matters here.
	apply := setMethod(r, proto, "apply", 2, nil)
	apply.Special = runtime.SpecialApply
	call := setMethod(r, proto, "call", 1, nil)
	call.Special = runtime.SpecialCall

	setMethod(r, proto, "bind", 1, functionBind)
}

// functionConstructor implements Function(arg1, ..., body): the arguments
// are glued into a function expression and parsed fresh against the global
// scope. Positions are stripped so the result steps like startup code.
func functionConstructor(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	var params []string
	body := ""
	if len(args) > 0 {
		for _, a := range args[:len(args)-1] {
			params = append(params, r.ToString(a))
		}
		body = r.ToString(args[len(args)-1])
	}
	src := "(function(" + strings.Join(params, ",") + ") {" + body + "})"
	prog, errs := parser.New(src).ParseProgram()
	if len(errs) > 0 {
		return nil, r.SyntaxError("%s", errs[0].Error())
	}
	if len(prog.Body) != 1 {
		return nil, r.SyntaxError("Invalid code in function body")
	}
	stmt, ok := prog.Body[0].(*ast.ExpressionStatement)
	if !ok {
		return nil, r.SyntaxError("Invalid code in function body")
	}
	fnNode, ok := stmt.Expression.(*ast.FunctionExpression)
	if !ok {
		return nil, r.SyntaxError("Invalid code in function body")
	}
	ast.StripPositions(fnNode)
	return r.NewFunction(fnNode, r.Global), nil
}

func functionBind(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	target, ok := this.(*runtime.Object)
	if !ok || !target.IsFunction() {
		return nil, r.TypeError("Bind must be called on a function")
	}
	bound := runtime.NewRawObject(r.FunctionProto)
	bound.Class = "Function"
	bound.BoundTarget = target
	bound.BoundThis = argAt(r, args, 0)
	if len(args) > 1 {
		bound.BoundArgs = append([]runtime.Value(nil), args[1:]...)
	}
	arity := 0
	if lv, err := r.GetProperty(target, "length"); err == nil {
		arity = r.ToInteger(lv) - len(bound.BoundArgs)
		if arity < 0 {
			arity = 0
		}
	}
	setConstant(bound, "length", r.NewNumber(float64(arity)))
	return bound, nil
}
