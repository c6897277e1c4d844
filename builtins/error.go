package builtins

import "github.com/pawsong/js-interp/runtime"

func registerError(r *runtime.Realm) {
	proto := runtime.NewRawObject(r.ObjectProto)
	proto.Class = "Error"
	setDataProp(proto, "name", r.NewString("Error"))
	setDataProp(proto, "message", r.EmptyStr)
	r.ErrorProto = proto
	r.ErrorCtor = newCtor(r, "Error", 1, makeErrorConstructor(proto), proto)

	setMethod(r, proto, "toString", 0, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		obj, ok := this.(*runtime.Object)
		if !ok {
			return nil, r.TypeError("Error.prototype.toString called on non-object")
		}
		return r.NewString(r.ToString(obj)), nil
	})

	sub := func(name string, slot **runtime.Object) {
		p := runtime.NewRawObject(r.ErrorProto)
		p.Class = "Error"
		setDataProp(p, "name", r.NewString(name))
		setDataProp(p, "message", r.EmptyStr)
		*slot = newCtor(r, name, 1, makeErrorConstructor(p), p)
	}
	sub("EvalError", &r.EvalErrorCtor)
	sub("RangeError", &r.RangeErrorCtor)
	sub("ReferenceError", &r.ReferenceErrorCtor)
	sub("SyntaxError", &r.SyntaxErrorCtor)
	sub("TypeError", &r.TypeErrorCtor)
	sub("URIError", &r.URIErrorCtor)
}

// makeErrorConstructor returns a native that works with or without new.
func makeErrorConstructor(proto *runtime.Object) runtime.NativeFunc {
	return func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		var obj *runtime.Object
		if r.CalledAsConstructor {
			obj = this.(*runtime.Object)
		} else {
			obj = runtime.NewRawObject(proto)
		}
		obj.Class = "Error"
		if !runtime.IsUndefined(argAt(r, args, 0)) {
			obj.Set("message", r.NewString(r.ToString(args[0])))
			obj.NotEnumerable["message"] = true
		}
		return obj, nil
	}
}
