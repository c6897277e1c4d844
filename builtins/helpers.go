// Package builtins installs the standard library into a realm: the global
// functions plus the Object, Function, Array, String, Boolean, Number, Date,
// Math, RegExp, JSON and Error constructors. Natives here never re-enter the
// step loop; the handful of methods that must call back into script live in
// the polyfill source instead.
package builtins

import (
	"strconv"

	"github.com/pawsong/js-interp/runtime"
)

func setMethod(r *runtime.Realm, obj *runtime.Object, name string, arity int, fn runtime.NativeFunc) *runtime.Object {
	f := r.NewNativeFunction(fn, arity)
	obj.Set(name, f)
	obj.NotEnumerable[name] = true
	return f
}

func setDataProp(obj *runtime.Object, name string, v runtime.Value) {
	obj.Set(name, v)
	obj.NotEnumerable[name] = true
}

func setConstant(obj *runtime.Object, name string, v runtime.Value) {
	obj.Set(name, v)
	obj.NotEnumerable[name] = true
	obj.NotWritable[name] = true
	obj.NotConfigurable[name] = true
}

func argAt(r *runtime.Realm, args []runtime.Value, i int) runtime.Value {
	if i < len(args) {
		return args[i]
	}
	return r.Undefined
}

// newCtor wires a constructor function to its prototype and installs the
// global binding.
func newCtor(r *runtime.Realm, name string, arity int, fn runtime.NativeFunc, proto *runtime.Object) *runtime.Object {
	ctor := r.NewNativeFunction(fn, arity)
	setConstant(ctor, "prototype", proto)
	setDataProp(proto, "constructor", ctor)
	r.SetGlobal(name, ctor)
	r.GlobalObject.NotEnumerable[name] = true
	return ctor
}

func arrayPush(a *runtime.Object, v runtime.Value) {
	a.Set(strconv.Itoa(a.Length), v)
	a.Length++
}

func newArrayOf(r *runtime.Realm, vals ...runtime.Value) *runtime.Object {
	a := r.NewArray()
	for _, v := range vals {
		arrayPush(a, v)
	}
	return a
}

// BoxPrimitive wraps a boolean, number or string primitive in its wrapper
// object. String boxes materialize their index properties so reads and
// for-in behave without string magic at the object layer.
func BoxPrimitive(r *runtime.Realm, p *runtime.Primitive) *runtime.Object {
	var obj *runtime.Object
	switch p.Kind {
	case runtime.KindBoolean:
		obj = runtime.NewRawObject(r.BooleanProto)
		obj.Class = "Boolean"
		obj.Data = p.Bool
	case runtime.KindNumber:
		obj = runtime.NewRawObject(r.NumberProto)
		obj.Class = "Number"
		obj.Data = p.Number
	case runtime.KindString:
		obj = runtime.NewRawObject(r.StringProto)
		obj.Class = "String"
		obj.Data = p.Str
		runes := []rune(p.Str)
		for i, c := range runes {
			name := strconv.Itoa(i)
			obj.Set(name, r.NewString(string(c)))
			obj.NotWritable[name] = true
			obj.NotConfigurable[name] = true
		}
		setConstant(obj, "length", r.NewNumber(float64(len(runes))))
	}
	return obj
}

// indexName reports whether name is a canonical non-negative integer key.
func indexName(name string) (int, bool) {
	n, err := strconv.Atoi(name)
	if err != nil || n < 0 || strconv.Itoa(n) != name {
		return 0, false
	}
	return n, true
}

// funcArg extracts an argument that must be callable; nil when it is not.
func funcArg(args []runtime.Value, i int) *runtime.Object {
	if i >= len(args) {
		return nil
	}
	if f, ok := args[i].(*runtime.Object); ok && f.IsFunction() {
		return f
	}
	return nil
}
