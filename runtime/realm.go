package runtime

import (
	"fmt"
	"math"

	"github.com/pawsong/js-interp/ast"
)

// Realm owns everything one interpreter instance shares: the primitive
// singletons, the builtin constructors and prototypes, and the global scope.
// Values never travel between realms.
type Realm struct {
	Undefined *Primitive
	Null      *Primitive
	True      *Primitive
	False     *Primitive
	NaN       *Primitive
	Zero      *Primitive
	One       *Primitive
	EmptyStr  *Primitive

	ObjectCtor   *Object
	FunctionCtor *Object
	ArrayCtor    *Object
	NumberCtor   *Object
	StringCtor   *Object
	BooleanCtor  *Object
	DateCtor     *Object
	RegExpCtor   *Object
	ErrorCtor    *Object

	EvalErrorCtor      *Object
	RangeErrorCtor     *Object
	ReferenceErrorCtor *Object
	SyntaxErrorCtor    *Object
	TypeErrorCtor      *Object
	URIErrorCtor       *Object

	ObjectProto   *Object
	FunctionProto *Object
	ArrayProto    *Object
	NumberProto   *Object
	StringProto   *Object
	BooleanProto  *Object
	DateProto     *Object
	RegExpProto   *Object
	ErrorProto    *Object

	MathObj *Object
	JSONObj *Object

	Global       *Scope
	GlobalObject *Object

	// CalledAsConstructor is set by the call dispatcher around native
	// constructor invocations so dual-use builtins (String, Number, Date)
	// can tell `new String(x)` from `String(x)`.
	CalledAsConstructor bool
}

// NewRealm returns a realm with its singletons and an empty global scope.
// Builtin registration fills in the constructors and the global bindings.
func NewRealm() *Realm {
	r := &Realm{
		Undefined: &Primitive{Kind: KindUndefined},
		Null:      &Primitive{Kind: KindNull},
		True:      &Primitive{Kind: KindBoolean, Bool: true},
		False:     &Primitive{Kind: KindBoolean, Bool: false},
		NaN:       &Primitive{Kind: KindNumber, Number: math.NaN()},
		Zero:      &Primitive{Kind: KindNumber, Number: 0},
		One:       &Primitive{Kind: KindNumber, Number: 1},
		EmptyStr:  &Primitive{Kind: KindString},
	}
	r.GlobalObject = NewRawObject(nil)
	r.Global = &Scope{Object: r.GlobalObject, This: r.GlobalObject}
	return r
}

// ---------- primitive creation ----------

// NewNumber returns a number value, reusing the NaN, zero and one
// singletons. A negative zero gets its own cell so it prints as 0 but
// divides as -Infinity.
func (r *Realm) NewNumber(f float64) Value {
	switch {
	case math.IsNaN(f):
		return r.NaN
	case f == 0 && !math.Signbit(f):
		return r.Zero
	case f == 1:
		return r.One
	}
	return &Primitive{Kind: KindNumber, Number: f}
}

func (r *Realm) NewString(s string) Value {
	if s == "" {
		return r.EmptyStr
	}
	return &Primitive{Kind: KindString, Str: s}
}

func (r *Realm) NewBoolean(b bool) Value {
	if b {
		return r.True
	}
	return r.False
}

// ---------- object creation ----------

// protoFor resolves the prototype a `new ctor` receiver gets.
func (r *Realm) protoFor(ctor *Object) *Object {
	if ctor != nil {
		if p, ok := ctor.Properties["prototype"].(*Object); ok {
			return p
		}
	}
	return r.ObjectProto
}

// NewObject returns a plain object whose prototype comes from the given
// constructor (nil means Object).
func (r *Realm) NewObject(ctor *Object) *Object {
	return NewRawObject(r.protoFor(ctor))
}

// NewArray returns an empty array object.
func (r *Realm) NewArray() *Object {
	o := NewRawObject(r.ArrayProto)
	o.Class = "Array"
	return o
}

// NewFunction returns a function object closing over scope. Its prototype
// property is a fresh object with a constructor back-reference, matching
// what a function literal produces.
func (r *Realm) NewFunction(node ast.FunctionNode, scope *Scope) *Object {
	fn := NewRawObject(r.FunctionProto)
	fn.Class = "Function"
	fn.Node = node
	fn.Scope = scope
	proto := NewRawObject(r.ObjectProto)
	proto.setRaw("constructor", fn)
	proto.NotEnumerable["constructor"] = true
	fn.setRaw("prototype", proto)
	fn.NotEnumerable["prototype"] = true
	fn.setRaw("length", r.NewNumber(float64(len(node.FunctionParams()))))
	fn.NotEnumerable["length"] = true
	fn.NotWritable["length"] = true
	fn.NotConfigurable["length"] = true
	return fn
}

// NewNativeFunction wraps a Go function as a callable object.
func (r *Realm) NewNativeFunction(fn NativeFunc, arity int) *Object {
	obj := NewRawObject(r.FunctionProto)
	obj.Class = "Function"
	obj.NativeFunc = fn
	obj.setRaw("length", r.NewNumber(float64(arity)))
	obj.NotEnumerable["length"] = true
	obj.NotWritable["length"] = true
	obj.NotConfigurable["length"] = true
	return obj
}

// NewAsyncFunction wraps a Go function whose completion arrives later. The
// step loop pauses across the call.
func (r *Realm) NewAsyncFunction(fn AsyncFunc, arity int) *Object {
	obj := r.NewNativeFunction(nil, arity)
	obj.AsyncFunc = fn
	return obj
}

// NewError builds an error object of the given constructor with a message.
func (r *Realm) NewError(ctor *Object, message string) *Object {
	obj := r.NewObject(ctor)
	obj.Class = "Error"
	if message != "" {
		obj.setRaw("message", r.NewString(message))
		obj.NotEnumerable["message"] = true
	}
	return obj
}

// ---------- thrown values ----------

// Thrown is a JavaScript exception travelling through Go error returns.
// Value is what the throw statement (or a builtin) threw.
type Thrown struct {
	Value Value
	realm *Realm
}

func (t *Thrown) Error() string {
	if obj, ok := t.Value.(*Object); ok && obj.Class == "Error" {
		name := "Error"
		if n, ok := lookupRaw(obj, "name"); ok {
			name = t.realm.ToString(n)
		}
		msg := ""
		if m, ok := lookupRaw(obj, "message"); ok {
			msg = t.realm.ToString(m)
		}
		if msg == "" {
			return name
		}
		return name + ": " + msg
	}
	return t.realm.ToString(t.Value)
}

// ThrowValue wraps an arbitrary value as a Go error.
func (r *Realm) ThrowValue(v Value) error {
	return &Thrown{Value: v, realm: r}
}

// Throw builds and throws an error of the given constructor.
func (r *Realm) Throw(ctor *Object, format string, args ...interface{}) error {
	return r.ThrowValue(r.NewError(ctor, fmt.Sprintf(format, args...)))
}

func (r *Realm) TypeError(format string, args ...interface{}) error {
	return r.Throw(r.TypeErrorCtor, format, args...)
}

func (r *Realm) RangeError(format string, args ...interface{}) error {
	return r.Throw(r.RangeErrorCtor, format, args...)
}

func (r *Realm) ReferenceError(format string, args ...interface{}) error {
	return r.Throw(r.ReferenceErrorCtor, format, args...)
}

func (r *Realm) SyntaxError(format string, args ...interface{}) error {
	return r.Throw(r.SyntaxErrorCtor, format, args...)
}

// ---------- scopes ----------

// hasBinding checks name against a scope's binding object including its
// prototype chain; the global object inherits from Object.prototype.
func hasBinding(o *Object, name string) bool {
	for ; o != nil; o = o.Proto {
		if o.HasOwn(name) {
			return true
		}
		if o.Getters[name] != nil || o.Setters[name] != nil {
			return true
		}
	}
	return false
}

// ScopeLookup resolves a name against the scope chain. The bool reports
// whether the binding exists at all.
func (r *Realm) ScopeLookup(s *Scope, name string) (Value, *Object, bool) {
	for ; s != nil; s = s.Parent {
		if hasBinding(s.Object, name) {
			v, getter, _ := r.lookupWithGetter(s.Object, name)
			return v, getter, true
		}
	}
	return r.Undefined, nil, false
}

// ScopeAssign writes a name in the scope chain. Assigning an undeclared
// name creates a global binding (callers enforce strict mode before this).
// The returned setter, when non-nil, must be invoked by the caller with the
// value; runtime code cannot run interpreted setters.
func (r *Realm) ScopeAssign(s *Scope, name string, v Value) (*Object, error) {
	for c := s; c != nil; c = c.Parent {
		if hasBinding(c.Object, name) {
			return r.setOrFindSetter(c.Object, name, v)
		}
	}
	return r.setOrFindSetter(r.GlobalObject, name, v)
}

// DeclareVar creates a binding in the given scope if it does not already
// own one; existing bindings keep their value.
func (r *Realm) DeclareVar(s *Scope, name string, v Value) {
	if s.Object.HasOwn(name) {
		return
	}
	s.Object.setRaw(name, v)
}

// SetGlobal installs a global binding, the host-facing init hook's main tool.
func (r *Realm) SetGlobal(name string, v Value) {
	r.GlobalObject.setRaw(name, v)
}
