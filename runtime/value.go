// Package runtime holds the value model and host bridge of the interpreter:
// primitives, objects, scopes, and the Realm that owns the per-instance
// singletons and builtin constructors. The evaluation loop lives in the
// interpreter package; natives registered here never re-enter it.
package runtime

import (
	"strconv"

	"github.com/pawsong/js-interp/ast"
)

// Value is either a *Primitive or an *Object.
type Value interface {
	value()
}

type PrimitiveKind int

const (
	KindUndefined PrimitiveKind = iota
	KindNull
	KindBoolean
	KindNumber
	KindString
)

// Primitive carries one of the five primitive kinds. The undefined, null,
// boolean, NaN, zero, one and empty-string values are singletons owned by
// the Realm; comparing them by pointer is safe within one interpreter.
type Primitive struct {
	Kind   PrimitiveKind
	Bool   bool
	Number float64
	Str    string
}

func (p *Primitive) value() {}

// NativeFunc is a builtin implemented in Go. It must return promptly and
// must not call back into the step loop.
type NativeFunc func(r *Realm, this Value, args []Value) (Value, error)

// AsyncFunc is a builtin that completes later. The interpreter pauses after
// the call and resumes when done is invoked (from any goroutine).
type AsyncFunc func(r *Realm, this Value, args []Value, done func(Value, error))

// Object is every non-primitive value: plain objects, arrays, functions,
// dates, regexps and errors. Which extra fields are meaningful depends on
// Class.
type Object struct {
	Properties map[string]Value
	order      []string // property insertion order, drives for-in and JSON

	Getters map[string]*Object
	Setters map[string]*Object

	NotConfigurable map[string]bool
	NotEnumerable   map[string]bool
	NotWritable     map[string]bool

	PreventExtensions bool

	Proto *Object // nil terminates the prototype chain
	Class string  // "Object", "Array", "Function", "Date", "RegExp", "Error", ...

	// arrays
	Length int

	// internal payload: boxed primitive, time.Time for dates,
	// *regexp2.Regexp for regexps
	Data interface{}

	// functions
	Node        ast.FunctionNode
	Scope       *Scope // closure scope for interpreted functions
	NativeFunc  NativeFunc
	AsyncFunc   AsyncFunc
	BoundThis   Value
	BoundTarget *Object
	BoundArgs   []Value
	Eval        bool        // the one function with eval semantics
	Special     FuncSpecial // apply/call marker; the dispatcher rewrites the invocation
}

func (o *Object) value() {}

// FuncSpecial marks Function.prototype.apply and call. The objects carry no
// body of their own; the call dispatcher sees the marker and rewrites the
// invocation against the receiver.
type FuncSpecial int

const (
	SpecialNone FuncSpecial = iota
	SpecialApply
	SpecialCall
)

func (s FuncSpecial) String() string {
	switch s {
	case SpecialApply:
		return "apply"
	case SpecialCall:
		return "call"
	}
	return ""
}

// NewRawObject returns an object with the given prototype and no class
// behavior. Realm creation helpers are the usual entry points.
func NewRawObject(proto *Object) *Object {
	return &Object{
		Properties:      make(map[string]Value),
		Getters:         make(map[string]*Object),
		Setters:         make(map[string]*Object),
		NotConfigurable: make(map[string]bool),
		NotEnumerable:   make(map[string]bool),
		NotWritable:     make(map[string]bool),
		Proto:           proto,
		Class:           "Object",
	}
}

// setRaw installs a property without descriptor or class checks, keeping the
// insertion-order index consistent.
func (o *Object) setRaw(name string, v Value) {
	if _, ok := o.Properties[name]; !ok {
		o.order = append(o.order, name)
	}
	o.Properties[name] = v
}

// Set installs or updates an own data property directly, bypassing
// descriptor checks. Builtin registration and array internals use it.
func (o *Object) Set(name string, v Value) {
	o.setRaw(name, v)
}

// Delete removes an own property unconditionally.
func (o *Object) Delete(name string) {
	o.deleteRaw(name)
}

func (o *Object) deleteRaw(name string) {
	if _, ok := o.Properties[name]; !ok {
		return
	}
	delete(o.Properties, name)
	delete(o.Getters, name)
	delete(o.Setters, name)
	delete(o.NotConfigurable, name)
	delete(o.NotEnumerable, name)
	delete(o.NotWritable, name)
	for i, k := range o.order {
		if k == name {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
}

// OwnKeys returns the own property names in insertion order. Array objects
// report "length" even though it is stored out of band.
func (o *Object) OwnKeys() []string {
	keys := make([]string, len(o.order))
	copy(keys, o.order)
	return keys
}

// EnumerableKeys returns the own enumerable property names in insertion
// order.
func (o *Object) EnumerableKeys() []string {
	var keys []string
	for _, k := range o.order {
		if !o.NotEnumerable[k] {
			keys = append(keys, k)
		}
	}
	return keys
}

// HasOwn reports whether name is an own property. Array length and string
// magic are handled at the property layer, not here.
func (o *Object) HasOwn(name string) bool {
	_, ok := o.Properties[name]
	return ok
}

// IsFunction reports whether o is callable.
func (o *Object) IsFunction() bool {
	return o.Class == "Function"
}

// Scope is one link in the scope chain. Object holds the bindings; for
// with-statements it is the with target itself, and for the global scope it
// is the global object.
type Scope struct {
	Parent *Scope
	Strict bool
	Object *Object
	This   Value // nil inherits the enclosing scope's this
}

// ThisValue resolves the this binding visible from s.
func (s *Scope) ThisValue() Value {
	for c := s; c != nil; c = c.Parent {
		if c.This != nil {
			return c.This
		}
	}
	return nil
}

// NewScope returns a child scope with a fresh binding object.
func NewScope(parent *Scope, strict bool) *Scope {
	return &Scope{Parent: parent, Strict: strict, Object: NewRawObject(nil)}
}

// TypeOf implements the typeof operator.
func TypeOf(v Value) string {
	switch t := v.(type) {
	case *Primitive:
		switch t.Kind {
		case KindUndefined:
			return "undefined"
		case KindNull:
			return "object"
		case KindBoolean:
			return "boolean"
		case KindNumber:
			return "number"
		case KindString:
			return "string"
		}
	case *Object:
		if t.IsFunction() {
			return "function"
		}
		return "object"
	}
	return "undefined"
}

// IsUndefined reports whether v is the undefined value.
func IsUndefined(v Value) bool {
	p, ok := v.(*Primitive)
	return ok && p.Kind == KindUndefined
}

// IsNull reports whether v is the null value.
func IsNull(v Value) bool {
	p, ok := v.(*Primitive)
	return ok && p.Kind == KindNull
}

// IsNullOrUndefined reports whether v may not be coerced to an object.
func IsNullOrUndefined(v Value) bool {
	p, ok := v.(*Primitive)
	return ok && (p.Kind == KindUndefined || p.Kind == KindNull)
}

// arrayIndex reports whether name is a canonical array index, and its value.
func arrayIndex(name string) (int, bool) {
	n, err := strconv.ParseUint(name, 10, 32)
	if err != nil || n >= 1<<32-1 {
		return 0, false
	}
	if strconv.FormatUint(n, 10) != name {
		return 0, false
	}
	return int(n), true
}
