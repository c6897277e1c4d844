package runtime

import (
	"math"
	"strconv"
)

// lookupRaw walks the prototype chain for a plain data property. Used where
// running a getter would be wrong (error formatting).
func lookupRaw(o *Object, name string) (Value, bool) {
	for ; o != nil; o = o.Proto {
		if v, ok := o.Properties[name]; ok {
			return v, ok
		}
	}
	return nil, false
}

func (r *Realm) primitiveProto(p *Primitive) *Object {
	switch p.Kind {
	case KindBoolean:
		return r.BooleanProto
	case KindNumber:
		return r.NumberProto
	case KindString:
		return r.StringProto
	}
	return nil
}

func (r *Realm) lookupOnChain(o *Object, name string) (Value, *Object, bool) {
	for ; o != nil; o = o.Proto {
		if g := o.Getters[name]; g != nil {
			return r.Undefined, g, true
		}
		if _, isSetterOnly := o.Setters[name]; isSetterOnly && !o.HasOwn(name) {
			return r.Undefined, nil, true
		}
		if v, ok := o.Properties[name]; ok {
			return v, nil, true
		}
	}
	return r.Undefined, nil, false
}

// lookupWithGetter resolves a property read down to either a value or a
// getter the caller must invoke. String length/indices and array length are
// synthesized here.
func (r *Realm) lookupWithGetter(v Value, name string) (Value, *Object, bool) {
	switch t := v.(type) {
	case *Primitive:
		if t.Kind == KindString {
			runes := []rune(t.Str)
			if name == "length" {
				return r.NewNumber(float64(len(runes))), nil, true
			}
			if i, ok := arrayIndex(name); ok {
				if i < len(runes) {
					return r.NewString(string(runes[i])), nil, true
				}
				return r.Undefined, nil, false
			}
		}
		proto := r.primitiveProto(t)
		if proto == nil {
			return r.Undefined, nil, false
		}
		return r.lookupOnChain(proto, name)
	case *Object:
		if t.Class == "Array" && name == "length" {
			return r.NewNumber(float64(t.Length)), nil, true
		}
		return r.lookupOnChain(t, name)
	}
	return r.Undefined, nil, false
}

// GetPropertyOrGetter is the interpreter's read path: a non-nil getter must
// be invoked by the caller with the receiver as this.
func (r *Realm) GetPropertyOrGetter(v Value, name string) (Value, *Object, error) {
	if IsNullOrUndefined(v) {
		kind := "undefined"
		if IsNull(v) {
			kind = "null"
		}
		return nil, nil, r.TypeError("Cannot read properties of %s (reading '%s')", kind, name)
	}
	val, getter, _ := r.lookupWithGetter(v, name)
	return val, getter, nil
}

// GetProperty is the native-side read path. Native getters run inline;
// interpreted getters cannot run here and raise a TypeError instead.
func (r *Realm) GetProperty(v Value, name string) (Value, error) {
	val, getter, err := r.GetPropertyOrGetter(v, name)
	if err != nil {
		return nil, err
	}
	if getter == nil {
		return val, nil
	}
	if getter.NativeFunc != nil {
		return getter.NativeFunc(r, v, nil)
	}
	return nil, r.TypeError("getter for '%s' requires the step loop", name)
}

// setOrFindSetter performs assignment semantics against an object: run down
// the chain for an accessor, respect writability, create the own property
// otherwise. A non-nil returned setter must be invoked by the caller.
// Failures are silent; strict-mode callers turn the false ok into a throw.
func (r *Realm) setOrFindSetter(o *Object, name string, v Value) (*Object, error) {
	for c := o; c != nil; c = c.Proto {
		if s := c.Setters[name]; s != nil {
			return s, nil
		}
		if c.Getters[name] != nil {
			// getter without setter: assignment is a no-op
			return nil, nil
		}
		if _, ok := c.Properties[name]; ok {
			if c == o {
				if o.NotWritable[name] {
					return nil, nil
				}
				o.Properties[name] = v
				return nil, nil
			}
			if c.NotWritable[name] {
				return nil, nil
			}
			break
		}
	}
	if o.PreventExtensions && !o.HasOwn(name) {
		return nil, nil
	}
	o.setRaw(name, v)
	return nil, nil
}

// SetProperty is the assignment path for arbitrary receivers. The returned
// setter, when non-nil, still needs to be run by the interpreter.
func (r *Realm) SetProperty(v Value, name string, val Value) (*Object, error) {
	switch t := v.(type) {
	case *Primitive:
		if t.Kind == KindUndefined || t.Kind == KindNull {
			kind := "undefined"
			if t.Kind == KindNull {
				kind = "null"
			}
			return nil, r.TypeError("Cannot set properties of %s (setting '%s')", kind, name)
		}
		// assignments to other primitives evaporate
		return nil, nil
	case *Object:
		if t.Class == "Array" {
			if name == "length" {
				return nil, r.setArrayLength(t, val)
			}
			if i, ok := arrayIndex(name); ok {
				setter, err := r.setOrFindSetter(t, name, val)
				if err == nil && setter == nil && i >= t.Length {
					t.Length = i + 1
				}
				return setter, err
			}
		}
		return r.setOrFindSetter(t, name, val)
	}
	return nil, nil
}

func (r *Realm) setArrayLength(a *Object, val Value) error {
	n := r.ToNumber(val)
	u := r.ToUint32(val)
	if float64(u) != n {
		return r.Throw(r.RangeErrorCtor, "Invalid array length")
	}
	newLen := int(u)
	if newLen < a.Length {
		for _, k := range a.OwnKeys() {
			if i, ok := arrayIndex(k); ok && i >= newLen {
				a.deleteRaw(k)
			}
		}
	}
	a.Length = newLen
	return nil
}

// Descriptor carries the attributes for DefineProperty. Nil pointers mean
// "not present": absent attributes default to false for a new property and
// stay untouched for an existing one.
type Descriptor struct {
	Value        Value
	Getter       *Object
	Setter       *Object
	Configurable *bool
	Enumerable   *bool
	Writable     *bool
}

// DefineProperty implements Object.defineProperty semantics on obj.
func (r *Realm) DefineProperty(obj *Object, name string, desc Descriptor) error {
	exists := obj.HasOwn(name)
	if obj.Class == "Array" && name == "length" {
		if desc.Value != nil {
			return r.setArrayLength(obj, desc.Value)
		}
		return nil
	}
	if !exists && obj.PreventExtensions {
		return r.TypeError("Can't define property '%s', object is not extensible", name)
	}
	// once non-configurable, any redefinition fails, identical descriptors
	// included
	if exists && obj.NotConfigurable[name] {
		return r.TypeError("Cannot redefine property: %s", name)
	}

	if !exists {
		obj.setRaw(name, r.Undefined)
		obj.NotConfigurable[name] = true
		obj.NotEnumerable[name] = true
		obj.NotWritable[name] = true
	}
	if desc.Configurable != nil {
		obj.NotConfigurable[name] = !*desc.Configurable
	}
	if desc.Enumerable != nil {
		obj.NotEnumerable[name] = !*desc.Enumerable
	}
	if desc.Writable != nil {
		obj.NotWritable[name] = !*desc.Writable
	}
	if desc.Getter != nil || desc.Setter != nil {
		if desc.Getter != nil {
			obj.Getters[name] = desc.Getter
		}
		if desc.Setter != nil {
			obj.Setters[name] = desc.Setter
		}
		obj.Properties[name] = r.Undefined
	} else if desc.Value != nil {
		delete(obj.Getters, name)
		delete(obj.Setters, name)
		obj.Properties[name] = desc.Value
		if obj.Class == "Array" {
			if i, ok := arrayIndex(name); ok && i >= obj.Length {
				obj.Length = i + 1
			}
		}
	}
	return nil
}

// DeleteProperty implements the delete operator. The bool is the expression
// result; strict mode turns a refusal into a TypeError.
func (r *Realm) DeleteProperty(v Value, name string, strict bool) (bool, error) {
	obj, ok := v.(*Object)
	if !ok {
		return true, nil
	}
	if obj.Class == "Array" && name == "length" {
		if strict {
			return false, r.TypeError("Cannot delete property 'length' of %s", r.ToString(v))
		}
		return false, nil
	}
	if !obj.HasOwn(name) {
		return true, nil
	}
	if obj.NotConfigurable[name] {
		if strict {
			return false, r.TypeError("Cannot delete property '%s' of %s", name, r.ToString(v))
		}
		return false, nil
	}
	obj.deleteRaw(name)
	return true, nil
}

// HasProperty implements the in operator against the full prototype chain.
func (r *Realm) HasProperty(v Value, name string) bool {
	switch t := v.(type) {
	case *Primitive:
		if t.Kind == KindString {
			if name == "length" {
				return true
			}
			if i, ok := arrayIndex(name); ok {
				return i < len([]rune(t.Str))
			}
		}
		proto := r.primitiveProto(t)
		return proto != nil && hasBinding(proto, name)
	case *Object:
		if t.Class == "Array" && name == "length" {
			return true
		}
		return hasBinding(t, name)
	}
	return false
}

// ForInKeys returns the keys a for-in loop visits: own enumerable keys in
// insertion order, then unshadowed enumerable keys up the prototype chain.
func (r *Realm) ForInKeys(v Value) []string {
	var keys []string
	seen := map[string]bool{}
	switch t := v.(type) {
	case *Primitive:
		if t.Kind == KindString {
			for i := range []rune(t.Str) {
				keys = append(keys, strconv.Itoa(i))
			}
		}
		return keys
	case *Object:
		for o := t; o != nil; o = o.Proto {
			for _, k := range o.order {
				if seen[k] {
					continue
				}
				seen[k] = true
				if !o.NotEnumerable[k] {
					keys = append(keys, k)
				}
			}
		}
	}
	return keys
}

// SameValue is pointer-free value identity used by the defineProperty
// redefinition check: NaN equals NaN and zeros are distinguished by sign.
func SameValue(a, b Value) bool {
	ap, aok := a.(*Primitive)
	bp, bok := b.(*Primitive)
	if aok && bok {
		if ap.Kind != bp.Kind {
			return false
		}
		switch ap.Kind {
		case KindNumber:
			if math.IsNaN(ap.Number) && math.IsNaN(bp.Number) {
				return true
			}
			return ap.Number == bp.Number && math.Signbit(ap.Number) == math.Signbit(bp.Number)
		case KindString:
			return ap.Str == bp.Str
		case KindBoolean:
			return ap.Bool == bp.Bool
		}
		return true
	}
	return a == b
}
