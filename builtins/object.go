package builtins

import "github.com/pawsong/js-interp/runtime"

func registerObject(r *runtime.Realm) {
	proto := runtime.NewRawObject(nil)
	r.ObjectProto = proto
	ctor := newCtor(r, "Object", 1, objectConstructor, proto)
	r.ObjectCtor = ctor

	setMethod(r, ctor, "getPrototypeOf", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		obj, err := objectArg(r, args, 0, "Object.getPrototypeOf")
		if err != nil {
			return nil, err
		}
		if obj.Proto == nil {
			return r.Null, nil
		}
		return obj.Proto, nil
	})

	// the props argument is layered on by the polyfill wrapper
	setMethod(r, ctor, "create", 2, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		switch t := argAt(r, args, 0).(type) {
		case *runtime.Object:
			return runtime.NewRawObject(t), nil
		case *runtime.Primitive:
			if t.Kind == runtime.KindNull {
				return runtime.NewRawObject(nil), nil
			}
		}
		return nil, r.TypeError("Object prototype may only be an Object or null")
	})

	setMethod(r, ctor, "defineProperty", 3, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		obj, err := objectArg(r, args, 0, "Object.defineProperty")
		if err != nil {
			return nil, err
		}
		name := r.ToString(argAt(r, args, 1))
		desc, err := toDescriptor(r, argAt(r, args, 2))
		if err != nil {
			return nil, err
		}
		if err := r.DefineProperty(obj, name, desc); err != nil {
			return nil, err
		}
		return obj, nil
	})

	setMethod(r, ctor, "getOwnPropertyDescriptor", 2, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		obj, err := objectArg(r, args, 0, "Object.getOwnPropertyDescriptor")
		if err != nil {
			return nil, err
		}
		name := r.ToString(argAt(r, args, 1))
		if !obj.HasOwn(name) {
			return r.Undefined, nil
		}
		desc := r.NewObject(nil)
		if g, ok := obj.Getters[name]; ok || obj.Setters[name] != nil {
			if ok {
				desc.Set("get", g)
			} else {
				desc.Set("get", r.Undefined)
			}
			if s, ok := obj.Setters[name]; ok {
				desc.Set("set", s)
			} else {
				desc.Set("set", r.Undefined)
			}
		} else {
			desc.Set("value", obj.Properties[name])
			desc.Set("writable", r.NewBoolean(!obj.NotWritable[name]))
		}
		desc.Set("enumerable", r.NewBoolean(!obj.NotEnumerable[name]))
		desc.Set("configurable", r.NewBoolean(!obj.NotConfigurable[name]))
		return desc, nil
	})

	setMethod(r, ctor, "getOwnPropertyNames", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		obj, err := objectArg(r, args, 0, "Object.getOwnPropertyNames")
		if err != nil {
			return nil, err
		}
		out := r.NewArray()
		for _, k := range obj.OwnKeys() {
			arrayPush(out, r.NewString(k))
		}
		if obj.Class == "Array" {
			arrayPush(out, r.NewString("length"))
		}
		return out, nil
	})

	setMethod(r, ctor, "keys", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		obj, err := objectArg(r, args, 0, "Object.keys")
		if err != nil {
			return nil, err
		}
		out := r.NewArray()
		for _, k := range obj.EnumerableKeys() {
			arrayPush(out, r.NewString(k))
		}
		return out, nil
	})

	setMethod(r, ctor, "preventExtensions", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		obj, err := objectArg(r, args, 0, "Object.preventExtensions")
		if err != nil {
			return nil, err
		}
		obj.PreventExtensions = true
		return obj, nil
	})

	setMethod(r, ctor, "isExtensible", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		obj, ok := argAt(r, args, 0).(*runtime.Object)
		return r.NewBoolean(ok && !obj.PreventExtensions), nil
	})

	setMethod(r, ctor, "seal", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		obj, err := objectArg(r, args, 0, "Object.seal")
		if err != nil {
			return nil, err
		}
		obj.PreventExtensions = true
		for _, k := range obj.OwnKeys() {
			obj.NotConfigurable[k] = true
		}
		return obj, nil
	})

	setMethod(r, ctor, "freeze", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		obj, err := objectArg(r, args, 0, "Object.freeze")
		if err != nil {
			return nil, err
		}
		obj.PreventExtensions = true
		for _, k := range obj.OwnKeys() {
			obj.NotConfigurable[k] = true
			obj.NotWritable[k] = true
		}
		return obj, nil
	})

	setMethod(r, ctor, "isSealed", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		obj, ok := argAt(r, args, 0).(*runtime.Object)
		if !ok {
			return r.False, nil
		}
		if !obj.PreventExtensions {
			return r.False, nil
		}
		for _, k := range obj.OwnKeys() {
			if !obj.NotConfigurable[k] {
				return r.False, nil
			}
		}
		return r.True, nil
	})

	setMethod(r, ctor, "isFrozen", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		obj, ok := argAt(r, args, 0).(*runtime.Object)
		if !ok {
			return r.False, nil
		}
		if !obj.PreventExtensions {
			return r.False, nil
		}
		for _, k := range obj.OwnKeys() {
			if !obj.NotConfigurable[k] || !obj.NotWritable[k] {
				return r.False, nil
			}
		}
		return r.True, nil
	})

	setMethod(r, proto, "toString", 0, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		switch t := this.(type) {
		case *runtime.Object:
			return r.NewString("[object " + t.Class + "]"), nil
		case *runtime.Primitive:
			switch t.Kind {
			case runtime.KindUndefined:
				return r.NewString("[object Undefined]"), nil
			case runtime.KindNull:
				return r.NewString("[object Null]"), nil
			case runtime.KindBoolean:
				return r.NewString("[object Boolean]"), nil
			case runtime.KindNumber:
				return r.NewString("[object Number]"), nil
			case runtime.KindString:
				return r.NewString("[object String]"), nil
			}
		}
		return r.NewString("[object Object]"), nil
	})

	setMethod(r, proto, "toLocaleString", 0, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return r.NewString(r.ToString(this)), nil
	})

	setMethod(r, proto, "valueOf", 0, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return this, nil
	})

	setMethod(r, proto, "hasOwnProperty", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		name := r.ToString(argAt(r, args, 0))
		switch t := this.(type) {
		case *runtime.Object:
			if t.Class == "Array" && name == "length" {
				return r.True, nil
			}
			return r.NewBoolean(t.HasOwn(name)), nil
		case *runtime.Primitive:
			if t.Kind == runtime.KindString {
				if name == "length" {
					return r.True, nil
				}
				if i, ok := indexName(name); ok {
					return r.NewBoolean(i < len([]rune(t.Str))), nil
				}
			}
		}
		return r.False, nil
	})

	setMethod(r, proto, "isPrototypeOf", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		self, ok := this.(*runtime.Object)
		if !ok {
			return r.False, nil
		}
		obj, ok := argAt(r, args, 0).(*runtime.Object)
		if !ok {
			return r.False, nil
		}
		for p := obj.Proto; p != nil; p = p.Proto {
			if p == self {
				return r.True, nil
			}
		}
		return r.False, nil
	})

	setMethod(r, proto, "propertyIsEnumerable", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		obj, ok := this.(*runtime.Object)
		if !ok {
			return r.False, nil
		}
		name := r.ToString(argAt(r, args, 0))
		return r.NewBoolean(obj.HasOwn(name) && !obj.NotEnumerable[name]), nil
	})
}

func objectConstructor(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	switch t := argAt(r, args, 0).(type) {
	case *runtime.Object:
		return t, nil
	case *runtime.Primitive:
		if t.Kind == runtime.KindUndefined || t.Kind == runtime.KindNull {
			return r.NewObject(nil), nil
		}
		return BoxPrimitive(r, t), nil
	}
	return r.NewObject(nil), nil
}

func objectArg(r *runtime.Realm, args []runtime.Value, i int, who string) (*runtime.Object, error) {
	obj, ok := argAt(r, args, i).(*runtime.Object)
	if !ok {
		return nil, r.TypeError("%s called on non-object", who)
	}
	return obj, nil
}

// toDescriptor converts a script-side property descriptor into the runtime
// form. Presence checks walk the prototype chain like a real read.
func toDescriptor(r *runtime.Realm, v runtime.Value) (runtime.Descriptor, error) {
	var desc runtime.Descriptor
	obj, ok := v.(*runtime.Object)
	if !ok {
		return desc, r.TypeError("Property description must be an object")
	}
	readFlag := func(name string) (*bool, error) {
		if !r.HasProperty(obj, name) {
			return nil, nil
		}
		val, err := r.GetProperty(obj, name)
		if err != nil {
			return nil, err
		}
		b := r.ToBoolean(val)
		return &b, nil
	}
	var err error
	if desc.Configurable, err = readFlag("configurable"); err != nil {
		return desc, err
	}
	if desc.Enumerable, err = readFlag("enumerable"); err != nil {
		return desc, err
	}
	if desc.Writable, err = readFlag("writable"); err != nil {
		return desc, err
	}
	if r.HasProperty(obj, "value") {
		if desc.Value, err = r.GetProperty(obj, "value"); err != nil {
			return desc, err
		}
	}
	for _, accessor := range []string{"get", "set"} {
		if !r.HasProperty(obj, accessor) {
			continue
		}
		val, err := r.GetProperty(obj, accessor)
		if err != nil {
			return desc, err
		}
		if runtime.IsUndefined(val) {
			continue
		}
		fn, ok := val.(*runtime.Object)
		if !ok || !fn.IsFunction() {
			return desc, r.TypeError("Getter/setter must be a function")
		}
		if accessor == "get" {
			desc.Getter = fn
		} else {
			desc.Setter = fn
		}
	}
	if desc.Value != nil && (desc.Getter != nil || desc.Setter != nil) {
		return desc, r.TypeError("Invalid property descriptor. Cannot both specify accessors and a value or writable attribute")
	}
	return desc, nil
}
