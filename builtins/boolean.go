package builtins

import "github.com/pawsong/js-interp/runtime"

func registerBoolean(r *runtime.Realm) {
	proto := runtime.NewRawObject(r.ObjectProto)
	proto.Class = "Boolean"
	proto.Data = false
	r.BooleanProto = proto
	ctor := newCtor(r, "Boolean", 1, booleanConstructor, proto)
	r.BooleanCtor = ctor

	setMethod(r, proto, "toString", 0, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		b, err := thisBoolean(r, this)
		if err != nil {
			return nil, err
		}
		if b {
			return r.NewString("true"), nil
		}
		return r.NewString("false"), nil
	})

	setMethod(r, proto, "valueOf", 0, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		b, err := thisBoolean(r, this)
		if err != nil {
			return nil, err
		}
		return r.NewBoolean(b), nil
	})
}

func booleanConstructor(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	b := r.ToBoolean(argAt(r, args, 0))
	if r.CalledAsConstructor {
		obj := this.(*runtime.Object)
		obj.Class = "Boolean"
		obj.Data = b
		return obj, nil
	}
	return r.NewBoolean(b), nil
}

func thisBoolean(r *runtime.Realm, this runtime.Value) (bool, error) {
	switch t := this.(type) {
	case *runtime.Primitive:
		if t.Kind == runtime.KindBoolean {
			return t.Bool, nil
		}
	case *runtime.Object:
		if d, ok := t.Data.(bool); ok {
			return d, nil
		}
	}
	return false, r.TypeError("Boolean.prototype method called on incompatible receiver")
}
