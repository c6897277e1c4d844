package builtins

import (
	"math"
	"strconv"
	"strings"

	"github.com/pawsong/js-interp/runtime"
)

func registerArray(r *runtime.Realm) {
	proto := r.NewArray()
	r.ArrayProto = proto
	ctor := newCtor(r, "Array", 1, arrayConstructor, proto)
	r.ArrayCtor = ctor

	setMethod(r, ctor, "isArray", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		obj, ok := argAt(r, args, 0).(*runtime.Object)
		return r.NewBoolean(ok && obj.Class == "Array"), nil
	})

	setMethod(r, proto, "toString", 0, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return r.NewString(r.ToString(this)), nil
	})

	setMethod(r, proto, "join", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		o, err := arrayThis(r, this)
		if err != nil {
			return nil, err
		}
		sep := ","
		if !runtime.IsUndefined(argAt(r, args, 0)) {
			sep = r.ToString(args[0])
		}
		n := arrayLen(r, o)
		parts := make([]string, n)
		for i := 0; i < n; i++ {
			el, err := r.GetProperty(o, strconv.Itoa(i))
			if err != nil {
				return nil, err
			}
			if !runtime.IsNullOrUndefined(el) {
				parts[i] = r.ToString(el)
			}
		}
		return r.NewString(strings.Join(parts, sep)), nil
	})

	setMethod(r, proto, "push", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		o, err := arrayThis(r, this)
		if err != nil {
			return nil, err
		}
		n := arrayLen(r, o)
		for _, a := range args {
			if _, err := r.SetProperty(o, strconv.Itoa(n), a); err != nil {
				return nil, err
			}
			n++
		}
		setArrayLen(r, o, n)
		return r.NewNumber(float64(n)), nil
	})

	setMethod(r, proto, "pop", 0, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		o, err := arrayThis(r, this)
		if err != nil {
			return nil, err
		}
		n := arrayLen(r, o)
		if n == 0 {
			return r.Undefined, nil
		}
		last, err := r.GetProperty(o, strconv.Itoa(n-1))
		if err != nil {
			return nil, err
		}
		o.Delete(strconv.Itoa(n - 1))
		setArrayLen(r, o, n-1)
		return last, nil
	})

	setMethod(r, proto, "shift", 0, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		o, err := arrayThis(r, this)
		if err != nil {
			return nil, err
		}
		n := arrayLen(r, o)
		if n == 0 {
			return r.Undefined, nil
		}
		first, err := r.GetProperty(o, "0")
		if err != nil {
			return nil, err
		}
		for i := 1; i < n; i++ {
			moveElement(r, o, i, i-1)
		}
		o.Delete(strconv.Itoa(n - 1))
		setArrayLen(r, o, n-1)
		return first, nil
	})

	setMethod(r, proto, "unshift", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		o, err := arrayThis(r, this)
		if err != nil {
			return nil, err
		}
		n := arrayLen(r, o)
		for i := n - 1; i >= 0; i-- {
			moveElement(r, o, i, i+len(args))
		}
		for i, a := range args {
			if _, err := r.SetProperty(o, strconv.Itoa(i), a); err != nil {
				return nil, err
			}
		}
		setArrayLen(r, o, n+len(args))
		return r.NewNumber(float64(n + len(args))), nil
	})

	setMethod(r, proto, "slice", 2, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		o, err := arrayThis(r, this)
		if err != nil {
			return nil, err
		}
		n := arrayLen(r, o)
		start := clampIndex(r, argAt(r, args, 0), n, 0)
		end := clampIndex(r, argAt(r, args, 1), n, n)
		out := r.NewArray()
		for i := start; i < end; i++ {
			name := strconv.Itoa(i)
			if r.HasProperty(o, name) {
				el, err := r.GetProperty(o, name)
				if err != nil {
					return nil, err
				}
				arrayPush(out, el)
			} else {
				out.Length++
			}
		}
		return out, nil
	})

	setMethod(r, proto, "splice", 2, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		o, err := arrayThis(r, this)
		if err != nil {
			return nil, err
		}
		n := arrayLen(r, o)
		start := clampIndex(r, argAt(r, args, 0), n, 0)
		delCount := n - start
		if len(args) > 1 {
			delCount = r.ToInteger(args[1])
			if delCount < 0 {
				delCount = 0
			}
			if delCount > n-start {
				delCount = n - start
			}
		}
		removed := r.NewArray()
		for i := 0; i < delCount; i++ {
			el, err := r.GetProperty(o, strconv.Itoa(start+i))
			if err != nil {
				return nil, err
			}
			arrayPush(removed, el)
		}
		var items []runtime.Value
		if len(args) > 2 {
			items = args[2:]
		}
		shift := len(items) - delCount
		if shift < 0 {
			for i := start + delCount; i < n; i++ {
				moveElement(r, o, i, i+shift)
			}
			for i := n + shift; i < n; i++ {
				o.Delete(strconv.Itoa(i))
			}
		} else if shift > 0 {
			for i := n - 1; i >= start+delCount; i-- {
				moveElement(r, o, i, i+shift)
			}
		}
		for i, item := range items {
			if _, err := r.SetProperty(o, strconv.Itoa(start+i), item); err != nil {
				return nil, err
			}
		}
		setArrayLen(r, o, n+shift)
		return removed, nil
	})

	setMethod(r, proto, "concat", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		out := r.NewArray()
		appendOne := func(v runtime.Value) error {
			if obj, ok := v.(*runtime.Object); ok && obj.Class == "Array" {
				n := arrayLen(r, obj)
				for i := 0; i < n; i++ {
					name := strconv.Itoa(i)
					if r.HasProperty(obj, name) {
						el, err := r.GetProperty(obj, name)
						if err != nil {
							return err
						}
						arrayPush(out, el)
					} else {
						out.Length++
					}
				}
				return nil
			}
			arrayPush(out, v)
			return nil
		}
		if err := appendOne(this); err != nil {
			return nil, err
		}
		for _, a := range args {
			if err := appendOne(a); err != nil {
				return nil, err
			}
		}
		return out, nil
	})

	setMethod(r, proto, "reverse", 0, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		o, err := arrayThis(r, this)
		if err != nil {
			return nil, err
		}
		n := arrayLen(r, o)
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			ni, nj := strconv.Itoa(i), strconv.Itoa(j)
			vi, _ := r.GetProperty(o, ni)
			vj, _ := r.GetProperty(o, nj)
			hi, hj := r.HasProperty(o, ni), r.HasProperty(o, nj)
			if hj {
				r.SetProperty(o, ni, vj)
			} else {
				o.Delete(ni)
			}
			if hi {
				r.SetProperty(o, nj, vi)
			} else {
				o.Delete(nj)
			}
		}
		return o, nil
	})

	setMethod(r, proto, "indexOf", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		o, err := arrayThis(r, this)
		if err != nil {
			return nil, err
		}
		n := arrayLen(r, o)
		target := argAt(r, args, 0)
		from := 0
		if len(args) > 1 {
			from = r.ToInteger(args[1])
			if from < 0 {
				from += n
			}
			if from < 0 {
				from = 0
			}
		}
		for i := from; i < n; i++ {
			name := strconv.Itoa(i)
			if !r.HasProperty(o, name) {
				continue
			}
			el, err := r.GetProperty(o, name)
			if err != nil {
				return nil, err
			}
			if r.StrictEquals(el, target) {
				return r.NewNumber(float64(i)), nil
			}
		}
		return r.NewNumber(-1), nil
	})

	setMethod(r, proto, "lastIndexOf", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		o, err := arrayThis(r, this)
		if err != nil {
			return nil, err
		}
		n := arrayLen(r, o)
		target := argAt(r, args, 0)
		from := n - 1
		if len(args) > 1 {
			from = r.ToInteger(args[1])
			if from < 0 {
				from += n
			}
			if from > n-1 {
				from = n - 1
			}
		}
		for i := from; i >= 0; i-- {
			name := strconv.Itoa(i)
			if !r.HasProperty(o, name) {
				continue
			}
			el, err := r.GetProperty(o, name)
			if err != nil {
				return nil, err
			}
			if r.StrictEquals(el, target) {
				return r.NewNumber(float64(i)), nil
			}
		}
		return r.NewNumber(-1), nil
	})
}

// arrayConstructor builds an array whether called with new or not: a single
// numeric argument sets the length, anything else lists the elements.
func arrayConstructor(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	out := r.NewArray()
	if len(args) == 1 {
		if p, ok := args[0].(*runtime.Primitive); ok && p.Kind == runtime.KindNumber {
			u := r.ToUint32(p)
			if float64(u) != p.Number {
				return nil, r.RangeError("Invalid array length")
			}
			out.Length = int(u)
			return out, nil
		}
	}
	for _, a := range args {
		arrayPush(out, a)
	}
	return out, nil
}

func arrayThis(r *runtime.Realm, this runtime.Value) (*runtime.Object, error) {
	o, ok := this.(*runtime.Object)
	if !ok {
		return nil, r.TypeError("Array.prototype method called on non-object")
	}
	return o, nil
}

// arrayLen reads the length of an array or array-like receiver.
func arrayLen(r *runtime.Realm, o *runtime.Object) int {
	if o.Class == "Array" {
		return o.Length
	}
	lv, err := r.GetProperty(o, "length")
	if err != nil {
		return 0
	}
	n := r.ToNumber(lv)
	if math.IsNaN(n) || n < 0 {
		return 0
	}
	return int(r.ToUint32(lv))
}

func setArrayLen(r *runtime.Realm, o *runtime.Object, n int) {
	if o.Class == "Array" {
		o.Length = n
		return
	}
	r.SetProperty(o, "length", r.NewNumber(float64(n)))
}

func moveElement(r *runtime.Realm, o *runtime.Object, from, to int) {
	src, dst := strconv.Itoa(from), strconv.Itoa(to)
	if r.HasProperty(o, src) {
		v, _ := r.GetProperty(o, src)
		r.SetProperty(o, dst, v)
	} else {
		o.Delete(dst)
	}
}

// clampIndex resolves a relative start/end argument against length.
func clampIndex(r *runtime.Realm, v runtime.Value, n, dflt int) int {
	if runtime.IsUndefined(v) {
		return dflt
	}
	i := r.ToInteger(v)
	if i < 0 {
		i += n
		if i < 0 {
			return 0
		}
	}
	if i > n {
		return n
	}
	return i
}
