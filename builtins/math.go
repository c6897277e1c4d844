package builtins

import (
	"math"
	"math/rand"

	"github.com/pawsong/js-interp/runtime"
)

func registerMath(r *runtime.Realm) {
	obj := r.NewObject(nil)
	obj.Class = "Math"
	r.MathObj = obj
	r.SetGlobal("Math", obj)
	r.GlobalObject.NotEnumerable["Math"] = true

	setConstant(obj, "E", r.NewNumber(math.E))
	setConstant(obj, "LN2", r.NewNumber(math.Ln2))
	setConstant(obj, "LN10", r.NewNumber(math.Log(10)))
	setConstant(obj, "LOG2E", r.NewNumber(math.Log2E))
	setConstant(obj, "LOG10E", r.NewNumber(math.Log10E))
	setConstant(obj, "PI", r.NewNumber(math.Pi))
	setConstant(obj, "SQRT1_2", r.NewNumber(math.Sqrt(0.5)))
	setConstant(obj, "SQRT2", r.NewNumber(math.Sqrt2))

	unary := func(name string, fn func(float64) float64) {
		setMethod(r, obj, name, 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
			return r.NewNumber(fn(r.ToNumber(argAt(r, args, 0)))), nil
		})
	}
	unary("abs", math.Abs)
	unary("acos", math.Acos)
	unary("asin", math.Asin)
	unary("atan", math.Atan)
	unary("ceil", math.Ceil)
	unary("cos", math.Cos)
	unary("exp", math.Exp)
	unary("floor", math.Floor)
	unary("log", math.Log)
	unary("sin", math.Sin)
	unary("sqrt", math.Sqrt)
	unary("tan", math.Tan)
	unary("round", func(f float64) float64 {
		// JS rounds half toward +Infinity, unlike math.Round
		return math.Floor(f + 0.5)
	})

	setMethod(r, obj, "atan2", 2, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return r.NewNumber(math.Atan2(r.ToNumber(argAt(r, args, 0)), r.ToNumber(argAt(r, args, 1)))), nil
	})

	setMethod(r, obj, "pow", 2, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return r.NewNumber(math.Pow(r.ToNumber(argAt(r, args, 0)), r.ToNumber(argAt(r, args, 1)))), nil
	})

	setMethod(r, obj, "max", 2, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		best := math.Inf(-1)
		for _, a := range args {
			n := r.ToNumber(a)
			if math.IsNaN(n) {
				return r.NaN, nil
			}
			if n > best {
				best = n
			}
		}
		return r.NewNumber(best), nil
	})

	setMethod(r, obj, "min", 2, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		best := math.Inf(1)
		for _, a := range args {
			n := r.ToNumber(a)
			if math.IsNaN(n) {
				return r.NaN, nil
			}
			if n < best {
				best = n
			}
		}
		return r.NewNumber(best), nil
	})

	setMethod(r, obj, "random", 0, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return r.NewNumber(rand.Float64()), nil
	})
}
