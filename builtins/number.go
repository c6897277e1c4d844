package builtins

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/pawsong/js-interp/runtime"
)

func registerNumber(r *runtime.Realm) {
	proto := runtime.NewRawObject(r.ObjectProto)
	proto.Class = "Number"
	proto.Data = float64(0)
	r.NumberProto = proto
	ctor := newCtor(r, "Number", 1, numberConstructor, proto)
	r.NumberCtor = ctor

	setConstant(ctor, "MAX_VALUE", r.NewNumber(math.MaxFloat64))
	setConstant(ctor, "MIN_VALUE", r.NewNumber(math.SmallestNonzeroFloat64))
	setConstant(ctor, "NaN", r.NaN)
	setConstant(ctor, "NEGATIVE_INFINITY", r.NewNumber(math.Inf(-1)))
	setConstant(ctor, "POSITIVE_INFINITY", r.NewNumber(math.Inf(1)))

	setMethod(r, proto, "valueOf", 0, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		n, err := thisNumber(r, this)
		if err != nil {
			return nil, err
		}
		return r.NewNumber(n), nil
	})

	setMethod(r, proto, "toString", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		n, err := thisNumber(r, this)
		if err != nil {
			return nil, err
		}
		radix := 10
		if !runtime.IsUndefined(argAt(r, args, 0)) {
			radix = r.ToInteger(args[0])
		}
		if radix < 2 || radix > 36 {
			return nil, r.RangeError("toString() radix must be between 2 and 36")
		}
		if radix == 10 {
			return r.NewString(runtime.FormatNumber(n)), nil
		}
		return r.NewString(formatRadix(n, radix)), nil
	})

	setMethod(r, proto, "toFixed", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		n, err := thisNumber(r, this)
		if err != nil {
			return nil, err
		}
		digits := r.ToInteger(argAt(r, args, 0))
		if digits < 0 || digits > 100 {
			return nil, r.RangeError("toFixed() digits argument must be between 0 and 100")
		}
		return r.NewString(strconv.FormatFloat(n, 'f', digits, 64)), nil
	})

	setMethod(r, proto, "toExponential", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		n, err := thisNumber(r, this)
		if err != nil {
			return nil, err
		}
		digits := -1
		if !runtime.IsUndefined(argAt(r, args, 0)) {
			digits = r.ToInteger(args[0])
			if digits < 0 || digits > 100 {
				return nil, r.RangeError("toExponential() argument must be between 0 and 100")
			}
		}
		s := strconv.FormatFloat(n, 'e', digits, 64)
		s = strings.Replace(s, "e+0", "e+", 1)
		s = strings.Replace(s, "e-0", "e-", 1)
		return r.NewString(s), nil
	})

	setMethod(r, proto, "toPrecision", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		n, err := thisNumber(r, this)
		if err != nil {
			return nil, err
		}
		if runtime.IsUndefined(argAt(r, args, 0)) {
			return r.NewString(runtime.FormatNumber(n)), nil
		}
		p := r.ToInteger(args[0])
		if p < 1 || p > 100 {
			return nil, r.RangeError("toPrecision() argument must be between 1 and 100")
		}
		s := strconv.FormatFloat(n, 'g', p, 64)
		s = strings.Replace(s, "e+0", "e+", 1)
		s = strings.Replace(s, "e-0", "e-", 1)
		return r.NewString(s), nil
	})

	setMethod(r, proto, "toLocaleString", 0, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		n, err := thisNumber(r, this)
		if err != nil {
			return nil, err
		}
		tag := language.English
		if !runtime.IsUndefined(argAt(r, args, 0)) {
			if parsed, perr := language.Parse(r.ToString(args[0])); perr == nil {
				tag = parsed
			}
		}
		p := message.NewPrinter(tag)
		return r.NewString(p.Sprint(number.Decimal(n, number.MaxFractionDigits(3)))), nil
	})
}

func numberConstructor(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	n := float64(0)
	if len(args) > 0 {
		n = r.ToNumber(args[0])
	}
	if r.CalledAsConstructor {
		obj := this.(*runtime.Object)
		obj.Class = "Number"
		obj.Data = n
		return obj, nil
	}
	return r.NewNumber(n), nil
}

func thisNumber(r *runtime.Realm, this runtime.Value) (float64, error) {
	switch t := this.(type) {
	case *runtime.Primitive:
		if t.Kind == runtime.KindNumber {
			return t.Number, nil
		}
	case *runtime.Object:
		if d, ok := t.Data.(float64); ok {
			return d, nil
		}
	}
	return 0, r.TypeError("Number.prototype method called on incompatible receiver")
}

// formatRadix renders a number in a non-decimal radix, including a short
// fractional expansion the way browsers do.
func formatRadix(f float64, radix int) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	neg := f < 0
	f = math.Abs(f)
	intPart := math.Trunc(f)
	frac := f - intPart
	s := strconv.FormatInt(int64(intPart), radix)
	if frac > 0 {
		var b strings.Builder
		b.WriteString(s)
		b.WriteByte('.')
		for i := 0; i < 20 && frac > 0; i++ {
			frac *= float64(radix)
			d := int(math.Trunc(frac))
			b.WriteByte("0123456789abcdefghijklmnopqrstuvwxyz"[d])
			frac -= float64(d)
		}
		s = b.String()
	}
	if neg {
		return "-" + s
	}
	return s
}
