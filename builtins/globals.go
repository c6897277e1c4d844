package builtins

import (
	"math"
	"strings"

	"github.com/pawsong/js-interp/runtime"
)

func registerGlobals(r *runtime.Realm) {
	g := r.GlobalObject
	setConstant(g, "NaN", r.NaN)
	setConstant(g, "Infinity", r.NewNumber(math.Inf(1)))
	setConstant(g, "undefined", r.Undefined)

	setMethod(r, g, "parseInt", 2, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return r.NewNumber(jsParseInt(r.ToString(argAt(r, args, 0)), r.ToInteger(argAt(r, args, 1)))), nil
	})

	setMethod(r, g, "parseFloat", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return r.NewNumber(jsParseFloat(r.ToString(argAt(r, args, 0)))), nil
	})

	setMethod(r, g, "isNaN", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return r.NewBoolean(math.IsNaN(r.ToNumber(argAt(r, args, 0)))), nil
	})

	setMethod(r, g, "isFinite", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		n := r.ToNumber(argAt(r, args, 0))
		return r.NewBoolean(!math.IsNaN(n) && !math.IsInf(n, 0)), nil
	})

	// characters each encoder leaves alone, on top of alphanumerics
	const uriUnescaped = "-_.!~*'()"
	const uriReserved = ";/?:@&=+$,#"
	setMethod(r, g, "encodeURI", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return encodeURIWith(r, argAt(r, args, 0), uriUnescaped+uriReserved)
	})
	setMethod(r, g, "encodeURIComponent", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return encodeURIWith(r, argAt(r, args, 0), uriUnescaped)
	})
	setMethod(r, g, "decodeURI", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return decodeURIWith(r, argAt(r, args, 0), uriReserved)
	})
	setMethod(r, g, "decodeURIComponent", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return decodeURIWith(r, argAt(r, args, 0), "")
	})

	// eval is dispatched specially by the call machinery; the object only
	// carries the flag.
	eval := r.NewNativeFunction(func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		return nil, r.TypeError("eval is only callable from the step loop")
	}, 1)
	eval.Eval = true
	setDataProp(g, "eval", eval)
}

func jsParseInt(s string, radix int) float64 {
	s = strings.TrimSpace(s)
	sign := 1.0
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}
	if radix == 0 {
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			radix = 16
			s = s[2:]
		} else {
			radix = 10
		}
	} else if radix == 16 && (strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")) {
		s = s[2:]
	}
	if radix < 2 || radix > 36 {
		return math.NaN()
	}
	val := 0.0
	digits := 0
	for _, c := range s {
		d := -1
		switch {
		case c >= '0' && c <= '9':
			d = int(c - '0')
		case c >= 'a' && c <= 'z':
			d = int(c-'a') + 10
		case c >= 'A' && c <= 'Z':
			d = int(c-'A') + 10
		}
		if d < 0 || d >= radix {
			break
		}
		val = val*float64(radix) + float64(d)
		digits++
	}
	if digits == 0 {
		return math.NaN()
	}
	return sign * val
}

// jsParseFloat parses the longest valid decimal prefix.
func jsParseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	seenDigit, seenDot, seenExp := false, false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			seenDigit = true
			end = i + 1
		case (c == '+' || c == '-') && i == 0:
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
		case (c == 'e' || c == 'E') && seenDigit && !seenExp:
			// the exponent only counts with digits after it
			j := i + 1
			if j < len(s) && (s[j] == '+' || s[j] == '-') {
				j++
			}
			if j < len(s) && s[j] >= '0' && s[j] <= '9' {
				seenExp = true
				i = j - 1
				continue
			}
			goto done
		default:
			goto done
		}
		if seenExp && c >= '0' && c <= '9' {
			end = i + 1
		}
	}
done:
	if strings.HasPrefix(s, "Infinity") || strings.HasPrefix(s, "+Infinity") {
		return math.Inf(1)
	}
	if strings.HasPrefix(s, "-Infinity") {
		return math.Inf(-1)
	}
	if !seenDigit {
		return math.NaN()
	}
	return runtime.StringToNumber(s[:end])
}

func encodeURIWith(r *runtime.Realm, v runtime.Value, keep string) (runtime.Value, error) {
	s := r.ToString(v)
	var b strings.Builder
	for _, c := range s {
		if c >= 0xd800 && c <= 0xdfff {
			return nil, r.Throw(r.URIErrorCtor, "URI malformed")
		}
		if isURIAlnum(c) || strings.ContainsRune(keep, c) {
			b.WriteRune(c)
			continue
		}
		for _, octet := range []byte(string(c)) {
			b.WriteByte('%')
			b.WriteByte("0123456789ABCDEF"[octet>>4])
			b.WriteByte("0123456789ABCDEF"[octet&0xf])
		}
	}
	return r.NewString(b.String()), nil
}

func decodeURIWith(r *runtime.Realm, v runtime.Value, reserved string) (runtime.Value, error) {
	s := r.ToString(v)
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			b.WriteByte(s[i])
			continue
		}
		if i+2 >= len(s) {
			return nil, r.Throw(r.URIErrorCtor, "URI malformed")
		}
		hi, ok1 := hexDigit(s[i+1])
		lo, ok2 := hexDigit(s[i+2])
		if !ok1 || !ok2 {
			return nil, r.Throw(r.URIErrorCtor, "URI malformed")
		}
		octet := byte(hi<<4 | lo)
		// reserved characters stay escaped in decodeURI
		if octet < 0x80 && strings.ContainsRune(reserved, rune(octet)) {
			b.WriteString(s[i : i+3])
		} else {
			b.WriteByte(octet)
		}
		i += 2
	}
	return r.NewString(b.String()), nil
}

func isURIAlnum(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func hexDigit(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	}
	return 0, false
}
