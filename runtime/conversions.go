package runtime

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ToBoolean implements the Boolean() coercion.
func (r *Realm) ToBoolean(v Value) bool {
	switch t := v.(type) {
	case *Primitive:
		switch t.Kind {
		case KindUndefined, KindNull:
			return false
		case KindBoolean:
			return t.Bool
		case KindNumber:
			return t.Number != 0 && !math.IsNaN(t.Number)
		case KindString:
			return t.Str != ""
		}
	case *Object:
		return true
	}
	return false
}

// ToNumber implements the Number() coercion. Interpreted valueOf overrides
// are not consulted; boxed primitives and dates convert from their payload.
func (r *Realm) ToNumber(v Value) float64 {
	switch t := v.(type) {
	case *Primitive:
		switch t.Kind {
		case KindUndefined:
			return math.NaN()
		case KindNull:
			return 0
		case KindBoolean:
			if t.Bool {
				return 1
			}
			return 0
		case KindNumber:
			return t.Number
		case KindString:
			return StringToNumber(t.Str)
		}
	case *Object:
		switch d := t.Data.(type) {
		case float64:
			return d
		case bool:
			if d {
				return 1
			}
			return 0
		case time.Time:
			return TimeToMS(d)
		}
		return StringToNumber(r.ToString(t))
	}
	return math.NaN()
}

// ToString implements the String() coercion.
func (r *Realm) ToString(v Value) string {
	switch t := v.(type) {
	case *Primitive:
		switch t.Kind {
		case KindUndefined:
			return "undefined"
		case KindNull:
			return "null"
		case KindBoolean:
			if t.Bool {
				return "true"
			}
			return "false"
		case KindNumber:
			return FormatNumber(t.Number)
		case KindString:
			return t.Str
		}
	case *Object:
		return r.objectToString(t)
	}
	return "undefined"
}

func (r *Realm) objectToString(o *Object) string {
	switch o.Class {
	case "Array":
		parts := make([]string, o.Length)
		for i := 0; i < o.Length; i++ {
			el, ok := o.Properties[strconv.Itoa(i)]
			if !ok || IsNullOrUndefined(el) {
				parts[i] = ""
				continue
			}
			parts[i] = r.ToString(el)
		}
		return strings.Join(parts, ",")
	case "Function":
		if o.NativeFunc != nil || o.AsyncFunc != nil || o.BoundTarget != nil {
			return "function () { [native code] }"
		}
		names := make([]string, 0, len(o.Node.FunctionParams()))
		for _, p := range o.Node.FunctionParams() {
			names = append(names, p.Name)
		}
		return "function (" + strings.Join(names, ", ") + ") { ... }"
	case "Date":
		if d, ok := o.Data.(time.Time); ok {
			return FormatDate(d)
		}
		return "Invalid Date"
	case "RegExp":
		src := "(?:)"
		if s, ok := o.Properties["source"]; ok {
			src = r.ToString(s)
		}
		flags := ""
		for _, f := range []struct{ prop, ch string }{{"global", "g"}, {"ignoreCase", "i"}, {"multiline", "m"}} {
			if fv, ok := o.Properties[f.prop]; ok && r.ToBoolean(fv) {
				flags += f.ch
			}
		}
		return "/" + src + "/" + flags
	case "Error":
		name := "Error"
		if n, ok := lookupRaw(o, "name"); ok {
			name = r.ToString(n)
		}
		msg := ""
		if m, ok := lookupRaw(o, "message"); ok {
			msg = r.ToString(m)
		}
		if msg == "" {
			return name
		}
		return name + ": " + msg
	}
	switch d := o.Data.(type) {
	case string:
		return d
	case float64:
		return FormatNumber(d)
	case bool:
		if d {
			return "true"
		}
		return "false"
	}
	return "[object " + o.Class + "]"
}

// ToPrimitive converts an object for use in arithmetic and comparison.
// Boxed numbers and booleans yield their payload; everything else becomes a
// string. Dates prefer the string hint regardless of payload, so an invalid
// date (NaN payload) still reads "Invalid Date".
func (r *Realm) ToPrimitive(v Value) Value {
	o, ok := v.(*Object)
	if !ok {
		return v
	}
	if o.Class == "Date" {
		return r.NewString(r.ToString(o))
	}
	switch d := o.Data.(type) {
	case float64:
		return r.NewNumber(d)
	case bool:
		return r.NewBoolean(d)
	}
	return r.NewString(r.ToString(o))
}

// StringToNumber implements the string grammar of Number(): optional
// whitespace, hex form, Infinity, or a strict decimal literal.
func StringToNumber(s string) float64 {
	s = strings.TrimFunc(s, isJSSpace)
	if s == "" {
		return 0
	}
	neg := false
	body := s
	if body[0] == '+' || body[0] == '-' {
		neg = body[0] == '-'
		body = body[1:]
	}
	if strings.HasPrefix(body, "0x") || strings.HasPrefix(body, "0X") {
		if neg || s[0] == '+' {
			return math.NaN()
		}
		n, err := strconv.ParseUint(body[2:], 16, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	}
	if body == "Infinity" {
		if neg {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func isJSSpace(c rune) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f', '\u00a0', '\ufeff', '\u2028', '\u2029':
		return true
	}
	return false
}

// FormatNumber renders a float the way JavaScript does: plain decimal in
// the [1e-6, 1e21) magnitude range, exponent notation outside it, and a
// bare "0" for both zeros.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		// Go pads the exponent to two digits; JS does not
		s = strings.Replace(s, "e+0", "e+", 1)
		s = strings.Replace(s, "e-0", "e-", 1)
		return s
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ToInteger truncates toward zero with NaN mapping to 0.
func (r *Realm) ToInteger(v Value) int {
	f := r.ToNumber(v)
	if math.IsNaN(f) {
		return 0
	}
	if math.IsInf(f, 1) {
		return math.MaxInt32
	}
	if math.IsInf(f, -1) {
		return math.MinInt32
	}
	return int(math.Trunc(f))
}

// ToUint32 implements the ToUint32 abstract operation.
func (r *Realm) ToUint32(v Value) uint32 {
	f := r.ToNumber(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return uint32(int64(math.Trunc(f)))
}

// ToInt32 implements the ToInt32 abstract operation.
func (r *Realm) ToInt32(v Value) int32 {
	return int32(r.ToUint32(v))
}

// StrictEquals implements the === operator.
func (r *Realm) StrictEquals(a, b Value) bool {
	ap, aok := a.(*Primitive)
	bp, bok := b.(*Primitive)
	if aok != bok {
		return false
	}
	if !aok {
		return a == b
	}
	if ap.Kind != bp.Kind {
		return false
	}
	switch ap.Kind {
	case KindNumber:
		return ap.Number == bp.Number
	case KindString:
		return ap.Str == bp.Str
	case KindBoolean:
		return ap.Bool == bp.Bool
	}
	return true
}

// AbstractEquals implements the == operator with its coercion ladder.
func (r *Realm) AbstractEquals(a, b Value) bool {
	ap, aok := a.(*Primitive)
	bp, bok := b.(*Primitive)
	if aok && bok {
		if ap.Kind == bp.Kind {
			return r.StrictEquals(a, b)
		}
		aNullish := ap.Kind == KindUndefined || ap.Kind == KindNull
		bNullish := bp.Kind == KindUndefined || bp.Kind == KindNull
		if aNullish || bNullish {
			return aNullish && bNullish
		}
		return r.ToNumber(a) == r.ToNumber(b)
	}
	if !aok && !bok {
		return a == b
	}
	// one object, one primitive
	if aok {
		if ap.Kind == KindUndefined || ap.Kind == KindNull {
			return false
		}
		return r.AbstractEquals(a, r.ToPrimitive(b))
	}
	if bp.Kind == KindUndefined || bp.Kind == KindNull {
		return false
	}
	return r.AbstractEquals(r.ToPrimitive(a), b)
}

// Compare implements the abstract relational comparison. ok is false when
// either side converts to NaN, which poisons every relation.
func (r *Realm) Compare(a, b Value) (int, bool) {
	pa := r.ToPrimitive(a)
	pb := r.ToPrimitive(b)
	sa, saok := pa.(*Primitive)
	sb, sbok := pb.(*Primitive)
	if saok && sbok && sa.Kind == KindString && sb.Kind == KindString {
		return strings.Compare(sa.Str, sb.Str), true
	}
	na := r.ToNumber(pa)
	nb := r.ToNumber(pb)
	if math.IsNaN(na) || math.IsNaN(nb) {
		return 0, false
	}
	switch {
	case na < nb:
		return -1, true
	case na > nb:
		return 1, true
	}
	return 0, true
}

// TimeToMS converts a Go time to JavaScript epoch milliseconds.
func TimeToMS(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Millisecond)
}

// MSToTime converts JavaScript epoch milliseconds to a Go time.
func MSToTime(ms float64) time.Time {
	return time.Unix(0, int64(ms*float64(time.Millisecond)))
}

// FormatDate renders a date the way Date.prototype.toString does.
func FormatDate(t time.Time) string {
	return t.Format("Mon Jan 02 2006 15:04:05 GMT-0700 (MST)")
}

// NativeToPseudo deep-converts ordinary Go data into interpreter values.
func (r *Realm) NativeToPseudo(v interface{}) Value {
	switch t := v.(type) {
	case nil:
		return r.Null
	case Value:
		return t
	case bool:
		return r.NewBoolean(t)
	case string:
		return r.NewString(t)
	case float64:
		return r.NewNumber(t)
	case float32:
		return r.NewNumber(float64(t))
	case int:
		return r.NewNumber(float64(t))
	case int32:
		return r.NewNumber(float64(t))
	case int64:
		return r.NewNumber(float64(t))
	case uint:
		return r.NewNumber(float64(t))
	case []interface{}:
		arr := r.NewArray()
		for i, el := range t {
			arr.setRaw(strconv.Itoa(i), r.NativeToPseudo(el))
		}
		arr.Length = len(t)
		return arr
	case map[string]interface{}:
		obj := r.NewObject(nil)
		for k, el := range t {
			obj.setRaw(k, r.NativeToPseudo(el))
		}
		return obj
	}
	return r.Undefined
}

// PseudoToNative deep-converts interpreter values into ordinary Go data.
// Cycles collapse onto the same Go value.
func (r *Realm) PseudoToNative(v Value) interface{} {
	return r.pseudoToNative(v, map[*Object]interface{}{})
}

func (r *Realm) pseudoToNative(v Value, seen map[*Object]interface{}) interface{} {
	switch t := v.(type) {
	case *Primitive:
		switch t.Kind {
		case KindUndefined, KindNull:
			return nil
		case KindBoolean:
			return t.Bool
		case KindNumber:
			return t.Number
		case KindString:
			return t.Str
		}
	case *Object:
		if prior, ok := seen[t]; ok {
			return prior
		}
		if t.Class == "Array" {
			out := make([]interface{}, t.Length)
			seen[t] = out
			for i := 0; i < t.Length; i++ {
				if el, ok := t.Properties[strconv.Itoa(i)]; ok {
					out[i] = r.pseudoToNative(el, seen)
				}
			}
			return out
		}
		out := map[string]interface{}{}
		seen[t] = out
		for _, k := range t.EnumerableKeys() {
			out[k] = r.pseudoToNative(t.Properties[k], seen)
		}
		return out
	}
	return nil
}
