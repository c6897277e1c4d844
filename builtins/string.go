package builtins

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/pawsong/js-interp/runtime"
)

func registerString(r *runtime.Realm) {
	proto := runtime.NewRawObject(r.ObjectProto)
	proto.Class = "String"
	proto.Data = ""
	r.StringProto = proto
	ctor := newCtor(r, "String", 1, stringConstructor, proto)
	r.StringCtor = ctor

	setMethod(r, ctor, "fromCharCode", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		var b strings.Builder
		for _, a := range args {
			b.WriteRune(rune(r.ToUint32(a) & 0xffff))
		}
		return r.NewString(b.String()), nil
	})

	setMethod(r, proto, "toString", 0, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		s, err := thisString(r, this)
		if err != nil {
			return nil, err
		}
		return r.NewString(s), nil
	})

	setMethod(r, proto, "valueOf", 0, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		switch t := this.(type) {
		case *runtime.Primitive:
			if t.Kind == runtime.KindString {
				return t, nil
			}
		case *runtime.Object:
			if d, ok := t.Data.(string); ok {
				return r.NewString(d), nil
			}
		}
		return nil, r.TypeError("String.prototype.valueOf requires that 'this' be a String")
	})

	setMethod(r, proto, "charAt", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		s, err := thisString(r, this)
		if err != nil {
			return nil, err
		}
		i := r.ToInteger(argAt(r, args, 0))
		runes := []rune(s)
		if i < 0 || i >= len(runes) {
			return r.EmptyStr, nil
		}
		return r.NewString(string(runes[i])), nil
	})

	setMethod(r, proto, "charCodeAt", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		s, err := thisString(r, this)
		if err != nil {
			return nil, err
		}
		i := r.ToInteger(argAt(r, args, 0))
		runes := []rune(s)
		if i < 0 || i >= len(runes) {
			return r.NaN, nil
		}
		return r.NewNumber(float64(runes[i])), nil
	})

	setMethod(r, proto, "indexOf", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		s, err := thisString(r, this)
		if err != nil {
			return nil, err
		}
		needle := r.ToString(argAt(r, args, 0))
		from := r.ToInteger(argAt(r, args, 1))
		runes := []rune(s)
		if from < 0 {
			from = 0
		}
		if from > len(runes) {
			return r.NewNumber(-1), nil
		}
		idx := strings.Index(string(runes[from:]), needle)
		if idx < 0 {
			return r.NewNumber(-1), nil
		}
		return r.NewNumber(float64(from + len([]rune(string(runes[from:])[:idx])))), nil
	})

	setMethod(r, proto, "lastIndexOf", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		s, err := thisString(r, this)
		if err != nil {
			return nil, err
		}
		needle := r.ToString(argAt(r, args, 0))
		idx := strings.LastIndex(s, needle)
		if idx < 0 {
			return r.NewNumber(-1), nil
		}
		return r.NewNumber(float64(len([]rune(s[:idx])))), nil
	})

	setMethod(r, proto, "concat", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		s, err := thisString(r, this)
		if err != nil {
			return nil, err
		}
		var b strings.Builder
		b.WriteString(s)
		for _, a := range args {
			b.WriteString(r.ToString(a))
		}
		return r.NewString(b.String()), nil
	})

	setMethod(r, proto, "slice", 2, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		s, err := thisString(r, this)
		if err != nil {
			return nil, err
		}
		runes := []rune(s)
		n := len(runes)
		start := clampIndex(r, argAt(r, args, 0), n, 0)
		end := clampIndex(r, argAt(r, args, 1), n, n)
		if start >= end {
			return r.EmptyStr, nil
		}
		return r.NewString(string(runes[start:end])), nil
	})

	setMethod(r, proto, "substring", 2, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		s, err := thisString(r, this)
		if err != nil {
			return nil, err
		}
		runes := []rune(s)
		n := len(runes)
		start := absClamp(r, argAt(r, args, 0), n, 0)
		end := absClamp(r, argAt(r, args, 1), n, n)
		if start > end {
			start, end = end, start
		}
		return r.NewString(string(runes[start:end])), nil
	})

	setMethod(r, proto, "substr", 2, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		s, err := thisString(r, this)
		if err != nil {
			return nil, err
		}
		runes := []rune(s)
		n := len(runes)
		start := r.ToInteger(argAt(r, args, 0))
		if start < 0 {
			start += n
			if start < 0 {
				start = 0
			}
		}
		if start >= n {
			return r.EmptyStr, nil
		}
		length := n - start
		if !runtime.IsUndefined(argAt(r, args, 1)) {
			length = r.ToInteger(args[1])
		}
		if length <= 0 {
			return r.EmptyStr, nil
		}
		if start+length > n {
			length = n - start
		}
		return r.NewString(string(runes[start : start+length])), nil
	})

	setMethod(r, proto, "split", 2, stringSplit)
	setMethod(r, proto, "replace", 2, stringReplace)
	setMethod(r, proto, "match", 1, stringMatch)
	setMethod(r, proto, "search", 1, stringSearch)

	setMethod(r, proto, "trim", 0, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		s, err := thisString(r, this)
		if err != nil {
			return nil, err
		}
		return r.NewString(strings.TrimFunc(s, func(c rune) bool {
			return unicode.IsSpace(c) || c == '\ufeff'
		})), nil
	})

	setMethod(r, proto, "toUpperCase", 0, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		s, err := thisString(r, this)
		if err != nil {
			return nil, err
		}
		return r.NewString(strings.ToUpper(s)), nil
	})

	setMethod(r, proto, "toLowerCase", 0, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		s, err := thisString(r, this)
		if err != nil {
			return nil, err
		}
		return r.NewString(strings.ToLower(s)), nil
	})

	setMethod(r, proto, "toLocaleUpperCase", 0, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		s, err := thisString(r, this)
		if err != nil {
			return nil, err
		}
		return r.NewString(cases.Upper(localeTag(r, args)).String(s)), nil
	})

	setMethod(r, proto, "toLocaleLowerCase", 0, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		s, err := thisString(r, this)
		if err != nil {
			return nil, err
		}
		return r.NewString(cases.Lower(localeTag(r, args)).String(s)), nil
	})

	setMethod(r, proto, "localeCompare", 1, func(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		s, err := thisString(r, this)
		if err != nil {
			return nil, err
		}
		other := r.ToString(argAt(r, args, 0))
		tag := language.English
		if len(args) > 1 && !runtime.IsUndefined(args[1]) {
			if parsed, perr := language.Parse(r.ToString(args[1])); perr == nil {
				tag = parsed
			}
		}
		c := collate.New(tag)
		return r.NewNumber(float64(c.CompareString(s, other))), nil
	})
}

func stringConstructor(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	s := ""
	if len(args) > 0 {
		s = r.ToString(args[0])
	}
	if r.CalledAsConstructor {
		boxed := BoxPrimitive(r, &runtime.Primitive{Kind: runtime.KindString, Str: s})
		return boxed, nil
	}
	return r.NewString(s), nil
}

// thisString coerces the receiver; String.prototype methods are generic but
// refuse null and undefined.
func thisString(r *runtime.Realm, this runtime.Value) (string, error) {
	if runtime.IsNullOrUndefined(this) {
		return "", r.TypeError("String.prototype method called on null or undefined")
	}
	return r.ToString(this), nil
}

// absClamp clamps a substring() argument to [0, n] without the negative
// wraparound slice() has.
func absClamp(r *runtime.Realm, v runtime.Value, n, dflt int) int {
	if runtime.IsUndefined(v) {
		return dflt
	}
	i := r.ToInteger(v)
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

func localeTag(r *runtime.Realm, args []runtime.Value) language.Tag {
	if len(args) > 0 && !runtime.IsUndefined(args[0]) {
		if parsed, err := language.Parse(r.ToString(args[0])); err == nil {
			return parsed
		}
	}
	return language.Und
}

func stringSplit(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	s, err := thisString(r, this)
	if err != nil {
		return nil, err
	}
	limit := -1
	if len(args) > 1 && !runtime.IsUndefined(args[1]) {
		limit = int(r.ToUint32(args[1]))
	}
	out := r.NewArray()
	sep := argAt(r, args, 0)
	if runtime.IsUndefined(sep) {
		arrayPush(out, r.NewString(s))
		return out, nil
	}
	push := func(part string) bool {
		if limit >= 0 && out.Length >= limit {
			return false
		}
		arrayPush(out, r.NewString(part))
		return true
	}
	if reObj, ok := sep.(*runtime.Object); ok && reObj.Class == "RegExp" {
		re := compiledRegExp(reObj)
		if re == nil {
			return nil, r.TypeError("RegExp not compiled")
		}
		runes := []rune(s)
		last := 0
		m, _ := re.FindStringMatch(s)
		for m != nil {
			end := m.Index + m.Length
			if m.Length == 0 && m.Index <= last {
				if end >= len(runes) {
					break
				}
				m, _ = re.FindNextMatch(m)
				continue
			}
			if !push(string(runes[last:m.Index])) {
				return out, nil
			}
			last = end
			m, _ = re.FindNextMatch(m)
		}
		push(string(runes[last:]))
		return out, nil
	}
	sepStr := r.ToString(sep)
	if sepStr == "" {
		for _, c := range s {
			if !push(string(c)) {
				break
			}
		}
		return out, nil
	}
	for _, part := range strings.Split(s, sepStr) {
		if !push(part) {
			break
		}
	}
	return out, nil
}

func stringReplace(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	s, err := thisString(r, this)
	if err != nil {
		return nil, err
	}
	if funcArg(args, 1) != nil {
		return nil, r.TypeError("Function replacers are not supported; pass a replacement string")
	}
	repl := r.ToString(argAt(r, args, 1))
	if reObj, ok := argAt(r, args, 0).(*runtime.Object); ok && reObj.Class == "RegExp" {
		re := compiledRegExp(reObj)
		if re == nil {
			return nil, r.TypeError("RegExp not compiled")
		}
		count := 1
		if g, _ := r.GetProperty(reObj, "global"); r.ToBoolean(g) {
			count = -1
		}
		out, rerr := re.Replace(s, repl, 0, count)
		if rerr != nil {
			return nil, r.SyntaxError("%s", rerr.Error())
		}
		return r.NewString(out), nil
	}
	pattern := r.ToString(argAt(r, args, 0))
	return r.NewString(strings.Replace(s, pattern, repl, 1)), nil
}

func stringMatch(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	s, err := thisString(r, this)
	if err != nil {
		return nil, err
	}
	reObj, ok := argAt(r, args, 0).(*runtime.Object)
	if !ok || reObj.Class != "RegExp" {
		var cerr error
		reObj, cerr = newRegExpObject(r, r.ToString(argAt(r, args, 0)), "")
		if cerr != nil {
			return nil, cerr
		}
	}
	re := compiledRegExp(reObj)
	if re == nil {
		return nil, r.TypeError("RegExp not compiled")
	}
	global := false
	if g, _ := r.GetProperty(reObj, "global"); r.ToBoolean(g) {
		global = true
	}
	if !global {
		return regExpExecOn(r, reObj, s, 0)
	}
	out := r.NewArray()
	m, _ := re.FindStringMatch(s)
	for m != nil {
		arrayPush(out, r.NewString(m.String()))
		m, _ = re.FindNextMatch(m)
	}
	if out.Length == 0 {
		return r.Null, nil
	}
	return out, nil
}

func stringSearch(r *runtime.Realm, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	s, err := thisString(r, this)
	if err != nil {
		return nil, err
	}
	reObj, ok := argAt(r, args, 0).(*runtime.Object)
	if !ok || reObj.Class != "RegExp" {
		var cerr error
		reObj, cerr = newRegExpObject(r, r.ToString(argAt(r, args, 0)), "")
		if cerr != nil {
			return nil, cerr
		}
	}
	re := compiledRegExp(reObj)
	if re == nil {
		return nil, r.TypeError("RegExp not compiled")
	}
	m, _ := re.FindStringMatch(s)
	if m == nil {
		return r.NewNumber(-1), nil
	}
	return r.NewNumber(float64(m.Index)), nil
}
